package workers

import (
	"context"
	"fmt"
	"strings"
	"time"

	"bilca_backend/internal/logger"
	"bilca_backend/internal/metrics"
	"bilca_backend/internal/models"
	"bilca_backend/internal/repositories"
	"bilca_backend/internal/services"

	"github.com/go-co-op/gocron/v2"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"gorm.io/gorm"
)

const reviewReminderJobName = "review-reminder"

var tracer = otel.Tracer("bilca_backend/internal/workers")

type ReminderConfig struct {
	Cron            string
	Location        *time.Location
	DelayDays       int
	RetryMissed     bool
	ReviewWindow    time.Duration
	DispatchTimeout time.Duration
	ClientURL       string
	TokenTTL        time.Duration
}

// RunSummary counts what one reminder pass did.
type RunSummary struct {
	Candidates     int `json:"candidates"`
	Attempted      int `json:"attempted"`
	Sent           int `json:"sent"`
	Skipped        int `json:"skipped"`
	Failed         int `json:"failed"`
	AlreadyClaimed int `json:"already_claimed"` // claimed by another run after this one loaded it
}

// ReviewReminderWorker emails clients a review link a few days after a hire completes.
type ReviewReminderWorker struct {
	db       *gorm.DB
	hireRepo repositories.HireRepository
	tokens   services.ReviewTokenService
	notifier services.Notifier
	locker   gocron.Locker
	cfg      ReminderConfig
	now      func() time.Time
}

func NewReviewReminderWorker(
	db *gorm.DB,
	hireRepo repositories.HireRepository,
	tokens services.ReviewTokenService,
	notifier services.Notifier,
	locker gocron.Locker,
	cfg ReminderConfig,
) *ReviewReminderWorker {
	if cfg.Cron == "" {
		cfg.Cron = "0 0 * * *"
	}
	if cfg.Location == nil {
		cfg.Location = time.UTC
	}
	if cfg.DelayDays <= 0 {
		cfg.DelayDays = 5
	}
	if cfg.DispatchTimeout <= 0 {
		cfg.DispatchTimeout = 15 * time.Second
	}
	if cfg.ReviewWindow <= 0 {
		cfg.ReviewWindow = 10 * 24 * time.Hour
	}
	return &ReviewReminderWorker{
		db:       db,
		hireRepo: hireRepo,
		tokens:   tokens,
		notifier: notifier,
		locker:   locker,
		cfg:      cfg,
		now:      func() time.Time { return time.Now().UTC() },
	}
}

// Start schedules RunOnce on the configured cron and blocks until ctx is done.
func (w *ReviewReminderWorker) Start(ctx context.Context) error {
	opts := []gocron.SchedulerOption{gocron.WithLocation(w.cfg.Location)}
	if w.locker != nil {
		opts = append(opts, gocron.WithDistributedLocker(w.locker))
	}

	scheduler, err := gocron.NewScheduler(opts...)
	if err != nil {
		return err
	}

	_, err = scheduler.NewJob(
		gocron.CronJob(w.cfg.Cron, false),
		gocron.NewTask(func() {
			if _, err := w.RunOnce(ctx); err != nil {
				logger.WorkerLog(reviewReminderJobName, "run", err)
			}
		}),
		gocron.WithName(reviewReminderJobName),
		gocron.WithSingletonMode(gocron.LimitModeReschedule),
	)
	if err != nil {
		_ = scheduler.Shutdown()
		return err
	}

	scheduler.Start()
	logger.Info("Review reminder worker started",
		"cron", w.cfg.Cron,
		"location", w.cfg.Location.String(),
		"distributed_lock", w.locker != nil,
	)

	<-ctx.Done()

	logger.Info("Review reminder worker stopping")
	return scheduler.Shutdown()
}

// Window returns the completed_at range [from, to) picked up by a run at now.
// The base window is the whole UTC day DelayDays ago. RetryMissed stretches
// the start back to the oldest hire whose review window is still open.
func (w *ReviewReminderWorker) Window(now time.Time) (time.Time, time.Time) {
	day := 24 * time.Hour
	from := startOfDayUTC(now.Add(-time.Duration(w.cfg.DelayDays) * day))
	to := from.Add(day)
	if w.cfg.RetryMissed {
		if oldest := now.Add(-w.cfg.ReviewWindow); oldest.Before(from) {
			from = oldest
		}
	}
	return from, to
}

// RunOnce processes every candidate independently. One failing hire never
// aborts the rest. The error is non-nil only when candidates cannot be loaded.
func (w *ReviewReminderWorker) RunOnce(ctx context.Context) (RunSummary, error) {
	started := time.Now()
	now := w.now()
	from, to := w.Window(now)

	ctx, span := tracer.Start(ctx, "review_reminder.run")
	defer span.End()
	span.SetAttributes(
		attribute.String("window.from", from.Format(time.RFC3339)),
		attribute.String("window.to", to.Format(time.RFC3339)),
	)

	var summary RunSummary
	db := w.db.WithContext(ctx)

	hires, err := w.hireRepo.FindReminderCandidates(db, from, to)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "load candidates")
		return summary, fmt.Errorf("load reminder candidates: %w", err)
	}
	summary.Candidates = len(hires)

	for i := range hires {
		if ctx.Err() != nil {
			break
		}
		switch w.processHire(ctx, db, &hires[i], now) {
		case reminderSent:
			summary.Attempted++
			summary.Sent++
		case reminderFailed:
			summary.Attempted++
			summary.Failed++
		case reminderSkipped:
			summary.Skipped++
		case reminderClaimedElsewhere:
			summary.AlreadyClaimed++
		}
	}

	span.SetAttributes(
		attribute.Int("candidates", summary.Candidates),
		attribute.Int("sent", summary.Sent),
		attribute.Int("skipped", summary.Skipped),
		attribute.Int("failed", summary.Failed),
	)
	metrics.ObserveReminderRun(time.Since(started))
	logger.Info("Review reminder run finished",
		"candidates", summary.Candidates,
		"attempted", summary.Attempted,
		"sent", summary.Sent,
		"skipped", summary.Skipped,
		"failed", summary.Failed,
		"already_claimed", summary.AlreadyClaimed,
		"window_from", from,
		"window_to", to,
	)
	return summary, nil
}

type reminderOutcome int

const (
	reminderSkipped reminderOutcome = iota
	reminderSent
	reminderFailed
	reminderClaimedElsewhere
)

func (w *ReviewReminderWorker) processHire(ctx context.Context, db *gorm.DB, hire *models.Hire, now time.Time) reminderOutcome {
	ctx, span := tracer.Start(ctx, "review_reminder.hire")
	defer span.End()
	span.SetAttributes(attribute.String("hire.id", hire.ID))

	if reason := missingReminderData(hire); reason != "" {
		logger.Warn("Skipping review reminder", "hire_id", hire.ID, "reason", reason)
		metrics.ObserveReminder("skipped")
		return reminderSkipped
	}

	fail := func(stage string, err error) reminderOutcome {
		span.RecordError(err)
		span.SetStatus(codes.Error, stage)
		logger.WorkerLog(reviewReminderJobName, stage, err, "hire_id", hire.ID)
		metrics.ObserveReminder("failed")
		return reminderFailed
	}

	token, err := w.tokens.Issue(hire.ID, hire.ClientID)
	if err != nil {
		return fail("issue_token", err)
	}

	reminder := services.ReviewReminder{
		HireID:      hire.ID,
		ClientEmail: hire.Client.Email,
		ClientName:  hire.Client.Name,
		WorkerName:  hire.Worker.Name,
		Service:     hire.Service,
		ReviewLink:  strings.TrimRight(w.cfg.ClientURL, "/") + "/review/" + token,
		ExpiresAt:   now.Add(w.cfg.TokenTTL),
	}

	claimed, err := w.hireRepo.ClaimReviewReminder(db, hire.ID, now)
	if err != nil {
		return fail("claim", err)
	}
	if !claimed {
		logger.Info("Review reminder claimed by another run", "hire_id", hire.ID)
		return reminderClaimedElsewhere
	}

	sendCtx, cancel := context.WithTimeout(ctx, w.cfg.DispatchTimeout)
	err = w.notifier.SendReviewReminder(sendCtx, reminder)
	cancel()
	if err != nil {
		// Release with a fresh context so a cancelled run still frees the hire.
		releaseCtx, cancelRelease := context.WithTimeout(context.WithoutCancel(ctx), w.cfg.DispatchTimeout)
		if _, relErr := w.hireRepo.ReleaseReviewReminder(db.WithContext(releaseCtx), hire.ID); relErr != nil {
			logger.WorkerLog(reviewReminderJobName, "release", relErr, "hire_id", hire.ID)
		}
		cancelRelease()
		return fail("send", err)
	}

	metrics.ObserveReminder("sent")
	return reminderSent
}

func missingReminderData(hire *models.Hire) string {
	switch {
	case hire.ID == "" || hire.ClientID == "" || hire.WorkerID == "":
		return "missing ids"
	case hire.Client == nil || strings.TrimSpace(hire.Client.Email) == "":
		return "missing client email"
	case hire.Worker == nil || strings.TrimSpace(hire.Worker.Name) == "":
		return "missing worker name"
	}
	return ""
}

func startOfDayUTC(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
