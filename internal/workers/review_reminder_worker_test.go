package workers

import (
	"context"
	"errors"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"bilca_backend/internal/auth"
	"bilca_backend/internal/models"
	"bilca_backend/internal/repositories"
	"bilca_backend/internal/services"
	"bilca_backend/test/helpers"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

type mockNotifier struct {
	mock.Mock
}

func (m *mockNotifier) SendReviewReminder(ctx context.Context, r services.ReviewReminder) error {
	return m.Called(ctx, r).Error(0)
}

func (m *mockNotifier) NotifyHireCreated(ctx context.Context, n services.HireCreatedNotice) error {
	return m.Called(ctx, n).Error(0)
}

// runAt is midnight five days after the completions used below.
var runAt = time.Date(2026, 6, 6, 0, 0, 0, 0, time.UTC)

func newTestWorker(t *testing.T, db *gorm.DB, notifier services.Notifier, cfg ReminderConfig) *ReviewReminderWorker {
	t.Helper()
	clock := helpers.NewClock(runAt)
	hireRepo := repositories.NewHireRepository()
	signer := auth.NewReviewTokenSigner("review-secret", 168*time.Hour).WithClock(clock.Now)
	tokens := services.NewReviewTokenService(signer, hireRepo, 10*24*time.Hour, "")

	if cfg.ClientURL == "" {
		cfg.ClientURL = "https://bilca.test/"
	}
	if cfg.TokenTTL == 0 {
		cfg.TokenTTL = 168 * time.Hour
	}
	w := NewReviewReminderWorker(db, hireRepo, tokens, notifier, nil, cfg)
	w.now = clock.Now
	return w
}

func TestWindow(t *testing.T) {
	w := NewReviewReminderWorker(nil, nil, nil, nil, nil, ReminderConfig{DelayDays: 5})

	from, to := w.Window(runAt.Add(13 * time.Hour))
	assert.Equal(t, time.Date(2026, 6, 1, 0, 0, 0, 0, time.UTC), from)
	assert.Equal(t, time.Date(2026, 6, 2, 0, 0, 0, 0, time.UTC), to)

	w.cfg.RetryMissed = true
	from, to = w.Window(runAt)
	assert.Equal(t, runAt.Add(-10*24*time.Hour), from)
	assert.Equal(t, time.Date(2026, 6, 2, 0, 0, 0, 0, time.UTC), to)
}

func TestRunOnce_SendsOncePerHire(t *testing.T) {
	db := helpers.NewTestDB(t)
	client := helpers.CreateClient(t, db)
	worker := helpers.CreateWorker(t, db)

	due := helpers.CreateHire(t, db, client, worker, helpers.Completed(time.Date(2026, 6, 1, 10, 0, 0, 0, time.UTC)))
	helpers.CreateHire(t, db, client, worker, helpers.Completed(time.Date(2026, 6, 2, 0, 0, 0, 0, time.UTC)))
	helpers.CreateHire(t, db, client, worker, helpers.Completed(time.Date(2026, 5, 31, 23, 59, 59, 0, time.UTC)))
	helpers.CreateHire(t, db, client, worker, helpers.Accepted)

	notifier := &mockNotifier{}
	notifier.On("SendReviewReminder", mock.Anything, mock.MatchedBy(func(r services.ReviewReminder) bool {
		return r.HireID == due.ID &&
			r.ClientEmail == client.Email &&
			r.WorkerName == worker.Name &&
			strings.HasPrefix(r.ReviewLink, "https://bilca.test/review/") &&
			r.ExpiresAt.Equal(runAt.Add(168*time.Hour))
	})).Return(nil).Once()

	w := newTestWorker(t, db, notifier, ReminderConfig{})

	summary, err := w.RunOnce(context.Background())
	require.NoError(t, err)
	assert.Equal(t, RunSummary{Candidates: 1, Attempted: 1, Sent: 1}, summary)

	reloaded := helpers.ReloadHire(t, db, due.ID)
	assert.True(t, reloaded.ReviewEmailSent)
	require.NotNil(t, reloaded.ReviewSentAt)
	assert.True(t, reloaded.ReviewSentAt.Equal(runAt))

	summary, err = w.RunOnce(context.Background())
	require.NoError(t, err)
	assert.Equal(t, RunSummary{}, summary)

	notifier.AssertExpectations(t)
}

func TestRunOnce_IssuedLinkValidates(t *testing.T) {
	db := helpers.NewTestDB(t)
	client := helpers.CreateClient(t, db)
	worker := helpers.CreateWorker(t, db)
	hire := helpers.CreateHire(t, db, client, worker, helpers.Completed(time.Date(2026, 6, 1, 10, 0, 0, 0, time.UTC)))

	var link string
	notifier := &mockNotifier{}
	notifier.On("SendReviewReminder", mock.Anything, mock.Anything).
		Run(func(args mock.Arguments) {
			link = args.Get(1).(services.ReviewReminder).ReviewLink
		}).
		Return(nil)

	w := newTestWorker(t, db, notifier, ReminderConfig{})
	_, err := w.RunOnce(context.Background())
	require.NoError(t, err)

	token := strings.TrimPrefix(link, "https://bilca.test/review/")
	signer := auth.NewReviewTokenSigner("review-secret", 168*time.Hour).WithClock(func() time.Time { return runAt })
	claims, err := signer.Parse(token)
	require.NoError(t, err)
	assert.Equal(t, hire.ID, claims.HireID)
	assert.Equal(t, client.ID, claims.ClientID)
}

func TestRunOnce_FailureDoesNotAbortBatch(t *testing.T) {
	db := helpers.NewTestDB(t)
	client := helpers.CreateClient(t, db)
	worker := helpers.CreateWorker(t, db)

	completedAt := time.Date(2026, 6, 1, 9, 0, 0, 0, time.UTC)
	bad := helpers.CreateHire(t, db, client, worker, helpers.Completed(completedAt))
	good := helpers.CreateHire(t, db, client, worker, helpers.Completed(completedAt.Add(time.Hour)))

	notifier := &mockNotifier{}
	notifier.On("SendReviewReminder", mock.Anything, mock.MatchedBy(func(r services.ReviewReminder) bool {
		return r.HireID == bad.ID
	})).Return(errors.New("smtp unavailable"))
	notifier.On("SendReviewReminder", mock.Anything, mock.Anything).Return(nil)

	w := newTestWorker(t, db, notifier, ReminderConfig{})
	summary, err := w.RunOnce(context.Background())
	require.NoError(t, err)
	assert.Equal(t, RunSummary{Candidates: 2, Attempted: 2, Sent: 1, Failed: 1}, summary)

	assert.False(t, helpers.ReloadHire(t, db, bad.ID).ReviewEmailSent)
	assert.True(t, helpers.ReloadHire(t, db, good.ID).ReviewEmailSent)

	// The failed hire stays eligible for the next run in its window.
	notifier.ExpectedCalls = nil
	notifier.On("SendReviewReminder", mock.Anything, mock.Anything).Return(nil)
	summary, err = w.RunOnce(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, summary.Sent)
	assert.True(t, helpers.ReloadHire(t, db, bad.ID).ReviewEmailSent)
}

func TestRunOnce_SkipsHiresWithoutClientEmail(t *testing.T) {
	db := helpers.NewTestDB(t)
	client := helpers.CreateClient(t, db)
	require.NoError(t, db.Model(&models.User{}).Where("id = ?", client.ID).Update("email", "").Error)
	worker := helpers.CreateWorker(t, db)
	hire := helpers.CreateHire(t, db, client, worker, helpers.Completed(time.Date(2026, 6, 1, 12, 0, 0, 0, time.UTC)))

	notifier := &mockNotifier{}
	w := newTestWorker(t, db, notifier, ReminderConfig{})

	summary, err := w.RunOnce(context.Background())
	require.NoError(t, err)
	assert.Equal(t, RunSummary{Candidates: 1, Skipped: 1}, summary)
	assert.False(t, helpers.ReloadHire(t, db, hire.ID).ReviewEmailSent)
	notifier.AssertNotCalled(t, "SendReviewReminder", mock.Anything, mock.Anything)
}

func TestRunOnce_RetryMissedPicksUpOlderHires(t *testing.T) {
	db := helpers.NewTestDB(t)
	client := helpers.CreateClient(t, db)
	worker := helpers.CreateWorker(t, db)

	missed := helpers.CreateHire(t, db, client, worker, helpers.Completed(time.Date(2026, 5, 29, 8, 0, 0, 0, time.UTC)))
	helpers.CreateHire(t, db, client, worker, helpers.Completed(time.Date(2026, 5, 20, 8, 0, 0, 0, time.UTC)))

	notifier := &mockNotifier{}
	notifier.On("SendReviewReminder", mock.Anything, mock.MatchedBy(func(r services.ReviewReminder) bool {
		return r.HireID == missed.ID
	})).Return(nil).Once()

	w := newTestWorker(t, db, notifier, ReminderConfig{RetryMissed: true})
	summary, err := w.RunOnce(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, summary.Sent)
	notifier.AssertExpectations(t)
}

// gatedNotifier holds every send open until gate is closed.
type gatedNotifier struct {
	calls   atomic.Int32
	entered chan string
	gate    chan struct{}
}

func (n *gatedNotifier) SendReviewReminder(ctx context.Context, r services.ReviewReminder) error {
	n.calls.Add(1)
	n.entered <- r.HireID
	<-n.gate
	return nil
}

func (n *gatedNotifier) NotifyHireCreated(context.Context, services.HireCreatedNotice) error {
	return nil
}

func TestRunOnce_OverlappingRunsSendOnce(t *testing.T) {
	db := helpers.NewTestDB(t)
	client := helpers.CreateClient(t, db)
	worker := helpers.CreateWorker(t, db)
	hire := helpers.CreateHire(t, db, client, worker, helpers.Completed(time.Date(2026, 6, 1, 10, 0, 0, 0, time.UTC)))

	notifier := &gatedNotifier{entered: make(chan string, 2), gate: make(chan struct{})}
	first := newTestWorker(t, db, notifier, ReminderConfig{})
	second := newTestWorker(t, db, notifier, ReminderConfig{})

	results := make(chan RunSummary, 2)
	run := func(w *ReviewReminderWorker) {
		summary, err := w.RunOnce(context.Background())
		assert.NoError(t, err)
		results <- summary
	}
	go run(first)
	go run(second)

	select {
	case id := <-notifier.entered:
		assert.Equal(t, hire.ID, id)
	case <-time.After(5 * time.Second):
		close(notifier.gate)
		t.Fatal("no run reached the notifier")
	}

	// The run not holding the send must finish without sending.
	var summaries []RunSummary
	select {
	case summary := <-results:
		summaries = append(summaries, summary)
	case <-time.After(5 * time.Second):
		close(notifier.gate)
		t.Fatal("second run blocked on the notifier")
	}
	assert.Zero(t, summaries[0].Sent)

	close(notifier.gate)
	summaries = append(summaries, <-results)

	assert.Equal(t, int32(1), notifier.calls.Load())
	assert.Equal(t, 1, summaries[0].Sent+summaries[1].Sent)
	assert.True(t, helpers.ReloadHire(t, db, hire.ID).ReviewEmailSent)
}

func TestRunOnce_ClaimedElsewhereIsNotCountedAsSent(t *testing.T) {
	db := helpers.NewTestDB(t)
	client := helpers.CreateClient(t, db)
	worker := helpers.CreateWorker(t, db)
	hire := helpers.CreateHire(t, db, client, worker, helpers.Completed(time.Date(2026, 6, 1, 10, 0, 0, 0, time.UTC)))

	notifier := &mockNotifier{}
	w := newTestWorker(t, db, notifier, ReminderConfig{})
	// Another process claims the hire after this run loaded its candidates.
	w.hireRepo = claimAfterLoad{HireRepository: w.hireRepo, db: db}

	summary, err := w.RunOnce(context.Background())
	require.NoError(t, err)
	assert.Equal(t, RunSummary{Candidates: 1, AlreadyClaimed: 1}, summary)
	assert.True(t, helpers.ReloadHire(t, db, hire.ID).ReviewEmailSent)
	notifier.AssertNotCalled(t, "SendReviewReminder", mock.Anything, mock.Anything)
}

type claimAfterLoad struct {
	repositories.HireRepository
	db *gorm.DB
}

func (r claimAfterLoad) FindReminderCandidates(db *gorm.DB, from, to time.Time) ([]models.Hire, error) {
	hires, err := r.HireRepository.FindReminderCandidates(db, from, to)
	for _, h := range hires {
		if _, claimErr := r.HireRepository.ClaimReviewReminder(r.db, h.ID, runAt); claimErr != nil {
			return nil, claimErr
		}
	}
	return hires, err
}
