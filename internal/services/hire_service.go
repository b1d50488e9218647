package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"bilca_backend/internal/logger"
	"bilca_backend/internal/metrics"
	"bilca_backend/internal/models"
	"bilca_backend/internal/repositories"
	"bilca_backend/internal/services/dto"
	"bilca_backend/pkg/apperrors"

	"gorm.io/gorm"
)

const (
	MaxHireServiceLength     = 120
	MaxHireDescriptionLength = 1000
	maxHirePageSize          = 50
)

type HireService interface {
	CreateHire(db *gorm.DB, clientID string, req *dto.CreateHireRequest) (*dto.HireResponse, error)
	GetHire(db *gorm.DB, hireID, userID string) (*dto.HireResponse, error)
	GetHires(db *gorm.DB, userID string, page, limit int) (*dto.PaginatedResponse, error)
	GetCompletedHires(db *gorm.DB, clientID string, page, limit int) (*dto.PaginatedResponse, error)

	UpdateStatus(db *gorm.DB, hireID, actorID string, status models.HireStatus) (*dto.HireResponse, error)
	MarkWorkerCompleted(db *gorm.DB, hireID, actorID string) (*dto.HireResponse, error)
	ConfirmClientCompletion(db *gorm.DB, hireID, actorID string) (*dto.HireResponse, error)
}

type HireServiceConfig struct {
	DefaultListLimit      int
	DefaultCompletedLimit int
	NotifyTimeout         time.Duration
}

type hireService struct {
	hireRepo      repositories.HireRepository
	userRepo      repositories.UserRepository
	notifications NotificationService
	notifier      Notifier
	policy        EntitlementPolicy
	cfg           HireServiceConfig
	now           func() time.Time
}

func NewHireService(
	hireRepo repositories.HireRepository,
	userRepo repositories.UserRepository,
	notifications NotificationService,
	notifier Notifier,
	policy EntitlementPolicy,
	cfg HireServiceConfig,
) HireService {
	if notifier == nil {
		notifier = NopNotifier{}
	}
	if policy == nil {
		policy = NewTierEntitlementPolicy("")
	}
	if cfg.DefaultListLimit <= 0 {
		cfg.DefaultListLimit = 3
	}
	if cfg.DefaultCompletedLimit <= 0 {
		cfg.DefaultCompletedLimit = 6
	}
	if cfg.NotifyTimeout <= 0 {
		cfg.NotifyTimeout = 15 * time.Second
	}
	return &hireService{
		hireRepo:      hireRepo,
		userRepo:      userRepo,
		notifications: notifications,
		notifier:      notifier,
		policy:        policy,
		cfg:           cfg,
		now:           func() time.Time { return time.Now().UTC() },
	}
}

// ---------------- Creation and queries ----------------

func (s *hireService) CreateHire(db *gorm.DB, clientID string, req *dto.CreateHireRequest) (*dto.HireResponse, error) {
	workerID := strings.TrimSpace(req.WorkerID)
	service := strings.TrimSpace(req.Service)
	description := strings.TrimSpace(req.Description)
	if err := validateHireInput(clientID, workerID, service, description, req.Budget); err != nil {
		return nil, err
	}

	client, err := s.userRepo.FindByID(db, clientID)
	if err != nil {
		if errors.Is(err, repositories.ErrUserNotFound) {
			return nil, apperrors.ErrOnlyClientsCanHire
		}
		return nil, apperrors.InternalError(err)
	}
	if client.Role != models.UserRoleClient {
		return nil, apperrors.ErrOnlyClientsCanHire
	}
	if err := s.policy.CanCreateHire(client); err != nil {
		return nil, err
	}

	worker, err := s.userRepo.FindByID(db, workerID)
	if err != nil {
		if errors.Is(err, repositories.ErrUserNotFound) {
			return nil, apperrors.ErrWorkerNotFound
		}
		return nil, apperrors.InternalError(err)
	}
	if worker.Role != models.UserRoleWorker {
		return nil, apperrors.ErrWorkerNotFound
	}

	tx := db.Begin()
	if tx.Error != nil {
		return nil, apperrors.InternalError(tx.Error)
	}
	defer tx.Rollback()

	hire := &models.Hire{
		ClientID:    client.ID,
		WorkerID:    worker.ID,
		Service:     service,
		Description: description,
		Budget:      req.Budget,
		Status:      models.HireStatusPending,
	}
	if err := s.hireRepo.Create(tx, hire); err != nil {
		return nil, apperrors.InternalError(err)
	}
	if err := tx.Commit().Error; err != nil {
		return nil, apperrors.InternalError(err)
	}
	metrics.ObserveHireTransition("create", "ok")

	hire.Client = client
	hire.Worker = worker
	s.announceHire(db, hire)

	return dto.NewHireResponse(hire), nil
}

// announceHire writes the in-app notice and emails the worker. Neither
// failure reaches the caller.
func (s *hireService) announceHire(db *gorm.DB, hire *models.Hire) {
	ctx := dbContext(db)

	if s.notifications != nil {
		if err := s.notifications.NotifyNewHire(db, hire, hire.Client.Name); err != nil {
			logger.CtxWithError(ctx, "Failed to create hire notification", err, "hire_id", hire.ID)
		}
	}

	notice := HireCreatedNotice{
		HireID:      hire.ID,
		WorkerID:    hire.WorkerID,
		WorkerEmail: hire.Worker.Email,
		WorkerName:  hire.Worker.Name,
		ClientName:  hire.Client.Name,
		Service:     hire.Service,
		Description: hire.Description,
	}
	go func() {
		sendCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), s.cfg.NotifyTimeout)
		defer cancel()
		if err := s.notifier.NotifyHireCreated(sendCtx, notice); err != nil {
			logger.CtxWithError(sendCtx, "Failed to send hire created email", err, "hire_id", notice.HireID)
		}
	}()
}

func (s *hireService) GetHire(db *gorm.DB, hireID, userID string) (*dto.HireResponse, error) {
	hire, err := s.hireRepo.FindByIDWithParties(db, hireID)
	if err != nil {
		return nil, handleHireError(err)
	}
	if !hire.IsParty(userID) {
		return nil, apperrors.ErrNotHireParty
	}
	return dto.NewHireResponse(hire), nil
}

func (s *hireService) GetHires(db *gorm.DB, userID string, page, limit int) (*dto.PaginatedResponse, error) {
	page, limit = normalizePage(page, limit, s.cfg.DefaultListLimit)
	hires, total, err := s.hireRepo.FindForUser(db, userID, limit, (page-1)*limit)
	if err != nil {
		return nil, apperrors.InternalError(err)
	}
	return dto.NewPaginatedResponse(dto.NewHireResponses(hires), total, page, limit), nil
}

func (s *hireService) GetCompletedHires(db *gorm.DB, clientID string, page, limit int) (*dto.PaginatedResponse, error) {
	page, limit = normalizePage(page, limit, s.cfg.DefaultCompletedLimit)
	hires, total, err := s.hireRepo.FindCompletedForClient(db, clientID, limit, (page-1)*limit)
	if err != nil {
		return nil, apperrors.InternalError(err)
	}
	return dto.NewPaginatedResponse(dto.NewHireResponses(hires), total, page, limit), nil
}

// ---------------- Lifecycle ----------------

// UpdateStatus lets the assigned worker accept or reject a hire. Rejection
// is allowed from pending, and from accepted until the worker marks the job done.
func (s *hireService) UpdateStatus(db *gorm.DB, hireID, actorID string, status models.HireStatus) (*dto.HireResponse, error) {
	var from []models.HireStatus
	switch status {
	case models.HireStatusAccepted:
		from = []models.HireStatus{models.HireStatusPending}
	case models.HireStatusRejected:
		from = []models.HireStatus{models.HireStatusPending, models.HireStatusAccepted}
	default:
		return nil, apperrors.ValidationError(map[string]string{
			"status": "Status must be one of: accepted, rejected",
		})
	}

	hire, err := s.hireRepo.FindByID(db, hireID)
	if err != nil {
		return nil, handleHireError(err)
	}
	if hire.WorkerID != actorID {
		return nil, apperrors.ErrNotHireWorker
	}

	op := "status_" + string(status)
	return s.transition(db, hireID, op, func(tx *gorm.DB) (bool, error) {
		return s.hireRepo.TransitionStatus(tx, hireID, from, status)
	}, func(current *models.Hire) string {
		if current.Status == models.HireStatusAccepted && current.WorkerCompleted {
			return "Cannot reject a job that has already been marked as completed"
		}
		return fmt.Sprintf("Cannot change status from %s to %s", current.Status, status)
	})
}

func (s *hireService) MarkWorkerCompleted(db *gorm.DB, hireID, actorID string) (*dto.HireResponse, error) {
	hire, err := s.hireRepo.FindByID(db, hireID)
	if err != nil {
		return nil, handleHireError(err)
	}
	if hire.WorkerID != actorID {
		return nil, apperrors.ErrNotHireWorker
	}

	return s.transition(db, hireID, "worker_completed", func(tx *gorm.DB) (bool, error) {
		return s.hireRepo.MarkWorkerCompleted(tx, hireID, s.now())
	}, func(current *models.Hire) string {
		if current.WorkerCompleted {
			return "You have already marked this job as completed"
		}
		return fmt.Sprintf("Job is not accepted (current status: %s)", current.Status)
	})
}

func (s *hireService) ConfirmClientCompletion(db *gorm.DB, hireID, actorID string) (*dto.HireResponse, error) {
	hire, err := s.hireRepo.FindByID(db, hireID)
	if err != nil {
		return nil, handleHireError(err)
	}
	if hire.ClientID != actorID {
		return nil, apperrors.ErrNotHireClient
	}

	return s.transition(db, hireID, "client_confirmed", func(tx *gorm.DB) (bool, error) {
		return s.hireRepo.ConfirmClientCompletion(tx, hireID, s.now())
	}, func(current *models.Hire) string {
		switch {
		case current.ClientCompleted:
			return "You have already confirmed completion of this job"
		case current.Status != models.HireStatusAccepted:
			return fmt.Sprintf("Job is not accepted (current status: %s)", current.Status)
		default:
			return "The worker has not marked the job as completed yet"
		}
	})
}

// transition runs one conditional update in a transaction. When the row no
// longer matches, the current state is reloaded to explain the conflict.
func (s *hireService) transition(
	db *gorm.DB,
	hireID, op string,
	apply func(tx *gorm.DB) (bool, error),
	explain func(current *models.Hire) string,
) (*dto.HireResponse, error) {
	tx := db.Begin()
	if tx.Error != nil {
		return nil, apperrors.InternalError(tx.Error)
	}
	defer tx.Rollback()

	ok, err := apply(tx)
	if err != nil {
		metrics.ObserveHireTransition(op, "error")
		return nil, apperrors.InternalError(err)
	}
	if !ok {
		metrics.ObserveHireTransition(op, "conflict")
		current, err := s.hireRepo.FindByID(tx, hireID)
		if err != nil {
			return nil, handleHireError(err)
		}
		return nil, apperrors.ErrStateConflict("hire", explain(current))
	}
	if err := tx.Commit().Error; err != nil {
		metrics.ObserveHireTransition(op, "error")
		return nil, apperrors.InternalError(err)
	}
	metrics.ObserveHireTransition(op, "ok")

	updated, err := s.hireRepo.FindByIDWithParties(db, hireID)
	if err != nil {
		return nil, handleHireError(err)
	}
	return dto.NewHireResponse(updated), nil
}

func validateHireInput(clientID, workerID, service, description string, budget *float64) error {
	details := map[string]string{}
	if workerID == "" {
		details["worker_id"] = "Worker is required"
	} else if workerID == clientID {
		details["worker_id"] = "You cannot hire yourself"
	}
	switch {
	case service == "":
		details["service"] = "Service is required"
	case utf8.RuneCountInString(service) > MaxHireServiceLength:
		details["service"] = fmt.Sprintf("Service must be at most %d characters", MaxHireServiceLength)
	}
	switch {
	case description == "":
		details["description"] = "Description is required"
	case utf8.RuneCountInString(description) > MaxHireDescriptionLength:
		details["description"] = fmt.Sprintf("Description must be at most %d characters", MaxHireDescriptionLength)
	}
	if budget != nil && *budget < 0 {
		details["budget"] = "Budget cannot be negative"
	}
	if len(details) > 0 {
		return apperrors.ValidationError(details)
	}
	return nil
}

func normalizePage(page, limit, defaultLimit int) (int, int) {
	if page <= 0 {
		page = 1
	}
	if limit <= 0 {
		limit = defaultLimit
	}
	if limit > maxHirePageSize {
		limit = maxHirePageSize
	}
	return page, limit
}

func handleHireError(err error) error {
	if errors.Is(err, repositories.ErrHireNotFound) {
		return apperrors.ErrHireNotFound
	}
	return apperrors.InternalError(err)
}
