package services

import (
	"errors"
	"time"

	"bilca_backend/internal/auth"
	"bilca_backend/internal/metrics"
	"bilca_backend/internal/models"
	"bilca_backend/internal/repositories"
	"bilca_backend/internal/services/dto"
	"bilca_backend/pkg/apperrors"

	"gorm.io/gorm"
)

const DefaultServiceLabel = "Service"

// ValidatedReviewToken is a token that passed every check against the current hire row.
type ValidatedReviewToken struct {
	Claims    *auth.ReviewClaims
	Hire      *models.Hire
	Summary   *dto.ReviewTokenValidationResponse
	CheckedAt time.Time // the instant the review window was checked at
}

// ReviewTokenService binds stateless review tokens to hire state. A token is
// spent once the hire carries reviewed_at.
type ReviewTokenService interface {
	Issue(hireID, clientID string) (string, error)
	Validate(db *gorm.DB, token string) (*ValidatedReviewToken, error)
}

type reviewTokenService struct {
	signer         *auth.ReviewTokenSigner
	hireRepo       repositories.HireRepository
	window         time.Duration
	defaultService string
	now            func() time.Time
}

func NewReviewTokenService(
	signer *auth.ReviewTokenSigner,
	hireRepo repositories.HireRepository,
	window time.Duration,
	defaultService string,
) ReviewTokenService {
	if defaultService == "" {
		defaultService = DefaultServiceLabel
	}
	return &reviewTokenService{
		signer:         signer,
		hireRepo:       hireRepo,
		window:         window,
		defaultService: defaultService,
		now:            func() time.Time { return time.Now().UTC() },
	}
}

func (s *reviewTokenService) Issue(hireID, clientID string) (string, error) {
	token, err := s.signer.Issue(hireID, clientID)
	if err != nil {
		return "", apperrors.InternalError(err)
	}
	return token, nil
}

// Validate checks, in order: signature and expiry, hire ownership, prior
// review, completion, and the review window measured from completed_at.
func (s *reviewTokenService) Validate(db *gorm.DB, token string) (*ValidatedReviewToken, error) {
	claims, err := s.signer.Parse(token)
	if err != nil {
		if errors.Is(err, auth.ErrReviewTokenExpired) {
			metrics.ObserveReviewTokenRejected("expired")
			return nil, apperrors.ErrReviewTokenExpired
		}
		metrics.ObserveReviewTokenRejected("invalid")
		return nil, apperrors.ErrInvalidReviewToken.WithError(err)
	}

	hire, err := s.hireRepo.FindByIDWithParties(db, claims.HireID)
	if err != nil {
		if errors.Is(err, repositories.ErrHireNotFound) {
			metrics.ObserveReviewTokenRejected("invalid")
			return nil, apperrors.ErrInvalidReviewToken
		}
		return nil, apperrors.InternalError(err)
	}
	if hire.ClientID != claims.ClientID {
		metrics.ObserveReviewTokenRejected("invalid")
		return nil, apperrors.ErrInvalidReviewToken
	}

	if hire.IsReviewed() {
		metrics.ObserveReviewTokenRejected("already_reviewed")
		return nil, apperrors.ErrAlreadyReviewed
	}
	if hire.CompletedAt == nil {
		metrics.ObserveReviewTokenRejected("not_completed")
		return nil, apperrors.ErrHireNotCompleted
	}
	now := s.now()
	if now.After(hire.CompletedAt.Add(s.window)) {
		metrics.ObserveReviewTokenRejected("window_closed")
		return nil, apperrors.ErrReviewWindowClosed
	}

	return &ValidatedReviewToken{
		Claims:    claims,
		Hire:      hire,
		Summary:   s.summarize(hire),
		CheckedAt: now,
	}, nil
}

func (s *reviewTokenService) summarize(hire *models.Hire) *dto.ReviewTokenValidationResponse {
	service := hire.Service
	if service == "" {
		service = s.defaultService
	}
	summary := dto.ReviewHireSummary{
		ID:          hire.ID,
		Worker:      dto.UserSummary{ID: hire.WorkerID},
		Service:     service,
		Description: hire.Description,
	}
	if hire.Worker != nil {
		summary.Worker.Name = hire.Worker.Name
		summary.Worker.Photo = hire.Worker.Photo
	}
	return &dto.ReviewTokenValidationResponse{Valid: true, Hire: summary}
}
