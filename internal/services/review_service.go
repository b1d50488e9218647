package services

import (
	"errors"
	"strings"
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
	MaxReviewCommentLength = 500
	defaultReviewPageSize  = 10
	maxReviewPageSize      = 50
)

type ReviewService interface {
	ValidateToken(db *gorm.DB, token string) (*dto.ReviewTokenValidationResponse, error)
	SubmitReview(db *gorm.DB, req *dto.SubmitReviewRequest) (*dto.SubmitReviewResponse, error)
	GetWorkerReviews(db *gorm.DB, workerID string, page, limit int) (*dto.WorkerReviewsResponse, error)
}

type reviewService struct {
	tokens     ReviewTokenService
	hireRepo   repositories.HireRepository
	reviewRepo repositories.ReviewRepository
	ratings    RatingService
}

func NewReviewService(
	tokens ReviewTokenService,
	hireRepo repositories.HireRepository,
	reviewRepo repositories.ReviewRepository,
	ratings RatingService,
) ReviewService {
	return &reviewService{
		tokens:     tokens,
		hireRepo:   hireRepo,
		reviewRepo: reviewRepo,
		ratings:    ratings,
	}
}

func (s *reviewService) ValidateToken(db *gorm.DB, token string) (*dto.ReviewTokenValidationResponse, error) {
	validated, err := s.tokens.Validate(db, token)
	if err != nil {
		return nil, err
	}
	return validated.Summary, nil
}

func (s *reviewService) SubmitReview(db *gorm.DB, req *dto.SubmitReviewRequest) (*dto.SubmitReviewResponse, error) {
	comment := strings.TrimSpace(req.Comment)
	if err := validateReviewInput(req.Rating, comment); err != nil {
		return nil, err
	}

	tx := db.Begin()
	if tx.Error != nil {
		return nil, apperrors.InternalError(tx.Error)
	}
	defer tx.Rollback()

	validated, err := s.tokens.Validate(tx, req.Token)
	if err != nil {
		return nil, err
	}
	hire := validated.Hire
	// reviewed_at uses the same instant the window was checked at.
	now := validated.CheckedAt

	recorded, err := s.hireRepo.RecordReview(tx, hire.ID, req.Rating, comment, now)
	if err != nil {
		return nil, apperrors.InternalError(err)
	}
	if !recorded {
		return nil, apperrors.ErrAlreadyReviewed
	}

	review := &models.Review{
		HireID:   hire.ID,
		WorkerID: hire.WorkerID,
		UserID:   hire.ClientID,
		Rating:   req.Rating,
		Comment:  comment,
	}
	if err := s.reviewRepo.Create(tx, review); err != nil {
		if errors.Is(err, repositories.ErrReviewAlreadyExists) {
			return nil, apperrors.ErrAlreadyReviewed
		}
		return nil, apperrors.InternalError(err)
	}

	if err := tx.Commit().Error; err != nil {
		return nil, apperrors.InternalError(err)
	}
	metrics.IncReviewSubmitted()

	if _, _, err := s.ratings.Recompute(db, hire.WorkerID); err != nil {
		metrics.IncRatingRecomputeFailure()
		logger.CtxWithError(dbContext(db), "Failed to recompute worker rating", err, "worker_id", hire.WorkerID, "hire_id", hire.ID)
	}

	return &dto.SubmitReviewResponse{
		Message: "Thank you for your review!",
		Review: models.HireReview{
			Rating:     req.Rating,
			Comment:    comment,
			ReviewedAt: now,
		},
	}, nil
}

func (s *reviewService) GetWorkerReviews(db *gorm.DB, workerID string, page, limit int) (*dto.WorkerReviewsResponse, error) {
	if page <= 0 {
		page = 1
	}
	if limit <= 0 {
		limit = defaultReviewPageSize
	}
	if limit > maxReviewPageSize {
		limit = maxReviewPageSize
	}

	reviews, total, err := s.reviewRepo.FindByWorker(db, workerID, limit, (page-1)*limit)
	if err != nil {
		return nil, apperrors.InternalError(err)
	}

	items := make([]*dto.ReviewResponse, 0, len(reviews))
	for i := range reviews {
		items = append(items, dto.NewReviewResponse(&reviews[i]))
	}

	totalPages := dto.TotalPages(total, limit)
	return &dto.WorkerReviewsResponse{
		Reviews: items,
		Pagination: dto.ReviewPagination{
			CurrentPage:  page,
			TotalPages:   totalPages,
			TotalReviews: total,
			HasNext:      page < totalPages,
			HasPrev:      page > 1,
		},
	}, nil
}

func validateReviewInput(rating int, comment string) error {
	details := map[string]string{}
	if rating < 1 || rating > 5 {
		details["rating"] = "Rating must be between 1 and 5"
	}
	if utf8.RuneCountInString(comment) > MaxReviewCommentLength {
		details["comment"] = "Comment must be at most 500 characters"
	}
	if len(details) > 0 {
		return apperrors.ValidationError(details)
	}
	return nil
}
