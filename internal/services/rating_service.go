package services

import (
	"errors"
	"math"

	"bilca_backend/internal/repositories"
	"bilca_backend/pkg/apperrors"

	"gorm.io/gorm"
)

// RatingService keeps users.rating and users.total_jobs in sync with the reviews table.
type RatingService interface {
	Recompute(db *gorm.DB, workerID string) (float64, int, error)
}

type ratingService struct {
	reviewRepo repositories.ReviewRepository
	userRepo   repositories.UserRepository
}

func NewRatingService(reviewRepo repositories.ReviewRepository, userRepo repositories.UserRepository) RatingService {
	return &ratingService{reviewRepo: reviewRepo, userRepo: userRepo}
}

// Recompute derives the aggregate from every stored review.
func (s *ratingService) Recompute(db *gorm.DB, workerID string) (float64, int, error) {
	stats, err := s.reviewRepo.GetWorkerRatingStats(db, workerID)
	if err != nil {
		return 0, 0, apperrors.InternalError(err)
	}

	rating := RoundRating(stats.AverageRating)
	totalJobs := int(stats.TotalReviews)
	if totalJobs == 0 {
		rating = 0
	}

	if err := s.userRepo.UpdateRatingStats(db, workerID, rating, totalJobs); err != nil {
		if errors.Is(err, repositories.ErrUserNotFound) {
			return 0, 0, apperrors.ErrWorkerNotFound
		}
		return 0, 0, apperrors.InternalError(err)
	}
	return rating, totalJobs, nil
}

// RoundRating rounds a mean to one decimal place.
func RoundRating(avg float64) float64 {
	return math.Round(avg*10) / 10
}
