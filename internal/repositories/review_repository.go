package repositories

import (
	"errors"

	"bilca_backend/internal/models"

	"gorm.io/gorm"
)

var (
	ErrReviewNotFound      = errors.New("review not found")
	ErrReviewAlreadyExists = errors.New("review already exists for this hire")
)

type ReviewRepository interface {
	Create(db *gorm.DB, review *models.Review) error
	FindByHire(db *gorm.DB, hireID string) (*models.Review, error)
	FindByWorker(db *gorm.DB, workerID string, limit, offset int) ([]models.Review, int64, error)
	GetWorkerRatingStats(db *gorm.DB, workerID string) (*RatingStats, error)
}

type ReviewRepositoryImpl struct{}

// RatingStats is the aggregate over all of a worker's reviews.
type RatingStats struct {
	TotalReviews  int64   `json:"total_reviews"`
	AverageRating float64 `json:"average_rating"`
}

func NewReviewRepository() ReviewRepository {
	return &ReviewRepositoryImpl{}
}

func (r *ReviewRepositoryImpl) Create(db *gorm.DB, review *models.Review) error {
	if review.Rating < 1 || review.Rating > 5 {
		return errors.New("rating must be between 1 and 5")
	}
	if err := db.Create(review).Error; err != nil {
		if isUniqueViolation(err) {
			return ErrReviewAlreadyExists
		}
		return err
	}
	return nil
}

func (r *ReviewRepositoryImpl) FindByHire(db *gorm.DB, hireID string) (*models.Review, error) {
	var review models.Review
	if err := db.Where("hire_id = ?", hireID).First(&review).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrReviewNotFound
		}
		return nil, err
	}
	return &review, nil
}

func (r *ReviewRepositoryImpl) FindByWorker(db *gorm.DB, workerID string, limit, offset int) ([]models.Review, int64, error) {
	var reviews []models.Review
	var total int64

	query := db.Model(&models.Review{}).Where("worker_id = ?", workerID).Session(&gorm.Session{})
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	err := query.Preload("User").
		Order("created_at DESC").
		Limit(limit).Offset(offset).
		Find(&reviews).Error
	return reviews, total, err
}

func (r *ReviewRepositoryImpl) GetWorkerRatingStats(db *gorm.DB, workerID string) (*RatingStats, error) {
	var stats RatingStats
	err := db.Model(&models.Review{}).Where("worker_id = ?", workerID).
		Select("COUNT(*) AS total_reviews, COALESCE(AVG(rating), 0) AS average_rating").
		Scan(&stats).Error
	if err != nil {
		return nil, err
	}
	return &stats, nil
}
