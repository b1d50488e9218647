package repositories

import (
	"errors"
	"time"

	"bilca_backend/internal/models"

	"gorm.io/gorm"
)

var (
	ErrHireNotFound = errors.New("hire not found")
)

// HireRepository performs every state change as a single conditional UPDATE.
// The bool result reports whether the row matched the precondition.
type HireRepository interface {
	Create(db *gorm.DB, hire *models.Hire) error
	FindByID(db *gorm.DB, id string) (*models.Hire, error)
	FindByIDWithParties(db *gorm.DB, id string) (*models.Hire, error)
	FindForUser(db *gorm.DB, userID string, limit, offset int) ([]models.Hire, int64, error)
	FindCompletedForClient(db *gorm.DB, clientID string, limit, offset int) ([]models.Hire, int64, error)

	TransitionStatus(db *gorm.DB, id string, from []models.HireStatus, to models.HireStatus) (bool, error)
	MarkWorkerCompleted(db *gorm.DB, id string, now time.Time) (bool, error)
	ConfirmClientCompletion(db *gorm.DB, id string, now time.Time) (bool, error)
	RecordReview(db *gorm.DB, id string, rating int, comment string, now time.Time) (bool, error)

	FindReminderCandidates(db *gorm.DB, from, to time.Time) ([]models.Hire, error)
	ClaimReviewReminder(db *gorm.DB, id string, now time.Time) (bool, error)
	ReleaseReviewReminder(db *gorm.DB, id string) (bool, error)
}

type HireRepositoryImpl struct{}

func NewHireRepository() HireRepository {
	return &HireRepositoryImpl{}
}

func (r *HireRepositoryImpl) Create(db *gorm.DB, hire *models.Hire) error {
	return db.Create(hire).Error
}

func (r *HireRepositoryImpl) FindByID(db *gorm.DB, id string) (*models.Hire, error) {
	var hire models.Hire
	if err := db.First(&hire, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrHireNotFound
		}
		return nil, err
	}
	return &hire, nil
}

func (r *HireRepositoryImpl) FindByIDWithParties(db *gorm.DB, id string) (*models.Hire, error) {
	var hire models.Hire
	err := db.Preload("Client").Preload("Worker").First(&hire, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrHireNotFound
		}
		return nil, err
	}
	return &hire, nil
}

func (r *HireRepositoryImpl) FindForUser(db *gorm.DB, userID string, limit, offset int) ([]models.Hire, int64, error) {
	var hires []models.Hire
	var total int64

	query := db.Model(&models.Hire{}).
		Where("client_id = ? OR worker_id = ?", userID, userID).
		Session(&gorm.Session{})
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	err := query.Preload("Client").Preload("Worker").
		Order("created_at DESC").
		Limit(limit).Offset(offset).
		Find(&hires).Error
	return hires, total, err
}

func (r *HireRepositoryImpl) FindCompletedForClient(db *gorm.DB, clientID string, limit, offset int) ([]models.Hire, int64, error) {
	var hires []models.Hire
	var total int64

	query := db.Model(&models.Hire{}).
		Where("client_id = ? AND status = ?", clientID, models.HireStatusCompleted).
		Session(&gorm.Session{})
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	err := query.Preload("Worker").
		Order("completed_at DESC").
		Limit(limit).Offset(offset).
		Find(&hires).Error
	return hires, total, err
}

func (r *HireRepositoryImpl) TransitionStatus(db *gorm.DB, id string, from []models.HireStatus, to models.HireStatus) (bool, error) {
	query := db.Model(&models.Hire{}).Where("id = ? AND status IN ?", id, from)
	if to == models.HireStatusRejected {
		// A worker who already finished cannot back out of the job.
		query = query.Where("worker_completed = ?", false)
	}
	res := query.Update("status", to)
	return res.RowsAffected == 1, res.Error
}

// MarkWorkerCompleted flips worker_completed once. If the client already
// confirmed, the same statement completes the hire, so exactly one caller
// ever writes completed_at.
func (r *HireRepositoryImpl) MarkWorkerCompleted(db *gorm.DB, id string, now time.Time) (bool, error) {
	res := db.Model(&models.Hire{}).
		Where("id = ? AND status = ? AND worker_completed = ?", id, models.HireStatusAccepted, false).
		Updates(map[string]interface{}{
			"worker_completed": true,
			"status":           gorm.Expr("CASE WHEN client_completed = ? THEN ? ELSE status END", true, models.HireStatusCompleted),
			"completed_at":     gorm.Expr("CASE WHEN client_completed = ? THEN ? ELSE completed_at END", true, now),
		})
	return res.RowsAffected == 1, res.Error
}

// ConfirmClientCompletion requires the worker side to be done, so a match
// always completes the hire.
func (r *HireRepositoryImpl) ConfirmClientCompletion(db *gorm.DB, id string, now time.Time) (bool, error) {
	res := db.Model(&models.Hire{}).
		Where("id = ? AND status = ? AND worker_completed = ? AND client_completed = ?",
			id, models.HireStatusAccepted, true, false).
		Updates(map[string]interface{}{
			"client_completed": true,
			"status":           models.HireStatusCompleted,
			"completed_at":     now,
		})
	return res.RowsAffected == 1, res.Error
}

// RecordReview writes the embedded review if and only if none exists yet.
func (r *HireRepositoryImpl) RecordReview(db *gorm.DB, id string, rating int, comment string, now time.Time) (bool, error) {
	res := db.Model(&models.Hire{}).
		Where("id = ? AND status = ? AND completed_at IS NOT NULL AND reviewed_at IS NULL", id, models.HireStatusCompleted).
		Updates(map[string]interface{}{
			"review_rating":  rating,
			"review_comment": comment,
			"reviewed_at":    now,
		})
	return res.RowsAffected == 1, res.Error
}

// FindReminderCandidates returns completed, unnotified hires with completed_at in [from, to).
func (r *HireRepositoryImpl) FindReminderCandidates(db *gorm.DB, from, to time.Time) ([]models.Hire, error) {
	var hires []models.Hire
	err := db.Preload("Client").Preload("Worker").
		Where("status = ? AND worker_completed = ? AND client_completed = ?",
			models.HireStatusCompleted, true, true).
		Where("review_email_sent = ?", false).
		Where("completed_at >= ? AND completed_at < ?", from, to).
		Order("completed_at ASC").
		Find(&hires).Error
	return hires, err
}

// ClaimReviewReminder sets review_email_sent before the email goes out. Only
// the caller that flips the flag may send.
func (r *HireRepositoryImpl) ClaimReviewReminder(db *gorm.DB, id string, now time.Time) (bool, error) {
	res := db.Model(&models.Hire{}).
		Where("id = ? AND review_email_sent = ?", id, false).
		Updates(map[string]interface{}{
			"review_email_sent": true,
			"review_sent_at":    now,
		})
	return res.RowsAffected == 1, res.Error
}

// ReleaseReviewReminder undoes a claim whose send failed so a later run can retry.
func (r *HireRepositoryImpl) ReleaseReviewReminder(db *gorm.DB, id string) (bool, error) {
	res := db.Model(&models.Hire{}).
		Where("id = ? AND review_email_sent = ?", id, true).
		Updates(map[string]interface{}{
			"review_email_sent": false,
			"review_sent_at":    nil,
		})
	return res.RowsAffected == 1, res.Error
}
