package models

import "time"

type Hire struct {
	BaseModel
	ClientID    string     `gorm:"type:varchar(36);not null;index:idx_hires_client_worker,priority:1" json:"client_id"`
	WorkerID    string     `gorm:"type:varchar(36);not null;index:idx_hires_client_worker,priority:2;index:idx_hires_worker_status,priority:1" json:"worker_id"`
	Service     string     `gorm:"not null" json:"service"`
	Description string     `gorm:"type:text;not null" json:"description"`
	Budget      *float64   `json:"budget,omitempty"`
	Status      HireStatus `gorm:"type:varchar(20);not null;default:'pending';index:idx_hires_worker_status,priority:2" json:"status"`

	WorkerCompleted bool       `gorm:"not null;default:false" json:"worker_completed"`
	ClientCompleted bool       `gorm:"not null;default:false" json:"client_completed"`
	CompletedAt     *time.Time `gorm:"index:idx_hires_completed_reminder,priority:1" json:"completed_at,omitempty"`

	ReviewEmailSent bool       `gorm:"not null;default:false;index:idx_hires_completed_reminder,priority:2" json:"review_email_sent"`
	ReviewSentAt    *time.Time `json:"review_sent_at,omitempty"`

	// Embedded review. ReviewedAt != nil marks the hire as reviewed and the
	// review token as consumed.
	ReviewRating  *int       `json:"-"`
	ReviewComment string     `gorm:"type:text" json:"-"`
	ReviewedAt    *time.Time `json:"-"`

	Client *User `gorm:"foreignKey:ClientID" json:"client,omitempty"`
	Worker *User `gorm:"foreignKey:WorkerID" json:"worker,omitempty"`
}

// HireReview is the client-facing shape of the embedded review.
type HireReview struct {
	Rating     int       `json:"rating"`
	Comment    string    `json:"comment"`
	ReviewedAt time.Time `json:"reviewed_at"`
}

// Review returns the embedded review, or nil when the hire has not been reviewed.
func (h *Hire) Review() *HireReview {
	if h.ReviewedAt == nil || h.ReviewRating == nil {
		return nil
	}
	return &HireReview{Rating: *h.ReviewRating, Comment: h.ReviewComment, ReviewedAt: *h.ReviewedAt}
}

func (h *Hire) IsReviewed() bool {
	return h.ReviewedAt != nil
}

func (h *Hire) IsParty(userID string) bool {
	return userID != "" && (h.ClientID == userID || h.WorkerID == userID)
}
