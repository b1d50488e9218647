package models

// User is owned by the profile service. This module writes only Rating and
// TotalJobs.
type User struct {
	BaseModel
	Name             string   `gorm:"not null" json:"name"`
	Email            string   `gorm:"uniqueIndex;not null" json:"email"`
	PasswordHash     string   `gorm:"not null" json:"-"`
	Role             UserRole `gorm:"type:varchar(20);not null;index" json:"role"`
	Photo            string   `json:"photo,omitempty"`
	SubscriptionTier string   `gorm:"type:varchar(20);default:'free'" json:"subscription_tier"`
	Rating           float64  `gorm:"default:0" json:"rating"`
	TotalJobs        int      `gorm:"default:0" json:"total_jobs"`
}
