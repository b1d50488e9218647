package models

import (
	"time"

	"gorm.io/datatypes"
)

const (
	NotificationTypeNewHire = "new_hire"
)

type Notification struct {
	BaseModel
	UserID  string         `gorm:"type:varchar(36);not null;index" json:"user_id"`
	Type    string         `gorm:"not null" json:"type"`
	Title   string         `gorm:"not null" json:"title"`
	Message string         `json:"message"`
	Data    datatypes.JSON `json:"data,omitempty"`
	IsRead  bool           `gorm:"not null;default:false" json:"is_read"`
	ReadAt  *time.Time     `json:"read_at,omitempty"`
}
