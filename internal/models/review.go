package models

type Review struct {
	BaseModel
	HireID   string `gorm:"type:varchar(36);not null;uniqueIndex" json:"hire_id"`
	WorkerID string `gorm:"type:varchar(36);not null;index" json:"worker_id"`
	UserID   string `gorm:"type:varchar(36);not null;index" json:"user_id"`
	Rating   int    `gorm:"not null;check:chk_reviews_rating,rating >= 1 AND rating <= 5" json:"rating"`
	Comment  string `gorm:"type:text" json:"comment"`

	User *User `gorm:"foreignKey:UserID" json:"user,omitempty"`
}
