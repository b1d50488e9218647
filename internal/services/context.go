package services

import (
	"context"

	"gorm.io/gorm"
)

// dbContext returns the request context carried by a session from DBMiddleware.
func dbContext(db *gorm.DB) context.Context {
	if db != nil && db.Statement != nil && db.Statement.Context != nil {
		return db.Statement.Context
	}
	return context.Background()
}
