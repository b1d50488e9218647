package helpers

import (
	"fmt"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"bilca_backend/database"
	"bilca_backend/internal/models"

	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

var seq atomic.Int64

// NewTestDB opens an isolated in-memory SQLite database with every table migrated.
// A single connection serializes transactions.
func NewTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	name := strings.NewReplacer("/", "_", " ", "_", "#", "_").Replace(t.Name())
	dsn := fmt.Sprintf("file:%s_%d?mode=memory&cache=shared", name, seq.Add(1))

	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		TranslateError: true,
		NowFunc:        func() time.Time { return time.Now().UTC() },
		Logger:         gormlogger.Default.LogMode(gormlogger.Silent),
	})
	require.NoError(t, err, "open sqlite")

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	require.NoError(t, database.AutoMigrate(db))

	t.Cleanup(func() { _ = sqlDB.Close() })
	return db
}

// CreateUser inserts a user. Empty Name and Email are derived from the role.
func CreateUser(t *testing.T, db *gorm.DB, user *models.User) *models.User {
	t.Helper()

	n := seq.Add(1)
	if user.Name == "" {
		user.Name = fmt.Sprintf("%s %d", user.Role, n)
	}
	if user.Email == "" {
		user.Email = fmt.Sprintf("%s%d@example.com", user.Role, n)
	}
	if user.PasswordHash == "" {
		user.PasswordHash = "x"
	}
	require.NoError(t, db.Create(user).Error, "create user %s", user.Email)
	return user
}

// CreateClient inserts a client on the featured tier.
func CreateClient(t *testing.T, db *gorm.DB) *models.User {
	t.Helper()
	return CreateUser(t, db, &models.User{
		Role:             models.UserRoleClient,
		SubscriptionTier: models.SubscriptionTierFeatured,
	})
}

func CreateWorker(t *testing.T, db *gorm.DB) *models.User {
	t.Helper()
	return CreateUser(t, db, &models.User{Role: models.UserRoleWorker})
}

// CreateHire inserts a pending hire between client and worker. mutate runs
// before the insert and may set any lifecycle field.
func CreateHire(t *testing.T, db *gorm.DB, client, worker *models.User, mutate ...func(h *models.Hire)) *models.Hire {
	t.Helper()

	hire := &models.Hire{
		ClientID:    client.ID,
		WorkerID:    worker.ID,
		Service:     "Plumbing",
		Description: "Fix the kitchen sink",
		Status:      models.HireStatusPending,
	}
	for _, m := range mutate {
		m(hire)
	}
	require.NoError(t, db.Create(hire).Error, "create hire")
	return hire
}

// Completed marks a hire as confirmed by both parties at completedAt.
func Completed(completedAt time.Time) func(h *models.Hire) {
	return func(h *models.Hire) {
		at := completedAt.UTC()
		h.Status = models.HireStatusCompleted
		h.WorkerCompleted = true
		h.ClientCompleted = true
		h.CompletedAt = &at
	}
}

func Accepted(h *models.Hire) {
	h.Status = models.HireStatusAccepted
}

func ReloadHire(t *testing.T, db *gorm.DB, id string) *models.Hire {
	t.Helper()
	var hire models.Hire
	require.NoError(t, db.First(&hire, "id = ?", id).Error)
	return &hire
}

func ReloadUser(t *testing.T, db *gorm.DB, id string) *models.User {
	t.Helper()
	var user models.User
	require.NoError(t, db.First(&user, "id = ?", id).Error)
	return &user
}
