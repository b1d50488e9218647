package app

import (
	"errors"

	"bilca_backend/database"
	"bilca_backend/internal/auth"
	"bilca_backend/internal/logger"
	"bilca_backend/internal/models"
	"bilca_backend/internal/repositories"

	"github.com/spf13/cobra"
	"gorm.io/gorm"
)

var seedPassword string

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Create demo client and worker accounts",
	Long:  `Create a featured client and a worker for local testing. Existing accounts are left untouched.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		db, err := database.Open(cfg)
		if err != nil {
			return err
		}
		defer func() { _ = database.Close(db) }()

		if err := database.AutoMigrate(db); err != nil {
			return err
		}
		return seedDemoUsers(db, repositories.NewUserRepository(), seedPassword)
	},
}

func init() {
	seedCmd.Flags().StringVar(&seedPassword, "password", "password123", "password for the demo accounts")
	rootCmd.AddCommand(seedCmd)
}

var demoUsers = []models.User{
	{
		Name:             "Demo Client",
		Email:            "client@bilca.local",
		Role:             models.UserRoleClient,
		SubscriptionTier: models.SubscriptionTierFeatured,
	},
	{
		Name:  "Demo Worker",
		Email: "worker@bilca.local",
		Role:  models.UserRoleWorker,
	},
}

func seedDemoUsers(db *gorm.DB, users repositories.UserRepository, password string) error {
	hashed, err := auth.HashPassword(password)
	if err != nil {
		return err
	}

	tx := db.Begin()
	if tx.Error != nil {
		return tx.Error
	}
	defer tx.Rollback()

	for _, demo := range demoUsers {
		existing, err := users.FindByEmail(tx, demo.Email)
		if err == nil {
			logger.Info("Demo user already exists, skipping", "email", existing.Email)
			continue
		}
		if !errors.Is(err, repositories.ErrUserNotFound) {
			return err
		}

		user := demo
		user.PasswordHash = hashed
		if err := users.Create(tx, &user); err != nil {
			return err
		}
		logger.Info("Created demo user", "email", user.Email, "role", string(user.Role), "id", user.ID)
	}

	return tx.Commit().Error
}
