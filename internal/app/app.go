package app

import (
	"context"

	"bilca_backend/database"
	"bilca_backend/internal/auth"
	"bilca_backend/internal/cache"
	"bilca_backend/internal/config"
	"bilca_backend/internal/email"
	"bilca_backend/internal/handlers"
	"bilca_backend/internal/logger"
	"bilca_backend/internal/middleware"
	"bilca_backend/internal/repositories"
	"bilca_backend/internal/routes"
	"bilca_backend/internal/services"
	"bilca_backend/internal/validator"
	"bilca_backend/internal/workers"

	"github.com/gin-gonic/gin"
	"github.com/go-co-op/gocron/v2"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

type repositorySet struct {
	hires         repositories.HireRepository
	users         repositories.UserRepository
	reviews       repositories.ReviewRepository
	notifications repositories.NotificationRepository
}

func newRepositorySet() repositorySet {
	return repositorySet{
		hires:         repositories.NewHireRepository(),
		users:         repositories.NewUserRepository(),
		reviews:       repositories.NewReviewRepository(),
		notifications: repositories.NewNotificationRepository(),
	}
}

// App is the process-wide dependency graph shared by every command.
type App struct {
	Config   *config.Config
	DB       *gorm.DB
	Redis    *redis.Client
	Services *services.ServiceContainer

	repos repositorySet
}

// New connects to the database (and Redis when configured) and wires services.
func New(ctx context.Context, cfg *config.Config) (*App, error) {
	db, err := database.Open(cfg)
	if err != nil {
		return nil, err
	}
	if cfg.Database.AutoMigrate {
		if err := database.AutoMigrate(db); err != nil {
			_ = database.Close(db)
			return nil, err
		}
	}

	var rdb *redis.Client
	if cfg.Redis.URL != "" {
		rdb, err = cache.NewRedisClient(ctx, cfg.Redis.URL)
		if err != nil {
			logger.Warn("Redis unavailable, continuing without distributed locking", "error", err)
			rdb = nil
		}
	}

	notifier, err := newNotifier(cfg)
	if err != nil {
		_ = database.Close(db)
		return nil, err
	}

	repos := newRepositorySet()
	return &App{
		Config:   cfg,
		DB:       db,
		Redis:    rdb,
		Services: initializeServices(cfg, repos, notifier),
		repos:    repos,
	}, nil
}

func (a *App) Close() {
	if a.Redis != nil {
		if err := a.Redis.Close(); err != nil {
			logger.Warn("Failed to close redis client", "error", err)
		}
	}
	if err := database.Close(a.DB); err != nil {
		logger.Warn("Failed to close database", "error", err)
	}
}

func (a *App) Router() *gin.Engine {
	return SetupRouter(a.Config, a.DB, a.Redis, a.Services)
}

// ReminderWorker builds the review reminder job. The Redis lock is used
// whenever a Redis client is available.
func (a *App) ReminderWorker() *workers.ReviewReminderWorker {
	var locker gocron.Locker
	if a.Redis != nil {
		locker = workers.NewRedisLocker(a.Redis, "bilca:lock:", a.Config.Reminder.LockTTL)
	}

	cfg := workers.ReminderConfig{
		Cron:            a.Config.Reminder.Cron,
		Location:        a.Config.Location(),
		DelayDays:       a.Config.Reminder.DelayDays,
		RetryMissed:     a.Config.Reminder.RetryMissed,
		ReviewWindow:    a.Config.Review.Window,
		DispatchTimeout: a.Config.Reminder.DispatchTimeout,
		ClientURL:       a.Config.Review.ClientURL,
		TokenTTL:        a.Config.Review.TokenTTL,
	}
	return workers.NewReviewReminderWorker(a.DB, a.repos.hires, a.Services.ReviewTokenService, a.Services.Notifier, locker, cfg)
}

func SetupRouter(cfg *config.Config, db *gorm.DB, rdb *redis.Client, svc *services.ServiceContainer) *gin.Engine {
	appHandlers := initializeHandlers(cfg, svc, db, rdb)
	ginRouter := initializeGinRouter(cfg, db)
	routes.RegisterRoutes(ginRouter, appHandlers, routes.Options{
		MetricsEnabled: cfg.Metrics.Enabled,
		MetricsPath:    cfg.Metrics.Path,
	})
	return ginRouter
}

func initializeServices(cfg *config.Config, repos repositorySet, notifier services.Notifier) *services.ServiceContainer {
	signer := auth.NewReviewTokenSigner(cfg.Review.TokenSecret, cfg.Review.TokenTTL)

	notificationService := services.NewNotificationService(repos.notifications)
	ratingService := services.NewRatingService(repos.reviews, repos.users)
	reviewTokenService := services.NewReviewTokenService(signer, repos.hires, cfg.Review.Window, cfg.Review.DefaultService)
	reviewService := services.NewReviewService(reviewTokenService, repos.hires, repos.reviews, ratingService)
	hireService := services.NewHireService(
		repos.hires,
		repos.users,
		notificationService,
		notifier,
		services.NewTierEntitlementPolicy(cfg.Hires.RequiredTier),
		services.HireServiceConfig{
			DefaultListLimit:      cfg.Hires.DefaultListLimit,
			DefaultCompletedLimit: cfg.Hires.DefaultCompletedLimit,
			NotifyTimeout:         cfg.Reminder.DispatchTimeout,
		},
	)

	return &services.ServiceContainer{
		HireService:         hireService,
		ReviewTokenService:  reviewTokenService,
		ReviewService:       reviewService,
		RatingService:       ratingService,
		NotificationService: notificationService,
		Notifier:            notifier,
	}
}

func initializeHandlers(cfg *config.Config, svc *services.ServiceContainer, db *gorm.DB, rdb *redis.Client) *handlers.AppHandlers {
	tokenManager := auth.NewTokenManager(cfg.JWT.Secret, cfg.JWT.TTL)
	baseHandler := handlers.NewBaseHandler(validator.New(), middleware.AuthMiddleware(tokenManager))

	return &handlers.AppHandlers{
		HireHandler:         handlers.NewHireHandler(baseHandler, svc.HireService),
		ReviewHandler:       handlers.NewReviewHandler(baseHandler, svc.ReviewService),
		NotificationHandler: handlers.NewNotificationHandler(baseHandler, svc.NotificationService),
		HealthHandler:       handlers.NewHealthHandler(db, rdb),
	}
}

func initializeGinRouter(cfg *config.Config, db *gorm.DB) *gin.Engine {
	if cfg.Server.Env != "development" {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.RequestIDMiddleware())
	router.Use(middleware.LoggingMiddleware())
	router.Use(middleware.MetricsMiddleware())
	router.Use(middleware.CORSMiddleware(cfg.Server.CORSOrigins))
	router.Use(middleware.DBMiddleware(db))
	return router
}

// newNotifier picks the SMTP channel when email is enabled and the log
// channel otherwise.
func newNotifier(cfg *config.Config) (services.Notifier, error) {
	templates, err := email.NewDefaultTemplateManager(cfg.Email.TemplatesDir)
	if err != nil {
		return nil, err
	}

	if !cfg.Email.Enabled {
		logger.Warn("Email disabled, notifications are logged only")
		return email.NewReminderNotifier(email.NewLogProvider(templates)), nil
	}

	provider := email.NewSMTPProvider(&email.SMTPConfig{
		Host:      cfg.Email.SMTPHost,
		Port:      cfg.Email.SMTPPort,
		Username:  cfg.Email.SMTPUsername,
		Password:  cfg.Email.SMTPPassword,
		FromEmail: cfg.Email.FromEmail,
		FromName:  cfg.Email.FromName,
		UseTLS:    cfg.Email.UseTLS,
		Timeout:   cfg.Email.Timeout,
	}, templates)
	if err := provider.Validate(); err != nil {
		return nil, err
	}
	return email.NewReminderNotifier(provider), nil
}
