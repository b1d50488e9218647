package services

import (
	"context"
	"sync"
	"testing"
	"time"

	"bilca_backend/internal/auth"
	"bilca_backend/internal/repositories"
	"bilca_backend/test/helpers"

	"gorm.io/gorm"
)

var baseTime = time.Date(2026, 6, 1, 10, 0, 0, 0, time.UTC)

type recordingNotifier struct {
	mu        sync.Mutex
	err       error
	reminders []ReviewReminder
	notices   []HireCreatedNotice
}

func (n *recordingNotifier) SendReviewReminder(_ context.Context, r ReviewReminder) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	if n.err != nil {
		return n.err
	}
	n.reminders = append(n.reminders, r)
	return nil
}

func (n *recordingNotifier) NotifyHireCreated(_ context.Context, notice HireCreatedNotice) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	if n.err != nil {
		return n.err
	}
	n.notices = append(n.notices, notice)
	return nil
}

func (n *recordingNotifier) Notices() []HireCreatedNotice {
	n.mu.Lock()
	defer n.mu.Unlock()
	return append([]HireCreatedNotice(nil), n.notices...)
}

type fixture struct {
	db       *gorm.DB
	clock    *helpers.Clock
	notifier *recordingNotifier

	hireRepo   repositories.HireRepository
	reviewRepo repositories.ReviewRepository

	hires         HireService
	tokens        ReviewTokenService
	reviews       ReviewService
	ratings       RatingService
	notifications NotificationService
}

func newFixture(t *testing.T) *fixture {
	return newFixtureWithPolicy(t, nil)
}

func newFixtureWithPolicy(t *testing.T, policy EntitlementPolicy) *fixture {
	t.Helper()

	db := helpers.NewTestDB(t)
	clock := helpers.NewClock(baseTime)
	notifier := &recordingNotifier{}

	hireRepo := repositories.NewHireRepository()
	userRepo := repositories.NewUserRepository()
	reviewRepo := repositories.NewReviewRepository()
	notificationRepo := repositories.NewNotificationRepository()

	notifications := NewNotificationService(notificationRepo).(*notificationService)
	notifications.now = clock.Now

	hires := NewHireService(hireRepo, userRepo, notifications, notifier, policy, HireServiceConfig{}).(*hireService)
	hires.now = clock.Now

	signer := auth.NewReviewTokenSigner("review-secret", 168*time.Hour).WithClock(clock.Now)
	tokens := NewReviewTokenService(signer, hireRepo, 10*24*time.Hour, "").(*reviewTokenService)
	tokens.now = clock.Now

	ratings := NewRatingService(reviewRepo, userRepo)
	reviews := NewReviewService(tokens, hireRepo, reviewRepo, ratings)

	return &fixture{
		db:            db,
		clock:         clock,
		notifier:      notifier,
		hireRepo:      hireRepo,
		reviewRepo:    reviewRepo,
		hires:         hires,
		tokens:        tokens,
		reviews:       reviews,
		ratings:       ratings,
		notifications: notifications,
	}
}
