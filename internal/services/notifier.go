package services

import (
	"context"
	"time"
)

// ReviewReminder is everything the email channel needs to ask a client for a review.
type ReviewReminder struct {
	HireID      string
	ClientEmail string
	ClientName  string
	WorkerName  string
	Service     string
	ReviewLink  string
	ExpiresAt   time.Time
}

// HireCreatedNotice tells a worker they have been hired.
type HireCreatedNotice struct {
	HireID      string
	WorkerID    string
	WorkerEmail string
	WorkerName  string
	ClientName  string
	Service     string
	Description string
}

// Notifier is the outbound channel (email in production).
type Notifier interface {
	SendReviewReminder(ctx context.Context, reminder ReviewReminder) error
	NotifyHireCreated(ctx context.Context, notice HireCreatedNotice) error
}

// NopNotifier drops every message. Used when email is disabled.
type NopNotifier struct{}

func (NopNotifier) SendReviewReminder(context.Context, ReviewReminder) error { return nil }

func (NopNotifier) NotifyHireCreated(context.Context, HireCreatedNotice) error { return nil }
