package email

import (
	"context"
	"fmt"
	"time"

	"bilca_backend/internal/services"
)

const (
	reviewReminderSubject = "Rate your experience"
	hireCreatedSubject    = "You have a new job request"
)

// ReminderNotifier delivers service notifications as templated email.
type ReminderNotifier struct {
	provider Provider
}

var _ services.Notifier = (*ReminderNotifier)(nil)

func NewReminderNotifier(provider Provider) *ReminderNotifier {
	return &ReminderNotifier{provider: provider}
}

func (n *ReminderNotifier) SendReviewReminder(ctx context.Context, r services.ReviewReminder) error {
	if r.ClientEmail == "" {
		return fmt.Errorf("review reminder for hire %s has no recipient", r.HireID)
	}
	data := TemplateData{
		"ClientName": r.ClientName,
		"WorkerName": r.WorkerName,
		"Service":    r.Service,
		"ReviewLink": r.ReviewLink,
		"ExpiresAt":  r.ExpiresAt.UTC().Format(time.RFC1123),
	}
	return n.provider.SendTemplate(ctx, []string{r.ClientEmail}, reviewReminderSubject, TemplateReviewReminder, data)
}

func (n *ReminderNotifier) NotifyHireCreated(ctx context.Context, notice services.HireCreatedNotice) error {
	if notice.WorkerEmail == "" {
		return nil
	}
	data := TemplateData{
		"WorkerName":  notice.WorkerName,
		"ClientName":  notice.ClientName,
		"Service":     notice.Service,
		"Description": notice.Description,
	}
	return n.provider.SendTemplate(ctx, []string{notice.WorkerEmail}, hireCreatedSubject, TemplateHireCreated, data)
}
