package services

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"bilca_backend/internal/models"
	"bilca_backend/internal/repositories"
	"bilca_backend/internal/services/dto"
	"bilca_backend/pkg/apperrors"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type NotificationService interface {
	NotifyNewHire(db *gorm.DB, hire *models.Hire, clientName string) error
	ListForUser(db *gorm.DB, userID string, page, pageSize int, unreadOnly bool) (*dto.NotificationListResponse, error)
	MarkAsRead(db *gorm.DB, userID, notificationID string) error
}

type notificationService struct {
	notificationRepo repositories.NotificationRepository
	now              func() time.Time
}

func NewNotificationService(notificationRepo repositories.NotificationRepository) NotificationService {
	return &notificationService{
		notificationRepo: notificationRepo,
		now:              func() time.Time { return time.Now().UTC() },
	}
}

func (s *notificationService) NotifyNewHire(db *gorm.DB, hire *models.Hire, clientName string) error {
	data, err := json.Marshal(map[string]string{
		"hire_id":   hire.ID,
		"client_id": hire.ClientID,
	})
	if err != nil {
		return apperrors.InternalError(err)
	}

	notification := &models.Notification{
		UserID:  hire.WorkerID,
		Type:    models.NotificationTypeNewHire,
		Title:   "New hire request",
		Message: fmt.Sprintf("%s hired you for: %s", clientName, hire.Service),
		Data:    datatypes.JSON(data),
	}
	if err := s.notificationRepo.Create(db, notification); err != nil {
		return apperrors.InternalError(err)
	}
	return nil
}

func (s *notificationService) ListForUser(db *gorm.DB, userID string, page, pageSize int, unreadOnly bool) (*dto.NotificationListResponse, error) {
	if page <= 0 {
		page = 1
	}
	if pageSize <= 0 {
		pageSize = 20
	}
	if pageSize > 100 {
		pageSize = 100
	}

	items, total, err := s.notificationRepo.FindForUser(db, userID, unreadOnly, pageSize, (page-1)*pageSize)
	if err != nil {
		return nil, apperrors.InternalError(err)
	}
	unread, err := s.notificationRepo.CountUnread(db, userID)
	if err != nil {
		return nil, apperrors.InternalError(err)
	}

	return &dto.NotificationListResponse{
		PaginatedResponse: dto.NewPaginatedResponse(items, total, page, pageSize),
		UnreadCount:       unread,
	}, nil
}

func (s *notificationService) MarkAsRead(db *gorm.DB, userID, notificationID string) error {
	if err := s.notificationRepo.MarkAsRead(db, userID, notificationID, s.now()); err != nil {
		return handleNotificationError(err)
	}
	return nil
}

func handleNotificationError(err error) error {
	if errors.Is(err, repositories.ErrNotificationNotFound) {
		return apperrors.ErrNotificationNotFound
	}
	return apperrors.InternalError(err)
}
