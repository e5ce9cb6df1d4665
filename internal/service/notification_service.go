package service

import (
	"context"

	"github.com/google/uuid"
	"github.com/segyhp/debt-tracker/internal/domain"
	"github.com/segyhp/debt-tracker/internal/repository"
	customError "github.com/segyhp/debt-tracker/pkg/errors"
)

type notificationService struct {
	notificationRepo repository.NotificationRepository
	sender           ManualSender
}

func NewNotificationService(notificationRepo repository.NotificationRepository, sender ManualSender) NotificationService {
	return &notificationService{
		notificationRepo: notificationRepo,
		sender:           sender,
	}
}

func (s *notificationService) List(ctx context.Context, userID uuid.UUID, filter domain.NotificationFilter) ([]*domain.Notification, error) {
	notifications, err := s.notificationRepo.List(ctx, userID, filter)
	if err != nil {
		return nil, customError.WrapDatabaseError(err)
	}
	return notifications, nil
}

// SendManual sends a reminder for one debt now. A gateway rejection is not an
// error here; it shows in Success and in the notification record.
func (s *notificationService) SendManual(ctx context.Context, userID, debtID uuid.UUID, request *domain.ManualNotificationRequest) (*domain.ManualNotificationResponse, error) {
	notification, err := s.sender.SendManual(ctx, userID, debtID, request.Message)
	if err != nil {
		return nil, err
	}

	return &domain.ManualNotificationResponse{
		Success:      notification.Status == domain.NotificationStatusSent,
		Notification: notification,
	}, nil
}

func (s *notificationService) Delete(ctx context.Context, userID, id uuid.UUID) error {
	if err := s.notificationRepo.Delete(ctx, userID, id); err != nil {
		return lookupError(err, customError.WrapNotificationNotFound, id)
	}
	return nil
}
