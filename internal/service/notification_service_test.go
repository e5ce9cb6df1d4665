package service

import (
	"context"
	"database/sql"
	"testing"

	"github.com/google/uuid"
	"github.com/segyhp/debt-tracker/internal/domain"
	"github.com/segyhp/debt-tracker/internal/mocks"
	customError "github.com/segyhp/debt-tracker/pkg/errors"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestSendManualNotification(t *testing.T) {
	tests := []struct {
		name            string
		status          domain.NotificationStatus
		expectedSuccess bool
	}{
		{name: "delivered", status: domain.NotificationStatusSent, expectedSuccess: true},
		{name: "gateway rejected", status: domain.NotificationStatusFailed, expectedSuccess: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := &mocks.MockNotificationRepository{}
			sender := &mocks.MockManualSender{}
			service := NewNotificationService(repo, sender)
			userID, debtID := uuid.New(), uuid.New()

			sender.On("SendManual", mock.Anything, userID, debtID, "Olá").
				Return(&domain.Notification{ID: uuid.New(), Status: tt.status}, nil)

			response, err := service.SendManual(context.Background(), userID, debtID, &domain.ManualNotificationRequest{Message: "Olá"})

			require.NoError(t, err)
			assert.Equal(t, tt.expectedSuccess, response.Success)
			assert.Equal(t, tt.status, response.Notification.Status)
		})
	}
}

func TestSendManualNotification_UnknownDebt(t *testing.T) {
	sender := &mocks.MockManualSender{}
	service := NewNotificationService(&mocks.MockNotificationRepository{}, sender)
	userID, debtID := uuid.New(), uuid.New()

	sender.On("SendManual", mock.Anything, userID, debtID, "").Return(nil, customError.WrapDebtNotFound(debtID.String()))

	_, err := service.SendManual(context.Background(), userID, debtID, &domain.ManualNotificationRequest{})

	assert.Equal(t, customError.ErrCodeDebtNotFound, customError.Code(err))
}

func TestDeleteNotification_NotFound(t *testing.T) {
	repo := &mocks.MockNotificationRepository{}
	service := NewNotificationService(repo, &mocks.MockManualSender{})
	userID, id := uuid.New(), uuid.New()

	repo.On("Delete", mock.Anything, userID, id).Return(sql.ErrNoRows)

	err := service.Delete(context.Background(), userID, id)

	assert.Equal(t, customError.ErrCodeNotificationNotFound, customError.Code(err))
}
