package domain

import (
	"time"

	"github.com/google/uuid"
)

type NotificationStatus string

const (
	NotificationStatusPending NotificationStatus = "PENDING"
	NotificationStatusSent    NotificationStatus = "SENT"
	NotificationStatusFailed  NotificationStatus = "FAILED"
)

// Notification records one reminder and its delivery outcome.
// It moves from PENDING to either SENT or FAILED, never back.
type Notification struct {
	ID           uuid.UUID          `json:"id" db:"id"`
	UserID       uuid.UUID          `json:"user_id" db:"user_id"`
	DebtorID     *uuid.UUID         `json:"debtor_id,omitempty" db:"debtor_id"`
	DebtID       *uuid.UUID         `json:"debt_id,omitempty" db:"debt_id"`
	Phone        string             `json:"phone" db:"phone"`
	Message      string             `json:"message" db:"message"`
	Status       NotificationStatus `json:"status" db:"status"`
	ErrorMessage *string            `json:"error_message,omitempty" db:"error_message"`
	Attempts     int                `json:"attempts" db:"attempts"`
	SentAt       *time.Time         `json:"sent_at,omitempty" db:"sent_at"`
	CreatedAt    time.Time          `json:"created_at" db:"created_at"`
	UpdatedAt    time.Time          `json:"updated_at" db:"updated_at"`

	DebtorName string `json:"debtor_name,omitempty" db:"debtor_name"`
}

// NotificationFilter narrows notification history listings.
type NotificationFilter struct {
	DebtorID *uuid.UUID
	DebtID   *uuid.UUID
	Status   NotificationStatus
}

type ManualNotificationRequest struct {
	Message string `json:"message,omitempty"`
}

type ManualNotificationResponse struct {
	Success      bool          `json:"success"`
	Notification *Notification `json:"notification"`
}
