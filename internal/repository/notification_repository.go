package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/segyhp/debt-tracker/internal/domain"

	"github.com/jmoiron/sqlx"
)

type notificationRepository struct {
	db *sqlx.DB
}

func NewNotificationRepository(db *sqlx.DB) NotificationRepository {
	return &notificationRepository{db: db}
}

func (r *notificationRepository) Create(ctx context.Context, notification *domain.Notification) error {
	query := `
		INSERT INTO notifications (id, user_id, debtor_id, debt_id, phone, message, status, error_message,
		                           attempts, sent_at, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
	`

	_, err := r.db.ExecContext(ctx, query,
		notification.ID,
		notification.UserID,
		notification.DebtorID,
		notification.DebtID,
		notification.Phone,
		notification.Message,
		notification.Status,
		notification.ErrorMessage,
		notification.Attempts,
		notification.SentAt,
		notification.CreatedAt,
		notification.UpdatedAt,
	)

	return err
}

func (r *notificationRepository) UpdateOutcome(ctx context.Context, notification *domain.Notification) error {
	query := `
		UPDATE notifications
		SET status = $2, error_message = $3, attempts = $4, sent_at = $5, updated_at = $6
		WHERE id = $1
	`

	return requireAffected(r.db.ExecContext(ctx, query,
		notification.ID,
		notification.Status,
		notification.ErrorMessage,
		notification.Attempts,
		notification.SentAt,
		time.Now(),
	))
}

func (r *notificationRepository) List(ctx context.Context, userID uuid.UUID, filter domain.NotificationFilter) ([]*domain.Notification, error) {
	query := `
		SELECT n.id, n.user_id, n.debtor_id, n.debt_id, n.phone, n.message, n.status, n.error_message,
		       n.attempts, n.sent_at, n.created_at, n.updated_at,
		       COALESCE(dr.name, '') AS debtor_name
		FROM notifications n
		LEFT JOIN debtors dr ON dr.id = n.debtor_id
		WHERE n.user_id = $1
	`
	args := []interface{}{userID}

	if filter.DebtorID != nil {
		args = append(args, *filter.DebtorID)
		query += fmt.Sprintf(" AND n.debtor_id = $%d", len(args))
	}
	if filter.DebtID != nil {
		args = append(args, *filter.DebtID)
		query += fmt.Sprintf(" AND n.debt_id = $%d", len(args))
	}
	if filter.Status != "" {
		args = append(args, filter.Status)
		query += fmt.Sprintf(" AND n.status = $%d", len(args))
	}
	query += " ORDER BY n.created_at DESC"

	var notifications []*domain.Notification
	if err := r.db.SelectContext(ctx, &notifications, query, args...); err != nil {
		return nil, err
	}

	return notifications, nil
}

func (r *notificationRepository) Delete(ctx context.Context, userID, id uuid.UUID) error {
	query := `DELETE FROM notifications WHERE id = $1 AND user_id = $2`
	return requireAffected(r.db.ExecContext(ctx, query, id, userID))
}
