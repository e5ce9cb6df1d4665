package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/segyhp/debt-tracker/internal/domain"
	"github.com/shopspring/decimal"
)

// Lookups that find nothing, and deletes that touch no row, return sql.ErrNoRows.
// Every owner-scoped method takes the owning user's ID and never crosses tenants.

// UserRepository defines the interface for user data operations
type UserRepository interface {
	// Create creates a new user
	Create(ctx context.Context, user *domain.User) error

	// GetByID retrieves a user by ID
	GetByID(ctx context.Context, id uuid.UUID) (*domain.User, error)

	// GetByEmail retrieves a user by email
	GetByEmail(ctx context.Context, email string) (*domain.User, error)
}

// DebtorRepository defines the interface for debtor data operations
type DebtorRepository interface {
	// Create creates a new debtor
	Create(ctx context.Context, debtor *domain.Debtor) error

	// GetByID retrieves an active debtor owned by userID
	GetByID(ctx context.Context, userID, id uuid.UUID) (*domain.Debtor, error)

	// List retrieves the active debtors of a user, newest first
	List(ctx context.Context, userID uuid.UUID) ([]*domain.Debtor, error)

	// Update updates a debtor's editable fields
	Update(ctx context.Context, debtor *domain.Debtor) error

	// SoftDelete marks a debtor inactive
	SoftDelete(ctx context.Context, userID, id uuid.UUID) error

	// CountActive counts the active debtors of a user
	CountActive(ctx context.Context, userID uuid.UUID) (int, error)
}

// DebtRepository defines the interface for debt data operations
type DebtRepository interface {
	// Create creates a new debt
	Create(ctx context.Context, debt *domain.Debt) error

	// GetByID retrieves an active debt owned by userID, with its debtor
	GetByID(ctx context.Context, userID, id uuid.UUID) (*domain.Debt, error)

	// List retrieves active debts of a user ordered by due date, with their debtors.
	// Only the stored status can be filtered here; OVERDUE is a projection.
	List(ctx context.Context, userID uuid.UUID, debtorID *uuid.UUID) ([]*domain.Debt, error)

	// Update updates a debt's terms and notification settings
	Update(ctx context.Context, debt *domain.Debt) error

	// UpdateState persists the status and current amount of a debt
	UpdateState(ctx context.Context, id uuid.UUID, status domain.DebtStatus, amount decimal.Decimal) error

	// SoftDelete marks a debt inactive
	SoftDelete(ctx context.Context, userID, id uuid.UUID) error

	// ListAutoNotify retrieves active, unpaid debts with auto-notify and a periodicity set, with their debtors
	ListAutoNotify(ctx context.Context) ([]*domain.Debt, error)

	// TouchLastNotification records a successful reminder
	TouchLastNotification(ctx context.Context, id uuid.UUID, at time.Time) error
}

// PaymentRepository defines the interface for payment data operations
type PaymentRepository interface {
	// Create creates a new payment record
	Create(ctx context.Context, payment *domain.Payment) error

	// GetByID retrieves an active payment whose debt is owned by userID
	GetByID(ctx context.Context, userID, id uuid.UUID) (*domain.Payment, error)

	// ListByDebt retrieves the active payments of a debt, latest first
	ListByDebt(ctx context.Context, debtID uuid.UUID) ([]*domain.Payment, error)

	// ListActiveByDebtIDs retrieves active payments for several debts at once
	ListActiveByDebtIDs(ctx context.Context, debtIDs []uuid.UUID) (map[uuid.UUID][]*domain.Payment, error)

	// SoftDelete marks a payment inactive
	SoftDelete(ctx context.Context, id uuid.UUID) error
}

// CollateralRepository defines the interface for collateral data operations
type CollateralRepository interface {
	// Create creates a new collateral record
	Create(ctx context.Context, collateral *domain.Collateral) error

	// GetByID retrieves an active collateral whose debt is owned by userID
	GetByID(ctx context.Context, userID, id uuid.UUID) (*domain.Collateral, error)

	// ListByDebt retrieves the active collaterals of a debt, newest first
	ListByDebt(ctx context.Context, debtID uuid.UUID) ([]*domain.Collateral, error)

	// SoftDelete marks a collateral inactive
	SoftDelete(ctx context.Context, id uuid.UUID) error
}

// NotificationRepository defines the interface for notification data operations
type NotificationRepository interface {
	// Create creates a new notification record
	Create(ctx context.Context, notification *domain.Notification) error

	// UpdateOutcome stores the delivery result of a notification
	UpdateOutcome(ctx context.Context, notification *domain.Notification) error

	// List retrieves a user's notification history, newest first
	List(ctx context.Context, userID uuid.UUID, filter domain.NotificationFilter) ([]*domain.Notification, error)

	// Delete removes a notification owned by userID
	Delete(ctx context.Context, userID, id uuid.UUID) error
}
