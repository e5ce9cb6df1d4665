package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// DebtStatus is the lifecycle state of a debt.
type DebtStatus string

const (
	DebtStatusPending DebtStatus = "PENDING"
	DebtStatusOverdue DebtStatus = "OVERDUE"
	DebtStatusPaid    DebtStatus = "PAID"
)

// Valid reports whether s is a known status.
func (s DebtStatus) Valid() bool {
	switch s {
	case DebtStatusPending, DebtStatusOverdue, DebtStatusPaid:
		return true
	}
	return false
}

// Debt is a single loan with a flat interest rate. CurrentAmount and Status as
// stored are only authoritative for PAID; reads project them from the
// principal, rate, due date and active payments.
type Debt struct {
	ID                uuid.UUID       `json:"id" db:"id"`
	UserID            uuid.UUID       `json:"user_id" db:"user_id"`
	DebtorID          uuid.UUID       `json:"debtor_id" db:"debtor_id"`
	Principal         decimal.Decimal `json:"principal" db:"principal"`
	InterestRate      decimal.Decimal `json:"interest_rate" db:"interest_rate"`
	LoanDate          time.Time       `json:"loan_date" db:"loan_date"`
	DueDate           time.Time       `json:"due_date" db:"due_date"`
	CurrentAmount     decimal.Decimal `json:"current_amount" db:"current_amount"`
	Status            DebtStatus      `json:"status" db:"status"`
	AutoNotify        bool            `json:"auto_notify" db:"auto_notify"`
	NotifyPeriodicity *int            `json:"notify_periodicity,omitempty" db:"notify_periodicity"`
	LastNotification  *time.Time      `json:"last_notification,omitempty" db:"last_notification"`
	Active            bool            `json:"active" db:"active"`
	CreatedAt         time.Time       `json:"created_at" db:"created_at"`
	UpdatedAt         time.Time       `json:"updated_at" db:"updated_at"`

	// Read-time projection, never persisted.
	OwedAmount      decimal.Decimal `json:"owed_amount" db:"-"`
	PaidAmount      decimal.Decimal `json:"paid_amount" db:"-"`
	RemainingAmount decimal.Decimal `json:"remaining_amount" db:"-"`

	Debtor      *Debtor       `json:"debtor,omitempty" db:"-"`
	Payments    []*Payment    `json:"payments,omitempty" db:"-"`
	Collaterals []*Collateral `json:"collaterals,omitempty" db:"-"`
}

// DebtFilter narrows debt listings.
type DebtFilter struct {
	Status   DebtStatus
	DebtorID *uuid.UUID
}

type DebtRequest struct {
	DebtorID          uuid.UUID       `json:"debtor_id" validate:"required"`
	Principal         decimal.Decimal `json:"principal" validate:"gt=0"`
	InterestRate      decimal.Decimal `json:"interest_rate" validate:"gte=0"`
	LoanDate          string          `json:"loan_date,omitempty"`
	DueDate           string          `json:"due_date" validate:"required"`
	AutoNotify        bool            `json:"auto_notify"`
	NotifyPeriodicity *int            `json:"notify_periodicity,omitempty" validate:"omitempty,gt=0"`
}

type IncreaseInterestRequest struct {
	InterestRate decimal.Decimal `json:"interest_rate" validate:"gt=0"`
}
