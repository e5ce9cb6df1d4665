package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Payment is a partial or full settlement applied to a debt.
type Payment struct {
	ID          uuid.UUID       `json:"id" db:"id"`
	DebtID      uuid.UUID       `json:"debt_id" db:"debt_id"`
	Amount      decimal.Decimal `json:"amount" db:"amount"`
	PaymentDate time.Time       `json:"payment_date" db:"payment_date"`
	Description *string         `json:"description,omitempty" db:"description"`
	Active      bool            `json:"active" db:"active"`
	CreatedAt   time.Time       `json:"created_at" db:"created_at"`
}

type CreatePaymentRequest struct {
	DebtID      uuid.UUID       `json:"debt_id" validate:"required"`
	Amount      decimal.Decimal `json:"amount" validate:"gt=0"`
	PaymentDate string          `json:"payment_date,omitempty"`
	Description *string         `json:"description,omitempty"`
}

type PaymentResponse struct {
	Payment *Payment `json:"payment"`
	Debt    *Debt    `json:"debt"`
}
