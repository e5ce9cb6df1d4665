package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
)

// Debtor is a person or business owing money to a user. Debtors are never
// physically removed; Active is cleared instead.
type Debtor struct {
	ID          uuid.UUID      `json:"id" db:"id"`
	UserID      uuid.UUID      `json:"user_id" db:"user_id"`
	Name        string         `json:"name" db:"name"`
	Phone       string         `json:"phone" db:"phone"`
	OtherPhones pq.StringArray `json:"other_phones" db:"other_phones"`
	Location    *string        `json:"location,omitempty" db:"location"`
	Description *string        `json:"description,omitempty" db:"description"`
	Active      bool           `json:"active" db:"active"`
	CreatedAt   time.Time      `json:"created_at" db:"created_at"`
	UpdatedAt   time.Time      `json:"updated_at" db:"updated_at"`
}

type DebtorRequest struct {
	Name        string   `json:"name" validate:"required,min=3"`
	Phone       string   `json:"phone" validate:"required,min=9"`
	OtherPhones []string `json:"other_phones,omitempty" validate:"omitempty,dive,min=9"`
	Location    *string  `json:"location,omitempty"`
	Description *string  `json:"description,omitempty"`
}
