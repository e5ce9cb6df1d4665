package domain

import (
	"time"

	"github.com/google/uuid"
)

// Collateral is a file attached to a debt as supporting evidence.
type Collateral struct {
	ID          uuid.UUID `json:"id" db:"id"`
	DebtID      uuid.UUID `json:"debt_id" db:"debt_id"`
	FileName    string    `json:"file_name" db:"file_name"`
	StoredName  string    `json:"stored_name" db:"stored_name"`
	MimeType    string    `json:"mime_type" db:"mime_type"`
	Size        int64     `json:"size" db:"size"`
	Description *string   `json:"description,omitempty" db:"description"`
	Active      bool      `json:"active" db:"active"`
	CreatedAt   time.Time `json:"created_at" db:"created_at"`
}

type UploadCollateralRequest struct {
	DebtID      uuid.UUID `validate:"required"`
	FileName    string    `validate:"required"`
	Description *string
}
