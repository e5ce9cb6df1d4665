package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/segyhp/debt-tracker/internal/domain"

	"github.com/jmoiron/sqlx"
)

type collateralRepository struct {
	db *sqlx.DB
}

func NewCollateralRepository(db *sqlx.DB) CollateralRepository {
	return &collateralRepository{db: db}
}

const collateralColumns = `c.id, c.debt_id, c.file_name, c.stored_name, c.mime_type, c.size, c.description, c.active, c.created_at`

func (r *collateralRepository) Create(ctx context.Context, collateral *domain.Collateral) error {
	query := `
		INSERT INTO collaterals (id, debt_id, file_name, stored_name, mime_type, size, description, active, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`

	_, err := r.db.ExecContext(ctx, query,
		collateral.ID,
		collateral.DebtID,
		collateral.FileName,
		collateral.StoredName,
		collateral.MimeType,
		collateral.Size,
		collateral.Description,
		collateral.Active,
		collateral.CreatedAt,
	)

	return err
}

func (r *collateralRepository) GetByID(ctx context.Context, userID, id uuid.UUID) (*domain.Collateral, error) {
	query := `
		SELECT ` + collateralColumns + `
		FROM collaterals c
		JOIN debts d ON d.id = c.debt_id
		WHERE c.id = $1 AND d.user_id = $2 AND c.active = true
	`

	var collateral domain.Collateral
	if err := r.db.GetContext(ctx, &collateral, query, id, userID); err != nil {
		return nil, err
	}

	return &collateral, nil
}

func (r *collateralRepository) ListByDebt(ctx context.Context, debtID uuid.UUID) ([]*domain.Collateral, error) {
	query := `
		SELECT ` + collateralColumns + `
		FROM collaterals c
		WHERE c.debt_id = $1 AND c.active = true
		ORDER BY c.created_at DESC
	`

	var collaterals []*domain.Collateral
	if err := r.db.SelectContext(ctx, &collaterals, query, debtID); err != nil {
		return nil, err
	}

	return collaterals, nil
}

func (r *collateralRepository) SoftDelete(ctx context.Context, id uuid.UUID) error {
	query := `UPDATE collaterals SET active = false WHERE id = $1 AND active = true`
	return requireAffected(r.db.ExecContext(ctx, query, id))
}
