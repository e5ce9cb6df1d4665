package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/segyhp/debt-tracker/internal/domain"

	"github.com/jmoiron/sqlx"
)

type debtorRepository struct {
	db *sqlx.DB
}

func NewDebtorRepository(db *sqlx.DB) DebtorRepository {
	return &debtorRepository{db: db}
}

const debtorColumns = `id, user_id, name, phone, other_phones, location, description, active, created_at, updated_at`

func (r *debtorRepository) Create(ctx context.Context, debtor *domain.Debtor) error {
	query := `
		INSERT INTO debtors (id, user_id, name, phone, other_phones, location, description, active, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`

	_, err := r.db.ExecContext(ctx, query,
		debtor.ID,
		debtor.UserID,
		debtor.Name,
		debtor.Phone,
		debtor.OtherPhones,
		debtor.Location,
		debtor.Description,
		debtor.Active,
		debtor.CreatedAt,
		debtor.UpdatedAt,
	)

	return err
}

func (r *debtorRepository) GetByID(ctx context.Context, userID, id uuid.UUID) (*domain.Debtor, error) {
	query := `SELECT ` + debtorColumns + ` FROM debtors WHERE id = $1 AND user_id = $2 AND active = true`

	var debtor domain.Debtor
	if err := r.db.GetContext(ctx, &debtor, query, id, userID); err != nil {
		return nil, err
	}

	return &debtor, nil
}

func (r *debtorRepository) List(ctx context.Context, userID uuid.UUID) ([]*domain.Debtor, error) {
	query := `SELECT ` + debtorColumns + ` FROM debtors WHERE user_id = $1 AND active = true ORDER BY created_at DESC`

	var debtors []*domain.Debtor
	if err := r.db.SelectContext(ctx, &debtors, query, userID); err != nil {
		return nil, err
	}

	return debtors, nil
}

func (r *debtorRepository) Update(ctx context.Context, debtor *domain.Debtor) error {
	query := `
		UPDATE debtors
		SET name = $3, phone = $4, other_phones = $5, location = $6, description = $7, updated_at = $8
		WHERE id = $1 AND user_id = $2 AND active = true
	`

	return requireAffected(r.db.ExecContext(ctx, query,
		debtor.ID,
		debtor.UserID,
		debtor.Name,
		debtor.Phone,
		debtor.OtherPhones,
		debtor.Location,
		debtor.Description,
		time.Now(),
	))
}

func (r *debtorRepository) SoftDelete(ctx context.Context, userID, id uuid.UUID) error {
	query := `UPDATE debtors SET active = false, updated_at = $3 WHERE id = $1 AND user_id = $2 AND active = true`
	return requireAffected(r.db.ExecContext(ctx, query, id, userID, time.Now()))
}

func (r *debtorRepository) CountActive(ctx context.Context, userID uuid.UUID) (int, error) {
	var count int
	err := r.db.GetContext(ctx, &count, `SELECT count(*) FROM debtors WHERE user_id = $1 AND active = true`, userID)
	return count, err
}
