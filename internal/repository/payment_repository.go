package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/segyhp/debt-tracker/internal/domain"

	"github.com/jmoiron/sqlx"
)

type paymentRepository struct {
	db *sqlx.DB
}

func NewPaymentRepository(db *sqlx.DB) PaymentRepository {
	return &paymentRepository{db: db}
}

const paymentColumns = `p.id, p.debt_id, p.amount, p.payment_date, p.description, p.active, p.created_at`

func (r *paymentRepository) Create(ctx context.Context, payment *domain.Payment) error {
	query := `
		INSERT INTO payments (id, debt_id, amount, payment_date, description, active, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`

	_, err := r.db.ExecContext(ctx, query,
		payment.ID,
		payment.DebtID,
		payment.Amount,
		payment.PaymentDate,
		payment.Description,
		payment.Active,
		payment.CreatedAt,
	)

	return err
}

func (r *paymentRepository) GetByID(ctx context.Context, userID, id uuid.UUID) (*domain.Payment, error) {
	query := `
		SELECT ` + paymentColumns + `
		FROM payments p
		JOIN debts d ON d.id = p.debt_id
		WHERE p.id = $1 AND d.user_id = $2 AND p.active = true
	`

	var payment domain.Payment
	if err := r.db.GetContext(ctx, &payment, query, id, userID); err != nil {
		return nil, err
	}

	return &payment, nil
}

func (r *paymentRepository) ListByDebt(ctx context.Context, debtID uuid.UUID) ([]*domain.Payment, error) {
	query := `
		SELECT ` + paymentColumns + `
		FROM payments p
		WHERE p.debt_id = $1 AND p.active = true
		ORDER BY p.payment_date DESC, p.created_at DESC
	`

	var payments []*domain.Payment
	if err := r.db.SelectContext(ctx, &payments, query, debtID); err != nil {
		return nil, err
	}

	return payments, nil
}

func (r *paymentRepository) ListActiveByDebtIDs(ctx context.Context, debtIDs []uuid.UUID) (map[uuid.UUID][]*domain.Payment, error) {
	grouped := make(map[uuid.UUID][]*domain.Payment, len(debtIDs))
	if len(debtIDs) == 0 {
		return grouped, nil
	}

	query := `
		SELECT ` + paymentColumns + `
		FROM payments p
		WHERE p.debt_id = ANY($1::uuid[]) AND p.active = true
		ORDER BY p.payment_date DESC
	`

	var payments []*domain.Payment
	if err := r.db.SelectContext(ctx, &payments, query, uuidArray(debtIDs)); err != nil {
		return nil, err
	}

	for _, payment := range payments {
		grouped[payment.DebtID] = append(grouped[payment.DebtID], payment)
	}

	return grouped, nil
}

func (r *paymentRepository) SoftDelete(ctx context.Context, id uuid.UUID) error {
	query := `UPDATE payments SET active = false WHERE id = $1 AND active = true`
	return requireAffected(r.db.ExecContext(ctx, query, id))
}
