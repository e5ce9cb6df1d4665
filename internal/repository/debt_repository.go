package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/segyhp/debt-tracker/internal/domain"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/shopspring/decimal"
)

type debtRepository struct {
	db *sqlx.DB
}

func NewDebtRepository(db *sqlx.DB) DebtRepository {
	return &debtRepository{db: db}
}

const debtSelect = `
	SELECT d.id, d.user_id, d.debtor_id, d.principal, d.interest_rate, d.loan_date, d.due_date,
	       d.current_amount, d.status, d.auto_notify, d.notify_periodicity, d.last_notification,
	       d.active, d.created_at, d.updated_at,
	       dr.name AS debtor_name, dr.phone AS debtor_phone, dr.other_phones AS debtor_other_phones
	FROM debts d
	JOIN debtors dr ON dr.id = d.debtor_id
`

// debtRow carries the joined debtor columns next to the debt.
type debtRow struct {
	domain.Debt
	DebtorName        string         `db:"debtor_name"`
	DebtorPhone       string         `db:"debtor_phone"`
	DebtorOtherPhones pq.StringArray `db:"debtor_other_phones"`
}

func (row *debtRow) toDomain() *domain.Debt {
	debt := row.Debt
	debt.Debtor = &domain.Debtor{
		ID:          row.DebtorID,
		UserID:      row.UserID,
		Name:        row.DebtorName,
		Phone:       row.DebtorPhone,
		OtherPhones: row.DebtorOtherPhones,
		Active:      true,
	}
	return &debt
}

func rowsToDebts(rows []*debtRow) []*domain.Debt {
	debts := make([]*domain.Debt, 0, len(rows))
	for _, row := range rows {
		debts = append(debts, row.toDomain())
	}
	return debts
}

func (r *debtRepository) Create(ctx context.Context, debt *domain.Debt) error {
	query := `
		INSERT INTO debts (id, user_id, debtor_id, principal, interest_rate, loan_date, due_date, current_amount,
		                   status, auto_notify, notify_periodicity, last_notification, active, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)
	`

	_, err := r.db.ExecContext(ctx, query,
		debt.ID,
		debt.UserID,
		debt.DebtorID,
		debt.Principal,
		debt.InterestRate,
		debt.LoanDate,
		debt.DueDate,
		debt.CurrentAmount,
		debt.Status,
		debt.AutoNotify,
		debt.NotifyPeriodicity,
		debt.LastNotification,
		debt.Active,
		debt.CreatedAt,
		debt.UpdatedAt,
	)

	return err
}

func (r *debtRepository) GetByID(ctx context.Context, userID, id uuid.UUID) (*domain.Debt, error) {
	query := debtSelect + ` WHERE d.id = $1 AND d.user_id = $2 AND d.active = true`

	var row debtRow
	if err := r.db.GetContext(ctx, &row, query, id, userID); err != nil {
		return nil, err
	}

	return row.toDomain(), nil
}

func (r *debtRepository) List(ctx context.Context, userID uuid.UUID, debtorID *uuid.UUID) ([]*domain.Debt, error) {
	query := debtSelect + ` WHERE d.user_id = $1 AND d.active = true`
	args := []interface{}{userID}

	if debtorID != nil {
		query += ` AND d.debtor_id = $2`
		args = append(args, *debtorID)
	}
	query += ` ORDER BY d.due_date ASC`

	var rows []*debtRow
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, err
	}

	return rowsToDebts(rows), nil
}

func (r *debtRepository) Update(ctx context.Context, debt *domain.Debt) error {
	query := `
		UPDATE debts
		SET debtor_id = $3, principal = $4, interest_rate = $5, loan_date = $6, due_date = $7, current_amount = $8,
		    status = $9, auto_notify = $10, notify_periodicity = $11, updated_at = $12
		WHERE id = $1 AND user_id = $2 AND active = true
	`

	return requireAffected(r.db.ExecContext(ctx, query,
		debt.ID,
		debt.UserID,
		debt.DebtorID,
		debt.Principal,
		debt.InterestRate,
		debt.LoanDate,
		debt.DueDate,
		debt.CurrentAmount,
		debt.Status,
		debt.AutoNotify,
		debt.NotifyPeriodicity,
		time.Now(),
	))
}

func (r *debtRepository) UpdateState(ctx context.Context, id uuid.UUID, status domain.DebtStatus, amount decimal.Decimal) error {
	query := `UPDATE debts SET status = $2, current_amount = $3, updated_at = $4 WHERE id = $1`
	return requireAffected(r.db.ExecContext(ctx, query, id, status, amount, time.Now()))
}

func (r *debtRepository) SoftDelete(ctx context.Context, userID, id uuid.UUID) error {
	query := `UPDATE debts SET active = false, updated_at = $3 WHERE id = $1 AND user_id = $2 AND active = true`
	return requireAffected(r.db.ExecContext(ctx, query, id, userID, time.Now()))
}

func (r *debtRepository) ListAutoNotify(ctx context.Context) ([]*domain.Debt, error) {
	query := debtSelect + `
		WHERE d.active = true
		  AND d.auto_notify = true
		  AND d.status <> 'PAID'
		  AND d.notify_periodicity IS NOT NULL
		  AND dr.active = true
		ORDER BY d.user_id, d.due_date ASC
	`

	var rows []*debtRow
	if err := r.db.SelectContext(ctx, &rows, query); err != nil {
		return nil, err
	}

	return rowsToDebts(rows), nil
}

func (r *debtRepository) TouchLastNotification(ctx context.Context, id uuid.UUID, at time.Time) error {
	query := `UPDATE debts SET last_notification = $2 WHERE id = $1`
	return requireAffected(r.db.ExecContext(ctx, query, id, at))
}
