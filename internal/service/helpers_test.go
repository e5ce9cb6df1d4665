package service

import (
	"time"

	"github.com/google/uuid"
	"github.com/segyhp/debt-tracker/internal/domain"

	"github.com/shopspring/decimal"
)

var testNow = time.Date(2025, 10, 10, 9, 0, 0, 0, time.UTC)

func newTestDebt(userID uuid.UUID, due time.Time) *domain.Debt {
	return &domain.Debt{
		ID:            uuid.New(),
		UserID:        userID,
		DebtorID:      uuid.New(),
		Principal:     decimal.NewFromInt(1000),
		InterestRate:  decimal.NewFromInt(10),
		LoanDate:      testNow.AddDate(0, -1, 0),
		DueDate:       due,
		CurrentAmount: decimal.NewFromInt(1100),
		Status:        domain.DebtStatusPending,
		Active:        true,
		CreatedAt:     testNow.AddDate(0, -1, 0),
		Debtor:        &domain.Debtor{Name: "João", Phone: "841234567"},
	}
}

func payment(debtID uuid.UUID, amount int64) *domain.Payment {
	return &domain.Payment{ID: uuid.New(), DebtID: debtID, Amount: decimal.NewFromInt(amount), Active: true}
}

func decimalEqual(expected int64) func(decimal.Decimal) bool {
	return func(d decimal.Decimal) bool { return d.Equal(decimal.NewFromInt(expected)) }
}
