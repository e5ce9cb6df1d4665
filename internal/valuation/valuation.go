// Package valuation derives what a debt is worth and where it sits in its
// lifecycle at a given instant. Everything here is a pure function of its
// inputs and safe for concurrent use.
package valuation

import (
	"time"

	"github.com/segyhp/debt-tracker/internal/domain"
	customError "github.com/segyhp/debt-tracker/pkg/errors"

	"github.com/shopspring/decimal"
)

// SettlementEpsilon is the largest remaining balance still treated as settled.
var SettlementEpsilon = decimal.RequireFromString("0.01")

var hundred = decimal.NewFromInt(100)

// Input holds everything needed to value a debt.
type Input struct {
	Principal    decimal.Decimal
	InterestRate decimal.Decimal
	DueDate      time.Time
	Now          time.Time
	PaidTotal    decimal.Decimal
	Status       domain.DebtStatus
}

// Result is the valuation of a debt at Input.Now.
type Result struct {
	Owed      decimal.Decimal
	Remaining decimal.Decimal
	Status    domain.DebtStatus
	// Settled is set when nothing meaningful is left to pay; the caller owning
	// the write moves the debt to PAID.
	Settled bool
}

// OwedAmount applies the flat rate once: principal + principal*rate/100.
// Elapsed time plays no part.
func OwedAmount(principal, rate decimal.Decimal) decimal.Decimal {
	return principal.Add(principal.Mul(rate).Div(hundred))
}

// DeriveStatus returns PAID for paid debts, OVERDUE once now is past the due
// date and PENDING otherwise.
func DeriveStatus(dueDate, now time.Time, current domain.DebtStatus) domain.DebtStatus {
	if current == domain.DebtStatusPaid {
		return domain.DebtStatusPaid
	}
	if now.After(dueDate) {
		return domain.DebtStatusOverdue
	}
	return domain.DebtStatusPending
}

// IsSettled reports whether a remaining balance counts as fully paid.
func IsSettled(remaining decimal.Decimal) bool {
	return remaining.LessThanOrEqual(SettlementEpsilon)
}

// Valuate computes the owed and remaining amounts and the status of a debt.
func Valuate(in Input) (Result, error) {
	if !in.Principal.IsPositive() {
		return Result{}, customError.WrapInvalidInput("principal must be greater than zero")
	}
	if in.InterestRate.IsNegative() {
		return Result{}, customError.WrapInvalidInput("interest rate cannot be negative")
	}
	if in.DueDate.IsZero() {
		return Result{}, customError.WrapInvalidInput("due date is required")
	}

	owed := OwedAmount(in.Principal, in.InterestRate)
	status := DeriveStatus(in.DueDate, in.Now, in.Status)

	result := Result{
		Owed:      owed,
		Remaining: owed.Sub(in.PaidTotal),
		Status:    status,
	}

	if status == domain.DebtStatusPaid || IsSettled(result.Remaining) {
		result.Remaining = decimal.Zero
		result.Settled = true
	}

	return result, nil
}

// SumActive totals the amounts of active payments.
func SumActive(payments []*domain.Payment) decimal.Decimal {
	total := decimal.Zero
	for _, p := range payments {
		if p == nil || !p.Active {
			continue
		}
		total = total.Add(p.Amount)
	}
	return total
}

// Project fills the read-only amount and status fields of debt as of now. It
// does not touch storage: the stored status is only consulted for PAID.
func Project(debt *domain.Debt, paidTotal decimal.Decimal, now time.Time) error {
	result, err := Valuate(Input{
		Principal:    debt.Principal,
		InterestRate: debt.InterestRate,
		DueDate:      debt.DueDate,
		Now:          now,
		PaidTotal:    paidTotal,
		Status:       debt.Status,
	})
	if err != nil {
		return err
	}

	debt.OwedAmount = result.Owed
	debt.PaidAmount = paidTotal
	debt.RemainingAmount = result.Remaining
	debt.Status = result.Status
	if result.Status == domain.DebtStatusPaid {
		debt.CurrentAmount = decimal.Zero
	} else {
		debt.CurrentAmount = result.Owed
	}

	return nil
}
