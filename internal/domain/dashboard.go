package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type DashboardSummary struct {
	TotalDebtors    int             `json:"total_debtors"`
	TotalLent       decimal.Decimal `json:"total_lent"`
	TotalReceivable decimal.Decimal `json:"total_receivable"`
	OverdueAmount   decimal.Decimal `json:"overdue_amount"`
	ActiveDebts     int             `json:"active_debts"`
}

type DashboardDebt struct {
	ID              uuid.UUID       `json:"id"`
	DebtorName      string          `json:"debtor_name"`
	DebtorPhone     string          `json:"debtor_phone"`
	Principal       decimal.Decimal `json:"principal"`
	OwedAmount      decimal.Decimal `json:"owed_amount"`
	RemainingAmount decimal.Decimal `json:"remaining_amount"`
	DueDate         time.Time       `json:"due_date"`
	Days            int             `json:"days"`
	Status          DebtStatus      `json:"status"`
}

type StatusCounts struct {
	Pending int `json:"pending"`
	Overdue int `json:"overdue"`
	Paid    int `json:"paid"`
}

type DashboardStats struct {
	Summary      DashboardSummary `json:"summary"`
	DueSoon      []DashboardDebt  `json:"due_soon"`
	TopOverdue   []DashboardDebt  `json:"top_overdue"`
	StatusCounts StatusCounts     `json:"status_counts"`
}

// ReportFilter narrows the debt report.
type ReportFilter struct {
	DebtorID *uuid.UUID
	Status   DebtStatus
	From     *time.Time
	To       *time.Time
}
