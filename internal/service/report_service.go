package service

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/google/uuid"
	"github.com/segyhp/debt-tracker/internal/domain"
	"github.com/segyhp/debt-tracker/internal/repository"
	"github.com/segyhp/debt-tracker/pkg/clock"
	customError "github.com/segyhp/debt-tracker/pkg/errors"
	"github.com/segyhp/debt-tracker/pkg/utils"

	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"
)

const (
	summarySheet = "Resumo"
	detailSheet  = "Dívidas"
)

var detailHeaders = []string{
	"Devedor", "Telefone", "Valor inicial", "Juros (%)", "Valor com juros",
	"Total pago", "Restante", "Data do empréstimo", "Vencimento", "Status",
}

type reportService struct {
	userRepo    repository.UserRepository
	debtRepo    repository.DebtRepository
	paymentRepo repository.PaymentRepository
	clock       clock.Clock
	logger      *zap.Logger
}

func NewReportService(
	userRepo repository.UserRepository,
	debtRepo repository.DebtRepository,
	paymentRepo repository.PaymentRepository,
	clk clock.Clock,
	logger *zap.Logger,
) ReportService {
	return &reportService{
		userRepo:    userRepo,
		debtRepo:    debtRepo,
		paymentRepo: paymentRepo,
		clock:       clk,
		logger:      logger.Named("reports"),
	}
}

// DebtReport writes an XLSX workbook with a summary sheet and one row per
// debt matching filter. Creation dates bound the From/To range.
func (s *reportService) DebtReport(ctx context.Context, userID uuid.UUID, filter domain.ReportFilter, w io.Writer) error {
	if filter.Status != "" && !filter.Status.Valid() {
		return customError.WrapInvalidInput("invalid status filter")
	}

	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		return lookupError(err, customError.WrapUserNotFound, userID)
	}

	debts, err := s.debtRepo.List(ctx, userID, filter.DebtorID)
	if err != nil {
		return customError.WrapDatabaseError(err)
	}

	now := s.clock.Now()
	debts, err = projectDebts(ctx, s.paymentRepo, debts, now, s.logger)
	if err != nil {
		return err
	}

	selected := make([]*domain.Debt, 0, len(debts))
	for _, debt := range debts {
		if filter.Status != "" && debt.Status != filter.Status {
			continue
		}
		if filter.From != nil && debt.CreatedAt.Before(*filter.From) {
			continue
		}
		if filter.To != nil && debt.CreatedAt.After(*filter.To) {
			continue
		}
		selected = append(selected, debt)
	}

	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", summarySheet); err != nil {
		return err
	}
	if _, err := f.NewSheet(detailSheet); err != nil {
		return err
	}

	if err := writeSummary(f, user, selected, now); err != nil {
		return err
	}
	if err := writeDetails(f, selected); err != nil {
		return err
	}

	return f.Write(w)
}

func writeSummary(f *excelize.File, user *domain.User, debts []*domain.Debt, now time.Time) error {
	principal, owed, paid, remaining := decimal.Zero, decimal.Zero, decimal.Zero, decimal.Zero
	for _, debt := range debts {
		principal = principal.Add(debt.Principal)
		owed = owed.Add(debt.OwedAmount)
		paid = paid.Add(debt.PaidAmount)
		remaining = remaining.Add(debt.RemainingAmount)
	}

	rows := [][]interface{}{
		{"RELATÓRIO DE DÍVIDAS"},
		{"Usuário", user.Name},
		{"Gerado em", now.Format("02/01/2006 15:04")},
		{},
		{"Total de dívidas", len(debts)},
		{"Valor inicial total", principal.InexactFloat64()},
		{"Valor com juros", owed.InexactFloat64()},
		{"Total pago", paid.InexactFloat64()},
		{"Total restante", remaining.InexactFloat64()},
	}

	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(summarySheet, cell, &row); err != nil {
			return err
		}
	}
	return nil
}

func writeDetails(f *excelize.File, debts []*domain.Debt) error {
	for i, header := range detailHeaders {
		cell, err := excelize.CoordinatesToCellName(i+1, 1)
		if err != nil {
			return err
		}
		if err := f.SetCellValue(detailSheet, cell, header); err != nil {
			return err
		}
	}

	for i, debt := range debts {
		var name, phone string
		if debt.Debtor != nil {
			name, phone = debt.Debtor.Name, debt.Debtor.Phone
		}

		row := []interface{}{
			name,
			phone,
			debt.Principal.InexactFloat64(),
			debt.InterestRate.InexactFloat64(),
			debt.OwedAmount.InexactFloat64(),
			debt.PaidAmount.InexactFloat64(),
			debt.RemainingAmount.InexactFloat64(),
			utils.FormatShortDate(debt.LoanDate),
			utils.FormatShortDate(debt.DueDate),
			string(debt.Status),
		}
		if err := f.SetSheetRow(detailSheet, fmt.Sprintf("A%d", i+2), &row); err != nil {
			return err
		}
	}
	return nil
}
