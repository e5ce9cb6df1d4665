package service

import (
	"context"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/segyhp/debt-tracker/internal/cache"
	"github.com/segyhp/debt-tracker/internal/domain"
	"github.com/segyhp/debt-tracker/internal/repository"
	"github.com/segyhp/debt-tracker/internal/valuation"
	"github.com/segyhp/debt-tracker/pkg/clock"
	customError "github.com/segyhp/debt-tracker/pkg/errors"
	"github.com/segyhp/debt-tracker/pkg/utils"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

type debtService struct {
	debtRepo       repository.DebtRepository
	debtorRepo     repository.DebtorRepository
	paymentRepo    repository.PaymentRepository
	collateralRepo repository.CollateralRepository
	cache          cache.Cache
	clock          clock.Clock
	logger         *zap.Logger
}

func NewDebtService(
	debtRepo repository.DebtRepository,
	debtorRepo repository.DebtorRepository,
	paymentRepo repository.PaymentRepository,
	collateralRepo repository.CollateralRepository,
	c cache.Cache,
	clk clock.Clock,
	logger *zap.Logger,
) DebtService {
	return &debtService{
		debtRepo:       debtRepo,
		debtorRepo:     debtorRepo,
		paymentRepo:    paymentRepo,
		collateralRepo: collateralRepo,
		cache:          c,
		clock:          clk,
		logger:         logger.Named("debts"),
	}
}

// debtTerms is a validated DebtRequest.
type debtTerms struct {
	loanDate time.Time
	dueDate  time.Time
}

func (s *debtService) parseTerms(request *domain.DebtRequest) (*debtTerms, error) {
	terms := &debtTerms{loanDate: s.clock.Now()}

	if request.LoanDate != "" {
		loanDate, err := utils.ParseDate(request.LoanDate)
		if err != nil {
			return nil, customError.WrapInvalidInput("invalid loan date")
		}
		terms.loanDate = loanDate
	}

	dueDate, err := utils.ParseDate(request.DueDate)
	if err != nil {
		return nil, customError.WrapInvalidInput("invalid due date")
	}
	terms.dueDate = dueDate

	if request.AutoNotify && request.NotifyPeriodicity == nil {
		return nil, customError.WrapInvalidInput("notify periodicity is required when auto notify is enabled")
	}
	if request.NotifyPeriodicity != nil && *request.NotifyPeriodicity <= 0 {
		return nil, customError.WrapInvalidInput("notify periodicity must be greater than zero")
	}

	return terms, nil
}

// Create records a new debt valued at creation time
func (s *debtService) Create(ctx context.Context, userID uuid.UUID, request *domain.DebtRequest) (*domain.Debt, error) {
	terms, err := s.parseTerms(request)
	if err != nil {
		return nil, err
	}

	debtor, err := s.debtorRepo.GetByID(ctx, userID, request.DebtorID)
	if err != nil {
		return nil, lookupError(err, customError.WrapDebtorNotFound, request.DebtorID)
	}

	now := s.clock.Now()
	result, err := valuation.Valuate(valuation.Input{
		Principal:    request.Principal,
		InterestRate: request.InterestRate,
		DueDate:      terms.dueDate,
		Now:          now,
		PaidTotal:    decimal.Zero,
		Status:       domain.DebtStatusPending,
	})
	if err != nil {
		return nil, err
	}

	debt := &domain.Debt{
		ID:                uuid.New(),
		UserID:            userID,
		DebtorID:          debtor.ID,
		Principal:         request.Principal,
		InterestRate:      request.InterestRate,
		LoanDate:          terms.loanDate,
		DueDate:           terms.dueDate,
		CurrentAmount:     result.Owed,
		Status:            result.Status,
		AutoNotify:        request.AutoNotify,
		NotifyPeriodicity: request.NotifyPeriodicity,
		Active:            true,
		CreatedAt:         now,
		UpdatedAt:         now,
	}
	if err := s.debtRepo.Create(ctx, debt); err != nil {
		return nil, customError.WrapDatabaseError(err)
	}

	debt.Debtor = debtor
	debt.OwedAmount = result.Owed
	debt.PaidAmount = decimal.Zero
	debt.RemainingAmount = result.Remaining

	s.logger.Info("debt created", zap.String("debt_id", debt.ID.String()), zap.String("user_id", userID.String()))
	invalidateDashboard(ctx, s.cache, s.logger, userID)
	return debt, nil
}

// Get returns a debt with its payments and collaterals, valued as of now
func (s *debtService) Get(ctx context.Context, userID, id uuid.UUID) (*domain.Debt, error) {
	debt, err := s.debtRepo.GetByID(ctx, userID, id)
	if err != nil {
		return nil, lookupError(err, customError.WrapDebtNotFound, id)
	}

	payments, err := s.paymentRepo.ListByDebt(ctx, id)
	if err != nil {
		return nil, customError.WrapDatabaseError(err)
	}
	collaterals, err := s.collateralRepo.ListByDebt(ctx, id)
	if err != nil {
		return nil, customError.WrapDatabaseError(err)
	}

	if err := valuation.Project(debt, valuation.SumActive(payments), s.clock.Now()); err != nil {
		return nil, err
	}
	debt.Payments = payments
	debt.Collaterals = collaterals

	return debt, nil
}

// List returns the user's debts by due date. The status filter applies to the
// projected status, so OVERDUE matches debts that are stored as PENDING.
func (s *debtService) List(ctx context.Context, userID uuid.UUID, filter domain.DebtFilter) ([]*domain.Debt, error) {
	if filter.Status != "" && !filter.Status.Valid() {
		return nil, customError.WrapInvalidInput("invalid status filter")
	}

	debts, err := s.debtRepo.List(ctx, userID, filter.DebtorID)
	if err != nil {
		return nil, customError.WrapDatabaseError(err)
	}

	debts, err = projectDebts(ctx, s.paymentRepo, debts, s.clock.Now(), s.logger)
	if err != nil {
		return nil, err
	}

	filtered := make([]*domain.Debt, 0, len(debts))
	for _, debt := range debts {
		if filter.Status == "" || debt.Status == filter.Status {
			filtered = append(filtered, debt)
		}
	}
	sort.SliceStable(filtered, func(i, j int) bool {
		return filtered[i].DueDate.Before(filtered[j].DueDate)
	})

	return filtered, nil
}

// Update replaces the terms of a debt. Unpaid debts are re-valued; a debt
// settled by the new terms becomes PAID.
func (s *debtService) Update(ctx context.Context, userID, id uuid.UUID, request *domain.DebtRequest) (*domain.Debt, error) {
	terms, err := s.parseTerms(request)
	if err != nil {
		return nil, err
	}

	debt, err := s.debtRepo.GetByID(ctx, userID, id)
	if err != nil {
		return nil, lookupError(err, customError.WrapDebtNotFound, id)
	}

	if request.DebtorID != debt.DebtorID {
		if _, err := s.debtorRepo.GetByID(ctx, userID, request.DebtorID); err != nil {
			return nil, lookupError(err, customError.WrapDebtorNotFound, request.DebtorID)
		}
	}

	debt.DebtorID = request.DebtorID
	debt.Principal = request.Principal
	debt.InterestRate = request.InterestRate
	debt.LoanDate = terms.loanDate
	debt.DueDate = terms.dueDate
	debt.AutoNotify = request.AutoNotify
	debt.NotifyPeriodicity = request.NotifyPeriodicity

	if err := s.revalue(ctx, debt); err != nil {
		return nil, err
	}
	if err := s.debtRepo.Update(ctx, debt); err != nil {
		return nil, lookupError(err, customError.WrapDebtNotFound, id)
	}

	invalidateDashboard(ctx, s.cache, s.logger, userID)
	return s.Get(ctx, userID, id)
}

// IncreaseInterest replaces the interest rate of a debt
func (s *debtService) IncreaseInterest(ctx context.Context, userID, id uuid.UUID, request *domain.IncreaseInterestRequest) (*domain.Debt, error) {
	if !request.InterestRate.IsPositive() {
		return nil, customError.WrapInvalidInput("new interest rate must be greater than zero")
	}

	debt, err := s.debtRepo.GetByID(ctx, userID, id)
	if err != nil {
		return nil, lookupError(err, customError.WrapDebtNotFound, id)
	}

	debt.InterestRate = request.InterestRate
	if err := s.revalue(ctx, debt); err != nil {
		return nil, err
	}
	if err := s.debtRepo.Update(ctx, debt); err != nil {
		return nil, lookupError(err, customError.WrapDebtNotFound, id)
	}

	invalidateDashboard(ctx, s.cache, s.logger, userID)
	return s.Get(ctx, userID, id)
}

// MarkPaid settles a debt regardless of the payments recorded
func (s *debtService) MarkPaid(ctx context.Context, userID, id uuid.UUID) (*domain.Debt, error) {
	if _, err := s.debtRepo.GetByID(ctx, userID, id); err != nil {
		return nil, lookupError(err, customError.WrapDebtNotFound, id)
	}

	if err := s.debtRepo.UpdateState(ctx, id, domain.DebtStatusPaid, decimal.Zero); err != nil {
		return nil, lookupError(err, customError.WrapDebtNotFound, id)
	}

	s.logger.Info("debt marked as paid", zap.String("debt_id", id.String()))
	invalidateDashboard(ctx, s.cache, s.logger, userID)
	return s.Get(ctx, userID, id)
}

func (s *debtService) Delete(ctx context.Context, userID, id uuid.UUID) error {
	if err := s.debtRepo.SoftDelete(ctx, userID, id); err != nil {
		return lookupError(err, customError.WrapDebtNotFound, id)
	}

	invalidateDashboard(ctx, s.cache, s.logger, userID)
	return nil
}

// revalue sets the stored status and amount of debt from its current terms
// and payments. PAID debts stay PAID.
func (s *debtService) revalue(ctx context.Context, debt *domain.Debt) error {
	payments, err := s.paymentRepo.ListByDebt(ctx, debt.ID)
	if err != nil {
		return customError.WrapDatabaseError(err)
	}

	result, err := valuation.Valuate(valuation.Input{
		Principal:    debt.Principal,
		InterestRate: debt.InterestRate,
		DueDate:      debt.DueDate,
		Now:          s.clock.Now(),
		PaidTotal:    valuation.SumActive(payments),
		Status:       debt.Status,
	})
	if err != nil {
		return err
	}

	if result.Settled {
		debt.Status = domain.DebtStatusPaid
		debt.CurrentAmount = decimal.Zero
		return nil
	}
	debt.Status = result.Status
	debt.CurrentAmount = result.Owed
	return nil
}
