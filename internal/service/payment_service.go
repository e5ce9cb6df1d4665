package service

import (
	"context"

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

type paymentService struct {
	paymentRepo repository.PaymentRepository
	debtRepo    repository.DebtRepository
	cache       cache.Cache
	clock       clock.Clock
	logger      *zap.Logger
}

func NewPaymentService(
	paymentRepo repository.PaymentRepository,
	debtRepo repository.DebtRepository,
	c cache.Cache,
	clk clock.Clock,
	logger *zap.Logger,
) PaymentService {
	return &paymentService{
		paymentRepo: paymentRepo,
		debtRepo:    debtRepo,
		cache:       c,
		clock:       clk,
		logger:      logger.Named("payments"),
	}
}

// Create records a payment. It may not exceed what is left to pay; a payment
// that settles the debt marks it PAID.
func (s *paymentService) Create(ctx context.Context, userID uuid.UUID, request *domain.CreatePaymentRequest) (*domain.PaymentResponse, error) {
	if !request.Amount.IsPositive() {
		return nil, customError.WrapInvalidInput("amount must be greater than zero")
	}

	now := s.clock.Now()
	paymentDate := now
	if request.PaymentDate != "" {
		parsed, err := utils.ParseDate(request.PaymentDate)
		if err != nil {
			return nil, customError.WrapInvalidInput("invalid payment date")
		}
		paymentDate = parsed
	}

	debt, err := s.debtRepo.GetByID(ctx, userID, request.DebtID)
	if err != nil {
		return nil, lookupError(err, customError.WrapDebtNotFound, request.DebtID)
	}

	existing, err := s.paymentRepo.ListByDebt(ctx, debt.ID)
	if err != nil {
		return nil, customError.WrapDatabaseError(err)
	}
	paidBefore := valuation.SumActive(existing)
	if err := valuation.Project(debt, paidBefore, now); err != nil {
		return nil, err
	}

	if request.Amount.GreaterThan(debt.RemainingAmount) {
		return nil, customError.WrapPaymentExceedsRemaining(request.Amount.StringFixed(2), debt.RemainingAmount.StringFixed(2))
	}

	payment := &domain.Payment{
		ID:          uuid.New(),
		DebtID:      debt.ID,
		Amount:      request.Amount,
		PaymentDate: paymentDate,
		Description: request.Description,
		Active:      true,
		CreatedAt:   now,
	}
	if err := s.paymentRepo.Create(ctx, payment); err != nil {
		return nil, customError.WrapDatabaseError(err)
	}

	if err := valuation.Project(debt, paidBefore.Add(payment.Amount), now); err != nil {
		return nil, err
	}
	if debt.RemainingAmount.IsZero() {
		if err := s.debtRepo.UpdateState(ctx, debt.ID, domain.DebtStatusPaid, decimal.Zero); err != nil {
			return nil, customError.WrapDatabaseError(err)
		}
		debt.Status = domain.DebtStatusPaid
		debt.CurrentAmount = decimal.Zero
		s.logger.Info("debt settled by payment", zap.String("debt_id", debt.ID.String()))
	}

	invalidateDashboard(ctx, s.cache, s.logger, userID)
	return &domain.PaymentResponse{Payment: payment, Debt: debt}, nil
}

func (s *paymentService) Get(ctx context.Context, userID, id uuid.UUID) (*domain.Payment, error) {
	payment, err := s.paymentRepo.GetByID(ctx, userID, id)
	if err != nil {
		return nil, lookupError(err, customError.WrapPaymentNotFound, id)
	}
	return payment, nil
}

func (s *paymentService) ListByDebt(ctx context.Context, userID, debtID uuid.UUID) ([]*domain.Payment, error) {
	if _, err := s.debtRepo.GetByID(ctx, userID, debtID); err != nil {
		return nil, lookupError(err, customError.WrapDebtNotFound, debtID)
	}

	payments, err := s.paymentRepo.ListByDebt(ctx, debtID)
	if err != nil {
		return nil, customError.WrapDatabaseError(err)
	}
	return payments, nil
}

// Delete deactivates a payment. A PAID debt left with an open balance goes
// back to PENDING or OVERDUE.
func (s *paymentService) Delete(ctx context.Context, userID, id uuid.UUID) error {
	payment, err := s.paymentRepo.GetByID(ctx, userID, id)
	if err != nil {
		return lookupError(err, customError.WrapPaymentNotFound, id)
	}

	debt, err := s.debtRepo.GetByID(ctx, userID, payment.DebtID)
	if err != nil {
		return lookupError(err, customError.WrapDebtNotFound, payment.DebtID)
	}

	if err := s.paymentRepo.SoftDelete(ctx, id); err != nil {
		return lookupError(err, customError.WrapPaymentNotFound, id)
	}

	if debt.Status == domain.DebtStatusPaid {
		remaining, err := s.paymentRepo.ListByDebt(ctx, debt.ID)
		if err != nil {
			return customError.WrapDatabaseError(err)
		}

		now := s.clock.Now()
		result, err := valuation.Valuate(valuation.Input{
			Principal:    debt.Principal,
			InterestRate: debt.InterestRate,
			DueDate:      debt.DueDate,
			Now:          now,
			PaidTotal:    valuation.SumActive(remaining),
		})
		if err != nil {
			return err
		}

		if !result.Settled {
			if err := s.debtRepo.UpdateState(ctx, debt.ID, result.Status, result.Owed); err != nil {
				return customError.WrapDatabaseError(err)
			}
			s.logger.Info("debt reopened after payment removal",
				zap.String("debt_id", debt.ID.String()),
				zap.String("status", string(result.Status)),
			)
		}
	}

	invalidateDashboard(ctx, s.cache, s.logger, userID)
	return nil
}
