package service

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/segyhp/debt-tracker/internal/cache"
	"github.com/segyhp/debt-tracker/internal/domain"
	"github.com/segyhp/debt-tracker/internal/repository"
	"github.com/segyhp/debt-tracker/pkg/clock"
	customError "github.com/segyhp/debt-tracker/pkg/errors"
	"github.com/segyhp/debt-tracker/pkg/utils"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

const (
	dueSoonWindow  = 7 * 24 * time.Hour
	dueSoonLimit   = 20
	topOverdueSize = 5
)

type dashboardService struct {
	debtorRepo  repository.DebtorRepository
	debtRepo    repository.DebtRepository
	paymentRepo repository.PaymentRepository
	cache       cache.Cache
	ttl         time.Duration
	clock       clock.Clock
	logger      *zap.Logger
}

func NewDashboardService(
	debtorRepo repository.DebtorRepository,
	debtRepo repository.DebtRepository,
	paymentRepo repository.PaymentRepository,
	c cache.Cache,
	ttl time.Duration,
	clk clock.Clock,
	logger *zap.Logger,
) DashboardService {
	return &dashboardService{
		debtorRepo:  debtorRepo,
		debtRepo:    debtRepo,
		paymentRepo: paymentRepo,
		cache:       c,
		ttl:         ttl,
		clock:       clk,
		logger:      logger.Named("dashboard"),
	}
}

// Stats summarises a user's portfolio, served from cache when fresh
func (s *dashboardService) Stats(ctx context.Context, userID uuid.UUID) (*domain.DashboardStats, error) {
	key := cache.DashboardKey(userID)

	var cached domain.DashboardStats
	err := s.cache.Get(ctx, key, &cached)
	if err == nil {
		return &cached, nil
	}
	if !errors.Is(err, cache.ErrMiss) {
		s.logger.Warn("dashboard cache read failed", zap.Error(customError.WrapCacheError(err)))
	}

	stats, err := s.compute(ctx, userID)
	if err != nil {
		return nil, err
	}

	if err := s.cache.Set(ctx, key, stats, s.ttl); err != nil {
		s.logger.Warn("dashboard cache write failed", zap.Error(customError.WrapCacheError(err)))
	}

	return stats, nil
}

func (s *dashboardService) compute(ctx context.Context, userID uuid.UUID) (*domain.DashboardStats, error) {
	totalDebtors, err := s.debtorRepo.CountActive(ctx, userID)
	if err != nil {
		return nil, customError.WrapDatabaseError(err)
	}

	// List orders by due date, so both lists below come out sorted.
	debts, err := s.debtRepo.List(ctx, userID, nil)
	if err != nil {
		return nil, customError.WrapDatabaseError(err)
	}

	now := s.clock.Now()
	debts, err = projectDebts(ctx, s.paymentRepo, debts, now, s.logger)
	if err != nil {
		return nil, err
	}

	stats := &domain.DashboardStats{
		Summary: domain.DashboardSummary{
			TotalDebtors:    totalDebtors,
			TotalLent:       decimal.Zero,
			TotalReceivable: decimal.Zero,
			OverdueAmount:   decimal.Zero,
		},
		DueSoon:    []domain.DashboardDebt{},
		TopOverdue: []domain.DashboardDebt{},
	}
	horizon := now.Add(dueSoonWindow)

	for _, debt := range debts {
		stats.Summary.TotalLent = stats.Summary.TotalLent.Add(debt.Principal)

		switch debt.Status {
		case domain.DebtStatusPaid:
			stats.StatusCounts.Paid++
			continue
		case domain.DebtStatusOverdue:
			stats.StatusCounts.Overdue++
			stats.Summary.OverdueAmount = stats.Summary.OverdueAmount.Add(debt.RemainingAmount)
			if len(stats.TopOverdue) < topOverdueSize {
				stats.TopOverdue = append(stats.TopOverdue, dashboardDebt(debt, utils.DaysBetweenCeil(debt.DueDate, now)))
			}
		default:
			stats.StatusCounts.Pending++
			if !debt.DueDate.After(horizon) && len(stats.DueSoon) < dueSoonLimit {
				stats.DueSoon = append(stats.DueSoon, dashboardDebt(debt, utils.DaysBetweenCeil(now, debt.DueDate)))
			}
		}

		stats.Summary.ActiveDebts++
		stats.Summary.TotalReceivable = stats.Summary.TotalReceivable.Add(debt.RemainingAmount)
	}

	return stats, nil
}

func dashboardDebt(debt *domain.Debt, days int) domain.DashboardDebt {
	item := domain.DashboardDebt{
		ID:              debt.ID,
		Principal:       debt.Principal,
		OwedAmount:      debt.OwedAmount,
		RemainingAmount: debt.RemainingAmount,
		DueDate:         debt.DueDate,
		Days:            days,
		Status:          debt.Status,
	}
	if debt.Debtor != nil {
		item.DebtorName = debt.Debtor.Name
		item.DebtorPhone = debt.Debtor.Phone
	}
	return item
}
