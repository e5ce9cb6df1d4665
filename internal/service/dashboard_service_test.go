package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/segyhp/debt-tracker/internal/cache"
	"github.com/segyhp/debt-tracker/internal/domain"
	"github.com/segyhp/debt-tracker/internal/mocks"
	"github.com/segyhp/debt-tracker/pkg/clock"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestDashboardStats_CacheHit(t *testing.T) {
	debtors := &mocks.MockDebtorRepository{}
	debts := &mocks.MockDebtRepository{}
	payments := &mocks.MockPaymentRepository{}
	c := &mocks.MockCache{}
	service := NewDashboardService(debtors, debts, payments, c, time.Minute, clock.Fixed(testNow), zap.NewNop())
	userID := uuid.New()

	c.On("Get", mock.Anything, cache.DashboardKey(userID), mock.AnythingOfType("*domain.DashboardStats")).
		Run(func(args mock.Arguments) {
			*args.Get(2).(*domain.DashboardStats) = domain.DashboardStats{Summary: domain.DashboardSummary{TotalDebtors: 7}}
		}).
		Return(nil)

	stats, err := service.Stats(context.Background(), userID)

	require.NoError(t, err)
	assert.Equal(t, 7, stats.Summary.TotalDebtors)
	debts.AssertNotCalled(t, "List", mock.Anything, mock.Anything, mock.Anything)
}

func TestDashboardStats_ComputesOnMiss(t *testing.T) {
	debtors := &mocks.MockDebtorRepository{}
	debts := &mocks.MockDebtRepository{}
	payments := &mocks.MockPaymentRepository{}
	c := &mocks.MockCache{}
	service := NewDashboardService(debtors, debts, payments, c, time.Minute, clock.Fixed(testNow), zap.NewNop())
	userID := uuid.New()

	overdue := newTestDebt(userID, testNow.AddDate(0, 0, -4))
	dueSoon := newTestDebt(userID, testNow.AddDate(0, 0, 3))
	later := newTestDebt(userID, testNow.AddDate(0, 1, 0))
	paid := newTestDebt(userID, testNow.AddDate(0, 0, -20))
	paid.Status = domain.DebtStatusPaid

	c.On("Get", mock.Anything, cache.DashboardKey(userID), mock.Anything).Return(cache.ErrMiss)
	debtors.On("CountActive", mock.Anything, userID).Return(3, nil)
	debts.On("List", mock.Anything, userID, (*uuid.UUID)(nil)).Return([]*domain.Debt{paid, overdue, dueSoon, later}, nil)
	payments.On("ListActiveByDebtIDs", mock.Anything, mock.Anything).Return(map[uuid.UUID][]*domain.Payment{
		overdue.ID: {payment(overdue.ID, 100)},
	}, nil)
	c.On("Set", mock.Anything, cache.DashboardKey(userID), mock.AnythingOfType("*domain.DashboardStats"), time.Minute).Return(nil)

	stats, err := service.Stats(context.Background(), userID)

	require.NoError(t, err)
	assert.Equal(t, 3, stats.Summary.TotalDebtors)
	assert.Equal(t, 3, stats.Summary.ActiveDebts)
	assert.True(t, stats.Summary.TotalLent.Equal(decimal.NewFromInt(4000)))
	assert.True(t, stats.Summary.TotalReceivable.Equal(decimal.NewFromInt(3200)))
	assert.True(t, stats.Summary.OverdueAmount.Equal(decimal.NewFromInt(1000)))
	assert.Equal(t, domain.StatusCounts{Pending: 2, Overdue: 1, Paid: 1}, stats.StatusCounts)

	require.Len(t, stats.DueSoon, 1)
	assert.Equal(t, dueSoon.ID, stats.DueSoon[0].ID)
	assert.Equal(t, 3, stats.DueSoon[0].Days)

	require.Len(t, stats.TopOverdue, 1)
	assert.Equal(t, 4, stats.TopOverdue[0].Days)
	assert.Equal(t, "João", stats.TopOverdue[0].DebtorName)
	c.AssertExpectations(t)
}

func TestDashboardStats_CacheFailureFallsBack(t *testing.T) {
	debtors := &mocks.MockDebtorRepository{}
	debts := &mocks.MockDebtRepository{}
	payments := &mocks.MockPaymentRepository{}
	c := &mocks.MockCache{}
	service := NewDashboardService(debtors, debts, payments, c, time.Minute, clock.Fixed(testNow), zap.NewNop())
	userID := uuid.New()

	c.On("Get", mock.Anything, mock.Anything, mock.Anything).Return(errors.New("connection refused"))
	c.On("Set", mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return(errors.New("connection refused"))
	debtors.On("CountActive", mock.Anything, userID).Return(0, nil)
	debts.On("List", mock.Anything, userID, (*uuid.UUID)(nil)).Return([]*domain.Debt{}, nil)

	stats, err := service.Stats(context.Background(), userID)

	require.NoError(t, err)
	assert.Empty(t, stats.DueSoon)
	assert.True(t, stats.Summary.TotalLent.IsZero())
	payments.AssertNotCalled(t, "ListActiveByDebtIDs", mock.Anything, mock.Anything)
}
