package service

import (
	"context"
	"database/sql"
	"testing"

	"github.com/google/uuid"
	"github.com/segyhp/debt-tracker/internal/cache"
	"github.com/segyhp/debt-tracker/internal/domain"
	"github.com/segyhp/debt-tracker/internal/mocks"
	"github.com/segyhp/debt-tracker/pkg/clock"
	customError "github.com/segyhp/debt-tracker/pkg/errors"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newPaymentService() (PaymentService, *mocks.MockPaymentRepository, *mocks.MockDebtRepository, *mocks.MockCache) {
	payments := &mocks.MockPaymentRepository{}
	debts := &mocks.MockDebtRepository{}
	c := &mocks.MockCache{}
	return NewPaymentService(payments, debts, c, clock.Fixed(testNow), zap.NewNop()), payments, debts, c
}

func TestCreatePayment_ExceedsRemaining(t *testing.T) {
	service, payments, debts, _ := newPaymentService()
	userID := uuid.New()
	debt := newTestDebt(userID, testNow.AddDate(0, 0, 5))

	debts.On("GetByID", mock.Anything, userID, debt.ID).Return(debt, nil)
	payments.On("ListByDebt", mock.Anything, debt.ID).Return([]*domain.Payment{payment(debt.ID, 600)}, nil)

	_, err := service.Create(context.Background(), userID, &domain.CreatePaymentRequest{
		DebtID: debt.ID,
		Amount: decimal.NewFromInt(600),
	})

	assert.Equal(t, customError.ErrCodePaymentExceedsRemaining, customError.Code(err))
	payments.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestCreatePayment_Partial(t *testing.T) {
	service, payments, debts, c := newPaymentService()
	userID := uuid.New()
	debt := newTestDebt(userID, testNow.AddDate(0, 0, 5))

	debts.On("GetByID", mock.Anything, userID, debt.ID).Return(debt, nil)
	payments.On("ListByDebt", mock.Anything, debt.ID).Return([]*domain.Payment{}, nil)
	payments.On("Create", mock.Anything, mock.MatchedBy(func(p *domain.Payment) bool {
		return p.DebtID == debt.ID && p.Active && p.PaymentDate.Equal(testNow)
	})).Return(nil)
	c.On("Delete", mock.Anything, []string{cache.DashboardKey(userID)}).Return(nil)

	response, err := service.Create(context.Background(), userID, &domain.CreatePaymentRequest{
		DebtID: debt.ID,
		Amount: decimal.NewFromInt(400),
	})

	require.NoError(t, err)
	assert.Equal(t, domain.DebtStatusPending, response.Debt.Status)
	assert.True(t, response.Debt.RemainingAmount.Equal(decimal.NewFromInt(700)))
	debts.AssertNotCalled(t, "UpdateState", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	c.AssertExpectations(t)
}

func TestCreatePayment_SettlesDebt(t *testing.T) {
	service, payments, debts, c := newPaymentService()
	userID := uuid.New()
	debt := newTestDebt(userID, testNow.AddDate(0, 0, -2))

	debts.On("GetByID", mock.Anything, userID, debt.ID).Return(debt, nil)
	payments.On("ListByDebt", mock.Anything, debt.ID).Return([]*domain.Payment{payment(debt.ID, 600)}, nil)
	payments.On("Create", mock.Anything, mock.Anything).Return(nil)
	debts.On("UpdateState", mock.Anything, debt.ID, domain.DebtStatusPaid, decimal.Zero).Return(nil)
	c.On("Delete", mock.Anything, mock.Anything).Return(nil)

	response, err := service.Create(context.Background(), userID, &domain.CreatePaymentRequest{
		DebtID:      debt.ID,
		Amount:      decimal.NewFromInt(500),
		PaymentDate: "2025-10-09",
	})

	require.NoError(t, err)
	assert.Equal(t, domain.DebtStatusPaid, response.Debt.Status)
	assert.True(t, response.Debt.RemainingAmount.IsZero())
	assert.Equal(t, 9, response.Payment.PaymentDate.Day())
	debts.AssertExpectations(t)
}

func TestCreatePayment_UnknownDebt(t *testing.T) {
	service, _, debts, _ := newPaymentService()
	userID, debtID := uuid.New(), uuid.New()
	debts.On("GetByID", mock.Anything, userID, debtID).Return(nil, sql.ErrNoRows)

	_, err := service.Create(context.Background(), userID, &domain.CreatePaymentRequest{
		DebtID: debtID,
		Amount: decimal.NewFromInt(10),
	})

	assert.Equal(t, customError.ErrCodeDebtNotFound, customError.Code(err))
}

func TestDeletePayment_ReopensPaidDebt(t *testing.T) {
	service, payments, debts, c := newPaymentService()
	userID := uuid.New()
	debt := newTestDebt(userID, testNow.AddDate(0, 0, -2))
	debt.Status = domain.DebtStatusPaid
	removed := payment(debt.ID, 1100)

	payments.On("GetByID", mock.Anything, userID, removed.ID).Return(removed, nil)
	debts.On("GetByID", mock.Anything, userID, debt.ID).Return(debt, nil)
	payments.On("SoftDelete", mock.Anything, removed.ID).Return(nil)
	payments.On("ListByDebt", mock.Anything, debt.ID).Return([]*domain.Payment{}, nil)
	debts.On("UpdateState", mock.Anything, debt.ID, domain.DebtStatusOverdue, mock.MatchedBy(decimalEqual(1100))).Return(nil)
	c.On("Delete", mock.Anything, []string{cache.DashboardKey(userID)}).Return(nil)

	err := service.Delete(context.Background(), userID, removed.ID)

	require.NoError(t, err)
	debts.AssertExpectations(t)
	payments.AssertExpectations(t)
}

func TestDeletePayment_KeepsSettledDebtPaid(t *testing.T) {
	service, payments, debts, c := newPaymentService()
	userID := uuid.New()
	debt := newTestDebt(userID, testNow.AddDate(0, 0, 5))
	debt.Status = domain.DebtStatusPaid
	removed := payment(debt.ID, 100)

	payments.On("GetByID", mock.Anything, userID, removed.ID).Return(removed, nil)
	debts.On("GetByID", mock.Anything, userID, debt.ID).Return(debt, nil)
	payments.On("SoftDelete", mock.Anything, removed.ID).Return(nil)
	payments.On("ListByDebt", mock.Anything, debt.ID).Return([]*domain.Payment{payment(debt.ID, 1100)}, nil)
	c.On("Delete", mock.Anything, mock.Anything).Return(nil)

	err := service.Delete(context.Background(), userID, removed.ID)

	require.NoError(t, err)
	debts.AssertNotCalled(t, "UpdateState", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}
