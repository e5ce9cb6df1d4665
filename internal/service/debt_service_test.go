package service

import (
	"context"
	"database/sql"
	"testing"
	"time"

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

type debtServiceFixture struct {
	debts       *mocks.MockDebtRepository
	debtors     *mocks.MockDebtorRepository
	payments    *mocks.MockPaymentRepository
	collaterals *mocks.MockCollateralRepository
	cache       *mocks.MockCache
	service     DebtService
}

func newDebtServiceFixture() *debtServiceFixture {
	f := &debtServiceFixture{
		debts:       &mocks.MockDebtRepository{},
		debtors:     &mocks.MockDebtorRepository{},
		payments:    &mocks.MockPaymentRepository{},
		collaterals: &mocks.MockCollateralRepository{},
		cache:       &mocks.MockCache{},
	}
	f.service = NewDebtService(f.debts, f.debtors, f.payments, f.collaterals, f.cache, clock.Fixed(testNow), zap.NewNop())
	return f
}

func TestCreateDebt_Success(t *testing.T) {
	// Arrange
	f := newDebtServiceFixture()
	userID := uuid.New()
	debtor := &domain.Debtor{ID: uuid.New(), UserID: userID, Name: "João", Phone: "841234567"}
	periodicity := 3

	f.debtors.On("GetByID", mock.Anything, userID, debtor.ID).Return(debtor, nil)
	f.debts.On("Create", mock.Anything, mock.MatchedBy(func(debt *domain.Debt) bool {
		return debt.UserID == userID &&
			debt.Status == domain.DebtStatusPending &&
			debt.CurrentAmount.Equal(decimal.NewFromInt(1150))
	})).Return(nil)
	f.cache.On("Delete", mock.Anything, []string{cache.DashboardKey(userID)}).Return(nil)

	// Act
	debt, err := f.service.Create(context.Background(), userID, &domain.DebtRequest{
		DebtorID:          debtor.ID,
		Principal:         decimal.NewFromInt(1000),
		InterestRate:      decimal.NewFromInt(15),
		DueDate:           "2025-11-10",
		AutoNotify:        true,
		NotifyPeriodicity: &periodicity,
	})

	// Assert
	require.NoError(t, err)
	assert.True(t, debt.RemainingAmount.Equal(decimal.NewFromInt(1150)))
	assert.Equal(t, testNow, debt.LoanDate)
	assert.Equal(t, debtor, debt.Debtor)
	f.debts.AssertExpectations(t)
	f.cache.AssertExpectations(t)
}

func TestCreateDebt_Validation(t *testing.T) {
	tests := []struct {
		name    string
		request *domain.DebtRequest
	}{
		{
			name:    "bad due date",
			request: &domain.DebtRequest{Principal: decimal.NewFromInt(10), DueDate: "next week"},
		},
		{
			name:    "auto notify without periodicity",
			request: &domain.DebtRequest{Principal: decimal.NewFromInt(10), DueDate: "2025-11-10", AutoNotify: true},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newDebtServiceFixture()

			_, err := f.service.Create(context.Background(), uuid.New(), tt.request)

			assert.Equal(t, customError.ErrCodeInvalidInput, customError.Code(err))
			f.debts.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
		})
	}
}

func TestCreateDebt_UnknownDebtor(t *testing.T) {
	f := newDebtServiceFixture()
	userID, debtorID := uuid.New(), uuid.New()
	f.debtors.On("GetByID", mock.Anything, userID, debtorID).Return(nil, sql.ErrNoRows)

	_, err := f.service.Create(context.Background(), userID, &domain.DebtRequest{
		DebtorID:  debtorID,
		Principal: decimal.NewFromInt(1000),
		DueDate:   "2025-11-10",
	})

	assert.Equal(t, customError.ErrCodeDebtorNotFound, customError.Code(err))
}

func TestListDebts_FiltersOnProjectedStatus(t *testing.T) {
	f := newDebtServiceFixture()
	userID := uuid.New()

	late := newTestDebt(userID, testNow.AddDate(0, 0, -3))
	upcoming := newTestDebt(userID, testNow.AddDate(0, 0, 5))
	paid := newTestDebt(userID, testNow.AddDate(0, 0, -10))
	paid.Status = domain.DebtStatusPaid

	f.debts.On("List", mock.Anything, userID, (*uuid.UUID)(nil)).Return([]*domain.Debt{paid, late, upcoming}, nil)
	f.payments.On("ListActiveByDebtIDs", mock.Anything, mock.Anything).Return(map[uuid.UUID][]*domain.Payment{
		late.ID: {payment(late.ID, 100)},
	}, nil)

	debts, err := f.service.List(context.Background(), userID, domain.DebtFilter{Status: domain.DebtStatusOverdue})

	require.NoError(t, err)
	require.Len(t, debts, 1)
	assert.Equal(t, late.ID, debts[0].ID)
	assert.True(t, debts[0].RemainingAmount.Equal(decimal.NewFromInt(1000)))
	f.debts.AssertNotCalled(t, "UpdateState", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestListDebts_InvalidStatus(t *testing.T) {
	f := newDebtServiceFixture()

	_, err := f.service.List(context.Background(), uuid.New(), domain.DebtFilter{Status: "LATE"})

	assert.Equal(t, customError.ErrCodeInvalidInput, customError.Code(err))
}

func TestGetDebt_ProjectsWithoutWriting(t *testing.T) {
	f := newDebtServiceFixture()
	userID := uuid.New()
	debt := newTestDebt(userID, testNow.AddDate(0, 0, -1))

	f.debts.On("GetByID", mock.Anything, userID, debt.ID).Return(debt, nil)
	f.payments.On("ListByDebt", mock.Anything, debt.ID).Return([]*domain.Payment{payment(debt.ID, 300)}, nil)
	f.collaterals.On("ListByDebt", mock.Anything, debt.ID).Return([]*domain.Collateral{}, nil)

	got, err := f.service.Get(context.Background(), userID, debt.ID)

	require.NoError(t, err)
	assert.Equal(t, domain.DebtStatusOverdue, got.Status)
	assert.True(t, got.PaidAmount.Equal(decimal.NewFromInt(300)))
	assert.True(t, got.RemainingAmount.Equal(decimal.NewFromInt(800)))
	assert.Len(t, got.Payments, 1)
	f.debts.AssertNotCalled(t, "UpdateState", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	f.debts.AssertNotCalled(t, "Update", mock.Anything, mock.Anything)
}

func TestMarkPaid(t *testing.T) {
	f := newDebtServiceFixture()
	userID := uuid.New()
	debt := newTestDebt(userID, testNow.AddDate(0, 0, -1))
	settled := *debt
	settled.Status = domain.DebtStatusPaid
	settled.CurrentAmount = decimal.Zero

	f.debts.On("GetByID", mock.Anything, userID, debt.ID).Return(debt, nil).Once()
	f.debts.On("UpdateState", mock.Anything, debt.ID, domain.DebtStatusPaid, decimal.Zero).Return(nil)
	f.debts.On("GetByID", mock.Anything, userID, debt.ID).Return(&settled, nil).Once()
	f.payments.On("ListByDebt", mock.Anything, debt.ID).Return([]*domain.Payment{}, nil)
	f.collaterals.On("ListByDebt", mock.Anything, debt.ID).Return([]*domain.Collateral{}, nil)
	f.cache.On("Delete", mock.Anything, []string{cache.DashboardKey(userID)}).Return(nil)

	got, err := f.service.MarkPaid(context.Background(), userID, debt.ID)

	require.NoError(t, err)
	assert.Equal(t, domain.DebtStatusPaid, got.Status)
	assert.True(t, got.RemainingAmount.IsZero())
	f.debts.AssertExpectations(t)
}

func TestIncreaseInterest(t *testing.T) {
	f := newDebtServiceFixture()
	userID := uuid.New()
	debt := newTestDebt(userID, testNow.AddDate(0, 0, 5))

	f.debts.On("GetByID", mock.Anything, userID, debt.ID).Return(debt, nil)
	f.payments.On("ListByDebt", mock.Anything, debt.ID).Return([]*domain.Payment{}, nil)
	f.collaterals.On("ListByDebt", mock.Anything, debt.ID).Return([]*domain.Collateral{}, nil)
	f.debts.On("Update", mock.Anything, mock.MatchedBy(func(d *domain.Debt) bool {
		return d.InterestRate.Equal(decimal.NewFromInt(20)) && d.CurrentAmount.Equal(decimal.NewFromInt(1200))
	})).Return(nil)
	f.cache.On("Delete", mock.Anything, mock.Anything).Return(nil)

	got, err := f.service.IncreaseInterest(context.Background(), userID, debt.ID, &domain.IncreaseInterestRequest{
		InterestRate: decimal.NewFromInt(20),
	})

	require.NoError(t, err)
	assert.True(t, got.OwedAmount.Equal(decimal.NewFromInt(1200)))
	f.debts.AssertExpectations(t)
}

func TestDeleteDebt_NotFound(t *testing.T) {
	f := newDebtServiceFixture()
	userID, debtID := uuid.New(), uuid.New()
	f.debts.On("SoftDelete", mock.Anything, userID, debtID).Return(sql.ErrNoRows)

	err := f.service.Delete(context.Background(), userID, debtID)

	assert.Equal(t, customError.ErrCodeDebtNotFound, customError.Code(err))
	f.cache.AssertNotCalled(t, "Delete", mock.Anything, mock.Anything)
}

func TestListDebts_SkipsDebtThatCannotBeValued(t *testing.T) {
	f := newDebtServiceFixture()
	userID := uuid.New()

	good := newTestDebt(userID, testNow.AddDate(0, 0, 5))
	broken := newTestDebt(userID, testNow.AddDate(0, 0, 2))
	broken.Principal = decimal.Zero

	f.debts.On("List", mock.Anything, userID, (*uuid.UUID)(nil)).Return([]*domain.Debt{good, broken}, nil)
	f.payments.On("ListActiveByDebtIDs", mock.Anything, mock.Anything).Return(map[uuid.UUID][]*domain.Payment{}, nil)

	debts, err := f.service.List(context.Background(), userID, domain.DebtFilter{})

	require.NoError(t, err)
	require.Len(t, debts, 1)
	assert.Equal(t, good.ID, debts[0].ID)
	assert.True(t, debts[0].RemainingAmount.Equal(decimal.NewFromInt(1100)))
}

func TestUpdateDebt(t *testing.T) {
	tests := []struct {
		name           string
		storedStatus   domain.DebtStatus
		storedDue      time.Time
		payments       []int64
		interestRate   int64
		newDebtor      bool
		expectedStatus domain.DebtStatus
		expectedAmount int64
		expectedCode   string
	}{
		{
			name:           "overdue debt moved to a future due date becomes pending",
			storedStatus:   domain.DebtStatusOverdue,
			storedDue:      testNow.AddDate(0, 0, -3),
			interestRate:   10,
			expectedStatus: domain.DebtStatusPending,
			expectedAmount: 1100,
		},
		{
			name:           "paid debt stays paid",
			storedStatus:   domain.DebtStatusPaid,
			storedDue:      testNow.AddDate(0, 0, -3),
			interestRate:   10,
			expectedStatus: domain.DebtStatusPaid,
			expectedAmount: 0,
		},
		{
			name:           "new terms covered by payments settle the debt",
			storedStatus:   domain.DebtStatusPending,
			storedDue:      testNow.AddDate(0, 0, 5),
			payments:       []int64{600, 400},
			interestRate:   0,
			expectedStatus: domain.DebtStatusPaid,
			expectedAmount: 0,
		},
		{
			name:         "unknown new debtor",
			storedStatus: domain.DebtStatusPending,
			storedDue:    testNow.AddDate(0, 0, 5),
			interestRate: 10,
			newDebtor:    true,
			expectedCode: customError.ErrCodeDebtorNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			// Arrange
			f := newDebtServiceFixture()
			userID := uuid.New()
			debt := newTestDebt(userID, tt.storedDue)
			debt.Status = tt.storedStatus
			if tt.storedStatus == domain.DebtStatusPaid {
				debt.CurrentAmount = decimal.Zero
			}

			payments := make([]*domain.Payment, 0, len(tt.payments))
			for _, amount := range tt.payments {
				payments = append(payments, payment(debt.ID, amount))
			}

			request := &domain.DebtRequest{
				DebtorID:     debt.DebtorID,
				Principal:    decimal.NewFromInt(1000),
				InterestRate: decimal.NewFromInt(tt.interestRate),
				DueDate:      "2025-11-10",
			}
			if tt.newDebtor {
				request.DebtorID = uuid.New()
				f.debtors.On("GetByID", mock.Anything, userID, request.DebtorID).Return(nil, sql.ErrNoRows)
			}

			f.debts.On("GetByID", mock.Anything, userID, debt.ID).Return(debt, nil)
			f.payments.On("ListByDebt", mock.Anything, debt.ID).Return(payments, nil)
			f.collaterals.On("ListByDebt", mock.Anything, debt.ID).Return([]*domain.Collateral{}, nil)
			f.debts.On("Update", mock.Anything, mock.MatchedBy(func(d *domain.Debt) bool {
				return d.Status == tt.expectedStatus && d.CurrentAmount.Equal(decimal.NewFromInt(tt.expectedAmount))
			})).Return(nil)
			f.cache.On("Delete", mock.Anything, []string{cache.DashboardKey(userID)}).Return(nil)

			// Act
			got, err := f.service.Update(context.Background(), userID, debt.ID, request)

			// Assert
			if tt.expectedCode != "" {
				assert.Equal(t, tt.expectedCode, customError.Code(err))
				f.debts.AssertNotCalled(t, "Update", mock.Anything, mock.Anything)
				f.cache.AssertNotCalled(t, "Delete", mock.Anything, mock.Anything)
				return
			}

			require.NoError(t, err)
			assert.Equal(t, tt.expectedStatus, got.Status)
			assert.True(t, got.CurrentAmount.Equal(decimal.NewFromInt(tt.expectedAmount)))
			f.debts.AssertCalled(t, "Update", mock.Anything, mock.Anything)
			f.cache.AssertExpectations(t)
		})
	}
}
