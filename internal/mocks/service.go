package mocks

import (
	"context"
	"io"

	"github.com/google/uuid"
	"github.com/segyhp/debt-tracker/internal/domain"
	"github.com/stretchr/testify/mock"
)

type MockAuthService struct {
	mock.Mock
}

func (m *MockAuthService) Register(ctx context.Context, request *domain.RegisterRequest) (*domain.AuthResponse, error) {
	args := m.Called(ctx, request)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.AuthResponse), args.Error(1)
}

func (m *MockAuthService) Login(ctx context.Context, request *domain.LoginRequest) (*domain.AuthResponse, error) {
	args := m.Called(ctx, request)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.AuthResponse), args.Error(1)
}

func (m *MockAuthService) Me(ctx context.Context, userID uuid.UUID) (*domain.User, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.User), args.Error(1)
}

type MockDebtorService struct {
	mock.Mock
}

func (m *MockDebtorService) Create(ctx context.Context, userID uuid.UUID, request *domain.DebtorRequest) (*domain.Debtor, error) {
	args := m.Called(ctx, userID, request)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Debtor), args.Error(1)
}

func (m *MockDebtorService) Get(ctx context.Context, userID, id uuid.UUID) (*domain.Debtor, error) {
	args := m.Called(ctx, userID, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Debtor), args.Error(1)
}

func (m *MockDebtorService) List(ctx context.Context, userID uuid.UUID) ([]*domain.Debtor, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.Debtor), args.Error(1)
}

func (m *MockDebtorService) Update(ctx context.Context, userID, id uuid.UUID, request *domain.DebtorRequest) (*domain.Debtor, error) {
	args := m.Called(ctx, userID, id, request)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Debtor), args.Error(1)
}

func (m *MockDebtorService) Delete(ctx context.Context, userID, id uuid.UUID) error {
	args := m.Called(ctx, userID, id)
	return args.Error(0)
}

type MockDebtService struct {
	mock.Mock
}

func (m *MockDebtService) Create(ctx context.Context, userID uuid.UUID, request *domain.DebtRequest) (*domain.Debt, error) {
	args := m.Called(ctx, userID, request)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Debt), args.Error(1)
}

func (m *MockDebtService) Get(ctx context.Context, userID, id uuid.UUID) (*domain.Debt, error) {
	args := m.Called(ctx, userID, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Debt), args.Error(1)
}

func (m *MockDebtService) List(ctx context.Context, userID uuid.UUID, filter domain.DebtFilter) ([]*domain.Debt, error) {
	args := m.Called(ctx, userID, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.Debt), args.Error(1)
}

func (m *MockDebtService) Update(ctx context.Context, userID, id uuid.UUID, request *domain.DebtRequest) (*domain.Debt, error) {
	args := m.Called(ctx, userID, id, request)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Debt), args.Error(1)
}

func (m *MockDebtService) IncreaseInterest(ctx context.Context, userID, id uuid.UUID, request *domain.IncreaseInterestRequest) (*domain.Debt, error) {
	args := m.Called(ctx, userID, id, request)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Debt), args.Error(1)
}

func (m *MockDebtService) MarkPaid(ctx context.Context, userID, id uuid.UUID) (*domain.Debt, error) {
	args := m.Called(ctx, userID, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Debt), args.Error(1)
}

func (m *MockDebtService) Delete(ctx context.Context, userID, id uuid.UUID) error {
	args := m.Called(ctx, userID, id)
	return args.Error(0)
}

type MockPaymentService struct {
	mock.Mock
}

func (m *MockPaymentService) Create(ctx context.Context, userID uuid.UUID, request *domain.CreatePaymentRequest) (*domain.PaymentResponse, error) {
	args := m.Called(ctx, userID, request)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.PaymentResponse), args.Error(1)
}

func (m *MockPaymentService) Get(ctx context.Context, userID, id uuid.UUID) (*domain.Payment, error) {
	args := m.Called(ctx, userID, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Payment), args.Error(1)
}

func (m *MockPaymentService) ListByDebt(ctx context.Context, userID, debtID uuid.UUID) ([]*domain.Payment, error) {
	args := m.Called(ctx, userID, debtID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.Payment), args.Error(1)
}

func (m *MockPaymentService) Delete(ctx context.Context, userID, id uuid.UUID) error {
	args := m.Called(ctx, userID, id)
	return args.Error(0)
}

type MockCollateralService struct {
	mock.Mock
}

func (m *MockCollateralService) Upload(ctx context.Context, userID uuid.UUID, request *domain.UploadCollateralRequest, file io.Reader) (*domain.Collateral, error) {
	args := m.Called(ctx, userID, request, file)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Collateral), args.Error(1)
}

func (m *MockCollateralService) Get(ctx context.Context, userID, id uuid.UUID) (*domain.Collateral, error) {
	args := m.Called(ctx, userID, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Collateral), args.Error(1)
}

func (m *MockCollateralService) ListByDebt(ctx context.Context, userID, debtID uuid.UUID) ([]*domain.Collateral, error) {
	args := m.Called(ctx, userID, debtID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.Collateral), args.Error(1)
}

func (m *MockCollateralService) Download(ctx context.Context, userID, id uuid.UUID) (*domain.Collateral, io.ReadCloser, error) {
	args := m.Called(ctx, userID, id)
	if args.Get(0) == nil {
		return nil, nil, args.Error(2)
	}
	return args.Get(0).(*domain.Collateral), args.Get(1).(io.ReadCloser), args.Error(2)
}

func (m *MockCollateralService) Delete(ctx context.Context, userID, id uuid.UUID) error {
	args := m.Called(ctx, userID, id)
	return args.Error(0)
}

type MockNotificationService struct {
	mock.Mock
}

func (m *MockNotificationService) List(ctx context.Context, userID uuid.UUID, filter domain.NotificationFilter) ([]*domain.Notification, error) {
	args := m.Called(ctx, userID, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.Notification), args.Error(1)
}

func (m *MockNotificationService) SendManual(ctx context.Context, userID, debtID uuid.UUID, request *domain.ManualNotificationRequest) (*domain.ManualNotificationResponse, error) {
	args := m.Called(ctx, userID, debtID, request)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.ManualNotificationResponse), args.Error(1)
}

func (m *MockNotificationService) Delete(ctx context.Context, userID, id uuid.UUID) error {
	args := m.Called(ctx, userID, id)
	return args.Error(0)
}

type MockDashboardService struct {
	mock.Mock
}

func (m *MockDashboardService) Stats(ctx context.Context, userID uuid.UUID) (*domain.DashboardStats, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.DashboardStats), args.Error(1)
}

type MockReportService struct {
	mock.Mock
}

func (m *MockReportService) DebtReport(ctx context.Context, userID uuid.UUID, filter domain.ReportFilter, w io.Writer) error {
	args := m.Called(ctx, userID, filter, w)
	return args.Error(0)
}
