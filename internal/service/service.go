package service

import (
	"context"
	"database/sql"
	"errors"
	"io"
	"time"

	"github.com/google/uuid"
	"github.com/segyhp/debt-tracker/internal/cache"
	"github.com/segyhp/debt-tracker/internal/domain"
	"github.com/segyhp/debt-tracker/internal/repository"
	"github.com/segyhp/debt-tracker/internal/storage"
	"github.com/segyhp/debt-tracker/internal/valuation"
	customError "github.com/segyhp/debt-tracker/pkg/errors"

	"go.uber.org/zap"
)

type AuthService interface {
	Register(ctx context.Context, request *domain.RegisterRequest) (*domain.AuthResponse, error)
	Login(ctx context.Context, request *domain.LoginRequest) (*domain.AuthResponse, error)
	Me(ctx context.Context, userID uuid.UUID) (*domain.User, error)
}

type DebtorService interface {
	Create(ctx context.Context, userID uuid.UUID, request *domain.DebtorRequest) (*domain.Debtor, error)
	Get(ctx context.Context, userID, id uuid.UUID) (*domain.Debtor, error)
	List(ctx context.Context, userID uuid.UUID) ([]*domain.Debtor, error)
	Update(ctx context.Context, userID, id uuid.UUID, request *domain.DebtorRequest) (*domain.Debtor, error)
	Delete(ctx context.Context, userID, id uuid.UUID) error
}

type DebtService interface {
	Create(ctx context.Context, userID uuid.UUID, request *domain.DebtRequest) (*domain.Debt, error)
	Get(ctx context.Context, userID, id uuid.UUID) (*domain.Debt, error)
	List(ctx context.Context, userID uuid.UUID, filter domain.DebtFilter) ([]*domain.Debt, error)
	Update(ctx context.Context, userID, id uuid.UUID, request *domain.DebtRequest) (*domain.Debt, error)
	IncreaseInterest(ctx context.Context, userID, id uuid.UUID, request *domain.IncreaseInterestRequest) (*domain.Debt, error)
	MarkPaid(ctx context.Context, userID, id uuid.UUID) (*domain.Debt, error)
	Delete(ctx context.Context, userID, id uuid.UUID) error
}

type PaymentService interface {
	Create(ctx context.Context, userID uuid.UUID, request *domain.CreatePaymentRequest) (*domain.PaymentResponse, error)
	Get(ctx context.Context, userID, id uuid.UUID) (*domain.Payment, error)
	ListByDebt(ctx context.Context, userID, debtID uuid.UUID) ([]*domain.Payment, error)
	Delete(ctx context.Context, userID, id uuid.UUID) error
}

type CollateralService interface {
	Upload(ctx context.Context, userID uuid.UUID, request *domain.UploadCollateralRequest, file io.Reader) (*domain.Collateral, error)
	Get(ctx context.Context, userID, id uuid.UUID) (*domain.Collateral, error)
	ListByDebt(ctx context.Context, userID, debtID uuid.UUID) ([]*domain.Collateral, error)
	Download(ctx context.Context, userID, id uuid.UUID) (*domain.Collateral, io.ReadCloser, error)
	Delete(ctx context.Context, userID, id uuid.UUID) error
}

type NotificationService interface {
	List(ctx context.Context, userID uuid.UUID, filter domain.NotificationFilter) ([]*domain.Notification, error)
	SendManual(ctx context.Context, userID, debtID uuid.UUID, request *domain.ManualNotificationRequest) (*domain.ManualNotificationResponse, error)
	Delete(ctx context.Context, userID, id uuid.UUID) error
}

type DashboardService interface {
	Stats(ctx context.Context, userID uuid.UUID) (*domain.DashboardStats, error)
}

type ReportService interface {
	DebtReport(ctx context.Context, userID uuid.UUID, filter domain.ReportFilter, w io.Writer) error
}

// FileStore keeps the bytes of collateral files.
type FileStore interface {
	Save(originalName string, r io.Reader) (*storage.StoredFile, error)
	Open(storedName string) (io.ReadCloser, error)
	Remove(storedName string) error
}

// ManualSender delivers a one-off reminder for a debt.
type ManualSender interface {
	SendManual(ctx context.Context, userID, debtID uuid.UUID, custom string) (*domain.Notification, error)
}

// lookupError turns a repository miss into notFound and anything else into a database error.
func lookupError(err error, notFound func(string) *customError.BusinessError, id uuid.UUID) error {
	if errors.Is(err, sql.ErrNoRows) {
		return notFound(id.String())
	}
	return customError.WrapDatabaseError(err)
}

// projectDebts values every debt as of now, loading active payments in one query.
// A debt that cannot be valued is logged and left out of the result.
func projectDebts(ctx context.Context, payments repository.PaymentRepository, debts []*domain.Debt, now time.Time, logger *zap.Logger) ([]*domain.Debt, error) {
	if len(debts) == 0 {
		return debts, nil
	}

	ids := make([]uuid.UUID, 0, len(debts))
	for _, debt := range debts {
		ids = append(ids, debt.ID)
	}
	grouped, err := payments.ListActiveByDebtIDs(ctx, ids)
	if err != nil {
		return nil, customError.WrapDatabaseError(err)
	}

	projected := make([]*domain.Debt, 0, len(debts))
	for _, debt := range debts {
		if err := valuation.Project(debt, valuation.SumActive(grouped[debt.ID]), now); err != nil {
			logger.Warn("skipping debt that cannot be valued", zap.String("debt_id", debt.ID.String()), zap.Error(err))
			continue
		}
		projected = append(projected, debt)
	}
	return projected, nil
}

// invalidateDashboard drops the cached stats of userID. Failures are logged,
// the entry expires on its own.
func invalidateDashboard(ctx context.Context, c cache.Cache, logger *zap.Logger, userID uuid.UUID) {
	if err := c.Delete(ctx, cache.DashboardKey(userID)); err != nil {
		logger.Warn("failed to invalidate dashboard cache", zap.String("user_id", userID.String()), zap.Error(err))
	}
}
