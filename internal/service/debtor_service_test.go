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

	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestCreateDebtor(t *testing.T) {
	repo := &mocks.MockDebtorRepository{}
	c := &mocks.MockCache{}
	service := NewDebtorService(repo, c, clock.Fixed(testNow), zap.NewNop())
	userID := uuid.New()

	repo.On("Create", mock.Anything, mock.MatchedBy(func(d *domain.Debtor) bool {
		return d.UserID == userID && d.Active && d.CreatedAt.Equal(testNow)
	})).Return(nil)
	c.On("Delete", mock.Anything, []string{cache.DashboardKey(userID)}).Return(nil)

	debtor, err := service.Create(context.Background(), userID, &domain.DebtorRequest{
		Name:        "  João Mucavele ",
		Phone:       " 841234567 ",
		OtherPhones: []string{"", " 821234567 "},
	})

	require.NoError(t, err)
	assert.Equal(t, "João Mucavele", debtor.Name)
	assert.Equal(t, "841234567", debtor.Phone)
	assert.Equal(t, pq.StringArray{"821234567"}, debtor.OtherPhones)
	repo.AssertExpectations(t)
	c.AssertExpectations(t)
}

func TestCreateDebtor_Validation(t *testing.T) {
	tests := []struct {
		name    string
		request *domain.DebtorRequest
	}{
		{name: "short name", request: &domain.DebtorRequest{Name: " Jo ", Phone: "841234567"}},
		{name: "short phone", request: &domain.DebtorRequest{Name: "João", Phone: "8412"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := &mocks.MockDebtorRepository{}
			service := NewDebtorService(repo, cache.Noop{}, clock.Fixed(testNow), zap.NewNop())

			_, err := service.Create(context.Background(), uuid.New(), tt.request)

			assert.Equal(t, customError.ErrCodeInvalidInput, customError.Code(err))
			repo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
		})
	}
}

func TestUpdateDebtor_NotFound(t *testing.T) {
	repo := &mocks.MockDebtorRepository{}
	service := NewDebtorService(repo, cache.Noop{}, clock.Fixed(testNow), zap.NewNop())
	userID, id := uuid.New(), uuid.New()

	repo.On("GetByID", mock.Anything, userID, id).Return(nil, sql.ErrNoRows)

	_, err := service.Update(context.Background(), userID, id, &domain.DebtorRequest{Name: "João", Phone: "841234567"})

	assert.Equal(t, customError.ErrCodeDebtorNotFound, customError.Code(err))
}

func TestDeleteDebtor(t *testing.T) {
	repo := &mocks.MockDebtorRepository{}
	c := &mocks.MockCache{}
	service := NewDebtorService(repo, c, clock.Fixed(testNow), zap.NewNop())
	userID, id := uuid.New(), uuid.New()

	repo.On("SoftDelete", mock.Anything, userID, id).Return(nil)
	c.On("Delete", mock.Anything, []string{cache.DashboardKey(userID)}).Return(nil)

	require.NoError(t, service.Delete(context.Background(), userID, id))
	repo.AssertExpectations(t)
}
