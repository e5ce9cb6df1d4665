package service

import (
	"context"
	"database/sql"
	"io"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/segyhp/debt-tracker/internal/domain"
	"github.com/segyhp/debt-tracker/internal/mocks"
	"github.com/segyhp/debt-tracker/internal/storage"
	"github.com/segyhp/debt-tracker/pkg/clock"
	customError "github.com/segyhp/debt-tracker/pkg/errors"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newCollateralService() (CollateralService, *mocks.MockCollateralRepository, *mocks.MockDebtRepository, *mocks.MockFileStore) {
	collaterals := &mocks.MockCollateralRepository{}
	debts := &mocks.MockDebtRepository{}
	files := &mocks.MockFileStore{}
	return NewCollateralService(collaterals, debts, files, clock.Fixed(testNow), zap.NewNop()), collaterals, debts, files
}

func TestUploadCollateral_Success(t *testing.T) {
	service, collaterals, debts, files := newCollateralService()
	userID := uuid.New()
	debt := newTestDebt(userID, testNow)
	stored := &storage.StoredFile{StoredName: "abc_contrato.pdf", MimeType: "application/pdf", Size: 42}
	body := strings.NewReader("%PDF-1.4")

	files.On("Save", "contrato.pdf", body).Return(stored, nil)
	debts.On("GetByID", mock.Anything, userID, debt.ID).Return(debt, nil)
	collaterals.On("Create", mock.Anything, mock.MatchedBy(func(c *domain.Collateral) bool {
		return c.DebtID == debt.ID && c.StoredName == stored.StoredName && c.Active
	})).Return(nil)

	collateral, err := service.Upload(context.Background(), userID, &domain.UploadCollateralRequest{
		DebtID:   debt.ID,
		FileName: "contrato.pdf",
	}, body)

	require.NoError(t, err)
	assert.Equal(t, "application/pdf", collateral.MimeType)
	assert.Equal(t, int64(42), collateral.Size)
	files.AssertNotCalled(t, "Remove", mock.Anything)
	collaterals.AssertExpectations(t)
}

func TestUploadCollateral_RemovesOrphanedFile(t *testing.T) {
	service, collaterals, debts, files := newCollateralService()
	userID, debtID := uuid.New(), uuid.New()
	stored := &storage.StoredFile{StoredName: "abc_foto.png", MimeType: "image/png", Size: 10}

	files.On("Save", "foto.png", mock.Anything).Return(stored, nil)
	debts.On("GetByID", mock.Anything, userID, debtID).Return(nil, sql.ErrNoRows)
	files.On("Remove", "abc_foto.png").Return(nil)

	_, err := service.Upload(context.Background(), userID, &domain.UploadCollateralRequest{
		DebtID:   debtID,
		FileName: "foto.png",
	}, strings.NewReader("png"))

	assert.Equal(t, customError.ErrCodeDebtNotFound, customError.Code(err))
	files.AssertExpectations(t)
	collaterals.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestUploadCollateral_RejectedFile(t *testing.T) {
	service, _, debts, files := newCollateralService()

	files.On("Save", "notas.txt", mock.Anything).Return(nil, customError.WrapFileTypeNotAllowed("text/plain"))

	_, err := service.Upload(context.Background(), uuid.New(), &domain.UploadCollateralRequest{
		DebtID:   uuid.New(),
		FileName: "notas.txt",
	}, strings.NewReader("hello"))

	assert.Equal(t, customError.ErrCodeFileTypeNotAllowed, customError.Code(err))
	debts.AssertNotCalled(t, "GetByID", mock.Anything, mock.Anything, mock.Anything)
}

func TestDownloadCollateral(t *testing.T) {
	service, collaterals, _, files := newCollateralService()
	userID := uuid.New()
	collateral := &domain.Collateral{ID: uuid.New(), StoredName: "abc_foto.png", FileName: "foto.png"}

	collaterals.On("GetByID", mock.Anything, userID, collateral.ID).Return(collateral, nil)
	files.On("Open", "abc_foto.png").Return(io.NopCloser(strings.NewReader("bytes")), nil)

	got, reader, err := service.Download(context.Background(), userID, collateral.ID)
	require.NoError(t, err)
	defer reader.Close()

	content, err := io.ReadAll(reader)
	require.NoError(t, err)
	assert.Equal(t, "foto.png", got.FileName)
	assert.Equal(t, "bytes", string(content))
}

func TestDeleteCollateral(t *testing.T) {
	service, collaterals, _, files := newCollateralService()
	userID := uuid.New()
	collateral := &domain.Collateral{ID: uuid.New(), StoredName: "abc_foto.png"}

	collaterals.On("GetByID", mock.Anything, userID, collateral.ID).Return(collateral, nil)
	collaterals.On("SoftDelete", mock.Anything, collateral.ID).Return(nil)
	files.On("Remove", "abc_foto.png").Return(nil)

	require.NoError(t, service.Delete(context.Background(), userID, collateral.ID))
	collaterals.AssertExpectations(t)
	files.AssertExpectations(t)
}
