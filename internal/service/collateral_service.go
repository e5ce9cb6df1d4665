package service

import (
	"context"
	"io"

	"github.com/google/uuid"
	"github.com/segyhp/debt-tracker/internal/domain"
	"github.com/segyhp/debt-tracker/internal/repository"
	"github.com/segyhp/debt-tracker/pkg/clock"
	customError "github.com/segyhp/debt-tracker/pkg/errors"

	"go.uber.org/zap"
)

type collateralService struct {
	collateralRepo repository.CollateralRepository
	debtRepo       repository.DebtRepository
	files          FileStore
	clock          clock.Clock
	logger         *zap.Logger
}

func NewCollateralService(
	collateralRepo repository.CollateralRepository,
	debtRepo repository.DebtRepository,
	files FileStore,
	clk clock.Clock,
	logger *zap.Logger,
) CollateralService {
	return &collateralService{
		collateralRepo: collateralRepo,
		debtRepo:       debtRepo,
		files:          files,
		clock:          clk,
		logger:         logger.Named("collaterals"),
	}
}

// Upload stores a file as evidence for a debt. The file is written first and
// removed again when the debt turns out not to exist.
func (s *collateralService) Upload(ctx context.Context, userID uuid.UUID, request *domain.UploadCollateralRequest, file io.Reader) (*domain.Collateral, error) {
	stored, err := s.files.Save(request.FileName, file)
	if err != nil {
		return nil, err
	}

	if _, err := s.debtRepo.GetByID(ctx, userID, request.DebtID); err != nil {
		s.removeFile(stored.StoredName)
		return nil, lookupError(err, customError.WrapDebtNotFound, request.DebtID)
	}

	collateral := &domain.Collateral{
		ID:          uuid.New(),
		DebtID:      request.DebtID,
		FileName:    request.FileName,
		StoredName:  stored.StoredName,
		MimeType:    stored.MimeType,
		Size:        stored.Size,
		Description: request.Description,
		Active:      true,
		CreatedAt:   s.clock.Now(),
	}
	if err := s.collateralRepo.Create(ctx, collateral); err != nil {
		s.removeFile(stored.StoredName)
		return nil, customError.WrapDatabaseError(err)
	}

	return collateral, nil
}

func (s *collateralService) Get(ctx context.Context, userID, id uuid.UUID) (*domain.Collateral, error) {
	collateral, err := s.collateralRepo.GetByID(ctx, userID, id)
	if err != nil {
		return nil, lookupError(err, customError.WrapCollateralNotFound, id)
	}
	return collateral, nil
}

func (s *collateralService) ListByDebt(ctx context.Context, userID, debtID uuid.UUID) ([]*domain.Collateral, error) {
	if _, err := s.debtRepo.GetByID(ctx, userID, debtID); err != nil {
		return nil, lookupError(err, customError.WrapDebtNotFound, debtID)
	}

	collaterals, err := s.collateralRepo.ListByDebt(ctx, debtID)
	if err != nil {
		return nil, customError.WrapDatabaseError(err)
	}
	return collaterals, nil
}

// Download opens the stored file of a collateral. The caller closes the reader.
func (s *collateralService) Download(ctx context.Context, userID, id uuid.UUID) (*domain.Collateral, io.ReadCloser, error) {
	collateral, err := s.Get(ctx, userID, id)
	if err != nil {
		return nil, nil, err
	}

	file, err := s.files.Open(collateral.StoredName)
	if err != nil {
		return nil, nil, err
	}
	return collateral, file, nil
}

// Delete deactivates the record and removes the file from disk.
func (s *collateralService) Delete(ctx context.Context, userID, id uuid.UUID) error {
	collateral, err := s.Get(ctx, userID, id)
	if err != nil {
		return err
	}

	if err := s.collateralRepo.SoftDelete(ctx, id); err != nil {
		return lookupError(err, customError.WrapCollateralNotFound, id)
	}

	return s.files.Remove(collateral.StoredName)
}

func (s *collateralService) removeFile(storedName string) {
	if err := s.files.Remove(storedName); err != nil {
		s.logger.Warn("failed to remove orphaned upload", zap.String("stored_name", storedName), zap.Error(err))
	}
}
