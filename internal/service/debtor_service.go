package service

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/segyhp/debt-tracker/internal/cache"
	"github.com/segyhp/debt-tracker/internal/domain"
	"github.com/segyhp/debt-tracker/internal/repository"
	"github.com/segyhp/debt-tracker/pkg/clock"
	customError "github.com/segyhp/debt-tracker/pkg/errors"

	"go.uber.org/zap"
)

type debtorService struct {
	debtorRepo repository.DebtorRepository
	cache      cache.Cache
	clock      clock.Clock
	logger     *zap.Logger
}

func NewDebtorService(debtorRepo repository.DebtorRepository, c cache.Cache, clk clock.Clock, logger *zap.Logger) DebtorService {
	return &debtorService{
		debtorRepo: debtorRepo,
		cache:      c,
		clock:      clk,
		logger:     logger.Named("debtors"),
	}
}

func (s *debtorService) Create(ctx context.Context, userID uuid.UUID, request *domain.DebtorRequest) (*domain.Debtor, error) {
	if err := validateDebtor(request); err != nil {
		return nil, err
	}

	now := s.clock.Now()
	debtor := &domain.Debtor{
		ID:          uuid.New(),
		UserID:      userID,
		Name:        strings.TrimSpace(request.Name),
		Phone:       strings.TrimSpace(request.Phone),
		OtherPhones: otherPhones(request.OtherPhones),
		Location:    request.Location,
		Description: request.Description,
		Active:      true,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := s.debtorRepo.Create(ctx, debtor); err != nil {
		return nil, customError.WrapDatabaseError(err)
	}

	invalidateDashboard(ctx, s.cache, s.logger, userID)
	return debtor, nil
}

func (s *debtorService) Get(ctx context.Context, userID, id uuid.UUID) (*domain.Debtor, error) {
	debtor, err := s.debtorRepo.GetByID(ctx, userID, id)
	if err != nil {
		return nil, lookupError(err, customError.WrapDebtorNotFound, id)
	}
	return debtor, nil
}

func (s *debtorService) List(ctx context.Context, userID uuid.UUID) ([]*domain.Debtor, error) {
	debtors, err := s.debtorRepo.List(ctx, userID)
	if err != nil {
		return nil, customError.WrapDatabaseError(err)
	}
	return debtors, nil
}

func (s *debtorService) Update(ctx context.Context, userID, id uuid.UUID, request *domain.DebtorRequest) (*domain.Debtor, error) {
	if err := validateDebtor(request); err != nil {
		return nil, err
	}

	debtor, err := s.Get(ctx, userID, id)
	if err != nil {
		return nil, err
	}

	debtor.Name = strings.TrimSpace(request.Name)
	debtor.Phone = strings.TrimSpace(request.Phone)
	debtor.OtherPhones = otherPhones(request.OtherPhones)
	debtor.Location = request.Location
	debtor.Description = request.Description
	debtor.UpdatedAt = s.clock.Now()

	if err := s.debtorRepo.Update(ctx, debtor); err != nil {
		return nil, lookupError(err, customError.WrapDebtorNotFound, id)
	}

	invalidateDashboard(ctx, s.cache, s.logger, userID)
	return debtor, nil
}

// Delete deactivates a debtor; the row and its history stay.
func (s *debtorService) Delete(ctx context.Context, userID, id uuid.UUID) error {
	if err := s.debtorRepo.SoftDelete(ctx, userID, id); err != nil {
		return lookupError(err, customError.WrapDebtorNotFound, id)
	}

	invalidateDashboard(ctx, s.cache, s.logger, userID)
	return nil
}

func validateDebtor(request *domain.DebtorRequest) error {
	if len([]rune(strings.TrimSpace(request.Name))) < 3 {
		return customError.WrapInvalidInput("name must have at least 3 characters")
	}
	if len(strings.TrimSpace(request.Phone)) < 9 {
		return customError.WrapInvalidInput("phone must have at least 9 digits")
	}
	return nil
}

func otherPhones(phones []string) pq.StringArray {
	out := make(pq.StringArray, 0, len(phones))
	for _, phone := range phones {
		if phone = strings.TrimSpace(phone); phone != "" {
			out = append(out, phone)
		}
	}
	return out
}
