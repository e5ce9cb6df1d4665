package service

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"github.com/google/uuid"
	"github.com/segyhp/debt-tracker/internal/config"
	"github.com/segyhp/debt-tracker/internal/domain"
	"github.com/segyhp/debt-tracker/internal/repository"
	"github.com/segyhp/debt-tracker/pkg/clock"
	customError "github.com/segyhp/debt-tracker/pkg/errors"
	"github.com/segyhp/debt-tracker/pkg/middleware"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

type authService struct {
	userRepo repository.UserRepository
	config   config.AuthConfig
	clock    clock.Clock
	logger   *zap.Logger
}

func NewAuthService(userRepo repository.UserRepository, cfg config.AuthConfig, clk clock.Clock, logger *zap.Logger) AuthService {
	return &authService{
		userRepo: userRepo,
		config:   cfg,
		clock:    clk,
		logger:   logger.Named("auth"),
	}
}

// Register creates an account and signs the user in
func (s *authService) Register(ctx context.Context, request *domain.RegisterRequest) (*domain.AuthResponse, error) {
	email := strings.ToLower(strings.TrimSpace(request.Email))

	existing, err := s.userRepo.GetByEmail(ctx, email)
	if err == nil && existing != nil {
		return nil, customError.WrapEmailAlreadyRegistered(email)
	}
	if err != nil && !errors.Is(err, sql.ErrNoRows) {
		return nil, customError.WrapDatabaseError(err)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(request.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	user := &domain.User{
		ID:           uuid.New(),
		Name:         strings.TrimSpace(request.Name),
		Email:        email,
		PasswordHash: string(hash),
		Phone:        request.Phone,
		CreatedAt:    s.clock.Now(),
	}
	if err := s.userRepo.Create(ctx, user); err != nil {
		return nil, customError.WrapDatabaseError(err)
	}

	s.logger.Info("user registered", zap.String("user_id", user.ID.String()))

	return s.authResponse(user)
}

// Login checks the credentials and issues a token
func (s *authService) Login(ctx context.Context, request *domain.LoginRequest) (*domain.AuthResponse, error) {
	user, err := s.userRepo.GetByEmail(ctx, strings.TrimSpace(request.Email))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, customError.WrapInvalidCredentials()
		}
		return nil, customError.WrapDatabaseError(err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(request.Password)); err != nil {
		return nil, customError.WrapInvalidCredentials()
	}

	return s.authResponse(user)
}

func (s *authService) Me(ctx context.Context, userID uuid.UUID) (*domain.User, error) {
	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		return nil, lookupError(err, customError.WrapUserNotFound, userID)
	}
	return user, nil
}

func (s *authService) authResponse(user *domain.User) (*domain.AuthResponse, error) {
	token, err := middleware.IssueToken([]byte(s.config.JWTSecret), user.ID, s.config.TokenTTL, s.clock.Now())
	if err != nil {
		return nil, err
	}
	return &domain.AuthResponse{User: user, Token: token}, nil
}
