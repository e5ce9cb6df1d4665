package errors

import (
	"errors"
	"fmt"
)

// Domain errors
var (
	ErrInvalidInput            = errors.New("invalid input")
	ErrUserNotFound            = errors.New("user not found")
	ErrEmailAlreadyRegistered  = errors.New("email already registered")
	ErrInvalidCredentials      = errors.New("invalid credentials")
	ErrDebtorNotFound          = errors.New("debtor not found")
	ErrDebtNotFound            = errors.New("debt not found")
	ErrDebtNotActive           = errors.New("debt is not active")
	ErrPaymentNotFound         = errors.New("payment not found")
	ErrPaymentExceedsRemaining = errors.New("payment exceeds remaining amount")
	ErrCollateralNotFound      = errors.New("collateral not found")
	ErrFileTypeNotAllowed      = errors.New("file type not allowed")
	ErrFileTooLarge            = errors.New("file too large")
	ErrNotificationNotFound    = errors.New("notification not found")
)

// BusinessError represents a business logic error
type BusinessError struct {
	Code    string
	Message string
	Err     error
}

func (e *BusinessError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s (%v)", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *BusinessError) Unwrap() error {
	return e.Err
}

// NewBusinessError creates a new business error
func NewBusinessError(code, message string, err error) *BusinessError {
	return &BusinessError{
		Code:    code,
		Message: message,
		Err:     err,
	}
}

// Error codes
const (
	ErrCodeInvalidInput            = "INVALID_INPUT"
	ErrCodeUserNotFound            = "USER_NOT_FOUND"
	ErrCodeEmailAlreadyRegistered  = "EMAIL_ALREADY_REGISTERED"
	ErrCodeInvalidCredentials      = "INVALID_CREDENTIALS"
	ErrCodeDebtorNotFound          = "DEBTOR_NOT_FOUND"
	ErrCodeDebtNotFound            = "DEBT_NOT_FOUND"
	ErrCodeDebtNotActive           = "DEBT_NOT_ACTIVE"
	ErrCodePaymentNotFound         = "PAYMENT_NOT_FOUND"
	ErrCodePaymentExceedsRemaining = "PAYMENT_EXCEEDS_REMAINING"
	ErrCodeCollateralNotFound      = "COLLATERAL_NOT_FOUND"
	ErrCodeFileTypeNotAllowed      = "FILE_TYPE_NOT_ALLOWED"
	ErrCodeFileTooLarge            = "FILE_TOO_LARGE"
	ErrCodeNotificationNotFound    = "NOTIFICATION_NOT_FOUND"
	ErrCodeDatabaseError           = "DATABASE_ERROR"
	ErrCodeCacheError              = "CACHE_ERROR"
	ErrCodeStorageError            = "STORAGE_ERROR"
)

// Code returns the business code carried by err, or "" when err is not a BusinessError.
func Code(err error) string {
	var be *BusinessError
	if errors.As(err, &be) {
		return be.Code
	}
	return ""
}

// Wrap common errors with business context
func WrapInvalidInput(message string) *BusinessError {
	return NewBusinessError(ErrCodeInvalidInput, message, ErrInvalidInput)
}

func WrapUserNotFound(userID string) *BusinessError {
	return NewBusinessError(
		ErrCodeUserNotFound,
		fmt.Sprintf("User with ID %s not found", userID),
		ErrUserNotFound,
	)
}

func WrapEmailAlreadyRegistered(email string) *BusinessError {
	return NewBusinessError(
		ErrCodeEmailAlreadyRegistered,
		fmt.Sprintf("Email %s is already registered", email),
		ErrEmailAlreadyRegistered,
	)
}

func WrapInvalidCredentials() *BusinessError {
	return NewBusinessError(ErrCodeInvalidCredentials, "Incorrect email or password", ErrInvalidCredentials)
}

func WrapDebtorNotFound(debtorID string) *BusinessError {
	return NewBusinessError(
		ErrCodeDebtorNotFound,
		fmt.Sprintf("Debtor with ID %s not found", debtorID),
		ErrDebtorNotFound,
	)
}

func WrapDebtNotFound(debtID string) *BusinessError {
	return NewBusinessError(
		ErrCodeDebtNotFound,
		fmt.Sprintf("Debt with ID %s not found", debtID),
		ErrDebtNotFound,
	)
}

func WrapDebtNotActive(debtID string) *BusinessError {
	return NewBusinessError(
		ErrCodeDebtNotActive,
		fmt.Sprintf("Debt with ID %s is not active", debtID),
		ErrDebtNotActive,
	)
}

func WrapPaymentNotFound(paymentID string) *BusinessError {
	return NewBusinessError(
		ErrCodePaymentNotFound,
		fmt.Sprintf("Payment with ID %s not found", paymentID),
		ErrPaymentNotFound,
	)
}

func WrapPaymentExceedsRemaining(amount, remaining string) *BusinessError {
	return NewBusinessError(
		ErrCodePaymentExceedsRemaining,
		fmt.Sprintf("Payment amount %s exceeds the remaining amount %s", amount, remaining),
		ErrPaymentExceedsRemaining,
	)
}

func WrapCollateralNotFound(collateralID string) *BusinessError {
	return NewBusinessError(
		ErrCodeCollateralNotFound,
		fmt.Sprintf("Collateral with ID %s not found", collateralID),
		ErrCollateralNotFound,
	)
}

func WrapFileTypeNotAllowed(mimeType string) *BusinessError {
	return NewBusinessError(
		ErrCodeFileTypeNotAllowed,
		fmt.Sprintf("File type %s is not allowed", mimeType),
		ErrFileTypeNotAllowed,
	)
}

func WrapFileTooLarge(limit int64) *BusinessError {
	return NewBusinessError(
		ErrCodeFileTooLarge,
		fmt.Sprintf("File exceeds the %d byte limit", limit),
		ErrFileTooLarge,
	)
}

func WrapNotificationNotFound(notificationID string) *BusinessError {
	return NewBusinessError(
		ErrCodeNotificationNotFound,
		fmt.Sprintf("Notification with ID %s not found", notificationID),
		ErrNotificationNotFound,
	)
}

func WrapDatabaseError(err error) *BusinessError {
	return NewBusinessError(
		ErrCodeDatabaseError,
		"database operation failed",
		err,
	)
}

func WrapCacheError(err error) *BusinessError {
	return NewBusinessError(
		ErrCodeCacheError,
		"Cache operation failed",
		err,
	)
}

func WrapStorageError(err error) *BusinessError {
	return NewBusinessError(
		ErrCodeStorageError,
		"File storage operation failed",
		err,
	)
}
