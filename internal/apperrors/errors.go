package apperrors

import (
	"errors"
	"fmt"
)

// ErrNotFound indicates that a requested resource could not be found.
var ErrNotFound = errors.New("resource not found")

// ErrValidation indicates that input data failed validation checks.
var ErrValidation = errors.New("validation error")

// ErrDuplicate indicates that an attempt was made to create a resource that already exists.
var ErrDuplicate = errors.New("resource already exists")

// ErrForbidden indicates the caller is authenticated but may not perform the action.
var ErrForbidden = errors.New("forbidden")

// ErrUnauthorized indicates the caller could not be authenticated.
var ErrUnauthorized = errors.New("unauthorized")

// Credit ledger errors. Each one maps to a stable wire code via Code.
var (
	ErrInsufficientCredits = errors.New("insufficient credits")
	ErrInvalidAmount       = errors.New("invalid credit amount")
	ErrMissingReason       = errors.New("reason is required")
	ErrCompanyNotFound     = fmt.Errorf("company %w", ErrNotFound)
	ErrProfileNotFound     = fmt.Errorf("profile %w", ErrNotFound)
	ErrStorageFailure      = errors.New("storage failure")

	// ErrAlreadyUnlocked is returned by ledger stores when a profile_unlock entry
	// targets a profile the company already holds. Services treat it as success.
	ErrAlreadyUnlocked = errors.New("profile already unlocked")
)

// Wire codes carried in the error envelope.
const (
	CodeInsufficientCredits = "InsufficientCredits"
	CodeInvalidAmount       = "InvalidAmount"
	CodeMissingReason       = "MissingReason"
	CodeCompanyNotFound     = "CompanyNotFound"
	CodeProfileNotFound     = "ProfileNotFound"
	CodeStorageFailure      = "StorageFailure"
	CodeNotFound            = "NotFound"
	CodeValidation          = "ValidationError"
	CodeDuplicate           = "Duplicate"
	CodeForbidden           = "Forbidden"
	CodeUnauthorized        = "Unauthorized"
	CodeInternal            = "InternalError"
)

// AppError attaches a wire code and a caller-facing message to an underlying error.
type AppError struct {
	Code    string
	Message string
	Err     error
}

func (e *AppError) Error() string {
	if e.Err == nil {
		return e.Message
	}
	if e.Message == "" {
		return e.Err.Error()
	}
	return fmt.Sprintf("%s: %v", e.Message, e.Err)
}

func (e *AppError) Unwrap() error {
	return e.Err
}

// NewAppError builds an AppError.
func NewAppError(code, message string, err error) *AppError {
	return &AppError{Code: code, Message: message, Err: err}
}

// NewNotFoundError wraps ErrNotFound with the name of the missing entity.
func NewNotFoundError(entity string) error {
	return fmt.Errorf("%s %w", entity, ErrNotFound)
}

// Storage wraps a store-level failure so callers can match ErrStorageFailure
// while the original cause stays available to errors.Is/As.
func Storage(op string, err error) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%w: %s: %w", ErrStorageFailure, op, err)
}

// Code resolves the wire code for err. Specific ledger codes win over the
// generic ones because ErrCompanyNotFound and ErrProfileNotFound also wrap ErrNotFound.
func Code(err error) string {
	var appErr *AppError
	if errors.As(err, &appErr) && appErr.Code != "" {
		return appErr.Code
	}
	switch {
	case errors.Is(err, ErrInsufficientCredits):
		return CodeInsufficientCredits
	case errors.Is(err, ErrInvalidAmount):
		return CodeInvalidAmount
	case errors.Is(err, ErrMissingReason):
		return CodeMissingReason
	case errors.Is(err, ErrCompanyNotFound):
		return CodeCompanyNotFound
	case errors.Is(err, ErrProfileNotFound):
		return CodeProfileNotFound
	case errors.Is(err, ErrStorageFailure):
		return CodeStorageFailure
	case errors.Is(err, ErrNotFound):
		return CodeNotFound
	case errors.Is(err, ErrValidation):
		return CodeValidation
	case errors.Is(err, ErrDuplicate):
		return CodeDuplicate
	case errors.Is(err, ErrForbidden):
		return CodeForbidden
	case errors.Is(err, ErrUnauthorized):
		return CodeUnauthorized
	default:
		return CodeInternal
	}
}
