package apperrors

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCode(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want string
	}{
		{"insufficient credits", fmt.Errorf("unlock: %w", ErrInsufficientCredits), CodeInsufficientCredits},
		{"invalid amount", ErrInvalidAmount, CodeInvalidAmount},
		{"missing reason", ErrMissingReason, CodeMissingReason},
		{"company not found wins over generic not found", fmt.Errorf("load: %w", ErrCompanyNotFound), CodeCompanyNotFound},
		{"profile not found", ErrProfileNotFound, CodeProfileNotFound},
		{"generic not found", NewNotFoundError("entry"), CodeNotFound},
		{"storage failure", Storage("append", errors.New("connection reset")), CodeStorageFailure},
		{"app error code", NewAppError(CodeValidation, "bad cursor", errors.New("decode")), CodeValidation},
		{"unknown", errors.New("boom"), CodeInternal},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Code(tt.err))
		})
	}
}

func TestStorageKeepsCause(t *testing.T) {
	cause := errors.New("deadlock detected")
	err := Storage("append entry", cause)

	assert.ErrorIs(t, err, ErrStorageFailure)
	assert.ErrorIs(t, err, cause)
	assert.Nil(t, Storage("noop", nil))
}

func TestCompanyNotFoundIsNotFound(t *testing.T) {
	assert.ErrorIs(t, ErrCompanyNotFound, ErrNotFound)
	assert.NotErrorIs(t, ErrCompanyNotFound, ErrProfileNotFound)
}
