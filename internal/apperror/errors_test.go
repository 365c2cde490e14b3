package apperror

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestKinds_MatchSentinels(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		sentinel error
	}{
		{"data unavailable", NewDataUnavailable("fetch rows", context.DeadlineExceeded), ErrDataUnavailable},
		{"not found", NewNotFound("customer", "A100"), ErrNotFound},
		{"integrity", NewIntegrity("pvm", decimal.RequireFromString("0.42")), ErrIntegrity},
		{"config", &ConfigError{Problems: []string{"CH_URL is required"}}, ErrConfig},
		{"invalid input", InvalidInput("limit %d", -1), ErrInvalidInput},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			wrapped := fmt.Errorf("outer: %w", tt.err)
			assert.ErrorIs(t, wrapped, tt.sentinel)
		})
	}
}

func TestKinds_AreDistinct(t *testing.T) {
	err := NewNotFound("customer", "X")
	assert.False(t, errors.Is(err, ErrDataUnavailable))
	assert.False(t, errors.Is(NewDataUnavailable("q", nil), ErrNotFound))
}

func TestDataUnavailable_UnwrapsCause(t *testing.T) {
	err := NewDataUnavailable("fetch details", context.DeadlineExceeded)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
	assert.Contains(t, err.Error(), "fetch details")
}

func TestIntegrityError_CarriesResidual(t *testing.T) {
	var ie *IntegrityError
	err := fmt.Errorf("build one-pager: %w", NewIntegrity("branch", decimal.RequireFromString("-3.5")))
	assert.True(t, errors.As(err, &ie))
	assert.Equal(t, "branch", ie.Check)
	assert.Contains(t, err.Error(), "-3.50")
}

func TestConfigError_ListsAllProblems(t *testing.T) {
	err := &ConfigError{Problems: []string{"a", "b"}}
	assert.Equal(t, "config validation failed: a; b", err.Error())
}
