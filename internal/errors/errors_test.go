package errors

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAppError(t *testing.T) {
	t.Run("Error returns formatted string", func(t *testing.T) {
		err := New(ErrCodeSessionNotFound, "Session not found")
		assert.Equal(t, "SESSION_NOT_FOUND: Session not found", err.Error())
	})

	t.Run("Error with cause includes cause", func(t *testing.T) {
		cause := errors.New("connection refused")
		err := Wrap(ErrCodeAnalysisUnavailable, "Risk analysis backend unavailable", cause)
		assert.Contains(t, err.Error(), "ANALYSIS_UNAVAILABLE")
		assert.Contains(t, err.Error(), "Risk analysis backend unavailable")
		assert.Contains(t, err.Error(), "connection refused")
	})

	t.Run("WithCause adds cause to error", func(t *testing.T) {
		cause := errors.New("original error")
		err := New(ErrCodeInternal, "Something went wrong").WithCause(cause)
		assert.Equal(t, cause, err.Unwrap())
	})

	t.Run("WithDetails adds details to error", func(t *testing.T) {
		details := map[string]string{"field": "lat", "reason": "out of range"}
		err := New(ErrCodeValidation, "Validation failed").WithDetails(details)
		assert.Equal(t, details, err.Details)
	})
}

func TestErrorConstructors(t *testing.T) {
	tests := []struct {
		name         string
		constructor  func() *AppError
		expectedCode ErrorCode
	}{
		{"SessionNotFound", func() *AppError { return SessionNotFound("abc") }, ErrCodeSessionNotFound},
		{"ValidationError", func() *AppError { return ValidationError("test") }, ErrCodeValidation},
		{"InvalidInput", func() *AppError { return InvalidInput("lat", "out of range") }, ErrCodeInvalidInput},
		{"MissingRequired", func() *AppError { return MissingRequired("session_id") }, ErrCodeMissingRequired},
		{"MalformedAnalysis", func() *AppError { return MalformedAnalysis("danger_level missing") }, ErrCodeMalformedAnalysis},
		{"AnalysisUnavailable", func() *AppError { return AnalysisUnavailable(errors.New("timeout")) }, ErrCodeAnalysisUnavailable},
		{"DeliveryFailed", func() *AppError { return DeliveryFailed("discord", errors.New("503")) }, ErrCodeDeliveryFailed},
		{"RateLimitExceeded", func() *AppError { return RateLimitExceeded() }, ErrCodeRateLimitExceeded},
		{"Internal", func() *AppError { return Internal("test") }, ErrCodeInternal},
		{"External", func() *AppError { return External("nominatim", errors.New("502")) }, ErrCodeExternal},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.constructor()
			assert.Equal(t, tt.expectedCode, err.Code)
		})
	}
}

func TestErrorHelpers(t *testing.T) {
	t.Run("IsAppError detects AppError", func(t *testing.T) {
		assert.True(t, IsAppError(SessionNotFound("abc")))
		assert.False(t, IsAppError(errors.New("plain")))
	})

	t.Run("AsAppError unwraps nested AppError", func(t *testing.T) {
		inner := MalformedAnalysis("summary missing")
		wrapped := fmt.Errorf("process transcript: %w", inner)
		appErr, ok := AsAppError(wrapped)
		assert.True(t, ok)
		assert.Equal(t, ErrCodeMalformedAnalysis, appErr.Code)
	})

	t.Run("GetCode falls back to internal", func(t *testing.T) {
		assert.Equal(t, ErrCodeInternal, GetCode(errors.New("plain")))
		assert.Equal(t, ErrCodeSessionNotFound, GetCode(SessionNotFound("abc")))
	})
}
