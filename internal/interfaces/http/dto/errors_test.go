package dto

import (
	"encoding/json"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestGetHTTPStatus(t *testing.T) {
	tests := []struct {
		code     string
		expected int
	}{
		{ErrCodeUnknown, http.StatusInternalServerError},
		{ErrCodeInternal, http.StatusInternalServerError},
		{ErrCodeValidation, http.StatusBadRequest},
		{ErrCodeValidationRequired, http.StatusBadRequest},
		{ErrCodeNotFound, http.StatusNotFound},
		{ErrCodeAlreadyExists, http.StatusConflict},
		{ErrCodeConflict, http.StatusConflict},
		{ErrCodeConcurrencyConflict, http.StatusConflict},
		{ErrCodeInvalidState, http.StatusUnprocessableEntity},
		{ErrCodeBusinessRule, http.StatusUnprocessableEntity},
		{ErrCodeBadRequest, http.StatusBadRequest},
		{ErrCodeInvalidInput, http.StatusBadRequest},
		// Unknown code should return 500
		{"UNKNOWN_CODE", http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.code, func(t *testing.T) {
			assert.Equal(t, tt.expected, GetHTTPStatus(tt.code))
		})
	}
}

func TestNormalizeErrorCode(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		// Domain codes should be normalized
		{"NOT_FOUND", ErrCodeNotFound},
		{"PROPERTY_NOT_FOUND", ErrCodeNotFound},
		{"ALREADY_EXISTS", ErrCodeAlreadyExists},
		{"DUPLICATE_NUMBER", ErrCodeAlreadyExists},
		{"INVALID_INPUT", ErrCodeInvalidInput},
		{"CURRENCY_MISMATCH", ErrCodeInvalidInput},
		{"INVALID_STATE", ErrCodeInvalidState},
		{"INVALID_TRANSITION", ErrCodeInvalidState},
		{"CONCURRENCY_CONFLICT", ErrCodeConcurrencyConflict},
		{"BAD_REQUEST", ErrCodeBadRequest},
		{"INTERNAL_ERROR", ErrCodeInternal},
		// New codes should pass through unchanged
		{ErrCodeNotFound, ErrCodeNotFound},
		{ErrCodeValidation, ErrCodeValidation},
		// Unmapped domain codes should pass through unchanged
		{"OVERPAYMENT", "OVERPAYMENT"},
		{"ALREADY_REVERSED", "ALREADY_REVERSED"},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			assert.Equal(t, tt.expected, NormalizeErrorCode(tt.input))
		})
	}
}

func TestDomainErrorHTTPStatus(t *testing.T) {
	tests := []struct {
		code     string
		expected int
	}{
		{"NOT_FOUND", http.StatusNotFound},
		{"DUPLICATE_NUMBER", http.StatusConflict},
		{"CONCURRENCY_CONFLICT", http.StatusConflict},
		{"CURRENCY_MISMATCH", http.StatusBadRequest},
		// Ledger rejections fall back to 422
		{"OVERPAYMENT", http.StatusUnprocessableEntity},
		{"ALREADY_REVERSED", http.StatusUnprocessableEntity},
		{"INVALID_REVERSAL", http.StatusUnprocessableEntity},
		{"MISSING_RATE", http.StatusUnprocessableEntity},
		{"INVALID_SCHEDULE", http.StatusUnprocessableEntity},
	}

	for _, tt := range tests {
		t.Run(tt.code, func(t *testing.T) {
			assert.Equal(t, tt.expected, DomainErrorHTTPStatus(tt.code))
		})
	}
}

func TestResponseSerialization(t *testing.T) {
	t.Run("success response omits error", func(t *testing.T) {
		resp := NewSuccessResponse(map[string]string{"key": "value"})

		data, err := json.Marshal(resp)
		assert.NoError(t, err)
		assert.Contains(t, string(data), `"success":true`)
		assert.NotContains(t, string(data), `"error"`)
	})

	t.Run("error response carries request ID", func(t *testing.T) {
		resp := NewErrorResponseWithRequestID(ErrCodeNotFound, "Contract not found", "req-1")

		data, err := json.Marshal(resp)
		assert.NoError(t, err)
		assert.Contains(t, string(data), `"request_id":"req-1"`)
		assert.Contains(t, string(data), ErrCodeNotFound)
	})

	t.Run("validation response carries details", func(t *testing.T) {
		resp := NewValidationErrorResponse("Request validation failed", "req-2", []ValidationDetail{
			{Field: "amount", Message: "This field is required"},
		})

		data, err := json.Marshal(resp)
		assert.NoError(t, err)
		assert.Contains(t, string(data), `"field":"amount"`)
	})

	t.Run("meta pagination rounds up", func(t *testing.T) {
		resp := NewSuccessResponseWithMeta([]string{}, 45, 1, 20)

		assert.Equal(t, 3, resp.Meta.TotalPages)
	})
}

func TestTimestampResponse(t *testing.T) {
	now := time.Now()
	ts := TimestampResponse{CreatedAt: now, UpdatedAt: now}

	data, err := json.Marshal(ts)
	assert.NoError(t, err)
	assert.Contains(t, string(data), "created_at")
	assert.Contains(t, string(data), "updated_at")
}
