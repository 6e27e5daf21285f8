package apperror_test

import (
	"errors"
	"testing"

	"github.com/SergioST90/document-processing-system/internal/pkg/apperror"
	"github.com/stretchr/testify/assert"
)

func TestAppError_Error(t *testing.T) {
	err := apperror.NewPersistance("SOME_CODE", "something broke")
	assert.Equal(t, "something broke", err.Error())
}

func TestAppError_Unwrap(t *testing.T) {
	inner := errors.New("driver says no")
	err := apperror.NewTransient(apperror.CodeDbTimeout, "database timeout", inner)

	assert.True(t, errors.Is(err, inner))

	var appErr *apperror.AppError
	assert.True(t, errors.As(err, &appErr))
	assert.Equal(t, apperror.CodeDbTimeout, appErr.Code)
}

func TestAppError_IsRetryable(t *testing.T) {
	tests := []struct {
		name      string
		err       *apperror.AppError
		retryable bool
	}{
		{"transient is retryable", apperror.NewTransient("X", "x"), true},
		{"persistance is not", apperror.NewPersistance("X", "x"), false},
		{"internal is not", apperror.NewInternal("X", "x"), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.retryable, tt.err.IsRetryable())
		})
	}
}

func TestAppError_GetHttpStatus(t *testing.T) {
	tests := []struct {
		name   string
		err    *apperror.AppError
		status int
	}{
		{"mapped code", apperror.NewPersistance(apperror.CodeWorkflowNotFound, "nope"), 404},
		{"conflict", apperror.NewPersistance(apperror.CodeDbConflict, "dup"), 409},
		{"broker", apperror.NewTransient(apperror.CodeBrokerUnavailable, "down"), 503},
		{"fallback persistance", apperror.NewPersistance("UNMAPPED", "x"), 400},
		{"fallback transient", apperror.NewTransient("UNMAPPED", "x"), 503},
		{"fallback internal", apperror.NewInternal("UNMAPPED", "x"), 500},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.status, tt.err.GetHttpStatus())
		})
	}
}

func TestAppError_WithDetail(t *testing.T) {
	err := apperror.NewPersistance("X", "x").
		WithDetail("constraint", "uq_pages_request_page_index").
		WithDetail("table", "pages")

	details, ok := err.Details.(map[string]any)
	assert.True(t, ok)
	assert.Equal(t, "pages", details["table"])
}
