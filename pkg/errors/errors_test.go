package errors

import (
	stderrors "errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConstructors(t *testing.T) {
	tests := []struct {
		name   string
		err    *AppError
		code   string
		status int
		text   string
	}{
		{"not found", NotFound("student S001"), CodeNotFound, http.StatusNotFound, "[NOT_FOUND] student S001 not found"},
		{"uninitialized", Uninitialized("student vectors not built"), CodeUninitialized, http.StatusConflict, "[UNINITIALIZED] student vectors not built"},
		{"validation", Validation("invalid config", "port out of range"), CodeValidation, http.StatusBadRequest, "[VALIDATION_ERROR] invalid config: port out of range"},
		{"bad request", BadRequest("missing id"), CodeBadRequest, http.StatusBadRequest, "[BAD_REQUEST] missing id"},
		{"internal", Internal("query failed", "timeout"), CodeInternalError, http.StatusInternalServerError, "[INTERNAL_ERROR] query failed: timeout"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.code, tt.err.Code)
			assert.Equal(t, tt.status, tt.err.Status)
			assert.Equal(t, tt.text, tt.err.Error())
		})
	}
}

func TestWrapKeepsCause(t *testing.T) {
	cause := stderrors.New("disk full")
	err := Wrap(cause, "failed to save")

	require.NotNil(t, err)
	assert.Equal(t, CodeInternalError, err.Code)
	assert.True(t, stderrors.Is(err, cause))
}

func TestWrapPassesAppErrorThrough(t *testing.T) {
	original := NotFound("student S9")
	wrapped := fmt.Errorf("lookup: %w", original)

	assert.Same(t, original, Wrap(wrapped, "ignored"))
	assert.Nil(t, Wrap(nil, "nothing"))
}

func TestPredicates(t *testing.T) {
	err := fmt.Errorf("plan: %w", NotFound("student S1"))

	assert.True(t, IsNotFound(err))
	assert.False(t, IsUninitialized(err))
	assert.True(t, IsUninitialized(Uninitialized("not ready")))
	assert.False(t, IsNotFound(stderrors.New("plain")))
}
