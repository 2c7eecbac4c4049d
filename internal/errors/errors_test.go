package errors

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAppErrorMessage(t *testing.T) {
	assert.Equal(t, "bad input", Validation("bad input").Error())

	wrapped := Wrap(errors.New("connection reset"), ErrCodePersistence, "save snapshot")
	assert.Equal(t, "save snapshot: connection reset", wrapped.Error())
}

func TestWrapNilReturnsNil(t *testing.T) {
	assert.Nil(t, Wrap(nil, ErrCodeInternal, "ignored"))
	assert.Nil(t, Wrapf(nil, ErrCodeInternal, "ignored %d", 1))
}

func TestUnwrapSupportsErrorsIs(t *testing.T) {
	cause := errors.New("root cause")
	wrapped := Wrap(cause, ErrCodeExecution, "task failed")

	assert.ErrorIs(t, wrapped, cause)

	var appErr *AppError
	require.ErrorAs(t, wrapped, &appErr)
	assert.Equal(t, ErrCodeExecution, appErr.Code)
}

func TestCodePredicates(t *testing.T) {
	tests := []struct {
		err   error
		check func(error) bool
		code  ErrorCode
	}{
		{Validation("v"), IsValidation, ErrCodeValidation},
		{DuplicateID("job", "t1"), IsDuplicateID, ErrCodeDuplicateID},
		{MissingInput("task", "t1", []string{"report"}), IsMissingInput, ErrCodeMissingInput},
		{NotFound("nf"), IsNotFound, ErrCodeNotFound},
		{Execution("ex"), IsExecution, ErrCodeExecution},
		{Canceled("c"), IsCanceled, ErrCodeCanceled},
		{Persistence("p"), IsPersistence, ErrCodePersistence},
		{Internal("i"), IsInternal, ErrCodeInternal},
	}

	for _, tt := range tests {
		t.Run(string(tt.code), func(t *testing.T) {
			assert.True(t, tt.check(tt.err))
			assert.Equal(t, tt.code, GetCode(tt.err))

			// Predicates see through standard wrapping.
			assert.True(t, tt.check(fmt.Errorf("outer: %w", tt.err)))
		})
	}
}

func TestPredicatesRejectOtherErrors(t *testing.T) {
	plain := errors.New("plain")
	assert.False(t, IsValidation(plain))
	assert.False(t, IsNotFound(nil))
	assert.Empty(t, GetCode(plain))
}

func TestValidationField(t *testing.T) {
	err := ValidationField("name", "name is required")
	assert.True(t, IsValidation(err))
	assert.Equal(t, "name", GetField(err))
	assert.Empty(t, GetField(errors.New("plain")))
}

func TestMissingInputMessage(t *testing.T) {
	err := MissingInput("build report", "t2", []string{"report", "summary"})
	assert.True(t, IsMissingInput(err))
	assert.Equal(t,
		"task build report (t2) requires inputs not produced by earlier tasks: report, summary",
		err.Error())
}

func TestDuplicateIDMessage(t *testing.T) {
	err := DuplicateID("job j1", "t2")
	assert.Equal(t, "job j1 already contains child with id t2", err.Error())
}
