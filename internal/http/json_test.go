package httpx

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/conveyorhq/conveyor/internal/errors"
)

func TestDecodeJSONRejectsUnknownFields(t *testing.T) {
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"known":1,"unknown":2}`))
	rec := httptest.NewRecorder()

	var dst struct {
		Known int `json:"known"`
	}
	ok := DecodeJSON(rec, req, &dst)

	assert.False(t, ok)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "invalid_json")
}

func TestDecodeJSONSuccess(t *testing.T) {
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"known":1}`))
	rec := httptest.NewRecorder()

	var dst struct {
		Known int `json:"known"`
	}
	require.True(t, DecodeJSON(rec, req, &dst))
	assert.Equal(t, 1, dst.Known)
}

func TestWriteJSON(t *testing.T) {
	rec := httptest.NewRecorder()
	WriteJSON(rec, http.StatusTeapot, map[string]int{"n": 1})

	assert.Equal(t, http.StatusTeapot, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
	assert.JSONEq(t, `{"n":1}`, rec.Body.String())
}

func TestWriteAppErrorStatusMapping(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		wantCode int
		wantBody string
	}{
		{"validation", apperrors.Validation("bad"), http.StatusBadRequest, "validation"},
		{"missing input", apperrors.MissingInput("task", "t1", []string{"key"}), http.StatusBadRequest, "missing_input"},
		{"duplicate", apperrors.DuplicateID("job", "t1"), http.StatusConflict, "duplicate_id"},
		{"not found", apperrors.NotFound("nope"), http.StatusNotFound, "not_found"},
		{"canceled", apperrors.Canceled("stopped"), http.StatusConflict, "canceled"},
		{"internal", apperrors.Internal("boom"), http.StatusInternalServerError, "internal"},
		{"plain error", errors.New("boom"), http.StatusInternalServerError, "boom"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			WriteAppError(rec, tt.err)

			assert.Equal(t, tt.wantCode, rec.Code)
			assert.Contains(t, rec.Body.String(), tt.wantBody)
		})
	}
}
