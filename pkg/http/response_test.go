package http

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	apperrors "gameden/pkg/errors"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWriteError(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantCode   string
		wantMsg    string
	}{
		{"validation", apperrors.Validation("bad", map[string]any{"date": "required"}), http.StatusUnprocessableEntity, apperrors.CodeValidation, "bad"},
		{"not found", apperrors.NotFoundWithID("Booking", "x"), http.StatusNotFound, apperrors.CodeNotFound, "Booking not found"},
		{"conflict", apperrors.Conflict("taken"), http.StatusConflict, apperrors.CodeConflict, "taken"},
		{"storage", apperrors.Storage("down", errors.New("boom")), http.StatusServiceUnavailable, apperrors.CodeStorage, "down"},
		{"plain error hides its text", errors.New("secret detail"), http.StatusInternalServerError, apperrors.CodeInternal, "An unexpected error occurred"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			require.NoError(t, WriteError(rec, tt.err))

			assert.Equal(t, tt.wantStatus, rec.Code)
			assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))

			var body ErrorResponse
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
			assert.Equal(t, tt.wantCode, body.Code)
			assert.Equal(t, tt.wantMsg, body.Error)
			assert.NotContains(t, rec.Body.String(), "secret detail")
		})
	}
}

func TestWriteSuccessAndCreated(t *testing.T) {
	rec := httptest.NewRecorder()
	require.NoError(t, WriteSuccess(rec, []string{"11:00 AM"}))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"data":["11:00 AM"]}`, rec.Body.String())

	rec = httptest.NewRecorder()
	require.NoError(t, WriteCreated(rec, map[string]string{"id": "1"}))
	assert.Equal(t, http.StatusCreated, rec.Code)

	rec = httptest.NewRecorder()
	WriteNoContent(rec)
	assert.Equal(t, http.StatusNoContent, rec.Code)
}

func TestDecodeJSON(t *testing.T) {
	var v struct {
		Name string `json:"name"`
	}

	r := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"name":"x"}`))
	require.NoError(t, DecodeJSON(r, &v))
	assert.Equal(t, "x", v.Name)

	r = httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"nope":1}`))
	assert.True(t, apperrors.Is(DecodeJSON(r, &v), apperrors.CodeInvalidInput))

	rec := httptest.NewRecorder()
	r = httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"name":"`+strings.Repeat("a", 100)+`"}`))
	r.Body = http.MaxBytesReader(rec, r.Body, 10)
	assert.True(t, apperrors.Is(DecodeJSON(r, &v), CodePayloadTooLarge))
}

func TestQueryInt(t *testing.T) {
	r := httptest.NewRequest(http.MethodGet, "/?duration=3&bad=x", nil)

	v, err := QueryInt(r, "duration", 0)
	require.NoError(t, err)
	assert.Equal(t, 3, v)

	v, err = QueryInt(r, "party_size", 1)
	require.NoError(t, err)
	assert.Equal(t, 1, v)

	_, err = QueryInt(r, "bad", 0)
	assert.True(t, apperrors.Is(err, apperrors.CodeInvalidInput))
}
