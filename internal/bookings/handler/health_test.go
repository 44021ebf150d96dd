package handler

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"gameden/pkg/logger"

	"github.com/julienschmidt/httprouter"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHealthHandler_WithoutDatabase(t *testing.T) {
	router := httprouter.New()
	NewHealthHandler(nil, logger.Nop()).RegisterRoutes(router)

	tests := []struct {
		path     string
		status   string
		database string
	}{
		{"/health", "ok", ""},
		{"/ready", "ready", "memory"},
	}
	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			rec := httptest.NewRecorder()
			router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, tt.path, nil))

			require.Equal(t, http.StatusOK, rec.Code)
			var resp HealthResponse
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
			assert.Equal(t, tt.status, resp.Status)
			assert.Equal(t, tt.database, resp.Database)
		})
	}
}
