package httpserver

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHealthHandler(t *testing.T) {
	get := func(ping func(ctx context.Context) error) (*httptest.ResponseRecorder, map[string]any) {
		rec := httptest.NewRecorder()
		HealthHandler(ping)(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))
		var body map[string]any
		require.NoError(t, json.NewDecoder(rec.Body).Decode(&body))
		return rec, body
	}

	t.Run("no backing store", func(t *testing.T) {
		rec, body := get(nil)
		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, true, body["success"])
	})

	t.Run("healthy database", func(t *testing.T) {
		rec, body := get(func(context.Context) error { return nil })
		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, true, body["success"])
	})

	t.Run("degraded reports failure", func(t *testing.T) {
		rec, body := get(func(context.Context) error { return errors.New("connection refused") })
		assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
		assert.Equal(t, false, body["success"])
		assert.Equal(t, "unavailable", body["error"])
	})
}
