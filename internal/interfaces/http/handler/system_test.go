package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSystemHandler_Health(t *testing.T) {
	t.Run("healthy without checks", func(t *testing.T) {
		h := NewSystemHandler("1.2.3")
		engine := newTestEngine()
		engine.GET("/health", h.Health)

		w := doRequest(t, engine, http.MethodGet, "/health", nil)
		require.Equal(t, http.StatusOK, w.Code)

		var resp HealthResponse
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		assert.Equal(t, "healthy", resp.Status)
		assert.Equal(t, "1.2.3", resp.Version)
		assert.NotEmpty(t, resp.GoVersion)
		assert.Empty(t, resp.Checks)
	})

	t.Run("failing dependency is unhealthy", func(t *testing.T) {
		h := NewSystemHandler("1.2.3").
			WithCheck("database", func(ctx context.Context) error { return nil }).
			WithCheck("redis", func(ctx context.Context) error { return errors.New("connection refused") })
		engine := newTestEngine()
		engine.GET("/health", h.Health)

		w := doRequest(t, engine, http.MethodGet, "/health", nil)
		require.Equal(t, http.StatusServiceUnavailable, w.Code)

		var resp HealthResponse
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		assert.Equal(t, "unhealthy", resp.Status)
		assert.Equal(t, map[string]string{"database": "ok", "redis": "connection refused"}, resp.Checks)
	})

	t.Run("checks get a deadline", func(t *testing.T) {
		var hasDeadline bool
		h := NewSystemHandler("dev").WithCheck("database", func(ctx context.Context) error {
			_, hasDeadline = ctx.Deadline()
			return nil
		})
		engine := newTestEngine()
		engine.GET("/health", h.Health)

		w := doRequest(t, engine, http.MethodGet, "/health", nil)
		assert.Equal(t, http.StatusOK, w.Code)
		assert.True(t, hasDeadline)
	})
}

func TestSystemHandler_Ping(t *testing.T) {
	h := NewSystemHandler("dev")
	engine := newTestEngine()
	engine.GET("/ping", h.Ping)

	w := doRequest(t, engine, http.MethodGet, "/ping", nil)
	require.Equal(t, http.StatusOK, w.Code)

	var pong PingResponse
	resp := decodeResponse(t, w, &pong)
	assert.True(t, resp.Success)
	assert.Equal(t, "pong", pong.Message)
	assert.NotEmpty(t, pong.Timestamp)
}
