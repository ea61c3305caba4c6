package handler

import (
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/erp/manufacturing/internal/domain/shared"
	"github.com/erp/manufacturing/internal/interfaces/http/dto"
	"github.com/erp/manufacturing/internal/interfaces/http/middleware"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBaseHandler_HandleError(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantCode   string
		wantKey    string
	}{
		{
			name:       "user warning",
			err:        shared.NewUserWarning("process_already_exists7", "PROCESS_ALREADY_EXISTS", "Plan already has a process"),
			wantStatus: http.StatusConflict,
			wantCode:   dto.ErrCodeProcessAlreadyExists,
			wantKey:    "process_already_exists7",
		},
		{
			name:       "wrapped user warning",
			err:        fmt.Errorf("create process: %w", shared.NewUserWarning("k1", "PROCESS_ALREADY_EXISTS", "exists")),
			wantStatus: http.StatusConflict,
			wantCode:   dto.ErrCodeProcessAlreadyExists,
			wantKey:    "k1",
		},
		{
			name:       "not found",
			err:        shared.ErrNotFound,
			wantStatus: http.StatusNotFound,
			wantCode:   dto.ErrCodeNotFound,
		},
		{
			name:       "plan not found",
			err:        shared.NewDomainError("PLAN_NOT_FOUND", "Cost plan not found"),
			wantStatus: http.StatusNotFound,
			wantCode:   "ERR_PLAN_NOT_FOUND",
		},
		{
			name:       "missing product",
			err:        shared.NewDomainError("MISSING_PRODUCT", "Cost plan has no product"),
			wantStatus: http.StatusUnprocessableEntity,
			wantCode:   dto.ErrCodeMissingProduct,
		},
		{
			name:       "unmapped business rule",
			err:        shared.NewDomainError("FIELD_READONLY", "Process is read-only"),
			wantStatus: http.StatusUnprocessableEntity,
			wantCode:   "ERR_FIELD_READONLY",
		},
		{
			name:       "unexpected error",
			err:        errors.New("disk on fire"),
			wantStatus: http.StatusInternalServerError,
			wantCode:   dto.ErrCodeInternal,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			engine := newTestEngine()
			h := &BaseHandler{}
			engine.GET("/fail", func(c *gin.Context) { h.HandleError(c, tt.err) })

			w := doRequest(t, engine, http.MethodGet, "/fail", nil)

			assert.Equal(t, tt.wantStatus, w.Code)
			resp := decodeResponse(t, w, nil)
			assert.False(t, resp.Success)
			require.NotNil(t, resp.Error)
			assert.Equal(t, tt.wantCode, resp.Error.Code)
			assert.Equal(t, tt.wantKey, resp.Error.WarningKey)
			assert.Equal(t, "req-test", resp.Error.RequestID)
		})
	}
}

func TestBaseHandler_HandleError_Nil(t *testing.T) {
	engine := newTestEngine()
	h := &BaseHandler{}
	engine.GET("/ok", func(c *gin.Context) {
		h.HandleError(c, nil)
		c.Status(http.StatusTeapot)
	})

	w := doRequest(t, engine, http.MethodGet, "/ok", nil)
	assert.Equal(t, http.StatusTeapot, w.Code)
}

func TestBaseHandler_ParseID(t *testing.T) {
	engine := newTestEngine()
	h := &BaseHandler{}
	var got uuid.UUID
	engine.GET("/items/:id", func(c *gin.Context) {
		id, ok := h.parseID(c, "id")
		if !ok {
			return
		}
		got = id
		h.NoContent(c)
	})

	t.Run("valid", func(t *testing.T) {
		id := uuid.New()
		w := doRequest(t, engine, http.MethodGet, "/items/"+id.String(), nil)
		assert.Equal(t, http.StatusNoContent, w.Code)
		assert.Equal(t, id, got)
	})

	t.Run("malformed", func(t *testing.T) {
		w := doRequest(t, engine, http.MethodGet, "/items/not-a-uuid", nil)
		assert.Equal(t, http.StatusBadRequest, w.Code)
		resp := decodeResponse(t, w, nil)
		assert.Equal(t, dto.ErrCodeBadRequest, resp.Error.Code)
	})
}

func TestIdentityHelpers(t *testing.T) {
	t.Run("headers identify the caller", func(t *testing.T) {
		engine := newTestEngine()
		var tenantID, userID uuid.UUID
		engine.GET("/me", func(c *gin.Context) {
			tenantID, userID = getTenantID(c), getUserID(c)
		})

		doRequest(t, engine, http.MethodGet, "/me", nil)
		assert.Equal(t, testTenantID, tenantID)
		assert.Equal(t, testUserID, userID)
	})

	t.Run("anonymous caller falls back", func(t *testing.T) {
		engine := gin.New()
		engine.Use(middleware.JWTAuth(middleware.JWTConfig{}))
		var tenantID, userID uuid.UUID
		engine.GET("/me", func(c *gin.Context) {
			tenantID, userID = getTenantID(c), getUserID(c)
		})

		w := httptest.NewRecorder()
		engine.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/me", nil))
		require.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, DefaultTenantID, tenantID)
		assert.Equal(t, uuid.Nil, userID)
	})
}
