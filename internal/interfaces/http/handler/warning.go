package handler

import (
	"context"

	appwarning "github.com/erp/manufacturing/internal/application/warning"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// WarningAcknowledger records user warning confirmations
type WarningAcknowledger interface {
	Acknowledge(ctx context.Context, tenantID, userID uuid.UUID, req appwarning.AcknowledgeRequest) error
}

// WarningHandler handles user warning acknowledgements
type WarningHandler struct {
	BaseHandler
	warnings WarningAcknowledger
}

// NewWarningHandler creates a new WarningHandler
func NewWarningHandler(warnings WarningAcknowledger) *WarningHandler {
	return &WarningHandler{warnings: warnings}
}

// Acknowledge godoc
// @Summary      Acknowledge a user warning
// @Description  With always=true the warning is never raised again for this user.
// @Tags         warnings
// @Accept       json
// @Param        request body appwarning.AcknowledgeRequest true "Warning key"
// @Success      204
// @Failure      400 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /warnings [post]
func (h *WarningHandler) Acknowledge(c *gin.Context) {
	var req appwarning.AcknowledgeRequest
	if !h.bindJSON(c, &req) {
		return
	}
	if err := h.warnings.Acknowledge(c.Request.Context(), getTenantID(c), getUserID(c), req); err != nil {
		h.HandleError(c, err)
		return
	}
	h.NoContent(c)
}
