package handler

import (
	"context"

	appcostplan "github.com/erp/manufacturing/internal/application/costplan"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// CreateProcessWizard is the wizard surface used by WizardHandler
type CreateProcessWizard interface {
	Start(ctx context.Context, tenantID uuid.UUID, planID *uuid.UUID) (*appcostplan.WizardView, error)
	Process(ctx context.Context, tenantID, userID uuid.UUID, planID *uuid.UUID, name string) (*appcostplan.WizardResult, error)
}

// WizardStartRequest opens the wizard on the active cost plan, if any
type WizardStartRequest struct {
	PlanID *uuid.UUID `json:"plan_id"`
}

// WizardProcessRequest submits the start view
type WizardProcessRequest struct {
	PlanID *uuid.UUID `json:"plan_id"`
	Name   string     `json:"name" binding:"max=200"`
}

// WizardHandler drives the create-process wizard
type WizardHandler struct {
	BaseHandler
	wizard CreateProcessWizard
}

// NewWizardHandler creates a new WizardHandler
func NewWizardHandler(wizard CreateProcessWizard) *WizardHandler {
	return &WizardHandler{wizard: wizard}
}

// StartCreateProcess godoc
// @Summary      Open the create-process wizard
// @Tags         wizards
// @Accept       json
// @Produce      json
// @Param        Accept-Language header string false "Language of the labels"
// @Param        request body WizardStartRequest true "Active plan"
// @Success      200 {object} APIResponse[appcostplan.WizardView]
// @Failure      404 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /wizards/create-process/start [post]
func (h *WizardHandler) StartCreateProcess(c *gin.Context) {
	var req WizardStartRequest
	if !h.bindJSON(c, &req) {
		return
	}
	view, err := h.wizard.Start(c.Request.Context(), getTenantID(c), req.PlanID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, view)
}

// ProcessCreateProcess godoc
// @Summary      Run the create-process wizard
// @Description  Converts the plan and returns the action opening the new process.
// @Tags         wizards
// @Accept       json
// @Produce      json
// @Param        request body WizardProcessRequest true "Plan and process name"
// @Success      200 {object} APIResponse[appcostplan.WizardResult]
// @Failure      409 {object} ErrorResponse
// @Failure      422 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /wizards/create-process/process [post]
func (h *WizardHandler) ProcessCreateProcess(c *gin.Context) {
	var req WizardProcessRequest
	if !h.bindJSON(c, &req) {
		return
	}
	result, err := h.wizard.Process(c.Request.Context(), getTenantID(c), getUserID(c), req.PlanID, req.Name)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, result)
}
