package costplan

import (
	"context"
	"errors"
	"fmt"
	"time"

	appproduction "github.com/erp/manufacturing/internal/application/production"
	"github.com/erp/manufacturing/internal/domain/costplan"
	"github.com/erp/manufacturing/internal/domain/shared"
	"github.com/google/uuid"
)

// WizardState is a state of the create-process wizard
type WizardState string

const (
	WizardStateStart   WizardState = "start"
	WizardStateProcess WizardState = "process"
	WizardStateEnd     WizardState = "end"
)

// ProcessAction is the action the wizard opens after creating a process
const ProcessAction = "production.process"

// WizardButton is a button of a wizard view
type WizardButton struct {
	Label   string      `json:"label"`
	State   WizardState `json:"state"`
	Icon    string      `json:"icon"`
	Default bool        `json:"default"`
}

// WizardField is an input field of a wizard view
type WizardField struct {
	Name     string `json:"name"`
	Label    string `json:"label"`
	Required bool   `json:"required"`
}

// WizardView describes the start view of the wizard
type WizardView struct {
	State    WizardState       `json:"state"`
	Fields   []WizardField     `json:"fields"`
	Buttons  []WizardButton    `json:"buttons"`
	Defaults map[string]string `json:"defaults"`
}

// ActionView is one view of an action, e.g. list or form
type ActionView struct {
	Type string `json:"type"`
}

// WizardAction redirects the client to records of a model
type WizardAction struct {
	Name  string       `json:"name"`
	Model string       `json:"model"`
	Views []ActionView `json:"views"`
	ResID []uuid.UUID  `json:"res_id"`
}

// WizardResult is the outcome of running a wizard transition
type WizardResult struct {
	State   WizardState                    `json:"state"`
	Action  *WizardAction                  `json:"action,omitempty"`
	Process *appproduction.ProcessResponse `json:"process,omitempty"`
}

// ProcessCreator converts a cost plan into a process
type ProcessCreator interface {
	CreateProcess(ctx context.Context, tenantID, userID, planID uuid.UUID, name string) (*appproduction.ProcessResponse, error)
}

// CreateProcessWizard asks for a process name and converts the selected plan
type CreateProcessWizard struct {
	plans     costplan.PlanRepository
	creator   ProcessCreator
	localizer Localizer
	now       func() time.Time
}

// NewCreateProcessWizard creates a new CreateProcessWizard
func NewCreateProcessWizard(plans costplan.PlanRepository, creator ProcessCreator, localizer Localizer) *CreateProcessWizard {
	return &CreateProcessWizard{
		plans:     plans,
		creator:   creator,
		localizer: localizer,
		now:       time.Now,
	}
}

// WithClock replaces the wizard clock
func (w *CreateProcessWizard) WithClock(now func() time.Time) *CreateProcessWizard {
	w.now = now
	return w
}

// Start returns the start view. With a plan, the name defaults to
// "<plan> (dd/mm/yyyy)".
func (w *CreateProcessWizard) Start(ctx context.Context, tenantID uuid.UUID, planID *uuid.UUID) (*WizardView, error) {
	defaults, err := w.DefaultStart(ctx, tenantID, planID)
	if err != nil {
		return nil, err
	}
	return &WizardView{
		State: WizardStateStart,
		Fields: []WizardField{
			{Name: "name", Label: w.localizer.Translate(ctx, MsgNameFieldLabel), Required: true},
		},
		Buttons: []WizardButton{
			{Label: w.localizer.Translate(ctx, MsgWizardCancelButton), State: WizardStateEnd, Icon: "tryton-cancel"},
			{Label: w.localizer.Translate(ctx, MsgWizardOkButton), State: WizardStateProcess, Icon: "tryton-ok", Default: true},
		},
		Defaults: defaults,
	}, nil
}

// DefaultStart returns the default values of the start view
func (w *CreateProcessWizard) DefaultStart(ctx context.Context, tenantID uuid.UUID, planID *uuid.UUID) (map[string]string, error) {
	if planID == nil {
		return map[string]string{}, nil
	}
	plan, err := w.plans.FindByIDForTenant(ctx, tenantID, *planID)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return nil, shared.NewDomainError("PLAN_NOT_FOUND", "Cost plan not found")
		}
		return nil, err
	}
	return map[string]string{
		"name": fmt.Sprintf("%s (%s)", plan.RecName(), w.now().Format("02/01/2006")),
	}, nil
}

// Process runs the process state. Without a plan the wizard ends with no effect.
func (w *CreateProcessWizard) Process(ctx context.Context, tenantID, userID uuid.UUID, planID *uuid.UUID, name string) (*WizardResult, error) {
	if planID == nil {
		return &WizardResult{State: WizardStateEnd}, nil
	}

	process, err := w.creator.CreateProcess(ctx, tenantID, userID, *planID, name)
	if err != nil {
		return nil, err
	}

	action := processListAction()
	reverseViews(action.Views)
	action.ResID = []uuid.UUID{process.ID}

	return &WizardResult{
		State:   WizardStateEnd,
		Action:  &action,
		Process: process,
	}, nil
}

func processListAction() WizardAction {
	return WizardAction{
		Name:  ProcessAction,
		Model: "production.process",
		Views: []ActionView{{Type: "tree"}, {Type: "form"}},
	}
}

func reverseViews(views []ActionView) {
	for i, j := 0, len(views)-1; i < j; i, j = i+1, j-1 {
		views[i], views[j] = views[j], views[i]
	}
}
