package costplan

import "context"

// Message keys resolved through the Localizer
const (
	MsgLacksTheProduct      = "lacks_the_product"
	MsgProcessAlreadyExists = "process_already_exists"
	MsgCannotAssignProcess  = "cannot_assign_process_to_product"
	MsgStepsFieldLabel      = "process_steps_label"
	MsgNameFieldLabel       = "wizard_name_label"
	MsgWizardCancelButton   = "wizard_cancel"
	MsgWizardOkButton       = "wizard_ok"
)

// Localizer resolves a message key to text in the request language.
// args are positional values substituted into the message.
type Localizer interface {
	Translate(ctx context.Context, key string, args ...interface{}) string
}
