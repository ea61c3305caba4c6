// Package i18n translates user-facing messages with golang.org/x/text catalogs.
package i18n

import (
	appcostplan "github.com/erp/manufacturing/internal/application/costplan"
	"golang.org/x/text/language"
	"golang.org/x/text/message/catalog"
)

// Supported languages. The first entry is the fallback of the matcher.
var Supported = []language.Tag{
	language.English,
	language.Spanish,
	language.Catalan,
}

// messages holds the translations per language, keyed by message key.
// Positional arguments use fmt verbs.
var messages = map[language.Tag]map[string]string{
	language.English: {
		appcostplan.MsgLacksTheProduct:      `Cost plan "%s" lacks the product.`,
		appcostplan.MsgProcessAlreadyExists: `Cost plan "%s" already has a process. A new one will be created.`,
		appcostplan.MsgCannotAssignProcess:  `Cannot assign the process of cost plan "%s" to product "%s".`,
		appcostplan.MsgStepsFieldLabel:      "Steps",
		appcostplan.MsgNameFieldLabel:       "Name",
		appcostplan.MsgWizardCancelButton:   "Cancel",
		appcostplan.MsgWizardOkButton:       "OK",
	},
	language.Spanish: {
		appcostplan.MsgLacksTheProduct:      `Al plan de costes "%s" le falta el producto.`,
		appcostplan.MsgProcessAlreadyExists: `El plan de costes "%s" ya tiene un proceso. Se creará uno nuevo.`,
		appcostplan.MsgCannotAssignProcess:  `No se puede asignar el proceso del plan de costes "%s" al producto "%s".`,
		appcostplan.MsgStepsFieldLabel:      "Pasos",
		appcostplan.MsgNameFieldLabel:       "Nombre",
		appcostplan.MsgWizardCancelButton:   "Cancelar",
		appcostplan.MsgWizardOkButton:       "Aceptar",
	},
	language.Catalan: {
		appcostplan.MsgLacksTheProduct:      `Al pla de costos "%s" li falta el producte.`,
		appcostplan.MsgProcessAlreadyExists: `El pla de costos "%s" ja té un procés. Se'n crearà un de nou.`,
		appcostplan.MsgCannotAssignProcess:  `No es pot assignar el procés del pla de costos "%s" al producte "%s".`,
		appcostplan.MsgStepsFieldLabel:      "Passos",
		appcostplan.MsgNameFieldLabel:       "Nom",
		appcostplan.MsgWizardCancelButton:   "Cancel·la",
		appcostplan.MsgWizardOkButton:       "D'acord",
	},
}

// newCatalog builds the message catalog with English as fallback
func newCatalog() (*catalog.Builder, error) {
	b := catalog.NewBuilder(catalog.Fallback(language.English))
	for tag, msgs := range messages {
		for key, text := range msgs {
			if err := b.SetString(tag, key, text); err != nil {
				return nil, err
			}
		}
	}
	return b, nil
}
