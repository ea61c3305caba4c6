package i18n

import (
	"context"
	"testing"

	appcostplan "github.com/erp/manufacturing/internal/application/costplan"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/text/language"
)

func TestTranslator_Translate(t *testing.T) {
	tr, err := NewTranslator("en")
	require.NoError(t, err)

	tests := []struct {
		name string
		lang *language.Tag
		key  string
		args []interface{}
		want string
	}{
		{
			name: "english with argument",
			key:  appcostplan.MsgLacksTheProduct,
			args: []interface{}{"CP-2026-00001"},
			want: `Cost plan "CP-2026-00001" lacks the product.`,
		},
		{
			name: "spanish step label",
			lang: &language.Spanish,
			key:  appcostplan.MsgStepsFieldLabel,
			want: "Pasos",
		},
		{
			name: "catalan step label",
			lang: &language.Catalan,
			key:  appcostplan.MsgStepsFieldLabel,
			want: "Passos",
		},
		{
			name: "two arguments",
			lang: &language.Spanish,
			key:  appcostplan.MsgCannotAssignProcess,
			args: []interface{}{"CP-1", "[W] Widget"},
			want: `No se puede asignar el proceso del plan de costes "CP-1" al producto "[W] Widget".`,
		},
		{
			name: "regional variant matches base language",
			lang: func() *language.Tag { tag := language.MustParse("es-MX"); return &tag }(),
			key:  appcostplan.MsgWizardOkButton,
			want: "Aceptar",
		},
		{
			name: "unsupported language falls back",
			lang: &language.French,
			key:  appcostplan.MsgWizardCancelButton,
			want: "Cancel",
		},
		{
			name: "unknown key is returned",
			key:  "no_such_message",
			want: "no_such_message",
		},
		{
			name: "unknown key with args is returned without args",
			lang: &language.Spanish,
			key:  "no_such_message",
			args: []interface{}{"CP-1"},
			want: "no_such_message",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctx := context.Background()
			if tt.lang != nil {
				ctx = WithLanguage(ctx, *tt.lang)
			}
			assert.Equal(t, tt.want, tr.Translate(ctx, tt.key, tt.args...))
		})
	}
}

func TestTranslator_EveryKeyIsTranslated(t *testing.T) {
	keys := []string{
		appcostplan.MsgLacksTheProduct,
		appcostplan.MsgProcessAlreadyExists,
		appcostplan.MsgCannotAssignProcess,
		appcostplan.MsgStepsFieldLabel,
		appcostplan.MsgNameFieldLabel,
		appcostplan.MsgWizardCancelButton,
		appcostplan.MsgWizardOkButton,
	}
	for _, tag := range Supported {
		for _, key := range keys {
			assert.Contains(t, messages[tag], key, "%s lacks %s", tag, key)
		}
	}
}

func TestTranslator_DefaultLanguage(t *testing.T) {
	tr, err := NewTranslator("ca")
	require.NoError(t, err)
	assert.Equal(t, language.Catalan, tr.DefaultLanguage())
	assert.Equal(t, "Nom", tr.Translate(context.Background(), appcostplan.MsgNameFieldLabel))

	_, err = NewTranslator("not a language!")
	assert.Error(t, err)
}

func TestTranslator_MatchAcceptLanguage(t *testing.T) {
	tr, err := NewTranslator("en")
	require.NoError(t, err)

	assert.Equal(t, language.Spanish, tr.MatchAcceptLanguage("es-ES,es;q=0.9,en;q=0.8"))
	assert.Equal(t, language.Catalan, tr.MatchAcceptLanguage("fr;q=0.9, ca;q=0.8"))
	assert.Equal(t, language.English, tr.MatchAcceptLanguage("de"))
	assert.Equal(t, language.English, tr.MatchAcceptLanguage(""))
}
