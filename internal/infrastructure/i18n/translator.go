package i18n

import (
	"context"
	"fmt"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/message/catalog"
)

type languageKey struct{}

// WithLanguage returns a context carrying the request language
func WithLanguage(ctx context.Context, tag language.Tag) context.Context {
	return context.WithValue(ctx, languageKey{}, tag)
}

// LanguageFromContext returns the request language and whether one was set
func LanguageFromContext(ctx context.Context) (language.Tag, bool) {
	tag, ok := ctx.Value(languageKey{}).(language.Tag)
	return tag, ok
}

// Translator resolves message keys in the language carried by the context
type Translator struct {
	catalog  catalog.Catalog
	known    map[string]bool
	matcher  language.Matcher
	fallback language.Tag
}

// NewTranslator builds the catalog. defaultLanguage is used when the context
// carries no language; unsupported values fall back to English.
func NewTranslator(defaultLanguage string) (*Translator, error) {
	cat, err := newCatalog()
	if err != nil {
		return nil, fmt.Errorf("failed to build message catalog: %w", err)
	}
	known := make(map[string]bool)
	for _, msgs := range messages {
		for key := range msgs {
			known[key] = true
		}
	}
	t := &Translator{
		catalog:  cat,
		known:    known,
		matcher:  language.NewMatcher(Supported),
		fallback: language.English,
	}
	if defaultLanguage != "" {
		tag, err := language.Parse(defaultLanguage)
		if err != nil {
			return nil, fmt.Errorf("invalid default language %q: %w", defaultLanguage, err)
		}
		t.fallback = t.match(tag)
	}
	return t, nil
}

// Translate returns the message for key with args substituted.
// Unknown keys are returned as is, without args.
func (t *Translator) Translate(ctx context.Context, key string, args ...interface{}) string {
	if !t.known[key] {
		return key
	}
	tag := t.fallback
	if requested, ok := LanguageFromContext(ctx); ok {
		tag = t.match(requested)
	}
	return message.NewPrinter(tag, message.Catalog(t.catalog)).Sprintf(key, args...)
}

// MatchAcceptLanguage picks the supported language for an Accept-Language header value
func (t *Translator) MatchAcceptLanguage(header string) language.Tag {
	tags, _, err := language.ParseAcceptLanguage(header)
	if err != nil || len(tags) == 0 {
		return t.fallback
	}
	_, index, confidence := t.matcher.Match(tags...)
	if confidence == language.No {
		return t.fallback
	}
	return Supported[index]
}

// DefaultLanguage returns the language used when none is requested
func (t *Translator) DefaultLanguage() language.Tag {
	return t.fallback
}

func (t *Translator) match(tag language.Tag) language.Tag {
	_, index, _ := t.matcher.Match(tag)
	return Supported[index]
}
