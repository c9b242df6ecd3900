// Package i18n renders validation messages in the visitor's language.
package i18n

import (
	"embed"
	"fmt"
	"path"

	"github.com/BurntSushi/toml"
	"github.com/nicksnyder/go-i18n/v2/i18n"
	"golang.org/x/text/language"

	"github.com/felixgeelhaar/formrunner/internal/question"
)

//go:embed locales/*.toml
var locales embed.FS

// Translations holds the message catalogue of every bundled language
type Translations struct {
	bundle *i18n.Bundle
}

// NewTranslations loads the bundled locales. English is the fallback language.
func NewTranslations() (*Translations, error) {
	bundle := i18n.NewBundle(language.English)
	bundle.RegisterUnmarshalFunc("toml", toml.Unmarshal)

	files, err := locales.ReadDir("locales")
	if err != nil {
		return nil, fmt.Errorf("error reading locales: %w", err)
	}
	for _, f := range files {
		buf, err := locales.ReadFile(path.Join("locales", f.Name()))
		if err != nil {
			return nil, fmt.Errorf("error reading locale file %s: %w", f.Name(), err)
		}
		if _, err := bundle.ParseMessageFileBytes(buf, f.Name()); err != nil {
			return nil, fmt.Errorf("error loading locale file %s: %w", f.Name(), err)
		}
	}

	return &Translations{bundle: bundle}, nil
}

// Languages returns the bundled language tags
func (t *Translations) Languages() []language.Tag {
	return t.bundle.LanguageTags()
}

// Localizer returns a localizer for the given preferences, each either a language
// tag or an Accept-Language header value
func (t *Translations) Localizer(langs ...string) *Localizer {
	return &Localizer{localize: i18n.NewLocalizer(t.bundle, langs...)}
}

// Localizer renders messages in one visitor's preferred language
type Localizer struct {
	localize *i18n.Localizer
}

// GetMessage renders a message, or a marker naming the missing id
func (l *Localizer) GetMessage(messageID string, templateData map[string]any) string {
	localized, err := l.localize.Localize(&i18n.LocalizeConfig{
		MessageID:    messageID,
		TemplateData: templateData,
	})
	if err != nil {
		return "Translation missing: " + messageID
	}
	return localized
}

// FieldError renders one validation error
func (l *Localizer) FieldError(e question.FieldError) string {
	return l.GetMessage(e.MessageID(), e.Params)
}

// Errors renders validation errors grouped by field, keeping their order
func (l *Localizer) Errors(errs question.ValidationErrors) map[string][]string {
	if len(errs) == 0 {
		return nil
	}
	out := make(map[string][]string)
	for _, e := range errs {
		out[e.Field] = append(out[e.Field], l.FieldError(e))
	}
	return out
}
