package question

import (
	"unicode/utf8"

	"github.com/felixgeelhaar/formrunner/internal/form"
)

const (
	textMaxLength     = 499
	longTextMaxLength = 4999
)

// Text is a free text answer, single line or long text
type Text struct {
	base
}

// NewText creates a text question
func NewText(answer Answer, opts Options) *Text {
	return &Text{base: newBase(answer, opts)}
}

func (q *Text) Type() form.AnswerType { return form.AnswerTypeText }
func (q *Text) Fields() []string      { return []string{"text"} }
func (q *Text) Valid() bool           { return len(q.Validate()) == 0 }
func (q *Text) IsEmpty() bool         { return q.blank(q.Fields()...) }

// HasLongAnswer is true for the long_text input type
func (q *Text) HasLongAnswer() bool {
	return q.settingString("input_type") == "long_text"
}

func (q *Text) Validate() ValidationErrors {
	limit := textMaxLength
	if q.HasLongAnswer() {
		limit = longTextMaxLength
	}
	return validateText(q.Type(), q.value("text"), q.optional, limit)
}

func (q *Text) ShowAnswer() string        { return q.value("text") }
func (q *Text) ShowAnswerInEmail() string { return q.value("text") }
func (q *Text) SerializableHash() Answer  { return q.hash(q.Fields()...) }

// OrganisationName is the name of a company or organisation
type OrganisationName struct {
	base
}

// NewOrganisationName creates an organisation name question
func NewOrganisationName(answer Answer, opts Options) *OrganisationName {
	return &OrganisationName{base: newBase(answer, opts)}
}

func (q *OrganisationName) Type() form.AnswerType { return form.AnswerTypeOrganisationName }
func (q *OrganisationName) Fields() []string      { return []string{"text"} }
func (q *OrganisationName) Valid() bool           { return len(q.Validate()) == 0 }
func (q *OrganisationName) IsEmpty() bool         { return q.blank(q.Fields()...) }

func (q *OrganisationName) Validate() ValidationErrors {
	return validateText(q.Type(), q.value("text"), q.optional, textMaxLength)
}

func (q *OrganisationName) ShowAnswer() string        { return q.value("text") }
func (q *OrganisationName) ShowAnswerInEmail() string { return q.value("text") }
func (q *OrganisationName) SerializableHash() Answer  { return q.hash(q.Fields()...) }

func validateText(t form.AnswerType, v string, optional bool, limit int) ValidationErrors {
	if v == "" {
		if optional {
			return nil
		}
		return ValidationErrors{fieldError(t, "text", "blank")}
	}
	if utf8.RuneCountInString(v) > limit {
		e := fieldError(t, "text", "too_long")
		e.Params = map[string]any{"Count": limit}
		return ValidationErrors{e}
	}
	return nil
}
