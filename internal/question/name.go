package question

import (
	"github.com/felixgeelhaar/formrunner/internal/form"
)

// Name input types
const (
	NameFullName               = "full_name"
	NameFirstAndLastName       = "first_and_last_name"
	NameFirstMiddleAndLastName = "first_middle_and_last_name"
)

// Name is a person's name, collected whole or in parts depending on input_type,
// optionally preceded by a title.
type Name struct {
	base
}

// NewName creates a name question
func NewName(answer Answer, opts Options) *Name {
	return &Name{base: newBase(answer, opts)}
}

func (q *Name) Type() form.AnswerType { return form.AnswerTypeName }
func (q *Name) Valid() bool           { return len(q.Validate()) == 0 }
func (q *Name) IsEmpty() bool         { return q.blank(q.Fields()...) }

// InputType returns the configured name layout, full_name by default
func (q *Name) InputType() string {
	switch t := q.settingString("input_type"); t {
	case NameFirstAndLastName, NameFirstMiddleAndLastName:
		return t
	}
	return NameFullName
}

func (q *Name) Fields() []string {
	var fields []string
	if q.settingBool("title_needed") {
		fields = append(fields, "title")
	}
	switch q.InputType() {
	case NameFirstAndLastName:
		fields = append(fields, "first_name", "last_name")
	case NameFirstMiddleAndLastName:
		fields = append(fields, "first_name", "middle_names", "last_name")
	default:
		fields = append(fields, "full_name")
	}
	return fields
}

func (q *Name) Validate() ValidationErrors {
	if q.optional && q.IsEmpty() {
		return nil
	}

	required := []string{"full_name"}
	if q.InputType() != NameFullName {
		required = []string{"first_name", "last_name"}
	}

	var errs ValidationErrors
	for _, f := range required {
		if q.value(f) == "" {
			errs = append(errs, fieldError(q.Type(), f, "blank_"+f))
		}
	}
	return errs
}

func (q *Name) ShowAnswer() string        { return q.joinPresent(" ", q.Fields()...) }
func (q *Name) ShowAnswerInEmail() string { return q.ShowAnswer() }
func (q *Name) SerializableHash() Answer  { return q.hash(q.Fields()...) }
