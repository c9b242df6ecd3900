package question

import (
	"regexp"
	"unicode"

	"github.com/felixgeelhaar/formrunner/internal/form"
)

const (
	phoneMinDigits = 8
	phoneMaxDigits = 15
)

var phonePattern = regexp.MustCompile(`^[0-9+()\-\s]+$`)

// PhoneNumber is a telephone number answer
type PhoneNumber struct {
	base
}

// NewPhoneNumber creates a phone number question
func NewPhoneNumber(answer Answer, opts Options) *PhoneNumber {
	return &PhoneNumber{base: newBase(answer, opts)}
}

func (q *PhoneNumber) Type() form.AnswerType { return form.AnswerTypePhoneNumber }
func (q *PhoneNumber) Fields() []string      { return []string{"phone_number"} }
func (q *PhoneNumber) Valid() bool           { return len(q.Validate()) == 0 }
func (q *PhoneNumber) IsEmpty() bool         { return q.blank(q.Fields()...) }

func (q *PhoneNumber) Validate() ValidationErrors {
	v := q.value("phone_number")
	if v == "" {
		if q.optional {
			return nil
		}
		return ValidationErrors{fieldError(q.Type(), "phone_number", "blank")}
	}
	if !phonePattern.MatchString(v) {
		return ValidationErrors{fieldError(q.Type(), "phone_number", "invalid_phone_number")}
	}

	digits := 0
	for _, r := range v {
		if unicode.IsDigit(r) {
			digits++
		}
	}
	switch {
	case digits < phoneMinDigits:
		return ValidationErrors{fieldError(q.Type(), "phone_number", "phone_too_short")}
	case digits > phoneMaxDigits:
		return ValidationErrors{fieldError(q.Type(), "phone_number", "phone_too_long")}
	}
	return nil
}

func (q *PhoneNumber) ShowAnswer() string        { return q.value("phone_number") }
func (q *PhoneNumber) ShowAnswerInEmail() string { return q.value("phone_number") }
func (q *PhoneNumber) SerializableHash() Answer  { return q.hash(q.Fields()...) }
