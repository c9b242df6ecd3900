package question

import (
	"regexp"

	"github.com/felixgeelhaar/formrunner/internal/form"
)

// emailPattern is the HTML living standard "valid e-mail address" production.
var emailPattern = regexp.MustCompile("^[a-zA-Z0-9.!#$%&'*+/=?^_`{|}~-]+@[a-zA-Z0-9](?:[a-zA-Z0-9-]{0,61}[a-zA-Z0-9])?(?:\\.[a-zA-Z0-9](?:[a-zA-Z0-9-]{0,61}[a-zA-Z0-9])?)*$")

// Email is an email address answer
type Email struct {
	base
}

// NewEmail creates an email question
func NewEmail(answer Answer, opts Options) *Email {
	return &Email{base: newBase(answer, opts)}
}

func (q *Email) Type() form.AnswerType { return form.AnswerTypeEmail }
func (q *Email) Fields() []string      { return []string{"email"} }
func (q *Email) Valid() bool           { return len(q.Validate()) == 0 }
func (q *Email) IsEmpty() bool         { return q.blank(q.Fields()...) }

func (q *Email) Validate() ValidationErrors {
	v := q.value("email")
	if v == "" {
		if q.optional {
			return nil
		}
		return ValidationErrors{fieldError(q.Type(), "email", "blank")}
	}
	if !emailPattern.MatchString(v) {
		return ValidationErrors{fieldError(q.Type(), "email", "invalid_email")}
	}
	return nil
}

func (q *Email) ShowAnswer() string        { return q.value("email") }
func (q *Email) ShowAnswerInEmail() string { return q.value("email") }
func (q *Email) SerializableHash() Answer  { return q.hash(q.Fields()...) }
