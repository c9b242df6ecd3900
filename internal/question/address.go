package question

import (
	"regexp"
	"strings"

	"github.com/felixgeelhaar/formrunner/internal/form"
)

var postcodePattern = regexp.MustCompile(`^[A-Z]{1,2}[0-9][A-Z0-9]? ?[0-9][A-Z]{2}$`)

// Address is a UK postal address
type Address struct {
	base
}

// NewAddress creates an address question
func NewAddress(answer Answer, opts Options) *Address {
	return &Address{base: newBase(answer, opts)}
}

func (q *Address) Type() form.AnswerType { return form.AnswerTypeAddress }
func (q *Address) HasLongAnswer() bool   { return true }
func (q *Address) Valid() bool           { return len(q.Validate()) == 0 }
func (q *Address) IsEmpty() bool         { return q.blank(q.Fields()...) }

func (q *Address) Fields() []string {
	return []string{"address1", "address2", "town_or_city", "county", "postcode"}
}

func (q *Address) Validate() ValidationErrors {
	if q.optional && q.IsEmpty() {
		return nil
	}

	var errs ValidationErrors
	for _, f := range []string{"address1", "town_or_city", "postcode"} {
		if q.value(f) == "" {
			errs = append(errs, fieldError(q.Type(), f, "blank_"+f))
		}
	}
	if pc := q.value("postcode"); pc != "" && !postcodePattern.MatchString(strings.ToUpper(pc)) {
		errs = append(errs, fieldError(q.Type(), "postcode", "invalid_postcode"))
	}
	return errs
}

// ShowAnswer joins the address lines with commas
func (q *Address) ShowAnswer() string {
	return q.joinPresent(", ", q.Fields()...)
}

// ShowAnswerInEmail puts each address line on its own line
func (q *Address) ShowAnswerInEmail() string {
	return q.joinPresent("\n", q.Fields()...)
}

func (q *Address) SerializableHash() Answer { return q.hash(q.Fields()...) }
