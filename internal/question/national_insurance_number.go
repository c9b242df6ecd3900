package question

import (
	"regexp"
	"strings"

	"github.com/felixgeelhaar/formrunner/internal/form"
)

var (
	ninoPattern = regexp.MustCompile(`^[A-CEGHJ-PR-TW-Z][A-CEGHJ-NPR-TW-Z][0-9]{6}[A-D]$`)

	// prefixes that are never allocated
	ninoInvalidPrefixes = map[string]bool{
		"BG": true, "GB": true, "NK": true, "KN": true, "TN": true, "NT": true, "ZZ": true,
	}
)

// NationalInsuranceNumber is a UK National Insurance number
type NationalInsuranceNumber struct {
	base
}

// NewNationalInsuranceNumber creates a National Insurance number question
func NewNationalInsuranceNumber(answer Answer, opts Options) *NationalInsuranceNumber {
	return &NationalInsuranceNumber{base: newBase(answer, opts)}
}

func (q *NationalInsuranceNumber) Type() form.AnswerType {
	return form.AnswerTypeNationalInsuranceNumber
}
func (q *NationalInsuranceNumber) Fields() []string { return []string{"national_insurance_number"} }
func (q *NationalInsuranceNumber) Valid() bool      { return len(q.Validate()) == 0 }
func (q *NationalInsuranceNumber) IsEmpty() bool    { return q.blank(q.Fields()...) }

// normalized strips all whitespace and upper-cases the number
func (q *NationalInsuranceNumber) normalized() string {
	return strings.ToUpper(strings.Join(strings.Fields(q.answer["national_insurance_number"]), ""))
}

func (q *NationalInsuranceNumber) Validate() ValidationErrors {
	v := q.normalized()
	if v == "" {
		if q.optional {
			return nil
		}
		return ValidationErrors{fieldError(q.Type(), "national_insurance_number", "blank")}
	}
	if !ninoPattern.MatchString(v) || ninoInvalidPrefixes[v[:2]] {
		return ValidationErrors{fieldError(q.Type(), "national_insurance_number", "invalid_national_insurance_number")}
	}
	return nil
}

// ShowAnswer renders a valid number in the printed grouping, e.g. AB 12 34 56 C
func (q *NationalInsuranceNumber) ShowAnswer() string {
	v := q.normalized()
	if len(v) != 9 || !q.Valid() {
		return v
	}
	return strings.Join([]string{v[0:2], v[2:4], v[4:6], v[6:8], v[8:]}, " ")
}

func (q *NationalInsuranceNumber) ShowAnswerInEmail() string { return q.ShowAnswer() }

func (q *NationalInsuranceNumber) SerializableHash() Answer {
	return Answer{"national_insurance_number": q.normalized()}
}
