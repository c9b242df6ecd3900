package question

import (
	"strconv"

	"github.com/felixgeelhaar/formrunner/internal/form"
)

// Number is a whole number answer, bounded by the min and max answer settings.
// Without settings the number must be zero or more.
type Number struct {
	base
}

// NewNumber creates a number question
func NewNumber(answer Answer, opts Options) *Number {
	return &Number{base: newBase(answer, opts)}
}

func (q *Number) Type() form.AnswerType { return form.AnswerTypeNumber }
func (q *Number) Fields() []string      { return []string{"number"} }
func (q *Number) Valid() bool           { return len(q.Validate()) == 0 }
func (q *Number) IsEmpty() bool         { return q.blank(q.Fields()...) }

func (q *Number) Validate() ValidationErrors {
	v := q.value("number")
	if v == "" {
		if q.optional {
			return nil
		}
		return ValidationErrors{fieldError(q.Type(), "number", "blank")}
	}

	n, err := strconv.ParseInt(v, 10, 64)
	if err != nil {
		if _, ferr := strconv.ParseFloat(v, 64); ferr == nil {
			return ValidationErrors{fieldError(q.Type(), "number", "not_an_integer")}
		}
		return ValidationErrors{fieldError(q.Type(), "number", "not_a_number")}
	}

	lower, ok := q.settingInt("min")
	if !ok {
		lower = 0
	}
	if n < lower {
		e := fieldError(q.Type(), "number", "number_too_small")
		e.Params = map[string]any{"Count": lower}
		return ValidationErrors{e}
	}
	if upper, ok := q.settingInt("max"); ok && n > upper {
		e := fieldError(q.Type(), "number", "number_too_large")
		e.Params = map[string]any{"Count": upper}
		return ValidationErrors{e}
	}
	return nil
}

// ShowAnswer renders valid numbers without leading zeros or a plus sign
func (q *Number) ShowAnswer() string {
	v := q.value("number")
	if n, err := strconv.ParseInt(v, 10, 64); err == nil {
		return strconv.FormatInt(n, 10)
	}
	return v
}

func (q *Number) ShowAnswerInEmail() string { return q.ShowAnswer() }
func (q *Number) SerializableHash() Answer  { return q.hash(q.Fields()...) }
