package question

import (
	"strconv"
	"time"

	"github.com/felixgeelhaar/formrunner/internal/form"
)

const dateDisplayLayout = "2 January 2006"

// now is replaced in tests
var now = time.Now

// Date is a day/month/year answer. The date_of_birth input type rejects future
// dates.
type Date struct {
	base
}

// NewDate creates a date question
func NewDate(answer Answer, opts Options) *Date {
	return &Date{base: newBase(answer, opts)}
}

func (q *Date) Type() form.AnswerType { return form.AnswerTypeDate }
func (q *Date) Fields() []string      { return []string{"day", "month", "year"} }
func (q *Date) Valid() bool           { return len(q.Validate()) == 0 }
func (q *Date) IsEmpty() bool         { return q.blank(q.Fields()...) }

// Date returns the answer as a calendar date
func (q *Date) Date() (time.Time, bool) {
	day, err1 := strconv.Atoi(q.value("day"))
	month, err2 := strconv.Atoi(q.value("month"))
	year, err3 := strconv.Atoi(q.value("year"))
	if err1 != nil || err2 != nil || err3 != nil {
		return time.Time{}, false
	}
	if year < 1000 || year > 9999 || month < 1 || month > 12 || day < 1 {
		return time.Time{}, false
	}

	t := time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)
	if t.Day() != day || int(t.Month()) != month {
		return time.Time{}, false
	}
	return t, true
}

func (q *Date) Validate() ValidationErrors {
	if q.IsEmpty() {
		if q.optional {
			return nil
		}
		return ValidationErrors{fieldError(q.Type(), "date", "blank")}
	}
	for _, f := range q.Fields() {
		if q.value(f) == "" {
			return ValidationErrors{fieldError(q.Type(), "date", "blank_date_fields")}
		}
	}

	t, ok := q.Date()
	if !ok {
		return ValidationErrors{fieldError(q.Type(), "date", "invalid_date")}
	}
	if q.settingString("input_type") == "date_of_birth" && t.After(now()) {
		return ValidationErrors{fieldError(q.Type(), "date", "future_date")}
	}
	return nil
}

// ShowAnswer renders a valid date as e.g. 1 February 2022, otherwise blank
func (q *Date) ShowAnswer() string {
	t, ok := q.Date()
	if !ok {
		return ""
	}
	return t.Format(dateDisplayLayout)
}

func (q *Date) ShowAnswerInEmail() string { return q.ShowAnswer() }
func (q *Date) SerializableHash() Answer  { return q.hash(q.Fields()...) }
