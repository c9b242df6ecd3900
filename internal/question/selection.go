package question

import (
	"fmt"
	"strings"

	"github.com/felixgeelhaar/formrunner/internal/form"
)

// NoneOfTheAbove is the extra option offered when include_none_of_the_above is set
const NoneOfTheAbove = "None of the above"

// Selection chooses one or more values from the configured selection_options.
// Multiple chosen values are stored newline separated in the selection field.
type Selection struct {
	base
}

// NewSelection creates a selection question
func NewSelection(answer Answer, opts Options) *Selection {
	return &Selection{base: newBase(answer, opts)}
}

func (q *Selection) Type() form.AnswerType { return form.AnswerTypeSelection }
func (q *Selection) Fields() []string      { return []string{"selection"} }
func (q *Selection) Valid() bool           { return len(q.Validate()) == 0 }
func (q *Selection) IsEmpty() bool         { return len(q.Values()) == 0 }

// OnlyOneOption reports whether a single choice is expected
func (q *Selection) OnlyOneOption() bool {
	return q.settingBool("only_one_option")
}

// Options returns the names of the configured options, plus NoneOfTheAbove when
// enabled
func (q *Selection) Options() []string {
	var names []string
	if raw, ok := q.settings["selection_options"].([]any); ok {
		for _, item := range raw {
			var name string
			switch opt := item.(type) {
			case map[string]any:
				if v, ok := opt["name"]; ok && v != nil {
					name = fmt.Sprint(v)
				}
			case string:
				name = opt
			}
			// answers are stored trimmed, so option names are compared the same way
			if name = strings.TrimSpace(name); name != "" {
				names = append(names, name)
			}
		}
	}
	if q.settingBool("include_none_of_the_above") {
		names = append(names, NoneOfTheAbove)
	}
	return names
}

// Values returns the chosen values
func (q *Selection) Values() []string {
	var values []string
	for _, line := range strings.Split(q.answer["selection"], "\n") {
		if v := strings.TrimSpace(line); v != "" {
			values = append(values, v)
		}
	}
	return values
}

func (q *Selection) Validate() ValidationErrors {
	values := q.Values()
	if len(values) == 0 {
		if q.optional {
			return nil
		}
		return ValidationErrors{fieldError(q.Type(), "selection", "blank")}
	}
	if q.OnlyOneOption() && len(values) > 1 {
		return ValidationErrors{fieldError(q.Type(), "selection", "inclusion")}
	}

	allowed := make(map[string]bool)
	for _, o := range q.Options() {
		allowed[o] = true
	}
	for _, v := range values {
		if !allowed[v] {
			return ValidationErrors{fieldError(q.Type(), "selection", "inclusion")}
		}
	}
	return nil
}

func (q *Selection) ShowAnswer() string        { return strings.Join(q.Values(), ", ") }
func (q *Selection) ShowAnswerInEmail() string { return strings.Join(q.Values(), ", ") }

func (q *Selection) SerializableHash() Answer {
	return Answer{"selection": strings.Join(q.Values(), "\n")}
}
