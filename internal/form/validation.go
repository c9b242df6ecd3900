package form

import (
	"errors"
	"fmt"
	"strings"
)

// Validate checks the structural invariants of a form definition: unique page IDs,
// start/next page references that resolve inside the form and selection option
// names that can be stored as an answer.
func (f *Form) Validate() error {
	var errs []error

	if strings.TrimSpace(f.Name) == "" {
		errs = append(errs, fmt.Errorf("form name cannot be empty"))
	}

	seen := make(map[PageID]bool, len(f.Pages))
	for i, p := range f.Pages {
		if p == nil {
			errs = append(errs, fmt.Errorf("page at index %d is empty", i))
			continue
		}
		if seen[p.ID] {
			errs = append(errs, fmt.Errorf("duplicate page id %d", p.ID))
		}
		seen[p.ID] = true

		if strings.TrimSpace(p.QuestionText) == "" {
			errs = append(errs, fmt.Errorf("page %d: question text cannot be empty", p.ID))
		}
		if p.AnswerType == "" {
			errs = append(errs, fmt.Errorf("page %d: answer type cannot be empty", p.ID))
		}
		if p.AnswerType == AnswerTypeSelection {
			errs = append(errs, validateSelectionOptions(p)...)
		}
	}

	for _, p := range f.Pages {
		if p == nil || p.NextPage == nil {
			continue
		}
		if *p.NextPage == p.ID {
			errs = append(errs, fmt.Errorf("page %d: next page refers to itself", p.ID))
		} else if !seen[*p.NextPage] {
			errs = append(errs, fmt.Errorf("page %d: next page %d does not exist", p.ID, *p.NextPage))
		}
	}

	if f.StartPage != nil && !seen[*f.StartPage] {
		errs = append(errs, fmt.Errorf("start page %d does not exist", *f.StartPage))
	}

	return errors.Join(errs...)
}

// Selection answers are stored one value per line, so an option name spanning
// lines could never match a stored answer.
func validateSelectionOptions(p *Page) []error {
	raw, _ := p.AnswerSettings["selection_options"].([]any)
	var errs []error
	for _, item := range raw {
		var name string
		switch opt := item.(type) {
		case map[string]any:
			name, _ = opt["name"].(string)
		case string:
			name = opt
		}
		if strings.ContainsAny(name, "\r\n") {
			errs = append(errs, fmt.Errorf("page %d: selection option %q contains a line break", p.ID, name))
		}
	}
	return errs
}
