package tui

import (
	"strings"

	"github.com/charmbracelet/huh"

	"github.com/felixgeelhaar/formrunner/internal/question"
)

// buildForm creates the huh form for the current step, prefilled with its answer
func (w *Walker) buildForm() {
	w.values = make(map[string]*string)
	w.chosen = nil
	w.choice = ""

	if w.step.IsCheckYourAnswers() {
		w.form = w.reviewForm()
		return
	}

	q := w.step.Question()
	var fields []huh.Field
	if sel, ok := q.(*question.Selection); ok {
		fields = append(fields, w.selectionField(sel))
	} else {
		fields = w.inputFields(q)
	}

	w.form = huh.NewForm(
		huh.NewGroup(fields...).
			Title(w.progress()),
	)
}

func (w *Walker) inputFields(q question.Question) []huh.Field {
	current := q.SerializableHash()
	params := w.step.Params()

	var fields []huh.Field
	if len(params) > 1 {
		fields = append(fields, huh.NewNote().Title(q.Text()).Description(q.Hint()))
	}
	for _, name := range params {
		v := current[name]
		w.values[name] = &v

		title, desc := w.label(name), ""
		if len(params) == 1 {
			title, desc = q.Text(), q.Hint()
		}
		if len(params) == 1 && q.HasLongAnswer() {
			fields = append(fields, huh.NewText().Key(name).Title(title).Description(desc).Value(&v))
			continue
		}
		fields = append(fields, huh.NewInput().Key(name).Title(title).Description(desc).Value(&v))
	}
	return fields
}

// selectionField renders a one-option selection as a select and any other as a
// multi-select
func (w *Walker) selectionField(q *question.Selection) huh.Field {
	values := q.Values()
	if q.OnlyOneOption() {
		v := ""
		if len(values) > 0 {
			v = values[0]
		}
		w.values["selection"] = &v

		opts := huh.NewOptions(q.Options()...)
		if q.IsOptional() {
			opts = append([]huh.Option[string]{huh.NewOption(w.localizer.GetMessage("walker.skip", nil), "")}, opts...)
		}
		return huh.NewSelect[string]().
			Key("selection").
			Title(q.Text()).
			Description(q.Hint()).
			Options(opts...).
			Value(&v)
	}

	w.chosen = &values
	return huh.NewMultiSelect[string]().
		Key("selection").
		Title(q.Text()).
		Description(q.Hint()).
		Options(huh.NewOptions(q.Options()...)...).
		Value(w.chosen)
}

// reviewForm offers submission or a change to any completed step
func (w *Walker) reviewForm() *huh.Form {
	opts := []huh.Option[string]{huh.NewOption(w.localizer.GetMessage("walker.submit", nil), submitChoice)}
	for _, s := range w.journey.CompletedSteps() {
		label := w.localizer.GetMessage("walker.change", map[string]any{"Question": s.ShortName()})
		opts = append(opts, huh.NewOption(label, s.Slug()))
	}
	w.choice = submitChoice
	return huh.NewForm(huh.NewGroup(
		huh.NewSelect[string]().
			Title(w.localizer.GetMessage("walker.check_your_answers", nil)).
			Options(opts...).
			Value(&w.choice),
	))
}

// answer collects the payload bound to the current form's fields
func (w *Walker) answer() question.Answer {
	a := make(question.Answer, len(w.values)+1)
	for name, v := range w.values {
		a[name] = *v
	}
	if w.chosen != nil {
		a["selection"] = strings.Join(*w.chosen, "\n")
	}
	return a
}

func (w *Walker) label(field string) string {
	return w.localizer.GetMessage("label."+field, nil)
}

func (w *Walker) progress() string {
	return w.localizer.GetMessage("walker.progress", map[string]any{
		"Number": w.step.QuestionNumber(),
		"Total":  len(w.journey.Form().Pages),
	})
}
