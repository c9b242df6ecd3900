// Package tui walks a form in the terminal, one step per screen.
package tui

import (
	"context"
	"fmt"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"

	"github.com/felixgeelhaar/formrunner/internal/form"
	"github.com/felixgeelhaar/formrunner/internal/i18n"
	"github.com/felixgeelhaar/formrunner/internal/journey"
	"github.com/felixgeelhaar/formrunner/internal/question"
	"github.com/felixgeelhaar/formrunner/internal/session"
)

// submitChoice is the review option that submits the form; every other option is a
// step slug to change
const submitChoice = "submit"

// Options configures a Walker
type Options struct {
	Form      *form.Form
	Store     session.Store
	SessionID string
	Localizer *i18n.Localizer
}

// Walker is the bubbletea model for one journey through one form
type Walker struct {
	// ctx bounds session store calls made from Update
	ctx       context.Context
	journey   *journey.Context
	store     session.Store
	sessionID string
	data      *session.Data
	localizer *i18n.Localizer
	styles    Styles

	step   *journey.Step
	form   *huh.Form
	values map[string]*string
	chosen *[]string
	choice string
	errors []string

	submitted bool
	quitting  bool
	err       error
}

// NewWalker loads the session and positions the walker on the first step that still
// needs an answer
func NewWalker(ctx context.Context, opts Options) (*Walker, error) {
	data, err := opts.Store.Load(ctx, opts.SessionID)
	if err != nil {
		return nil, fmt.Errorf("load session: %w", err)
	}
	jc, err := journey.NewContext(opts.Form, data)
	if err != nil {
		return nil, err
	}

	w := &Walker{
		ctx:       ctx,
		journey:   jc,
		store:     opts.Store,
		sessionID: opts.SessionID,
		data:      data,
		localizer: opts.Localizer,
		styles:    DefaultStyles(),
	}
	if err := w.goTo(jc.NextPageSlug()); err != nil {
		return nil, err
	}
	return w, nil
}

// Submitted reports whether the walk ended with a submission
func (w *Walker) Submitted() bool { return w.submitted }

// Err returns the error that stopped the walk, if any
func (w *Walker) Err() error { return w.err }

func (w *Walker) goTo(slug string) error {
	step, err := w.journey.FindOrCreate(slug)
	if err != nil {
		return err
	}
	w.step = step
	w.errors = nil
	w.buildForm()
	return nil
}

// submit applies an answer to the current step. An invalid answer keeps the step
// and shows its errors; a valid one is persisted before moving on.
func (w *Walker) submit(answer question.Answer) error {
	w.step.Update(answer)
	if !w.journey.SaveStep(w.step) {
		errs := w.step.Validate()
		w.buildForm()
		w.errors = make([]string, 0, len(errs))
		for _, e := range errs {
			w.errors = append(w.errors, w.localizer.FieldError(e))
		}
		return nil
	}
	if err := w.store.Save(w.ctx, w.sessionID, w.data); err != nil {
		return fmt.Errorf("save session: %w", err)
	}
	return w.goTo(w.journey.NextPageSlug())
}

// submitForm clears the answers of a complete journey
func (w *Walker) submitForm() error {
	if !w.journey.AllStepsComplete() {
		return w.goTo(w.journey.NextPageSlug())
	}
	w.journey.Clear()
	if err := w.store.Save(w.ctx, w.sessionID, w.data); err != nil {
		return fmt.Errorf("save session: %w", err)
	}
	w.submitted = true
	w.form = nil
	return nil
}

// complete handles a finished huh form
func (w *Walker) complete() error {
	if w.step.IsCheckYourAnswers() {
		if w.choice == submitChoice {
			return w.submitForm()
		}
		return w.goTo(w.choice)
	}
	return w.submit(w.answer())
}

func (w *Walker) Init() tea.Cmd {
	if w.form != nil {
		return w.form.Init()
	}
	return nil
}

func (w *Walker) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	if msg, ok := msg.(tea.KeyMsg); ok && key.Matches(msg, keys.Quit) {
		w.quitting = true
		return w, tea.Quit
	}

	if w.submitted || w.err != nil {
		if _, ok := msg.(tea.KeyMsg); ok {
			return w, tea.Quit
		}
		return w, nil
	}
	if w.form == nil {
		return w, nil
	}

	model, cmd := w.form.Update(msg)
	if f, ok := model.(*huh.Form); ok {
		w.form = f
	}

	switch w.form.State {
	case huh.StateCompleted:
		if err := w.complete(); err != nil {
			w.err = err
			return w, nil
		}
		if w.form == nil {
			return w, nil
		}
		return w, w.form.Init()
	case huh.StateAborted:
		w.quitting = true
		return w, tea.Quit
	}
	return w, cmd
}

// Run starts the walker in the terminal and returns once the visitor submits or quits
func Run(ctx context.Context, opts Options) (*Walker, error) {
	w, err := NewWalker(ctx, opts)
	if err != nil {
		return nil, err
	}

	final, err := tea.NewProgram(w, tea.WithContext(ctx)).Run()
	if err != nil {
		return nil, fmt.Errorf("run walker: %w", err)
	}
	m, ok := final.(*Walker)
	if !ok {
		return nil, fmt.Errorf("invalid final model type")
	}
	return m, m.err
}
