// Package journey decides where a visitor may go within one form.
//
// A Context walks the form from its start page along each step's next page slug,
// reading answers from the visitor's session. Nothing here is persisted: the
// caller loads session data before building a Context and saves it afterwards.
package journey

import (
	"github.com/felixgeelhaar/formrunner/internal/form"
	"github.com/felixgeelhaar/formrunner/internal/question"
	"github.com/felixgeelhaar/formrunner/internal/session"
)

// Context is the traversal authority for one form over one session. It is not safe
// for concurrent use; build one per request.
type Context struct {
	form  *form.Form
	store *AnswerStore

	// answer types resolved at construction
	types map[form.PageID]form.AnswerType

	walked *walk
}

// walk is the memoized traversal from the start page
type walk struct {
	steps []*Step
	// end is the slug the walk stopped at: the review step, or a slug naming no page
	end string
}

// NewContext builds a Context for f over data. It fails with an
// UnsupportedAnswerTypeError when a page's answer type has no question variant.
func NewContext(f *form.Form, data *session.Data) (*Context, error) {
	types := make(map[form.PageID]form.AnswerType, len(f.Pages))
	for _, p := range f.Pages {
		if _, err := question.FromPage(p); err != nil {
			return nil, err
		}
		types[p.ID] = p.AnswerType
	}
	return &Context{form: f, store: NewAnswerStore(data), types: types}, nil
}

// Form returns the form being traversed
func (c *Context) Form() *form.Form { return c.form }

// Store returns the answer store
func (c *Context) Store() *AnswerStore { return c.store }

// FindOrCreate returns the step for a slug with any stored answer loaded
func (c *Context) FindOrCreate(slug string) (*Step, error) {
	if slug == CheckYourAnswersSlug {
		return newCheckYourAnswersStep(c.form), nil
	}
	page := c.form.PageBySlug(slug)
	if page == nil {
		return nil, &PageNotFoundError{FormID: c.form.FormID(), Slug: slug}
	}
	return c.loadStep(page), nil
}

func (c *Context) loadStep(page *form.Page) *Step {
	step := &Step{form: c.form, page: page}
	answer, ok := c.store.GetStoredAnswer(step)
	// the type was checked by NewContext, so New cannot fail
	q, _ := question.New(c.types[page.ID], answer, question.Options{
		Text:     page.QuestionText,
		Hint:     page.HintText,
		Optional: page.IsOptional,
		Settings: page.AnswerSettings,
	}, page.ID)
	step.question = q
	step.answered = ok
	return step
}

func (c *Context) traverse() *walk {
	if c.walked != nil {
		return c.walked
	}

	w := &walk{}
	seen := make(map[string]bool)
	slug := c.form.StartPageSlug()
	for slug != CheckYourAnswersSlug {
		page := c.form.PageBySlug(slug)
		if page == nil || seen[slug] {
			break
		}
		seen[slug] = true
		step := c.loadStep(page)
		w.steps = append(w.steps, step)
		slug = step.NextPageSlug()
	}
	w.end = slug

	c.walked = w
	return w
}

func (c *Context) invalidate() {
	c.walked = nil
}

// StartPageSlug returns the slug of the first page of the journey
func (c *Context) StartPageSlug() string {
	return c.form.StartPageSlug()
}

// CanVisit reports whether every required step before slug holds a valid answer.
// The start page is always visitable. Blank optional steps do not block later
// pages, but the review step opens only once the journey is complete.
func (c *Context) CanVisit(slug string) bool {
	if slug == c.StartPageSlug() {
		return true
	}
	if slug == CheckYourAnswersSlug {
		return c.AllStepsComplete()
	}
	for _, step := range c.traverse().steps {
		if step.Slug() == slug {
			return true
		}
		if !step.Valid() {
			return false
		}
	}
	return false
}

// PreviousStep returns the slug of the page whose next page is slug, scanning pages
// in declared order. For the review step it is the last step of the journey. ok is
// false for the start page or when no page leads to slug.
func (c *Context) PreviousStep(slug string) (prev string, ok bool) {
	if slug == c.StartPageSlug() {
		return "", false
	}
	if slug == CheckYourAnswersSlug {
		w := c.traverse()
		if w.end != CheckYourAnswersSlug || len(w.steps) == 0 {
			return "", false
		}
		return w.steps[len(w.steps)-1].Slug(), true
	}
	for _, page := range c.form.Pages {
		step := c.loadStep(page)
		if step.NextPageSlug() == slug {
			return step.Slug(), true
		}
	}
	return "", false
}

// NextPageSlug returns the first step of the journey that is unanswered or invalid,
// or the review step when every step is complete
func (c *Context) NextPageSlug() string {
	w := c.traverse()
	for _, step := range w.steps {
		if !step.Answered() || !step.Valid() {
			return step.Slug()
		}
	}
	return w.end
}

// AllStepsComplete reports whether the review step is the next step
func (c *Context) AllStepsComplete() bool {
	return c.NextPageSlug() == CheckYourAnswersSlug
}

// CompletedSteps returns the answered, valid steps of the journey in order, stopping
// at the first incomplete one
func (c *Context) CompletedSteps() []*Step {
	var done []*Step
	for _, step := range c.traverse().steps {
		if !step.Answered() || !step.Valid() {
			break
		}
		done = append(done, step)
	}
	return done
}

// SaveStep stores the step's answer when it is valid. An invalid step, or the
// review step, leaves the store untouched and returns false.
func (c *Context) SaveStep(step *Step) bool {
	if step.IsCheckYourAnswers() || !step.Valid() {
		return false
	}
	c.store.SaveStep(step, step.Question().SerializableHash())
	step.answered = true
	c.invalidate()
	return true
}

// ClearStoredAnswer removes the stored answer of one step
func (c *Context) ClearStoredAnswer(step *Step) {
	c.store.ClearStoredAnswer(step)
	c.invalidate()
}

// Clear removes every answer of the form, marking it submitted
func (c *Context) Clear() {
	c.store.Clear(c.form.FormID())
	c.invalidate()
}

// FormSubmitted reports whether the form's answers were cleared by a submission
func (c *Context) FormSubmitted() bool {
	return c.store.FormSubmitted(c.form.FormID())
}

// SupportDetails returns the form's contact details
func (c *Context) SupportDetails() form.SupportDetails {
	return c.form.SupportDetails
}
