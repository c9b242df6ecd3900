package journey

import (
	"github.com/felixgeelhaar/formrunner/internal/form"
	"github.com/felixgeelhaar/formrunner/internal/question"
)

// CheckYourAnswersSlug is the reserved slug of the review step that ends every journey
const CheckYourAnswersSlug = "check_your_answers"

// Step binds a page to its question and the currently known answer. The check your
// answers step has no page and no question.
type Step struct {
	form     *form.Form
	page     *form.Page
	question question.Question
	answered bool
	mutated  bool
}

func newCheckYourAnswersStep(f *form.Form) *Step {
	return &Step{form: f}
}

// IsCheckYourAnswers reports whether this is the review step
func (s *Step) IsCheckYourAnswers() bool {
	return s.page == nil
}

// Slug returns the URL slug of the step
func (s *Step) Slug() string {
	if s.page == nil {
		return CheckYourAnswersSlug
	}
	return s.page.Slug()
}

// PageID returns the page id, zero for the review step
func (s *Step) PageID() form.PageID {
	if s.page == nil {
		return 0
	}
	return s.page.ID
}

// FormID returns the owning form's id
func (s *Step) FormID() string {
	return s.form.FormID()
}

// Page returns the page definition, nil for the review step
func (s *Step) Page() *form.Page { return s.page }

// Question returns the bound question, nil for the review step
func (s *Step) Question() question.Question { return s.question }

// Answered reports whether an answer was stored for the page when the step was loaded
func (s *Step) Answered() bool { return s.answered }

// Mutated reports whether Update has been called
func (s *Step) Mutated() bool { return s.mutated }

// Update replaces the answer payload. It never fails; call Valid to check the result.
func (s *Step) Update(answer question.Answer) {
	if s.question == nil {
		return
	}
	s.question.Update(answer)
	s.mutated = true
}

func (s *Step) Valid() bool {
	if s.question == nil {
		return true
	}
	return s.question.Valid()
}

func (s *Step) Validate() question.ValidationErrors {
	if s.question == nil {
		return nil
	}
	return s.question.Validate()
}

// NextPageSlug follows the page's explicit next page, else the next page in declared
// order, else the review step
func (s *Step) NextPageSlug() string {
	if s.page == nil {
		return CheckYourAnswersSlug
	}
	if s.page.NextPage != nil {
		return s.page.NextPage.Slug()
	}
	if i := s.form.PageIndex(s.page.ID); i >= 0 && i+1 < len(s.form.Pages) {
		return s.form.Pages[i+1].Slug()
	}
	return CheckYourAnswersSlug
}

func (s *Step) ShowAnswer() string {
	if s.question == nil {
		return ""
	}
	return s.question.ShowAnswer()
}

func (s *Step) ShowAnswerInEmail() string {
	if s.question == nil {
		return ""
	}
	return s.question.ShowAnswerInEmail()
}

// Equal reports whether both steps refer to the same page of the same form
func (s *Step) Equal(other *Step) bool {
	if other == nil {
		return false
	}
	return s.FormID() == other.FormID() && s.Slug() == other.Slug()
}

// Params lists the payload fields the step accepts
func (s *Step) Params() []string {
	if s.question == nil {
		return nil
	}
	return s.question.Fields()
}

// Skipped reports whether an optional question was left blank
func (s *Step) Skipped() bool {
	return s.question != nil && s.question.IsOptional() && s.question.IsEmpty()
}

// QuestionNumber returns the 1-based position of the page in the form
func (s *Step) QuestionNumber() int {
	if s.page == nil {
		return 0
	}
	return s.form.PageIndex(s.page.ID) + 1
}

// ShortName returns the page's short name, falling back to the question text
func (s *Step) ShortName() string {
	if s.page == nil {
		return ""
	}
	if s.page.QuestionShortName != "" {
		return s.page.QuestionShortName
	}
	return s.page.QuestionText
}
