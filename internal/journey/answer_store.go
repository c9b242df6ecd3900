package journey

import (
	"github.com/felixgeelhaar/formrunner/internal/question"
	"github.com/felixgeelhaar/formrunner/internal/session"
)

// AnswerStore reads and writes answers inside one visitor's session data, keyed by
// form id then page id. It holds a reference to the caller's data: writes are
// visible to the caller, who persists the session afterwards.
//
// A form entry has three states: absent (never visited), a page map (in progress
// or complete) and nil (submitted).
type AnswerStore struct {
	data *session.Data
}

// NewAnswerStore wraps session data. A nil data value starts an empty session.
func NewAnswerStore(data *session.Data) *AnswerStore {
	if data == nil {
		data = session.NewData()
	}
	if data.Answers == nil {
		data.Answers = make(map[string]map[string]map[string]string)
	}
	return &AnswerStore{data: data}
}

// Data returns the underlying session data
func (s *AnswerStore) Data() *session.Data {
	return s.data
}

// SaveStep stores answer for the step's page, replacing any previous answer. Saving
// into a submitted form starts it again.
func (s *AnswerStore) SaveStep(step *Step, answer question.Answer) {
	formID := step.FormID()
	pages := s.data.Answers[formID]
	if pages == nil {
		pages = make(map[string]map[string]string)
		s.data.Answers[formID] = pages
	}
	pages[step.PageID().Slug()] = answer.Clone()
}

// GetStoredAnswer returns the stored answer for the step's page
func (s *AnswerStore) GetStoredAnswer(step *Step) (question.Answer, bool) {
	answer, ok := s.data.Answers[step.FormID()][step.PageID().Slug()]
	if !ok {
		return nil, false
	}
	return question.Answer(answer).Clone(), true
}

// ClearStoredAnswer removes the answer for the step's page. Clearing an answer that
// was never stored does nothing.
func (s *AnswerStore) ClearStoredAnswer(step *Step) {
	if pages := s.data.Answers[step.FormID()]; pages != nil {
		delete(pages, step.PageID().Slug())
	}
}

// Clear removes every answer of one form and leaves the form marked as submitted.
// Other forms in the same session are untouched. A form that was never visited
// stays absent.
func (s *AnswerStore) Clear(formID string) {
	if _, ok := s.data.Answers[formID]; !ok {
		return
	}
	s.data.Answers[formID] = nil
}

// FormSubmitted reports whether the form's entry is present but empty
func (s *AnswerStore) FormSubmitted(formID string) bool {
	pages, ok := s.data.Answers[formID]
	return ok && pages == nil
}
