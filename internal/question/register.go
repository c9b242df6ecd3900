package question

import (
	"errors"
	"fmt"

	"github.com/felixgeelhaar/formrunner/internal/form"
)

// ErrUnsupportedAnswerType is matched by errors.Is for every UnsupportedAnswerTypeError
var ErrUnsupportedAnswerType = errors.New("unsupported answer type")

// UnsupportedAnswerTypeError reports a page whose answer type has no question
// variant. It is a configuration error from the authoring side, not a user error.
type UnsupportedAnswerTypeError struct {
	PageID     form.PageID
	AnswerType form.AnswerType
}

func (e *UnsupportedAnswerTypeError) Error() string {
	return fmt.Sprintf("unexpected answer_type for page %d: %q", e.PageID, e.AnswerType)
}

// Is makes errors.Is(err, ErrUnsupportedAnswerType) hold
func (e *UnsupportedAnswerTypeError) Is(target error) bool {
	return target == ErrUnsupportedAnswerType
}

// FromPage builds the question variant for a page with an empty answer
func FromPage(page *form.Page) (Question, error) {
	return New(page.AnswerType, Answer{}, Options{
		Text:     page.QuestionText,
		Hint:     page.HintText,
		Optional: page.IsOptional,
		Settings: page.AnswerSettings,
	}, page.ID)
}

// New builds the question variant for an answer type. pageID is only used to
// report an unsupported type.
func New(t form.AnswerType, answer Answer, opts Options, pageID form.PageID) (Question, error) {
	switch t {
	case form.AnswerTypeDate:
		return NewDate(answer, opts), nil
	case form.AnswerTypeAddress:
		return NewAddress(answer, opts), nil
	case form.AnswerTypeEmail:
		return NewEmail(answer, opts), nil
	case form.AnswerTypeNationalInsuranceNumber:
		return NewNationalInsuranceNumber(answer, opts), nil
	case form.AnswerTypePhoneNumber:
		return NewPhoneNumber(answer, opts), nil
	case form.AnswerTypeNumber:
		return NewNumber(answer, opts), nil
	case form.AnswerTypeSelection:
		return NewSelection(answer, opts), nil
	case form.AnswerTypeOrganisationName:
		return NewOrganisationName(answer, opts), nil
	case form.AnswerTypeText:
		return NewText(answer, opts), nil
	case form.AnswerTypeName:
		return NewName(answer, opts), nil
	default:
		return nil, &UnsupportedAnswerTypeError{PageID: pageID, AnswerType: t}
	}
}
