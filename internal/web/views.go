package web

import (
	"github.com/felixgeelhaar/formrunner/internal/form"
	"github.com/felixgeelhaar/formrunner/internal/journey"
	"github.com/felixgeelhaar/formrunner/internal/question"
)

// formView is the form summary included in every response
type formView struct {
	ID             int64               `json:"id"`
	Name           string              `json:"name"`
	Slug           string              `json:"slug"`
	Mode           form.Mode           `json:"mode"`
	Preview        bool                `json:"preview"`
	PrivacyURL     string              `json:"privacy_url"`
	SupportDetails form.SupportDetails `json:"support_details"`
}

type questionView struct {
	Type          form.AnswerType `json:"type"`
	Text          string          `json:"text"`
	Hint          string          `json:"hint,omitempty"`
	Optional      bool            `json:"optional"`
	LongAnswer    bool            `json:"long_answer"`
	Fields        []string        `json:"fields"`
	Options       []string        `json:"options,omitempty"`
	OnlyOneOption bool            `json:"only_one_option,omitempty"`
	Answer        question.Answer `json:"answer"`
}

// pageView is a single question page, optionally with validation errors
type pageView struct {
	Form           formView            `json:"form"`
	PageSlug       string              `json:"page_slug"`
	QuestionNumber int                 `json:"question_number"`
	Question       questionView        `json:"question"`
	BackLink       string              `json:"back_link,omitempty"`
	SaveURL        string              `json:"save_url"`
	Changing       bool                `json:"changing_existing_answer"`
	Errors         map[string][]string `json:"errors,omitempty"`
}

type answerRow struct {
	Question  string `json:"question"`
	Answer    string `json:"answer"`
	ChangeURL string `json:"change_url"`
}

// checkYourAnswersView is the review step
type checkYourAnswersView struct {
	Form            formView    `json:"form"`
	PageSlug        string      `json:"page_slug"`
	BackLink        string      `json:"back_link,omitempty"`
	Rows            []answerRow `json:"rows"`
	DeclarationText string      `json:"declaration_text,omitempty"`
	SubmitURL       string      `json:"submit_url"`
}

type submittedView struct {
	Form                formView `json:"form"`
	WhatHappensNextText string   `json:"what_happens_next_text,omitempty"`
}

type repeatSubmissionView struct {
	Form     formView `json:"form"`
	StartURL string   `json:"start_url"`
}

type privacyView struct {
	Form             formView `json:"form"`
	PrivacyPolicyURL string   `json:"privacy_policy_url,omitempty"`
}

func newFormView(mode form.Mode, f *form.Form) formView {
	return formView{
		ID:             f.ID,
		Name:           f.Name,
		Slug:           f.Slug,
		Mode:           mode,
		Preview:        mode.IsPreview(),
		PrivacyURL:     privacyPath(mode, f),
		SupportDetails: f.SupportDetails,
	}
}

func newQuestionView(q question.Question) questionView {
	v := questionView{
		Type:       q.Type(),
		Text:       q.Text(),
		Hint:       q.Hint(),
		Optional:   q.IsOptional(),
		LongAnswer: q.HasLongAnswer(),
		Fields:     q.Fields(),
		Answer:     q.SerializableHash(),
	}
	if s, ok := q.(*question.Selection); ok {
		v.Options = s.Options()
		v.OnlyOneOption = s.OnlyOneOption()
	}
	return v
}

func newAnswerRows(mode form.Mode, f *form.Form, steps []*journey.Step) []answerRow {
	rows := make([]answerRow, 0, len(steps))
	for _, s := range steps {
		rows = append(rows, answerRow{
			Question:  s.ShortName(),
			Answer:    s.ShowAnswer(),
			ChangeURL: changePath(mode, f, s.Slug()),
		})
	}
	return rows
}
