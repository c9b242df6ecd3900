// Package form holds the read-only form definitions served to users: a Form and its
// ordered Pages, as published by the forms authoring service.
package form

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// AnswerType is the declared type of a page's answer
type AnswerType string

const (
	AnswerTypeDate                    AnswerType = "date"
	AnswerTypeAddress                 AnswerType = "address"
	AnswerTypeEmail                   AnswerType = "email"
	AnswerTypeNationalInsuranceNumber AnswerType = "national_insurance_number"
	AnswerTypePhoneNumber             AnswerType = "phone_number"
	AnswerTypeNumber                  AnswerType = "number"
	AnswerTypeSelection               AnswerType = "selection"
	AnswerTypeOrganisationName        AnswerType = "organisation_name"
	AnswerTypeText                    AnswerType = "text"
	AnswerTypeName                    AnswerType = "name"
)

// Status is the publication state of a form
type Status string

const (
	StatusDraft    Status = "draft"
	StatusLive     Status = "live"
	StatusArchived Status = "archived"
)

// Mode selects which version of a form is being served.
type Mode string

const (
	ModeForm         Mode = "form"
	ModePreviewDraft Mode = "preview-draft"
	ModePreviewLive  Mode = "preview-live"
)

// ParseMode parses a URL mode segment.
func ParseMode(s string) (Mode, bool) {
	switch Mode(s) {
	case ModeForm, ModePreviewDraft, ModePreviewLive:
		return Mode(s), true
	}
	return "", false
}

// IsPreview reports whether the mode is one of the preview modes.
func (m Mode) IsPreview() bool {
	return m == ModePreviewDraft || m == ModePreviewLive
}

// IsDraft reports whether the draft version of the form should be fetched.
func (m Mode) IsDraft() bool {
	return m == ModePreviewDraft
}

// PageID identifies a page within a form. The authoring service sends page
// references either as numbers or as numeric strings, so both decode.
type PageID int64

// Slug returns the URL form of the ID.
func (id PageID) Slug() string {
	return strconv.FormatInt(int64(id), 10)
}

// String implements fmt.Stringer
func (id PageID) String() string {
	return id.Slug()
}

// ParsePageID parses a page slug.
func ParsePageID(s string) (PageID, error) {
	v, err := strconv.ParseInt(strings.TrimSpace(s), 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid page id %q: %w", s, err)
	}
	return PageID(v), nil
}

// UnmarshalJSON accepts 12 and "12".
func (id *PageID) UnmarshalJSON(data []byte) error {
	s := strings.Trim(string(data), `"`)
	parsed, err := ParsePageID(s)
	if err != nil {
		return err
	}
	*id = parsed
	return nil
}

// UnmarshalYAML accepts 12 and "12".
func (id *PageID) UnmarshalYAML(value *yaml.Node) error {
	parsed, err := ParsePageID(value.Value)
	if err != nil {
		return err
	}
	*id = parsed
	return nil
}

// AnswerSettings is the type-specific configuration blob of a page.
type AnswerSettings map[string]any

// Page is one question definition inside a Form
type Page struct {
	ID                PageID         `json:"id" yaml:"id"`
	QuestionText      string         `json:"question_text" yaml:"question_text"`
	HintText          string         `json:"hint_text,omitempty" yaml:"hint_text,omitempty"`
	QuestionShortName string         `json:"question_short_name,omitempty" yaml:"question_short_name,omitempty"`
	AnswerType        AnswerType     `json:"answer_type" yaml:"answer_type"`
	AnswerSettings    AnswerSettings `json:"answer_settings,omitempty" yaml:"answer_settings,omitempty"`
	NextPage          *PageID        `json:"next_page,omitempty" yaml:"next_page,omitempty"`
	IsOptional        bool           `json:"is_optional,omitempty" yaml:"is_optional,omitempty"`

	form *Form
}

// Slug returns the page's URL slug
func (p *Page) Slug() string {
	return p.ID.Slug()
}

// Form returns the form owning the page, or nil before Link has been called
func (p *Page) Form() *Form {
	return p.form
}

// UnmarshalJSON tolerates a null is_optional, which the authoring service sends for
// required pages.
func (p *Page) UnmarshalJSON(data []byte) error {
	type rawPage Page
	aux := struct {
		*rawPage
		IsOptional *bool `json:"is_optional"`
	}{rawPage: (*rawPage)(p)}
	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}
	p.IsOptional = aux.IsOptional != nil && *aux.IsOptional
	return nil
}

// SupportDetails is the contact information shown alongside every page
type SupportDetails struct {
	Email   string `json:"support_email,omitempty" yaml:"support_email,omitempty"`
	Phone   string `json:"support_phone,omitempty" yaml:"support_phone,omitempty"`
	URL     string `json:"support_url,omitempty" yaml:"support_url,omitempty"`
	URLText string `json:"support_url_text,omitempty" yaml:"support_url_text,omitempty"`
}

// Form is an immutable form definition
type Form struct {
	ID                  int64      `json:"id" yaml:"id"`
	Name                string     `json:"name" yaml:"name"`
	Slug                string     `json:"form_slug" yaml:"form_slug"`
	SubmissionEmail     string     `json:"submission_email,omitempty" yaml:"submission_email,omitempty"`
	StartPage           *PageID    `json:"start_page,omitempty" yaml:"start_page,omitempty"`
	Status              Status     `json:"status,omitempty" yaml:"status,omitempty"`
	LiveAt              *time.Time `json:"live_at,omitempty" yaml:"live_at,omitempty"`
	PrivacyPolicyURL    string     `json:"privacy_policy_url,omitempty" yaml:"privacy_policy_url,omitempty"`
	WhatHappensNextText string     `json:"what_happens_next_text,omitempty" yaml:"what_happens_next_text,omitempty"`
	DeclarationText     string     `json:"declaration_text,omitempty" yaml:"declaration_text,omitempty"`
	SupportDetails      `yaml:",inline"`
	Pages               []*Page `json:"pages,omitempty" yaml:"pages,omitempty"`
}

// Link sets each page's back reference to the form. Call it after decoding.
func (f *Form) Link() *Form {
	for _, p := range f.Pages {
		p.form = f
	}
	return f
}

// FormID returns the form identifier as a string key
func (f *Form) FormID() string {
	return strconv.FormatInt(f.ID, 10)
}

// StartPageSlug returns the slug of the explicit start page, falling back to the
// first page. It is empty for a form without pages.
func (f *Form) StartPageSlug() string {
	if f.StartPage != nil {
		return f.StartPage.Slug()
	}
	if len(f.Pages) > 0 {
		return f.Pages[0].Slug()
	}
	return ""
}

// HasStartPage reports whether the form can be started at all
func (f *Form) HasStartPage() bool {
	return f.StartPage != nil && f.PageBySlug(f.StartPage.Slug()) != nil
}

// PageBySlug returns the page with the given slug, or nil
func (f *Form) PageBySlug(slug string) *Page {
	for _, p := range f.Pages {
		if p.Slug() == slug {
			return p
		}
	}
	return nil
}

// PageIndex returns the declared position of a page, or -1
func (f *Form) PageIndex(id PageID) int {
	for i, p := range f.Pages {
		if p.ID == id {
			return i
		}
	}
	return -1
}

// IsLive reports whether the form may be served in live mode at the given time.
func (f *Form) IsLive(now time.Time) bool {
	if f.Status == StatusArchived {
		return false
	}
	if f.LiveAt != nil {
		return !f.LiveAt.After(now)
	}
	return f.Status == StatusLive
}

// Repository retrieves form definitions.
type Repository interface {
	Get(ctx context.Context, id int64, mode Mode) (*Form, error)
}
