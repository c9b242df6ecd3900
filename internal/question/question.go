// Package question implements one validator/formatter per page answer type.
//
// A Question wraps a loose answer payload (field name to string). It never trusts the
// payload to match its own shape: missing keys read as blank and unknown keys are
// ignored, so answers stored before a page changed type degrade to blank or invalid
// instead of failing.
package question

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/felixgeelhaar/formrunner/internal/form"
)

// Answer is the raw payload of a question: sub-field name to submitted string.
type Answer map[string]string

// Clone returns a copy of the answer
func (a Answer) Clone() Answer {
	if a == nil {
		return Answer{}
	}
	out := make(Answer, len(a))
	for k, v := range a {
		out[k] = v
	}
	return out
}

// Question is the capability set shared by every answer type
type Question interface {
	// Type returns the answer type this variant implements
	Type() form.AnswerType

	// Text returns the question text copied from the page
	Text() string

	// Hint returns the hint text, empty when the page has none
	Hint() string

	// Fields lists the payload keys this question reads
	Fields() []string

	// Update replaces the current payload
	Update(answer Answer)

	// Validate returns the field errors for the current payload
	Validate() ValidationErrors

	// Valid reports whether the current payload passes validation
	Valid() bool

	// IsEmpty reports whether every field is blank
	IsEmpty() bool

	IsOptional() bool
	HasLongAnswer() bool

	// ShowAnswer renders the answer for the review screen
	ShowAnswer() string

	// ShowAnswerInEmail renders the answer for a plain-text email body
	ShowAnswerInEmail() string

	// SerializableHash returns the payload restricted to Fields, plus derived values.
	// This is what gets stored and what redisplays a form after a failed validation.
	SerializableHash() Answer
}

// Options carries the page attributes copied into a question at construction
type Options struct {
	Text     string
	Hint     string
	Optional bool
	Settings form.AnswerSettings
}

// base holds the state common to every variant
type base struct {
	answer   Answer
	text     string
	hint     string
	optional bool
	settings form.AnswerSettings
}

func newBase(answer Answer, opts Options) base {
	return base{
		answer:   answer.Clone(),
		text:     opts.Text,
		hint:     opts.Hint,
		optional: opts.Optional,
		settings: opts.Settings,
	}
}

func (b *base) Text() string        { return b.text }
func (b *base) Hint() string        { return b.hint }
func (b *base) IsOptional() bool    { return b.optional }
func (b *base) HasLongAnswer() bool { return false }

func (b *base) Update(answer Answer) {
	b.answer = answer.Clone()
}

// value returns the trimmed value of a field, blank when missing
func (b *base) value(field string) string {
	return strings.TrimSpace(b.answer[field])
}

// blank reports whether every given field is blank
func (b *base) blank(fields ...string) bool {
	for _, f := range fields {
		if b.value(f) != "" {
			return false
		}
	}
	return true
}

// hash copies the given fields out of the payload, blank when missing
func (b *base) hash(fields ...string) Answer {
	out := make(Answer, len(fields))
	for _, f := range fields {
		out[f] = b.answer[f]
	}
	return out
}

// joinPresent joins the non-blank values of the given fields
func (b *base) joinPresent(sep string, fields ...string) string {
	parts := make([]string, 0, len(fields))
	for _, f := range fields {
		if v := b.value(f); v != "" {
			parts = append(parts, v)
		}
	}
	return strings.Join(parts, sep)
}

func (b *base) settingString(key string) string {
	v, ok := b.settings[key]
	if !ok || v == nil {
		return ""
	}
	return fmt.Sprint(v)
}

func (b *base) settingBool(key string) bool {
	switch v := b.settings[key].(type) {
	case bool:
		return v
	case string:
		parsed, err := strconv.ParseBool(v)
		return err == nil && parsed
	}
	return false
}

func (b *base) settingInt(key string) (int64, bool) {
	switch v := b.settings[key].(type) {
	case int:
		return int64(v), true
	case int64:
		return v, true
	case float64:
		return int64(v), true
	case string:
		parsed, err := strconv.ParseInt(strings.TrimSpace(v), 10, 64)
		return parsed, err == nil
	}
	return 0, false
}

// FieldError is a single validation failure on one payload field
type FieldError struct {
	Type   form.AnswerType
	Field  string
	Key    string
	Params map[string]any
}

// MessageID returns the translation key for the error
func (e FieldError) MessageID() string {
	return string(e.Type) + "." + e.Key
}

// ValidationErrors is the result of validating a payload
type ValidationErrors []FieldError

// Error implements the error interface
func (v ValidationErrors) Error() string {
	parts := make([]string, len(v))
	for i, e := range v {
		parts[i] = e.Field + ": " + e.Key
	}
	return "invalid answer: " + strings.Join(parts, ", ")
}

// On returns the errors for one field
func (v ValidationErrors) On(field string) ValidationErrors {
	var out ValidationErrors
	for _, e := range v {
		if e.Field == field {
			out = append(out, e)
		}
	}
	return out
}

func fieldError(t form.AnswerType, field, key string) FieldError {
	return FieldError{Type: t, Field: field, Key: key}
}
