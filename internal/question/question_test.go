package question

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/felixgeelhaar/formrunner/internal/form"
)

var allTypes = []form.AnswerType{
	form.AnswerTypeDate,
	form.AnswerTypeAddress,
	form.AnswerTypeEmail,
	form.AnswerTypeNationalInsuranceNumber,
	form.AnswerTypePhoneNumber,
	form.AnswerTypeNumber,
	form.AnswerTypeSelection,
	form.AnswerTypeOrganisationName,
	form.AnswerTypeText,
	form.AnswerTypeName,
}

// Every variant must render, hash and validate any payload without panicking.
func TestQuestionContract(t *testing.T) {
	payloads := map[string]Answer{
		"empty":   {},
		"nil":     nil,
		"foreign": {"unrelated": "value", "text": "x"},
		"partial": {"day": "1", "address1": "1 High Street", "first_name": "Ada"},
	}

	for _, at := range allTypes {
		for name, payload := range payloads {
			t.Run(string(at)+"/"+name, func(t *testing.T) {
				q, err := New(at, payload, Options{Text: "Question"}, 1)
				require.NoError(t, err)

				assert.Equal(t, at, q.Type())
				assert.NotPanics(t, func() {
					_ = q.ShowAnswer()
					_ = q.ShowAnswerInEmail()
					_ = q.Valid()
					_ = q.HasLongAnswer()
				})
				assert.NotNil(t, q.SerializableHash())
				assert.False(t, q.IsOptional())
			})
		}
	}
}

func TestOptionalBlankIsValid(t *testing.T) {
	for _, at := range allTypes {
		t.Run(string(at), func(t *testing.T) {
			required, err := New(at, Answer{}, Options{}, 1)
			require.NoError(t, err)
			assert.False(t, required.Valid(), "required blank answer should be invalid")
			assert.True(t, required.IsEmpty())

			optional, err := New(at, Answer{}, Options{Optional: true}, 1)
			require.NoError(t, err)
			assert.True(t, optional.Valid(), "optional blank answer should be valid")
			assert.True(t, optional.IsOptional())
		})
	}
}

func TestFromPage(t *testing.T) {
	page := &form.Page{
		ID:             7,
		QuestionText:   "What is your email address?",
		HintText:       "We will only use it to contact you",
		AnswerType:     form.AnswerTypeEmail,
		IsOptional:     true,
		AnswerSettings: form.AnswerSettings{"input_type": "single_line"},
	}

	q, err := FromPage(page)
	require.NoError(t, err)

	assert.IsType(t, &Email{}, q)
	assert.Equal(t, "What is your email address?", q.Text())
	assert.Equal(t, "We will only use it to contact you", q.Hint())
	assert.True(t, q.IsOptional())
	assert.True(t, q.IsEmpty())
}

func TestFromPageUnsupportedType(t *testing.T) {
	_, err := FromPage(&form.Page{ID: 3, AnswerType: "colour"})
	require.Error(t, err)

	assert.True(t, errors.Is(err, ErrUnsupportedAnswerType))

	var unsupported *UnsupportedAnswerTypeError
	require.True(t, errors.As(err, &unsupported))
	assert.Equal(t, form.PageID(3), unsupported.PageID)
	assert.Equal(t, form.AnswerType("colour"), unsupported.AnswerType)
	assert.Contains(t, err.Error(), "colour")
}

func TestUpdateReplacesPayload(t *testing.T) {
	q := NewText(Answer{"text": "first"}, Options{})
	q.Update(Answer{"text": "second"})
	assert.Equal(t, "second", q.ShowAnswer())

	payload := Answer{"text": "third"}
	q.Update(payload)
	payload["text"] = "mutated"
	assert.Equal(t, "third", q.ShowAnswer(), "question must not alias the caller's map")
}

func TestText(t *testing.T) {
	long := make([]byte, 500)
	for i := range long {
		long[i] = 'a'
	}

	tests := []struct {
		name     string
		answer   Answer
		settings form.AnswerSettings
		wantKey  string
	}{
		{name: "answered", answer: Answer{"text": "hello"}},
		{name: "blank", answer: Answer{"text": "   "}, wantKey: "blank"},
		{name: "too long single line", answer: Answer{"text": string(long)}, wantKey: "too_long"},
		{name: "long text allows more", answer: Answer{"text": string(long)}, settings: form.AnswerSettings{"input_type": "long_text"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			q := NewText(tt.answer, Options{Settings: tt.settings})
			assertErrorKey(t, q.Validate(), tt.wantKey)
		})
	}

	assert.True(t, NewText(nil, Options{Settings: form.AnswerSettings{"input_type": "long_text"}}).HasLongAnswer())
	assert.False(t, NewText(nil, Options{}).HasLongAnswer())
}

func TestOrganisationName(t *testing.T) {
	q := NewOrganisationName(Answer{"text": " Acme Ltd "}, Options{})
	assert.True(t, q.Valid())
	assert.Equal(t, "Acme Ltd", q.ShowAnswer())

	assertErrorKey(t, NewOrganisationName(Answer{}, Options{}).Validate(), "blank")
}

func TestEmail(t *testing.T) {
	tests := []struct {
		email   string
		wantKey string
	}{
		{email: "someone@example.gov.uk"},
		{email: "first.last+tag@sub.example.com"},
		{email: "", wantKey: "blank"},
		{email: "not-an-email", wantKey: "invalid_email"},
		{email: "two@@example.com", wantKey: "invalid_email"},
		{email: "space in@example.com", wantKey: "invalid_email"},
	}

	for _, tt := range tests {
		t.Run(tt.email, func(t *testing.T) {
			assertErrorKey(t, NewEmail(Answer{"email": tt.email}, Options{}).Validate(), tt.wantKey)
		})
	}
}

func TestNationalInsuranceNumber(t *testing.T) {
	tests := []struct {
		input    string
		wantKey  string
		wantShow string
	}{
		{input: "AB123456C", wantShow: "AB 12 34 56 C"},
		{input: "ab 12 34 56 c", wantShow: "AB 12 34 56 C"},
		{input: "", wantKey: "blank"},
		{input: "GB123456A", wantKey: "invalid_national_insurance_number"},
		{input: "DA123456A", wantKey: "invalid_national_insurance_number"},
		{input: "AB123456E", wantKey: "invalid_national_insurance_number"},
		{input: "AB12345C", wantKey: "invalid_national_insurance_number"},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			q := NewNationalInsuranceNumber(Answer{"national_insurance_number": tt.input}, Options{})
			assertErrorKey(t, q.Validate(), tt.wantKey)
			if tt.wantShow != "" {
				assert.Equal(t, tt.wantShow, q.ShowAnswer())
				assert.Equal(t, "AB123456C", q.SerializableHash()["national_insurance_number"])
			}
		})
	}
}

func TestPhoneNumber(t *testing.T) {
	tests := []struct {
		input   string
		wantKey string
	}{
		{input: "01610123456"},
		{input: "+44 (0)161 012 3456"},
		{input: "", wantKey: "blank"},
		{input: "0161 abc", wantKey: "invalid_phone_number"},
		{input: "12345", wantKey: "phone_too_short"},
		{input: "1234567890123456", wantKey: "phone_too_long"},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			assertErrorKey(t, NewPhoneNumber(Answer{"phone_number": tt.input}, Options{}).Validate(), tt.wantKey)
		})
	}
}

func TestNumber(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		settings form.AnswerSettings
		wantKey  string
	}{
		{name: "whole number", input: "42"},
		{name: "zero", input: "0"},
		{name: "blank", input: "", wantKey: "blank"},
		{name: "words", input: "forty two", wantKey: "not_a_number"},
		{name: "decimal", input: "4.2", wantKey: "not_an_integer"},
		{name: "negative below default minimum", input: "-1", wantKey: "number_too_small"},
		{name: "below configured minimum", input: "4", settings: form.AnswerSettings{"min": 5}, wantKey: "number_too_small"},
		{name: "above configured maximum", input: "11", settings: form.AnswerSettings{"max": "10"}, wantKey: "number_too_large"},
		{name: "within bounds", input: "7", settings: form.AnswerSettings{"min": 5.0, "max": 10}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assertErrorKey(t, NewNumber(Answer{"number": tt.input}, Options{Settings: tt.settings}).Validate(), tt.wantKey)
		})
	}

	assert.Equal(t, "7", NewNumber(Answer{"number": "007"}, Options{}).ShowAnswer())
}

func TestSelection(t *testing.T) {
	settings := form.AnswerSettings{
		"only_one_option": "true",
		"selection_options": []any{
			map[string]any{"name": "Red"},
			map[string]any{"name": "Green"},
			"Blue",
		},
	}
	multi := form.AnswerSettings{
		"only_one_option":           false,
		"include_none_of_the_above": true,
		"selection_options":         settings["selection_options"],
	}
	padded := form.AnswerSettings{
		"only_one_option":   true,
		"selection_options": []any{map[string]any{"name": " Balls "}, "Clubs\t", "  "},
	}

	tests := []struct {
		name     string
		input    string
		settings form.AnswerSettings
		wantKey  string
		wantShow string
	}{
		{name: "single choice", input: "Red", settings: settings, wantShow: "Red"},
		{name: "string option", input: "Blue", settings: settings, wantShow: "Blue"},
		{name: "not an option", input: "Purple", settings: settings, wantKey: "inclusion"},
		{name: "two choices for one option", input: "Red\nGreen", settings: settings, wantKey: "inclusion"},
		{name: "blank", input: "", settings: settings, wantKey: "blank"},
		{name: "multiple choices", input: "Red\nGreen", settings: multi, wantShow: "Red, Green"},
		{name: "none of the above", input: NoneOfTheAbove, settings: multi, wantShow: NoneOfTheAbove},
		{name: "padded option name", input: "Balls", settings: padded, wantShow: "Balls"},
		{name: "padded answer", input: "  Clubs ", settings: padded, wantShow: "Clubs"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			q := NewSelection(Answer{"selection": tt.input}, Options{Settings: tt.settings})
			assertErrorKey(t, q.Validate(), tt.wantKey)
			if tt.wantShow != "" {
				assert.Equal(t, tt.wantShow, q.ShowAnswer())
			}
		})
	}
}

func TestSelectionOptionsAreTrimmed(t *testing.T) {
	q := NewSelection(nil, Options{Settings: form.AnswerSettings{
		"selection_options":         []any{map[string]any{"name": " Balls "}, "Clubs\t", "  ", map[string]any{"name": nil}},
		"include_none_of_the_above": true,
	}})
	assert.Equal(t, []string{"Balls", "Clubs", NoneOfTheAbove}, q.Options())
}

func TestDate(t *testing.T) {
	defer func(orig func() time.Time) { now = orig }(now)
	now = func() time.Time { return time.Date(2022, 12, 14, 10, 0, 0, 0, time.UTC) }

	tests := []struct {
		name     string
		answer   Answer
		settings form.AnswerSettings
		wantKey  string
		wantShow string
	}{
		{name: "valid", answer: Answer{"day": "1", "month": "2", "year": "2022"}, wantShow: "1 February 2022"},
		{name: "leap day", answer: Answer{"day": "29", "month": "2", "year": "2024"}, wantShow: "29 February 2024"},
		{name: "blank", answer: Answer{}, wantKey: "blank"},
		{name: "missing year", answer: Answer{"day": "1", "month": "2"}, wantKey: "blank_date_fields"},
		{name: "not a date", answer: Answer{"day": "31", "month": "2", "year": "2022"}, wantKey: "invalid_date"},
		{name: "non numeric", answer: Answer{"day": "one", "month": "2", "year": "2022"}, wantKey: "invalid_date"},
		{name: "two digit year", answer: Answer{"day": "1", "month": "2", "year": "22"}, wantKey: "invalid_date"},
		{
			name:     "future date of birth",
			answer:   Answer{"day": "1", "month": "1", "year": "2030"},
			settings: form.AnswerSettings{"input_type": "date_of_birth"},
			wantKey:  "future_date",
			wantShow: "1 January 2030",
		},
		{
			name:     "future other date",
			answer:   Answer{"day": "1", "month": "1", "year": "2030"},
			settings: form.AnswerSettings{"input_type": "other_date"},
			wantShow: "1 January 2030",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			q := NewDate(tt.answer, Options{Settings: tt.settings})
			assertErrorKey(t, q.Validate(), tt.wantKey)
			assert.Equal(t, tt.wantShow, q.ShowAnswer())
		})
	}
}

func TestAddress(t *testing.T) {
	full := Answer{
		"address1":     "1 High Street",
		"address2":     "",
		"town_or_city": "Manchester",
		"county":       "Greater Manchester",
		"postcode":     "m1 1aa",
	}

	q := NewAddress(full, Options{})
	assert.True(t, q.Valid())
	assert.True(t, q.HasLongAnswer())
	assert.Equal(t, "1 High Street, Manchester, Greater Manchester, m1 1aa", q.ShowAnswer())
	assert.Equal(t, "1 High Street\nManchester\nGreater Manchester\nm1 1aa", q.ShowAnswerInEmail())

	errs := NewAddress(Answer{"address1": "1 High Street", "postcode": "nope"}, Options{}).Validate()
	assert.Len(t, errs.On("town_or_city"), 1)
	assertErrorKey(t, errs.On("postcode"), "invalid_postcode")
}

func TestName(t *testing.T) {
	full := NewName(Answer{"full_name": "Ada Lovelace"}, Options{})
	assert.True(t, full.Valid())
	assert.Equal(t, "Ada Lovelace", full.ShowAnswer())

	parts := NewName(Answer{"title": "Dr", "first_name": "Ada", "middle_names": "King", "last_name": "Lovelace"}, Options{
		Settings: form.AnswerSettings{"input_type": NameFirstMiddleAndLastName, "title_needed": true},
	})
	assert.True(t, parts.Valid())
	assert.Equal(t, "Dr Ada King Lovelace", parts.ShowAnswer())
	assert.Equal(t, []string{"title", "first_name", "middle_names", "last_name"}, parts.Fields())

	missing := NewName(Answer{"first_name": "Ada"}, Options{
		Settings: form.AnswerSettings{"input_type": NameFirstAndLastName},
	})
	assertErrorKey(t, missing.Validate(), "blank_last_name")
}

// A payload stored for one type must degrade quietly when read by another.
func TestForeignPayloadDegrades(t *testing.T) {
	stored := Answer{"text": "This is a text answer"}

	number := NewNumber(stored, Options{})
	assert.Equal(t, "", number.ShowAnswer())
	assert.False(t, number.Valid())
	assert.Equal(t, Answer{"number": ""}, number.SerializableHash())

	date := NewDate(stored, Options{})
	assert.Equal(t, "", date.ShowAnswer())
}

func assertErrorKey(t *testing.T, errs ValidationErrors, want string) {
	t.Helper()
	if want == "" {
		assert.Empty(t, errs)
		return
	}
	require.NotEmpty(t, errs)
	assert.Equal(t, want, errs[0].Key)
}
