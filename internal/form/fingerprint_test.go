package form

import (
	"encoding/json"
	"testing"
)

func TestCanonicalize(t *testing.T) {
	f := &Form{
		ID:        1,
		Name:      "Apply",
		Slug:      "apply",
		StartPage: pageID(1),
		Pages: []*Page{
			{ID: 1, QuestionText: "One", AnswerType: AnswerTypeText, NextPage: pageID(2), AnswerSettings: AnswerSettings{"input_type": "long_text"}},
			{ID: 2, QuestionText: "Two", HintText: "hint", AnswerType: AnswerTypeNumber, IsOptional: true},
		},
	}

	data, err := Canonicalize(f)
	if err != nil {
		t.Fatalf("Canonicalize() error = %v", err)
	}

	var got map[string]any
	if err := json.Unmarshal(data, &got); err != nil {
		t.Fatalf("Canonicalize() produced invalid JSON: %v", err)
	}
	if got["start_page"] != float64(1) {
		t.Errorf("start_page = %v", got["start_page"])
	}
	pages := got["pages"].([]any)
	first := pages[0].(map[string]any)
	if first["next_page"] != float64(2) {
		t.Errorf("next_page = %v", first["next_page"])
	}
	if _, ok := first["hint_text"]; ok {
		t.Error("empty hint_text should be omitted")
	}
	if pages[1].(map[string]any)["is_optional"] != true {
		t.Error("is_optional missing from page 2")
	}
}

func TestFingerprint(t *testing.T) {
	base := func() *Form {
		return &Form{
			ID:   1,
			Name: "Apply",
			Pages: []*Page{
				{ID: 1, QuestionText: "One", AnswerType: AnswerTypeText},
			},
		}
	}

	a, err := Fingerprint(base())
	if err != nil {
		t.Fatalf("Fingerprint() error = %v", err)
	}
	b, _ := Fingerprint(base())
	if a != b {
		t.Error("Fingerprint() is not deterministic")
	}
	if len(a) != 64 {
		t.Errorf("fingerprint length = %d, want 64", len(a))
	}

	// presentation-only fields do not change the fingerprint
	decorated := base()
	decorated.PrivacyPolicyURL = "https://example.gov.uk/privacy"
	decorated.Email = "help@example.gov.uk"
	if got, _ := Fingerprint(decorated); got != a {
		t.Error("support details should not affect the fingerprint")
	}

	changed := base()
	changed.Pages[0].QuestionText = "One?"
	if got, _ := Fingerprint(changed); got == a {
		t.Error("changing a question should change the fingerprint")
	}
}
