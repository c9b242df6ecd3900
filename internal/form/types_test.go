package form

import (
	"encoding/json"
	"testing"
	"time"
)

func pageID(n int64) *PageID {
	id := PageID(n)
	return &id
}

func TestParseMode(t *testing.T) {
	tests := []struct {
		in      string
		want    Mode
		ok      bool
		preview bool
		draft   bool
	}{
		{in: "form", want: ModeForm, ok: true},
		{in: "preview-draft", want: ModePreviewDraft, ok: true, preview: true, draft: true},
		{in: "preview-live", want: ModePreviewLive, ok: true, preview: true},
		{in: "preview", ok: false},
		{in: "", ok: false},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, ok := ParseMode(tt.in)
			if ok != tt.ok || got != tt.want {
				t.Fatalf("ParseMode(%q) = %q, %v; want %q, %v", tt.in, got, ok, tt.want, tt.ok)
			}
			if got.IsPreview() != tt.preview {
				t.Errorf("IsPreview() = %v, want %v", got.IsPreview(), tt.preview)
			}
			if got.IsDraft() != tt.draft {
				t.Errorf("IsDraft() = %v, want %v", got.IsDraft(), tt.draft)
			}
		})
	}
}

func TestPageIDDecoding(t *testing.T) {
	var p struct {
		A PageID `json:"a"`
		B PageID `json:"b"`
	}
	if err := json.Unmarshal([]byte(`{"a": 12, "b": "13"}`), &p); err != nil {
		t.Fatalf("Unmarshal() error = %v", err)
	}
	if p.A != 12 || p.B != 13 {
		t.Errorf("got %d, %d; want 12, 13", p.A, p.B)
	}

	if err := json.Unmarshal([]byte(`{"a": "twelve"}`), &p); err == nil {
		t.Error("expected an error for a non-numeric page id")
	}

	if _, err := ParsePageID(" 7 "); err != nil {
		t.Errorf("ParsePageID() should trim spaces: %v", err)
	}
}

func TestPageNullIsOptional(t *testing.T) {
	var p Page
	if err := json.Unmarshal([]byte(`{"id": 1, "question_text": "Q", "answer_type": "text", "is_optional": null}`), &p); err != nil {
		t.Fatalf("Unmarshal() error = %v", err)
	}
	if p.IsOptional {
		t.Error("null is_optional should decode as required")
	}

	if err := json.Unmarshal([]byte(`{"id": 1, "is_optional": true}`), &p); err != nil {
		t.Fatalf("Unmarshal() error = %v", err)
	}
	if !p.IsOptional {
		t.Error("is_optional true was lost")
	}
}

func TestStartPage(t *testing.T) {
	pages := []*Page{{ID: 4}, {ID: 5}}

	tests := []struct {
		name      string
		form      *Form
		wantSlug  string
		wantStart bool
	}{
		{name: "explicit", form: &Form{StartPage: pageID(5), Pages: pages}, wantSlug: "5", wantStart: true},
		{name: "first page fallback", form: &Form{Pages: pages}, wantSlug: "4", wantStart: false},
		{name: "dangling start page", form: &Form{StartPage: pageID(9), Pages: pages}, wantSlug: "9", wantStart: false},
		{name: "no pages", form: &Form{}, wantSlug: "", wantStart: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.form.StartPageSlug(); got != tt.wantSlug {
				t.Errorf("StartPageSlug() = %q, want %q", got, tt.wantSlug)
			}
			if got := tt.form.HasStartPage(); got != tt.wantStart {
				t.Errorf("HasStartPage() = %v, want %v", got, tt.wantStart)
			}
		})
	}
}

func TestPageLookup(t *testing.T) {
	f := (&Form{ID: 3, Pages: []*Page{{ID: 10}, {ID: 20}}}).Link()

	if p := f.PageBySlug("20"); p == nil || p.Form() != f {
		t.Errorf("PageBySlug(20) = %v, want a page linked to its form", p)
	}
	if f.PageBySlug("30") != nil {
		t.Error("PageBySlug(30) should be nil")
	}
	if got := f.PageIndex(20); got != 1 {
		t.Errorf("PageIndex(20) = %d, want 1", got)
	}
	if got := f.PageIndex(30); got != -1 {
		t.Errorf("PageIndex(30) = %d, want -1", got)
	}
	if f.FormID() != "3" {
		t.Errorf("FormID() = %q", f.FormID())
	}
}

func TestIsLive(t *testing.T) {
	now := time.Date(2023, 1, 1, 12, 0, 0, 0, time.UTC)
	past := now.Add(-time.Hour)
	future := now.Add(time.Hour)

	tests := []struct {
		name string
		form Form
		want bool
	}{
		{name: "live without date", form: Form{Status: StatusLive}, want: true},
		{name: "draft without date", form: Form{Status: StatusDraft}, want: false},
		{name: "live_at in the past", form: Form{LiveAt: &past}, want: true},
		{name: "live_at now", form: Form{LiveAt: &now}, want: true},
		{name: "live_at in the future", form: Form{Status: StatusLive, LiveAt: &future}, want: false},
		{name: "archived", form: Form{Status: StatusArchived, LiveAt: &past}, want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.form.IsLive(now); got != tt.want {
				t.Errorf("IsLive() = %v, want %v", got, tt.want)
			}
		})
	}
}
