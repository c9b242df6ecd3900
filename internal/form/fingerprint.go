package form

import (
	"encoding/json"
	"fmt"

	"github.com/zeebo/blake3"
)

// Canonicalize returns a canonical JSON representation of the parts of a form that
// affect a journey. encoding/json sorts map keys, so the output is stable.
func Canonicalize(f *Form) ([]byte, error) {
	pages := make([]map[string]any, len(f.Pages))
	for i, p := range f.Pages {
		page := map[string]any{
			"id":            int64(p.ID),
			"question_text": p.QuestionText,
			"answer_type":   string(p.AnswerType),
			"is_optional":   p.IsOptional,
		}
		if p.HintText != "" {
			page["hint_text"] = p.HintText
		}
		if len(p.AnswerSettings) > 0 {
			page["answer_settings"] = map[string]any(p.AnswerSettings)
		}
		if p.NextPage != nil {
			page["next_page"] = int64(*p.NextPage)
		}
		pages[i] = page
	}

	data := map[string]any{
		"id":    f.ID,
		"name":  f.Name,
		"slug":  f.Slug,
		"pages": pages,
	}
	if f.StartPage != nil {
		data["start_page"] = int64(*f.StartPage)
	}

	return json.Marshal(data)
}

// Fingerprint computes the blake3 hash of a canonicalized form
func Fingerprint(f *Form) (string, error) {
	canonical, err := Canonicalize(f)
	if err != nil {
		return "", fmt.Errorf("canonicalize form: %w", err)
	}

	hasher := blake3.New()
	if _, err := hasher.Write(canonical); err != nil {
		return "", fmt.Errorf("hash form: %w", err)
	}

	return fmt.Sprintf("%x", hasher.Sum(nil)), nil
}
