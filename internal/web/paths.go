package web

import (
	"fmt"
	"regexp"

	"github.com/felixgeelhaar/formrunner/internal/form"
	"github.com/felixgeelhaar/formrunner/internal/journey"
)

// pageSlugPattern accepts page ids and the review step. Anything else is a plain 404.
var pageSlugPattern = regexp.MustCompile(`^(\d+|` + journey.CheckYourAnswersSlug + `)$`)

func formPath(mode form.Mode, f *form.Form) string {
	return fmt.Sprintf("/form/%s/%d/%s", mode, f.ID, f.Slug)
}

func pagePath(mode form.Mode, f *form.Form, slug string) string {
	return formPath(mode, f) + "/" + slug
}

func changePath(mode form.Mode, f *form.Form, slug string) string {
	return pagePath(mode, f, slug) + "/change"
}

func savePath(mode form.Mode, f *form.Form, slug string, changing bool) string {
	p := pagePath(mode, f, slug)
	if changing {
		p += "?changing_existing_answer=true"
	}
	return p
}

func checkYourAnswersPath(mode form.Mode, f *form.Form) string {
	return pagePath(mode, f, journey.CheckYourAnswersSlug)
}

func submitPath(mode form.Mode, f *form.Form) string {
	return formPath(mode, f) + "/submit_answers"
}

func submittedPath(mode form.Mode, f *form.Form) string {
	return formPath(mode, f) + "/submitted"
}

func repeatSubmissionPath(mode form.Mode, f *form.Form) string {
	return formPath(mode, f) + "/repeat_submission"
}

func privacyPath(mode form.Mode, f *form.Form) string {
	return formPath(mode, f) + "/privacy"
}
