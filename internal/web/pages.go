package web

import (
	"encoding/json"
	"errors"
	"mime"
	"net/http"
	"strconv"
	"strings"

	"github.com/felixgeelhaar/formrunner/internal/events"
	"github.com/felixgeelhaar/formrunner/internal/journey"
	"github.com/felixgeelhaar/formrunner/internal/question"
)

// handleStart sends visitors to the first page of a form
func (h *Handler) handleStart(w http.ResponseWriter, r *http.Request) {
	req, ok := h.load(w, r)
	if !ok {
		return
	}
	if !req.form.HasStartPage() {
		h.handleNotFound(w, r)
		return
	}

	if r.PathValue("form_slug") != "" {
		h.logEvent(req, events.FormVisit, events.FormEvent(req.journey, eventRequest(r)))
	}
	http.Redirect(w, r, pagePath(req.mode, req.form, req.journey.StartPageSlug()), http.StatusFound)
}

func (h *Handler) handleShowPage(w http.ResponseWriter, r *http.Request) {
	h.showPage(w, r, false)
}

func (h *Handler) handleChangePage(w http.ResponseWriter, r *http.Request) {
	h.showPage(w, r, true)
}

func (h *Handler) showPage(w http.ResponseWriter, r *http.Request, changing bool) {
	req, step, ok := h.prepareStep(w, r)
	if !ok {
		return
	}
	changing = changing || changingExistingAnswer(r)

	if !req.journey.CanVisit(step.Slug()) {
		http.Redirect(w, r, pagePath(req.mode, req.form, req.journey.NextPageSlug()), http.StatusFound)
		return
	}

	if step.IsCheckYourAnswers() {
		writeJSON(w, http.StatusOK, h.checkYourAnswers(req))
		return
	}
	writeJSON(w, http.StatusOK, h.page(req, step, changing))
}

func (h *Handler) handleSavePage(w http.ResponseWriter, r *http.Request) {
	req, step, ok := h.prepareStep(w, r)
	if !ok {
		return
	}
	if step.IsCheckYourAnswers() {
		h.handleNotFound(w, r)
		return
	}

	answer, changing, err := bindAnswer(r, step.Params())
	if err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", err.Error())
		return
	}
	changing = changing || changingExistingAnswer(r)
	step.Update(answer)

	if !req.journey.SaveStep(step) {
		view := h.page(req, step, changing)
		view.Errors = req.localizer.Errors(step.Validate())
		h.metrics.RecordValidationFailure(string(step.Page().AnswerType))
		writeJSON(w, http.StatusUnprocessableEntity, view)
		return
	}
	if err := h.saveSession(w, r, req); err != nil {
		h.internalError(w, r, err)
		return
	}

	name, attrs := events.PageSaveEvent(req.journey, step, eventRequest(r), changing)
	h.logEvent(req, name, attrs)

	next := pagePath(req.mode, req.form, step.NextPageSlug())
	if changing {
		next = checkYourAnswersPath(req.mode, req.form)
	}
	http.Redirect(w, r, next, http.StatusFound)
}

// handleSubmit completes the journey. Answers are cleared, which marks the form
// as submitted for this session.
func (h *Handler) handleSubmit(w http.ResponseWriter, r *http.Request) {
	req, ok := h.load(w, r)
	if !ok {
		return
	}
	if req.journey.FormSubmitted() {
		http.Redirect(w, r, repeatSubmissionPath(req.mode, req.form), http.StatusFound)
		return
	}
	if !req.journey.AllStepsComplete() {
		http.Redirect(w, r, pagePath(req.mode, req.form, req.journey.NextPageSlug()), http.StatusFound)
		return
	}

	answered := len(req.journey.CompletedSteps())
	req.journey.Clear()
	if err := h.saveSession(w, r, req); err != nil {
		h.internalError(w, r, err)
		return
	}

	h.logEvent(req, events.FormSubmission, events.FormEvent(req.journey, eventRequest(r)))
	h.logger.WithContext(r.Context()).Info("form submitted",
		"form_id", req.form.ID,
		"mode", string(req.mode),
		"answers", answered,
	)
	http.Redirect(w, r, submittedPath(req.mode, req.form), http.StatusFound)
}

func (h *Handler) handleSubmitted(w http.ResponseWriter, r *http.Request) {
	req, ok := h.load(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, submittedView{
		Form:                newFormView(req.mode, req.form),
		WhatHappensNextText: req.form.WhatHappensNextText,
	})
}

func (h *Handler) handleRepeatSubmission(w http.ResponseWriter, r *http.Request) {
	req, ok := h.load(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, repeatSubmissionView{
		Form:     newFormView(req.mode, req.form),
		StartURL: pagePath(req.mode, req.form, req.journey.StartPageSlug()),
	})
}

func (h *Handler) handlePrivacy(w http.ResponseWriter, r *http.Request) {
	req, ok := h.load(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, privacyView{
		Form:             newFormView(req.mode, req.form),
		PrivacyPolicyURL: req.form.PrivacyPolicyURL,
	})
}

// prepareStep loads the journey and the step named by the page slug. Slugs that
// cannot name a step are a plain 404; a well formed slug that is not in the form
// is reported.
func (h *Handler) prepareStep(w http.ResponseWriter, r *http.Request) (*request, *journey.Step, bool) {
	if !pageSlugPattern.MatchString(r.PathValue("page_slug")) {
		h.handleNotFound(w, r)
		return nil, nil, false
	}
	req, ok := h.load(w, r)
	if !ok {
		return nil, nil, false
	}

	step, err := req.journey.FindOrCreate(r.PathValue("page_slug"))
	if errors.Is(err, journey.ErrPageNotFound) {
		h.reportedNotFound(w, r, err)
		return nil, nil, false
	}
	if err != nil {
		h.internalError(w, r, err)
		return nil, nil, false
	}
	return req, step, true
}

func (h *Handler) page(req *request, step *journey.Step, changing bool) pageView {
	v := pageView{
		Form:           newFormView(req.mode, req.form),
		PageSlug:       step.Slug(),
		QuestionNumber: step.QuestionNumber(),
		Question:       newQuestionView(step.Question()),
		SaveURL:        savePath(req.mode, req.form, step.Slug(), changing),
		Changing:       changing,
	}
	if changing {
		v.BackLink = checkYourAnswersPath(req.mode, req.form)
	} else if prev, ok := req.journey.PreviousStep(step.Slug()); ok {
		v.BackLink = pagePath(req.mode, req.form, prev)
	}
	return v
}

func (h *Handler) checkYourAnswers(req *request) checkYourAnswersView {
	v := checkYourAnswersView{
		Form:            newFormView(req.mode, req.form),
		PageSlug:        journey.CheckYourAnswersSlug,
		Rows:            newAnswerRows(req.mode, req.form, req.journey.CompletedSteps()),
		DeclarationText: req.form.DeclarationText,
		SubmitURL:       submitPath(req.mode, req.form),
	}
	if prev, ok := req.journey.PreviousStep(journey.CheckYourAnswersSlug); ok {
		v.BackLink = pagePath(req.mode, req.form, prev)
	}
	return v
}

func changingExistingAnswer(r *http.Request) bool {
	v, err := strconv.ParseBool(r.URL.Query().Get("changing_existing_answer"))
	return err == nil && v
}

// answerBody is the JSON form of a page submission
type answerBody struct {
	Question map[string]any `json:"question"`
	Changing bool           `json:"changing_existing_answer"`
}

// bindAnswer reads the permitted question fields from a form encoded or JSON
// body. Fields submitted more than once, like multiple selections, are joined
// with newlines.
func bindAnswer(r *http.Request, permitted []string) (question.Answer, bool, error) {
	answer := make(question.Answer, len(permitted))

	mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if mediaType == "application/json" {
		var body answerBody
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			return nil, false, err
		}
		for _, field := range permitted {
			switch v := body.Question[field].(type) {
			case string:
				answer[field] = v
			case []any:
				parts := make([]string, 0, len(v))
				for _, item := range v {
					if s, ok := item.(string); ok {
						parts = append(parts, s)
					}
				}
				answer[field] = strings.Join(parts, "\n")
			case float64:
				answer[field] = strconv.FormatFloat(v, 'f', -1, 64)
			}
		}
		return answer, body.Changing, nil
	}

	if err := r.ParseForm(); err != nil {
		return nil, false, err
	}
	for _, field := range permitted {
		var values []string
		values = append(values, r.PostForm["question["+field+"]"]...)
		values = append(values, r.PostForm["question["+field+"][]"]...)
		answer[field] = strings.Join(values, "\n")
	}
	changing, _ := strconv.ParseBool(r.PostForm.Get("changing_existing_answer"))
	return answer, changing, nil
}
