package tui

import (
	"strings"
)

// View renders the UI
func (w *Walker) View() string {
	if w.quitting {
		return "Walk cancelled. Answers saved so far are kept.\n"
	}
	if w.err != nil {
		return w.renderError()
	}
	if w.submitted {
		return w.renderSubmitted()
	}

	var b strings.Builder
	b.WriteString(w.styles.Title.Render(w.journey.Form().Name))
	b.WriteString("\n")
	if len(w.errors) > 0 {
		b.WriteString(w.renderErrorSummary())
		b.WriteString("\n")
	}
	if w.step.IsCheckYourAnswers() {
		b.WriteString(w.renderAnswers())
		b.WriteString("\n")
	}
	if w.form != nil {
		b.WriteString(w.form.View())
	}
	return b.String()
}

func (w *Walker) renderErrorSummary() string {
	var b strings.Builder
	b.WriteString(w.styles.Error.Render(w.localizer.GetMessage("walker.error_summary", nil)))
	for _, msg := range w.errors {
		b.WriteString("\n• " + msg)
	}
	return w.styles.Border.BorderForeground(w.styles.Error.GetForeground()).Render(b.String())
}

// renderAnswers renders the check your answers summary
func (w *Walker) renderAnswers() string {
	rows := make([]string, 0, len(w.journey.CompletedSteps()))
	for _, s := range w.journey.CompletedSteps() {
		answer := s.ShowAnswer()
		if answer == "" {
			answer = w.styles.Muted.Render(w.localizer.GetMessage("walker.not_provided", nil))
		} else {
			answer = w.styles.Value.Render(answer)
		}
		rows = append(rows, w.styles.Label.Render(s.ShortName())+" "+answer)
	}
	return w.styles.Border.Render(strings.Join(rows, "\n"))
}

func (w *Walker) renderSubmitted() string {
	var b strings.Builder
	b.WriteString("\n")
	b.WriteString(w.styles.Success.Render("✓ " + w.localizer.GetMessage("walker.submitted", nil)))
	b.WriteString("\n\n")
	if next := w.journey.Form().WhatHappensNextText; next != "" {
		b.WriteString(w.styles.Subtitle.Render(next))
		b.WriteString("\n\n")
	}
	b.WriteString("Press any key to exit.\n")
	return b.String()
}

func (w *Walker) renderError() string {
	var b strings.Builder
	b.WriteString("\n")
	b.WriteString(w.styles.Error.Render("Error: ") + w.err.Error())
	b.WriteString("\n\n")
	b.WriteString("Press any key to exit.\n")
	return b.String()
}
