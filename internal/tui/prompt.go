package tui

import (
	"fmt"
	"os"

	"github.com/charmbracelet/huh"
)

// PromptForSelect displays a selection prompt and returns the chosen option
func PromptForSelect(message string, options []string) (string, error) {
	if len(options) == 0 {
		return "", fmt.Errorf("no options provided")
	}
	if len(options) == 1 {
		return options[0], nil
	}

	var selected string
	field := huh.NewSelect[string]().
		Title(message).
		Options(huh.NewOptions(options...)...).
		Value(&selected)

	if err := huh.NewForm(huh.NewGroup(field)).Run(); err != nil {
		return "", fmt.Errorf("prompt failed: %w", err)
	}
	return selected, nil
}

// IsInteractive returns true if stdin is a terminal (not piped)
func IsInteractive() bool {
	fileInfo, err := os.Stdin.Stat()
	if err != nil {
		return false
	}
	return (fileInfo.Mode() & os.ModeCharDevice) != 0
}

// ShouldPrompt returns true if prompts should be shown based on environment.
// Prompts are disabled in CI environments or when stdin is not a terminal.
func ShouldPrompt() bool {
	ciEnvVars := []string{
		"CI",
		"GITHUB_ACTIONS",
		"GITLAB_CI",
		"JENKINS_URL",
		"TRAVIS",
		"CIRCLECI",
		"BUILDKITE",
	}

	for _, envVar := range ciEnvVars {
		if os.Getenv(envVar) != "" {
			return false
		}
	}

	return IsInteractive()
}
