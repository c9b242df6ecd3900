package tui

import (
	"testing"
)

func TestShouldPromptInCI(t *testing.T) {
	for _, env := range []string{"CI", "GITHUB_ACTIONS", "GITLAB_CI", "JENKINS_URL", "BUILDKITE"} {
		t.Run(env, func(t *testing.T) {
			t.Setenv(env, "true")
			if ShouldPrompt() {
				t.Errorf("ShouldPrompt() = true with %s set", env)
			}
		})
	}
}

func TestPromptForSelect(t *testing.T) {
	if _, err := PromptForSelect("Choose a form", nil); err == nil {
		t.Error("expected error when no options provided, got nil")
	}

	got, err := PromptForSelect("Choose a form", []string{"1.yaml"})
	if err != nil {
		t.Fatalf("PromptForSelect() error = %v", err)
	}
	if got != "1.yaml" {
		t.Errorf("a single option is chosen without prompting, got %q", got)
	}
}
