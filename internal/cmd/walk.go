package cmd

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/spf13/cobra"

	"github.com/felixgeelhaar/formrunner/internal/form"
	"github.com/felixgeelhaar/formrunner/internal/i18n"
	"github.com/felixgeelhaar/formrunner/internal/session"
	"github.com/felixgeelhaar/formrunner/internal/tui"
)

var walkCmd = &cobra.Command{
	Use:   "walk",
	Short: "Fill in a form in the terminal",
	Long: `Walk through a form definition one question at a time, with the same
routing and validation as the web runner, finishing with a check your answers
summary.

Answers are kept in memory unless --session names a bolt file, in which case an
interrupted walk resumes where it stopped.

Example:
  formrunner walk --form forms/1.yaml
  formrunner walk --form forms --session walk.db --lang cy`,
	RunE: runWalk,
}

var (
	walkFormPath    string
	walkSessionPath string
	walkLang        string
)

// walkSessionID keys the single session a bolt file holds for the walker
const walkSessionID = "walk"

func init() {
	walkCmd.Flags().StringVarP(&walkFormPath, "form", "f", "", "Form definition file, or a directory to choose from")
	walkCmd.Flags().StringVar(&walkSessionPath, "session", "", "Bolt file that keeps answers between walks")
	walkCmd.Flags().StringVar(&walkLang, "lang", "en", "Language for validation messages: en or cy")
	_ = walkCmd.MarkFlagRequired("form")

	rootCmd.AddCommand(walkCmd)
}

func runWalk(cmd *cobra.Command, args []string) error {
	if !tui.ShouldPrompt() {
		return fmt.Errorf("walk needs an interactive terminal")
	}
	ctx := cmd.Context()

	path, err := resolveFormPath(walkFormPath)
	if err != nil {
		return err
	}
	f, err := form.LoadFile(path)
	if err != nil {
		return FormLoadError(path, err)
	}

	var store session.Store = session.NewMemoryStore()
	sessionID := session.NewID()
	if walkSessionPath != "" {
		bolt, err := session.OpenBoltStore(walkSessionPath)
		if err != nil {
			return SessionStoreError(session.BackendBolt, err)
		}
		store, sessionID = bolt, walkSessionID
	}
	defer store.Close()

	translations, err := i18n.NewTranslations()
	if err != nil {
		return err
	}

	w, err := tui.Run(ctx, tui.Options{
		Form:      f,
		Store:     store,
		SessionID: sessionID,
		Localizer: translations.Localizer(walkLang),
	})
	if err != nil {
		return err
	}
	if !w.Submitted() && walkSessionPath != "" {
		fmt.Fprintf(cmd.OutOrStdout(), "Answers saved to %s\n", walkSessionPath)
	}
	return nil
}

// resolveFormPath returns path itself for a file, or prompts for one of the YAML
// definitions in a directory
func resolveFormPath(path string) (string, error) {
	st, err := os.Stat(path)
	if err != nil {
		return "", err
	}
	if !st.IsDir() {
		return path, nil
	}

	matches, err := filepath.Glob(filepath.Join(path, "*.yaml"))
	if err != nil {
		return "", err
	}
	if len(matches) == 0 {
		return "", fmt.Errorf("no form definitions in %s", path)
	}
	sort.Strings(matches)

	names := make([]string, len(matches))
	for i, m := range matches {
		names[i] = filepath.Base(m)
	}
	chosen, err := tui.PromptForSelect("Choose a form", names)
	if err != nil {
		return "", err
	}
	return filepath.Join(path, chosen), nil
}
