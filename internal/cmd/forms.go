package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strconv"
	"time"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	apperrors "github.com/felixgeelhaar/formrunner/internal/errors"
	"github.com/felixgeelhaar/formrunner/internal/form"
	"github.com/felixgeelhaar/formrunner/internal/formsapi"
	"github.com/felixgeelhaar/formrunner/internal/question"
)

var (
	passColor = color.New(color.FgGreen, color.Bold)
	failColor = color.New(color.FgRed, color.Bold)
	warnColor = color.New(color.FgYellow, color.Bold)
)

var formsCmd = &cobra.Command{
	Use:   "forms",
	Short: "Work with form definition files",
}

var formsValidateCmd = &cobra.Command{
	Use:   "validate <file>...",
	Short: "Check form definitions can be served",
	Long: `Check each form definition parses, has unique page ids, has start and next
page references that resolve, and uses only supported answer types.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runFormsValidate,
}

var formsFingerprintCmd = &cobra.Command{
	Use:   "fingerprint <file>",
	Short: "Print the content fingerprint of a form definition",
	Long: `Print a BLAKE3 hash of the canonical form definition. Two files that
describe the same form print the same fingerprint regardless of formatting.`,
	Args: cobra.ExactArgs(1),
	RunE: runFormsFingerprint,
}

var formsPullCmd = &cobra.Command{
	Use:   "pull <form-id>",
	Short: "Download a form from the forms API into a forms directory",
	Long: `Fetch a published form from the forms API and write it as <id>.yaml, ready
to be served with --forms-dir.

Example:
  formrunner forms pull 42 --api https://forms-api.example.gov.uk --dir ./forms
  formrunner forms pull 42 --api https://forms-api.example.gov.uk --draft`,
	Args: cobra.ExactArgs(1),
	RunE: runFormsPull,
}

var (
	pullAPI   string
	pullToken string
	pullDir   string
	pullDraft bool
)

func init() {
	formsPullCmd.Flags().StringVar(&pullAPI, "api", "", "Forms API base URL")
	formsPullCmd.Flags().StringVar(&pullToken, "token", "", "Forms API token")
	formsPullCmd.Flags().StringVar(&pullDir, "dir", "forms", "Directory to write the form to")
	formsPullCmd.Flags().BoolVar(&pullDraft, "draft", false, "Fetch the draft version instead of the live one")
	_ = formsPullCmd.MarkFlagRequired("api")

	formsCmd.AddCommand(formsValidateCmd)
	formsCmd.AddCommand(formsFingerprintCmd)
	formsCmd.AddCommand(formsPullCmd)
	rootCmd.AddCommand(formsCmd)
}

func runFormsValidate(cmd *cobra.Command, args []string) error {
	out := cmd.OutOrStdout()
	var failed []string

	for _, path := range args {
		warnings, err := validateFormFile(path)
		if err != nil {
			failed = append(failed, path)
			failColor.Fprint(out, "✗ ")
			fmt.Fprintf(out, "%s\n", path)
			for _, e := range splitErrors(err) {
				fmt.Fprintf(out, "    %v\n", e)
			}
			continue
		}
		passColor.Fprint(out, "✓ ")
		fmt.Fprintf(out, "%s\n", path)
		for _, w := range warnings {
			warnColor.Fprint(out, "    ! ")
			fmt.Fprintln(out, w)
		}
	}

	if len(failed) > 0 {
		return apperrors.NewFormInvalidError(failed[0], fmt.Errorf("%d of %d forms failed validation", len(failed), len(args)))
	}
	return nil
}

// validateFormFile returns the structural and answer type errors of one file, and
// warnings for forms that parse but cannot be started
func validateFormFile(path string) (warnings []string, err error) {
	f, err := form.LoadFile(path)
	if err != nil {
		return nil, err
	}

	errs := []error{f.Validate()}
	for _, p := range f.Pages {
		if p == nil {
			continue
		}
		if _, err := question.FromPage(p); err != nil {
			errs = append(errs, fmt.Errorf("page %d: %w", p.ID, err))
		}
	}
	if err := errors.Join(errs...); err != nil {
		return nil, err
	}

	if !f.HasStartPage() {
		warnings = append(warnings, "no start page: visitors will get a not found page")
	}
	if len(f.Pages) == 0 {
		warnings = append(warnings, "form has no pages")
	}
	return warnings, nil
}

// splitErrors unpacks an errors.Join result into its parts
func splitErrors(err error) []error {
	if joined, ok := err.(interface{ Unwrap() []error }); ok {
		var out []error
		for _, e := range joined.Unwrap() {
			out = append(out, splitErrors(e)...)
		}
		return out
	}
	return []error{err}
}

func runFormsFingerprint(cmd *cobra.Command, args []string) error {
	return printFingerprint(cmd.OutOrStdout(), args[0])
}

func printFingerprint(out io.Writer, path string) error {
	f, err := form.LoadFile(path)
	if err != nil {
		return FormLoadError(path, err)
	}
	sum, err := form.Fingerprint(f)
	if err != nil {
		return err
	}
	fmt.Fprintf(out, "%s  %s\n", sum, path)
	return nil
}

func runFormsPull(cmd *cobra.Command, args []string) error {
	id, err := strconv.ParseInt(args[0], 10, 64)
	if err != nil {
		return fmt.Errorf("invalid form id %q", args[0])
	}
	mode := form.ModeForm
	if pullDraft {
		mode = form.ModePreviewDraft
	}

	client := formsapi.NewClient(formsapi.Options{
		BaseURL:  pullAPI,
		Token:    pullToken,
		Timeout:  10 * time.Second,
		RetryMax: 3,
	})
	path, err := pullForm(cmd.Context(), client, id, mode, pullDir)
	if err != nil {
		return err
	}

	passColor.Fprint(cmd.OutOrStdout(), "✓ ")
	fmt.Fprintf(cmd.OutOrStdout(), "%s\n", path)
	return nil
}

// pullForm writes the form fetched from repo to dir/<id>.yaml
func pullForm(ctx context.Context, repo form.Repository, id int64, mode form.Mode, dir string) (string, error) {
	f, err := repo.Get(ctx, id, mode)
	if err != nil {
		if errors.Is(err, form.ErrFormNotFound) {
			return "", apperrors.NewFormNotFoundError(id)
		}
		return "", err
	}

	path := filepath.Join(dir, strconv.FormatInt(id, 10)+".yaml")
	if err := form.SaveFile(f, path); err != nil {
		return "", err
	}
	return path, nil
}
