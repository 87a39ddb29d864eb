package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"
)

// ValidationError describes one fixture that failed to load.
type ValidationError struct {
	Path    string `json:"path"`
	Code    string `json:"code"`
	Message string `json:"message"`
	Line    int    `json:"line,omitempty"`
}

// ValidationResult holds validation results.
type ValidationResult struct {
	Valid    bool              `json:"valid"`
	Fixtures int               `json:"fixtures"`
	Errors   []ValidationError `json:"errors,omitempty"`
}

// NewValidateCommand creates the validate command.
func NewValidateCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "validate <fixtures-dir>",
		Short: "Validate fixtures without running them",
		Long: `Parse every fixture in a directory without running it.

Checks the document shape, required fields, and that every token entry
names a known token kind with a well-formed payload.`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true, // Don't print usage on errors
		SilenceErrors: true, // Don't print errors - we handle our own error output
		RunE: func(cmd *cobra.Command, args []string) error {
			return runValidate(rootOpts, args[0], cmd)
		},
	}

	return cmd
}

func runValidate(opts *RootOptions, dir string, cmd *cobra.Command) error {
	formatter := newFormatter(opts, cmd)

	fixtures, loadErrs := LoadFixtures(dir, "", LoadModeCollectAll)
	if fixtures == nil {
		var loadErr *LoadError
		if errors.As(loadErrs[0], &loadErr) {
			return outputValidateError(formatter, loadErr.Code, loadErr.Message)
		}
		return outputValidateError(formatter, ErrCodeGeneric, loadErrs[0].Error())
	}

	if len(fixtures) == 0 && len(loadErrs) == 0 {
		return outputValidateError(formatter, ErrCodeNoFiles, fmt.Sprintf("no fixture files found in %s", dir))
	}

	for _, f := range fixtures {
		formatter.VerboseLog("Valid: %s (%s, %d tokens)", f.Path, f.Scenario.Name, len(f.Scenario.Tokens))
	}

	if len(loadErrs) > 0 {
		return outputValidationErrors(formatter, len(fixtures)+len(loadErrs), toValidationErrors(loadErrs))
	}

	if formatter.JSON() {
		return formatter.Success(ValidationResult{Valid: true, Fixtures: len(fixtures)})
	}
	fmt.Fprintf(formatter.Writer, "✓ All %d fixture(s) valid\n", len(fixtures))
	return nil
}

func toValidationErrors(errs []error) []ValidationError {
	out := make([]ValidationError, 0, len(errs))
	for _, err := range errs {
		var loadErr *LoadError
		if !errors.As(err, &loadErr) {
			out = append(out, ValidationError{Code: ErrCodeGeneric, Message: err.Error()})
			continue
		}
		ve := ValidationError{Path: loadErr.Path, Code: loadErr.Code, Message: loadErr.Message}
		if loadErr.Pos.IsValid() {
			ve.Line = loadErr.Pos.Line()
		}
		out = append(out, ve)
	}
	return out
}

// outputValidateError outputs a command-level error.
func outputValidateError(formatter *OutputFormatter, code, message string) error {
	_ = formatter.Error(code, message, nil)
	return NewExitError(ExitCommandError, fmt.Sprintf("%s: %s", code, message))
}

// outputValidationErrors outputs per-fixture failures.
func outputValidationErrors(formatter *OutputFormatter, total int, errs []ValidationError) error {
	exitErr := NewExitError(ExitFailure, fmt.Sprintf("validation failed with %d error(s)", len(errs)))

	if formatter.JSON() {
		result := ValidationResult{Valid: false, Fixtures: total, Errors: errs}
		if err := formatter.Failure(result, errs[0].Code, errs[0].Message); err != nil {
			return err
		}
		return exitErr
	}

	fmt.Fprintln(formatter.Writer, "✗ Validation failed")
	fmt.Fprintln(formatter.Writer)
	for _, e := range errs {
		if e.Line > 0 {
			fmt.Fprintf(formatter.Writer, "%s line %d\n", e.Path, e.Line)
		} else {
			fmt.Fprintln(formatter.Writer, e.Path)
		}
		fmt.Fprintf(formatter.Writer, "  %s: %s\n\n", e.Code, e.Message)
	}
	return exitErr
}
