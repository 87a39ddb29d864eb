package cli

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/roach88/tokentest/harness"
	"github.com/roach88/tokentest/internal/store"
)

// Golden comparison outcomes.
const (
	GoldenMatch    = "match"
	GoldenMismatch = "mismatch"
	GoldenUpdated  = "updated"
)

// TestOptions holds flags for the test command.
type TestOptions struct {
	*RootOptions
	Update bool   // regenerate golden files
	Filter string // fixture filter (glob pattern)
	DB     string // run history database

	ids store.IDGenerator
}

// FixtureResult holds the result of a single fixture execution.
type FixtureResult struct {
	Name   string   `json:"name"`
	Pass   bool     `json:"pass"`
	Golden string   `json:"golden,omitempty"`
	Errors []string `json:"errors,omitempty"`
	Seq    int64    `json:"seq,omitempty"`
}

// TestResult holds the overall test result.
type TestResult struct {
	Fixtures []FixtureResult `json:"fixtures"`
	Passed   int             `json:"passed"`
	Failed   int             `json:"failed"`
	Total    int             `json:"total"`
}

// NewTestCommand creates the test command.
func NewTestCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &TestOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "test <fixtures-dir>",
		Short: "Run token fixtures",
		Long: `Run every fixture in a directory.

Each fixture is decoded without a target type; decoding must consume every
token and the decoded tree must serialize back to the same tokens. A
fixture with expect_error must instead fail with exactly that message.
When golden/<name>.golden exists next to a fixture, the decoded tree's
canonical JSON must match it.

Fixture files: .yaml, .yml, .json, .jsonc, .cue

Exit codes:
  0 - All fixtures passed
  1 - One or more fixtures failed
  2 - Command error (invalid paths, etc.)

Examples:
  tokentest test ./fixtures
  tokentest test ./fixtures --filter "enum-*"
  tokentest test ./fixtures --update
  tokentest test ./fixtures --db runs.db --format json`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runTests(cmd.Context(), opts, args[0], cmd)
		},
	}

	cmd.Flags().BoolVar(&opts.Update, "update", false, "regenerate golden files")
	cmd.Flags().StringVar(&opts.Filter, "filter", "", "filter fixtures by glob pattern")
	cmd.Flags().StringVar(&opts.DB, "db", "", "record runs in this SQLite database")

	return cmd
}

func runTests(ctx context.Context, opts *TestOptions, dir string, cmd *cobra.Command) error {
	if ctx == nil {
		ctx = context.Background()
	}
	formatter := newFormatter(opts.RootOptions, cmd)

	fixtures, loadErrs := LoadFixtures(dir, opts.Filter, LoadModeCollectAll)
	if fixtures == nil {
		var loadErr *LoadError
		if errors.As(loadErrs[0], &loadErr) {
			_ = formatter.Error(loadErr.Code, loadErr.Message, nil)
			return NewExitError(ExitCommandError, loadErr.Message)
		}
		_ = formatter.Error(ErrCodeGeneric, loadErrs[0].Error(), nil)
		return WrapExitError(ExitCommandError, "failed to load fixtures", loadErrs[0])
	}

	result := TestResult{Fixtures: []FixtureResult{}}
	if len(fixtures) == 0 && len(loadErrs) == 0 {
		if formatter.JSON() {
			return formatter.Success(result)
		}
		fmt.Fprintln(formatter.Writer, "No fixtures found.")
		return nil
	}

	var history *store.Store
	if opts.DB != "" {
		s, err := store.Open(opts.DB)
		if err != nil {
			_ = formatter.Error(ErrCodeStore, err.Error(), nil)
			return WrapExitError(ExitCommandError, "failed to open run history", err)
		}
		defer s.Close()
		history = s
	}
	ids := opts.ids
	if ids == nil {
		ids = store.UUIDv7Generator{}
	}

	for _, err := range loadErrs {
		fr := FixtureResult{Name: loadErrorName(err), Errors: []string{err.Error()}}
		reportFixture(formatter, fr)
		result.add(fr)
	}

	for _, f := range fixtures {
		formatter.VerboseLog("Running %s (%d tokens)", f.Path, len(f.Scenario.Tokens))
		fr := runFixture(f, opts, formatter)

		if history != nil {
			run, err := history.RecordRun(ctx, store.Run{
				ID:      ids.Generate(),
				Fixture: f.Name,
				Digest:  store.Digest(f.Data),
				Pass:    fr.Pass,
				Error:   firstError(fr.Errors),
			})
			if err != nil {
				_ = formatter.Error(ErrCodeStore, err.Error(), nil)
				return WrapExitError(ExitCommandError, "failed to record run", err)
			}
			fr.Seq = run.Seq
		}

		reportFixture(formatter, fr)
		result.add(fr)
	}

	if formatter.JSON() {
		if result.Failed > 0 {
			if err := formatter.Failure(result, "E_TEST_FAILED", fmt.Sprintf("%d fixture(s) failed", result.Failed)); err != nil {
				return err
			}
			return NewExitError(ExitFailure, fmt.Sprintf("%d fixture(s) failed", result.Failed))
		}
		return formatter.Success(result)
	}

	w := formatter.Writer
	fmt.Fprintln(w)
	fmt.Fprintf(w, "Test Summary: %d passed, %d failed, %d total\n", result.Passed, result.Failed, result.Total)
	if result.Failed > 0 {
		return NewExitError(ExitFailure, fmt.Sprintf("%d fixture(s) failed", result.Failed))
	}
	fmt.Fprintln(w, "✓ All fixtures passed")
	return nil
}

func (r *TestResult) add(fr FixtureResult) {
	r.Fixtures = append(r.Fixtures, fr)
	r.Total++
	if fr.Pass {
		r.Passed++
	} else {
		r.Failed++
	}
}

// runFixture runs one fixture and checks its golden file.
func runFixture(f *Fixture, opts *TestOptions, formatter *OutputFormatter) FixtureResult {
	fr := FixtureResult{Name: f.Name}

	result, err := harness.Run(f.Scenario, harness.WithLogger(formatter.Logger()))
	if err != nil {
		fr.Errors = []string{fmt.Sprintf("execution failed: %v", err)}
		return fr
	}
	if !result.Pass {
		fr.Errors = result.Errors
		return fr
	}

	data, err := result.Canonical()
	if err != nil {
		fr.Errors = []string{fmt.Sprintf("failed to marshal decoded tree: %v", err)}
		return fr
	}
	if data == nil {
		// expect_error fixtures have no tree to snapshot.
		fr.Pass = true
		return fr
	}

	goldenPath := goldenFilePath(f.Path)
	if opts.Update {
		if err := writeGoldenFile(goldenPath, data); err != nil {
			fr.Errors = []string{err.Error()}
			return fr
		}
		fr.Golden = GoldenUpdated
		fr.Pass = true
		return fr
	}

	want, err := os.ReadFile(goldenPath)
	if os.IsNotExist(err) {
		fr.Pass = true
		return fr
	}
	if err != nil {
		fr.Errors = []string{fmt.Sprintf("failed to read golden file: %v", err)}
		return fr
	}
	if !bytes.Equal(want, data) {
		fr.Golden = GoldenMismatch
		fr.Errors = []string{"decoded tree does not match golden file (run with --update to regenerate)"}
		return fr
	}
	fr.Golden = GoldenMatch
	fr.Pass = true
	return fr
}

func writeGoldenFile(path string, data []byte) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create golden directory: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write golden file: %w", err)
	}
	return nil
}

func reportFixture(formatter *OutputFormatter, fr FixtureResult) {
	if formatter.JSON() {
		return
	}
	w := formatter.Writer
	switch {
	case fr.Pass && fr.Golden == GoldenUpdated:
		fmt.Fprintf(w, "✓ %s (golden updated)\n", fr.Name)
	case fr.Pass:
		fmt.Fprintf(w, "✓ %s\n", fr.Name)
	default:
		fmt.Fprintf(w, "✗ %s\n", fr.Name)
		for _, e := range fr.Errors {
			writeIndented(w, e)
		}
	}
}

func writeIndented(w io.Writer, text string) {
	for _, line := range strings.Split(strings.TrimRight(text, "\n"), "\n") {
		fmt.Fprintf(w, "  %s\n", line)
	}
}

func loadErrorName(err error) string {
	var loadErr *LoadError
	if errors.As(err, &loadErr) && loadErr.Path != "" {
		return fixtureName(loadErr.Path)
	}
	return "(load)"
}

func firstError(errs []string) string {
	if len(errs) == 0 {
		return ""
	}
	return errs[0]
}
