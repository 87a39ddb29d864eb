package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/roach88/tokentest/harness"
	"github.com/roach88/tokentest/token"
)

// ShowResult is the JSON payload of the show command.
type ShowResult struct {
	Name        string   `json:"name"`
	Description string   `json:"description"`
	Readable    bool     `json:"readable,omitempty"`
	Tokens      []string `json:"tokens"`
	ExpectError string   `json:"expect_error,omitempty"`
	Tree        any      `json:"tree,omitempty"`
	Errors      []string `json:"errors,omitempty"`
}

// NewShowCommand creates the show command.
func NewShowCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "show <fixture>",
		Short: "Print a fixture's tokens and decoded tree",
		Long: `Print the indented token listing of a fixture and the canonical JSON
of the tree decoded from it.`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runShow(rootOpts, args[0], cmd)
		},
	}
	return cmd
}

func runShow(opts *RootOptions, path string, cmd *cobra.Command) error {
	formatter := newFormatter(opts, cmd)

	f, err := LoadFixture(path)
	if err != nil {
		var loadErr *LoadError
		if errors.As(err, &loadErr) {
			_ = formatter.Error(loadErr.Code, loadErr.Message, nil)
		}
		return WrapExitError(ExitCommandError, "failed to load fixture", err)
	}
	s := f.Scenario

	result, err := harness.Run(s, harness.WithLogger(formatter.Logger()))
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to run fixture", err)
	}
	tree, err := result.Canonical()
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to marshal decoded tree", err)
	}

	if formatter.JSON() {
		out := ShowResult{
			Name:        s.Name,
			Description: s.Description,
			Readable:    s.Readable,
			Tokens:      make([]string, len(s.Tokens)),
			ExpectError: s.ExpectError,
		}
		for i, t := range s.Tokens {
			out.Tokens[i] = t.String()
		}
		if tree != nil {
			out.Tree = rawJSON(tree)
		}
		if !result.Pass {
			out.Errors = result.Errors
		}
		return formatter.Success(out)
	}

	w := formatter.Writer
	fmt.Fprintf(w, "%s: %s\n", s.Name, s.Description)
	if s.Readable {
		fmt.Fprintln(w, "mode: human-readable")
	}
	fmt.Fprintln(w)
	fmt.Fprint(w, token.Format(s.Tokens))

	switch {
	case tree != nil:
		fmt.Fprintln(w)
		fmt.Fprintln(w, string(tree))
	case s.ExpectError != "":
		fmt.Fprintln(w)
		fmt.Fprintf(w, "expect error: %s\n", s.ExpectError)
	}

	if !result.Pass {
		fmt.Fprintln(w)
		fmt.Fprintln(w, "✗ fixture fails:")
		for _, e := range result.Errors {
			writeIndented(w, e)
		}
	}
	return nil
}

// rawJSON embeds already-encoded JSON in a response.
type rawJSON []byte

func (r rawJSON) MarshalJSON() ([]byte, error) { return r, nil }
