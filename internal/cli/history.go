package cli

import (
	"context"
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/roach88/tokentest/internal/store"
)

// HistoryOptions holds flags for the history command.
type HistoryOptions struct {
	*RootOptions
	DB      string
	Fixture string
}

// NewHistoryCommand creates the history command.
func NewHistoryCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &HistoryOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "history --db <path>",
		Short: "List recorded fixture runs",
		Long: `List fixture runs recorded by "tokentest test --db", oldest first.

Examples:
  tokentest history --db runs.db
  tokentest history --db runs.db --fixture point`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runHistory(cmd.Context(), opts, cmd)
		},
	}

	cmd.Flags().StringVar(&opts.DB, "db", "", "run history database (required)")
	cmd.Flags().StringVar(&opts.Fixture, "fixture", "", "only list runs of this fixture")
	_ = cmd.MarkFlagRequired("db")

	return cmd
}

func runHistory(ctx context.Context, opts *HistoryOptions, cmd *cobra.Command) error {
	if ctx == nil {
		ctx = context.Background()
	}
	formatter := newFormatter(opts.RootOptions, cmd)

	if _, err := os.Stat(opts.DB); os.IsNotExist(err) {
		msg := fmt.Sprintf("database not found: %s", opts.DB)
		_ = formatter.Error(ErrCodeNotFound, msg, nil)
		return NewExitError(ExitCommandError, msg)
	}

	s, err := store.Open(opts.DB)
	if err != nil {
		_ = formatter.Error(ErrCodeStore, err.Error(), nil)
		return WrapExitError(ExitCommandError, "failed to open run history", err)
	}
	defer s.Close()

	runs, err := s.ListRuns(ctx, opts.Fixture)
	if err != nil {
		_ = formatter.Error(ErrCodeStore, err.Error(), nil)
		return WrapExitError(ExitCommandError, "failed to list runs", err)
	}

	if formatter.JSON() {
		return formatter.Success(runs)
	}

	if len(runs) == 0 {
		fmt.Fprintln(formatter.Writer, "No runs recorded.")
		return nil
	}

	tw := tabwriter.NewWriter(formatter.Writer, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "SEQ\tFIXTURE\tRESULT\tDIGEST\tID")
	for _, r := range runs {
		status := "pass"
		if !r.Pass {
			status = "FAIL"
		}
		fmt.Fprintf(tw, "%d\t%s\t%s\t%s\t%s\n", r.Seq, r.Fixture, status, shortDigest(r.Digest), r.ID)
	}
	if err := tw.Flush(); err != nil {
		return err
	}

	for _, r := range runs {
		if !r.Pass && r.Error != "" {
			formatter.VerboseLog("run %d (%s):\n%s", r.Seq, r.Fixture, r.Error)
		}
	}
	return nil
}

func shortDigest(d string) string {
	if len(d) > 12 {
		return d[:12]
	}
	return d
}
