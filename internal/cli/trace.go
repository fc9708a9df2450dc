package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/weftworks/weft/internal/store"
)

// TraceOptions holds flags for the trace command.
type TraceOptions struct {
	*RootOptions
	Database string
	Run      string
}

// TraceResult holds the timeline for one simulation run.
type TraceResult struct {
	RunID      string           `json:"run_id"`
	Deliveries []store.Delivery `json:"deliveries"`
}

// RunsResult lists the recorded runs in a database.
type RunsResult struct {
	Runs []string `json:"runs"`
}

// NewTraceCommand creates the trace command.
func NewTraceCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &TraceOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "trace",
		Short: "Inspect recorded simulation runs",
		Long: `Inspect the delivery trace of a recorded simulation run: which
envelope reached which site at which schedule step, and the recipient's
value afterwards.

Without --run, lists the recorded runs, most recent first.

Examples:
  weft sim --sites 3 --edits 10 --db trace.db
  weft trace --db trace.db
  weft trace --db trace.db --run <run-id>
  weft trace --db trace.db --run <run-id> --format json`,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runTraceCmd(opts, cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Database, "db", "", "path to SQLite trace database (required)")
	_ = cmd.MarkFlagRequired("db")
	cmd.Flags().StringVar(&opts.Run, "run", "", "run id to show")

	return cmd
}

func runTraceCmd(opts *TraceOptions, cmd *cobra.Command) error {
	st, err := store.Open(opts.Database)
	if err != nil {
		return WrapExitError(ExitCommandError, "open trace database", err)
	}
	defer st.Close()

	if opts.Run == "" {
		return listRuns(opts, st, cmd)
	}
	return showRun(opts, st, cmd)
}

func listRuns(opts *TraceOptions, st *store.Store, cmd *cobra.Command) error {
	runs, err := st.Runs()
	if err != nil {
		return WrapExitError(ExitCommandError, "list runs", err)
	}

	if opts.Format == "json" {
		return writeJSON(cmd.OutOrStdout(), CLIResponse{Status: "ok", Data: RunsResult{Runs: runs}})
	}

	w := cmd.OutOrStdout()
	if len(runs) == 0 {
		fmt.Fprintln(w, "No runs recorded.")
		return nil
	}
	for _, id := range runs {
		fmt.Fprintln(w, id)
	}
	return nil
}

func showRun(opts *TraceOptions, st *store.Store, cmd *cobra.Command) error {
	deliveries, err := st.ReadDeliveries(opts.Run)
	if err != nil {
		return WrapExitError(ExitCommandError, "read deliveries", err)
	}
	if len(deliveries) == 0 {
		return NewExitError(ExitCommandError, fmt.Sprintf("run not found: %s", opts.Run))
	}

	if opts.Format == "json" {
		return writeJSON(cmd.OutOrStdout(), CLIResponse{
			Status: "ok",
			Data:   TraceResult{RunID: opts.Run, Deliveries: deliveries},
		})
	}

	w := cmd.OutOrStdout()
	fmt.Fprintf(w, "run %s: %d deliveries\n", opts.Run, len(deliveries))
	for _, d := range deliveries {
		fmt.Fprintf(w, "  [%d] site %d <- site %d %s -> %q\n", d.Step, d.To, d.From, d.Token, d.Value)
	}
	return nil
}
