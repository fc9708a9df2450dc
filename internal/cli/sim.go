package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/weftworks/weft/internal/sim"
	"github.com/weftworks/weft/internal/store"
)

// SimOptions holds flags for the sim command.
type SimOptions struct {
	*RootOptions
	Sites      int
	Edits      int
	Seed       int64
	DupPercent int
	SeedText   string
	Database   string
}

// NewSimCommand creates the sim command.
func NewSimCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &SimOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "sim",
		Short: "Run a randomized convergence simulation",
		Long: `Run a multi-site simulation: every site edits independently, then all
envelopes are exchanged in a seeded random order, optionally duplicated.
The run fails (exit code 1) if the sites do not converge.

With --db, every delivery is recorded as a trace row for later
inspection with "weft trace".

Exit codes:
  0 - Sites converged
  1 - Sites diverged
  2 - Command error

Examples:
  weft sim --sites 3 --edits 10 --seed 42
  weft sim --sites 5 --edits 20 --dup 30 --db trace.db
  weft sim --sites 3 --edits 10 --format json`,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSim(opts, cmd)
		},
	}

	cmd.Flags().IntVar(&opts.Sites, "sites", 3, "number of editing sites")
	cmd.Flags().IntVar(&opts.Edits, "edits", 10, "random edits per site")
	cmd.Flags().Int64Var(&opts.Seed, "seed", 0, "random seed")
	cmd.Flags().IntVar(&opts.DupPercent, "dup", 0, "chance (0-100) of duplicating each delivery")
	cmd.Flags().StringVar(&opts.SeedText, "seed-text", "the quick brown fox", "starting content shared by all sites")
	cmd.Flags().StringVar(&opts.Database, "db", "", "record deliveries to this SQLite database")

	return cmd
}

func runSim(opts *SimOptions, cmd *cobra.Command) error {
	var st *store.Store
	if opts.Database != "" {
		var err error
		st, err = store.Open(opts.Database)
		if err != nil {
			return WrapExitError(ExitCommandError, "open trace database", err)
		}
		defer st.Close()
	}

	res, err := sim.Run(sim.Config{
		Sites:      opts.Sites,
		Edits:      opts.Edits,
		Seed:       opts.Seed,
		DupPercent: opts.DupPercent,
		SeedText:   opts.SeedText,
	}, st)
	if err != nil {
		return WrapExitError(ExitCommandError, "run simulation", err)
	}

	if opts.Format == "json" {
		response := CLIResponse{Status: "ok", Data: res}
		if !res.Converged {
			response.Status = "error"
			response.Error = &CLIError{
				Code:    "E_SIM_DIVERGED",
				Message: "sites did not converge",
			}
		}
		if err := writeJSON(cmd.OutOrStdout(), response); err != nil {
			return err
		}
		if !res.Converged {
			return NewExitError(ExitFailure, "sites did not converge")
		}
		return nil
	}

	w := cmd.OutOrStdout()
	fmt.Fprintf(w, "run %s: %d site(s), %d deliveries\n", res.RunID, opts.Sites, res.Deliveries)
	for i, value := range res.Values {
		fmt.Fprintf(w, "  site %d: %q\n", i+1, value)
	}
	if !res.Converged {
		fmt.Fprintln(w, "✗ sites diverged")
		return NewExitError(ExitFailure, "sites did not converge")
	}
	fmt.Fprintln(w, "✓ converged")
	return nil
}
