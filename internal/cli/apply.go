package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"golang.org/x/text/unicode/norm"

	"github.com/weftworks/weft/internal/replica"
	"github.com/weftworks/weft/internal/text"
)

// ApplyOptions holds flags for the apply command.
type ApplyOptions struct {
	*RootOptions
	Seed   string
	Site   uint32
	Index  int
	Remove int
	Text   string
	Out    string
}

// ApplyResult is the apply command output.
type ApplyResult struct {
	Value    string            `json:"value"`
	Change   []text.ChangePart `json:"change"`
	Envelope replica.Envelope  `json:"envelope"`
}

// NewApplyCommand creates the apply command.
func NewApplyCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ApplyOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "apply",
		Short: "Apply a local edit and emit its patch envelope",
		Long: `Apply one splice to a seeded document and print the resulting value
and the patch envelope other replicas would receive.

The document is seeded deterministically, so two invocations with the
same --seed agree on character identifiers: an envelope written with
--out can be applied elsewhere with "weft patch" under the same seed.

Inserted text is normalized to Unicode NFC before it enters the field.

Examples:
  weft apply --seed "hello" --index 5 --text " world"
  weft apply --seed "hello" --index 0 --remove 1 --text "J" --format json
  weft apply --seed "hello" --index 5 --text "!" --out env.json`,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runApply(opts, cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Seed, "seed", "", "initial shared document content")
	cmd.Flags().Uint32Var(&opts.Site, "site", 1, "editing site id")
	cmd.Flags().IntVar(&opts.Index, "index", 0, "splice position (negative counts from the end)")
	cmd.Flags().IntVar(&opts.Remove, "remove", 0, "number of characters to remove")
	cmd.Flags().StringVar(&opts.Text, "text", "", "text to insert")
	cmd.Flags().StringVar(&opts.Out, "out", "", "write the envelope JSON to this file")

	return cmd
}

func runApply(opts *ApplyOptions, cmd *cobra.Command) error {
	if opts.Remove == 0 && opts.Text == "" {
		return NewExitError(ExitCommandError, "nothing to apply: use --remove and/or --text")
	}
	if opts.Remove < 0 {
		return NewExitError(ExitCommandError, "--remove must be non-negative")
	}
	if opts.Site == 0 {
		return NewExitError(ExitCommandError, "--site must be non-zero (site 0 seeds the document)")
	}

	r := seededReplica(opts.Seed, opts.Site)
	value, change, env := r.Edit(text.Splice{
		Index:  opts.Index,
		Remove: opts.Remove,
		Text:   norm.NFC.String(opts.Text),
	})

	if opts.Out != "" {
		data, err := replica.EncodeEnvelope(env)
		if err != nil {
			return WrapExitError(ExitCommandError, "encode envelope", err)
		}
		if err := os.WriteFile(opts.Out, data, 0o644); err != nil {
			return WrapExitError(ExitCommandError, "write envelope file", err)
		}
	}

	result := ApplyResult{Value: value, Change: change, Envelope: env}
	if opts.Format == "json" {
		return writeJSON(cmd.OutOrStdout(), CLIResponse{Status: "ok", Data: result})
	}

	w := cmd.OutOrStdout()
	fmt.Fprintln(w, value)
	for _, part := range change {
		fmt.Fprintf(w, "  [%d] -%q +%q\n", part.Index, part.Removed, part.Inserted)
	}
	fmt.Fprintf(w, "envelope %s (%d part(s), hash %.12s)\n", env.Token, len(env.Parts), env.Hash)
	return nil
}

// seededReplica builds the deterministic document every command shares:
// site 0 seeds the content, then the editing site forks from it with a
// fixed token generator.
func seededReplica(seed string, site uint32) *replica.Replica {
	base := replica.New(0, replica.WithTokenGenerator(replica.NewFixedGenerator("seed")))
	if seed != "" {
		base.Edit(text.Splice{Text: norm.NFC.String(seed)})
	}
	gen := replica.NewFixedGenerator(fmt.Sprintf("site%d", site))
	return base.Fork(site, replica.WithTokenGenerator(gen))
}
