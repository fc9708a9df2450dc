package cli

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/weftworks/weft/internal/replica"
	"github.com/weftworks/weft/internal/text"
)

// PatchOptions holds flags for the patch command.
type PatchOptions struct {
	*RootOptions
	Seed     string
	Site     uint32
	Envelope string
}

// PatchResult is the patch command output.
type PatchResult struct {
	Value  string            `json:"value"`
	Change []text.ChangePart `json:"change"`
	Token  string            `json:"token"`
	From   uint32            `json:"from"`
}

// NewPatchCommand creates the patch command.
func NewPatchCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &PatchOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "patch",
		Short: "Apply a received patch envelope",
		Long: `Apply a patch envelope to a seeded document and print the resulting
value and net change.

The document must be seeded with the same --seed the envelope was
produced against, so both sides agree on character identifiers.
Duplicate or reordered envelopes are valid inputs.

Examples:
  weft apply --seed "hello" --index 5 --text "!" --out env.json
  weft patch --seed "hello" --envelope env.json
  cat env.json | weft patch --seed "hello" --envelope -`,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runPatch(opts, cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Seed, "seed", "", "initial shared document content")
	cmd.Flags().Uint32Var(&opts.Site, "site", 2, "receiving site id")
	cmd.Flags().StringVar(&opts.Envelope, "envelope", "", "envelope JSON file, or - for stdin (required)")
	_ = cmd.MarkFlagRequired("envelope")

	return cmd
}

func runPatch(opts *PatchOptions, cmd *cobra.Command) error {
	if opts.Site == 0 {
		return NewExitError(ExitCommandError, "--site must be non-zero (site 0 seeds the document)")
	}

	var data []byte
	var err error
	if opts.Envelope == "-" {
		data, err = io.ReadAll(cmd.InOrStdin())
	} else {
		data, err = os.ReadFile(opts.Envelope)
	}
	if err != nil {
		return WrapExitError(ExitCommandError, "read envelope", err)
	}

	env, err := replica.DecodeEnvelope(data)
	if err != nil {
		return WrapExitError(ExitCommandError, "decode envelope", err)
	}
	if env.From == opts.Site {
		return NewExitError(ExitCommandError, fmt.Sprintf("envelope from site %d cannot be applied to itself", env.From))
	}

	r := seededReplica(opts.Seed, opts.Site)
	value, change := r.Apply(env)

	result := PatchResult{Value: value, Change: change, Token: env.Token, From: env.From}
	if opts.Format == "json" {
		return writeJSON(cmd.OutOrStdout(), CLIResponse{Status: "ok", Data: result})
	}

	w := cmd.OutOrStdout()
	fmt.Fprintln(w, value)
	for _, part := range change {
		fmt.Fprintf(w, "  [%d] -%q +%q\n", part.Index, part.Removed, part.Inserted)
	}
	fmt.Fprintf(w, "applied %s from site %d\n", env.Token, env.From)
	return nil
}
