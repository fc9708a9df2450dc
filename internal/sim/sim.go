// Package sim runs multi-replica convergence simulations in memory. Each
// site edits independently, then every envelope is delivered to every peer
// in a seeded random interleaving, optionally duplicated, and the end state
// is checked for convergence. The simulator stands in for the (out of
// scope) transport: it only reorders and duplicates, it never drops.
package sim

import (
	"fmt"
	"log/slog"
	"math/rand"

	"github.com/google/uuid"

	"github.com/weftworks/weft/internal/replica"
	"github.com/weftworks/weft/internal/store"
	"github.com/weftworks/weft/internal/text"
)

// Config parameterizes a simulation run.
type Config struct {
	// Sites is the number of concurrently editing replicas (minimum 2).
	Sites int
	// Edits is the number of random splices each site makes.
	Edits int
	// Seed drives all randomness: edit generation, delivery order, and
	// duplication. The same config always produces the same run.
	Seed int64
	// DupPercent is the chance (0-100) that a delivery is repeated at a
	// random later point in the schedule.
	DupPercent int
	// SeedText is the common starting content shared by all sites.
	SeedText string
}

// Result is the outcome of a run.
type Result struct {
	RunID      string   `json:"run_id"`
	Values     []string `json:"values"`
	Deliveries int      `json:"deliveries"`
	Converged  bool     `json:"converged"`
}

const editAlphabet = "abcdefghijklmnopqrstuvwxyz "

// Run executes a simulation. When st is non-nil every delivery is recorded
// as a trace row under the returned run id.
//
// Each site's edits are merged into a single envelope for broadcast, so a
// duplicated delivery replays a whole causal batch; values converge under
// any reordering and duplication the schedule produces. Metadata converges
// exactly when no deliveries are duplicated (re-delivered removals of
// already-gone characters leave tombstone residue by design).
func Run(cfg Config, st *store.Store) (*Result, error) {
	if cfg.Sites < 2 {
		return nil, fmt.Errorf("simulation needs at least 2 sites, got %d", cfg.Sites)
	}
	if cfg.DupPercent < 0 || cfg.DupPercent > 100 {
		return nil, fmt.Errorf("dup percent %d out of range [0,100]", cfg.DupPercent)
	}

	runID := uuid.NewString()
	rng := rand.New(rand.NewSource(cfg.Seed))

	base := replica.New(0, replica.WithTokenGenerator(replica.NewFixedGenerator("seed")))
	if cfg.SeedText != "" {
		base.Edit(text.Splice{Text: cfg.SeedText})
	}
	sites := make([]*replica.Replica, cfg.Sites)
	for i := range sites {
		gen := replica.NewFixedGenerator(fmt.Sprintf("site%d", i+1))
		sites[i] = base.Fork(uint32(i+1), replica.WithTokenGenerator(gen))
	}

	// Editing phase: every site edits in isolation, one merged envelope
	// per site.
	envelopes := make([]replica.Envelope, 0, cfg.Sites)
	for _, r := range sites {
		var parts []text.PatchPart
		var lastVer uint64
		for e := 0; e < cfg.Edits; e++ {
			_, _, env := r.Edit(randomSplice(rng, r.Value()))
			parts = text.MergePatch(parts, env.Parts)
			lastVer = env.Ver
		}
		if len(parts) == 0 {
			continue
		}
		hash, err := replica.PatchHash(parts)
		if err != nil {
			return nil, fmt.Errorf("hash merged patch for site %d: %w", r.Site(), err)
		}
		envelopes = append(envelopes, replica.Envelope{
			Token: fmt.Sprintf("batch-site%d", r.Site()),
			From:  r.Site(),
			Ver:   lastVer,
			Parts: parts,
			Hash:  hash,
		})
	}

	// Delivery phase: every envelope to every peer, shuffled, with
	// duplicates spliced in at random later points.
	type delivery struct {
		env replica.Envelope
		to  int
	}
	var schedule []delivery
	for _, env := range envelopes {
		for i, r := range sites {
			if r.Site() == env.From {
				continue
			}
			schedule = append(schedule, delivery{env: env, to: i})
		}
	}
	rng.Shuffle(len(schedule), func(i, j int) {
		schedule[i], schedule[j] = schedule[j], schedule[i]
	})
	var dups []delivery
	for _, d := range schedule {
		if rng.Intn(100) < cfg.DupPercent {
			dups = append(dups, d)
		}
	}
	for _, d := range dups {
		at := rng.Intn(len(schedule) + 1)
		schedule = append(schedule[:at], append([]delivery{d}, schedule[at:]...)...)
	}

	for step, d := range schedule {
		r := sites[d.to]
		value, _ := r.Apply(d.env)
		slog.Debug("delivery applied",
			"run", runID,
			"step", step,
			"from", d.env.From,
			"to", r.Site(),
			"token", d.env.Token,
		)
		if st != nil {
			row := store.Delivery{
				RunID: runID,
				Step:  int64(step),
				From:  d.env.From,
				To:    r.Site(),
				Token: d.env.Token,
				Hash:  d.env.Hash,
				Value: value,
			}
			if err := st.WriteDelivery(row); err != nil {
				return nil, fmt.Errorf("record delivery %d: %w", step, err)
			}
		}
	}

	res := &Result{
		RunID:      runID,
		Deliveries: len(schedule),
		Values:     make([]string, cfg.Sites),
		Converged:  true,
	}
	for i, r := range sites {
		res.Values[i] = r.Value()
		if res.Values[i] != res.Values[0] {
			res.Converged = false
		}
	}
	if cfg.DupPercent == 0 {
		for _, r := range sites[1:] {
			if !sites[0].Metadata().Equal(r.Metadata()) {
				res.Converged = false
			}
		}
	}

	slog.Info("simulation finished",
		"run", runID,
		"sites", cfg.Sites,
		"edits_per_site", cfg.Edits,
		"deliveries", res.Deliveries,
		"converged", res.Converged,
	)
	return res, nil
}

// randomSplice builds an arbitrary splice against the current value:
// random position, a short removal, a short insertion.
func randomSplice(rng *rand.Rand, value string) text.Splice {
	n := len([]rune(value))
	index := rng.Intn(n + 1)
	remove := 0
	if n-index > 0 {
		remove = rng.Intn(min(3, n-index) + 1)
	}
	insLen := rng.Intn(5)
	ins := make([]byte, insLen)
	for i := range ins {
		ins[i] = editAlphabet[rng.Intn(len(editAlphabet))]
	}
	return text.Splice{Index: index, Remove: remove, Text: string(ins)}
}
