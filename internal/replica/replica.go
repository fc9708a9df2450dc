// Package replica binds one site's identity to a text field: a site id, a
// monotonic version clock, and the field metadata, with local edits and
// remote patch application as the two entry points.
//
// A Replica is single-writer: the host must not interleave Edit and Apply
// calls on the same replica from multiple goroutines. Neither call blocks.
// Across replicas there is no shared state and no locking; convergence
// comes from the commutativity and idempotence of the field operations.
package replica

import (
	"log/slog"

	"github.com/weftworks/weft/internal/text"
)

// Replica is one independent copy of the collaborative text field.
type Replica struct {
	site  uint32
	clock *Clock
	meta  *text.Metadata
	gen   TokenGenerator
}

// Option configures a Replica.
type Option func(*Replica)

// WithTokenGenerator replaces the default UUID token generator, typically
// with a FixedGenerator in tests.
func WithTokenGenerator(gen TokenGenerator) Option {
	return func(r *Replica) {
		r.gen = gen
	}
}

// New creates an empty replica for the given site id.
func New(site uint32, opts ...Option) *Replica {
	r := &Replica{
		site:  site,
		clock: NewClock(),
		meta:  text.NewMetadata(),
		gen:   UUIDGenerator{},
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Fork clones the replica's state under a new site id, as a second replica
// that starts from identical state. The version clock carries over so the
// pair (site, version) stays unique even when the site id is reused.
func (r *Replica) Fork(site uint32, opts ...Option) *Replica {
	f := &Replica{
		site:  site,
		clock: NewClockAt(r.clock.Current()),
		meta:  r.meta.Clone(),
		gen:   r.gen,
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// Site returns the replica's site id.
func (r *Replica) Site() uint32 {
	return r.site
}

// Version returns the current version counter.
func (r *Replica) Version() uint64 {
	return r.clock.Current()
}

// Value returns the current field content.
func (r *Replica) Value() string {
	return r.meta.Value()
}

// Metadata exposes the field metadata for inspection.
func (r *Replica) Metadata() *text.Metadata {
	return r.meta
}

// Edit applies local splices as one update and returns the new value, the
// user-facing change, and the envelope to deliver to other replicas.
func (r *Replica) Edit(splices ...text.Splice) (string, []text.ChangePart, Envelope) {
	ver := r.clock.Next()
	value, change, patch := text.ApplyUpdate(r.meta, splices, r.site, ver)

	hash, err := PatchHash(patch)
	if err != nil {
		// Patch parts are plain structs; marshalling them cannot fail.
		panic("replica: hash patch: " + err.Error())
	}
	env := Envelope{
		Token: r.gen.Generate(),
		From:  r.site,
		Ver:   ver,
		Parts: patch,
		Hash:  hash,
	}

	slog.Debug("local edit applied",
		"site", r.site,
		"ver", ver,
		"splices", len(splices),
		"token", env.Token,
	)
	return value, change, env
}

// Apply merges a received envelope into local state and returns the new
// value and the net change. Duplicate or reordered envelopes are valid
// inputs with well-defined results.
func (r *Replica) Apply(env Envelope) (string, []text.ChangePart) {
	var change []text.ChangePart
	value := r.meta.Value()
	for _, part := range env.Parts {
		var ch []text.ChangePart
		value, ch = text.ApplyPatch(r.meta, part)
		change = text.MergeChange(change, ch)
	}

	slog.Debug("remote patch applied",
		"site", r.site,
		"from", env.From,
		"token", env.Token,
		"parts", len(env.Parts),
		"net_changes", len(change),
	)
	return value, change
}
