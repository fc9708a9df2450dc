// Package text implements the collaborative text field: a replicated rune
// sequence that lets independent replicas concurrently splice a shared
// string and converge to an identical value without coordination.
//
// Two entry points mutate a field. ApplyUpdate turns local splices into a
// new value plus a user-facing change and a replica-facing patch; the patch
// is what travels between replicas. ApplyPatch merges a received patch into
// local state, tolerating identifiers that are unknown (the removal won the
// race against a not-yet-delivered insert) or already present (duplicate
// delivery). Final character order is decided by identifier comparison,
// never by arrival order, and the cemetery ledger makes removals and
// insertions commute; together these give convergence under any delivery
// order, duplication included.
//
// Neither entry point returns an error: out-of-range splices are clamped
// and every patch, however ordered, has a well-defined result.
package text
