package text

import "github.com/weftworks/weft/internal/posid"

// ApplyPatch merges a patch part produced by another replica (or by this
// one via a different causal path) into the local state. It returns the new
// value and the net effect on it; removals absorbed by the cemetery and
// insertions born tombstoned produce no change parts.
//
// The function is total: identifiers unknown locally, duplicate deliveries,
// and arbitrary ordering against prior state are all well-defined inputs.
// Applying the same multiset of patches in any order with any duplication
// converges every replica to the same value and metadata.
func ApplyPatch(m *Metadata, p PatchPart) (string, []ChangePart) {
	var change []ChangePart
	if len(p.RemovedIDs) > 0 {
		change = applyRemovals(m, p.RemovedIDs, change)
	}
	if len(p.InsertedIDs) > 0 {
		change = applyInsertions(m, p, change)
	}
	return m.Value(), change
}

// applyRemovals deletes every locally present removed identifier,
// coalescing runs that are adjacent in the entry sequence into one chunk.
// Identifiers not present are buried: their insert has not arrived yet, or
// the removal was delivered more than once ahead of it. Chunks are removed
// as they are found, so each emitted index is valid in the value as it
// stands when that part applies.
func applyRemovals(m *Metadata, ids []posid.ID, change []ChangePart) []ChangePart {
	i := 0
	for i < len(ids) {
		pos, ok := m.search(ids[i])
		if !ok {
			m.bury(ids[i])
			i++
			continue
		}
		count := 1
		i++
		for i < len(ids) && pos+count < len(m.entries) && m.entries[pos+count].id == ids[i] {
			count++
			i++
		}

		removed := make([]rune, count)
		for j, e := range m.entries[pos : pos+count] {
			removed[j] = e.ch
		}
		m.spliceEntries(pos, count, nil)
		change = append(change, ChangePart{Index: pos, Removed: string(removed)})
	}
	return change
}

// applyInsertions places each inserted identifier/rune pair by identifier
// order. A tombstoned identifier consumes its cemetery count and is not
// inserted: the removal won the race. An identifier already present is a
// duplicate delivery and a no-op. Contiguous runs of new identifiers that
// fall into the same gap are spliced as one chunk.
func applyInsertions(m *Metadata, p PatchPart, change []ChangePart) []ChangePart {
	runes := []rune(p.InsertedText)
	n := len(p.InsertedIDs)
	if len(runes) < n {
		n = len(runes)
	}

	k := 0
	for k < n {
		id := p.InsertedIDs[k]
		if m.disinter(id) {
			k++
			continue
		}
		pos, present := m.search(id)
		if present {
			k++
			continue
		}

		// Extend the chunk while the ids keep increasing, stay below the
		// upper neighbor, and are not themselves tombstoned. Everything in
		// that window is necessarily absent.
		start := k
		k++
		for k < n {
			next := p.InsertedIDs[k]
			if posid.Compare(p.InsertedIDs[k-1], next) >= 0 {
				break
			}
			if pos < len(m.entries) && posid.Compare(next, m.entries[pos].id) >= 0 {
				break
			}
			if _, buried := m.cemetery[next]; buried {
				break
			}
			k++
		}

		ins := make([]entry, k-start)
		for j := start; j < k; j++ {
			ins[j-start] = entry{id: p.InsertedIDs[j], ch: runes[j]}
		}
		m.spliceEntries(pos, 0, ins)
		change = append(change, ChangePart{Index: pos, Inserted: string(runes[start:k])})
	}
	return change
}
