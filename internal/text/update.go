package text

import "github.com/weftworks/weft/internal/posid"

// ApplyUpdate applies local splices in order, each seeing the effect of the
// ones before it. It returns the new value, the user-facing change (one
// part per splice), and the replica-facing patch to hand to other replicas.
//
// site and ver identify the editing replica; the caller must advance ver on
// every update so identifier allocation stays collision-free. Inputs are
// sanitized by clamping, so there are no error conditions.
func ApplyUpdate(m *Metadata, splices []Splice, site uint32, ver uint64) (string, []ChangePart, []PatchPart) {
	change := make([]ChangePart, 0, len(splices))
	patch := make([]PatchPart, 0, len(splices))

	for _, sp := range splices {
		index, remove := clampSplice(sp, m.Len())
		runes := []rune(sp.Text)

		// Allocation bounds are the surviving left neighbor and the first
		// identifier at the splice point, before removal. New runes sort
		// at the start of any concurrently surviving removed span.
		var lower, upper posid.ID
		if index > 0 {
			lower = m.entries[index-1].id
		}
		if index < m.Len() {
			upper = m.entries[index].id
		}
		ids := posid.Alloc(lower, upper, len(runes), site, ver)

		// Leave removal fields nil for pure insertions so the wire form
		// round-trips exactly through omitempty.
		var removedIDs []posid.ID
		removedText := ""
		if remove > 0 {
			removedIDs = make([]posid.ID, remove)
			removedRunes := make([]rune, remove)
			for i, e := range m.entries[index : index+remove] {
				removedIDs[i] = e.id
				removedRunes[i] = e.ch
			}
			removedText = string(removedRunes)
		}

		ins := make([]entry, len(runes))
		for i, r := range runes {
			ins[i] = entry{id: ids[i], ch: r}
		}
		m.spliceEntries(index, remove, ins)

		change = append(change, ChangePart{Index: index, Removed: removedText, Inserted: sp.Text})
		patch = append(patch, PatchPart{
			RemovedIDs:   removedIDs,
			RemovedText:  removedText,
			InsertedIDs:  ids,
			InsertedText: sp.Text,
		})
	}

	return m.Value(), change, patch
}

// clampSplice resolves a splice against the current length: negative
// indexes count from the end, and both index and remove are clamped into
// the valid range.
func clampSplice(sp Splice, n int) (index, remove int) {
	index = sp.Index
	if index < 0 {
		index += n
	}
	if index < 0 {
		index = 0
	}
	if index > n {
		index = n
	}
	remove = sp.Remove
	if remove < 0 {
		remove = 0
	}
	if remove > n-index {
		remove = n - index
	}
	return index, remove
}
