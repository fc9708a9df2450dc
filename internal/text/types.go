package text

import "github.com/weftworks/weft/internal/posid"

// Splice is a local edit request: remove Remove runes at Index, then insert
// Text there. A negative Index counts from the end of the value. Index and
// Remove are clamped to the current bounds before use, so any Splice is a
// valid input.
type Splice struct {
	Index  int    `json:"index"`
	Remove int    `json:"remove"`
	Text   string `json:"text"`
}

// ChangePart is the user-facing diff of one effective edit, with Index in
// the coordinate space of the value at the moment the part applies. Parts
// in a change apply sequentially.
type ChangePart struct {
	Index    int    `json:"index"`
	Removed  string `json:"removed"`
	Inserted string `json:"inserted"`
}

// PatchPart is the replica-facing diff of one edit, expressed entirely in
// identifier space so it is independent of any replica's local offsets.
// It is the only artifact exchanged between replicas; identifiers are plain
// strings on the wire and compare correctly as bytes.
type PatchPart struct {
	RemovedIDs   []posid.ID `json:"removed_ids,omitempty"`
	RemovedText  string     `json:"removed_text,omitempty"`
	InsertedIDs  []posid.ID `json:"inserted_ids,omitempty"`
	InsertedText string     `json:"inserted_text,omitempty"`
}

// IsEmpty reports whether the part carries no removals and no insertions.
func (p PatchPart) IsEmpty() bool {
	return len(p.RemovedIDs) == 0 && len(p.InsertedIDs) == 0
}
