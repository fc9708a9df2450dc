package text

import (
	"sort"

	"github.com/weftworks/weft/internal/posid"
)

// entry pairs one rune of the value with its permanent position identifier.
// Holding both in a single slice makes the length invariant between the
// value and its identifiers structural: they cannot be resized apart.
type entry struct {
	id posid.ID
	ch rune
}

// Metadata is the replicated state of one text field: the identified rune
// sequence plus the cemetery, a tombstone-count ledger for removals that
// arrived before their matching insertion.
//
// A Metadata is created once per field instance and mutated in place for
// the lifetime of the field. It is not safe for concurrent use; the host
// is expected to serialize local edits and remote patch applications, and
// the operations themselves never block.
type Metadata struct {
	entries  []entry
	cemetery map[posid.ID]int
}

// NewValue returns the initial empty field value.
func NewValue() string {
	return ""
}

// NewMetadata returns empty field metadata: no identifiers, no tombstones.
func NewMetadata() *Metadata {
	return &Metadata{cemetery: make(map[posid.ID]int)}
}

// Len returns the current number of runes (and identifiers) in the field.
func (m *Metadata) Len() int {
	return len(m.entries)
}

// Value renders the current field content.
func (m *Metadata) Value() string {
	runes := make([]rune, len(m.entries))
	for i, e := range m.entries {
		runes[i] = e.ch
	}
	return string(runes)
}

// IDs returns a copy of the identifier sequence, in value order. The
// sequence is strictly increasing under identifier comparison.
func (m *Metadata) IDs() []posid.ID {
	ids := make([]posid.ID, len(m.entries))
	for i, e := range m.entries {
		ids[i] = e.id
	}
	return ids
}

// CemeteryLen returns the number of identifiers with outstanding tombstone
// counts. It is zero once every patch has been delivered everywhere.
func (m *Metadata) CemeteryLen() int {
	return len(m.cemetery)
}

// Clone returns an independent deep copy. Two clones evolve separately, as
// two replicas that started from the same state.
func (m *Metadata) Clone() *Metadata {
	c := &Metadata{
		entries:  append([]entry(nil), m.entries...),
		cemetery: make(map[posid.ID]int, len(m.cemetery)),
	}
	for id, n := range m.cemetery {
		c.cemetery[id] = n
	}
	return c
}

// Equal reports whether two metadata hold the same identified sequence and
// the same tombstone ledger. Converged replicas compare equal.
func (m *Metadata) Equal(o *Metadata) bool {
	if len(m.entries) != len(o.entries) || len(m.cemetery) != len(o.cemetery) {
		return false
	}
	for i, e := range m.entries {
		if o.entries[i] != e {
			return false
		}
	}
	for id, n := range m.cemetery {
		if o.cemetery[id] != n {
			return false
		}
	}
	return true
}

// search locates id in the entry sequence by identifier order. It returns
// the index of id when present, otherwise the index where id would insert.
func (m *Metadata) search(id posid.ID) (int, bool) {
	i := sort.Search(len(m.entries), func(i int) bool {
		return posid.Compare(m.entries[i].id, id) >= 0
	})
	return i, i < len(m.entries) && m.entries[i].id == id
}

// spliceEntries replaces remove entries at index with ins.
func (m *Metadata) spliceEntries(index, remove int, ins []entry) {
	tail := append([]entry(nil), m.entries[index+remove:]...)
	m.entries = append(append(m.entries[:index], ins...), tail...)
}

// bury records a removal whose target is not present locally: either the
// matching insert has not arrived yet, or the removal was delivered twice
// ahead of it. The count nets out when the insert lands.
func (m *Metadata) bury(id posid.ID) {
	m.cemetery[id]++
}

// disinter consumes one tombstone for id, pruning the ledger entry when its
// count reaches zero. It reports whether a tombstone was present.
func (m *Metadata) disinter(id posid.ID) bool {
	n, ok := m.cemetery[id]
	if !ok {
		return false
	}
	if n <= 1 {
		delete(m.cemetery, id)
	} else {
		m.cemetery[id] = n - 1
	}
	return true
}
