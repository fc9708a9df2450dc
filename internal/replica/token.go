package replica

import (
	"fmt"
	"sync"

	"github.com/google/uuid"
)

// TokenGenerator produces envelope tokens for trace correlation.
// Implemented by UUIDGenerator (production) and FixedGenerator (tests).
type TokenGenerator interface {
	Generate() string
}

// UUIDGenerator generates time-sortable UUIDv7 tokens, which keeps
// simulator traces readable in creation order.
//
// Thread-safety: stateless, safe for concurrent use.
type UUIDGenerator struct{}

// Generate returns a new UUIDv7 as a hyphenated string.
func (g UUIDGenerator) Generate() string {
	return uuid.Must(uuid.NewV7()).String()
}

// FixedGenerator returns tokens from a fixed prefix with an incrementing
// suffix, for deterministic tests and golden traces.
//
// Thread-safety: safe for concurrent use via internal mutex.
type FixedGenerator struct {
	mu     sync.Mutex
	prefix string
	n      int
}

// NewFixedGenerator creates a generator emitting "<prefix>-1", "<prefix>-2", ...
func NewFixedGenerator(prefix string) *FixedGenerator {
	return &FixedGenerator{prefix: prefix}
}

// Generate returns the next token in the sequence.
func (g *FixedGenerator) Generate() string {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.n++
	return fmt.Sprintf("%s-%d", g.prefix, g.n)
}
