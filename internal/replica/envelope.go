package replica

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"

	"github.com/weftworks/weft/internal/text"
)

// Envelope wraps one edit's patch for delivery to other replicas. The
// token and content hash exist for tracing and deduplication diagnostics
// only; correctness never depends on envelope identity, since duplicate
// delivery of the patch itself is safe.
type Envelope struct {
	Token string           `json:"token"`
	From  uint32           `json:"from"`
	Ver   uint64           `json:"ver"`
	Parts []text.PatchPart `json:"parts"`
	Hash  string           `json:"hash"`
}

// PatchHash returns the hex sha256 of the canonical JSON encoding of the
// patch parts. Two envelopes carrying the same patch hash identically
// regardless of which replica built them.
func PatchHash(parts []text.PatchPart) (string, error) {
	data, err := json.Marshal(parts)
	if err != nil {
		return "", fmt.Errorf("marshal patch parts: %w", err)
	}
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:]), nil
}

// EncodeEnvelope serializes an envelope for the wire or for trace storage.
func EncodeEnvelope(env Envelope) ([]byte, error) {
	data, err := json.Marshal(env)
	if err != nil {
		return nil, fmt.Errorf("marshal envelope: %w", err)
	}
	return data, nil
}

// DecodeEnvelope parses an envelope produced by EncodeEnvelope.
func DecodeEnvelope(data []byte) (Envelope, error) {
	var env Envelope
	if err := json.Unmarshal(data, &env); err != nil {
		return Envelope{}, fmt.Errorf("unmarshal envelope: %w", err)
	}
	return env, nil
}
