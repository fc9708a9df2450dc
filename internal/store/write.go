package store

import "fmt"

// Delivery is one applied patch envelope: which site sent it, which site
// applied it, and the recipient's value immediately afterwards.
type Delivery struct {
	RunID string `json:"run_id"`
	Step  int64  `json:"step"`
	From  uint32 `json:"from"`
	To    uint32 `json:"to"`
	Token string `json:"token"`
	Hash  string `json:"hash"`
	Value string `json:"value"`
}

// WriteDelivery appends a delivery row. Re-writing the same (run, step) is
// ignored so recording is idempotent.
func (s *Store) WriteDelivery(d Delivery) error {
	_, err := s.db.Exec(`
		INSERT INTO deliveries (run_id, step, from_site, to_site, token, hash, value)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(run_id, step) DO NOTHING
	`, d.RunID, d.Step, d.From, d.To, d.Token, d.Hash, d.Value)
	if err != nil {
		return fmt.Errorf("write delivery %s/%d: %w", d.RunID, d.Step, err)
	}
	return nil
}
