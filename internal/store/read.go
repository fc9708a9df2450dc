package store

import "fmt"

// ReadDeliveries returns the deliveries of a run in schedule order.
// Returns an empty slice when the run is unknown.
func (s *Store) ReadDeliveries(runID string) ([]Delivery, error) {
	rows, err := s.db.Query(`
		SELECT run_id, step, from_site, to_site, token, hash, value
		FROM deliveries
		WHERE run_id = ?
		ORDER BY step ASC
	`, runID)
	if err != nil {
		return nil, fmt.Errorf("query deliveries: %w", err)
	}
	defer rows.Close()

	deliveries := []Delivery{}
	for rows.Next() {
		var d Delivery
		if err := rows.Scan(&d.RunID, &d.Step, &d.From, &d.To, &d.Token, &d.Hash, &d.Value); err != nil {
			return nil, fmt.Errorf("scan delivery: %w", err)
		}
		deliveries = append(deliveries, d)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate deliveries: %w", err)
	}
	return deliveries, nil
}

// Runs returns the distinct run ids present in the ledger, most recent
// first by insertion order of their first step.
func (s *Store) Runs() ([]string, error) {
	rows, err := s.db.Query(`
		SELECT run_id FROM deliveries GROUP BY run_id ORDER BY MIN(rowid) DESC
	`)
	if err != nil {
		return nil, fmt.Errorf("query runs: %w", err)
	}
	defer rows.Close()

	runs := []string{}
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scan run id: %w", err)
		}
		runs = append(runs, id)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate runs: %w", err)
	}
	return runs, nil
}
