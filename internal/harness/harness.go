package harness

import (
	"fmt"
	"log/slog"

	"github.com/weftworks/weft/internal/replica"
	"github.com/weftworks/weft/internal/sim"
	"github.com/weftworks/weft/internal/text"
)

// Harness executes one scenario: real replicas with fixed token
// generators, and one FIFO mailbox per ordered site pair so the scenario
// controls exactly when each envelope arrives.
type Harness struct {
	sites map[int]*replica.Replica
	mail  map[int]map[int]*sim.Queue
}

// Run executes a scenario and returns the result with the full trace and
// any assertion failures. A step error (such as delivering from an empty
// mailbox) aborts the run; an assertion failure does not.
func Run(scenario *Scenario) (*Result, error) {
	base := replica.New(0, replica.WithTokenGenerator(replica.NewFixedGenerator("seed")))
	if scenario.SeedText != "" {
		base.Edit(text.Splice{Text: scenario.SeedText})
	}

	h := &Harness{
		sites: make(map[int]*replica.Replica, scenario.Sites),
		mail:  make(map[int]map[int]*sim.Queue, scenario.Sites),
	}
	for i := 1; i <= scenario.Sites; i++ {
		gen := replica.NewFixedGenerator(fmt.Sprintf("site%d", i))
		h.sites[i] = base.Fork(uint32(i), replica.WithTokenGenerator(gen))
	}
	for from := 1; from <= scenario.Sites; from++ {
		h.mail[from] = make(map[int]*sim.Queue, scenario.Sites-1)
		for to := 1; to <= scenario.Sites; to++ {
			if to != from {
				h.mail[from][to] = sim.NewQueue()
			}
		}
	}

	result := NewResult()
	for i, step := range scenario.Steps {
		var err error
		switch {
		case step.Edit != nil:
			err = h.executeEdit(scenario, step, result)
		case step.Deliver != nil:
			err = h.executeDeliver(*step.Deliver, result)
		case step.DeliverAll:
			err = h.executeDeliverAll(scenario, result)
		}
		if err != nil {
			return nil, fmt.Errorf("scenario %s step %d: %w", scenario.Name, i, err)
		}
	}

	for i := 1; i <= scenario.Sites; i++ {
		result.Values[i] = h.sites[i].Value()
		result.Cemeteries[i] = h.sites[i].Metadata().CemeteryLen()
	}
	for _, msg := range EvaluateAssertions(result, scenario.Assertions) {
		result.AddError(msg)
	}

	slog.Debug("scenario executed",
		"scenario", scenario.Name,
		"steps", len(scenario.Steps),
		"pass", result.Pass,
	)
	return result, nil
}

// executeEdit applies one local splice and broadcasts the envelope to
// every peer's mailbox.
func (h *Harness) executeEdit(scenario *Scenario, step Step, result *Result) error {
	r := h.sites[step.Site]
	value, _, env := r.Edit(text.Splice{
		Index:  step.Edit.Index,
		Remove: step.Edit.Remove,
		Text:   step.Edit.Text,
	})
	for to := 1; to <= scenario.Sites; to++ {
		if to != step.Site {
			h.mail[step.Site][to].Enqueue(env)
		}
	}
	result.AddEditTrace(step.Site, env.Token, value)
	return nil
}

// executeDeliver applies the oldest pending envelope on one mailbox pair.
func (h *Harness) executeDeliver(d DeliverSpec, result *Result) error {
	env, ok := h.mail[d.From][d.To].TryDequeue()
	if !ok {
		return fmt.Errorf("no pending envelope from site %d to site %d", d.From, d.To)
	}
	times := 1
	if d.Duplicate {
		times = 2
	}
	for n := 0; n < times; n++ {
		value, _ := h.sites[d.To].Apply(env)
		result.AddDeliveryTrace(d.To, d.From, env.Token, value)
	}
	return nil
}

// executeDeliverAll drains every mailbox in (from, to) order. Deliveries
// never enqueue new envelopes, so one pass over each queue empties it.
func (h *Harness) executeDeliverAll(scenario *Scenario, result *Result) error {
	for from := 1; from <= scenario.Sites; from++ {
		for to := 1; to <= scenario.Sites; to++ {
			if to == from {
				continue
			}
			for {
				env, ok := h.mail[from][to].TryDequeue()
				if !ok {
					break
				}
				value, _ := h.sites[to].Apply(env)
				result.AddDeliveryTrace(to, from, env.Token, value)
			}
		}
	}
	return nil
}
