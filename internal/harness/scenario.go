package harness

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"gopkg.in/yaml.v3"
)

// Scenario scripts one convergence test: a seeded set of replicas, an
// explicit interleaving of edits and deliveries, and assertions on the
// final state.
type Scenario struct {
	// Name uniquely identifies the scenario and names its golden file.
	Name string `yaml:"name"`

	// Description explains which interleaving the scenario pins down.
	Description string `yaml:"description"`

	// SeedText is the content all sites share before any step runs.
	SeedText string `yaml:"seed_text,omitempty"`

	// Sites is the number of replicas, numbered 1..Sites.
	Sites int `yaml:"sites"`

	// Steps is the exact schedule. Each step is one edit or one delivery.
	Steps []Step `yaml:"steps"`

	// Assertions validate final values and cemetery counts.
	Assertions []Assertion `yaml:"assertions"`
}

// Step is one schedule entry. Exactly one of Edit, Deliver, or DeliverAll
// must be set.
type Step struct {
	// Site is the editing site (required with Edit).
	Site int `yaml:"site,omitempty"`

	// Edit applies a local splice at Site and broadcasts the envelope to
	// every peer's mailbox.
	Edit *EditSpec `yaml:"edit,omitempty"`

	// Deliver pops the oldest pending envelope on one mailbox pair and
	// applies it.
	Deliver *DeliverSpec `yaml:"deliver,omitempty"`

	// DeliverAll drains every mailbox in site order until empty.
	DeliverAll bool `yaml:"deliver_all,omitempty"`
}

// EditSpec is a single splice against the editing site's current value.
type EditSpec struct {
	Index  int    `yaml:"index"`
	Remove int    `yaml:"remove,omitempty"`
	Text   string `yaml:"text,omitempty"`
}

// DeliverSpec addresses one mailbox pair.
type DeliverSpec struct {
	From int `yaml:"from"`
	To   int `yaml:"to"`

	// Duplicate applies the dequeued envelope twice, modelling an
	// at-least-once transport.
	Duplicate bool `yaml:"duplicate,omitempty"`
}

// Assertion validates final state after all steps ran.
type Assertion struct {
	// Type is one of the Assert* constants.
	Type string `yaml:"type"`

	// Site selects the replica (value, cemetery, length).
	Site int `yaml:"site,omitempty"`

	// Equals is the expected value (required for value, optional for
	// converged).
	Equals *string `yaml:"equals,omitempty"`

	// Count is the expected cemetery size or character length.
	Count int `yaml:"count,omitempty"`
}

// Assertion type constants.
const (
	// AssertValue checks one site's value.
	AssertValue = "value"
	// AssertConverged checks all sites share one value, optionally a
	// specific one.
	AssertConverged = "converged"
	// AssertCemetery checks one site's pending tombstone count.
	AssertCemetery = "cemetery"
	// AssertLength checks one site's character count.
	AssertLength = "length"
)

// LoadScenario reads and parses a scenario YAML file. Unknown fields are
// rejected so typos fail loudly instead of silently skipping a step.
func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read scenario file: %w", err)
	}

	var scenario Scenario
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&scenario); err != nil {
		return nil, fmt.Errorf("parse scenario YAML: %w", err)
	}

	if err := validateScenario(&scenario); err != nil {
		return nil, fmt.Errorf("invalid scenario %s: %w", path, err)
	}
	return &scenario, nil
}

// LoadScenarioDir loads every *.yaml scenario in a directory, sorted by
// file name for stable run order.
func LoadScenarioDir(dir string) ([]*Scenario, error) {
	paths, err := filepath.Glob(filepath.Join(dir, "*.yaml"))
	if err != nil {
		return nil, fmt.Errorf("glob scenarios: %w", err)
	}
	sort.Strings(paths)

	scenarios := make([]*Scenario, 0, len(paths))
	for _, path := range paths {
		s, err := LoadScenario(path)
		if err != nil {
			return nil, err
		}
		scenarios = append(scenarios, s)
	}
	return scenarios, nil
}

func validateScenario(s *Scenario) error {
	if s.Name == "" {
		return fmt.Errorf("name is required")
	}
	if s.Description == "" {
		return fmt.Errorf("description is required")
	}
	if s.Sites < 2 {
		return fmt.Errorf("sites must be at least 2, got %d", s.Sites)
	}
	if len(s.Steps) == 0 {
		return fmt.Errorf("steps list is required and must be non-empty")
	}
	if len(s.Assertions) == 0 {
		return fmt.Errorf("assertions list is required and must be non-empty")
	}

	for i, step := range s.Steps {
		if err := validateStep(s, i, &step); err != nil {
			return err
		}
	}
	for i, assertion := range s.Assertions {
		if err := validateAssertion(s, i, &assertion); err != nil {
			return err
		}
	}
	return nil
}

func validateStep(s *Scenario, index int, step *Step) error {
	set := 0
	if step.Edit != nil {
		set++
	}
	if step.Deliver != nil {
		set++
	}
	if step.DeliverAll {
		set++
	}
	if set != 1 {
		return fmt.Errorf("steps[%d]: exactly one of edit, deliver, deliver_all is required", index)
	}

	switch {
	case step.Edit != nil:
		if step.Site < 1 || step.Site > s.Sites {
			return fmt.Errorf("steps[%d]: edit site %d out of range [1,%d]", index, step.Site, s.Sites)
		}
		if step.Edit.Remove < 0 {
			return fmt.Errorf("steps[%d]: edit remove must be non-negative", index)
		}
		if step.Edit.Remove == 0 && step.Edit.Text == "" {
			return fmt.Errorf("steps[%d]: edit must remove or insert something", index)
		}
	case step.Deliver != nil:
		if step.Site != 0 {
			return fmt.Errorf("steps[%d]: site is only valid on edit steps", index)
		}
		if step.Deliver.From < 1 || step.Deliver.From > s.Sites {
			return fmt.Errorf("steps[%d]: deliver from %d out of range [1,%d]", index, step.Deliver.From, s.Sites)
		}
		if step.Deliver.To < 1 || step.Deliver.To > s.Sites {
			return fmt.Errorf("steps[%d]: deliver to %d out of range [1,%d]", index, step.Deliver.To, s.Sites)
		}
		if step.Deliver.From == step.Deliver.To {
			return fmt.Errorf("steps[%d]: deliver from and to must differ", index)
		}
	case step.DeliverAll:
		if step.Site != 0 {
			return fmt.Errorf("steps[%d]: site is only valid on edit steps", index)
		}
	}
	return nil
}

func validateAssertion(s *Scenario, index int, a *Assertion) error {
	switch a.Type {
	case "":
		return fmt.Errorf("assertions[%d]: type is required", index)
	case AssertValue:
		if a.Site < 1 || a.Site > s.Sites {
			return fmt.Errorf("assertions[%d]: site %d out of range [1,%d]", index, a.Site, s.Sites)
		}
		if a.Equals == nil {
			return fmt.Errorf("assertions[%d]: equals is required for value", index)
		}
	case AssertConverged:
		if a.Site != 0 {
			return fmt.Errorf("assertions[%d]: site is not valid for converged", index)
		}
	case AssertCemetery, AssertLength:
		if a.Site < 1 || a.Site > s.Sites {
			return fmt.Errorf("assertions[%d]: site %d out of range [1,%d]", index, a.Site, s.Sites)
		}
		if a.Count < 0 {
			return fmt.Errorf("assertions[%d]: count must be non-negative", index)
		}
	default:
		return fmt.Errorf("assertions[%d]: unknown assertion type %q", index, a.Type)
	}
	return nil
}
