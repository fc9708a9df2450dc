package harness

import (
	"fmt"
	"strings"
	"unicode/utf8"
)

// AssertionError describes one failed assertion with the full trace for
// context, so a failure message alone is enough to see the interleaving
// that produced the bad state.
type AssertionError struct {
	Type     string
	Expected string
	Actual   string
	Trace    []TraceEvent
}

// Error implements the error interface.
func (e *AssertionError) Error() string {
	var buf strings.Builder
	fmt.Fprintf(&buf, "assertion failed: %s\n", e.Type)
	fmt.Fprintf(&buf, "  expected: %s\n", e.Expected)
	fmt.Fprintf(&buf, "  actual: %s\n", e.Actual)
	fmt.Fprintf(&buf, "\ntrace:\n")
	for i, event := range e.Trace {
		switch event.Type {
		case EventEdit:
			fmt.Fprintf(&buf, "  [%d] site %d edited -> %q (%s)\n", i+1, event.Site, event.Value, event.Token)
		case EventDelivery:
			fmt.Fprintf(&buf, "  [%d] site %d <- site %d -> %q (%s)\n", i+1, event.Site, event.From, event.Value, event.Token)
		}
	}
	return buf.String()
}

// EvaluateAssertions checks every assertion against the final state and
// returns one message per failure.
func EvaluateAssertions(result *Result, assertions []Assertion) []string {
	var errors []string
	for _, assertion := range assertions {
		var err error
		switch assertion.Type {
		case AssertValue:
			err = assertValue(result, assertion)
		case AssertConverged:
			err = assertConverged(result, assertion)
		case AssertCemetery:
			err = assertCemetery(result, assertion)
		case AssertLength:
			err = assertLength(result, assertion)
		default:
			err = fmt.Errorf("unknown assertion type %q", assertion.Type)
		}
		if err != nil {
			errors = append(errors, err.Error())
		}
	}
	return errors
}

func assertValue(result *Result, a Assertion) error {
	got := result.Values[a.Site]
	if got != *a.Equals {
		return &AssertionError{
			Type:     AssertValue,
			Expected: fmt.Sprintf("site %d value %q", a.Site, *a.Equals),
			Actual:   fmt.Sprintf("%q", got),
			Trace:    result.Trace,
		}
	}
	return nil
}

func assertConverged(result *Result, a Assertion) error {
	want := ""
	wantFrom := "site 1"
	if a.Equals != nil {
		want = *a.Equals
		wantFrom = "scenario"
	} else {
		want = result.Values[1]
	}
	for site := 1; site <= len(result.Values); site++ {
		if got := result.Values[site]; got != want {
			return &AssertionError{
				Type:     AssertConverged,
				Expected: fmt.Sprintf("all sites at %q (from %s)", want, wantFrom),
				Actual:   fmt.Sprintf("site %d at %q", site, got),
				Trace:    result.Trace,
			}
		}
	}
	return nil
}

func assertCemetery(result *Result, a Assertion) error {
	got := result.Cemeteries[a.Site]
	if got != a.Count {
		return &AssertionError{
			Type:     AssertCemetery,
			Expected: fmt.Sprintf("site %d cemetery count %d", a.Site, a.Count),
			Actual:   fmt.Sprintf("%d", got),
			Trace:    result.Trace,
		}
	}
	return nil
}

func assertLength(result *Result, a Assertion) error {
	got := utf8.RuneCountInString(result.Values[a.Site])
	if got != a.Count {
		return &AssertionError{
			Type:     AssertLength,
			Expected: fmt.Sprintf("site %d length %d", a.Site, a.Count),
			Actual:   fmt.Sprintf("%d (%q)", got, result.Values[a.Site]),
			Trace:    result.Trace,
		}
	}
	return nil
}
