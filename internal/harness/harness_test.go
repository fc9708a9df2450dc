package harness

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func str(s string) *string { return &s }

func TestRun_EditAndDeliver(t *testing.T) {
	scenario := &Scenario{
		Name:        "edit-deliver",
		Description: "one edit reaches the peer",
		SeedText:    "hello",
		Sites:       2,
		Steps: []Step{
			{Site: 1, Edit: &EditSpec{Index: 5, Text: "!"}},
			{Deliver: &DeliverSpec{From: 1, To: 2}},
		},
		Assertions: []Assertion{
			{Type: AssertConverged, Equals: str("hello!")},
		},
	}

	result, err := Run(scenario)
	require.NoError(t, err)

	assert.True(t, result.Pass)
	assert.Equal(t, "hello!", result.Values[1])
	assert.Equal(t, "hello!", result.Values[2])
	require.Len(t, result.Trace, 2)
	assert.Equal(t, EventEdit, result.Trace[0].Type)
	assert.Equal(t, "site1-1", result.Trace[0].Token)
	assert.Equal(t, EventDelivery, result.Trace[1].Type)
	assert.Equal(t, 2, result.Trace[1].Site)
	assert.Equal(t, 1, result.Trace[1].From)
}

func TestRun_DeliverFromEmptyMailbox(t *testing.T) {
	scenario := &Scenario{
		Name:        "empty-mailbox",
		Description: "delivering with nothing pending is a step error",
		Sites:       2,
		Steps: []Step{
			{Deliver: &DeliverSpec{From: 1, To: 2}},
		},
		Assertions: []Assertion{{Type: AssertConverged}},
	}

	_, err := Run(scenario)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no pending envelope")
}

func TestRun_MailboxesAreOrderedPerPair(t *testing.T) {
	// Two edits by site 1 arrive at site 2 in edit order even when other
	// deliveries interleave.
	scenario := &Scenario{
		Name:        "fifo-pair",
		Description: "per-pair delivery preserves edit order",
		SeedText:    "x",
		Sites:       3,
		Steps: []Step{
			{Site: 1, Edit: &EditSpec{Index: 1, Text: "a"}},
			{Site: 1, Edit: &EditSpec{Index: 2, Text: "b"}},
			{Deliver: &DeliverSpec{From: 1, To: 2}},
			{Deliver: &DeliverSpec{From: 1, To: 3}},
			{Deliver: &DeliverSpec{From: 1, To: 2}},
			{Deliver: &DeliverSpec{From: 1, To: 3}},
		},
		Assertions: []Assertion{
			{Type: AssertConverged, Equals: str("xab")},
		},
	}

	result, err := Run(scenario)
	require.NoError(t, err)
	require.True(t, result.Pass, "errors: %v", result.Errors)

	assert.Equal(t, "site1-1", result.Trace[2].Token)
	assert.Equal(t, "site1-2", result.Trace[4].Token)
}

func TestRun_FailedAssertionDoesNotAbort(t *testing.T) {
	scenario := &Scenario{
		Name:        "failing",
		Description: "a wrong expectation fails the result, not the run",
		SeedText:    "ab",
		Sites:       2,
		Steps: []Step{
			{Site: 1, Edit: &EditSpec{Index: 0, Remove: 1}},
			{DeliverAll: true},
		},
		Assertions: []Assertion{
			{Type: AssertValue, Site: 1, Equals: str("ab")},
			{Type: AssertConverged},
		},
	}

	result, err := Run(scenario)
	require.NoError(t, err)

	assert.False(t, result.Pass)
	require.Len(t, result.Errors, 1)
	assert.Contains(t, result.Errors[0], "assertion failed: value")
}

func TestRun_DuplicateDelivery(t *testing.T) {
	scenario := &Scenario{
		Name:        "dup",
		Description: "a duplicated removal converges with tombstone residue",
		SeedText:    "ab",
		Sites:       2,
		Steps: []Step{
			{Site: 1, Edit: &EditSpec{Index: 0, Remove: 1}},
			{Deliver: &DeliverSpec{From: 1, To: 2, Duplicate: true}},
		},
		Assertions: []Assertion{
			{Type: AssertConverged, Equals: str("b")},
			{Type: AssertCemetery, Site: 2, Count: 1},
		},
	}

	result, err := Run(scenario)
	require.NoError(t, err)
	require.True(t, result.Pass, "errors: %v", result.Errors)

	// Both applications appear in the trace under the same token.
	require.Len(t, result.Trace, 3)
	assert.Equal(t, result.Trace[1].Token, result.Trace[2].Token)
}

func TestRun_SeedTextSharedWithoutDelivery(t *testing.T) {
	scenario := &Scenario{
		Name:        "seeded",
		Description: "all sites start from the seed content",
		SeedText:    "common",
		Sites:       3,
		Steps: []Step{
			{Site: 2, Edit: &EditSpec{Index: 0, Text: "!"}},
			{DeliverAll: true},
		},
		Assertions: []Assertion{
			{Type: AssertConverged, Equals: str("!common")},
			{Type: AssertLength, Site: 3, Count: 7},
		},
	}

	result, err := Run(scenario)
	require.NoError(t, err)
	assert.True(t, result.Pass, "errors: %v", result.Errors)
}
