package sim

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/weftworks/weft/internal/replica"
	"github.com/weftworks/weft/internal/store"
)

func TestRun_ConvergesWithoutDuplication(t *testing.T) {
	res, err := Run(Config{Sites: 4, Edits: 6, Seed: 1, SeedText: "hello collaborative world"}, nil)
	require.NoError(t, err)

	assert.True(t, res.Converged)
	require.Len(t, res.Values, 4)
	for _, v := range res.Values {
		assert.Equal(t, res.Values[0], v)
	}
	assert.Positive(t, res.Deliveries)
}

func TestRun_ConvergesUnderDuplication(t *testing.T) {
	res, err := Run(Config{Sites: 3, Edits: 5, Seed: 2, DupPercent: 40, SeedText: "duplicate me"}, nil)
	require.NoError(t, err)
	assert.True(t, res.Converged)
}

func TestRun_Deterministic(t *testing.T) {
	cfg := Config{Sites: 3, Edits: 4, Seed: 99, SeedText: "seeded"}
	a, err := Run(cfg, nil)
	require.NoError(t, err)
	b, err := Run(cfg, nil)
	require.NoError(t, err)

	assert.Equal(t, a.Values, b.Values)
	assert.Equal(t, a.Deliveries, b.Deliveries)
}

func TestRun_ManySeeds(t *testing.T) {
	for seed := int64(0); seed < 20; seed++ {
		res, err := Run(Config{Sites: 3, Edits: 4, Seed: seed, DupPercent: 25, SeedText: "stress"}, nil)
		require.NoError(t, err)
		assert.True(t, res.Converged, "seed %d diverged: %v", seed, res.Values)
	}
}

func TestRun_RecordsTrace(t *testing.T) {
	st, err := store.Open(":memory:")
	require.NoError(t, err)
	defer st.Close()

	res, err := Run(Config{Sites: 2, Edits: 3, Seed: 5, SeedText: "traced"}, st)
	require.NoError(t, err)

	deliveries, err := st.ReadDeliveries(res.RunID)
	require.NoError(t, err)
	require.Len(t, deliveries, res.Deliveries)
	for i, d := range deliveries {
		assert.Equal(t, int64(i), d.Step)
		assert.NotEqual(t, d.From, d.To)
		assert.NotEmpty(t, d.Hash)
	}
	// The last delivery leaves its recipient at a converged value.
	assert.Equal(t, res.Values[0], deliveries[len(deliveries)-1].Value)
}

func TestRun_RejectsBadConfig(t *testing.T) {
	_, err := Run(Config{Sites: 1, Edits: 1}, nil)
	assert.Error(t, err)

	_, err = Run(Config{Sites: 2, Edits: 1, DupPercent: 150}, nil)
	assert.Error(t, err)
}

func TestQueue_FIFO(t *testing.T) {
	q := NewQueue()
	_, ok := q.TryDequeue()
	assert.False(t, ok)

	q.Enqueue(replica.Envelope{Token: "a"})
	q.Enqueue(replica.Envelope{Token: "b"})
	assert.Equal(t, 2, q.Len())

	env, ok := q.TryDequeue()
	require.True(t, ok)
	assert.Equal(t, "a", env.Token)
	env, ok = q.TryDequeue()
	require.True(t, ok)
	assert.Equal(t, "b", env.Token)
	assert.Equal(t, 0, q.Len())
}

func TestRun_EmptySeedText(t *testing.T) {
	// Sites start from nothing and still converge on a heavy edit load.
	res, err := Run(Config{Sites: 2, Edits: 25, Seed: 3, SeedText: ""}, nil)
	require.NoError(t, err)
	assert.True(t, res.Converged)
}
