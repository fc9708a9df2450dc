package cli

import (
	"encoding/json"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/weftworks/weft/internal/store"
)

// recordedRun runs a small simulation into a fresh database and returns
// the database path and run id.
func recordedRun(t *testing.T) (string, string) {
	t.Helper()
	dbPath := filepath.Join(t.TempDir(), "trace.db")
	_, err := execute(t, "sim", "--sites", "2", "--edits", "3", "--seed", "9", "--db", dbPath)
	require.NoError(t, err)

	st, err := store.Open(dbPath)
	require.NoError(t, err)
	defer st.Close()
	runs, err := st.Runs()
	require.NoError(t, err)
	require.Len(t, runs, 1)
	return dbPath, runs[0]
}

func TestTrace_ListRuns(t *testing.T) {
	dbPath, runID := recordedRun(t)

	out, err := execute(t, "trace", "--db", dbPath)
	require.NoError(t, err)
	assert.Equal(t, runID, strings.TrimSpace(out))
}

func TestTrace_ShowRun(t *testing.T) {
	dbPath, runID := recordedRun(t)

	out, err := execute(t, "trace", "--db", dbPath, "--run", runID)
	require.NoError(t, err)

	assert.Contains(t, out, "run "+runID)
	assert.Contains(t, out, "[0]")
	assert.Contains(t, out, "site 1 <- site 2")
}

func TestTrace_ShowRunJSON(t *testing.T) {
	dbPath, runID := recordedRun(t)

	out, err := execute(t, "--format", "json", "trace", "--db", dbPath, "--run", runID)
	require.NoError(t, err)

	var response struct {
		Status string      `json:"status"`
		Data   TraceResult `json:"data"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &response))

	assert.Equal(t, "ok", response.Status)
	assert.Equal(t, runID, response.Data.RunID)
	require.NotEmpty(t, response.Data.Deliveries)
	assert.Equal(t, int64(0), response.Data.Deliveries[0].Step)
}

func TestTrace_UnknownRun(t *testing.T) {
	dbPath, _ := recordedRun(t)

	_, err := execute(t, "trace", "--db", dbPath, "--run", "nope")
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
}

func TestTrace_EmptyDatabase(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "empty.db")
	st, err := store.Open(dbPath)
	require.NoError(t, err)
	require.NoError(t, st.Close())

	out, err := execute(t, "trace", "--db", dbPath)
	require.NoError(t, err)
	assert.Contains(t, out, "No runs recorded")
}
