package cli

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// execute runs the root command with args and returns stdout.
func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := NewRootCommand()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func TestRootCommand(t *testing.T) {
	cmd := NewRootCommand()
	require.NotNil(t, cmd)
	assert.Equal(t, "weft", cmd.Use)
	assert.Contains(t, cmd.Long, "collaborative text")
}

func TestCommandPresence(t *testing.T) {
	cmd := NewRootCommand()
	commands := []string{"apply", "patch", "sim", "test", "trace"}

	for _, cmdName := range commands {
		t.Run(cmdName, func(t *testing.T) {
			subCmd, _, err := cmd.Find([]string{cmdName})
			require.NoError(t, err, "Command %s should exist", cmdName)
			require.NotNil(t, subCmd)
			assert.Equal(t, cmdName, subCmd.Name())
		})
	}
}

func TestGlobalFlags(t *testing.T) {
	cmd := NewRootCommand()

	verboseFlag := cmd.PersistentFlags().Lookup("verbose")
	require.NotNil(t, verboseFlag)
	assert.Equal(t, "v", verboseFlag.Shorthand)
	assert.Equal(t, "false", verboseFlag.DefValue)

	formatFlag := cmd.PersistentFlags().Lookup("format")
	require.NotNil(t, formatFlag)
	assert.Equal(t, "text", formatFlag.DefValue)
}

func TestApplyCommandFlags(t *testing.T) {
	cmd := NewRootCommand()
	applyCmd, _, err := cmd.Find([]string{"apply"})
	require.NoError(t, err)

	assert.NotNil(t, applyCmd.Flags().Lookup("seed"))
	assert.NotNil(t, applyCmd.Flags().Lookup("index"))
	assert.NotNil(t, applyCmd.Flags().Lookup("remove"))
	assert.NotNil(t, applyCmd.Flags().Lookup("text"))
	assert.NotNil(t, applyCmd.Flags().Lookup("out"))

	siteFlag := applyCmd.Flags().Lookup("site")
	require.NotNil(t, siteFlag)
	assert.Equal(t, "1", siteFlag.DefValue)
}

func TestPatchCommandFlags(t *testing.T) {
	cmd := NewRootCommand()
	patchCmd, _, err := cmd.Find([]string{"patch"})
	require.NoError(t, err)

	assert.NotNil(t, patchCmd.Flags().Lookup("envelope"))

	siteFlag := patchCmd.Flags().Lookup("site")
	require.NotNil(t, siteFlag)
	assert.Equal(t, "2", siteFlag.DefValue)
}

func TestSimCommandFlags(t *testing.T) {
	cmd := NewRootCommand()
	simCmd, _, err := cmd.Find([]string{"sim"})
	require.NoError(t, err)

	assert.NotNil(t, simCmd.Flags().Lookup("sites"))
	assert.NotNil(t, simCmd.Flags().Lookup("edits"))
	assert.NotNil(t, simCmd.Flags().Lookup("seed"))
	assert.NotNil(t, simCmd.Flags().Lookup("dup"))
	assert.NotNil(t, simCmd.Flags().Lookup("db"))
}

func TestTestCommandFlags(t *testing.T) {
	cmd := NewRootCommand()
	testCmd, _, err := cmd.Find([]string{"test"})
	require.NoError(t, err)

	assert.NotNil(t, testCmd.Flags().Lookup("filter"))
}

func TestTraceCommandFlags(t *testing.T) {
	cmd := NewRootCommand()
	traceCmd, _, err := cmd.Find([]string{"trace"})
	require.NoError(t, err)

	assert.NotNil(t, traceCmd.Flags().Lookup("db"))
	assert.NotNil(t, traceCmd.Flags().Lookup("run"))
}

func TestFormatValidation(t *testing.T) {
	assert.True(t, isValidFormat("text"))
	assert.True(t, isValidFormat("json"))

	assert.False(t, isValidFormat("xml"))
	assert.False(t, isValidFormat(""))
	assert.False(t, isValidFormat("TEXT"))
}

func TestFormatValidationIntegration(t *testing.T) {
	_, err := execute(t, "--format", "invalid", "apply", "--text", "x")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid format")
}
