package cli_test

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vk/kord/internal/cli"
)

func TestParseDefaults(t *testing.T) {
	t.Parallel()
	out := &bytes.Buffer{}

	config, shouldExit, err := cli.Parse([]string{"addone"}, out)
	require.NoError(t, err)
	require.False(t, shouldExit)

	assert.Equal(t, "addone", config.Definition)
	assert.Equal(t, "text", config.LogFormat)
	assert.Equal(t, "warn", config.LogLevel)
	assert.False(t, config.Inverse)
	assert.False(t, config.Roundtrip)
	assert.Empty(t, config.ResourcePaths)
}

func TestParsePositionalDefinitionJoinsArguments(t *testing.T) {
	t.Parallel()
	out := &bytes.Buffer{}

	// An unquoted pipeline arrives as several arguments
	config, _, err := cli.Parse([]string{"geo:in", "|", "cart", "|", "geo:out"}, out)
	require.NoError(t, err)
	assert.Equal(t, "geo:in | cart | geo:out", config.Definition)
}

func TestParseFlags(t *testing.T) {
	t.Parallel()
	out := &bytes.Buffer{}

	config, _, err := cli.Parse([]string{
		"-inv",
		"-deg",
		"-resources", "/tmp/a",
		"-resources", "/tmp/b",
		"-log-level", "debug",
		"-log-format", "json",
		"-d", "helmert x=1",
	}, out)
	require.NoError(t, err)

	assert.True(t, config.Inverse)
	assert.True(t, config.Degrees)
	assert.Equal(t, []string{"/tmp/a", "/tmp/b"}, config.ResourcePaths)
	assert.Equal(t, "debug", config.LogLevel)
	assert.Equal(t, "json", config.LogFormat)
	assert.Equal(t, "helmert x=1", config.Definition)
}

func TestParseUsage(t *testing.T) {
	t.Parallel()
	out := &bytes.Buffer{}

	// No definition: print usage, exit cleanly
	_, shouldExit, err := cli.Parse(nil, out)
	require.NoError(t, err)
	assert.True(t, shouldExit)
	assert.Contains(t, out.String(), "Usage:")

	// Explicit help behaves the same
	out.Reset()
	_, shouldExit, err = cli.Parse([]string{"-h"}, out)
	require.NoError(t, err)
	assert.True(t, shouldExit)
}

func TestParseErrors(t *testing.T) {
	t.Parallel()

	cases := [][]string{
		{"-log-level", "loud", "addone"},
		{"-log-format", "xml", "addone"},
		{"-inv", "-roundtrip", "addone"},
		{"-no-such-flag"},
	}
	for _, args := range cases {
		out := &bytes.Buffer{}
		_, _, err := cli.Parse(args, out)
		require.Error(t, err, "%v", args)

		exitErr, ok := err.(*cli.ExitError)
		require.True(t, ok, "%v", args)
		assert.Equal(t, 2, exitErr.Code)
	}
}
