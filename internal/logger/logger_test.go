package logger

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInitWritesToFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "logs", "harvester.log")

	require.NoError(t, Init(Config{Level: "debug", Output: path}))
	Component("test").Info().Str("url", "https://example.com").Msg("processed")

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"component":"test"`)
	assert.Contains(t, string(data), `"message":"processed"`)
}

func TestOpenOutputStandardStreams(t *testing.T) {
	w, err := openOutput("stderr")
	require.NoError(t, err)
	assert.Equal(t, os.Stderr, w)

	w, err = openOutput("")
	require.NoError(t, err)
	assert.Equal(t, os.Stdout, w)
}
