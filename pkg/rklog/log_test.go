package rklog

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInitJSONOutputWritesParseableLines(t *testing.T) {
	var buf bytes.Buffer
	Init(Config{Level: InfoLevel, JSONOutput: true, Output: &buf})

	WithComponent("mount").Info().Msg("mounted boot partition")

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "mount", entry["component"])
	assert.Equal(t, "mounted boot partition", entry["message"])
}

func TestWithServiceAndBootIDTagFields(t *testing.T) {
	var buf bytes.Buffer
	Init(Config{Level: DebugLevel, JSONOutput: true, Output: &buf})

	WithService("hello").Info().Msg("spawned")
	WithBootID("abc").Info().Msg("booting")

	dec := json.NewDecoder(&buf)
	var svcEntry, bootEntry map[string]any
	require.NoError(t, dec.Decode(&svcEntry))
	require.NoError(t, dec.Decode(&bootEntry))
	assert.Equal(t, "hello", svcEntry["service"])
	assert.Equal(t, "abc", bootEntry["boot_id"])
}

func TestDebugLevelSuppressedWhenConfiguredAsInfo(t *testing.T) {
	var buf bytes.Buffer
	Init(Config{Level: InfoLevel, JSONOutput: true, Output: &buf})

	Logger.Debug().Msg("should not appear")

	assert.Empty(t, buf.String())
}
