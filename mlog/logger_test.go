package mlog

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLevel(t *testing.T) {
	assert.Equal(t, DebugLevel, ParseLevel("DEBUG", InfoLevel))
	assert.Equal(t, WarnLevel, ParseLevel(" warning ", InfoLevel))
	assert.Equal(t, InfoLevel, ParseLevel("bogus", InfoLevel))
	assert.Equal(t, "trace", TraceLevel.String())
}

func TestNoLoggerIsNoop(t *testing.T) {
	SetLogger(nil)
	assert.False(t, IsLevelEnabled(FatalLevel))
	Debugf("dropped %d", 1)
	Warnf("dropped %d", 2)
}

func TestWriterLogger(t *testing.T) {
	var buf bytes.Buffer
	SetLogger(newWriterLogger(&buf, InfoLevel))
	defer SetLogger(nil)

	Debugf("hidden %d", 1)
	Infof("shown %d", 2)
	Warnf("warned %s", "x")

	out := buf.String()
	assert.NotContains(t, out, "hidden")
	assert.Contains(t, out, "[info] shown 2")
	assert.Contains(t, out, "[warn] warned x")
	assert.True(t, IsLevelEnabled(InfoLevel))
	assert.False(t, IsLevelEnabled(DebugLevel))
}

func TestZerolog(t *testing.T) {
	var buf bytes.Buffer
	UseZerolog(&buf, DebugLevel, false)
	defer SetLogger(nil)

	Tracef("hidden")
	Debugf("tick %d", 7)
	current().Notice("noted")

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 2)

	var first map[string]any
	require.NoError(t, json.Unmarshal([]byte(lines[0]), &first))
	assert.Equal(t, "debug", first["level"])
	assert.Equal(t, "tick 7", first["message"])

	var second map[string]any
	require.NoError(t, json.Unmarshal([]byte(lines[1]), &second))
	assert.Equal(t, "info", second["level"])
	assert.Equal(t, true, second["notice"])
}
