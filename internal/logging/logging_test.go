package logging

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestLogToWriter(t *testing.T) {
	buf := &bytes.Buffer{}
	l, err := New().FromWriter(buf).Level("debug").Make()
	require.NoError(t, err)
	require.Equal(t, 0, buf.Len())

	l.Logger.Debug().Str("ws", "corpus").Msg("saved")

	var line struct {
		Level string `json:"level"`
		Msg   string `json:"message"`
		WS    string `json:"ws"`
	}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &line))
	require.Equal(t, "debug", line.Level)
	require.Equal(t, "saved", line.Msg)
	require.Equal(t, "corpus", line.WS)
}

func TestLevelFilters(t *testing.T) {
	buf := &bytes.Buffer{}
	l, err := New().FromWriter(buf).Level("warn").Make()
	require.NoError(t, err)
	l.Logger.Info().Msg("hidden")
	require.Equal(t, 0, buf.Len())
	l.Logger.Warn().Msg("shown")
	require.Contains(t, buf.String(), "shown")
}

func TestBadLevel(t *testing.T) {
	_, err := New().Level("loud").Make()
	require.Error(t, err)
}

func TestLogToFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "workbench.log")
	l, err := New().FromPath(path).Make()
	require.NoError(t, err)
	l.Logger.Info().Msg("to file")
	require.NoError(t, l.Close())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	require.Contains(t, string(data), "to file")
}
