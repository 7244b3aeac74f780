package logger

import (
	"bytes"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func capture(t *testing.T) *bytes.Buffer {
	t.Helper()
	var buf bytes.Buffer
	SetOutput(&buf)
	t.Cleanup(func() {
		SetVerbose(false)
		SetTimestamps(false)
		SetOutput(os.Stderr)
		now = time.Now
	})
	return &buf
}

func TestSetVerbose(t *testing.T) {
	capture(t)

	SetVerbose(false)
	assert.False(t, IsVerbose())
	assert.Equal(t, LevelWarn, GetLevel())

	SetVerbose(true)
	assert.True(t, IsVerbose())
	assert.Equal(t, LevelDebug, GetLevel())
}

func TestQuietMode_OnlyWarningsAndErrors(t *testing.T) {
	buf := capture(t)
	SetVerbose(false)

	Debug("debug %d", 1)
	Info("info %d", 2)
	Section("Retrieval")
	Warn("warn %d", 3)
	Error("error %d", 4)

	assert.Equal(t, "[WARN] warn 3\n[ERROR] error 4\n", buf.String())
}

func TestVerboseMode_WritesEverything(t *testing.T) {
	buf := capture(t)
	SetVerbose(true)

	Section("Retrieval")
	Debug("candidates: %d", 5)
	Info("accepted: %d", 2)

	assert.Equal(t, "\n=== Retrieval ===\n[DEBUG] candidates: 5\n[INFO] accepted: 2\n", buf.String())
}

func TestSetLevel_Info(t *testing.T) {
	buf := capture(t)
	SetLevel(LevelInfo)

	Debug("hidden")
	Info("shown")

	assert.Equal(t, "[INFO] shown\n", buf.String())
	assert.False(t, IsVerbose())
}

func TestTimestamps(t *testing.T) {
	buf := capture(t)
	now = func() time.Time { return time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC) }
	SetTimestamps(true)

	Warn("disk almost full")

	assert.Equal(t, "2026-03-01T12:00:00Z [WARN] disk almost full\n", buf.String())
}

func TestParseLevel(t *testing.T) {
	tests := map[string]Level{
		"debug":   LevelDebug,
		"INFO":    LevelInfo,
		"warning": LevelWarn,
		" error ": LevelError,
	}
	for in, want := range tests {
		got, err := ParseLevel(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got, in)
	}

	_, err := ParseLevel("loud")
	assert.Error(t, err)
}
