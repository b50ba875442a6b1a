package logging

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLogFilePath(t *testing.T) {
	start := time.Date(2026, 3, 14, 9, 26, 53, 0, time.UTC)
	got := LogFilePath("logs", "vehsim", start)
	assert.Equal(t, filepath.Join("logs", "vehsim.20260314_092653.log"), got)
}

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in   string
		want zerolog.Level
	}{
		{"debug", zerolog.DebugLevel},
		{"INFO", zerolog.InfoLevel},
		{"warn", zerolog.WarnLevel},
		{"error", zerolog.ErrorLevel},
		{"bogus", zerolog.InfoLevel},
		{"", zerolog.InfoLevel},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, parseLevel(tt.in))
		})
	}
}

func TestSetup_WritesToFile(t *testing.T) {
	dir := t.TempDir()
	log, closeAll, err := Setup(Config{Level: "debug", LogsDir: dir}, "vehsim")
	require.NoError(t, err)

	log.Info().Str("k", "v").Msg("hello")
	closeAll()

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	require.Len(t, entries, 1)

	data, err := os.ReadFile(filepath.Join(dir, entries[0].Name()))
	require.NoError(t, err)
	assert.Contains(t, string(data), `"hello"`)
	assert.Contains(t, string(data), `"app":"vehsim"`)
}

func TestSetup_NoSinks(t *testing.T) {
	log, closeAll, err := Setup(Config{Level: "info"}, "vehsim")
	require.NoError(t, err)
	defer closeAll()

	// Must not panic with every sink disabled.
	log.Info().Msg("discarded")
}
