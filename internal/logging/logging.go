// Package logging builds the zerolog logger shared by the simulation: a
// console writer for interactive use, a session log file, and an optional
// GELF sink for centralized collection.
package logging

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/Graylog2/go-gelf/gelf"
	"github.com/rs/zerolog"
)

// Config describes the logging targets.
type Config struct {
	Level          string
	LogsDir        string
	Console        bool
	GraylogEnabled bool
	GraylogAddress string
}

// LogFilePath builds a log file path using OS-appropriate path separators.
func LogFilePath(logsDir, appName string, sessionStart time.Time) string {
	return filepath.Join(
		logsDir,
		fmt.Sprintf("%s.%s.log", appName, sessionStart.Format("20060102_150405")),
	)
}

func parseLevel(level string) zerolog.Level {
	switch strings.ToLower(level) {
	case "debug":
		return zerolog.DebugLevel
	case "info":
		return zerolog.InfoLevel
	case "warn":
		return zerolog.WarnLevel
	case "error":
		return zerolog.ErrorLevel
	default:
		return zerolog.InfoLevel
	}
}

// Setup opens the session log file and assembles the logger. The returned
// closer flushes and closes every sink; callers defer it at startup.
func Setup(cfg Config, appName string) (zerolog.Logger, func(), error) {
	var writers []io.Writer
	var closers []io.Closer

	if cfg.Console {
		writers = append(writers, zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339})
	}

	if cfg.LogsDir != "" {
		if err := os.MkdirAll(cfg.LogsDir, 0o755); err != nil {
			return zerolog.Nop(), nil, fmt.Errorf("create logs dir: %w", err)
		}
		f, err := os.OpenFile(
			LogFilePath(cfg.LogsDir, appName, time.Now()),
			os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644,
		)
		if err != nil {
			return zerolog.Nop(), nil, fmt.Errorf("open log file: %w", err)
		}
		writers = append(writers, f)
		closers = append(closers, f)
	}

	if cfg.GraylogEnabled {
		gw, err := gelf.NewWriter(cfg.GraylogAddress)
		if err != nil {
			return zerolog.Nop(), nil, fmt.Errorf("connect graylog: %w", err)
		}
		writers = append(writers, gw)
		closers = append(closers, gw)
	}

	if len(writers) == 0 {
		writers = append(writers, io.Discard)
	}

	log := zerolog.New(zerolog.MultiLevelWriter(writers...)).
		Level(parseLevel(cfg.Level)).
		With().Timestamp().Str("app", appName).Logger()

	closeAll := func() {
		for _, c := range closers {
			c.Close()
		}
	}
	return log, closeAll, nil
}
