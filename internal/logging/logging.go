// Package logging constructs the activity logger. Events go to
// logs/app.log as JSON lines; verbose mode mirrors them to stderr in
// console form.
package logging

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/rs/zerolog"
)

const logDirName = "logs"

// New builds the application logger. baseDir is the directory the
// logs/ subdirectory is created under; empty means the current
// directory. When the log file cannot be opened logging degrades to
// stderr only rather than failing the run.
func New(baseDir string, verbose bool) zerolog.Logger {
	level := zerolog.InfoLevel
	if verbose {
		level = zerolog.DebugLevel
	}

	writers := make([]io.Writer, 0, 2)

	if file, err := openLogFile(baseDir); err == nil {
		writers = append(writers, file)
	} else {
		fmt.Fprintf(os.Stderr, "warning: could not open log file: %v\n", err)
	}

	if verbose || len(writers) == 0 {
		writers = append(writers, zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339})
	}

	logger := zerolog.New(zerolog.MultiLevelWriter(writers...)).
		Level(level).
		With().
		Timestamp().
		Logger()

	logger.Info().Msg("logger initialized")
	return logger
}

func openLogFile(baseDir string) (*os.File, error) {
	dir := filepath.Join(baseDir, logDirName)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, err
	}
	return os.OpenFile(filepath.Join(dir, "app.log"), os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0644)
}
