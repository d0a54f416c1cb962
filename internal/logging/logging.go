// Package logging builds the zerolog logger shared by the CLI, the engine and the TUI.
package logging

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/rs/zerolog"
)

const appName = "file-modifier"

// Options selects where log lines go.
type Options struct {
	// Verbosity selects the level: 0 warn, 1 info, 2 debug, 3+ trace.
	Verbosity int
	// LogFile overrides the default log file path. "-" disables the file.
	LogFile string
	// Console receives human-readable output; nil disables it.
	Console io.Writer
}

// Setup returns a logger writing to the console and the log file, and a
// function that closes the file.
func Setup(opts Options) (zerolog.Logger, func() error, error) {
	var writers []io.Writer

	if opts.Console != nil {
		writers = append(writers, zerolog.ConsoleWriter{
			Out:        opts.Console,
			TimeFormat: time.Kitchen,
		})
	}

	closeFn := func() error { return nil }

	path := opts.LogFile
	if path == "" {
		path = DefaultLogFilePath()
	}

	var fileErr error

	if path != "-" {
		file, err := openLogFile(path)
		if err == nil {
			writers = append(writers, file)
			closeFn = file.Close
		} else {
			fileErr = err
		}
	}

	logger := zerolog.New(io.MultiWriter(writers...)).
		Level(LevelFor(opts.Verbosity)).
		With().Timestamp().Logger()

	if opts.Verbosity >= 2 {
		logger = logger.With().Caller().Logger()
	}

	if fileErr != nil {
		logger.Warn().Err(fileErr).Str("path", path).Msg("Failed to create log file, logging to console only")
	}

	logger.Debug().Int("verbosity", opts.Verbosity).Str("logFile", path).Msg("Logger initialized")

	return logger, closeFn, fileErr
}

// LevelFor maps a -v count to a level.
func LevelFor(verbosity int) zerolog.Level {
	switch {
	case verbosity <= 0:
		return zerolog.WarnLevel
	case verbosity == 1:
		return zerolog.InfoLevel
	case verbosity == 2:
		return zerolog.DebugLevel
	default:
		return zerolog.TraceLevel
	}
}

// Component returns a child logger tagged with the component name.
func Component(logger zerolog.Logger, name string) zerolog.Logger {
	return logger.With().Str("component", name).Logger()
}

// DefaultLogFilePath respects XDG_STATE_HOME, falling back to ~/.local/state.
func DefaultLogFilePath() string {
	stateHome := os.Getenv("XDG_STATE_HOME")
	if stateHome == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return appName + ".log"
		}

		stateHome = filepath.Join(home, ".local", "state")
	}

	return filepath.Join(stateHome, appName, appName+".log")
}

func openLogFile(path string) (*os.File, error) {
	err := os.MkdirAll(filepath.Dir(path), 0o750)
	if err != nil {
		return nil, fmt.Errorf("failed to create log directory: %w", err)
	}

	file, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o600) //nolint:gosec // user-chosen log path
	if err != nil {
		return nil, fmt.Errorf("failed to open log file: %w", err)
	}

	return file, nil
}
