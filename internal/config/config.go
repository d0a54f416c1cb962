// Package config handles application configuration and command-line argument parsing.
package config

import (
	"errors"
	"fmt"
	"path/filepath"

	"github.com/alexflint/go-arg"

	"github.com/joe/file-modifier/internal/engine"
	"github.com/joe/file-modifier/pkg/filesystem"
)

// Exported errors.
var (
	ErrTargetRequired      = errors.New("target path is required")
	ErrDestinationRequired = errors.New("destination (--dest) is required for move and copy")
	ErrInvalidConcurrency  = errors.New("--max-concurrent must be at least 1")
	ErrInvalidExclude      = errors.New("invalid --exclude pattern")
)

// OperationKind is the operation named on the command line.
type OperationKind engine.Kind

// String returns the string representation of OperationKind
func (k OperationKind) String() string {
	return engine.Kind(k).String()
}

// UnmarshalText implements encoding.TextUnmarshaler for go-arg
func (k *OperationKind) UnmarshalText(text []byte) error {
	parsed, err := engine.ParseKind(string(text))
	if err != nil {
		return fmt.Errorf("%w (valid: move, copy, delete, mkdir, encrypt, decrypt)", err)
	}

	*k = OperationKind(parsed)

	return nil
}

// Config holds the application configuration
type Config struct {
	Operation     OperationKind `arg:"positional,required" help:"Operation to run: move|copy|delete|mkdir|encrypt|decrypt (aliases: mv|cp|rm)"`
	Target        string        `arg:"positional,required" help:"File or folder to operate on; the parent folder for mkdir. Local path or sftp://user@host[:port]/path"`
	Dest          string        `arg:"-d,--dest" help:"Destination folder for move/copy, output folder for encrypt/decrypt"`
	Name          string        `arg:"-n,--name" help:"New name for the moved/copied entry, or the folder to create"`
	Password      string        `arg:"--password,env:FILE_MODIFIER_PASSWORD" help:"Password for encrypt/decrypt (asked for when missing)"`
	Output        string        `arg:"-o,--output" help:"Output file name for encrypt/decrypt"`
	Exclude       string        `arg:"--exclude" help:"Glob of entries to leave out of folder moves and copies, e.g. '*.tmp'"`
	MaxConcurrent int64         `arg:"--max-concurrent" default:"1" help:"Number of operations allowed to execute at once"`
	Verbosity     int           `arg:"-v,--verbosity" default:"0" help:"Log verbosity: 0 warn, 1 info, 2 debug, 3 trace"`
	LogFile       string        `arg:"--log-file" help:"Log file path ('-' disables file logging)"`
	NoTUI         bool          `arg:"--no-tui" help:"Ask questions on the plain terminal instead of the full-screen UI"`
	AssumeYes     bool          `arg:"-y,--yes" help:"Overwrite existing destinations without asking"`
}

// Description returns the program description for go-arg
func (Config) Description() string {
	return "Move, copy, delete, create, encrypt and decrypt files and folders with progress and conflict prompts"
}

// Version returns the version string for go-arg
func (Config) Version() string {
	return "file-modifier 1.0.0"
}

// Kind returns the engine kind for the configured operation.
func (cfg *Config) Kind() engine.Kind {
	return engine.Kind(cfg.Operation)
}

// ParseFlags parses command-line flags and returns configuration
func ParseFlags() (*Config, error) {
	cfg := &Config{
		MaxConcurrent: 1,
	}

	arg.MustParse(cfg)

	return PostProcessConfig(cfg)
}

// PostProcessConfig applies post-processing logic to a parsed config
func PostProcessConfig(cfg *Config) (*Config, error) {
	if cfg.Target == "" {
		return nil, ErrTargetRequired
	}

	target, err := normalizePath(cfg.Target)
	if err != nil {
		return nil, fmt.Errorf("invalid target: %w", err)
	}

	cfg.Target = target

	// a plain destination next to a remote target names a path on that remote
	if cfg.Dest != "" && !filesystem.IsRemotePath(cfg.Target) {
		dest, err := normalizePath(cfg.Dest)
		if err != nil {
			return nil, fmt.Errorf("invalid destination: %w", err)
		}

		cfg.Dest = dest
	}

	if (cfg.Kind() == engine.KindMove || cfg.Kind() == engine.KindCopy) && cfg.Dest == "" {
		return nil, ErrDestinationRequired
	}

	if cfg.MaxConcurrent < 1 {
		return nil, ErrInvalidConcurrency
	}

	if !engine.NewGlobFilter(cfg.Exclude).Valid() {
		return nil, fmt.Errorf("%w: %q", ErrInvalidExclude, cfg.Exclude)
	}

	return cfg, nil
}

// ToRequest converts the configuration into an engine request. Only options
// that were given become params.
func (cfg *Config) ToRequest() engine.Request {
	params := engine.Params{}

	set := func(key, value string) {
		if value != "" {
			params[key] = value
		}
	}

	set(engine.ParamDestinationDirectory, cfg.Dest)
	set(engine.ParamNewName, cfg.Name)
	set(engine.ParamEncryptionPassword, cfg.Password)
	set(engine.ParamOutputFileName, cfg.Output)
	set(engine.ParamExcludePattern, cfg.Exclude)

	return engine.Request{
		Target: cfg.Target,
		Kind:   cfg.Kind(),
		Params: params,
	}
}

// normalizePath validates SFTP URLs and makes local paths absolute.
func normalizePath(path string) (string, error) {
	parsed, err := filesystem.ParsePath(path)
	if err != nil {
		return "", err //nolint:wrapcheck // already descriptive
	}

	if parsed.IsRemote {
		return path, nil
	}

	abs, err := filepath.Abs(parsed.LocalPath)
	if err != nil {
		return "", fmt.Errorf("cannot resolve %s: %w", path, err)
	}

	return abs, nil
}
