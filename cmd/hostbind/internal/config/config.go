// Package config loads hostbind.toml and carries the CLI's global flags.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/pelletier/go-toml/v2"

	"github.com/broady/hostbind/bindgen"
)

// FileName is the default configuration file name.
const FileName = "hostbind.toml"

// Globals are the flags shared by every command.
type Globals struct {
	Verbose bool   `help:"Enable debug logging." short:"v"`
	Config  string `help:"Configuration file." default:"hostbind.toml" type:"path"`
}

// Logger returns a text logger on stderr, at debug level with --verbose.
func (g *Globals) Logger() *slog.Logger {
	return NewLogger(os.Stderr, g.Verbose)
}

// NewLogger returns a text logger writing to w.
func NewLogger(w io.Writer, verbose bool) *slog.Logger {
	level := slog.LevelInfo
	if verbose {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level}))
}

// Load reads the configuration file at path. A missing file yields an empty
// configuration. A relative dir in the file is resolved against the file's
// directory.
func Load(path string) (bindgen.Config, error) {
	var cfg bindgen.Config
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return cfg, nil
		}
		return cfg, fmt.Errorf("failed to read config file: %w", err)
	}

	dec := toml.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&cfg); err != nil {
		var serr *toml.StrictMissingError
		if errors.As(err, &serr) {
			return cfg, fmt.Errorf("%s: unknown keys:\n%s", path, serr.String())
		}
		var derr *toml.DecodeError
		if errors.As(err, &derr) {
			row, col := derr.Position()
			return cfg, fmt.Errorf("%s:%d:%d: %s", path, row, col, derr.Error())
		}
		return cfg, fmt.Errorf("failed to parse config file %s: %w", path, err)
	}

	if cfg.Dir != "" && !filepath.IsAbs(cfg.Dir) {
		cfg.Dir = filepath.Join(filepath.Dir(path), cfg.Dir)
	}
	return cfg, nil
}

// Save writes cfg to path. It refuses to overwrite an existing file.
func Save(path string, cfg bindgen.Config) error {
	data, err := toml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}
	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0644)
	if err != nil {
		return fmt.Errorf("failed to create config file: %w", err)
	}
	if _, err := f.Write(data); err != nil {
		f.Close()
		return fmt.Errorf("failed to write config file: %w", err)
	}
	return f.Close()
}

// Flags are the generation options a command line may override.
type Flags struct {
	Packages []string
	Suffix   string
	Marker   string
	Tags     []string
	Manifest bool
}

// Merge applies the flags that were set on top of cfg. Without packages from
// either source, the current directory is used.
func Merge(cfg bindgen.Config, f Flags) bindgen.Config {
	if len(f.Packages) > 0 {
		cfg.Packages = f.Packages
	}
	if len(cfg.Packages) == 0 {
		cfg.Packages = []string{"."}
	}
	if f.Suffix != "" {
		cfg.Suffix = f.Suffix
	}
	if f.Marker != "" {
		cfg.Marker = f.Marker
	}
	if len(f.Tags) > 0 {
		cfg.Tags = f.Tags
	}
	if f.Manifest {
		cfg.Manifest = true
	}
	return cfg
}
