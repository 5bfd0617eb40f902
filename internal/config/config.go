// Package config loads run settings from YAML and turns them into solver
// options and a logger.
package config

import (
	"bytes"
	"io"
	"log/slog"
	"os"
	"slices"
	"strings"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"

	"github.com/vhavlena/cegis-go/cegis"
	"github.com/vhavlena/cegis-go/smt"
)

// FairnessAuto picks the fairness mode each problem declares.
const FairnessAuto = "auto"

// Backends names the accepted backend values.
var Backends = []string{"finite", "z3"}

// Log configures the slog handler.
type Log struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// Config is the on-disk configuration.
type Config struct {
	Fairness  string `yaml:"fairness"`
	MaxRounds int    `yaml:"max_rounds"`
	Backend   string `yaml:"backend"`
	Log       Log    `yaml:"log"`
}

// Default returns the settings used when no file is given.
func Default() Config {
	return Config{
		Fairness:  FairnessAuto,
		MaxRounds: smt.DefaultOptions().MaxRounds,
		Backend:   "finite",
		Log:       Log{Level: "info", Format: "text"},
	}
}

// Load reads and validates the file at path. Keys missing from the file keep
// their defaults.
func Load(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, errors.Wrap(err, "read config")
	}
	cfg, err := Parse(data)
	if err != nil {
		return Config{}, errors.Wrapf(err, "config %s", path)
	}
	return cfg, nil
}

// Parse decodes YAML over the defaults. Unknown keys are rejected.
func Parse(data []byte) (Config, error) {
	cfg := Default()
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&cfg); err != nil && err != io.EOF {
		return Config{}, errors.Wrap(err, "decode")
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks every field.
func (c Config) Validate() error {
	if c.Fairness != FairnessAuto {
		if _, err := cegis.ParseFairnessMode(c.Fairness); err != nil {
			return errors.Wrap(err, "fairness")
		}
	}
	if c.MaxRounds < 0 {
		return errors.Errorf("max_rounds must not be negative, got %d", c.MaxRounds)
	}
	if !slices.Contains(Backends, c.Backend) {
		return errors.Errorf("backend must be one of %s, got %q", strings.Join(Backends, ", "), c.Backend)
	}
	if _, err := parseLevel(c.Log.Level); err != nil {
		return err
	}
	if c.Log.Format != "text" && c.Log.Format != "json" {
		return errors.Errorf("log format must be text or json, got %q", c.Log.Format)
	}
	return nil
}

// FairnessFor resolves the fairness mode for a problem that declares def.
func (c Config) FairnessFor(def cegis.FairnessMode) cegis.FairnessMode {
	if c.Fairness == FairnessAuto {
		return def
	}
	mode, err := cegis.ParseFairnessMode(c.Fairness)
	if err != nil {
		return def
	}
	return mode
}

// Options builds solver options for a problem that declares def.
func (c Config) Options(def cegis.FairnessMode, log *slog.Logger) smt.Options {
	opts := smt.DefaultOptions()
	opts.MaxRounds = c.MaxRounds
	opts.Engine.Fairness = c.FairnessFor(def)
	opts.Engine.Logger = log
	opts.Logger = log
	return opts
}

// NewLogger returns a logger writing to w in the configured format.
func (c Config) NewLogger(w io.Writer) (*slog.Logger, error) {
	level, err := parseLevel(c.Log.Level)
	if err != nil {
		return nil, err
	}
	hopts := &slog.HandlerOptions{Level: level}
	if c.Log.Format == "json" {
		return slog.New(slog.NewJSONHandler(w, hopts)), nil
	}
	return slog.New(slog.NewTextHandler(w, hopts)), nil
}

func parseLevel(s string) (slog.Level, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(s)); err != nil {
		return 0, errors.Errorf("unknown log level %q", s)
	}
	return level, nil
}
