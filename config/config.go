package config

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"

	"quantum-chess/engine"
)

// ErrInvalidConfig wraps every configuration value that cannot be parsed.
var ErrInvalidConfig = errors.New("invalid configuration")

type Config struct {
	Logs   LogConfig
	Engine EngineConfig
}

type LogConfig struct {
	Style string // console or json
	Level string
}

type EngineConfig struct {
	Depth              int
	MoveTime           time.Duration // zero means no deadline
	QuantumProbability float64
	Seed               uint64
	Threads            int
	TTSizeMB           int
	Branching          engine.Branching
}

// Default is the configuration used when nothing is set.
func Default() Config {
	return Config{
		Logs: LogConfig{Style: "console", Level: "info"},
		Engine: EngineConfig{
			Depth:              3,
			QuantumProbability: 0.3,
			Seed:               1,
			Threads:            1,
			TTSizeMB:           engine.DefaultTTSize,
			Branching:          engine.BranchSampled,
		},
	}
}

// Load reads an optional .env file in the working directory and then the
// process environment.
func Load() (Config, error) {
	return LoadFiles(".env")
}

// LoadFiles is Load with explicit env files. Missing files are skipped;
// variables already set in the environment win over the files.
func LoadFiles(files ...string) (Config, error) {
	for _, f := range files {
		if err := godotenv.Load(f); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return Config{}, fmt.Errorf("%w: %s: %v", ErrInvalidConfig, f, err)
		}
	}
	return FromEnv(os.Getenv)
}

// FromEnv builds a configuration from a variable lookup.
func FromEnv(getenv func(string) string) (Config, error) {
	cfg := Default()
	var err error

	if cfg.Engine.Depth, err = intVar(getenv, "QCHESS_DEPTH", cfg.Engine.Depth, 0); err != nil {
		return Config{}, err
	}
	ms, err := intVar(getenv, "QCHESS_MOVE_TIME_MS", 0, 0)
	if err != nil {
		return Config{}, err
	}
	cfg.Engine.MoveTime = time.Duration(ms) * time.Millisecond
	if cfg.Engine.Threads, err = intVar(getenv, "QCHESS_THREADS", cfg.Engine.Threads, 1); err != nil {
		return Config{}, err
	}
	if cfg.Engine.TTSizeMB, err = intVar(getenv, "QCHESS_TT_SIZE_MB", cfg.Engine.TTSizeMB, 1); err != nil {
		return Config{}, err
	}
	if v := getenv("QCHESS_QUANTUM_PROBABILITY"); v != "" {
		p, err := strconv.ParseFloat(v, 64)
		if err != nil || p < 0 || p > 1 {
			return Config{}, fmt.Errorf("%w: QCHESS_QUANTUM_PROBABILITY=%q", ErrInvalidConfig, v)
		}
		cfg.Engine.QuantumProbability = p
	}
	if v := getenv("QCHESS_SEED"); v != "" {
		seed, err := strconv.ParseUint(v, 0, 64)
		if err != nil {
			return Config{}, fmt.Errorf("%w: QCHESS_SEED=%q", ErrInvalidConfig, v)
		}
		cfg.Engine.Seed = seed
	}
	if v := getenv("QCHESS_BRANCHING"); v != "" {
		if cfg.Engine.Branching, err = engine.ParseBranching(v); err != nil {
			return Config{}, fmt.Errorf("%w: %v", ErrInvalidConfig, err)
		}
	}
	if v := getenv("QCHESS_LOG_LEVEL"); v != "" {
		if _, err := zerolog.ParseLevel(strings.ToLower(v)); err != nil {
			return Config{}, fmt.Errorf("%w: QCHESS_LOG_LEVEL=%q", ErrInvalidConfig, v)
		}
		cfg.Logs.Level = strings.ToLower(v)
	}
	if v := getenv("QCHESS_LOG_STYLE"); v != "" {
		v = strings.ToLower(v)
		if v != "console" && v != "json" {
			return Config{}, fmt.Errorf("%w: QCHESS_LOG_STYLE=%q", ErrInvalidConfig, v)
		}
		cfg.Logs.Style = v
	}
	return cfg, nil
}

func intVar(getenv func(string) string, name string, def, min int) (int, error) {
	v := getenv(name)
	if v == "" {
		return def, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil || n < min {
		return 0, fmt.Errorf("%w: %s=%q", ErrInvalidConfig, name, v)
	}
	return n, nil
}

// SearcherOptions maps the engine section onto search options.
func (c EngineConfig) SearcherOptions(log zerolog.Logger, moves engine.MoveProvider) engine.Options {
	return engine.Options{
		QuantumProbability: c.QuantumProbability,
		Seed:               c.Seed,
		Threads:            c.Threads,
		Branching:          c.Branching,
		Moves:              moves,
		TTSizeMB:           c.TTSizeMB,
		Logger:             log,
	}
}

// NewLogger builds the process logger. Console style is meant for a
// terminal; json writes one object per line.
func (c LogConfig) NewLogger(w io.Writer) zerolog.Logger {
	level, err := zerolog.ParseLevel(c.Level)
	if err != nil || c.Level == "" {
		level = zerolog.InfoLevel
	}
	if c.Style != "json" {
		w = zerolog.ConsoleWriter{Out: w, TimeFormat: time.Kitchen}
	}
	return zerolog.New(w).Level(level).With().Timestamp().Logger()
}
