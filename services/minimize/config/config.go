// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

// Package config loads the pipeline configuration with priority:
// environment > file > defaults.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/AleutianAI/proofmin/pkg/logging"
	"github.com/AleutianAI/proofmin/services/minimize/formula"
	"github.com/AleutianAI/proofmin/services/minimize/prover"
	"github.com/AleutianAI/proofmin/services/minimize/search"
)

// DirsConfig locates the working directories of the pipeline.
type DirsConfig struct {
	// Lemmas is the lemma store root with single/, history/ and
	// abstract/ subdirectories.
	Lemmas string `yaml:"lemmas" json:"lemmas"`

	// Proofs holds the stored winning proofs. Completion prover
	// attempts live in its attempts/ subdirectory.
	Proofs string `yaml:"proofs" json:"proofs"`

	// Output receives summaries, dags, lemma listings and annotated
	// proofs.
	Output string `yaml:"output" json:"output"`

	// Tmp holds augmented problem copies fed to the provers.
	Tmp string `yaml:"tmp" json:"tmp"`
}

// ProversConfig locates the external binaries.
type ProversConfig struct {
	VampirePath   string `yaml:"vampire_path" json:"vampire_path"`
	TweePath      string `yaml:"twee_path" json:"twee_path"`
	EggPath       string `yaml:"egg_path" json:"egg_path"`
	ExtractorPath string `yaml:"extractor_path" json:"extractor_path"`

	// Timeout per prover invocation.
	Timeout time.Duration `yaml:"timeout" json:"timeout"`

	// ExtractTimeout per extractor invocation.
	ExtractTimeout time.Duration `yaml:"extract_timeout" json:"extract_timeout"`
}

// SearchConfig tunes the minimization scan.
type SearchConfig struct {
	Offset           int `yaml:"offset" json:"offset"`
	MaxCandidates    int `yaml:"max_candidates" json:"max_candidates"`
	PermutationBound int `yaml:"permutation_bound" json:"permutation_bound"`
}

// CollectConfig tunes the collection phase.
type CollectConfig struct {
	// Parallelism caps concurrent lemma proofs. 1 disables
	// concurrency.
	Parallelism int `yaml:"parallelism" json:"parallelism"`
}

// LoggingConfig configures the shared logger.
type LoggingConfig struct {
	Level string `yaml:"level" json:"level"`
	Dir   string `yaml:"dir" json:"dir"`
	JSON  bool   `yaml:"json" json:"json"`
}

// Config is the full pipeline configuration.
type Config struct {
	Dirs    DirsConfig    `yaml:"dirs" json:"dirs"`
	Provers ProversConfig `yaml:"provers" json:"provers"`
	Search  SearchConfig  `yaml:"search" json:"search"`
	Collect CollectConfig `yaml:"collect" json:"collect"`
	Logging LoggingConfig `yaml:"logging" json:"logging"`
}

// Default returns the configuration used when no file or environment
// overrides are present.
func Default() Config {
	return Config{
		Dirs: DirsConfig{
			Lemmas: "lemmas",
			Proofs: "proofs",
			Output: "output",
			Tmp:    "tmp",
		},
		Provers: ProversConfig{
			VampirePath:    "vampire",
			TweePath:       "twee",
			EggPath:        "egg",
			ExtractorPath:  "extract_lemmas",
			Timeout:        prover.DefaultTimeout,
			ExtractTimeout: 60 * time.Second,
		},
		Search: SearchConfig{
			Offset:           search.DefaultOffset,
			MaxCandidates:    search.DefaultMaxCandidates,
			PermutationBound: formula.DefaultPermutationBound,
		},
		Collect: CollectConfig{
			Parallelism: 1,
		},
		Logging: LoggingConfig{
			Level: "info",
		},
	}
}

// Load merges defaults, an optional config file and environment
// overrides, then validates the result.
//
// Inputs:
//
//	path - YAML or JSON config file. May be empty or missing.
func Load(path string) (Config, error) {
	cfg := Default()

	if path != "" {
		if err := loadFile(path, &cfg); err != nil {
			return cfg, fmt.Errorf("load config file: %w", err)
		}
	}
	loadEnv(&cfg)

	if err := cfg.Validate(); err != nil {
		return cfg, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

func loadFile(path string, cfg *Config) error {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return err
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		if jsonErr := json.Unmarshal(data, cfg); jsonErr != nil {
			return fmt.Errorf("parse config (tried YAML and JSON): YAML error: %v, JSON error: %w", err, jsonErr)
		}
	}
	return nil
}

func loadEnv(cfg *Config) {
	if v := os.Getenv("PROOFMIN_LEMMAS_DIR"); v != "" {
		cfg.Dirs.Lemmas = v
	}
	if v := os.Getenv("PROOFMIN_PROOFS_DIR"); v != "" {
		cfg.Dirs.Proofs = v
	}
	if v := os.Getenv("PROOFMIN_OUTPUT_DIR"); v != "" {
		cfg.Dirs.Output = v
	}
	if v := os.Getenv("PROOFMIN_TMP_DIR"); v != "" {
		cfg.Dirs.Tmp = v
	}
	if v := os.Getenv("PROOFMIN_VAMPIRE_PATH"); v != "" {
		cfg.Provers.VampirePath = v
	}
	if v := os.Getenv("PROOFMIN_TWEE_PATH"); v != "" {
		cfg.Provers.TweePath = v
	}
	if v := os.Getenv("PROOFMIN_EGG_PATH"); v != "" {
		cfg.Provers.EggPath = v
	}
	if v := os.Getenv("PROOFMIN_EXTRACTOR_PATH"); v != "" {
		cfg.Provers.ExtractorPath = v
	}
	if v := os.Getenv("PROOFMIN_PROVER_TIMEOUT"); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			cfg.Provers.Timeout = d
		}
	}
	if v := os.Getenv("PROOFMIN_MAX_CANDIDATES"); v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			cfg.Search.MaxCandidates = i
		}
	}
	if v := os.Getenv("PROOFMIN_PARALLELISM"); v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			cfg.Collect.Parallelism = i
		}
	}
	if v := os.Getenv("PROOFMIN_LOG_LEVEL"); v != "" {
		cfg.Logging.Level = v
	}
}

// Validate rejects configurations the pipeline cannot run with.
func (c Config) Validate() error {
	if c.Dirs.Lemmas == "" || c.Dirs.Proofs == "" || c.Dirs.Output == "" {
		return fmt.Errorf("dirs.lemmas, dirs.proofs and dirs.output must be set")
	}
	if c.Provers.Timeout <= 0 {
		return fmt.Errorf("provers.timeout must be positive")
	}
	if c.Search.Offset < 0 || c.Search.MaxCandidates < 0 {
		return fmt.Errorf("search.offset and search.max_candidates must not be negative")
	}
	if c.Collect.Parallelism < 0 {
		return fmt.Errorf("collect.parallelism must not be negative")
	}
	switch c.Logging.Level {
	case "", "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("unknown log level %q", c.Logging.Level)
	}
	return nil
}

// TweeProofsDir is the completion prover attempts directory, fixed
// relative to the proofs directory.
func (c Config) TweeProofsDir() string {
	return filepath.Join(c.Dirs.Proofs, prover.AttemptsSubdir)
}

// ProverPaths maps prover names to their configured binaries.
func (c Config) ProverPaths() map[string]string {
	return map[string]string{
		prover.ProverVampire: c.Provers.VampirePath,
		prover.ProverTwee:    c.Provers.TweePath,
		prover.ProverEgg:     c.Provers.EggPath,
	}
}

// LogLevel converts the configured level string.
func (c Config) LogLevel() logging.Level {
	switch c.Logging.Level {
	case "debug":
		return logging.LevelDebug
	case "warn":
		return logging.LevelWarn
	case "error":
		return logging.LevelError
	default:
		return logging.LevelInfo
	}
}

// Logger builds the shared logger for a pipeline phase.
func (c Config) Logger(service string) *logging.Logger {
	return logging.New(logging.Config{
		Level:   c.LogLevel(),
		LogDir:  c.Logging.Dir,
		Service: service,
		JSON:    c.Logging.JSON,
	})
}
