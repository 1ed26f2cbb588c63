// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

// Package prover invokes external theorem provers and ranks their
// proofs. Two prover families are supported: refutation provers that
// print the proof on stdout (vampire) and completion provers (twee),
// plus the egg rewriter which writes its proof to an output file.
package prover

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"time"

	"github.com/google/uuid"

	"github.com/AleutianAI/proofmin/pkg/logging"
)

// ====== CONSTANTS ======

const (
	// DefaultTimeout bounds a single prover invocation. Lemma proofs
	// are either found quickly or not at all.
	DefaultTimeout = 10 * time.Second

	// maxOutputBytes caps captured prover output.
	maxOutputBytes = 10 << 20
)

// Known prover names.
const (
	ProverVampire = "vampire"
	ProverTwee    = "twee"
	ProverEgg     = "egg"
)

// ====== RUNNER ======

// Runner produces prover output for a problem file.
//
// Description:
//
//	Prove returns the proof text for the given prover name, or an
//	error when the prover fails, times out, or is not configured.
//	The search layer depends only on this interface so it can be
//	exercised without prover binaries installed.
type Runner interface {
	Prove(ctx context.Context, prover, inputFile string) (string, error)
}

// ExecRunner runs prover binaries as subprocesses.
//
// Thread Safety: safe for concurrent use; each invocation owns its
// command and buffers.
type ExecRunner struct {
	// Paths maps prover names to binary paths.
	Paths map[string]string

	// Timeout per invocation. Zero means DefaultTimeout.
	Timeout time.Duration

	log *logging.Logger
}

// NewExecRunner creates a runner for the configured prover binaries.
func NewExecRunner(paths map[string]string, timeout time.Duration, log *logging.Logger) *ExecRunner {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	if log == nil {
		log = logging.Default()
	}
	return &ExecRunner{Paths: paths, Timeout: timeout, log: log}
}

// Prove runs a prover on a problem file and returns its proof text.
func (r *ExecRunner) Prove(ctx context.Context, prover, inputFile string) (string, error) {
	path, ok := r.Paths[prover]
	if !ok {
		return "", fmt.Errorf("%w: %s", ErrUnknownProver, prover)
	}

	switch prover {
	case ProverEgg:
		return r.proveEgg(ctx, path, inputFile)
	case ProverVampire:
		return r.execute(ctx, path, "--input_syntax", "tptp", inputFile)
	case ProverTwee:
		return r.execute(ctx, path, "--quiet", inputFile)
	default:
		return r.execute(ctx, path, inputFile)
	}
}

// proveEgg runs egg, which writes its proof to an output file rather
// than stdout.
func (r *ExecRunner) proveEgg(ctx context.Context, path, inputFile string) (string, error) {
	outFile := filepath.Join(os.TempDir(), uuid.NewString()+".proof")
	defer os.Remove(outFile)

	if _, err := r.execute(ctx, path, inputFile, outFile); err != nil {
		return "", err
	}

	proof, err := os.ReadFile(outFile)
	if err != nil {
		return "", fmt.Errorf("%w: no proof file produced: %v", ErrProverFailed, err)
	}
	return string(proof), nil
}

func (r *ExecRunner) execute(ctx context.Context, path string, args ...string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, r.timeout())
	defer cancel()

	cmd := exec.CommandContext(ctx, path, args...)

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &limitedWriter{w: &stdout, limit: maxOutputBytes}
	cmd.Stderr = &limitedWriter{w: &stderr, limit: maxOutputBytes}

	start := time.Now()
	err := cmd.Run()
	elapsed := time.Since(start)

	if ctx.Err() == context.DeadlineExceeded {
		r.log.Warn("prover timed out",
			"prover", path,
			"timeout", r.timeout().String())
		return "", fmt.Errorf("%w: %s after %s", ErrProverTimeout, path, r.timeout())
	}
	if err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			r.log.Warn("prover exited with error",
				"prover", path,
				"exit_code", exitErr.ExitCode(),
				"stderr", stderr.String())
			return "", fmt.Errorf("%w: %s exit code %d", ErrProverFailed, path, exitErr.ExitCode())
		}
		return "", fmt.Errorf("%w: %s: %v", ErrProverFailed, path, err)
	}

	r.log.Debug("prover finished",
		"prover", path,
		"elapsed", elapsed.String(),
		"output_bytes", stdout.Len())
	return stdout.String(), nil
}

func (r *ExecRunner) timeout() time.Duration {
	if r.Timeout > 0 {
		return r.Timeout
	}
	return DefaultTimeout
}

// limitedWriter truncates output beyond the limit instead of failing
// the command.
type limitedWriter struct {
	w     *bytes.Buffer
	limit int
}

func (lw *limitedWriter) Write(p []byte) (int, error) {
	remaining := lw.limit - lw.w.Len()
	if remaining <= 0 {
		return len(p), nil
	}
	if len(p) > remaining {
		lw.w.Write(p[:remaining])
		return len(p), nil
	}
	return lw.w.Write(p)
}
