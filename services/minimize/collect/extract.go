// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package collect

import (
	"bytes"
	"context"
	"fmt"
	"os/exec"
	"time"

	"github.com/AleutianAI/proofmin/pkg/logging"
)

// Extractor turns a refutation proof into lemma candidate files for
// one extraction mode, written next to the lemma store.
type Extractor interface {
	Extract(ctx context.Context, proofFile, mode string) error
}

// DefaultExtractTimeout bounds one extractor invocation.
const DefaultExtractTimeout = 60 * time.Second

// ExecExtractor shells out to the external lemma extraction binary,
// invoked as <path> <proofFile> <mode>.
type ExecExtractor struct {
	Path    string
	Timeout time.Duration

	log *logging.Logger
}

// NewExecExtractor builds an extractor around the binary at path.
func NewExecExtractor(path string, log *logging.Logger) *ExecExtractor {
	if log == nil {
		log = logging.Default()
	}
	return &ExecExtractor{Path: path, Timeout: DefaultExtractTimeout, log: log}
}

// Extract runs the extraction binary for one mode.
func (e *ExecExtractor) Extract(ctx context.Context, proofFile, mode string) error {
	timeout := e.Timeout
	if timeout <= 0 {
		timeout = DefaultExtractTimeout
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	var stdout, stderr bytes.Buffer
	cmd := exec.CommandContext(ctx, e.Path, proofFile, mode)
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		return fmt.Errorf("lemma extractor %s (mode %s): %w: %s",
			e.Path, mode, err, stderr.String())
	}

	e.log.Debug("lemma extraction finished",
		"mode", mode,
		"proof", proofFile,
		"output", stdout.String())
	return nil
}
