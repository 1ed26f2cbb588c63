// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package prover

import "errors"

var (
	// ErrUnknownProver indicates a prover name with no configured binary.
	ErrUnknownProver = errors.New("unknown prover")

	// ErrProverTimeout indicates the prover exceeded its time budget.
	ErrProverTimeout = errors.New("prover timed out")

	// ErrProverFailed indicates the prover exited abnormally or
	// produced no proof.
	ErrProverFailed = errors.New("prover failed")

	// ErrNoProof indicates no prover produced a usable proof.
	ErrNoProof = errors.New("no prover produced a proof")
)
