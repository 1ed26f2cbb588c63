// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package search

import "errors"

var (
	// ErrEmptySummary indicates the summary index has no lemmas to
	// pick candidates from.
	ErrEmptySummary = errors.New("summary index is empty")

	// ErrNoCandidates indicates no root/history candidate combination
	// produced a valid proof.
	ErrNoCandidates = errors.New("no valid root/history candidate combination found")

	// ErrNoRootProof indicates the root lemma has no stored proof to
	// fall back on.
	ErrNoRootProof = errors.New("no proof file found for root lemma")

	// ErrInconsistentDeps indicates a candidate reported as directly
	// proved still carried dependencies.
	ErrInconsistentDeps = errors.New("directly proved candidate has dependencies")
)
