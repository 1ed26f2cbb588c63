// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package lemma

import "errors"

var (
	// ErrUnknownType indicates a lemma name outside the known naming
	// schemes (single_lemma_, history_lemma_, abstract_lemma_).
	ErrUnknownType = errors.New("unknown lemma type")

	// ErrNotFound indicates the lemma file or its formula is missing.
	ErrNotFound = errors.New("lemma not found")

	// ErrNoProofFile indicates no stored proof exists for a lemma in
	// any variant.
	ErrNoProofFile = errors.New("no proof file for lemma")

	// ErrNoConjecture indicates a TPTP file without a conjecture block.
	ErrNoConjecture = errors.New("no conjecture in file")
)
