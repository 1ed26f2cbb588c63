// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package dag

import "errors"

var (
	// ErrLemmaNotFound indicates a traversed lemma is absent from the
	// precomputed index.
	ErrLemmaNotFound = errors.New("lemma not found in precomputed index")

	// ErrNoParents indicates a deduplicated intermediate has no parent
	// lemma to redirect to.
	ErrNoParents = errors.New("duplicate intermediate has no parents")
)
