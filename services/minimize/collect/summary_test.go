// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package collect

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSummary_RoundTrip(t *testing.T) {
	s := Summary{
		5:  {Stem: "single_lemma_0005", Prover: "twee", Proof: "proof text"},
		12: {Stem: "history_lemma_0012", Prover: "vampire", Proof: "other proof"},
	}

	path := filepath.Join(t.TempDir(), "summary_test.json")
	require.NoError(t, s.Save(path))

	// On disk each entry is a [stem, prover, proof] triple keyed by
	// the decimal index.
	raw, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(raw), `"5": [`)
	assert.Contains(t, string(raw), `"single_lemma_0005",`)

	loaded, err := LoadSummary(path)
	require.NoError(t, err)
	assert.Equal(t, s, loaded)
}

func TestLoadSummary_BadKey(t *testing.T) {
	path := filepath.Join(t.TempDir(), "summary.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"oops": ["a", "b", "c"]}`), 0o644))

	_, err := LoadSummary(path)
	assert.Error(t, err)
}

func TestSummary_MaxIndex(t *testing.T) {
	_, ok := Summary{}.MaxIndex()
	assert.False(t, ok)

	max, ok := Summary{3: {}, 17: {}, 9: {}}.MaxIndex()
	require.True(t, ok)
	assert.Equal(t, 17, max)
}

func TestSuffix(t *testing.T) {
	assert.Equal(t, "input_problem_42", Suffix("/data/input_problem_42.p"))
	assert.Equal(t, "proof", Suffix("proof.out"))
	assert.Equal(t, "bare", Suffix("bare"))
}
