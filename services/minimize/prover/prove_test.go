// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package prover

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// stubRunner serves canned proofs keyed by prover name and file base.
type stubRunner struct {
	proofs map[string]string
}

func (s *stubRunner) Prove(_ context.Context, prover, inputFile string) (string, error) {
	key := prover + ":" + filepath.Base(inputFile)
	proof, ok := s.proofs[key]
	if !ok {
		return "", fmt.Errorf("%w: no canned proof for %s", ErrProverFailed, key)
	}
	return proof, nil
}

func TestSet_TryProvers(t *testing.T) {
	runner := &stubRunner{proofs: map[string]string{
		"vampire:single_lemma_0003.p": vampireProof,
		"twee:single_lemma_0003.p":    tweeProof,
	}}
	set := NewSet(runner, nil)
	saveDir := t.TempDir()

	attempts := set.TryProvers(context.Background(),
		"/problems/single_lemma_0003.p",
		[]string{ProverTwee, ProverVampire, ProverEgg},
		saveDir)

	require.Len(t, attempts, 2)
	assert.Equal(t, ProverTwee, attempts[0].Prover)
	assert.Equal(t, ProverVampire, attempts[1].Prover)

	// Every successful attempt is saved.
	for _, p := range []string{"twee", "vampire"} {
		_, err := os.Stat(filepath.Join(saveDir, "single_lemma_0003_"+p+".proof"))
		assert.NoError(t, err, p)
	}
}

func TestSet_ProveLemmas(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{"single_lemma_0003.p", "single_lemma_0007.p"} {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte("fof(a1, axiom, x = x)."), 0o644))
	}

	runner := &stubRunner{proofs: map[string]string{
		// Lemma 3: both provers succeed with equal step counts; the
		// completion proof must win the tie. The twee fixture has 3
		// steps, so trim the vampire one to 3 as well.
		"twee:single_lemma_0003.p": tweeProof,
		"vampire:single_lemma_0003.p": `% SZS status Theorem for x
9. a = b [superposition 7,7]
13. b = c [superposition 9,7]
20. a = c [backward demodulation 8,13]
`,
		// Lemma 7: only the refutation prover finds a theorem.
		"vampire:single_lemma_0007.p": vampireProof,
		"twee:single_lemma_0007.p":    "RESULT: GaveUp (unknown).\n",
	}}

	set := NewSet(runner, nil)
	outDir := filepath.Join(t.TempDir(), "proofs")

	results, err := set.ProveLemmas(context.Background(),
		[]string{filepath.Join(dir, "single_lemma_0003.p"), filepath.Join(dir, "single_lemma_0007.p")},
		[]string{ProverTwee, ProverVampire},
		outDir)
	require.NoError(t, err)
	require.Len(t, results, 2)

	assert.Equal(t, ProverTwee, results[3].Prover)
	assert.Equal(t, 3, results[3].Length)

	assert.Equal(t, ProverVampire, results[7].Prover)
	assert.Equal(t, 4, results[7].Length)

	// Winning proofs are persisted under outDir.
	_, err = os.Stat(filepath.Join(outDir, "single_lemma_0003_twee.proof"))
	assert.NoError(t, err)
	_, err = os.Stat(filepath.Join(outDir, "single_lemma_0007_vampire.proof"))
	assert.NoError(t, err)
}

func TestSet_ProveLemmas_NoProof(t *testing.T) {
	runner := &stubRunner{proofs: map[string]string{}}
	set := NewSet(runner, nil)

	results, err := set.ProveLemmas(context.Background(),
		[]string{"/problems/single_lemma_0001.p"},
		[]string{ProverTwee},
		filepath.Join(t.TempDir(), "proofs"))
	require.NoError(t, err)
	assert.Empty(t, results)
}
