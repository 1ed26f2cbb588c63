// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package lemma

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const commutativityProof = `Here is the input problem:
  Axiom 1 (a1): op(X, op(Y, Z)) = op(op(X, Y), Z).
  Goal 1 (conjecture_0001): op(a, b) = op(b, a).

Lemma 2: op(X, Y) = op(Y, X).
Proof:
  op(X, Y)
= { by axiom 1 (a1) }
  op(Y, X)

Goal 1 (conjecture_0001): op(a, b) = op(b, a).
Proof:
  op(a, b)
= { by lemma 2 }
  op(b, a)

RESULT: Theorem
`

// Same intermediate as commutativityProof up to variable renaming,
// plus one extra intermediate.
const identityProof = `Here is the input problem:
  Axiom 1 (a1): op(X, op(Y, Z)) = op(op(X, Y), Z).
  Goal 1 (conjecture_0002): op(c, e) = c.

Lemma 2: op(W, Z) = op(Z, W).
Proof:
  op(W, Z)
= { by axiom 1 (a1) }
  op(Z, W)

Lemma 3: op(X, e) = X.
Proof:
  op(X, e)
= { by lemma 2 }
  X

RESULT: Theorem
`

func TestExtractTweeLemmas(t *testing.T) {
	got := ExtractTweeLemmas(identityProof)
	require.Len(t, got, 2)

	assert.Equal(t, "twee_lemma_02", got[0].Name)
	assert.Equal(t, "! [W, Z] : (op(W, Z) = op(Z, W))", got[0].Formula)

	assert.Equal(t, "twee_lemma_03", got[1].Name)
	assert.Equal(t, "! [X] : (op(X, e) = X)", got[1].Formula)

	assert.Empty(t, ExtractTweeLemmas("RESULT: GaveUp (unknown)\n"))
}

func TestRepository_ParseUsedLemmas(t *testing.T) {
	r := newTestStore(t)
	writeLemmaFile(t, r, "history_lemma_0047", "! [X] : (op(X, X) = e)")
	writeProofFile(t, r, "history_lemma_0047_twee", "stored proof")

	const output = `Here is the input problem:
  Axiom 1 (a1): op(X, op(Y, Z)) = op(op(X, Y), Z).
  Axiom 2 (lemma_0047): op(X, X) = e.
  Axiom 3 (lemma_0099): op(X, e) = X.
  Goal 1 (conjecture_0001): op(a, b) = op(b, a).

RESULT: Theorem
`

	used, err := r.ParseUsedLemmas(output, nil)
	require.NoError(t, err)

	// lemma_0099 has no stored proof and is dropped; the conjecture
	// reference never counts as a dependency.
	require.Len(t, used, 2)
	assert.Equal(t, "a1", used[0].Name)
	assert.Equal(t, "op(X, op(Y, Z)) = op(op(X, Y), Z)", used[0].Formula)
	assert.Equal(t, "history_lemma_0047", used[1].Name)
	assert.Equal(t, "! [X] : (op(X, X) = e)", used[1].Formula)
}

func TestRepository_Precompute(t *testing.T) {
	r := newTestStore(t)
	writeLemmaFile(t, r, "single_lemma_0001", "! [X, Y] : (op(op(X, Y), X) = Y)")
	writeLemmaFile(t, r, "single_lemma_0002", "! [X] : (op(op(X, e), e) = X)")
	writeProofFile(t, r, "single_lemma_0001_twee", "winner")
	writeProofFile(t, r, "single_lemma_0002_vampire", "winner")

	tweeDir := t.TempDir()
	require.NoError(t, os.WriteFile(
		filepath.Join(tweeDir, "single_lemma_0001_twee.proof"), []byte(commutativityProof), 0o644))
	require.NoError(t, os.WriteFile(
		filepath.Join(tweeDir, "single_lemma_0002_twee.proof"), []byte(identityProof), 0o644))

	pre, err := r.Precompute(tweeDir, nil)
	require.NoError(t, err)

	t.Run("lemma index", func(t *testing.T) {
		require.Len(t, pre.AllLemmas, 2)

		first := pre.AllLemmas["single_lemma_0001"]
		assert.Equal(t, "! [X, Y] : (op(op(X, Y), X) = Y)", first.Formula)
		require.Len(t, first.Dependencies, 2)
		assert.Equal(t, "a1", first.Dependencies[0].Name)
		assert.Equal(t, "twee_lemma_02", first.Dependencies[1].Name)

		second := pre.AllLemmas["single_lemma_0002"]
		require.Len(t, second.Dependencies, 3)
		assert.Equal(t, "a1", second.Dependencies[0].Name)
		assert.Equal(t, "twee_lemma_02", second.Dependencies[1].Name)
		assert.Equal(t, "twee_lemma_03", second.Dependencies[2].Name)
	})

	t.Run("intermediates deduplicated across proofs", func(t *testing.T) {
		require.Len(t, pre.AllTwee, 2)

		shared := pre.AllTwee[0]
		assert.Equal(t, "twee_lemma_02", shared.Name)
		assert.Equal(t, []string{"single_lemma_0001", "single_lemma_0002"}, shared.Parents)

		unique := pre.AllTwee[1]
		assert.Equal(t, "twee_lemma_03", unique.Name)
		assert.Equal(t, []string{"single_lemma_0002"}, unique.Parents)
	})

	t.Run("formula lookup covers all dependencies", func(t *testing.T) {
		assert.Contains(t, pre.Lemmas, "a1")
		assert.Contains(t, pre.Lemmas, "twee_lemma_02")
		assert.Equal(t, "! [X] : (op(X, e) = X)", pre.Lemmas["twee_lemma_03"])
	})

	t.Run("missing completion proof", func(t *testing.T) {
		_, err := r.Precompute(t.TempDir(), nil)
		assert.Error(t, err)
	})
}
