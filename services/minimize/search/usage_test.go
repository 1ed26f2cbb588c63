// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package search

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestProofUsesLemma(t *testing.T) {
	tweeProof := `Here is the input problem:
  Axiom 1 (a1): op(X, e) = X
  Axiom 2 (single_lemma_0012): op(op(X, Y), e) = op(X, Y)
  Goal 1 (conjecture): op(a, e) = a

The conjecture is true! Here is a proof of the goal:

Goal 1 (conjecture): op(a, e) = a
Proof:
  op(a, e)
= { by axiom 2 (single_lemma_0012) }
  a

RESULT: Theorem (the conjecture is true).
`

	t.Run("completion prover citations", func(t *testing.T) {
		assert.True(t, proofUsesLemma(tweeProof, "single_lemma_0012"))
		assert.True(t, proofUsesLemma(tweeProof, "a1"))
		assert.False(t, proofUsesLemma(tweeProof, "single_lemma_0013"))
	})

	t.Run("rewrite step citations", func(t *testing.T) {
		proof := "  op(a, e)\n= { by axiom 3 (history_lemma_0047) R->L }\n  a\n"
		assert.True(t, proofUsesLemma(proof, "history_lemma_0047"))
		assert.False(t, proofUsesLemma(proof, "history_lemma_0048"))
	})

	t.Run("annotated superposition deps", func(t *testing.T) {
		proof := "% === Superposition Steps ===\n" +
			"% lemma_0004: op(X0,e) = X0 | deps: single_lemma_0012: op(op(X0,X1),e) = op(X0,X1), a1\n"
		assert.True(t, proofUsesLemma(proof, "single_lemma_0012"))
		// The derived name left of "| deps:" is not a usage.
		assert.False(t, proofUsesLemma(proof, "lemma_0004"))
	})

	t.Run("name token boundaries", func(t *testing.T) {
		proof := "% x: y | deps: lemma_00010: op(X0,e) = X0\n"
		assert.False(t, proofUsesLemma(proof, "lemma_0001"))
		assert.True(t, proofUsesLemma(proof, "lemma_00010"))
	})

	t.Run("raw refuter output", func(t *testing.T) {
		proof := "1. op(X0,e) = X0 [input]\n9. $false [subsumption resolution 7,1]\n"
		// Premise names are erased, assume the lemma was used.
		assert.True(t, proofUsesLemma(proof, "single_lemma_0012"))
	})

	t.Run("empty cases", func(t *testing.T) {
		assert.False(t, proofUsesLemma("", "single_lemma_0012"))
		assert.False(t, proofUsesLemma(tweeProof, ""))
	})
}
