// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package prover

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

const vampireProof = `% Refutation found. Thanks to Tanya!
% SZS status Theorem for Equation2892_implies_Equation2680
1. ! [X0,X1,X2] : op(op(op(X0,op(X1,X2)),X2),X2) = X0 [input]
3. ~! [X0,X1,X2] : op(op(op(X0,X1),op(X2,X0)),X1) = X0 [negated conjecture 2]
7. op(op(op(X0,op(X1,X2)),X2),X2) = X0 [cnf transformation 1]
9. op(op(op(X3,X0),X2),X2) = X3 [superposition 7,7]
13. op(X0,op(X1,X2)) = op(X0,X2) [superposition 9,7]
20. sK0 != op(op(op(sK0,sK1),sK0),sK1) [backward demodulation 8,13]
39. $false [subsumption resolution 30,21]
% Time elapsed: 0.0000 s
`

const tweeProof = `Here is the input problem:
  Axiom 1 (a1): op(op(op(X, op(Y, Z)), Z), Z) = X
  Goal 1 (conjecture_0012): op(sK0, sK1) = sK0

The conjecture is true! Here is a proof of the goal:

Lemma 2: op(X, op(Y, Z)) = op(X, Z)
Proof:
  op(X, op(Y, Z))
= { by axiom 1 (a1) R->L }
  op(op(op(X, op(Y, Z)), Z), Z)
= { by axiom 1 (a1) }
  op(X, Z)

Goal 1 (conjecture_0012): op(sK0, sK1) = sK0
Proof:
  op(sK0, sK1)
= { by lemma 2 }
  sK0

RESULT: Theorem (the conjecture is true).
`

const eggProof = `fof(a1, axiom, ! [X, Y, Z] : op(op(op(X, op(Y, Z)), Z), Z) = X).
fof(s1, plain, op(op(op(X3, X0), X2), X2) = X3, inference(superposition, [], [a1, a1])).
fof(s2, plain, op(X0, op(X1, X2)) = op(X0, X2), inference(superposition, [], [s1, a1])).
fof(goal, conjecture, op(sK0, sK1) = sK0).
`

func TestProofLength(t *testing.T) {
	t.Run("vampire counts inference tags", func(t *testing.T) {
		assert.Equal(t, 4, ProofLength(ProverVampire, vampireProof))
	})

	t.Run("twee counts rewrite steps", func(t *testing.T) {
		assert.Equal(t, 3, ProofLength(ProverTwee, tweeProof))
	})

	t.Run("egg counts plain inference lines", func(t *testing.T) {
		assert.Equal(t, 2, ProofLength(ProverEgg, eggProof))
	})

	t.Run("unknown prover counts lines", func(t *testing.T) {
		assert.Equal(t, 3, ProofLength("other", "a\nb\nc\n"))
	})
}

func TestIsTheorem(t *testing.T) {
	assert.True(t, IsTheorem(vampireProof))
	assert.True(t, IsTheorem(tweeProof))
	assert.False(t, IsTheorem("% SZS status CounterSatisfiable for prob\n"))
	assert.False(t, IsTheorem("no status at all\n"))
}

func TestRankedLength(t *testing.T) {
	t.Run("theorem keeps real length", func(t *testing.T) {
		assert.Equal(t, 4, RankedLength(ProverVampire, vampireProof))
	})

	t.Run("countersatisfiable gets sentinel", func(t *testing.T) {
		proof := "% SZS status CounterSatisfiable for prob\n1. something [input]\n"
		assert.Equal(t, NonTheoremLength, RankedLength(ProverVampire, proof))
	})

	t.Run("satisfiable gets sentinel", func(t *testing.T) {
		proof := "RESULT: Satisfiable\n"
		assert.Equal(t, NonTheoremLength, RankedLength(ProverTwee, proof))
	})

	t.Run("unsatisfiable is a theorem", func(t *testing.T) {
		proof := "% SZS status Unsatisfiable for prob\n9. op(X,X) = X [superposition 7,7]\n"
		assert.Equal(t, 1, RankedLength(ProverVampire, proof))
	})
}

func TestTrailingIndex(t *testing.T) {
	assert.Equal(t, 12, trailingIndex("single_lemma_0012"))
	assert.Equal(t, 3, trailingIndex("candidate_3"))
	assert.Equal(t, 0, trailingIndex("no_digits"))
}
