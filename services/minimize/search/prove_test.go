// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package search

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AleutianAI/proofmin/services/minimize/prover"
	"github.com/AleutianAI/proofmin/services/minimize/steps"
)

const inputProblem = `fof(a1, axiom,
    ! [X] : (op(X, e) = X)
).

fof(conjecture, conjecture,
    ! [X, Y] : (op(op(X, Y), e) = op(X, Y))
).
`

const tweeTheorem = `Here is the input problem:
  Axiom 1 (a1): op(X, e) = X

The conjecture is true! Here is a proof of the goal:

Goal 1 (conjecture): op(op(x, y), e) = op(x, y)
Proof:
  op(op(x, y), e)
= { by axiom 1 (a1) }
  op(x, y)

RESULT: Theorem (the conjecture is true).
`

const tweeTheoremLong = `Here is the input problem:
  Axiom 1 (a1): op(X, e) = X

The conjecture is true! Here is a proof of the goal:

Goal 1 (conjecture): op(op(x, y), e) = op(x, y)
Proof:
  op(op(x, y), e)
= { by axiom 1 (a1) R->L }
  op(op(op(x, y), e), e)
= { by axiom 1 (a1) }
  op(op(x, y), e)
= { by axiom 1 (a1) }
  op(x, y)

RESULT: Theorem (the conjecture is true).
`

// proverStub serves one canned proof per prover and records the
// problem content each prover was handed.
type proverStub struct {
	proofs map[string]string
	seen   map[string]string
}

func (s *proverStub) Prove(_ context.Context, prover, inputFile string) (string, error) {
	if s.seen != nil {
		if data, err := os.ReadFile(inputFile); err == nil {
			s.seen[prover] = string(data)
		}
	}
	proof, ok := s.proofs[prover]
	if !ok {
		return "", fmt.Errorf("no canned proof for %s", prover)
	}
	return proof, nil
}

func writeInputProblem(t *testing.T, m *Minimizer) string {
	t.Helper()
	path := filepath.Join(filepath.Dir(m.Repo.LemmasDir), "input_problem.p")
	require.NoError(t, os.WriteFile(path, []byte(inputProblem), 0o644))
	return path
}

func TestProveLemma(t *testing.T) {
	rootAxiom := steps.NamedFormula{
		Name:    "single_lemma_0005",
		Formula: "! [X, Y] : (op(op(X, Y), e) = op(X, Y))",
	}

	t.Run("completion prover wins", func(t *testing.T) {
		m := newTestMinimizer(t)
		inputFile := writeInputProblem(t, m)
		stub := &proverStub{
			proofs: map[string]string{prover.ProverTwee: tweeTheorem},
			seen:   map[string]string{},
		}
		m.Runner = stub

		extra := []steps.NamedFormula{}
		proof, n, ok, err := m.proveLemma(context.Background(), inputFile,
			proveTask{axioms: []steps.NamedFormula{rootAxiom}}, &extra)
		require.NoError(t, err)
		require.True(t, ok)
		assert.Equal(t, tweeTheorem, proof)
		assert.Equal(t, 1, n)

		// The lemma was appended to the problem copy as an axiom.
		assert.Contains(t, stub.seen[prover.ProverTwee], "fof(single_lemma_0005, axiom,")
		assert.Empty(t, extra)
	})

	t.Run("refuter derivation preferred when shorter", func(t *testing.T) {
		m := newTestMinimizer(t)
		inputFile := writeInputProblem(t, m)
		m.Runner = &proverStub{proofs: map[string]string{
			prover.ProverTwee:    tweeTheoremLong,
			prover.ProverVampire: refutationFixture,
		}}

		extra := []steps.NamedFormula{}
		proof, n, ok, err := m.proveLemma(context.Background(), inputFile,
			proveTask{axioms: []steps.NamedFormula{rootAxiom}}, &extra)
		require.NoError(t, err)
		require.True(t, ok)
		assert.True(t, strings.HasPrefix(proof, "% === Superposition Steps ==="))
		assert.Equal(t, 1, n)

		// The derivation joined the shared dependency list under the
		// goal's name.
		require.Len(t, extra, 1)
		assert.Equal(t, "conjecture", extra[0].Name)
	})

	t.Run("stored lemma promoted to conjecture", func(t *testing.T) {
		m := newTestMinimizer(t)
		inputFile := writeInputProblem(t, m)
		storeLemma(t, m, rootAxiom.Name, rootAxiom.Formula)
		stub := &proverStub{
			proofs: map[string]string{prover.ProverTwee: tweeTheorem},
			seen:   map[string]string{},
		}
		m.Runner = stub

		extra := []steps.NamedFormula{}
		_, _, ok, err := m.proveLemma(context.Background(), inputFile,
			proveTask{
				axioms:     []steps.NamedFormula{rootAxiom},
				conjecture: rootAxiom.Name,
			}, &extra)
		require.NoError(t, err)
		require.True(t, ok)
		assert.Contains(t, stub.seen[prover.ProverTwee], "fof(single_lemma_0005, conjecture,")
	})

	t.Run("derivation steps appended as lemmas", func(t *testing.T) {
		m := newTestMinimizer(t)
		inputFile := writeInputProblem(t, m)
		stub := &proverStub{
			proofs: map[string]string{prover.ProverTwee: tweeTheorem},
			seen:   map[string]string{},
		}
		m.Runner = stub

		extra := []steps.NamedFormula{}
		derivation := map[int]steps.Step{
			1: {Formula: "op(op(X0,X1),e) = op(X0,X1)"},
		}
		_, _, ok, err := m.proveLemma(context.Background(), inputFile,
			proveTask{derivation: derivation}, &extra)
		require.NoError(t, err)
		require.True(t, ok)
		assert.Contains(t, stub.seen[prover.ProverTwee], "fof(lemma_0001, axiom,")
	})

	t.Run("no prover succeeds", func(t *testing.T) {
		m := newTestMinimizer(t)
		inputFile := writeInputProblem(t, m)
		m.Runner = &proverStub{proofs: map[string]string{}}

		extra := []steps.NamedFormula{}
		proof, n, ok, err := m.proveLemma(context.Background(), inputFile, proveTask{}, &extra)
		require.NoError(t, err)
		assert.False(t, ok)
		assert.Empty(t, proof)
		assert.Zero(t, n)
	})
}
