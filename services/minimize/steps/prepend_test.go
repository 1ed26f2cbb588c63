// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package steps

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AleutianAI/proofmin/services/minimize/formula"
)

func TestLastLemmaIndex(t *testing.T) {
	deps := []NamedFormula{
		{Name: "a1"},
		{Name: "single_lemma_0003"},
		{Name: "history_lemma_0011"},
		{Name: "lemma_0007"},
	}
	assert.Equal(t, 11, LastLemmaIndex(deps))
	assert.Equal(t, 0, LastLemmaIndex(nil))
	assert.Equal(t, 0, LastLemmaIndex([]NamedFormula{{Name: "a1"}}))
}

func TestPrepend(t *testing.T) {
	derivation := map[int]Step{
		1: {Formula: "op(op(op(X3,X0),X2),X2) = X3", Deps: []Dep{{Orig: 7}, {Orig: 7}}},
		2: {Formula: "op(X0,op(X1,X2)) = op(X0,X2)", Deps: []Dep{{Orig: 9, Seq: 1}, {Orig: 7}}},
	}
	axioms := []NamedFormula{
		{Name: "single_lemma_0003", Formula: "! [X] : (op(X, X) = X)"},
	}
	m := &formula.Matcher{}

	header, renaming := Prepend(derivation, axioms, "single_lemma_0007", 2, m)

	assert.Equal(t, map[int]string{1: "lemma_0004", 2: "single_lemma_0007"}, renaming)

	lines := strings.Split(strings.TrimSpace(header), "\n")
	require.Len(t, lines, 3)
	assert.Equal(t, "% === Superposition Steps ===", lines[0])
	assert.Equal(t, "% lemma_0004: op(op(op(X3,X0),X2),X2) = X3 | deps: a1, a1", lines[1])
	assert.Equal(t,
		"% single_lemma_0007: op(X0,op(X1,X2)) = op(X0,X2) | deps: lemma_0004: op(op(op(X3,X0),X2),X2) = X3, a1",
		lines[2])
}

func TestPrepend_AxiomStepNamedA1(t *testing.T) {
	derivation := map[int]Step{
		0: {Formula: "op(op(op(X0,op(X1,X2)),X2),X2) = X0"},
		1: {Formula: "op(op(op(X3,X0),X2),X2) = X3", Deps: []Dep{{Orig: 7}}},
	}

	_, renaming := Prepend(derivation, nil, "", 0, &formula.Matcher{})
	assert.Equal(t, "a1", renaming[0])
	assert.Equal(t, "lemma_0001", renaming[1])
}

func TestExtendDependencies(t *testing.T) {
	derivation := map[int]Step{
		1: {Formula: "op(op(op(X3,X0),X2),X2) = X3"},
		2: {Formula: "op(X0,op(X1,X2)) = op(X0,X2)"},
	}
	renaming := map[int]string{1: "lemma_0004", 2: "single_lemma_0007"}

	deps := []NamedFormula{{Name: "a1", Formula: "op(op(op(X0,op(X1,X2)),X2),X2) = X0"}}
	ExtendDependencies(&deps, derivation, renaming)

	require.Len(t, deps, 3)
	assert.Equal(t, NamedFormula{Name: "lemma_0004", Formula: "op(op(op(X3,X0),X2),X2) = X3"}, deps[1])
	assert.Equal(t, NamedFormula{Name: "single_lemma_0007", Formula: "op(X0,op(X1,X2)) = op(X0,X2)"}, deps[2])
}
