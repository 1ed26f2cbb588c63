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

	"github.com/AleutianAI/proofmin/services/minimize/lemma"
	"github.com/AleutianAI/proofmin/services/minimize/prover"
	"github.com/AleutianAI/proofmin/services/minimize/steps"
)

// proveTask configures a single lemma proof attempt over an augmented
// copy of the input problem.
type proveTask struct {
	// derivation steps appended as lemma_<nnnn> axioms, keyed by
	// sequence number. Nil when the stored dependencies are used
	// instead.
	derivation map[int]steps.Step

	// dependencies are stored lemma names appended as axioms.
	dependencies []string

	// axioms are extra named formulas appended as axioms.
	axioms []steps.NamedFormula

	// conjecture names the stored lemma to promote as the goal. Empty
	// proves the input problem's own conjecture.
	conjecture string
}

// proveLemma runs the completion prover and the refuter on an
// augmented copy of the input problem and keeps the shorter proof.
//
// Description:
//
//	The refuter's proof is only preferred when the target formula's
//	derivation can be extracted from it and is shorter than the
//	completion proof; it is then rendered as an annotated header and
//	its steps join the shared dependency list so later attempts can
//	cite them.
//
// Outputs:
//
//	string - The winning proof text.
//	int - Its step count.
//	bool - False when neither prover found a proof.
func (m *Minimizer) proveLemma(ctx context.Context, inputFile string, task proveTask, extra *[]steps.NamedFormula) (string, int, bool, error) {
	tmpPath, err := lemma.TempCopy(inputFile, m.TmpDir)
	if err != nil {
		return "", 0, false, err
	}
	defer os.Remove(tmpPath)

	for _, seq := range steps.SortedIndices(task.derivation) {
		name := fmt.Sprintf("lemma_%04d", seq)
		if err := lemma.AppendAsAxiom(tmpPath, task.derivation[seq].Formula, name); err != nil {
			return "", 0, false, err
		}
	}
	for _, dep := range task.dependencies {
		depFormula, err := m.Repo.Load(dep)
		if err != nil {
			return "", 0, false, fmt.Errorf("dependency %s: %w", dep, err)
		}
		if err := lemma.AppendAsAxiom(tmpPath, depFormula, dep); err != nil {
			return "", 0, false, err
		}
	}
	for _, d := range *extra {
		if err := lemma.AppendAsAxiom(tmpPath, d.Formula, d.Name); err != nil {
			return "", 0, false, err
		}
	}
	for _, ax := range task.axioms {
		if err := lemma.AppendAsAxiom(tmpPath, ax.Formula, ax.Name); err != nil {
			return "", 0, false, err
		}
	}

	var goalName, goalFormula string
	if task.conjecture != "" {
		if err := lemma.PromoteToConjecture(tmpPath, task.conjecture); err != nil {
			return "", 0, false, err
		}
		goalName = task.conjecture
		goalFormula, err = m.Repo.Load(task.conjecture)
		if err != nil {
			return "", 0, false, err
		}
	} else {
		goalName = "conjecture"
		goalFormula, err = lemma.ExtractConjecture(inputFile)
		if err != nil {
			return "", 0, false, err
		}
	}

	tweeProof, tweeErr := m.Runner.Prove(ctx, prover.ProverTwee, tmpPath)
	tweeOK := tweeErr == nil && prover.IsTheorem(tweeProof)
	vampProof, vampErr := m.Runner.Prove(ctx, prover.ProverVampire, tmpPath)
	vampOK := vampErr == nil && prover.IsTheorem(vampProof)

	switch {
	case tweeOK && vampOK:
		tLen := prover.ProofLength(prover.ProverTwee, tweeProof)
		parsed := steps.ParseProof(vampProof)
		derivation, idx, xerr := steps.Extract(parsed, m.Matcher, goalFormula)
		if xerr == nil && len(derivation) < tLen {
			text, renaming := steps.Prepend(derivation, *extra, goalName, idx, m.Matcher)
			steps.ExtendDependencies(extra, derivation, renaming)
			return text, len(derivation), true, nil
		}
		return tweeProof, tLen, true, nil
	case tweeOK:
		return tweeProof, prover.ProofLength(prover.ProverTwee, tweeProof), true, nil
	case vampOK:
		vLen := prover.ProofLength(prover.ProverVampire, vampProof)
		parsed := steps.ParseProof(vampProof)
		derivation, idx, xerr := steps.Extract(parsed, m.Matcher, goalFormula)
		if xerr == nil {
			text, renaming := steps.Prepend(derivation, *extra, goalName, idx, m.Matcher)
			steps.ExtendDependencies(extra, derivation, renaming)
			return text, len(derivation), true, nil
		}
		return vampProof, vLen, true, nil
	default:
		if ctx.Err() != nil {
			return "", 0, false, ctx.Err()
		}
		return "", 0, false, nil
	}
}
