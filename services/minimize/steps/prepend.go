// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package steps

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/AleutianAI/proofmin/services/minimize/formula"
)

// lemmaIdxRe matches any lemma naming flavor (lemma_0003,
// single_lemma_0003, history_lemma_0003, abstract_lemma_0003) and
// captures the numeric index.
var lemmaIdxRe = regexp.MustCompile(`(?:.*_)?lemma_(\d+)$`)

// LastLemmaIndex returns the highest lemma index among the named
// dependencies, or 0 when none carry one.
func LastLemmaIndex(deps []NamedFormula) int {
	max := 0
	for _, d := range deps {
		cap := lemmaIdxRe.FindStringSubmatch(d.Name)
		if cap == nil {
			continue
		}
		if n, err := strconv.Atoi(cap[1]); err == nil && n > max {
			max = n
		}
	}
	return max
}

// Prepend renders derivation steps as an annotated proof header and
// assigns each step a lemma name that continues the numbering of the
// existing dependencies.
//
// Description:
//
//	Step 0 is by convention the base axiom and is named "a1". The
//	step deriving the target lemma keeps the lemma's own name; every
//	other step receives the next free lemma_<nnnn> index. The header
//	lists each step with its premise names and formulas so a reader
//	can replay the derivation.
//
// Inputs:
//
//	derivation - Steps keyed by sequential index.
//	axioms - Existing named dependencies, used for numbering and for
//	         resolving sentinel premises.
//	derivedName - Name of the lemma the derivation proves, empty when
//	              unknown.
//	derivedSeq - Sequential index of the deriving step, 0 when
//	             unknown.
//
// Outputs:
//
//	string - The annotated header block.
//	map[int]string - Sequential index to assigned lemma name.
func Prepend(derivation map[int]Step, axioms []NamedFormula, derivedName string, derivedSeq int, m *formula.Matcher) (string, map[int]string) {
	nextIdx := LastLemmaIndex(axioms) + 1

	renaming := make(map[int]string, len(derivation))
	for _, seq := range SortedIndices(derivation) {
		var name string
		switch {
		case seq == 0:
			name = "a1"
		case seq == derivedSeq && derivedName != "":
			name = derivedName
		default:
			name = fmt.Sprintf("lemma_%04d", nextIdx)
			nextIdx++
		}
		renaming[seq] = name
	}

	var b strings.Builder
	b.WriteString("% === Superposition Steps ===\n")

	for _, seq := range SortedIndices(derivation) {
		step := derivation[seq]

		depList := make([]string, 0, len(step.Deps))
		for _, d := range step.Deps {
			if d.Seq == 0 {
				depList = append(depList, resolveAxiomDep(axioms, step.Formula, m))
				continue
			}
			depName, ok := renaming[d.Seq]
			if !ok {
				depName = fmt.Sprintf("lemma_%04d", d.Seq)
			}
			depFormula := "UNKNOWN_FORMULA"
			if s, ok := derivation[d.Seq]; ok {
				depFormula = s.Formula
			}
			depList = append(depList, fmt.Sprintf("%s: %s", depName, depFormula))
		}

		fmt.Fprintf(&b, "%% %s: %s | deps: %s\n", renaming[seq], step.Formula, strings.Join(depList, ", "))
	}

	b.WriteString("\n")
	return b.String(), renaming
}

// resolveAxiomDep names a sentinel premise. A premise outside the
// indexed region is usually the base axiom; when a named dependency
// matches the step formula it is cited instead.
func resolveAxiomDep(axioms []NamedFormula, stepFormula string, m *formula.Matcher) string {
	for _, a := range axioms {
		if m.Match(a.Formula, stepFormula) {
			if a.Name == "a1" {
				return "a1"
			}
			return fmt.Sprintf("%s: %s", a.Name, a.Formula)
		}
	}
	return "a1"
}

// ExtendDependencies appends each derivation step, under its assigned
// name, to the dependency list.
func ExtendDependencies(deps *[]NamedFormula, derivation map[int]Step, renaming map[int]string) {
	for _, seq := range SortedIndices(derivation) {
		name, ok := renaming[seq]
		if !ok {
			continue
		}
		*deps = append(*deps, NamedFormula{Name: name, Formula: derivation[seq].Formula})
	}
}
