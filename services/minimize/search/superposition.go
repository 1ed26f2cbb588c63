// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package search

import (
	"strings"

	"github.com/AleutianAI/proofmin/services/minimize/dag"
	"github.com/AleutianAI/proofmin/services/minimize/lemma"
	"github.com/AleutianAI/proofmin/services/minimize/steps"
)

// derivedSteps carries the superposition derivation of a candidate
// lemma, extracted from the initial refutation.
type derivedSteps struct {
	// deps are the stored lemmas the derivation starts from. Empty
	// when the candidate was derived without intermediate lemmas.
	deps []string

	// derivation holds the deriving step of each dependency plus the
	// transitive closure of its premises, keyed by sequence number.
	derivation map[int]steps.Step

	// derivedName and derivedIdx identify the first dependency
	// located in the refutation.
	derivedName string
	derivedIdx  int

	// provedHistory is set when the candidate itself, rather than any
	// of its children, was located in the refutation.
	provedHistory bool
}

// superpositionSteps extracts from the original refutation the steps
// that derive a candidate lemma.
//
// Description:
//
//	For a history lemma the derivation is located through its single
//	children in the dependency graph. When it has none, history
//	children not shared with another parent stand in; when even those
//	are missing the lemma itself is searched for, marking the
//	derivation as a direct proof. Non-history lemmas are searched for
//	directly. In the shared-children and direct cases the dependency
//	list is cleared since the located steps already carry the whole
//	derivation.
//
// Outputs:
//
//	*derivedSteps - nil when no dependency formula appears in the
//	refutation.
func (m *Minimizer) superpositionSteps(g dag.Graph, vampireFile, lemmaName string) *derivedSteps {
	parsed, err := steps.ParseProofFile(vampireFile)
	if err != nil {
		m.log().Warn("cannot parse refutation", "file", vampireFile, "error", err)
		return nil
	}

	deps := []string{lemmaName}
	provedHistory := false
	forceSuper := false

	if strings.HasPrefix(lemmaName, lemma.PrefixHistory) {
		if _, ok := g[lemmaName]; !ok {
			m.log().Warn("history lemma missing from graph", "lemma", lemmaName)
			return nil
		}
		children := g.Children(lemmaName)

		singles := filterPrefix(children, lemma.PrefixSingle)
		if len(singles) == 0 {
			var exclusive []string
			for _, child := range filterPrefix(children, lemma.PrefixHistory) {
				if !hasOtherParent(g, lemmaName, child) {
					exclusive = append(exclusive, child)
				}
			}
			if len(exclusive) == 0 {
				singles = []string{lemmaName}
				provedHistory = true
			} else {
				singles = exclusive
				forceSuper = true
			}
		}
		deps = singles
	}

	relevant := make(map[int]steps.Step)
	matched := false
	derivedIdx := 0
	derivedName := ""

	for _, dep := range deps {
		depFormula, err := m.Repo.Load(dep)
		if err != nil {
			m.log().Warn("cannot load dependency formula", "lemma", dep, "error", err)
			continue
		}
		idx, ok := steps.Locate(parsed, m.Matcher, depFormula)
		if !ok {
			continue
		}
		matched = true
		if derivedIdx == 0 {
			derivedIdx = idx
			derivedName = dep
		}
		for cIdx := range steps.Closure(parsed, idx) {
			if s, ok := parsed[cIdx]; ok {
				relevant[cIdx] = s
			}
		}
	}

	if !matched {
		return nil
	}
	if provedHistory || forceSuper {
		deps = nil
	}
	return &derivedSteps{
		deps:          deps,
		derivation:    relevant,
		derivedName:   derivedName,
		derivedIdx:    derivedIdx,
		provedHistory: provedHistory,
	}
}

func filterPrefix(names []string, prefix string) []string {
	var out []string
	for _, n := range names {
		if strings.HasPrefix(n, prefix) {
			out = append(out, n)
		}
	}
	return out
}

func hasOtherParent(g dag.Graph, parent, child string) bool {
	for p, children := range g {
		if p != parent && children[child] {
			return true
		}
	}
	return false
}
