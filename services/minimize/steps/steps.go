// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

// Package steps parses refutation prover output into proof step maps
// and reorients refutation-shaped proofs into forward derivations.
//
// Two parsers live here. ParseProof assigns fresh sequential indices
// starting at the first inference line, which is what the lemma
// extraction pipeline wants: stable small indices independent of the
// prover's internal numbering. ParseAnnotated keeps the prover's own
// numbering and the rule annotations, which the turnaround transform
// needs to walk the negated-conjecture chain.
package steps

import (
	"fmt"
	"os"
	"sort"
	"strconv"
	"strings"

	"github.com/AleutianAI/proofmin/services/minimize/formula"
)

// ====== TYPES ======

// Dep links a proof step to one of its premises.
type Dep struct {
	// Orig is the premise's number in the prover's own numbering.
	Orig int

	// Seq is the premise's sequential index, or 0 when the premise
	// lies before the indexed region (axioms and clausification).
	Seq int
}

// Step is one inference line under sequential numbering.
type Step struct {
	Formula string
	Deps    []Dep
}

// NamedFormula pairs a lemma or axiom name with its formula text.
type NamedFormula struct {
	Name    string
	Formula string
}

// startKeywords mark the first line worth indexing. Matching is by
// substring, so compound rule names like "backward demodulation" and
// "subsumption resolution" qualify.
var startKeywords = []string{"demodulation", "superposition", "resolution", "inequality"}

// ====== SEQUENTIAL PARSER ======

// ParseProof parses refuter output into sequentially numbered steps.
//
// Description:
//
//	Lines look like "<num>. <formula> [<rule> <premises>]". Indexing
//	starts at 1 on the first line whose rule annotation mentions an
//	inference keyword; everything before it (axiom echo, negation,
//	clausification) is skipped. Premises are resolved to sequential
//	indices through the prover numbers seen so far; a premise outside
//	the indexed region resolves to the sentinel 0.
//
// Inputs:
//
//	text - Full prover output, headers and footers included.
//
// Outputs:
//
//	map[int]Step - Sequential index to step. Empty when the output
//	               contains no inference lines.
func ParseProof(text string) map[int]Step {
	steps := make(map[int]Step)
	provToSeq := make(map[int]int)
	seq := 0

	for _, raw := range strings.Split(text, "\n") {
		line := strings.TrimSpace(raw)
		if line == "" || strings.HasPrefix(line, "%") {
			continue
		}

		idxPart, rest, ok := strings.Cut(line, ".")
		if !ok {
			continue
		}
		provNum, err := strconv.Atoi(strings.TrimSpace(idxPart))
		if err != nil {
			continue
		}

		body, tag, hasTag := strings.Cut(rest, "[")

		if seq == 0 {
			if !hasTag || !containsAny(tag, startKeywords) {
				continue
			}
			seq = 1
		}

		var deps []Dep
		if hasTag {
			for _, tok := range splitTagTokens(tag) {
				if n, err := strconv.Atoi(tok); err == nil {
					deps = append(deps, Dep{Orig: n, Seq: provToSeq[n]})
				}
			}
		}

		steps[seq] = Step{Formula: strings.TrimSpace(body), Deps: deps}
		provToSeq[provNum] = seq
		seq++
	}

	return steps
}

// ParseProofFile reads and parses a refuter proof file.
func ParseProofFile(path string) (map[int]Step, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read proof %s: %w", path, err)
	}
	return ParseProof(string(content)), nil
}

// ====== TRAVERSAL ======

// Closure collects root and every step transitively reachable through
// sequential dependencies. The sentinel index 0 is never followed.
func Closure(steps map[int]Step, root int) map[int]bool {
	collected := make(map[int]bool)
	gather(steps, root, collected)
	return collected
}

func gather(steps map[int]Step, idx int, collected map[int]bool) {
	if collected[idx] {
		return
	}
	collected[idx] = true
	for _, d := range steps[idx].Deps {
		if d.Seq > 0 {
			gather(steps, d.Seq, collected)
		}
	}
}

// SortedIndices returns the step indices in ascending order.
func SortedIndices[S any](steps map[int]S) []int {
	out := make([]int, 0, len(steps))
	for idx := range steps {
		out = append(out, idx)
	}
	sort.Ints(out)
	return out
}

// Locate finds the lowest-indexed step whose formula is matched by
// the lemma. Step formulas are unparenthesized equation bodies, so
// each is wrapped before matching.
func Locate(steps map[int]Step, m *formula.Matcher, lemmaFormula string) (int, bool) {
	for _, idx := range SortedIndices(steps) {
		wrapped := "(" + steps[idx].Formula + ")"
		if m.Match(lemmaFormula, wrapped) {
			return idx, true
		}
	}
	return 0, false
}

// Extract returns the derivation of a lemma inside a proof: the step
// deriving it plus the transitive closure of that step's premises.
//
// Outputs:
//
//	map[int]Step - The relevant steps, keyed by sequential index.
//	int - Sequential index of the deriving step.
//	error - ErrLemmaNotDerived when no step matches the lemma.
func Extract(steps map[int]Step, m *formula.Matcher, lemmaFormula string) (map[int]Step, int, error) {
	derived, ok := Locate(steps, m, lemmaFormula)
	if !ok {
		return nil, 0, ErrLemmaNotDerived
	}

	relevant := make(map[int]Step)
	for idx := range Closure(steps, derived) {
		if s, ok := steps[idx]; ok {
			relevant[idx] = s
		}
	}
	return relevant, derived, nil
}

// ====== HELPERS ======

func containsAny(s string, subs []string) bool {
	for _, sub := range subs {
		if strings.Contains(s, sub) {
			return true
		}
	}
	return false
}

// splitTagTokens splits a rule annotation ("superposition 20,14]")
// into whitespace- and comma-separated tokens.
func splitTagTokens(tag string) []string {
	tag = strings.TrimSuffix(strings.TrimSpace(tag), "]")
	return strings.FieldsFunc(tag, func(r rune) bool {
		return r == ',' || r == ' ' || r == '\t'
	})
}
