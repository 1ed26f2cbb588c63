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
	"sort"
	"strconv"
	"strings"
)

// ====== ANNOTATED PARSER ======

// AnnotatedStep is one inference line under the prover's original
// numbering, with its rule annotation preserved.
type AnnotatedStep struct {
	Formula string

	// Deps are premise numbers in the prover's numbering.
	Deps []int

	// NegatedConjecture marks the negation step the refutation
	// argument starts from.
	NegatedConjecture bool

	// Rule is the first token of the inference annotation, or
	// "unknown" when the line carries none.
	Rule string
}

// inferenceRules are rule tokens that perform actual equational
// reasoning, as opposed to bookkeeping (input, rectify, ennf, cnf,
// skolemisation, choice).
var inferenceRules = map[string]bool{
	"demodulation":  true,
	"superposition": true,
	"resolution":    true,
	"inequality":    true,
	"backward":      true,
	"forward":       true,
	"subsumption":   true,
}

func isInferenceRule(rule string) bool {
	return inferenceRules[rule]
}

// ParseAnnotated parses refuter output keeping the prover's own step
// numbers and rule names.
//
// Description:
//
//	For a quantified line the formula is the text after the binder
//	colon; the binder and any leading negation are dropped. The rule
//	is the first token inside the bracket annotation and the deps are
//	every number found there. Lines without a "<num>." prefix and
//	comment lines are ignored.
func ParseAnnotated(text string) map[int]AnnotatedStep {
	parsed := make(map[int]AnnotatedStep)

	for _, raw := range strings.Split(text, "\n") {
		line := strings.TrimSpace(raw)
		if line == "" || strings.HasPrefix(line, "%") {
			continue
		}

		idxPart, rest, ok := strings.Cut(line, ".")
		if !ok {
			continue
		}
		idx, err := strconv.Atoi(strings.TrimSpace(idxPart))
		if err != nil {
			continue
		}

		// The annotation bracket is the last one on the line;
		// binder brackets appear earlier.
		body := strings.TrimSpace(rest)
		var tag string
		hasTag := false
		if cut := strings.LastIndex(rest, "["); cut >= 0 {
			body = strings.TrimSpace(rest[:cut])
			tag = strings.TrimSpace(strings.TrimSuffix(strings.TrimSpace(rest[cut+1:]), "]"))
			hasTag = true
		}

		formulaText := body
		if _, after, found := strings.Cut(body, ":"); found {
			formulaText = strings.TrimSpace(after)
		}

		step := AnnotatedStep{Formula: formulaText, Rule: "unknown"}
		if hasTag {
			step.NegatedConjecture = strings.Contains(tag, "negated conjecture")
			if fields := strings.Fields(tag); len(fields) > 0 {
				step.Rule = fields[0]
			}
			for _, tok := range splitTagTokens(tag) {
				if n, err := strconv.Atoi(tok); err == nil {
					step.Deps = append(step.Deps, n)
				}
			}
		}

		parsed[idx] = step
	}

	return parsed
}

// ====== TURNAROUND ======

// NeedsTurnaround reports whether a refutation must be reoriented
// before its inference steps can serve as forward lemma derivations.
//
// Description:
//
//	The negated-conjecture chain is followed forward to its first
//	inference step. If that inference does not immediately produce
//	the final contradiction, the chain interleaves real reasoning
//	with the negated assumption and the proof has to be turned
//	around.
func NeedsTurnaround(stepsMap map[int]AnnotatedStep) bool {
	forward := forwardDeps(stepsMap)
	roots := negatedRoots(stepsMap)
	if len(roots) == 0 {
		return false
	}

	chain := negChain(forward, roots)
	for pos, idx := range chain {
		if !isInferenceRule(stepsMap[idx].Rule) {
			continue
		}
		if pos+1 >= len(chain) {
			return false
		}
		return stepsMap[chain[pos+1]].Formula != "$false"
	}
	return false
}

// TurnAround reorients the negated-conjecture chain of a refutation.
//
// Description:
//
//	Steps on the chain from the last pre-inference step down to the
//	contradiction are contraposed (disequalities become equalities,
//	Skolem constants become fresh variables) and placed at the
//	chain's indices in reverse order. Rules and premises are
//	inherited from the step originally holding each target index, so
//	the dependency structure of the proof keeps pointing forward.
//	The final "$false" becomes "$true". Proofs without a negated
//	conjecture or without a pre-inference chain step are returned
//	unchanged.
func TurnAround(stepsMap map[int]AnnotatedStep) map[int]AnnotatedStep {
	out := make(map[int]AnnotatedStep, len(stepsMap))
	for idx, s := range stepsMap {
		out[idx] = s
	}

	forward := forwardDeps(stepsMap)
	roots := negatedRoots(stepsMap)
	if len(roots) == 0 {
		return out
	}

	chain := negChain(forward, roots)
	start, ok := stepBeforeFirstInference(stepsMap, chain)
	if !ok {
		return out
	}

	chainSet := make(map[int]bool, len(chain))
	for _, idx := range chain {
		chainSet[idx] = true
	}

	// Post-order walk from the start step along the chain gives the
	// derivation order ending at the contradiction.
	var order []int
	visited := make(map[int]bool)
	var walk func(idx int)
	walk = func(idx int) {
		if visited[idx] || !chainSet[idx] {
			return
		}
		visited[idx] = true
		for _, dep := range forward[idx] {
			if chainSet[dep] {
				walk(dep)
			}
		}
		order = append(order, idx)
	}
	walk(start)

	for i, oldIdx := range order {
		newIdx := order[len(order)-1-i]

		step := stepsMap[oldIdx]
		step.Formula = skolemToVariables(contrapositive(step.Formula))
		if step.Formula == "$false" {
			step.Formula = "$true"
		}
		step.Rule = stepsMap[newIdx].Rule
		step.Deps = append([]int(nil), stepsMap[newIdx].Deps...)

		out[newIdx] = step
	}

	return out
}

// FormatAnnotated renders annotated steps back into proof lines in
// index order.
func FormatAnnotated(stepsMap map[int]AnnotatedStep) string {
	var b strings.Builder
	for _, idx := range SortedIndices(stepsMap) {
		step := stepsMap[idx]
		tag := step.Rule
		if step.NegatedConjecture {
			tag = "negated conjecture"
		}
		if len(step.Deps) > 0 {
			depTexts := make([]string, 0, len(step.Deps))
			for _, d := range step.Deps {
				depTexts = append(depTexts, strconv.Itoa(d))
			}
			tag += " " + strings.Join(depTexts, ",")
		}
		fmt.Fprintf(&b, "%d. %s [%s]\n", idx, step.Formula, tag)
	}
	return b.String()
}

// forwardDeps inverts the premise relation: premise index to the
// steps that use it.
func forwardDeps(stepsMap map[int]AnnotatedStep) map[int][]int {
	forward := make(map[int][]int)
	for _, idx := range SortedIndices(stepsMap) {
		for _, dep := range stepsMap[idx].Deps {
			forward[dep] = append(forward[dep], idx)
		}
	}
	return forward
}

func negatedRoots(stepsMap map[int]AnnotatedStep) []int {
	var roots []int
	for idx, s := range stepsMap {
		if s.NegatedConjecture {
			roots = append(roots, idx)
		}
	}
	sort.Ints(roots)
	return roots
}

// negChain returns the sorted set of steps reachable forward from
// the negated-conjecture roots.
func negChain(forward map[int][]int, roots []int) []int {
	visited := make(map[int]bool)
	var visit func(idx int)
	visit = func(idx int) {
		if visited[idx] {
			return
		}
		visited[idx] = true
		for _, next := range forward[idx] {
			visit(next)
		}
	}
	for _, r := range roots {
		visit(r)
	}

	chain := make([]int, 0, len(visited))
	for idx := range visited {
		chain = append(chain, idx)
	}
	sort.Ints(chain)
	return chain
}

// stepBeforeFirstInference finds the chain step immediately before
// the first inference step.
func stepBeforeFirstInference(stepsMap map[int]AnnotatedStep, chain []int) (int, bool) {
	for pos, idx := range chain {
		if isInferenceRule(stepsMap[idx].Rule) {
			if pos == 0 {
				return 0, false
			}
			return chain[pos-1], true
		}
	}
	return 0, false
}

// contrapositive flips a disequality conclusion into an equality.
func contrapositive(formulaText string) string {
	return strings.ReplaceAll(formulaText, "!=", "=")
}

var skolemRe = regexp.MustCompile(`sK\d+`)

// skolemToVariables replaces each distinct Skolem constant with a
// fresh variable, in first-occurrence order.
func skolemToVariables(formulaText string) string {
	assigned := make(map[string]string)
	next := 0
	return skolemRe.ReplaceAllStringFunc(formulaText, func(sk string) string {
		if v, ok := assigned[sk]; ok {
			return v
		}
		v := "X" + strconv.Itoa(next)
		next++
		assigned[sk] = v
		return v
	})
}
