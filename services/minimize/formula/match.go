// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package formula

// ====== MATCHER ======

// DefaultPermutationBound caps the quantifier permutation search.
// Factorial growth makes larger binder lists too expensive to
// permute; above the bound a single order-preserving attempt is made.
const DefaultPermutationBound = 3

// Matcher performs one-directional pattern matching between formulas.
//
// Thread Safety: Matcher is stateless apart from configuration and is
// safe for concurrent use.
type Matcher struct {
	// PermutationBound overrides DefaultPermutationBound when > 0.
	PermutationBound int
}

func (m *Matcher) bound() int {
	if m != nil && m.PermutationBound > 0 {
		return m.PermutationBound
	}
	return DefaultPermutationBound
}

// Match reports whether pattern matches instance one-directionally.
//
// Description:
//
//	Variables in the pattern may bind arbitrary subterms of the
//	instance, consistently across repeated occurrences. Variables in
//	the instance only match against pattern variables. When the
//	pattern carries a leading quantifier with at most PermutationBound
//	declared variables, every permutation of the binder list is tried;
//	a match under any permutation succeeds. Malformed input on either
//	side yields false.
//
// Inputs:
//
//	pattern - Formula whose variables act as match holes.
//	instance - Concrete formula to match against.
//
// Outputs:
//
//	bool - True when some variable binding makes pattern equal instance.
func (m *Matcher) Match(pattern, instance string) bool {
	inst, err := Parse(Normalize(instance))
	if err != nil {
		return false
	}

	vars, body := SplitQuantifier(pattern)
	if len(vars) == 0 || len(vars) > m.bound() {
		pat, err := Parse(Normalize(pattern))
		if err != nil {
			return false
		}
		return matchTerms(pat, inst, make(map[string]Term))
	}

	for _, perm := range permutations(vars) {
		b := body
		for i, v := range perm {
			b = substituteVar(b, v, canonName(i))
		}
		b = canonicalizeFreeVars(b, len(perm))
		pat, err := Parse(stripWhitespace(b))
		if err != nil {
			continue
		}
		if matchTerms(pat, inst, make(map[string]Term)) {
			return true
		}
	}
	return false
}

// AlphaEquivalent reports whether a and b match in both directions.
// Bidirectional matching forces a variable-to-variable bijection, so
// this is the alpha-equivalence oracle used for lemma deduplication.
func (m *Matcher) AlphaEquivalent(a, b string) bool {
	return m.Match(a, b) && m.Match(b, a)
}

// matchTerms recursively matches pattern against instance, extending
// bindings as pattern variables are bound. Bindings must stay
// consistent across repeated variable occurrences.
func matchTerms(pattern, instance Term, bindings map[string]Term) bool {
	if pattern.IsVariable() {
		if bound, ok := bindings[pattern.Label]; ok {
			return bound.Equal(instance)
		}
		bindings[pattern.Label] = instance
		return true
	}
	if instance.IsVariable() {
		return false
	}
	if pattern.Label != instance.Label || len(pattern.Args) != len(instance.Args) {
		return false
	}
	for i := range pattern.Args {
		if !matchTerms(pattern.Args[i], instance.Args[i], bindings) {
			return false
		}
	}
	return true
}

// permutations returns every ordering of items. The caller bounds the
// input length, so factorial growth is contained.
func permutations(items []string) [][]string {
	if len(items) <= 1 {
		out := make([]string, len(items))
		copy(out, items)
		return [][]string{out}
	}
	var result [][]string
	for i := range items {
		rest := make([]string, 0, len(items)-1)
		rest = append(rest, items[:i]...)
		rest = append(rest, items[i+1:]...)
		for _, p := range permutations(rest) {
			perm := make([]string, 0, len(items))
			perm = append(perm, items[i])
			perm = append(perm, p...)
			result = append(result, perm)
		}
	}
	return result
}
