// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

// Package formula implements alpha-equivalence normalization and
// pattern matching over first-order formula text.
//
// The package is the single equality oracle for "is this the same
// lemma": the two provers name their variables differently (skeleton
// X<digits> variables on one side, letter variables on the other), so
// raw string comparison is useless. Normalize canonicalizes variable
// names, Match performs one-directional structural pattern matching,
// and alpha-equivalence is matching in both directions.
//
// Nothing in this package panics on malformed input; garbage degrades
// to "no match".
package formula

import (
	"regexp"
	"strconv"
	"strings"
)

var (
	// quantRe extracts a leading universal quantifier: ! [X,Y,...] : body.
	// The body capture stops at the first newline; \s* after the colon
	// absorbs a line break between the binder and the body.
	quantRe = regexp.MustCompile(`!\s*\[([^\]]*)\]\s*:\s*(.*)`)

	// freeVarRe matches prover-generated free variables (X0, X12, ...).
	freeVarRe = regexp.MustCompile(`\bX\d+\b`)

	// canonVarRe matches canonical variables already present in a body.
	canonVarRe = regexp.MustCompile(`\bV(\d+)\b`)
)

// Normalize produces the canonical form of a formula.
//
// Description:
//
//	If the formula is textually "![vars] : body", each quantified
//	variable is replaced, in declaration order, by V0, V1, ...
//	throughout the body using word-boundary substitution. Any
//	remaining free X<digits> variables are then canonicalized in
//	first-occurrence order to the next available V<i>. All whitespace
//	is stripped. The result is invariant under quantifier-variable
//	renaming and under the provers' free-variable naming schemes.
//
// Inputs:
//
//	text - Raw formula text, possibly spanning a binder line and a
//	       body line.
//
// Outputs:
//
//	string - Canonical, whitespace-free formula text.
func Normalize(text string) string {
	body := text
	count := 0
	if cap := quantRe.FindStringSubmatch(text); cap != nil {
		vars := splitVarList(cap[1])
		body = strings.TrimSpace(cap[2])
		for i, v := range vars {
			body = substituteVar(body, v, canonName(i))
		}
		count = len(vars)
	}
	body = canonicalizeFreeVars(body, count)
	return stripWhitespace(body)
}

// SplitQuantifier separates a leading universal quantifier from its body.
//
// Outputs:
//
//	[]string - Declared variable names in declaration order (nil when
//	           the formula has no leading quantifier).
//	string - The body (the whole formula when unquantified).
func SplitQuantifier(text string) ([]string, string) {
	if cap := quantRe.FindStringSubmatch(text); cap != nil {
		return splitVarList(cap[1]), strings.TrimSpace(cap[2])
	}
	return nil, text
}

// canonicalizeFreeVars rewrites free X<digits> variables to canonical
// V<i> names in first-occurrence order.
//
// The counter starts past both the quantified-variable count and any
// canonical variables already present, so substitution never collides
// with names introduced earlier in the normalization.
func canonicalizeFreeVars(body string, quantified int) string {
	next := quantified
	for _, m := range canonVarRe.FindAllStringSubmatch(body, -1) {
		if n, err := strconv.Atoi(m[1]); err == nil && n+1 > next {
			next = n + 1
		}
	}

	assigned := make(map[string]string)
	return freeVarRe.ReplaceAllStringFunc(body, func(v string) string {
		if canon, ok := assigned[v]; ok {
			return canon
		}
		canon := canonName(next)
		next++
		assigned[v] = canon
		return canon
	})
}

// substituteVar replaces every word-boundary occurrence of name.
func substituteVar(body, name, replacement string) string {
	re := regexp.MustCompile(`\b` + regexp.QuoteMeta(name) + `\b`)
	return re.ReplaceAllString(body, replacement)
}

func canonName(i int) string {
	return "V" + strconv.Itoa(i)
}

func splitVarList(list string) []string {
	var vars []string
	for _, v := range strings.Split(list, ",") {
		v = strings.TrimSpace(v)
		if v != "" {
			vars = append(vars, v)
		}
	}
	return vars
}

func stripWhitespace(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		switch r {
		case ' ', '\t', '\n', '\r':
		default:
			b.WriteRune(r)
		}
	}
	return b.String()
}
