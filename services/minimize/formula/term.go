// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package formula

import (
	"fmt"
	"strings"
)

// Term is a labeled tree over the canonical matcher syntax.
//
// Description:
//
//	A leaf whose label starts with an uppercase letter is a variable;
//	every other node is a 0-ary or n-ary function application. There is
//	no separate variable constructor: variable-ness is purely syntactic,
//	which keeps parsing and printing symmetric with the prover notations.
//	Equality predicates appear as binary applications labeled "=" or "!=".
type Term struct {
	// Label is the function symbol, predicate symbol, or variable name.
	Label string

	// Args holds the child terms. Empty for leaves.
	Args []Term
}

// IsVariable reports whether the term is a variable leaf.
//
// Outputs:
//
//	bool - True for a leaf whose label starts with an uppercase letter.
func (t Term) IsVariable() bool {
	return len(t.Args) == 0 && isVariableName(t.Label)
}

// Equal reports structural equality of two terms.
func (t Term) Equal(other Term) bool {
	if t.Label != other.Label || len(t.Args) != len(other.Args) {
		return false
	}
	for i := range t.Args {
		if !t.Args[i].Equal(other.Args[i]) {
			return false
		}
	}
	return true
}

// String renders the term back into the canonical surface syntax.
func (t Term) String() string {
	if len(t.Args) == 0 {
		return t.Label
	}
	if (t.Label == "=" || t.Label == "!=") && len(t.Args) == 2 {
		return fmt.Sprintf("(%s%s%s)", t.Args[0], t.Label, t.Args[1])
	}
	parts := make([]string, len(t.Args))
	for i, a := range t.Args {
		parts[i] = a.String()
	}
	return fmt.Sprintf("%s(%s)", t.Label, strings.Join(parts, ","))
}

// isVariableName is the single place where the variable naming
// convention lives: an identifier is a variable iff its first rune
// is an ASCII uppercase letter.
func isVariableName(label string) bool {
	return len(label) > 0 && label[0] >= 'A' && label[0] <= 'Z'
}

// Parse parses a normalized, whitespace-free formula or term string
// into a Term tree.
//
// Description:
//
//	Accepts the canonical surface syntax produced by Normalize:
//	atoms ("V0", "sK1", "$false"), applications ("op(V0,V1)"), and
//	parenthesized infix equations ("(op(V0,V1)=V0)", "(a!=b)").
//
// Inputs:
//
//	s - Normalized formula text.
//
// Outputs:
//
//	Term - The parsed tree.
//	error - Non-nil on malformed input (unbalanced parentheses,
//	        empty arguments). Callers in the matcher treat a parse
//	        error as "no match".
func Parse(s string) (Term, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return Term{}, fmt.Errorf("empty term")
	}

	// Strip parentheses that wrap the whole expression.
	for wrapped(s) {
		s = s[1 : len(s)-1]
	}

	// Top-level infix equation binds loosest.
	if op, pos := topLevelEquality(s); pos >= 0 {
		lhs, err := Parse(s[:pos])
		if err != nil {
			return Term{}, err
		}
		rhs, err := Parse(s[pos+len(op):])
		if err != nil {
			return Term{}, err
		}
		return Term{Label: op, Args: []Term{lhs, rhs}}, nil
	}

	// Function application: name(arg1,...,argN).
	if open := strings.IndexByte(s, '('); open >= 0 {
		if !strings.HasSuffix(s, ")") {
			return Term{}, fmt.Errorf("unterminated application in %q", s)
		}
		name := s[:open]
		if name == "" {
			return Term{}, fmt.Errorf("missing function symbol in %q", s)
		}
		inner := s[open+1 : len(s)-1]
		parts, err := splitTopLevel(inner)
		if err != nil {
			return Term{}, err
		}
		args := make([]Term, 0, len(parts))
		for _, p := range parts {
			arg, err := Parse(p)
			if err != nil {
				return Term{}, err
			}
			args = append(args, arg)
		}
		return Term{Label: name, Args: args}, nil
	}

	// Atom (variable or constant).
	if strings.ContainsAny(s, "(),") {
		return Term{}, fmt.Errorf("malformed atom %q", s)
	}
	return Term{Label: s}, nil
}

// wrapped reports whether s is fully enclosed by one balanced pair
// of parentheses.
func wrapped(s string) bool {
	if len(s) < 2 || s[0] != '(' || s[len(s)-1] != ')' {
		return false
	}
	depth := 0
	for i := 0; i < len(s); i++ {
		switch s[i] {
		case '(':
			depth++
		case ')':
			depth--
			if depth == 0 {
				return i == len(s)-1
			}
		}
	}
	return false
}

// topLevelEquality finds the first "=" or "!=" at parenthesis depth 0.
//
// Outputs:
//
//	string - The operator ("=" or "!="), empty if none.
//	int - Byte offset of the operator, -1 if none.
func topLevelEquality(s string) (string, int) {
	depth := 0
	for i := 0; i < len(s); i++ {
		switch s[i] {
		case '(':
			depth++
		case ')':
			depth--
		case '=':
			if depth == 0 {
				if i > 0 && s[i-1] == '!' {
					return "!=", i - 1
				}
				return "=", i
			}
		}
	}
	return "", -1
}

// splitTopLevel splits an argument list at depth-0 commas.
func splitTopLevel(s string) ([]string, error) {
	var parts []string
	depth := 0
	start := 0
	for i := 0; i < len(s); i++ {
		switch s[i] {
		case '(':
			depth++
		case ')':
			depth--
			if depth < 0 {
				return nil, fmt.Errorf("unbalanced parentheses in %q", s)
			}
		case ',':
			if depth == 0 {
				parts = append(parts, s[start:i])
				start = i + 1
			}
		}
	}
	if depth != 0 {
		return nil, fmt.Errorf("unbalanced parentheses in %q", s)
	}
	parts = append(parts, s[start:])
	for _, p := range parts {
		if strings.TrimSpace(p) == "" {
			return nil, fmt.Errorf("empty argument in %q", s)
		}
	}
	return parts, nil
}
