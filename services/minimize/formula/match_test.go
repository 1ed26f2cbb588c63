// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package formula

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMatcher_Match(t *testing.T) {
	m := &Matcher{}

	tests := []struct {
		name     string
		pattern  string
		instance string
		want     bool
	}{
		{
			name:     "same shape different numbering",
			pattern:  "(op(V0,op(op(V1,V0),V2))=V3)",
			instance: "(op(X5,op(op(X6,X5),X7))=X8)",
			want:     true,
		},
		{
			name:     "renamed flat equation",
			pattern:  "(op(X0,X1)=X2)",
			instance: "(op(X8,X3)=X4)",
			want:     true,
		},
		{
			name:     "repeated variable against distinct structure",
			pattern:  "(op(X0,op(X1,X0))=X1)",
			instance: "(op(X0,X0)=X1)",
			want:     false,
		},
		{
			name:     "distinct variables against repeated variable",
			pattern:  "(op(X0,X1)=X1)",
			instance: "(op(X0,X0)=X1)",
			want:     false,
		},
		{
			name:     "variable against compound right side",
			pattern:  "(op(X0,X1)=X1)",
			instance: "(op(X0,X1)=op(X0,X1))",
			want:     false,
		},
		{
			name:     "quantified binder order",
			pattern:  "! [X, Y] : (op(Y, X) = Y)",
			instance: "! [X0, X1] :\n          (op(X1,X0) = X1)",
			want:     true,
		},
		{
			name:     "quantified binder order reversed",
			pattern:  "! [X, Y] : (op(X, Y) = X)",
			instance: "! [X0, X1] :\n          (op(X1,X0) = X1)",
			want:     true,
		},
		{
			name:     "deep structure mismatch",
			pattern:  "! [X, Y, Z] : (op(X, op(op(Y, op(op(Z, Y), Y)), X)) = X)",
			instance: "! [X, Y] : (op(X, Y) = X)",
			want:     false,
		},
		{
			name: "four binders above permutation bound order preserving",
			pattern: "! [X0, X1, X2, X3] : (op(X3,op(op(X1,op(op(X2,X1),X1)),X3)) = " +
				"op(op(X3,op(op(X1,op(op(X2,X1),X1)),X3)),op(X0,op(op(X1,op(op(X2,X1),X1)),X0))))",
			instance: "(op(X48,op(op(X45,op(op(X46,X45),X45)),X48)) = " +
				"op(op(X48,op(op(X45,op(op(X46,X45),X45)),X48)),op(X44,op(op(X45,op(op(X46,X45),X45)),X44))))",
			want: true,
		},
		{
			name: "similar skeleton divergent sharing",
			pattern: "(op(V3,op(op(V1,op(op(V2,V1),V1)),V3))=" +
				"op(op(V3,op(op(V1,op(op(V2,V1),V1)),V3)),op(V0,op(op(V1,op(op(V2,V1),V1)),V0))))",
			instance: "(op(V0,op(op(V1,op(op(V2,V3),V1)),V0))=" +
				"op(op(V0,op(op(V1,op(op(V2,V3),V1)),V0)),op(V4,op(op(V5,op(V3,V5)),V4))))",
			want: false,
		},
		{
			name:     "malformed pattern",
			pattern:  "(op(X0,X1=",
			instance: "(op(X0,X1)=X2)",
			want:     false,
		},
		{
			name:     "malformed instance",
			pattern:  "(op(X0,X1)=X2)",
			instance: "op(,)=X2",
			want:     false,
		},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, m.Match(tc.pattern, tc.instance))
		})
	}
}

func TestMatcher_Match_OneDirectional(t *testing.T) {
	m := &Matcher{}

	// A general pattern matches a more specific instance, but not the
	// other way around.
	general := "(op(V0,V1)=V2)"
	specific := "(op(X0,op(X1,X0))=X1)"
	assert.True(t, m.Match(general, specific))
	assert.False(t, m.Match(specific, general))
}

func TestMatcher_AlphaEquivalent(t *testing.T) {
	m := &Matcher{}

	t.Run("specialization is not equivalence", func(t *testing.T) {
		assert.False(t, m.AlphaEquivalent("(op(V0,V1)=V2)", "(op(X0,op(X1,X0))=X1)"))
	})

	t.Run("renaming is equivalence", func(t *testing.T) {
		assert.True(t, m.AlphaEquivalent(
			"! [X, Y] : (op(Y, X) = Y)",
			"! [A, B] : (op(A, B) = A)",
		))
	})

	t.Run("symmetric", func(t *testing.T) {
		a := "(op(V0,op(op(V1,V0),V2))=V3)"
		b := "(op(X5,op(op(X6,X5),X7))=X8)"
		assert.Equal(t, m.AlphaEquivalent(a, b), m.AlphaEquivalent(b, a))
		assert.True(t, m.AlphaEquivalent(a, b))
	})

	t.Run("reflexive under binder permutation", func(t *testing.T) {
		assert.True(t, m.AlphaEquivalent(
			"! [X, Y, Z] : (op(X, op(Y, Z)) = op(Z, Y))",
			"! [Z, Y, X] : (op(X, op(Y, Z)) = op(Z, Y))",
		))
	})
}

func TestMatcher_PermutationBound(t *testing.T) {
	// Above the bound only the order-preserving attempt runs, which
	// must still find matches that need no reordering.
	strict := &Matcher{PermutationBound: 1}
	pattern := "! [X, Y] : (op(X, Y) = X)"
	instance := "! [X0, X1] : (op(X0,X1) = X0)"

	assert.True(t, strict.Match(pattern, instance))
	assert.True(t, (&Matcher{}).Match(pattern, instance))

	assert.Equal(t, DefaultPermutationBound, (&Matcher{}).bound())
	assert.Equal(t, 1, strict.bound())
}

func TestParse(t *testing.T) {
	t.Run("nested application", func(t *testing.T) {
		term, err := Parse("op(V0,op(V1,V0))")
		assert.NoError(t, err)
		assert.Equal(t, "op", term.Label)
		assert.Len(t, term.Args, 2)
		assert.True(t, term.Args[0].IsVariable())
		assert.Equal(t, "op(V0,op(V1,V0))", term.String())
	})

	t.Run("infix equation", func(t *testing.T) {
		term, err := Parse("(op(V0,V1)=V0)")
		assert.NoError(t, err)
		assert.Equal(t, "=", term.Label)
		assert.Equal(t, "(op(V0,V1)=V0)", term.String())
	})

	t.Run("negated equation", func(t *testing.T) {
		term, err := Parse("(sK0!=sK1)")
		assert.NoError(t, err)
		assert.Equal(t, "!=", term.Label)
		assert.False(t, term.Args[0].IsVariable())
	})

	t.Run("malformed", func(t *testing.T) {
		for _, bad := range []string{"", "op(", "op(,a)", "(a=b", "op)a("} {
			_, err := Parse(bad)
			assert.Error(t, err, "input %q", bad)
		}
	})
}
