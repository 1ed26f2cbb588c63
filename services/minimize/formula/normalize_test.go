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

func TestNormalize(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{
			name: "quantified letter variables",
			in:   "! [X, Y] : (op(X, Y) = X)",
			want: "(op(V0,V1)=V0)",
		},
		{
			name: "free numbered variables first occurrence order",
			in:   "(op(X1,X0) = X1)",
			want: "(op(V0,V1)=V0)",
		},
		{
			name: "quantified numbered variables declaration order",
			in: "! [X0, X1] :\n" +
				"          (op(X1,X0) = X1)",
			want: "(op(V1,V0)=V1)",
		},
		{
			name: "unquantified already canonical",
			in:   "(op(V0,op(op(V1,V0),V2))=V3)",
			want: "(op(V0,op(op(V1,V0),V2))=V3)",
		},
		{
			name: "high indices collapse",
			in:   "(op(X48,op(X45,X48)) = X44)",
			want: "(op(V0,op(V1,V0))=V2)",
		},
		{
			name: "whitespace stripped",
			in:   "( op( a , b ) = c )",
			want: "(op(a,b)=c)",
		},
		{
			name: "skolem constants untouched",
			in:   "(op(sK0,X0) = sK0)",
			want: "(op(sK0,V0)=sK0)",
		},
		{
			name: "free vars after quantified vars",
			in:   "! [Y] : (op(Y, X3) = X3)",
			want: "(op(V0,V1)=V1)",
		},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, Normalize(tc.in))
		})
	}
}

func TestNormalize_Idempotent(t *testing.T) {
	inputs := []string{
		"! [X, Y, Z] : (op(X, op(op(Y, op(op(Z, Y), Y)), X)) = X)",
		"(op(X5,op(op(X6,X5),X7))=X8)",
		"(op(sK1,sK2) != sK1)",
	}
	for _, in := range inputs {
		once := Normalize(in)
		assert.Equal(t, once, Normalize(once), "input %q", in)
	}
}

func TestNormalize_BinderRenamingInvariance(t *testing.T) {
	a := "! [X, Y] : (op(Y, X) = Y)"
	b := "! [A, B] : (op(B, A) = B)"
	assert.Equal(t, Normalize(a), Normalize(b))
}

func TestNormalize_ExistingCanonicalVarsNotCaptured(t *testing.T) {
	// A body that already mentions V0 must not have a free variable
	// renamed onto it.
	got := Normalize("(op(V0,X0) = X0)")
	assert.Equal(t, "(op(V0,V1)=V1)", got)
}

func TestSplitQuantifier(t *testing.T) {
	vars, body := SplitQuantifier("! [X, Y] : (op(X, Y) = X)")
	assert.Equal(t, []string{"X", "Y"}, vars)
	assert.Equal(t, "(op(X, Y) = X)", body)

	vars, body = SplitQuantifier("(op(a,b)=c)")
	assert.Nil(t, vars)
	assert.Equal(t, "(op(a,b)=c)", body)
}
