// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package textnorm

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCollapseSpace(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"", ""},
		{"  M4A1  ", "M4A1"},
		{"Kastov\t\t762\n(AKM)", "Kastov 762 (AKM)"},
		{"already clean", "already clean"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, CollapseSpace(tt.in), "CollapseSpace(%q)", tt.in)
	}
}

func TestName(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{name: "empty", in: "", want: ""},
		{name: "lower and trim", in: "  M4A1 ", want: "m4a1"},
		{name: "collapse whitespace", in: "Kastov   762", want: "kastov 762"},
		{name: "trademark glyphs", in: "Glock™ 17®", want: "glock 17"},
		{name: "trailing parenthetical", in: "Kastov 762 (AKM)", want: "kastov 762"},
		{name: "only last parenthetical", in: "M4 (A) (B)", want: "m4 (a)"},
		{name: "inner parenthetical kept", in: "M4 (A) Carbine", want: "m4 (a) carbine"},
		{name: "parenthetical only", in: "(AKM)", want: ""},
		{name: "decomposed accent composes", in: "Cre\u0301cy", want: "cr\u00e9cy"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Name(tt.in))
		})
	}
}

func TestNameDoesNotMutateInput(t *testing.T) {
	in := "  M4A1 (Carbine) "
	_ = Name(in)
	assert.Equal(t, "  M4A1 (Carbine) ", in)
}
