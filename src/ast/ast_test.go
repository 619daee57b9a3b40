package ast

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"onuc/src/types"
)

// Compile-time-ish smoke test: every discourse/expr variant must still
// satisfy its marker interface after edits to this file's node set.
var (
	_ Discourse = (*Module)(nil)
	_ Discourse = (*Shape)(nil)
	_ Discourse = (*Behavior)(nil)

	_ Expr = (*IntLiteral)(nil)
	_ Expr = (*BoolLiteral)(nil)
	_ Expr = (*TextLiteral)(nil)
	_ Expr = (*Identifier)(nil)
	_ Expr = (*BehaviorCall)(nil)
	_ Expr = (*Derivation)(nil)
	_ Expr = (*If)(nil)
	_ Expr = (*Block)(nil)
	_ Expr = (*TupleExpr)(nil)
	_ Expr = (*IndexExpr)(nil)
	_ Expr = (*EmitExpr)(nil)
	_ Expr = (*DropExpr)(nil)
	_ Expr = (*BinaryOp)(nil)
)

func TestProgramCarriesDiscoursesInOrder(t *testing.T) {
	prog := &Program{Discourses: []Discourse{
		&Module{Name: "sample"},
		&Behavior{Header: Header{Name: "main", ReturnType: types.Nothing}},
	}}

	assert.Len(t, prog.Discourses, 2)
	_, isModule := prog.Discourses[0].(*Module)
	assert.True(t, isModule)
	_, isBehavior := prog.Discourses[1].(*Behavior)
	assert.True(t, isBehavior)
}

func TestBehaviorCarriesHeaderAndBody(t *testing.T) {
	b := &Behavior{
		Header: Header{
			Name:       "double",
			Params:     []Param{{Name: "n", Type: types.I64}},
			ReturnType: types.I64,
		},
		Body: &BinaryOp{Op: "added-to", Lhs: &Identifier{Name: "n"}, Rhs: &Identifier{Name: "n"}},
	}

	assert.Equal(t, "double", b.Header.Name)
	assert.Equal(t, types.I64, b.Header.ReturnType)
	assert.Len(t, b.Header.Params, 1)
	assert.False(t, b.Header.Params[0].Observes)
}
