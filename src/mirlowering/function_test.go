package mirlowering

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"onuc/src/hir"
	"onuc/src/mir"
	"onuc/src/registry"
	"onuc/src/types"
)

// TestLowerFunctionSweepsSurvivingResource verifies a resource bound within
// a behavior but never used again is swept into a final Drop rather than
// leaking, even though nothing in the body itself consumed it.
func TestLowerFunctionSweepsSurvivingResource(t *testing.T) {
	body := &hir.Derivation{
		Name:  "s",
		Typ:   types.Text,
		Value: &hir.Literal{Typ: types.Text, Text: "abc"},
		Body:  &hir.Literal{Typ: types.I64, Int: 0},
	}
	behavior := &hir.Behavior{Name: "leaky", ReturnType: types.I64, Body: body}

	fn, err := LowerFunction(&Context{Reg: registry.New()}, behavior)
	require.NoError(t, err)

	entry := fn.Block(0)
	assert.Len(t, dropIDs(entry.Instrs), 1, "expected exactly one swept Drop for the unused derivation")

	ret, ok := entry.Terminator.(*mir.Return)
	require.True(t, ok, "expected a Return terminator, got %T", entry.Terminator)
	assert.True(t, ret.HasOperand)
	assert.True(t, ret.Operand.IsConstant)
	assert.Equal(t, int64(0), ret.Operand.ConstInt)
}

// TestLowerFunctionExcludesReturnedResourceFromSweep verifies a resource
// returned from a behavior is not also dropped on the way out: its custody
// passes to the caller.
func TestLowerFunctionExcludesReturnedResourceFromSweep(t *testing.T) {
	body := &hir.Derivation{
		Name:  "s",
		Typ:   types.Text,
		Value: &hir.Literal{Typ: types.Text, Text: "abc"},
		Body:  &hir.Variable{Name: "s", Typ: types.Text, Consuming: false},
	}
	behavior := &hir.Behavior{Name: "returns-it", ReturnType: types.Text, Body: body}

	fn, err := LowerFunction(&Context{Reg: registry.New()}, behavior)
	require.NoError(t, err)

	entry := fn.Block(0)
	assert.Empty(t, dropIDs(entry.Instrs))

	ret, ok := entry.Terminator.(*mir.Return)
	require.True(t, ok, "expected a Return terminator, got %T", entry.Terminator)
	assert.True(t, ret.HasOperand)
	assert.False(t, ret.Operand.IsConstant, "expected the function to return the bound SSA value")
}
