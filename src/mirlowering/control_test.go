package mirlowering

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"onuc/src/hir"
	"onuc/src/mir"
	"onuc/src/mirbuilder"
	"onuc/src/types"
)

// TestIfConsumesConditionInEntryBlock verifies the condition is drained in
// the entry block, ahead of the conditional branch, rather than in whichever
// arm or merge block lowering happens to reach afterward.
func TestIfConsumesConditionInEntryBlock(t *testing.T) {
	b := mirbuilder.New("check", types.I64)
	cond := b.NewSSA(types.Bool, false)
	b.DefineVariable("flag", cond)

	expr := &hir.If{
		Typ:  types.I64,
		Cond: &hir.Variable{Name: "flag", Typ: types.Bool, Consuming: true},
		Then: &hir.Literal{Typ: types.I64, Int: 1},
		Else: &hir.Literal{Typ: types.I64, Int: 2},
	}

	lc := lowerCtx{ctx: &Context{}, b: b}
	_, err := lower(lc, expr)
	require.NoError(t, err)

	entry := b.Function().Block(0)
	require.NotNil(t, entry.Terminator)
	assert.IsType(t, &mir.CondBranch{}, entry.Terminator)

	// Bool is not a resource type, so nothing should have scheduled a drop
	// for it; this nails down only that consumeRegardless+drainDrops ran in
	// the entry block, before the branch, as dispatch.go's lowerIf requires.
	assert.Empty(t, dropIDs(entry.Instrs))
}

// TestIfUnionsConsumedAcrossBranches verifies a resource consumed in only
// one arm reads as consumed after the join, so code lowered after the if
// never mistakes it for still-available.
func TestIfUnionsConsumedAcrossBranches(t *testing.T) {
	b := mirbuilder.New("maybe-drop", types.Nothing)
	res := b.NewSSA(types.Text, true)
	b.DefineVariable("s", res)
	cond := b.NewSSA(types.Bool, false)
	b.DefineVariable("flag", cond)

	expr := &hir.If{
		Typ:  types.Nothing,
		Cond: &hir.Variable{Name: "flag", Typ: types.Bool, Consuming: false},
		Then: &hir.Drop{Inner: &hir.Variable{Name: "s", Typ: types.Text, Consuming: true}},
		Else: &hir.Block{},
	}

	lc := lowerCtx{ctx: &Context{}, b: b}
	_, err := lower(lc, expr)
	require.NoError(t, err)

	assert.True(t, b.IsConsumed(res), "resource consumed in the then-arm should read as consumed after the join")
}
