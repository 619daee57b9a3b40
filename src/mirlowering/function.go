package mirlowering

import (
	"onuc/src/hir"
	"onuc/src/mir"
	"onuc/src/mirbuilder"
	"onuc/src/types"
)

// LowerFunction lowers one ownership-checked behavior to a complete MIR
// function: parameters are bound to fresh SSA ids in entry-block order, the
// body is lowered in tail position, and if control still falls off the end
// of the current block, every surviving dynamic resource is dropped before
// a Return is synthesized (SPEC_FULL.md §4.6, "function emission").
func LowerFunction(ctx *Context, b *hir.Behavior) (*mir.Function, error) {
	builder := mirbuilder.New(b.Name, b.ReturnType)
	builder.Function().IsEntry = b.IsEntry

	for _, p := range b.Params {
		ssa := builder.NewSSA(p.Type, types.IsResource(p.Type))
		builder.DefineVariable(p.Name, ssa)
		builder.Function().Params = append(builder.Function().Params, mir.Param{SSA: ssa, Name: p.Name, Type: p.Type})
	}

	lc := lowerCtx{ctx: ctx, b: builder}
	resultOp, err := lower(lc, b.Body)
	if err != nil {
		return nil, err
	}

	if !builder.IsTerminated() {
		hasResult := b.ReturnType.Kind != types.KindNothing
		// The returned value's custody passes to the caller: exclude it from
		// the surviving-resource sweep below rather than freeing it out from
		// under the Return that is about to read it.
		if hasResult && !resultOp.IsConstant {
			if t := builder.SSAType(resultOp.SSA); types.IsResource(t) {
				builder.MarkConsumed(resultOp.SSA)
			}
		}
		for _, sr := range builder.GetSurvivingResources() {
			builder.Emit(&mir.Drop{SSAVar: sr.SSA, Typ: sr.Type})
		}
		builder.Terminate(&mir.Return{Operand: resultOp, HasOperand: hasResult})
	}

	return builder.Function(), nil
}

// LowerModule lowers every behavior in mod, in order.
func LowerModule(ctx *Context, mod *hir.Module) (*mir.Module, error) {
	out := &mir.Module{}
	for _, b := range mod.Behaviors {
		fn, err := LowerFunction(ctx, b)
		if err != nil {
			return nil, err
		}
		out.Functions = append(out.Functions, fn)
	}
	return out, nil
}
