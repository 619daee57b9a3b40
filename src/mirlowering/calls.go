package mirlowering

import (
	"onuc/src/hir"
	"onuc/src/mir"
	"onuc/src/mirlowering/stdlib"
	"onuc/src/registry"
	"onuc/src/types"
)

func operandType(lc lowerCtx, op mir.Operand) types.Type {
	if op.IsConstant {
		return op.ConstType
	}
	return lc.b.SSAType(op.SSA)
}

// lowerCall lowers a behavior invocation. Stdlib entries the inliner
// recognizes (mirlowering/stdlib) expand straight to raw memory operations
// with no Call instruction at all, per SPEC_FULL.md §4.7; everything else —
// user-defined behaviors, and the I/O module's raw declare-on-demand
// entries — lowers to a single mir.Call.
func lowerCall(lc lowerCtx, n *hir.Call) (mir.Operand, error) {
	args := make([]mir.Operand, len(n.Args))
	argTypes := make([]types.Type, len(n.Args))
	for i, a := range n.Args {
		op, err := lower(lc, a)
		if err != nil {
			return mir.Operand{}, err
		}
		args[i] = op
		argTypes[i] = operandType(lc, op)
	}

	sig, known := lc.ctx.Reg.Lookup(n.Name)

	if op, ok := stdlib.Expand(lc.b, n.Name, args); ok {
		consumeCallArgs(lc, n, args, sig, known)
		return op, nil
	}

	hasDest := n.ReturnType.Kind != types.KindNothing
	var dest mir.SSAID
	if hasDest {
		dest = lc.b.NewSSA(n.ReturnType, types.IsResource(n.ReturnType))
	}
	lc.b.Emit(&mir.Call{
		Dest: dest, HasDest: hasDest,
		Name: n.Name, Args: args, ArgTypes: argTypes, ReturnType: n.ReturnType,
	})
	consumeCallArgs(lc, n, args, sig, known)
	if !hasDest {
		return mir.Operand{}, nil
	}
	return mir.VarOperand(dest, false), nil
}

// consumeCallArgs schedules a drop for every resource-typed argument passed
// at a non-observation position, per the callee's registered signature. An
// unknown callee (no registry entry) is treated as consuming every argument,
// matching ownership.AlwaysConsumes: a forward-referenced or externally
// declared behavior gives lowering no observation information to go on, and
// assuming consumption is the conservative, ownership-sound choice.
func consumeCallArgs(lc lowerCtx, n *hir.Call, args []mir.Operand, sig registry.Signature, known bool) {
	for i, op := range args {
		observesArg := known && i < len(sig.Observes) && sig.Observes[i]
		if observesArg {
			continue
		}
		consumeOperand(lc, n.Args[i], op)
	}
}
