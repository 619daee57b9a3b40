package mirlowering

import (
	"onuc/src/errs"
	"onuc/src/hir"
	"onuc/src/mir"
	"onuc/src/types"
)

// lower is the top-level dispatcher: it runs e's node-specific lowering
// logic, then drains any drops that logic scheduled and emits them as Drop
// instructions into whatever block is current. Every recursive descent into
// a child expression goes through lower (never lowerNode directly), so a
// child's own scheduling is always drained before its wrapper returns —
// the single mechanism that makes the drop-timing discipline hold uniformly
// without a child ever being able to free a value its parent has not yet
// finished consuming (SPEC_FULL.md §4.6, §9).
//
// Two node kinds schedule a drop and then change the current block before
// returning to their own wrapper (If's condition, Block's intermediate
// statements); both drain explicitly at the scheduling point itself, ahead
// of the generic drain below, so the drop lands in the block it was
// scheduled in rather than the block lowering has since moved on to.
func lower(lc lowerCtx, e hir.Expr) (mir.Operand, error) {
	op, err := lowerNode(lc, e)
	if err != nil {
		return mir.Operand{}, err
	}
	drainDrops(lc)
	return op, nil
}

func drainDrops(lc lowerCtx) {
	for _, d := range lc.b.TakePendingDrops() {
		lc.b.Emit(&mir.Drop{SSAVar: d.SSA, Typ: d.Type, Name: d.Name})
	}
}

// consumeOperand marks op's SSA id consumed and schedules its release if src
// is a resource-typed variable whose IsConsuming flag says this is its last
// use. This is the sole place drop scheduling happens for an already-lowered
// operand; the rules per SPEC_FULL.md §4.6 that say "if the operand is a
// resource variable, mark consumed and schedule a drop" are all routed
// through here rather than duplicated per node kind (the literal reference
// sketch this was grounded on instead let both the operand's own lowering
// and its every consumer schedule independently, which double-frees; see
// DESIGN.md).
func consumeOperand(lc lowerCtx, src hir.Expr, op mir.Operand) {
	if op.IsConstant || !op.IsConsuming {
		return
	}
	consumeRegardless(lc, src, op)
}

// consumeRegardless marks op consumed and schedules its release whenever op
// is a resource-typed variable, ignoring the IsConsuming flag. Used by the
// handful of positions that are unconditionally the value's last use within
// their own expression regardless of what liveness recorded elsewhere (an
// if-condition, an emit's argument, an explicit drop's argument).
func consumeRegardless(lc lowerCtx, src hir.Expr, op mir.Operand) {
	if op.IsConstant {
		return
	}
	t := lc.b.SSAType(op.SSA)
	if !types.IsResource(t) || lc.b.IsConsumed(op.SSA) {
		return
	}
	lc.b.MarkConsumed(op.SSA)
	// A non-dynamic resource (e.g. the result of tail-of/init-of, which
	// alias their subject's buffer rather than owning a fresh one) is
	// consumed for custody-tracking purposes but never actually released:
	// there is nothing here for codegen to free.
	if !lc.b.SSAIsDynamic(op.SSA) {
		return
	}
	name := ""
	if v, ok := src.(*hir.Variable); ok {
		name = v.Name
	}
	lc.b.ScheduleDrop(op.SSA, t, name)
}

func lowerNode(lc lowerCtx, e hir.Expr) (mir.Operand, error) {
	switch n := e.(type) {
	case *hir.Literal:
		return mir.Operand{IsConstant: true, ConstInt: n.Int, ConstBool: n.Bool, ConstText: n.Text, ConstType: n.Typ}, nil

	case *hir.Variable:
		ssa, ok := lc.b.ResolveVariable(n.Name)
		if !ok {
			return mir.Operand{}, errs.NewCodeGenError("mir lowering: unbound variable %q", n.Name)
		}
		return mir.VarOperand(ssa, n.Consuming), nil

	case *hir.Call:
		return lowerCall(lc, n)

	case *hir.BinOp:
		lhsOp, err := lower(lc, n.Lhs)
		if err != nil {
			return mir.Operand{}, err
		}
		rhsOp, err := lower(lc, n.Rhs)
		if err != nil {
			return mir.Operand{}, err
		}
		dest := lc.b.NewSSA(n.Typ, false)
		lc.b.Emit(&mir.BinaryOperation{Dest: dest, Op: mir.BinOp(n.Op), Lhs: lhsOp, Rhs: rhsOp})
		consumeOperand(lc, n.Lhs, lhsOp)
		consumeOperand(lc, n.Rhs, rhsOp)
		return mir.VarOperand(dest, false), nil

	case *hir.Derivation:
		return lowerDerivation(lc, n)

	case *hir.If:
		return lowerIf(lc, n)

	case *hir.Block:
		var last mir.Operand
		for i, se := range n.Exprs {
			op, err := lower(lc, se)
			if err != nil {
				return mir.Operand{}, err
			}
			if i == len(n.Exprs)-1 {
				last = op
				continue
			}
			// Intermediate (non-tail) statement: its result is discarded, so
			// any dynamic resource it yields that nothing consumed must be
			// released immediately, before moving on to the next statement.
			// A nothing-typed statement yields no value at all.
			if !op.IsConstant && se.Type().Kind != types.KindNothing {
				t := lc.b.SSAType(op.SSA)
				if types.IsResource(t) && lc.b.SSAIsDynamic(op.SSA) && !lc.b.IsConsumed(op.SSA) {
					lc.b.MarkConsumed(op.SSA)
					lc.b.ScheduleDrop(op.SSA, t, "")
					drainDrops(lc)
				}
			}
		}
		return last, nil

	case *hir.Tuple:
		elems := make([]mir.Operand, len(n.Elems))
		for i, se := range n.Elems {
			op, err := lower(lc, se)
			if err != nil {
				return mir.Operand{}, err
			}
			elems[i] = op
		}
		dest := lc.b.NewSSA(n.Typ, types.IsResource(n.Typ))
		lc.b.Emit(&mir.Tuple{Dest: dest, Elements: elems, Typ: n.Typ})
		for i, se := range n.Elems {
			consumeOperand(lc, se, elems[i])
		}
		return mir.VarOperand(dest, false), nil

	case *hir.Index:
		subjOp, err := lower(lc, n.Subject)
		if err != nil {
			return mir.Operand{}, err
		}
		dest := lc.b.NewSSA(n.Typ, types.IsResource(n.Typ))
		lc.b.Emit(&mir.Index{Dest: dest, Subject: subjOp, Slot: n.Slot, Typ: n.Typ})
		consumeOperand(lc, n.Subject, subjOp)
		return mir.VarOperand(dest, false), nil

	case *hir.Emit:
		innerOp, err := lower(lc, n.Inner)
		if err != nil {
			return mir.Operand{}, err
		}
		lc.b.Emit(&mir.Emit{Operand: innerOp})
		consumeRegardless(lc, n.Inner, innerOp)
		return mir.Operand{}, nil

	case *hir.Drop:
		innerOp, err := lower(lc, n.Inner)
		if err != nil {
			return mir.Operand{}, err
		}
		consumeRegardless(lc, n.Inner, innerOp)
		return mir.Operand{}, nil

	default:
		return mir.Operand{}, errs.NewCodeGenError("mir lowering: unhandled HIR node %T", e)
	}
}

func lowerDerivation(lc lowerCtx, n *hir.Derivation) (mir.Operand, error) {
	valOp, err := lower(lc, n.Value)
	if err != nil {
		return mir.Operand{}, err
	}
	// Custody transfer: binding a resource to a new name hands its custody
	// to that name without releasing it, so the value is marked consumed
	// but never scheduled for a drop here.
	if !valOp.IsConstant {
		if t := lc.b.SSAType(valOp.SSA); types.IsResource(t) {
			lc.b.MarkConsumed(valOp.SSA)
		}
	}
	dest := lc.b.NewSSA(n.Typ, types.IsResource(n.Typ))
	lc.b.Emit(&mir.Assign{Dest: dest, Src: valOp})
	lc.b.EnterScope()
	lc.b.DefineVariable(n.Name, dest)
	bodyOp, err := lower(lc, n.Body)
	lc.b.ExitScope()
	if err != nil {
		return mir.Operand{}, err
	}
	return bodyOp, nil
}

func unionConsumed(a, b map[mir.SSAID]bool) map[mir.SSAID]bool {
	u := make(map[mir.SSAID]bool, len(a)+len(b))
	for k, v := range a {
		u[k] = v
	}
	for k, v := range b {
		u[k] = u[k] || v
	}
	return u
}

func lowerIf(lc lowerCtx, n *hir.If) (mir.Operand, error) {
	condOp, err := lower(lc, n.Cond)
	if err != nil {
		return mir.Operand{}, err
	}
	// The condition is always this expression's last use of it: consume and
	// drain immediately, before the entry block's terminator is set, so the
	// drop lands ahead of the branch rather than in whichever block lowering
	// happens to be in once the whole if expression finishes.
	consumeRegardless(lc, n.Cond, condOp)
	drainDrops(lc)

	snapshot := lc.b.GetConsumedVars()

	thenBlk := lc.b.CreateBlock()
	elseBlk := lc.b.CreateBlock()
	mergeBlk := lc.b.CreateBlock()
	lc.b.Terminate(&mir.CondBranch{Cond: condOp, Then: thenBlk, Else: elseBlk})

	hasResult := n.Typ.Kind != types.KindNothing
	var mergeDest mir.SSAID
	if hasResult {
		mergeDest = lc.b.NewSSA(n.Typ, types.IsResource(n.Typ))
	}

	lc.b.SwitchToBlock(thenBlk)
	thenOp, err := lower(lc, n.Then)
	if err != nil {
		return mir.Operand{}, err
	}
	if !lc.b.IsTerminated() {
		if hasResult {
			lc.b.Emit(&mir.Assign{Dest: mergeDest, Src: thenOp})
		}
		lc.b.Terminate(&mir.Branch{Target: mergeBlk})
	}
	thenConsumed := lc.b.GetConsumedVars()

	lc.b.SetConsumedVars(snapshot)
	lc.b.SwitchToBlock(elseBlk)
	elseOp, err := lower(lc, n.Else)
	if err != nil {
		return mir.Operand{}, err
	}
	if !lc.b.IsTerminated() {
		if hasResult {
			lc.b.Emit(&mir.Assign{Dest: mergeDest, Src: elseOp})
		}
		lc.b.Terminate(&mir.Branch{Target: mergeBlk})
	}
	elseConsumed := lc.b.GetConsumedVars()

	lc.b.SetConsumedVars(unionConsumed(thenConsumed, elseConsumed))
	lc.b.SwitchToBlock(mergeBlk)

	if hasResult {
		return mir.VarOperand(mergeDest, false), nil
	}
	return mir.Operand{}, nil
}
