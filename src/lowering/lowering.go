// Package lowering performs the structural AST->HIR translation
// (SPEC_FULL.md §4.2): it resolves bare identifiers against the Symbol
// Registry, recognizes the seven named arithmetic/comparison behaviors as
// BinOp nodes rather than Call nodes, and injects the synthetic __argc/
// __argv parameters onto the program-entry behavior.
package lowering

import (
	"onuc/src/ast"
	"onuc/src/errs"
	"onuc/src/hir"
	"onuc/src/registry"
	"onuc/src/types"
)

var binOpNames = map[string]hir.BinOpKind{
	"added-to":       hir.OpAddedTo,
	"decreased-by":   hir.OpDecreasedBy,
	"scales-by":      hir.OpScalesBy,
	"partitions-by":  hir.OpPartitionsBy,
	"matches":        hir.OpMatches,
	"exceeds":        hir.OpExceeds,
	"falls-short-of": hir.OpFallsShortOf,
}

// Lowerer translates a Program into an hir.Module against a populated
// Registry. Construct one per compile; it holds no state across calls to
// Lower beyond the registry reference.
type Lowerer struct {
	reg *registry.Registry
}

// New returns a Lowerer reading behavior signatures from reg.
func New(reg *registry.Registry) *Lowerer {
	return &Lowerer{reg: reg}
}

// Lower translates every Behavior discourse in prog into an hir.Module.
// Module and Shape discourses carry no executable content for this core and
// are skipped.
func (lo *Lowerer) Lower(prog *ast.Program) (*hir.Module, error) {
	mod := &hir.Module{}
	for _, d := range prog.Discourses {
		b, ok := d.(*ast.Behavior)
		if !ok {
			continue
		}
		hb, err := lo.lowerBehavior(b)
		if err != nil {
			return nil, err
		}
		mod.Behaviors = append(mod.Behaviors, hb)
	}
	return mod, nil
}

func isEntryName(name string) bool { return name == "main" || name == "run" }

func (lo *Lowerer) lowerBehavior(b *ast.Behavior) (*hir.Behavior, error) {
	hb := &hir.Behavior{
		Name:       b.Header.Name,
		ReturnType: b.Header.ReturnType,
		IsEntry:    isEntryName(b.Header.Name),
	}
	if hb.IsEntry {
		// Prepend the two synthetic entry parameters (SPEC_FULL.md §4.2).
		hb.Params = append(hb.Params,
			hir.Param{Name: "__argc", Type: types.I32, Observes: true},
			hir.Param{Name: "__argv", Type: types.U64, Observes: true},
		)
	}
	for _, p := range b.Header.Params {
		hb.Params = append(hb.Params, hir.Param{Name: p.Name, Type: p.Type, Observes: p.Observes})
	}
	body, err := lo.lowerExpr(b.Body)
	if err != nil {
		return nil, err
	}
	hb.Body = body
	return hb, nil
}

func (lo *Lowerer) lowerExpr(e ast.Expr) (hir.Expr, error) {
	switch n := e.(type) {
	case *ast.IntLiteral:
		t := n.Type
		if t.Kind == types.KindInvalid {
			t = types.I64
		}
		return &hir.Literal{Typ: t, Int: n.Value}, nil

	case *ast.BoolLiteral:
		return &hir.Literal{Typ: types.Bool, Bool: n.Value}, nil

	case *ast.TextLiteral:
		return &hir.Literal{Typ: types.Text, Text: n.Value}, nil

	case *ast.Identifier:
		if lo.reg.Contains(n.Name) {
			sig, _ := lo.reg.Lookup(n.Name)
			return &hir.Call{Name: n.Name, ReturnType: sig.ReturnType}, nil
		}
		// Type is unknown at this point for a bare variable reference; the
		// caller (a Derivation's body, or the MIR builder via scope lookup)
		// supplies the declared type. Lowering alone cannot know it without a
		// symbol table of local bindings, so it is left KindInvalid and
		// resolved by whichever pass binds the name (mirbuilder.ResolveVariable
		// returns the SSA id bound at Derivation time, and Builder.SSAType
		// gives that id's type).
		return &hir.Variable{Name: n.Name}, nil

	case *ast.BehaviorCall:
		if op, ok := binOpNames[n.Name]; ok {
			if len(n.Args) != 2 {
				return nil, errs.NewGrammarViolation(errs.Span{Line: n.Span.Line, Pos: n.Span.Pos, Valid: true},
					"binary operator %q requires exactly 2 arguments, got %d", n.Name, len(n.Args))
			}
			lhs, err := lo.lowerExpr(n.Args[0])
			if err != nil {
				return nil, err
			}
			rhs, err := lo.lowerExpr(n.Args[1])
			if err != nil {
				return nil, err
			}
			t := types.I64
			if op.IsComparison() {
				t = types.Bool
			}
			return &hir.BinOp{Op: op, Lhs: lhs, Rhs: rhs, Typ: t}, nil
		}
		args := make([]hir.Expr, 0, len(n.Args))
		for _, a := range n.Args {
			ha, err := lo.lowerExpr(a)
			if err != nil {
				return nil, err
			}
			args = append(args, ha)
		}
		sig, ok := lo.reg.Lookup(n.Name)
		ret := types.Nothing
		if ok {
			ret = sig.ReturnType
		}
		// Missing registry entries are not errors (SPEC_FULL.md §7): an
		// unknown call lowers through, return type defaulting to nothing,
		// and is resolved to a declaration-on-demand at codegen.
		return &hir.Call{Name: n.Name, Args: args, ReturnType: ret}, nil

	case *ast.Derivation:
		val, err := lo.lowerExpr(n.Value)
		if err != nil {
			return nil, err
		}
		body, err := lo.lowerExpr(n.Body)
		if err != nil {
			return nil, err
		}
		return &hir.Derivation{Name: n.Name, Typ: n.Type, Value: val, Body: body}, nil

	case *ast.If:
		cond, err := lo.lowerExpr(n.Cond)
		if err != nil {
			return nil, err
		}
		then, err := lo.lowerExpr(n.Then)
		if err != nil {
			return nil, err
		}
		els, err := lo.lowerExpr(n.Else)
		if err != nil {
			return nil, err
		}
		t := then.Type()
		return &hir.If{Cond: cond, Then: then, Else: els, Typ: t}, nil

	case *ast.Block:
		exprs := make([]hir.Expr, 0, len(n.Exprs))
		for _, se := range n.Exprs {
			he, err := lo.lowerExpr(se)
			if err != nil {
				return nil, err
			}
			exprs = append(exprs, he)
		}
		return &hir.Block{Exprs: exprs}, nil

	case *ast.TupleExpr:
		elems := make([]hir.Expr, 0, len(n.Elems))
		types_ := make([]types.Type, 0, len(n.Elems))
		for _, se := range n.Elems {
			he, err := lo.lowerExpr(se)
			if err != nil {
				return nil, err
			}
			elems = append(elems, he)
			types_ = append(types_, he.Type())
		}
		return &hir.Tuple{Elems: elems, Typ: types.Tuple(types_...)}, nil

	case *ast.IndexExpr:
		subj, err := lo.lowerExpr(n.Subject)
		if err != nil {
			return nil, err
		}
		t := types.I64
		if subj.Type().Kind == types.KindTuple && n.Slot < len(subj.Type().Elems) {
			t = subj.Type().Elems[n.Slot]
		}
		return &hir.Index{Subject: subj, Slot: n.Slot, Typ: t}, nil

	case *ast.EmitExpr:
		inner, err := lo.lowerExpr(n.Inner)
		if err != nil {
			return nil, err
		}
		return &hir.Emit{Inner: inner}, nil

	case *ast.DropExpr:
		inner, err := lo.lowerExpr(n.Inner)
		if err != nil {
			return nil, err
		}
		return &hir.Drop{Inner: inner}, nil

	case *ast.BinaryOp:
		op, ok := binOpNames[n.Op]
		if !ok {
			return nil, errs.NewGrammarViolation(errs.Span{Line: n.Span.Line, Pos: n.Span.Pos, Valid: true},
				"unknown binary operator %q", n.Op)
		}
		lhs, err := lo.lowerExpr(n.Lhs)
		if err != nil {
			return nil, err
		}
		rhs, err := lo.lowerExpr(n.Rhs)
		if err != nil {
			return nil, err
		}
		t := types.I64
		if op.IsComparison() {
			t = types.Bool
		}
		return &hir.BinOp{Op: op, Lhs: lhs, Rhs: rhs, Typ: t}, nil

	default:
		return nil, errs.NewGrammarViolation(errs.Span{}, "lowering: unhandled AST node %T", e)
	}
}
