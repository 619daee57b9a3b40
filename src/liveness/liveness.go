// Package liveness implements the backward dataflow pass over HIR
// (SPEC_FULL.md §4.3): a single traversal that marks each Variable
// occurrence's Consuming flag true on exactly the last use of its name
// along the traversal order.
//
// This pass and the ownership pass (package ownership) are deliberately not
// interleaved and share no mutable state beyond the Consuming flag liveness
// writes and ownership later reads (SPEC_FULL.md §9, "implicit coroutine").
package liveness

import "onuc/src/hir"

// set is a small string-keyed set, local to one traversal. Cloned at if-
// expression branch points so each arm traverses against its own copy.
type set map[string]struct{}

func (s set) clone() set {
	c := make(set, len(s))
	for k := range s {
		c[k] = struct{}{}
	}
	return c
}

func (s set) has(name string) bool {
	_, ok := s[name]
	return ok
}

func union(a, b set) set {
	u := a.clone()
	for k := range b {
		u[k] = struct{}{}
	}
	return u
}

// Analyze runs liveness over every behavior body in mod, mutating each
// Variable node's Consuming flag in place.
func Analyze(mod *hir.Module) {
	for _, b := range mod.Behaviors {
		live := make(set)
		walk(b.Body, live)
	}
}

// AnalyzeExpr runs liveness over a single expression tree, for tests that
// want to exercise the pass without a whole Behavior.
func AnalyzeExpr(e hir.Expr) {
	walk(e, make(set))
}

// walk traverses e backward, mutating live in place and consulting it to set
// Consuming flags, exactly as SPEC_FULL.md §4.3 describes per node kind.
func walk(e hir.Expr, live set) {
	switch n := e.(type) {
	case *hir.Literal:
		// no effect.

	case *hir.Variable:
		if !live.has(n.Name) {
			n.Consuming = true
			live[n.Name] = struct{}{}
		} else {
			n.Consuming = false
		}

	case *hir.Call:
		// Calls traverse their arguments right-to-left.
		for i := len(n.Args) - 1; i >= 0; i-- {
			walk(n.Args[i], live)
		}

	case *hir.BinOp:
		// A binary op's rhs is evaluated after lhs at runtime, but liveness
		// walks backward: visit rhs before lhs so that a variable appearing
		// in both arms is marked consuming at its rightmost (later) use.
		walk(n.Rhs, live)
		walk(n.Lhs, live)

	case *hir.Derivation:
		// Traverse the body first, remove the introduced name from live,
		// then traverse the value (SPEC_FULL.md §4.3).
		walk(n.Body, live)
		delete(live, n.Name)
		walk(n.Value, live)

	case *hir.If:
		thenLive := live.clone()
		walk(n.Then, thenLive)
		elseLive := live.clone()
		walk(n.Else, elseLive)
		merged := union(thenLive, elseLive)
		for k := range merged {
			live[k] = struct{}{}
		}
		walk(n.Cond, live)

	case *hir.Block:
		// Block traversal is reverse-order.
		for i := len(n.Exprs) - 1; i >= 0; i-- {
			walk(n.Exprs[i], live)
		}

	case *hir.Tuple:
		for i := len(n.Elems) - 1; i >= 0; i-- {
			walk(n.Elems[i], live)
		}

	case *hir.Index:
		walk(n.Subject, live)

	case *hir.Emit:
		walk(n.Inner, live)

	case *hir.Drop:
		walk(n.Inner, live)

	default:
		// Unknown node kinds have no liveness effect; this only happens for
		// malformed HIR the caller constructed directly (e.g. a test
		// fixture), not for anything lowering produces.
	}
}
