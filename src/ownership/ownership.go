// Package ownership implements the forward ownership validation pass over
// HIR (SPEC_FULL.md §4.4): it proves every resource is released exactly once
// along every path, rejects use-after-release, and mutates the HIR in place
// by appending synthetic Drop nodes at scope and function exit for any
// resource still Available.
//
// This pass reads the Consuming flags liveness (package liveness) already
// set; it does not itself run liveness and shares no mutable state with it
// beyond that flag (SPEC_FULL.md §9).
package ownership

import (
	"onuc/src/errs"
	"onuc/src/hir"
	"onuc/src/types"
)

// status is a variable's custody state in the forward walk.
type status int

const (
	available status = iota
	consumed
)

type binding struct {
	typ    types.Type
	status status
}

// env maps variable name to binding. Cloned at if-expression branch points.
type env map[string]binding

func (e env) clone() env {
	c := make(env, len(e))
	for k, v := range e {
		c[k] = v
	}
	return c
}

// ObservesFunc reports, for a named behavior's i'th call argument, whether
// it is observed (borrowed) rather than consumed. The pipeline orchestrator
// supplies this backed by the Symbol Registry; tests that don't have a
// registry in hand can pass AlwaysConsumes instead.
type ObservesFunc func(name string, argIndex int) (observes bool, known bool)

// AlwaysConsumes is an ObservesFunc that treats every call argument as
// non-observed (consumed). It is what a test fixture built without a
// Symbol Registry should pass: conservative, but matches the registry-precise
// behavior for any signature whose Observes are all false.
func AlwaysConsumes(string, int) (bool, bool) { return false, false }

// Validate runs ownership validation over every behavior in mod against
// observes, mutating bodies in place (appending synthetic Drop nodes) and
// returning the first CustodyViolation encountered, if any, as an
// errs.OwnershipViolation.
func Validate(mod *hir.Module, observes ObservesFunc) error {
	for _, b := range mod.Behaviors {
		e := make(env, len(b.Params))
		for _, p := range b.Params {
			st := available
			if !types.IsResource(p.Type) {
				// Non-resource parameters never need a release; marking them
				// consumed up front means the exit sweep never considers
				// them for a synthetic Drop.
				st = consumed
			}
			e[p.Name] = binding{typ: p.Type, status: st}
		}
		newBody, err := validateExpr(b.Body, e, observes)
		if err != nil {
			return err
		}
		b.Body = sweepExit(newBody, e)
	}
	return nil
}

// ValidateExpr runs ownership validation over a single expression tree
// against an explicit initial environment, for tests.
func ValidateExpr(e hir.Expr, initial map[string]types.Type, observes ObservesFunc) (hir.Expr, error) {
	envv := make(env, len(initial))
	for name, t := range initial {
		envv[name] = binding{typ: t, status: available}
	}
	return validateExpr(e, envv, observes)
}

// sweepExit appends a synthetic Drop for every still-Available resource
// binding in e (SPEC_FULL.md §4.4, "at function exit").
func sweepExit(body hir.Expr, e env) hir.Expr {
	var drops []hir.Expr
	for name, b := range e {
		if b.status == available && types.IsResource(b.typ) {
			drops = append(drops, &hir.Drop{Inner: &hir.Variable{Name: name, Typ: b.typ, Consuming: true}})
			bb := e[name]
			bb.status = consumed
			e[name] = bb
		}
	}
	if len(drops) == 0 {
		return body
	}
	return appendExprs(body, drops)
}

// appendExprs appends extra expressions after body, flattening into body's
// own Block if it already is one so a behavior whose surface body is a
// single Block stays a single Block after synthetic drops are added.
func appendExprs(body hir.Expr, extra []hir.Expr) hir.Expr {
	if blk, ok := body.(*hir.Block); ok {
		blk.Exprs = append(blk.Exprs, extra...)
		return blk
	}
	exprs := append([]hir.Expr{body}, extra...)
	return &hir.Block{Exprs: exprs}
}

func consumeIfVar(e hir.Expr, env env) {
	v, ok := e.(*hir.Variable)
	if !ok || !types.IsResource(v.Type()) {
		return
	}
	if b, ok := env[v.Name]; ok {
		b.status = consumed
		env[v.Name] = b
	}
}

func validateExpr(e hir.Expr, env env, observes ObservesFunc) (hir.Expr, error) {
	switch n := e.(type) {
	case *hir.Literal:
		return n, nil

	case *hir.Variable:
		b, ok := env[n.Name]
		if !ok {
			// An unbound name at this point is a lowering defect, not a
			// custody violation; treat as available so as not to mask the
			// real bug behind a misleading error kind.
			return n, nil
		}
		if b.status == consumed {
			return nil, errs.NewOwnershipViolation(errs.Span{}, "variable %q used after its resource was released", n.Name)
		}
		if n.Consuming && types.IsResource(b.typ) {
			b.status = consumed
			env[n.Name] = b
		}
		return n, nil

	case *hir.Call:
		for i, a := range n.Args {
			if v, ok := a.(*hir.Variable); ok && v.Consuming {
				// A borrowed argument leaves custody with the caller even at
				// its last use: it is checked here but not consumed.
				if observesArg, known := observes(n.Name, i); known && observesArg {
					if b, ok := env[v.Name]; ok && b.status == consumed {
						return nil, errs.NewOwnershipViolation(errs.Span{}, "variable %q used after its resource was released", v.Name)
					}
					continue
				}
			}
			na, err := validateExpr(a, env, observes)
			if err != nil {
				return nil, err
			}
			n.Args[i] = na
		}
		for i, a := range n.Args {
			v, ok := a.(*hir.Variable)
			if !ok || !types.IsResource(v.Type()) {
				continue
			}
			observesArg, known := observes(n.Name, i)
			if known && observesArg {
				continue
			}
			consumeIfVar(v, env)
		}
		return n, nil

	case *hir.BinOp:
		lhs, err := validateExpr(n.Lhs, env, observes)
		if err != nil {
			return nil, err
		}
		n.Lhs = lhs
		rhs, err := validateExpr(n.Rhs, env, observes)
		if err != nil {
			return nil, err
		}
		n.Rhs = rhs
		consumeIfVar(n.Lhs, env)
		consumeIfVar(n.Rhs, env)
		return n, nil

	case *hir.Emit:
		inner, err := validateExpr(n.Inner, env, observes)
		if err != nil {
			return nil, err
		}
		n.Inner = inner
		consumeIfVar(n.Inner, env)
		return n, nil

	case *hir.Drop:
		inner, err := validateExpr(n.Inner, env, observes)
		if err != nil {
			return nil, err
		}
		n.Inner = inner
		consumeIfVar(n.Inner, env)
		return n, nil

	case *hir.Derivation:
		val, err := validateExpr(n.Value, env, observes)
		if err != nil {
			return nil, err
		}
		n.Value = val
		env[n.Name] = binding{typ: n.Typ, status: available}
		body, err := validateExpr(n.Body, env, observes)
		if err != nil {
			return nil, err
		}
		b := env[n.Name]
		if b.status == available && types.IsResource(b.typ) {
			body = appendExprs(body, []hir.Expr{&hir.Drop{Inner: &hir.Variable{Name: n.Name, Typ: b.typ, Consuming: true}}})
		}
		n.Body = body
		delete(env, n.Name)
		return n, nil

	case *hir.If:
		cond, err := validateExpr(n.Cond, env, observes)
		if err != nil {
			return nil, err
		}
		n.Cond = cond
		consumeIfVar(n.Cond, env)

		thenEnv := env.clone()
		then, err := validateExpr(n.Then, thenEnv, observes)
		if err != nil {
			return nil, err
		}
		n.Then = then

		elseEnv := env.clone()
		els, err := validateExpr(n.Else, elseEnv, observes)
		if err != nil {
			return nil, err
		}
		n.Else = els

		// Merge by pointwise join where Consumed absorbs Available.
		for name, b := range env {
			tb := thenEnv[name]
			eb := elseEnv[name]
			merged := b
			if tb.status == consumed || eb.status == consumed {
				merged.status = consumed
			}
			env[name] = merged
		}
		return n, nil

	case *hir.Block:
		for i, se := range n.Exprs {
			ne, err := validateExpr(se, env, observes)
			if err != nil {
				return nil, err
			}
			n.Exprs[i] = ne
		}
		return n, nil

	case *hir.Tuple:
		for i, se := range n.Elems {
			ne, err := validateExpr(se, env, observes)
			if err != nil {
				return nil, err
			}
			n.Elems[i] = ne
			consumeIfVar(ne, env)
		}
		return n, nil

	case *hir.Index:
		subj, err := validateExpr(n.Subject, env, observes)
		if err != nil {
			return nil, err
		}
		n.Subject = subj
		consumeIfVar(n.Subject, env)
		return n, nil

	default:
		return n, nil
	}
}
