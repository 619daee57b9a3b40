// Package registry holds the Symbol Registry: the name-to-signature map
// consulted by the AST->HIR lowerer (to decide whether a bare identifier is
// a zero-arg call or a variable reference) and by MIR lowering (to recover a
// callee's declared return type and per-argument observation flags).
//
// The registry is populated once during pipeline setup and is read-only for
// the remainder of a compile (SPEC_FULL.md §5): it carries no mutex, because
// nothing after setup mutates it.
package registry

import (
	"onuc/src/errs"
	"onuc/src/types"
)

// Signature describes one named behavior: its ordered parameter types, a
// parallel slice of per-parameter observation flags (true => the argument is
// borrowed, not consumed), and its return type.
type Signature struct {
	InputTypes []types.Type
	Observes   []bool
	ReturnType types.Type
}

// Registry maps behavior name to Signature.
type Registry struct {
	m map[string]Signature
}

// New returns an empty registry.
func New() *Registry {
	return &Registry{m: make(map[string]Signature)}
}

// Insert adds or replaces name's signature. Redefinition of a name that
// already normalizes to the same LLVM symbol as another is a BehaviorConflict
// reported by CheckConflicts, which pipeline setup runs, not by Insert
// itself: the registry is a plain map, not a policy.
func (r *Registry) Insert(name string, sig Signature) {
	r.m[name] = sig
}

// Lookup returns name's signature and whether it was found.
func (r *Registry) Lookup(name string) (Signature, bool) {
	s, ok := r.m[name]
	return s, ok
}

// Contains reports whether name is a registered behavior.
func (r *Registry) Contains(name string) bool {
	_, ok := r.m[name]
	return ok
}

// Names returns all registered behavior names, for diagnostics.
func (r *Registry) Names() []string {
	out := make([]string, 0, len(r.m))
	for n := range r.m {
		out = append(out, n)
	}
	return out
}

// sig is a small literal-struct helper to keep LoadCoreModule/LoadMathModule
// readable.
func sig(ret types.Type, observes []bool, inputs ...types.Type) Signature {
	return Signature{InputTypes: inputs, Observes: observes, ReturnType: ret}
}

// LoadCoreModule preloads the text-operations module: the subset that the
// Stdlib Inliner (mirlowering/stdlib) open-codes, plus the reference
// implementation's fuller text-module surface that this specification's
// SPEC_FULL.md §4.1 keeps as reserved, declare-on-demand-only entries.
func (r *Registry) LoadCoreModule() {
	r.Insert("joined-with", sig(types.Text, []bool{true, true}, types.Text, types.Text))
	r.Insert("len", sig(types.I64, []bool{true}, types.Text))
	r.Insert("char-at", sig(types.I64, []bool{true, false}, types.Text, types.I64))
	r.Insert("as-text", sig(types.Text, []bool{false}, types.I64))
	r.Insert("set-char", sig(types.Text, []bool{false, false, false}, types.Text, types.I64, types.I64))
	r.Insert("inplace-set-char", sig(types.Text, []bool{false, false, false}, types.Text, types.I64, types.I64))
	r.Insert("tail-of", sig(types.Text, []bool{false}, types.Text))
	r.Insert("init-of", sig(types.Text, []bool{false}, types.Text))
	r.Insert("char-from-code", sig(types.Text, []bool{false}, types.I64))
	r.Insert("duplicated-as", sig(types.Text, []bool{true}, types.Text))
	r.Insert("clears", sig(types.Nothing, []bool{false}, types.Nothing))
	r.Insert("creates-map", sig(types.Map(types.Nothing, types.Nothing), nil))
	r.Insert("creates-tree", sig(types.Tree(types.Nothing), nil))
	r.Insert("as-integer", sig(types.I64, []bool{true}, types.Text))
	r.Insert("receives-entropy", sig(types.I64, nil))
}

// LoadMathModule preloads the arithmetic/comparison behaviors the AST->HIR
// lowerer recognizes as BinaryOp rather than Call (SPEC_FULL.md §4.2).
func (r *Registry) LoadMathModule() {
	r.Insert("added-to", sig(types.I64, []bool{false, false}, types.I64, types.I64))
	r.Insert("decreased-by", sig(types.I64, []bool{false, false}, types.I64, types.I64))
	r.Insert("scales-by", sig(types.I64, []bool{false, false}, types.I64, types.I64))
	r.Insert("partitions-by", sig(types.I64, []bool{false, false}, types.I64, types.I64))
	r.Insert("matches", sig(types.I64, []bool{false, false}, types.I64, types.I64))
	r.Insert("exceeds", sig(types.I64, []bool{false, false}, types.I64, types.I64))
	r.Insert("falls-short-of", sig(types.I64, []bool{false, false}, types.I64, types.I64))
}

// LoadIOModule preloads the I/O primitives.
func (r *Registry) LoadIOModule() {
	r.Insert("broadcasts", sig(types.Nothing, []bool{true}, types.Text))
	r.Insert("receives-argument", sig(types.Text, []bool{false}, types.I64))
	r.Insert("argument-count", sig(types.I64, nil))
	r.Insert("receives-line", sig(types.Text, nil))
}

// LoadAll preloads every built-in module. This is what pipeline setup calls.
func (r *Registry) LoadAll() {
	r.LoadCoreModule()
	r.LoadMathModule()
	r.LoadIOModule()
}

// CheckConflicts reports a BehaviorConflict if two distinct registered names
// normalize (hyphen -> underscore) to the same LLVM symbol. Only names
// inserted into this registry are checked; pipeline setup inserts the
// built-in modules only, so user-defined behavior names are not checked.
func (r *Registry) CheckConflicts(normalize func(string) string) error {
	seen := make(map[string]string, len(r.m))
	for name := range r.m {
		sym := normalize(name)
		if prev, ok := seen[sym]; ok && prev != name {
			return errs.NewBehaviorConflict("behaviors %q and %q both normalize to symbol %q", prev, name, sym)
		}
		seen[sym] = name
	}
	return nil
}
