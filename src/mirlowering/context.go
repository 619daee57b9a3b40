// Package mirlowering is the MIR Lowering Policy Engine (SPEC_FULL.md §4.6):
// a tagged dispatch over HIR node variants that lowers ownership-checked HIR
// into MIR, draining the Builder's pending-drop queue after each node's own
// logic runs so that a resource is always released strictly after its last
// consumer, never before.
//
// Dispatch is a single recursive function (lower, in dispatch.go) rather
// than a registry of interface implementations: SPEC_FULL.md §9 calls for a
// tagged switch over a closed node set, matching the teacher's own
// ir/llvm/transform.go gen() dispatcher, which switches on n.Typ rather than
// using open polymorphism.
package mirlowering

import (
	"onuc/src/mirbuilder"
	"onuc/src/registry"
)

// Context carries the read-only collaborator every lowering rule may need:
// the Symbol Registry (for a Call's return type and observation flags). The
// Builder for the function currently being lowered travels in lowerCtx.
type Context struct {
	Reg *registry.Registry
}

// lowerCtx bundles the two arguments every internal helper needs, purely to
// keep call sites in dispatch.go/calls.go/function.go readable.
type lowerCtx struct {
	ctx *Context
	b   *mirbuilder.Builder
}
