// Package mirbuilder is the MIR Builder state manager (SPEC_FULL.md §4.5):
// basic-block construction, SSA allocation, a lexical scope stack, a
// consumed-SSA-id set and a pending-drop queue. Nothing here decides *what*
// to build (that is mirlowering's job); the Builder only offers the
// primitive operations mirlowering composes.
//
// The scope stack is grounded on the teacher's util.Stack (a mutex-protected
// singly-linked list): here it is unguarded, since SPEC_FULL.md §5 commits
// the whole compiler to being single-threaded, but it keeps the same
// push/pop/peek shape.
package mirbuilder

import (
	"onuc/src/mir"
	"onuc/src/types"
)

// scopeFrame is one lexical scope: a name -> ssa id map. Frames form a
// singly-linked stack, innermost first.
type scopeFrame struct {
	vars map[string]mir.SSAID
	next *scopeFrame
}

// PendingDrop is a release scheduled by a child expression, to be emitted by
// the parent's dispatch wrapper after it has consumed the child's value
// (SPEC_FULL.md §4.5, §9).
type PendingDrop struct {
	SSA  mir.SSAID
	Type types.Type
	Name string
}

// Builder is the MIR Builder state manager for one in-progress function.
type Builder struct {
	fn *mir.Function

	curBlock mir.BlockID
	nextSSA  mir.SSAID
	nextBlk  mir.BlockID

	scopes *scopeFrame

	consumed     map[mir.SSAID]bool
	pendingDrops []PendingDrop
}

// New starts building a function named name, returning a zero args. The
// entry block (id 0) is created and made current, per invariant 6.
func New(name string, returnType types.Type) *Builder {
	b := &Builder{
		fn: &mir.Function{
			Name:         name,
			ReturnType:   returnType,
			SSAType:      make(map[mir.SSAID]types.Type),
			SSAIsDynamic: make(map[mir.SSAID]bool),
		},
		consumed: make(map[mir.SSAID]bool),
	}
	b.scopes = &scopeFrame{vars: make(map[string]mir.SSAID)}
	b.createBlockNoSwitch() // block 0
	return b
}

// Function returns the function under construction. Valid to call at any
// point, including mid-build, since mirlowering needs it to finish emitting
// the final Return terminator.
func (b *Builder) Function() *mir.Function { return b.fn }

// NewSSA allocates a fresh SSA id and records its static type and dynamic
// flag (invariant 1: every id is assigned exactly once).
func (b *Builder) NewSSA(t types.Type, dynamic bool) mir.SSAID {
	id := b.nextSSA
	b.nextSSA++
	b.fn.SSAType[id] = t
	b.fn.SSAIsDynamic[id] = dynamic
	return id
}

// SSAType returns the recorded type for id.
func (b *Builder) SSAType(id mir.SSAID) types.Type { return b.fn.SSAType[id] }

// SSAIsDynamic returns the recorded dynamic flag for id.
func (b *Builder) SSAIsDynamic(id mir.SSAID) bool { return b.fn.SSAIsDynamic[id] }

// DefineVariable binds name to ssa in the innermost scope.
func (b *Builder) DefineVariable(name string, ssa mir.SSAID) {
	b.scopes.vars[name] = ssa
}

// ResolveVariable looks up name through the scope stack, innermost first.
func (b *Builder) ResolveVariable(name string) (mir.SSAID, bool) {
	for f := b.scopes; f != nil; f = f.next {
		if id, ok := f.vars[name]; ok {
			return id, true
		}
	}
	return 0, false
}

// EnterScope pushes a new lexical scope.
func (b *Builder) EnterScope() {
	b.scopes = &scopeFrame{vars: make(map[string]mir.SSAID), next: b.scopes}
}

// ExitScope pops the innermost lexical scope.
func (b *Builder) ExitScope() {
	if b.scopes.next != nil {
		b.scopes = b.scopes.next
	}
}

// CreateBlock allocates a new, empty block (not yet current).
func (b *Builder) CreateBlock() mir.BlockID {
	return b.createBlockNoSwitch()
}

func (b *Builder) createBlockNoSwitch() mir.BlockID {
	id := b.nextBlk
	b.nextBlk++
	b.fn.Blocks = append(b.fn.Blocks, &mir.Block{ID: id})
	return id
}

// SwitchToBlock makes id the current block: subsequent Emit/Terminate calls
// target it.
func (b *Builder) SwitchToBlock(id mir.BlockID) {
	b.curBlock = id
}

// CurrentBlock returns the current block's id.
func (b *Builder) CurrentBlock() mir.BlockID { return b.curBlock }

func (b *Builder) block(id mir.BlockID) *mir.Block {
	return b.fn.Block(id)
}

// IsTerminated reports whether the current block already has a terminator
// (mirlowering consults this before emitting a synthetic exit sequence so it
// never appends instructions after a terminator — invariant 2).
func (b *Builder) IsTerminated() bool {
	blk := b.block(b.curBlock)
	return blk != nil && blk.Terminator != nil
}

// Emit appends instr to the current block.
func (b *Builder) Emit(instr mir.Instr) {
	blk := b.block(b.curBlock)
	blk.Instrs = append(blk.Instrs, instr)
}

// Terminate sets the current block's terminator. A block may be terminated
// only once; callers (mirlowering) are responsible for checking IsTerminated
// first when a path might already have returned (e.g. inside an if-branch).
func (b *Builder) Terminate(term mir.Terminator) {
	blk := b.block(b.curBlock)
	blk.Terminator = term
}

// MarkConsumed records ssa as consumed, idempotently.
func (b *Builder) MarkConsumed(ssa mir.SSAID) {
	b.consumed[ssa] = true
}

// IsConsumed reports whether ssa has been marked consumed.
func (b *Builder) IsConsumed(ssa mir.SSAID) bool {
	return b.consumed[ssa]
}

// GetConsumedVars snapshots the consumed set, for saving across an if
// expression's branch point.
func (b *Builder) GetConsumedVars() map[mir.SSAID]bool {
	snap := make(map[mir.SSAID]bool, len(b.consumed))
	for k, v := range b.consumed {
		snap[k] = v
	}
	return snap
}

// SetConsumedVars installs snap as the consumed set wholesale, replacing
// whatever was there (used both to restore the pre-branch snapshot before
// lowering the else-arm, and to install the union of both arms' snapshots
// afterward — SPEC_FULL.md §4.6).
func (b *Builder) SetConsumedVars(snap map[mir.SSAID]bool) {
	b.consumed = make(map[mir.SSAID]bool, len(snap))
	for k, v := range snap {
		b.consumed[k] = v
	}
}

// ScheduleDrop enqueues a drop for ssa, to be drained by the parent
// expression's dispatch wrapper after it consumes ssa's value. This is the
// mechanism behind SPEC_FULL.md's central drop-timing discipline (§4.6, §9).
func (b *Builder) ScheduleDrop(ssa mir.SSAID, t types.Type, name string) {
	b.pendingDrops = append(b.pendingDrops, PendingDrop{SSA: ssa, Type: t, Name: name})
}

// TakePendingDrops removes and returns every currently-scheduled drop, in
// schedule order, leaving the queue empty.
func (b *Builder) TakePendingDrops() []PendingDrop {
	drops := b.pendingDrops
	b.pendingDrops = nil
	return drops
}

// SurvivingResource names one resource SSA id still alive (not consumed) at
// the point GetSurvivingResources is called.
type SurvivingResource struct {
	SSA     mir.SSAID
	Type    types.Type
	Dynamic bool
}

// GetSurvivingResources iterates every SSA id this function has allocated,
// returning those that are resource-typed, dynamic, and not yet consumed.
// mirlowering calls this at function exit to emit the final Drop sweep for
// any resource the HIR's own ownership pass didn't already sequence a Drop
// for (defensive: by construction, the ownership pass should have appended
// one for every such case, but the Builder's sweep is the MIR-level backstop
// that makes the linearity law (§3 invariant 4) hold unconditionally).
func (b *Builder) GetSurvivingResources() []SurvivingResource {
	var out []SurvivingResource
	for id, t := range b.fn.SSAType {
		if !types.IsResource(t) {
			continue
		}
		if !b.fn.SSAIsDynamic[id] {
			continue
		}
		if b.IsConsumed(id) {
			continue
		}
		out = append(out, SurvivingResource{SSA: id, Type: t, Dynamic: true})
	}
	return out
}
