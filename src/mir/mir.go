// Package mir defines the Mid-level IR: a per-function collection of
// basic blocks in SSA form with explicit resource-release instructions.
// MIR is pure data, produced by mirbuilder+mirlowering and consumed by
// codegen; nothing in this package mutates a built MIR value.
package mir

import "onuc/src/types"

// SSAID is a monotonically assigned integer uniquely identifying a value
// within one function's MIR.
type SSAID int

// BlockID identifies a basic block within one function.
type BlockID int

// Operand is either a constant literal or a reference to a previously
// defined SSA value.
type Operand struct {
	IsConstant bool

	// Constant fields (valid when IsConstant).
	ConstInt  int64
	ConstBool bool
	ConstText string
	ConstType types.Type

	// Variable fields (valid when !IsConstant).
	SSA         SSAID
	IsConsuming bool // true iff this occurrence is the operand's last use along its block (invariant 5).
}

// ConstOperand builds a constant-literal operand.
func ConstOperand(t types.Type) Operand { return Operand{IsConstant: true, ConstType: t} }

// ConstInt64 builds an i64 constant operand.
func ConstInt64(v int64) Operand {
	return Operand{IsConstant: true, ConstInt: v, ConstType: types.I64}
}

// ConstBoolOp builds a boolean constant operand.
func ConstBoolOp(v bool) Operand {
	return Operand{IsConstant: true, ConstBool: v, ConstType: types.Bool}
}

// ConstTextOp builds a text-literal constant operand.
func ConstTextOp(v string) Operand {
	return Operand{IsConstant: true, ConstText: v, ConstType: types.Text}
}

// VarOperand builds a reference to an already-defined SSA value.
func VarOperand(id SSAID, consuming bool) Operand {
	return Operand{SSA: id, IsConsuming: consuming}
}

// Instr is one instruction in a basic block's body (everything but the
// terminator). Implemented as a closed tagged union: each concrete type
// implements instr() and nothing else outside this package should add cases
// (SPEC_FULL.md §9: "tagged dispatch on the instruction variant, not open
// polymorphism").
type Instr interface {
	instr()
}

// Assign copies Src's value into a fresh SSA id Dest. Used both for plain
// rebinding (Derivation) and for custody transfer at branch-join merge
// points.
type Assign struct {
	Dest SSAID
	Src  Operand
}

func (*Assign) instr() {}

// BinOp names the seven arithmetic/comparison operators MIR carries.
type BinOp int

const (
	OpAddedTo BinOp = iota
	OpDecreasedBy
	OpScalesBy
	OpPartitionsBy
	OpMatches
	OpExceeds
	OpFallsShortOf
)

// BinaryOperation computes Op(Lhs, Rhs) into Dest.
type BinaryOperation struct {
	Dest     SSAID
	Op       BinOp
	Lhs, Rhs Operand
}

func (*BinaryOperation) instr() {}

// Call invokes a named behavior (user-defined or a raw C symbol declared
// on demand by codegen) with an ordered argument list.
type Call struct {
	Dest       SSAID // only meaningful if ReturnType != nothing.
	HasDest    bool
	Name       string
	Args       []Operand
	ArgTypes   []types.Type
	ReturnType types.Type
}

func (*Call) instr() {}

// Tuple constructs a tuple value from Elements into Dest.
type Tuple struct {
	Dest     SSAID
	Elements []Operand
	Typ      types.Type
}

func (*Tuple) instr() {}

// Index projects Slot out of Subject into Dest.
type Index struct {
	Dest    SSAID
	Subject Operand
	Slot    int
	Typ     types.Type
}

func (*Index) instr() {}

// Emit writes Operand's value to the external broadcast sink.
type Emit struct {
	Operand Operand
}

func (*Emit) instr() {}

// Drop releases the resource held by SSAVar. Typ is carried for codegen
// (which emits the extract-and-free sequence only for resource types, and
// reads the dynamic/static flag from the value itself at run time); Name is
// carried for diagnostics.
type Drop struct {
	SSAVar SSAID
	Typ    types.Type
	Name   string
}

func (*Drop) instr() {}

// Alloc heap-allocates SizeBytes bytes (a raw malloc call, conceptually) and
// yields a pointer in Dest.
type Alloc struct {
	Dest      SSAID
	SizeBytes Operand
}

func (*Alloc) instr() {}

// MemCopy copies Size bytes from Src to Dest (both pointer-typed operands).
type MemCopy struct {
	Dest, Src Operand
	Size      Operand
}

func (*MemCopy) instr() {}

// PointerOffset computes Ptr + Offset into Dest.
type PointerOffset struct {
	Dest   SSAID
	Ptr    Operand
	Offset Operand
}

func (*PointerOffset) instr() {}

// Terminator ends a basic block. Exactly one per block (invariant 2).
type Terminator interface {
	terminator()
}

// Return exits the function with Operand's value (or void, if the function's
// return type is nothing).
type Return struct {
	Operand    Operand
	HasOperand bool
}

func (*Return) terminator() {}

// Branch unconditionally jumps to Target.
type Branch struct {
	Target BlockID
}

func (*Branch) terminator() {}

// CondBranch jumps to Then if Cond is true, else to Else.
type CondBranch struct {
	Cond       Operand
	Then, Else BlockID
}

func (*CondBranch) terminator() {}

// Unreachable marks a block that control can never reach at run time.
type Unreachable struct{}

func (*Unreachable) terminator() {}

// Block is one basic block: an ordered instruction list and exactly one
// terminator.
type Block struct {
	ID         BlockID
	Instrs     []Instr
	Terminator Terminator
}

// Param is one formal parameter of a Function, already bound to an SSA id.
type Param struct {
	SSA  SSAID
	Name string
	Type types.Type
}

// Function is a per-function collection of basic blocks. Block 0 is always
// the unique entry block (invariant 6).
type Function struct {
	Name       string
	Params     []Param
	ReturnType types.Type
	Blocks     []*Block
	IsEntry    bool // true for the program-entry function (main/run), see SPEC_FULL.md §4.8.

	// SSAType and SSAIsDynamic record, for every SSA id defined in this
	// function, its static type and whether it is heap-backed. Codegen needs
	// both to choose a Drop strategy and to size slot-pointer allocas.
	SSAType      map[SSAID]types.Type
	SSAIsDynamic map[SSAID]bool
}

// Module is the whole compiled program's MIR: every function, in
// declaration order.
type Module struct {
	Functions []*Function
}

// Block returns the block with the given id, or nil.
func (f *Function) Block(id BlockID) *Block {
	for _, b := range f.Blocks {
		if b.ID == id {
			return b
		}
	}
	return nil
}
