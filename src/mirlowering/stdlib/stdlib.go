// Package stdlib is the Stdlib Inliner (SPEC_FULL.md §4.7): it expands a
// fixed set of core-module behaviors directly to raw MIR memory operations
// instead of a mir.Call to a behavior of that name, so the rest of the
// pipeline never has to special-case them.
//
// Text is a 3-field tuple {len: i64, ptr: i8*, is_dynamic: i1} throughout
// (SPEC_FULL.md §4.7). MIR's instruction set (package mir) has no load/store
// instruction of its own — only Alloc, MemCopy and PointerOffset move
// bytes — so the primitives that need to read or write a single byte
// (char-at, set-char, char-from-code) and the one that needs to format an
// integer (as-text) are expanded as a call to one of a small, fixed set of C
// helper symbols codegen declares on demand, exactly the way it already
// declares malloc/free/printf/sprintf/strlen/puts. This is the one place
// the inliner falls back to a Call rather than pure memory ops; see
// DESIGN.md for why MIR's instruction set was kept minimal instead of
// growing a Load/Store pair just for this.
package stdlib

import (
	"onuc/src/mir"
	"onuc/src/mirbuilder"
	"onuc/src/types"
)

// Expand recognizes name as an inlined core-module behavior and, if so,
// emits its expansion into b's current block and returns the resulting
// operand. ok is false for any name the inliner does not own, in which case
// the caller (mirlowering.lowerCall) falls through to a plain mir.Call.
func Expand(b *mirbuilder.Builder, name string, args []mir.Operand) (mir.Operand, bool) {
	switch name {
	case "len":
		return expandLen(b, args), true
	case "as-text":
		return expandAsText(b, args), true
	case "joined-with":
		return expandJoinedWith(b, args), true
	case "char-at":
		return expandCharAt(b, args), true
	case "set-char", "inplace-set-char":
		return expandSetChar(b, args), true
	case "init-of":
		return expandInitOf(b, args), true
	case "tail-of":
		return expandTailOf(b, args), true
	case "char-from-code":
		return expandCharFromCode(b, args), true
	case "duplicated-as":
		// Reserved stub (SPEC_FULL.md §4.7): the reference grammar reserves
		// the name for a future polymorphic duplication primitive this core
		// does not implement. It lowers to nothing rather than failing the
		// compile, so a program that merely parses a call to it still builds.
		return mir.Operand{}, true
	default:
		return mir.Operand{}, false
	}
}

// textParts projects a text operand's len and ptr fields out via Index,
// the way every inlined text primitive needs to.
func textParts(b *mirbuilder.Builder, text mir.Operand) (lenOp, ptrOp mir.Operand) {
	lenDest := b.NewSSA(types.I64, false)
	b.Emit(&mir.Index{Dest: lenDest, Subject: text, Slot: 0, Typ: types.I64})
	ptrDest := b.NewSSA(types.U64, false)
	b.Emit(&mir.Index{Dest: ptrDest, Subject: text, Slot: 1, Typ: types.U64})
	return mir.VarOperand(lenDest, false), mir.VarOperand(ptrDest, false)
}

func buildText(b *mirbuilder.Builder, length, ptr mir.Operand, dynamic bool) mir.Operand {
	dest := b.NewSSA(types.Text, true)
	dynOp := mir.Operand{IsConstant: true, ConstBool: dynamic, ConstType: types.Bool}
	b.Emit(&mir.Tuple{Dest: dest, Elements: []mir.Operand{length, ptr, dynOp}, Typ: types.Text})
	return mir.VarOperand(dest, false)
}

func expandLen(b *mirbuilder.Builder, args []mir.Operand) mir.Operand {
	lenOp, _ := textParts(b, args[0])
	return lenOp
}

// expandAsText formats an integer argument into a freshly allocated buffer
// via the declare-on-demand sprintf/strlen pair, then wraps it as a dynamic
// text tuple.
func expandAsText(b *mirbuilder.Builder, args []mir.Operand) mir.Operand {
	const bufSize = 32
	buf := b.NewSSA(types.U64, false)
	b.Emit(&mir.Alloc{Dest: buf, SizeBytes: mir.ConstInt64(bufSize)})
	bufOp := mir.VarOperand(buf, false)
	fmtDest := b.NewSSA(types.U64, false)
	b.Emit(&mir.Index{Dest: fmtDest, Subject: mir.ConstTextOp("%lld"), Slot: 1, Typ: types.U64})
	b.Emit(&mir.Call{
		Name: "sprintf", Args: []mir.Operand{bufOp, mir.VarOperand(fmtDest, false), args[0]},
		ArgTypes: []types.Type{types.U64, types.U64, types.I64}, ReturnType: types.I32,
	})
	lenDest := b.NewSSA(types.I64, false)
	b.Emit(&mir.Call{
		Dest: lenDest, HasDest: true,
		Name: "strlen", Args: []mir.Operand{bufOp}, ArgTypes: []types.Type{types.U64}, ReturnType: types.I64,
	})
	return buildText(b, mir.VarOperand(lenDest, false), bufOp, true)
}

// expandJoinedWith allocates len(a)+len(b) bytes and memcpys both inputs in,
// back to back.
func expandJoinedWith(b *mirbuilder.Builder, args []mir.Operand) mir.Operand {
	aLen, aPtr := textParts(b, args[0])
	bLen, bPtr := textParts(b, args[1])

	totalDest := b.NewSSA(types.I64, false)
	b.Emit(&mir.BinaryOperation{Dest: totalDest, Op: mir.OpAddedTo, Lhs: aLen, Rhs: bLen})
	total := mir.VarOperand(totalDest, false)

	buf := b.NewSSA(types.U64, false)
	b.Emit(&mir.Alloc{Dest: buf, SizeBytes: total})
	bufOp := mir.VarOperand(buf, false)

	b.Emit(&mir.MemCopy{Dest: bufOp, Src: aPtr, Size: aLen})

	tailDest := b.NewSSA(types.U64, false)
	b.Emit(&mir.PointerOffset{Dest: tailDest, Ptr: bufOp, Offset: aLen})
	b.Emit(&mir.MemCopy{Dest: mir.VarOperand(tailDest, false), Src: bPtr, Size: bLen})

	return buildText(b, total, bufOp, true)
}

// expandCharAt reads one byte at offset args[1] via the onu_byte_at helper
// codegen declares on demand, returning it widened to i64.
func expandCharAt(b *mirbuilder.Builder, args []mir.Operand) mir.Operand {
	_, ptr := textParts(b, args[0])
	offDest := b.NewSSA(types.U64, false)
	b.Emit(&mir.PointerOffset{Dest: offDest, Ptr: ptr, Offset: args[1]})
	dest := b.NewSSA(types.I64, false)
	b.Emit(&mir.Call{
		Dest: dest, HasDest: true,
		Name: "onu_byte_at", Args: []mir.Operand{mir.VarOperand(offDest, false)},
		ArgTypes: []types.Type{types.U64}, ReturnType: types.I64,
	})
	return mir.VarOperand(dest, false)
}

// expandSetChar copies the subject into a fresh buffer, then overwrites one
// byte of the copy through onu_set_byte. The result is a new dynamic text;
// the subject's own buffer is not written.
func expandSetChar(b *mirbuilder.Builder, args []mir.Operand) mir.Operand {
	length, ptr := textParts(b, args[0])
	buf := b.NewSSA(types.U64, false)
	b.Emit(&mir.Alloc{Dest: buf, SizeBytes: length})
	bufOp := mir.VarOperand(buf, false)
	b.Emit(&mir.MemCopy{Dest: bufOp, Src: ptr, Size: length})

	offDest := b.NewSSA(types.U64, false)
	b.Emit(&mir.PointerOffset{Dest: offDest, Ptr: bufOp, Offset: args[1]})
	b.Emit(&mir.Call{
		Name: "onu_set_byte", Args: []mir.Operand{mir.VarOperand(offDest, false), args[2]},
		ArgTypes: []types.Type{types.U64, types.I64}, ReturnType: types.Nothing,
	})
	return buildText(b, length, bufOp, true)
}

// expandInitOf returns every byte but the last: same pointer, len-1.
func expandInitOf(b *mirbuilder.Builder, args []mir.Operand) mir.Operand {
	length, ptr := textParts(b, args[0])
	newLenDest := b.NewSSA(types.I64, false)
	b.Emit(&mir.BinaryOperation{Dest: newLenDest, Op: mir.OpDecreasedBy, Lhs: length, Rhs: mir.ConstInt64(1)})
	return buildText(b, mir.VarOperand(newLenDest, false), ptr, false)
}

// expandTailOf returns every byte but the first: ptr+1, len-1.
func expandTailOf(b *mirbuilder.Builder, args []mir.Operand) mir.Operand {
	length, ptr := textParts(b, args[0])
	newLenDest := b.NewSSA(types.I64, false)
	b.Emit(&mir.BinaryOperation{Dest: newLenDest, Op: mir.OpDecreasedBy, Lhs: length, Rhs: mir.ConstInt64(1)})
	newPtrDest := b.NewSSA(types.U64, false)
	b.Emit(&mir.PointerOffset{Dest: newPtrDest, Ptr: ptr, Offset: mir.ConstInt64(1)})
	return buildText(b, mir.VarOperand(newLenDest, false), mir.VarOperand(newPtrDest, false), false)
}

// expandCharFromCode allocates one byte and writes the given code into it.
func expandCharFromCode(b *mirbuilder.Builder, args []mir.Operand) mir.Operand {
	buf := b.NewSSA(types.U64, false)
	b.Emit(&mir.Alloc{Dest: buf, SizeBytes: mir.ConstInt64(1)})
	bufOp := mir.VarOperand(buf, false)
	b.Emit(&mir.Call{
		Name: "onu_set_byte", Args: []mir.Operand{bufOp, args[0]},
		ArgTypes: []types.Type{types.U64, types.I64}, ReturnType: types.Nothing,
	})
	return buildText(b, mir.ConstInt64(1), bufOp, true)
}
