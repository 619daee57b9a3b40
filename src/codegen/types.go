package codegen

import (
	"tinygo.org/x/go-llvm"

	"onuc/src/types"
)

// llvmType maps a types.Type to its LLVM representation. Every resource
// kind (text, matrix, array, map, tree) shares text's layout — a
// length-prefixed opaque buffer — since this core's stdlib inliner only
// ever operates on text; the other four resource kinds carry the same
// shape so a Tuple/Index/Drop instruction never needs to know which one it
// holds (SPEC_FULL.md §4.7's Non-goals exclude element-level codegen for
// matrices, arrays, maps and trees).
//
// U64 is reserved for pointer-shaped values (text's ptr field, __argv) and
// maps to a bare i8*, not an integer: this core never does unsigned 64-bit
// arithmetic, only pointer arithmetic, so there is no ambiguity to resolve.
func (c *Codegen) llvmType(t types.Type) llvm.Type {
	switch t.Kind {
	case types.KindI8, types.KindU8:
		return llvm.Int8Type()
	case types.KindI16, types.KindU16:
		return llvm.Int16Type()
	case types.KindI32, types.KindU32:
		return llvm.Int32Type()
	case types.KindI64:
		return llvm.Int64Type()
	case types.KindU64:
		return c.i8ptr()
	case types.KindI128, types.KindU128:
		return llvm.IntType(128)
	case types.KindF32:
		return llvm.FloatType()
	case types.KindF64:
		return llvm.DoubleType()
	case types.KindBool:
		return llvm.Int1Type()
	case types.KindText, types.KindMatrix, types.KindArray, types.KindMap, types.KindTree:
		return c.textType()
	case types.KindNothing:
		return llvm.VoidType()
	case types.KindTuple:
		elems := make([]llvm.Type, len(t.Elems))
		for i, e := range t.Elems {
			elems[i] = c.llvmType(e)
		}
		return c.ctx.StructType(elems, false)
	default:
		return llvm.Int64Type()
	}
}

// llvmReturnType is llvmType, except nothing maps to void rather than to an
// empty struct — the one place a KindNothing value is actually absent from
// the IR rather than merely zero-sized.
func (c *Codegen) llvmReturnType(t types.Type) llvm.Type {
	if t.Kind == types.KindNothing {
		return llvm.VoidType()
	}
	return c.llvmType(t)
}

func (c *Codegen) i8ptr() llvm.Type {
	return llvm.PointerType(llvm.Int8Type(), 0)
}

// textType is the shared resource layout: {len: i64, ptr: i8*, is_dynamic: i1}.
func (c *Codegen) textType() llvm.Type {
	return c.ctx.StructType([]llvm.Type{llvm.Int64Type(), c.i8ptr(), llvm.Int1Type()}, false)
}
