package codegen

import (
	"tinygo.org/x/go-llvm"

	"onuc/src/errs"
	"onuc/src/mir"
	"onuc/src/types"
)

// genOperand materializes an Operand as an LLVM value: a constant literal
// builds in place, a variable operand loads its slot.
func (c *Codegen) genOperand(op mir.Operand) (llvm.Value, error) {
	if !op.IsConstant {
		return c.load(op.SSA), nil
	}
	switch op.ConstType.Kind {
	case types.KindText:
		return c.constText(op.ConstText), nil
	case types.KindBool:
		v := uint64(0)
		if op.ConstBool {
			v = 1
		}
		return llvm.ConstInt(llvm.Int1Type(), v, false), nil
	case types.KindF32, types.KindF64:
		return llvm.ConstFloat(c.llvmType(op.ConstType), float64(op.ConstInt)), nil
	default:
		return llvm.ConstInt(c.llvmType(op.ConstType), uint64(op.ConstInt), true), nil
	}
}

// genOperandAddr materializes an Operand as the address of its storage,
// for the one callee (onu_broadcast) that takes a text tuple by pointer
// rather than by value: a variable operand's slot pointer is reused
// directly, while a constant operand gets a fresh temp alloca to take the
// address of, mirroring EmitStrategy's "existing storage pointer for a
// variable, fresh temp alloca for a constant" split in the reference
// implementation.
func (c *Codegen) genOperandAddr(op mir.Operand) (llvm.Value, error) {
	if !op.IsConstant {
		return c.builder.CreateBitCast(c.slots[op.SSA], c.i8ptr(), ""), nil
	}
	v, err := c.genOperand(op)
	if err != nil {
		return llvm.Value{}, err
	}
	tmp := c.builder.CreateAlloca(c.llvmType(op.ConstType), "")
	c.builder.CreateStore(v, tmp)
	return c.builder.CreateBitCast(tmp, c.i8ptr(), ""), nil
}

// constText builds a global string constant and wraps it in a text struct,
// matching genPrint's CreateGlobalStringPtr usage in the teacher (same
// "L_STR" prefix).
func (c *Codegen) constText(s string) llvm.Value {
	ptr := c.builder.CreateGlobalStringPtr(s, "L_STR")
	agg := llvm.Undef(c.textType())
	agg = c.builder.CreateInsertValue(agg, llvm.ConstInt(llvm.Int64Type(), uint64(len(s)), false), 0, "")
	agg = c.builder.CreateInsertValue(agg, ptr, 1, "")
	agg = c.builder.CreateInsertValue(agg, llvm.ConstInt(llvm.Int1Type(), 0, false), 2, "")
	return agg
}

func (c *Codegen) binOp(op mir.BinOp, lhs, rhs llvm.Value) llvm.Value {
	switch op {
	case mir.OpAddedTo:
		return c.builder.CreateAdd(lhs, rhs, "")
	case mir.OpDecreasedBy:
		return c.builder.CreateSub(lhs, rhs, "")
	case mir.OpScalesBy:
		return c.builder.CreateMul(lhs, rhs, "")
	case mir.OpPartitionsBy:
		return c.builder.CreateSDiv(lhs, rhs, "")
	case mir.OpMatches:
		return c.builder.CreateICmp(llvm.IntEQ, lhs, rhs, "")
	case mir.OpExceeds:
		return c.builder.CreateICmp(llvm.IntSGT, lhs, rhs, "")
	case mir.OpFallsShortOf:
		return c.builder.CreateICmp(llvm.IntSLT, lhs, rhs, "")
	default:
		return c.builder.CreateAdd(lhs, rhs, "")
	}
}

func (c *Codegen) genInstr(instr mir.Instr) error {
	switch n := instr.(type) {
	case *mir.Assign:
		v, err := c.genOperand(n.Src)
		if err != nil {
			return err
		}
		c.store(n.Dest, v)
		return nil

	case *mir.BinaryOperation:
		lhs, err := c.genOperand(n.Lhs)
		if err != nil {
			return err
		}
		rhs, err := c.genOperand(n.Rhs)
		if err != nil {
			return err
		}
		c.store(n.Dest, c.binOp(n.Op, lhs, rhs))
		return nil

	case *mir.Call:
		return c.genCall(n)

	case *mir.Tuple:
		agg := llvm.Undef(c.llvmType(n.Typ))
		for i, e := range n.Elements {
			v, err := c.genOperand(e)
			if err != nil {
				return err
			}
			agg = c.builder.CreateInsertValue(agg, v, i, "")
		}
		c.store(n.Dest, agg)
		return nil

	case *mir.Index:
		subj, err := c.genOperand(n.Subject)
		if err != nil {
			return err
		}
		c.store(n.Dest, c.builder.CreateExtractValue(subj, n.Slot, ""))
		return nil

	case *mir.Emit:
		addr, err := c.genOperandAddr(n.Operand)
		if err != nil {
			return err
		}
		c.builder.CreateCall(c.external("onu_broadcast"), []llvm.Value{addr}, "")
		return nil

	case *mir.Drop:
		return c.genDrop(n)

	case *mir.Alloc:
		size, err := c.genOperand(n.SizeBytes)
		if err != nil {
			return err
		}
		c.store(n.Dest, c.builder.CreateCall(c.external("malloc"), []llvm.Value{size}, ""))
		return nil

	case *mir.MemCopy:
		dst, err := c.genOperand(n.Dest)
		if err != nil {
			return err
		}
		src, err := c.genOperand(n.Src)
		if err != nil {
			return err
		}
		size, err := c.genOperand(n.Size)
		if err != nil {
			return err
		}
		c.builder.CreateCall(c.external("memcpy"), []llvm.Value{dst, src, size}, "")
		return nil

	case *mir.PointerOffset:
		ptr, err := c.genOperand(n.Ptr)
		if err != nil {
			return err
		}
		off, err := c.genOperand(n.Offset)
		if err != nil {
			return err
		}
		c.store(n.Dest, c.builder.CreateGEP(ptr, []llvm.Value{off}, ""))
		return nil

	default:
		return errs.NewCodeGenError("codegen: unhandled MIR instruction %T", instr)
	}
}

// genDrop extracts the resource's pointer field and frees it when the
// tuple's own is_dynamic field is set at run time; a static value (such as a
// text literal bound to a name, which MIR still flags as dynamic) is left
// alone. Code after the Drop continues in a fresh block.
func (c *Codegen) genDrop(n *mir.Drop) error {
	if !types.IsResource(n.Typ) {
		return nil
	}
	v := c.load(n.SSAVar)
	fn := c.builder.GetInsertBlock().Parent()
	freeBlk := llvm.AddBasicBlock(fn, "")
	doneBlk := llvm.AddBasicBlock(fn, "")
	c.builder.CreateCondBr(c.builder.CreateExtractValue(v, 2, ""), freeBlk, doneBlk)
	c.builder.SetInsertPointAtEnd(freeBlk)
	ptr := c.builder.CreateExtractValue(v, 1, "")
	c.builder.CreateCall(c.external("free"), []llvm.Value{ptr}, "")
	c.builder.CreateBr(doneBlk)
	c.builder.SetInsertPointAtEnd(doneBlk)
	return nil
}

func (c *Codegen) genCall(n *mir.Call) error {
	args := make([]llvm.Value, len(n.Args))
	for i, a := range n.Args {
		v, err := c.genOperand(a)
		if err != nil {
			return err
		}
		args[i] = v
	}
	callee, err := c.resolveCallee(n)
	if err != nil {
		return err
	}
	ret := c.builder.CreateCall(callee, args, "")
	ret.SetInstructionCallConv(callee.FunctionCallConv())
	if n.HasDest {
		c.store(n.Dest, ret)
	}
	return nil
}
