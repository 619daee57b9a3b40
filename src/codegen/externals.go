// On-demand external declaration (SPEC_FULL.md §4.8, "codegen purity"): a
// module that never calls a given C or runtime symbol carries no
// declaration for it. The teacher declares printf/atoi/atof unconditionally
// in genMain; here every external, including the six fixed C symbols this
// core's stdlib inliner can reach for (malloc, free, printf, sprintf,
// strlen, puts), is declared the first time codegen emits a call to it
// (through external or resolveCallee), and cached in c.declared thereafter.
package codegen

import (
	"tinygo.org/x/go-llvm"

	"onuc/src/mir"
)

// external declares (if not already declared) and returns one of the fixed
// internal runtime symbols codegen itself emits calls to directly (as
// opposed to resolveCallee, which also has to handle calls mirlowering
// leaves pointed at a user-defined or forward-referenced behavior name).
func (c *Codegen) external(name string) llvm.Value {
	if fn, ok := c.declared[name]; ok {
		return fn
	}
	fn := c.declareKnownExternal(name)
	c.declared[name] = fn
	return fn
}

// declareKnownExternal builds the correct LLVM function type for one of the
// fixed set of C/runtime symbols this core's stdlib inliner and Drop
// codegen can call. memcpy, onu_byte_at, onu_set_byte and onu_broadcast are
// the runtime-support additions beyond the reference's six C symbols that
// the stdlib inliner and Emit/Drop codegen need (DESIGN.md).
func (c *Codegen) declareKnownExternal(name string) llvm.Value {
	i8ptr := c.i8ptr()
	i64 := llvm.Int64Type()
	i32 := llvm.Int32Type()
	void := llvm.VoidType()

	var ftyp llvm.Type
	switch name {
	case "malloc":
		ftyp = llvm.FunctionType(i8ptr, []llvm.Type{i64}, false)
	case "free":
		ftyp = llvm.FunctionType(void, []llvm.Type{i8ptr}, false)
	case "printf":
		ftyp = llvm.FunctionType(i32, []llvm.Type{i8ptr}, true)
	case "sprintf":
		ftyp = llvm.FunctionType(i32, []llvm.Type{i8ptr, i8ptr}, true)
	case "strlen":
		ftyp = llvm.FunctionType(i64, []llvm.Type{i8ptr}, false)
	case "puts":
		ftyp = llvm.FunctionType(i32, []llvm.Type{i8ptr}, false)
	case "memcpy":
		ftyp = llvm.FunctionType(i8ptr, []llvm.Type{i8ptr, i8ptr, i64}, false)
	case "onu_byte_at":
		ftyp = llvm.FunctionType(i64, []llvm.Type{i8ptr}, false)
	case "onu_set_byte":
		ftyp = llvm.FunctionType(void, []llvm.Type{i8ptr, i64}, false)
	case "onu_broadcast":
		// spec.md:162: the broadcast sink is onu_broadcast(i8*) -> void; it
		// receives the address of the text tuple, not the tuple by value.
		ftyp = llvm.FunctionType(void, []llvm.Type{i8ptr}, false)
	default:
		// Unreachable from external(), which is only ever called with a
		// literal from the set above.
		ftyp = llvm.FunctionType(void, nil, false)
	}
	return llvm.AddFunction(c.mod, name, ftyp)
}

// resolveCallee finds (or, for a forward-referenced behavior, declares) the
// function a mir.Call should invoke: a user-defined behavior already
// declared by declareFunction, one of the fixed runtime symbols, or —
// failing both — a generic declaration built from the Call's own recorded
// argument/return types, exactly the way codegen would need to handle a
// behavior referenced before its own definition is reached.
func (c *Codegen) resolveCallee(n *mir.Call) (llvm.Value, error) {
	if fn, ok := c.funcs[n.Name]; ok {
		return fn, nil
	}
	if fn, ok := c.declared[n.Name]; ok {
		return fn, nil
	}
	switch n.Name {
	case "malloc", "free", "printf", "sprintf", "strlen", "puts",
		"memcpy", "onu_byte_at", "onu_set_byte", "onu_broadcast":
		return c.external(n.Name), nil
	}

	params := make([]llvm.Type, len(n.ArgTypes))
	for i, t := range n.ArgTypes {
		params[i] = c.llvmType(t)
	}
	ftyp := llvm.FunctionType(c.llvmReturnType(n.ReturnType), params, false)
	fn := llvm.AddFunction(c.mod, n.Name, ftyp)
	c.declared[n.Name] = fn
	return fn, nil
}
