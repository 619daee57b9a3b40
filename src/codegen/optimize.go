package codegen

import "tinygo.org/x/go-llvm"

// optimize runs the fixed five-pass pipeline SPEC_FULL.md §4.8 names, once,
// over the whole module: promote-memory-to-register (so the entry-block
// alloca slot pointers genFunction creates collapse back to pure SSA
// registers wherever a function's control flow allows it), instruction
// combining, reassociation, global value numbering, and CFG simplification.
// No per-function pass manager and no second pass over anything: exactly
// one fixed-composition legacy pass manager, run once.
func (c *Codegen) optimize() {
	pm := llvm.NewPassManager()
	defer pm.Dispose()

	pm.AddPromoteMemoryToRegisterPass()
	pm.AddInstructionCombiningPass()
	pm.AddReassociatePass()
	pm.AddGVNPass()
	pm.AddCFGSimplificationPass()

	pm.Run(c.mod)
}
