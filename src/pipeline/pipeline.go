package pipeline

import (
	"github.com/davecgh/go-spew/spew"
	"github.com/iancoleman/strcase"

	"onuc/src/ast"
	"onuc/src/codegen"
	"onuc/src/environment"
	"onuc/src/hir"
	"onuc/src/liveness"
	"onuc/src/lowering"
	"onuc/src/mir"
	"onuc/src/mirlowering"
	"onuc/src/ownership"
	"onuc/src/registry"
)

// Pipeline owns the one Symbol Registry a compile shares across every later
// stage (SPEC_FULL.md §5: "populated once during setup, then only read")
// and the Environment collaborator used for diagnostics and the final
// linker invocation.
type Pipeline struct {
	Reg *registry.Registry
	Env environment.Environment
}

// New builds a Pipeline with a freshly populated registry (every built-in
// module loaded, per registry.LoadAll) against env.
func New(env environment.Environment) *Pipeline {
	reg := registry.New()
	reg.LoadAll()
	return &Pipeline{Reg: reg, Env: env}
}

// Result carries whichever intermediate artifacts the caller's --emit-*
// flags requested, plus the final LLVM IR text if codegen ran.
type Result struct {
	HIR    *hir.Module
	MIR    *mir.Module
	LLVMIR string
}

// Compile runs prog through analysis (liveness + ownership), MIR lowering
// and codegen, in that fixed order (SPEC_FULL.md §2), stopping early if
// opt.StopAfter names a stage at or before codegen. Lexing and parsing are
// assumed already done by the out-of-scope parser collaborator that
// produced prog.
func (p *Pipeline) Compile(prog *ast.Program, opt Options) (*Result, error) {
	if err := p.checkConflicts(); err != nil {
		return nil, err
	}
	if opt.HasStopAfter && opt.StopAfter < StageAnalysis {
		return &Result{}, nil
	}

	mod, err := p.lower(prog)
	if err != nil {
		return nil, err
	}
	res := &Result{HIR: mod}

	liveness.Analyze(mod)
	if err := ownership.Validate(mod, p.observes); err != nil {
		return res, err
	}
	if opt.Verbose || opt.EmitHIR {
		p.Env.Log(environment.LogInfo, "HIR:\n%s", spew.Sdump(mod))
	}
	if opt.HasStopAfter && opt.StopAfter == StageAnalysis {
		return res, nil
	}

	mirMod, err := mirlowering.LowerModule(&mirlowering.Context{Reg: p.Reg}, mod)
	if err != nil {
		return res, err
	}
	res.MIR = mirMod
	if opt.Verbose || opt.EmitMIR {
		p.Env.Log(environment.LogInfo, "MIR:\n%s", spew.Sdump(mirMod))
	}
	if opt.HasStopAfter && opt.StopAfter == StageMIR {
		return res, nil
	}

	cg := codegen.New("onu_discourse")
	defer cg.Dispose()
	ir, err := cg.Generate(mirMod)
	if err != nil {
		return res, err
	}
	res.LLVMIR = ir
	if opt.HasStopAfter && opt.StopAfter == StageCodegen {
		return res, nil
	}

	if err := p.realize(opt.Src, ir); err != nil {
		return res, err
	}
	return res, nil
}

// lower runs AST->HIR lowering (SPEC_FULL.md §4.2). Broken out so Compile's
// own stage sequence reads top to bottom.
func (p *Pipeline) lower(prog *ast.Program) (*hir.Module, error) {
	return lowering.New(p.Reg).Lower(prog)
}

// observes adapts the Symbol Registry to ownership.ObservesFunc: argument i
// of a call to name is observed (borrowed) iff the registry's signature for
// name says so at that position.
func (p *Pipeline) observes(name string, argIndex int) (bool, bool) {
	sig, ok := p.Reg.Lookup(name)
	if !ok || argIndex >= len(sig.Observes) {
		return false, ok
	}
	return sig.Observes[argIndex], ok
}

// checkConflicts rejects two registered behavior names that normalize
// (hyphen -> underscore, per SPEC_FULL.md §4.1) to the same LLVM symbol.
// The walk itself lives on the registry (registry.CheckConflicts); this just
// supplies strcase.ToSnake as the normalize function.
func (p *Pipeline) checkConflicts() error {
	return p.Reg.CheckConflicts(strcase.ToSnake)
}

// realize writes the emitted IR to <stem>.ll and invokes the system linker
// against it, per SPEC_FULL.md §6.
func (p *Pipeline) realize(src, ir string) error {
	stem := stemOf(src)
	llPath := stem + ".ll"
	if err := p.Env.WriteFile(llPath, ir); err != nil {
		return err
	}
	out := stem + "_bin"
	if _, err := p.Env.RunCommand("clang", llPath, "-O3", "-o", out, "-Wno-override-module"); err != nil {
		return err
	}
	return nil
}

func stemOf(path string) string {
	for i := len(path) - 1; i >= 0; i-- {
		if path[i] == '.' {
			return path[:i]
		}
		if path[i] == '/' {
			break
		}
	}
	return path
}
