// Command onuc drives the Pipeline Orchestrator against a source file named
// on the command line. The lexer and surface-syntax parser that turn source
// text into an ast.Program are an out-of-scope collaborator (SPEC_FULL.md
// §1): this binary only relies on the ast.Program contract they produce, not
// on an implementation of it, so Parse is a seam a caller supplies rather
// than code this core ships.
package main

import (
	"os"

	"github.com/fatih/color"

	"onuc/src/ast"
	"onuc/src/environment"
	"onuc/src/errs"
	"onuc/src/pipeline"
)

// Parse turns source text into a Program. Replaced in a real deployment by
// the out-of-scope lexer/parser; the default reports that no parser is
// wired rather than silently producing an empty program.
var Parse = func(src string) (*ast.Program, error) {
	return nil, errs.NewGrammarViolation(errs.Span{}, "no lexer/parser collaborator is wired into this binary")
}

func main() {
	opt, err := pipeline.ParseArgs()
	if err != nil {
		color.Red("Command line argument error: %s", err)
		os.Exit(1)
	}

	env := environment.New()
	source, err := env.ReadFile(opt.Src)
	if err != nil {
		color.Red("Error: %s", err)
		os.Exit(1)
	}

	prog, err := Parse(source)
	if err != nil {
		color.Red("Error: %s", err)
		os.Exit(1)
	}

	p := pipeline.New(env)
	if _, err := p.Compile(prog, opt); err != nil {
		color.Red("Error: %s", err)
		os.Exit(1)
	}
	color.Green("Compiled %s successfully", opt.Src)
}
