// Package pipeline is the Pipeline Orchestrator (SPEC_FULL.md §2, §6): it
// wires the Symbol Registry, AST->HIR lowering, liveness, ownership, MIR
// lowering and codegen into the fixed stage order the core specifies,
// honoring --stop-after and --emit-* diagnostics. The CLI surface
// (ParseArgs/Options, this file) is hand-rolled in the teacher's own idiom
// (util/args.go: a manual loop over os.Args with a big switch, no flag/
// pflag/cobra dependency, text/tabwriter for --help) rather than adopting a
// CLI framework the teacher doesn't use.
package pipeline

import (
	"fmt"
	"os"
	"strings"
	"text/tabwriter"
)

// Stage names one point in the fixed pipeline order the --stop-after flag
// can halt at. Lexing and parsing happen in the out-of-scope parser
// collaborator, before Compile is ever called (SPEC_FULL.md §1); they are
// still named here so --stop-after's vocabulary matches SPEC_FULL.md §6
// exactly, and so a caller that does own a lexer/parser stage can reuse the
// same enum for its own early-exit handling.
type Stage int

const (
	StageLexing Stage = iota
	StageParsing
	StageAnalysis
	StageMIR
	StageCodegen
	StageRealization
)

var stageNames = map[string]Stage{
	"lexing":       StageLexing,
	"parsing":      StageParsing,
	"analysis":     StageAnalysis,
	"mir":          StageMIR,
	"codegen":      StageCodegen,
	"realization":  StageRealization,
}

func (s Stage) String() string {
	for name, st := range stageNames {
		if st == s {
			return name
		}
	}
	return "unknown"
}

// Options holds every CLI-controllable setting (SPEC_FULL.md §6).
type Options struct {
	Src          string
	Verbose      bool
	EmitTokens   bool
	EmitHIR      bool
	EmitMIR      bool
	StopAfter    Stage
	HasStopAfter bool
}

const appVersion = "onuc 1.0"

// ParseArgs parses os.Args[1:] the way the teacher's util.ParseArgs parses
// VSL's flags: a manual index-based loop over a flat argument slice, the
// last non-flag argument is the source path.
func ParseArgs() (Options, error) {
	opt := Options{}
	args := os.Args[1:]
	for i := 0; i < len(args); i++ {
		switch args[i] {
		case "-h", "--help":
			printHelp()
			os.Exit(0)
		case "-v", "--version":
			fmt.Println(appVersion)
			os.Exit(0)
		case "--verbose":
			opt.Verbose = true
		case "--emit-tokens":
			opt.EmitTokens = true
		case "--emit-hir":
			opt.EmitHIR = true
		case "--emit-mir":
			opt.EmitMIR = true
		case "--stop-after":
			if i+1 >= len(args) {
				return opt, fmt.Errorf("got flag %s but no argument", args[i])
			}
			st, ok := stageNames[args[i+1]]
			if !ok {
				return opt, fmt.Errorf("unexpected stage identifier: %s", args[i+1])
			}
			opt.StopAfter = st
			opt.HasStopAfter = true
			i++
		default:
			if strings.HasPrefix(args[i], "-") {
				return opt, fmt.Errorf("unexpected flag: %s", args[i])
			}
			opt.Src = args[i]
		}
	}
	if opt.Src == "" {
		return opt, fmt.Errorf("expected a source file path")
	}
	return opt, nil
}

func printHelp() {
	w := tabwriter.NewWriter(os.Stdout, 6, 1, 1, 0, 0)
	_, _ = fmt.Fprintln(w, "-h, --help\tPrints this help message and exits.")
	_, _ = fmt.Fprintln(w, "-v, --version\tPrints the compiler version and exits.")
	_, _ = fmt.Fprintln(w, "--verbose\tLog the HIR and MIR dumps.")
	_, _ = fmt.Fprintln(w, "--emit-tokens\tAccepted; no token stream is dumped.")
	_, _ = fmt.Fprintln(w, "--emit-hir\tDump the lowered HIR and continue.")
	_, _ = fmt.Fprintln(w, "--emit-mir\tDump the lowered MIR and continue.")
	_, _ = fmt.Fprintln(w, "--stop-after\tHalt after one of: lexing, parsing, analysis, mir, codegen, realization.")
	_ = w.Flush()
}
