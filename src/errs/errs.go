// Package errs defines the compiler's error kinds. The teacher propagates
// plain fmt.Errorf values from every stage (see ir/llvm/transform.go,
// util/args.go); this package keeps that plain-error-return discipline but
// tags each failure with one of the seven named kinds so the CLI layer can
// report and exit consistently without parsing message text.
package errs

import "fmt"

// Kind names one of the seven error categories a compile can fail with.
type Kind int

const (
	GrammarViolation Kind = iota
	ResourceViolation
	AgencyViolation
	MonomorphizationError
	CodeGenError
	OwnershipViolation
	BehaviorConflict
)

var kindNames = [...]string{
	"GrammarViolation",
	"ResourceViolation",
	"AgencyViolation",
	"MonomorphizationError",
	"CodeGenError",
	"OwnershipViolation",
	"BehaviorConflict",
}

func (k Kind) String() string {
	if k < 0 || int(k) >= len(kindNames) {
		return "UnknownError"
	}
	return kindNames[k]
}

// Span is an optional source location attached to an error.
type Span struct {
	Line, Pos int
	Valid     bool
}

// CompilerError is the single error type returned by every pipeline stage.
type CompilerError struct {
	Kind    Kind
	Message string
	Span    Span
}

func (e *CompilerError) Error() string {
	if e.Span.Valid {
		return fmt.Sprintf("%s: %s (line %d, pos %d)", e.Kind, e.Message, e.Span.Line, e.Span.Pos)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func newf(k Kind, format string, args ...interface{}) *CompilerError {
	return &CompilerError{Kind: k, Message: fmt.Sprintf(format, args...)}
}

// NewGrammarViolation reports a surface-syntax failure from the parser
// collaborator.
func NewGrammarViolation(span Span, format string, args ...interface{}) *CompilerError {
	e := newf(GrammarViolation, format, args...)
	e.Span = span
	return e
}

// NewResourceViolation reports an I/O or environment failure.
func NewResourceViolation(format string, args ...interface{}) *CompilerError {
	return newf(ResourceViolation, format, args...)
}

// NewAgencyViolation reports an effect-discipline failure. Reserved: no pass
// in this core currently raises it.
func NewAgencyViolation(format string, args ...interface{}) *CompilerError {
	return newf(AgencyViolation, format, args...)
}

// NewMonomorphizationError reports a failure resolving a generic-like
// construct to a concrete type.
func NewMonomorphizationError(format string, args ...interface{}) *CompilerError {
	return newf(MonomorphizationError, format, args...)
}

// NewCodeGenError reports a failure while lowering MIR to LLVM IR.
func NewCodeGenError(format string, args ...interface{}) *CompilerError {
	return newf(CodeGenError, format, args...)
}

// NewOwnershipViolation reports a custody failure from the ownership pass:
// a use-after-release, or a resource that escapes scope unreleased.
func NewOwnershipViolation(span Span, format string, args ...interface{}) *CompilerError {
	e := newf(OwnershipViolation, format, args...)
	e.Span = span
	return e
}

// NewBehaviorConflict reports two behaviors whose names collide after
// hyphen-to-underscore normalization.
func NewBehaviorConflict(format string, args ...interface{}) *CompilerError {
	return newf(BehaviorConflict, format, args...)
}
