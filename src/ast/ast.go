// Package ast defines the surface syntax tree contract this compiler core
// relies on. The lexer and parser that produce it are out of scope
// (SPEC_FULL.md §1); only the shapes below matter. Parser errors, reported by
// the out-of-scope parser collaborator, propagate as errs.GrammarViolation
// with a source span — this package only carries the Span value those
// errors attach to.
package ast

import "onuc/src/types"

// Span locates a node in the original source text.
type Span struct {
	Line, Pos int
}

// Program is the whole parsed input: an ordered sequence of top-level
// discourses.
type Program struct {
	Discourses []Discourse
}

// Discourse is a top-level declaration: a module, a shape, or a behavior.
type Discourse interface {
	discourse()
}

// Module declares the compilation unit's name and concern (a free-text
// description; the pipeline does not interpret it).
type Module struct {
	Name    string
	Concern string
	Span    Span
}

func (*Module) discourse() {}

// Shape declares a named interface: a set of behavior headers.
type Shape struct {
	Name     string
	Headers  []Header
	Span     Span
}

func (*Shape) discourse() {}

// Header is a behavior's signature as written in source: name, formal
// parameters, return type.
type Header struct {
	Name       string
	Params     []Param
	ReturnType types.Type
	Span       Span
}

// Param is one formal parameter: its name, declared type, and whether it is
// observed (borrowed) rather than consumed.
type Param struct {
	Name     string
	Type     types.Type
	Observes bool
}

// Behavior is a full function definition: header plus body expression tree.
type Behavior struct {
	Header Header
	Body   Expr
	Span   Span
}

func (*Behavior) discourse() {}

// Expr is a node in a behavior body's expression tree.
type Expr interface {
	expr()
}

// IntLiteral is an integer constant.
type IntLiteral struct {
	Value int64
	Type  types.Type // defaults to I64 if zero-value Kind, set by the parser otherwise.
	Span  Span
}

func (*IntLiteral) expr() {}

// BoolLiteral is a boolean constant.
type BoolLiteral struct {
	Value bool
	Span  Span
}

func (*BoolLiteral) expr() {}

// TextLiteral is a text (string) constant.
type TextLiteral struct {
	Value string
	Span  Span
}

func (*TextLiteral) expr() {}

// Identifier is a bare name: the AST->HIR lowerer resolves it to either a
// zero-arg BehaviorCall (if the registry contains it) or a Variable
// reference.
type Identifier struct {
	Name string
	Span Span
}

func (*Identifier) expr() {}

// BehaviorCall invokes a named behavior with an ordered argument list.
type BehaviorCall struct {
	Name string
	Args []Expr
	Span Span
}

func (*BehaviorCall) expr() {}

// Derivation binds Name to Value's result within Body's lexical scope.
type Derivation struct {
	Name  string
	Type  types.Type
	Value Expr
	Body  Expr
	Span  Span
}

func (*Derivation) expr() {}

// If is a two-armed conditional expression.
type If struct {
	Cond Expr
	Then Expr
	Else Expr
	Span Span
}

func (*If) expr() {}

// Block sequences expressions; its value is the last expression's value.
type Block struct {
	Exprs []Expr
	Span  Span
}

func (*Block) expr() {}

// TupleExpr constructs a tuple value from its element expressions.
type TupleExpr struct {
	Elems []Expr
	Span  Span
}

func (*TupleExpr) expr() {}

// IndexExpr projects slot Slot out of Subject.
type IndexExpr struct {
	Subject Expr
	Slot    int
	Span    Span
}

func (*IndexExpr) expr() {}

// EmitExpr writes Inner's value to the external broadcast sink.
type EmitExpr struct {
	Inner Expr
	Span  Span
}

func (*EmitExpr) expr() {}

// DropExpr explicitly relinquishes Inner. Surface programs rarely write this
// directly; it mainly appears synthesized by the ownership pass, but the AST
// contract admits it so a parser could expose it too.
type DropExpr struct {
	Inner Expr
	Span  Span
}

func (*DropExpr) expr() {}

// BinaryOp is one of the seven arithmetic/comparison behaviors that the
// AST->HIR lowerer recognizes by name and maps to a binary operation rather
// than a generic call (SPEC_FULL.md §4.2).
type BinaryOp struct {
	Op   string // one of: added-to, decreased-by, scales-by, partitions-by, matches, exceeds, falls-short-of.
	Lhs  Expr
	Rhs  Expr
	Span Span
}

func (*BinaryOp) expr() {}
