// Package hir defines the High-level IR: a tree of expressions, structurally
// close to the AST but enriched with the fields liveness and ownership
// analysis need. Unlike the AST (a plain data carrier describing what the
// out-of-scope parser hands in), HIR nodes are mutated in place by two
// passes after lowering: Liveness sets each Variable's Consuming flag, and
// Ownership appends synthetic Drop nodes.
package hir

import "onuc/src/types"

// Expr is a node in an HIR expression tree. Every concrete node is a
// pointer type so that Liveness and Ownership can mutate fields (notably
// Variable.Consuming) in place and so that Drop nodes can be appended into a
// Block's Exprs slice without invalidating sibling references.
type Expr interface {
	hirExpr()
	// Type returns the static type this expression evaluates to. HIR nodes
	// carry their type explicitly (filled in during lowering) rather than
	// requiring a separate inference pass, since SPEC_FULL.md's source
	// language has no generics or type inference to perform.
	Type() types.Type
}

// Literal is a constant value: integer, boolean or text.
type Literal struct {
	Typ   types.Type
	Int   int64
	Bool  bool
	Text  string
}

func (l *Literal) hirExpr()        {}
func (l *Literal) Type() types.Type { return l.Typ }

// Variable is an occurrence of a named, already-bound value. Consuming is
// false at construction; the Liveness pass sets it to true on exactly the
// last use of Name along a backward traversal (SPEC_FULL.md §4.3).
type Variable struct {
	Name      string
	Typ       types.Type
	Consuming bool
}

func (v *Variable) hirExpr()        {}
func (v *Variable) Type() types.Type { return v.Typ }

// Call invokes a registered behavior by name.
type Call struct {
	Name       string
	Args       []Expr
	ReturnType types.Type
}

func (c *Call) hirExpr()        {}
func (c *Call) Type() types.Type { return c.ReturnType }

// BinOp is one of the seven arithmetic/comparison operators.
type BinOpKind int

const (
	OpAddedTo BinOpKind = iota
	OpDecreasedBy
	OpScalesBy
	OpPartitionsBy
	OpMatches
	OpExceeds
	OpFallsShortOf
)

var binOpNames = [...]string{
	"added-to", "decreased-by", "scales-by", "partitions-by", "matches", "exceeds", "falls-short-of",
}

func (k BinOpKind) String() string { return binOpNames[k] }

// BinOp applies Op to Lhs and Rhs. Result type is the operator's natural
// type: I64 for the arithmetic operators, Bool for the three comparisons.
type BinOp struct {
	Op       BinOpKind
	Lhs, Rhs Expr
	Typ      types.Type
}

func (b *BinOp) hirExpr()        {}
func (b *BinOp) Type() types.Type { return b.Typ }

// IsComparison reports whether Op yields Bool rather than I64.
func (k BinOpKind) IsComparison() bool {
	switch k {
	case OpMatches, OpExceeds, OpFallsShortOf:
		return true
	default:
		return false
	}
}

// Derivation binds Name to Value's result within Body's lexical scope.
type Derivation struct {
	Name  string
	Typ   types.Type
	Value Expr
	Body  Expr
}

func (d *Derivation) hirExpr()        {}
func (d *Derivation) Type() types.Type { return d.Body.Type() }

// If is a two-armed conditional. Typ is filled in during lowering from the
// then-arm's type; neither the lowerer nor this package checks that the
// else-arm's type agrees.
type If struct {
	Cond, Then, Else Expr
	Typ              types.Type
}

func (i *If) hirExpr()        {}
func (i *If) Type() types.Type { return i.Typ }

// Block sequences expressions; its value is the last expression's value.
type Block struct {
	Exprs []Expr
}

func (b *Block) hirExpr() {}
func (b *Block) Type() types.Type {
	if len(b.Exprs) == 0 {
		return types.Nothing
	}
	return b.Exprs[len(b.Exprs)-1].Type()
}

// Tuple constructs a tuple value.
type Tuple struct {
	Elems []Expr
	Typ   types.Type
}

func (t *Tuple) hirExpr()        {}
func (t *Tuple) Type() types.Type { return t.Typ }

// Index projects Slot out of Subject.
type Index struct {
	Subject Expr
	Slot    int
	Typ     types.Type
}

func (i *Index) hirExpr()        {}
func (i *Index) Type() types.Type { return i.Typ }

// Emit writes Inner's value to the external broadcast sink. Always nothing.
type Emit struct {
	Inner Expr
}

func (e *Emit) hirExpr()        {}
func (e *Emit) Type() types.Type { return types.Nothing }

// Drop explicitly relinquishes Inner. Always nothing. Synthesized by the
// Ownership pass (SPEC_FULL.md §4.4) and also directly constructible (e.g.
// when the AST carries an explicit DropExpr).
type Drop struct {
	Inner Expr
}

func (d *Drop) hirExpr()        {}
func (d *Drop) Type() types.Type { return types.Nothing }

// Param is one formal parameter of a Behavior.
type Param struct {
	Name     string
	Type     types.Type
	Observes bool
}

// Behavior is a lowered function: header plus HIR body.
type Behavior struct {
	Name       string
	Params     []Param
	ReturnType types.Type
	Body       Expr
	// IsEntry marks the program-entry behavior (named "main" or "run"),
	// whose parameter list has been prepended with the synthetic __argc/
	// __argv parameters (SPEC_FULL.md §4.2).
	IsEntry bool
}

// Module is the whole lowered program: every behavior definition, in
// declaration order.
type Module struct {
	Behaviors []*Behavior
}
