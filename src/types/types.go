// Package types defines the discriminated sum of value types shared by every
// later stage of the compiler: the AST, HIR and MIR all tag their values with
// a types.Type, and the codegen backend maps each one to an LLVM type.
package types

import "fmt"

// Kind discriminates the members of the type sum.
type Kind int

const (
	KindInvalid Kind = iota
	KindI8
	KindI16
	KindI32
	KindI64
	KindI128
	KindU8
	KindU16
	KindU32
	KindU64
	KindU128
	KindF32
	KindF64
	KindBool
	KindText   // the primary resource type.
	KindMatrix
	KindNothing // void.
	KindTuple
	KindArray
	KindMap
	KindTree
	KindShape // a named interface: a set of behavior headers.
)

var kindNames = [...]string{
	"invalid", "i8", "i16", "i32", "i64", "i128",
	"u8", "u16", "u32", "u64", "u128",
	"f32", "f64", "bool", "text", "matrix", "nothing",
	"tuple", "array", "map", "tree", "shape",
}

func (k Kind) String() string {
	if k < 0 || int(k) >= len(kindNames) {
		return fmt.Sprintf("Kind(%d)", int(k))
	}
	return kindNames[k]
}

// Type is a value of the compiler's type sum. Composite kinds carry their
// element/key/value types in Elems; Shape carries its named behavior set
// elsewhere (the Symbol Registry) and is referenced here only by Name.
type Type struct {
	Kind  Kind
	Name  string // Shape name, or empty for unnamed types.
	Elems []Type // Tuple: element types. Array/Tree: single element type. Map: [key, value].
}

// Scalar constructors for the common cases used throughout the pipeline.
var (
	I8      = Type{Kind: KindI8}
	I16     = Type{Kind: KindI16}
	I32     = Type{Kind: KindI32}
	I64     = Type{Kind: KindI64}
	I128    = Type{Kind: KindI128}
	U8      = Type{Kind: KindU8}
	U16     = Type{Kind: KindU16}
	U32     = Type{Kind: KindU32}
	U64     = Type{Kind: KindU64}
	U128    = Type{Kind: KindU128}
	F32     = Type{Kind: KindF32}
	F64     = Type{Kind: KindF64}
	Bool    = Type{Kind: KindBool}
	Text    = Type{Kind: KindText}
	Matrix  = Type{Kind: KindMatrix}
	Nothing = Type{Kind: KindNothing}
)

// Tuple builds a tuple-of-types value.
func Tuple(elems ...Type) Type { return Type{Kind: KindTuple, Elems: elems} }

// Array builds an array-of-t value.
func Array(t Type) Type { return Type{Kind: KindArray, Elems: []Type{t}} }

// Map builds a map(key, value) value.
func Map(key, value Type) Type { return Type{Kind: KindMap, Elems: []Type{key, value}} }

// Tree builds a tree-of-value value.
func Tree(t Type) Type { return Type{Kind: KindTree, Elems: []Type{t}} }

// Shape builds a named-interface reference.
func Shape(name string) Type { return Type{Kind: KindShape, Name: name} }

// IsResource reports whether t owns heap memory and is therefore subject to
// linear custody tracking: text, matrix, array, map and tree.
func IsResource(t Type) bool {
	switch t.Kind {
	case KindText, KindMatrix, KindArray, KindMap, KindTree:
		return true
	default:
		return false
	}
}

// Equal reports structural equality between two types.
func Equal(a, b Type) bool {
	if a.Kind != b.Kind || a.Name != b.Name || len(a.Elems) != len(b.Elems) {
		return false
	}
	for i := range a.Elems {
		if !Equal(a.Elems[i], b.Elems[i]) {
			return false
		}
	}
	return true
}

func (t Type) String() string {
	switch t.Kind {
	case KindTuple:
		s := "tuple("
		for i, e := range t.Elems {
			if i > 0 {
				s += ", "
			}
			s += e.String()
		}
		return s + ")"
	case KindArray:
		return fmt.Sprintf("array(%s)", t.Elems[0])
	case KindMap:
		return fmt.Sprintf("map(%s, %s)", t.Elems[0], t.Elems[1])
	case KindTree:
		return fmt.Sprintf("tree(%s)", t.Elems[0])
	case KindShape:
		return fmt.Sprintf("shape(%s)", t.Name)
	default:
		return t.Kind.String()
	}
}
