// Package ast defines the typed syntax tree the parser builds: a small set
// of concrete node types per category (expression, statement) rather than a
// class hierarchy, so the type checker and code generator can switch over
// them exhaustively.
package ast

import "github.com/j4n1x/jlang/internal/token"

// Expr is any node that produces a value (or, for ExprType none, produces
// nothing but still occupies an expression position).
type Expr interface {
	Node
	Type() token.TypeName
	// SetType overwrites the node's declared type. It exists solely to
	// support the cast construct, which rewrites a child's declared type in
	// place rather than wrapping it in a new node (spec: "the cast
	// operation rewrites a child's declared type").
	SetType(token.TypeName)
}

// Node is implemented by every AST node, expression or statement.
type Node interface {
	Token() token.Token
}

// IdentKind classifies what an identifier reference resolved to.
type IdentKind int

const (
	IdentLocal IdentKind = iota
	IdentGlobal
	IdentConstant
	IdentFunction
)

// ArrayKind distinguishes the two sources of an ArrayRef.
type ArrayKind int

const (
	ArrayString ArrayKind = iota
	ArrayAllocate
)

// IntLiteral is a literal integer. Typ starts as TypeInteger but, like every
// other Expr, can be overwritten by a cast: `pointer(0)` parses the literal
// 0 and then rewrites its declared type to TypePointer in place, rather than
// wrapping it in a new node (spec.md §8: a cast "produces a ...-typed value
// without emitting a conversion").
type IntLiteral struct {
	Tok   token.Token
	Value int64
	Typ   token.TypeName
}

func (n *IntLiteral) Token() token.Token     { return n.Tok }
func (n *IntLiteral) Type() token.TypeName   { return n.Typ }
func (n *IntLiteral) SetType(t token.TypeName) { n.Typ = t }

// ArrayRef is a pointer to a generated symbol: either a registered string
// literal's payload or a fresh allocate(N) byte block. Typ starts as
// TypePointer; see IntLiteral for why it is still mutable.
type ArrayRef struct {
	Tok  token.Token
	Kind ArrayKind
	Name string // generated symbol, e.g. "_anon_str_0" or a local allocate slot name
	Size int64  // byte count; only meaningful for ArrayAllocate
	Typ  token.TypeName
}

func (n *ArrayRef) Token() token.Token       { return n.Tok }
func (n *ArrayRef) Type() token.TypeName     { return n.Typ }
func (n *ArrayRef) SetType(t token.TypeName) { n.Typ = t }

// IdentRef is a resolved reference to a local, global, constant, or function.
type IdentRef struct {
	Tok  token.Token
	Name string
	Kind IdentKind
	Typ  token.TypeName
}

func (n *IdentRef) Token() token.Token   { return n.Tok }
func (n *IdentRef) Type() token.TypeName { return n.Typ }
func (n *IdentRef) SetType(t token.TypeName) {
	n.Typ = t
}

// Binary is a binary operator application; Typ starts as TypeInteger
// (comparisons yield 0/1 integers), still mutable by a cast.
type Binary struct {
	Tok token.Token
	Op  token.Operator
	Lhs Expr
	Rhs Expr
	Typ token.TypeName
}

func (n *Binary) Token() token.Token     { return n.Tok }
func (n *Binary) Type() token.TypeName   { return n.Typ }
func (n *Binary) SetType(t token.TypeName) { n.Typ = t }

// AddressOf produces a pointer to the storage backing an identifier,
// regardless of that identifier's own type. Typ starts as TypePointer.
type AddressOf struct {
	Tok   token.Token
	Ident *IdentRef
	Typ   token.TypeName
}

func (n *AddressOf) Token() token.Token     { return n.Tok }
func (n *AddressOf) Type() token.TypeName   { return n.Typ }
func (n *AddressOf) SetType(t token.TypeName) { n.Typ = t }

// Load is a sized memory read: loadN(ptr) -> integer. Typ starts as
// TypeInteger.
type Load struct {
	Tok  token.Token
	Rank int // 0..3 for 8/16/32/64 bits
	Ptr  Expr
	Typ  token.TypeName
}

func (n *Load) Token() token.Token     { return n.Tok }
func (n *Load) Type() token.TypeName   { return n.Typ }
func (n *Load) SetType(t token.TypeName) { n.Typ = t }

// FunCall invokes a user-defined function; its type is the callee's
// declared return type.
type FunCall struct {
	Tok    token.Token
	Target *IdentRef
	Args   []Expr
	Typ    token.TypeName
}

func (n *FunCall) Token() token.Token   { return n.Tok }
func (n *FunCall) Type() token.TypeName { return n.Typ }
func (n *FunCall) SetType(t token.TypeName) {
	n.Typ = t
}

// Syscall invokes a direct system call with a fixed arity (0..5); Typ starts
// as TypeInteger.
type Syscall struct {
	Tok     token.Token
	Arity   int
	CallNum Expr
	Args    []Expr
	Typ     token.TypeName
}

func (n *Syscall) Token() token.Token     { return n.Tok }
func (n *Syscall) Type() token.TypeName   { return n.Typ }
func (n *Syscall) SetType(t token.TypeName) { n.Typ = t }
