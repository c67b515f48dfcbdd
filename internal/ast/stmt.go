package ast

import "github.com/j4n1x/jlang/internal/token"

// Stmt is any node with no value of its own; it affects control flow or the
// symbol/ memory state rather than pushing an operand.
type Stmt interface {
	Node
	stmtNode()
}

// VarDef declares a variable: a local (inside a function) or a global (top
// level). Size is the byte width of its storage: 8 for integer/pointer
// scalars, or the requested byte count for an allocate(N) block. Init is nil
// for an uninitialized declaration.
type VarDef struct {
	Tok  token.Token
	Name string
	Kind IdentKind // IdentLocal or IdentGlobal
	Typ  token.TypeName
	Size int
	Init Expr
}

func (n *VarDef) Token() token.Token { return n.Tok }
func (n *VarDef) stmtNode()          {}

// VarSet assigns a new value to an already-declared local or global. Typ is
// the variable's declared type, captured at parse time so the type checker
// doesn't need to re-resolve it against a scope that may no longer be
// current (symtab.Tables.ScopeVars only reflects whichever function is
// being parsed right now).
type VarSet struct {
	Tok   token.Token
	Name  string
	Kind  IdentKind // IdentLocal or IdentGlobal
	Typ   token.TypeName
	Value Expr
}

func (n *VarSet) Token() token.Token { return n.Tok }
func (n *VarSet) stmtNode()          {}

// Store is a sized memory write: storeN(dst, value).
type Store struct {
	Tok   token.Token
	Rank  int // 0..3 for 8/16/32/64 bits
	Dst   Expr
	Value Expr
}

func (n *Store) Token() token.Token { return n.Tok }
func (n *Store) stmtNode()          {}

// Print prints the decimal value of expr followed by a newline.
type Print struct {
	Tok  token.Token
	Expr Expr
}

func (n *Print) Token() token.Token { return n.Tok }
func (n *Print) stmtNode()          {}

// Drop discards the value of expr without consuming it otherwise.
type Drop struct {
	Tok  token.Token
	Expr Expr
}

func (n *Drop) Token() token.Token { return n.Tok }
func (n *Drop) stmtNode()          {}

// Return exits the current function, optionally carrying a value. Value is
// nil for "return none".
type Return struct {
	Tok   token.Token
	Value Expr
}

func (n *Return) Token() token.Token { return n.Tok }
func (n *Return) stmtNode()          {}

// If is a conditional block with no else branch.
type If struct {
	Tok  token.Token
	Cond Expr
	Body []Stmt
}

func (n *If) Token() token.Token { return n.Tok }
func (n *If) stmtNode()          {}

// While is a pretest loop.
type While struct {
	Tok  token.Token
	Cond Expr
	Body []Stmt
}

func (n *While) Token() token.Token { return n.Tok }
func (n *While) stmtNode()          {}

// Param is one ordered, typed function parameter.
type Param struct {
	Name string
	Typ  token.TypeName
}

// FunProto is a function's signature, inserted into the prototype table
// before its body is parsed so that recursive calls resolve.
type FunProto struct {
	Tok        token.Token
	Name       string
	Params     []Param
	ReturnType token.TypeName
}

func (n *FunProto) Token() token.Token { return n.Tok }

// Fun is a complete function definition. Locals holds every named local
// variable declared in the body (parameters first, in declaration order);
// Anonymous holds the allocate(N) blocks declared without a name of their
// own. The code generator lays both out, in order, to assign stable frame
// offsets (spec.md invariant 5).
type Fun struct {
	Tok       token.Token
	Proto     *FunProto
	Body      []Stmt
	Locals    []*VarDef
	Anonymous []*VarDef
}

func (n *Fun) Token() token.Token { return n.Tok }
func (n *Fun) stmtNode()          {}

// ExprStmt is an expression used as a statement in its own right (spec.md's
// `expr` statement alternative) -- only legal when the expression's type is
// none, e.g. a call to a function declared to return none; anything else
// would leave a residual value on the stack.
type ExprStmt struct {
	Tok   token.Token
	Value Expr
}

func (n *ExprStmt) Token() token.Token { return n.Tok }
func (n *ExprStmt) stmtNode()          {}
