// Package symtab holds the scoped symbol tables that the parser populates
// while building the AST, and that the type checker and code generator
// later read from as immutable views (spec.md design notes: "the parser
// owns the tables during its run; it hands them off as immutable views").
package symtab

import (
	"fmt"

	"github.com/j4n1x/jlang/internal/ast"
	"github.com/j4n1x/jlang/internal/token"
)

// ConstValue is the compile-time value of a `constant` declaration: either a
// plain integer, a reference to a generated symbol (e.g. a string literal's
// pointer), or a sum of the two (spec.md §4.2.1: "a literal integer, a
// string-literal pointer symbol, or a sum thereof").
type ConstValue struct {
	IntPart int64
	Symbol  string // empty when the value is a plain integer
}

// Emit renders the value the way it is written into a `dq` directive.
func (v ConstValue) Emit() string {
	switch {
	case v.Symbol == "":
		return fmt.Sprintf("%d", v.IntPart)
	case v.IntPart == 0:
		return v.Symbol
	case v.IntPart > 0:
		return fmt.Sprintf("%s+%d", v.Symbol, v.IntPart)
	default:
		return fmt.Sprintf("%s-%d", v.Symbol, -v.IntPart)
	}
}

// Add folds a plain-integer operand into v, keeping at most one symbol part
// (the constant evaluator never allows symbol+symbol).
func (v ConstValue) Add(other ConstValue) ConstValue {
	sym := v.Symbol
	if sym == "" {
		sym = other.Symbol
	}
	return ConstValue{IntPart: v.IntPart + other.IntPart, Symbol: sym}
}

// Constant is a name bound at parse time to a compile-time-evaluated value.
type Constant struct {
	Tok   token.Token
	Name  string
	Typ   token.TypeName
	Value ConstValue
}

// Tables is the full set of symbol tables for one compilation.
type Tables struct {
	Prototypes *OrderedMap[*ast.FunProto]
	Globals    *OrderedMap[*ast.VarDef]
	Constants  *OrderedMap[*Constant]

	// ScopeVars holds the locals of whichever function is currently being
	// parsed; it is cleared at each function boundary (EnterFunction).
	ScopeVars *OrderedMap[*ast.VarDef]

	// AnonymousScopeVars holds the allocate(N) blocks declared inside the
	// function currently being parsed, in declaration order.
	AnonymousScopeVars []*ast.VarDef

	// GlobalConstVars holds every registered string literal's decoded
	// payload, in first-occurrence order; its index is embedded in the
	// generated symbol name "_anon_str_<i>".
	GlobalConstVars []string

	anonCounter int
}

// NewTables returns an empty set of symbol tables for a fresh compilation.
func NewTables() *Tables {
	return &Tables{
		Prototypes: NewOrderedMap[*ast.FunProto](),
		Globals:    NewOrderedMap[*ast.VarDef](),
		Constants:  NewOrderedMap[*Constant](),
		ScopeVars:  NewOrderedMap[*ast.VarDef](),
	}
}

// EnterFunction resets the per-function tables; call it before parsing a new
// function body.
func (t *Tables) EnterFunction() {
	t.ScopeVars.Clear()
	t.AnonymousScopeVars = nil
}

// IsDefinedAtTopLevel reports whether name already names a prototype,
// global, or constant -- the check used before binding a new global,
// constant, or function name (spec.md invariant 1). It intentionally does
// not consult the current scope: top-level declarations never compete with
// a function body's locals.
func (t *Tables) IsDefinedAtTopLevel(name string) bool {
	return t.Prototypes.Has(name) || t.Globals.Has(name) || t.Constants.Has(name)
}

// IsDefinedInScope reports whether name already names a prototype, constant,
// or a local in the current function -- the check used before binding a new
// parameter or local variable. It intentionally does not consult Globals: a
// local is allowed to shadow a global of the same name (spec.md §4.2:
// "Shadowing a global with a local of the same name is allowed").
func (t *Tables) IsDefinedInScope(name string) bool {
	return t.Prototypes.Has(name) || t.Constants.Has(name) || t.ScopeVars.Has(name)
}

// Resolve looks an identifier up in precedence order: prototypes, then
// current locals, then globals, then constants (spec.md §4.3).
func (t *Tables) Resolve(name string) (kind ast.IdentKind, typ token.TypeName, ok bool) {
	if proto, ok := t.Prototypes.Get(name); ok {
		return ast.IdentFunction, proto.ReturnType, true
	}
	if v, ok := t.ScopeVars.Get(name); ok {
		return ast.IdentLocal, v.Typ, true
	}
	if v, ok := t.Globals.Get(name); ok {
		return ast.IdentGlobal, v.Typ, true
	}
	if c, ok := t.Constants.Get(name); ok {
		return ast.IdentConstant, c.Typ, true
	}
	return 0, 0, false
}

// RegisterString records a decoded string literal payload, returning its
// generated symbol name. Equal payloads get distinct symbols: each source
// occurrence of a string literal is registered once, per spec.md's glossary
// entry for "String literal".
func (t *Tables) RegisterString(payload string) string {
	idx := len(t.GlobalConstVars)
	t.GlobalConstVars = append(t.GlobalConstVars, payload)
	return fmt.Sprintf("_anon_str_%d", idx)
}

// NextAnonymousName returns a fresh generated symbol for an allocate(N)
// block's own backing storage, distinct from the named variable it
// initializes: the frame-slot key of a local block, or the .bss label of a
// global one.
func (t *Tables) NextAnonymousName() string {
	name := fmt.Sprintf("_anon_arr_%d", t.anonCounter)
	t.anonCounter++
	return name
}
