// Package types implements jlang's type checker: a single pass over the
// parsed AST that mirrors the code generator's runtime operand stack with a
// compile-time type stack, validating every operation's operand types and
// every block's entry/exit balance (spec.md §4.4).
package types

import (
	"github.com/j4n1x/jlang/internal/ast"
	"github.com/j4n1x/jlang/internal/diag"
	"github.com/j4n1x/jlang/internal/symtab"
	"github.com/j4n1x/jlang/internal/token"
)

// entry is one type-stack slot: a type tagged with the token that produced
// it, so a residual-stack diagnostic can point at its origin.
type entry struct {
	tok token.Token
	typ token.TypeName
}

// Checker walks a parsed program and accumulates every type error it finds,
// rather than stopping at the first one (spec.md §7: "the type checker
// accumulates diagnostics within a single run to surface multiple issues").
type Checker struct {
	tabs    *symtab.Tables
	stack   []entry
	diags   []*diag.Diagnostic
	retType token.TypeName
	funName string
}

// Check type-checks every function in prog and returns every diagnostic
// found; a non-empty result means the program must not proceed to codegen.
func Check(prog []ast.Stmt, tabs *symtab.Tables) []*diag.Diagnostic {
	c := &Checker{tabs: tabs}
	for _, stmt := range prog {
		if fn, ok := stmt.(*ast.Fun); ok {
			c.checkFun(fn)
		}
	}
	return c.diags
}

func (c *Checker) errorf(tok token.Token, format string, args ...any) {
	c.diags = append(c.diags, diag.Errorf(diag.StageType, tok.Pos, format, args...))
}

func (c *Checker) push(tok token.Token, typ token.TypeName) {
	c.stack = append(c.stack, entry{tok: tok, typ: typ})
}

// pop removes and returns the top entry. An empty stack means the caller
// expected a value where none was produced -- typically a void function
// call used where a value was required -- and is reported here rather than
// forcing every call site to special-case it.
func (c *Checker) pop(tok token.Token) entry {
	if len(c.stack) == 0 {
		c.errorf(tok, "expected a value here, but the expression produces none")
		return entry{tok: tok, typ: token.TypeNone}
	}
	e := c.stack[len(c.stack)-1]
	c.stack = c.stack[:len(c.stack)-1]
	return e
}

func (c *Checker) checkFun(fn *ast.Fun) {
	c.retType = fn.Proto.ReturnType
	c.funName = fn.Proto.Name
	c.stack = c.stack[:0]
	c.checkBlock(fn.Body)
	if n := len(c.stack); n != 0 {
		c.errorf(fn.Tok, "function %q ends with %d unconsumed value(s) on the stack", fn.Proto.Name, n)
		for _, e := range c.stack {
			c.errorf(e.tok, "...residual %s value from here", e.typ)
		}
		c.stack = c.stack[:0]
	}
}

func (c *Checker) checkBlock(body []ast.Stmt) {
	for _, s := range body {
		c.checkStmt(s)
	}
}

// checkBranch type-checks a nested if/while body and requires the stack to
// return to its pre-branch shape on exit (spec.md §4.4: "the stack must
// equal what it was on entry"). It resyncs to the entry depth afterward so a
// mismatch in one branch doesn't cascade into spurious errors later in the
// function.
func (c *Checker) checkBranch(tok token.Token, kind string, body []ast.Stmt) {
	entryLen := len(c.stack)
	c.checkBlock(body)
	if n := len(c.stack); n != entryLen {
		c.errorf(tok, "%s body leaves %d unconsumed value(s) on the stack", kind, n-entryLen)
		if n > entryLen {
			c.stack = c.stack[:entryLen]
		}
	}
}

func (c *Checker) checkStmt(s ast.Stmt) {
	switch n := s.(type) {
	case *ast.VarDef:
		if n.Init != nil {
			c.checkExpr(n.Init)
			v := c.pop(n.Tok)
			if n.Typ != token.TypeNone && v.typ != n.Typ {
				c.errorf(n.Tok, "variable %q declared as %s, initializer has type %s", n.Name, n.Typ, v.typ)
			}
		}

	case *ast.VarSet:
		c.checkExpr(n.Value)
		v := c.pop(n.Tok)
		if v.typ != n.Typ {
			c.errorf(n.Tok, "cannot assign %s to %q (declared %s)", v.typ, n.Name, n.Typ)
		}

	case *ast.Store:
		c.checkExpr(n.Dst)
		dst := c.pop(n.Tok)
		if dst.typ != token.TypePointer {
			c.errorf(n.Tok, "store%d destination must be pointer, got %s", 8<<n.Rank, dst.typ)
		}
		c.checkExpr(n.Value)
		c.pop(n.Tok) // the stored value may be of any type

	case *ast.Print:
		c.checkExpr(n.Expr)
		c.pop(n.Tok)

	case *ast.Drop:
		c.checkExpr(n.Expr)
		c.pop(n.Tok)

	case *ast.Return:
		if n.Value != nil {
			c.checkExpr(n.Value)
			v := c.pop(n.Tok)
			switch {
			case c.retType == token.TypeNone:
				c.errorf(n.Tok, "function %q yields none but return has a value", c.funName)
			case v.typ != c.retType:
				c.errorf(n.Tok, "function %q yields %s but return value has type %s", c.funName, c.retType, v.typ)
			}
		} else if c.retType != token.TypeNone {
			c.errorf(n.Tok, "function %q yields %s but return has no value", c.funName, c.retType)
		}

	case *ast.If:
		c.checkExpr(n.Cond)
		cond := c.pop(n.Tok)
		if cond.typ != token.TypeInteger {
			c.errorf(n.Tok, "if condition must be integer, got %s", cond.typ)
		}
		c.checkBranch(n.Tok, "if", n.Body)

	case *ast.While:
		c.checkExpr(n.Cond)
		cond := c.pop(n.Tok)
		if cond.typ != token.TypeInteger {
			c.errorf(n.Tok, "while condition must be integer, got %s", cond.typ)
		}
		c.checkBranch(n.Tok, "while", n.Body)

	case *ast.ExprStmt:
		c.checkExpr(n.Value)
		if n.Value.Type() != token.TypeNone {
			v := c.pop(n.Tok)
			c.errorf(n.Tok, "expression statement's value (%s) is discarded; only a none-typed expression is legal bare", v.typ)
		}

	case *ast.Fun:
		// Functions don't nest in this grammar; nothing to do.

	default:
		c.errorf(s.Token(), "internal: unhandled statement kind %T", s)
	}
}

// checkExpr pushes exactly one entry for every non-void expression, and zero
// entries for a FunCall whose declared return type is none (spec.md §8,
// testable property 2). It also recursively validates every operand
// contract in §4.4.
func (c *Checker) checkExpr(e ast.Expr) {
	switch n := e.(type) {
	case *ast.IntLiteral:
		c.push(n.Tok, n.Type())

	case *ast.ArrayRef:
		c.push(n.Tok, n.Type())

	case *ast.IdentRef:
		c.push(n.Tok, n.Type())

	case *ast.Binary:
		c.checkExpr(n.Lhs)
		c.checkExpr(n.Rhs)
		rhs := c.pop(n.Tok)
		lhs := c.pop(n.Tok)
		if lhs.typ != token.TypeInteger || rhs.typ != token.TypeInteger {
			c.errorf(n.Tok, "%s requires integer operands, got %s and %s", n.Op, lhs.typ, rhs.typ)
		}
		c.push(n.Tok, token.TypeInteger)

	case *ast.AddressOf:
		// The operand is storage, not a value in its own right; there is
		// nothing to push/pop for it.
		c.push(n.Tok, token.TypePointer)

	case *ast.Load:
		c.checkExpr(n.Ptr)
		ptr := c.pop(n.Tok)
		if ptr.typ != token.TypePointer {
			c.errorf(n.Tok, "load%d requires a pointer operand, got %s", 8<<n.Rank, ptr.typ)
		}
		c.push(n.Tok, token.TypeInteger)

	case *ast.FunCall:
		proto, ok := c.tabs.Prototypes.Get(n.Target.Name)
		if !ok {
			c.errorf(n.Tok, "internal: call to unresolved function %q", n.Target.Name)
			for _, arg := range n.Args {
				c.checkExpr(arg)
				c.pop(n.Tok)
			}
			return
		}
		if len(n.Args) != len(proto.Params) {
			c.errorf(n.Tok, "%q expects %d argument(s), got %d", n.Target.Name, len(proto.Params), len(n.Args))
		}
		for i, arg := range n.Args {
			c.checkExpr(arg)
			v := c.pop(arg.Token())
			if i < len(proto.Params) && v.typ != proto.Params[i].Typ {
				c.errorf(arg.Token(), "argument %d to %q: expected %s, got %s", i+1, n.Target.Name, proto.Params[i].Typ, v.typ)
			}
		}
		if n.Typ != token.TypeNone {
			c.push(n.Tok, n.Typ)
		}

	case *ast.Syscall:
		c.checkExpr(n.CallNum)
		num := c.pop(n.Tok)
		if num.typ != token.TypeInteger {
			c.errorf(n.Tok, "syscall%d number must be integer, got %s", n.Arity, num.typ)
		}
		for _, arg := range n.Args {
			c.checkExpr(arg)
			c.pop(arg.Token()) // syscall arguments may be of any type
		}
		c.push(n.Tok, token.TypeInteger)

	default:
		c.errorf(e.Token(), "internal: unhandled expression kind %T", e)
	}
}
