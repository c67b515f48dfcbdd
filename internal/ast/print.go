package ast

import (
	"fmt"
	"io"
	"strings"
)

// Dump renders prog's top-level items as an indented tree to w, for
// --dump-ast. It is a plain type switch rather than a virtual Print method
// per node, so every node kind is handled in one exhaustive place.
func Dump(w io.Writer, prog []Stmt) {
	for _, stmt := range prog {
		printStmt(w, stmt, 0)
	}
}

func indent(w io.Writer, depth int) {
	fmt.Fprint(w, strings.Repeat("  ", depth))
}

func printStmt(w io.Writer, stmt Stmt, depth int) {
	indent(w, depth)
	switch s := stmt.(type) {
	case *Fun:
		fmt.Fprintf(w, "Fun %s(%s) yields %s @ %s\n", s.Proto.Name, formatParams(s.Proto.Params), s.Proto.ReturnType, s.Tok.Pos)
		for _, stmt := range s.Body {
			printStmt(w, stmt, depth+1)
		}
	case *VarDef:
		fmt.Fprintf(w, "VarDef %s %s (kind=%d, size=%d) @ %s\n", s.Name, s.Typ, s.Kind, s.Size, s.Tok.Pos)
		if s.Init != nil {
			printExpr(w, s.Init, depth+1)
		}
	case *VarSet:
		fmt.Fprintf(w, "VarSet %s @ %s\n", s.Name, s.Tok.Pos)
		printExpr(w, s.Value, depth+1)
	case *Store:
		fmt.Fprintf(w, "Store%d @ %s\n", sizeBits(s.Rank), s.Tok.Pos)
		printExpr(w, s.Dst, depth+1)
		printExpr(w, s.Value, depth+1)
	case *Print:
		fmt.Fprintf(w, "Print @ %s\n", s.Tok.Pos)
		printExpr(w, s.Expr, depth+1)
	case *Drop:
		fmt.Fprintf(w, "Drop @ %s\n", s.Tok.Pos)
		printExpr(w, s.Expr, depth+1)
	case *Return:
		fmt.Fprintf(w, "Return @ %s\n", s.Tok.Pos)
		if s.Value != nil {
			printExpr(w, s.Value, depth+1)
		}
	case *If:
		fmt.Fprintf(w, "If @ %s\n", s.Tok.Pos)
		printExpr(w, s.Cond, depth+1)
		for _, stmt := range s.Body {
			printStmt(w, stmt, depth+1)
		}
	case *While:
		fmt.Fprintf(w, "While @ %s\n", s.Tok.Pos)
		printExpr(w, s.Cond, depth+1)
		for _, stmt := range s.Body {
			printStmt(w, stmt, depth+1)
		}
	case *ExprStmt:
		fmt.Fprintf(w, "ExprStmt @ %s\n", s.Tok.Pos)
		printExpr(w, s.Value, depth+1)
	default:
		fmt.Fprintf(w, "<unknown statement %T>\n", s)
	}
}

func printExpr(w io.Writer, expr Expr, depth int) {
	indent(w, depth)
	switch e := expr.(type) {
	case *IntLiteral:
		fmt.Fprintf(w, "IntLiteral %d @ %s\n", e.Value, e.Tok.Pos)
	case *ArrayRef:
		fmt.Fprintf(w, "ArrayRef %s @ %s\n", e.Name, e.Tok.Pos)
	case *IdentRef:
		fmt.Fprintf(w, "IdentRef %s (kind=%d, type=%s) @ %s\n", e.Name, e.Kind, e.Typ, e.Tok.Pos)
	case *Binary:
		fmt.Fprintf(w, "Binary %s @ %s\n", e.Op, e.Tok.Pos)
		printExpr(w, e.Lhs, depth+1)
		printExpr(w, e.Rhs, depth+1)
	case *AddressOf:
		fmt.Fprintf(w, "AddressOf @ %s\n", e.Tok.Pos)
		printExpr(w, e.Ident, depth+1)
	case *Load:
		fmt.Fprintf(w, "Load%d @ %s\n", sizeBits(e.Rank), e.Tok.Pos)
		printExpr(w, e.Ptr, depth+1)
	case *FunCall:
		fmt.Fprintf(w, "FunCall %s @ %s\n", e.Target.Name, e.Tok.Pos)
		for _, arg := range e.Args {
			printExpr(w, arg, depth+1)
		}
	case *Syscall:
		fmt.Fprintf(w, "Syscall%d @ %s\n", e.Arity, e.Tok.Pos)
		printExpr(w, e.CallNum, depth+1)
		for _, arg := range e.Args {
			printExpr(w, arg, depth+1)
		}
	default:
		fmt.Fprintf(w, "<unknown expression %T>\n", e)
	}
}

func formatParams(params []Param) string {
	parts := make([]string, len(params))
	for i, p := range params {
		parts[i] = fmt.Sprintf("%s as %s", p.Name, p.Typ)
	}
	return strings.Join(parts, ", ")
}

func sizeBits(rank int) int {
	return 8 << rank
}
