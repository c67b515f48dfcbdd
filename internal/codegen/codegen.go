// Package codegen lowers a type-checked AST to NASM x86-64 System V
// assembly text: a one-pass stack-machine translation where every
// expression pushes its result and every consumer pops its operands
// (spec.md §4.5). It mirrors the type checker's switch-over-concrete-nodes
// shape rather than attaching a codegen method to each AST type, so both
// passes stay exhaustive and easy to audit side by side.
package codegen

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/samber/lo"

	"github.com/j4n1x/jlang/internal/ast"
	"github.com/j4n1x/jlang/internal/symtab"
	"github.com/j4n1x/jlang/internal/token"
)

// printHelper is the fixed integer-print routine: decimal, newline
// terminated, writing to fd 1 via the write syscall. Transcribed verbatim
// from the reference implementation's emitted text (spec.md §6: "The
// prologue text includes a fixed integer-print helper").
const printHelper = `print:
    mov     r9, -3689348814741910323
    sub     rsp, 40
    mov     BYTE [rsp+31], 10
    lea     rcx, [rsp+30]
.L2:
    mov     rax, rdi
    lea     r8, [rsp+32]
    mul     r9
    mov     rax, rdi
    sub     r8, rcx
    shr     rdx, 3
    lea     rsi, [rdx+rdx*4]
    add     rsi, rsi
    sub     rax, rsi
    add     eax, 48
    mov     BYTE [rcx], al
    mov     rax, rdi
    mov     rdi, rdx
    mov     rdx, rcx
    sub     rcx, 1
    cmp     rax, 9
    ja      .L2
    lea     rax, [rsp+32]
    mov     edi, 1
    sub     rdx, rax
    xor     eax, eax
    lea     rsi, [rsp+32+rdx]
    mov     rdx, r8
    mov     rax, 1
    syscall
    add     rsp, 40
    ret
`

// Generator holds the state of one emission pass: the output sink and the
// current function's frame-offset table. The frame table is rebuilt at
// every function entry and discarded at exit -- it is never allowed to leak
// across functions (spec.md §9: "never mutate across function boundaries").
type Generator struct {
	tabs      *symtab.Tables
	w         *bufio.Writer
	frame     map[string]int
	frameSize int
}

// Generate emits a complete NASM source file for prog to w, in the program
// emission order spec.md §4.5 specifies: print helper, every function in
// source order, the _start trailer running global initializers before
// calling main, then .data (strings, constants) and .bss (globals) as
// needed. The returned error is whatever the underlying writer reported
// (spec.md §5: "on any emission error the whole compilation aborts").
func Generate(w io.Writer, prog []ast.Stmt, tabs *symtab.Tables) error {
	g := &Generator{tabs: tabs, w: bufio.NewWriter(w)}

	g.writeln("BITS 64")
	g.writeln("segment .text")
	g.w.WriteString(printHelper)

	for _, stmt := range prog {
		if fn, ok := stmt.(*ast.Fun); ok {
			g.emitFunction(fn)
		}
	}

	g.writeln("")
	g.writeln("global _start")
	g.writeln("_start:")
	g.writeln("")
	g.writeln("glob_var_defs:")
	for _, vd := range tabs.Globals.Values() {
		g.emitVarDef(vd)
	}
	g.writeln("")
	g.writeln("call main")
	g.writeln("push rax")
	g.writeln("mov rax, 60")
	g.writeln("pop rdi")
	g.writeln("syscall")

	dataHeaderWritten := false
	if len(tabs.GlobalConstVars) > 0 {
		g.writeln("")
		g.writeln("segment .data")
		dataHeaderWritten = true
		for i, s := range tabs.GlobalConstVars {
			fmt.Fprintf(g.w, "_anon_str_%d: db %s,0\n", i, bytesAsNasm(s))
		}
	}
	if tabs.Constants.Len() > 0 {
		if !dataHeaderWritten {
			g.writeln("")
			g.writeln("segment .data")
		}
		for _, c := range tabs.Constants.Values() {
			fmt.Fprintf(g.w, "%s: dq %s\n", c.Name, c.Value.Emit())
		}
	}
	if tabs.Globals.Len() > 0 {
		g.writeln("")
		g.writeln("segment .bss")
		for _, vd := range tabs.Globals.Values() {
			fmt.Fprintf(g.w, "%s: resb %d\n", vd.Name, vd.Size)
		}
	}

	return g.w.Flush()
}

func bytesAsNasm(s string) string {
	parts := make([]string, len(s))
	for i := 0; i < len(s); i++ {
		parts[i] = strconv.Itoa(int(s[i]))
	}
	return strings.Join(parts, ",")
}

func (g *Generator) writeln(s string) {
	g.w.WriteString(s)
	g.w.WriteString("\n")
}

// buildFrame lays out a function's named locals (params first, 8 bytes
// each: every declared type is a scalar) followed by its anonymous
// allocate(N) blocks (each occupying N bytes), assigning each a positive
// offset from rbp as the running total including its own size (spec.md
// §4.5: "the running sum of variable sizes").
func (g *Generator) buildFrame(fn *ast.Fun) {
	var stack []lo.Tuple2[int, *ast.VarDef]
	offset := 0
	for _, vd := range fn.Locals {
		offset += 8
		stack = append(stack, lo.Tuple2[int, *ast.VarDef]{A: offset, B: vd})
	}
	for _, vd := range fn.Anonymous {
		offset += vd.Size
		stack = append(stack, lo.Tuple2[int, *ast.VarDef]{A: offset, B: vd})
	}

	g.frame = make(map[string]int, len(stack))
	for _, entry := range stack {
		g.frame[entry.B.Name] = entry.A
	}
	g.frameSize = offset
}

func (g *Generator) emitFunction(fn *ast.Fun) {
	g.buildFrame(fn)

	fmt.Fprintf(g.w, "; Function Definition %s\n", fn.Proto.Name)
	fmt.Fprintf(g.w, "%s:\n", fn.Proto.Name)
	g.writeln("push rbp")
	g.writeln("mov rbp, rsp")
	if g.frameSize > 0 {
		fmt.Fprintf(g.w, "sub rsp, %d\n", g.frameSize)
	}

	// Incoming arguments sit above a caller-provided rbx snapshot of rsp;
	// copy each into its local slot (spec.md §4.5 calling convention).
	for i := range fn.Proto.Params {
		offset := g.frame[fn.Locals[i].Name]
		fmt.Fprintf(g.w, "mov rax, [rbx + %d]\n", offset-8)
		fmt.Fprintf(g.w, "mov [rbp - %d], rax\n", offset)
	}

	for _, stmt := range fn.Body {
		g.emitStmt(stmt)
	}

	g.writeln(".end:")
	g.writeln("mov rsp, rbp")
	g.writeln("pop rbp")
	g.writeln("ret")
	fmt.Fprintf(g.w, "; End of Function %s\n\n", fn.Proto.Name)

	g.frame = nil
	g.frameSize = 0
}

func (g *Generator) emitStmt(s ast.Stmt) {
	switch n := s.(type) {
	case *ast.VarDef:
		g.emitVarDef(n)

	case *ast.VarSet:
		g.emitExpr(n.Value)
		g.writeln("pop rax")
		g.storeRax(n.Kind, n.Name)

	case *ast.Store:
		g.emitExpr(n.Dst)
		g.emitExpr(n.Value)
		g.writeln("pop rax")
		g.writeln("pop rdi")
		fmt.Fprintf(g.w, "mov %s [rdi], %s\n", sizeKeyword(n.Rank), sizedReg(n.Rank))

	case *ast.Print:
		g.emitExpr(n.Expr)
		g.writeln("pop rdi")
		g.writeln("call print")

	case *ast.Drop:
		g.emitExpr(n.Expr)
		g.writeln("pop rax")

	case *ast.Return:
		if n.Value != nil {
			g.emitExpr(n.Value)
			g.writeln("pop rax")
		}
		g.writeln("jmp .end")

	case *ast.If:
		g.emitIf(n)

	case *ast.While:
		g.emitWhile(n)

	case *ast.ExprStmt:
		// Only legal (per the type checker) when Value's type is none, so
		// there is never a residual value to discard here.
		g.emitExpr(n.Value)

	case *ast.Fun:
		// Functions don't nest in this grammar.
	}
}

// emitVarDef emits a declaration's initializer, if any -- used both for
// local declarations inside a function body and, via _start's
// glob_var_defs trailer, for every initialized global (spec.md §4.5
// program emission order).
func (g *Generator) emitVarDef(n *ast.VarDef) {
	if n.Init == nil {
		return
	}
	g.emitExpr(n.Init)
	g.writeln("pop rax")
	g.storeRax(n.Kind, n.Name)
}

func (g *Generator) storeRax(kind ast.IdentKind, name string) {
	if kind == ast.IdentGlobal {
		fmt.Fprintf(g.w, "mov [%s], rax\n", name)
	} else {
		fmt.Fprintf(g.w, "mov [rbp - %d], rax\n", g.frame[name])
	}
}

func (g *Generator) emitIf(n *ast.If) {
	label := labelBase(n.Tok)
	g.emitExpr(n.Cond)
	fmt.Fprintf(g.w, ".if_cmp_%s:\n", label)
	g.writeln("pop rax")
	g.writeln("cmp rax, 0")
	fmt.Fprintf(g.w, "je .if_block_end_%s\n", label)
	fmt.Fprintf(g.w, ".if_block_%s:\n", label)
	for _, stmt := range n.Body {
		g.emitStmt(stmt)
	}
	fmt.Fprintf(g.w, ".if_block_end_%s:\n", label)
}

func (g *Generator) emitWhile(n *ast.While) {
	label := labelBase(n.Tok)
	fmt.Fprintf(g.w, ".while_cmp_%s:\n", label)
	g.emitExpr(n.Cond)
	g.writeln("pop rax")
	g.writeln("cmp rax, 0")
	fmt.Fprintf(g.w, "je .while_end_%s\n", label)
	fmt.Fprintf(g.w, ".while_block_%s:\n", label)
	for _, stmt := range n.Body {
		g.emitStmt(stmt)
	}
	fmt.Fprintf(g.w, "jmp .while_cmp_%s\n", label)
	fmt.Fprintf(g.w, ".while_end_%s:\n", label)
}

// labelBase names a control-flow label from its originating token's
// location, so distinct source locations always yield distinct labels
// (spec.md §8, testable property 4).
func labelBase(tok token.Token) string {
	return fmt.Sprintf("l%d_c%d", tok.Pos.Line, tok.Pos.Col)
}

func (g *Generator) emitExpr(e ast.Expr) {
	switch n := e.(type) {
	case *ast.IntLiteral:
		fmt.Fprintf(g.w, "push %d\n", n.Value)

	case *ast.ArrayRef:
		g.emitArrayRef(n)

	case *ast.IdentRef:
		g.emitIdentRef(n)

	case *ast.Binary:
		g.emitExpr(n.Lhs)
		g.emitExpr(n.Rhs)
		g.emitBinaryOp(n.Op)

	case *ast.AddressOf:
		g.emitAddressOf(n)

	case *ast.Load:
		g.emitExpr(n.Ptr)
		g.writeln("xor rax, rax")
		g.writeln("pop rdi")
		fmt.Fprintf(g.w, "mov %s, %s [rdi]\n", sizedReg(n.Rank), sizeKeyword(n.Rank))
		g.writeln("push rax")

	case *ast.FunCall:
		g.emitFunCall(n)

	case *ast.Syscall:
		g.emitSyscall(n)
	}
}

// emitArrayRef pushes the address of a registered string literal's .data
// payload or an allocate(N) block's backing storage. A local allocate
// block lives in the current frame (lea from rbp); a global one -- either
// a top-level allocate or a string literal, both reside in a fixed
// segment -- is referenced by its bare symbol name.
func (g *Generator) emitArrayRef(n *ast.ArrayRef) {
	if n.Kind == ast.ArrayAllocate {
		if offset, ok := g.frame[n.Name]; ok {
			fmt.Fprintf(g.w, "lea rax, [rbp - %d]\n", offset)
			g.writeln("push rax")
			return
		}
	}
	fmt.Fprintf(g.w, "mov rax, %s\n", n.Name)
	g.writeln("push rax")
}

func (g *Generator) emitIdentRef(n *ast.IdentRef) {
	switch n.Kind {
	case ast.IdentLocal:
		fmt.Fprintf(g.w, "mov rax, [rbp - %d]\n", g.frame[n.Name])
	default: // IdentGlobal, IdentConstant
		fmt.Fprintf(g.w, "mov rax, [%s]\n", n.Name)
	}
	g.writeln("push rax")
}

func (g *Generator) emitAddressOf(n *ast.AddressOf) {
	if n.Ident.Kind == ast.IdentLocal {
		fmt.Fprintf(g.w, "lea rax, [rbp - %d]\n", g.frame[n.Ident.Name])
	} else {
		fmt.Fprintf(g.w, "mov rax, %s\n", n.Ident.Name)
	}
	g.writeln("push rax")
}

// emitBinaryOp lowers a binary operator per spec.md §4.5: arithmetic ops
// pop rhs then lhs (rhs was pushed last) and combine directly; comparisons
// use the canonical zero/cmov sequence so the result is always a 0/1
// integer with no branching.
func (g *Generator) emitBinaryOp(op token.Operator) {
	g.writeln("pop rdi")
	g.writeln("pop rax")
	switch op {
	case token.OpPlus:
		g.writeln("add rax, rdi")
		g.writeln("push rax")
	case token.OpMinus:
		g.writeln("sub rax, rdi")
		g.writeln("push rax")
	case token.OpMultiply:
		g.writeln("imul rax, rdi")
		g.writeln("push rax")
	case token.OpDivide:
		g.writeln("cqo")
		g.writeln("idiv rdi")
		g.writeln("push rax")
	case token.OpModulo:
		g.writeln("cqo")
		g.writeln("div rdi")
		g.writeln("push rdx")
	default:
		cc, ok := comparisonSuffix(op)
		if !ok {
			return
		}
		// rax/rdi were already popped above; restore the canonical
		// sequence's compare-then-conditional-move.
		g.writeln("xor rcx, rcx")
		g.writeln("mov rbx, 1")
		g.writeln("cmp rax, rdi")
		fmt.Fprintf(g.w, "cmov%s rcx, rbx\n", cc)
		g.writeln("push rcx")
	}
}

func comparisonSuffix(op token.Operator) (string, bool) {
	switch op {
	case token.OpEqual:
		return "e", true
	case token.OpNotEqual:
		return "ne", true
	case token.OpLess:
		return "l", true
	case token.OpLessEqual:
		return "le", true
	case token.OpGreater:
		return "g", true
	case token.OpGreaterEqual:
		return "ge", true
	}
	return "", false
}

// emitFunCall pushes arguments in reverse declaration order so the first
// argument ends up nearest the bottom of the pushed region -- i.e. at
// offset 0 from the rbx snapshot the callee will take (spec.md §4.5).
func (g *Generator) emitFunCall(n *ast.FunCall) {
	for i := len(n.Args) - 1; i >= 0; i-- {
		g.emitExpr(n.Args[i])
	}
	g.writeln("mov rbx, rsp")
	fmt.Fprintf(g.w, "call %s\n", n.Target.Name)
	if len(n.Args) > 0 {
		fmt.Fprintf(g.w, "add rsp, %d\n", len(n.Args)*8)
	}
	if n.Typ != token.TypeNone {
		g.writeln("push rax")
	}
}

// emitSyscall marshals arguments into the System V syscall registers. Args
// are pushed left to right, then popped in reverse so each argument lands
// in its own register regardless of push order.
func (g *Generator) emitSyscall(n *ast.Syscall) {
	for _, arg := range n.Args {
		g.emitExpr(arg)
	}
	for i := len(n.Args) - 1; i >= 0; i-- {
		fmt.Fprintf(g.w, "pop %s\n", abiReg(i))
	}
	g.emitExpr(n.CallNum)
	g.writeln("pop rax")
	g.writeln("syscall")
	g.writeln("push rax")
}

func abiReg(i int) string {
	switch i {
	case 0:
		return "rdi"
	case 1:
		return "rsi"
	case 2:
		return "rdx"
	case 3:
		return "r10"
	case 4:
		return "r9"
	default:
		return "r8"
	}
}

func sizeKeyword(rank int) string {
	switch rank {
	case 0:
		return "BYTE"
	case 1:
		return "WORD"
	case 2:
		return "DWORD"
	default:
		return "QWORD"
	}
}

func sizedReg(rank int) string {
	switch rank {
	case 0:
		return "al"
	case 1:
		return "ax"
	case 2:
		return "eax"
	default:
		return "rax"
	}
}
