package codegen

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/j4n1x/jlang/internal/parser"
)

func generateSource(t *testing.T, src string) string {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "t.j")
	if err := os.WriteFile(path, []byte(src), 0644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	prog, tabs, err := parser.Parse(path)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	var buf bytes.Buffer
	if err := Generate(&buf, prog, tabs); err != nil {
		t.Fatalf("Generate: %v", err)
	}
	return buf.String()
}

func requireContains(t *testing.T, asm, want string) {
	t.Helper()
	if !strings.Contains(asm, want) {
		t.Errorf("output missing %q\n--- full output ---\n%s", want, asm)
	}
}

func TestGenerate_ProgramEmissionOrder(t *testing.T) {
	asm := generateSource(t, `function main ( ) yields integer is return 0 done`)
	wantOrder := []string{"BITS 64", "segment .text", "print:", "main:", "global _start", "_start:", "glob_var_defs:", "call main", "syscall"}
	// Each marker is searched for after the previous one, since some (e.g.
	// "syscall") also occur inside the fixed print helper.
	last := 0
	for _, w := range wantOrder {
		if !strings.Contains(asm, w) {
			t.Fatalf("output missing %q", w)
		}
		idx := strings.Index(asm[last:], w)
		if idx < 0 {
			t.Fatalf("%q appears out of order", w)
		}
		last += idx + len(w)
	}
}

func TestGenerate_MissingMainStillEmitsTrailer(t *testing.T) {
	asm := generateSource(t, `function f ( ) yields none is done`)
	requireContains(t, asm, "call main")
}

func TestGenerate_ArithmeticPrecedence(t *testing.T) {
	asm := generateSource(t, `
function main ( ) yields integer is
  print ( 2 plus 3 multiply 4 )
  return 0
done`)
	requireContains(t, asm, "push 2")
	requireContains(t, asm, "push 3")
	requireContains(t, asm, "push 4")
	requireContains(t, asm, "imul rax, rdi")
	requireContains(t, asm, "add rax, rdi")
	requireContains(t, asm, "call print")
}

func TestGenerate_ComparisonUsesCanonicalCmovSequence(t *testing.T) {
	asm := generateSource(t, `
function main ( ) yields none is
  if 1 less-equal 2 do
  done
done`)
	requireContains(t, asm, "xor rcx, rcx")
	requireContains(t, asm, "mov rbx, 1")
	requireContains(t, asm, "cmp rax, rdi")
	requireContains(t, asm, "cmovle rcx, rbx")
}

func TestGenerate_DivideAndModulo(t *testing.T) {
	asm := generateSource(t, `
function main ( ) yields none is
  drop 7 divide 2
  drop 7 modulo 2
done`)
	requireContains(t, asm, "cqo")
	requireContains(t, asm, "idiv rdi")
	requireContains(t, asm, "push rax")
	requireContains(t, asm, "div rdi")
	requireContains(t, asm, "push rdx")
}

func TestGenerate_IfWhileLabelsUseLineColumn(t *testing.T) {
	asm := generateSource(t, `
function main ( ) yields none is
  while 1 less 2 do
    if 1 equal 1 do
    done
  done
done`)
	requireContains(t, asm, ".while_cmp_l3_c3:")
	requireContains(t, asm, ".while_end_l3_c3:")
	requireContains(t, asm, ".if_cmp_l4_c5:")
	requireContains(t, asm, ".if_block_end_l4_c5:")
}

func TestGenerate_FunctionCallConvention(t *testing.T) {
	asm := generateSource(t, `
function add ( a as integer , b as integer ) yields integer is
  return a plus b
done
function main ( ) yields integer is
  return add ( 20 , 22 )
done`)
	requireContains(t, asm, "mov rbx, rsp")
	requireContains(t, asm, "call add")
	requireContains(t, asm, "add rsp, 16")
	requireContains(t, asm, "mov rax, [rbx + 0]")
	requireContains(t, asm, "mov rax, [rbx + 8]")
	requireContains(t, asm, "push rax")
	requireContains(t, asm, ".end:")
	requireContains(t, asm, "jmp .end")
}

func TestGenerate_VoidCallDoesNotPushReturnValue(t *testing.T) {
	asm := generateSource(t, `
function noop ( ) yields none is
done
function main ( ) yields none is
  noop ( )
done`)
	idx := strings.Index(asm, "call noop")
	if idx < 0 {
		t.Fatalf("call noop not found")
	}
	after := asm[idx:]
	nl := strings.Index(after, "\n")
	if nl >= 0 {
		after = after[nl+1:]
	}
	if strings.HasPrefix(strings.TrimSpace(after), "push rax") {
		t.Errorf("void call pushed a return value:\n%s", after)
	}
}

func TestGenerate_StoreAndLoadUseSizedOperands(t *testing.T) {
	asm := generateSource(t, `
function main ( ) yields integer is
  define p as pointer is allocate ( 8 )
  store64 ( p , 123 )
  return load64 ( p )
done`)
	requireContains(t, asm, "lea rax, [rbp - 16]")
	requireContains(t, asm, "mov QWORD [rdi], rax")
	requireContains(t, asm, "mov rax, QWORD [rdi]")
}

func TestGenerate_Store8UsesByteOperands(t *testing.T) {
	asm := generateSource(t, `
function main ( ) yields none is
  define p as pointer is allocate ( 1 )
  store8 ( p , 65 )
done`)
	requireContains(t, asm, "mov BYTE [rdi], al")
}

func TestGenerate_GlobalsAndConstants(t *testing.T) {
	asm := generateSource(t, `
constant greeting as pointer is "hi"
define counter as integer is 7
function main ( ) yields integer is
  counter is counter plus 1
  print ( counter )
  return 0
done`)
	requireContains(t, asm, "segment .data")
	requireContains(t, asm, "_anon_str_0: db")
	requireContains(t, asm, "greeting: dq _anon_str_0")
	requireContains(t, asm, "segment .bss")
	requireContains(t, asm, "counter: resb 8")
	requireContains(t, asm, "mov [counter], rax")
	requireContains(t, asm, "mov rax, [counter]")
}

func TestGenerate_GlobalAllocateReservesBackingBlockOnceNotTwice(t *testing.T) {
	asm := generateSource(t, `
define buf as pointer is allocate ( 64 )
function main ( ) yields integer is
  return 0
done`)
	requireContains(t, asm, "buf: resb 8")
	requireContains(t, asm, "_anon_arr_0: resb 64")
	if strings.Contains(asm, "buf: resb 64") {
		t.Errorf("named global pointer must not also reserve the allocate(N) byte count; got:\n%s", asm)
	}
}

func TestGenerate_SyscallMarshalsRegistersInOrder(t *testing.T) {
	asm := generateSource(t, `
function main ( ) yields integer is
  drop syscall3 ( 1 , 1 , 2 , 3 )
  return 0
done`)
	requireContains(t, asm, "pop rdx")
	requireContains(t, asm, "pop rsi")
	requireContains(t, asm, "pop rdi")
	requireContains(t, asm, "pop rax")
	requireContains(t, asm, "syscall")
}

func TestGenerate_AddressOfLocalUsesLea(t *testing.T) {
	asm := generateSource(t, `
function main ( ) yields none is
  define x as integer is 5
  drop address-of ( x )
done`)
	requireContains(t, asm, "lea rax, [rbp - 8]")
}
