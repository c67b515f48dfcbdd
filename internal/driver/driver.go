// Package driver orchestrates one compilation end to end: lex, parse,
// type-check, generate assembly, then hand the result to the external
// assembler and linker. It owns the only subprocess and file-output steps
// in the compiler (spec.md §5: "the only external resources are... scoped
// lifetime, released on every exit path").
package driver

import (
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"github.com/samber/lo"

	"github.com/j4n1x/jlang/internal/ast"
	"github.com/j4n1x/jlang/internal/codegen"
	"github.com/j4n1x/jlang/internal/diag"
	"github.com/j4n1x/jlang/internal/parser"
	"github.com/j4n1x/jlang/internal/token"
	"github.com/j4n1x/jlang/internal/types"
)

// Options controls one invocation of Run; it mirrors the command-line
// surface in spec.md §6.
type Options struct {
	SourcePath    string
	OutputDir     string // if empty, artifacts land alongside SourcePath
	DumpAST       bool
	DumpTokens    bool
	DumpFunctions bool
	DumpGlobals   bool
	Verbose       bool
}

// Run compiles opts.SourcePath to a linked executable, writing dump output
// and diagnostics to out/errOut as it goes. A non-nil error means the whole
// compilation failed at some stage; the caller should exit non-zero
// (spec.md §8 invariant 1: "for every invalid program at any stage,
// compilation exits non-zero").
func Run(opts Options, out, errOut io.Writer) error {
	logger := diag.NewLogger(errOut)

	if opts.DumpTokens {
		toks, err := parser.ParseTokens(opts.SourcePath)
		if err != nil {
			return err
		}
		fmt.Fprintln(out, "--------------------------------")
		fmt.Fprintln(out, "Tokens:")
		for _, tok := range toks {
			fmt.Fprintf(out, "%s %s %q\n", tok.Pos, tok.Kind, tok.Text)
		}
	}

	prog, tabs, err := parser.Parse(opts.SourcePath)
	if err != nil {
		return err
	}

	if diags := types.Check(prog, tabs); len(diags) > 0 {
		for _, d := range diags {
			fmt.Fprintln(errOut, d.Error())
		}
		return fmt.Errorf("type checking failed with %d diagnostic(s)", len(diags))
	}

	if opts.DumpFunctions {
		fmt.Fprintln(out, "--------------------------------")
		fmt.Fprintln(out, "Function table:")
		names := lo.Map(tabs.Prototypes.Values(), func(proto *ast.FunProto, _ int) string { return proto.Name })
		for _, name := range names {
			fmt.Fprintln(out, name)
		}
	}

	if opts.DumpGlobals {
		fmt.Fprintln(out, "--------------------------------")
		fmt.Fprintln(out, "Global variables:")
		initialized := lo.Filter(tabs.Globals.Values(), func(vd *ast.VarDef, _ int) bool { return vd.Init != nil })
		names := lo.Map(tabs.Globals.Values(), func(vd *ast.VarDef, _ int) string { return vd.Name })
		for _, name := range names {
			fmt.Fprintln(out, name)
		}
		fmt.Fprintf(out, "(%d with an initializer)\n", len(initialized))
	}

	if opts.DumpAST {
		fmt.Fprintln(out, "--------------------------------")
		fmt.Fprintln(out, "Generated AST:")
		ast.Dump(out, prog)
	}

	if !tabs.Prototypes.Has("main") {
		pos := token.Pos{File: opts.SourcePath}
		if len(prog) > 0 {
			pos = prog[0].Token().Pos
		}
		return diag.Errorf(diag.StageCodegen, pos, "no main function found")
	}

	asmPath := outputPath(opts, ".asm")
	asmFile, err := os.Create(asmPath)
	if err != nil {
		return err
	}
	genErr := codegen.Generate(asmFile, prog, tabs)
	closeErr := asmFile.Close()
	if genErr != nil {
		return genErr
	}
	if closeErr != nil {
		return closeErr
	}
	fmt.Fprintf(out, "Program successfully generated to %s\n", asmPath)

	objPath := outputPath(opts, ".o")
	exePath := outputPath(opts, ".exe")

	if _, err := runTool(logger, opts.Verbose, "nasm", "-f", "elf64", "-g", asmPath); err != nil {
		return fmt.Errorf("assembler failed: %w", err)
	}
	fmt.Fprintln(out, "Generated object file")

	if _, err := runTool(logger, opts.Verbose, "ld", "-m", "elf_x86_64", "-o", exePath, objPath); err != nil {
		return fmt.Errorf("linker failed: %w", err)
	}
	fmt.Fprintln(out, "Generated executable")

	return nil
}

// runTool invokes an external tool and captures its combined output,
// tracing the invocation when verbose (grounded on the teacher's
// runCommand: same CombinedOutput-and-wrap-stderr shape, generalized to
// any assembler/linker pair rather than one fixed compiler).
func runTool(logger *diag.Logger, verbose bool, name string, arg ...string) (string, error) {
	if verbose {
		logger.Tracef("running %s", strings.Join(append([]string{name}, arg...), " "))
	}
	cmd := exec.Command(name, arg...)
	output, err := cmd.CombinedOutput()
	if err != nil {
		if len(output) > 0 {
			return "", errors.New(string(output))
		}
		return "", err
	}
	return string(output), nil
}

// outputPath derives one artifact's path from opts.SourcePath: the same
// base name with its ".j" suffix swapped for ext, joined with opts.OutputDir
// when set (spec §A.1: "-o, --output output directory (default: alongside
// the source file)") or left in the source's own directory otherwise.
func outputPath(opts Options, ext string) string {
	name := replaceExt(filepath.Base(opts.SourcePath), ext)
	if opts.OutputDir == "" {
		return filepath.Join(filepath.Dir(opts.SourcePath), name)
	}
	return filepath.Join(opts.OutputDir, name)
}

// replaceExt swaps path's ".j" suffix for ext, or appends ext if path
// doesn't end in ".j".
func replaceExt(path, ext string) string {
	if strings.HasSuffix(path, ".j") {
		return strings.TrimSuffix(path, ".j") + ext
	}
	return path + ext
}
