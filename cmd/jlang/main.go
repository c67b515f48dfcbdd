// Command jlang compiles a single J source file to a static ELF64
// executable: lex, parse, type-check, generate NASM, assemble, link.
package main

import (
	"fmt"
	"os"

	"github.com/j4n1x/jlang/internal/driver"
	"github.com/spf13/cobra"
)

var command = &cobra.Command{
	Use:  "jlang source.j",
	Args: cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		dumpAST, _ := cmd.PersistentFlags().GetBool("dump-ast")
		dumpTokens, _ := cmd.PersistentFlags().GetBool("dump-tokens")
		dumpFunctions, _ := cmd.PersistentFlags().GetBool("dump-functions")
		dumpGlobals, _ := cmd.PersistentFlags().GetBool("dump-globals")
		verbose, _ := cmd.PersistentFlags().GetBool("verbose")
		output, _ := cmd.PersistentFlags().GetString("output")

		opts := driver.Options{
			SourcePath:    args[0],
			OutputDir:     output,
			DumpAST:       dumpAST,
			DumpTokens:    dumpTokens,
			DumpFunctions: dumpFunctions,
			DumpGlobals:   dumpGlobals,
			Verbose:       verbose,
		}
		if err := driver.Run(opts, os.Stdout, os.Stderr); err != nil {
			_, _ = fmt.Fprintln(os.Stderr, err)
			os.Exit(1)
		}
	},
}

func init() {
	command.PersistentFlags().Bool("dump-ast", false, "print the parsed AST before code generation")
	command.PersistentFlags().Bool("dump-tokens", false, "print the token stream before parsing")
	command.PersistentFlags().Bool("dump-functions", false, "print the function table")
	command.PersistentFlags().Bool("dump-globals", false, "print the global variable table")
	command.PersistentFlags().BoolP("verbose", "v", false, "trace external tool invocations")
	command.PersistentFlags().StringP("output", "o", "", "output directory for generated files (default: alongside the source file)")
}

func main() {
	if err := command.Execute(); err != nil {
		_, _ = fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
