package parser

import (
	"path/filepath"

	"github.com/j4n1x/jlang/internal/diag"
	"github.com/j4n1x/jlang/internal/lexer"
	"github.com/j4n1x/jlang/internal/token"
)

// loadTokens lexes path and recursively splices in the token stream of every
// `import "other.j"` it contains, rejecting cycles by canonical absolute
// path (spec.md §4.2: "Detect cycles with a set of already-inlined paths
// keyed by canonical absolute path"). stack holds the chain of files
// currently being expanded, not every file ever visited, so the same file
// may legally be imported from two unrelated places (a diamond, not a
// cycle).
func loadTokens(path string, stack map[string]bool) ([]token.Token, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, err
	}
	if stack[abs] {
		return nil, diag.Errorf(diag.StageParse, token.Pos{File: path}, "cyclic import of %q", path)
	}
	stack[abs] = true
	defer delete(stack, abs)

	toks, err := lexer.Lex(path)
	if err != nil {
		return nil, err
	}
	return expandImports(toks, filepath.Dir(path), stack)
}

func expandImports(toks []token.Token, dir string, stack map[string]bool) ([]token.Token, error) {
	var out []token.Token
	for i := 0; i < len(toks); {
		t := toks[i]
		if t.Kind == token.KindKeyword && t.Keyword == token.KwImport {
			if i+1 >= len(toks) || toks[i+1].Kind != token.KindStringLiteral {
				return nil, diag.Errorf(diag.StageParse, t.Pos, "expected string literal after 'import'")
			}
			importPath := toks[i+1].StringValue
			if !filepath.IsAbs(importPath) {
				importPath = filepath.Join(dir, importPath)
			}
			spliced, err := loadTokens(importPath, stack)
			if err != nil {
				return nil, err
			}
			if n := len(spliced); n > 0 && spliced[n-1].Kind == token.KindEndOfExpression {
				spliced = spliced[:n-1]
			}
			out = append(out, spliced...)
			i += 2
			continue
		}
		out = append(out, t)
		i++
	}
	return out, nil
}
