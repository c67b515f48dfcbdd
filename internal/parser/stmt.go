package parser

import (
	"github.com/j4n1x/jlang/internal/ast"
	"github.com/j4n1x/jlang/internal/diag"
	"github.com/j4n1x/jlang/internal/token"
)

// parseStmt parses one statement inside a function body.
func (p *Parser) parseStmt() (ast.Stmt, error) {
	tok := p.peek()

	if tok.Kind == token.KindKeyword {
		switch tok.Keyword {
		case token.KwDefine:
			return p.parseVarDef(ast.IdentLocal)
		case token.KwIf:
			return p.parseIf()
		case token.KwWhile:
			return p.parseWhile()
		case token.KwReturn:
			return p.parseReturn()
		}
		return nil, unexpected(tok, "a statement")
	}

	if tok.Kind == token.KindIdentifier && p.peekAt(1).Kind == token.KindKeyword && p.peekAt(1).Keyword == token.KwIs {
		return p.parseVarSet()
	}

	if tok.Kind == token.KindIntrinsic {
		switch tok.Intrinsic {
		case token.IntrPrint:
			return p.parsePrint(tok)
		case token.IntrDrop:
			return p.parseDrop(tok)
		default:
			if rank, ok := tok.Intrinsic.StoreSize(); ok {
				return p.parseStore(tok, rank)
			}
		}
	}

	// Fall through to an expression used as a statement, e.g. a call to a
	// function that yields none. Whether that's actually legal here is the
	// type checker's call, not the parser's (spec.md §4.4).
	value, err := p.parseExpr()
	if err != nil {
		return nil, err
	}
	return &ast.ExprStmt{Tok: tok, Value: value}, nil
}

func (p *Parser) parseVarSet() (ast.Stmt, error) {
	nameTok, err := p.expectIdentifier()
	if err != nil {
		return nil, err
	}
	kind, typ, ok := p.tabs.Resolve(nameTok.StringValue)
	if !ok || (kind != ast.IdentLocal && kind != ast.IdentGlobal) {
		return nil, diag.Errorf(diag.StageParse, nameTok.Pos, "%q is not an assignable variable", nameTok.StringValue)
	}
	if _, err := p.expectKeyword(token.KwIs); err != nil {
		return nil, err
	}
	value, err := p.parseExpr()
	if err != nil {
		return nil, err
	}
	return &ast.VarSet{Tok: nameTok, Name: nameTok.StringValue, Kind: kind, Typ: typ, Value: value}, nil
}

// parseVarDef parses `define NAME as TYPE [is expr]`. kind distinguishes a
// global (top-level) from a local (inside a function body) declaration; the
// redefinition check and the table it registers into both follow kind.
func (p *Parser) parseVarDef(kind ast.IdentKind) (ast.Stmt, error) {
	if _, err := p.expectKeyword(token.KwDefine); err != nil {
		return nil, err
	}
	nameTok, err := p.expectIdentifier()
	if err != nil {
		return nil, err
	}

	var redefined bool
	if kind == ast.IdentGlobal {
		redefined = p.tabs.IsDefinedAtTopLevel(nameTok.StringValue)
	} else {
		redefined = p.tabs.IsDefinedInScope(nameTok.StringValue)
	}
	if redefined {
		return nil, diag.Errorf(diag.StageParse, nameTok.Pos, "redefinition of %q", nameTok.StringValue)
	}

	if _, err := p.expectKeyword(token.KwAs); err != nil {
		return nil, err
	}
	typTok, err := p.expectTypeName()
	if err != nil {
		return nil, err
	}

	vd := &ast.VarDef{Tok: nameTok, Name: nameTok.StringValue, Kind: kind, Typ: typTok.Type, Size: typTok.Type.Size()}

	if tok := p.peek(); tok.Kind == token.KindKeyword && tok.Keyword == token.KwIs {
		p.advance()
		if a := p.peek(); a.Kind == token.KindKeyword && a.Keyword == token.KwAllocate {
			init, err := p.parseAllocateInit(kind)
			if err != nil {
				return nil, err
			}
			// The allocate(N) byte count belongs solely to its own anonymous
			// backing VarDef (registered inside parseAllocateInit); vd itself
			// still just holds a pointer-typed scalar, so its Size stays at
			// the scalar width set above.
			vd.Init = init
		} else {
			init, err := p.parseExpr()
			if err != nil {
				return nil, err
			}
			vd.Init = init
		}
	}

	// Register after the initializer is parsed: an initializer may not refer
	// to the variable it's initializing (no self-reference).
	if kind == ast.IdentGlobal {
		p.tabs.Globals.Set(vd.Name, vd)
	} else {
		p.tabs.ScopeVars.Set(vd.Name, vd)
		p.locals = append(p.locals, vd)
	}
	return vd, nil
}

// parseAllocateInit parses `allocate(N)`, N a constant-evaluated byte count
// with no symbol part. A global allocate reserves its own .bss block, so the
// generated backing VarDef is registered as a global; a local allocate
// instead joins AnonymousScopeVars so the code generator reserves it a frame
// slot alongside the function's named locals.
func (p *Parser) parseAllocateInit(kind ast.IdentKind) (ast.Expr, error) {
	tok, err := p.expectKeyword(token.KwAllocate)
	if err != nil {
		return nil, err
	}
	if _, err := p.expectParenOpen(); err != nil {
		return nil, err
	}
	n, err := p.evalConstExpr()
	if err != nil {
		return nil, err
	}
	if n.Symbol != "" {
		return nil, diag.Errorf(diag.StageParse, tok.Pos, "allocate size must be a constant integer")
	}
	if _, err := p.expectParenClose(); err != nil {
		return nil, err
	}
	name := p.tabs.NextAnonymousName()
	block := &ast.VarDef{Tok: tok, Name: name, Kind: kind, Typ: token.TypeNone, Size: int(n.IntPart)}
	if kind == ast.IdentGlobal {
		p.tabs.Globals.Set(name, block)
	} else {
		p.tabs.AnonymousScopeVars = append(p.tabs.AnonymousScopeVars, block)
	}
	return &ast.ArrayRef{Tok: tok, Kind: ast.ArrayAllocate, Name: name, Size: n.IntPart, Typ: token.TypePointer}, nil
}

func (p *Parser) parsePrint(tok token.Token) (ast.Stmt, error) {
	p.advance()
	if _, err := p.expectParenOpen(); err != nil {
		return nil, err
	}
	e, err := p.parseExpr()
	if err != nil {
		return nil, err
	}
	if _, err := p.expectParenClose(); err != nil {
		return nil, err
	}
	return &ast.Print{Tok: tok, Expr: e}, nil
}

// parseDrop parses `drop expr` -- unlike print, it takes no parentheses
// (spec.md §4.2 grammar: `'drop' expr`).
func (p *Parser) parseDrop(tok token.Token) (ast.Stmt, error) {
	p.advance()
	e, err := p.parseExpr()
	if err != nil {
		return nil, err
	}
	return &ast.Drop{Tok: tok, Expr: e}, nil
}

func (p *Parser) parseStore(tok token.Token, rank int) (ast.Stmt, error) {
	p.advance()
	if _, err := p.expectParenOpen(); err != nil {
		return nil, err
	}
	dst, err := p.parseExpr()
	if err != nil {
		return nil, err
	}
	if _, err := p.expectArgDelimiter(); err != nil {
		return nil, err
	}
	value, err := p.parseExpr()
	if err != nil {
		return nil, err
	}
	if _, err := p.expectParenClose(); err != nil {
		return nil, err
	}
	return &ast.Store{Tok: tok, Rank: rank, Dst: dst, Value: value}, nil
}

func (p *Parser) parseIf() (ast.Stmt, error) {
	tok, err := p.expectKeyword(token.KwIf)
	if err != nil {
		return nil, err
	}
	cond, err := p.parseExpr()
	if err != nil {
		return nil, err
	}
	if _, err := p.expectKeyword(token.KwDo); err != nil {
		return nil, err
	}
	body, err := p.parseBlock()
	if err != nil {
		return nil, err
	}
	if _, err := p.expectKeyword(token.KwDone); err != nil {
		return nil, err
	}
	return &ast.If{Tok: tok, Cond: cond, Body: body}, nil
}

func (p *Parser) parseWhile() (ast.Stmt, error) {
	tok, err := p.expectKeyword(token.KwWhile)
	if err != nil {
		return nil, err
	}
	cond, err := p.parseExpr()
	if err != nil {
		return nil, err
	}
	if _, err := p.expectKeyword(token.KwDo); err != nil {
		return nil, err
	}
	body, err := p.parseBlock()
	if err != nil {
		return nil, err
	}
	if _, err := p.expectKeyword(token.KwDone); err != nil {
		return nil, err
	}
	return &ast.While{Tok: tok, Cond: cond, Body: body}, nil
}

// parseReturn parses `return (none | expr)` (spec.md §4.2 grammar): the bare
// type-name token `none` marks a void return, distinct from an expression
// that happens to evaluate to zero.
func (p *Parser) parseReturn() (ast.Stmt, error) {
	tok, err := p.expectKeyword(token.KwReturn)
	if err != nil {
		return nil, err
	}
	if next := p.peek(); next.Kind == token.KindTypeName && next.Type == token.TypeNone {
		p.advance()
		return &ast.Return{Tok: tok}, nil
	}
	value, err := p.parseExpr()
	if err != nil {
		return nil, err
	}
	return &ast.Return{Tok: tok, Value: value}, nil
}
