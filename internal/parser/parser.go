// Package parser implements jlang's recursive-descent parser: it turns a
// token stream into a typed AST while resolving identifiers and managing
// lexical scope, and evaluates `constant` initializers at parse time.
package parser

import (
	"github.com/j4n1x/jlang/internal/ast"
	"github.com/j4n1x/jlang/internal/diag"
	"github.com/j4n1x/jlang/internal/symtab"
	"github.com/j4n1x/jlang/internal/token"
)

// Parser holds the mutable state of one parse: the token cursor, the
// symbol tables it populates as it goes, and the locals accumulated for
// whichever function body is currently being parsed.
type Parser struct {
	toks   []token.Token
	pos    int
	tabs   *symtab.Tables
	locals []*ast.VarDef
}

// Parse runs the whole front end: import expansion, then recursive-descent
// parsing. It returns the top-level AST (functions and global definitions,
// in source order) and the populated symbol tables.
func Parse(path string) ([]ast.Stmt, *symtab.Tables, error) {
	toks, err := loadTokens(path, map[string]bool{})
	if err != nil {
		return nil, nil, err
	}
	p := &Parser{toks: toks, tabs: symtab.NewTables()}
	prog, err := p.parseProgram()
	if err != nil {
		return nil, nil, err
	}
	return prog, p.tabs, nil
}

// ParseTokens exposes the post-import-expansion token stream, for --dump-tokens.
func ParseTokens(path string) ([]token.Token, error) {
	return loadTokens(path, map[string]bool{})
}

func (p *Parser) peek() token.Token {
	return p.toks[p.pos]
}

func (p *Parser) peekAt(n int) token.Token {
	i := p.pos + n
	if i >= len(p.toks) {
		return p.toks[len(p.toks)-1] // the trailing end-of-expression token
	}
	return p.toks[i]
}

func (p *Parser) advance() token.Token {
	t := p.toks[p.pos]
	if p.pos < len(p.toks)-1 {
		p.pos++
	}
	return t
}

func (p *Parser) atEnd() bool {
	return p.peek().Kind == token.KindEndOfExpression
}

func unexpected(tok token.Token, expected string) error {
	return diag.Errorf(diag.StageParse, tok.Pos, "expected %s, got %s %q", expected, tok.Kind, tok.Text)
}

func (p *Parser) expectKeyword(kw token.Keyword) (token.Token, error) {
	tok := p.peek()
	if tok.Kind != token.KindKeyword || tok.Keyword != kw {
		return tok, unexpected(tok, "keyword '"+kw.String()+"'")
	}
	return p.advance(), nil
}

func (p *Parser) expectIdentifier() (token.Token, error) {
	tok := p.peek()
	if tok.Kind != token.KindIdentifier {
		return tok, unexpected(tok, "identifier")
	}
	return p.advance(), nil
}

func (p *Parser) expectTypeName() (token.Token, error) {
	tok := p.peek()
	if tok.Kind != token.KindTypeName {
		return tok, unexpected(tok, "type name")
	}
	return p.advance(), nil
}

func (p *Parser) expectParenOpen() (token.Token, error) {
	tok := p.peek()
	if tok.Kind != token.KindParenOpen {
		return tok, unexpected(tok, "'('")
	}
	return p.advance(), nil
}

func (p *Parser) expectParenClose() (token.Token, error) {
	tok := p.peek()
	if tok.Kind != token.KindParenClose {
		return tok, unexpected(tok, "')'")
	}
	return p.advance(), nil
}

func (p *Parser) expectArgDelimiter() (token.Token, error) {
	tok := p.peek()
	if tok.Kind != token.KindArgDelimiter {
		return tok, unexpected(tok, "','")
	}
	return p.advance(), nil
}

func (p *Parser) parseProgram() ([]ast.Stmt, error) {
	var prog []ast.Stmt
	for !p.atEnd() {
		stmt, err := p.parseTopLevel()
		if err != nil {
			return nil, err
		}
		if stmt != nil {
			prog = append(prog, stmt)
		}
	}
	return prog, nil
}

func (p *Parser) parseTopLevel() (ast.Stmt, error) {
	tok := p.peek()
	if tok.Kind != token.KindKeyword {
		return nil, unexpected(tok, "'function', 'define', or 'constant'")
	}
	switch tok.Keyword {
	case token.KwFunction:
		return p.parseFunctionDecl()
	case token.KwDefine:
		return p.parseVarDef(ast.IdentGlobal)
	case token.KwConstant:
		return nil, p.parseConstantDecl()
	default:
		return nil, unexpected(tok, "'function', 'define', or 'constant'")
	}
}

func (p *Parser) parseFunctionDecl() (ast.Stmt, error) {
	funTok, err := p.expectKeyword(token.KwFunction)
	if err != nil {
		return nil, err
	}
	nameTok, err := p.expectIdentifier()
	if err != nil {
		return nil, err
	}
	if p.tabs.IsDefinedAtTopLevel(nameTok.StringValue) {
		return nil, diag.Errorf(diag.StageParse, nameTok.Pos, "redefinition of %q", nameTok.StringValue)
	}
	// Reset the per-function tables before parsing the parameter list, since
	// parameters are locals and must be checked/registered against a clean
	// scope rather than the previous function's leftovers.
	p.tabs.EnterFunction()
	p.locals = nil

	if _, err := p.expectParenOpen(); err != nil {
		return nil, err
	}
	params, err := p.parseParams()
	if err != nil {
		return nil, err
	}
	if _, err := p.expectParenClose(); err != nil {
		return nil, err
	}
	if _, err := p.expectKeyword(token.KwYields); err != nil {
		return nil, err
	}
	retTok, err := p.expectTypeName()
	if err != nil {
		return nil, err
	}
	if _, err := p.expectKeyword(token.KwIs); err != nil {
		return nil, err
	}

	proto := &ast.FunProto{Tok: nameTok, Name: nameTok.StringValue, Params: params, ReturnType: retTok.Type}
	// Inserted before the body is parsed so that recursive calls resolve
	// (spec.md §4.2: "inserts it into prototypes before the body so
	// recursion is allowed").
	p.tabs.Prototypes.Set(proto.Name, proto)

	body, err := p.parseBlock()
	if err != nil {
		return nil, err
	}
	if _, err := p.expectKeyword(token.KwDone); err != nil {
		return nil, err
	}

	fn := &ast.Fun{Tok: funTok, Proto: proto, Body: body, Locals: p.locals, Anonymous: p.tabs.AnonymousScopeVars}
	p.locals = nil
	return fn, nil
}

func (p *Parser) parseParams() ([]ast.Param, error) {
	var params []ast.Param
	if p.peek().Kind == token.KindParenClose {
		return params, nil
	}
	for {
		nameTok, err := p.expectIdentifier()
		if err != nil {
			return nil, err
		}
		if p.tabs.IsDefinedInScope(nameTok.StringValue) {
			return nil, diag.Errorf(diag.StageParse, nameTok.Pos, "redefinition of parameter %q", nameTok.StringValue)
		}
		if _, err := p.expectKeyword(token.KwAs); err != nil {
			return nil, err
		}
		typTok, err := p.expectTypeName()
		if err != nil {
			return nil, err
		}
		params = append(params, ast.Param{Name: nameTok.StringValue, Typ: typTok.Type})
		// Register immediately, both so a later parameter can be checked
		// against it and so the body can reference it; also occupies a
		// frame slot like any other local (spec.md §4.5).
		vd := &ast.VarDef{Tok: nameTok, Name: nameTok.StringValue, Kind: ast.IdentLocal, Typ: typTok.Type, Size: typTok.Type.Size()}
		p.tabs.ScopeVars.Set(nameTok.StringValue, vd)
		p.locals = append(p.locals, vd)
		if p.peek().Kind == token.KindArgDelimiter {
			p.advance()
			continue
		}
		break
	}
	return params, nil
}

// parseBlock parses statements until the next token is 'done'.
func (p *Parser) parseBlock() ([]ast.Stmt, error) {
	var body []ast.Stmt
	for {
		tok := p.peek()
		if tok.Kind == token.KindKeyword && tok.Keyword == token.KwDone {
			return body, nil
		}
		if p.atEnd() {
			return nil, unexpected(tok, "'done'")
		}
		stmt, err := p.parseStmt()
		if err != nil {
			return nil, err
		}
		body = append(body, stmt)
	}
}
