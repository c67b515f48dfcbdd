package parser

import (
	"github.com/j4n1x/jlang/internal/ast"
	"github.com/j4n1x/jlang/internal/diag"
	"github.com/j4n1x/jlang/internal/symtab"
	"github.com/j4n1x/jlang/internal/token"
)

// parseConstantDecl parses `constant IDENT as TYPE is const_expr`. Its value
// is evaluated immediately and stored in the symbol table; no AST node is
// produced (spec.md invariant 4: "no runtime initializer is emitted").
func (p *Parser) parseConstantDecl() error {
	tok, err := p.expectKeyword(token.KwConstant)
	if err != nil {
		return err
	}
	nameTok, err := p.expectIdentifier()
	if err != nil {
		return err
	}
	if p.tabs.IsDefinedAtTopLevel(nameTok.StringValue) {
		return diag.Errorf(diag.StageParse, nameTok.Pos, "redefinition of %q", nameTok.StringValue)
	}
	if _, err := p.expectKeyword(token.KwAs); err != nil {
		return err
	}
	typTok, err := p.expectTypeName()
	if err != nil {
		return err
	}
	if _, err := p.expectKeyword(token.KwIs); err != nil {
		return err
	}
	value, err := p.evalConstExpr()
	if err != nil {
		return err
	}
	p.tabs.Constants.Set(nameTok.StringValue, &symtab.Constant{
		Tok: tok, Name: nameTok.StringValue, Typ: typTok.Type, Value: value,
	})
	return nil
}

// evalConstExpr is the restricted compile-time evaluator used for constant
// initializers and allocate(N) sizes (spec.md §4.2.1). It is a separate
// recursive function over a narrow grammar -- int literals, string-literal
// symbols, constant references, and binary plus -- rather than a reuse of
// the general expression parser, so the accepted set stays small and
// auditable.
func (p *Parser) evalConstExpr() (symtab.ConstValue, error) {
	lhs, err := p.evalConstPrimary()
	if err != nil {
		return symtab.ConstValue{}, err
	}
	for {
		tok := p.peek()
		if tok.Kind != token.KindOperator || tok.Operator != token.OpPlus {
			break
		}
		p.advance()
		rhs, err := p.evalConstPrimary()
		if err != nil {
			return symtab.ConstValue{}, err
		}
		if lhs.Symbol != "" && rhs.Symbol != "" {
			return symtab.ConstValue{}, diag.Errorf(diag.StageParse, tok.Pos, "cannot add two symbols in a constant expression")
		}
		lhs = lhs.Add(rhs)
	}
	return lhs, nil
}

func (p *Parser) evalConstPrimary() (symtab.ConstValue, error) {
	tok := p.peek()
	switch {
	case tok.Kind == token.KindIntLiteral:
		p.advance()
		return symtab.ConstValue{IntPart: tok.IntValue}, nil
	case tok.Kind == token.KindStringLiteral:
		p.advance()
		name := p.tabs.RegisterString(tok.StringValue)
		return symtab.ConstValue{Symbol: name}, nil
	case tok.Kind == token.KindIdentifier:
		p.advance()
		kind, _, ok := p.tabs.Resolve(tok.StringValue)
		if !ok || kind != ast.IdentConstant {
			return symtab.ConstValue{}, diag.Errorf(diag.StageParse, tok.Pos, "%q is not a compile-time constant", tok.StringValue)
		}
		c, _ := p.tabs.Constants.Get(tok.StringValue)
		return c.Value, nil
	default:
		return symtab.ConstValue{}, diag.Errorf(diag.StageParse, tok.Pos, "unexpected token %q in constant expression", tok.Text)
	}
}
