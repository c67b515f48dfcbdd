package parser

import (
	"github.com/j4n1x/jlang/internal/ast"
	"github.com/j4n1x/jlang/internal/diag"
	"github.com/j4n1x/jlang/internal/token"
)

// parseExpr parses a full expression via precedence climbing (spec.md §3's
// table: multiply/divide/modulo=30, plus/minus=20, comparisons=10, all
// left-associative).
func (p *Parser) parseExpr() (ast.Expr, error) {
	return p.parseExprPrec(0)
}

func (p *Parser) parseExprPrec(minPrec int) (ast.Expr, error) {
	lhs, err := p.parsePrimary()
	if err != nil {
		return nil, err
	}
	for {
		tok := p.peek()
		if tok.Kind != token.KindOperator {
			break
		}
		prec := tok.Operator.Precedence()
		if prec < minPrec {
			break
		}
		p.advance()
		// prec+1: left-associative, so the right operand may not absorb
		// another operator of the same precedence.
		rhs, err := p.parseExprPrec(prec + 1)
		if err != nil {
			return nil, err
		}
		lhs = &ast.Binary{Tok: tok, Op: tok.Operator, Lhs: lhs, Rhs: rhs, Typ: token.TypeInteger}
	}
	return lhs, nil
}

func (p *Parser) parsePrimary() (ast.Expr, error) {
	tok := p.peek()
	switch tok.Kind {
	case token.KindIntLiteral:
		p.advance()
		return &ast.IntLiteral{Tok: tok, Value: tok.IntValue, Typ: token.TypeInteger}, nil

	case token.KindStringLiteral:
		p.advance()
		name := p.tabs.RegisterString(tok.StringValue)
		return &ast.ArrayRef{Tok: tok, Kind: ast.ArrayString, Name: name, Typ: token.TypePointer}, nil

	case token.KindTypeName:
		// Cast: TYPE(expr). Mutates the inner expression's declared type in
		// place rather than wrapping it in a new node (spec.md §8).
		p.advance()
		if _, err := p.expectParenOpen(); err != nil {
			return nil, err
		}
		inner, err := p.parseExpr()
		if err != nil {
			return nil, err
		}
		if _, err := p.expectParenClose(); err != nil {
			return nil, err
		}
		inner.SetType(tok.Type)
		return inner, nil

	case token.KindIntrinsic:
		return p.parseIntrinsicExpr(tok)

	case token.KindSyscall:
		return p.parseSyscall(tok)

	case token.KindParenOpen:
		p.advance()
		e, err := p.parseExpr()
		if err != nil {
			return nil, err
		}
		if _, err := p.expectParenClose(); err != nil {
			return nil, err
		}
		return e, nil

	case token.KindIdentifier:
		return p.parseIdentExpr(tok)

	default:
		return nil, unexpected(tok, "an expression")
	}
}

// parseIntrinsicExpr handles the intrinsics that are legal in expression
// position: address-of and the four sized loads. print, drop, and the sized
// stores only ever appear as statements (see stmt.go); encountering one here
// means it was used where a value was expected.
func (p *Parser) parseIntrinsicExpr(tok token.Token) (ast.Expr, error) {
	switch tok.Intrinsic {
	case token.IntrAddressOf:
		p.advance()
		if _, err := p.expectParenOpen(); err != nil {
			return nil, err
		}
		nameTok, err := p.expectIdentifier()
		if err != nil {
			return nil, err
		}
		kind, typ, ok := p.tabs.Resolve(nameTok.StringValue)
		if !ok || (kind != ast.IdentLocal && kind != ast.IdentGlobal) {
			return nil, diag.Errorf(diag.StageParse, nameTok.Pos, "%q is not a variable", nameTok.StringValue)
		}
		if _, err := p.expectParenClose(); err != nil {
			return nil, err
		}
		ident := &ast.IdentRef{Tok: nameTok, Name: nameTok.StringValue, Kind: kind, Typ: typ}
		return &ast.AddressOf{Tok: tok, Ident: ident, Typ: token.TypePointer}, nil

	default:
		if rank, ok := tok.Intrinsic.LoadSize(); ok {
			p.advance()
			if _, err := p.expectParenOpen(); err != nil {
				return nil, err
			}
			ptr, err := p.parseExpr()
			if err != nil {
				return nil, err
			}
			if _, err := p.expectParenClose(); err != nil {
				return nil, err
			}
			return &ast.Load{Tok: tok, Rank: rank, Ptr: ptr, Typ: token.TypeInteger}, nil
		}
		return nil, unexpected(tok, "an expression")
	}
}

// parseSyscall parses `syscallN(number, arg1, ..., argN)`, where N is the
// token's fixed arity (0..5) and counts the data arguments after the call
// number (spec.md §4.1: "the syscall number plus up to five argument
// registers, rdi/rsi/rdx/r10/r9").
func (p *Parser) parseSyscall(tok token.Token) (ast.Expr, error) {
	p.advance()
	if _, err := p.expectParenOpen(); err != nil {
		return nil, err
	}
	callNum, err := p.parseExpr()
	if err != nil {
		return nil, err
	}
	args := make([]ast.Expr, 0, tok.SyscallArity)
	for i := 0; i < tok.SyscallArity; i++ {
		if _, err := p.expectArgDelimiter(); err != nil {
			return nil, err
		}
		arg, err := p.parseExpr()
		if err != nil {
			return nil, err
		}
		args = append(args, arg)
	}
	if _, err := p.expectParenClose(); err != nil {
		return nil, err
	}
	return &ast.Syscall{Tok: tok, Arity: tok.SyscallArity, CallNum: callNum, Args: args, Typ: token.TypeInteger}, nil
}

// parseIdentExpr resolves a bare identifier and, if it names a function and
// is followed by '(', parses the call.
func (p *Parser) parseIdentExpr(tok token.Token) (ast.Expr, error) {
	p.advance()
	kind, typ, ok := p.tabs.Resolve(tok.StringValue)
	if !ok {
		return nil, diag.Errorf(diag.StageParse, tok.Pos, "undefined identifier %q", tok.StringValue)
	}
	ident := &ast.IdentRef{Tok: tok, Name: tok.StringValue, Kind: kind, Typ: typ}
	if kind != ast.IdentFunction {
		return ident, nil
	}
	if p.peek().Kind != token.KindParenOpen {
		return nil, diag.Errorf(diag.StageParse, tok.Pos, "function %q referenced without a call", tok.StringValue)
	}
	return p.parseCall(ident)
}

func (p *Parser) parseCall(target *ast.IdentRef) (ast.Expr, error) {
	if _, err := p.expectParenOpen(); err != nil {
		return nil, err
	}
	args, err := p.parseArgs()
	if err != nil {
		return nil, err
	}
	if _, err := p.expectParenClose(); err != nil {
		return nil, err
	}
	proto, _ := p.tabs.Prototypes.Get(target.Name)
	if len(args) != len(proto.Params) {
		return nil, diag.Errorf(diag.StageParse, target.Tok.Pos, "%q expects %d argument(s), got %d", target.Name, len(proto.Params), len(args))
	}
	return &ast.FunCall{Tok: target.Tok, Target: target, Args: args, Typ: proto.ReturnType}, nil
}

func (p *Parser) parseArgs() ([]ast.Expr, error) {
	var args []ast.Expr
	if p.peek().Kind == token.KindParenClose {
		return args, nil
	}
	for {
		arg, err := p.parseExpr()
		if err != nil {
			return nil, err
		}
		args = append(args, arg)
		if p.peek().Kind == token.KindArgDelimiter {
			p.advance()
			continue
		}
		break
	}
	return args, nil
}
