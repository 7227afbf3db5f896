package parser

import (
	"strconv"

	"jscr/interpreter-go/pkg/ast"
	"jscr/interpreter-go/pkg/lexer"
)

// Precedence, lowest to highest:
// assignment, object-or-additive, additive, multiplicative, call/member, primary.

func (p *Parser) parseExpression() (ast.Expression, error) {
	return p.parseAssignment()
}

// parseAssignment is right-associative: a = b = 1 assigns b first.
func (p *Parser) parseAssignment() (ast.Expression, error) {
	left, err := p.parseObjectOrAdditive()
	if err != nil {
		return nil, err
	}
	if !p.check(lexer.Equals) {
		return left, nil
	}
	p.advance()
	value, err := p.parseAssignment()
	if err != nil {
		return nil, err
	}
	return ast.SetPosition(ast.NewAssignmentExpr(left, value), left.Pos()), nil
}

// parseObjectOrAdditive only tries an object literal when the current token
// opens a brace. Blocks never appear in expression position, so the two
// cannot be confused.
func (p *Parser) parseObjectOrAdditive() (ast.Expression, error) {
	if p.check(lexer.OpenBrace) {
		return p.parseObjectLiteral()
	}
	return p.parseAdditive()
}

func (p *Parser) parseObjectLiteral() (ast.Expression, error) {
	open := p.advance()
	props := make([]*ast.Property, 0)
	for !p.check(lexer.CloseBrace) && !p.check(lexer.EndOfFile) {
		key, err := p.expect(lexer.Identifier, "expected property key in object literal")
		if err != nil {
			return nil, err
		}
		switch p.at().Kind {
		case lexer.Comma:
			p.advance()
			props = append(props, ast.SetPosition(ast.NewProperty(key.Lexeme, nil), astPos(key.Pos)))
			continue
		case lexer.CloseBrace:
			props = append(props, ast.SetPosition(ast.NewProperty(key.Lexeme, nil), astPos(key.Pos)))
			continue
		case lexer.Colon:
			p.advance()
		default:
			return nil, p.errorAt(p.at(), "expected ':', ',' or '}' after property key '%s'", key.Lexeme)
		}

		value, err := p.parseExpression()
		if err != nil {
			return nil, err
		}
		props = append(props, ast.SetPosition(ast.NewProperty(key.Lexeme, value), astPos(key.Pos)))
		if !p.check(lexer.CloseBrace) {
			if _, err := p.expect(lexer.Comma, "expected ',' or '}' after property value"); err != nil {
				return nil, err
			}
		}
	}
	if _, err := p.expect(lexer.CloseBrace, "expected '}' to close object literal"); err != nil {
		return nil, err
	}
	return ast.SetPosition(ast.NewObjectLiteral(props), astPos(open.Pos)), nil
}

func (p *Parser) parseAdditive() (ast.Expression, error) {
	left, err := p.parseMultiplicative()
	if err != nil {
		return nil, err
	}
	for p.checkOperator("+", "-") {
		op := p.advance()
		right, err := p.parseMultiplicative()
		if err != nil {
			return nil, err
		}
		left = ast.SetPosition(ast.NewBinaryExpr(op.Lexeme, left, right), left.Pos())
	}
	return left, nil
}

func (p *Parser) parseMultiplicative() (ast.Expression, error) {
	left, err := p.parseCallMember()
	if err != nil {
		return nil, err
	}
	for p.checkOperator("*", "/", "%") {
		op := p.advance()
		right, err := p.parseCallMember()
		if err != nil {
			return nil, err
		}
		left = ast.SetPosition(ast.NewBinaryExpr(op.Lexeme, left, right), left.Pos())
	}
	return left, nil
}

// parseCallMember chains member accesses and calls left to right, so
// a.b[c](d)(e) nests outward from a.
func (p *Parser) parseCallMember() (ast.Expression, error) {
	expr, err := p.parsePrimary()
	if err != nil {
		return nil, err
	}
	for {
		switch p.at().Kind {
		case lexer.Dot:
			p.advance()
			tok := p.at()
			if tok.Kind != lexer.Identifier {
				return nil, p.errorAt(tok, "expected identifier after '.'")
			}
			p.advance()
			prop := ast.SetPosition(ast.NewIdentifier(tok.Lexeme), astPos(tok.Pos))
			expr = ast.SetPosition(ast.NewMemberExpr(expr, prop, false), expr.Pos())
		case lexer.OpenBracket:
			p.advance()
			index, err := p.parseExpression()
			if err != nil {
				return nil, err
			}
			if _, err := p.expect(lexer.CloseBracket, "expected ']' after computed member"); err != nil {
				return nil, err
			}
			expr = ast.SetPosition(ast.NewMemberExpr(expr, index, true), expr.Pos())
		case lexer.OpenParen:
			args, err := p.parseArguments()
			if err != nil {
				return nil, err
			}
			expr = ast.SetPosition(ast.NewCallExpr(expr, args), expr.Pos())
		default:
			return expr, nil
		}
	}
}

// parseArguments parses `( [expr {, expr}] )`.
func (p *Parser) parseArguments() ([]ast.Expression, error) {
	if _, err := p.expect(lexer.OpenParen, "expected '('"); err != nil {
		return nil, err
	}
	p.outline++
	defer func() { p.outline-- }()

	args := make([]ast.Expression, 0)
	if p.check(lexer.CloseParen) {
		p.advance()
		return args, nil
	}
	for {
		arg, err := p.parseExpression()
		if err != nil {
			return nil, err
		}
		args = append(args, arg)
		if !p.check(lexer.Comma) {
			break
		}
		p.advance()
	}
	if _, err := p.expect(lexer.CloseParen, "expected ')' after arguments"); err != nil {
		return nil, err
	}
	return args, nil
}

func (p *Parser) parsePrimary() (ast.Expression, error) {
	tok := p.at()
	pos := astPos(tok.Pos)
	switch tok.Kind {
	case lexer.Identifier:
		p.advance()
		return ast.SetPosition(ast.NewIdentifier(tok.Lexeme), pos), nil
	case lexer.Number:
		p.advance()
		value, err := strconv.ParseFloat(tok.Lexeme, 64)
		if err != nil {
			return nil, p.errorAt(tok, "invalid number literal %q", tok.Lexeme)
		}
		return ast.SetPosition(ast.NewNumericLiteral(value), pos), nil
	case lexer.String:
		p.advance()
		return ast.SetPosition(ast.NewStringLiteral(tok.Lexeme), pos), nil
	case lexer.Char:
		p.advance()
		return ast.SetPosition(ast.NewCharLiteral([]rune(tok.Lexeme)[0]), pos), nil
	case lexer.OpenParen:
		p.advance()
		expr, err := p.parseExpression()
		if err != nil {
			return nil, err
		}
		if _, err := p.expect(lexer.CloseParen, "expected ')' to close parenthesized expression"); err != nil {
			return nil, err
		}
		return expr, nil
	case lexer.OpenBracket:
		return p.parseArrayLiteral()
	default:
		return nil, p.errorAt(tok, "unexpected token %s", tok)
	}
}

func (p *Parser) parseArrayLiteral() (ast.Expression, error) {
	open := p.advance()
	elements := make([]ast.Expression, 0)
	for !p.check(lexer.CloseBracket) && !p.check(lexer.EndOfFile) {
		el, err := p.parseExpression()
		if err != nil {
			return nil, err
		}
		elements = append(elements, el)
		if !p.check(lexer.CloseBracket) {
			if _, err := p.expect(lexer.Comma, "expected ',' or ']' in array literal"); err != nil {
				return nil, err
			}
		}
	}
	if _, err := p.expect(lexer.CloseBracket, "expected ']' to close array literal"); err != nil {
		return nil, err
	}
	return ast.SetPosition(ast.NewArrayLiteral(elements), astPos(open.Pos)), nil
}
