package parser

import (
	"jscr/interpreter-go/pkg/ast"
	"jscr/interpreter-go/pkg/lexer"
)

func (p *Parser) parseStatement() (ast.Statement, error) {
	switch p.at().Kind {
	case lexer.Pub:
		pubTok := p.advance()
		switch p.at().Kind {
		case lexer.Let, lexer.Const:
			return p.parseVarDeclaration(pubTok, true)
		case lexer.Func:
			return p.parseFunctionDeclaration(pubTok, true)
		default:
			return nil, p.errorAt(p.at(), "expected 'let', 'const' or 'func' after 'pub'")
		}
	case lexer.Let, lexer.Const:
		return p.parseVarDeclaration(p.at(), false)
	case lexer.Func:
		return p.parseFunctionDeclaration(p.at(), false)
	case lexer.Return:
		return p.parseReturnStatement()
	case lexer.Import:
		return p.parseImportStatement()
	default:
		return p.parseExpressionStatement()
	}
}

// parseVarDeclaration handles `(let|const) name [= value];`. start is the
// first token of the statement (which may be `pub`).
func (p *Parser) parseVarDeclaration(start lexer.Token, isPublic bool) (ast.Statement, error) {
	keyword := p.advance()
	isConstant := keyword.Kind == lexer.Const
	name, err := p.expect(lexer.Identifier, "expected identifier after '"+keyword.Lexeme+"'")
	if err != nil {
		return nil, err
	}

	if p.check(lexer.Semicolon) {
		if isConstant {
			return nil, p.errorAt(p.at(), "constant '%s' must be initialized", name.Lexeme)
		}
		p.advance()
		decl := ast.NewVarDeclaration(false, name.Lexeme, nil, isPublic)
		return ast.SetPosition(decl, astPos(start.Pos)), nil
	}

	if _, err := p.expect(lexer.Equals, "expected '=' or ';' after identifier in declaration"); err != nil {
		return nil, err
	}
	p.outline++
	value, err := p.parseExpression()
	p.outline--
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(lexer.Semicolon, "expected ';' after variable declaration"); err != nil {
		return nil, err
	}
	decl := ast.NewVarDeclaration(isConstant, name.Lexeme, value, isPublic)
	return ast.SetPosition(decl, astPos(start.Pos)), nil
}

func (p *Parser) parseFunctionDeclaration(start lexer.Token, isPublic bool) (ast.Statement, error) {
	p.advance()
	name, err := p.expect(lexer.Identifier, "expected function name after 'func'")
	if err != nil {
		return nil, err
	}

	args, err := p.parseArguments()
	if err != nil {
		return nil, err
	}
	params := make([]string, 0, len(args))
	for _, arg := range args {
		ident, ok := arg.(*ast.Identifier)
		if !ok {
			pos := arg.Pos()
			return nil, lexer.NewSyntaxError(p.file, lexer.Position{Line: pos.Line, Column: pos.Column}, "function parameters must be identifiers")
		}
		params = append(params, ident.Symbol)
	}

	if _, err := p.expect(lexer.OpenBrace, "expected '{' to open function body"); err != nil {
		return nil, err
	}
	body := make([]ast.Statement, 0)
	for !p.check(lexer.CloseBrace) && !p.check(lexer.EndOfFile) {
		stmt, err := p.parseStatement()
		if err != nil {
			return nil, err
		}
		body = append(body, stmt)
	}
	if _, err := p.expect(lexer.CloseBrace, "expected '}' to close function body"); err != nil {
		return nil, err
	}

	fn := ast.NewFunctionDeclaration(name.Lexeme, params, body, isPublic)
	return ast.SetPosition(fn, astPos(start.Pos)), nil
}

func (p *Parser) parseReturnStatement() (ast.Statement, error) {
	start := p.advance()
	if p.check(lexer.Semicolon) {
		p.advance()
		return ast.SetPosition(ast.NewReturnDeclaration(nil), astPos(start.Pos)), nil
	}
	p.outline++
	value, err := p.parseExpression()
	p.outline--
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(lexer.Semicolon, "expected ';' after return value"); err != nil {
		return nil, err
	}
	return ast.SetPosition(ast.NewReturnDeclaration(value), astPos(start.Pos)), nil
}

// parseImportStatement handles `import a.b [as alias];`.
func (p *Parser) parseImportStatement() (ast.Statement, error) {
	start := p.advance()
	first, err := p.expect(lexer.Identifier, "expected module name after 'import'")
	if err != nil {
		return nil, err
	}
	path := []string{first.Lexeme}
	for p.check(lexer.Dot) {
		p.advance()
		seg, err := p.expect(lexer.Identifier, "expected identifier after '.' in import path")
		if err != nil {
			return nil, err
		}
		path = append(path, seg.Lexeme)
	}
	alias := ""
	if p.check(lexer.As) {
		p.advance()
		name, err := p.expect(lexer.Identifier, "expected alias name after 'as'")
		if err != nil {
			return nil, err
		}
		alias = name.Lexeme
	}
	if _, err := p.expect(lexer.Semicolon, "expected ';' after import"); err != nil {
		return nil, err
	}
	return ast.SetPosition(ast.NewImportDeclaration(path, alias), astPos(start.Pos)), nil
}

func (p *Parser) parseExpressionStatement() (ast.Statement, error) {
	expr, err := p.parseExpression()
	if err != nil {
		return nil, err
	}
	// Only the outermost expression owns the terminator; nested calls such as
	// the inner call of foo(bar()) never demand their own.
	if p.outline <= 1 {
		if _, err := p.expect(lexer.Semicolon, "expected ';' after expression"); err != nil {
			return nil, err
		}
	}
	return expr, nil
}
