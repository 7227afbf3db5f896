package parser

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"jscr/interpreter-go/pkg/ast"
	"jscr/interpreter-go/pkg/lexer"
	"jscr/interpreter-go/pkg/observability"
)

const eofDescription = "unexpected end of file"

// Parser is a single-pass recursive-descent parser over one file's tokens.
// It is not error tolerant: the first malformed construct aborts the parse.
type Parser struct {
	file   string
	tokens []lexer.Token
	pos    int
	// outline counts how deeply the cursor sits inside variable initializers,
	// return values and argument lists.
	outline int
}

// Options configures ParseFile.
type Options struct {
	// Report, when set, is invoked once per syntax error.
	Report func(*lexer.SyntaxError)
}

// Result is the outcome of parsing one file.
type Result struct {
	Success bool
	Program *ast.Program
	Errors  []*lexer.SyntaxError
}

// ParseSource tokenizes and parses source, attributing positions to file.
// Failures are *lexer.SyntaxError.
func ParseSource(file, source string) (*ast.Program, error) {
	tokens, err := lexer.Tokenize(file, source)
	if err != nil {
		return nil, err
	}
	p := &Parser{file: file, tokens: tokens}
	return p.parseProgram()
}

// ParseFile reads and parses the file at path. I/O failures are returned as
// the error; syntax errors are reported through the Result and opts.Report.
func ParseFile(path string, opts Options) (*Result, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("parser: read %s: %w", path, err)
	}
	start := time.Now()
	program, err := ParseSource(path, string(data))
	observability.ParseDuration.Observe(time.Since(start).Seconds())
	if err != nil {
		var syn *lexer.SyntaxError
		if !errors.As(err, &syn) {
			return nil, err
		}
		if opts.Report != nil {
			opts.Report(syn)
		}
		return &Result{Success: false, Errors: []*lexer.SyntaxError{syn}}, nil
	}
	return &Result{Success: true, Program: program}, nil
}

// IsIncomplete reports whether err is a syntax error caused by running out of
// input, i.e. more source could still complete the construct.
func IsIncomplete(err error) bool {
	var syn *lexer.SyntaxError
	if !errors.As(err, &syn) {
		return false
	}
	return strings.HasPrefix(syn.Description, eofDescription) || strings.HasPrefix(syn.Description, "unterminated")
}

func (p *Parser) parseProgram() (*ast.Program, error) {
	body := make([]ast.Statement, 0)
	for !p.check(lexer.EndOfFile) {
		stmt, err := p.parseStatement()
		if err != nil {
			return nil, err
		}
		body = append(body, stmt)
	}
	program := ast.NewProgram(p.file, body)
	return ast.SetPosition(program, ast.Position{Line: 1}), nil
}

// at returns the current token. Past the end it keeps returning the final
// EndOfFile token.
func (p *Parser) at() lexer.Token {
	if p.pos >= len(p.tokens) {
		return p.tokens[len(p.tokens)-1]
	}
	return p.tokens[p.pos]
}

func (p *Parser) advance() lexer.Token {
	tok := p.at()
	if p.pos < len(p.tokens) {
		p.pos++
	}
	return tok
}

func (p *Parser) check(kind lexer.Kind) bool {
	return p.at().Kind == kind
}

func (p *Parser) checkOperator(ops ...string) bool {
	tok := p.at()
	if tok.Kind != lexer.BinaryOperator {
		return false
	}
	for _, op := range ops {
		if tok.Lexeme == op {
			return true
		}
	}
	return false
}

// expect consumes one token and fails if it is not of the given kind.
func (p *Parser) expect(kind lexer.Kind, message string) (lexer.Token, error) {
	tok := p.advance()
	if tok.Kind != kind {
		return tok, p.errorAt(tok, "%s", message)
	}
	return tok, nil
}

func (p *Parser) errorAt(tok lexer.Token, format string, args ...any) error {
	description := fmt.Sprintf(format, args...)
	if tok.Kind == lexer.EndOfFile {
		description = eofDescription + ": " + description
	}
	return lexer.NewSyntaxError(p.file, tok.Pos, description)
}

func astPos(pos lexer.Position) ast.Position {
	return ast.Position{Line: pos.Line, Column: pos.Column}
}
