package lexer

import (
	"fmt"
	"strings"
	"unicode"
)

type scanner struct {
	file   string
	src    []rune
	i      int
	line   int
	col    int
	tokens []Token
}

// Tokenize converts source text into tokens terminated by EndOfFile. It stops
// at the first character that starts no token.
func Tokenize(file, source string) ([]Token, error) {
	s := &scanner{
		file: file,
		src:  []rune(source),
		line: 1,
	}
	if err := s.run(); err != nil {
		return nil, err
	}
	s.tokens = append(s.tokens, Token{Kind: EndOfFile, Pos: s.pos()})
	return s.tokens, nil
}

func (s *scanner) pos() Position {
	return Position{Line: s.line, Column: s.col}
}

func (s *scanner) peek(offset int) rune {
	if s.i+offset >= len(s.src) {
		return 0
	}
	return s.src[s.i+offset]
}

func (s *scanner) atEnd() bool {
	return s.i >= len(s.src)
}

// advance consumes one rune, keeping line/column current.
func (s *scanner) advance() rune {
	ch := s.src[s.i]
	s.i++
	if ch == '\n' {
		s.line++
		s.col = 0
	} else {
		s.col++
	}
	return ch
}

func (s *scanner) emit(kind Kind, lexeme string, pos Position) {
	s.tokens = append(s.tokens, Token{Kind: kind, Lexeme: lexeme, Pos: pos})
}

func (s *scanner) fail(pos Position, format string, args ...any) error {
	return NewSyntaxError(s.file, pos, fmt.Sprintf(format, args...))
}

func (s *scanner) run() error {
	for !s.atEnd() {
		ch := s.peek(0)
		start := s.pos()

		if kind, ok := punctuation[ch]; ok {
			s.advance()
			s.emit(kind, string(ch), start)
			continue
		}

		switch ch {
		case '+', '-', '*', '%':
			s.advance()
			s.emit(BinaryOperator, string(ch), start)
			continue
		case '/':
			switch s.peek(1) {
			case '/':
				s.skipLineComment()
			case '*':
				s.skipBlockComment()
			default:
				s.advance()
				s.emit(BinaryOperator, "/", start)
			}
			continue
		case '"':
			if err := s.scanQuoted('"', String); err != nil {
				return err
			}
			continue
		case '\'':
			if err := s.scanQuoted('\'', Char); err != nil {
				return err
			}
			continue
		case ' ', '\t', '\r', '\n':
			s.advance()
			continue
		}

		switch {
		case isDigit(ch):
			s.scanNumber()
		case isIdentStart(ch):
			s.scanIdentifier()
		default:
			return s.fail(start, "unrecognized character %q", ch)
		}
	}
	return nil
}

func (s *scanner) skipLineComment() {
	for !s.atEnd() && s.peek(0) != '\n' {
		s.advance()
	}
}

// skipBlockComment discards through the next "*/", or to end of input.
func (s *scanner) skipBlockComment() {
	s.advance()
	s.advance()
	for !s.atEnd() {
		if s.peek(0) == '*' && s.peek(1) == '/' {
			s.advance()
			s.advance()
			return
		}
		s.advance()
	}
}

func (s *scanner) scanNumber() {
	start := s.pos()
	begin := s.i
	for !s.atEnd() && isDigit(s.peek(0)) {
		s.advance()
	}
	s.emit(Number, string(s.src[begin:s.i]), start)
}

func (s *scanner) scanIdentifier() {
	start := s.pos()
	begin := s.i
	for !s.atEnd() && isIdentPart(s.peek(0)) {
		s.advance()
	}
	word := string(s.src[begin:s.i])
	if kind, ok := keywords[word]; ok {
		s.emit(kind, word, start)
		return
	}
	s.emit(Identifier, word, start)
}

func (s *scanner) scanQuoted(quote rune, kind Kind) error {
	start := s.pos()
	s.advance()
	var b strings.Builder
	for {
		if s.atEnd() || s.peek(0) == '\n' {
			return s.fail(start, "unterminated %s literal", strings.ToLower(kind.String()))
		}
		ch := s.advance()
		if ch == quote {
			break
		}
		if ch != '\\' {
			b.WriteRune(ch)
			continue
		}
		if s.atEnd() {
			return s.fail(start, "unterminated %s literal", strings.ToLower(kind.String()))
		}
		escPos := s.pos()
		esc := s.advance()
		switch esc {
		case 'n':
			b.WriteByte('\n')
		case 't':
			b.WriteByte('\t')
		case 'r':
			b.WriteByte('\r')
		case '\\', '"', '\'':
			b.WriteRune(esc)
		default:
			return s.fail(escPos, "unknown escape sequence \\%c", esc)
		}
	}
	text := b.String()
	if kind == Char && len([]rune(text)) != 1 {
		return s.fail(start, "char literal must contain exactly one character")
	}
	s.emit(kind, text, start)
	return nil
}

func isDigit(ch rune) bool {
	return ch >= '0' && ch <= '9'
}

func isIdentStart(ch rune) bool {
	return ch == '_' || unicode.IsLetter(ch)
}

func isIdentPart(ch rune) bool {
	return isIdentStart(ch) || isDigit(ch)
}
