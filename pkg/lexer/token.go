package lexer

import "fmt"

// Kind identifies the lexical category of a token.
type Kind int

const (
	Number Kind = iota
	Identifier
	String
	Char
	Let
	Const
	Func
	Return
	Pub
	Import
	As
	BinaryOperator
	Equals
	Comma
	Colon
	Dot
	Semicolon
	OpenParen
	CloseParen
	OpenBrace
	CloseBrace
	OpenBracket
	CloseBracket
	EndOfFile
)

func (k Kind) String() string {
	switch k {
	case Number:
		return "Number"
	case Identifier:
		return "Identifier"
	case String:
		return "String"
	case Char:
		return "Char"
	case Let:
		return "Let"
	case Const:
		return "Const"
	case Func:
		return "Func"
	case Return:
		return "Return"
	case Pub:
		return "Pub"
	case Import:
		return "Import"
	case As:
		return "As"
	case BinaryOperator:
		return "BinaryOperator"
	case Equals:
		return "Equals"
	case Comma:
		return "Comma"
	case Colon:
		return "Colon"
	case Dot:
		return "Dot"
	case Semicolon:
		return "Semicolon"
	case OpenParen:
		return "OpenParen"
	case CloseParen:
		return "CloseParen"
	case OpenBrace:
		return "OpenBrace"
	case CloseBrace:
		return "CloseBrace"
	case OpenBracket:
		return "OpenBracket"
	case CloseBracket:
		return "CloseBracket"
	case EndOfFile:
		return "EndOfFile"
	default:
		return fmt.Sprintf("unknown_kind_%d", int(k))
	}
}

// keywords maps reserved words to their token kinds.
var keywords = map[string]Kind{
	"let":    Let,
	"const":  Const,
	"func":   Func,
	"return": Return,
	"pub":    Pub,
	"import": Import,
	"as":     As,
}

// punctuation maps single-character grouping tokens to their kinds.
var punctuation = map[rune]Kind{
	'(': OpenParen,
	')': CloseParen,
	'{': OpenBrace,
	'}': CloseBrace,
	'[': OpenBracket,
	']': CloseBracket,
	'=': Equals,
	';': Semicolon,
	':': Colon,
	',': Comma,
	'.': Dot,
}

// Position is a source location. Lines are 1-based, columns 0-based.
type Position struct {
	Line   int `json:"line"`
	Column int `json:"column"`
}

func (p Position) String() string {
	return fmt.Sprintf("%d:%d", p.Line, p.Column)
}

// Token is a lexeme tagged with its kind and the position of its first character.
type Token struct {
	Kind   Kind
	Lexeme string
	Pos    Position
}

func (t Token) String() string {
	if t.Kind == EndOfFile {
		return "EndOfFile"
	}
	return fmt.Sprintf("%s(%q)", t.Kind, t.Lexeme)
}
