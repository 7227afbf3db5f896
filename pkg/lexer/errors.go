package lexer

import "fmt"

// SyntaxError reports a lexing or parsing failure at a source position.
type SyntaxError struct {
	File        string
	Line        int
	Column      int
	Description string
	// Code is a weak diagnostic fingerprint of Description. Equal descriptions
	// produce equal codes; distinct descriptions may collide.
	Code int
}

// NewSyntaxError builds a SyntaxError at pos.
func NewSyntaxError(file string, pos Position, description string) *SyntaxError {
	return &SyntaxError{
		File:        file,
		Line:        pos.Line,
		Column:      pos.Column,
		Description: description,
		Code:        ErrorCode(description),
	}
}

func (e *SyntaxError) Error() string {
	if e.File == "" {
		return fmt.Sprintf("%d:%d: %s", e.Line, e.Column, e.Description)
	}
	return fmt.Sprintf("%s:%d:%d: %s", e.File, e.Line, e.Column, e.Description)
}

// Position returns the error location.
func (e *SyntaxError) Position() Position {
	return Position{Line: e.Line, Column: e.Column}
}

// ErrorCode sums the code points of description.
func ErrorCode(description string) int {
	code := 0
	for _, r := range description {
		code += int(r)
	}
	return code
}
