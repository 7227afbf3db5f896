package interpreter

import (
	"errors"
	"fmt"

	"jscr/interpreter-go/pkg/ast"
	"jscr/interpreter-go/pkg/runtime"
)

// RuntimeError aborts the current evaluation. Err, when set, is the
// underlying cause (usually a runtime sentinel such as ErrUnresolved).
type RuntimeError struct {
	File    string
	Pos     ast.Position
	Message string
	Err     error
}

func (e *RuntimeError) Error() string {
	if e.File == "" {
		return fmt.Sprintf("%d:%d: %s", e.Pos.Line, e.Pos.Column, e.Message)
	}
	return fmt.Sprintf("%s:%d:%d: %s", e.File, e.Pos.Line, e.Pos.Column, e.Message)
}

func (e *RuntimeError) Unwrap() error { return e.Err }

var (
	ErrDivisionByZero  = errors.New("division by zero")
	ErrNotCallable     = errors.New("value is not callable")
	ErrArity           = errors.New("wrong number of arguments")
	ErrCallDepth       = errors.New("maximum call depth exceeded")
	ErrUnsupported     = errors.New("unsupported operation")
	ErrReturnOutside   = errors.New("return outside function")
	ErrNoImporter      = errors.New("imports are not available")
	ErrIndexOutOfRange = errors.New("index out of range")
)

// returnSignal unwinds a function body up to its call.
type returnSignal struct {
	value runtime.Value
}

func (r returnSignal) Error() string {
	return "return"
}

// fail attaches the position of node to err. Errors that already carry a
// position, and return signals, pass through unchanged.
func fail(env *runtime.Environment, node ast.Node, err error) error {
	var rt *RuntimeError
	if errors.As(err, &rt) {
		return err
	}
	if _, ok := err.(returnSignal); ok {
		return err
	}
	return &RuntimeError{File: env.File(), Pos: node.Pos(), Message: err.Error(), Err: err}
}

func failf(env *runtime.Environment, node ast.Node, cause error, format string, args ...any) error {
	return &RuntimeError{
		File:    env.File(),
		Pos:     node.Pos(),
		Message: fmt.Sprintf(format, args...),
		Err:     cause,
	}
}
