package runtime

import (
	"fmt"
	"io"

	"jscr/interpreter-go/pkg/ast"
)

// Kind identifies the runtime value category.
type Kind int

const (
	KindNull Kind = iota
	KindBool
	KindInteger
	KindString
	KindChar
	KindArray
	KindRecord
	KindFunction
	KindNativeFunction
)

func (k Kind) String() string {
	switch k {
	case KindNull:
		return "null"
	case KindBool:
		return "bool"
	case KindInteger:
		return "integer"
	case KindString:
		return "string"
	case KindChar:
		return "char"
	case KindArray:
		return "array"
	case KindRecord:
		return "record"
	case KindFunction:
		return "function"
	case KindNativeFunction:
		return "native_function"
	default:
		return fmt.Sprintf("unknown_kind_%d", int(k))
	}
}

// Value is the shared behaviour for all runtime values.
type Value interface {
	Kind() Kind
}

//-----------------------------------------------------------------------------
// Scalars
//-----------------------------------------------------------------------------

type NullValue struct{}

func (NullValue) Kind() Kind { return KindNull }

type BoolValue struct {
	Val bool
}

func (v BoolValue) Kind() Kind { return KindBool }

type IntegerValue struct {
	Val int64
}

func (v IntegerValue) Kind() Kind { return KindInteger }

type StringValue struct {
	Val string
}

func (v StringValue) Kind() Kind { return KindString }

type CharValue struct {
	Val rune
}

func (v CharValue) Kind() Kind { return KindChar }

//-----------------------------------------------------------------------------
// Aggregates
//-----------------------------------------------------------------------------

type ArrayValue struct {
	Elements []Value
}

func (v *ArrayValue) Kind() Kind { return KindArray }

// RecordField is one ordered entry of a record.
type RecordField struct {
	Key   string
	Type  Type
	Value Value
}

type RecordValue struct {
	Fields []RecordField
}

func (v *RecordValue) Kind() Kind { return KindRecord }

// Get returns the value stored under key.
func (v *RecordValue) Get(key string) (Value, bool) {
	for _, f := range v.Fields {
		if f.Key == key {
			return f.Value, true
		}
	}
	return nil, false
}

//-----------------------------------------------------------------------------
// Callables
//-----------------------------------------------------------------------------

// FunctionValue is a user function together with the scope it was declared in.
type FunctionValue struct {
	Name       string
	ReturnType Type
	Parameters []string
	Closure    *Environment
	Body       []ast.Statement
}

func (v *FunctionValue) Kind() Kind { return KindFunction }

// NativeCallContext is handed to host functions on every call.
type NativeCallContext struct {
	Env    *Environment
	Stdout io.Writer
}

type NativeFunc func(*NativeCallContext, []Value) (Value, error)

type NativeFunctionValue struct {
	Name       string
	ReturnType Type
	Impl       NativeFunc
}

func (v *NativeFunctionValue) Kind() Kind { return KindNativeFunction }
