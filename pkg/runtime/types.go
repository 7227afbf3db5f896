package runtime

import (
	"fmt"
	"strings"
)

// TypeKind tags the shape of a Type.
type TypeKind int

const (
	TypeAny TypeKind = iota
	TypeNull
	TypeBool
	TypeInteger
	TypeString
	TypeChar
	TypeArray
	TypeRecord
	TypeFunction
)

// Type is a structural type descriptor. The zero value is Any.
type Type struct {
	Kind   TypeKind
	Elem   *Type
	Fields []FieldType
	// Arity of a function type; -1 accepts any arity.
	Arity int
}

// FieldType names one record field and its type.
type FieldType struct {
	Name string
	Type Type
}

var (
	AnyType     = Type{Kind: TypeAny}
	NullType    = Type{Kind: TypeNull}
	BoolType    = Type{Kind: TypeBool}
	IntegerType = Type{Kind: TypeInteger}
	StringType  = Type{Kind: TypeString}
	CharType    = Type{Kind: TypeChar}
)

func ArrayOf(elem Type) Type {
	return Type{Kind: TypeArray, Elem: &elem}
}

func RecordOf(fields ...FieldType) Type {
	return Type{Kind: TypeRecord, Fields: fields}
}

func FunctionOf(arity int) Type {
	return Type{Kind: TypeFunction, Arity: arity}
}

// TypeOf infers the structural type of a value.
func TypeOf(v Value) Type {
	switch val := v.(type) {
	case nil, NullValue:
		return NullType
	case BoolValue:
		return BoolType
	case IntegerValue:
		return IntegerType
	case StringValue:
		return StringType
	case CharValue:
		return CharType
	case *ArrayValue:
		return ArrayOf(elementType(val.Elements))
	case *RecordValue:
		fields := make([]FieldType, len(val.Fields))
		for i, f := range val.Fields {
			fields[i] = FieldType{Name: f.Key, Type: TypeOf(f.Value)}
		}
		return RecordOf(fields...)
	case *FunctionValue:
		return FunctionOf(len(val.Parameters))
	case *NativeFunctionValue:
		return FunctionOf(-1)
	default:
		return AnyType
	}
}

// DeclaredTypeOf is the type a binding initialized with v is declared with.
// A Null initializer leaves the binding untyped.
func DeclaredTypeOf(v Value) Type {
	t := TypeOf(v)
	if t.Kind == TypeNull {
		return AnyType
	}
	return t
}

// elementType is the common type of elems, or Any when they disagree or the
// slice is empty.
func elementType(elems []Value) Type {
	if len(elems) == 0 {
		return AnyType
	}
	first := TypeOf(elems[0])
	for _, el := range elems[1:] {
		if !first.Equal(TypeOf(el)) {
			return AnyType
		}
	}
	return first
}

// Accepts reports whether a value of type other may be stored where t is
// declared.
func (t Type) Accepts(other Type) bool {
	if t.Kind == TypeAny || other.Kind == TypeAny {
		return true
	}
	if t.Kind != other.Kind {
		return false
	}
	switch t.Kind {
	case TypeArray:
		return t.elem().Accepts(other.elem())
	case TypeRecord:
		if len(t.Fields) != len(other.Fields) {
			return false
		}
		for _, f := range t.Fields {
			of, ok := other.field(f.Name)
			if !ok || !f.Type.Accepts(of) {
				return false
			}
		}
		return true
	case TypeFunction:
		return t.Arity < 0 || other.Arity < 0 || t.Arity == other.Arity
	default:
		return true
	}
}

// Equal is exact structural equality; Any only equals Any.
func (t Type) Equal(other Type) bool {
	if t.Kind != other.Kind {
		return false
	}
	switch t.Kind {
	case TypeArray:
		return t.elem().Equal(other.elem())
	case TypeRecord:
		if len(t.Fields) != len(other.Fields) {
			return false
		}
		for i, f := range t.Fields {
			of := other.Fields[i]
			if f.Name != of.Name || !f.Type.Equal(of.Type) {
				return false
			}
		}
		return true
	case TypeFunction:
		return t.Arity == other.Arity
	default:
		return true
	}
}

func (t Type) elem() Type {
	if t.Elem == nil {
		return AnyType
	}
	return *t.Elem
}

func (t Type) field(name string) (Type, bool) {
	for _, f := range t.Fields {
		if f.Name == name {
			return f.Type, true
		}
	}
	return Type{}, false
}

func (t Type) String() string {
	switch t.Kind {
	case TypeAny:
		return "any"
	case TypeNull:
		return "null"
	case TypeBool:
		return "bool"
	case TypeInteger:
		return "integer"
	case TypeString:
		return "string"
	case TypeChar:
		return "char"
	case TypeArray:
		return "array<" + t.elem().String() + ">"
	case TypeRecord:
		parts := make([]string, len(t.Fields))
		for i, f := range t.Fields {
			parts[i] = f.Name + ": " + f.Type.String()
		}
		return "{" + strings.Join(parts, ", ") + "}"
	case TypeFunction:
		if t.Arity < 0 {
			return "func/*"
		}
		return fmt.Sprintf("func/%d", t.Arity)
	default:
		return fmt.Sprintf("unknown_type_%d", int(t.Kind))
	}
}
