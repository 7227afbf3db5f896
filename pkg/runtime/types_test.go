package runtime

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTypeOf(t *testing.T) {
	fn := &FunctionValue{Name: "f", Parameters: []string{"a", "b"}}
	cases := []struct {
		value Value
		want  string
	}{
		{NullValue{}, "null"},
		{BoolValue{Val: true}, "bool"},
		{IntegerValue{Val: 1}, "integer"},
		{StringValue{Val: "s"}, "string"},
		{CharValue{Val: 'c'}, "char"},
		{&ArrayValue{}, "array<any>"},
		{&ArrayValue{Elements: []Value{IntegerValue{Val: 1}, IntegerValue{Val: 2}}}, "array<integer>"},
		{&ArrayValue{Elements: []Value{IntegerValue{Val: 1}, StringValue{Val: "x"}}}, "array<any>"},
		{&RecordValue{Fields: []RecordField{{Key: "a", Value: IntegerValue{Val: 1}}, {Key: "b", Value: fn}}}, "{a: integer, b: func/2}"},
		{fn, "func/2"},
		{&NativeFunctionValue{Name: "print"}, "func/*"},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, TypeOf(tc.value).String())
	}
}

func TestDeclaredTypeOfNullIsAny(t *testing.T) {
	assert.Equal(t, AnyType, DeclaredTypeOf(NullValue{}))
	assert.Equal(t, IntegerType, DeclaredTypeOf(IntegerValue{Val: 2}))
}

func TestAccepts(t *testing.T) {
	rec := func(fields ...FieldType) Type { return RecordOf(fields...) }
	cases := []struct {
		name     string
		declared Type
		actual   Type
		want     bool
	}{
		{"any accepts all", AnyType, StringType, true},
		{"any value fits anywhere", IntegerType, AnyType, true},
		{"same scalar", IntegerType, IntegerType, true},
		{"different scalar", IntegerType, StringType, false},
		{"null only matches null", IntegerType, NullType, false},
		{"array element", ArrayOf(IntegerType), ArrayOf(IntegerType), true},
		{"array element mismatch", ArrayOf(IntegerType), ArrayOf(CharType), false},
		{"empty array", ArrayOf(IntegerType), ArrayOf(AnyType), true},
		{"record same shape", rec(FieldType{"a", IntegerType}), rec(FieldType{"a", IntegerType}), true},
		{"record field order ignored", rec(FieldType{"a", IntegerType}, FieldType{"b", BoolType}), rec(FieldType{"b", BoolType}, FieldType{"a", IntegerType}), true},
		{"record missing field", rec(FieldType{"a", IntegerType}), rec(FieldType{"b", IntegerType}), false},
		{"record extra field", rec(FieldType{"a", IntegerType}), rec(FieldType{"a", IntegerType}, FieldType{"b", IntegerType}), false},
		{"record field type", rec(FieldType{"a", IntegerType}), rec(FieldType{"a", StringType}), false},
		{"function arity", FunctionOf(2), FunctionOf(2), true},
		{"function arity mismatch", FunctionOf(2), FunctionOf(1), false},
		{"native matches any function", FunctionOf(2), FunctionOf(-1), true},
		{"function vs integer", FunctionOf(0), IntegerType, false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, tc.declared.Accepts(tc.actual))
		})
	}
}

func TestFormatAndInspect(t *testing.T) {
	arr := &ArrayValue{Elements: []Value{IntegerValue{Val: 1}, StringValue{Val: "a"}, CharValue{Val: 'b'}}}
	rec := &RecordValue{Fields: []RecordField{{Key: "x", Value: IntegerValue{Val: 1}}, {Key: "y", Value: NullValue{}}}}

	assert.Equal(t, "hello", Format(StringValue{Val: "hello"}))
	assert.Equal(t, "c", Format(CharValue{Val: 'c'}))
	assert.Equal(t, `"hello"`, Inspect(StringValue{Val: "hello"}))
	assert.Equal(t, "-4", Format(IntegerValue{Val: -4}))
	assert.Equal(t, "true", Format(BoolValue{Val: true}))
	assert.Equal(t, "null", Format(NullValue{}))
	assert.Equal(t, `[1, "a", 'b']`, Format(arr))
	assert.Equal(t, "{ x: 1, y: null }", Format(rec))
	assert.Equal(t, "{}", Format(&RecordValue{}))
	assert.Equal(t, "<func add>", Format(&FunctionValue{Name: "add"}))
	assert.Equal(t, "<native print>", Format(&NativeFunctionValue{Name: "print"}))

	got, ok := rec.Get("x")
	assert.True(t, ok)
	assert.Equal(t, IntegerValue{Val: 1}, got)
	_, ok = rec.Get("z")
	assert.False(t, ok)
}
