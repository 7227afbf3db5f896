package interpreter

import (
	"bytes"
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"jscr/interpreter-go/pkg/ast"
	"jscr/interpreter-go/pkg/parser"
	"jscr/interpreter-go/pkg/runtime"
)

func mustParse(t *testing.T, file, src string) *ast.Program {
	t.Helper()
	program, err := parser.ParseSource(file, src)
	require.NoError(t, err)
	return program
}

// run executes src as main.jscr and returns the result and everything printed.
func run(t *testing.T, src string, opts Options) (runtime.Value, string, error) {
	t.Helper()
	var out bytes.Buffer
	opts.Stdout = &out
	val, err := New(opts).Execute(context.Background(), mustParse(t, "main.jscr", src))
	return val, out.String(), err
}

func mustRun(t *testing.T, src string) runtime.Value {
	t.Helper()
	val, _, err := run(t, src, Options{})
	require.NoError(t, err)
	return val
}

func integer(v int64) runtime.Value { return runtime.IntegerValue{Val: v} }

func TestEvaluatesArithmetic(t *testing.T) {
	cases := []struct {
		src  string
		want int64
	}{
		{"1 + 2 * 3;", 7},
		{"(1 + 2) * 3;", 9},
		{"10 - 4 - 3;", 3},
		{"7 / 2;", 3},
		{"(0 - 7) / 2;", -3},
		{"7 % 3;", 1},
		{"2 * 3 % 4;", 2},
	}
	for _, tc := range cases {
		t.Run(tc.src, func(t *testing.T) {
			assert.Equal(t, integer(tc.want), mustRun(t, tc.src))
		})
	}
}

func TestEndToEndFunctionCall(t *testing.T) {
	assert.Equal(t, integer(5), mustRun(t, "func add(a, b) { return a + b; }\nadd(2, 3);"))
}

func TestIdempotentAcrossEnvironments(t *testing.T) {
	program := mustParse(t, "main.jscr", "let x = 1;\nfunc bump() { x = x + 1; return x; }\nbump();\nbump();")
	interp := New(Options{Stdout: &bytes.Buffer{}})

	first, err := interp.Execute(context.Background(), program)
	require.NoError(t, err)
	second, err := interp.Execute(context.Background(), program)
	require.NoError(t, err)
	assert.Equal(t, integer(3), first)
	assert.Equal(t, first, second)
}

func TestShadowingInsideCall(t *testing.T) {
	src := `
let x = 1;
func f() {
  let x = 10;
  x = x + 1;
  return x;
}
let r = f();
[r, x];
`
	val := mustRun(t, src)
	assert.Equal(t, &runtime.ArrayValue{Elements: []runtime.Value{integer(11), integer(1)}}, val)
}

func TestClosuresOutliveTheirScope(t *testing.T) {
	src := `
func counter() {
  let n = 0;
  func next() { n = n + 1; return n; }
  return next;
}
let c = counter();
c();
c();
c();
`
	assert.Equal(t, integer(3), mustRun(t, src))
}

func TestReturnShortCircuits(t *testing.T) {
	val, out, err := run(t, `func f() { return 1; print("unreachable"); } f();`, Options{})
	require.NoError(t, err)
	assert.Equal(t, integer(1), val)
	assert.Empty(t, out)

	assert.Equal(t, runtime.NullValue{}, mustRun(t, "func g() { return; } g();"))
	assert.Equal(t, runtime.NullValue{}, mustRun(t, "func h() { 1; } h();"))
}

func TestReturnOutsideFunction(t *testing.T) {
	_, _, err := run(t, "return 1;", Options{})
	require.ErrorIs(t, err, ErrReturnOutside)
}

func TestPrint(t *testing.T) {
	val, out, err := run(t, `print("a", 1, 'c', [1, 2], { x: 1 }, null, true); print();`, Options{})
	require.NoError(t, err)
	assert.Equal(t, runtime.NullValue{}, val)
	assert.Equal(t, "a 1 c [1, 2] { x: 1 } null true\n\n", out)
}

func TestDivisionByZero(t *testing.T) {
	_, _, err := run(t, "let a = 1;\nlet b = a / 0;", Options{})
	require.ErrorIs(t, err, ErrDivisionByZero)
	var rt *RuntimeError
	require.True(t, errors.As(err, &rt))
	assert.Equal(t, "main.jscr", rt.File)
	assert.Equal(t, ast.Position{Line: 2, Column: 8}, rt.Pos)
	assert.Equal(t, "main.jscr:2:8: division by zero", err.Error())

	_, _, err = run(t, "5 % 0;", Options{})
	require.ErrorIs(t, err, ErrDivisionByZero)
	assert.Contains(t, err.Error(), "modulo by zero")
}

func TestNonIntegerArithmetic(t *testing.T) {
	_, _, err := run(t, `"a" + 1;`, Options{})
	require.ErrorIs(t, err, ErrUnsupported)
	assert.Contains(t, err.Error(), "string and integer")

	val, _, err := run(t, `"a" + 1;`, Options{LenientArithmetic: true})
	require.NoError(t, err)
	assert.Equal(t, runtime.NullValue{}, val)
}

func TestMemberAccess(t *testing.T) {
	cases := []struct {
		src  string
		want runtime.Value
	}{
		{"let p = { x: 1, y: 2 }; p.y;", integer(2)},
		{`let p = { x: 1 }; p["x"];`, integer(1)},
		{"let x = 3; let p = { x }; p.x;", integer(3)},
		{"let o = { inner: { v: 9 } }; o.inner.v;", integer(9)},
		{"[1, 2, 3][1];", integer(2)},
		{"[1, 2, 3].length;", integer(3)},
		{`"héllo"[1];`, runtime.CharValue{Val: 'é'}},
		{`"héllo".length;`, integer(5)},
		{"let fs = { f: 1 }; func id(v) { return v; } id(fs).f;", integer(1)},
	}
	for _, tc := range cases {
		t.Run(tc.src, func(t *testing.T) {
			assert.Equal(t, tc.want, mustRun(t, tc.src))
		})
	}
}

func TestRuntimeErrors(t *testing.T) {
	cases := []struct {
		name string
		src  string
		want error
	}{
		{"unresolved identifier", "missing;", runtime.ErrUnresolved},
		{"unresolved shorthand", "{ missing };", runtime.ErrUnresolved},
		{"const assignment", "const c = 1; c = 2;", runtime.ErrConstAssignment},
		{"builtin constant", "true = false;", runtime.ErrConstAssignment},
		{"type mismatch", `let n = 1; n = "s";`, runtime.ErrTypeMismatch},
		{"redeclaration", "let a = 1; let a = 2;", runtime.ErrRedeclared},
		{"not callable", "let n = 1; n();", ErrNotCallable},
		{"arity", "func f(a) { return a; } f();", ErrArity},
		{"member target", "let p = { a: 1 }; p.a = 2;", ErrUnsupported},
		{"missing field", "let p = { a: 1 }; p.b;", runtime.ErrUnresolved},
		{"index out of range", "[1][1];", ErrIndexOutOfRange},
		{"negative index", "[1][0 - 1];", ErrIndexOutOfRange},
		{"property of integer", "let n = 1; n.x;", ErrUnsupported},
		{"import without importer", "import lib;", ErrNoImporter},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, _, err := run(t, tc.src, Options{})
			require.Error(t, err)
			assert.ErrorIs(t, err, tc.want)
			var rt *RuntimeError
			assert.True(t, errors.As(err, &rt), "expected RuntimeError, got %T", err)
		})
	}
}

func TestErrorsAbortButKeepSideEffects(t *testing.T) {
	_, out, err := run(t, `print("before"); missing; print("after");`, Options{})
	require.Error(t, err)
	assert.Equal(t, "before\n", out)
}

func TestMaxCallDepth(t *testing.T) {
	_, _, err := run(t, "func f() { return f(); } f();", Options{MaxCallDepth: 50})
	require.ErrorIs(t, err, ErrCallDepth)
	assert.Contains(t, err.Error(), "(50)")
}

func TestRegisterNative(t *testing.T) {
	var out bytes.Buffer
	interp := New(Options{Stdout: &out})
	var sawEnv *runtime.Environment
	interp.RegisterNative("double", runtime.IntegerType, func(ctx *runtime.NativeCallContext, args []runtime.Value) (runtime.Value, error) {
		sawEnv = ctx.Env
		n, ok := args[0].(runtime.IntegerValue)
		if !ok {
			return nil, errors.New("double expects an integer")
		}
		return runtime.IntegerValue{Val: n.Val * 2}, nil
	})

	val, err := interp.Execute(context.Background(), mustParse(t, "main.jscr", "double(21);"))
	require.NoError(t, err)
	assert.Equal(t, integer(42), val)
	require.NotNil(t, sawEnv)
	assert.Equal(t, "main.jscr", sawEnv.File())

	_, err = interp.Execute(context.Background(), mustParse(t, "main.jscr", `double("x");`))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "double expects an integer")
}

func TestEvaluateSingleNode(t *testing.T) {
	interp := New(Options{Stdout: &bytes.Buffer{}})
	env := interp.NewGlobalEnvironment("repl")

	val, err := interp.Evaluate(ast.Let("x", ast.Bin("*", ast.Num(6), ast.Num(7))), env)
	require.NoError(t, err)
	assert.Equal(t, integer(42), val)

	val, err = interp.Evaluate(ast.Arr(ast.ID("x"), ast.Str("s"), ast.Chr('c')), env)
	require.NoError(t, err)
	assert.Equal(t, "[42, \"s\", 'c']", runtime.Inspect(val))

	_, err = interp.Evaluate(ast.Ret(ast.Num(1)), env)
	assert.ErrorIs(t, err, ErrReturnOutside)

	_, err = interp.Evaluate(ast.Prop("k", nil), env)
	assert.ErrorIs(t, err, ErrUnsupported)
}

func TestCancellationBetweenStatements(t *testing.T) {
	var out bytes.Buffer
	interp := New(Options{Stdout: &out})
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	interp.RegisterNative("stop", runtime.NullType, func(*runtime.NativeCallContext, []runtime.Value) (runtime.Value, error) {
		cancel()
		return runtime.NullValue{}, nil
	})

	val, err := interp.Execute(ctx, mustParse(t, "main.jscr", `print("a"); stop(); print("b");`))
	require.NoError(t, err)
	assert.Equal(t, runtime.NullValue{}, val)
	assert.Equal(t, "a\n", out.String())

	out.Reset()
	val, err = interp.Execute(ctx, mustParse(t, "main.jscr", `print("never");`))
	require.NoError(t, err)
	assert.Equal(t, runtime.NullValue{}, val)
	assert.Empty(t, out.String())
}
