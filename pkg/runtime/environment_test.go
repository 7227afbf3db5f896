package runtime

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func intVar(name string, v int64, vis Visibility) *Variable {
	return &Variable{Name: name, Type: IntegerType, Value: IntegerValue{Val: v}, Visibility: vis}
}

func TestDeclareRejectsDuplicatesPerTable(t *testing.T) {
	env := NewGlobalEnvironment("main.jscr")
	require.NoError(t, env.DeclareVar(intVar("x", 1, Private)))

	err := env.DeclareVar(intVar("x", 2, Private))
	require.ErrorIs(t, err, ErrRedeclared)
	assert.Contains(t, err.Error(), "variable 'x'")

	// Separate tables do not collide.
	require.NoError(t, env.DeclareEnum(&EnumDecl{Name: "x", Members: []string{"A"}}))
	require.NoError(t, env.DeclareRecord(&RecordDecl{Name: "x"}))
	require.NoError(t, env.DeclareClass(&ClassDecl{Name: "x"}))
	assert.ErrorIs(t, env.DeclareClass(&ClassDecl{Name: "x"}), ErrRedeclared)
	assert.ErrorIs(t, env.DeclareEnum(&EnumDecl{Name: "x"}), ErrRedeclared)
	assert.ErrorIs(t, env.DeclareRecord(&RecordDecl{Name: "x"}), ErrRedeclared)

	enum, err := env.ResolveEnum("x")
	require.NoError(t, err)
	assert.Equal(t, []string{"A"}, enum.Members)
	_, err = env.ResolveRecord("missing")
	assert.ErrorIs(t, err, ErrUnresolved)
}

func TestShadowingAcrossScopes(t *testing.T) {
	global := NewGlobalEnvironment("main.jscr")
	require.NoError(t, global.DeclareVar(intVar("x", 1, Private)))

	call, err := global.NewChild(ScopeMethod)
	require.NoError(t, err)
	require.NoError(t, call.DeclareVar(intVar("x", 10, Private)))

	v, err := call.ResolveVar("x")
	require.NoError(t, err)
	assert.Equal(t, IntegerValue{Val: 10}, v)

	require.NoError(t, call.AssignVar("x", IntegerValue{Val: 11}))
	v, err = call.ResolveVar("x")
	require.NoError(t, err)
	assert.Equal(t, IntegerValue{Val: 11}, v)

	v, err = global.ResolveVar("x")
	require.NoError(t, err)
	assert.Equal(t, IntegerValue{Val: 1}, v)
}

func TestAssignReachesDeclaringScope(t *testing.T) {
	global := NewGlobalEnvironment("main.jscr")
	require.NoError(t, global.DeclareVar(intVar("count", 0, Private)))
	call, err := global.NewChild(ScopeMethod)
	require.NoError(t, err)

	require.NoError(t, call.AssignVar("count", IntegerValue{Val: 3}))
	v, err := global.ResolveVar("count")
	require.NoError(t, err)
	assert.Equal(t, IntegerValue{Val: 3}, v)

	assert.ErrorIs(t, call.AssignVar("nope", NullValue{}), ErrUnresolved)
}

func TestConstAndTypeChecks(t *testing.T) {
	env := NewGlobalEnvironment("main.jscr")
	require.NoError(t, env.DeclareVar(&Variable{Name: "pi", Type: IntegerType, Value: IntegerValue{Val: 3}, IsConstant: true}))
	assert.ErrorIs(t, env.AssignVar("pi", IntegerValue{Val: 4}), ErrConstAssignment)

	require.NoError(t, env.DeclareVar(intVar("n", 1, Private)))
	err := env.AssignVar("n", StringValue{Val: "one"})
	require.ErrorIs(t, err, ErrTypeMismatch)
	assert.Contains(t, err.Error(), "string")

	err = env.DeclareVar(&Variable{Name: "s", Type: StringType, Value: IntegerValue{Val: 1}})
	assert.ErrorIs(t, err, ErrTypeMismatch)

	// Untyped bindings accept anything.
	require.NoError(t, env.DeclareVar(&Variable{Name: "loose"}))
	v, err := env.ResolveVar("loose")
	require.NoError(t, err)
	assert.Equal(t, NullValue{}, v)
	require.NoError(t, env.AssignVar("loose", &ArrayValue{}))
}

func TestNewChildRejectsGlobal(t *testing.T) {
	env := NewGlobalEnvironment("main.jscr")
	_, err := env.NewChild(ScopeGlobal)
	assert.ErrorIs(t, err, ErrScope)

	class, err := env.NewChild(ScopeClass)
	require.NoError(t, err)
	assert.Equal(t, ScopeClass, class.Kind())
	assert.Same(t, env, class.Parent())
	assert.Equal(t, "main.jscr", class.File())

	imported := NewImportedEnvironment(env, "lib.jscr")
	assert.Equal(t, ScopeGlobal, imported.Kind())
	assert.Same(t, env, imported.Parent())
	assert.True(t, imported.IsImported())
}

func TestImportVisibility(t *testing.T) {
	lib := NewImportedEnvironment(nil, "lib.jscr")
	require.NoError(t, lib.DeclareVar(intVar("shared", 1, Public)))
	require.NoError(t, lib.DeclareVar(intVar("hidden", 2, Private)))

	main := NewGlobalEnvironment("main.jscr")
	require.NoError(t, main.DeclareImport(lib, "lib.jscr", ""))

	v, err := main.ResolveVar("shared")
	require.NoError(t, err)
	assert.Equal(t, IntegerValue{Val: 1}, v)

	_, err = main.ResolveVar("hidden")
	assert.ErrorIs(t, err, ErrUnresolved)

	// Lexical parents ignore visibility.
	require.NoError(t, main.DeclareVar(intVar("local", 3, Private)))
	child, err := main.NewChild(ScopeMethod)
	require.NoError(t, err)
	v, err = child.ResolveVar("local")
	require.NoError(t, err)
	assert.Equal(t, IntegerValue{Val: 3}, v)
	v, err = child.ResolveVar("shared")
	require.NoError(t, err)
	assert.Equal(t, IntegerValue{Val: 1}, v)

	assert.Equal(t, []string{"lib.jscr"}, main.Imports())
}

func TestImportsAreSearchedBeforeOwnTable(t *testing.T) {
	lib := NewImportedEnvironment(nil, "lib.jscr")
	require.NoError(t, lib.DeclareVar(intVar("x", 100, Public)))
	main := NewGlobalEnvironment("main.jscr")
	require.NoError(t, main.DeclareVar(intVar("x", 1, Private)))
	require.NoError(t, main.DeclareImport(lib, "lib.jscr", ""))

	v, err := main.ResolveVar("x")
	require.NoError(t, err)
	assert.Equal(t, IntegerValue{Val: 100}, v)
}

func TestImportedVarAssignmentUpdatesModule(t *testing.T) {
	lib := NewImportedEnvironment(nil, "lib.jscr")
	require.NoError(t, lib.DeclareVar(intVar("counter", 0, Public)))
	main := NewGlobalEnvironment("main.jscr")
	require.NoError(t, main.DeclareImport(lib, "lib.jscr", ""))

	require.NoError(t, main.AssignVar("counter", IntegerValue{Val: 5}))
	v, err := lib.ResolveVar("counter")
	require.NoError(t, err)
	assert.Equal(t, IntegerValue{Val: 5}, v)
}

func TestDeclareImportFailures(t *testing.T) {
	main := NewGlobalEnvironment("main.jscr")
	err := main.DeclareImport(NewImportedEnvironment(nil, "main.jscr"), "main.jscr", "")
	require.ErrorIs(t, err, ErrImport)
	assert.Contains(t, err.Error(), "cannot import itself")

	lib := NewImportedEnvironment(nil, "lib.jscr")
	require.NoError(t, main.DeclareImport(lib, "lib.jscr", "l"))
	err = main.DeclareImport(lib, "lib.jscr", "")
	require.ErrorIs(t, err, ErrImport)
	assert.Contains(t, err.Error(), "already imported")

	other := NewImportedEnvironment(nil, "other.jscr")
	err = main.DeclareImport(other, "other.jscr", "l")
	require.ErrorIs(t, err, ErrImport)
	assert.Contains(t, err.Error(), "alias 'l'")

	// Imported scopes are exempt from the self-import check.
	assert.NoError(t, lib.DeclareImport(NewImportedEnvironment(nil, "lib.jscr"), "lib.jscr", ""))
}

func TestResolveAliasAndExported(t *testing.T) {
	lib := NewImportedEnvironment(nil, "lib.jscr")
	require.NoError(t, lib.DeclareVar(intVar("pub", 1, Public)))
	require.NoError(t, lib.DeclareVar(intVar("priv", 2, Private)))
	main := NewGlobalEnvironment("main.jscr")
	require.NoError(t, main.DeclareImport(lib, "lib.jscr", "m"))

	child, err := main.NewChild(ScopeMethod)
	require.NoError(t, err)
	scope, err := child.ResolveAlias("m")
	require.NoError(t, err)
	assert.Same(t, lib, scope)

	v, err := scope.Exported("pub")
	require.NoError(t, err)
	assert.Equal(t, IntegerValue{Val: 1}, v)
	_, err = scope.Exported("priv")
	assert.ErrorIs(t, err, ErrUnresolved)

	_, err = child.ResolveAlias("nope")
	assert.ErrorIs(t, err, ErrUnresolved)
}

func TestAnnotations(t *testing.T) {
	env := NewGlobalEnvironment("main.jscr")
	require.NoError(t, env.DeclareClass(&ClassDecl{Name: "Deprecated", IsAnnotation: true, Targets: []DeclKind{DeclVar, DeclClass}}))
	require.NoError(t, env.DeclareClass(&ClassDecl{Name: "Plain"}))

	require.NoError(t, env.DeclareVar(intVar("old", 1, Private), "Deprecated"))
	require.NoError(t, env.DeclareClass(&ClassDecl{Name: "Legacy"}, "Deprecated"))

	cases := []struct {
		name string
		err  error
		msg  string
	}{
		{"unknown annotation", env.DeclareVar(intVar("a", 1, Private), "Missing"), "does not resolve"},
		{"not an annotation", env.DeclareVar(intVar("b", 1, Private), "Plain"), "is not an annotation"},
		{"wrong target", env.DeclareEnum(&EnumDecl{Name: "E"}, "Deprecated"), "cannot annotate a enum"},
		{"wrong target record", env.DeclareRecord(&RecordDecl{Name: "R"}, "Deprecated"), "cannot annotate a record"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			require.ErrorIs(t, tc.err, ErrAnnotation)
			assert.Contains(t, tc.err.Error(), tc.msg)
		})
	}

	// Failed declarations leave nothing behind.
	_, err := env.ResolveVar("a")
	assert.ErrorIs(t, err, ErrUnresolved)
}

func TestVariablesSorted(t *testing.T) {
	env := NewGlobalEnvironment("main.jscr")
	for _, name := range []string{"b", "a", "c"} {
		require.NoError(t, env.DeclareVar(&Variable{Name: name}))
	}
	assert.Equal(t, []string{"a", "b", "c"}, env.Variables())
}
