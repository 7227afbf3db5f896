package interpreter

import (
	"fmt"
	"strings"

	"jscr/interpreter-go/pkg/ast"
	"jscr/interpreter-go/pkg/observability"
	"jscr/interpreter-go/pkg/runtime"
)

func (i *Interpreter) evaluateStatement(node ast.Statement, env *runtime.Environment) (runtime.Value, error) {
	switch n := node.(type) {
	case *ast.VarDeclaration:
		return i.evaluateVarDeclaration(n, env)
	case *ast.FunctionDeclaration:
		return i.evaluateFunctionDeclaration(n, env)
	case *ast.ReturnDeclaration:
		return i.evaluateReturn(n, env)
	case *ast.ImportDeclaration:
		return i.evaluateImport(n, env)
	case ast.Expression:
		return i.evaluateExpression(n, env)
	default:
		return nil, failf(env, node, ErrUnsupported, "unsupported statement type: %s", node.NodeType())
	}
}

func visibility(isPublic bool) runtime.Visibility {
	if isPublic {
		return runtime.Public
	}
	return runtime.Private
}

func (i *Interpreter) evaluateVarDeclaration(n *ast.VarDeclaration, env *runtime.Environment) (runtime.Value, error) {
	var value runtime.Value = runtime.NullValue{}
	if n.Value != nil {
		val, err := i.evaluateExpression(n.Value, env)
		if err != nil {
			return nil, err
		}
		value = val
	}
	decl := &runtime.Variable{
		Name:       n.Identifier,
		Type:       runtime.DeclaredTypeOf(value),
		Value:      value,
		IsConstant: n.IsConstant,
		Visibility: visibility(n.IsPublic),
	}
	if err := env.DeclareVar(decl); err != nil {
		return nil, fail(env, n, err)
	}
	return value, nil
}

func (i *Interpreter) evaluateFunctionDeclaration(n *ast.FunctionDeclaration, env *runtime.Environment) (runtime.Value, error) {
	fn := &runtime.FunctionValue{
		Name:       n.Name,
		ReturnType: runtime.AnyType,
		Parameters: n.Parameters,
		Closure:    env,
		Body:       n.Body,
	}
	decl := &runtime.Variable{
		Name:       n.Name,
		Type:       runtime.FunctionOf(len(n.Parameters)),
		Value:      fn,
		Visibility: visibility(n.IsPublic),
	}
	if err := env.DeclareVar(decl); err != nil {
		return nil, fail(env, n, err)
	}
	return fn, nil
}

func (i *Interpreter) evaluateReturn(n *ast.ReturnDeclaration, env *runtime.Environment) (runtime.Value, error) {
	var value runtime.Value = runtime.NullValue{}
	if n.Value != nil {
		val, err := i.evaluateExpression(n.Value, env)
		if err != nil {
			return nil, err
		}
		value = val
	}
	return nil, returnSignal{value: value}
}

// evaluateImport loads the module once per execution, evaluates it in its
// own imported scope, and registers that scope with env.
func (i *Interpreter) evaluateImport(n *ast.ImportDeclaration, env *runtime.Environment) (runtime.Value, error) {
	name := strings.Join(n.Path, ".")
	if i.importer == nil {
		return nil, failf(env, n, ErrNoImporter, "cannot import %s: %s", name, ErrNoImporter)
	}
	file, program, err := i.importer.Resolve(i.state.ctx, env.File(), n.Path)
	if err != nil {
		return nil, failf(env, n, err, "cannot import %s: %s", name, err)
	}

	if file == env.File() && !env.IsImported() {
		// DeclareImport rejects this; do not evaluate the file a second time first.
		return nil, fail(env, n, fmt.Errorf("import %s: %w", name, env.DeclareImport(env, file, n.Alias)))
	}

	moduleEnv, ok := i.state.modules[file]
	if !ok {
		if i.state.loading[file] {
			return nil, failf(env, n, runtime.ErrImport, "import cycle through %s", file)
		}
		i.state.loading[file] = true
		moduleEnv = i.newModuleEnvironment(file)
		_, err := i.evaluateProgram(program, moduleEnv)
		delete(i.state.loading, file)
		if err != nil {
			return nil, err
		}
		i.state.modules[file] = moduleEnv
		observability.ModulesLoaded.Inc()
		i.logger.Debug("module evaluated", "module", name, "path", file)
	}

	if err := env.DeclareImport(moduleEnv, file, n.Alias); err != nil {
		return nil, fail(env, n, fmt.Errorf("import %s: %w", name, err))
	}
	return runtime.NullValue{}, nil
}
