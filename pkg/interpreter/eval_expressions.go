package interpreter

import (
	"errors"
	"fmt"

	"jscr/interpreter-go/pkg/ast"
	"jscr/interpreter-go/pkg/observability"
	"jscr/interpreter-go/pkg/runtime"
)

func (i *Interpreter) evaluateExpression(node ast.Expression, env *runtime.Environment) (runtime.Value, error) {
	switch n := node.(type) {
	case *ast.NumericLiteral:
		return runtime.IntegerValue{Val: int64(n.Value)}, nil
	case *ast.StringLiteral:
		return runtime.StringValue{Val: n.Value}, nil
	case *ast.CharLiteral:
		return runtime.CharValue{Val: n.Value}, nil
	case *ast.ArrayLiteral:
		return i.evaluateArrayLiteral(n, env)
	case *ast.ObjectLiteral:
		return i.evaluateObjectLiteral(n, env)
	case *ast.Identifier:
		val, err := env.ResolveVar(n.Symbol)
		if err != nil {
			return nil, fail(env, n, err)
		}
		return val, nil
	case *ast.AssignmentExpr:
		return i.evaluateAssignment(n, env)
	case *ast.BinaryExpr:
		return i.evaluateBinary(n, env)
	case *ast.MemberExpr:
		return i.evaluateMember(n, env)
	case *ast.CallExpr:
		return i.evaluateCall(n, env)
	default:
		return nil, failf(env, node, ErrUnsupported, "unsupported expression type: %s", node.NodeType())
	}
}

func (i *Interpreter) evaluateArrayLiteral(n *ast.ArrayLiteral, env *runtime.Environment) (runtime.Value, error) {
	elements := make([]runtime.Value, 0, len(n.Elements))
	for _, el := range n.Elements {
		val, err := i.evaluateExpression(el, env)
		if err != nil {
			return nil, err
		}
		elements = append(elements, val)
	}
	return &runtime.ArrayValue{Elements: elements}, nil
}

// evaluateObjectLiteral builds a record. Shorthand entries read the variable
// named by the key.
func (i *Interpreter) evaluateObjectLiteral(n *ast.ObjectLiteral, env *runtime.Environment) (runtime.Value, error) {
	fields := make([]runtime.RecordField, 0, len(n.Properties))
	for _, prop := range n.Properties {
		var (
			val runtime.Value
			err error
		)
		if prop.Value == nil {
			val, err = env.ResolveVar(prop.Key)
			if err != nil {
				return nil, fail(env, prop, err)
			}
		} else {
			val, err = i.evaluateExpression(prop.Value, env)
			if err != nil {
				return nil, err
			}
		}
		fields = append(fields, runtime.RecordField{Key: prop.Key, Type: runtime.TypeOf(val), Value: val})
	}
	return &runtime.RecordValue{Fields: fields}, nil
}

func (i *Interpreter) evaluateAssignment(n *ast.AssignmentExpr, env *runtime.Environment) (runtime.Value, error) {
	target, ok := n.Target.(*ast.Identifier)
	if !ok {
		return nil, failf(env, n, ErrUnsupported, "invalid assignment target: %s", n.Target.NodeType())
	}
	value, err := i.evaluateExpression(n.Value, env)
	if err != nil {
		return nil, err
	}
	if err := env.AssignVar(target.Symbol, value); err != nil {
		return nil, fail(env, n, err)
	}
	return value, nil
}

func (i *Interpreter) evaluateBinary(n *ast.BinaryExpr, env *runtime.Environment) (runtime.Value, error) {
	left, err := i.evaluateExpression(n.Left, env)
	if err != nil {
		return nil, err
	}
	right, err := i.evaluateExpression(n.Right, env)
	if err != nil {
		return nil, err
	}

	l, lok := left.(runtime.IntegerValue)
	r, rok := right.(runtime.IntegerValue)
	if !lok || !rok {
		if i.lenient {
			return runtime.NullValue{}, nil
		}
		return nil, failf(env, n, ErrUnsupported, "unsupported operand types for %s: %s and %s", n.Operator, left.Kind(), right.Kind())
	}

	switch n.Operator {
	case "+":
		return runtime.IntegerValue{Val: l.Val + r.Val}, nil
	case "-":
		return runtime.IntegerValue{Val: l.Val - r.Val}, nil
	case "*":
		return runtime.IntegerValue{Val: l.Val * r.Val}, nil
	case "/":
		if r.Val == 0 {
			return nil, fail(env, n, ErrDivisionByZero)
		}
		return runtime.IntegerValue{Val: l.Val / r.Val}, nil
	case "%":
		if r.Val == 0 {
			return nil, failf(env, n, ErrDivisionByZero, "modulo by zero")
		}
		return runtime.IntegerValue{Val: l.Val % r.Val}, nil
	default:
		return nil, failf(env, n, ErrUnsupported, "unknown operator %q", n.Operator)
	}
}

func (i *Interpreter) evaluateMember(n *ast.MemberExpr, env *runtime.Environment) (runtime.Value, error) {
	if !n.Computed {
		if val, handled, err := i.evaluateAliasMember(n, env); handled {
			return val, err
		}
	}

	object, err := i.evaluateExpression(n.Object, env)
	if err != nil {
		return nil, err
	}

	if !n.Computed {
		prop := n.Property.(*ast.Identifier).Symbol
		switch obj := object.(type) {
		case *runtime.RecordValue:
			if val, ok := obj.Get(prop); ok {
				return val, nil
			}
			return nil, failf(env, n, runtime.ErrUnresolved, "record has no field '%s'", prop)
		case *runtime.ArrayValue:
			if prop == "length" {
				return runtime.IntegerValue{Val: int64(len(obj.Elements))}, nil
			}
		case runtime.StringValue:
			if prop == "length" {
				return runtime.IntegerValue{Val: int64(len([]rune(obj.Val)))}, nil
			}
		}
		return nil, failf(env, n, ErrUnsupported, "cannot read property '%s' of %s", prop, object.Kind())
	}

	index, err := i.evaluateExpression(n.Property, env)
	if err != nil {
		return nil, err
	}
	switch obj := object.(type) {
	case *runtime.ArrayValue:
		idx, err := indexOf(index, len(obj.Elements))
		if err != nil {
			return nil, fail(env, n, err)
		}
		return obj.Elements[idx], nil
	case runtime.StringValue:
		runes := []rune(obj.Val)
		idx, err := indexOf(index, len(runes))
		if err != nil {
			return nil, fail(env, n, err)
		}
		return runtime.CharValue{Val: runes[idx]}, nil
	case *runtime.RecordValue:
		key, ok := index.(runtime.StringValue)
		if !ok {
			return nil, failf(env, n, ErrUnsupported, "record keys must be strings, got %s", index.Kind())
		}
		if val, ok := obj.Get(key.Val); ok {
			return val, nil
		}
		return nil, failf(env, n, runtime.ErrUnresolved, "record has no field '%s'", key.Val)
	default:
		return nil, failf(env, n, ErrUnsupported, "cannot index %s", object.Kind())
	}
}

// evaluateAliasMember handles alias.name where alias names an import and not
// a variable. handled is false when n is ordinary member access.
func (i *Interpreter) evaluateAliasMember(n *ast.MemberExpr, env *runtime.Environment) (runtime.Value, bool, error) {
	ident, ok := n.Object.(*ast.Identifier)
	if !ok {
		return nil, false, nil
	}
	if _, err := env.LookupVar(ident.Symbol); err == nil {
		return nil, false, nil
	}
	module, err := env.ResolveAlias(ident.Symbol)
	if err != nil {
		return nil, false, nil
	}
	prop := n.Property.(*ast.Identifier).Symbol
	val, err := module.Exported(prop)
	if err != nil {
		return nil, true, fail(env, n, err)
	}
	return val, true, nil
}

func indexOf(index runtime.Value, length int) (int, error) {
	iv, ok := index.(runtime.IntegerValue)
	if !ok {
		return 0, fmt.Errorf("%w: index must be an integer, got %s", ErrUnsupported, index.Kind())
	}
	if iv.Val < 0 || iv.Val >= int64(length) {
		return 0, fmt.Errorf("%w: index %d, length %d", ErrIndexOutOfRange, iv.Val, length)
	}
	return int(iv.Val), nil
}

func (i *Interpreter) evaluateCall(n *ast.CallExpr, env *runtime.Environment) (runtime.Value, error) {
	callee, err := i.evaluateExpression(n.Caller, env)
	if err != nil {
		return nil, err
	}
	args := make([]runtime.Value, 0, len(n.Args))
	for _, arg := range n.Args {
		val, err := i.evaluateExpression(arg, env)
		if err != nil {
			return nil, err
		}
		args = append(args, val)
	}

	if i.state.depth >= i.maxCallDepth {
		return nil, failf(env, n, ErrCallDepth, "%s (%d)", ErrCallDepth, i.maxCallDepth)
	}
	i.state.depth++
	defer func() { i.state.depth-- }()

	val, err := i.callFunction(callee, args, env)
	if err != nil {
		return nil, fail(env, n, err)
	}
	return val, nil
}

// callFunction applies callee to already evaluated arguments. env is the
// caller's scope, handed to native functions.
func (i *Interpreter) callFunction(callee runtime.Value, args []runtime.Value, env *runtime.Environment) (runtime.Value, error) {
	switch fn := callee.(type) {
	case *runtime.NativeFunctionValue:
		observability.FunctionCalls.WithLabelValues("native").Inc()
		val, err := fn.Impl(&runtime.NativeCallContext{Env: env, Stdout: i.stdout}, args)
		if err != nil {
			return nil, err
		}
		if val == nil {
			val = runtime.NullValue{}
		}
		return val, nil
	case *runtime.FunctionValue:
		observability.FunctionCalls.WithLabelValues("user").Inc()
		return i.invokeFunction(fn, args)
	default:
		return nil, fmt.Errorf("%w: %s", ErrNotCallable, runtime.Inspect(callee))
	}
}

func (i *Interpreter) invokeFunction(fn *runtime.FunctionValue, args []runtime.Value) (runtime.Value, error) {
	if len(args) != len(fn.Parameters) {
		return nil, fmt.Errorf("%w: function '%s' expects %d, got %d", ErrArity, fn.Name, len(fn.Parameters), len(args))
	}
	scope, err := fn.Closure.NewChild(runtime.ScopeMethod)
	if err != nil {
		return nil, err
	}
	for idx, param := range fn.Parameters {
		if err := scope.DeclareVar(&runtime.Variable{Name: param, Value: args[idx]}); err != nil {
			return nil, err
		}
	}
	for _, stmt := range fn.Body {
		if _, err := i.evaluateStatement(stmt, scope); err != nil {
			var ret returnSignal
			if errors.As(err, &ret) {
				return ret.value, nil
			}
			return nil, err
		}
	}
	return runtime.NullValue{}, nil
}
