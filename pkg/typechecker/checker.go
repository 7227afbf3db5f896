package typechecker

import (
	"cmp"
	"errors"
	"fmt"
	"slices"

	"jscr/interpreter-go/pkg/ast"
	"jscr/interpreter-go/pkg/runtime"
)

type DiagnosticSeverity int

const (
	SeverityError DiagnosticSeverity = iota
	SeverityWarning
)

func (s DiagnosticSeverity) String() string {
	if s == SeverityWarning {
		return "warning"
	}
	return "error"
}

// Diagnostic is one problem found by the checker.
type Diagnostic struct {
	Severity DiagnosticSeverity
	Message  string
	File     string
	Node     ast.Node
}

func (d Diagnostic) String() string {
	pos := d.Node.Pos()
	return fmt.Sprintf("%s:%d:%d: %s: %s", d.File, pos.Line, pos.Column, d.Severity, d.Message)
}

// Checker performs the static checks run by `jscr check`. It walks the tree
// with the same scope model the interpreter uses, without evaluating
// anything.
type Checker struct {
	file        string
	diags       []Diagnostic
	skipLookups bool
}

func New() *Checker {
	return &Checker{}
}

type pendingBody struct {
	fn  *ast.FunctionDeclaration
	env *runtime.Environment
}

// CheckProgram returns the diagnostics for program, ordered by position.
// Unresolved identifiers are only reported for programs without imports,
// since imported names are not known statically.
func (c *Checker) CheckProgram(program *ast.Program) []Diagnostic {
	c.file = program.File
	c.diags = nil
	c.skipLookups = hasImports(program.Body)

	env := runtime.NewGlobalEnvironment(program.File)
	declareBuiltins(env)
	c.checkBlock(program.Body, env, false)

	slices.SortStableFunc(c.diags, func(a, b Diagnostic) int {
		pa, pb := a.Node.Pos(), b.Node.Pos()
		if pa.Line != pb.Line {
			return cmp.Compare(pa.Line, pb.Line)
		}
		return cmp.Compare(pa.Column, pb.Column)
	})
	return c.diags
}

func declareBuiltins(env *runtime.Environment) {
	for _, name := range []string{"true", "false", "null"} {
		_ = env.DeclareVar(&runtime.Variable{Name: name, IsConstant: true})
	}
	_ = env.DeclareVar(&runtime.Variable{
		Name:       "print",
		Type:       runtime.FunctionOf(-1),
		Value:      &runtime.NativeFunctionValue{Name: "print"},
		IsConstant: true,
	})
}

func hasImports(stmts []ast.Statement) bool {
	for _, stmt := range stmts {
		switch n := stmt.(type) {
		case *ast.ImportDeclaration:
			return true
		case *ast.FunctionDeclaration:
			if hasImports(n.Body) {
				return true
			}
		}
	}
	return false
}

func (c *Checker) report(node ast.Node, format string, args ...any) {
	c.diags = append(c.diags, Diagnostic{Severity: SeverityError, Message: fmt.Sprintf(format, args...), File: c.file, Node: node})
}

func (c *Checker) warn(node ast.Node, format string, args ...any) {
	c.diags = append(c.diags, Diagnostic{Severity: SeverityWarning, Message: fmt.Sprintf(format, args...), File: c.file, Node: node})
}

// checkBlock checks stmts in order. Function bodies are checked after the
// whole block, so they see every declaration of the enclosing scopes.
func (c *Checker) checkBlock(stmts []ast.Statement, env *runtime.Environment, inFunction bool) {
	var pending []pendingBody
	returned := false
	for _, stmt := range stmts {
		if returned {
			c.warn(stmt, "unreachable statement after return")
			returned = false
		}
		switch n := stmt.(type) {
		case *ast.VarDeclaration:
			if n.Value != nil {
				c.checkExpression(n.Value, env)
			}
			c.declare(n, env, &runtime.Variable{Name: n.Identifier, IsConstant: n.IsConstant})
		case *ast.FunctionDeclaration:
			fn := &runtime.FunctionValue{Name: n.Name, Parameters: n.Parameters}
			c.declare(n, env, &runtime.Variable{Name: n.Name, Type: runtime.TypeOf(fn), Value: fn})
			pending = append(pending, pendingBody{fn: n, env: env})
		case *ast.ReturnDeclaration:
			if !inFunction {
				c.report(n, "return outside function")
			}
			if n.Value != nil {
				c.checkExpression(n.Value, env)
			}
			returned = inFunction
		case *ast.ImportDeclaration:
		case ast.Expression:
			c.checkExpression(n, env)
		}
	}
	for _, p := range pending {
		c.checkFunctionBody(p.fn, p.env)
	}
}

func (c *Checker) declare(node ast.Node, env *runtime.Environment, decl *runtime.Variable) {
	if err := env.DeclareVar(decl); err != nil {
		if errors.Is(err, runtime.ErrRedeclared) {
			c.report(node, "'%s' is already declared in this scope", decl.Name)
			return
		}
		c.report(node, "%s", err)
	}
}

func (c *Checker) checkFunctionBody(fn *ast.FunctionDeclaration, closure *runtime.Environment) {
	scope, err := closure.NewChild(runtime.ScopeMethod)
	if err != nil {
		c.report(fn, "%s", err)
		return
	}
	for _, param := range fn.Parameters {
		if err := scope.DeclareVar(&runtime.Variable{Name: param}); err != nil {
			c.report(fn, "duplicate parameter '%s' in function '%s'", param, fn.Name)
		}
	}
	c.checkBlock(fn.Body, scope, true)
}

func (c *Checker) checkExpression(node ast.Expression, env *runtime.Environment) {
	switch n := node.(type) {
	case *ast.Identifier:
		c.checkIdentifier(n, n.Symbol, env)
	case *ast.ArrayLiteral:
		for _, el := range n.Elements {
			c.checkExpression(el, env)
		}
	case *ast.ObjectLiteral:
		for _, prop := range n.Properties {
			if prop.Value == nil {
				c.checkIdentifier(prop, prop.Key, env)
				continue
			}
			c.checkExpression(prop.Value, env)
		}
	case *ast.AssignmentExpr:
		c.checkAssignment(n, env)
	case *ast.BinaryExpr:
		c.checkExpression(n.Left, env)
		c.checkExpression(n.Right, env)
		c.checkOperands(n)
	case *ast.MemberExpr:
		c.checkMember(n, env)
	case *ast.CallExpr:
		c.checkCall(n, env)
	}
}

func (c *Checker) checkIdentifier(node ast.Node, name string, env *runtime.Environment) {
	if c.skipLookups {
		return
	}
	if _, err := env.LookupVar(name); err != nil {
		c.report(node, "undefined identifier '%s'", name)
	}
}

func (c *Checker) checkAssignment(n *ast.AssignmentExpr, env *runtime.Environment) {
	c.checkExpression(n.Value, env)
	target, ok := n.Target.(*ast.Identifier)
	if !ok {
		c.report(n, "invalid assignment target: %s", n.Target.NodeType())
		return
	}
	decl, err := env.LookupVar(target.Symbol)
	if err != nil {
		c.checkIdentifier(target, target.Symbol, env)
		return
	}
	if decl.IsConstant {
		c.report(n, "cannot assign to constant '%s'", target.Symbol)
	}
}

func (c *Checker) checkMember(n *ast.MemberExpr, env *runtime.Environment) {
	if ident, ok := n.Object.(*ast.Identifier); ok && !n.Computed {
		if _, err := env.ResolveAlias(ident.Symbol); err == nil {
			return
		}
	}
	c.checkExpression(n.Object, env)
	if n.Computed {
		c.checkExpression(n.Property, env)
	}
}

func (c *Checker) checkCall(n *ast.CallExpr, env *runtime.Environment) {
	for _, arg := range n.Args {
		c.checkExpression(arg, env)
	}
	if kind := literalKind(n.Caller); kind != "" {
		c.report(n, "cannot call a %s literal", kind)
		return
	}
	c.checkExpression(n.Caller, env)

	ident, ok := n.Caller.(*ast.Identifier)
	if !ok {
		return
	}
	decl, err := env.LookupVar(ident.Symbol)
	if err != nil || decl.Type.Kind != runtime.TypeFunction || decl.Type.Arity < 0 {
		return
	}
	if decl.Type.Arity != len(n.Args) {
		c.report(n, "function '%s' expects %d arguments, got %d", ident.Symbol, decl.Type.Arity, len(n.Args))
	}
}

// checkOperands flags arithmetic whose operands can never be integers, and
// division by a literal zero.
func (c *Checker) checkOperands(n *ast.BinaryExpr) {
	for _, side := range []ast.Expression{n.Left, n.Right} {
		if kind := literalKind(side); kind != "" && kind != "number" {
			c.report(n, "operator %s cannot be applied to a %s literal", n.Operator, kind)
			return
		}
	}
	if lit, ok := n.Right.(*ast.NumericLiteral); ok && lit.Value == 0 && (n.Operator == "/" || n.Operator == "%") {
		c.report(n, "division by zero")
	}
}

func literalKind(node ast.Expression) string {
	switch node.(type) {
	case *ast.NumericLiteral:
		return "number"
	case *ast.StringLiteral:
		return "string"
	case *ast.CharLiteral:
		return "char"
	case *ast.ArrayLiteral:
		return "array"
	case *ast.ObjectLiteral:
		return "object"
	default:
		return ""
	}
}
