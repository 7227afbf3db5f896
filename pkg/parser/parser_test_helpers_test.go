package parser

import (
	"fmt"
	"strconv"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"jscr/interpreter-go/pkg/ast"
)

func mustParse(t *testing.T, src string) *ast.Program {
	t.Helper()
	program, err := ParseSource("test.jscr", src)
	require.NoError(t, err)
	return program
}

// shape renders a node as an s-expression so tests can assert tree structure
// without caring about positions.
func shape(node ast.Node) string {
	switch n := node.(type) {
	case nil:
		return "nil"
	case *ast.Program:
		return "(program" + shapeList(n.Body) + ")"
	case *ast.VarDeclaration:
		kw := "let"
		if n.IsConstant {
			kw = "const"
		}
		if n.IsPublic {
			kw = "pub " + kw
		}
		if n.Value == nil {
			return fmt.Sprintf("(%s %s)", kw, n.Identifier)
		}
		return fmt.Sprintf("(%s %s %s)", kw, n.Identifier, shape(n.Value))
	case *ast.FunctionDeclaration:
		kw := "func"
		if n.IsPublic {
			kw = "pub func"
		}
		return fmt.Sprintf("(%s %s [%s]%s)", kw, n.Name, strings.Join(n.Parameters, " "), shapeList(n.Body))
	case *ast.ReturnDeclaration:
		if n.Value == nil {
			return "(return)"
		}
		return "(return " + shape(n.Value) + ")"
	case *ast.ImportDeclaration:
		if n.Alias != "" {
			return fmt.Sprintf("(import %s as %s)", strings.Join(n.Path, "."), n.Alias)
		}
		return fmt.Sprintf("(import %s)", strings.Join(n.Path, "."))
	case *ast.AssignmentExpr:
		return fmt.Sprintf("(= %s %s)", shape(n.Target), shape(n.Value))
	case *ast.BinaryExpr:
		return fmt.Sprintf("(%s %s %s)", n.Operator, shape(n.Left), shape(n.Right))
	case *ast.CallExpr:
		parts := []string{"call", shape(n.Caller)}
		for _, arg := range n.Args {
			parts = append(parts, shape(arg))
		}
		return "(" + strings.Join(parts, " ") + ")"
	case *ast.MemberExpr:
		if n.Computed {
			return fmt.Sprintf("(index %s %s)", shape(n.Object), shape(n.Property))
		}
		return fmt.Sprintf("(. %s %s)", shape(n.Object), shape(n.Property))
	case *ast.Identifier:
		return n.Symbol
	case *ast.NumericLiteral:
		return strconv.FormatFloat(n.Value, 'f', -1, 64)
	case *ast.StringLiteral:
		return strconv.Quote(n.Value)
	case *ast.CharLiteral:
		return strconv.QuoteRune(n.Value)
	case *ast.ArrayLiteral:
		parts := []string{"array"}
		for _, el := range n.Elements {
			parts = append(parts, shape(el))
		}
		return "(" + strings.Join(parts, " ") + ")"
	case *ast.ObjectLiteral:
		parts := []string{"object"}
		for _, prop := range n.Properties {
			if prop.Value == nil {
				parts = append(parts, prop.Key)
				continue
			}
			parts = append(parts, prop.Key+":"+shape(prop.Value))
		}
		return "(" + strings.Join(parts, " ") + ")"
	default:
		return fmt.Sprintf("<%s>", node.NodeType())
	}
}

func shapeList(stmts []ast.Statement) string {
	var b strings.Builder
	for _, stmt := range stmts {
		b.WriteByte(' ')
		b.WriteString(shape(stmt))
	}
	return b.String()
}
