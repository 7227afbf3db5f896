package ast

// Builders used by tests and by tooling that synthesizes trees.

func Prog(body ...Statement) *Program {
	return NewProgram("", body)
}

func ID(symbol string) *Identifier {
	return NewIdentifier(symbol)
}

func Num(value float64) *NumericLiteral {
	return NewNumericLiteral(value)
}

func Str(value string) *StringLiteral {
	return NewStringLiteral(value)
}

func Chr(value rune) *CharLiteral {
	return NewCharLiteral(value)
}

func Arr(elements ...Expression) *ArrayLiteral {
	return NewArrayLiteral(elements)
}

func Bin(op string, left, right Expression) *BinaryExpr {
	return NewBinaryExpr(op, left, right)
}

func Call(caller Expression, args ...Expression) *CallExpr {
	return NewCallExpr(caller, args)
}

// Member builds obj.name.
func Member(object Expression, name string) *MemberExpr {
	return NewMemberExpr(object, NewIdentifier(name), false)
}

// Index builds obj[index].
func Index(object, index Expression) *MemberExpr {
	return NewMemberExpr(object, index, true)
}

func Assign(target, value Expression) *AssignmentExpr {
	return NewAssignmentExpr(target, value)
}

func Prop(key string, value Expression) *Property {
	return NewProperty(key, value)
}

func Obj(props ...*Property) *ObjectLiteral {
	return NewObjectLiteral(props)
}

func Let(name string, value Expression) *VarDeclaration {
	return NewVarDeclaration(false, name, value, false)
}

func Const(name string, value Expression) *VarDeclaration {
	return NewVarDeclaration(true, name, value, false)
}

func Fn(name string, params []string, body ...Statement) *FunctionDeclaration {
	return NewFunctionDeclaration(name, params, body, false)
}

func Ret(value Expression) *ReturnDeclaration {
	return NewReturnDeclaration(value)
}

func Imp(alias string, path ...string) *ImportDeclaration {
	return NewImportDeclaration(path, alias)
}
