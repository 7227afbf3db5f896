package ast

type NodeType string

const (
	NodeProgram             NodeType = "Program"
	NodeVarDeclaration      NodeType = "VarDeclaration"
	NodeFunctionDeclaration NodeType = "FunctionDeclaration"
	NodeReturnDeclaration   NodeType = "ReturnDeclaration"
	NodeImportDeclaration   NodeType = "ImportDeclaration"
	NodeAssignmentExpr      NodeType = "AssignmentExpr"
	NodeBinaryExpr          NodeType = "BinaryExpr"
	NodeCallExpr            NodeType = "CallExpr"
	NodeMemberExpr          NodeType = "MemberExpr"
	NodeIdentifier          NodeType = "Identifier"
	NodeNumericLiteral      NodeType = "NumericLiteral"
	NodeStringLiteral       NodeType = "StringLiteral"
	NodeCharLiteral         NodeType = "CharLiteral"
	NodeArrayLiteral        NodeType = "ArrayLiteral"
	NodeProperty            NodeType = "Property"
	NodeObjectLiteral       NodeType = "ObjectLiteral"
)

// Position is the start location of a node. Lines are 1-based, columns 0-based.
type Position struct {
	Line   int `json:"line"`
	Column int `json:"column"`
}

type Node interface {
	NodeType() NodeType
	Pos() Position
	isNode()
}

type nodeImpl struct {
	Type     NodeType `json:"type"`
	Position Position `json:"pos"`
}

func newNodeImpl(kind NodeType) nodeImpl {
	return nodeImpl{Type: kind}
}

func (n nodeImpl) NodeType() NodeType        { return n.Type }
func (n nodeImpl) Pos() Position             { return n.Position }
func (nodeImpl) isNode()                     {}
func (n *nodeImpl) setPosition(pos Position) { n.Position = pos }

type positioned interface {
	setPosition(Position)
}

// SetPosition records the source location of node and returns it.
func SetPosition[T Node](node T, pos Position) T {
	if p, ok := any(node).(positioned); ok {
		p.setPosition(pos)
	}
	return node
}

// Marker interfaces.

type Statement interface {
	Node
	statementNode()
}

type statementMarker struct{}

func (statementMarker) statementNode() {}

type Expression interface {
	Node
	expressionNode()
	statementNode()
}

type expressionMarker struct{}

func (expressionMarker) expressionNode() {}

// Program is the root of one parsed source file.
type Program struct {
	nodeImpl

	File string      `json:"file,omitempty"`
	Body []Statement `json:"body"`
}

func NewProgram(file string, body []Statement) *Program {
	return &Program{nodeImpl: newNodeImpl(NodeProgram), File: file, Body: body}
}

// Statements

type VarDeclaration struct {
	nodeImpl
	statementMarker

	IsConstant bool       `json:"constant"`
	IsPublic   bool       `json:"public,omitempty"`
	Identifier string     `json:"identifier"`
	Value      Expression `json:"value,omitempty"`
}

func NewVarDeclaration(isConstant bool, identifier string, value Expression, isPublic bool) *VarDeclaration {
	return &VarDeclaration{nodeImpl: newNodeImpl(NodeVarDeclaration), IsConstant: isConstant, Identifier: identifier, Value: value, IsPublic: isPublic}
}

type FunctionDeclaration struct {
	nodeImpl
	statementMarker

	Parameters []string    `json:"parameters"`
	Name       string      `json:"name"`
	Body       []Statement `json:"body"`
	IsPublic   bool        `json:"public,omitempty"`
}

func NewFunctionDeclaration(name string, parameters []string, body []Statement, isPublic bool) *FunctionDeclaration {
	return &FunctionDeclaration{nodeImpl: newNodeImpl(NodeFunctionDeclaration), Name: name, Parameters: parameters, Body: body, IsPublic: isPublic}
}

type ReturnDeclaration struct {
	nodeImpl
	statementMarker

	Value Expression `json:"value,omitempty"`
}

func NewReturnDeclaration(value Expression) *ReturnDeclaration {
	return &ReturnDeclaration{nodeImpl: newNodeImpl(NodeReturnDeclaration), Value: value}
}

// ImportDeclaration names another source file by dotted path, e.g. `import util.math as m;`.
type ImportDeclaration struct {
	nodeImpl
	statementMarker

	Path  []string `json:"path"`
	Alias string   `json:"alias,omitempty"`
}

func NewImportDeclaration(path []string, alias string) *ImportDeclaration {
	return &ImportDeclaration{nodeImpl: newNodeImpl(NodeImportDeclaration), Path: path, Alias: alias}
}

// Expressions

type AssignmentExpr struct {
	nodeImpl
	expressionMarker
	statementMarker

	Target Expression `json:"target"`
	Value  Expression `json:"value"`
}

func NewAssignmentExpr(target, value Expression) *AssignmentExpr {
	return &AssignmentExpr{nodeImpl: newNodeImpl(NodeAssignmentExpr), Target: target, Value: value}
}

type BinaryExpr struct {
	nodeImpl
	expressionMarker
	statementMarker

	Operator string     `json:"operator"`
	Left     Expression `json:"left"`
	Right    Expression `json:"right"`
}

func NewBinaryExpr(operator string, left, right Expression) *BinaryExpr {
	return &BinaryExpr{nodeImpl: newNodeImpl(NodeBinaryExpr), Operator: operator, Left: left, Right: right}
}

type CallExpr struct {
	nodeImpl
	expressionMarker
	statementMarker

	Caller Expression   `json:"caller"`
	Args   []Expression `json:"args"`
}

func NewCallExpr(caller Expression, args []Expression) *CallExpr {
	return &CallExpr{nodeImpl: newNodeImpl(NodeCallExpr), Caller: caller, Args: args}
}

type MemberExpr struct {
	nodeImpl
	expressionMarker
	statementMarker

	Object   Expression `json:"object"`
	Property Expression `json:"property"`
	Computed bool       `json:"computed"`
}

func NewMemberExpr(object, property Expression, computed bool) *MemberExpr {
	return &MemberExpr{nodeImpl: newNodeImpl(NodeMemberExpr), Object: object, Property: property, Computed: computed}
}

type Identifier struct {
	nodeImpl
	expressionMarker
	statementMarker

	Symbol string `json:"symbol"`
}

func NewIdentifier(symbol string) *Identifier {
	return &Identifier{nodeImpl: newNodeImpl(NodeIdentifier), Symbol: symbol}
}

type NumericLiteral struct {
	nodeImpl
	expressionMarker
	statementMarker

	Value float64 `json:"value"`
}

func NewNumericLiteral(value float64) *NumericLiteral {
	return &NumericLiteral{nodeImpl: newNodeImpl(NodeNumericLiteral), Value: value}
}

type StringLiteral struct {
	nodeImpl
	expressionMarker
	statementMarker

	Value string `json:"value"`
}

func NewStringLiteral(value string) *StringLiteral {
	return &StringLiteral{nodeImpl: newNodeImpl(NodeStringLiteral), Value: value}
}

type CharLiteral struct {
	nodeImpl
	expressionMarker
	statementMarker

	Value rune `json:"value"`
}

func NewCharLiteral(value rune) *CharLiteral {
	return &CharLiteral{nodeImpl: newNodeImpl(NodeCharLiteral), Value: value}
}

type ArrayLiteral struct {
	nodeImpl
	expressionMarker
	statementMarker

	Elements []Expression `json:"elements"`
}

func NewArrayLiteral(elements []Expression) *ArrayLiteral {
	return &ArrayLiteral{nodeImpl: newNodeImpl(NodeArrayLiteral), Elements: elements}
}

// Property is one object literal entry. Value is nil for shorthand entries.
type Property struct {
	nodeImpl
	expressionMarker
	statementMarker

	Key   string     `json:"key"`
	Value Expression `json:"value,omitempty"`
}

func NewProperty(key string, value Expression) *Property {
	return &Property{nodeImpl: newNodeImpl(NodeProperty), Key: key, Value: value}
}

type ObjectLiteral struct {
	nodeImpl
	expressionMarker
	statementMarker

	Properties []*Property `json:"properties"`
}

func NewObjectLiteral(properties []*Property) *ObjectLiteral {
	return &ObjectLiteral{nodeImpl: newNodeImpl(NodeObjectLiteral), Properties: properties}
}
