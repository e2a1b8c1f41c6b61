// Package model defines the syntax tree the annotation engine works on.
//
// The tree is owned top-down through Children; Parent is a back-reference
// kept only for upward traversal and is reassigned whenever a node moves.
package model

// Kind identifies the syntactic variant of a Node.
type Kind int

const (
	Other Kind = iota
	Program
	Block
	FunctionDeclaration
	FunctionExpression
	CallExpression
	MemberExpression
	Identifier
	VariableDeclaration
	VariableDeclarator
	Literal
	ArrayExpression
	AssignmentExpression
	ExpressionStatement
)

var kindNames = [...]string{
	Other:                "Other",
	Program:              "Program",
	Block:                "BlockStatement",
	FunctionDeclaration:  "FunctionDeclaration",
	FunctionExpression:   "FunctionExpression",
	CallExpression:       "CallExpression",
	MemberExpression:     "MemberExpression",
	Identifier:           "Identifier",
	VariableDeclaration:  "VariableDeclaration",
	VariableDeclarator:   "VariableDeclarator",
	Literal:              "Literal",
	ArrayExpression:      "ArrayExpression",
	AssignmentExpression: "AssignmentExpression",
	ExpressionStatement:  "ExpressionStatement",
}

func (k Kind) String() string {
	if k < 0 || int(k) >= len(kindNames) {
		return "Kind(?)"
	}
	return kindNames[k]
}

// Field names used to address children by syntactic role.
// They match the tree-sitter JavaScript grammar's field names.
const (
	FieldName       = "name"
	FieldParameters = "parameters"
	FieldParameter  = "parameter"
	FieldBody       = "body"
	FieldFunction   = "function"
	FieldArguments  = "arguments"
	FieldObject     = "object"
	FieldProperty   = "property"
	FieldValue      = "value"
	FieldLeft       = "left"
	FieldRight      = "right"
)

// Position is a source location: 1-based line, 0-based byte column.
type Position struct {
	Line   int
	Column int
}

// Node is a single syntax tree node.
type Node struct {
	Kind Kind
	// Type is the grammar node type ("arrow_function", "formal_parameters").
	// Empty for nodes created by the engine.
	Type string
	// Field is the role this node plays under its parent, if any.
	Field string
	// Name holds the identifier name for Identifier nodes, the unquoted
	// value for Literal nodes and the keyword (var, let, const) for
	// VariableDeclaration nodes.
	Name string

	Parent   *Node
	Children []*Node

	// Start and End are byte offsets into the original source.
	Start, End int
	Pos        Position

	// Generated marks nodes emitted by an earlier compilation step rather
	// than written by hand.
	Generated bool
	// Created marks nodes built by the engine. A created node that replaces
	// an original one keeps its span so the printer knows where it goes;
	// a created statement has Start == End == -1.
	Created bool
}

// Comment is a source comment. Annotates is the node the comment precedes,
// or nil when nothing follows it.
type Comment struct {
	Text      string
	Start     int
	End       int
	Pos       Position
	Annotates *Node
}

// File is a parsed source file: the Program root, its comments in document
// order and the source the spans refer to.
type File struct {
	Name     string
	Source   []byte
	Root     *Node
	Comments []*Comment
}

// Child returns the first child playing the given role, or nil.
func (n *Node) Child(field string) *Node {
	if n == nil {
		return nil
	}
	for _, c := range n.Children {
		if c.Field == field {
			return c
		}
	}
	return nil
}

// IndexOf returns the position of child in n.Children, or -1.
func (n *Node) IndexOf(child *Node) int {
	if n == nil {
		return -1
	}
	for i, c := range n.Children {
		if c == child {
			return i
		}
	}
	return -1
}

// IsIdentifier reports whether n is an Identifier with the given name.
func (n *Node) IsIdentifier(name string) bool {
	return n != nil && n.Kind == Identifier && n.Name == name
}

// Params returns the parameter nodes of a function, in source order.
func (n *Node) Params() []*Node {
	if n == nil {
		return nil
	}
	if p := n.Child(FieldParameters); p != nil {
		return p.Children
	}
	// Arrow functions with a single bare parameter: x => x
	if p := n.Child(FieldParameter); p != nil {
		return []*Node{p}
	}
	return nil
}

// Arguments returns the argument nodes of a call expression.
func (n *Node) Arguments() []*Node {
	if args := n.Child(FieldArguments); args != nil {
		return args.Children
	}
	return nil
}
