// Package parse turns JavaScript source into a model.File using tree-sitter.
package parse

import (
	"context"
	"errors"
	"fmt"
	"strings"

	sitter "github.com/smacker/go-tree-sitter"

	"github.com/phobologic/nginject/internal/lang"
	"github.com/phobologic/nginject/internal/model"
)

// ErrSyntax is returned when the source does not parse cleanly.
var ErrSyntax = errors.New("syntax error")

// GeneratedFunc reports whether the statement starting at the given
// position (1-based line, 0-based column) was emitted by a compiler.
type GeneratedFunc func(line, column int) bool

// Options tunes the conversion.
type Options struct {
	// Generated marks statements as compiler output. Nil marks nothing.
	Generated GeneratedFunc
	// AllowErrors accepts trees containing ERROR or MISSING nodes.
	AllowErrors bool
}

var kindMap = map[string]model.Kind{
	"program":                        model.Program,
	"statement_block":                model.Block,
	"function_declaration":           model.FunctionDeclaration,
	"generator_function_declaration": model.FunctionDeclaration,
	"function":                       model.FunctionExpression,
	"function_expression":            model.FunctionExpression,
	"generator_function":             model.FunctionExpression,
	"arrow_function":                 model.FunctionExpression,
	"call_expression":                model.CallExpression,
	"member_expression":              model.MemberExpression,
	"identifier":                     model.Identifier,
	"property_identifier":            model.Identifier,
	"shorthand_property_identifier":  model.Identifier,
	"variable_declaration":           model.VariableDeclaration,
	"lexical_declaration":            model.VariableDeclaration,
	"variable_declarator":            model.VariableDeclarator,
	"string":                         model.Literal,
	"number":                         model.Literal,
	"template_string":                model.Literal,
	"regex":                          model.Literal,
	"true":                           model.Literal,
	"false":                          model.Literal,
	"null":                           model.Literal,
	"array":                          model.ArrayExpression,
	"assignment_expression":          model.AssignmentExpression,
	"expression_statement":           model.ExpressionStatement,
}

// fieldsByKind lists the roles worth recording for each kind.
var fieldsByKind = map[model.Kind][]string{
	model.FunctionDeclaration:  {model.FieldName, model.FieldParameters, model.FieldBody},
	model.FunctionExpression:   {model.FieldName, model.FieldParameters, model.FieldParameter, model.FieldBody},
	model.CallExpression:       {model.FieldFunction, model.FieldArguments},
	model.MemberExpression:     {model.FieldObject, model.FieldProperty},
	model.VariableDeclarator:   {model.FieldName, model.FieldValue},
	model.AssignmentExpression: {model.FieldLeft, model.FieldRight},
}

// Parse parses source and converts the tree-sitter tree into a model.File.
// filePath is recorded on the File only.
func Parse(ctx context.Context, source []byte, filePath string, opts Options) (*model.File, error) {
	parser := lang.Languages[lang.JavaScript].NewParser()
	defer parser.Close()

	tree, err := parser.ParseCtx(ctx, nil, source)
	if err != nil {
		return nil, fmt.Errorf("parsing %s: %w", filePath, err)
	}
	defer tree.Close()

	root := tree.RootNode()
	if root.HasError() && !opts.AllowErrors {
		if pos, ok := firstError(root); ok {
			return nil, fmt.Errorf("%s:%d:%d: %w", filePath, pos.Line, pos.Column, ErrSyntax)
		}
		return nil, fmt.Errorf("%s: %w", filePath, ErrSyntax)
	}

	c := &converter{
		source:   source,
		opts:     opts,
		comments: make([]*model.Comment, 0),
	}
	file := &model.File{
		Name:   filePath,
		Source: source,
		Root:   c.convert(root),
	}
	file.Comments = c.comments
	return file, nil
}

type converter struct {
	source   []byte
	opts     Options
	comments []*model.Comment
}

// convert builds the model node for n and, recursively, its named children.
// Comments are lifted out of the child lists into c.comments; each one is
// bound to the next named sibling that is not itself a comment.
func (c *converter) convert(n *sitter.Node) *model.Node {
	typ := n.Type()
	node := &model.Node{
		Kind:  kindMap[typ],
		Type:  typ,
		Start: int(n.StartByte()),
		End:   int(n.EndByte()),
		Pos:   position(n),
	}

	switch node.Kind {
	case model.Identifier:
		node.Name = lang.NodeText(n, c.source)
	case model.Literal:
		node.Name = literalValue(n, c.source)
	case model.VariableDeclaration:
		node.Name = declarationKeyword(n, c.source)
	}

	var pending []*model.Comment
	count := int(n.NamedChildCount())
	for i := 0; i < count; i++ {
		child := n.NamedChild(i)
		if child.Type() == "comment" {
			pending = append(pending, c.comment(child))
			continue
		}
		converted := c.convert(child)
		for _, cm := range pending {
			cm.Annotates = converted
		}
		pending = pending[:0]
		node.Append(converted)
	}

	c.assignFields(n, node)

	if node.Kind == model.Program || node.Kind == model.Block {
		for _, stmt := range node.Children {
			stmt.Generated = c.opts.Generated != nil && c.opts.Generated(stmt.Pos.Line, stmt.Pos.Column)
		}
	}
	return node
}

func (c *converter) comment(n *sitter.Node) *model.Comment {
	cm := &model.Comment{
		Text:  lang.NodeText(n, c.source),
		Start: int(n.StartByte()),
		End:   int(n.EndByte()),
		Pos:   position(n),
	}
	c.comments = append(c.comments, cm)
	return cm
}

// assignFields labels the children of node with the grammar field they
// occupy in n.
func (c *converter) assignFields(n *sitter.Node, node *model.Node) {
	for _, field := range fieldsByKind[node.Kind] {
		fc := n.ChildByFieldName(field)
		if fc == nil {
			continue
		}
		for _, child := range node.Children {
			if child.Field == "" && child.Start == int(fc.StartByte()) &&
				child.End == int(fc.EndByte()) && child.Type == fc.Type() {
				child.Field = field
				break
			}
		}
	}
}

func position(n *sitter.Node) model.Position {
	p := n.StartPoint()
	return model.Position{Line: int(p.Row) + 1, Column: int(p.Column)}
}

// literalValue strips the quotes from string literals; other literals keep
// their source text.
func literalValue(n *sitter.Node, source []byte) string {
	text := lang.NodeText(n, source)
	if n.Type() == "string" && len(text) >= 2 {
		return text[1 : len(text)-1]
	}
	return text
}

func declarationKeyword(n *sitter.Node, source []byte) string {
	text := lang.NodeText(n, source)
	for _, kw := range []string{"const", "let", "var"} {
		if strings.HasPrefix(text, kw) {
			return kw
		}
	}
	return ""
}

func firstError(n *sitter.Node) (model.Position, bool) {
	if n.Type() == "ERROR" || n.IsMissing() {
		return position(n), true
	}
	for i := 0; i < int(n.ChildCount()); i++ {
		if child := n.Child(i); child.HasError() || child.IsMissing() {
			if pos, ok := firstError(child); ok {
				return pos, true
			}
		}
	}
	return model.Position{}, false
}
