package inject

import "github.com/phobologic/nginject/internal/model"

// Strategy is how a function was annotated.
type Strategy string

const (
	// Inline wraps the function: ['a', 'b', function(a, b) {}].
	Inline Strategy = "inline"
	// Hoisted assigns the property: fn.$inject = ['a', 'b'].
	Hoisted Strategy = "hoisted"
)

// Annotation describes one rewrite.
type Annotation struct {
	Pos      model.Position
	Name     string
	Params   []string
	Strategy Strategy
	// Explicit is set when a marker comment asked for the annotation.
	Explicit bool
}

// edit is the planned rewrite of one candidate. A nil stmt wraps fn inline;
// otherwise the assignment is spliced into stmt's list at offset.
type edit struct {
	fn     *model.Node
	ann    Annotation
	stmt   *model.Node
	offset int
}

// plan decides how fn is annotated without touching the tree. It reports
// false when fn already carries an annotation or has no statement list to
// hoist into.
func (o Options) plan(fn *model.Node) (edit, bool, error) {
	params := paramNames(fn)
	e := edit{fn: fn, ann: Annotation{Pos: fn.Pos, Params: params}}

	declarator := assignedDeclarator(fn)
	name := ""
	switch {
	case declarator != nil:
		name = declarator.Child(model.FieldName).Name
	case fn.Kind == model.FunctionDeclaration:
		if id := fn.Child(model.FieldName); id != nil {
			name = id.Name
		}
	}

	if name == "" {
		if annotatedInline(fn) {
			return e, false, nil
		}
		e.ann.Strategy = Inline
		return e, true, nil
	}

	anchor := fn
	e.offset = hoistOffset
	if declarator != nil {
		decl := declarator.Parent
		anchor = decl
		// let and const are not initialized before their declaration runs.
		if kw := decl.Name; kw == "let" || kw == "const" {
			if !IsBlockOrProgram(decl.Parent) && decl.Parent.Type != "export_statement" {
				return e, false, &RewriteError{Line: fn.Pos.Line, Column: fn.Pos.Column, Name: name, Err: ErrNotHoistable}
			}
			e.offset = 1
		}
	}
	stmt := statementOf(anchor)
	if stmt == nil || o.hasAssignment(stmt.Parent, name) {
		return e, false, nil
	}

	e.stmt = stmt
	e.ann.Name = name
	e.ann.Strategy = Hoisted
	return e, true, nil
}

// apply performs a planned edit.
func (o Options) apply(e edit) bool {
	if e.stmt == nil {
		return model.Wrap(e.fn, literals(e.ann.Params)...) != nil
	}
	assign := model.NewAssignmentStatement(
		model.NewMember(model.NewIdentifier(e.ann.Name), model.NewIdentifier(o.InjectProperty)),
		model.NewArray(literals(e.ann.Params)...),
	)
	return model.Splice(e.stmt, e.offset, assign)
}

// assignedDeclarator returns the declarator fn initializes when fn is a
// function expression bound to a plain identifier: var f = function() {},
// also when parenthesized: var f = (function() {}).
func assignedDeclarator(fn *model.Node) *model.Node {
	if fn.Kind != model.FunctionExpression {
		return nil
	}
	value := fn
	for value.Parent != nil && value.Parent.Type == "parenthesized_expression" {
		value = value.Parent
	}
	p := value.Parent
	if p == nil || p.Kind != model.VariableDeclarator || value.Field != model.FieldValue {
		return nil
	}
	if id := p.Child(model.FieldName); id == nil || id.Kind != model.Identifier {
		return nil
	}
	return p
}

// statementOf returns the ancestor of n (or n itself) that sits directly in
// a statement list.
func statementOf(n *model.Node) *model.Node {
	for n != nil && n.Parent != nil {
		if IsBlockOrProgram(n.Parent) {
			return n
		}
		n = n.Parent
	}
	return nil
}

func paramNames(fn *model.Node) []string {
	params := fn.Params()
	names := make([]string, 0, len(params))
	for _, p := range params {
		names = append(names, paramName(p))
	}
	return names
}

// paramName returns the bound name of a parameter. Defaults and rest
// parameters yield their identifier; destructuring patterns have no single
// name and yield the first identifier they contain.
func paramName(p *model.Node) string {
	for _, n := range model.Preorder(p) {
		if n.Kind == model.Identifier {
			return n.Name
		}
	}
	return ""
}

func literals(names []string) []*model.Node {
	out := make([]*model.Node, len(names))
	for i, name := range names {
		out[i] = model.NewString(name)
	}
	return out
}

// annotatedInline reports whether fn is already the last element of an
// array whose other elements are all strings.
func annotatedInline(fn *model.Node) bool {
	arr := fn.Parent
	if arr == nil || arr.Kind != model.ArrayExpression || arr.IndexOf(fn) != len(arr.Children)-1 {
		return false
	}
	for _, el := range arr.Children[:len(arr.Children)-1] {
		if el.Kind != model.Literal || (!el.Created && el.Type != "string") {
			return false
		}
	}
	return true
}

// hasAssignment reports whether list already contains `name.<prop> = ...`.
func (o Options) hasAssignment(list *model.Node, name string) bool {
	for _, stmt := range list.Children {
		if stmt.Kind != model.ExpressionStatement || len(stmt.Children) == 0 {
			continue
		}
		assign := stmt.Children[0]
		if assign.Kind != model.AssignmentExpression {
			continue
		}
		left := assign.Child(model.FieldLeft)
		if left != nil && left.Kind == model.MemberExpression &&
			left.Child(model.FieldObject).IsIdentifier(name) &&
			left.Child(model.FieldProperty).IsIdentifier(o.InjectProperty) {
			return true
		}
	}
	return false
}
