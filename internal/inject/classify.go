package inject

import "github.com/phobologic/nginject/internal/model"

// IsFunction reports whether n is a function declaration or expression.
func IsFunction(n *model.Node) bool {
	return n != nil && (n.Kind == model.FunctionDeclaration || n.Kind == model.FunctionExpression)
}

// IsFunctionNotImmediatelyInvoked reports whether n is a function that is
// not the callee of a call, looking through parentheses: (function() {})().
func IsFunctionNotImmediatelyInvoked(n *model.Node) bool {
	if !IsFunction(n) {
		return false
	}
	callee := n
	parent := n.Parent
	for parent != nil && parent.Type == "parenthesized_expression" {
		callee = parent
		parent = parent.Parent
	}
	if parent == nil || parent.Kind != model.CallExpression {
		return true
	}
	return parent.Child(model.FieldFunction) != callee
}

// IsBlockOrProgram reports whether n holds a statement list.
func IsBlockOrProgram(n *model.Node) bool {
	return n != nil && (n.Kind == model.Block || n.Kind == model.Program)
}

// IsBaseExpression reports whether n is the registry accessor, e.g.
// angular.module.
func (o Options) IsBaseExpression(n *model.Node) bool {
	return n != nil && n.Kind == model.MemberExpression &&
		n.Child(model.FieldObject).IsIdentifier(o.BaseObject) &&
		n.Child(model.FieldProperty).IsIdentifier(o.BaseProperty)
}

// IsRegistrationExpression reports whether n is a member expression naming
// a registration method on the result of the registry accessor or of
// another registration: angular.module('m').config(f).run.
func (o Options) IsRegistrationExpression(n *model.Node) bool {
	if n == nil || n.Kind != model.MemberExpression {
		return false
	}
	prop := n.Child(model.FieldProperty)
	if prop == nil || prop.Kind != model.Identifier || !o.isMethod(prop.Name) {
		return false
	}
	obj := n.Child(model.FieldObject)
	if obj == nil || obj.Kind != model.CallExpression {
		return false
	}
	callee := obj.Child(model.FieldFunction)
	return o.IsBaseExpression(callee) || o.IsRegistrationExpression(callee)
}
