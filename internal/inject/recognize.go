package inject

import "github.com/phobologic/nginject/internal/model"

// Recognize returns, in document order, the functions passed directly to
// module registration calls such as
// angular.module('m').controller('C', function($scope) {}).
func (o Options) Recognize(root *model.Node) []*model.Node {
	var found []*model.Node
	model.Walk(root, func(n *model.Node) bool {
		if IsFunction(n) && o.isRegistrationArgument(n) {
			found = append(found, n)
		}
		return true
	})
	return found
}

func (o Options) isRegistrationArgument(fn *model.Node) bool {
	args := fn.Parent
	if args == nil || args.Field != model.FieldArguments {
		return false
	}
	call := args.Parent
	return call != nil && call.Kind == model.CallExpression &&
		o.IsRegistrationExpression(call.Child(model.FieldFunction))
}
