package model

// NewIdentifier returns a created Identifier node.
func NewIdentifier(name string) *Node {
	return &Node{Kind: Identifier, Name: name, Start: -1, End: -1, Created: true}
}

// NewString returns a created string Literal node.
func NewString(value string) *Node {
	return &Node{Kind: Literal, Name: value, Start: -1, End: -1, Created: true}
}

// NewArray returns a created ArrayExpression holding elements.
func NewArray(elements ...*Node) *Node {
	arr := &Node{Kind: ArrayExpression, Start: -1, End: -1, Created: true}
	for _, e := range elements {
		arr.Append(e)
	}
	return arr
}

// NewMember returns a created non-computed MemberExpression object.property.
func NewMember(object, property *Node) *Node {
	m := &Node{Kind: MemberExpression, Start: -1, End: -1, Created: true}
	object.Field = FieldObject
	property.Field = FieldProperty
	m.Append(object)
	m.Append(property)
	return m
}

// NewAssignmentStatement returns a created `left = right;` statement.
func NewAssignmentStatement(left, right *Node) *Node {
	assign := &Node{Kind: AssignmentExpression, Start: -1, End: -1, Created: true}
	left.Field = FieldLeft
	right.Field = FieldRight
	assign.Append(left)
	assign.Append(right)

	stmt := &Node{Kind: ExpressionStatement, Start: -1, End: -1, Created: true}
	stmt.Append(assign)
	return stmt
}

// Append adds child as the last child of n.
func (n *Node) Append(child *Node) {
	child.Parent = n
	n.Children = append(n.Children, child)
}

// Replace puts repl at old's position under old's parent. The replacement
// inherits old's role and span. It reports false when old is detached.
func Replace(old, repl *Node) bool {
	parent := old.Parent
	i := parent.IndexOf(old)
	if i < 0 {
		return false
	}
	repl.Field = old.Field
	repl.Start, repl.End, repl.Pos = old.Start, old.End, old.Pos
	repl.Parent = parent
	parent.Children[i] = repl
	old.Parent = nil
	return true
}

// Wrap replaces n with an array whose elements are elements followed by n.
// The array takes n's place and n becomes its last element.
func Wrap(n *Node, elements ...*Node) *Node {
	arr := NewArray(elements...)
	if !Replace(n, arr) {
		return nil
	}
	n.Field = ""
	arr.Append(n)
	return arr
}

// Splice inserts child into the child list that holds anchor, offset
// positions away from anchor. The target index is clamped to the list, so a
// large negative offset inserts at the front and 1 inserts right after
// anchor. It reports false when anchor is detached.
func Splice(anchor *Node, offset int, child *Node) bool {
	parent := anchor.Parent
	i := parent.IndexOf(anchor)
	if i < 0 {
		return false
	}
	at := i + offset
	if at < 0 {
		at = 0
	}
	if at > len(parent.Children) {
		at = len(parent.Children)
	}
	parent.Children = append(parent.Children, nil)
	copy(parent.Children[at+1:], parent.Children[at:])
	parent.Children[at] = child
	child.Parent = parent
	return true
}

// Preorder returns n and all of its descendants in pre-order, which for a
// parsed tree is document order.
func Preorder(n *Node) []*Node {
	var out []*Node
	Walk(n, func(x *Node) bool {
		out = append(out, x)
		return true
	})
	return out
}

// Walk calls fn for n and its descendants in pre-order. Children of a node
// are skipped when fn returns false for it.
func Walk(n *Node, fn func(*Node) bool) {
	if n == nil {
		return
	}
	if !fn(n) {
		return
	}
	// Children may be rewritten while walking; iterate over a snapshot.
	children := append([]*Node(nil), n.Children...)
	for _, c := range children {
		Walk(c, fn)
	}
}
