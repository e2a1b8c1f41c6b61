package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func list(stmts ...string) *Node {
	root := &Node{Kind: Program}
	for _, name := range stmts {
		root.Append(&Node{Kind: ExpressionStatement, Name: name})
	}
	return root
}

func names(n *Node) []string {
	var out []string
	for _, c := range n.Children {
		out = append(out, c.Name)
	}
	return out
}

func TestKindString(t *testing.T) {
	t.Parallel()
	assert.Equal(t, "FunctionDeclaration", FunctionDeclaration.String())
	assert.Equal(t, "BlockStatement", Block.String())
	assert.Equal(t, "Kind(?)", Kind(99).String())
}

func TestSplice(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		anchor int
		offset int
		want   []string
	}{
		{"front", 2, -1_000_000_000, []string{"x", "a", "b", "c"}},
		{"before", 1, 0, []string{"a", "x", "b", "c"}},
		{"after", 1, 1, []string{"a", "b", "x", "c"}},
		{"past end", 2, 10, []string{"a", "b", "c", "x"}},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			root := list("a", "b", "c")
			x := &Node{Name: "x"}
			require.True(t, Splice(root.Children[tt.anchor], tt.offset, x))
			assert.Equal(t, tt.want, names(root))
			assert.Same(t, root, x.Parent)
		})
	}
}

func TestSpliceDetached(t *testing.T) {
	t.Parallel()
	assert.False(t, Splice(&Node{}, 0, &Node{}))
}

func TestWrap(t *testing.T) {
	t.Parallel()

	args := &Node{Kind: Other, Type: "arguments", Field: FieldArguments}
	call := &Node{Kind: CallExpression}
	call.Append(args)
	fn := &Node{Kind: FunctionExpression, Start: 10, End: 20}
	args.Append(&Node{Kind: Literal, Name: "C"})
	args.Append(fn)

	arr := Wrap(fn, NewString("a"), NewString("b"))
	require.NotNil(t, arr)

	assert.Same(t, arr, args.Children[1])
	assert.Same(t, args, arr.Parent)
	assert.True(t, arr.Created)
	assert.Equal(t, 10, arr.Start)
	assert.Equal(t, 20, arr.End)

	require.Len(t, arr.Children, 3)
	assert.Same(t, fn, arr.Children[2])
	assert.Same(t, arr, fn.Parent)
	for _, c := range arr.Children {
		assert.Same(t, arr, c.Parent)
	}
}

func TestNewAssignmentStatement(t *testing.T) {
	t.Parallel()

	stmt := NewAssignmentStatement(
		NewMember(NewIdentifier("greet"), NewIdentifier("$inject")),
		NewArray(NewString("a")),
	)
	assert.Equal(t, ExpressionStatement, stmt.Kind)
	assert.Equal(t, -1, stmt.Start)

	assign := stmt.Children[0]
	assert.Same(t, stmt, assign.Parent)
	left := assign.Child(FieldLeft)
	require.NotNil(t, left)
	assert.True(t, left.Child(FieldObject).IsIdentifier("greet"))
	assert.True(t, left.Child(FieldProperty).IsIdentifier("$inject"))
	right := assign.Child(FieldRight)
	require.NotNil(t, right)
	assert.Equal(t, ArrayExpression, right.Kind)
}

func TestPreorderAndWalk(t *testing.T) {
	t.Parallel()

	root := list("a", "b")
	root.Children[0].Append(&Node{Name: "a1"})

	var got []string
	for _, n := range Preorder(root) {
		got = append(got, n.Name)
	}
	assert.Equal(t, []string{"", "a", "a1", "b"}, got)

	got = nil
	Walk(root, func(n *Node) bool {
		got = append(got, n.Name)
		return n.Name != "a"
	})
	assert.Equal(t, []string{"", "a", "b"}, got)
}

func TestParams(t *testing.T) {
	t.Parallel()

	fn := &Node{Kind: FunctionExpression}
	params := &Node{Kind: Other, Type: "formal_parameters", Field: FieldParameters}
	params.Append(NewIdentifier("a"))
	fn.Append(params)
	assert.Len(t, fn.Params(), 1)

	arrow := &Node{Kind: FunctionExpression}
	p := NewIdentifier("x")
	p.Field = FieldParameter
	arrow.Append(p)
	assert.Equal(t, []*Node{p}, arrow.Params())

	var nilNode *Node
	assert.Nil(t, nilNode.Params())
	assert.Nil(t, (&Node{}).Arguments())
}
