package printer

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/phobologic/nginject/internal/model"
	"github.com/phobologic/nginject/internal/parse"
)

func parseJS(t *testing.T, src string) *model.File {
	t.Helper()
	f, err := parse.Parse(context.Background(), []byte(src), "test.js", parse.Options{})
	require.NoError(t, err)
	return f
}

func hoist(anchor *model.Node, name string, offset int, params ...string) {
	var lits []*model.Node
	for _, p := range params {
		lits = append(lits, model.NewString(p))
	}
	stmt := model.NewAssignmentStatement(
		model.NewMember(model.NewIdentifier(name), model.NewIdentifier("$inject")),
		model.NewArray(lits...),
	)
	model.Splice(anchor, offset, stmt)
}

func TestPrintRoundTrip(t *testing.T) {
	t.Parallel()

	tests := []string{
		"",
		"var a = 1;\n",
		"  \n// header\n\nfunction f(a, b) {\n  return a + b; // sum\n}\n\n",
		"angular.module('m')\n  .controller('C', function($scope) {\n    $scope.x = `t${1}`;\n  });\n",
		"/* a */ /* b */ const x = (y) => ({ y });",
	}

	for _, src := range tests {
		src := src
		t.Run(src, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, src, string(Print(parseJS(t, src))))
		})
	}
}

func TestPrintWrap(t *testing.T) {
	t.Parallel()

	f := parseJS(t, "run('C', function($scope, dep) {});")
	call := f.Root.Children[0].Children[0]
	fn := call.Arguments()[1]
	model.Wrap(fn, model.NewString("$scope"), model.NewString("dep"))

	assert.Equal(t, `run('C', ["$scope", "dep", function($scope, dep) {}]);`, string(Print(f)))
}

func TestPrintHoistBeforeComment(t *testing.T) {
	t.Parallel()

	f := parseJS(t, "/* @ngInject */ function greet(a, b) { return a; }")
	hoist(f.Root.Children[0], "greet", -1000, "a", "b")

	want := "greet.$inject = [\"a\", \"b\"];\n/* @ngInject */ function greet(a, b) { return a; }"
	assert.Equal(t, want, string(Print(f)))
}

func TestPrintHoistIntoIndentedBlock(t *testing.T) {
	t.Parallel()

	src := `function outer() {
  return inner;

  // @ngInject
  function inner(a) {}
}
`
	f := parseJS(t, src)
	body := f.Root.Children[0].Child(model.FieldBody)
	hoist(body.Children[1], "inner", -1000, "a")

	want := `function outer() {
  inner.$inject = ["a"];
  return inner;

  // @ngInject
  function inner(a) {}
}
`
	assert.Equal(t, want, string(Print(f)))
}

func TestPrintHoistSingleLineBlock(t *testing.T) {
	t.Parallel()

	f := parseJS(t, "function o() { function i(a) {} }")
	body := f.Root.Children[0].Child(model.FieldBody)
	hoist(body.Children[0], "i", -1000, "a")

	assert.Equal(t, `function o() { i.$inject = ["a"]; function i(a) {} }`, string(Print(f)))
}

func TestPrintInsertAfterLast(t *testing.T) {
	t.Parallel()

	f := parseJS(t, "  const f = (x) => x;\n")
	hoist(f.Root.Children[0], "f", 1, "x")

	assert.Equal(t, "  const f = (x) => x;\n  f.$inject = [\"x\"];\n", string(Print(f)))
}

func TestPrintInsertBetween(t *testing.T) {
	t.Parallel()

	f := parseJS(t, "const f = (x) => x;\nvar after = 2;\n")
	hoist(f.Root.Children[0], "f", 1, "x")

	assert.Equal(t, "const f = (x) => x;\nf.$inject = [\"x\"];\nvar after = 2;\n", string(Print(f)))
}

func TestPrintTwoInsertionsKeepOrder(t *testing.T) {
	t.Parallel()

	f := parseJS(t, "function a(x) {}\nfunction b(y) {}\n")
	first, second := f.Root.Children[0], f.Root.Children[1]
	hoist(first, "a", -1000, "x")
	hoist(second, "b", -1000, "y")

	want := "b.$inject = [\"y\"];\na.$inject = [\"x\"];\nfunction a(x) {}\nfunction b(y) {}\n"
	assert.Equal(t, want, string(Print(f)))
}

func TestPrintEmptyArray(t *testing.T) {
	t.Parallel()

	f := parseJS(t, "function noop() {}")
	hoist(f.Root.Children[0], "noop", -1000)

	assert.Equal(t, "noop.$inject = [];\nfunction noop() {}", string(Print(f)))
}
