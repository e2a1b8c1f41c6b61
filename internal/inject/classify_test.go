package inject

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

// functions returns every function node of f in document order.
func functions(f *model.File) []*model.Node {
	var out []*model.Node
	for _, n := range model.Preorder(f.Root) {
		if IsFunction(n) {
			out = append(out, n)
		}
	}
	return out
}

// firstOfKind returns the first node of the given kind in document order.
func firstOfKind(root *model.Node, kind model.Kind) *model.Node {
	for _, n := range model.Preorder(root) {
		if n.Kind == kind {
			return n
		}
	}
	return nil
}

func TestPredicatesTolerateNil(t *testing.T) {
	t.Parallel()

	opts := DefaultOptions()
	assert.False(t, IsFunction(nil))
	assert.False(t, IsFunctionNotImmediatelyInvoked(nil))
	assert.False(t, IsBlockOrProgram(nil))
	assert.False(t, opts.IsBaseExpression(nil))
	assert.False(t, opts.IsRegistrationExpression(nil))
}

func TestIsFunction(t *testing.T) {
	t.Parallel()

	f := parseJS(t, `function a() {}
var b = function() {};
var c = () => 1;
var d = function* () {};
var e = 1;`)
	assert.Len(t, functions(f), 4)
	assert.True(t, IsBlockOrProgram(f.Root))
	assert.True(t, IsBlockOrProgram(firstOfKind(f.Root, model.Block)))
	assert.False(t, IsBlockOrProgram(firstOfKind(f.Root, model.VariableDeclaration)))
}

func TestIsFunctionNotImmediatelyInvoked(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		src  string
		want bool
	}{
		{"declaration", "function a() {}", true},
		{"argument", "run(function() {});", true},
		{"iife", "(function() {})();", false},
		{"iife inner parens", "(function() {}());", false},
		{"arrow iife", "(() => 1)();", false},
		{"called result", "(function() {})().then(function() {});", false},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			fns := functions(parseJS(t, tt.src))
			require.NotEmpty(t, fns)
			assert.Equal(t, tt.want, IsFunctionNotImmediatelyInvoked(fns[0]))
		})
	}
}

func TestIsBaseExpression(t *testing.T) {
	t.Parallel()

	opts := DefaultOptions()
	tests := []struct {
		src  string
		want bool
	}{
		{"angular.module;", true},
		{"angular.modules;", false},
		{"ng.module;", false},
		{"angular.module.x;", false},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.src, func(t *testing.T) {
			t.Parallel()
			member := firstOfKind(parseJS(t, tt.src).Root, model.MemberExpression)
			require.NotNil(t, member)
			assert.Equal(t, tt.want, opts.IsBaseExpression(member))
		})
	}
}

func TestIsRegistrationExpression(t *testing.T) {
	t.Parallel()

	opts := DefaultOptions()
	tests := []struct {
		name string
		src  string
		want bool
	}{
		{"controller", "angular.module('m').controller;", true},
		{"run", "angular.module('m').run;", true},
		{"chained", "angular.module('m').config(a).run;", true},
		{"long chain", "angular.module('m').service('s', a).factory('f', b).directive;", true},
		{"unknown method", "angular.module('m').bogus;", false},
		{"broken chain", "angular.module('m').bogus(a).run;", false},
		{"not called", "angular.module.controller;", false},
		{"other base", "app.module('m').controller;", false},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			stmt := parseJS(t, tt.src).Root.Children[0]
			member := stmt.Children[0]
			require.Equal(t, model.MemberExpression, member.Kind)
			assert.Equal(t, tt.want, opts.IsRegistrationExpression(member))
		})
	}
}

func TestIsMarker(t *testing.T) {
	t.Parallel()

	opts := DefaultOptions()
	assert.True(t, opts.IsMarker("/* @ngInject */"))
	assert.True(t, opts.IsMarker("/**\n * Controller.\n * @NGINJECT\n */"))
	assert.True(t, opts.IsMarker("// see @nginject below"))
	assert.False(t, opts.IsMarker("/* ngInject */"))
	assert.False(t, Options{}.IsMarker("/* @ngInject */"))
}
