package toon

import (
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/phobologic/nginject/internal/inject"
	"github.com/phobologic/nginject/internal/model"
)

func TestEncodeValue(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		in   string
		want string
	}{
		{"empty", "", `""`},
		{"simple", "hello", "hello"},
		{"leading space", " hello", `" hello"`},
		{"trailing space", "hello ", `"hello "`},
		{"newline", "a\nb", `"a\nb"`},
		{"tab", "a\tb", `"a\tb"`},
		{"true keyword", "true", `"true"`},
		{"null keyword", "null", `"null"`},
		{"integer", "42", "42"},
		{"negative integer", "-1", "-1"},
		{"comma", "a,b", `"a,b"`},
		{"colon", "a:b", `"a:b"`},
		{"quote", `a"b`, `"a\"b"`},
		{"backslash", `a\b`, `"a\\b"`},
		{"bracket", "a[b", `"a[b"`},
		{"dash prefix", "-foo", `"-foo"`},
		{"path", "src/app.js", "src/app.js"},
		{"injectable", "$scope", "$scope"},
		{"param list", "$scope $http", "$scope $http"},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, encodeValue(tt.in))
		})
	}
}

func TestEncode(t *testing.T) {
	t.Parallel()

	r := &Report{
		Root: "web",
		Files: []File{
			{
				Path:   "src/app.js",
				Status: Changed,
				Annotations: []inject.Annotation{
					{
						Pos:      model.Position{Line: 3, Column: 0},
						Name:     "MainCtrl",
						Params:   []string{"$scope", "$http"},
						Strategy: inject.Hoisted,
						Explicit: true,
					},
					{
						Pos:      model.Position{Line: 9, Column: 26},
						Params:   []string{"$rootScope"},
						Strategy: inject.Inline,
					},
				},
			},
			{Path: "src/util.js", Status: Unchanged},
		},
	}

	want := []string{
		"root: web",
		"files[2]{path,status,annotations}:",
		"  src/app.js,changed,2",
		"  src/util.js,unchanged,0",
		"annotations[2]{file,line,column,name,strategy,source,params}:",
		"  src/app.js,3,0,MainCtrl,hoisted,explicit,$scope $http",
		`  src/app.js,9,26,"",inline,implicit,$rootScope`,
	}
	assert.Equal(t, want, strings.Split(Encode(r), "\n"))
}

func TestEncodeErrors(t *testing.T) {
	t.Parallel()

	r := &Report{
		Root: "web",
		Files: []File{
			{Path: "bad.js", Status: Failed, Err: errors.New("bad.js:1:0: syntax error")},
		},
	}

	assert.Contains(t, Encode(r), "errors[1]{file,error}:\n  bad.js,\"bad.js:1:0: syntax error\"")
}

func TestEncodeEmpty(t *testing.T) {
	t.Parallel()

	got := Encode(&Report{Root: "empty"})
	assert.Contains(t, got, "files[0]{path,status,annotations}:")
	assert.NotContains(t, got, "errors[")
}
