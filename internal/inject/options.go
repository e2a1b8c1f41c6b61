package inject

import "strings"

// Defaults for the AngularJS dependency injector.
const (
	DefaultDocTag         = "@ngInject"
	DefaultInjectProperty = "$inject"
	DefaultBaseObject     = "angular"
	DefaultBaseProperty   = "module"
)

// DefaultMethods is the closed set of module registration methods whose
// function arguments are injectable.
var DefaultMethods = []string{
	"provider", "factory", "service", "value", "constant", "animation",
	"filter", "controller", "directive", "config", "run",
}

// hoistOffset is the splice offset used to put an assignment at the very
// front of its statement list, ahead of any early return.
const hoistOffset = -1_000_000_000

// Options configures the engine. The zero value is not usable; start from
// DefaultOptions.
type Options struct {
	// DocTag marks a comment as an annotation request. Matched
	// case-insensitively anywhere in the comment text.
	DocTag string
	// InjectProperty is the property assigned on named functions.
	InjectProperty string
	// BaseObject and BaseProperty name the registry accessor that roots a
	// registration chain, as in angular.module.
	BaseObject   string
	BaseProperty string
	// Methods lists the registration method names.
	Methods []string
}

// DefaultOptions returns the AngularJS configuration.
func DefaultOptions() Options {
	return Options{
		DocTag:         DefaultDocTag,
		InjectProperty: DefaultInjectProperty,
		BaseObject:     DefaultBaseObject,
		BaseProperty:   DefaultBaseProperty,
		Methods:        append([]string(nil), DefaultMethods...),
	}
}

// IsMarker reports whether comment text carries the doc tag.
func (o Options) IsMarker(text string) bool {
	return o.DocTag != "" && strings.Contains(strings.ToLower(text), strings.ToLower(o.DocTag))
}

func (o Options) isMethod(name string) bool {
	for _, m := range o.Methods {
		if m == name {
			return true
		}
	}
	return false
}
