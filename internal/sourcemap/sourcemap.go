// Package sourcemap reads inline source maps embedded in compiled
// JavaScript and answers whether a position was produced by the compiler
// rather than mapped back to hand-written source.
package sourcemap

import (
	"encoding/base64"
	"fmt"
	"math"
	"regexp"

	"github.com/go-sourcemap/sourcemap"
)

var inlineRe = regexp.MustCompile(`(?://|/\*)[#@][ \t]+sourceMappingURL=data:[^;,\s]*(?:;[^;,\s]*)*;base64,([A-Za-z0-9+/=_-]+)`)

// HasInline reports whether content carries an inline base64 source map
// comment.
func HasInline(content []byte) bool {
	return inlineRe.Match(content)
}

// Inline returns the decoded JSON of the last inline source map in content.
// ok is false when there is none.
func Inline(content []byte) (data []byte, ok bool, err error) {
	matches := inlineRe.FindAllSubmatch(content, -1)
	if len(matches) == 0 {
		return nil, false, nil
	}
	payload := string(matches[len(matches)-1][1])
	for _, enc := range []*base64.Encoding{
		base64.StdEncoding,
		base64.RawStdEncoding,
		base64.URLEncoding,
		base64.RawURLEncoding,
	} {
		if data, err = enc.DecodeString(payload); err == nil {
			return data, true, nil
		}
	}
	return nil, false, fmt.Errorf("decoding inline source map: %w", err)
}

// Oracle answers whether generated positions map to original source.
// A nil Oracle treats every position as hand-written.
type Oracle struct {
	consumer *sourcemap.Consumer
}

// NewOracle builds an Oracle from the inline source map in content.
// It returns a nil Oracle and no error when content has no inline map.
func NewOracle(name string, content []byte) (*Oracle, error) {
	data, ok, err := Inline(content)
	if err != nil || !ok {
		return nil, err
	}
	c, err := sourcemap.Parse(name+".map", data)
	if err != nil {
		return nil, fmt.Errorf("parsing inline source map: %w", err)
	}
	return &Oracle{consumer: c}, nil
}

// Generated reports whether the position (1-based line, 0-based column) has
// no mapping of its own into the original sources.
func (o *Oracle) Generated(line, column int) bool {
	if o == nil {
		return false
	}
	src, _, l, c, ok := o.consumer.Source(line, column)
	if !ok {
		return true
	}
	if line <= 1 {
		return false
	}
	// Source falls back to the closest earlier mapping, which may sit on a
	// previous line. A position on an unmapped line resolves to the same
	// mapping as the end of the line before it.
	psrc, _, pl, pc, pok := o.consumer.Source(line-1, math.MaxInt32)
	return pok && psrc == src && pl == l && pc == c
}
