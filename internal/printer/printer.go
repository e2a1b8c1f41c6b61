// Package printer turns a model.File back into JavaScript source.
//
// Parsed nodes are reproduced from the original text, with the gaps between
// their children copied verbatim, so untouched code round-trips byte for
// byte. Only nodes created by the engine are generated.
package printer

import (
	"bytes"
	"strconv"

	"github.com/phobologic/nginject/internal/model"
)

type printer struct {
	src      []byte
	comments []int // comment start offsets, ascending
	buf      bytes.Buffer
}

// Print returns the source text of f.
func Print(f *model.File) []byte {
	p := &printer{src: f.Source}
	for _, c := range f.Comments {
		p.comments = append(p.comments, c.Start)
	}
	root := f.Root
	p.buf.Grow(len(f.Source) + 256)
	p.buf.Write(p.src[:root.Start])
	p.node(root)
	p.buf.Write(p.src[root.End:])
	return p.buf.Bytes()
}

func (p *printer) node(n *model.Node) {
	if n.Created {
		p.generate(n)
		return
	}
	cursor := n.Start
	for i, c := range n.Children {
		if c.Start < 0 {
			cursor = p.inserted(n, i, cursor)
			continue
		}
		p.buf.Write(p.src[cursor:c.Start])
		p.node(c)
		cursor = c.End
	}
	p.buf.Write(p.src[cursor:n.End])
}

// inserted prints the created statement list.Children[i]. It goes in front
// of the leading comments of the next original statement, on a line of its
// own, or after the previous statement when nothing follows.
func (p *printer) inserted(list *model.Node, i, cursor int) int {
	stmt := list.Children[i]

	var next *model.Node
	for _, s := range list.Children[i+1:] {
		if s.Start >= 0 {
			next = s
			break
		}
	}

	if next == nil {
		anchor := list.Start
		for j := i - 1; j >= 0; j-- {
			if list.Children[j].Start >= 0 {
				anchor = list.Children[j].Start
				break
			}
		}
		p.buf.WriteByte('\n')
		p.buf.WriteString(p.indentAt(anchor))
		p.generate(stmt)
		return cursor
	}

	at := next.Start
	if c := p.firstComment(cursor, next.Start); c >= 0 {
		at = c
	}
	p.buf.Write(p.src[cursor:at])
	p.generate(stmt)
	if p.startsLine(at) {
		p.buf.WriteByte('\n')
		p.buf.WriteString(p.indentAt(at))
	} else {
		p.buf.WriteByte(' ')
	}
	return at
}

func (p *printer) generate(n *model.Node) {
	switch n.Kind {
	case model.Identifier:
		p.buf.WriteString(n.Name)
	case model.Literal:
		p.buf.WriteString(strconv.Quote(n.Name))
	case model.ArrayExpression:
		p.buf.WriteByte('[')
		for i, el := range n.Children {
			if i > 0 {
				p.buf.WriteString(", ")
			}
			p.node(el)
		}
		p.buf.WriteByte(']')
	case model.MemberExpression:
		p.node(n.Child(model.FieldObject))
		p.buf.WriteByte('.')
		p.node(n.Child(model.FieldProperty))
	case model.AssignmentExpression:
		p.node(n.Child(model.FieldLeft))
		p.buf.WriteString(" = ")
		p.node(n.Child(model.FieldRight))
	case model.ExpressionStatement:
		for _, c := range n.Children {
			p.node(c)
		}
		p.buf.WriteByte(';')
	default:
		for _, c := range n.Children {
			p.node(c)
		}
	}
}

// firstComment returns the start of the first comment in [from, to), or -1.
func (p *printer) firstComment(from, to int) int {
	for _, c := range p.comments {
		if c >= to {
			break
		}
		if c >= from {
			return c
		}
	}
	return -1
}

// startsLine reports whether only spaces and tabs precede pos on its line.
func (p *printer) startsLine(pos int) bool {
	for i := pos - 1; i >= 0; i-- {
		switch p.src[i] {
		case '\n':
			return true
		case ' ', '\t':
		default:
			return false
		}
	}
	return true
}

// indentAt returns the leading whitespace of the line holding pos.
func (p *printer) indentAt(pos int) string {
	start := bytes.LastIndexByte(p.src[:pos], '\n') + 1
	end := start
	for end < pos && (p.src[end] == ' ' || p.src[end] == '\t') {
		end++
	}
	return string(p.src[start:end])
}
