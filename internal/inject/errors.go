package inject

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrMissingComments is returned when the file has no comment list.
	ErrMissingComments = errors.New("syntax tree has no comment list")
	// ErrUnresolvedAnnotation is returned when a marker comment has no
	// function to annotate.
	ErrUnresolvedAnnotation = errors.New("doc-tag does not annotate anything")
	// ErrNotHoistable is returned when a let or const binding is declared
	// where no statement can follow it in the same scope, such as a for
	// loop initializer.
	ErrNotHoistable = errors.New("no statement list in scope for the annotation")
	// ErrDuplicateName is returned when two annotated functions in one
	// statement list are bound to the same name.
	ErrDuplicateName = errors.New("annotated name is declared more than once")
)

// AnnotationError locates a marker comment that could not be resolved.
type AnnotationError struct {
	File    string
	Line    int
	Column  int
	Comment string
}

func (e *AnnotationError) Error() string {
	text := strings.Join(strings.Fields(e.Comment), " ")
	if len(text) > 40 {
		text = text[:40] + "..."
	}
	loc := fmt.Sprintf("%d:%d", e.Line, e.Column)
	if e.File != "" {
		loc = e.File + ":" + loc
	}
	return fmt.Sprintf("%s: %s: %s", loc, ErrUnresolvedAnnotation, text)
}

func (e *AnnotationError) Unwrap() error {
	return ErrUnresolvedAnnotation
}

// RewriteError locates a candidate that cannot be annotated safely.
type RewriteError struct {
	File   string
	Line   int
	Column int
	Name   string
	Err    error
}

func (e *RewriteError) Error() string {
	loc := fmt.Sprintf("%d:%d", e.Line, e.Column)
	if e.File != "" {
		loc = e.File + ":" + loc
	}
	return fmt.Sprintf("%s: %s: %s", loc, e.Err, e.Name)
}

func (e *RewriteError) Unwrap() error {
	return e.Err
}
