// Package inject adds explicit dependency annotations to JavaScript
// functions so that AngularJS-style injection survives minification.
//
// Candidates come from two places: functions documented by a marker comment
// (/* @ngInject */) and functions passed straight to module registration
// calls (angular.module('m').controller('C', function($scope) {})). Each
// candidate is rewritten once, either wrapped in an array of its parameter
// names or given a hoisted `name.$inject = [...]` assignment.
package inject

import (
	"errors"

	"github.com/phobologic/nginject/internal/model"
)

// Annotate rewrites file.Root in place and returns the applied annotations
// in candidate order. Explicit candidates precede implicit ones.
//
// Every candidate is resolved and planned before the tree is touched, so an
// error leaves the tree unchanged.
func Annotate(file *model.File, opts Options) ([]Annotation, error) {
	if file == nil || file.Root == nil || file.Comments == nil {
		return nil, ErrMissingComments
	}

	var explicit []*model.Node
	marked := make(map[*model.Node]bool)
	for _, c := range file.Comments {
		if !opts.IsMarker(c.Text) {
			continue
		}
		fn, err := Associate(c)
		if err != nil {
			var ae *AnnotationError
			if errors.As(err, &ae) {
				ae.File = file.Name
			}
			return nil, err
		}
		explicit = append(explicit, fn)
		marked[fn] = true
	}

	implicit := opts.Recognize(file.Root)

	type binding struct {
		list *model.Node
		name string
	}
	var edits []edit
	bound := make(map[binding]bool)
	for _, fn := range Dedupe(explicit, implicit) {
		e, ok, err := opts.plan(fn)
		if err != nil {
			return nil, withFile(err, file.Name)
		}
		if !ok {
			continue
		}
		if e.stmt != nil {
			b := binding{list: e.stmt.Parent, name: e.ann.Name}
			if bound[b] {
				return nil, &RewriteError{File: file.Name, Line: fn.Pos.Line, Column: fn.Pos.Column, Name: e.ann.Name, Err: ErrDuplicateName}
			}
			bound[b] = true
		}
		e.ann.Explicit = marked[fn]
		edits = append(edits, e)
	}

	var applied []Annotation
	for _, e := range edits {
		if opts.apply(e) {
			applied = append(applied, e.ann)
		}
	}
	return applied, nil
}

func withFile(err error, name string) error {
	var re *RewriteError
	if errors.As(err, &re) {
		re.File = name
	}
	return err
}
