package inject

import "github.com/phobologic/nginject/internal/model"

// Associate returns the function a marker comment documents.
//
// When the comment precedes a statement, the search covers that statement
// and any run of generated statements up to and including the first
// hand-written one. Otherwise only the annotated node is searched. Within
// the window the first function in document order that is not immediately
// invoked wins.
func Associate(c *model.Comment) (*model.Node, error) {
	for _, stmt := range window(c.Annotates) {
		for _, n := range model.Preorder(stmt) {
			if IsFunctionNotImmediatelyInvoked(n) {
				return n, nil
			}
		}
	}
	return nil, &AnnotationError{
		Line:    c.Pos.Line,
		Column:  c.Pos.Column,
		Comment: c.Text,
	}
}

func window(target *model.Node) []*model.Node {
	if target == nil {
		return nil
	}
	parent := target.Parent
	if !IsBlockOrProgram(parent) {
		return []*model.Node{target}
	}
	stmts := parent.Children
	start := parent.IndexOf(target)
	if start < 0 {
		return []*model.Node{target}
	}
	for i := start; i < len(stmts); i++ {
		if !stmts[i].Generated {
			return stmts[start : i+1]
		}
	}
	return stmts[start:]
}
