package inject

import "github.com/phobologic/nginject/internal/model"

// Dedupe concatenates the candidate lists and drops every repeat of a node
// after its first occurrence.
func Dedupe(lists ...[]*model.Node) []*model.Node {
	seen := make(map[*model.Node]struct{})
	var out []*model.Node
	for _, list := range lists {
		for _, n := range list {
			if _, ok := seen[n]; ok {
				continue
			}
			seen[n] = struct{}{}
			out = append(out, n)
		}
	}
	return out
}
