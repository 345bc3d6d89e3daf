package js

import (
	"blockade/pkg/html"
)

// relative resolves the sibling and child navigation properties. Shadow roots
// have no siblings; their children see the root as parent.
func (e *elementAccessor) relative(key string) *html.Node {
	n := e.node
	switch key {
	case "firstChild":
		if len(n.Children) > 0 {
			return n.Children[0]
		}
	case "lastChild":
		if len(n.Children) > 0 {
			return n.Children[len(n.Children)-1]
		}
	case "firstElementChild":
		if kids := n.ElementChildren(); len(kids) > 0 {
			return kids[0]
		}
	case "lastElementChild":
		if kids := n.ElementChildren(); len(kids) > 0 {
			return kids[len(kids)-1]
		}
	case "nextSibling":
		if i := n.IndexInParent(); i >= 0 && i+1 < len(n.Parent.Children) {
			return n.Parent.Children[i+1]
		}
	case "previousSibling":
		if i := n.IndexInParent(); i > 0 {
			return n.Parent.Children[i-1]
		}
	case "nextElementSibling":
		return n.NextElementSibling()
	case "previousElementSibling":
		return n.PreviousElementSibling()
	}
	return nil
}

// walkTree visits the light-tree elements below root in document order. The
// callback returns true to stop.
func walkTree(root *html.Node, fn func(*html.Node) bool) bool {
	for _, child := range root.Children {
		if child.IsElement() && fn(child) {
			return true
		}
		if walkTree(child, fn) {
			return true
		}
	}
	return false
}

func findFirst(root *html.Node, match func(*html.Node) bool) *html.Node {
	var found *html.Node
	walkTree(root, func(n *html.Node) bool {
		if match(n) {
			found = n
			return true
		}
		return false
	})
	return found
}

func findAll(root *html.Node, match func(*html.Node) bool) []*html.Node {
	var out []*html.Node
	walkTree(root, func(n *html.Node) bool {
		if match(n) {
			out = append(out, n)
		}
		return false
	})
	return out
}
