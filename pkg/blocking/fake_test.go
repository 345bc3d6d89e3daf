package blocking

import "sort"

// fakeNode is a minimal tree node. Insertion points are declared explicitly
// per node instead of being computed from slots.
type fakeNode struct {
	name        string
	kind        string
	fragment    bool
	parent      *fakeNode
	children    []*fakeNode
	shadow      *fakeNode
	host        *fakeNode
	points      []*fakeNode
	distributed []*fakeNode
	inert       bool
}

func (n *fakeNode) String() string { return n.name }

type write struct {
	name  string
	inert bool
}

type fakeTree struct {
	writes  []write
	onWrite func(*fakeNode, bool)
}

func (*fakeTree) Parent(n *fakeNode) *fakeNode {
	if n.fragment {
		return n.host
	}
	return n.parent
}

func (*fakeTree) DestinationInsertionPoints(n *fakeNode) []*fakeNode { return n.points }

func (*fakeTree) PreviousElementSibling(n *fakeNode) *fakeNode {
	if n.parent == nil {
		return nil
	}
	var prev *fakeNode
	for _, c := range n.parent.children {
		if c == n {
			return prev
		}
		prev = c
	}
	return nil
}

func (*fakeTree) NextElementSibling(n *fakeNode) *fakeNode {
	if n.parent == nil {
		return nil
	}
	for i, c := range n.parent.children {
		if c == n && i+1 < len(n.parent.children) {
			return n.parent.children[i+1]
		}
	}
	return nil
}

func (*fakeTree) IsElement(n *fakeNode) bool { return !n.fragment }

func (*fakeTree) ShadowRoot(n *fakeNode) *fakeNode { return n.shadow }

func (*fakeTree) DistributedChildren(root *fakeNode) []*fakeNode { return root.distributed }

func (*fakeTree) Inertable(n *fakeNode) bool {
	switch n.kind {
	case "style", "template", "script":
		return false
	}
	return !n.fragment
}

func (*fakeTree) IsInert(n *fakeNode) bool { return n.inert }

func (t *fakeTree) SetInert(n *fakeNode, inert bool) {
	n.inert = inert
	t.writes = append(t.writes, write{n.name, inert})
	if t.onWrite != nil {
		t.onWrite(n, inert)
	}
}

// el builds an element; children are attached in order.
func el(name string, children ...*fakeNode) *fakeNode {
	n := &fakeNode{name: name, kind: "div"}
	for _, c := range children {
		c.parent = n
		n.children = append(n.children, c)
	}
	return n
}

func kind(k string, n *fakeNode) *fakeNode {
	n.kind = k
	return n
}

// attachShadow gives host a shadow root containing children.
func attachShadow(host *fakeNode, children ...*fakeNode) *fakeNode {
	root := el(host.name+"#shadow", children...)
	root.fragment = true
	root.host = host
	host.shadow = root
	return root
}

// index maps node names to nodes for a tree, shadow roots included.
func index(root *fakeNode) map[string]*fakeNode {
	m := map[string]*fakeNode{}
	var walk func(*fakeNode)
	walk = func(n *fakeNode) {
		m[n.name] = n
		for _, c := range n.children {
			walk(c)
		}
		if n.shadow != nil {
			walk(n.shadow)
		}
	}
	walk(root)
	return m
}

// inertNames lists the inert nodes under root, sorted.
func inertNames(root *fakeNode) []string {
	var out []string
	for name, n := range index(root) {
		if n.inert {
			out = append(out, name)
		}
	}
	sort.Strings(out)
	return out
}
