package html

import (
	"errors"
	"sort"
	"strings"

	"golang.org/x/net/html/atom"
)

var (
	// ErrShadowRootExists is returned when attaching a second shadow root.
	ErrShadowRootExists = errors.New("html: element already hosts a shadow root")
	// ErrNotShadowHost is returned for elements that cannot host a shadow root.
	ErrNotShadowHost = errors.New("html: element cannot host a shadow root")
)

type Node struct {
	Type       NodeType
	TagName    string
	Attributes map[string]string
	Text       string
	Children   []*Node
	Parent     *Node

	// ShadowRoot is the composition root hosted by this element, if any.
	ShadowRoot *Node
	// Host is set on shadow roots and points back at the hosting element.
	Host *Node
	// Mode is "open" or "closed" for shadow roots.
	Mode string
}

type NodeType int

const (
	ElementNode NodeType = iota
	TextNode
	FragmentNode
)

type Document struct {
	Root    *Node
	Scripts []string // JavaScript from <script> tags
}

func NewDocument() *Document {
	return &Document{
		Root: &Node{
			Type:     ElementNode,
			TagName:  "document",
			Children: make([]*Node, 0),
		},
		Scripts: make([]string, 0),
	}
}

// NewElement returns a detached element with an empty attribute map.
func NewElement(tag string, attrs ...string) *Node {
	n := &Node{
		Type:       ElementNode,
		TagName:    strings.ToLower(tag),
		Attributes: make(map[string]string, len(attrs)/2),
		Children:   make([]*Node, 0),
	}
	for i := 0; i+1 < len(attrs); i += 2 {
		n.Attributes[attrs[i]] = attrs[i+1]
	}
	return n
}

// Body returns the <body> element, looking through an optional <html> wrapper.
func (d *Document) Body() *Node {
	for _, child := range d.Root.Children {
		if child.IsElement() && child.TagName == "body" {
			return child
		}
		if child.IsElement() && child.TagName == "html" {
			for _, grandchild := range child.Children {
				if grandchild.IsElement() && grandchild.TagName == "body" {
					return grandchild
				}
			}
		}
	}
	return nil
}

// Anchor is the node inert propagation stops at: the body when there is one,
// otherwise the synthetic document root.
func (d *Document) Anchor() *Node {
	if body := d.Body(); body != nil {
		return body
	}
	return d.Root
}

func (n *Node) IsElement() bool {
	return n != nil && n.Type == ElementNode
}

// Atom returns the tag's interned atom, or 0 for custom elements.
func (n *Node) Atom() atom.Atom {
	if !n.IsElement() {
		return 0
	}
	return atom.Lookup([]byte(n.TagName))
}

// InTemplate reports whether n is content of an ordinary <template>, which
// is never rendered and whose scripts never run. Ancestors are followed
// through shadow roots to their hosts.
func (n *Node) InTemplate() bool {
	for p := n.Parent; p != nil; {
		if p.IsElement() && p.Atom() == atom.Template {
			return true
		}
		if p.Parent == nil {
			p = p.Host
		} else {
			p = p.Parent
		}
	}
	return false
}

// Inertable reports whether inert state means anything for this node.
// Non-rendering elements never carry it.
func (n *Node) Inertable() bool {
	if !n.IsElement() {
		return false
	}
	switch n.Atom() {
	case atom.Style, atom.Template, atom.Script:
		return false
	}
	return true
}

func (n *Node) GetAttribute(name string) (string, bool) {
	if n.Attributes == nil {
		return "", false
	}
	val, ok := n.Attributes[name]
	return val, ok
}

func (n *Node) HasAttribute(name string) bool {
	_, ok := n.GetAttribute(name)
	return ok
}

func (n *Node) SetAttribute(name, value string) {
	if n.Attributes == nil {
		n.Attributes = make(map[string]string)
	}
	n.Attributes[name] = value
}

func (n *Node) RemoveAttribute(name string) {
	delete(n.Attributes, name)
}

// Classes returns the tokens of the class attribute.
func (n *Node) Classes() []string {
	attr, _ := n.GetAttribute("class")
	return strings.Fields(attr)
}

func (n *Node) HasClass(token string) bool {
	for _, c := range n.Classes() {
		if c == token {
			return true
		}
	}
	return false
}

// SetClass adds or removes one class token. The attribute is only rewritten
// when the token set changes.
func (n *Node) SetClass(token string, on bool) {
	if n.HasClass(token) == on {
		return
	}
	var out []string
	for _, c := range n.Classes() {
		if c != token {
			out = append(out, c)
		}
	}
	if on {
		out = append(out, token)
	}
	n.SetAttribute("class", strings.Join(out, " "))
}

// Inert reports whether the node itself carries the inert attribute.
func (n *Node) Inert() bool {
	return n.IsElement() && n.HasAttribute("inert")
}

// SetInert adds or removes the inert attribute. Repeated calls are no-ops.
func (n *Node) SetInert(inert bool) {
	if !n.IsElement() {
		return
	}
	if inert {
		n.SetAttribute("inert", "")
		return
	}
	n.RemoveAttribute("inert")
}

// AttachShadow creates an empty shadow root on n. Mode defaults to "open".
func (n *Node) AttachShadow(mode string) (*Node, error) {
	if !n.IsElement() || n.TagName == "document" || !n.Inertable() {
		return nil, ErrNotShadowHost
	}
	if n.ShadowRoot != nil {
		return nil, ErrShadowRootExists
	}
	if mode != "closed" {
		mode = "open"
	}
	n.ShadowRoot = &Node{
		Type:     FragmentNode,
		Children: make([]*Node, 0),
		Host:     n,
		Mode:     mode,
	}
	return n.ShadowRoot, nil
}

// AddChild adds a child node and sets up the parent relationship
func (n *Node) AddChild(child *Node) {
	child.Parent = n
	n.Children = append(n.Children, child)
}

// AppendText creates a text node and adds it as a child
func (n *Node) AppendText(text string) {
	if text == "" {
		return
	}
	n.AddChild(&Node{Type: TextNode, Text: text})
}

// RemoveChild removes the given child from this node's children list,
// clears its parent pointer, and returns the removed child.
// Returns nil if child is not found.
func (n *Node) RemoveChild(child *Node) *Node {
	for i, c := range n.Children {
		if c == child {
			n.Children = append(n.Children[:i], n.Children[i+1:]...)
			child.Parent = nil
			return child
		}
	}
	return nil
}

// InsertBefore inserts newChild before refChild, appending when refChild is
// nil or not a child of n. newChild is detached from any previous parent.
func (n *Node) InsertBefore(newChild, refChild *Node) *Node {
	if newChild.Parent != nil {
		newChild.Parent.RemoveChild(newChild)
	}
	if i := indexOf(n.Children, refChild); refChild != nil && i >= 0 {
		n.Children = append(n.Children, nil)
		copy(n.Children[i+1:], n.Children[i:])
		n.Children[i] = newChild
		newChild.Parent = n
		return newChild
	}
	n.AddChild(newChild)
	return newChild
}

// CloneNode returns a copy of the node without a parent. A deep clone also
// copies descendants and any shadow root.
func (n *Node) CloneNode(deep bool) *Node {
	clone := &Node{
		Type:     n.Type,
		TagName:  n.TagName,
		Text:     n.Text,
		Mode:     n.Mode,
		Children: make([]*Node, 0, len(n.Children)),
	}
	if n.Attributes != nil {
		clone.Attributes = make(map[string]string, len(n.Attributes))
		for k, v := range n.Attributes {
			clone.Attributes[k] = v
		}
	}
	if !deep {
		return clone
	}
	for _, child := range n.Children {
		clone.AddChild(child.CloneNode(true))
	}
	if n.ShadowRoot != nil {
		clone.ShadowRoot = n.ShadowRoot.CloneNode(true)
		clone.ShadowRoot.Host = clone
	}
	return clone
}

// Contains returns true if other is n or one of its light-tree descendants.
func (n *Node) Contains(other *Node) bool {
	for cur := other; cur != nil; cur = cur.Parent {
		if cur == n {
			return true
		}
	}
	return false
}

// IndexInParent returns the index of this node among its parent's children,
// or -1 if it has no parent.
func (n *Node) IndexInParent() int {
	if n.Parent == nil {
		return -1
	}
	return indexOf(n.Parent.Children, n)
}

func indexOf(nodes []*Node, n *Node) int {
	for i, c := range nodes {
		if c == n {
			return i
		}
	}
	return -1
}

// PreviousElementSibling skips text nodes. Shadow roots have no siblings.
func (n *Node) PreviousElementSibling() *Node {
	if n.Parent == nil {
		return nil
	}
	for i := n.IndexInParent() - 1; i >= 0; i-- {
		if n.Parent.Children[i].IsElement() {
			return n.Parent.Children[i]
		}
	}
	return nil
}

func (n *Node) NextElementSibling() *Node {
	if n.Parent == nil {
		return nil
	}
	idx := n.IndexInParent()
	if idx < 0 {
		return nil
	}
	for i := idx + 1; i < len(n.Parent.Children); i++ {
		if n.Parent.Children[i].IsElement() {
			return n.Parent.Children[i]
		}
	}
	return nil
}

// ElementChildren returns the element children of n in order.
func (n *Node) ElementChildren() []*Node {
	var out []*Node
	for _, c := range n.Children {
		if c.IsElement() {
			out = append(out, c)
		}
	}
	return out
}

// String renders a short tag-like description, e.g. <div id="a" class="b">.
func (n *Node) String() string {
	if n == nil {
		return "<nil>"
	}
	switch n.Type {
	case TextNode:
		return "#text"
	case FragmentNode:
		return "#shadow-root (" + n.Mode + ")"
	}
	var sb strings.Builder
	sb.WriteByte('<')
	sb.WriteString(n.TagName)
	for _, k := range []string{"id", "class"} {
		if v, ok := n.GetAttribute(k); ok && v != "" {
			sb.WriteString(" " + k + `="` + v + `"`)
		}
	}
	sb.WriteByte('>')
	return sb.String()
}

// Serialize returns the innerHTML of this node: the serialized HTML of
// all child nodes, but not the node's own tags.
func (n *Node) Serialize() string {
	var sb strings.Builder
	for _, child := range n.Children {
		if isRawTextElement(n.TagName) && child.Type == TextNode {
			sb.WriteString(child.Text)
			continue
		}
		serializeNode(&sb, child)
	}
	return sb.String()
}

// SerializeOuter returns the outerHTML of this node. Shadow roots are written
// as declarative <template shadowrootmode> children.
func (n *Node) SerializeOuter() string {
	var sb strings.Builder
	serializeNode(&sb, n)
	return sb.String()
}

func serializeNode(sb *strings.Builder, n *Node) {
	switch n.Type {
	case TextNode:
		sb.WriteString(escapeHTML(n.Text))
		return
	case FragmentNode:
		sb.WriteString(`<template shadowrootmode="` + n.Mode + `">`)
		for _, child := range n.Children {
			serializeNode(sb, child)
		}
		sb.WriteString("</template>")
		return
	}

	sb.WriteByte('<')
	sb.WriteString(n.TagName)

	// Sort attributes for deterministic output
	if len(n.Attributes) > 0 {
		keys := make([]string, 0, len(n.Attributes))
		for k := range n.Attributes {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			sb.WriteByte(' ')
			sb.WriteString(k)
			if v := n.Attributes[k]; v != "" {
				sb.WriteString(`="`)
				sb.WriteString(escapeAttr(v))
				sb.WriteByte('"')
			}
		}
	}

	if isVoidElement(n.TagName) {
		sb.WriteString(">")
		return
	}

	sb.WriteByte('>')
	if n.ShadowRoot != nil {
		serializeNode(sb, n.ShadowRoot)
	}
	for _, child := range n.Children {
		if isRawTextElement(n.TagName) && child.Type == TextNode {
			sb.WriteString(child.Text)
			continue
		}
		serializeNode(sb, child)
	}
	sb.WriteString("</")
	sb.WriteString(n.TagName)
	sb.WriteByte('>')
}

func escapeHTML(s string) string {
	s = strings.ReplaceAll(s, "&", "&amp;")
	s = strings.ReplaceAll(s, "<", "&lt;")
	s = strings.ReplaceAll(s, ">", "&gt;")
	return s
}

func escapeAttr(s string) string {
	s = strings.ReplaceAll(s, "&", "&amp;")
	s = strings.ReplaceAll(s, `"`, "&quot;")
	s = strings.ReplaceAll(s, "<", "&lt;")
	s = strings.ReplaceAll(s, ">", "&gt;")
	return s
}

func isVoidElement(tag string) bool {
	switch tag {
	case "br", "hr", "img", "input", "meta", "link", "area", "base",
		"col", "embed", "param", "source", "track", "wbr":
		return true
	}
	return false
}

func isRawTextElement(tag string) bool {
	return tag == "script" || tag == "style"
}
