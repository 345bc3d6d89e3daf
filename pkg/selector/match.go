package selector

import "strings"

// Match reports whether el matches any selector in the group.
func (g Group) Match(el Element) bool {
	for _, c := range g {
		if c.Match(el) {
			return true
		}
	}
	return false
}

// Match reports whether el matches the complex selector. Matching runs from
// the rightmost compound outward, the way browsers do it.
func (c Complex) Match(el Element) bool {
	if len(c.Parts) == 0 {
		return false
	}
	return c.matchAt(el, len(c.Parts)-1)
}

func (c Complex) matchAt(el Element, i int) bool {
	if !c.Parts[i].Match(el) {
		return false
	}
	if i == 0 {
		return true
	}
	switch c.Combinators[i-1] {
	case Descendant:
		for anc, ok := el.ParentElement(); ok; anc, ok = anc.ParentElement() {
			if c.matchAt(anc, i-1) {
				return true
			}
		}
	case Child:
		if parent, ok := el.ParentElement(); ok {
			return c.matchAt(parent, i-1)
		}
	case Adjacent:
		if prev, ok := el.PreviousElementSibling(); ok {
			return c.matchAt(prev, i-1)
		}
	case Sibling:
		for prev, ok := el.PreviousElementSibling(); ok; prev, ok = prev.PreviousElementSibling() {
			if c.matchAt(prev, i-1) {
				return true
			}
		}
	}
	return false
}

// Match reports whether el satisfies every simple selector of the compound.
func (comp Compound) Match(el Element) bool {
	if comp.Tag != "" && comp.Tag != "*" && comp.Tag != el.LocalName() {
		return false
	}
	if comp.ID != "" {
		if id, ok := el.Attribute("id"); !ok || id != comp.ID {
			return false
		}
	}
	if len(comp.Classes) > 0 {
		attr, ok := el.Attribute("class")
		if !ok {
			return false
		}
		have := strings.Fields(attr)
		for _, want := range comp.Classes {
			if !containsWord(have, want) {
				return false
			}
		}
	}
	for _, attr := range comp.Attributes {
		if !attr.Match(el) {
			return false
		}
	}
	return true
}

// Match evaluates one attribute condition.
func (a AttributeCondition) Match(el Element) bool {
	value, ok := el.Attribute(a.Name)
	if !ok {
		return false
	}
	switch a.Operator {
	case "":
		return true
	case "=":
		return value == a.Value
	case "~=":
		return containsWord(strings.Fields(value), a.Value)
	case "|=":
		return value == a.Value || strings.HasPrefix(value, a.Value+"-")
	case "^=":
		return a.Value != "" && strings.HasPrefix(value, a.Value)
	case "$=":
		return a.Value != "" && strings.HasSuffix(value, a.Value)
	case "*=":
		return a.Value != "" && strings.Contains(value, a.Value)
	}
	return false
}

func containsWord(words []string, w string) bool {
	for _, x := range words {
		if x == w {
			return true
		}
	}
	return false
}
