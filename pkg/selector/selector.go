// Package selector parses and matches the subset of CSS selectors used to
// address elements: type, #id, .class and [attribute] conditions joined by
// descendant, child and sibling combinators, plus comma-separated groups.
package selector

import (
	"errors"
	"fmt"
	"strings"
)

// ErrEmpty is returned when a selector string contains no selector at all.
var ErrEmpty = errors.New("selector: empty selector")

// Element is the view of a node a selector needs. Navigation methods return
// ok=false at the top of the tree or when there is no such sibling.
type Element interface {
	LocalName() string
	Attribute(name string) (string, bool)
	ParentElement() (Element, bool)
	PreviousElementSibling() (Element, bool)
}

type Combinator int

const (
	Descendant Combinator = iota // "A B"
	Child                        // "A > B"
	Adjacent                     // "A + B"
	Sibling                      // "A ~ B"
)

// AttributeCondition is one [name op value] test.
type AttributeCondition struct {
	Name     string
	Operator string // "", "=", "~=", "|=", "^=", "$=", "*="
	Value    string
}

// Compound is a sequence of simple selectors applying to one element.
type Compound struct {
	Tag        string // "" or "*" matches any element
	ID         string
	Classes    []string
	Attributes []AttributeCondition
}

// Complex is a chain of compounds. Combinators[i] joins Parts[i] and Parts[i+1].
type Complex struct {
	Raw         string
	Parts       []Compound
	Combinators []Combinator
}

// Group is a comma-separated list of complex selectors.
type Group []Complex

// Parse parses a selector group.
func Parse(s string) (Group, error) {
	var g Group
	for _, raw := range splitGroup(s) {
		raw = strings.TrimSpace(raw)
		if raw == "" {
			continue
		}
		c, err := parseComplex(raw)
		if err != nil {
			return nil, err
		}
		g = append(g, c)
	}
	if len(g) == 0 {
		return nil, ErrEmpty
	}
	return g, nil
}

// MustParse is like Parse but panics on error. Intended for constants in tests
// and package initialisation.
func MustParse(s string) Group {
	g, err := Parse(s)
	if err != nil {
		panic(err)
	}
	return g
}

// IsCompound reports whether every selector in the group is a single compound.
// Legacy <content select> only accepts those.
func (g Group) IsCompound() bool {
	for _, c := range g {
		if len(c.Parts) != 1 {
			return false
		}
	}
	return true
}

func (g Group) String() string {
	parts := make([]string, len(g))
	for i, c := range g {
		parts[i] = c.Raw
	}
	return strings.Join(parts, ", ")
}

// splitGroup splits on commas that are not inside brackets or quotes.
func splitGroup(s string) []string {
	var out []string
	depth := 0
	var quote byte
	start := 0
	for i := 0; i < len(s); i++ {
		c := s[i]
		switch {
		case quote != 0:
			if c == quote {
				quote = 0
			}
		case c == '"' || c == '\'':
			quote = c
		case c == '[':
			depth++
		case c == ']':
			depth--
		case c == ',' && depth == 0:
			out = append(out, s[start:i])
			start = i + 1
		}
	}
	return append(out, s[start:])
}

func parseComplex(raw string) (Complex, error) {
	c := Complex{Raw: raw}
	p := &parser{in: raw}
	pending := Descendant
	sawCombinator := false
	for {
		sawSpace := p.skipSpace()
		if p.eof() {
			break
		}
		if comb, ok := p.combinator(); ok {
			switch {
			case len(c.Parts) == 0:
				return Complex{}, fmt.Errorf("selector %q: leading combinator", raw)
			case sawCombinator:
				return Complex{}, fmt.Errorf("selector %q: unexpected combinator at %d", raw, p.pos-1)
			}
			pending, sawCombinator = comb, true
			p.skipSpace()
			continue
		}
		if len(c.Parts) > 0 {
			if !sawSpace && pending == Descendant {
				return Complex{}, fmt.Errorf("selector %q: unexpected %q at %d", raw, p.in[p.pos], p.pos)
			}
			c.Combinators = append(c.Combinators, pending)
		}
		comp, err := p.compound()
		if err != nil {
			return Complex{}, fmt.Errorf("selector %q: %w", raw, err)
		}
		c.Parts = append(c.Parts, comp)
		pending, sawCombinator = Descendant, false
	}
	if len(c.Parts) == 0 {
		return Complex{}, ErrEmpty
	}
	if sawCombinator {
		return Complex{}, fmt.Errorf("selector %q: dangling combinator", raw)
	}
	return c, nil
}

type parser struct {
	in  string
	pos int
}

func (p *parser) eof() bool { return p.pos >= len(p.in) }

func (p *parser) skipSpace() bool {
	start := p.pos
	for !p.eof() && isSpace(p.in[p.pos]) {
		p.pos++
	}
	return p.pos > start
}

func (p *parser) combinator() (Combinator, bool) {
	switch p.in[p.pos] {
	case '>':
		p.pos++
		return Child, true
	case '+':
		p.pos++
		return Adjacent, true
	case '~':
		p.pos++
		return Sibling, true
	}
	return Descendant, false
}

func (p *parser) compound() (Compound, error) {
	var comp Compound
	start := p.pos
	if !p.eof() && (p.in[p.pos] == '*' || isIdentChar(p.in[p.pos])) {
		if p.in[p.pos] == '*' {
			p.pos++
			comp.Tag = "*"
		} else {
			comp.Tag = strings.ToLower(p.ident())
		}
	}
	for !p.eof() {
		switch p.in[p.pos] {
		case '#':
			p.pos++
			id := p.ident()
			if id == "" {
				return comp, fmt.Errorf("empty id at %d", p.pos)
			}
			comp.ID = id
		case '.':
			p.pos++
			cls := p.ident()
			if cls == "" {
				return comp, fmt.Errorf("empty class at %d", p.pos)
			}
			comp.Classes = append(comp.Classes, cls)
		case '[':
			attr, err := p.attribute()
			if err != nil {
				return comp, err
			}
			comp.Attributes = append(comp.Attributes, attr)
		default:
			if p.pos == start {
				return comp, fmt.Errorf("unexpected %q at %d", p.in[p.pos], p.pos)
			}
			return comp, nil
		}
	}
	return comp, nil
}

func (p *parser) ident() string {
	start := p.pos
	for !p.eof() && isIdentChar(p.in[p.pos]) {
		p.pos++
	}
	return p.in[start:p.pos]
}

func (p *parser) attribute() (AttributeCondition, error) {
	p.pos++ // [
	p.skipSpace()
	var attr AttributeCondition
	attr.Name = strings.ToLower(p.ident())
	if attr.Name == "" {
		return attr, fmt.Errorf("empty attribute name at %d", p.pos)
	}
	p.skipSpace()
	if p.eof() {
		return attr, errors.New("unterminated attribute selector")
	}
	if p.in[p.pos] == ']' {
		p.pos++
		return attr, nil
	}
	for _, op := range []string{"~=", "|=", "^=", "$=", "*=", "="} {
		if strings.HasPrefix(p.in[p.pos:], op) {
			attr.Operator = op
			p.pos += len(op)
			break
		}
	}
	if attr.Operator == "" {
		return attr, fmt.Errorf("bad attribute operator at %d", p.pos)
	}
	p.skipSpace()
	if p.eof() {
		return attr, errors.New("unterminated attribute selector")
	}
	if q := p.in[p.pos]; q == '"' || q == '\'' {
		p.pos++
		end := strings.IndexByte(p.in[p.pos:], q)
		if end < 0 {
			return attr, errors.New("unterminated attribute value")
		}
		attr.Value = p.in[p.pos : p.pos+end]
		p.pos += end + 1
	} else {
		attr.Value = p.ident()
	}
	p.skipSpace()
	if p.eof() || p.in[p.pos] != ']' {
		return attr, errors.New("unterminated attribute selector")
	}
	p.pos++
	return attr, nil
}

func isSpace(c byte) bool {
	return c == ' ' || c == '\t' || c == '\n' || c == '\r' || c == '\f'
}

func isIdentChar(c byte) bool {
	return (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z') || (c >= '0' && c <= '9') ||
		c == '-' || c == '_' || c >= 0x80
}
