package html

import "fmt"

type Parser struct {
	tokenizer *Tokenizer
	doc       *Document
	stack     []*Node // open elements; stack[0] is the document root
}

func NewParser(html string) *Parser {
	return &Parser{
		tokenizer: NewTokenizer(html),
		doc:       NewDocument(),
	}
}

func (p *Parser) Parse() (*Document, error) {
	p.stack = []*Node{p.doc.Root}

	for {
		token, err := p.tokenizer.NextToken()
		if err != nil {
			return nil, fmt.Errorf("tokenizer error: %w", err)
		}
		if token.Type == TokenEOF {
			break
		}

		switch token.Type {
		case TokenStartTag:
			p.startTag(token)

		case TokenText:
			if token.Text != "" {
				p.currentParent().AppendText(token.Text)
			}

		case TokenEndTag:
			p.closeTag(token.TagName)
		}
	}

	return p.doc, nil
}

func (p *Parser) startTag(token Token) {
	// Auto-close <p> when a block-level element is encountered inside it
	if p.isBlockElement(token.TagName) {
		p.autoCloseP()
	}

	parent := p.currentParent()

	if token.TagName == "template" {
		if root := p.declarativeShadowRoot(parent, token.Attributes); root != nil {
			p.push(root)
			return
		}
	}

	node := &Node{
		Type:       ElementNode,
		TagName:    token.TagName,
		Attributes: token.Attributes,
		Children:   make([]*Node, 0),
	}
	parent.AddChild(node)

	if token.TagName == "script" || token.TagName == "style" {
		// Raw text elements: '<' inside them does not start a tag.
		raw := p.tokenizer.ReadRawUntil(token.TagName)
		if raw != "" {
			node.AddChild(&Node{Type: TextNode, Text: raw})
		}
		if token.TagName == "script" && !node.InTemplate() {
			if _, external := token.Attributes["src"]; !external {
				p.doc.Scripts = append(p.doc.Scripts, raw)
			}
		}
		return
	}

	if !p.isSelfClosing(token.TagName) && !token.SelfClosing {
		p.push(node)
	}
}

// declarativeShadowRoot turns <template shadowrootmode="open|closed"> (or the
// older shadowroot attribute) into a shadow root of the enclosing element.
// It returns nil when the template should stay an ordinary element.
func (p *Parser) declarativeShadowRoot(host *Node, attrs map[string]string) *Node {
	mode, ok := attrs["shadowrootmode"]
	if !ok {
		mode, ok = attrs["shadowroot"]
	}
	if !ok || (mode != "open" && mode != "closed") {
		return nil
	}
	root, err := host.AttachShadow(mode)
	if err != nil {
		return nil
	}
	return root
}

// currentParent returns the current parent node (top of stack)
func (p *Parser) currentParent() *Node {
	if len(p.stack) == 0 {
		return p.doc.Root
	}
	return p.stack[len(p.stack)-1]
}

func (p *Parser) push(node *Node) {
	p.stack = append(p.stack, node)
}

// isSelfClosing returns true for void/self-closing HTML elements
func (p *Parser) isSelfClosing(tagName string) bool {
	return isVoidElement(tagName)
}

// closeTag pops the stack until the matching tag is found and closed. An end
// tag never closes elements outside the shadow root it appears in; </template>
// closes the innermost declarative shadow root.
func (p *Parser) closeTag(tagName string) {
	for i := len(p.stack) - 1; i >= 1; i-- {
		n := p.stack[i]
		if n.Type == FragmentNode {
			if tagName == "template" {
				p.stack = p.stack[:i]
			}
			return
		}
		if n.TagName == tagName {
			p.stack = p.stack[:i]
			return
		}
	}
	// Tag not found on stack; ignore the end tag
}

// autoCloseP closes an open <p> element if one is on the stack
func (p *Parser) autoCloseP() {
	for i := len(p.stack) - 1; i >= 1; i-- {
		if p.stack[i].TagName == "p" {
			p.stack = p.stack[:i]
			return
		}
		// Don't close past block-level containers or shadow boundaries
		if p.stack[i].Type == FragmentNode || p.isBlockElement(p.stack[i].TagName) {
			return
		}
	}
}

// isBlockElement returns true for elements that auto-close <p>
func (p *Parser) isBlockElement(tagName string) bool {
	switch tagName {
	case "address", "article", "aside", "blockquote", "details", "dialog",
		"dd", "div", "dl", "dt", "fieldset", "figcaption", "figure",
		"footer", "form", "h1", "h2", "h3", "h4", "h5", "h6",
		"header", "hgroup", "hr", "li", "main", "nav", "ol",
		"p", "pre", "section", "table", "ul":
		return true
	}
	return false
}

func Parse(html string) (*Document, error) {
	parser := NewParser(html)
	return parser.Parse()
}

// ParseFragment parses markup for innerHTML and returns the detached top-level
// nodes. Scripts in a fragment are not collected for execution.
func ParseFragment(html string) ([]*Node, error) {
	doc, err := Parse(html)
	if err != nil {
		return nil, err
	}
	nodes := append([]*Node(nil), doc.Root.Children...)
	for _, n := range nodes {
		n.Parent = nil
	}
	doc.Root.Children = nil
	return nodes, nil
}
