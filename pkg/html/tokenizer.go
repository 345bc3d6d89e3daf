package html

import (
	"fmt"
	gohtml "html"
	"strings"
	"unicode"
)

type TokenType int

const (
	TokenStartTag TokenType = iota
	TokenEndTag
	TokenText
	TokenEOF
)

func (t TokenType) String() string {
	switch t {
	case TokenStartTag:
		return "StartTag"
	case TokenEndTag:
		return "EndTag"
	case TokenText:
		return "Text"
	case TokenEOF:
		return "EOF"
	}
	return fmt.Sprintf("TokenType(%d)", int(t))
}

type Token struct {
	Type        TokenType
	TagName     string
	Attributes  map[string]string
	Text        string
	SelfClosing bool // <tag/>
}

// SyntaxError reports malformed markup with the byte offset it was found at.
type SyntaxError struct {
	Pos int
	Msg string
}

func (e *SyntaxError) Error() string {
	return fmt.Sprintf("html: %s at offset %d", e.Msg, e.Pos)
}

type Tokenizer struct {
	input string
	pos   int
}

func NewTokenizer(html string) *Tokenizer {
	return &Tokenizer{input: html}
}

func (t *Tokenizer) errorf(format string, args ...any) error {
	return &SyntaxError{Pos: t.pos, Msg: fmt.Sprintf(format, args...)}
}

func (t *Tokenizer) NextToken() (Token, error) {
	for t.pos < len(t.input) {
		if t.input[t.pos] != '<' {
			if tok, ok := t.readText(); ok {
				return tok, nil
			}
			continue
		}
		tok, skipped, err := t.readMarkup()
		if err != nil {
			return Token{}, err
		}
		if !skipped {
			return tok, nil
		}
	}
	return Token{Type: TokenEOF}, nil
}

// readMarkup reads the construct starting at '<'. Comments, doctypes and
// processing instructions are consumed and reported as skipped.
func (t *Tokenizer) readMarkup() (Token, bool, error) {
	rest := t.input[t.pos:]
	switch {
	case strings.HasPrefix(rest, "<!--"):
		t.skipPast("-->", 4)
		return Token{}, true, nil
	case strings.HasPrefix(rest, "<?"):
		t.skipPast("?>", 2)
		return Token{}, true, nil
	case strings.HasPrefix(rest, "<!"):
		t.pos++
		if err := t.skipTo('>'); err != nil {
			return Token{}, false, err
		}
		t.pos++
		return Token{}, true, nil
	}
	tok, err := t.readTag()
	return tok, false, err
}

// skipPast advances beyond terminator, or to EOF when it never appears.
func (t *Tokenizer) skipPast(terminator string, openerLen int) {
	t.pos += openerLen
	if i := strings.Index(t.input[t.pos:], terminator); i >= 0 {
		t.pos += i + len(terminator)
		return
	}
	t.pos = len(t.input)
}

func (t *Tokenizer) readTag() (Token, error) {
	t.pos++ // <
	isEndTag := false
	if t.pos < len(t.input) && t.input[t.pos] == '/' {
		isEndTag = true
		t.pos++
	}
	tagName := t.readTagName()
	if tagName == "" {
		return Token{}, t.errorf("expected tag name")
	}
	if isEndTag {
		if err := t.skipTo('>'); err != nil {
			return Token{}, err
		}
		t.pos++
		return Token{Type: TokenEndTag, TagName: tagName}, nil
	}
	tok := Token{Type: TokenStartTag, TagName: tagName, Attributes: make(map[string]string)}
	for {
		t.skipWhitespace()
		if t.pos >= len(t.input) {
			return Token{}, t.errorf("unexpected EOF in <%s>", tagName)
		}
		switch t.input[t.pos] {
		case '>':
			t.pos++
			return tok, nil
		case '/':
			t.pos++
			t.skipWhitespace()
			if t.pos < len(t.input) && t.input[t.pos] == '>' {
				t.pos++
				tok.SelfClosing = true
				return tok, nil
			}
			continue
		}
		name, value, err := t.readAttribute()
		if err != nil {
			return Token{}, err
		}
		if _, dup := tok.Attributes[name]; !dup {
			tok.Attributes[name] = value
		}
	}
}

func (t *Tokenizer) readTagName() string {
	start := t.pos
	for t.pos < len(t.input) && isTagNameChar(t.input[t.pos]) {
		t.pos++
	}
	return strings.ToLower(t.input[start:t.pos])
}

func (t *Tokenizer) readAttribute() (string, string, error) {
	start := t.pos
	for t.pos < len(t.input) && isAttributeNameChar(t.input[t.pos]) {
		t.pos++
	}
	name := strings.ToLower(t.input[start:t.pos])
	if name == "" {
		return "", "", t.errorf("expected attribute name")
	}
	t.skipWhitespace()
	if t.pos >= len(t.input) || t.input[t.pos] != '=' {
		return name, "", nil
	}
	t.pos++
	t.skipWhitespace()
	value, err := t.readAttributeValue()
	if err != nil {
		return "", "", err
	}
	return name, gohtml.UnescapeString(value), nil
}

func (t *Tokenizer) readAttributeValue() (string, error) {
	if t.pos >= len(t.input) {
		return "", t.errorf("expected attribute value")
	}
	quote := t.input[t.pos]
	if quote == '"' || quote == '\'' {
		t.pos++
		end := strings.IndexByte(t.input[t.pos:], quote)
		if end < 0 {
			return "", t.errorf("unterminated attribute value")
		}
		value := t.input[t.pos : t.pos+end]
		t.pos += end + 1
		return value, nil
	}
	start := t.pos
	for t.pos < len(t.input) && !unicode.IsSpace(rune(t.input[t.pos])) && t.input[t.pos] != '>' {
		t.pos++
	}
	return t.input[start:t.pos], nil
}

// readText reads up to the next '<'. Whitespace-only runs between tags are
// dropped and ok is false for them.
func (t *Tokenizer) readText() (Token, bool) {
	start := t.pos
	if i := strings.IndexByte(t.input[t.pos:], '<'); i >= 0 {
		t.pos += i
	} else {
		t.pos = len(t.input)
	}
	raw := t.input[start:t.pos]
	if strings.TrimSpace(raw) == "" {
		return Token{}, false
	}
	text := gohtml.UnescapeString(normalizeWhitespace(raw))
	return Token{Type: TokenText, Text: text}, true
}

// normalizeWhitespace collapses runs of whitespace to one space and keeps a
// single space at either edge when the input had one.
func normalizeWhitespace(s string) string {
	fields := strings.Fields(s)
	if len(fields) == 0 {
		return ""
	}
	result := strings.Join(fields, " ")
	if unicode.IsSpace(rune(s[0])) {
		result = " " + result
	}
	if unicode.IsSpace(rune(s[len(s)-1])) {
		result += " "
	}
	return result
}

func (t *Tokenizer) skipWhitespace() {
	for t.pos < len(t.input) && unicode.IsSpace(rune(t.input[t.pos])) {
		t.pos++
	}
}

func (t *Tokenizer) skipTo(target byte) error {
	i := strings.IndexByte(t.input[t.pos:], target)
	if i < 0 {
		t.pos = len(t.input)
		return t.errorf("expected '%c' but reached EOF", target)
	}
	t.pos += i
	return nil
}

// ReadRawUntil reads raw content until the closing end tag, matched
// case-insensitively, and consumes the end tag. Used for <script> and <style>.
func (t *Tokenizer) ReadRawUntil(endTag string) string {
	needle := "</" + endTag
	start := t.pos
	for i := start; i+len(needle) <= len(t.input); i++ {
		if t.input[i] != '<' || !strings.EqualFold(t.input[i:i+len(needle)], needle) {
			continue
		}
		end := i + len(needle)
		if end < len(t.input) && t.input[end] != '>' && !unicode.IsSpace(rune(t.input[end])) {
			continue
		}
		content := t.input[start:i]
		t.pos = end
		if err := t.skipTo('>'); err == nil {
			t.pos++
		}
		return content
	}
	t.pos = len(t.input)
	return t.input[start:]
}

func isTagNameChar(c byte) bool {
	return (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z') || (c >= '0' && c <= '9') || c == '-' || c == '_'
}

func isAttributeNameChar(c byte) bool {
	return (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z') || (c >= '0' && c <= '9') || c == '-' || c == '_' || c == ':' || c == '.' || c == '$'
}
