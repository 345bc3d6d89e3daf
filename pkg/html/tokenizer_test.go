package html

import (
	"errors"
	"testing"
)

func collect(t *testing.T, input string) []Token {
	t.Helper()
	tok := NewTokenizer(input)
	var out []Token
	for {
		token, err := tok.NextToken()
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if token.Type == TokenEOF {
			return out
		}
		out = append(out, token)
	}
}

func TestTokenizer_Sequence(t *testing.T) {
	tokens := collect(t, `<!DOCTYPE html><!-- note --><div id="main">Hello &amp; bye</div>`)
	want := []struct {
		typ  TokenType
		name string
		text string
	}{
		{TokenStartTag, "div", ""},
		{TokenText, "", "Hello & bye"},
		{TokenEndTag, "div", ""},
	}
	if len(tokens) != len(want) {
		t.Fatalf("got %d tokens, want %d: %+v", len(tokens), len(want), tokens)
	}
	for i, w := range want {
		if tokens[i].Type != w.typ || tokens[i].TagName != w.name || tokens[i].Text != w.text {
			t.Errorf("token %d = %v %q %q, want %v %q %q", i, tokens[i].Type, tokens[i].TagName, tokens[i].Text, w.typ, w.name, w.text)
		}
	}
}

func TestTokenizer_Attributes(t *testing.T) {
	tokens := collect(t, `<X-Dialog Open data-a='1' data-b=two title="a &lt; b" data-a="dup">`)
	if len(tokens) != 1 {
		t.Fatalf("expected 1 token, got %d", len(tokens))
	}
	tok := tokens[0]
	if tok.TagName != "x-dialog" {
		t.Errorf("tag name = %q", tok.TagName)
	}
	want := map[string]string{"open": "", "data-a": "1", "data-b": "two", "title": "a < b"}
	for k, v := range want {
		if got, ok := tok.Attributes[k]; !ok || got != v {
			t.Errorf("attribute %s = %q, want %q", k, got, v)
		}
	}
	if len(tok.Attributes) != len(want) {
		t.Errorf("unexpected attributes %v", tok.Attributes)
	}
}

func TestTokenizer_SelfClosing(t *testing.T) {
	tokens := collect(t, `<slot name="a" /><br>`)
	if !tokens[0].SelfClosing || tokens[1].SelfClosing {
		t.Errorf("self-closing flags = %v, %v", tokens[0].SelfClosing, tokens[1].SelfClosing)
	}
}

func TestTokenizer_Whitespace(t *testing.T) {
	tokens := collect(t, "<p>\n  </p><p>  two \n words  </p>")
	if len(tokens) != 5 {
		t.Fatalf("whitespace-only text should be dropped, got %+v", tokens)
	}
	if tokens[3].Text != " two words " {
		t.Errorf("text = %q", tokens[3].Text)
	}
}

func TestTokenizer_ReadRawUntil(t *testing.T) {
	tok := NewTokenizer(`a </b> "</scripts>" </Script  ><i>`)
	raw := tok.ReadRawUntil("script")
	if raw != `a </b> "</scripts>" ` {
		t.Errorf("raw = %q", raw)
	}
	next, err := tok.NextToken()
	if err != nil || next.TagName != "i" {
		t.Errorf("next token = %+v, %v", next, err)
	}
}

func TestTokenizer_Errors(t *testing.T) {
	for _, input := range []string{`<>`, `<div`, `<a href="x`, `</div`} {
		_, err := NewTokenizer(input).NextToken()
		var syn *SyntaxError
		if !errors.As(err, &syn) {
			t.Errorf("%q: expected SyntaxError, got %v", input, err)
		}
	}
}

func TestTokenType_String(t *testing.T) {
	if TokenStartTag.String() != "StartTag" || TokenType(9).String() != "TokenType(9)" {
		t.Error("unexpected TokenType names")
	}
}
