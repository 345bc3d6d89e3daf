// Package resource loads pages from disk or the network, together with the
// external scripts they reference.
package resource

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"blockade/pkg/html"
	stdnet "blockade/std/net"

	"go.uber.org/zap"
)

// Fetcher retrieves resources by absolute URL.
type Fetcher interface {
	Fetch(ctx context.Context, uri string) (body []byte, contentType string, err error)
}

// Loader reads pages and resolves their scripts.
type Loader struct {
	fetcher Fetcher
	log     *zap.Logger
}

// NewLoader returns a Loader fetching network resources with f. A nil f uses
// a default client.
func NewLoader(f Fetcher, log *zap.Logger) *Loader {
	if f == nil {
		f = stdnet.NewClient(0)
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &Loader{fetcher: f, log: log}
}

// Load parses the page at source, a file path or an http(s) URL. The
// document's Scripts are replaced by every script of the page in document
// order, external ones fetched relative to source. External scripts that
// cannot be read are logged and skipped.
func (l *Loader) Load(ctx context.Context, source string) (*html.Document, error) {
	body, err := l.read(ctx, source)
	if err != nil {
		return nil, err
	}
	doc, err := html.Parse(string(body))
	if err != nil {
		return nil, fmt.Errorf("parsing %s: %w", source, err)
	}
	doc.Scripts = l.scripts(ctx, source, doc)
	return doc, nil
}

func (l *Loader) read(ctx context.Context, uri string) ([]byte, error) {
	if stdnet.IsNetworkURL(uri) {
		body, _, err := l.fetcher.Fetch(ctx, uri)
		return body, err
	}
	body, err := os.ReadFile(uri)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", uri, err)
	}
	return body, nil
}

func (l *Loader) scripts(ctx context.Context, source string, doc *html.Document) []string {
	var out []string
	doc.Root.Walk(func(n *html.Node) {
		if n.TagName != "script" || n.InTemplate() {
			return
		}
		src, external := n.GetAttribute("src")
		if !external {
			out = append(out, n.Serialize())
			return
		}
		uri := resolve(source, src)
		body, err := l.read(ctx, uri)
		if err != nil {
			l.log.Warn("skipping external script", zap.String("src", uri), zap.Error(err))
			return
		}
		out = append(out, string(body))
	})
	return out
}

// resolve makes ref relative to the page at source.
func resolve(source, ref string) string {
	if stdnet.IsNetworkURL(ref) || filepath.IsAbs(ref) {
		return ref
	}
	if stdnet.IsNetworkURL(source) {
		return stdnet.ResolveURL(source, ref)
	}
	return filepath.Join(filepath.Dir(source), filepath.FromSlash(ref))
}
