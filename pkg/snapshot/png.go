package snapshot

import (
	"fmt"
	"image"
	"io"

	"blockade/pkg/html"

	"github.com/fogleman/gg"
)

const (
	margin = 8.0
	pad    = 6.0
	label  = 18.0
	gap    = 4.0
)

// box is an element laid out as a nested rectangle.
type box struct {
	node       *html.Node
	x, y, w, h float64
	children   []*box
}

func layout(n *html.Node, x, y, w float64) *box {
	b := &box{node: n, x: x, y: y, w: w}
	cy := y + label
	for _, c := range flatChildren(n) {
		cb := layout(c, x+pad, cy, w-2*pad)
		b.children = append(b.children, cb)
		cy += cb.h + gap
	}
	b.h = cy - y + pad - gap
	if len(b.children) == 0 {
		b.h = label + pad
	}
	return b
}

func layoutDocument(doc *html.Document, width int) []*box {
	var out []*box
	y := margin
	for _, n := range roots(doc) {
		b := layout(n, margin, y, float64(width)-2*margin)
		out = append(out, b)
		y += b.h + gap
	}
	return out
}

// WritePNG draws the composed tree as nested boxes and encodes it to w.
// Effectively inert elements are shaded, the top of the stack is outlined.
func WritePNG(doc *html.Document, w io.Writer, opts ...Option) error {
	dc := render(doc, newOptions(opts))
	if err := dc.EncodePNG(w); err != nil {
		return fmt.Errorf("encoding png: %w", err)
	}
	return nil
}

// PNG is WritePNG to a file.
func PNG(doc *html.Document, path string, opts ...Option) error {
	dc := render(doc, newOptions(opts))
	if err := dc.SavePNG(path); err != nil {
		return fmt.Errorf("writing %s: %w", path, err)
	}
	return nil
}

// Image returns the rendering without encoding it.
func Image(doc *html.Document, opts ...Option) image.Image {
	return render(doc, newOptions(opts)).Image()
}

func render(doc *html.Document, o options) *gg.Context {
	boxes := layoutDocument(doc, o.width)
	height := 2 * margin
	if n := len(boxes); n > 0 {
		last := boxes[n-1]
		height = last.y + last.h + margin
	}
	dc := gg.NewContext(o.width, int(height))
	dc.SetRGB(1, 1, 1)
	dc.Clear()
	for _, b := range boxes {
		o.draw(dc, b)
	}
	return dc
}

func (o options) draw(dc *gg.Context, b *box) {
	dc.DrawRectangle(b.x, b.y, b.w, b.h)
	if b.node.EffectivelyInert() {
		dc.SetRGB(0.78, 0.78, 0.78)
	} else {
		dc.SetRGB(1, 1, 1)
	}
	dc.FillPreserve()
	dc.SetRGB(0.35, 0.35, 0.35)
	dc.SetLineWidth(1)
	dc.Stroke()

	if o.stack != nil {
		if top, ok := o.stack.Top(); ok && top == b.node {
			dc.SetRGB(0.1, 0.35, 0.9)
			dc.SetLineWidth(3)
			dc.DrawRectangle(b.x+1.5, b.y+1.5, b.w-3, b.h-3)
			dc.Stroke()
		}
	}

	dc.SetRGB(0.1, 0.1, 0.1)
	dc.DrawString(b.node.String()+o.marker(b.node), b.x+4, b.y+13)

	for _, c := range b.children {
		o.draw(dc, c)
	}
}
