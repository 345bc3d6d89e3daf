package snapshot

import (
	"bytes"
	"image"
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"blockade/pkg/blocking"
	"blockade/pkg/html"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const page = `<body>
<header id="hdr"><button id="menu"></button></header>
<x-card id="card">
	<template shadowrootmode="open"><h2 id="title"></h2><slot></slot><slot name="empty"><i id="fallback"></i></slot></template>
	<p id="text"></p>
	<span id="stray" slot="nowhere"></span>
</x-card>
<script>var x = 1;</script>
</body>`

func setup(t *testing.T) (*html.Document, *blocking.Stack[*html.Node]) {
	t.Helper()
	doc, err := html.Parse(page)
	require.NoError(t, err)
	stack := blocking.New[*html.Node](html.ComposedTree{}, doc.Anchor())
	card, err := doc.Root.QuerySelector("#card", false)
	require.NoError(t, err)
	stack.Push(card)
	return doc, stack
}

func TestText(t *testing.T) {
	doc, stack := setup(t)

	var buf bytes.Buffer
	require.NoError(t, Text(doc, &buf, WithStack(stack)))

	want := `<body>
  <header id="hdr"> inert
    <button id="menu">
  <x-card id="card"> [top]
    #shadow-root (open)
      <h2 id="title">
      <slot>
        > <p id="text">
      <slot>
        <i id="fallback">
`
	assert.Equal(t, want, buf.String())
}

func TestTextWithoutBody(t *testing.T) {
	doc, err := html.Parse(`<div id="a" inert></div><style></style><div id="b"></div>`)
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, Text(doc, &buf))
	assert.Equal(t, "<div id=\"a\"> inert\n<div id=\"b\">\n", buf.String())
}

func TestLayout(t *testing.T) {
	doc, _ := setup(t)
	boxes := layoutDocument(doc, 400)
	require.Len(t, boxes, 1)

	body := boxes[0]
	require.Len(t, body.children, 2)
	card := body.children[1]
	var ids []string
	for _, c := range card.children {
		id, _ := c.node.GetAttribute("id")
		ids = append(ids, id)
	}
	assert.Equal(t, []string{"title", "text", "fallback"}, ids, "slots are replaced by what they render")
	assert.Equal(t, body.x+pad, card.x)
	assert.Greater(t, body.h, card.h)
}

func TestPNG(t *testing.T) {
	doc, stack := setup(t)
	path := filepath.Join(t.TempDir(), "out.png")
	require.NoError(t, PNG(doc, path, WithStack(stack), WithWidth(400)))

	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()
	img, err := png.Decode(f)
	require.NoError(t, err)
	assert.Equal(t, 400, img.Bounds().Dx())

	boxes := layoutDocument(doc, 400)
	hdr, card := boxes[0].children[0], boxes[0].children[1]
	shade := rgb(img, hdr.x+hdr.w-3, hdr.y+hdr.h-3)
	assert.Equal(t, shade[0], shade[2], "shading is grey")
	assert.Less(t, shade[0], uint32(0xe000), "inert header is shaded")
	assert.Equal(t, [3]uint32{0xffff, 0xffff, 0xffff}, rgb(img, card.x+card.w-10, card.y+card.h/2), "top is white")
}

func TestWritePNG(t *testing.T) {
	doc, _ := setup(t)
	var buf bytes.Buffer
	require.NoError(t, WritePNG(doc, &buf))
	cfg, err := png.DecodeConfig(&buf)
	require.NoError(t, err)
	assert.Equal(t, 800, cfg.Width)
}

func rgb(img image.Image, x, y float64) [3]uint32 {
	r, g, b, _ := img.At(int(x), int(y)).RGBA()
	return [3]uint32{r, g, b}
}
