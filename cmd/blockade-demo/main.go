// Command blockade-demo shows a page as a box map and lets each
// x-trap-focus element be made the blocking element with a checkbox.
package main

import (
	"context"
	_ "embed"
	"fmt"
	"os"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/app"
	"fyne.io/fyne/v2/canvas"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/widget"
	"go.uber.org/zap"

	"blockade/pkg/html"
	"blockade/pkg/js"
	"blockade/pkg/logging"
	"blockade/pkg/resource"
	"blockade/pkg/snapshot"
	stdnet "blockade/std/net"
)

//go:embed demo.html
var demoPage string

const trapTag = "x-trap-focus"

func main() {
	log, err := logging.New(os.Getenv("BLOCKADE_LOG_LEVEL"))
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	defer log.Sync()

	a := app.New()
	w := a.NewWindow("blockade demo")
	w.Resize(fyne.NewSize(1024, 768))

	v := newViewer(log)

	source := widget.NewEntry()
	source.SetPlaceHolder("file or URL, empty for the built-in demo")
	source.OnSubmitted = v.open

	topBar := container.NewBorder(nil, nil, nil, nil, source)
	side := container.NewVScroll(v.toggles)
	side.SetMinSize(fyne.NewSize(240, 0))
	content := container.NewBorder(topBar, v.status, side, nil, container.NewScroll(v.image))
	w.SetContent(content)
	w.Canvas().Focus(source)

	v.open("")
	w.ShowAndRun()
}

type viewer struct {
	log     *zap.Logger
	image   *canvas.Image
	status  *widget.Label
	toggles *fyne.Container

	doc    *html.Document
	engine *js.Engine
}

func newViewer(log *zap.Logger) *viewer {
	img := canvas.NewImageFromImage(nil)
	img.FillMode = canvas.ImageFillOriginal
	return &viewer{
		log:     log,
		image:   img,
		status:  widget.NewLabel("Loading demo..."),
		toggles: container.NewVBox(),
	}
}

// open loads source in the background and shows it once ready.
func (v *viewer) open(source string) {
	v.status.SetText("Loading " + source + "...")
	go func() {
		doc, err := v.load(context.Background(), source)
		fyne.Do(func() {
			if err != nil {
				v.status.SetText("Error: " + err.Error())
				return
			}
			if err := v.show(doc); err != nil {
				v.status.SetText("Script error: " + err.Error())
			}
		})
	}()
}

func (v *viewer) load(ctx context.Context, source string) (*html.Document, error) {
	if source == "" {
		return html.Parse(demoPage)
	}
	return resource.NewLoader(stdnet.NewClient(0), v.log.Named("resource")).Load(ctx, source)
}

// show runs the page scripts and builds one checkbox per trap host.
func (v *viewer) show(doc *html.Document) error {
	engine := js.New(js.WithLogger(v.log.Named("js")))
	if err := engine.Execute(doc); err != nil {
		return err
	}
	v.doc, v.engine = doc, engine

	hosts, err := doc.Root.QuerySelectorAll(trapTag, true)
	if err != nil {
		return err
	}
	v.toggles.RemoveAll()
	for _, host := range hosts {
		v.toggles.Add(widget.NewCheck(host.String(), func(on bool) { v.toggle(host, on) }))
	}
	v.refresh()
	return nil
}

// toggle makes host a blocking element, or stops it being one.
func (v *viewer) toggle(host *html.Node, on bool) {
	host.SetClass("blocking", on)
	stack := v.engine.Blocking()
	if on {
		stack.Push(host)
	} else {
		stack.Remove(host)
	}
	v.refresh()
}

func (v *viewer) refresh() {
	stack := v.engine.Blocking()
	v.image.Image = snapshot.Image(v.doc, snapshot.WithStack(stack), snapshot.WithWidth(760))
	v.image.Refresh()
	if top, ok := stack.Top(); ok {
		v.status.SetText(fmt.Sprintf("%d blocking, top %s", stack.Len(), top))
	} else {
		v.status.SetText("no blocking elements")
	}
}
