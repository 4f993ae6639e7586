package browser

import (
	"context"
	"fmt"
	"log"
	"net/url"
	"slices"
	"sync/atomic"

	"github.com/PuerkitoBio/goquery"
	"github.com/matst80/slask-list/pkg/dom"
	"github.com/matst80/slask-list/pkg/eventloop"
	"github.com/matst80/slask-list/pkg/events"
	"github.com/matst80/slask-list/pkg/form"
	"github.com/matst80/slask-list/pkg/history"
	"github.com/matst80/slask-list/pkg/transport"
	"github.com/matst80/slask-list/pkg/types"
)

// Fetcher is the network side of a window.
type Fetcher interface {
	Send(rawURL, message string, showLoader bool) *transport.Operation
	Load(ctx context.Context, rawURL string) (string, error)
}

// Window is a headless browser tab: one document at a time, a session history
// and the UI loop everything runs on. A new document gets a fresh bus and
// drops the pop state listeners of the previous one.
type Window struct {
	loop     *eventloop.Loop
	fetcher  Fetcher
	history  *history.Stack
	doc      *dom.Document
	bus      *events.Bus
	docID    uint64
	pending  atomic.Int64
	popState []func(url, html string, ok bool)
	onLoad   []func()
}

func NewWindow(loop *eventloop.Loop, fetcher Fetcher, store history.Store) *Window {
	if loop == nil {
		loop = eventloop.New()
	}
	w := &Window{
		loop:    loop,
		fetcher: fetcher,
		history: history.NewStack(store),
		bus:     events.NewBus(),
	}
	w.doc, _ = dom.ParseString("<html><head></head><body></body></html>")
	return w
}

func (w *Window) Loop() *eventloop.Loop { return w.loop }

func (w *Window) Document() *dom.Document { return w.doc }

func (w *Window) Bus() *events.Bus { return w.bus }

func (w *Window) Stack() *history.Stack { return w.history }

// Location returns the address bar URL.
func (w *Window) Location() *url.URL { return w.history.Location() }

// InputValue reads an embedded hidden input of the current document.
func (w *Window) InputValue(name string) (string, bool) {
	return w.doc.InputValue(name)
}

// OnLoad registers fn to run after every full document load.
func (w *Window) OnLoad(fn func()) {
	w.onLoad = append(w.onLoad, fn)
}

// Open loads rawURL as a new document and adds it to the history.
func (w *Window) Open(ctx context.Context, rawURL string) error {
	target, err := w.resolve(rawURL)
	if err != nil {
		return err
	}
	if err := w.load(ctx, target); err != nil {
		return err
	}
	if err := w.history.Navigate(target, w.docID); err != nil {
		return err
	}
	w.fireLoad()
	return nil
}

func (w *Window) load(ctx context.Context, target string) error {
	html, err := w.fetcher.Load(ctx, target)
	if err != nil {
		return fmt.Errorf("failed to load %s: %w", target, err)
	}
	doc, err := dom.ParseString(html)
	if err != nil {
		return fmt.Errorf("failed to parse %s: %w", target, err)
	}
	w.doc = doc
	w.docID++
	w.bus = events.NewBus()
	w.popState = nil
	return nil
}

func (w *Window) fireLoad() {
	for _, fn := range w.onLoad {
		fn()
	}
}

func (w *Window) resolve(rawURL string) (string, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return "", &types.ValidationError{Msg: fmt.Sprintf("invalid url %q", rawURL), Err: err}
	}
	return w.Location().ResolveReference(u).String(), nil
}

// Send is the Fetcher used by list controllers; it tracks requests still in flight.
func (w *Window) Send(rawURL, message string, showLoader bool) *transport.Operation {
	w.pending.Add(1)
	op := w.fetcher.Send(rawURL, message, showLoader)
	op.Then(func(string) { w.pending.Add(-1) }, func(*types.Failure) { w.pending.Add(-1) })
	return op
}

// Pending returns the number of fragment requests still in flight.
func (w *Window) Pending() int {
	return int(w.pending.Load())
}

// Settle runs the UI loop until no request is in flight and no task is queued.
func (w *Window) Settle(ctx context.Context) error {
	return w.loop.RunUntil(ctx, func() bool {
		return w.Pending() == 0 && w.loop.Pending() == 0
	})
}

// PushState adds a history entry holding html for the current document.
func (w *Window) PushState(rawURL, html string) error {
	return w.history.PushState(rawURL, html)
}

func (w *Window) ReplaceState(rawURL, html string) error {
	return w.history.ReplaceState(rawURL, html)
}

// OnPopState registers fn for history traversals within the current document.
// ok is false when the entry carries no stored fragment.
func (w *Window) OnPopState(fn func(url, html string, ok bool)) {
	w.popState = append(w.popState, fn)
}

func (w *Window) Back(ctx context.Context) (bool, error) {
	return w.traverse(ctx, -1)
}

func (w *Window) Forward(ctx context.Context) (bool, error) {
	return w.traverse(ctx, 1)
}

// traverse moves through the history. Entries of the current document fire
// pop state; entries of other documents are reloaded from the network.
func (w *Window) traverse(ctx context.Context, delta int) (bool, error) {
	entry, ok := w.history.Go(delta)
	if !ok {
		return false, nil
	}
	if entry.Document != w.docID {
		if err := w.load(ctx, entry.URL); err != nil {
			return true, err
		}
		w.history.SetDocument(w.docID)
		w.fireLoad()
		return true, nil
	}
	html, found := w.history.State(entry)
	listeners := slices.Clone(w.popState)
	for _, fn := range listeners {
		fn(entry.URL, html, found)
	}
	return true, nil
}

// Click dispatches a click. Unless prevented, links navigate and submit buttons submit their form.
func (w *Window) Click(ctx context.Context, selector string) error {
	sel, err := w.find(selector)
	if err != nil {
		return err
	}
	e := w.doc.Dispatch(sel, "click")
	if e.DefaultPrevented() {
		return nil
	}
	if link := sel.Closest("a[href]"); link.Length() > 0 {
		return w.Open(ctx, link.AttrOr("href", ""))
	}
	if goquery.NodeName(sel) == "button" && sel.AttrOr("type", "submit") == "submit" {
		if f := sel.Closest("form"); f.Length() > 0 {
			return w.submit(ctx, f)
		}
	}
	if goquery.NodeName(sel) == "input" && sel.AttrOr("type", "") == "submit" {
		if f := sel.Closest("form"); f.Length() > 0 {
			return w.submit(ctx, f)
		}
	}
	return nil
}

// Change writes values to a form field and dispatches change on it.
func (w *Window) Change(selector string, values ...string) error {
	sel, err := w.find(selector)
	if err != nil {
		return err
	}
	name := sel.AttrOr("name", "")
	if f, err := form.New(w.doc, dom.Node(sel.Closest("form"))); err == nil && name != "" {
		f.SetValue(name, values...)
	}
	w.doc.Dispatch(sel, "change")
	return nil
}

// Set writes values to a form field without dispatching events.
func (w *Window) Set(selector string, values ...string) error {
	sel, err := w.find(selector)
	if err != nil {
		return err
	}
	f, err := form.New(w.doc, dom.Node(sel.Closest("form")))
	if err != nil {
		return err
	}
	f.SetValue(sel.AttrOr("name", ""), values...)
	return nil
}

// Submit dispatches submit on a form; an unprevented submission navigates.
func (w *Window) Submit(ctx context.Context, selector string) error {
	sel, err := w.find(selector)
	if err != nil {
		return err
	}
	return w.submit(ctx, sel)
}

func (w *Window) submit(ctx context.Context, sel *goquery.Selection) error {
	e := w.doc.Dispatch(sel, "submit")
	if e.DefaultPrevented() {
		return nil
	}
	f, err := form.New(w.doc, dom.Node(sel))
	if err != nil {
		return err
	}
	target, err := f.RequestURL(w.Location(), nil)
	if err != nil {
		return err
	}
	log.Printf("native submission of form %q to %s", f.Name(), target)
	return w.Open(ctx, target)
}

func (w *Window) find(selector string) (*goquery.Selection, error) {
	sel := w.doc.Find(selector).First()
	if sel.Length() == 0 {
		return nil, types.NewValidationError("element with selector %q does not exist", selector)
	}
	return sel, nil
}
