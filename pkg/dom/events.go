package dom

import (
	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"
)

// Event is dispatched to listeners bound with On.
type Event struct {
	Type string
	// Target is the element the event was dispatched on.
	Target *goquery.Selection
	// Current is the element the listener matched: the bound element, or for
	// delegated listeners the descendant matching the selector.
	Current *goquery.Selection

	prevented bool
	stopped   bool
}

func (e *Event) PreventDefault() {
	e.prevented = true
}

func (e *Event) DefaultPrevented() bool {
	return e.prevented
}

func (e *Event) StopPropagation() {
	e.stopped = true
}

type Listener func(e *Event)

type binding struct {
	owner    string
	event    string
	selector string
	fn       Listener
}

func (b binding) same(o binding) bool {
	return b.owner == o.owner && b.event == o.event && b.selector == o.selector
}

// On binds fn to every element of target. With a non empty selector the
// listener is delegated: it only fires for events coming from descendants
// matching selector. Binding again with the same owner, event and selector
// replaces the previous listener, so On is safe to repeat.
func (d *Document) On(target *goquery.Selection, event, selector, owner string, fn Listener) {
	b := binding{owner: owner, event: event, selector: selector, fn: fn}
	for _, n := range target.Nodes {
		list := d.bindings[n]
		replaced := false
		for i := range list {
			if list[i].same(b) {
				list[i] = b
				replaced = true
			}
		}
		if !replaced {
			list = append(list, b)
		}
		d.bindings[n] = list
	}
}

// Off removes listeners of owner for event from every element of target.
func (d *Document) Off(target *goquery.Selection, event, owner string) {
	for _, n := range target.Nodes {
		list := d.bindings[n][:0]
		for _, b := range d.bindings[n] {
			if b.owner == owner && (event == "" || b.event == event) {
				continue
			}
			list = append(list, b)
		}
		if len(list) == 0 {
			delete(d.bindings, n)
		} else {
			d.bindings[n] = list
		}
	}
}

// Dispatch fires event on the first element of target and bubbles it up to the root.
func (d *Document) Dispatch(target *goquery.Selection, event string) *Event {
	e := &Event{Type: event, Target: target.First()}
	if target.Length() == 0 {
		return e
	}
	start := target.Nodes[0]
	for n := start; n != nil && !e.stopped; n = n.Parent {
		list := append([]binding(nil), d.bindings[n]...)
		for _, b := range list {
			if b.event != event {
				continue
			}
			if b.selector == "" {
				e.Current = nodeSelection(n)
				b.fn(e)
				continue
			}
			if m := matchBetween(start, n, b.selector); m != nil {
				e.Current = nodeSelection(m)
				b.fn(e)
			}
		}
	}
	return e
}

// Listeners returns how many listeners are bound to the first element of target.
func (d *Document) Listeners(target *goquery.Selection, event string) int {
	if target.Length() == 0 {
		return 0
	}
	count := 0
	for _, b := range d.bindings[target.Nodes[0]] {
		if b.event == event {
			count++
		}
	}
	return count
}

func matchBetween(start, bound *html.Node, selector string) *html.Node {
	for n := start; n != nil && n != bound; n = n.Parent {
		if n.Type == html.ElementNode && nodeSelection(n).Is(selector) {
			return n
		}
	}
	return nil
}

func nodeSelection(n *html.Node) *goquery.Selection {
	return goquery.NewDocumentFromNode(n).Selection
}
