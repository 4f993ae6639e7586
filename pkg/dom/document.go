package dom

import (
	"fmt"
	"io"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"
)

// Document is a parsed HTML page with event bindings attached to its nodes.
// It is not safe for concurrent use; drive it from a single event loop.
type Document struct {
	doc      *goquery.Document
	bindings map[*html.Node][]binding
}

func Parse(r io.Reader) (*Document, error) {
	doc, err := goquery.NewDocumentFromReader(r)
	if err != nil {
		return nil, err
	}
	return &Document{
		doc:      doc,
		bindings: make(map[*html.Node][]binding),
	}, nil
}

func ParseString(s string) (*Document, error) {
	return Parse(strings.NewReader(s))
}

func (d *Document) Root() *goquery.Selection {
	return d.doc.Selection
}

func (d *Document) Find(selector string) *goquery.Selection {
	return d.doc.Find(selector)
}

// InputValue returns the value of the first input with the given name.
func (d *Document) InputValue(name string) (string, bool) {
	input := d.doc.Find(fmt.Sprintf(`input[name=%q]`, name)).First()
	if input.Length() == 0 {
		return "", false
	}
	return input.AttrOr("value", ""), true
}

// Contains reports whether the first node of sel is still attached to the document.
func (d *Document) Contains(sel *goquery.Selection) bool {
	if sel == nil || sel.Length() == 0 {
		return false
	}
	root := d.doc.Nodes[0]
	for n := sel.Nodes[0]; n != nil; n = n.Parent {
		if n == root {
			return true
		}
	}
	return false
}

// SetHTML replaces the content of target. Bindings on the removed nodes are dropped.
func (d *Document) SetHTML(target *goquery.Selection, content string) {
	target.Find("*").Each(func(_ int, s *goquery.Selection) {
		delete(d.bindings, s.Nodes[0])
	})
	target.SetHtml(content)
}

func (d *Document) HTML(target *goquery.Selection) string {
	h, err := target.Html()
	if err != nil {
		return ""
	}
	return h
}

func (d *Document) String() string {
	h, err := goquery.OuterHtml(d.doc.Selection)
	if err != nil {
		return ""
	}
	return h
}
