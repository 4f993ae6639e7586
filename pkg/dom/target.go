package dom

import "github.com/PuerkitoBio/goquery"

// Target identifies an element either by CSS selector or by an existing selection.
type Target interface {
	Resolve(d *Document) *goquery.Selection
	String() string
}

type selectorTarget string

func Selector(s string) Target {
	return selectorTarget(s)
}

func (s selectorTarget) Resolve(d *Document) *goquery.Selection {
	if s == "" {
		return d.Root().Slice(0, 0)
	}
	return d.Find(string(s))
}

func (s selectorTarget) String() string {
	return string(s)
}

// IsSelector reports whether t was created by Selector.
func IsSelector(t Target) bool {
	_, ok := t.(selectorTarget)
	return ok
}

type nodeTarget struct {
	sel *goquery.Selection
}

func Node(sel *goquery.Selection) Target {
	return nodeTarget{sel: sel}
}

func (n nodeTarget) Resolve(_ *Document) *goquery.Selection {
	return n.sel
}

func (n nodeTarget) String() string {
	if n.sel == nil || n.sel.Length() == 0 {
		return "<empty selection>"
	}
	return "<" + goquery.NodeName(n.sel) + ">"
}
