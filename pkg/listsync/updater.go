package listsync

import (
	"log"

	"github.com/matst80/slask-list/pkg/dom"
	"github.com/matst80/slask-list/pkg/events"
	"github.com/matst80/slask-list/pkg/form"
)

// Updater binds one kind of list control found inside the list container.
// Attach is called again every time the container content is replaced.
type Updater interface {
	Attach()
}

// FormUpdater requests the list for a form (limit or sort) whenever it changes.
type FormUpdater struct {
	page     Page
	root     dom.Target
	selector string
	owner    string
}

func NewFormUpdater(page Page, root dom.Target, selector, owner string) *FormUpdater {
	return &FormUpdater{page: page, root: root, selector: selector, owner: owner}
}

func (u *FormUpdater) Attach() {
	doc := u.page.Document()
	sel := u.root.Resolve(doc).Find(u.selector).First()
	if sel.Length() == 0 {
		return
	}
	f, err := form.New(doc, dom.Node(sel))
	if err != nil {
		log.Printf("skipping list form %s: %v", u.selector, err)
		return
	}
	sel.Find("select").RemoveAttr("onchange")

	publish := func(e *dom.Event) {
		e.PreventDefault()
		target, err := f.RequestURL(u.page.Location(), nil)
		if err != nil {
			log.Printf("failed to build list url for form %s: %v", u.selector, err)
			return
		}
		u.page.Bus().Publish(events.ListUpdate, target)
	}
	doc.On(sel, "change", "", u.owner, publish)
	doc.On(sel, "submit", "", u.owner, publish)
}

// LinkUpdater requests the list for a clicked pagination or sort link.
type LinkUpdater struct {
	page     Page
	root     dom.Target
	selector string
	owner    string
}

func NewLinkUpdater(page Page, root dom.Target, selector, owner string) *LinkUpdater {
	return &LinkUpdater{page: page, root: root, selector: selector, owner: owner}
}

func (u *LinkUpdater) Attach() {
	doc := u.page.Document()
	links := u.root.Resolve(doc).Find(u.selector)
	doc.On(links, "click", "", u.owner, func(e *dom.Event) {
		href, ok := e.Current.Attr("href")
		if !ok {
			return
		}
		e.PreventDefault()
		u.page.Bus().Publish(events.ListUpdate, resolveURL(u.page, href))
	})
}
