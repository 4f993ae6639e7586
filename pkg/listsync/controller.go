package listsync

import (
	"fmt"
	"log"

	"github.com/PuerkitoBio/goquery"
	"github.com/matst80/slask-list/pkg/dom"
	"github.com/matst80/slask-list/pkg/events"
	"github.com/matst80/slask-list/pkg/types"
)

type State int

const (
	Idle State = iota
	Fetching
)

func (s State) String() string {
	if s == Fetching {
		return "fetching"
	}
	return "idle"
}

// UpdateListener is called with the list container after its content was replaced.
type UpdateListener func(container *goquery.Selection)

// FailureListener is called with the failure and the requested URL of a list update.
type FailureListener func(failure *types.Failure, requestURL string)

// ListController keeps one list region in sync with server rendered fragments.
//
// Every list.update request is fetched right away. Requests are numbered and a
// response is only shown when no later request has been shown before it, so the
// list always ends on the most recently requested state.
//
// All methods and callbacks must run on the page's UI loop.
type ListController struct {
	page       Page
	history    History
	transport  Transport
	container  *goquery.Selection
	filterForm *FilterForm
	options    Options
	updaters   []Updater

	updateListeners  []UpdateListener
	failureListeners []FailureListener

	seq       uint64
	committed uint64
	inFlight  int
}

// NewListController binds the controls inside container. filterForm may be nil.
func NewListController(page Page, history History, transport Transport, container dom.Target, filterForm *FilterForm, options Options) (*ListController, error) {
	if container == nil {
		return nil, types.NewValidationError(`missing "listContainer" argument`)
	}
	sel := container.Resolve(page.Document())
	if sel == nil || sel.Length() == 0 {
		msg := `invalid "listContainer" argument`
		if dom.IsSelector(container) {
			msg += fmt.Sprintf(`, HTML element with selector %q does not exist`, container.String())
		}
		return nil, &types.ValidationError{Msg: msg}
	}
	c := &ListController{
		page:       page,
		history:    history,
		transport:  transport,
		container:  sel.First(),
		filterForm: filterForm,
		options:    options,
	}
	root := dom.Node(c.container)
	if options.LimitFormSelector != "" {
		c.updaters = append(c.updaters, NewFormUpdater(page, root, options.LimitFormSelector, "list-limit-form"))
	}
	if options.SortFormSelector != "" {
		c.updaters = append(c.updaters, NewFormUpdater(page, root, options.SortFormSelector, "list-sort-form"))
	}
	if options.PaginationListSelector != "" {
		c.updaters = append(c.updaters, NewLinkUpdater(page, root, options.PaginationListSelector+" a", "list-pagination"))
	}
	if options.SortLinkSelector != "" {
		c.updaters = append(c.updaters, NewLinkUpdater(page, root, options.SortLinkSelector, "list-sort-link"))
	}

	page.Bus().Subscribe(events.ListUpdate, func(args ...string) {
		if len(args) == 0 || args[0] == "" {
			log.Println("ignoring list update without url")
			return
		}
		c.Update(args[0])
	})
	if history != nil {
		history.OnPopState(c.restore)
	}
	c.attach()
	return c, nil
}

func (c *ListController) Container() *goquery.Selection {
	return c.container
}

func (c *ListController) State() State {
	if c.inFlight > 0 {
		return Fetching
	}
	return Idle
}

func (c *ListController) AddUpdateListener(listener UpdateListener) error {
	if listener == nil {
		return types.NewValidationError("the update list listener is not a function")
	}
	c.updateListeners = append(c.updateListeners, listener)
	return nil
}

func (c *ListController) AddUpdateFailureListener(listener FailureListener) error {
	if listener == nil {
		return types.NewValidationError("the update list failure listener is not a function")
	}
	c.failureListeners = append(c.failureListeners, listener)
	return nil
}

// Update fetches the list for rawURL and shows it.
func (c *ListController) Update(rawURL string) {
	c.fetch(rawURL, false)
}

func (c *ListController) fetch(rawURL string, restoring bool) {
	target := resolveURL(c.page, rawURL)
	c.seq++
	seq := c.seq
	c.inFlight++
	noUpdates.Inc()

	c.transport.Send(target, c.options.GettingItemsMessage, c.options.GettingItemsLoader).Then(
		func(html string) {
			c.inFlight--
			c.succeed(seq, target, html, restoring)
		},
		func(f *types.Failure) {
			c.inFlight--
			c.fail(seq, rawURL, f)
		},
	)
}

func (c *ListController) stale(seq uint64, target string) bool {
	if seq < c.committed {
		noStale.Inc()
		log.Printf("discarding stale list response for %s", target)
		return true
	}
	return false
}

func (c *ListController) succeed(seq uint64, target, html string, restoring bool) {
	if c.stale(seq, target) {
		return
	}
	c.committed = seq
	switch {
	case c.options.AddHistoryState:
		c.writeHistory(target, html, restoring)
	case c.filterForm != nil:
		c.filterForm.SetCurrentURL(target)
	}
	c.updateList(html)
}

func (c *ListController) writeHistory(target, html string, replace bool) {
	if c.history == nil {
		return
	}
	write := c.history.PushState
	if replace {
		write = c.history.ReplaceState
	}
	if err := write(target, html); err != nil {
		noHistoryFailures.Inc()
		log.Printf("an error occurred while pushing data to the session history: %v", err)
	}
}

func (c *ListController) fail(seq uint64, rawURL string, f *types.Failure) {
	if c.stale(seq, rawURL) {
		return
	}
	noFailures.Inc()
	for _, listener := range c.failureListeners {
		listener(f, rawURL)
	}
}

// restore handles history traversal. Stored fragments are shown without a
// request; otherwise the address bar URL is fetched.
func (c *ListController) restore(rawURL, html string, ok bool) {
	if !ok {
		c.fetch(c.page.Location().String(), true)
		return
	}
	c.seq++
	c.committed = c.seq
	noRestores.Inc()
	if !c.options.AddHistoryState && c.filterForm != nil {
		c.filterForm.SetCurrentURL(rawURL)
	}
	c.updateList(html)
}

func (c *ListController) updateList(html string) {
	c.page.Document().SetHTML(c.container, html)
	c.attach()
	for _, listener := range c.updateListeners {
		listener(c.container)
	}
}

func (c *ListController) attach() {
	for _, u := range c.updaters {
		u.Attach()
	}
	if c.filterForm != nil {
		c.filterForm.Rebind()
	}
}
