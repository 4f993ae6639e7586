package listsync

import (
	"context"
	"fmt"
	"testing"

	"github.com/matst80/slask-list/pkg/browser"
	"github.com/matst80/slask-list/pkg/events"
	"github.com/matst80/slask-list/pkg/history"
	"github.com/matst80/slask-list/pkg/params"
	"github.com/matst80/slask-list/pkg/transport"
	"github.com/matst80/slask-list/pkg/types"
	"github.com/stretchr/testify/require"
)

const startURL = "http://shop.test/items?page=3&sort=name&q=old"

type request struct {
	url string
	op  *transport.Operation
}

// MockTransport records fragment requests and serves full pages from a map.
type MockTransport struct {
	Pages    map[string]string
	Loads    []string
	Requests []request
}

func (m *MockTransport) Send(rawURL, message string, showLoader bool) *transport.Operation {
	op := transport.NewOperation(nil)
	m.Requests = append(m.Requests, request{url: rawURL, op: op})
	return op
}

func (m *MockTransport) Load(ctx context.Context, rawURL string) (string, error) {
	m.Loads = append(m.Loads, rawURL)
	html, ok := m.Pages[rawURL]
	if !ok {
		return "", &types.Failure{Status: 404, StatusText: "Not Found"}
	}
	return html, nil
}

func (m *MockTransport) last(t *testing.T) request {
	require.NotEmpty(t, m.Requests)
	return m.Requests[len(m.Requests)-1]
}

func fragment(page int) string {
	return fmt.Sprintf(`<form name="ad-list__limit" action="/items">
  <input type="hidden" name="q" value="old">
  <select name="limit" onchange="this.form.submit()"><option value="10" selected>10</option><option value="20">20</option></select>
</form>
<form name="ad-list__sort" action="/items">
  <select name="sort"><option value="name" selected>name</option><option value="price">price</option></select>
</form>
<ul class="items"><li>item page %d</li></ul>
<ul class="ad-list__pagination"><li><a id="page-1" href="/items?page=1">1</a></li><li><a id="page-2" href="/items?page=2">2</a></li></ul>
<a class="ad-list__sort-link" id="sort-price" href="/items?sort=price">price</a>`, page)
}

const namesInput = `<input type="hidden" name="list__query-parameter-names" value='{"page":"page","sort":"sort","limit":"limit"}'>`

const simpleFilter = `<form name="filter" action="/items">
  <input type="text" name="q" value="old">
  <button type="submit">Filter</button>
</form>`

const fullFilter = `<form name="filter" action="/items">
  <input type="text" name="q" value="old">
  <input type="hidden" name="page" value="3">
  <input type="hidden" name="limit" value="10">
  <select name="category"><option value="">All</option><option value="books">Books</option></select>
  <input type="radio" name="stock" value="any" checked><input type="radio" name="stock" value="in">
  <select name="tags" multiple><option value="a">a</option><option value="b">b</option></select>
  <button type="submit">Filter</button>
  <button type="reset">Reset</button>
</form>`

func pageHTML(extra, filter string) string {
	return "<html><body>" + namesInput + extra + filter + `<div id="list">` + fragment(3) + `</div></body></html>`
}

type fixture struct {
	win       *browser.Window
	transport *MockTransport
	registry  *params.Registry
	published []string
}

func newFixture(t *testing.T, html string, store history.Store) *fixture {
	mt := &MockTransport{Pages: map[string]string{startURL: html}}
	win := browser.NewWindow(nil, mt, store)
	require.NoError(t, win.Open(context.Background(), startURL))
	f := &fixture{
		win:       win,
		transport: mt,
		registry:  params.NewRegistry(win),
	}
	win.Bus().Subscribe(events.ListUpdate, func(args ...string) {
		f.published = append(f.published, args[0])
	})
	return f
}

func (f *fixture) lastPublished(t *testing.T) string {
	require.NotEmpty(t, f.published)
	return f.published[len(f.published)-1]
}
