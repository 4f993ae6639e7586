package browser

import (
	"context"
	"testing"
	"time"

	"github.com/matst80/slask-list/pkg/dom"
	"github.com/matst80/slask-list/pkg/transport"
	"github.com/matst80/slask-list/pkg/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type pages struct {
	scheduler transport.Scheduler
	html      map[string]string
	loads     []string
	sent      []*transport.Operation
}

func (p *pages) Send(rawURL, message string, showLoader bool) *transport.Operation {
	op := transport.NewOperation(p.scheduler)
	p.sent = append(p.sent, op)
	return op
}

func (p *pages) Load(ctx context.Context, rawURL string) (string, error) {
	p.loads = append(p.loads, rawURL)
	html, ok := p.html[rawURL]
	if !ok {
		return "", &types.Failure{Status: 404, StatusText: "Not Found"}
	}
	return html, nil
}

const home = `<html><body>
<input type="hidden" name="config" value="42">
<a id="next" href="/next">next</a>
<form id="search" action="/search"><input name="q" value="shoes"><button type="submit">Go</button></form>
</body></html>`

func newPages() *pages {
	return &pages{html: map[string]string{
		"http://shop.test/":              home,
		"http://shop.test/next":          `<html><body><p id="title">next</p></body></html>`,
		"http://shop.test/search?q=hats": `<html><body><p id="title">hats</p></body></html>`,
	}}
}

func TestOpenLoadsDocument(t *testing.T) {
	p := newPages()
	w := NewWindow(nil, p, nil)
	loads := 0
	w.OnLoad(func() { loads++ })

	require.NoError(t, w.Open(context.Background(), "http://shop.test/"))
	assert.Equal(t, "http://shop.test/", w.Location().String())
	v, ok := w.InputValue("config")
	assert.True(t, ok)
	assert.Equal(t, "42", v)
	assert.Equal(t, 1, loads)
	assert.Equal(t, 1, w.Stack().Len())
}

func TestOpenFailureKeepsDocument(t *testing.T) {
	p := newPages()
	w := NewWindow(nil, p, nil)
	require.NoError(t, w.Open(context.Background(), "http://shop.test/"))

	err := w.Open(context.Background(), "/missing")
	require.Error(t, err)
	var failure *types.Failure
	assert.ErrorAs(t, err, &failure)
	assert.Equal(t, "http://shop.test/", w.Location().String())
	assert.Equal(t, 1, w.Document().Find("#next").Length())
}

func TestNewDocumentGetsNewBus(t *testing.T) {
	p := newPages()
	w := NewWindow(nil, p, nil)
	require.NoError(t, w.Open(context.Background(), "http://shop.test/"))
	bus := w.Bus()
	w.OnPopState(func(string, string, bool) { t.Fatal("pop state of a previous document") })

	require.NoError(t, w.Click(context.Background(), "#next"))
	assert.NotSame(t, bus, w.Bus())
	assert.Equal(t, "http://shop.test/next", w.Location().String())
	assert.Equal(t, "next", w.Document().Find("#title").Text())

	require.NoError(t, w.PushState("/next?page=2", "<p>2</p>"))
	called := false
	w.OnPopState(func(url, html string, ok bool) {
		called = true
		assert.Equal(t, "http://shop.test/next", url)
		assert.False(t, ok)
	})
	moved, err := w.Back(context.Background())
	require.NoError(t, err)
	assert.True(t, moved)
	assert.True(t, called)
}

func TestBackAcrossDocumentsReloads(t *testing.T) {
	ctx := context.Background()
	p := newPages()
	w := NewWindow(nil, p, nil)
	require.NoError(t, w.Open(ctx, "http://shop.test/"))
	require.NoError(t, w.Open(ctx, "/next"))

	moved, err := w.Back(ctx)
	require.NoError(t, err)
	assert.True(t, moved)
	assert.Equal(t, "http://shop.test/", w.Location().String())
	assert.Equal(t, []string{"http://shop.test/", "http://shop.test/next", "http://shop.test/"}, p.loads)

	moved, err = w.Back(ctx)
	require.NoError(t, err)
	assert.False(t, moved)

	moved, err = w.Forward(ctx)
	require.NoError(t, err)
	assert.True(t, moved)
	assert.Equal(t, "next", w.Document().Find("#title").Text())
}

func TestPopStateCarriesStoredState(t *testing.T) {
	ctx := context.Background()
	w := NewWindow(nil, newPages(), nil)
	require.NoError(t, w.Open(ctx, "http://shop.test/"))
	require.NoError(t, w.PushState("/?page=2", "<li>2</li>"))
	require.NoError(t, w.PushState("/?page=3", "<li>3</li>"))

	var got []string
	w.OnPopState(func(url, html string, ok bool) {
		got = append(got, url+" "+html)
	})
	_, err := w.Back(ctx)
	require.NoError(t, err)
	_, err = w.Forward(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{
		"http://shop.test/?page=2 <li>2</li>",
		"http://shop.test/?page=3 <li>3</li>",
	}, got)
}

func TestPopStateListenerAddedDuringTraversal(t *testing.T) {
	ctx := context.Background()
	w := NewWindow(nil, newPages(), nil)
	require.NoError(t, w.Open(ctx, "http://shop.test/"))
	require.NoError(t, w.PushState("/?page=2", "<li>2</li>"))
	require.NoError(t, w.PushState("/?page=3", "<li>3</li>"))

	first, late := 0, 0
	w.OnPopState(func(string, string, bool) {
		first++
		w.OnPopState(func(string, string, bool) { late++ })
	})
	_, err := w.Back(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, first)
	assert.Equal(t, 0, late)

	_, err = w.Back(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, first)
	assert.Equal(t, 1, late)
}

func TestNativeFormSubmissionNavigates(t *testing.T) {
	ctx := context.Background()
	w := NewWindow(nil, newPages(), nil)
	require.NoError(t, w.Open(ctx, "http://shop.test/"))

	require.NoError(t, w.Set(`input[name="q"]`, "hats"))
	require.NoError(t, w.Click(ctx, `button[type="submit"]`))
	assert.Equal(t, "http://shop.test/search?q=hats", w.Location().String())
	assert.Equal(t, "hats", w.Document().Find("#title").Text())
}

func TestPreventedSubmissionStays(t *testing.T) {
	ctx := context.Background()
	w := NewWindow(nil, newPages(), nil)
	require.NoError(t, w.Open(ctx, "http://shop.test/"))
	submitted := 0
	w.Document().On(w.Document().Find("#search"), "submit", "", "test", func(e *dom.Event) {
		e.PreventDefault()
		submitted++
	})

	require.NoError(t, w.Submit(ctx, "#search"))
	require.NoError(t, w.Click(ctx, `button[type="submit"]`))
	assert.Equal(t, 2, submitted)
	assert.Equal(t, "http://shop.test/", w.Location().String())
}

func TestMissingElement(t *testing.T) {
	w := NewWindow(nil, newPages(), nil)
	require.NoError(t, w.Open(context.Background(), "http://shop.test/"))
	err := w.Click(context.Background(), "#nope")
	assert.True(t, types.IsValidationError(err))
	assert.Contains(t, err.Error(), "#nope")
}

func TestSettleWaitsForRequests(t *testing.T) {
	w := NewWindow(nil, nil, nil)
	p := newPages()
	p.scheduler = w.Loop()
	w.fetcher = p

	var got []string
	w.Send("/a", "", false).Then(func(html string) { got = append(got, html) }, nil)
	w.Send("/b", "", false).Then(nil, func(f *types.Failure) { got = append(got, f.StatusText) })
	assert.Equal(t, 2, w.Pending())

	go func() {
		time.Sleep(10 * time.Millisecond)
		p.sent[1].Reject(nil)
		p.sent[0].Resolve("a")
	}()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	require.NoError(t, w.Settle(ctx))
	assert.Equal(t, 0, w.Pending())
	assert.Equal(t, []string{"error", "a"}, got)
}
