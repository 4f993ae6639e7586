package form

import (
	"net/url"
	"testing"

	"github.com/matst80/slask-list/pkg/dom"
	"github.com/matst80/slask-list/pkg/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const page = `<html><body>
<div id="wrap">
<form name="filter" action="/items" method="get">
  <input type="text" name="q" value="old">
  <input type="hidden" name="page" value="4">
  <select name="category">
    <option value="">All</option>
    <option value="books" selected>Books</option>
    <option value="games">Games</option>
  </select>
  <select name="tags" multiple>
    <option value="a" selected>a</option>
    <option value="b" selected>b</option>
    <option value="c">c</option>
  </select>
  <input type="radio" name="stock" value="any">
  <input type="radio" name="stock" value="in" checked>
  <input type="checkbox" name="sale" value="1">
  <textarea name="note">hello</textarea>
  <input type="text" name="off" value="x" disabled>
  <button type="submit" name="go" value="1">Filter</button>
</form>
</div>
</body></html>`

func newForm(t *testing.T) *Form {
	d, err := dom.ParseString(page)
	require.NoError(t, err)
	f, err := New(d, dom.Selector(`form[name="filter"]`))
	require.NoError(t, err)
	return f
}

func TestNewResolvesTarget(t *testing.T) {
	d, err := dom.ParseString(page)
	require.NoError(t, err)

	_, err = New(d, dom.Selector("#missing"))
	require.Error(t, err)
	assert.True(t, types.IsValidationError(err))
	assert.Contains(t, err.Error(), "#missing")

	_, err = New(d, nil)
	assert.True(t, types.IsValidationError(err))

	f, err := New(d, dom.Selector("#wrap"))
	require.NoError(t, err)
	assert.Equal(t, "filter", f.Name())

	f, err = New(d, dom.Node(d.Find("form")))
	require.NoError(t, err)
	assert.Equal(t, "/items", f.Action())
	assert.Equal(t, "GET", f.Method())
}

func TestValues(t *testing.T) {
	f := newForm(t)
	v := f.Values()
	assert.Equal(t, "old", v.Get("q"))
	assert.Equal(t, "books", v.Get("category"))
	assert.Equal(t, []string{"a", "b"}, v["tags"])
	assert.Equal(t, "in", v.Get("stock"))
	assert.Equal(t, "hello", v.Get("note"))
	assert.NotContains(t, v, "sale")
	assert.NotContains(t, v, "off")
	assert.NotContains(t, v, "go")
	assert.Equal(t, []string{"q", "page", "category", "tags", "stock", "sale", "note", "off"}, f.Names())
}

func TestSetValue(t *testing.T) {
	f := newForm(t)
	f.SetValue("q", "new")
	f.SetValue("category", "games")
	f.SetValue("tags", "c")
	f.SetValue("stock", "any")
	f.SetValue("sale", "1")
	f.SetValue("note", "bye")

	v := f.Values()
	assert.Equal(t, "new", v.Get("q"))
	assert.Equal(t, "games", v.Get("category"))
	assert.Equal(t, []string{"c"}, v["tags"])
	assert.Equal(t, "any", v.Get("stock"))
	assert.Equal(t, "1", v.Get("sale"))
	assert.Equal(t, "bye", v.Get("note"))
}

func TestResetData(t *testing.T) {
	f := newForm(t)
	f.ResetData([]string{"q"})
	v := f.Values()
	assert.Equal(t, "old", v.Get("q"))
	assert.Equal(t, "", v.Get("page"))
	// a single select without selection falls back to its first option
	assert.Equal(t, "", v.Get("category"))
	assert.Empty(t, v["tags"])
	assert.Empty(t, v["stock"])
	assert.Equal(t, "", v.Get("note"))

	f.SetData(url.Values{"category": {"books"}, "stock": {"in"}})
	assert.Equal(t, "books", f.Value("category"))
	assert.Equal(t, []string{"in"}, f.Get("stock"))
}

func TestRemoveElement(t *testing.T) {
	f := newForm(t)
	f.RemoveElement("page")
	f.RemoveElement("")
	assert.NotContains(t, f.Names(), "page")
	assert.Contains(t, f.Names(), "q")
}

func TestRequestURL(t *testing.T) {
	f := newForm(t)
	f.RemoveElement("page")
	f.SetValue("note")
	base, _ := url.Parse("http://example.com/list?x=1#top")

	got, err := f.RequestURL(base, url.Values{"q": {"base"}, "sort": {"name"}})
	require.NoError(t, err)
	u, err := url.Parse(got)
	require.NoError(t, err)
	assert.Equal(t, "example.com", u.Host)
	assert.Equal(t, "/items", u.Path)
	assert.Equal(t, url.Values{
		"q":        {"old"},
		"sort":     {"name"},
		"category": {"books"},
		"tags":     {"a", "b"},
		"stock":    {"in"},
	}, u.Query())
	assert.Equal(t, "", u.Fragment)
}

func TestRequestURLEmptyFieldDropsBaseEntry(t *testing.T) {
	f := newForm(t)
	f.SetValue("q")
	got, err := f.RequestURL(nil, url.Values{"q": {"base"}})
	require.NoError(t, err)
	u, _ := url.Parse(got)
	assert.NotContains(t, u.Query(), "q")
}

func TestListeners(t *testing.T) {
	f := newForm(t)
	changes, submits := 0, 0
	f.AddElementListener("change", "select:not([multiple])", "t", func(e *dom.Event) { changes++ }).
		AddSubmitListener("t", func(e *dom.Event) { submits++ })

	d := f.Document()
	d.Dispatch(d.Find(`select[name="category"]`), "change")
	d.Dispatch(d.Find(`select[name="tags"]`), "change")
	e := d.Dispatch(f.Selection(), "submit")

	assert.Equal(t, 1, changes)
	assert.Equal(t, 1, submits)
	assert.True(t, e.DefaultPrevented())
}

func TestEncodeData(t *testing.T) {
	type resetData struct {
		Query    string `schema:"q"`
		Category string `schema:"category"`
		Page     int    `schema:"page,omitempty"`
	}
	data, err := EncodeData(resetData{Query: "", Category: "books"})
	require.NoError(t, err)
	assert.Equal(t, []string{"books"}, data["category"])
	assert.Equal(t, []string{""}, data["q"])
	assert.NotContains(t, data, "page")
}
