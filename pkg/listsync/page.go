package listsync

import (
	"net/url"

	"github.com/matst80/slask-list/pkg/dom"
	"github.com/matst80/slask-list/pkg/events"
	"github.com/matst80/slask-list/pkg/transport"
)

// Page is the document side of a list region.
type Page interface {
	Document() *dom.Document
	Bus() *events.Bus
	Location() *url.URL
}

// History is the session history the controller keeps in sync with the list.
type History interface {
	PushState(rawURL, html string) error
	ReplaceState(rawURL, html string) error
	OnPopState(fn func(url, html string, ok bool))
}

type Transport interface {
	Send(rawURL, message string, showLoader bool) *transport.Operation
}

func resolveURL(page Page, rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil {
		return rawURL
	}
	return page.Location().ResolveReference(u).String()
}
