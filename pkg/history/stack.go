package history

import (
	"context"
	"log"
	"net/url"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/matst80/slask-list/pkg/types"
)

// Entry is one position of the session history. Key points at the state
// payload in the store and is empty for plain page loads.
type Entry struct {
	URL      string
	Key      string
	Document uint64
}

// Stack is the session history of a window: the address bar is the URL of the current entry.
type Stack struct {
	mu      sync.Mutex
	entries []Entry
	index   int
	store   Store
	timeout time.Duration
}

func NewStack(store Store) *Stack {
	if store == nil {
		store = NewMemoryStore(0)
	}
	return &Stack{
		index:   -1,
		store:   store,
		timeout: 2 * time.Second,
	}
}

func (s *Stack) context() (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), s.timeout)
}

func (s *Stack) resolve(rawURL string) (string, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return "", err
	}
	if s.index >= 0 {
		base, err := url.Parse(s.entries[s.index].URL)
		if err == nil {
			u = base.ResolveReference(u)
		}
	}
	return u.String(), nil
}

// truncate drops the entries after the current one.
func (s *Stack) truncate() {
	if s.index+1 >= len(s.entries) {
		return
	}
	ctx, cancel := s.context()
	defer cancel()
	for _, e := range s.entries[s.index+1:] {
		if e.Key == "" {
			continue
		}
		if err := s.store.Delete(ctx, e.Key); err != nil {
			log.Printf("failed to delete history state %s: %v", e.Key, err)
		}
	}
	s.entries = s.entries[:s.index+1]
}

// Navigate adds an entry for a newly loaded document.
func (s *Stack) Navigate(rawURL string, document uint64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, err := s.resolve(rawURL)
	if err != nil {
		return &types.HistoryError{Op: "navigate", URL: rawURL, Err: err}
	}
	s.truncate()
	s.entries = append(s.entries, Entry{URL: u, Document: document})
	s.index = len(s.entries) - 1
	return nil
}

// PushState adds an entry with html as its state. When the state cannot be
// stored the stack is left unchanged.
func (s *Stack) PushState(rawURL, html string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, err := s.resolve(rawURL)
	if err != nil {
		return &types.HistoryError{Op: "push", URL: rawURL, Err: err}
	}
	key := uuid.NewString()
	ctx, cancel := s.context()
	defer cancel()
	if err := s.store.Save(ctx, key, html); err != nil {
		return &types.HistoryError{Op: "push", URL: u, Err: err}
	}
	var document uint64
	if s.index >= 0 {
		document = s.entries[s.index].Document
	}
	s.truncate()
	s.entries = append(s.entries, Entry{URL: u, Key: key, Document: document})
	s.index = len(s.entries) - 1
	return nil
}

// ReplaceState sets URL and state of the current entry.
func (s *Stack) ReplaceState(rawURL, html string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.index < 0 {
		return &types.HistoryError{Op: "replace", URL: rawURL, Err: errNoEntry}
	}
	u, err := s.resolve(rawURL)
	if err != nil {
		return &types.HistoryError{Op: "replace", URL: rawURL, Err: err}
	}
	cur := &s.entries[s.index]
	key := cur.Key
	if key == "" {
		key = uuid.NewString()
	}
	ctx, cancel := s.context()
	defer cancel()
	if err := s.store.Save(ctx, key, html); err != nil {
		return &types.HistoryError{Op: "replace", URL: u, Err: err}
	}
	cur.URL = u
	cur.Key = key
	return nil
}

func (s *Stack) Current() (Entry, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.index < 0 {
		return Entry{}, false
	}
	return s.entries[s.index], true
}

// Location returns the address bar URL, or an empty URL before the first load.
func (s *Stack) Location() *url.URL {
	e, ok := s.Current()
	if !ok {
		return &url.URL{}
	}
	u, err := url.Parse(e.URL)
	if err != nil {
		return &url.URL{}
	}
	return u
}

// Go moves delta entries through the history and returns the new current entry.
func (s *Stack) Go(delta int) (Entry, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	next := s.index + delta
	if delta == 0 || next < 0 || next >= len(s.entries) {
		return Entry{}, false
	}
	s.index = next
	return s.entries[next], true
}

func (s *Stack) Back() (Entry, bool) {
	return s.Go(-1)
}

func (s *Stack) Forward() (Entry, bool) {
	return s.Go(1)
}

// State loads the payload of e. Missing or unreadable payloads report false.
func (s *Stack) State(e Entry) (string, bool) {
	if e.Key == "" {
		return "", false
	}
	ctx, cancel := s.context()
	defer cancel()
	html, ok, err := s.store.Load(ctx, e.Key)
	if err != nil {
		log.Printf("failed to load history state for %s: %v", e.URL, err)
		return "", false
	}
	return html, ok
}

// SetDocument tags the current entry with a document id.
func (s *Stack) SetDocument(document uint64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.index >= 0 {
		s.entries[s.index].Document = document
	}
}

func (s *Stack) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.entries)
}

func (s *Stack) Index() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.index
}
