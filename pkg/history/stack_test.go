package history

import (
	"context"
	"errors"
	"testing"

	"github.com/matst80/slask-list/pkg/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type failingStore struct {
	*MemoryStore
	SaveFunc func(key, html string) error
}

func (f *failingStore) Save(ctx context.Context, key, html string) error {
	if f.SaveFunc != nil {
		return f.SaveFunc(key, html)
	}
	return f.MemoryStore.Save(ctx, key, html)
}

func TestPushBackForwardRoundTrip(t *testing.T) {
	s := NewStack(nil)
	require.NoError(t, s.Navigate("http://shop.test/items", 1))
	require.NoError(t, s.PushState("/items?page=2", "<ul>...</ul>"))
	assert.Equal(t, "http://shop.test/items?page=2", s.Location().String())

	e, ok := s.Back()
	require.True(t, ok)
	assert.Equal(t, "http://shop.test/items", e.URL)
	_, ok = s.State(e)
	assert.False(t, ok)

	e, ok = s.Forward()
	require.True(t, ok)
	html, ok := s.State(e)
	require.True(t, ok)
	assert.Equal(t, "<ul>...</ul>", html)
	assert.Equal(t, uint64(1), e.Document)

	_, ok = s.Forward()
	assert.False(t, ok)
}

func TestPushTruncatesForwardEntries(t *testing.T) {
	store := NewMemoryStore(0)
	s := NewStack(store)
	require.NoError(t, s.Navigate("http://shop.test/items", 1))
	require.NoError(t, s.PushState("?page=2", "two"))
	require.NoError(t, s.PushState("?page=3", "three"))
	s.Back()
	s.Back()
	require.NoError(t, s.PushState("?page=5", "five"))

	assert.Equal(t, 2, s.Len())
	assert.Equal(t, 1, s.Index())
	assert.Equal(t, len("five"), store.Used())
}

func TestPushQuotaExceeded(t *testing.T) {
	s := NewStack(NewMemoryStore(8))
	require.NoError(t, s.Navigate("http://shop.test/items", 1))
	err := s.PushState("?page=2", "<ul>a long fragment</ul>")
	require.Error(t, err)
	var he *types.HistoryError
	require.True(t, errors.As(err, &he))
	assert.ErrorIs(t, err, types.ErrQuotaExceeded)
	assert.Equal(t, 1, s.Len())
	assert.Equal(t, "http://shop.test/items", s.Location().String())
}

func TestReplaceState(t *testing.T) {
	store := &failingStore{MemoryStore: NewMemoryStore(0)}
	s := NewStack(store)
	assert.Error(t, s.ReplaceState("/x", "x"))

	require.NoError(t, s.Navigate("http://shop.test/items?page=1", 1))
	require.NoError(t, s.ReplaceState("?page=1", "one"))
	e, ok := s.Current()
	require.True(t, ok)
	html, ok := s.State(e)
	assert.True(t, ok)
	assert.Equal(t, "one", html)

	store.SaveFunc = func(key, html string) error { return errors.New("down") }
	assert.Error(t, s.ReplaceState("?page=9", "nine"))
	assert.Equal(t, "http://shop.test/items?page=1", s.Location().String())
}

func TestLocationBeforeLoad(t *testing.T) {
	s := NewStack(nil)
	assert.Equal(t, "", s.Location().String())
	_, ok := s.Current()
	assert.False(t, ok)
	_, ok = s.Back()
	assert.False(t, ok)
}
