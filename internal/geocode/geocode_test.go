package geocode_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"openmat-france/backend/internal/geocode"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const banFixture = `{
  "features": [
    {
      "properties": {"label": "8 Boulevard du Port 80000 Amiens", "city": "Amiens", "postcode": "80000"},
      "geometry": {"coordinates": [2.290084, 49.897443]}
    },
    {
      "properties": {"label": "Rue du Port 80000 Amiens", "city": "Amiens", "postcode": "80000"},
      "geometry": {"coordinates": [2.29009, 49.8974]}
    }
  ]
}`

func TestSearchMapsFeatures(t *testing.T) {
	var gotQuery string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotQuery = r.URL.Query().Get("q")
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(banFixture))
	}))
	defer srv.Close()

	c := geocode.NewClient(srv.URL)
	out, err := c.Search(context.Background(), "8 bd du port", 5)
	require.NoError(t, err)

	assert.Equal(t, "8 bd du port", gotQuery)
	require.Len(t, out, 2)
	assert.Equal(t, "8 Boulevard du Port 80000 Amiens", out[0].Label)
	assert.Equal(t, "Amiens", out[0].City)
	assert.Equal(t, "80000", out[0].Postcode)
	assert.InDelta(t, 49.897443, out[0].Latitude, 1e-9)
	assert.InDelta(t, 2.290084, out[0].Longitude, 1e-9)
}

func TestSearchShortQuerySkipsNetwork(t *testing.T) {
	called := false
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		called = true
	}))
	defer srv.Close()

	c := geocode.NewClient(srv.URL)
	out, err := c.Search(context.Background(), "ab", 5)
	require.NoError(t, err)
	assert.Empty(t, out)
	assert.False(t, called)
}

// blockingSearcher lets the test hold a request in flight and observe
// when it actually started.
type blockingSearcher struct {
	mu      sync.Mutex
	entered map[string]chan struct{}
	release map[string]chan struct{}
}

func newBlockingSearcher() *blockingSearcher {
	return &blockingSearcher{
		entered: map[string]chan struct{}{},
		release: map[string]chan struct{}{},
	}
}

func (b *blockingSearcher) chanFor(m map[string]chan struct{}, q string) chan struct{} {
	b.mu.Lock()
	defer b.mu.Unlock()
	ch, ok := m[q]
	if !ok {
		ch = make(chan struct{})
		m[q] = ch
	}
	return ch
}

func (b *blockingSearcher) gate(q string) chan struct{}    { return b.chanFor(b.release, q) }
func (b *blockingSearcher) started(q string) chan struct{} { return b.chanFor(b.entered, q) }

func (b *blockingSearcher) Search(ctx context.Context, q string, _ int) ([]geocode.Suggestion, error) {
	close(b.started(q))
	select {
	case <-b.gate(q):
		return []geocode.Suggestion{{Label: q}}, nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

type suggestOutcome struct {
	items   []geocode.Suggestion
	current bool
	err     error
}

func TestSuggesterLatestRequestWins(t *testing.T) {
	searcher := newBlockingSearcher()
	s := geocode.NewSuggester(searcher)

	first := make(chan suggestOutcome, 1)
	go func() {
		items, current, err := s.Suggest(context.Background(), "alice", "paris", 5)
		first <- suggestOutcome{items, current, err}
	}()
	<-searcher.started("paris")

	// Issue a newer query from the same client while the first is still in
	// flight; the first request's context gets cancelled and its eventual
	// result discarded.
	close(searcher.gate("lyon"))
	items, current, err := s.Suggest(context.Background(), "alice", "lyon", 5)
	require.NoError(t, err)
	assert.True(t, current)
	require.Len(t, items, 1)
	assert.Equal(t, "lyon", items[0].Label)

	close(searcher.gate("paris"))
	got := <-first
	assert.False(t, got.current)
	assert.Nil(t, got.items)
	assert.NoError(t, got.err)
}

func TestSuggesterKeepsClientsIndependent(t *testing.T) {
	searcher := newBlockingSearcher()
	s := geocode.NewSuggester(searcher)

	first := make(chan suggestOutcome, 1)
	go func() {
		items, current, err := s.Suggest(context.Background(), "alice", "paris", 5)
		first <- suggestOutcome{items, current, err}
	}()
	<-searcher.started("paris")

	// A query from a different client must not cancel or supersede alice's
	// in-flight one.
	close(searcher.gate("lyon"))
	items, current, err := s.Suggest(context.Background(), "bob", "lyon", 5)
	require.NoError(t, err)
	assert.True(t, current)
	require.Len(t, items, 1)
	assert.Equal(t, "lyon", items[0].Label)

	close(searcher.gate("paris"))
	got := <-first
	assert.NoError(t, got.err)
	assert.True(t, got.current)
	require.Len(t, got.items, 1)
	assert.Equal(t, "paris", got.items[0].Label)
}
