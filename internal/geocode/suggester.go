package geocode

import (
	"context"
	"sync"
)

// Searcher is satisfied by *Client.
type Searcher interface {
	Search(ctx context.Context, q string, limit int) ([]Suggestion, error)
}

// Suggester serializes autocomplete lookups with a latest-request-wins
// rule scoped per client: a new query from the same client cancels that
// client's previous in-flight request, and a response belonging to a
// superseded query is discarded instead of being surfaced. Queries from
// different clients never interfere with each other.
type Suggester struct {
	searcher Searcher

	mu      sync.Mutex
	clients map[string]*clientState
}

type clientState struct {
	seq    uint64
	cancel context.CancelFunc
}

func NewSuggester(searcher Searcher) *Suggester {
	return &Suggester{searcher: searcher, clients: map[string]*clientState{}}
}

// Suggest runs the lookup for the given client key. The second return
// value reports whether the result is current; stale results come back as
// (nil, false, nil) so the caller never renders them.
func (s *Suggester) Suggest(ctx context.Context, client, q string, limit int) ([]Suggestion, bool, error) {
	s.mu.Lock()
	st, ok := s.clients[client]
	if !ok {
		st = &clientState{}
		s.clients[client] = st
	}
	st.seq++
	mine := st.seq
	if st.cancel != nil {
		st.cancel()
	}
	ctx, cancel := context.WithCancel(ctx)
	st.cancel = cancel
	s.mu.Unlock()

	res, err := s.searcher.Search(ctx, q, limit)

	s.mu.Lock()
	latest := st.seq == mine
	if latest {
		cancel()
		// Nothing in flight for this client anymore; drop its entry so
		// the registry stays bounded by concurrent clients.
		delete(s.clients, client)
	}
	s.mu.Unlock()

	if !latest {
		return nil, false, nil
	}
	if err != nil {
		return nil, true, err
	}
	return res, true, nil
}
