package offline

import (
	"context"
	"net/http"
	"sync"
	"time"

	"github.com/hashicorp/go-retryablehttp"
	"github.com/rs/zerolog"
)

// Monitor tracks backend reachability with a periodic HTTP probe and
// notifies subscribers on every transition. The expected wiring is a
// resync callback that refreshes the offline mirror when connectivity
// comes back.
type Monitor struct {
	probe    func(ctx context.Context) bool
	interval time.Duration
	log      zerolog.Logger

	mu      sync.Mutex
	online  bool
	nextID  int
	subs    map[int]func(bool)
	stop    chan struct{}
	stopped bool
}

// NewMonitor probes url every interval. Any HTTP response counts as
// online; only transport failure means offline.
func NewMonitor(url string, interval time.Duration, log zerolog.Logger) *Monitor {
	client := retryablehttp.NewClient()
	client.RetryMax = 1
	client.HTTPClient.Timeout = 5 * time.Second
	client.Logger = nil

	probe := func(ctx context.Context) bool {
		req, err := retryablehttp.NewRequestWithContext(ctx, http.MethodHead, url, nil)
		if err != nil {
			return false
		}
		resp, err := client.Do(req)
		if err != nil {
			return false
		}
		resp.Body.Close()
		return true
	}
	return newMonitor(probe, interval, log)
}

func newMonitor(probe func(ctx context.Context) bool, interval time.Duration, log zerolog.Logger) *Monitor {
	return &Monitor{
		probe:    probe,
		interval: interval,
		log:      log,
		online:   true, // assume reachable until a probe says otherwise
		subs:     map[int]func(bool){},
		stop:     make(chan struct{}),
	}
}

// Online reports the last observed connectivity state.
func (m *Monitor) Online() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.online
}

// Subscribe registers cb for connectivity transitions and returns an
// unsubscribe func. After unsubscribe (or Stop) returns, cb is never
// invoked again.
func (m *Monitor) Subscribe(cb func(online bool)) func() {
	m.mu.Lock()
	defer m.mu.Unlock()
	id := m.nextID
	m.nextID++
	m.subs[id] = cb
	return func() {
		m.mu.Lock()
		defer m.mu.Unlock()
		delete(m.subs, id)
	}
}

// Start runs the probe loop until ctx is cancelled or Stop is called.
func (m *Monitor) Start(ctx context.Context) {
	go func() {
		ticker := time.NewTicker(m.interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-m.stop:
				return
			case <-ticker.C:
				m.observe(m.probe(ctx))
			}
		}
	}()
}

func (m *Monitor) Stop() {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.stopped {
		return
	}
	m.stopped = true
	close(m.stop)
	m.subs = map[int]func(bool){}
}

// observe records the probe result and, on a transition, notifies the
// subscribers registered at that moment. Callbacks run outside the lock.
func (m *Monitor) observe(online bool) {
	m.mu.Lock()
	if m.stopped || online == m.online {
		m.mu.Unlock()
		return
	}
	m.online = online
	cbs := make([]func(bool), 0, len(m.subs))
	for _, cb := range m.subs {
		cbs = append(cbs, cb)
	}
	m.mu.Unlock()

	if online {
		m.log.Info().Msg("backend connectivity restored")
	} else {
		m.log.Warn().Msg("backend connectivity lost")
	}
	for _, cb := range cbs {
		cb(online)
	}
}
