package agent

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/hrygo/plotbuddy/ai/routing"
	"github.com/hrygo/plotbuddy/store"
	"github.com/hrygo/plotbuddy/store/db/memory"
)

var errStoreDown = errors.New("store down")

// brokenDriver fails profile and history reads.
type brokenDriver struct {
	store.Driver
}

func (brokenDriver) GetUserProfile(context.Context, string) (*store.UserProfile, error) {
	return nil, errStoreDown
}

func (brokenDriver) GetInteractionHistory(context.Context, string) (*store.InteractionHistory, error) {
	return nil, errStoreDown
}

func newTestStore(t *testing.T) *store.Store {
	t.Helper()
	s := store.New(memory.NewDB(), store.DefaultConfig())
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func newBrokenStore(t *testing.T) *store.Store {
	t.Helper()
	return store.New(brokenDriver{Driver: memory.NewDB()}, store.DefaultConfig())
}

func newTestRouter() *routing.Service {
	return routing.NewService(routing.DefaultConfig())
}

func setHistory(t *testing.T, s *store.Store, h *store.InteractionHistory) {
	t.Helper()
	_, err := s.UpsertInteractionHistory(context.Background(), h)
	require.NoError(t, err)
}

type routeRecord struct {
	route  string
	source string
}

type fakeRecorder struct {
	mu       sync.Mutex
	routes   []routeRecord
	handlers map[string][]string
	hits     int
	misses   int
	active   int
	peak     int
}

func newFakeRecorder() *fakeRecorder {
	return &fakeRecorder{handlers: make(map[string][]string)}
}

func (r *fakeRecorder) RecordRoute(route, source string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.routes = append(r.routes, routeRecord{route, source})
}

func (r *fakeRecorder) RecordHandler(agent, status string, _ time.Duration) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.handlers[agent] = append(r.handlers[agent], status)
}

func (r *fakeRecorder) RecordCacheHit(string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.hits++
}

func (r *fakeRecorder) RecordCacheMiss(string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.misses++
}

func (r *fakeRecorder) TrackActive() func() {
	r.mu.Lock()
	r.active++
	if r.active > r.peak {
		r.peak = r.active
	}
	r.mu.Unlock()
	return func() {
		r.mu.Lock()
		r.active--
		r.mu.Unlock()
	}
}
