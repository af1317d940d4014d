package reconcile_test

import (
	"context"
	"errors"
	"slices"
	"sync"

	"animator-service/internal/entity"
	"animator-service/internal/feed"
)

type fakeSubscription struct {
	ch     chan entity.StatusUpdate
	once   sync.Once
	closed chan struct{}
}

func newFakeSubscription() *fakeSubscription {
	return &fakeSubscription{
		ch:     make(chan entity.StatusUpdate, 8),
		closed: make(chan struct{}),
	}
}

func (s *fakeSubscription) Updates() <-chan entity.StatusUpdate { return s.ch }

func (s *fakeSubscription) Close() error {
	s.once.Do(func() { close(s.closed) })
	return nil
}

func (s *fakeSubscription) IsClosed() bool {
	select {
	case <-s.closed:
		return true
	default:
		return false
	}
}

type fakeSubscriber struct {
	mu       sync.Mutex
	failures int
	calls    [][]string
	subs     []*fakeSubscription
}

func (f *fakeSubscriber) Subscribe(ctx context.Context, ids []string) (feed.Subscription, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.calls = append(f.calls, slices.Clone(ids))
	if f.failures > 0 {
		f.failures--
		return nil, errors.New("redis unavailable")
	}
	sub := newFakeSubscription()
	f.subs = append(f.subs, sub)
	return sub, nil
}

func (f *fakeSubscriber) Calls() [][]string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return slices.Clone(f.calls)
}

func (f *fakeSubscriber) Last() *fakeSubscription {
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.subs) == 0 {
		return nil
	}
	return f.subs[len(f.subs)-1]
}

type fakeQuerier struct {
	mu       sync.Mutex
	failures int
	rows     map[string]entity.StatusUpdate
	calls    [][]string
}

func newFakeQuerier() *fakeQuerier {
	return &fakeQuerier{rows: map[string]entity.StatusUpdate{}}
}

func (f *fakeQuerier) StatusByIDs(ctx context.Context, ids []string) ([]entity.StatusUpdate, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.calls = append(f.calls, slices.Clone(ids))
	if f.failures > 0 {
		f.failures--
		return nil, errors.New("connection refused")
	}
	var out []entity.StatusUpdate
	for _, id := range ids {
		if row, ok := f.rows[id]; ok {
			out = append(out, row)
		}
	}
	return out, nil
}

func (f *fakeQuerier) Set(row entity.StatusUpdate) {
	f.mu.Lock()
	f.rows[row.JobID] = row
	f.mu.Unlock()
}

func (f *fakeQuerier) CallCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.calls)
}
