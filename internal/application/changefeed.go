// Package application contains use-case orchestration services.
package application

import "sync"

// ChangeFeed is an explicit observable for data changes. Interested
// parts of the application subscribe instead of polling; publishes are
// non-blocking and coalesce when a subscriber has not drained yet.
type ChangeFeed struct {
	mu   sync.Mutex
	subs map[int]chan struct{}
	next int
}

// NewChangeFeed creates an empty feed.
func NewChangeFeed() *ChangeFeed {
	return &ChangeFeed{subs: make(map[int]chan struct{})}
}

// Subscribe registers a listener. The returned cancel function must be
// called to release the subscription.
func (f *ChangeFeed) Subscribe() (<-chan struct{}, func()) {
	f.mu.Lock()
	defer f.mu.Unlock()

	id := f.next
	f.next++

	ch := make(chan struct{}, 1)
	f.subs[id] = ch

	cancel := func() {
		f.mu.Lock()
		defer f.mu.Unlock()
		delete(f.subs, id)
	}
	return ch, cancel
}

// Publish notifies all subscribers. Never blocks: a subscriber with a
// pending notification simply keeps the one it has.
func (f *ChangeFeed) Publish() {
	f.mu.Lock()
	defer f.mu.Unlock()

	for _, ch := range f.subs {
		select {
		case ch <- struct{}{}:
		default:
		}
	}
}
