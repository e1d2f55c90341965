package jobs

import "sync"

// ChannelLock is the set of channel ids with a job in progress. TryAcquire is
// a single check-and-insert under the mutex.
type ChannelLock struct {
	mu   sync.Mutex
	held map[string]struct{}
}

// NewChannelLock creates an empty lock set.
func NewChannelLock() *ChannelLock {
	return &ChannelLock{held: make(map[string]struct{})}
}

// TryAcquire adds id and reports true, or reports false if id is already held.
func (l *ChannelLock) TryAcquire(id string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	if _, busy := l.held[id]; busy {
		return false
	}
	l.held[id] = struct{}{}
	return true
}

// Release removes id. Releasing an id that is not held is a no-op.
func (l *ChannelLock) Release(id string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	delete(l.held, id)
}

// Held reports whether id is currently locked.
func (l *ChannelLock) Held(id string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	_, busy := l.held[id]
	return busy
}

// Len is the number of channels currently locked.
func (l *ChannelLock) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.held)
}
