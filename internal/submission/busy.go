package submission

import "sync"

// busyTracker is the single in-flight flag shared by every step of a
// submission, keyed by post id or client draft key.
type busyTracker struct {
	mu       sync.Mutex
	inFlight map[string]struct{}
}

func newBusyTracker() *busyTracker {
	return &busyTracker{inFlight: make(map[string]struct{})}
}

func (b *busyTracker) acquire(key string) bool {
	b.mu.Lock()
	defer b.mu.Unlock()

	if _, ok := b.inFlight[key]; ok {
		return false
	}
	b.inFlight[key] = struct{}{}
	return true
}

func (b *busyTracker) release(key string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	delete(b.inFlight, key)
}

func (b *busyTracker) busy(key string) bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	_, ok := b.inFlight[key]
	return ok
}
