package navwatch

import "sync"

// tabTracker collapses the stream of target-info updates into navigation
// events: page targets only, and only when the tab's URL actually changed.
// Chrome emits several TargetInfoChanged per load (title updates, favicon,
// attachment changes) all carrying the same URL.
type tabTracker struct {
	mu      sync.Mutex
	lastURL map[string]string
}

func newTabTracker() *tabTracker {
	return &tabTracker{lastURL: make(map[string]string)}
}

// shouldEmit records the URL for the tab and reports whether the update is a
// navigation worth delivering.
func (t *tabTracker) shouldEmit(targetType, tabID, url string) bool {
	if targetType != "page" {
		return false
	}
	if url == "" {
		return false
	}

	t.mu.Lock()
	defer t.mu.Unlock()
	if t.lastURL[tabID] == url {
		return false
	}
	t.lastURL[tabID] = url
	return true
}

// forget drops a closed tab's entry.
func (t *tabTracker) forget(tabID string) {
	t.mu.Lock()
	delete(t.lastURL, tabID)
	t.mu.Unlock()
}
