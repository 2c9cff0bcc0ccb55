package urlmatch

import "sync"

// Matching runs on every navigation event, so compiled patterns are cached
// by (type, pattern). Compile failures are cached too — a broken pattern
// stays broken until the user edits it.
type cacheEntry struct {
	c   *Compiled
	err error
}

var (
	cacheMu sync.RWMutex
	cache   = make(map[string]cacheEntry)
)

// Cached returns a compiled matcher for (pattern, typ), compiling on first
// use. Safe for concurrent use.
func Cached(pattern string, typ Type) (*Compiled, error) {
	key := string(typ) + "\x00" + pattern

	cacheMu.RLock()
	e, ok := cache[key]
	cacheMu.RUnlock()
	if ok {
		return e.c, e.err
	}

	c, err := Compile(pattern, typ)

	cacheMu.Lock()
	// Bound the cache: profile sets are small, but a misbehaving caller
	// feeding unbounded patterns must not grow memory forever.
	if len(cache) >= 4096 {
		cache = make(map[string]cacheEntry)
	}
	cache[key] = cacheEntry{c: c, err: err}
	cacheMu.Unlock()

	return c, err
}
