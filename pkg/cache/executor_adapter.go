package cache

import "github.com/reviewforge/reviewforge/internal/issue"

// ExecutorAdapter adapts a *ResultCache to internal/executor's narrow Cache
// interface (Get/Put keyed by analyzer name plus raw file content), keeping
// the Key-based API intact for direct callers such as the spill-to-disk
// path and existing tests.
type ExecutorAdapter struct {
	cache *ResultCache
}

// NewExecutorAdapter wraps cache for use as an executor.Cache.
func NewExecutorAdapter(cache *ResultCache) *ExecutorAdapter {
	return &ExecutorAdapter{cache: cache}
}

// Get implements executor.Cache.
func (a *ExecutorAdapter) Get(analyzer string, content []byte) ([]issue.Issue, bool) {
	return a.cache.Get(KeyFor(analyzer, content))
}

// Put implements executor.Cache.
func (a *ExecutorAdapter) Put(analyzer string, content []byte, issues []issue.Issue) {
	a.cache.Put(KeyFor(analyzer, content), issues)
}
