package pipeline

import (
	"sync"

	"bookfetch/internal/asset"
)

// ResultSet collects validated assets in completion order. After Seal, further
// appends are dropped so a snapshot taken at cancellation stays accurate.
type ResultSet struct {
	mu     sync.Mutex
	items  []asset.Validated
	sealed bool
}

// Append records v unless the set is sealed. It reports whether v was kept.
func (r *ResultSet) Append(v asset.Validated) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.sealed {
		return false
	}
	r.items = append(r.items, v)
	return true
}

// Seal stops the set from accepting new items and returns its final contents.
func (r *ResultSet) Seal() []asset.Validated {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sealed = true
	return append([]asset.Validated(nil), r.items...)
}

// Snapshot returns a copy of the current contents.
func (r *ResultSet) Snapshot() []asset.Validated {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]asset.Validated(nil), r.items...)
}

// Len returns the number of recorded items.
func (r *ResultSet) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.items)
}
