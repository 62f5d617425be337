package geocode

import (
	"strings"
	"sync"

	"github.com/sells-group/cre-analytics/internal/model"
)

// memo caches lookups for the life of the client. Portfolio files and
// rent rolls repeat the same building address across records, so a
// run-scoped cache spares most of the round trips.
type memo struct {
	mu      sync.RWMutex
	results map[string]Result
}

func newMemo() *memo {
	return &memo{results: make(map[string]Result)}
}

func memoKey(addr model.Address) string {
	return strings.ToLower(oneLine(addr))
}

func (m *memo) lookup(addr model.Address) (Result, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	r, ok := m.results[memoKey(addr)]
	return r, ok
}

func (m *memo) store(addr model.Address, r Result) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.results[memoKey(addr)] = r
}
