package reporting

import (
	"fmt"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/ethereum-optimism/infra/op-checker/harness"
)

// DefaultStoreSize bounds the number of units whose latest report is kept in memory
const DefaultStoreSize = 256

// Entry is the latest written report of a unit
type Entry struct {
	RunID     string         `json:"run_id"`
	Path      string         `json:"path"`
	WrittenAt time.Time      `json:"written_at"`
	Changed   bool           `json:"changed"`
	Report    harness.Report `json:"report"`
	Content   string         `json:"-"`
}

// Store keeps the latest report per unit description. It is safe for
// concurrent use; the least recently written unit is evicted when full.
type Store struct {
	cache *lru.Cache[string, Entry]
}

// NewStore creates a store holding at most size units
func NewStore(size int) (*Store, error) {
	if size <= 0 {
		size = DefaultStoreSize
	}
	cache, err := lru.New[string, Entry](size)
	if err != nil {
		return nil, fmt.Errorf("failed to create report cache: %w", err)
	}
	return &Store{cache: cache}, nil
}

// Put records e as the latest report of its unit
func (s *Store) Put(e Entry) {
	s.cache.Add(e.Report.Description, e)
}

// Get returns the latest report of the unit with the given description
func (s *Store) Get(description string) (Entry, bool) {
	return s.cache.Peek(description)
}

// List returns the stored reports, least recently written first
func (s *Store) List() []Entry {
	keys := s.cache.Keys()
	out := make([]Entry, 0, len(keys))
	for _, k := range keys {
		if e, ok := s.cache.Peek(k); ok {
			out = append(out, e)
		}
	}
	return out
}

// Len returns the number of stored units
func (s *Store) Len() int {
	return s.cache.Len()
}
