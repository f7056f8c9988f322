package treemap

import (
	"encoding/binary"
	"math"
	"slices"
	"sync"

	"github.com/cespare/xxhash/v2"

	"github.com/matzehuels/squaremap/pkg/squarify"
)

// DefaultMemoSize bounds the number of entries a [Memo] keeps.
const DefaultMemoSize = 4096

// Memo caches squarify results keyed on the weight sequence and the bounds.
// A frame loop that re-lays out an unchanged tree in an unchanged window hits
// the cache for every directory. Memo is safe for concurrent use.
type Memo struct {
	mu      sync.Mutex
	entries map[uint64]memoEntry
	limit   int
	hits    int
	misses  int
}

type memoEntry struct {
	weights []float64
	bounds  squarify.Rect
	rects   []squarify.Rect
}

// NewMemo creates a memo holding at most limit entries. A limit <= 0 uses
// [DefaultMemoSize]. When the limit is reached the memo starts over empty.
func NewMemo(limit int) *Memo {
	if limit <= 0 {
		limit = DefaultMemoSize
	}
	return &Memo{entries: make(map[uint64]memoEntry), limit: limit}
}

// Squarify returns squarify.Squarify(weights, bounds), reusing a previous
// result when both inputs are unchanged. The returned slice is a copy.
func (m *Memo) Squarify(weights []float64, bounds squarify.Rect) ([]squarify.Rect, error) {
	key := memoKey(weights, bounds)

	m.mu.Lock()
	if e, ok := m.entries[key]; ok && e.bounds == bounds && slices.Equal(e.weights, weights) {
		m.hits++
		out := slices.Clone(e.rects)
		m.mu.Unlock()
		return out, nil
	}
	m.misses++
	m.mu.Unlock()

	rects, err := squarify.Squarify(weights, bounds)
	if err != nil {
		return nil, err
	}

	m.mu.Lock()
	if len(m.entries) >= m.limit {
		clear(m.entries)
	}
	m.entries[key] = memoEntry{
		weights: slices.Clone(weights),
		bounds:  bounds,
		rects:   slices.Clone(rects),
	}
	m.mu.Unlock()
	return rects, nil
}

// Stats returns the hit and miss counters.
func (m *Memo) Stats() (hits, misses int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.hits, m.misses
}

// Len returns the number of cached entries.
func (m *Memo) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.entries)
}

// Reset drops every entry and zeroes the counters.
func (m *Memo) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	clear(m.entries)
	m.hits, m.misses = 0, 0
}

func memoKey(weights []float64, b squarify.Rect) uint64 {
	d := xxhash.New()
	var buf [8]byte
	put := func(f float64) {
		binary.LittleEndian.PutUint64(buf[:], math.Float64bits(f))
		_, _ = d.Write(buf[:])
	}
	put(b.X)
	put(b.Y)
	put(b.W)
	put(b.H)
	for _, w := range weights {
		put(w)
	}
	return d.Sum64()
}
