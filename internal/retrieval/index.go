package retrieval

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/spigell/scheme-navigator/internal/catalog"
	"github.com/spigell/scheme-navigator/internal/filtering"
	"github.com/spigell/scheme-navigator/internal/metrics"
)

// ErrEmptyCatalog is returned when building an index from no entries.
var ErrEmptyCatalog = errors.New("cannot index an empty catalog")

const overFetchFactor = 2

// Hit is a single query result.
type Hit struct {
	Entry    *catalog.Entry
	Distance float32
	Score    float64
}

// Filters narrow query results by the entry's own eligibility rules.
type Filters struct {
	Region string
	MinAge *int
	MaxAge *int
}

func (f *Filters) steps() []filtering.Filter {
	if f == nil {
		return nil
	}
	var steps []filtering.Filter
	if f.Region != "" {
		steps = append(steps, filtering.NewRegion(f.Region))
	}
	if f.MinAge != nil || f.MaxAge != nil {
		steps = append(steps, filtering.NewAgeBounds(f.MinAge, f.MaxAge))
	}
	return steps
}

// snapshot is replaced wholesale on rebuild and never mutated afterwards.
type snapshot struct {
	dim     int
	vectors [][]float32
	entries []*catalog.Entry
}

// Index is an exact nearest-neighbour index over entry embeddings using
// squared L2 distance.
type Index struct {
	embedder Embedder
	logger   *zap.Logger

	mu   sync.RWMutex
	data *snapshot
}

func New(embedder Embedder, logger *zap.Logger) *Index {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Index{embedder: embedder, logger: logger}
}

// Build embeds every entry and swaps in the new index. On error the previous
// index is left in place.
func (idx *Index) Build(ctx context.Context, entries []*catalog.Entry) error {
	if len(entries) == 0 {
		return ErrEmptyCatalog
	}

	texts := make([]string, len(entries))
	for i, e := range entries {
		texts[i] = e.SearchText()
	}

	vectors, err := idx.embedder.Embed(ctx, texts)
	if err != nil {
		return fmt.Errorf("embed catalog: %w", err)
	}
	if len(vectors) != len(entries) {
		return fmt.Errorf("embedder returned %d vectors for %d entries", len(vectors), len(entries))
	}

	dim := len(vectors[0])
	for i, v := range vectors {
		if len(v) != dim || dim == 0 {
			return fmt.Errorf("entry %q: vector has %d dimensions, expected %d", entries[i].ID, len(v), dim)
		}
	}

	owned := make([]*catalog.Entry, len(entries))
	copy(owned, entries)

	idx.swap(&snapshot{dim: dim, vectors: vectors, entries: owned})
	idx.logger.Info("index built", zap.Int("entries", len(owned)), zap.Int("dimensions", dim))
	return nil
}

func (idx *Index) swap(s *snapshot) {
	idx.mu.Lock()
	idx.data = s
	idx.mu.Unlock()
}

func (idx *Index) current() *snapshot {
	idx.mu.RLock()
	defer idx.mu.RUnlock()
	return idx.data
}

// Len returns the number of indexed entries.
func (idx *Index) Len() int {
	if s := idx.current(); s != nil {
		return len(s.entries)
	}
	return 0
}

// Entries returns the indexed entries in index order.
func (idx *Index) Entries() []*catalog.Entry {
	s := idx.current()
	if s == nil {
		return nil
	}
	out := make([]*catalog.Entry, len(s.entries))
	copy(out, s.entries)
	return out
}

// Query returns at most topK entries closest to text that pass filters.
// An unbuilt index or a failed query embedding yields an empty result.
func (idx *Index) Query(ctx context.Context, text string, topK int, filters *Filters) []Hit {
	start := time.Now()
	defer func() { metrics.RetrievalDuration.Observe(time.Since(start).Seconds()) }()

	s := idx.current()
	if s == nil || len(s.entries) == 0 || topK <= 0 {
		metrics.RetrievalQueries.WithLabelValues(metrics.StatusEmpty).Inc()
		return []Hit{}
	}

	vectors, err := idx.embedder.Embed(ctx, []string{text})
	if err != nil || len(vectors) != 1 || len(vectors[0]) != s.dim {
		idx.logger.Warn("query embedding failed, returning no results",
			zap.Error(err),
			zap.Int("expected_dimensions", s.dim),
		)
		metrics.RetrievalQueries.WithLabelValues(metrics.StatusDegraded).Inc()
		return []Hit{}
	}

	candidates := s.nearest(vectors[0], min(overFetchFactor*topK, len(s.entries)))

	hits, _ := filtering.Apply(idx.logger, filters.steps(), candidates, func(h Hit) *catalog.Entry { return h.Entry })
	if len(hits) > topK {
		hits = hits[:topK]
	}

	metrics.RetrievalQueries.WithLabelValues(metrics.StatusOK).Inc()
	return hits
}

func (s *snapshot) nearest(query []float32, k int) []Hit {
	order := make([]int, len(s.vectors))
	distances := make([]float32, len(s.vectors))
	for i, v := range s.vectors {
		order[i] = i
		distances[i] = squaredL2(query, v)
	}

	sort.SliceStable(order, func(a, b int) bool {
		return distances[order[a]] < distances[order[b]]
	})

	hits := make([]Hit, 0, k)
	for _, i := range order[:k] {
		d := distances[i]
		hits = append(hits, Hit{
			Entry:    s.entries[i],
			Distance: d,
			Score:    1 / (1 + float64(d)),
		})
	}
	return hits
}

func squaredL2(a, b []float32) float32 {
	var sum float32
	for i := range a {
		d := a[i] - b[i]
		sum += d * d
	}
	return sum
}
