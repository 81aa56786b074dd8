package conversation

import (
	"context"
	"strings"

	"github.com/spigell/scheme-navigator/internal/catalog"
	"github.com/spigell/scheme-navigator/internal/filtering"
	"github.com/spigell/scheme-navigator/internal/retrieval"
)

// SearchRequest describes a free-text catalog search. Every field is optional.
type SearchRequest struct {
	Query  string
	Region string
	Topic  string
	MinAge *int
	MaxAge *int
	TopK   int
}

// Search ranks entries by similarity to the query when an index is built.
// Without a query or an index it falls back to plain filtering, where every
// result scores 1.0.
func (s *Service) Search(ctx context.Context, req SearchRequest) []retrieval.Hit {
	topK := req.TopK
	if topK <= 0 {
		topK = DefaultTopK
	}

	var topic []filtering.Filter
	if req.Topic != "" {
		topic = append(topic, filtering.NewTopic(req.Topic))
	}

	query := strings.TrimSpace(req.Query)
	if query != "" && s.index != nil && s.index.Len() > 0 {
		hits := s.index.Query(ctx, query, topK, &retrieval.Filters{
			Region: req.Region,
			MinAge: req.MinAge,
			MaxAge: req.MaxAge,
		})
		hits, _ = filtering.Apply(s.logger, topic, hits, func(h retrieval.Hit) *catalog.Entry { return h.Entry })
		return hits
	}

	steps := topic
	if req.Region != "" {
		steps = append(steps, filtering.NewRegion(req.Region))
	}
	if req.MinAge != nil || req.MaxAge != nil {
		steps = append(steps, filtering.NewAgeBounds(req.MinAge, req.MaxAge))
	}

	entries, _ := filtering.Run(s.logger, steps, s.entries)
	if len(entries) > topK {
		entries = entries[:topK]
	}

	hits := make([]retrieval.Hit, len(entries))
	for i, e := range entries {
		hits[i] = retrieval.Hit{Entry: e, Score: 1.0}
	}
	return hits
}
