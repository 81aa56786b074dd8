package retrieval

import (
	"context"
	"hash/fnv"
	"math"
	"strings"
	"unicode"
)

// Embedder maps texts to fixed-dimensional vectors.
type Embedder interface {
	Embed(ctx context.Context, texts []string) ([][]float32, error)
	Dimensions() int
}

const DefaultDimensions = 256

// EmbedderName identifies the model behind e so saved vectors are only reused
// with the embedder that produced them. Embedders without a Name method report "".
func EmbedderName(e Embedder) string {
	if named, ok := e.(interface{ Name() string }); ok {
		return named.Name()
	}
	return ""
}

var stopwords = map[string]struct{}{
	"a": {}, "an": {}, "and": {}, "are": {}, "as": {}, "at": {}, "be": {}, "by": {},
	"for": {}, "from": {}, "in": {}, "is": {}, "it": {}, "of": {}, "on": {}, "or": {},
	"the": {}, "to": {}, "with": {}, "who": {}, "their": {}, "under": {}, "up": {},
	"benefits": {}, "scheme": {}, "yojana": {}, "i": {}, "me": {}, "my": {}, "am": {},
}

// HashEmbedder is a deterministic bag-of-words embedder using feature hashing.
// It needs no network access and is stable across processes, so saved indexes
// stay valid between runs.
type HashEmbedder struct {
	dim int
}

func NewHashEmbedder(dimensions int) *HashEmbedder {
	if dimensions <= 0 {
		dimensions = DefaultDimensions
	}
	return &HashEmbedder{dim: dimensions}
}

func (h *HashEmbedder) Dimensions() int { return h.dim }

func (h *HashEmbedder) Name() string { return "hash" }

func (h *HashEmbedder) Embed(ctx context.Context, texts []string) ([][]float32, error) {
	out := make([][]float32, len(texts))
	for i, text := range texts {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		out[i] = h.embed(text)
	}
	return out, nil
}

func (h *HashEmbedder) embed(text string) []float32 {
	vec := make([]float32, h.dim)
	for _, token := range tokenize(text) {
		hasher := fnv.New32a()
		_, _ = hasher.Write([]byte(token))
		vec[hasher.Sum32()%uint32(h.dim)]++
	}
	normalize(vec)
	return vec
}

func tokenize(text string) []string {
	fields := strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})

	tokens := make([]string, 0, len(fields))
	for _, f := range fields {
		if _, skip := stopwords[f]; skip {
			continue
		}
		tokens = append(tokens, stem(f))
	}
	return tokens
}

// stem strips a plural suffix so "students" and "student" share a bucket.
func stem(token string) string {
	if len(token) > 3 && strings.HasSuffix(token, "s") && !strings.HasSuffix(token, "ss") {
		return token[:len(token)-1]
	}
	return token
}

func normalize(vec []float32) {
	var sum float64
	for _, v := range vec {
		sum += float64(v) * float64(v)
	}
	if sum == 0 {
		return
	}
	norm := float32(math.Sqrt(sum))
	for i := range vec {
		vec[i] /= norm
	}
}
