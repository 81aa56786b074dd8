package gemini

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"google.golang.org/genai"
)

const DefaultEmbeddingDimensions = 768

// Embedder produces catalog and query embeddings with a Gemini embedding model.
type Embedder struct {
	models    modelsAPI
	modelName string
	dim       int
	timeout   time.Duration
}

func NewEmbedder(client *genai.Client, model string, dimensions int, timeout time.Duration) (*Embedder, error) {
	if client == nil {
		return nil, errors.New("gemini client is required")
	}
	return newEmbedder(client.Models, model, dimensions, timeout), nil
}

func newEmbedder(models modelsAPI, model string, dimensions int, timeout time.Duration) *Embedder {
	if model = strings.TrimSpace(model); model == "" {
		model = defaultEmbeddingModel
	}
	if dimensions <= 0 {
		dimensions = DefaultEmbeddingDimensions
	}
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &Embedder{models: models, modelName: model, dim: dimensions, timeout: timeout}
}

func (e *Embedder) Dimensions() int { return e.dim }

func (e *Embedder) Name() string { return "gemini/" + e.modelName }

func (e *Embedder) Embed(ctx context.Context, texts []string) ([][]float32, error) {
	if len(texts) == 0 {
		return nil, nil
	}

	contents := make([]*genai.Content, len(texts))
	for i, t := range texts {
		contents[i] = &genai.Content{Parts: []*genai.Part{{Text: t}}}
	}

	dim := int32(e.dim)
	cfg := &genai.EmbedContentConfig{OutputDimensionality: &dim}

	ctx, cancel := context.WithTimeout(ctx, e.timeout)
	defer cancel()

	resp, err := e.models.EmbedContent(ctx, e.modelName, contents, cfg)
	if err != nil {
		return nil, fmt.Errorf("embed content: %w", err)
	}
	if resp == nil || len(resp.Embeddings) != len(texts) {
		got := 0
		if resp != nil {
			got = len(resp.Embeddings)
		}
		return nil, fmt.Errorf("gemini returned %d embeddings for %d texts", got, len(texts))
	}

	out := make([][]float32, len(texts))
	for i, emb := range resp.Embeddings {
		if emb == nil || len(emb.Values) != e.dim {
			return nil, fmt.Errorf("embedding %d has unexpected size", i)
		}
		out[i] = emb.Values
	}
	return out, nil
}
