// Package gemini wraps the Google generative AI SDK for embedding generation
// and conversational completion.
package gemini

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"
)

type Embedder struct {
	client    *genai.Client
	model     string
	dimension int
}

// NewEmbedder builds an embedding client. dimension is the index's configured
// dimension; every returned vector is checked against it, since a mismatched
// write fails at the provider.
func NewEmbedder(ctx context.Context, apiKey, model string, dimension int, opts ...option.ClientOption) (*Embedder, error) {
	all := append([]option.ClientOption{option.WithAPIKey(apiKey)}, opts...)
	client, err := genai.NewClient(ctx, all...)
	if err != nil {
		return nil, err
	}
	return &Embedder{client: client, model: model, dimension: dimension}, nil
}

func (e *Embedder) Embed(ctx context.Context, text string) ([]float32, error) {
	slog.DebugContext(ctx, "embedding content", "model", e.model, "length", len(text))

	em := e.client.EmbeddingModel(e.model)
	res, err := em.EmbedContent(ctx, genai.Text(text))
	if err != nil {
		return nil, err
	}
	if res.Embedding == nil || len(res.Embedding.Values) == 0 {
		return nil, fmt.Errorf("empty embedding received")
	}
	if e.dimension > 0 && len(res.Embedding.Values) != e.dimension {
		return nil, fmt.Errorf("embedding dimension %d does not match configured %d", len(res.Embedding.Values), e.dimension)
	}
	return res.Embedding.Values, nil
}

func (e *Embedder) Close() error {
	return e.client.Close()
}
