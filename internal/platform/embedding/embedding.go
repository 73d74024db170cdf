package embedding

import (
	"context"
	"errors"
)

// Embedder turns text into a dense vector. Implementations must honor ctx.
type Embedder interface {
	Embed(ctx context.Context, text string) ([]float32, error)
}

// BatchEmbedder is implemented by providers that can embed many inputs per call.
type BatchEmbedder interface {
	Embedder
	EmbedBatch(ctx context.Context, inputs []string) ([][]float32, error)
}

var ErrEmptyVector = errors.New("embedding: empty vector")

// Func adapts a plain function to Embedder.
type Func func(ctx context.Context, text string) ([]float32, error)

func (f Func) Embed(ctx context.Context, text string) ([]float32, error) { return f(ctx, text) }

// Batch embeds inputs with e, using EmbedBatch when available.
func Batch(ctx context.Context, e Embedder, inputs []string) ([][]float32, error) {
	if be, ok := e.(BatchEmbedder); ok {
		return be.EmbedBatch(ctx, inputs)
	}
	out := make([][]float32, len(inputs))
	for i, in := range inputs {
		v, err := e.Embed(ctx, in)
		if err != nil {
			return nil, err
		}
		out[i] = v
	}
	return out, nil
}
