package embedding

import "context"

// Provider generates embedding vectors for a batch of texts.
// Implementations must be deterministic for identical input and return
// one vector per input text, in order.
type Provider interface {
	Embed(ctx context.Context, texts []string) ([][]float32, error)
}
