package embedding

import (
	"context"
	"fmt"
)

// Embedder turns texts into fixed-length vectors.
// The returned slice is aligned with texts.
type Embedder interface {
	Embed(ctx context.Context, texts []string) ([][]float64, error)
}

// EmbedOne embeds a single text.
func EmbedOne(ctx context.Context, e Embedder, text string) ([]float64, error) {
	vectors, err := e.Embed(ctx, []string{text})
	if err != nil {
		return nil, err
	}

	if len(vectors) != 1 {
		return nil, &CountMismatchError{Expected: 1, Got: len(vectors)}
	}

	return vectors[0], nil
}

// CountMismatchError is returned when an embedder answers with a different number of vectors than requested.
type CountMismatchError struct {
	Expected int
	Got      int
}

func (e *CountMismatchError) Error() string {
	return fmt.Sprintf("embedder returned %d vectors, expected %d", e.Got, e.Expected)
}
