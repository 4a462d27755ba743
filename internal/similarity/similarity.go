package similarity

import (
	"context"
	"errors"
	"fmt"

	"gonum.org/v1/gonum/floats"

	"github.com/spigell/talent-ranker/internal/embedding"
)

// ErrDimensionMismatch is returned when two vectors have different lengths.
var ErrDimensionMismatch = errors.New("vector dimensions do not match")

// Cosine returns the cosine similarity of a and b. A zero vector yields 0.
func Cosine(a, b []float64) (float64, error) {
	if len(a) != len(b) {
		return 0, fmt.Errorf("%w: %d != %d", ErrDimensionMismatch, len(a), len(b))
	}

	normA := floats.Norm(a, 2)
	normB := floats.Norm(b, 2)
	if normA == 0 || normB == 0 {
		return 0, nil
	}

	return floats.Dot(a, b) / (normA * normB), nil
}

// Scorer pairs contestant embeddings with reference embeddings.
type Scorer struct {
	embedder embedding.Embedder
}

func NewScorer(embedder embedding.Embedder) *Scorer {
	return &Scorer{embedder: embedder}
}

// EmbedReferences embeds the reference texts keeping their order.
func (s *Scorer) EmbedReferences(ctx context.Context, texts []string) ([][]float64, error) {
	if len(texts) == 0 {
		return nil, nil
	}

	vectors, err := s.embedder.Embed(ctx, texts)
	if err != nil {
		return nil, fmt.Errorf("embed references: %w", err)
	}

	if len(vectors) != len(texts) {
		return nil, &embedding.CountMismatchError{Expected: len(texts), Got: len(vectors)}
	}

	return vectors, nil
}

// Score embeds text and returns its similarity to every reference, position i matching reference i.
func (s *Scorer) Score(ctx context.Context, text string, references [][]float64) ([]float64, error) {
	vector, err := embedding.EmbedOne(ctx, s.embedder, text)
	if err != nil {
		return nil, fmt.Errorf("embed contestant: %w", err)
	}

	return Similarities(vector, references)
}

// Similarities computes the cosine similarity of vector against every reference in order.
func Similarities(vector []float64, references [][]float64) ([]float64, error) {
	scores := make([]float64, len(references))
	for i, reference := range references {
		score, err := Cosine(vector, reference)
		if err != nil {
			return nil, fmt.Errorf("reference %d: %w", i, err)
		}
		scores[i] = score
	}

	return scores, nil
}

// ScoreAll scores every text against the references with a single embedding call.
// Empty texts are not embedded and score 0 against every reference.
func (s *Scorer) ScoreAll(ctx context.Context, texts []string, references [][]float64) ([][]float64, error) {
	scores := make([][]float64, len(texts))

	positions := make([]int, 0, len(texts))
	batch := make([]string, 0, len(texts))
	for i, text := range texts {
		if text == "" {
			scores[i] = make([]float64, len(references))
			continue
		}
		positions = append(positions, i)
		batch = append(batch, text)
	}

	if len(batch) == 0 {
		return scores, nil
	}

	vectors, err := s.embedder.Embed(ctx, batch)
	if err != nil {
		return nil, fmt.Errorf("embed contestants: %w", err)
	}
	if len(vectors) != len(batch) {
		return nil, &embedding.CountMismatchError{Expected: len(batch), Got: len(vectors)}
	}

	for j, pos := range positions {
		row, err := Similarities(vectors[j], references)
		if err != nil {
			return nil, err
		}
		scores[pos] = row
	}

	return scores, nil
}
