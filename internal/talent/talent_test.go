package talent

import (
	"context"
	"errors"
	"math/rand/v2"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/spigell/talent-ranker/internal/linkedin"
	"github.com/spigell/talent-ranker/internal/profile"
	"github.com/spigell/talent-ranker/internal/ranking"
	"github.com/spigell/talent-ranker/internal/recommend"
	"github.com/spigell/talent-ranker/internal/similarity"
)

// keywordEmbedder maps a text onto axes by keyword so similarities are predictable.
type keywordEmbedder struct {
	err error
}

func (k keywordEmbedder) Embed(_ context.Context, texts []string) ([][]float64, error) {
	if k.err != nil {
		return nil, k.err
	}

	out := make([][]float64, 0, len(texts))
	for _, text := range texts {
		vector := []float64{0, 0}
		if strings.Contains(text, "Go") {
			vector[0] = 1
		}
		if strings.Contains(text, "Java") {
			vector[1] = 1
		}
		out = append(out, vector)
	}
	return out, nil
}

type fakeFetcher struct {
	profiles map[string]*profile.Profile
}

func (f fakeFetcher) GetProfile(_ context.Context, id string) (*profile.Profile, error) {
	p, ok := f.profiles[id]
	if !ok {
		return nil, linkedin.ErrProfileNotFound
	}
	return p, nil
}

const references = `Name,Occupation,Skills
Ref1,Engineer,Go
Ref2,,
Ref3,Engineer,Go
`

func TestRankCSV(t *testing.T) {
	s := New(Options{Scorer: similarity.NewScorer(keywordEmbedder{}), Logger: zap.NewNop()})

	contestants := `Name,Occupation,Skills
Java Dev,Engineer,Java
Gopher,Engineer,Go
,,Go
Empty,,
`

	results, err := s.RankCSV(context.Background(), strings.NewReader(references), strings.NewReader(contestants))
	require.NoError(t, err)

	names := make([]string, 0, len(results))
	for _, r := range results {
		names = append(names, r.ContestantName)
	}

	assert.Equal(t, []string{"Gopher", unknownName, "Java Dev", "Empty"}, names)
	assert.InDelta(t, 1.0, results[0].WeightedScore, 1e-9)
	assert.InDelta(t, 0.0, results[2].WeightedScore, 1e-9)
}

func TestRankCSVEmptyReferences(t *testing.T) {
	s := New(Options{Scorer: similarity.NewScorer(keywordEmbedder{})})

	_, err := s.RankCSV(context.Background(), strings.NewReader("Name,Occupation\nA,\n"), strings.NewReader("Name\nB\n"))
	assert.ErrorIs(t, err, ranking.ErrEmptyVector)
}

func TestRankCSVInvalidInput(t *testing.T) {
	s := New(Options{Scorer: similarity.NewScorer(keywordEmbedder{})})

	_, err := s.RankCSV(context.Background(), strings.NewReader(""), strings.NewReader("Name\nB\n"))
	assert.ErrorIs(t, err, ErrInvalidInput)
}

func TestRankCSVEmbedderFailure(t *testing.T) {
	boom := errors.New("quota")
	s := New(Options{Scorer: similarity.NewScorer(keywordEmbedder{err: boom})})

	_, err := s.RankCSV(context.Background(), strings.NewReader(references), strings.NewReader("Name,Skills\nA,Go\n"))
	assert.ErrorIs(t, err, boom)
	assert.NotErrorIs(t, err, ErrInvalidInput)
}

func newRecommender() *recommend.Recommender {
	skills := &recommend.FrequencyTable{}
	certs := &recommend.FrequencyTable{}
	for i, label := range []string{"Go", "AWS", "Linux", "SQL", "Docker", "Terraform", "Python"} {
		skills.Entries = append(skills.Entries, recommend.Entry{Label: label, Count: 10 - i})
	}
	for i, label := range []string{"CKA", "CKAD", "AWS SAA", "GCP ACE", "Azure AZ-104"} {
		certs.Entries = append(certs.Entries, recommend.Entry{Label: label, Count: 10 - i})
	}
	return recommend.New(skills, certs, rand.New(rand.NewPCG(7, 7)))
}

func TestRecommendStoresCandidate(t *testing.T) {
	path := filepath.Join(t.TempDir(), "candidate.csv")
	s := New(Options{
		Fetcher: fakeFetcher{profiles: map[string]*profile.Profile{
			"jane-doe": {Name: "Jane Doe", Skills: "Go, AWS"},
		}},
		Recommender: newRecommender(),
		Candidates:  profile.NewCSVWriter(path),
	})

	rec, err := s.Recommend(context.Background(), "https://www.linkedin.com/in/jane-doe/")
	require.NoError(t, err)

	assert.Len(t, rec.Skills, recommend.SampleSize)
	assert.NotContains(t, rec.Skills, "Go")
	assert.NotContains(t, rec.Skills, "AWS")
	assert.ElementsMatch(t, []string{"CKA", "CKAD", "AWS SAA", "GCP ACE", "Azure AZ-104"}, rec.Certificates)

	stored, err := profile.ReadCSVFile(path)
	require.NoError(t, err)
	assert.Equal(t, []string{"Jane Doe"}, stored.Names())
}

func TestRecommendErrors(t *testing.T) {
	s := New(Options{
		Fetcher: fakeFetcher{profiles: map[string]*profile.Profile{
			"expert": {Skills: "Go, AWS, Linux", Certifications: "CKA"},
		}},
		Recommender: newRecommender(),
	})
	ctx := context.Background()

	_, err := s.Recommend(ctx, "https://www.linkedin.com/")
	assert.ErrorIs(t, err, linkedin.ErrInvalidProfileURL)

	_, err = s.Recommend(ctx, "https://www.linkedin.com/in/ghost/")
	assert.ErrorIs(t, err, linkedin.ErrProfileNotFound)

	_, err = s.Recommend(ctx, "https://www.linkedin.com/in/expert/")
	assert.ErrorIs(t, err, recommend.ErrInsufficientItems)
}
