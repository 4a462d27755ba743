package talent

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"go.uber.org/zap"

	"github.com/spigell/talent-ranker/internal/linkedin"
	"github.com/spigell/talent-ranker/internal/logger"
	"github.com/spigell/talent-ranker/internal/profile"
	"github.com/spigell/talent-ranker/internal/ranking"
	"github.com/spigell/talent-ranker/internal/recommend"
	"github.com/spigell/talent-ranker/internal/similarity"
)

const unknownName = "Unknown Name"

// ErrInvalidInput marks unreadable uploads.
var ErrInvalidInput = errors.New("invalid input")

// ProfileFetcher fetches a single profile by public identifier.
type ProfileFetcher interface {
	GetProfile(ctx context.Context, id string) (*profile.Profile, error)
}

type Service struct {
	scorer      *similarity.Scorer
	fetcher     ProfileFetcher
	recommender *recommend.Recommender
	candidates  *profile.CSVWriter
	logger      *zap.Logger
}

type Options struct {
	Scorer      *similarity.Scorer
	Fetcher     ProfileFetcher
	Recommender *recommend.Recommender
	// Candidates receives every profile fetched for a recommendation. Optional.
	Candidates *profile.CSVWriter
	Logger     *zap.Logger
}

func New(opts Options) *Service {
	return &Service{
		scorer:      opts.Scorer,
		fetcher:     opts.Fetcher,
		recommender: opts.Recommender,
		candidates:  opts.Candidates,
		logger:      logger.WithFields(opts.Logger),
	}
}

// RankCSV scores every contestant against the reference profiles and returns
// the contestants sorted by weighted average, best first.
func (s *Service) RankCSV(ctx context.Context, references, contestants io.Reader) ([]ranking.Result, error) {
	if s.scorer == nil {
		return nil, errors.New("ranking is not configured")
	}

	refs, err := profile.ReadCSV(references)
	if err != nil {
		return nil, fmt.Errorf("%w: reference profiles: %s", ErrInvalidInput, err)
	}

	people, err := profile.ReadCSV(contestants)
	if err != nil {
		return nil, fmt.Errorf("%w: contestant profiles: %s", ErrInvalidInput, err)
	}

	refTexts := refs.NonEmptyTexts()
	if len(refTexts) == 0 {
		return nil, fmt.Errorf("reference profiles: %w", ranking.ErrEmptyVector)
	}

	s.logger.Info("ranking contestants",
		zap.Int("references", len(refTexts)),
		zap.Int("contestants", people.Len()),
	)

	refVectors, err := s.scorer.EmbedReferences(ctx, refTexts)
	if err != nil {
		return nil, err
	}

	scores, err := s.scorer.ScoreAll(ctx, people.Texts(), refVectors)
	if err != nil {
		return nil, err
	}

	results := make([]ranking.Result, 0, people.Len())
	for i, p := range people.Items {
		score, err := ranking.WeightedAverage(scores[i])
		if err != nil {
			return nil, err
		}

		name := strings.TrimSpace(p.Name)
		if name == "" {
			name = unknownName
		}

		results = append(results, ranking.Result{ContestantName: name, WeightedScore: score})
	}

	return ranking.Rank(results), nil
}

// Recommend fetches the profile behind profileURL and suggests the skills and
// certifications it lacks.
func (s *Service) Recommend(ctx context.Context, profileURL string) (*recommend.Recommendation, error) {
	if s.fetcher == nil || s.recommender == nil {
		return nil, errors.New("recommendations are not configured")
	}

	id, err := linkedin.PublicIdentifier(profileURL)
	if err != nil {
		return nil, err
	}

	log := s.logger.With(zap.String(logger.FieldProfileID, id))

	p, err := s.fetcher.GetProfile(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("fetch profile: %w", err)
	}

	if s.candidates != nil {
		if err := s.candidates.Append(p); err != nil {
			log.Warn("storing candidate failed", zap.String("path", s.candidates.Path()), zap.Error(err))
		}
	}

	rec, err := s.recommender.RecommendFor(p)
	if err != nil {
		return nil, err
	}

	log.Info("recommendation ready",
		zap.Strings("skills", rec.Skills),
		zap.Strings("certificates", rec.Certificates),
	)

	return rec, nil
}
