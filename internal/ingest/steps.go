package ingest

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/spigell/talent-ranker/internal/linkedin"
	"github.com/spigell/talent-ranker/internal/logger"
)

// Filter is a single step applied to a batch of identifiers before fetching.
type Filter interface {
	Name() string
	Apply(ctx context.Context, ids []string) ([]string, Step, error)
}

// Step describes the result of executing a filtering step.
type Step struct {
	Initial int
	Dropped int
	Left    int
}

// RunFilters executes the supplied filters sequentially.
func RunFilters(ctx context.Context, log *zap.Logger, steps []Filter, ids []string) ([]string, error) {
	log = logger.WithFields(log)

	for _, step := range steps {
		next, info, err := step.Apply(ctx, ids)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", step.Name(), err)
		}

		log.Debug("ingest step",
			zap.String("name", step.Name()),
			zap.Int("initial", info.Initial),
			zap.Int("dropped", info.Dropped),
			zap.Int("left", info.Left),
		)

		ids = next
	}

	return ids, nil
}

type dedupFilter struct{}

// NewDedup drops repeated identifiers keeping the first occurrence.
func NewDedup() Filter {
	return dedupFilter{}
}

func (dedupFilter) Name() string { return "dedup" }

func (dedupFilter) Apply(_ context.Context, ids []string) ([]string, Step, error) {
	seen := make(map[string]struct{}, len(ids))
	left := make([]string, 0, len(ids))
	for _, id := range ids {
		if id == "" {
			continue
		}
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		left = append(left, id)
	}

	return left, Step{Initial: len(ids), Dropped: len(ids) - len(left), Left: len(left)}, nil
}

type profileURLFilter struct {
	logger *zap.Logger
}

// NewProfileURL converts profile URLs into public identifiers.
// Malformed URLs are logged and dropped.
func NewProfileURL(log *zap.Logger) Filter {
	return &profileURLFilter{logger: logger.WithFields(log)}
}

func (f *profileURLFilter) Name() string { return "profile_url" }

func (f *profileURLFilter) Apply(_ context.Context, urls []string) ([]string, Step, error) {
	ids := make([]string, 0, len(urls))
	for _, url := range urls {
		id, err := linkedin.PublicIdentifier(url)
		if errors.Is(err, linkedin.ErrInvalidProfileURL) {
			f.logger.Warn("skipping profile url", zap.String("url", url), zap.Error(err))
			continue
		}
		if err != nil {
			return nil, Step{}, err
		}
		ids = append(ids, id)
	}

	return ids, Step{Initial: len(urls), Dropped: len(urls) - len(ids), Left: len(ids)}, nil
}
