package cmd

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/redis/go-redis/v9"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/spigell/talent-ranker/internal/embedding/gemini"
	"github.com/spigell/talent-ranker/internal/ledger"
	"github.com/spigell/talent-ranker/internal/linkedin"
	"github.com/spigell/talent-ranker/internal/logger"
	"github.com/spigell/talent-ranker/internal/profile"
	"github.com/spigell/talent-ranker/internal/recommend"
	"github.com/spigell/talent-ranker/internal/secrets"
	"github.com/spigell/talent-ranker/internal/similarity"
	"github.com/spigell/talent-ranker/internal/talent"
)

func setup() (*Config, *zap.Logger, error) {
	log, err := logger.New(viper.GetBool("json"), viper.GetBool("debug"))
	if err != nil {
		return nil, nil, fmt.Errorf("creating a logger: %w", err)
	}

	config, err := getConfig()
	if err != nil {
		return nil, nil, fmt.Errorf("getting a config: %w", err)
	}

	log.Debug("starting", zap.String("app", app), zap.String("version", version))
	return config, log, nil
}

// dataPath resolves relative paths against the data directory.
func dataPath(config *Config, path string) string {
	if path == "" || filepath.IsAbs(path) {
		return path
	}
	return filepath.Join(config.DataDir, path)
}

func newScorer(ctx context.Context, config *Config, log *zap.Logger) (*similarity.Scorer, error) {
	apiKey, err := secrets.Load(secrets.Source{
		Name:  "gemini api key",
		Value: config.Gemini.APIKey,
		File:  config.Gemini.APIKeyFile,
		Env:   "GEMINI_API_KEY",
	})
	if err != nil {
		return nil, fmt.Errorf("%w (set gemini.api-key-file or GEMINI_API_KEY_FILE)", err)
	}

	embedder, err := gemini.New(ctx, gemini.Options{
		APIKey:     apiKey,
		Model:      config.Gemini.Model,
		MaxRetries: config.Gemini.MaxRetries,
		BatchSize:  config.Gemini.BatchSize,
	}, log)
	if err != nil {
		return nil, err
	}

	logger.WithEmbeddingModel(log, embedder.Model()).Info("embedder ready")
	return similarity.NewScorer(embedder), nil
}

func newLinkedIn(config *Config, log *zap.Logger) (*linkedin.Client, error) {
	email := strings.TrimSpace(config.LinkedIn.Email)
	if email == "" {
		return nil, fmt.Errorf("linkedin email is not configured (set LINKEDIN_EMAIL)")
	}

	password, err := secrets.Load(secrets.Source{
		Name:  "linkedin password",
		Value: config.LinkedIn.Password,
		File:  config.LinkedIn.PasswordFile,
		Env:   "LINKEDIN_PASSWORD",
	})
	if err != nil {
		return nil, err
	}

	client := linkedin.New(linkedin.Credentials{Email: email, Password: password}, log)
	if config.LinkedIn.UserAgent != "" {
		client.UserAgent = config.LinkedIn.UserAgent
	}
	client.SearchLimit = config.LinkedIn.SearchLimit

	return client, nil
}

func newRecommender(config *Config) (*recommend.Recommender, error) {
	skills, err := recommend.ReadTableFile(dataPath(config, config.Recommend.SkillsFile), recommend.SkillColumn)
	if err != nil {
		return nil, err
	}

	certifications, err := recommend.ReadTableFile(dataPath(config, config.Recommend.CertificationsFile), recommend.CertificationColumn)
	if err != nil {
		return nil, err
	}

	return recommend.New(skills, certifications, nil), nil
}

// newLedger returns the ledger and a cleanup function.
func newLedger(ctx context.Context, config *Config, log *zap.Logger) (ledger.Ledger, func(), error) {
	backend := strings.ToLower(strings.TrimSpace(config.Ledger.Backend))

	switch backend {
	case "", "file":
		path := dataPath(config, config.Ledger.File)
		log.Debug("using file ledger", zap.String("path", path))
		return ledger.NewFile(path), func() {}, nil
	case "redis":
		rc := config.Ledger.Redis
		if rc == nil || rc.Addr == "" {
			return nil, nil, fmt.Errorf("redis ledger requires ledger.redis.addr (or REDIS_ADDR)")
		}

		client := redis.NewClient(&redis.Options{
			Addr:     rc.Addr,
			Password: rc.Password,
			DB:       rc.DB,
		})

		l := ledger.NewRedis(client, rc.Key)
		if err := l.Ping(ctx); err != nil {
			client.Close()
			return nil, nil, err
		}

		log.Debug("using redis ledger", zap.String("addr", rc.Addr))
		return l, func() { client.Close() }, nil
	default:
		return nil, nil, fmt.Errorf("unsupported ledger backend: %s", config.Ledger.Backend)
	}
}

func newService(ctx context.Context, config *Config, log *zap.Logger) (*talent.Service, error) {
	scorer, err := newScorer(ctx, config, log)
	if err != nil {
		return nil, fmt.Errorf("building embedder: %w", err)
	}

	opts := talent.Options{Scorer: scorer, Logger: log}

	recommender, err := newRecommender(config)
	if err != nil {
		log.Warn("recommendations disabled", zap.Error(err))
		return talent.New(opts), nil
	}

	client, err := newLinkedIn(config, log)
	if err != nil {
		log.Warn("recommendations disabled", zap.Error(err))
		return talent.New(opts), nil
	}

	opts.Recommender = recommender
	opts.Fetcher = client
	if path := config.Recommend.CandidatesFile; path != "" {
		opts.Candidates = profile.NewCSVWriter(dataPath(config, path))
	}

	return talent.New(opts), nil
}
