package ingest

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"go.uber.org/zap"

	"github.com/spigell/talent-ranker/internal/ledger"
	"github.com/spigell/talent-ranker/internal/logger"
	"github.com/spigell/talent-ranker/internal/profile"
)

// Fetcher is the profile source used while scraping.
type Fetcher interface {
	SearchPeople(ctx context.Context, keywords ...string) ([]string, error)
	GetProfile(ctx context.Context, id string) (*profile.Profile, error)
}

// Stats summarizes a batch written to a CSV file.
type Stats struct {
	Requested  int
	Duplicates int
	Invalid    int
	Failed     int
	Written    int
}

// Result is returned by ScrapeCompany.
type Result struct {
	// EmployeesFetched is false when the company was already in the ledger and no refetch was requested.
	EmployeesFetched bool
	Employees        Stats
	Contestants      Stats
}

type Scraper struct {
	fetcher Fetcher
	ledger  ledger.Ledger
	dataDir string
	logger  *zap.Logger
}

func New(fetcher Fetcher, l ledger.Ledger, dataDir string, log *zap.Logger) *Scraper {
	return &Scraper{
		fetcher: fetcher,
		ledger:  l,
		dataDir: dataDir,
		logger:  logger.WithFields(log),
	}
}

func fileStem(company string) string {
	return strings.ReplaceAll(strings.TrimSpace(company), " ", "_")
}

// EmployeeIDsPath is the file holding the URN ids found for a company.
func (s *Scraper) EmployeeIDsPath(company string) string {
	return filepath.Join(s.dataDir, fileStem(company)+"_employee_urn_ids.txt")
}

func (s *Scraper) EmployeesCSVPath(company string) string {
	return filepath.Join(s.dataDir, fileStem(company)+"_linkedin_profiles.csv")
}

func (s *Scraper) ContestantsCSVPath(company string) string {
	return filepath.Join(s.dataDir, fileStem(company)+"_contestant_linkedin_profiles.csv")
}

// Fetched reports whether the employees of the company were scraped before.
func (s *Scraper) Fetched(ctx context.Context, company string) (bool, error) {
	return s.ledger.Seen(ctx, company)
}

// FetchEmployeeIDs searches the employees of a company and stores their ids.
// The ledger is marked only once the id file is in place.
func (s *Scraper) FetchEmployeeIDs(ctx context.Context, company string) ([]string, error) {
	log := logger.WithCompany(s.logger, company)

	ids, err := s.fetcher.SearchPeople(ctx, company)
	if err != nil {
		return nil, fmt.Errorf("search employees: %w", err)
	}

	if len(ids) == 0 {
		log.Info("no profiles found")
		return nil, nil
	}

	path := s.EmployeeIDsPath(company)
	if err := writeLines(path, ids); err != nil {
		return nil, fmt.Errorf("write employee ids: %w", err)
	}

	added, err := s.ledger.Mark(ctx, company)
	if err != nil {
		return nil, fmt.Errorf("mark company as fetched: %w", err)
	}
	if !added {
		log.Debug("company was already in the ledger")
	}

	log.Info("employee ids stored", zap.String("path", path), zap.Int("count", len(ids)))
	return ids, nil
}

// ScrapeCompany fetches the company employees unless the ledger already has them (or force is set),
// writes their profiles and then always writes the contestant profiles from urls.
// Employees are skipped while another run holds the company claim.
func (s *Scraper) ScrapeCompany(ctx context.Context, company string, urls []string, force bool) (*Result, error) {
	if strings.TrimSpace(company) == "" {
		return nil, fmt.Errorf("company name is required")
	}

	result := &Result{}

	if err := s.scrapeEmployees(ctx, company, force, result); err != nil {
		return nil, err
	}

	var err error
	result.Contestants, err = s.AddContestants(ctx, company, urls)
	if err != nil {
		return nil, fmt.Errorf("write contestants: %w", err)
	}

	return result, nil
}

func (s *Scraper) scrapeEmployees(ctx context.Context, company string, force bool, result *Result) error {
	log := logger.WithCompany(s.logger, company)

	claimed, err := s.ledger.Claim(ctx, company)
	if err != nil {
		return fmt.Errorf("claim company: %w", err)
	}
	if !claimed {
		log.Info("company is being fetched by another run, skipping employees")
		return nil
	}
	defer func() {
		if err := s.ledger.Release(context.WithoutCancel(ctx), company); err != nil {
			log.Warn("failed to release company claim", zap.Error(err))
		}
	}()

	seen, err := s.ledger.Seen(ctx, company)
	if err != nil {
		return fmt.Errorf("check ledger: %w", err)
	}
	if seen && !force {
		log.Info("company has already been fetched, skipping employees")
		return nil
	}

	ids, err := s.FetchEmployeeIDs(ctx, company)
	if err != nil {
		return err
	}
	if len(ids) == 0 {
		return nil
	}

	result.EmployeesFetched = true
	result.Employees, err = s.WriteProfiles(ctx, profile.NewCSVWriter(s.EmployeesCSVPath(company)), ids)
	if err != nil {
		return fmt.Errorf("write employees: %w", err)
	}
	return nil
}

// AddContestants fetches the profiles behind urls into the company contestant CSV.
func (s *Scraper) AddContestants(ctx context.Context, company string, urls []string) (Stats, error) {
	ids, err := RunFilters(ctx, s.logger, []Filter{NewProfileURL(s.logger)}, urls)
	if err != nil {
		return Stats{}, err
	}

	stats, err := s.WriteProfiles(ctx, profile.NewCSVWriter(s.ContestantsCSVPath(company)), ids)
	stats.Requested = len(urls)
	stats.Invalid = len(urls) - len(ids)
	return stats, err
}

// WriteProfiles fetches every distinct id and appends the profiles to w.
// Failed fetches are logged and skipped.
func (s *Scraper) WriteProfiles(ctx context.Context, w *profile.CSVWriter, ids []string) (Stats, error) {
	stats := Stats{Requested: len(ids)}

	unique, err := RunFilters(ctx, s.logger, []Filter{NewDedup()}, ids)
	if err != nil {
		return stats, err
	}
	stats.Duplicates = len(ids) - len(unique)

	for _, id := range unique {
		if err := ctx.Err(); err != nil {
			return stats, err
		}

		log := s.logger.With(zap.String(logger.FieldProfileID, id))

		p, err := s.fetcher.GetProfile(ctx, id)
		if err != nil {
			stats.Failed++
			log.Warn("fetching profile failed", zap.Error(err))
			continue
		}

		if err := w.Append(p); err != nil {
			return stats, err
		}
		stats.Written++
		log.Info("profile fetched", zap.String("name", p.Name))
	}

	s.logger.Info("profiles written",
		zap.String("path", w.Path()),
		zap.Int("requested", stats.Requested),
		zap.Int("duplicates", stats.Duplicates),
		zap.Int("failed", stats.Failed),
		zap.Int("written", stats.Written),
	)

	return stats, nil
}
