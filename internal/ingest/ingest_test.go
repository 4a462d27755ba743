package ingest

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"github.com/spigell/talent-ranker/internal/ledger"
	"github.com/spigell/talent-ranker/internal/linkedin"
	"github.com/spigell/talent-ranker/internal/profile"
)

type fakeFetcher struct {
	searchIDs   []string
	searchDelay time.Duration
	profiles    map[string]*profile.Profile

	mu        sync.Mutex
	searches  int
	requested []string
}

func (f *fakeFetcher) SearchPeople(context.Context, ...string) ([]string, error) {
	f.mu.Lock()
	f.searches++
	f.mu.Unlock()

	time.Sleep(f.searchDelay)
	return f.searchIDs, nil
}

func (f *fakeFetcher) GetProfile(_ context.Context, id string) (*profile.Profile, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.requested = append(f.requested, id)
	p, ok := f.profiles[id]
	if !ok {
		return nil, linkedin.ErrProfileNotFound
	}
	return p, nil
}

func newScraper(t *testing.T, fetcher Fetcher) (*Scraper, *ledger.FileLedger, string) {
	t.Helper()

	dir := t.TempDir()
	l := ledger.NewFile(filepath.Join(dir, "fetched_companies.txt"))
	return New(fetcher, l, dir, zap.NewNop()), l, dir
}

func readProfiles(t *testing.T, path string) *profile.Profiles {
	t.Helper()

	profiles, err := profile.ReadCSVFile(path)
	require.NoError(t, err)
	return profiles
}

func TestScrapeCompanyFetchesEmployeesAndContestants(t *testing.T) {
	fetcher := &fakeFetcher{
		searchIDs: []string{"ID1", "ID2", "ID1", "ID3"},
		profiles: map[string]*profile.Profile{
			"ID1":      {Name: "Ann"},
			"ID2":      {Name: "Bob"},
			"jane-doe": {Name: "Jane"},
		},
	}
	s, l, dir := newScraper(t, fetcher)
	ctx := context.Background()

	result, err := s.ScrapeCompany(ctx, "Huawei Cloud", []string{
		"https://www.linkedin.com/in/jane-doe/",
		"https://www.linkedin.com/in/jane-doe",
		"https://www.linkedin.com/",
	}, false)
	require.NoError(t, err)

	assert.True(t, result.EmployeesFetched)
	assert.Equal(t, Stats{Requested: 4, Duplicates: 1, Failed: 1, Written: 2}, result.Employees)
	assert.Equal(t, Stats{Requested: 3, Duplicates: 1, Invalid: 1, Written: 1}, result.Contestants)

	ids, err := ReadLines(filepath.Join(dir, "Huawei_Cloud_employee_urn_ids.txt"))
	require.NoError(t, err)
	assert.Equal(t, []string{"ID1", "ID2", "ID1", "ID3"}, ids)

	employees := readProfiles(t, filepath.Join(dir, "Huawei_Cloud_linkedin_profiles.csv"))
	assert.Equal(t, []string{"Ann", "Bob"}, employees.Names())

	contestants := readProfiles(t, filepath.Join(dir, "Huawei_Cloud_contestant_linkedin_profiles.csv"))
	assert.Equal(t, []string{"Jane"}, contestants.Names())

	seen, err := l.Seen(ctx, "huawei cloud")
	require.NoError(t, err)
	assert.True(t, seen)
}

func TestScrapeCompanySkipsFetchedCompany(t *testing.T) {
	fetcher := &fakeFetcher{
		searchIDs: []string{"ID1"},
		profiles:  map[string]*profile.Profile{"ID1": {Name: "Ann"}, "jane": {Name: "Jane"}},
	}
	s, l, _ := newScraper(t, fetcher)
	ctx := context.Background()

	_, err := l.Mark(ctx, "Acme")
	require.NoError(t, err)

	result, err := s.ScrapeCompany(ctx, "Acme", []string{"https://www.linkedin.com/in/jane/"}, false)
	require.NoError(t, err)

	assert.False(t, result.EmployeesFetched)
	assert.Equal(t, 0, fetcher.searches)
	assert.Equal(t, 1, result.Contestants.Written)

	_, err = os.Stat(s.EmployeesCSVPath("Acme"))
	assert.True(t, errors.Is(err, os.ErrNotExist))

	result, err = s.ScrapeCompany(ctx, "Acme", nil, true)
	require.NoError(t, err)
	assert.True(t, result.EmployeesFetched)
	assert.Equal(t, 1, fetcher.searches)
}

func TestFetchEmployeeIDsWithoutResultsDoesNotMark(t *testing.T) {
	s, l, _ := newScraper(t, &fakeFetcher{})
	ctx := context.Background()

	ids, err := s.FetchEmployeeIDs(ctx, "Nobody Inc")
	require.NoError(t, err)
	assert.Empty(t, ids)

	seen, err := l.Seen(ctx, "Nobody Inc")
	require.NoError(t, err)
	assert.False(t, seen)
}

func TestWriteProfilesAppendsAcrossBatches(t *testing.T) {
	fetcher := &fakeFetcher{profiles: map[string]*profile.Profile{"a": {Name: "A"}, "b": {Name: "B"}}}
	s, _, dir := newScraper(t, fetcher)
	w := profile.NewCSVWriter(filepath.Join(dir, "out.csv"))

	_, err := s.WriteProfiles(context.Background(), w, []string{"a"})
	require.NoError(t, err)
	_, err = s.WriteProfiles(context.Background(), w, []string{"b", "b"})
	require.NoError(t, err)

	data, err := os.ReadFile(w.Path())
	require.NoError(t, err)
	assert.Equal(t, 1, strings.Count(string(data), "Name,Occupation"))
	assert.Equal(t, []string{"a", "b"}, fetcher.requested)
}

func TestWriteProfilesStopsOnCancelledContext(t *testing.T) {
	s, _, dir := newScraper(t, &fakeFetcher{})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := s.WriteProfiles(ctx, profile.NewCSVWriter(filepath.Join(dir, "out.csv")), []string{"a"})
	assert.ErrorIs(t, err, context.Canceled)
}

func TestProfileURLFilterLogsInvalid(t *testing.T) {
	core, logs := observer.New(zap.WarnLevel)
	filter := NewProfileURL(zap.New(core))

	ids, step, err := filter.Apply(context.Background(), []string{"https://www.linkedin.com/in/jo/", "bad"})
	require.NoError(t, err)

	assert.Equal(t, []string{"jo"}, ids)
	assert.Equal(t, Step{Initial: 2, Dropped: 1, Left: 1}, step)
	assert.Equal(t, 1, logs.FilterMessage("skipping profile url").Len())
}

func TestDedupFilter(t *testing.T) {
	ids, step, err := NewDedup().Apply(context.Background(), []string{"x", "", "y", "x"})
	require.NoError(t, err)

	assert.Equal(t, []string{"x", "y"}, ids)
	assert.Equal(t, Step{Initial: 4, Dropped: 2, Left: 2}, step)
}

func TestConcurrentScrapesFetchEmployeesOnce(t *testing.T) {
	fetcher := &fakeFetcher{
		searchIDs:   []string{"ID1"},
		searchDelay: 50 * time.Millisecond,
		profiles:    map[string]*profile.Profile{"ID1": {Name: "Ann"}},
	}
	s, l, _ := newScraper(t, fetcher)
	ctx := context.Background()

	var wg sync.WaitGroup
	errs := make(chan error, 2)
	for range 2 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := s.ScrapeCompany(ctx, "Acme", nil, false)
			errs <- err
		}()
	}
	wg.Wait()
	close(errs)

	for err := range errs {
		require.NoError(t, err)
	}

	assert.Equal(t, 1, fetcher.searches)
	assert.Equal(t, 1, readProfiles(t, s.EmployeesCSVPath("Acme")).Len())

	seen, err := l.Seen(ctx, "acme")
	require.NoError(t, err)
	assert.True(t, seen)

	claimed, err := l.Claim(ctx, "Acme")
	require.NoError(t, err)
	assert.True(t, claimed, "claim must be released after the scrape")
}
