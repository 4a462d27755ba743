package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/manifoldco/promptui"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/spigell/talent-ranker/internal/ingest"
	"github.com/spigell/talent-ranker/internal/logger"
)

const (
	PromptYes = "Yes"
	PromptNo  = "No"

	defaultURLsFile = "profile_urls.txt"
)

var refetchPrompt = promptui.Select{
	Label: "Company has already been fetched. Fetch its employees again?",
	Items: []string{PromptNo, PromptYes},
}

var scrapeCmd = &cobra.Command{
	Use:   "scrape <company>",
	Short: "Fetch company employees and contestant profiles into CSV files",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		company := strings.Join(args, " ")
		urlsFile, _ := cmd.Flags().GetString("urls")
		force, _ := cmd.Flags().GetBool("force")
		yes, _ := cmd.Flags().GetBool("yes")

		return scrape(cmd.Context(), company, urlsFile, cmd.Flags().Changed("urls"), force, yes)
	},
}

func init() {
	rootCmd.AddCommand(scrapeCmd)

	scrapeCmd.Flags().StringP("urls", "u", defaultURLsFile, "file with contestant profile urls, one per line")
	scrapeCmd.Flags().BoolP("force", "f", false, "fetch employees even if the company is in the ledger")
	scrapeCmd.Flags().BoolP("yes", "y", false, "do not ask for confirmation, skip already fetched companies")
}

func scrape(ctx context.Context, company, urlsFile string, urlsRequired, force, yes bool) error {
	config, log, err := setup()
	if err != nil {
		return err
	}
	defer log.Sync()

	if ctx == nil {
		ctx = context.Background()
	}

	log = logger.WithCompany(log, company)
	log.Info("starting the scrape", zap.String("version", version))

	urls, err := readURLs(config, urlsFile, urlsRequired)
	if err != nil {
		return err
	}

	client, err := newLinkedIn(config, log)
	if err != nil {
		return err
	}

	l, closeLedger, err := newLedger(ctx, config, log)
	if err != nil {
		return fmt.Errorf("building ledger: %w", err)
	}
	defer closeLedger()

	scraper := ingest.New(client, l, config.DataDir, log)

	if !force && !yes {
		fetched, err := scraper.Fetched(ctx, company)
		if err != nil {
			return err
		}

		if fetched {
			_, answer, err := refetchPrompt.Run()
			if err != nil {
				return fmt.Errorf("prompt: %w", err)
			}
			force = answer == PromptYes
		}
	}

	result, err := scraper.ScrapeCompany(ctx, company, urls, force)
	if err != nil {
		return err
	}

	log.Info("scrape finished",
		zap.Bool("employees_fetched", result.EmployeesFetched),
		zap.Int("employees_written", result.Employees.Written),
		zap.Int("employees_failed", result.Employees.Failed),
		zap.Int("contestants_written", result.Contestants.Written),
		zap.Int("contestants_invalid", result.Contestants.Invalid),
		zap.Int("contestants_failed", result.Contestants.Failed),
	)

	return nil
}

// readURLs reads the url file relative to the data directory and tolerates a missing default file.
func readURLs(config *Config, path string, required bool) ([]string, error) {
	urls, err := ingest.ReadLines(dataPath(config, path))
	if errors.Is(err, os.ErrNotExist) && !required {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading profile urls: %w", err)
	}
	return urls, nil
}
