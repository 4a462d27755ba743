package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/spigell/talent-ranker/internal/profile"
	"github.com/spigell/talent-ranker/internal/talent"
)

var recommendCmd = &cobra.Command{
	Use:   "recommend <profile-url>",
	Short: "Recommend skills and certifications missing from a profile",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return recommendProfile(cmd.Context(), cmd.OutOrStdout(), args[0])
	},
}

func init() {
	rootCmd.AddCommand(recommendCmd)
}

func recommendProfile(ctx context.Context, stdout io.Writer, url string) error {
	config, log, err := setup()
	if err != nil {
		return err
	}
	defer log.Sync()

	if ctx == nil {
		ctx = context.Background()
	}

	recommender, err := newRecommender(config)
	if err != nil {
		return err
	}

	client, err := newLinkedIn(config, log)
	if err != nil {
		return err
	}

	opts := talent.Options{Fetcher: client, Recommender: recommender, Logger: log}
	if path := config.Recommend.CandidatesFile; path != "" {
		opts.Candidates = profile.NewCSVWriter(dataPath(config, path))
	}

	rec, err := talent.New(opts).Recommend(ctx, url)
	if err != nil {
		return fmt.Errorf("recommend: %w", err)
	}

	encoder := json.NewEncoder(stdout)
	encoder.SetIndent("", "  ")
	return encoder.Encode(rec)
}
