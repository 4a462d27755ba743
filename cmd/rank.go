package cmd

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/spigell/talent-ranker/internal/ranking"
	"github.com/spigell/talent-ranker/internal/talent"
)

var rankCmd = &cobra.Command{
	Use:   "rank",
	Short: "Rank contestants from a CSV file against reference profiles",
	RunE: func(cmd *cobra.Command, _ []string) error {
		references, _ := cmd.Flags().GetString("references")
		contestants, _ := cmd.Flags().GetString("contestants")
		output, _ := cmd.Flags().GetString("output")
		return rank(cmd.Context(), cmd.OutOrStdout(), references, contestants, output)
	},
}

func init() {
	rootCmd.AddCommand(rankCmd)

	rankCmd.Flags().StringP("references", "r", "", "CSV with reference profiles")
	rankCmd.Flags().StringP("contestants", "c", "", "CSV with contestant profiles")
	rankCmd.Flags().StringP("output", "o", "", "write the ranking to this file instead of stdout")

	rankCmd.MarkFlagRequired("references")
	rankCmd.MarkFlagRequired("contestants")
}

func rank(ctx context.Context, stdout io.Writer, referencesPath, contestantsPath, outputPath string) error {
	config, log, err := setup()
	if err != nil {
		return err
	}
	defer log.Sync()

	if ctx == nil {
		ctx = context.Background()
	}

	scorer, err := newScorer(ctx, config, log)
	if err != nil {
		return err
	}

	references, err := os.Open(referencesPath)
	if err != nil {
		return err
	}
	defer references.Close()

	contestants, err := os.Open(contestantsPath)
	if err != nil {
		return err
	}
	defer contestants.Close()

	results, err := talent.New(talent.Options{Scorer: scorer, Logger: log}).RankCSV(ctx, references, contestants)
	if err != nil {
		return fmt.Errorf("ranking: %w", err)
	}

	out := stdout
	if outputPath != "" {
		f, err := os.Create(outputPath)
		if err != nil {
			return err
		}
		defer f.Close()
		out = f
	}

	if err := ranking.WriteCSV(out, results); err != nil {
		return err
	}

	if outputPath != "" {
		log.Info("ranking written", zap.String("path", outputPath), zap.Int("contestants", len(results)))
	}
	return nil
}
