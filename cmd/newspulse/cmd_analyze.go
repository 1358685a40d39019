package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/deusflow/newspulse/internal/logger"
	"github.com/deusflow/newspulse/internal/news"
)

var analyzeArticles int

var analyzeCmd = &cobra.Command{
	Use:   "analyze <company>",
	Short: "Analyze news coverage for one company and print the JSON report",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runAnalyze,
}

func init() {
	analyzeCmd.Flags().IntVarP(&analyzeArticles, "articles", "n", news.DefaultArticles,
		fmt.Sprintf("number of valid articles to analyze (%d-%d)", news.MinArticles, news.MaxArticles))
}

func runAnalyze(cmd *cobra.Command, args []string) error {
	company := strings.Join(args, " ")
	if err := news.ValidateRequest(company, analyzeArticles); err != nil {
		return err
	}

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	cfg, a, err := setup(ctx)
	if err != nil {
		return err
	}
	defer a.Close()

	ctx, cancel := context.WithTimeout(ctx, cfg.AnalysisTimeout)
	defer cancel()

	doc, err := a.Analyze(ctx, company, analyzeArticles)
	logger.Debug("Run stats", "stats", a.Stats())
	if err != nil {
		return err
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(doc)
}
