package cmd

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/medwire/newscore/internal/aggregator"
	"github.com/medwire/newscore/internal/classifier"
	"github.com/medwire/newscore/internal/domain"
	"github.com/medwire/newscore/internal/logger"
	"github.com/medwire/newscore/internal/sources"
)

// fetchCommand runs one aggregation pass and prints the merged items as
// JSON, for feed debugging without a running server.
func fetchCommand() *cobra.Command {
	var (
		pageSize int
		source   string
	)

	cmd := &cobra.Command{
		Use:   "fetch",
		Short: "Fetch, merge and classify all configured feeds once",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}

			log, err := logger.New(cfg.Logging)
			if err != nil {
				return fmt.Errorf("create logger: %w", err)
			}
			defer func() { _ = log.Sync() }()

			client := sources.NewClient(cfg.Sources.Timeout, cfg.Sources.RateLimit, cfg.Sources.UserAgent)
			registry, err := sources.NewRegistry(cfg.Sources, client, log, nil)
			if err != nil {
				return fmt.Errorf("build source registry: %w", err)
			}

			agg := aggregator.New(registry, classifier.New(log), cfg.Sources.Timeout, log, nil)

			filter := &domain.NewsFilter{PageSize: pageSize}
			if source != "" {
				filter.Sources = []domain.Source{domain.Source(source)}
			}

			resp, err := agg.Aggregate(cmd.Context(), filter)
			if err != nil {
				return fmt.Errorf("aggregate: %w", err)
			}

			enc := json.NewEncoder(os.Stdout)
			enc.SetIndent("", "  ")
			return enc.Encode(resp)
		},
	}

	cmd.Flags().IntVar(&pageSize, "page-size", domain.DefaultPageSize, "number of items to print")
	cmd.Flags().StringVar(&source, "source", "", "restrict to a single source")

	return cmd
}
