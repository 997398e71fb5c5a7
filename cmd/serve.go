package cmd

import (
	"fmt"
	"net/http"

	"github.com/spf13/cobra"

	"github.com/medwire/newscore/internal/aggregator"
	"github.com/medwire/newscore/internal/api"
	"github.com/medwire/newscore/internal/classifier"
	"github.com/medwire/newscore/internal/config"
	"github.com/medwire/newscore/internal/logger"
	"github.com/medwire/newscore/internal/preferences"
	"github.com/medwire/newscore/internal/ranking"
	"github.com/medwire/newscore/internal/readability"
	"github.com/medwire/newscore/internal/scoring"
	"github.com/medwire/newscore/internal/sources"
	"github.com/medwire/newscore/internal/telemetry"
)

func serveCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the newscore HTTP server",
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

			server, err := buildServer(cfg, log)
			if err != nil {
				return err
			}

			return server.RunWithGracefulShutdown(cmd.Context())
		},
	}
}

// buildServer wires the full service graph from configuration.
func buildServer(cfg *config.Config, log logger.Logger) (*api.Server, error) {
	provider := telemetry.NewProvider()

	client := sources.NewClient(cfg.Sources.Timeout, cfg.Sources.RateLimit, cfg.Sources.UserAgent)
	registry, err := sources.NewRegistry(cfg.Sources, client, log, provider)
	if err != nil {
		return nil, fmt.Errorf("build source registry: %w", err)
	}

	newsClassifier := classifier.New(log)
	agg := aggregator.New(registry, newsClassifier, cfg.Sources.Timeout, log, provider)

	scorer := scoring.New(scoring.DefaultConfig())
	ranker := ranking.New(scorer, ranking.Config{
		PercentileMinimum: cfg.Ranking.PercentileMinimum,
		TopPercentile:     cfg.Ranking.TopPercentile,
		SmallSetRatio:     cfg.Ranking.SmallSetRatio,
		ThresholdFloor:    cfg.Ranking.ThresholdFloor,
		Workers:           cfg.Ranking.ScoringWorkers,
	}, provider)

	prefsService := preferences.NewHTTPService(cfg.Preferences.BaseURL, cfg.Preferences.Timeout)
	prefs := preferences.NewStore(prefsService, cfg.Preferences.CacheTTL, cfg.Preferences.FailureTTL, log, provider)

	extractor := readability.New(&http.Client{Timeout: cfg.Sources.Timeout}, log)

	handler := api.NewHandler(agg, ranker, scorer, newsClassifier, prefs, extractor, log)

	server := api.NewServer(handler, api.ServerConfig{
		ServiceName:    cfg.Service.Name,
		ServiceVersion: cfg.Service.Version,
		Port:           cfg.Server.Port,
		ReadTimeout:    cfg.Server.ReadTimeout,
		WriteTimeout:   cfg.Server.WriteTimeout,
		IdleTimeout:    cfg.Server.IdleTimeout,
		Debug:          cfg.Service.Debug,
	}, log, provider.Handler())

	return server, nil
}
