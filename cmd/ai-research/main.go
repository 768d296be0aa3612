// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package main is the entry point for the ai-research CLI. Each pipeline
// stage is a subcommand: collect fetches papers into page dumps, parse
// loads the dumps into the database, fos-levels and geocode enrich the
// stored fields of study and affiliations.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/nestauk/ai-research/internal/observability"
	"github.com/nestauk/ai-research/internal/secrets"
	"github.com/nestauk/ai-research/pkg/types"
)

// version is set at build time via ldflags.
var version = "dev"

var (
	// pipelineCfg is the merged configuration, loaded before any subcommand runs.
	pipelineCfg types.PipelineConfig

	logger = zerolog.Nop()

	registry = prometheus.NewRegistry()
	metrics  = observability.NewMetrics(registry)
)

// rootCmd is the base command for the ai-research CLI.
var rootCmd = &cobra.Command{
	Use:   "ai-research",
	Short: "Collect and enrich academic graph data on AI research",
	Long: `ai-research collects papers matching a set of field-of-study terms from
the academic graph Evaluate API, stores them in a SQLite database, and
enriches the stored data with field-of-study levels and geocoded
affiliations.

Stages run independently and only do pending work: rerunning a stage
after a failure picks up where the previous run stopped.`,
	SilenceUsage:      true,
	PersistentPreRunE: setup,
}

func init() {
	pf := rootCmd.PersistentFlags()
	pf.String("config", "", "config file (default: ./ai-research.yaml or ~/.config/ai-research/ai-research.yaml)")
	pf.String("secrets-dir", ".secrets", "directory of API key files")
	pf.String("db", "", "SQLite database path")
	pf.String("dump-dir", "", "directory for page dumps and the collection manifest")
	pf.String("log-level", "", "log level: trace, debug, info, warn, error")
	pf.String("log-format", "", "log format: console or json")
	pf.String("metrics-file", "", "write Prometheus metrics to this file on exit")

	for key, flag := range map[string]string{
		"store.path":     "db",
		"mag.dump_dir":   "dump-dir",
		"logging.level":  "log-level",
		"logging.format": "log-format",
		"metrics.file":   "metrics-file",
	} {
		if err := viper.BindPFlag(key, pf.Lookup(flag)); err != nil {
			panic(err)
		}
	}
}

// setup loads configuration, the logger and API keys for every subcommand.
func setup(cmd *cobra.Command, _ []string) error {
	cfgFile, _ := cmd.Flags().GetString("config")
	configureViper(viper.GetViper(), cfgFile)

	cfg, err := loadConfig(viper.GetViper())
	if err != nil {
		return err
	}
	logger = observability.NewLogger(cfg.Logging)
	if used := viper.ConfigFileUsed(); used != "" {
		logger.Debug().Str("file", used).Msg("using config file")
	}

	secretsDir, _ := cmd.Flags().GetString("secrets-dir")
	keys, err := secrets.Load(secretsDir, logger)
	if err != nil {
		return err
	}
	if len(keys) > 0 {
		logger.Debug().Strs("keys", keys.Keys()).Msg("loaded secrets")
	}
	cfg.MAG.SubscriptionKey = keys.Resolve(secrets.MAGSubscriptionKey, cfg.MAG.SubscriptionKey)
	cfg.Geocode.APIKey = keys.Resolve(secrets.GooglePlacesKey, cfg.Geocode.APIKey)

	pipelineCfg = cfg
	return nil
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := rootCmd.ExecuteContext(ctx)
	stop()

	if werr := observability.WriteTextfile(pipelineCfg.Metrics.File, registry); werr != nil {
		fmt.Fprintln(os.Stderr, "writing metrics:", werr)
	}
	if err != nil {
		os.Exit(1)
	}
}
