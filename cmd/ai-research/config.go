// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"

	"github.com/nestauk/ai-research/internal/collect"
	"github.com/nestauk/ai-research/pkg/types"
)

const envPrefix = "AI_RESEARCH"

// configureViper points v at the config file and the environment. Without an
// explicit file it looks for ai-research.yaml in the working directory and
// in ~/.config/ai-research.
func configureViper(v *viper.Viper, cfgFile string) {
	setDefaults(v, types.DefaultPipelineConfig())

	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
	} else {
		v.SetConfigName("ai-research")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		if home, err := os.UserHomeDir(); err == nil {
			v.AddConfigPath(filepath.Join(home, ".config", "ai-research"))
		}
	}

	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
}

// loadConfig reads the config file, if any, and decodes the merged settings.
// A missing config file is not an error.
func loadConfig(v *viper.Viper) (types.PipelineConfig, error) {
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return types.PipelineConfig{}, fmt.Errorf("reading config file: %w", err)
		}
	}

	var cfg types.PipelineConfig
	if err := v.Unmarshal(&cfg); err != nil {
		return types.PipelineConfig{}, fmt.Errorf("decoding config: %w", err)
	}
	if err := validateConfig(cfg); err != nil {
		return types.PipelineConfig{}, err
	}
	return cfg, nil
}

// setDefaults registers every setting with its default value so that
// environment variables can override any of them.
func setDefaults(v *viper.Viper, d types.PipelineConfig) {
	setHTTPDefaults(v, "mag", d.MAG.HTTPConfig)
	v.SetDefault("mag.base_url", d.MAG.BaseURL)
	v.SetDefault("mag.subscription_key", "")
	v.SetDefault("mag.entity_name", d.MAG.EntityName)
	v.SetDefault("mag.terms", d.MAG.Terms)
	v.SetDefault("mag.terms_file", "")
	v.SetDefault("mag.attributes", d.MAG.Attributes)
	v.SetDefault("mag.page_size", d.MAG.PageSize)
	v.SetDefault("mag.max_expr_length", d.MAG.MaxExprLength)
	v.SetDefault("mag.max_pages", d.MAG.MaxPages)
	v.SetDefault("mag.start_year", d.MAG.StartYear)
	v.SetDefault("mag.end_year", d.MAG.EndYear)
	v.SetDefault("mag.dump_dir", d.MAG.DumpDir)
	v.SetDefault("mag.dump_prefix", d.MAG.DumpPrefix)

	windows := make([]map[string]any, len(d.MAG.Windows))
	for i, w := range d.MAG.Windows {
		windows[i] = map[string]any{
			"start_month": w.StartMonth,
			"end_month":   w.EndMonth,
			"start_day":   w.StartDay,
			"end_day":     w.EndDay,
		}
	}
	v.SetDefault("mag.windows", windows)

	setHTTPDefaults(v, "geocode", d.Geocode.HTTPConfig)
	v.SetDefault("geocode.find_place_url", d.Geocode.FindPlaceURL)
	v.SetDefault("geocode.details_url", d.Geocode.DetailsURL)
	v.SetDefault("geocode.api_key", "")

	v.SetDefault("store.path", d.Store.Path)

	v.SetDefault("logging.level", d.Logging.Level)
	v.SetDefault("logging.format", d.Logging.Format)
	v.SetDefault("logging.output", d.Logging.Output)

	v.SetDefault("metrics.file", d.Metrics.File)
}

func setHTTPDefaults(v *viper.Viper, prefix string, h types.HTTPConfig) {
	v.SetDefault(prefix+".timeout", h.Timeout)
	v.SetDefault(prefix+".user_agent", h.UserAgent)
	v.SetDefault(prefix+".max_retries", h.MaxRetries)
	v.SetDefault(prefix+".rate_limit", h.RateLimit)
}

func validateConfig(cfg types.PipelineConfig) error {
	m := cfg.MAG
	switch {
	case m.StartYear > m.EndYear:
		return fmt.Errorf("mag.start_year %d is after mag.end_year %d", m.StartYear, m.EndYear)
	case m.PageSize <= 0:
		return fmt.Errorf("mag.page_size must be positive, got %d", m.PageSize)
	case m.MaxExprLength <= 0:
		return fmt.Errorf("mag.max_expr_length must be positive, got %d", m.MaxExprLength)
	case m.EntityName == "":
		return errors.New("mag.entity_name is required")
	case cfg.Store.Path == "":
		return errors.New("store.path is required")
	}
	return nil
}

// dumpDir returns where collected pages live.
func dumpDir(cfg types.MAGConfig) collect.DumpDir {
	return collect.DumpDir{Dir: cfg.DumpDir, Prefix: cfg.DumpPrefix}
}
