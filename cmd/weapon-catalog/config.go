// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"

	"github.com/spf13/viper"

	"github.com/pdiddy/weapon-catalog/pkg/types"
)

// registerDefaults makes every config key known to viper so environment
// variables and bound flags resolve even without a config file.
func registerDefaults(def types.PipelineConfig) {
	viper.SetDefault("sources", def.Sources)

	viper.SetDefault("fetch.timeout", def.Fetch.Timeout)
	viper.SetDefault("fetch.user_agents", def.Fetch.UserAgents)
	viper.SetDefault("fetch.max_retries", def.Fetch.MaxRetries)
	viper.SetDefault("fetch.request_delay", def.Fetch.RequestDelay)

	viper.SetDefault("extraction.strategy", string(def.Extraction.Strategy))
	viper.SetDefault("extraction.category_level", def.Extraction.CategoryLevel)
	viper.SetDefault("extraction.min_entry_level", def.Extraction.MinEntryLevel)
	viper.SetDefault("extraction.max_entry_level", def.Extraction.MaxEntryLevel)
	viper.SetDefault("extraction.prose_window", def.Extraction.ProseWindow)
	viper.SetDefault("extraction.excluded_categories", def.Extraction.ExcludedCategories)

	viper.SetDefault("dedup.enabled", def.Dedup.Enabled)
	viper.SetDefault("dedup.strategy", string(def.Dedup.Strategy))
	viper.SetDefault("dedup.name_threshold", def.Dedup.NameThreshold)
	viper.SetDefault("dedup.partial_threshold", def.Dedup.PartialThreshold)

	formats := make([]string, len(def.Export.Formats))
	for i, f := range def.Export.Formats {
		formats[i] = string(f)
	}
	viper.SetDefault("export.output_dir", def.Export.OutputDir)
	viper.SetDefault("export.formats", formats)
	viper.SetDefault("export.base_name", def.Export.BaseName)

	viper.SetDefault("catalog.path", def.Catalog.Path)
	viper.SetDefault("catalog.max_results", def.Catalog.MaxResults)

	viper.SetDefault("images.enabled", def.Images.Enabled)
	viper.SetDefault("images.output_dir", def.Images.OutputDir)
	viper.SetDefault("images.timeout", def.Images.Timeout)
	viper.SetDefault("images.user_agents", def.Images.UserAgents)
	viper.SetDefault("images.max_retries", def.Images.MaxRetries)
	viper.SetDefault("images.request_delay", def.Images.RequestDelay)
	viper.SetDefault("images.min_bytes", def.Images.MinBytes)

	viper.SetDefault("log.level", def.Log.Level)
	viper.SetDefault("log.format", def.Log.Format)
}

// loadConfig decodes the merged viper settings into a PipelineConfig.
func loadConfig() (types.PipelineConfig, error) {
	var cfg types.PipelineConfig
	if err := viper.Unmarshal(&cfg); err != nil {
		return cfg, fmt.Errorf("decoding config: %w", err)
	}
	if len(cfg.Sources) == 0 {
		cfg.Sources = append([]types.Source(nil), types.DefaultSources...)
	}
	return cfg, nil
}
