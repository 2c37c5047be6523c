package config

import (
	"os"

	"gopkg.in/yaml.v3"

	"engagedash/internal/features"
)

// Chart identifiers accepted by the dashboard.
const (
	ChartPlatformBoxplot   = "platform_boxplot"
	ChartDayOfWeekBar      = "day_of_week_bar"
	ChartHourLine          = "hour_line"
	ChartFeatureImportance = "feature_importance"
	ChartActualVsPredicted = "actual_vs_predicted"
)

// Charts lists every chart in display order.
var Charts = []string{
	ChartPlatformBoxplot,
	ChartDayOfWeekBar,
	ChartHourLine,
	ChartFeatureImportance,
	ChartActualVsPredicted,
}

// YAMLConfig represents the structure of the config.yaml file.
// Feature pipeline and dashboard layout settings that are awkward as env vars.
type YAMLConfig struct {
	Pipeline  PipelineConfig  `yaml:"pipeline"`
	Dashboard DashboardConfig `yaml:"dashboard"`
}

// PipelineConfig overrides the feature pipeline defaults.
type PipelineConfig struct {
	Categoricals []string `yaml:"categoricals,omitempty"` // Encoded columns, in encoding order
	Exclude      []string `yaml:"exclude,omitempty"`      // Columns never fed to the model
	Target       string   `yaml:"target,omitempty"`
}

// DashboardConfig controls what the dashboard shows by default.
type DashboardConfig struct {
	DefaultCharts  []string `yaml:"default_charts"`
	PreviewRows    int      `yaml:"preview_rows"`
	TopHashtags    int      `yaml:"top_hashtags"`
	TopImportances int      `yaml:"top_importances"`
}

// DefaultYAMLConfig returns the settings used when no config file exists.
func DefaultYAMLConfig() *YAMLConfig {
	cfg := &YAMLConfig{}
	cfg.applyDefaults()
	return cfg
}

// LoadYAMLConfig loads the YAML configuration file at path.
// Returns the defaults without error if the file doesn't exist.
func LoadYAMLConfig(path string) (*YAMLConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			// Config file is optional
			return DefaultYAMLConfig(), nil
		}
		return nil, err
	}

	var cfg YAMLConfig
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}
	cfg.applyDefaults()
	return &cfg, nil
}

func (c *YAMLConfig) applyDefaults() {
	if len(c.Pipeline.Categoricals) == 0 {
		c.Pipeline.Categoricals = features.DefaultCategoricals
	}
	if len(c.Pipeline.Exclude) == 0 {
		c.Pipeline.Exclude = features.DefaultExclude
	}
	if c.Pipeline.Target == "" {
		c.Pipeline.Target = features.DefaultTarget
	}
	if len(c.Dashboard.DefaultCharts) == 0 {
		c.Dashboard.DefaultCharts = []string{ChartPlatformBoxplot, ChartDayOfWeekBar, ChartFeatureImportance}
	}
	if c.Dashboard.PreviewRows <= 0 {
		c.Dashboard.PreviewRows = 10
	}
	if c.Dashboard.TopHashtags <= 0 {
		c.Dashboard.TopHashtags = 10
	}
	if c.Dashboard.TopImportances <= 0 {
		c.Dashboard.TopImportances = 10
	}
}

// FeaturePipeline builds the feature pipeline these settings describe.
func (c *YAMLConfig) FeaturePipeline() features.Pipeline {
	if c == nil {
		return features.DefaultPipeline()
	}
	return features.Pipeline{
		Categoricals: c.Pipeline.Categoricals,
		Exclude:      c.Pipeline.Exclude,
		Target:       c.Pipeline.Target,
	}
}
