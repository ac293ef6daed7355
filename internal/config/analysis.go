package config

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// LoadAnalysisConfig reads the analysis configuration from
// ANALYSIS_CONFIG_PATH, falling back to configs/analysis.yaml.
func LoadAnalysisConfig() (*AnalysisConfig, error) {
	path := os.Getenv("ANALYSIS_CONFIG_PATH")
	if path == "" {
		path = "configs/analysis.yaml"
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var cfg AnalysisConfig
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}

	applyDefaults(&cfg)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func applyDefaults(cfg *AnalysisConfig) {
	if cfg.NumExamples == 0 {
		cfg.NumExamples = 3
	}
	if cfg.Model.MaxTokens == 0 {
		cfg.Model.MaxTokens = 6000
	}
}

func (c *AnalysisConfig) Validate() error {
	if strings.TrimSpace(c.Prompt) == "" {
		return fmt.Errorf("analysis config: prompt is required")
	}
	if !strings.Contains(c.Prompt, "{{.Examples}}") {
		return fmt.Errorf("analysis config: prompt must reference {{.Examples}}")
	}
	if c.NumExamples < 1 {
		return fmt.Errorf("analysis config: num_examples must be positive, got %d", c.NumExamples)
	}
	return nil
}
