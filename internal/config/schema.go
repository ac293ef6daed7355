package config

// AnalysisConfig drives the attack-pattern analysis: the prompt sent to the
// LLM and how many examples per attack category feed it.
type AnalysisConfig struct {
	Prompt      string      `yaml:"prompt"`
	NumExamples int         `yaml:"num_examples"`
	Model       ModelParams `yaml:"model"`
}

// ModelParams are the generation parameters for the analysis call.
type ModelParams struct {
	MaxTokens   int     `yaml:"max_tokens"`
	Temperature float64 `yaml:"temperature"`
	Retry       bool    `yaml:"retry"`
}
