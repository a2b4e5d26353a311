package app

import "errors"

// Config holds all the necessary configuration for an App instance to run.
type Config struct {
	// Template is an inline template string; TemplatePath points at a
	// template file or a directory of *.tmpl files. Exactly one is set.
	Template     string
	TemplatePath string

	// VarsPath is an optional YAML file of variable bindings.
	VarsPath string

	DollarSyntax bool
	Strict       bool
	Culture      string
	Timeout      string // duration string, validated at parse time
	NoCache      bool

	LogFormat string
	LogLevel  string
}

// NewConfig validates a Config.
func NewConfig(cfg Config) (*Config, error) {
	if cfg.Template == "" && cfg.TemplatePath == "" {
		return nil, errors.New("a template string or template path is required")
	}
	if cfg.Template != "" && cfg.TemplatePath != "" {
		return nil, errors.New("provide either an inline template or a template path, not both")
	}
	return &cfg, nil
}
