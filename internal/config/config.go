package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/caarlos0/env/v11"
	"gopkg.in/yaml.v3"
)

// Config is the root configuration for ReplyBot. Values come from the
// environment, with an optional YAML rules file for the keyword table.
type Config struct {
	Addr     string `env:"REPLYBOT_ADDR" json:"addr"`
	LogLevel string `env:"REPLYBOT_LOG_LEVEL" json:"logLevel"`

	Line       LineConfig       `json:"line"`
	Completion CompletionConfig `json:"completion"`
	Search     SearchConfig     `json:"search"`
	Rules      RulesConfig      `json:"rules"`
	Metrics    MetricsConfig    `json:"metrics"`
}

// LineConfig holds the messaging platform credentials.
type LineConfig struct {
	AccessToken       string `env:"CHANNEL_ACCESS_TOKEN" json:"accessToken"`
	ChannelSecret     string `env:"CHANNEL_SECRET" json:"channelSecret"`
	ValidateSignature bool   `env:"ENABLE_SIGNATURE_VALIDATION" json:"validateSignature"`
	APIBase           string `env:"REPLYBOT_LINE_API_BASE" json:"apiBase"`
}

// CompletionConfig selects and configures the completion backend. An
// OpenRouter key takes precedence; with no key at all, replies fall back to
// keyword matching only.
type CompletionConfig struct {
	OpenRouterAPIKey  string `env:"OPENROUTER_API_KEY" json:"openrouterApiKey"`
	OpenRouterModel   string `env:"OPENROUTER_MODEL" json:"openrouterModel"`
	OpenRouterAPIBase string `env:"OPENROUTER_API_BASE" json:"openrouterApiBase"`
	AnthropicAPIKey   string `env:"ANTHROPIC_API_KEY" json:"anthropicApiKey"`
	AnthropicModel    string `env:"ANTHROPIC_MODEL" json:"anthropicModel"`
	TimeoutSeconds    int    `env:"REPLYBOT_COMPLETION_TIMEOUT" json:"timeoutSeconds"`
}

// SearchConfig configures the web search step and command.
type SearchConfig struct {
	Enabled       bool `env:"REPLYBOT_SEARCH_ENABLED" json:"enabled"`
	MaxResults    int  `json:"maxResults"`
	SummaryLength int  `json:"summaryLength"`
}

// RulesConfig holds the keyword table and its default reply.
type RulesConfig struct {
	File         string `env:"REPLYBOT_RULES_FILE" json:"file,omitempty"`
	DefaultReply string `json:"defaultReply"`
	Rules        []Rule `json:"rules"`
}

// Rule maps trigger phrases to a canned reply. Matching is a case-insensitive
// substring check; replies may carry {{time}} and {{message}} placeholders.
type Rule struct {
	Triggers []string `json:"triggers" yaml:"triggers"`
	Reply    string   `json:"reply" yaml:"reply"`
}

// MetricsConfig toggles the /metrics endpoint.
type MetricsConfig struct {
	Enabled bool `env:"REPLYBOT_METRICS_ENABLED" json:"enabled"`
}

// Load builds the configuration: code defaults first, then the optional rules
// file, then environment variables on top.
func Load() (*Config, error) {
	cfg := Defaults()

	// The rules file path itself comes from the environment, so resolve it
	// before the main parse.
	if path := os.Getenv("REPLYBOT_RULES_FILE"); path != "" {
		cfg.Rules.File = path
	}
	if cfg.Rules.File != "" {
		if err := loadRulesFile(cfg); err != nil {
			return nil, err
		}
	}

	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parse environment: %w", err)
	}

	if err := Validate(cfg); err != nil {
		return nil, fmt.Errorf("config validation: %w", err)
	}
	return cfg, nil
}

// rulesFile is the YAML shape of an external rules file. Only the sections
// present override the defaults.
type rulesFile struct {
	DefaultReply string `yaml:"default_reply"`
	Rules        []Rule `yaml:"rules"`
	Search       struct {
		MaxResults    int `yaml:"max_results"`
		SummaryLength int `yaml:"summary_length"`
	} `yaml:"search"`
}

func loadRulesFile(cfg *Config) error {
	data, err := os.ReadFile(cfg.Rules.File)
	if err != nil {
		return fmt.Errorf("read rules file %s: %w", cfg.Rules.File, err)
	}
	var rf rulesFile
	if err := yaml.Unmarshal(data, &rf); err != nil {
		return fmt.Errorf("parse rules file %s: %w", cfg.Rules.File, err)
	}
	if len(rf.Rules) > 0 {
		cfg.Rules.Rules = rf.Rules
	}
	if rf.DefaultReply != "" {
		cfg.Rules.DefaultReply = rf.DefaultReply
	}
	if rf.Search.MaxResults > 0 {
		cfg.Search.MaxResults = rf.Search.MaxResults
	}
	if rf.Search.SummaryLength > 0 {
		cfg.Search.SummaryLength = rf.Search.SummaryLength
	}
	return nil
}

// Validate checks that the config has usable values.
func Validate(cfg *Config) error {
	var errs []string

	if cfg.Addr == "" {
		errs = append(errs, "addr must not be empty")
	}
	switch cfg.LogLevel {
	case "debug", "info", "warn", "error":
		// valid
	default:
		errs = append(errs, "logLevel must be one of: debug, info, warn, error")
	}
	if cfg.Completion.TimeoutSeconds < 1 {
		errs = append(errs, "completion.timeoutSeconds must be >= 1")
	}
	if cfg.Search.MaxResults < 1 {
		errs = append(errs, "search.maxResults must be >= 1")
	}
	if cfg.Search.SummaryLength < 1 {
		errs = append(errs, "search.summaryLength must be >= 1")
	}
	if cfg.Rules.DefaultReply == "" {
		errs = append(errs, "rules.defaultReply must not be empty")
	}
	for i, r := range cfg.Rules.Rules {
		if len(r.Triggers) == 0 {
			errs = append(errs, fmt.Sprintf("rules[%d]: at least one trigger is required", i))
		}
		for _, t := range r.Triggers {
			if strings.TrimSpace(t) == "" {
				errs = append(errs, fmt.Sprintf("rules[%d]: triggers must not be blank", i))
				break
			}
		}
		if r.Reply == "" {
			errs = append(errs, fmt.Sprintf("rules[%d]: reply must not be empty", i))
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf("config validation errors:\n  - %s", strings.Join(errs, "\n  - "))
	}
	return nil
}

// Sanitize returns a copy of the config with secrets masked for display.
func Sanitize(cfg *Config) *Config {
	out := *cfg
	out.Line.AccessToken = maskSecret(cfg.Line.AccessToken)
	out.Line.ChannelSecret = maskSecret(cfg.Line.ChannelSecret)
	out.Completion.OpenRouterAPIKey = maskSecret(cfg.Completion.OpenRouterAPIKey)
	out.Completion.AnthropicAPIKey = maskSecret(cfg.Completion.AnthropicAPIKey)
	return &out
}

func maskSecret(s string) string {
	if s == "" {
		return ""
	}
	if len(s) <= 8 {
		return "****"
	}
	return s[:4] + "****" + s[len(s)-4:]
}
