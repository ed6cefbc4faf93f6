package config

import (
	"strings"

	"github.com/rotisserie/eris"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Config holds the full application configuration.
type Config struct {
	Anthropic AnthropicConfig `yaml:"anthropic" mapstructure:"anthropic"`
	Search    SearchConfig    `yaml:"search" mapstructure:"search"`
	Download  DownloadConfig  `yaml:"download" mapstructure:"download"`
	Extract   ExtractConfig   `yaml:"extract" mapstructure:"extract"`
	Analyse   AnalyseConfig   `yaml:"analyse" mapstructure:"analyse"`
	Log       LogConfig       `yaml:"log" mapstructure:"log"`
}

// AnthropicConfig holds Anthropic API settings.
type AnthropicConfig struct {
	Key       string `yaml:"key" mapstructure:"key"`
	Model     string `yaml:"model" mapstructure:"model"`
	MaxTokens int64  `yaml:"max_tokens" mapstructure:"max_tokens"`
}

// SearchConfig configures the board-papers page search.
type SearchConfig struct {
	BaseURL     string `yaml:"base_url" mapstructure:"base_url"`
	MaxResults  int    `yaml:"max_results" mapstructure:"max_results"`
	TimeoutSecs int    `yaml:"timeout_secs" mapstructure:"timeout_secs"`
}

// DownloadConfig configures document downloads.
type DownloadConfig struct {
	TimeoutSecs int     `yaml:"timeout_secs" mapstructure:"timeout_secs"`
	MinBytes    int     `yaml:"min_bytes" mapstructure:"min_bytes"`
	RatePerSec  float64 `yaml:"rate_per_sec" mapstructure:"rate_per_sec"`
	RateBurst   int     `yaml:"rate_burst" mapstructure:"rate_burst"`
}

// ExtractConfig configures targeted PDF text extraction.
type ExtractConfig struct {
	AgendaPages   int    `yaml:"agenda_pages" mapstructure:"agenda_pages"`
	CharsPerPage  int    `yaml:"chars_per_page" mapstructure:"chars_per_page"`
	SectionWindow int    `yaml:"section_window" mapstructure:"section_window"`
	MinChunk      int    `yaml:"min_chunk" mapstructure:"min_chunk"`
	TopicsFile    string `yaml:"topics_file" mapstructure:"topics_file"`
}

// AnalyseConfig configures prompt assembly and the analysis call.
type AnalyseConfig struct {
	CharLimit    int    `yaml:"char_limit" mapstructure:"char_limit"`
	TemplatePath string `yaml:"template_path" mapstructure:"template_path"`
}

// LogConfig configures logging.
type LogConfig struct {
	Level  string `yaml:"level" mapstructure:"level"`
	Format string `yaml:"format" mapstructure:"format"`
}

// Load reads configuration from file and environment.
func Load() (*Config, error) {
	v := viper.New()

	// Config file
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")

	// Environment
	v.SetEnvPrefix("BOARDPAPERS")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// The API key is also read from the conventional Anthropic variable.
	_ = v.BindEnv("anthropic.key", "BOARDPAPERS_ANTHROPIC_KEY", "ANTHROPIC_API_KEY")

	// Defaults
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "console")
	v.SetDefault("anthropic.model", "claude-opus-4-6")
	v.SetDefault("anthropic.max_tokens", 4096)
	v.SetDefault("search.base_url", "https://html.duckduckgo.com/html")
	v.SetDefault("search.max_results", 8)
	v.SetDefault("search.timeout_secs", 15)
	v.SetDefault("download.timeout_secs", 120)
	v.SetDefault("download.min_bytes", 10000)
	v.SetDefault("download.rate_per_sec", 2)
	v.SetDefault("download.rate_burst", 4)
	v.SetDefault("extract.agenda_pages", 6)
	v.SetDefault("extract.chars_per_page", 3000)
	v.SetDefault("extract.section_window", 30)
	v.SetDefault("extract.min_chunk", 20)
	v.SetDefault("analyse.char_limit", 400000)
	v.SetDefault("analyse.template_path", "prompt_template.txt")

	// Read config file (optional)
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, eris.Wrap(err, "config: read file")
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, eris.Wrap(err, "config: unmarshal")
	}

	return &cfg, nil
}

// Validate checks that the configuration is usable for the given command
// mode. Problems are joined into one error so the user sees them all at once.
func (c *Config) Validate(mode string) error {
	var problems []string

	checkExtract := func() {
		if c.Extract.AgendaPages < 1 {
			problems = append(problems, "extract.agenda_pages must be >= 1")
		}
		if c.Extract.CharsPerPage < 1 {
			problems = append(problems, "extract.chars_per_page must be >= 1")
		}
		if c.Extract.SectionWindow < 1 {
			problems = append(problems, "extract.section_window must be >= 1")
		}
		if c.Extract.MinChunk < 1 {
			problems = append(problems, "extract.min_chunk must be >= 1")
		}
	}

	switch mode {
	case "analyse":
		if c.Anthropic.Key == "" {
			problems = append(problems, "anthropic.key is required (set ANTHROPIC_API_KEY)")
		}
		if c.Anthropic.Model == "" {
			problems = append(problems, "anthropic.model is required")
		}
		if c.Anthropic.MaxTokens < 1 {
			problems = append(problems, "anthropic.max_tokens must be >= 1")
		}
		if c.Analyse.CharLimit < 1 {
			problems = append(problems, "analyse.char_limit must be >= 1")
		}
		checkExtract()
	case "search":
		if c.Search.MaxResults < 1 {
			problems = append(problems, "search.max_results must be >= 1")
		}
	case "extract":
		checkExtract()
	default:
		return eris.Errorf("config: unknown mode %q", mode)
	}

	if len(problems) > 0 {
		return eris.New("config: " + strings.Join(problems, "; "))
	}
	return nil
}

// InitLogger initializes the global zap logger.
func InitLogger(cfg LogConfig) error {
	var zapCfg zap.Config
	if cfg.Format == "console" {
		zapCfg = zap.NewDevelopmentConfig()
	} else {
		zapCfg = zap.NewProductionConfig()
	}

	level, err := zapcore.ParseLevel(cfg.Level)
	if err != nil {
		return eris.Wrap(err, "config: parse log level")
	}
	zapCfg.Level.SetLevel(level)

	logger, err := zapCfg.Build()
	if err != nil {
		return eris.Wrap(err, "config: build logger")
	}
	zap.ReplaceGlobals(logger)

	return nil
}
