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
	Store      StoreConfig      `yaml:"store" mapstructure:"store"`
	OpenAI     OpenAIConfig     `yaml:"openai" mapstructure:"openai"`
	Anthropic  AnthropicConfig  `yaml:"anthropic" mapstructure:"anthropic"`
	Router     RouterConfig     `yaml:"router" mapstructure:"router"`
	Scoring    ScoringConfig    `yaml:"scoring" mapstructure:"scoring"`
	Qualify    QualifyConfig    `yaml:"qualify" mapstructure:"qualify"`
	Verify     VerifyConfig     `yaml:"verify" mapstructure:"verify"`
	SiteFetch  SiteFetchConfig  `yaml:"sitefetch" mapstructure:"sitefetch"`
	AdLibrary  AdLibraryConfig  `yaml:"adlibrary" mapstructure:"adlibrary"`
	Salesforce SalesforceConfig `yaml:"salesforce" mapstructure:"salesforce"`
	Notion     NotionConfig     `yaml:"notion" mapstructure:"notion"`
	Pricing    PricingConfig    `yaml:"pricing" mapstructure:"pricing"`
	Templates  TemplatesConfig  `yaml:"templates" mapstructure:"templates"`
	Server     ServerConfig     `yaml:"server" mapstructure:"server"`
	Log        LogConfig        `yaml:"log" mapstructure:"log"`
}

// StoreConfig configures the session store backend.
type StoreConfig struct {
	Driver      string `yaml:"driver" mapstructure:"driver"` // memory, sqlite, postgres
	DatabaseURL string `yaml:"database_url" mapstructure:"database_url"`
	SQLitePath  string `yaml:"sqlite_path" mapstructure:"sqlite_path"`
}

// OpenAIConfig holds settings for the empathetic (conversational) backend.
type OpenAIConfig struct {
	Key         string  `yaml:"key" mapstructure:"key"`
	BaseURL     string  `yaml:"base_url" mapstructure:"base_url"`
	Model       string  `yaml:"model" mapstructure:"model"`
	Temperature float64 `yaml:"temperature" mapstructure:"temperature"`
	MaxTokens   int     `yaml:"max_tokens" mapstructure:"max_tokens"`
	RateLimit   float64 `yaml:"rate_limit" mapstructure:"rate_limit"` // req/s
}

// AnthropicConfig holds settings for the analytical (data) backend.
type AnthropicConfig struct {
	Key         string  `yaml:"key" mapstructure:"key"`
	Model       string  `yaml:"model" mapstructure:"model"`
	Temperature float64 `yaml:"temperature" mapstructure:"temperature"`
	MaxTokens   int     `yaml:"max_tokens" mapstructure:"max_tokens"`
	RateLimit   float64 `yaml:"rate_limit" mapstructure:"rate_limit"` // req/s
}

// RouterConfig configures backend selection.
type RouterConfig struct {
	// RapportWindow is the turn count below which the empathetic backend is
	// always selected, regardless of conversation type.
	RapportWindow int `yaml:"rapport_window" mapstructure:"rapport_window"`
	// ClosingTurnThreshold is the history length beyond which a message is
	// classified as closing intent.
	ClosingTurnThreshold int `yaml:"closing_turn_threshold" mapstructure:"closing_turn_threshold"`
}

// ScoringConfig configures lead scoring thresholds.
type ScoringConfig struct {
	// ReadyScoreThreshold is the minimum score (exclusive) for ready-to-buy.
	ReadyScoreThreshold int `yaml:"ready_score_threshold" mapstructure:"ready_score_threshold"`
}

// QualifyConfig configures the qualification gate.
type QualifyConfig struct {
	// MinMonthlySpend is the minimum disclosed monthly ad spend to qualify.
	MinMonthlySpend float64 `yaml:"min_monthly_spend" mapstructure:"min_monthly_spend"`
	// HighCPAThreshold selects the high-CPA call offer fallback template.
	HighCPAThreshold float64 `yaml:"high_cpa_threshold" mapstructure:"high_cpa_threshold"`
}

// VerifyConfig configures the identity verifier.
type VerifyConfig struct {
	// NameSimilarityCutoff is the minimum similarity for an owner name match.
	NameSimilarityCutoff float64 `yaml:"name_similarity_cutoff" mapstructure:"name_similarity_cutoff"`
	// CompetitorSignalCutoff is the accumulated signal score above which a
	// visitor is classified as a researching competitor.
	CompetitorSignalCutoff float64 `yaml:"competitor_signal_cutoff" mapstructure:"competitor_signal_cutoff"`
}

// SiteFetchConfig configures the website snapshot reader.
type SiteFetchConfig struct {
	Key     string `yaml:"key" mapstructure:"key"`
	BaseURL string `yaml:"base_url" mapstructure:"base_url"`
}

// AdLibraryConfig configures the ad-library search collaborator.
type AdLibraryConfig struct {
	BaseURL     string `yaml:"base_url" mapstructure:"base_url"`
	TimeoutSecs int    `yaml:"timeout_secs" mapstructure:"timeout_secs"`
}

// SalesforceConfig holds Salesforce JWT auth settings for CRM sync.
type SalesforceConfig struct {
	ClientID string `yaml:"client_id" mapstructure:"client_id"`
	Username string `yaml:"username" mapstructure:"username"`
	KeyPath  string `yaml:"key_path" mapstructure:"key_path"`
	LoginURL string `yaml:"login_url" mapstructure:"login_url"`
}

// NotionConfig holds the Notion integration token and leads database id.
type NotionConfig struct {
	Token   string `yaml:"token" mapstructure:"token"`
	LeadsDB string `yaml:"leads_db" mapstructure:"leads_db"`
}

// PricingConfig holds per-backend token pricing rates.
type PricingConfig struct {
	OpenAI    map[string]ModelPricing `yaml:"openai" mapstructure:"openai"`
	Anthropic map[string]ModelPricing `yaml:"anthropic" mapstructure:"anthropic"`
}

// ModelPricing holds per-model token pricing (USD per million tokens).
type ModelPricing struct {
	Input  float64 `yaml:"input" mapstructure:"input"`
	Output float64 `yaml:"output" mapstructure:"output"`
}

// TemplatesConfig points at an optional YAML pack overriding the built-in
// question bank and call-offer templates.
type TemplatesConfig struct {
	Path string `yaml:"path" mapstructure:"path"`
}

// ServerConfig configures the HTTP server.
type ServerConfig struct {
	Port int `yaml:"port" mapstructure:"port"`
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
	v.SetEnvPrefix("LEADFLOW")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Defaults
	v.SetDefault("store.driver", "memory")
	v.SetDefault("store.sqlite_path", "leadflow.db")
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")
	v.SetDefault("server.port", 8080)
	v.SetDefault("openai.base_url", "https://api.openai.com/v1")
	v.SetDefault("openai.model", "gpt-4o")
	v.SetDefault("openai.temperature", 0.8)
	v.SetDefault("openai.max_tokens", 500)
	v.SetDefault("openai.rate_limit", 5)
	v.SetDefault("anthropic.model", "claude-sonnet-4-5-20250929")
	v.SetDefault("anthropic.temperature", 0.3)
	v.SetDefault("anthropic.max_tokens", 500)
	v.SetDefault("anthropic.rate_limit", 5)
	v.SetDefault("router.rapport_window", 3)
	v.SetDefault("router.closing_turn_threshold", 10)
	v.SetDefault("scoring.ready_score_threshold", 70)
	v.SetDefault("qualify.min_monthly_spend", 200)
	v.SetDefault("qualify.high_cpa_threshold", 100)
	v.SetDefault("verify.name_similarity_cutoff", 0.8)
	v.SetDefault("verify.competitor_signal_cutoff", 0.5)
	v.SetDefault("sitefetch.base_url", "https://r.jina.ai")
	v.SetDefault("adlibrary.timeout_secs", 15)
	v.SetDefault("salesforce.login_url", "https://login.salesforce.com")
	v.SetDefault("pricing.openai.gpt-4o.input", 2.50)
	v.SetDefault("pricing.openai.gpt-4o.output", 10.00)
	v.SetDefault("pricing.anthropic.claude-sonnet-4-5-20250929.input", 3.00)
	v.SetDefault("pricing.anthropic.claude-sonnet-4-5-20250929.output", 15.00)
	v.SetDefault("pricing.anthropic.claude-haiku-4-5-20251001.input", 0.80)
	v.SetDefault("pricing.anthropic.claude-haiku-4-5-20251001.output", 4.00)

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
