package config

import (
	"fmt"
	"strings"

	"github.com/rotisserie/eris"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Config holds the full application configuration.
type Config struct {
	Store      StoreConfig      `yaml:"store" mapstructure:"store"`
	Server     ServerConfig     `yaml:"server" mapstructure:"server"`
	Log        LogConfig        `yaml:"log" mapstructure:"log"`
	Scoring    ScoringConfig    `yaml:"scoring" mapstructure:"scoring"`
	Market     MarketConfig     `yaml:"market" mapstructure:"market"`
	Geo        GeoConfig        `yaml:"geo" mapstructure:"geo"`
	OCR        OCRConfig        `yaml:"ocr" mapstructure:"ocr"`
	Anthropic  AnthropicConfig  `yaml:"anthropic" mapstructure:"anthropic"`
	Notion     NotionConfig     `yaml:"notion" mapstructure:"notion"`
	Salesforce SalesforceConfig `yaml:"salesforce" mapstructure:"salesforce"`
	Batch      BatchConfig      `yaml:"batch" mapstructure:"batch"`
}

// StoreConfig configures the persistence backend.
type StoreConfig struct {
	Driver      string `yaml:"driver" mapstructure:"driver"`
	Path        string `yaml:"path" mapstructure:"path"`
	DatabaseURL string `yaml:"database_url" mapstructure:"database_url"`
	MaxConns    int    `yaml:"max_conns" mapstructure:"max_conns"`
}

// ServerConfig configures the REST API server.
type ServerConfig struct {
	Port        int      `yaml:"port" mapstructure:"port"`
	CORSOrigins []string `yaml:"cors_origins" mapstructure:"cors_origins"`
}

// LogConfig configures logging.
type LogConfig struct {
	Level  string `yaml:"level" mapstructure:"level"`
	Format string `yaml:"format" mapstructure:"format"`
}

// ScoringConfig points at optional overrides for the scoring tables.
type ScoringConfig struct {
	ConfigPath string `yaml:"config_path" mapstructure:"config_path"`
}

// MarketConfig configures external market data feeds.
type MarketConfig struct {
	FeedURL  string    `yaml:"feed_url" mapstructure:"feed_url"`
	CacheDir string    `yaml:"cache_dir" mapstructure:"cache_dir"`
	FTP      FTPConfig `yaml:"ftp" mapstructure:"ftp"`
}

// FTPConfig holds credentials for FTP-hosted bulk market files.
type FTPConfig struct {
	Host     string `yaml:"host" mapstructure:"host"`
	User     string `yaml:"user" mapstructure:"user"`
	Password string `yaml:"password" mapstructure:"password"`
}

// GeoConfig configures the submarket boundary loader and geocoding.
type GeoConfig struct {
	ShapefileURL string `yaml:"shapefile_url" mapstructure:"shapefile_url"`
	CacheDir     string `yaml:"cache_dir" mapstructure:"cache_dir"`
	GoogleKey    string `yaml:"google_key" mapstructure:"google_key"`
}

// OCRConfig selects how text is pulled out of PDF rent rolls.
type OCRConfig struct {
	Provider      string `yaml:"provider" mapstructure:"provider"`
	PdfToTextPath string `yaml:"pdftotext_path" mapstructure:"pdftotext_path"`
	MistralKey    string `yaml:"mistral_key" mapstructure:"mistral_key"`
	MistralModel  string `yaml:"mistral_model" mapstructure:"mistral_model"`
}

// AnthropicConfig holds Anthropic API settings for insight generation.
type AnthropicConfig struct {
	Key         string  `yaml:"key" mapstructure:"key"`
	Model       string  `yaml:"model" mapstructure:"model"`
	MaxTokens   int     `yaml:"max_tokens" mapstructure:"max_tokens"`
	Temperature float64 `yaml:"temperature" mapstructure:"temperature"`
}

// NotionConfig holds Notion API credentials for analysis exports.
type NotionConfig struct {
	Token      string  `yaml:"token" mapstructure:"token"`
	AnalysisDB string  `yaml:"analysis_db" mapstructure:"analysis_db"`
	RPS        float64 `yaml:"rps" mapstructure:"rps"`
}

// SalesforceConfig holds Salesforce JWT auth settings for tenant imports.
type SalesforceConfig struct {
	ClientID string `yaml:"client_id" mapstructure:"client_id"`
	Username string `yaml:"username" mapstructure:"username"`
	KeyPath  string `yaml:"key_path" mapstructure:"key_path"`
	LoginURL string `yaml:"login_url" mapstructure:"login_url"`
}

// BatchConfig configures concurrent portfolio scoring.
type BatchConfig struct {
	MaxConcurrentProperties int `yaml:"max_concurrent_properties" mapstructure:"max_concurrent_properties"`
}

// Load reads configuration from file and environment.
func Load() (*Config, error) {
	v := viper.New()

	// Config file
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")

	// Environment
	v.SetEnvPrefix("CRE")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Defaults
	v.SetDefault("store.driver", "sqlite")
	v.SetDefault("store.path", "cre-analytics.db")
	v.SetDefault("store.max_conns", 8)
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.cors_origins", []string{"*"})
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")
	v.SetDefault("market.cache_dir", "/tmp/cre-market")
	v.SetDefault("geo.shapefile_url", "https://www2.census.gov/geo/tiger/TIGER2024/CBSA/tl_2024_us_cbsa.zip")
	v.SetDefault("geo.cache_dir", "/tmp/cre-tiger")
	v.SetDefault("ocr.provider", "local")
	v.SetDefault("anthropic.model", "claude-sonnet-4-5-20250929")
	v.SetDefault("anthropic.max_tokens", 4000)
	v.SetDefault("anthropic.temperature", 0.3)
	v.SetDefault("notion.rps", 3)
	v.SetDefault("salesforce.login_url", "https://login.salesforce.com")
	v.SetDefault("batch.max_concurrent_properties", 4)

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

// Validate checks that the configuration satisfies the named mode.
// Modes map to command groups: "store" for anything persisting records,
// "serve" for the API server, "export" for Notion, "crm" for Salesforce,
// "insights" for commands calling the model.
func (c *Config) Validate(mode string) error {
	var problems []string

	switch c.Store.Driver {
	case "sqlite", "postgres":
	default:
		problems = append(problems, fmt.Sprintf("store.driver must be sqlite or postgres, got %q", c.Store.Driver))
	}
	if c.Batch.MaxConcurrentProperties < 1 || c.Batch.MaxConcurrentProperties > 32 {
		problems = append(problems, "batch.max_concurrent_properties must be between 1 and 32")
	}
	if c.Anthropic.Temperature < 0 || c.Anthropic.Temperature > 1 {
		problems = append(problems, "anthropic.temperature must be within [0, 1]")
	}

	switch mode {
	case "store":
		problems = append(problems, c.storeProblems()...)
	case "serve":
		problems = append(problems, c.storeProblems()...)
		if c.Server.Port <= 0 {
			problems = append(problems, "server.port must be > 0")
		}
	case "export":
		if c.Notion.Token == "" {
			problems = append(problems, "notion.token is required")
		}
		if c.Notion.AnalysisDB == "" {
			problems = append(problems, "notion.analysis_db is required")
		}
	case "crm":
		if c.Salesforce.ClientID == "" {
			problems = append(problems, "salesforce.client_id is required")
		}
		if c.Salesforce.Username == "" {
			problems = append(problems, "salesforce.username is required")
		}
		if c.Salesforce.KeyPath == "" {
			problems = append(problems, "salesforce.key_path is required")
		}
	case "insights":
		if c.Anthropic.Key == "" {
			problems = append(problems, "anthropic.key is required")
		}
	default:
		return eris.Errorf("config: unknown mode %q", mode)
	}

	if len(problems) > 0 {
		return eris.New("config: " + strings.Join(problems, "; "))
	}
	return nil
}

func (c *Config) storeProblems() []string {
	var problems []string
	switch c.Store.Driver {
	case "postgres":
		if c.Store.DatabaseURL == "" {
			problems = append(problems, "store.database_url is required")
		}
	case "sqlite":
		if c.Store.Path == "" {
			problems = append(problems, "store.path is required")
		}
	}
	return problems
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
