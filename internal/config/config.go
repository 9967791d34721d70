package config

import (
	"fmt"
	"time"

	"github.com/spf13/viper"
)

// Config holds all application configuration
type Config struct {
	Dataset  DatasetConfig  `mapstructure:"dataset"`
	Bench    BenchConfig    `mapstructure:"bench"`
	OCR      OCRConfig      `mapstructure:"ocr"`
	OpenAI   OpenAIConfig   `mapstructure:"openai"`
	Database DatabaseConfig `mapstructure:"database"`
	Export   ExportConfig   `mapstructure:"export"`
	Lark     LarkConfig     `mapstructure:"lark"`
	Server   ServerConfig   `mapstructure:"server"`
	Logger   LoggerConfig   `mapstructure:"logger"`
}

// DatasetConfig points at the generated sample directory
type DatasetConfig struct {
	Dir string `mapstructure:"dir"`
}

// BenchConfig controls which strategies run and how
type BenchConfig struct {
	// Methods lists strategy names: regex, kv, pattern, ensemble, llm
	Methods []string `mapstructure:"methods"`
	// Source selects the text source for heuristic methods:
	// "pdf" (embedded text layer), "ocr" (box file), "tesseract"
	Source  string `mapstructure:"source"`
	Workers int    `mapstructure:"workers"`
}

// OCRConfig holds OCR engine configuration
type OCRConfig struct {
	TesseractCmd string  `mapstructure:"tesseract_cmd"`
	Languages    string  `mapstructure:"languages"`
	Zoom         float64 `mapstructure:"zoom"`
}

// OpenAIConfig holds the LLM extraction configuration
type OpenAIConfig struct {
	APIKey    string        `mapstructure:"api_key"`
	BaseURL   string        `mapstructure:"base_url"`
	Model     string        `mapstructure:"model"`
	MaxTokens int           `mapstructure:"max_tokens"`
	Timeout   time.Duration `mapstructure:"timeout"`
}

// DatabaseConfig holds results store configuration
type DatabaseConfig struct {
	Path            string        `mapstructure:"path"`
	MaxOpenConns    int           `mapstructure:"max_open_conns"`
	MaxIdleConns    int           `mapstructure:"max_idle_conns"`
	ConnMaxLifetime time.Duration `mapstructure:"conn_max_lifetime"`
}

// ExportConfig holds report workbook configuration
type ExportConfig struct {
	OutputDir string `mapstructure:"output_dir"`
}

// LarkConfig holds the optional run-completion notification settings
type LarkConfig struct {
	Enabled   bool          `mapstructure:"enabled"`
	AppID     string        `mapstructure:"app_id"`
	AppSecret string        `mapstructure:"app_secret"`
	ChatID    string        `mapstructure:"chat_id"`
	Timeout   time.Duration `mapstructure:"timeout"`
}

// ServerConfig holds report API server configuration
type ServerConfig struct {
	Host         string        `mapstructure:"host"`
	Port         int           `mapstructure:"port"`
	ReadTimeout  time.Duration `mapstructure:"read_timeout"`
	WriteTimeout time.Duration `mapstructure:"write_timeout"`
}

// LoggerConfig holds logger configuration
type LoggerConfig struct {
	Level      string `mapstructure:"level"`
	OutputPath string `mapstructure:"output_path"`
	Format     string `mapstructure:"format"`
}

// Load loads configuration from file and environment variables
func Load(configPath string) (*Config, error) {
	viper.SetConfigFile(configPath)
	viper.SetConfigType("yaml")
	viper.AutomaticEnv()

	setDefaults()

	if err := viper.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	bindEnvVars()

	var cfg Config
	if err := viper.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &cfg, nil
}

// setDefaults sets default configuration values
func setDefaults() {
	viper.SetDefault("dataset.dir", "dataset")

	viper.SetDefault("bench.methods", []string{"regex", "kv", "pattern", "ensemble"})
	viper.SetDefault("bench.source", "pdf")
	viper.SetDefault("bench.workers", 4)

	viper.SetDefault("ocr.zoom", 1.7)

	viper.SetDefault("openai.model", "gpt-4o-mini")
	viper.SetDefault("openai.max_tokens", 2000)
	viper.SetDefault("openai.timeout", 60*time.Second)

	viper.SetDefault("database.path", "data/invoice_bench.db")
	viper.SetDefault("database.max_open_conns", 25)
	viper.SetDefault("database.max_idle_conns", 5)
	viper.SetDefault("database.conn_max_lifetime", 5*time.Minute)

	viper.SetDefault("export.output_dir", "reports")

	viper.SetDefault("lark.enabled", false)
	viper.SetDefault("lark.timeout", 30*time.Second)

	viper.SetDefault("server.host", "0.0.0.0")
	viper.SetDefault("server.port", 8080)
	viper.SetDefault("server.read_timeout", 30*time.Second)
	viper.SetDefault("server.write_timeout", 30*time.Second)

	viper.SetDefault("logger.level", "info")
	viper.SetDefault("logger.output_path", "stdout")
	viper.SetDefault("logger.format", "json")
}

// bindEnvVars binds environment variables to configuration
func bindEnvVars() {
	// Sensitive credentials from environment
	viper.BindEnv("openai.api_key", "OPENAI_API_KEY")
	viper.BindEnv("openai.base_url", "OPENAI_BASE_URL")
	viper.BindEnv("lark.app_id", "LARK_APP_ID")
	viper.BindEnv("lark.app_secret", "LARK_APP_SECRET")
	viper.BindEnv("lark.chat_id", "LARK_CHAT_ID")
	viper.BindEnv("ocr.tesseract_cmd", "TESSERACT_CMD")
	viper.BindEnv("ocr.languages", "TESSERACT_LANGS")
}

// Validate validates the configuration
func (c *Config) Validate() error {
	if c.Dataset.Dir == "" {
		return fmt.Errorf("dataset.dir is required")
	}
	if len(c.Bench.Methods) == 0 {
		return fmt.Errorf("bench.methods must list at least one strategy")
	}
	switch c.Bench.Source {
	case "pdf", "ocr", "tesseract":
	default:
		return fmt.Errorf("bench.source must be pdf, ocr, or tesseract, got %q", c.Bench.Source)
	}
	if c.Bench.Workers < 1 {
		return fmt.Errorf("bench.workers must be at least 1")
	}
	for _, method := range c.Bench.Methods {
		if method == "llm" && c.OpenAI.APIKey == "" {
			return fmt.Errorf("openai.api_key is required when the llm method is enabled")
		}
	}
	if c.Lark.Enabled {
		if c.Lark.AppID == "" || c.Lark.AppSecret == "" {
			return fmt.Errorf("lark.app_id and lark.app_secret are required when lark is enabled")
		}
		if c.Lark.ChatID == "" {
			return fmt.Errorf("lark.chat_id is required when lark is enabled")
		}
	}
	return nil
}
