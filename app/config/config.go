package config

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

const (
	AnnotatorGemini = "gemini"
	AnnotatorOllama = "ollama"
	AnnotatorNone   = "none"

	StoreJSON     = "json"
	StorePostgres = "postgres"
)

type Config struct {
	ServerAddr     string `mapstructure:"server_addr" validate:"required"`
	DataDir        string `mapstructure:"data_dir" validate:"required"`
	UploadDir      string `mapstructure:"upload_dir" validate:"required"`
	IndexUploadDir string `mapstructure:"index_upload_dir" validate:"required"`
	MaxUploadBytes int    `mapstructure:"max_upload_bytes" validate:"gt=0"`

	StoreDriver string `mapstructure:"store_driver" validate:"oneof=json postgres"`
	PGHost      string `mapstructure:"pg_host"`
	PGPort      int    `mapstructure:"pg_port"`
	PGUser      string `mapstructure:"pg_user"`
	PGPass      string `mapstructure:"pg_pass"`
	PGDBName    string `mapstructure:"pg_db_name"`

	Annotator       string `mapstructure:"annotator" validate:"omitempty,oneof=gemini ollama none"`
	GoogleAPIKey    string `mapstructure:"google_api_key"`
	GeminiModel     string `mapstructure:"gemini_model"`
	LLMURL          string `mapstructure:"llm_url" validate:"omitempty,url"`
	LLMModel        string `mapstructure:"llm_model"`
	NoteTokenLimit  int    `mapstructure:"note_token_limit" validate:"gte=0"`
	AIRetryAttempts uint   `mapstructure:"ai_retry_attempts" validate:"gte=1"`
}

var defaults = map[string]any{
	"server_addr":       ":8080",
	"data_dir":          "data",
	"upload_dir":        "uploads",
	"index_upload_dir":  "uploads/indices",
	"max_upload_bytes":  16 * 1024 * 1024,
	"store_driver":      StoreJSON,
	"pg_host":           "localhost",
	"pg_port":           5432,
	"pg_user":           "postgres",
	"pg_pass":           "",
	"pg_db_name":        "studynotes",
	"annotator":         "",
	"google_api_key":    "",
	"gemini_model":      "gemini-1.5-flash",
	"llm_url":           "http://localhost:11434/api/generate",
	"llm_model":         "llama3",
	"note_token_limit":  2000,
	"ai_retry_attempts": 3,
}

// Load reads .env (when present), the optional config file and the
// environment, in increasing order of precedence.
func Load(cfgFile string) (*Config, error) {
	if err := godotenv.Load(); err != nil {
		slog.Debug("no .env file loaded", "error", err)
	}

	v := viper.New()
	for k, val := range defaults {
		v.SetDefault(k, val)
	}
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
	}
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if cfgFile != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	if cfg.Annotator == "" {
		cfg.Annotator = AnnotatorNone
		if cfg.GoogleAPIKey != "" {
			cfg.Annotator = AnnotatorGemini
		}
	}

	if err := validator.New().Struct(&cfg); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return &cfg, nil
}

func (c *Config) PostgresDSN() string {
	return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=disable",
		c.PGHost, c.PGPort, c.PGUser, c.PGPass, c.PGDBName)
}

// MaskedAPIKey is safe to print: only the first 10 characters are shown.
func (c *Config) MaskedAPIKey() string {
	if len(c.GoogleAPIKey) > 10 {
		return c.GoogleAPIKey[:10] + "..."
	}
	if c.GoogleAPIKey == "" {
		return ""
	}
	return "***"
}
