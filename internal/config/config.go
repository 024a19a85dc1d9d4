// Package config provides application configuration with multi-source
// priority.
//
// Configuration sources (highest to lowest priority):
//  1. Environment variables (runtime override, plus DATABASE_URL)
//  2. Config file (~/.ragdesk/config.yaml)
//  3. Default values
//
// Categories: AI provider/model selection, chunking, retrieval, ticket
// cross-referencing, and PostgreSQL storage.
//
// Sensitive data (the database password) is never logged; MarshalJSON masks
// it. Validation runs at load time and returns sentinel errors usable with
// errors.Is().
package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
)

var (
	// ErrConfigNil indicates the configuration is nil.
	ErrConfigNil = errors.New("configuration is nil")

	// ErrMissingAPIKey indicates a required API key is missing.
	ErrMissingAPIKey = errors.New("missing API key")

	// ErrInvalidModelName indicates the model name is invalid.
	ErrInvalidModelName = errors.New("invalid model name")

	// ErrInvalidEmbedder indicates the embedder model or its dimensionality
	// is invalid.
	ErrInvalidEmbedder = errors.New("invalid embedder configuration")

	// ErrInvalidChunking indicates the chunk size bounds are invalid.
	ErrInvalidChunking = errors.New("invalid chunking configuration")

	// ErrInvalidRetrieval indicates retrieval threshold or limit is out of range.
	ErrInvalidRetrieval = errors.New("invalid retrieval configuration")

	// ErrInvalidTickets indicates the ticket cross-reference settings are out of range.
	ErrInvalidTickets = errors.New("invalid ticket configuration")

	// ErrInvalidPostgresHost indicates the PostgreSQL host is invalid.
	ErrInvalidPostgresHost = errors.New("invalid PostgreSQL host")

	// ErrInvalidPostgresPort indicates the PostgreSQL port is out of range.
	ErrInvalidPostgresPort = errors.New("invalid PostgreSQL port")

	// ErrInvalidPostgresDBName indicates the PostgreSQL database name is invalid.
	ErrInvalidPostgresDBName = errors.New("invalid PostgreSQL database name")

	// ErrInvalidPostgresPassword indicates the PostgreSQL password is invalid.
	ErrInvalidPostgresPassword = errors.New("invalid PostgreSQL password")

	// ErrInvalidPostgresSSLMode indicates the PostgreSQL SSL mode is invalid.
	ErrInvalidPostgresSSLMode = errors.New("invalid PostgreSQL SSL mode")
)

const (
	// DefaultEmbedderModel is the default Gemini embedder model.
	// gemini-embedding-001 outputs 3072 dimensions by default but supports
	// truncation; the pgvector schema stores DefaultEmbedderDimensions.
	DefaultEmbedderModel = "gemini-embedding-001"

	// DefaultEmbedderDimensions must match the vector column width in the
	// chunks migration.
	DefaultEmbedderDimensions = 768
)

// AI provider identifiers used in Config.Provider.
const (
	ProviderGemini   = "gemini"
	ProviderGoogleAI = "googleai"
)

// Config stores application configuration.
// SECURITY: sensitive fields are explicitly masked in MarshalJSON().
type Config struct {
	// AI provider and model configuration
	Provider  string `mapstructure:"provider" json:"provider"`
	ModelName string `mapstructure:"model_name" json:"model_name"`

	// Embedding configuration. Dimensions must match the vector column
	// width in the database schema.
	EmbedderModel      string `mapstructure:"embedder_model" json:"embedder_model"`
	EmbedderDimensions int    `mapstructure:"embedder_dimensions" json:"embedder_dimensions"`

	// Chunking configuration
	MaxChunkSize int `mapstructure:"max_chunk_size" json:"max_chunk_size"`
	MinChunkSize int `mapstructure:"min_chunk_size" json:"min_chunk_size"`

	// Retrieval configuration
	RetrievalThreshold float64 `mapstructure:"retrieval_threshold" json:"retrieval_threshold"`
	RetrievalLimit     int     `mapstructure:"retrieval_limit" json:"retrieval_limit"`

	// Ticket cross-reference configuration
	TicketThreshold     float64 `mapstructure:"ticket_threshold" json:"ticket_threshold"`
	MaxSimilarTickets   int     `mapstructure:"max_similar_tickets" json:"max_similar_tickets"`
	MaxSourceEmbeddings int     `mapstructure:"max_source_embeddings" json:"max_source_embeddings"`
	TicketQueryLimit    int     `mapstructure:"ticket_query_limit" json:"ticket_query_limit"`
	TicketPreview       int     `mapstructure:"ticket_preview" json:"ticket_preview"` // negative: full content

	// Storage configuration (see storage.go)
	PostgresHost     string `mapstructure:"postgres_host" json:"postgres_host"`
	PostgresPort     int    `mapstructure:"postgres_port" json:"postgres_port"`
	PostgresUser     string `mapstructure:"postgres_user" json:"postgres_user"`
	PostgresPassword string `mapstructure:"postgres_password" json:"postgres_password"` // SENSITIVE: masked in MarshalJSON
	PostgresDBName   string `mapstructure:"postgres_db_name" json:"postgres_db_name"`
	PostgresSSLMode  string `mapstructure:"postgres_ssl_mode" json:"postgres_ssl_mode"`
}

// Load loads configuration.
// Priority: environment variables > configuration file > default values.
func Load() (*Config, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return nil, fmt.Errorf("getting user home directory: %w", err)
	}

	configDir := filepath.Join(home, ".ragdesk")
	if err := os.MkdirAll(configDir, 0o750); err != nil {
		return nil, fmt.Errorf("creating config directory: %w", err)
	}

	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath(configDir)
	viper.AddConfigPath(".")

	setDefaults()
	bindEnvVariables()

	if err := viper.ReadInConfig(); err != nil {
		// A missing config file is fine, defaults apply.
		var configNotFound viper.ConfigFileNotFoundError
		if !errors.As(err, &configNotFound) {
			return nil, fmt.Errorf("reading config file: %w", err)
		}
		slog.Debug("configuration file not found, using default values",
			"search_paths", []string{configDir, "."})
	}

	var cfg Config
	if err := viper.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("parsing configuration: %w", err)
	}

	// DATABASE_URL, when set, overrides the individual postgres_* settings.
	if err := cfg.parseDatabaseURL(); err != nil {
		return nil, fmt.Errorf("parsing DATABASE_URL: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validating configuration: %w", err)
	}

	return &cfg, nil
}

func setDefaults() {
	// AI defaults
	viper.SetDefault("provider", ProviderGemini)
	viper.SetDefault("model_name", "gemini-2.5-flash")
	viper.SetDefault("embedder_model", DefaultEmbedderModel)
	viper.SetDefault("embedder_dimensions", DefaultEmbedderDimensions)

	// Chunking defaults
	viper.SetDefault("max_chunk_size", 800)
	viper.SetDefault("min_chunk_size", 50)

	// Retrieval defaults
	viper.SetDefault("retrieval_threshold", 0.3)
	viper.SetDefault("retrieval_limit", 5)

	// Ticket cross-reference defaults
	viper.SetDefault("ticket_threshold", 0.7)
	viper.SetDefault("max_similar_tickets", 3)
	viper.SetDefault("max_source_embeddings", 5)
	viper.SetDefault("ticket_query_limit", 10)
	viper.SetDefault("ticket_preview", -1)

	// PostgreSQL defaults (matching docker-compose.yml)
	viper.SetDefault("postgres_host", "localhost")
	viper.SetDefault("postgres_port", 5432)
	viper.SetDefault("postgres_user", "ragdesk")
	viper.SetDefault("postgres_password", "ragdesk_dev_password")
	viper.SetDefault("postgres_db_name", "ragdesk")
	viper.SetDefault("postgres_ssl_mode", "disable")
}

// bindEnvVariables binds runtime override environment variables explicitly.
// GEMINI_API_KEY is read directly by Genkit, not via Viper; Validate()
// checks its presence. DATABASE_URL is handled in parseDatabaseURL.
func bindEnvVariables() {
	// Hardcoded keys cannot fail to bind; a panic here is a bug.
	mustBind := func(key, envVar string) {
		if err := viper.BindEnv(key, envVar); err != nil {
			panic(fmt.Sprintf("BUG: failed to bind %q to %q: %v", key, envVar, err))
		}
	}

	mustBind("provider", "RAGDESK_PROVIDER")
	mustBind("model_name", "RAGDESK_MODEL_NAME")
	mustBind("embedder_model", "RAGDESK_EMBEDDER_MODEL")
	mustBind("embedder_dimensions", "RAGDESK_EMBEDDER_DIMENSIONS")
	mustBind("retrieval_threshold", "RAGDESK_RETRIEVAL_THRESHOLD")
	mustBind("ticket_threshold", "RAGDESK_TICKET_THRESHOLD")
}

// maskedValue uses full-width blocks so a masked value can never be a
// substring of the real secret.
const maskedValue = "████████"

// maskSecret masks a secret for safe logging. Secrets of 8 characters or
// fewer are fully masked; longer ones keep the first and last 2 characters
// for debug utility.
func maskSecret(s string) string {
	if s == "" {
		return ""
	}
	if len(s) <= 8 {
		return maskedValue
	}
	return s[:2] + "<" + maskedValue + ">" + s[len(s)-2:]
}

// MarshalJSON implements json.Marshaler with explicit sensitive field
// masking. When adding new sensitive fields, update this method.
func (c Config) MarshalJSON() ([]byte, error) {
	type alias Config
	a := alias(c)
	a.PostgresPassword = maskSecret(a.PostgresPassword)
	data, err := json.Marshal(a)
	if err != nil {
		return nil, fmt.Errorf("marshal config: %w", err)
	}
	return data, nil
}

// FullModelName returns the provider-qualified model name for Genkit,
// e.g. "googleai/gemini-2.5-flash". A ModelName already containing "/" is
// returned as-is.
func (c *Config) FullModelName() string {
	if strings.Contains(c.ModelName, "/") {
		return c.ModelName
	}
	return ProviderGoogleAI + "/" + c.ModelName
}

// String implements Stringer to prevent accidental printing of secrets.
func (c Config) String() string {
	data, err := c.MarshalJSON()
	if err != nil {
		return fmt.Sprintf("Config{error: %v}", err)
	}
	return string(data)
}
