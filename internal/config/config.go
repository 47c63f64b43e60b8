package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds all application configuration.
type Config struct {
	Server        ServerConfig
	Log           LogConfig
	LLM           LLMConfig
	Qualification QualificationConfig
	S3            S3Config
	CORS          CORSConfig
	Metrics       MetricsConfig
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Port           string        `mapstructure:"port"`
	ReadTimeout    time.Duration `mapstructure:"read_timeout"`
	WriteTimeout   time.Duration `mapstructure:"write_timeout"`
	RequestTimeout time.Duration `mapstructure:"request_timeout"`
	Environment    string        `mapstructure:"environment"`
	MaxBodyMB      int64         `mapstructure:"max_body_mb"`
}

// LogConfig holds logging settings.
type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// LLMProviderConfig holds settings for a single text-generation provider.
type LLMProviderConfig struct {
	Provider     string `mapstructure:"provider"`
	APIKey       string `mapstructure:"api_key"`
	DefaultModel string `mapstructure:"default_model"`
	BaseURL      string `mapstructure:"base_url"`
	TimeoutSecs  int    `mapstructure:"timeout_secs"`
}

// LLMConfig holds the ordered provider chain and the per-call retry policy.
type LLMConfig struct {
	Primary   LLMProviderConfig `mapstructure:"primary"`
	Secondary LLMProviderConfig `mapstructure:"secondary"`
	Tertiary  LLMProviderConfig `mapstructure:"tertiary"`

	CallTimeout time.Duration `mapstructure:"call_timeout"`
	MaxRetries  int           `mapstructure:"max_retries"`
	RetryDelay  time.Duration `mapstructure:"retry_delay"`
}

// Providers returns the configured providers in fallback order.
func (l *LLMConfig) Providers() []*LLMProviderConfig {
	var out []*LLMProviderConfig
	for _, p := range []*LLMProviderConfig{&l.Primary, &l.Secondary, &l.Tertiary} {
		if p.Provider != "" {
			out = append(out, p)
		}
	}
	return out
}

// QualificationConfig holds engine concurrency and aggregation policy.
type QualificationConfig struct {
	DocumentConcurrency   int      `mapstructure:"document_concurrency"`
	EvaluationConcurrency int      `mapstructure:"evaluation_concurrency"`
	ApprovalThreshold     int      `mapstructure:"approval_threshold"`
	MandatoryItems        []string `mapstructure:"mandatory_items"`
	ExcerptLength         int      `mapstructure:"excerpt_length"`
	MinTextLength         int      `mapstructure:"min_text_length"`
}

// S3Config holds the object storage settings used to fetch OCR'd texts.
type S3Config struct {
	Region    string `mapstructure:"region"`
	Bucket    string `mapstructure:"bucket"`
	Endpoint  string `mapstructure:"endpoint"`
	AccessKey string `mapstructure:"access_key"`
	SecretKey string `mapstructure:"secret_key"`
	MaxTextMB int64  `mapstructure:"max_text_mb"`
}

// Enabled reports whether an S3 text source should be wired.
func (s *S3Config) Enabled() bool {
	return s.Bucket != "" || s.Endpoint != ""
}

// CORSConfig holds CORS settings.
type CORSConfig struct {
	AllowedOrigins []string `mapstructure:"allowed_origins"`
}

// MetricsConfig holds Prometheus exposition settings.
type MetricsConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	Path    string `mapstructure:"path"`
}

// Load reads configuration from environment variables with the REGISTRUM_ prefix.
func Load() (*Config, error) {
	v := viper.New()
	v.SetEnvPrefix("REGISTRUM")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Server defaults
	v.SetDefault("server.port", ":8080")
	v.SetDefault("server.read_timeout", "30s")
	v.SetDefault("server.write_timeout", "15m")
	v.SetDefault("server.request_timeout", "10m")
	v.SetDefault("server.environment", "development")
	v.SetDefault("server.max_body_mb", 20)

	// Log defaults
	v.SetDefault("log.level", "debug")
	v.SetDefault("log.format", "console")

	// LLM defaults
	v.SetDefault("llm.primary.provider", "openai")
	v.SetDefault("llm.primary.api_key", "")
	v.SetDefault("llm.primary.default_model", "")
	v.SetDefault("llm.primary.base_url", "")
	v.SetDefault("llm.primary.timeout_secs", 120)
	v.SetDefault("llm.secondary.provider", "")
	v.SetDefault("llm.secondary.api_key", "")
	v.SetDefault("llm.secondary.default_model", "")
	v.SetDefault("llm.secondary.base_url", "")
	v.SetDefault("llm.secondary.timeout_secs", 120)
	v.SetDefault("llm.tertiary.provider", "")
	v.SetDefault("llm.tertiary.api_key", "")
	v.SetDefault("llm.tertiary.default_model", "")
	v.SetDefault("llm.tertiary.base_url", "")
	v.SetDefault("llm.tertiary.timeout_secs", 120)
	v.SetDefault("llm.call_timeout", "90s")
	v.SetDefault("llm.max_retries", 1)
	v.SetDefault("llm.retry_delay", "2s")

	// Qualification defaults
	v.SetDefault("qualification.document_concurrency", 4)
	v.SetDefault("qualification.evaluation_concurrency", 8)
	v.SetDefault("qualification.approval_threshold", 80)
	v.SetDefault("qualification.mandatory_items", "")
	v.SetDefault("qualification.excerpt_length", 2000)
	v.SetDefault("qualification.min_text_length", 50)

	// S3 defaults
	v.SetDefault("s3.region", "sa-east-1")
	v.SetDefault("s3.bucket", "")
	v.SetDefault("s3.endpoint", "")
	v.SetDefault("s3.max_text_mb", 10)

	// CORS defaults (localhost origins for development)
	v.SetDefault("cors.allowed_origins", "http://localhost:3000,http://127.0.0.1:3000")

	// Metrics defaults
	v.SetDefault("metrics.enabled", true)
	v.SetDefault("metrics.path", "/metrics")

	// Bind environment variables explicitly for nested keys
	envBindings := map[string]string{
		"server.port":                          "REGISTRUM_SERVER_PORT",
		"server.read_timeout":                  "REGISTRUM_SERVER_READ_TIMEOUT",
		"server.write_timeout":                 "REGISTRUM_SERVER_WRITE_TIMEOUT",
		"server.request_timeout":               "REGISTRUM_SERVER_REQUEST_TIMEOUT",
		"server.environment":                   "REGISTRUM_SERVER_ENVIRONMENT",
		"server.max_body_mb":                   "REGISTRUM_SERVER_MAX_BODY_MB",
		"log.level":                            "REGISTRUM_LOG_LEVEL",
		"log.format":                           "REGISTRUM_LOG_FORMAT",
		"llm.primary.provider":                 "REGISTRUM_LLM_PRIMARY_PROVIDER",
		"llm.primary.api_key":                  "REGISTRUM_LLM_PRIMARY_API_KEY",
		"llm.primary.default_model":            "REGISTRUM_LLM_PRIMARY_DEFAULT_MODEL",
		"llm.primary.base_url":                 "REGISTRUM_LLM_PRIMARY_BASE_URL",
		"llm.primary.timeout_secs":             "REGISTRUM_LLM_PRIMARY_TIMEOUT_SECS",
		"llm.secondary.provider":               "REGISTRUM_LLM_SECONDARY_PROVIDER",
		"llm.secondary.api_key":                "REGISTRUM_LLM_SECONDARY_API_KEY",
		"llm.secondary.default_model":          "REGISTRUM_LLM_SECONDARY_DEFAULT_MODEL",
		"llm.secondary.base_url":               "REGISTRUM_LLM_SECONDARY_BASE_URL",
		"llm.secondary.timeout_secs":           "REGISTRUM_LLM_SECONDARY_TIMEOUT_SECS",
		"llm.tertiary.provider":                "REGISTRUM_LLM_TERTIARY_PROVIDER",
		"llm.tertiary.api_key":                 "REGISTRUM_LLM_TERTIARY_API_KEY",
		"llm.tertiary.default_model":           "REGISTRUM_LLM_TERTIARY_DEFAULT_MODEL",
		"llm.tertiary.base_url":                "REGISTRUM_LLM_TERTIARY_BASE_URL",
		"llm.tertiary.timeout_secs":            "REGISTRUM_LLM_TERTIARY_TIMEOUT_SECS",
		"llm.call_timeout":                     "REGISTRUM_LLM_CALL_TIMEOUT",
		"llm.max_retries":                      "REGISTRUM_LLM_MAX_RETRIES",
		"llm.retry_delay":                      "REGISTRUM_LLM_RETRY_DELAY",
		"qualification.document_concurrency":   "REGISTRUM_QUALIFICATION_DOCUMENT_CONCURRENCY",
		"qualification.evaluation_concurrency": "REGISTRUM_QUALIFICATION_EVALUATION_CONCURRENCY",
		"qualification.approval_threshold":     "REGISTRUM_QUALIFICATION_APPROVAL_THRESHOLD",
		"qualification.mandatory_items":        "REGISTRUM_QUALIFICATION_MANDATORY_ITEMS",
		"qualification.excerpt_length":         "REGISTRUM_QUALIFICATION_EXCERPT_LENGTH",
		"qualification.min_text_length":        "REGISTRUM_QUALIFICATION_MIN_TEXT_LENGTH",
		"s3.region":                            "REGISTRUM_S3_REGION",
		"s3.bucket":                            "REGISTRUM_S3_BUCKET",
		"s3.endpoint":                          "REGISTRUM_S3_ENDPOINT",
		"s3.access_key":                        "REGISTRUM_S3_ACCESS_KEY",
		"s3.secret_key":                        "REGISTRUM_S3_SECRET_KEY",
		"s3.max_text_mb":                       "REGISTRUM_S3_MAX_TEXT_MB",
		"cors.allowed_origins":                 "REGISTRUM_CORS_ALLOWED_ORIGINS",
		"metrics.enabled":                      "REGISTRUM_METRICS_ENABLED",
		"metrics.path":                         "REGISTRUM_METRICS_PATH",
	}
	for key, env := range envBindings {
		_ = v.BindEnv(key, env)
	}

	cfg := &Config{}

	// Container platforms set a PORT env var. Use it if REGISTRUM_SERVER_PORT is not explicitly set.
	serverPort := v.GetString("server.port")
	if port := os.Getenv("PORT"); port != "" && os.Getenv("REGISTRUM_SERVER_PORT") == "" {
		serverPort = ":" + port
	}

	cfg.Server = ServerConfig{
		Port:           serverPort,
		ReadTimeout:    v.GetDuration("server.read_timeout"),
		WriteTimeout:   v.GetDuration("server.write_timeout"),
		RequestTimeout: v.GetDuration("server.request_timeout"),
		Environment:    v.GetString("server.environment"),
		MaxBodyMB:      v.GetInt64("server.max_body_mb"),
	}
	cfg.Log = LogConfig{
		Level:  v.GetString("log.level"),
		Format: v.GetString("log.format"),
	}
	cfg.LLM = LLMConfig{
		Primary:     providerConfig(v, "llm.primary"),
		Secondary:   providerConfig(v, "llm.secondary"),
		Tertiary:    providerConfig(v, "llm.tertiary"),
		CallTimeout: v.GetDuration("llm.call_timeout"),
		MaxRetries:  v.GetInt("llm.max_retries"),
		RetryDelay:  v.GetDuration("llm.retry_delay"),
	}
	cfg.Qualification = QualificationConfig{
		DocumentConcurrency:   v.GetInt("qualification.document_concurrency"),
		EvaluationConcurrency: v.GetInt("qualification.evaluation_concurrency"),
		ApprovalThreshold:     v.GetInt("qualification.approval_threshold"),
		MandatoryItems:        splitList(v.GetString("qualification.mandatory_items")),
		ExcerptLength:         v.GetInt("qualification.excerpt_length"),
		MinTextLength:         v.GetInt("qualification.min_text_length"),
	}
	cfg.S3 = S3Config{
		Region:    v.GetString("s3.region"),
		Bucket:    v.GetString("s3.bucket"),
		Endpoint:  v.GetString("s3.endpoint"),
		AccessKey: v.GetString("s3.access_key"),
		SecretKey: v.GetString("s3.secret_key"),
		MaxTextMB: v.GetInt64("s3.max_text_mb"),
	}
	cfg.CORS = CORSConfig{
		AllowedOrigins: splitList(v.GetString("cors.allowed_origins")),
	}
	cfg.Metrics = MetricsConfig{
		Enabled: v.GetBool("metrics.enabled"),
		Path:    v.GetString("metrics.path"),
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func providerConfig(v *viper.Viper, prefix string) LLMProviderConfig {
	return LLMProviderConfig{
		Provider:     v.GetString(prefix + ".provider"),
		APIKey:       v.GetString(prefix + ".api_key"),
		DefaultModel: v.GetString(prefix + ".default_model"),
		BaseURL:      v.GetString(prefix + ".base_url"),
		TimeoutSecs:  v.GetInt(prefix + ".timeout_secs"),
	}
}

// splitList parses a comma-separated string, dropping blanks.
func splitList(raw string) []string {
	var out []string
	for _, s := range strings.Split(raw, ",") {
		s = strings.TrimSpace(s)
		if s != "" {
			out = append(out, s)
		}
	}
	return out
}

// Validate rejects settings the engine cannot run with.
func (c *Config) Validate() error {
	var errs []error
	q := c.Qualification
	if q.ApprovalThreshold < 0 || q.ApprovalThreshold > 100 {
		errs = append(errs, fmt.Errorf("qualification.approval_threshold must be within 0-100, got %d", q.ApprovalThreshold))
	}
	if q.DocumentConcurrency <= 0 {
		errs = append(errs, fmt.Errorf("qualification.document_concurrency must be positive, got %d", q.DocumentConcurrency))
	}
	if q.EvaluationConcurrency <= 0 {
		errs = append(errs, fmt.Errorf("qualification.evaluation_concurrency must be positive, got %d", q.EvaluationConcurrency))
	}
	if c.LLM.MaxRetries < 0 || c.LLM.MaxRetries > 1 {
		errs = append(errs, fmt.Errorf("llm.max_retries must be 0 or 1, got %d", c.LLM.MaxRetries))
	}
	if c.LLM.CallTimeout <= 0 {
		errs = append(errs, fmt.Errorf("llm.call_timeout must be positive, got %s", c.LLM.CallTimeout))
	}
	if len(c.LLM.Providers()) == 0 {
		errs = append(errs, errors.New("llm.primary.provider is required"))
	}
	return errors.Join(errs...)
}
