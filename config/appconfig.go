package config

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/invopop/jsonschema"
	"github.com/remiges-tech/numspeak/numwords"
)

// History backends.
const (
	HistoryNone     = "none"
	HistoryRedis    = "redis"
	HistoryPostgres = "postgres"
)

// AppConfig is the configuration of the numspeak server.
type AppConfig struct {
	AppName               string `json:"app_name" yaml:"app_name" toml:"app_name" rigel:"app_name" env:"NUMSPEAK_APP_NAME" jsonschema:"description=Name used in log records"`
	ServerPort            int    `json:"server_port" yaml:"server_port" toml:"server_port" rigel:"server_port" env:"NUMSPEAK_SERVER_PORT" jsonschema:"minimum=1,maximum=65535"`
	MetricsPort           int    `json:"metrics_port" yaml:"metrics_port" toml:"metrics_port" rigel:"metrics_port" env:"NUMSPEAK_METRICS_PORT" jsonschema:"description=Separate port for /metrics; 0 serves it on server_port"`
	DefaultSystem         string `json:"default_system" yaml:"default_system" toml:"default_system" rigel:"default_system" env:"NUMSPEAK_DEFAULT_SYSTEM" jsonschema:"enum=international,enum=indian"`
	LogLevel              string `json:"log_level" yaml:"log_level" toml:"log_level" rigel:"log_level" env:"NUMSPEAK_LOG_LEVEL" jsonschema:"enum=debug2,enum=debug1,enum=debug0,enum=info,enum=warn,enum=err,enum=crit,enum=sec"`
	RequestTimeoutSeconds int    `json:"request_timeout_seconds" yaml:"request_timeout_seconds" toml:"request_timeout_seconds" rigel:"request_timeout_seconds" env:"NUMSPEAK_REQUEST_TIMEOUT_SECONDS" jsonschema:"minimum=0"`
	ErrorTypesFile        string `json:"error_types_file" yaml:"error_types_file" toml:"error_types_file" rigel:"error_types_file" env:"NUMSPEAK_ERROR_TYPES_FILE"`

	HistoryBackend string `json:"history_backend" yaml:"history_backend" toml:"history_backend" rigel:"history_backend" env:"NUMSPEAK_HISTORY_BACKEND" jsonschema:"enum=none,enum=redis,enum=postgres"`
	HistorySize    int    `json:"history_size" yaml:"history_size" toml:"history_size" rigel:"history_size" env:"NUMSPEAK_HISTORY_SIZE" jsonschema:"minimum=1"`
	RedisAddr      string `json:"redis_addr" yaml:"redis_addr" toml:"redis_addr" rigel:"redis_addr" env:"NUMSPEAK_REDIS_ADDR"`
	RedisPassword  string `json:"redis_password" yaml:"redis_password" toml:"redis_password" rigel:"redis_password" env:"NUMSPEAK_REDIS_PASSWORD"`
	RedisDB        int    `json:"redis_db" yaml:"redis_db" toml:"redis_db" rigel:"redis_db" env:"NUMSPEAK_REDIS_DB"`
	DatabaseURL    string `json:"database_url" yaml:"database_url" toml:"database_url" rigel:"database_url" env:"NUMSPEAK_DATABASE_URL"`

	MinioEndpoint  string `json:"minio_endpoint" yaml:"minio_endpoint" toml:"minio_endpoint" rigel:"minio_endpoint" env:"NUMSPEAK_MINIO_ENDPOINT" jsonschema:"description=Empty disables history export"`
	MinioAccessKey string `json:"minio_access_key" yaml:"minio_access_key" toml:"minio_access_key" rigel:"minio_access_key" env:"NUMSPEAK_MINIO_ACCESS_KEY"`
	MinioSecretKey string `json:"minio_secret_key" yaml:"minio_secret_key" toml:"minio_secret_key" rigel:"minio_secret_key" env:"NUMSPEAK_MINIO_SECRET_KEY"`
	MinioBucket    string `json:"minio_bucket" yaml:"minio_bucket" toml:"minio_bucket" rigel:"minio_bucket" env:"NUMSPEAK_MINIO_BUCKET"`
	MinioUseSSL    bool   `json:"minio_use_ssl" yaml:"minio_use_ssl" toml:"minio_use_ssl" rigel:"minio_use_ssl" env:"NUMSPEAK_MINIO_USE_SSL"`

	AuthEnabled          bool   `json:"auth_enabled" yaml:"auth_enabled" toml:"auth_enabled" rigel:"auth_enabled" env:"NUMSPEAK_AUTH_ENABLED"`
	OIDCProviderURL      string `json:"oidc_provider_url" yaml:"oidc_provider_url" toml:"oidc_provider_url" rigel:"oidc_provider_url" env:"NUMSPEAK_OIDC_PROVIDER_URL"`
	OIDCClientID         string `json:"oidc_client_id" yaml:"oidc_client_id" toml:"oidc_client_id" rigel:"oidc_client_id" env:"NUMSPEAK_OIDC_CLIENT_ID"`
	TokenCacheTTLSeconds int    `json:"token_cache_ttl_seconds" yaml:"token_cache_ttl_seconds" toml:"token_cache_ttl_seconds" rigel:"token_cache_ttl_seconds" env:"NUMSPEAK_TOKEN_CACHE_TTL_SECONDS" jsonschema:"minimum=1"`
}

// DefaultAppConfig returns the values used for keys a source does not set.
func DefaultAppConfig() AppConfig {
	return AppConfig{
		AppName:               "numspeak",
		ServerPort:            8080,
		DefaultSystem:         numwords.International.String(),
		LogLevel:              "info",
		RequestTimeoutSeconds: 10,
		HistoryBackend:        HistoryNone,
		HistorySize:           1000,
		MinioBucket:           "numspeak",
		TokenCacheTTLSeconds:  300,
	}
}

var logLevels = map[string]bool{
	"debug2": true, "debug1": true, "debug0": true, "info": true,
	"warn": true, "err": true, "crit": true, "sec": true,
}

// Validate reports every problem found in c, joined into one error.
func (c AppConfig) Validate() error {
	var errs []error

	if c.ServerPort < 1 || c.ServerPort > 65535 {
		errs = append(errs, fmt.Errorf("server_port %d out of range", c.ServerPort))
	}
	if c.MetricsPort < 0 || c.MetricsPort > 65535 {
		errs = append(errs, fmt.Errorf("metrics_port %d out of range", c.MetricsPort))
	}
	if _, ok := numwords.ParseSystem(c.DefaultSystem); !ok {
		errs = append(errs, fmt.Errorf("default_system %q is not one of international, indian", c.DefaultSystem))
	}
	if !logLevels[c.LogLevel] {
		errs = append(errs, fmt.Errorf("log_level %q is unknown", c.LogLevel))
	}
	if c.RequestTimeoutSeconds < 0 {
		errs = append(errs, fmt.Errorf("request_timeout_seconds cannot be negative"))
	}

	switch c.HistoryBackend {
	case HistoryNone:
	case HistoryRedis:
		if c.RedisAddr == "" {
			errs = append(errs, fmt.Errorf("redis_addr is required for history_backend redis"))
		}
	case HistoryPostgres:
		if c.DatabaseURL == "" {
			errs = append(errs, fmt.Errorf("database_url is required for history_backend postgres"))
		}
	default:
		errs = append(errs, fmt.Errorf("history_backend %q is not one of none, redis, postgres", c.HistoryBackend))
	}
	if c.HistoryBackend != HistoryNone && c.HistorySize < 1 {
		errs = append(errs, fmt.Errorf("history_size must be positive"))
	}

	if c.MinioEndpoint != "" && c.MinioBucket == "" {
		errs = append(errs, fmt.Errorf("minio_bucket is required when minio_endpoint is set"))
	}

	if c.AuthEnabled {
		if c.OIDCProviderURL == "" || c.OIDCClientID == "" {
			errs = append(errs, fmt.Errorf("oidc_provider_url and oidc_client_id are required when auth is enabled"))
		}
		if c.RedisAddr == "" {
			errs = append(errs, fmt.Errorf("redis_addr is required for the token cache when auth is enabled"))
		}
		if c.TokenCacheTTLSeconds < 1 {
			errs = append(errs, fmt.Errorf("token_cache_ttl_seconds must be positive"))
		}
	}

	return errors.Join(errs...)
}

// LoadAppConfig starts from DefaultAppConfig, loads cs over it, applies
// environment overrides and validates the result.
func LoadAppConfig(cs Config) (AppConfig, error) {
	c := DefaultAppConfig()
	if err := Load(cs, &c); err != nil {
		return c, fmt.Errorf("load config: %w", err)
	}
	if err := ApplyEnv(&c); err != nil {
		return c, err
	}
	if err := c.Validate(); err != nil {
		return c, fmt.Errorf("invalid config: %w", err)
	}
	return c, nil
}

// Schema returns the JSON schema of AppConfig.
func Schema() ([]byte, error) {
	r := &jsonschema.Reflector{
		AllowAdditionalProperties: false,
		DoNotReference:            true,
	}
	return json.MarshalIndent(r.Reflect(&AppConfig{}), "", "  ")
}
