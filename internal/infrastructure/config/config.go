// Package config loads settings from config.toml and BO_* environment
// variables. Environment values win over the file, which wins over the
// built-in defaults below.
package config

import (
	"errors"
	"fmt"
	"net/url"
	"slices"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// EnvPrefix is prepended to every environment override, e.g. BO_DATABASE_HOST.
const EnvPrefix = "BO"

type Config struct {
	App          AppConfig          `mapstructure:"app"`
	Database     DatabaseConfig     `mapstructure:"database"`
	Redis        RedisConfig        `mapstructure:"redis"`
	JWT          JWTConfig          `mapstructure:"jwt"`
	Log          LogConfig          `mapstructure:"log"`
	Event        EventConfig        `mapstructure:"event"`
	HTTP         HTTPConfig         `mapstructure:"http"`
	Storage      StorageConfig      `mapstructure:"storage"`
	Email        EmailConfig        `mapstructure:"email"`
	ExchangeRate ExchangeRateConfig `mapstructure:"exchange_rate"`
	Scheduler    SchedulerConfig    `mapstructure:"scheduler"`
	Metrics      MetricsConfig      `mapstructure:"metrics"`
}

type AppConfig struct {
	Name string `mapstructure:"name"`
	Env  string `mapstructure:"env"`
	Port string `mapstructure:"port"`
	// AuthDisabled skips token and membership checks. Rejected in production.
	AuthDisabled bool `mapstructure:"auth_disabled"`
}

type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"` // json or console
	Output string `mapstructure:"output"` // stdout, stderr or a file path
}

type DatabaseConfig struct {
	Driver          string        `mapstructure:"driver"` // postgres or sqlite
	Host            string        `mapstructure:"host"`
	Port            int           `mapstructure:"port"`
	User            string        `mapstructure:"user"`
	Password        string        `mapstructure:"password"`
	DBName          string        `mapstructure:"dbname"`
	SSLMode         string        `mapstructure:"sslmode"`
	Path            string        `mapstructure:"path"`
	MaxOpenConns    int           `mapstructure:"max_open_conns"`
	MaxIdleConns    int           `mapstructure:"max_idle_conns"`
	ConnMaxLifetime int           `mapstructure:"conn_max_lifetime"`  // minutes
	ConnMaxIdleTime int           `mapstructure:"conn_max_idle_time"` // minutes
	AutoMigrate     bool          `mapstructure:"auto_migrate"`
	SlowQueryThresh time.Duration `mapstructure:"slow_query_threshold"`
	// LogQueryParams puts bind values (account numbers, amounts) in SQL logs.
	LogQueryParams bool `mapstructure:"log_query_params"`
}

// DSN builds the driver connection string. For sqlite it is the file path.
func (d *DatabaseConfig) DSN() string {
	if d.Driver == "sqlite" {
		return d.Path
	}
	u := url.URL{
		Scheme:   "postgres",
		User:     url.UserPassword(d.User, d.Password),
		Host:     fmt.Sprintf("%s:%d", d.Host, d.Port),
		Path:     d.DBName,
		RawQuery: url.Values{"sslmode": {d.SSLMode}}.Encode(),
	}
	return u.String()
}

type RedisConfig struct {
	Enabled  bool   `mapstructure:"enabled"`
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

// Addr is the host:port pair handed to the redis client.
func (r *RedisConfig) Addr() string {
	return fmt.Sprintf("%s:%d", r.Host, r.Port)
}

type JWTConfig struct {
	Secret                 string        `mapstructure:"secret"`
	RefreshSecret          string        `mapstructure:"refresh_secret"`
	AccessTokenExpiration  time.Duration `mapstructure:"access_token_expiration"`
	RefreshTokenExpiration time.Duration `mapstructure:"refresh_token_expiration"`
	Issuer                 string        `mapstructure:"issuer"`
	MaxRefreshCount        int           `mapstructure:"max_refresh_count"`
}

type EventConfig struct {
	Workers        int           `mapstructure:"workers"`
	BufferSize     int           `mapstructure:"buffer_size"`
	IdempotencyTTL time.Duration `mapstructure:"idempotency_ttl"`
}

type HTTPConfig struct {
	ReadTimeout    time.Duration `mapstructure:"read_timeout"`
	WriteTimeout   time.Duration `mapstructure:"write_timeout"`
	IdleTimeout    time.Duration `mapstructure:"idle_timeout"`
	MaxHeaderBytes int           `mapstructure:"max_header_bytes"`
	// MaxBodySize caps JSON request bodies. Zero turns the limit off.
	MaxBodySize           int64         `mapstructure:"max_body_size"`
	RateLimitEnabled      bool          `mapstructure:"rate_limit_enabled"`
	RateLimitRequests     int           `mapstructure:"rate_limit_requests"`
	RateLimitWindow       time.Duration `mapstructure:"rate_limit_window"`
	AuthRateLimitEnabled  bool          `mapstructure:"auth_rate_limit_enabled"`
	AuthRateLimitRequests int           `mapstructure:"auth_rate_limit_requests"`
	AuthRateLimitWindow   time.Duration `mapstructure:"auth_rate_limit_window"`
	// CORSAllowOrigins is empty until configured, so cross-origin calls are refused.
	CORSAllowOrigins []string `mapstructure:"cors_allow_origins"`
	CORSAllowMethods []string `mapstructure:"cors_allow_methods"`
	CORSAllowHeaders []string `mapstructure:"cors_allow_headers"`
	TrustedProxies   []string `mapstructure:"trusted_proxies"`
}

// StorageConfig points at the S3-compatible bucket holding expense receipts.
type StorageConfig struct {
	Enabled           bool          `mapstructure:"enabled"`
	Endpoint          string        `mapstructure:"endpoint"`
	Region            string        `mapstructure:"region"`
	AccessKey         string        `mapstructure:"access_key"`
	SecretKey         string        `mapstructure:"secret_key"`
	Bucket            string        `mapstructure:"bucket"`
	UseSSL            bool          `mapstructure:"use_ssl"`
	UsePathStyle      bool          `mapstructure:"use_path_style"`
	PresignExpiration time.Duration `mapstructure:"presign_expiration"`
	MaxReceiptSize    int64         `mapstructure:"max_receipt_size"`
}

type EmailConfig struct {
	Mailer        string `mapstructure:"mailer"` // log or amqp
	FromAddress   string `mapstructure:"from_address"`
	FromName      string `mapstructure:"from_name"`
	AMQPURL       string `mapstructure:"amqp_url"`
	Exchange      string `mapstructure:"exchange"`
	Queue         string `mapstructure:"queue"`
	RoutingKey    string `mapstructure:"routing_key"`
	DefaultLocale string `mapstructure:"default_locale"`
}

type ExchangeRateConfig struct {
	ProviderEnabled bool          `mapstructure:"provider_enabled"`
	ProviderURL     string        `mapstructure:"provider_url"`
	ProviderTimeout time.Duration `mapstructure:"provider_timeout"`
	RefreshInterval time.Duration `mapstructure:"refresh_interval"`
	CacheTTL        time.Duration `mapstructure:"cache_ttl"`
}

type SchedulerConfig struct {
	Enabled           bool          `mapstructure:"enabled"`
	MaxConcurrentJobs int           `mapstructure:"max_concurrent_jobs"`
	JobTimeout        time.Duration `mapstructure:"job_timeout"`
	RetryAttempts     int           `mapstructure:"retry_attempts"`
	RetryDelay        time.Duration `mapstructure:"retry_delay"`
}

type MetricsConfig struct {
	Enabled   bool   `mapstructure:"enabled"`
	Path      string `mapstructure:"path"`
	Namespace string `mapstructure:"namespace"`
}

// defaults lists every key viper should know about. Keys without a useful
// default are still registered with their zero value so that AutomaticEnv
// picks them up during Unmarshal.
var defaults = map[string]any{
	"app.name":          "backoffice",
	"app.env":           "development",
	"app.port":          "8080",
	"app.auth_disabled": false,

	"database.driver":               "postgres",
	"database.host":                 "localhost",
	"database.port":                 5432,
	"database.user":                 "postgres",
	"database.password":             "",
	"database.dbname":               "backoffice",
	"database.sslmode":              "disable",
	"database.path":                 "backoffice.db",
	"database.max_open_conns":       25,
	"database.max_idle_conns":       5,
	"database.conn_max_lifetime":    60,
	"database.conn_max_idle_time":   30,
	"database.auto_migrate":         false,
	"database.slow_query_threshold": 200 * time.Millisecond,
	"database.log_query_params":     false,

	"redis.enabled":  false,
	"redis.host":     "localhost",
	"redis.port":     6379,
	"redis.password": "",
	"redis.db":       0,

	"jwt.secret":                   "",
	"jwt.refresh_secret":           "",
	"jwt.access_token_expiration":  15 * time.Minute,
	"jwt.refresh_token_expiration": 7 * 24 * time.Hour,
	"jwt.issuer":                   "backoffice",
	"jwt.max_refresh_count":        10,

	"log.level":  "info",
	"log.format": "console",
	"log.output": "stdout",

	"event.workers":         2,
	"event.buffer_size":     256,
	"event.idempotency_ttl": 24 * time.Hour,

	"http.read_timeout":             15 * time.Second,
	"http.write_timeout":            15 * time.Second,
	"http.idle_timeout":             time.Minute,
	"http.max_header_bytes":         1 << 20,
	"http.max_body_size":            int64(2 << 20),
	"http.rate_limit_enabled":       false,
	"http.rate_limit_requests":      100,
	"http.rate_limit_window":        time.Minute,
	"http.auth_rate_limit_enabled":  false,
	"http.auth_rate_limit_requests": 5,
	"http.auth_rate_limit_window":   time.Minute,
	"http.cors_allow_origins":       []string{},
	"http.cors_allow_methods":       []string{"GET", "POST", "PUT", "DELETE", "PATCH", "OPTIONS"},
	"http.cors_allow_headers":       []string{"Content-Type", "Authorization", "X-Request-ID"},
	"http.trusted_proxies":          []string{},

	"storage.enabled":            false,
	"storage.endpoint":           "",
	"storage.region":             "us-east-1",
	"storage.access_key":         "",
	"storage.secret_key":         "",
	"storage.bucket":             "backoffice-receipts",
	"storage.use_ssl":            true,
	"storage.use_path_style":     false,
	"storage.presign_expiration": 15 * time.Minute,
	"storage.max_receipt_size":   int64(10 << 20),

	"email.mailer":         "log",
	"email.from_address":   "no-reply@backoffice.local",
	"email.from_name":      "Back Office",
	"email.amqp_url":       "",
	"email.exchange":       "backoffice.email",
	"email.queue":          "email.outbound",
	"email.routing_key":    "email.send",
	"email.default_locale": "en-US",

	"exchange_rate.provider_enabled": false,
	"exchange_rate.provider_url":     "",
	"exchange_rate.provider_timeout": 10 * time.Second,
	"exchange_rate.refresh_interval": 6 * time.Hour,
	"exchange_rate.cache_ttl":        time.Hour,

	"scheduler.enabled":             false,
	"scheduler.max_concurrent_jobs": 2,
	"scheduler.job_timeout":         5 * time.Minute,
	"scheduler.retry_attempts":      3,
	"scheduler.retry_delay":         30 * time.Second,

	"metrics.enabled":   false,
	"metrics.path":      "/metrics",
	"metrics.namespace": "backoffice",
}

// Load reads config.toml from ".", "./config" or "/app" if present, applies
// BO_* overrides and validates the result.
func Load() (*Config, error) {
	v := viper.New()
	for key, value := range defaults {
		v.SetDefault(key, value)
	}

	v.SetConfigName("config")
	v.SetConfigType("toml")
	for _, dir := range []string{".", "./config", "/app"} {
		v.AddConfigPath(dir)
	}
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("read config file: %w", err)
		}
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// IsProduction reports whether app.env is "production".
func (c *Config) IsProduction() bool {
	return c.App.Env == "production"
}

func (c *Config) AppAuthDisabled() bool {
	return c.App.AuthDisabled
}

func (c *Config) validate() error {
	db := c.Database
	switch {
	case db.Driver != "postgres" && db.Driver != "sqlite":
		return fmt.Errorf("database.driver must be postgres or sqlite, got %q", db.Driver)
	case db.MaxOpenConns <= 0:
		return errors.New("database.max_open_conns must be positive")
	case db.MaxIdleConns < 0:
		return errors.New("database.max_idle_conns cannot be negative")
	case db.MaxIdleConns > db.MaxOpenConns:
		return fmt.Errorf("database.max_idle_conns (%d) cannot exceed database.max_open_conns (%d)",
			db.MaxIdleConns, db.MaxOpenConns)
	}

	switch c.Email.Mailer {
	case "log":
	case "amqp":
		if c.Email.AMQPURL == "" {
			return errors.New("email.amqp_url is required when email.mailer is amqp")
		}
	default:
		return fmt.Errorf("email.mailer must be log or amqp, got %q", c.Email.Mailer)
	}

	if c.ExchangeRate.ProviderEnabled && c.ExchangeRate.ProviderURL == "" {
		return errors.New("exchange_rate.provider_url is required when the provider is enabled")
	}

	if c.IsProduction() {
		return c.validateProduction()
	}
	return nil
}

func (c *Config) validateProduction() error {
	switch {
	case c.JWT.Secret == "":
		return errors.New("jwt.secret is required in production")
	case len(c.JWT.Secret) < 32:
		return errors.New("jwt.secret must be at least 32 characters in production")
	case c.AppAuthDisabled():
		return errors.New("app.auth_disabled cannot be set in production")
	case c.Database.Driver != "postgres":
		return errors.New("database.driver must be postgres in production")
	case c.Database.Password == "":
		return errors.New("database.password is required in production")
	case c.Database.SSLMode == "disable":
		return errors.New("database.sslmode cannot be 'disable' in production")
	case slices.Contains(c.HTTP.CORSAllowOrigins, "*"):
		return errors.New("http.cors_allow_origins cannot contain '*' in production")
	}
	return nil
}
