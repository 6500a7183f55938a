// Package config loads and validates application configuration. All
// recognized options are enumerated here and validated at startup; nothing
// reads the environment ad hoc.
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	Server     ServerConfig
	Database   DatabaseConfig
	Redis      RedisConfig
	Session    SessionConfig
	Encryption EncryptionConfig
	BankData   BankDataConfig
	Payments   PaymentsConfig
	Aggregator AggregatorConfig
	Firebase   FirebaseConfig
	Telemetry  TelemetryConfig
}

type ServerConfig struct {
	Host string
	Port string
}

type DatabaseConfig struct {
	Host           string
	Port           int
	User           string
	Password       string
	DBName         string
	SSLMode        string
	MigrationsPath string
}

// ConnectionString builds the lib/pq connection string.
func (c DatabaseConfig) ConnectionString() string {
	return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.DBName, c.SSLMode)
}

// URL builds the migration-source database URL.
func (c DatabaseConfig) URL() string {
	return fmt.Sprintf("postgres://%s:%s@%s:%d/%s?sslmode=%s",
		c.User, c.Password, c.Host, c.Port, c.DBName, c.SSLMode)
}

type RedisConfig struct {
	Host     string
	Port     string
	Password string
}

func (c RedisConfig) Addr() string {
	return c.Host + ":" + c.Port
}

type SessionConfig struct {
	TTL time.Duration
}

type EncryptionConfig struct {
	Key string
}

// BankDataConfig configures the aggregation provider client.
type BankDataConfig struct {
	BaseURL  string
	ClientID string
	Secret   string
	Timeout  time.Duration
}

// PaymentsConfig configures the payments provider client. Processor names
// this provider on processor-token requests to the aggregation provider.
type PaymentsConfig struct {
	BaseURL   string
	APIKey    string
	Processor string
	Timeout   time.Duration
}

// AggregatorConfig tunes the aggregation core: the per-account failure
// policy and the bounds on the transaction sync drain.
type AggregatorConfig struct {
	FailurePolicy  string
	SyncMaxPages   int
	SyncMaxRetries int
	SyncRetryBase  time.Duration
}

type FirebaseConfig struct {
	CredentialsFile string
}

type TelemetryConfig struct {
	Enabled      bool
	ServiceName  string
	Environment  string
	OTLPEndpoint string
}

// Load reads configuration from the environment (and an optional .env file in
// the working directory) into an explicit struct.
func Load() (*Config, error) {
	v := viper.New()

	v.SetConfigName(".env")
	v.SetConfigType("env")
	v.AddConfigPath(".")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	setDefaults(v)

	// The .env file is optional; the environment alone is enough.
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	cfg := &Config{
		Server: ServerConfig{
			Host: v.GetString("SERVER_HOST"),
			Port: v.GetString("SERVER_PORT"),
		},
		Database: DatabaseConfig{
			Host:           v.GetString("DB_HOST"),
			Port:           v.GetInt("DB_PORT"),
			User:           v.GetString("DB_USER"),
			Password:       v.GetString("DB_PASSWORD"),
			DBName:         v.GetString("DB_NAME"),
			SSLMode:        v.GetString("DB_SSLMODE"),
			MigrationsPath: v.GetString("DB_MIGRATIONS_PATH"),
		},
		Redis: RedisConfig{
			Host:     v.GetString("REDIS_HOST"),
			Port:     v.GetString("REDIS_PORT"),
			Password: v.GetString("REDIS_PASSWORD"),
		},
		Session: SessionConfig{
			TTL: v.GetDuration("SESSION_TTL"),
		},
		Encryption: EncryptionConfig{
			Key: v.GetString("ENCRYPTION_KEY"),
		},
		BankData: BankDataConfig{
			BaseURL:  v.GetString("BANKDATA_BASE_URL"),
			ClientID: v.GetString("BANKDATA_CLIENT_ID"),
			Secret:   v.GetString("BANKDATA_SECRET"),
			Timeout:  v.GetDuration("BANKDATA_TIMEOUT"),
		},
		Payments: PaymentsConfig{
			BaseURL:   v.GetString("PAYMENTS_BASE_URL"),
			APIKey:    v.GetString("PAYMENTS_API_KEY"),
			Processor: v.GetString("PAYMENTS_PROCESSOR"),
			Timeout:   v.GetDuration("PAYMENTS_TIMEOUT"),
		},
		Aggregator: AggregatorConfig{
			FailurePolicy:  v.GetString("AGGREGATOR_FAILURE_POLICY"),
			SyncMaxPages:   v.GetInt("SYNC_MAX_PAGES"),
			SyncMaxRetries: v.GetInt("SYNC_MAX_RETRIES"),
			SyncRetryBase:  v.GetDuration("SYNC_RETRY_BASE"),
		},
		Firebase: FirebaseConfig{
			CredentialsFile: v.GetString("FIREBASE_CREDENTIALS_FILE"),
		},
		Telemetry: TelemetryConfig{
			Enabled:      v.GetBool("TELEMETRY_ENABLED"),
			ServiceName:  v.GetString("TELEMETRY_SERVICE_NAME"),
			Environment:  v.GetString("TELEMETRY_ENVIRONMENT"),
			OTLPEndpoint: v.GetString("TELEMETRY_OTLP_ENDPOINT"),
		},
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("SERVER_HOST", "0.0.0.0")
	v.SetDefault("SERVER_PORT", "8080")

	v.SetDefault("DB_HOST", "localhost")
	v.SetDefault("DB_PORT", 5432)
	v.SetDefault("DB_USER", "horizon")
	v.SetDefault("DB_NAME", "horizon")
	v.SetDefault("DB_SSLMODE", "disable")
	v.SetDefault("DB_MIGRATIONS_PATH", "file://migrations")

	v.SetDefault("REDIS_HOST", "localhost")
	v.SetDefault("REDIS_PORT", "6379")

	v.SetDefault("SESSION_TTL", "24h")

	v.SetDefault("BANKDATA_BASE_URL", "https://sandbox.plaid.com")
	v.SetDefault("BANKDATA_TIMEOUT", "30s")

	v.SetDefault("PAYMENTS_BASE_URL", "https://api-sandbox.dwolla.com")
	v.SetDefault("PAYMENTS_PROCESSOR", "dwolla")
	v.SetDefault("PAYMENTS_TIMEOUT", "30s")

	v.SetDefault("AGGREGATOR_FAILURE_POLICY", "skip")
	v.SetDefault("SYNC_MAX_PAGES", 50)
	v.SetDefault("SYNC_MAX_RETRIES", 3)
	v.SetDefault("SYNC_RETRY_BASE", "500ms")

	v.SetDefault("TELEMETRY_ENABLED", false)
	v.SetDefault("TELEMETRY_SERVICE_NAME", "horizon-api")
	v.SetDefault("TELEMETRY_ENVIRONMENT", "development")
	v.SetDefault("TELEMETRY_OTLP_ENDPOINT", "localhost:4317")
}

// Validate rejects unusable configuration before anything is wired up.
func (c *Config) Validate() error {
	if len(c.Encryption.Key) != 32 {
		return fmt.Errorf("ENCRYPTION_KEY must be exactly 32 bytes, got %d", len(c.Encryption.Key))
	}
	if c.Aggregator.FailurePolicy != "skip" && c.Aggregator.FailurePolicy != "abort" {
		return fmt.Errorf("AGGREGATOR_FAILURE_POLICY must be 'skip' or 'abort', got %q", c.Aggregator.FailurePolicy)
	}
	if c.Aggregator.SyncMaxPages <= 0 {
		return fmt.Errorf("SYNC_MAX_PAGES must be positive, got %d", c.Aggregator.SyncMaxPages)
	}
	if c.Aggregator.SyncMaxRetries < 0 {
		return fmt.Errorf("SYNC_MAX_RETRIES must not be negative, got %d", c.Aggregator.SyncMaxRetries)
	}
	if c.Session.TTL <= 0 {
		return fmt.Errorf("SESSION_TTL must be positive, got %s", c.Session.TTL)
	}
	if c.BankData.BaseURL == "" {
		return fmt.Errorf("BANKDATA_BASE_URL must not be empty")
	}
	if c.Payments.BaseURL == "" {
		return fmt.Errorf("PAYMENTS_BASE_URL must not be empty")
	}
	return nil
}
