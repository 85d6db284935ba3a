package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/flexprice/partnerbilling/internal/types"
	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

type Configuration struct {
	Deployment DeploymentConfig `mapstructure:"deployment" validate:"required"`
	Server     ServerConfig     `mapstructure:"server" validate:"required"`
	Logging    LoggingConfig    `mapstructure:"logging" validate:"required"`
	Postgres   PostgresConfig   `mapstructure:"postgres" validate:"required"`
	Auth       AuthConfig       `mapstructure:"auth" validate:"required"`
	RBAC       RBACConfig       `mapstructure:"rbac"`
	Billing    BillingConfig    `mapstructure:"billing" validate:"required"`
	Sentry     SentryConfig     `mapstructure:"sentry"`
	S3         S3Config         `mapstructure:"s3"`
	Event      EventConfig      `mapstructure:"event"`
}

type DeploymentConfig struct {
	Mode types.RunMode `mapstructure:"mode" validate:"required"`
}

type ServerConfig struct {
	Address string `mapstructure:"address" validate:"required"`
}

type LoggingConfig struct {
	Level types.LogLevel `mapstructure:"level" validate:"required"`
}

type PostgresConfig struct {
	Host                   string `mapstructure:"host" validate:"required"`
	Port                   int    `mapstructure:"port" validate:"required"`
	User                   string `mapstructure:"user" validate:"required"`
	Password               string `mapstructure:"password"`
	DBName                 string `mapstructure:"dbname" validate:"required"`
	SSLMode                string `mapstructure:"sslmode" validate:"required"`
	MaxOpenConns           int    `mapstructure:"max_open_conns" default:"10"`
	MaxIdleConns           int    `mapstructure:"max_idle_conns" default:"5"`
	ConnMaxLifetimeMinutes int    `mapstructure:"conn_max_lifetime_minutes" default:"60"`
	AutoMigrate            bool   `mapstructure:"auto_migrate" default:"false"`
}

type AuthConfig struct {
	// Secret signs and verifies HS256 bearer tokens issued by the session layer
	Secret string       `mapstructure:"secret" validate:"required"`
	APIKey APIKeyConfig `mapstructure:"api_key"`
}

type APIKeyConfig struct {
	Header string                   `mapstructure:"header" validate:"required" default:"x-api-key"`
	Keys   map[string]APIKeyDetails `mapstructure:"keys"` // map of hashed API key to its details
}

type APIKeyDetails struct {
	UserID   string     `mapstructure:"user_id" json:"user_id" validate:"required"`
	Name     string     `mapstructure:"name" json:"name" validate:"required"`
	Role     types.Role `mapstructure:"role" json:"role" validate:"required"`
	IsActive bool       `mapstructure:"is_active" json:"is_active"`
}

type RBACConfig struct {
	// RolesConfigPath overrides the built in role definitions
	RolesConfigPath string `mapstructure:"roles_config_path"`
}

type BillingConfig struct {
	TierMode           types.TierMode `mapstructure:"tier_mode" validate:"required"`
	MinimumFeeItemName string         `mapstructure:"minimum_fee_item_name" validate:"required"`
	Currency           string         `mapstructure:"currency" validate:"required,len=3"`
	GenerationRetry    RetryConfig    `mapstructure:"generation_retry"`
}

// RetryConfig bounds the retry of invoice generation on invoice number conflicts
type RetryConfig struct {
	MaxAttempts     int           `mapstructure:"max_attempts" validate:"min=1"`
	InitialInterval time.Duration `mapstructure:"initial_interval"`
	MaxInterval     time.Duration `mapstructure:"max_interval"`
}

type SentryConfig struct {
	Enabled     bool    `mapstructure:"enabled"`
	DSN         string  `mapstructure:"dsn"`
	Environment string  `mapstructure:"environment"`
	SampleRate  float64 `mapstructure:"sample_rate" default:"1.0"`
}

type S3Config struct {
	Enabled bool `mapstructure:"enabled"`
	// UsageImportBucket stores raw usage files uploaded through the CSV import
	UsageImportBucket string `mapstructure:"usage_import_bucket"`
	Region            string `mapstructure:"region"`
	KeyPrefix         string `mapstructure:"key_prefix" default:"usage-imports"`
}

func NewConfig() (*Configuration, error) {
	// .env is optional and only used for local development
	_ = godotenv.Load()

	v := viper.New()

	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath("./internal/config")
	v.AddConfigPath(".")
	v.AddConfigPath("./config")
	v.AddConfigPath("/etc/partnerbilling")

	v.SetEnvPrefix("PARTNERBILLING")
	v.SetEnvKeyReplacer(strings.NewReplacer(
		".", "_",
		"-", "_",
	))
	v.AutomaticEnv()

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		fmt.Printf("Error reading config file: %v\n", err)
		if !errors.As(err, &viper.ConfigFileNotFoundError{}) {
			return nil, err
		}
	} else {
		fmt.Printf("Using config file: %s\n", v.ConfigFileUsed())
	}

	var config Configuration
	if err := v.Unmarshal(&config); err != nil {
		return nil, err
	}

	if err := config.Validate(); err != nil {
		return nil, err
	}

	return &config, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("deployment.mode", types.ModeLocal)
	v.SetDefault("server.address", ":8080")
	v.SetDefault("logging.level", types.LogLevelInfo)
	v.SetDefault("postgres.sslmode", "disable")
	v.SetDefault("postgres.max_open_conns", 10)
	v.SetDefault("postgres.max_idle_conns", 5)
	v.SetDefault("postgres.conn_max_lifetime_minutes", 60)
	v.SetDefault("auth.api_key.header", types.HeaderAPIKey)
	v.SetDefault("billing.tier_mode", types.TierModeBracket)
	v.SetDefault("billing.minimum_fee_item_name", DefaultMinimumFeeItemName)
	v.SetDefault("billing.currency", "USD")
	v.SetDefault("billing.generation_retry.max_attempts", 3)
	v.SetDefault("billing.generation_retry.initial_interval", 50*time.Millisecond)
	v.SetDefault("billing.generation_retry.max_interval", time.Second)
	v.SetDefault("s3.key_prefix", "usage-imports")
	v.SetDefault("sentry.sample_rate", 1.0)
	v.SetDefault("event.topic", "invoice_events")
	v.SetDefault("event.max_retries", 3)
	v.SetDefault("event.initial_interval", 100*time.Millisecond)
	v.SetDefault("event.max_interval", 5*time.Second)
	v.SetDefault("event.multiplier", 2.0)
}

const DefaultMinimumFeeItemName = "Monthly Minimum Fee"

func (c Configuration) Validate() error {
	validate := validator.New()
	if err := validate.Struct(c); err != nil {
		return err
	}
	return c.Billing.TierMode.Validate()
}

// GetDefaultConfig returns a default configuration for local development
// This is useful for running scripts, tests or other non-web applications
func GetDefaultConfig() *Configuration {
	return &Configuration{
		Deployment: DeploymentConfig{Mode: types.ModeLocal},
		Logging:    LoggingConfig{Level: types.LogLevelDebug},
		Billing: BillingConfig{
			TierMode:           types.TierModeBracket,
			MinimumFeeItemName: DefaultMinimumFeeItemName,
			Currency:           "USD",
			GenerationRetry: RetryConfig{
				MaxAttempts:     3,
				InitialInterval: time.Millisecond,
				MaxInterval:     10 * time.Millisecond,
			},
		},
		Event: EventConfig{
			Enabled:         true,
			Topic:           "invoice_events",
			MaxRetries:      1,
			InitialInterval: time.Millisecond,
			MaxInterval:     10 * time.Millisecond,
			Multiplier:      2,
		},
	}
}

func (c PostgresConfig) GetDSN() string {
	return fmt.Sprintf(
		"user=%s password=%s dbname=%s host=%s port=%d sslmode=%s",
		c.User,
		c.Password,
		c.DBName,
		c.Host,
		c.Port,
		c.SSLMode,
	)
}
