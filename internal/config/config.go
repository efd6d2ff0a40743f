package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/mariiahub/taxcore/internal/types"
	"github.com/spf13/viper"
)

type Configuration struct {
	Deployment DeploymentConfig `validate:"required"`
	Server     ServerConfig
	Logging    LoggingConfig `validate:"required"`
	Postgres   PostgresConfig
	Registry   RegistryConfig
	Seller     SellerConfig
	Cache      CacheConfig
}

type DeploymentConfig struct {
	Mode types.RunMode `validate:"required"`
}

type ServerConfig struct {
	Address string
}

type LoggingConfig struct {
	Level types.LogLevel `validate:"required"`
}

type PostgresConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	DBName   string
	SSLMode  string
	MaxConns int32
}

// RegistryConfig configures the remote tax-identifier registry client.
// Remote lookups are optional: when disabled, validation degrades to the
// checksum-only verdict.
type RegistryConfig struct {
	Enabled bool
	BaseURL string
	// Timeout bounds a single registry call; lookups degrade rather than
	// block invoice issuance
	Timeout time.Duration
	// TTL is how long a registry verdict is trusted before re-verification
	TTL time.Duration
	// NegativeTTL is the shorter TTL for failed lookups so recovery is fast
	NegativeTTL time.Duration
	// AllowChecksumFallback permits reverse-charge treatment on a
	// checksum-valid identifier when the registry is unreachable
	AllowChecksumFallback bool
}

// SellerConfig is the company identity snapshotted onto every issued
// document and the report header.
type SellerConfig struct {
	LegalName     string
	Address       string
	TaxIdentifier string
	Country       string
	Currency      string
}

type CacheConfig struct {
	Enabled bool
}

func NewConfig() (*Configuration, error) {
	v := viper.New()

	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath("./internal/config")
	v.AddConfigPath(".")
	v.AddConfigPath("./config")
	v.AddConfigPath("/etc/taxcore")

	// Set up environment variables support
	v.SetEnvPrefix("TAXCORE")
	v.SetEnvKeyReplacer(strings.NewReplacer(
		".", "_",
		"-", "_",
	))
	v.AutomaticEnv()

	setDefaults(v)

	// Read config file if exists
	if err := v.ReadInConfig(); err != nil {
		if !errors.As(err, &viper.ConfigFileNotFoundError{}) {
			return nil, err
		}
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
	v.SetDefault("deployment.mode", string(types.ModeLocal))
	v.SetDefault("server.address", ":8080")
	v.SetDefault("logging.level", string(types.LogLevelInfo))
	v.SetDefault("postgres.port", 5432)
	v.SetDefault("postgres.sslmode", "disable")
	v.SetDefault("postgres.maxconns", 10)
	v.SetDefault("registry.enabled", true)
	v.SetDefault("registry.timeout", 3*time.Second)
	v.SetDefault("registry.ttl", 24*time.Hour)
	v.SetDefault("registry.negativettl", time.Hour)
	v.SetDefault("registry.allowchecksumfallback", false)
	v.SetDefault("seller.currency", "PLN")
	v.SetDefault("seller.country", "PL")
	v.SetDefault("cache.enabled", true)
}

func (c Configuration) Validate() error {
	validate := validator.New()
	return validate.Struct(c)
}

// GetDefaultConfig returns a default configuration for local development
// and tests. This is useful for running scripts or other non-web
// applications.
func GetDefaultConfig() *Configuration {
	return &Configuration{
		Deployment: DeploymentConfig{Mode: types.ModeLocal},
		Logging:    LoggingConfig{Level: types.LogLevelDebug},
		Registry: RegistryConfig{
			Enabled:               true,
			Timeout:               3 * time.Second,
			TTL:                   24 * time.Hour,
			NegativeTTL:           time.Hour,
			AllowChecksumFallback: false,
		},
		Seller: SellerConfig{
			LegalName:     "Mariia Hub Sp. z o.o.",
			Address:       "ul. Piekna 1, 00-001 Warszawa",
			TaxIdentifier: "5260250274",
			Country:       "PL",
			Currency:      "PLN",
		},
		Cache: CacheConfig{Enabled: true},
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
