package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

const EnvPrefix = ""

const (
	AppEnvDev  = "dev"
	AppEnvProd = "prod"
)

type Config struct {
	App          AppConfig
	DB           DBConfig
	Redis        RedisConfig
	FeatureFlags FeatureFlagsConfig
	Pricing      PricingConfig
	Settlement   SettlementConfig
	Carrier      CarrierConfig
}

func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process(EnvPrefix, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	return &cfg, nil
}

type AppConfig struct {
	Env      string `envconfig:"SOUQLINE_APP_ENV" required:"true"`
	Port     string `envconfig:"SOUQLINE_APP_PORT" default:"8080"`
	LogLevel string `envconfig:"SOUQLINE_LOG_LEVEL" default:"info"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

type DBConfig struct {
	DSN             string        `envconfig:"SOUQLINE_DB_DSN" required:"true"`
	MaxOpenConns    int           `envconfig:"SOUQLINE_DB_MAX_OPEN_CONNS" default:"20"`
	MaxIdleConns    int           `envconfig:"SOUQLINE_DB_MAX_IDLE_CONNS" default:"10"`
	ConnMaxLifetime time.Duration `envconfig:"SOUQLINE_DB_CONN_MAX_LIFETIME" default:"1h"`
	ConnMaxIdleTime time.Duration `envconfig:"SOUQLINE_DB_CONN_MAX_IDLE_TIME" default:"10m"`
}

type RedisConfig struct {
	Address      string        `envconfig:"SOUQLINE_REDIS_ADDR" default:"localhost:6379"`
	Password     string        `envconfig:"SOUQLINE_REDIS_PASSWORD"`
	DB           int           `envconfig:"SOUQLINE_REDIS_DB" default:"0"`
	PoolSize     int           `envconfig:"SOUQLINE_REDIS_POOL_SIZE" default:"10"`
	DialTimeout  time.Duration `envconfig:"SOUQLINE_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"SOUQLINE_REDIS_READ_TIMEOUT" default:"5s"`
	WriteTimeout time.Duration `envconfig:"SOUQLINE_REDIS_WRITE_TIMEOUT" default:"5s"`
	ProductTTL   time.Duration `envconfig:"SOUQLINE_REDIS_PRODUCT_TTL" default:"30s"`
}

type FeatureFlagsConfig struct {
	AutoMigrate bool `envconfig:"SOUQLINE_AUTO_MIGRATE" default:"false"`
}

// PricingConfig drives the margin calculations of the pricing policy.
type PricingConfig struct {
	AdminMarginPercent    string `envconfig:"SOUQLINE_PRICING_ADMIN_MARGIN_PERCENT" default:"10"`
	MarketerMarginPercent string `envconfig:"SOUQLINE_PRICING_MARKETER_MARGIN_PERCENT" default:"20"`
}

// SettlementConfig names the platform wallet credited with commissions.
type SettlementConfig struct {
	AdminUserID string `envconfig:"SOUQLINE_SETTLEMENT_ADMIN_USER_ID" required:"true"`
}

type CarrierConfig struct {
	BaseURL string        `envconfig:"SOUQLINE_CARRIER_BASE_URL"`
	APIKey  string        `envconfig:"SOUQLINE_CARRIER_API_KEY"`
	Timeout time.Duration `envconfig:"SOUQLINE_CARRIER_TIMEOUT" default:"10s"`
}
