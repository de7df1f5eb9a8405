package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/shopspring/decimal"
	"github.com/spf13/viper"
)

// Config holds all runtime configuration derived from environment variables.
type Config struct {
	HTTPPort             string
	DatabaseURL          string
	DBMaxConns           int32
	DBMinConns           int32
	RedisURL             string
	JWTSecret            string
	JWTIssuer            string
	JWTAudience          string
	QuoteTTL             time.Duration
	OrderExpiry          time.Duration
	ExpirySweepInterval  time.Duration
	ExpiryBatchSize      int
	PriceRefreshInterval time.Duration
	FeePct               decimal.Decimal
	PublicRateLimitRPS   int
	AuthRateLimitRPS     int
	LogLevel             string
	IdempotencyTTL       time.Duration
	SeedDemoData         bool
}

// Load reads environment variables using viper and returns a typed config.
// DATABASE_URL and REDIS_URL are optional: an empty value selects the
// in-memory backends, which is how development and tests run.
func Load() (*Config, error) {
	_ = godotenv.Load()

	v := viper.New()
	v.AutomaticEnv()
	bindEnv(v, "port", "PORT", "OTC_PORT")
	bindEnv(v, "database_url", "DATABASE_URL", "OTC_DATABASE_URL")
	bindEnv(v, "db_max_conns", "DB_MAX_CONNS", "OTC_DB_MAX_CONNS")
	bindEnv(v, "db_min_conns", "DB_MIN_CONNS", "OTC_DB_MIN_CONNS")
	bindEnv(v, "redis_url", "REDIS_URL", "OTC_REDIS_URL")
	bindEnv(v, "jwt_secret", "JWT_SECRET", "OTC_JWT_SECRET")
	bindEnv(v, "jwt_issuer", "JWT_ISSUER", "OTC_JWT_ISSUER")
	bindEnv(v, "jwt_audience", "JWT_AUDIENCE", "OTC_JWT_AUDIENCE")
	bindEnv(v, "quote_ttl", "QUOTE_TTL", "OTC_QUOTE_TTL")
	bindEnv(v, "order_expiry", "ORDER_EXPIRY", "OTC_ORDER_EXPIRY")
	bindEnv(v, "expiry_sweep_interval", "EXPIRY_SWEEP_INTERVAL", "OTC_EXPIRY_SWEEP_INTERVAL")
	bindEnv(v, "expiry_batch_size", "EXPIRY_BATCH_SIZE", "OTC_EXPIRY_BATCH_SIZE")
	bindEnv(v, "price_refresh_interval", "PRICE_REFRESH_INTERVAL", "OTC_PRICE_REFRESH_INTERVAL")
	bindEnv(v, "fee_pct", "FEE_PCT", "OTC_FEE_PCT")
	bindEnv(v, "public_rate_limit_rps", "PUBLIC_RATE_LIMIT_RPS", "OTC_PUBLIC_RATE_LIMIT_RPS")
	bindEnv(v, "auth_rate_limit_rps", "AUTH_RATE_LIMIT_RPS", "OTC_AUTH_RATE_LIMIT_RPS")
	bindEnv(v, "log_level", "LOG_LEVEL", "OTC_LOG_LEVEL")
	bindEnv(v, "idempotency_ttl", "IDEMPOTENCY_TTL", "OTC_IDEMPOTENCY_TTL")
	bindEnv(v, "seed_demo_data", "SEED_DEMO_DATA", "OTC_SEED_DEMO_DATA")

	v.SetDefault("port", "8080")
	v.SetDefault("database_url", "")
	v.SetDefault("db_max_conns", 10)
	v.SetDefault("db_min_conns", 2)
	v.SetDefault("redis_url", "")
	v.SetDefault("jwt_secret", "")
	v.SetDefault("jwt_issuer", "otc-exchange")
	v.SetDefault("jwt_audience", "otc-api")
	v.SetDefault("quote_ttl", "60s")
	v.SetDefault("order_expiry", "24h")
	v.SetDefault("expiry_sweep_interval", "5m")
	v.SetDefault("expiry_batch_size", 50)
	v.SetDefault("price_refresh_interval", "10s")
	v.SetDefault("fee_pct", "0")
	v.SetDefault("public_rate_limit_rps", 10)
	v.SetDefault("auth_rate_limit_rps", 100)
	v.SetDefault("log_level", "info")
	v.SetDefault("idempotency_ttl", "24h")
	v.SetDefault("seed_demo_data", true)

	quoteTTL, err := time.ParseDuration(v.GetString("quote_ttl"))
	if err != nil {
		return nil, fmt.Errorf("invalid QUOTE_TTL: %w", err)
	}
	orderExpiry, err := time.ParseDuration(v.GetString("order_expiry"))
	if err != nil {
		return nil, fmt.Errorf("invalid ORDER_EXPIRY: %w", err)
	}
	sweepInterval, err := time.ParseDuration(v.GetString("expiry_sweep_interval"))
	if err != nil {
		return nil, fmt.Errorf("invalid EXPIRY_SWEEP_INTERVAL: %w", err)
	}
	refreshInterval, err := time.ParseDuration(v.GetString("price_refresh_interval"))
	if err != nil {
		return nil, fmt.Errorf("invalid PRICE_REFRESH_INTERVAL: %w", err)
	}
	ttl, err := time.ParseDuration(v.GetString("idempotency_ttl"))
	if err != nil {
		return nil, fmt.Errorf("invalid IDEMPOTENCY_TTL: %w", err)
	}
	feePct, err := decimal.NewFromString(v.GetString("fee_pct"))
	if err != nil {
		return nil, fmt.Errorf("invalid FEE_PCT: %w", err)
	}
	if feePct.IsNegative() {
		return nil, fmt.Errorf("FEE_PCT must not be negative")
	}

	batchSize := v.GetInt("expiry_batch_size")
	if batchSize <= 0 {
		batchSize = 50
	}

	cfg := &Config{
		HTTPPort:             v.GetString("port"),
		DatabaseURL:          v.GetString("database_url"),
		DBMaxConns:           v.GetInt32("db_max_conns"),
		DBMinConns:           v.GetInt32("db_min_conns"),
		RedisURL:             v.GetString("redis_url"),
		JWTSecret:            v.GetString("jwt_secret"),
		JWTIssuer:            v.GetString("jwt_issuer"),
		JWTAudience:          v.GetString("jwt_audience"),
		QuoteTTL:             quoteTTL,
		OrderExpiry:          orderExpiry,
		ExpirySweepInterval:  sweepInterval,
		ExpiryBatchSize:      batchSize,
		PriceRefreshInterval: refreshInterval,
		FeePct:               feePct,
		PublicRateLimitRPS:   max(v.GetInt("public_rate_limit_rps"), 1),
		AuthRateLimitRPS:     max(v.GetInt("auth_rate_limit_rps"), 1),
		LogLevel:             v.GetString("log_level"),
		IdempotencyTTL:       ttl,
		SeedDemoData:         v.GetBool("seed_demo_data"),
	}

	if strings.TrimSpace(cfg.JWTSecret) == "" {
		return nil, fmt.Errorf("JWT_SECRET is required")
	}
	if len(cfg.JWTSecret) < 32 {
		return nil, fmt.Errorf("JWT_SECRET must be at least 32 characters")
	}
	if strings.TrimSpace(cfg.JWTIssuer) == "" {
		return nil, fmt.Errorf("JWT_ISSUER is required")
	}
	if strings.TrimSpace(cfg.JWTAudience) == "" {
		return nil, fmt.Errorf("JWT_AUDIENCE is required")
	}

	return cfg, nil
}

func bindEnv(v *viper.Viper, key string, names ...string) {
	args := append([]string{key}, names...)
	_ = v.BindEnv(args...)
}
