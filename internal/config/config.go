// Package config loads the service configuration from the environment and,
// when enabled, keeps it in sync with Apollo.
package config

import (
	"os"
	"strconv"

	"github.com/samber/lo"

	"planeat-api/internal/logx"
)

var configLogger = logx.GetScope("config")

// DevJWTSecret is the JWT_HS_SECRET default. It is public, so token signing
// refuses it outside local development.
const DevJWTSecret = "dev-secret-change-me"

// Config holds the application configuration
type Config struct {
	AppEnv string
	Server struct {
		Addr string
	}
	Log struct {
		Level  string // debug, info, warn, error
		Format string // text, json
	}
	DB struct {
		URL          string // postgres://... or file:...(sqlite)
		MaxOpenConns int
		MaxIdleConns int
		AutoMigrate  bool
	}
	Redis struct {
		Addr     string
		Password string
		DB       int
	}
	MQ struct {
		URL      string // RabbitMQ URL
		Exchange string
	}
	ES struct {
		Addrs       string // comma separated
		Username    string
		Password    string
		RecipeIndex string
	}
	JWT struct {
		Algo         string // HS256 | RS256
		HSSecret     string
		RSPrivateKey string
		RSPublicKey  string
		Issuer       string
		Audience     string
		AccessMin    int
	}
	RateLimit struct {
		WindowSec int
		Max       int
	}
	Jobs struct {
		AuditCron string
	}
	Apollo struct {
		Enable    bool
		AppID     string
		Cluster   string
		Namespace string
		Addrs     string
		AccessKey string
	}
}

// Load loads config from env, and if enabled, overrides with Apollo values.
// Returns config, the live store, optional apollo closer, and error.
func Load() (*Config, *Store, func(), error) {
	cfg := FromEnv()
	store := NewStore(cfg)

	if cfg.Apollo.Enable {
		closer, err := overrideFromApollo(cfg, store)
		if err != nil {
			configLogger.Sugar().Errorf("apollo override failed: %v", err)
			return cfg, store, closer, err
		}
		return store.Get(), store, closer, nil
	}

	return cfg, store, nil, nil
}

// FromEnv builds a Config from environment variables only.
func FromEnv() *Config {
	cfg := &Config{}

	cfg.AppEnv = getEnv("APP_ENV", "dev")
	cfg.Server.Addr = getEnv("SERVER_ADDR", ":8080")
	cfg.Log.Level = getEnv("LOG_LEVEL", "info")
	cfg.Log.Format = getEnv("LOG_FORMAT", "text")

	cfg.DB.URL = getEnv("DATABASE_URL", getEnv("POSTGRES_URL", ""))
	cfg.DB.MaxOpenConns = getInt("DB_MAX_OPEN", 10)
	cfg.DB.MaxIdleConns = getInt("DB_MAX_IDLE", 5)
	cfg.DB.AutoMigrate = getBool("DB_AUTO_MIGRATE", true)

	cfg.Redis.Addr = getEnv("REDIS_ADDR", "")
	cfg.Redis.Password = getEnv("REDIS_PASSWORD", "")
	cfg.Redis.DB = getInt("REDIS_DB", 0)

	cfg.MQ.URL = getEnv("RABBITMQ_URL", "")
	cfg.MQ.Exchange = getEnv("RABBITMQ_EXCHANGE", "planeat.events")

	cfg.ES.Addrs = getEnv("ES_ADDRS", "")
	cfg.ES.Username = getEnv("ES_USERNAME", "")
	cfg.ES.Password = getEnv("ES_PASSWORD", "")
	cfg.ES.RecipeIndex = getEnv("ES_RECIPE_INDEX", "recipes")

	cfg.JWT.Algo = getEnv("JWT_ALGO", "HS256")
	cfg.JWT.HSSecret = getEnv("JWT_HS_SECRET", DevJWTSecret)
	cfg.JWT.RSPrivateKey = getEnv("JWT_RS_PRIVATE_KEY", "")
	cfg.JWT.RSPublicKey = getEnv("JWT_RS_PUBLIC_KEY", "")
	cfg.JWT.Issuer = getEnv("JWT_ISSUER", "planeat-api")
	cfg.JWT.Audience = getEnv("JWT_AUDIENCE", "planeat")
	cfg.JWT.AccessMin = getInt("JWT_ACCESS_MIN", 60)

	cfg.RateLimit.WindowSec = getInt("RATE_LIMIT_WINDOW_SEC", 60)
	cfg.RateLimit.Max = getInt("RATE_LIMIT_MAX", 120)

	cfg.Jobs.AuditCron = getEnv("AUDIT_CRON", "@every 1h")

	cfg.Apollo.Enable = getBool("APOLLO_ENABLE", false)
	cfg.Apollo.AppID = getEnv("APOLLO_APP_ID", "")
	cfg.Apollo.Cluster = getEnv("APOLLO_CLUSTER", "default")
	cfg.Apollo.Namespace = getEnv("APOLLO_NAMESPACE", "application")
	cfg.Apollo.Addrs = getEnv("APOLLO_ADDRS", "")
	cfg.Apollo.AccessKey = getEnv("APOLLO_ACCESS_KEY", "")
	return cfg
}

func getEnv(key, def string) string {
	v := os.Getenv(key)
	return lo.Ternary(v != "", v, def)
}

func getInt(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return def
}

func getBool(key string, def bool) bool {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
	}
	return def
}
