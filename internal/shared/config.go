package shared

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"
)

const (
	DriverSQLite = "sqlite"
	DriverMySQL  = "mysql"
)

type Config struct {
	AppEnv      string `env:"APP_ENV" envDefault:"prod"`
	HTTPAddr    string `env:"HTTP_ADDR" envDefault:":8080"`
	MetricsAddr string `env:"METRICS_ADDR"`

	StoreDriver string `env:"STORE_DRIVER" envDefault:"sqlite"`
	SQLitePath  string `env:"SQLITE_PATH" envDefault:"reviews.db"`
	MySQLDSN    string `env:"MYSQL_DSN" envDefault:"root:root@tcp(localhost:3306)/flexinsights?charset=utf8mb4&loc=UTC"`

	// empty RedisAddr disables the read cache
	RedisAddr string `env:"REDIS_ADDR"`
	RedisPass string `env:"REDIS_PASSWORD"`
	RedisDB   int    `env:"REDIS_DB" envDefault:"0"`

	FeedPath    string `env:"FEED_PATH" envDefault:"data/mock_data.json"`
	FeedURL     string `env:"FEED_URL"`
	FeedAPIKey  string `env:"FEED_API_KEY"`
	FeedRPS     int    `env:"FEED_RPS" envDefault:"5"`
	Workers     int    `env:"INGEST_WORKERS" envDefault:"4"`
	SeedOnStart bool   `env:"SEED_ON_START" envDefault:"true"`

	CacheTTLSeconds int `env:"CACHE_TTL_SECONDS" envDefault:"300"`
}

func (c Config) CacheTTL() time.Duration {
	return time.Duration(c.CacheTTLSeconds) * time.Second
}

// Load reads an optional .env file, then the process environment.
// Any unparseable value or unknown STORE_DRIVER is an error.
func Load() (Config, error) {
	if err := godotenv.Load(); err == nil {
		log.Debug().Msg("loaded .env")
	}
	c, err := Parse()
	if err != nil {
		return Config{}, fmt.Errorf("parse config: %w", err)
	}
	if c.StoreDriver != DriverSQLite && c.StoreDriver != DriverMySQL {
		return Config{}, fmt.Errorf("unknown STORE_DRIVER %q", c.StoreDriver)
	}
	if c.Workers <= 0 {
		c.Workers = 1
	}
	return c, nil
}

// Parse reads Config from the process environment only.
func Parse() (Config, error) {
	return env.ParseAs[Config]()
}
