package config

import (
	"context"
	"fmt"
	"time"

	"github.com/sethvargo/go-envconfig"
)

// Store backends selectable with SHOP_STORE.
const (
	StoreMemory   = "memory"
	StoreSQLite   = "sqlite"
	StorePostgres = "postgres"
	StoreMongo    = "mongo"
)

type Config struct {
	Env       string `env:"SHOP_ENV,   default=development"`
	LogLevel  string `env:"LOG_LEVEL,  default=info"`
	LogPretty bool   `env:"LOG_PRETTY, default=true"`
	Currency  string `env:"SHOP_CURRENCY, default=PLN"`

	Store  StoreConfig
	Mongo  MongoConfig
	Redis  RedisConfig
	Policy PolicyConfig
	Seed   SeedConfig
}

type StoreConfig struct {
	Backend      string `env:"SHOP_STORE,         default=sqlite"`
	DatabasePath string `env:"SHOP_DATABASE_PATH, default=shop.db"`
	DatabaseURL  string `env:"SHOP_DB_URL"`
}

type MongoConfig struct {
	URI      string `env:"MONGO_URI, default=mongodb://localhost:27017"`
	Database string `env:"MONGO_DB,  default=car_repair_shop"`
}

// RedisConfig enables the employee cache when Addr is set.
type RedisConfig struct {
	Addr        string        `env:"REDIS_ADDR"`
	DB          int           `env:"REDIS_DB,           default=0"`
	EmployeeTTL time.Duration `env:"REDIS_EMPLOYEE_TTL, default=10m"`
}

type PolicyConfig struct {
	ReportAccess  string `env:"SHOP_REPORT_ACCESS,  default=open"`
	CloseFinished string `env:"SHOP_CLOSE_FINISHED, default=noop"`
}

type SeedConfig struct {
	Employees bool   `env:"SHOP_SEED_EMPLOYEES, default=false"`
	Password  string `env:"SHOP_SEED_PASSWORD"`
}

// Load reads configuration from the process environment.
func Load(ctx context.Context) (*Config, error) {
	return LoadWith(ctx, envconfig.OsLookuper())
}

// LoadWith reads configuration through l and validates the result.
func LoadWith(ctx context.Context, l envconfig.Lookuper) (*Config, error) {
	var cfg Config
	if err := envconfig.ProcessWith(ctx, &envconfig.Config{Target: &cfg, Lookuper: l}); err != nil {
		return nil, fmt.Errorf("load configuration: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) validate() error {
	switch c.Store.Backend {
	case StoreMemory, StoreSQLite, StoreMongo:
	case StorePostgres:
		if c.Store.DatabaseURL == "" {
			return fmt.Errorf("SHOP_DB_URL is required for the postgres store")
		}
	default:
		return fmt.Errorf("unknown SHOP_STORE %q", c.Store.Backend)
	}
	if c.Seed.Employees && c.Seed.Password == "" {
		return fmt.Errorf("SHOP_SEED_PASSWORD is required when SHOP_SEED_EMPLOYEES is set")
	}
	return nil
}

// CacheEnabled reports whether the Redis employee cache should be used.
func (c *Config) CacheEnabled() bool {
	return c.Redis.Addr != ""
}
