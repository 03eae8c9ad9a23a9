// Command shop runs the car repair shop back office as a line-oriented
// command loop on stdin/stdout.
package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/aBrickThatCodes/car-repair-shop-backend/internal/core/ports"
	"github.com/aBrickThatCodes/car-repair-shop-backend/internal/core/service"
	"github.com/aBrickThatCodes/car-repair-shop-backend/internal/infrastructure/config"
	"github.com/aBrickThatCodes/car-repair-shop-backend/internal/infrastructure/db"
	"github.com/aBrickThatCodes/car-repair-shop-backend/internal/infrastructure/db/memory"
	"github.com/aBrickThatCodes/car-repair-shop-backend/internal/infrastructure/db/mongo"
	"github.com/aBrickThatCodes/car-repair-shop-backend/internal/infrastructure/db/postgres"
	redisdb "github.com/aBrickThatCodes/car-repair-shop-backend/internal/infrastructure/db/redis"
	"github.com/aBrickThatCodes/car-repair-shop-backend/internal/infrastructure/db/sqlite"
	"github.com/aBrickThatCodes/car-repair-shop-backend/internal/infrastructure/health"
	"github.com/aBrickThatCodes/car-repair-shop-backend/internal/infrastructure/metrics"
	"github.com/aBrickThatCodes/car-repair-shop-backend/pkg/logger"
)

func main() {
	_ = godotenv.Load()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := run(ctx, os.Stdin, os.Stdout); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// backend is a record store the process can seed and probe.
type backend interface {
	ports.ProvisionedStore
	health.Pinger
}

func run(ctx context.Context, in io.Reader, out io.Writer) error {
	cfg, err := config.Load(ctx)
	if err != nil {
		return err
	}
	log := logger.Init(logger.Options{Level: cfg.LogLevel, Pretty: cfg.LogPretty, Env: cfg.Env})

	store, closeStore, err := openStore(ctx, cfg)
	if err != nil {
		return err
	}
	defer closeStore()
	log.Info().Str("store", cfg.Store.Backend).Msg("record store ready")

	checker := health.NewChecker(0)
	checker.RegisterPinger("store", store)

	if cfg.Seed.Employees {
		if _, err := db.SeedEmployees(ctx, store, cfg.Seed.Password, 0, logger.Component("provision")); err != nil {
			return err
		}
	}

	var engineStore ports.Store = store
	if cfg.CacheEnabled() {
		rdb, err := redisdb.Connect(ctx, redisdb.Config{Addr: cfg.Redis.Addr, DB: cfg.Redis.DB})
		if err != nil {
			return err
		}
		defer rdb.Close()
		engineStore = redisdb.NewEmployeeCache(store, rdb, cfg.Redis.EmployeeTTL, logger.Component("employee_cache"))
		checker.Register("redis", func(ctx context.Context) error { return rdb.Ping(ctx).Err() })
		log.Info().Str("addr", cfg.Redis.Addr).Msg("employee cache enabled")
	}

	opts, err := engineOptions(cfg)
	if err != nil {
		return err
	}
	reg := prometheus.NewRegistry()
	opts.Observer = metrics.NewRecorder(reg)
	engine := service.NewShopService(engineStore, logger.Component("engine"), opts)

	if r := checker.Check(ctx); !r.Healthy() {
		log.Warn().Interface("dependencies", r.Dependencies).Msg("dependencies degraded at startup")
	}

	sh := newShell(engine, out)
	sh.checker = checker
	sh.gatherer = reg
	sh.currency = cfg.Currency
	return sh.run(ctx, in)
}

func engineOptions(cfg *config.Config) (service.Options, error) {
	access, err := service.ParseReportAccess(cfg.Policy.ReportAccess)
	if err != nil {
		return service.Options{}, err
	}
	closePolicy, err := service.ParseClosePolicy(cfg.Policy.CloseFinished)
	if err != nil {
		return service.Options{}, err
	}
	return service.Options{ReportAccess: access, ClosePolicy: closePolicy}, nil
}

func openStore(ctx context.Context, cfg *config.Config) (backend, func(), error) {
	switch cfg.Store.Backend {
	case config.StoreMemory:
		return memory.New(), func() {}, nil
	case config.StoreSQLite:
		s, err := sqlite.Open(ctx, cfg.Store.DatabasePath)
		if err != nil {
			return nil, nil, err
		}
		return s, func() { s.Close() }, nil
	case config.StorePostgres:
		s, err := postgres.Open(ctx, cfg.Store.DatabaseURL)
		if err != nil {
			return nil, nil, err
		}
		return s, func() { s.Close() }, nil
	case config.StoreMongo:
		s, err := mongo.Open(ctx, mongo.Config{URI: cfg.Mongo.URI, Database: cfg.Mongo.Database})
		if err != nil {
			return nil, nil, err
		}
		return s, func() { _ = s.Close(context.Background()) }, nil
	}
	return nil, nil, fmt.Errorf("unknown store backend %q", cfg.Store.Backend)
}
