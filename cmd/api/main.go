// Command api runs the AgriEnergy REST API: token issuance, farmer accounts,
// products and categories.
//
// @title                       AgriEnergy Connect API
// @version                     1.0
// @description                 Farmer accounts, product catalogue and categories for AgriEnergy Connect.
// @BasePath                    /
// @securityDefinitions.apikey  BearerAuth
// @in                          header
// @name                        Authorization
// @description                 Type "Bearer" followed by a space and the JWT.
package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/sethvargo/go-envconfig"
	"github.com/spf13/pflag"
	"github.com/uptrace/bun"
	mongodriver "go.mongodb.org/mongo-driver/mongo"

	"github.com/agrienergy/connect/internal/api"
	"github.com/agrienergy/connect/internal/core/ports"
	"github.com/agrienergy/connect/internal/core/service"
	"github.com/agrienergy/connect/internal/infrastructure/db/mongo"
	"github.com/agrienergy/connect/internal/infrastructure/db/redis"
	"github.com/agrienergy/connect/internal/infrastructure/db/sqlite"
	"github.com/agrienergy/connect/internal/infrastructure/http/handlers"
	"github.com/agrienergy/connect/internal/pkg/config"
	"github.com/agrienergy/connect/internal/pkg/token"
	"github.com/agrienergy/connect/pkg/logger"
)

const shutdownTimeout = 10 * time.Second

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

type stores struct {
	users      ports.UserRepository
	products   ports.ProductRepository
	categories ports.CategoryRepository
	checks     map[string]handlers.Check
	close      func(context.Context) error
}

func run() error {
	flags := pflag.NewFlagSet("api", pflag.ContinueOnError)
	seed := flags.Bool("seed", false, "create the sample employee, farmer, categories and products")
	migrateOnly := flags.Bool("migrate-only", false, "prepare the store schema and indexes, then exit")
	addr := flags.String("addr", "", "listen address (overrides PORT)")
	if err := flags.Parse(os.Args[1:]); err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			return nil
		}
		return err
	}

	cfg, err := config.LoadFrom(context.Background(), envconfig.OsLookuper())
	if err != nil {
		return err
	}

	log := logger.Init(logger.Options{
		Level:   cfg.LogLevel,
		Pretty:  logger.PrettyFor(cfg.Env),
		Service: "api",
	})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	st, err := openStores(ctx, cfg)
	if err != nil {
		return err
	}
	defer func() {
		closeCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := st.close(closeCtx); err != nil {
			log.Warn().Err(err).Msg("closing store")
		}
	}()
	log.Info().Str("driver", cfg.Store.Driver).Msg("store ready")

	if *migrateOnly {
		log.Info().Msg("migrations applied")
		return nil
	}

	var guard ports.LoginGuard
	if cfg.Redis.Addr != "" {
		rdb, err := redis.Connect(ctx, redis.Config{Addr: cfg.Redis.Addr, Password: cfg.Redis.Password, DB: cfg.Redis.DB})
		if err != nil {
			return err
		}
		defer rdb.Close()
		guard = redis.NewLoginLockout(rdb, cfg.Lockout.MaxFailures, cfg.Lockout.Window)
		st.checks["redis"] = handlers.RedisCheck(rdb)
		log.Info().Int("max_failures", cfg.Lockout.MaxFailures).Dur("window", cfg.Lockout.Window).Msg("login lockout enabled")
	}

	accounts := service.NewAccountService(st.users, cfg.PhoneRegion, log)
	if *seed || cfg.Seed {
		if err := service.NewSeeder(accounts, st.users, st.categories, st.products, log).Seed(ctx); err != nil {
			return err
		}
		log.Info().Msg("seed data ready")
	}

	tokenCfg := cfg.TokenConfig()
	e := api.NewRouter(api.Deps{
		Auth:       service.NewAuthService(st.users, token.NewIssuer(tokenCfg), guard, log),
		Accounts:   accounts,
		Products:   service.NewProductService(st.products, st.categories, log),
		Categories: service.NewCategoryService(st.categories, log),
		Verifier:   token.NewVerifier(tokenCfg),
		Checks:     st.checks,
		Logger:     log,
	})

	listen := *addr
	if listen == "" {
		listen = ":" + cfg.Port
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info().Str("addr", listen).Str("env", cfg.Env).Msg("api listening")
		if err := e.Start(listen); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	log.Info().Msg("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return e.Shutdown(shutdownCtx)
}

func openStores(ctx context.Context, cfg *config.Config) (*stores, error) {
	switch cfg.Store.Driver {
	case config.StoreMongo:
		client, db, err := mongo.Connect(ctx, mongo.Config{URI: cfg.Mongo.URI, Database: cfg.Mongo.Database})
		if err != nil {
			return nil, err
		}
		if err := mongo.EnsureIndexes(ctx, db); err != nil {
			_ = client.Disconnect(ctx)
			return nil, err
		}
		return mongoStores(client, db), nil
	default:
		db, err := sqlite.Open(ctx, sqlite.Config{DSN: cfg.Store.SQLiteDSN})
		if err != nil {
			return nil, err
		}
		if err := sqlite.Migrate(ctx, db); err != nil {
			_ = db.Close()
			return nil, err
		}
		return sqliteStores(db), nil
	}
}

func sqliteStores(db *bun.DB) *stores {
	return &stores{
		users:      sqlite.NewUserRepository(db),
		products:   sqlite.NewProductRepository(db),
		categories: sqlite.NewCategoryRepository(db),
		checks:     map[string]handlers.Check{"sqlite": handlers.SQLCheck(db)},
		close:      func(context.Context) error { return db.Close() },
	}
}

func mongoStores(client *mongodriver.Client, db *mongodriver.Database) *stores {
	return &stores{
		users:      mongo.NewUserRepository(db),
		products:   mongo.NewProductRepository(db),
		categories: mongo.NewCategoryRepository(db),
		checks:     map[string]handlers.Check{"mongo": handlers.MongoCheck(db)},
		close:      client.Disconnect,
	}
}
