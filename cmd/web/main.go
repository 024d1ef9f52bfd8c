// Command web runs the AgriEnergy browser front end. It holds no data of its
// own: every page is rendered from calls to the API tier made with the
// signed-in user's bearer token.
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

	"github.com/agrienergy/connect/internal/infrastructure/http/handlers"
	"github.com/agrienergy/connect/internal/pkg/config"
	"github.com/agrienergy/connect/internal/web"
	"github.com/agrienergy/connect/internal/web/apiclient"
	"github.com/agrienergy/connect/pkg/logger"
)

const shutdownTimeout = 10 * time.Second

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	flags := pflag.NewFlagSet("web", pflag.ContinueOnError)
	addr := flags.String("addr", "", "listen address (overrides WEB_PORT)")
	apiURL := flags.String("api", "", "API base URL (overrides API_BASE_URL)")
	insecure := flags.Bool("insecure-cookies", false, "allow session cookies over plain HTTP for local development")
	if err := flags.Parse(os.Args[1:]); err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			return nil
		}
		return err
	}

	cfg, err := config.LoadWebFrom(context.Background(), envconfig.OsLookuper())
	if err != nil {
		return err
	}
	if *apiURL != "" {
		cfg.APIBaseURL = *apiURL
	}
	if *insecure {
		cfg.SecureCookies = false
	}

	log := logger.Init(logger.Options{
		Level:   cfg.LogLevel,
		Pretty:  logger.PrettyFor(cfg.Env),
		Service: "web",
	})
	if !cfg.SecureCookies {
		log.Warn().Msg("cookies are not marked Secure; use only for local HTTP development")
	}

	client, err := apiclient.New(cfg.APIBaseURL, log)
	if err != nil {
		return err
	}

	e, err := web.NewRouter(web.Deps{
		API:           client,
		Auth:          client,
		SessionKey:    []byte(cfg.SessionKey),
		SecureCookies: cfg.SecureCookies,
		Checks:        map[string]handlers.Check{"api": client.Ping},
		Logger:        log,
	})
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	listen := *addr
	if listen == "" {
		listen = ":" + cfg.Port
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info().Str("addr", listen).Str("api", cfg.APIBaseURL).Msg("web listening")
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
