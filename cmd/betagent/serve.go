package main

import (
	"context"
	"flag"
	"log/slog"

	"github.com/alejandrodnm/betagent/config"
	"github.com/alejandrodnm/betagent/internal/adapters/httpapi"
	"github.com/alejandrodnm/betagent/internal/application/diagnostics"
)

func runServe(ctx context.Context, cfg *config.Config, args []string) error {
	fs := flag.NewFlagSet("serve", flag.ContinueOnError)
	addr := fs.String("addr", cfg.Server.Addr, "listen address")
	if err := parseFlags(fs, args); err != nil {
		return err
	}

	adv, err := newAdvisor(cfg)
	if err != nil {
		return err
	}

	var prober *diagnostics.Prober
	if cfg.ExchangeEnabled() {
		p, store, err := newProber(cfg)
		if err != nil {
			return err
		}
		defer store.Close()
		prober = p
	}

	slog.Info("betagent api",
		"addr", *addr,
		"advisory", adv.Enabled(),
		"exchange", prober != nil,
		"workers", cfg.Calculator.Workers,
	)

	router := httpapi.NewRouter(
		httpapi.NewHandler(adv, prober, cfg.Calculator.Workers),
		httpapi.RouterOptions{
			AllowedOrigins: cfg.Server.AllowedOrigins,
			RequestTimeout: cfg.RequestTimeout(),
		},
	)
	return httpapi.Serve(ctx, *addr, router)
}
