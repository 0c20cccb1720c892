package main

import (
	"context"
	"flag"
	"fmt"

	"github.com/alejandrodnm/betagent/config"
	"github.com/alejandrodnm/betagent/internal/adapters/notify"
	"github.com/alejandrodnm/betagent/internal/domain"
)

func runBalance(ctx context.Context, cfg *config.Config, reporter *notify.Console, args []string) error {
	fs := flag.NewFlagSet("balance", flag.ContinueOnError)
	history := fs.Int("history", 5, "number of recent probes to list")
	if err := parseFlags(fs, args); err != nil {
		return err
	}

	if !cfg.ExchangeEnabled() {
		return fmt.Errorf("%w: exchange not configured, set CLOB_PRIVATE_KEY or CLOB_ADDRESS with CLOB_API_KEY/CLOB_SECRET/CLOB_PASSPHRASE", errUsage)
	}

	prober, store, err := newProber(cfg)
	if err != nil {
		return err
	}
	defer store.Close()

	probe, err := prober.Probe(ctx)
	if err != nil {
		return err
	}

	var recent []domain.BalanceProbe
	if *history > 0 {
		recent, err = prober.History(ctx, *history)
		if err != nil {
			return err
		}
	}
	return reporter.ReportProbes(ctx, probe, recent)
}
