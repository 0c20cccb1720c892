package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"

	"github.com/alejandrodnm/betagent/config"
	"github.com/alejandrodnm/betagent/internal/adapters/notify"
	"github.com/alejandrodnm/betagent/internal/application/calculator"
)

func runBatch(ctx context.Context, cfg *config.Config, reporter *notify.Console, args []string) error {
	fs := flag.NewFlagSet("batch", flag.ContinueOnError)
	file := fs.String("file", "", "YAML file with a candidates: list")
	workers := fs.Int("workers", cfg.Calculator.Workers, "evaluation workers (0 = NumCPU)")
	if err := parseFlags(fs, args); err != nil {
		return err
	}
	if *file == "" {
		return fmt.Errorf("%w: batch requires -file", errUsage)
	}

	candidates, err := calculator.LoadBatch(*file, cfg.Calculator.DefaultRetention, cfg.Calculator.DefaultRefundCap)
	if err != nil {
		return err
	}
	slog.Info("evaluating batch", "file", *file, "candidates", len(candidates))

	outcomes := calculator.EvaluateBatch(ctx, candidates, *workers)
	return reporter.ReportBatch(ctx, outcomes)
}
