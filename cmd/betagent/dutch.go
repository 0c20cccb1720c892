package main

import (
	"context"
	"flag"

	"github.com/alejandrodnm/betagent/internal/domain"
	"github.com/alejandrodnm/betagent/internal/ports"
)

func runDutch(ctx context.Context, reporter ports.Reporter, args []string) error {
	fs := flag.NewFlagSet("dutch", flag.ContinueOnError)
	stake := fs.Float64("stake", 0, "stake on outcome A (> 0)")
	oddsA := fs.Float64("odds-a", 0, "decimal odds for outcome A (> 1.0)")
	oddsB := fs.Float64("odds-b", 0, "decimal odds for outcome B (> 1.0)")
	if err := parseFlags(fs, args); err != nil {
		return err
	}

	result, err := domain.SolveDutchArgs(*stake, *oddsA, *oddsB)
	if err != nil {
		return err
	}
	return reporter.ReportDutch(ctx, result)
}
