package main

import (
	"context"
	"flag"
	"log/slog"

	"github.com/alejandrodnm/betagent/config"
	"github.com/alejandrodnm/betagent/internal/domain"
	"github.com/alejandrodnm/betagent/internal/ports"
)

func runPromo(ctx context.Context, cfg *config.Config, reporter ports.Reporter, args []string) error {
	fs := flag.NewFlagSet("promo", flag.ContinueOnError)
	stake := fs.Float64("stake", 0, "amount staked (> 0)")
	odds := fs.Float64("odds", 0, "bookmaker decimal back odds (> 1.0)")
	win := fs.Float64("win", 0, "true probability of winning, 0..1")
	trigger := fs.Float64("trigger", 0, "probability the promotion triggers (e.g. 2nd or 3rd), 0..1")
	retention := fs.Float64("retention", cfg.Calculator.DefaultRetention, "fraction of bonus convertible to cash, 0..1")
	refundCap := fs.Float64("cap", cfg.Calculator.DefaultRefundCap, "maximum refundable stake")
	advise := fs.Bool("advise", false, "ask the advisory generator for a short recommendation")
	if err := parseFlags(fs, args); err != nil {
		return err
	}

	result, err := domain.EvaluatePromotionArgs(*stake, *odds, *win, *trigger, *retention, *refundCap)
	if err != nil {
		return err
	}

	var text string
	if *advise {
		adv, err := newAdvisor(cfg)
		if err != nil {
			return err
		}
		a := adv.Advise(ctx, result)
		if a.Available {
			text = a.Text
		} else {
			slog.Warn("advisory text unavailable", "reason", a.Err)
		}
	}

	return reporter.ReportPromotion(ctx, result, text)
}
