package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/alejandrodnm/betagent/config"
	"github.com/alejandrodnm/betagent/internal/adapters/notify"
	"github.com/alejandrodnm/betagent/internal/domain"
)

const usageText = `usage: betagent [flags] <mode> [mode flags]

modes:
  promo    evaluate one bonus-back promotion
  dutch    compute the partner stake that equalizes two outcomes
  batch    evaluate a YAML file of candidate promotions
  balance  check exchange connectivity by reading the collateral balance
  serve    run the JSON HTTP API

flags:
`

func main() {
	configPath := flag.String("config", "config.yaml", "path to config file (optional)")
	verbose := flag.Bool("verbose", false, "set log level to debug")
	logFormat := flag.String("format", "", "log format: text|json (overrides config)")
	table := flag.Bool("table", false, "print full tables (default: compact 1-line)")
	validate := flag.Bool("validate", false, "print step-by-step calculation")
	flag.Usage = func() {
		fmt.Fprint(flag.CommandLine.Output(), usageText)
		flag.PrintDefaults()
	}
	flag.Parse()

	if flag.NArg() < 1 {
		flag.Usage()
		os.Exit(2)
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		slog.Error("failed to load config", "err", err, "path", *configPath)
		os.Exit(1)
	}

	if *verbose {
		cfg.Log.Level = "debug"
	}
	if *logFormat != "" {
		cfg.Log.Format = *logFormat
	}
	setupLogger(cfg.Log)

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	reporter := notify.NewConsole(*table, *validate)
	mode, args := flag.Arg(0), flag.Args()[1:]

	slog.Debug("betagent starting",
		"mode", mode,
		"config", *configPath,
		"advisory", cfg.AdvisoryEnabled(),
		"exchange", cfg.ExchangeEnabled(),
	)

	switch mode {
	case "promo":
		err = runPromo(ctx, cfg, reporter, args)
	case "dutch":
		err = runDutch(ctx, reporter, args)
	case "batch":
		err = runBatch(ctx, cfg, reporter, args)
	case "balance":
		err = runBalance(ctx, cfg, reporter, args)
	case "serve":
		err = runServe(ctx, cfg, args)
	default:
		fmt.Fprintf(os.Stderr, "unknown mode %q\n\n", mode)
		flag.Usage()
		os.Exit(2)
	}

	if err != nil {
		cancel()
		os.Exit(exitCode(err))
	}
}

// exitCode informa del error y devuelve el código de salida:
// 2 para entrada inválida o flags incorrectos, 1 para el resto.
func exitCode(err error) int {
	switch {
	case errors.Is(err, flag.ErrHelp):
		return 0
	case errors.Is(err, domain.ErrInvalidInput), errors.Is(err, errUsage):
		fmt.Fprintln(os.Stderr, err)
		return 2
	default:
		slog.Error("betagent failed", "err", err)
		return 1
	}
}

// errUsage marca errores de uso de un modo (flags ausentes o inválidos).
var errUsage = errors.New("usage error")

// parseFlags parsea los flags de un modo; los errores de parseo son errUsage.
func parseFlags(fs *flag.FlagSet, args []string) error {
	err := fs.Parse(args)
	if err == nil || errors.Is(err, flag.ErrHelp) {
		return err
	}
	return fmt.Errorf("%w: %v", errUsage, err)
}

func setupLogger(cfg config.LogConfig) {
	var level slog.Level
	switch cfg.Level {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		level = slog.LevelInfo
	}

	// stdout es para los informes; los logs van a stderr
	opts := &slog.HandlerOptions{Level: level}
	var handler slog.Handler
	if cfg.Format == "json" {
		handler = slog.NewJSONHandler(os.Stderr, opts)
	} else {
		handler = slog.NewTextHandler(os.Stderr, opts)
	}
	slog.SetDefault(slog.New(handler))
}
