package main

import (
	"fmt"

	"github.com/alejandrodnm/betagent/config"
	"github.com/alejandrodnm/betagent/internal/adapters/advisory"
	"github.com/alejandrodnm/betagent/internal/adapters/polymarket"
	"github.com/alejandrodnm/betagent/internal/adapters/storage"
	"github.com/alejandrodnm/betagent/internal/application/advisor"
	"github.com/alejandrodnm/betagent/internal/application/diagnostics"
)

// newAdvisor devuelve un advisor deshabilitado si no hay generador configurado.
func newAdvisor(cfg *config.Config) (*advisor.Service, error) {
	if !cfg.AdvisoryEnabled() {
		return advisor.New(nil, 0), nil
	}
	client, err := advisory.NewClient(advisory.Config{
		BaseURL:     cfg.Advisory.BaseURL,
		APIKey:      cfg.Advisory.APIKey,
		Model:       cfg.Advisory.Model,
		MaxTokens:   cfg.Advisory.MaxTokens,
		Temperature: cfg.Advisory.Temperature,
		Timeout:     cfg.AdvisoryTimeout(),
	})
	if err != nil {
		return nil, fmt.Errorf("advisory client: %w", err)
	}
	return advisor.New(client, cfg.AdvisoryTimeout()), nil
}

// newProber abre el journal y construye el lector de saldo de Polymarket.
// El caller debe cerrar el storage devuelto.
func newProber(cfg *config.Config) (*diagnostics.Prober, *storage.SQLiteStorage, error) {
	auth, err := polymarket.NewAuthClient(cfg.Exchange.CLOBBase, polymarket.AuthConfig{
		PrivateKeyHex: cfg.Exchange.PrivateKey,
		Address:       cfg.Exchange.Address,
		Credentials: polymarket.Credentials{
			APIKey:     cfg.Exchange.APIKey,
			Secret:     cfg.Exchange.Secret,
			Passphrase: cfg.Exchange.Passphrase,
		},
	})
	if err != nil {
		return nil, nil, fmt.Errorf("polymarket auth: %w", err)
	}

	store, err := storage.NewSQLiteStorage(cfg.Storage.DSN)
	if err != nil {
		return nil, nil, fmt.Errorf("open storage %q: %w", cfg.Storage.DSN, err)
	}

	reader := polymarket.NewBalanceClient(auth, cfg.Exchange.SignatureType)
	return diagnostics.NewProber(reader, store, cfg.ExchangeTimeout()), store, nil
}
