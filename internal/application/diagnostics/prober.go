package diagnostics

// prober.go — prueba de conectividad contra el exchange (lectura de saldo).
//
// Capacidad totalmente independiente de la calculadora: no consume ni produce
// valores de cálculo. Cada prueba se registra en el journal si hay storage.

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/alejandrodnm/betagent/internal/domain"
	"github.com/alejandrodnm/betagent/internal/ports"
)

const defaultProbeTimeout = 10 * time.Second

// Prober ejecuta pruebas de saldo y las registra.
type Prober struct {
	reader  ports.BalanceReader
	store   ports.ProbeStorage // nil = no se registra
	timeout time.Duration
	now     func() time.Time
}

// NewProber crea un Prober. store puede ser nil.
func NewProber(reader ports.BalanceReader, store ports.ProbeStorage, timeout time.Duration) *Prober {
	if timeout <= 0 {
		timeout = defaultProbeTimeout
	}
	return &Prober{reader: reader, store: store, timeout: timeout, now: time.Now}
}

// Probe lee el saldo una vez. Un fallo del exchange no es un error de Probe:
// queda reflejado en BalanceProbe.OK / Error. Solo devuelve error si falla el journal.
func (p *Prober) Probe(ctx context.Context) (domain.BalanceProbe, error) {
	probe := domain.BalanceProbe{
		ID:        uuid.New().String(),
		CheckedAt: p.now().UTC(),
		Exchange:  p.reader.Name(),
	}

	pctx, cancel := context.WithTimeout(ctx, p.timeout)
	start := time.Now()
	bal, err := p.reader.Balance(pctx)
	cancel()
	probe.Latency = time.Since(start)

	if err != nil {
		probe.Error = err.Error()
		slog.Warn("balance probe failed", "exchange", probe.Exchange, "err", err, "latency", probe.Latency)
	} else {
		probe.OK = true
		probe.Balance = bal
		slog.Info("balance probe ok", "exchange", probe.Exchange, "balance", bal, "latency", probe.Latency)
	}

	if p.store != nil {
		if err := p.store.SaveProbe(ctx, probe); err != nil {
			return probe, fmt.Errorf("diagnostics.Probe: save: %w", err)
		}
	}
	return probe, nil
}

// History devuelve las últimas n pruebas registradas.
func (p *Prober) History(ctx context.Context, n int) ([]domain.BalanceProbe, error) {
	if p.store == nil {
		return nil, nil
	}
	probes, err := p.store.RecentProbes(ctx, n)
	if err != nil {
		return nil, fmt.Errorf("diagnostics.History: %w", err)
	}
	return probes, nil
}
