package ports

import (
	"context"

	"github.com/alejandrodnm/betagent/internal/domain"
)

// ProbeStorage guarda el journal de pruebas de conectividad al exchange.
type ProbeStorage interface {
	SaveProbe(ctx context.Context, probe domain.BalanceProbe) error

	// RecentProbes devuelve las últimas n pruebas, más recientes primero.
	RecentProbes(ctx context.Context, n int) ([]domain.BalanceProbe, error)

	Close() error
}
