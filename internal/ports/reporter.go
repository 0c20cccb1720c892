package ports

import (
	"context"

	"github.com/alejandrodnm/betagent/internal/domain"
)

// Reporter presenta los resultados del motor al usuario.
// El motor no sabe nada de cómo se muestran.
type Reporter interface {
	ReportPromotion(ctx context.Context, result domain.PromotionResult, advice string) error
	ReportDutch(ctx context.Context, result domain.DutchResult) error
}
