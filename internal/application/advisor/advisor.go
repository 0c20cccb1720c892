package advisor

// advisor.go — texto de recomendación opcional sobre un PromotionResult.
//
// El generador es una dependencia explícita y opcional: nil significa "ausente".
// Cualquier fallo se degrada a Advice{Available: false}; el resultado numérico
// ya está calculado antes de llamar aquí y nunca cambia.

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/alejandrodnm/betagent/internal/domain"
	"github.com/alejandrodnm/betagent/internal/ports"
)

const defaultTimeout = 15 * time.Second

// ErrUnavailable indica que no hay generador configurado.
var ErrUnavailable = errors.New("advisory generator not configured")

// Advice es el texto generado, presente o ausente.
type Advice struct {
	Text      string
	Available bool
	Err       error // motivo de la ausencia, nil si Available
}

// Service genera Advice para resultados de promociones.
type Service struct {
	gen     ports.AdvisoryGenerator
	timeout time.Duration
}

// New crea un Service. gen puede ser nil: el servicio responde siempre "ausente".
func New(gen ports.AdvisoryGenerator, timeout time.Duration) *Service {
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	return &Service{gen: gen, timeout: timeout}
}

// Enabled devuelve true si hay un generador configurado.
func (s *Service) Enabled() bool {
	return s != nil && s.gen != nil
}

// Advise pide texto al generador con un timeout propio.
// No devuelve error: la ausencia de texto es un estado válido.
func (s *Service) Advise(ctx context.Context, result domain.PromotionResult) Advice {
	if !s.Enabled() {
		return Advice{Err: ErrUnavailable}
	}

	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	text, err := s.gen.Generate(ctx, domain.AdvisoryPrompt(result))
	if err != nil {
		slog.Warn("advisory generation failed", "err", err)
		return Advice{Err: fmt.Errorf("advisor.Advise: %w", err)}
	}

	text = strings.TrimSpace(text)
	if text == "" {
		return Advice{Err: fmt.Errorf("advisor.Advise: empty response")}
	}
	return Advice{Text: text, Available: true}
}
