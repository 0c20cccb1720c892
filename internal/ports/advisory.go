package ports

import "context"

// AdvisoryGenerator produce texto libre a partir de un prompt.
// Es un colaborador externo y opcional: su fallo nunca afecta al cálculo numérico.
type AdvisoryGenerator interface {
	Generate(ctx context.Context, prompt string) (string, error)
}
