package calculator

// batch.go — worker pool para evaluar muchas promociones candidatas en paralelo.
//
// El motor es puro, así que los workers no comparten estado: cada resultado se
// escribe en su propio índice y el orden de entrada se conserva.

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"runtime"
	"sort"
	"sync"

	"github.com/google/uuid"
	"gopkg.in/yaml.v3"

	"github.com/alejandrodnm/betagent/internal/domain"
)

// Candidate es una promoción con nombre para evaluación en lote.
type Candidate struct {
	Name  string                `json:"name"`
	Input domain.PromotionInput `json:"input"`
}

// Outcome es el resultado de evaluar un Candidate.
// Exactamente uno de Result / Err es significativo.
type Outcome struct {
	Index     int
	Candidate Candidate
	Result    domain.PromotionResult
	Err       error
}

// OK devuelve true si la entrada era válida.
func (o Outcome) OK() bool {
	return o.Err == nil
}

// batchFile es el formato YAML de un lote. Retention y cap son punteros para
// distinguir "no definido" (usa el default) de un 0 explícito.
type batchFile struct {
	Candidates []struct {
		Name                   string   `yaml:"name"`
		Stake                  float64  `yaml:"stake"`
		BackOdds               float64  `yaml:"back_odds"`
		TrueWinProbability     float64  `yaml:"true_win_probability"`
		TrueTriggerProbability float64  `yaml:"true_trigger_probability"`
		BonusRetentionRate     *float64 `yaml:"bonus_retention_rate"`
		MaxRefundCap           *float64 `yaml:"max_refund_cap"`
	} `yaml:"candidates"`
}

// LoadBatch lee un fichero YAML con la lista de candidatos.
// Aplica retention y cap por defecto a los candidatos que no los definen.
func LoadBatch(path string, defaultRetention, defaultCap float64) ([]Candidate, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("calculator.LoadBatch: read %q: %w", path, err)
	}
	return ParseBatch(data, defaultRetention, defaultCap)
}

// ParseBatch decodifica el YAML de candidatos.
func ParseBatch(data []byte, defaultRetention, defaultCap float64) ([]Candidate, error) {
	var f batchFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("calculator.ParseBatch: parse YAML: %w", err)
	}

	out := make([]Candidate, 0, len(f.Candidates))
	for i, raw := range f.Candidates {
		c := Candidate{
			Name: raw.Name,
			Input: domain.PromotionInput{
				Stake:                  raw.Stake,
				BackOdds:               raw.BackOdds,
				TrueWinProbability:     raw.TrueWinProbability,
				TrueTriggerProbability: raw.TrueTriggerProbability,
				BonusRetentionRate:     defaultRetention,
				MaxRefundCap:           defaultCap,
			},
		}
		if c.Name == "" {
			c.Name = fmt.Sprintf("bet-%d", i+1)
		}
		if raw.BonusRetentionRate != nil {
			c.Input.BonusRetentionRate = *raw.BonusRetentionRate
		}
		if raw.MaxRefundCap != nil {
			c.Input.MaxRefundCap = *raw.MaxRefundCap
		}
		out = append(out, c)
	}
	return out, nil
}

// EvaluateBatch evalúa todos los candidatos usando un worker pool.
// Si workers <= 0 usa runtime.NumCPU(). Candidatos inválidos no abortan el lote:
// su Outcome lleva el InvalidInputError correspondiente.
func EvaluateBatch(ctx context.Context, candidates []Candidate, workers int) []Outcome {
	if workers <= 0 {
		workers = runtime.NumCPU()
	}
	if workers > len(candidates) {
		workers = len(candidates)
	}

	runID := uuid.New().String()
	out := make([]Outcome, len(candidates))
	workCh := make(chan int, len(candidates))

	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for idx := range workCh {
				c := candidates[idx]
				o := Outcome{Index: idx, Candidate: c}
				if err := ctx.Err(); err != nil {
					o.Err = fmt.Errorf("calculator.EvaluateBatch: %w", err)
					out[idx] = o
					continue
				}
				o.Result, o.Err = domain.EvaluatePromotion(c.Input)
				if o.Err != nil {
					slog.Debug("candidate rejected", "run_id", runID, "name", c.Name, "err", o.Err)
				}
				out[idx] = o
			}
		}()
	}

	for i := range candidates {
		workCh <- i
	}
	close(workCh)
	wg.Wait()

	valid := 0
	for _, o := range out {
		if o.OK() {
			valid++
		}
	}
	slog.Debug("batch evaluation complete",
		"run_id", runID,
		"candidates", len(candidates),
		"valid", valid,
		"workers", workers,
	)

	return out
}

// Rank devuelve solo los outcomes válidos, ordenados por EV descendente.
// Empates se resuelven por orden de entrada.
func Rank(outcomes []Outcome) []Outcome {
	ranked := make([]Outcome, 0, len(outcomes))
	for _, o := range outcomes {
		if o.OK() {
			ranked = append(ranked, o)
		}
	}
	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].Result.ExpectedValue > ranked[j].Result.ExpectedValue
	})
	return ranked
}

// Summary agrega un lote: cuántos positivos, negativos, inválidos y el EV total de los positivos.
type Summary struct {
	Positive   int
	Negative   int
	Invalid    int
	PositiveEV float64
}

// Summarize calcula el resumen del lote. Solo el signo del EV clasifica.
func Summarize(outcomes []Outcome) Summary {
	var s Summary
	for _, o := range outcomes {
		switch {
		case !o.OK():
			s.Invalid++
		case o.Result.Profitable():
			s.Positive++
			s.PositiveEV += o.Result.ExpectedValue
		default:
			s.Negative++
		}
	}
	return s
}
