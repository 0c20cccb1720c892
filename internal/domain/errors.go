package domain

import (
	"errors"
	"fmt"
	"math"
)

// ErrInvalidInput es el único tipo de error del motor de cálculo.
// Usar errors.Is(err, ErrInvalidInput) para distinguirlo de errores de adapters.
var ErrInvalidInput = errors.New("invalid input")

// InvalidInputError indica qué restricción violó la entrada.
// Se devuelve antes de hacer cualquier aritmética: nunca hay resultado parcial.
type InvalidInputError struct {
	Field  string // campo que falló (p.ej. "odds_b")
	Reason string // descripción legible ("must be > 1.0, got 0.95")
}

func (e *InvalidInputError) Error() string {
	return fmt.Sprintf("invalid input: %s %s", e.Field, e.Reason)
}

// Is permite errors.Is(err, ErrInvalidInput).
func (e *InvalidInputError) Is(target error) bool {
	return target == ErrInvalidInput
}

func invalid(field, format string, args ...any) error {
	return &InvalidInputError{Field: field, Reason: fmt.Sprintf(format, args...)}
}

// checkFinite rechaza NaN e ±Inf: cualquier comparación posterior con ellos es engañosa.
func checkFinite(field string, v float64) error {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return invalid(field, "must be a finite number, got %v", v)
	}
	return nil
}

func checkPositive(field string, v float64) error {
	if err := checkFinite(field, v); err != nil {
		return err
	}
	if v <= 0 {
		return invalid(field, "must be > 0, got %g", v)
	}
	return nil
}

// checkDecimalOdds valida cuotas decimales: stake × odds = retorno total, por tanto odds > 1.
func checkDecimalOdds(field string, v float64) error {
	if err := checkFinite(field, v); err != nil {
		return err
	}
	if v <= 1.0 {
		return invalid(field, "must be > 1.0, got %g", v)
	}
	return nil
}

func checkUnitInterval(field string, v float64) error {
	if err := checkFinite(field, v); err != nil {
		return err
	}
	if v < 0 || v > 1 {
		return invalid(field, "must be within [0, 1], got %g", v)
	}
	return nil
}

// checkDerived rechaza resultados intermedios no finitos: entradas finitas pero
// enormes (stake ~1e308) desbordan a ±Inf y contaminan el resto con NaN.
func checkDerived(field string, values ...float64) error {
	for _, v := range values {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return invalid(field, "result overflows float64 range")
		}
	}
	return nil
}
