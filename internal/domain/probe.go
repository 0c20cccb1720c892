package domain

import "time"

// BalanceProbe es el resultado de una prueba de conectividad contra el exchange.
// Diagnóstico independiente: ningún cálculo lee ni escribe estos valores.
type BalanceProbe struct {
	ID        string
	CheckedAt time.Time
	Exchange  string
	OK        bool
	Balance   float64 // USDC disponibles, 0 si falló
	Latency   time.Duration
	Error     string // vacío si OK
}
