package ports

import "context"

// BalanceReader lee el saldo disponible de una cuenta en un exchange.
// Diagnóstico independiente: ningún valor calculado entra ni sale por aquí.
type BalanceReader interface {
	// Balance devuelve el saldo de colateral en USDC.
	Balance(ctx context.Context) (float64, error)

	// Name identifica el exchange en logs y en el journal de pruebas.
	Name() string
}
