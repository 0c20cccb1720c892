package domain

// DutchInput describe un dutch de dos vías: un stake en A y las cuotas de A y B
// en dos bookies distintos. Solo eventos binarios (NBA, tenis, H2H);
// el dutching de N resultados no está soportado.
type DutchInput struct {
	StakeA float64 `json:"stake_a"`
	OddsA  float64 `json:"odds_a"`
	OddsB  float64 `json:"odds_b"`
}

// DutchResult contiene el stake de cobertura y el resultado neto garantizado.
type DutchResult struct {
	Input DutchInput `json:"input"`

	RequiredStakeB   float64 `json:"required_stake_b"`  // stake en B que iguala el retorno
	TotalOutlay      float64 `json:"total_outlay"`      // stakeA + stakeB
	GuaranteedReturn float64 `json:"guaranteed_return"` // stakeA × oddsA == stakeB × oddsB
	NetResult        float64 `json:"net_result"`        // > 0 arbitraje, < 0 qualifying loss
	NetPercent       float64 `json:"net_pct"`           // NetResult / TotalOutlay × 100
}

// DutchKind clasifica el resultado de un dutch.
type DutchKind int

const (
	DutchQualifyingLoss DutchKind = iota
	DutchArbitrage
)

func (k DutchKind) String() string {
	if k == DutchArbitrage {
		return "ARBITRAGE"
	}
	return "QUALIFYING LOSS"
}

// Kind devuelve DutchArbitrage cuando el neto es >= 0 (sin coste para activar la promo).
func (r DutchResult) Kind() DutchKind {
	if r.NetResult >= 0 {
		return DutchArbitrage
	}
	return DutchQualifyingLoss
}

// Validate comprueba stakeA > 0 y ambas cuotas > 1.
func (in DutchInput) Validate() error {
	if err := checkPositive("stake_a", in.StakeA); err != nil {
		return err
	}
	if err := checkDecimalOdds("odds_a", in.OddsA); err != nil {
		return err
	}
	return checkDecimalOdds("odds_b", in.OddsB)
}

// SolveDutch calcula el stake en B que iguala el retorno sea cual sea el resultado.
//
// Con dos resultados exhaustivos y excluyentes es una única ecuación lineal:
//
//	stakeA × oddsA = stakeB × oddsB  →  stakeB = stakeA × oddsA / oddsB
func SolveDutch(in DutchInput) (DutchResult, error) {
	if err := in.Validate(); err != nil {
		return DutchResult{}, err
	}

	target := in.StakeA * in.OddsA
	stakeB := target / in.OddsB
	outlay := in.StakeA + stakeB
	net := target - outlay
	if err := checkDerived("stake_a", target, stakeB, outlay, net); err != nil {
		return DutchResult{}, err
	}

	return DutchResult{
		Input:            in,
		RequiredStakeB:   stakeB,
		TotalOutlay:      outlay,
		GuaranteedReturn: target,
		NetResult:        net,
		NetPercent:       net / outlay * 100,
	}, nil
}

// SolveDutchArgs es la forma plana del contrato externo.
func SolveDutchArgs(stakeA, oddsA, oddsB float64) (DutchResult, error) {
	return SolveDutch(DutchInput{StakeA: stakeA, OddsA: oddsA, OddsB: oddsB})
}
