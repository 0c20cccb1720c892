package domain

import "math"

// Constantes del score de riesgo/recompensa. Es una heurística de presentación:
// ROI 0% → 50, cada punto de ROI suma 2, saturado en [0, 100].
// No son configurables y nunca deciden si una promo es rentable.
const (
	RiskScoreMidpoint = 50.0
	RiskScoreSlope    = 2.0
	RiskScoreMin      = 0.0
	RiskScoreMax      = 100.0
)

// probabilityEpsilon absorbe el error de redondeo en 1 - pWin - pTrigger.
// Un residuo en (-epsilon, 0) se trata como 0; por debajo es entrada inválida.
const probabilityEpsilon = 1e-9

// PromotionInput describe una apuesta con promoción "bonus back".
type PromotionInput struct {
	Stake                  float64 `json:"stake"`                    // importe apostado
	BackOdds               float64 `json:"back_odds"`                // cuota decimal del bookie (> 1)
	TrueWinProbability     float64 `json:"true_win_probability"`     // prob. real de ganar [0,1]
	TrueTriggerProbability float64 `json:"true_trigger_probability"` // prob. de que salte la promo (2º/3º) [0,1]
	BonusRetentionRate     float64 `json:"bonus_retention_rate"`     // fracción del bonus convertible a cash
	MaxRefundCap           float64 `json:"max_refund_cap"`           // tope del stake reembolsable
}

// PromotionResult es el resultado de evaluar una promoción.
// Incluye el desglose paso a paso para poder mostrar la derivación.
type PromotionResult struct {
	Input PromotionInput `json:"input"`

	// --- Desglose ---
	WinProfit           float64 `json:"win_profit"`            // stake × (odds - 1)
	ExpectedWinReturn   float64 `json:"expected_win_return"`   // pWin × winProfit
	EligibleStake       float64 `json:"eligible_stake"`        // min(stake, cap)
	BonusValue          float64 `json:"bonus_value"`           // eligibleStake × retention
	ExpectedBonusReturn float64 `json:"expected_bonus_return"` // pTrigger × bonusValue
	LossProbability     float64 `json:"loss_probability"`      // 1 - pWin - pTrigger
	ExpectedLoss        float64 `json:"expected_loss"`         // lossProb × stake

	// --- Resultado ---
	ExpectedValue float64 `json:"expected_value"` // ganancia neta esperada por repetición
	ROIPercent    float64 `json:"roi_pct"`        // EV / stake × 100
	RiskScore     int     `json:"risk_score"`     // 0-100, solo presentación
}

// Verdict es el veredicto binario de una promoción. No existe un tercer estado.
type Verdict int

const (
	VerdictNegative Verdict = iota
	VerdictPositive
)

func (v Verdict) String() string {
	if v == VerdictPositive {
		return "POSITIVE VALUE"
	}
	return "NEGATIVE VALUE"
}

// Verdict depende SOLO del signo del EV. RiskScore puede saturar y no se consulta.
func (r PromotionResult) Verdict() Verdict {
	if r.ExpectedValue > 0 {
		return VerdictPositive
	}
	return VerdictNegative
}

// Profitable es un atajo para Verdict() == VerdictPositive.
func (r PromotionResult) Profitable() bool {
	return r.Verdict() == VerdictPositive
}

// Validate comprueba todas las invariantes de la entrada.
func (in PromotionInput) Validate() error {
	if err := checkPositive("stake", in.Stake); err != nil {
		return err
	}
	if err := checkDecimalOdds("back_odds", in.BackOdds); err != nil {
		return err
	}
	if err := checkUnitInterval("true_win_probability", in.TrueWinProbability); err != nil {
		return err
	}
	if err := checkUnitInterval("true_trigger_probability", in.TrueTriggerProbability); err != nil {
		return err
	}
	if err := checkUnitInterval("bonus_retention_rate", in.BonusRetentionRate); err != nil {
		return err
	}
	if err := checkFinite("max_refund_cap", in.MaxRefundCap); err != nil {
		return err
	}
	if in.MaxRefundCap < 0 {
		return invalid("max_refund_cap", "must be >= 0, got %g", in.MaxRefundCap)
	}
	if sum := in.TrueWinProbability + in.TrueTriggerProbability; 1-sum <= -probabilityEpsilon {
		return invalid("probabilities", "sum to %.4g, exceeds 1.0", sum)
	}
	return nil
}

// EvaluatePromotion calcula el valor esperado de una promo "bonus back".
//
// Fórmula:
//
//	EV = pWin × stake(odds-1) + pTrigger × min(stake, cap) × retention - pLoss × stake
//	pLoss = 1 - pWin - pTrigger
//
// Devuelve *InvalidInputError si alguna invariante no se cumple.
func EvaluatePromotion(in PromotionInput) (PromotionResult, error) {
	if err := in.Validate(); err != nil {
		return PromotionResult{}, err
	}

	r := PromotionResult{Input: in}

	r.WinProfit = in.Stake * (in.BackOdds - 1)
	r.ExpectedWinReturn = in.TrueWinProbability * r.WinProfit

	r.EligibleStake = math.Min(in.Stake, in.MaxRefundCap)
	r.BonusValue = r.EligibleStake * in.BonusRetentionRate
	r.ExpectedBonusReturn = in.TrueTriggerProbability * r.BonusValue

	r.LossProbability = 1 - in.TrueWinProbability - in.TrueTriggerProbability
	if r.LossProbability < 0 {
		r.LossProbability = 0 // residuo de redondeo, ya validado contra epsilon
	}
	r.ExpectedLoss = r.LossProbability * in.Stake

	r.ExpectedValue = r.ExpectedWinReturn + r.ExpectedBonusReturn - r.ExpectedLoss
	r.ROIPercent = r.ExpectedValue / in.Stake * 100
	if err := checkDerived("stake", r.WinProfit, r.ExpectedWinReturn, r.ExpectedBonusReturn,
		r.ExpectedLoss, r.ExpectedValue, r.ROIPercent); err != nil {
		return PromotionResult{}, err
	}
	r.RiskScore = RiskScore(r.ROIPercent)

	return r, nil
}

// EvaluatePromotionArgs es la forma plana del contrato externo.
func EvaluatePromotionArgs(stake, backOdds, trueWinProbability, trueTriggerProbability, bonusRetentionRate, maxRefundCap float64) (PromotionResult, error) {
	return EvaluatePromotion(PromotionInput{
		Stake:                  stake,
		BackOdds:               backOdds,
		TrueWinProbability:     trueWinProbability,
		TrueTriggerProbability: trueTriggerProbability,
		BonusRetentionRate:     bonusRetentionRate,
		MaxRefundCap:           maxRefundCap,
	})
}

// RiskScore reescala el ROI a [0, 100] centrado en break-even.
// Un ROI NaN no tiene signo: devuelve el punto medio.
func RiskScore(roiPercent float64) int {
	if math.IsNaN(roiPercent) {
		return int(RiskScoreMidpoint)
	}
	score := RiskScoreMidpoint + roiPercent*RiskScoreSlope
	score = math.Max(RiskScoreMin, math.Min(RiskScoreMax, score))
	return int(math.Round(score))
}
