package domain

import (
	"errors"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func baseInput() PromotionInput {
	return PromotionInput{
		Stake:                  50,
		BackOdds:               5.00,
		TrueWinProbability:     0.18,
		TrueTriggerProbability: 0.40,
		BonusRetentionRate:     0.75,
		MaxRefundCap:           50,
	}
}

func TestEvaluatePromotion_ReferenceScenario(t *testing.T) {
	r, err := EvaluatePromotion(baseInput())
	require.NoError(t, err)

	// winProfit = 50 × 4 = 200, 0.18 × 200 = 36
	assert.InDelta(t, 200.0, r.WinProfit, 1e-9)
	assert.InDelta(t, 36.0, r.ExpectedWinReturn, 1e-9)
	// bonus = min(50, 50) × 0.75 = 37.5, 0.40 × 37.5 = 15
	assert.InDelta(t, 50.0, r.EligibleStake, 1e-9)
	assert.InDelta(t, 37.5, r.BonusValue, 1e-9)
	assert.InDelta(t, 15.0, r.ExpectedBonusReturn, 1e-9)
	// pLoss = 0.42, 0.42 × 50 = 21
	assert.InDelta(t, 0.42, r.LossProbability, 1e-9)
	assert.InDelta(t, 21.0, r.ExpectedLoss, 1e-9)
	// EV = 36 + 15 - 21 = 30 → ROI 60% → score 170 saturado a 100
	assert.InDelta(t, 30.0, r.ExpectedValue, 1e-9)
	assert.InDelta(t, 60.0, r.ROIPercent, 1e-9)
	assert.Equal(t, 100, r.RiskScore)
	assert.Equal(t, VerdictPositive, r.Verdict())
	assert.True(t, r.Profitable())
}

func TestEvaluatePromotion_ProbabilitiesExceedOne(t *testing.T) {
	in := baseInput()
	in.TrueWinProbability = 0.7
	in.TrueTriggerProbability = 0.5

	_, err := EvaluatePromotion(in)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrInvalidInput))

	var iie *InvalidInputError
	require.True(t, errors.As(err, &iie))
	assert.Equal(t, "probabilities", iie.Field)
	assert.Contains(t, err.Error(), "exceeds 1.0")
	assert.Contains(t, err.Error(), "1.2")
}

func TestEvaluatePromotion_InvalidFields(t *testing.T) {
	cases := []struct {
		name  string
		mut   func(*PromotionInput)
		field string
	}{
		{"zero stake", func(in *PromotionInput) { in.Stake = 0 }, "stake"},
		{"negative stake", func(in *PromotionInput) { in.Stake = -10 }, "stake"},
		{"odds exactly one", func(in *PromotionInput) { in.BackOdds = 1.0 }, "back_odds"},
		{"odds below one", func(in *PromotionInput) { in.BackOdds = 0.5 }, "back_odds"},
		{"win prob negative", func(in *PromotionInput) { in.TrueWinProbability = -0.1 }, "true_win_probability"},
		{"win prob above one", func(in *PromotionInput) { in.TrueWinProbability = 1.1 }, "true_win_probability"},
		{"trigger prob above one", func(in *PromotionInput) { in.TrueTriggerProbability = 1.5 }, "true_trigger_probability"},
		{"retention above one", func(in *PromotionInput) { in.BonusRetentionRate = 1.2 }, "bonus_retention_rate"},
		{"retention negative", func(in *PromotionInput) { in.BonusRetentionRate = -0.2 }, "bonus_retention_rate"},
		{"negative cap", func(in *PromotionInput) { in.MaxRefundCap = -1 }, "max_refund_cap"},
		{"NaN stake", func(in *PromotionInput) { in.Stake = math.NaN() }, "stake"},
		{"Inf odds", func(in *PromotionInput) { in.BackOdds = math.Inf(1) }, "back_odds"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			in := baseInput()
			tc.mut(&in)
			_, err := EvaluatePromotion(in)
			require.Error(t, err)

			var iie *InvalidInputError
			require.True(t, errors.As(err, &iie))
			assert.Equal(t, tc.field, iie.Field)
		})
	}
}

func TestEvaluatePromotion_NoWinNoTriggerIsTotalLoss(t *testing.T) {
	in := baseInput()
	in.TrueWinProbability = 0
	in.TrueTriggerProbability = 0

	r, err := EvaluatePromotion(in)
	require.NoError(t, err)
	assert.InDelta(t, -in.Stake, r.ExpectedValue, 1e-9)
	assert.InDelta(t, -100.0, r.ROIPercent, 1e-9)
	assert.Equal(t, 0, r.RiskScore)
	assert.Equal(t, VerdictNegative, r.Verdict())
}

func TestEvaluatePromotion_ProbabilitiesSumToOne(t *testing.T) {
	in := baseInput()
	in.TrueWinProbability = 0.3
	in.TrueTriggerProbability = 0.7

	r, err := EvaluatePromotion(in)
	require.NoError(t, err)
	assert.Equal(t, 0.0, r.LossProbability)
	assert.Equal(t, 0.0, r.ExpectedLoss)
}

func TestEvaluatePromotion_RoundingResidueClampedToZero(t *testing.T) {
	in := baseInput()
	// 0.1 + 0.2 = 0.30000000000000004 en float64
	in.TrueWinProbability = 0.1 + 0.2
	in.TrueTriggerProbability = 0.7

	r, err := EvaluatePromotion(in)
	require.NoError(t, err)
	assert.GreaterOrEqual(t, r.LossProbability, 0.0)
	assert.InDelta(t, 0.0, r.ExpectedLoss, 1e-9)
}

func TestEvaluatePromotion_ProbabilitySumTolerance(t *testing.T) {
	cases := []struct {
		name     string
		pTrigger float64
		wantErr  bool
	}{
		{"exactly one", 0.5, false},
		{"within epsilon", 0.5 + 5e-10, false},
		{"past epsilon", 0.5 + 1e-8, true},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			in := baseInput()
			in.TrueWinProbability = 0.5
			in.TrueTriggerProbability = tc.pTrigger

			r, err := EvaluatePromotion(in)
			if tc.wantErr {
				var iie *InvalidInputError
				require.True(t, errors.As(err, &iie))
				assert.Equal(t, "probabilities", iie.Field)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, 0.0, r.LossProbability)
			assert.Equal(t, 0.0, r.ExpectedLoss)
		})
	}
}

func TestEvaluatePromotion_OverflowRejected(t *testing.T) {
	in := baseInput()
	in.Stake = 1e308
	in.BackOdds = 10
	in.TrueWinProbability = 0
	in.TrueTriggerProbability = 0.5

	_, err := EvaluatePromotion(in)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrInvalidInput))

	var iie *InvalidInputError
	require.True(t, errors.As(err, &iie))
	assert.Equal(t, "stake", iie.Field)
	assert.Contains(t, err.Error(), "overflows")
}

func TestEvaluatePromotion_LargeFiniteStakeStaysInRange(t *testing.T) {
	in := baseInput()
	in.Stake = 1e300
	in.BackOdds = 1.5

	r, err := EvaluatePromotion(in)
	require.NoError(t, err)
	assert.False(t, math.IsNaN(r.ExpectedValue))
	assert.GreaterOrEqual(t, r.RiskScore, 0)
	assert.LessOrEqual(t, r.RiskScore, 100)
}

func TestEvaluatePromotion_CapAboveStakeIsNoop(t *testing.T) {
	atStake := baseInput()
	atStake.MaxRefundCap = atStake.Stake

	above := baseInput()
	above.MaxRefundCap = 1000

	r1, err := EvaluatePromotion(atStake)
	require.NoError(t, err)
	r2, err := EvaluatePromotion(above)
	require.NoError(t, err)

	assert.Equal(t, r1.ExpectedValue, r2.ExpectedValue)
	assert.Equal(t, r1.BonusValue, r2.BonusValue)
	assert.Equal(t, r1.RiskScore, r2.RiskScore)
}

func TestEvaluatePromotion_CapLimitsBonus(t *testing.T) {
	in := baseInput()
	in.MaxRefundCap = 20

	r, err := EvaluatePromotion(in)
	require.NoError(t, err)
	// bonus = 20 × 0.75 = 15, 0.40 × 15 = 6
	assert.InDelta(t, 15.0, r.BonusValue, 1e-9)
	assert.InDelta(t, 6.0, r.ExpectedBonusReturn, 1e-9)
	assert.InDelta(t, 21.0, r.ExpectedValue, 1e-9)
}

func TestEvaluatePromotion_ZeroCapMeansNoBonus(t *testing.T) {
	in := baseInput()
	in.MaxRefundCap = 0

	r, err := EvaluatePromotion(in)
	require.NoError(t, err)
	assert.Equal(t, 0.0, r.BonusValue)
	assert.InDelta(t, 36.0-21.0, r.ExpectedValue, 1e-9)
}

func TestEvaluatePromotion_MonotoneInOdds(t *testing.T) {
	prev := math.Inf(-1)
	for _, odds := range []float64{1.01, 1.5, 2.0, 3.5, 5.0, 10.0, 51.0} {
		in := baseInput()
		in.BackOdds = odds
		r, err := EvaluatePromotion(in)
		require.NoError(t, err)
		assert.Greater(t, r.ExpectedValue, prev, "odds=%.2f", odds)
		prev = r.ExpectedValue
	}
}

func TestEvaluatePromotion_MonotoneInWinProbability(t *testing.T) {
	prev := math.Inf(-1)
	for _, p := range []float64{0, 0.1, 0.2, 0.35, 0.5, 0.6} {
		in := baseInput()
		in.TrueWinProbability = p
		r, err := EvaluatePromotion(in)
		require.NoError(t, err)
		assert.Greater(t, r.ExpectedValue, prev, "pWin=%.2f", p)
		prev = r.ExpectedValue
	}
}

func TestEvaluatePromotion_VerdictFollowsSignOfEV(t *testing.T) {
	for _, odds := range []float64{1.05, 1.5, 2.0, 2.5, 3.0, 4.0, 8.0} {
		in := baseInput()
		in.BackOdds = odds
		in.TrueTriggerProbability = 0.1
		r, err := EvaluatePromotion(in)
		require.NoError(t, err)

		if r.ExpectedValue > 0 {
			assert.Equal(t, VerdictPositive, r.Verdict())
		} else {
			assert.Equal(t, VerdictNegative, r.Verdict())
		}
		assert.GreaterOrEqual(t, r.RiskScore, 0)
		assert.LessOrEqual(t, r.RiskScore, 100)
	}
}

func TestEvaluatePromotionArgs_MatchesStruct(t *testing.T) {
	in := baseInput()
	r1, err := EvaluatePromotion(in)
	require.NoError(t, err)
	r2, err := EvaluatePromotionArgs(in.Stake, in.BackOdds, in.TrueWinProbability, in.TrueTriggerProbability, in.BonusRetentionRate, in.MaxRefundCap)
	require.NoError(t, err)
	assert.Equal(t, r1, r2)
}

// --- RiskScore ---

func TestRiskScore_Clamp(t *testing.T) {
	assert.Equal(t, 100, RiskScore(1000))
	assert.Equal(t, 0, RiskScore(-1000))
	assert.Equal(t, 50, RiskScore(0))
	assert.Equal(t, 100, RiskScore(25))
	assert.Equal(t, 0, RiskScore(-25))
}

func TestRiskScore_NonFinite(t *testing.T) {
	assert.Equal(t, 50, RiskScore(math.NaN()))
	assert.Equal(t, 100, RiskScore(math.Inf(1)))
	assert.Equal(t, 0, RiskScore(math.Inf(-1)))
}

func TestRiskScore_Rounding(t *testing.T) {
	assert.Equal(t, 71, RiskScore(10.3))  // 70.6
	assert.Equal(t, 30, RiskScore(-10.1)) // 29.8
	assert.Equal(t, 51, RiskScore(0.25))  // 50.5 → redondeo lejos de cero
}

func TestVerdict_String(t *testing.T) {
	assert.Equal(t, "POSITIVE VALUE", VerdictPositive.String())
	assert.Equal(t, "NEGATIVE VALUE", VerdictNegative.String())
}
