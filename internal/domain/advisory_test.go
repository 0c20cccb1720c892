package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAdvisoryPrompt_InterpolatesResult(t *testing.T) {
	r, err := EvaluatePromotion(baseInput())
	require.NoError(t, err)

	p := AdvisoryPrompt(r)
	assert.Contains(t, p, "Stake: $50.00 at decimal odds 5.00")
	assert.Contains(t, p, "True win probability: 18.0%")
	assert.Contains(t, p, "triggers (refund as bonus): 40.0%")
	assert.Contains(t, p, "Bonus retention rate: 75%")
	assert.Contains(t, p, "$30.00 per bet (60.0% ROI)")
	assert.Contains(t, p, "POSITIVE VALUE")
}

func TestPromotionSummary(t *testing.T) {
	r, err := EvaluatePromotion(baseInput())
	require.NoError(t, err)
	assert.Contains(t, PromotionSummary(r), "POSITIVE VALUE: $30.00 per bet")

	in := baseInput()
	in.TrueWinProbability = 0
	in.TrueTriggerProbability = 0
	r, err = EvaluatePromotion(in)
	require.NoError(t, err)
	assert.Contains(t, PromotionSummary(r), "NEGATIVE VALUE: $-50.00 per bet")
}
