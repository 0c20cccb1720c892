package domain

import (
	"fmt"
	"math"
	"strings"
)

// AdvisoryPrompt construye el prompt en lenguaje natural para el generador de texto.
// Solo interpola campos del resultado: el generador es opcional y externo.
func AdvisoryPrompt(r PromotionResult) string {
	in := r.Input
	var sb strings.Builder
	sb.WriteString("You are a disciplined sports and racing betting analyst. ")
	sb.WriteString("A bettor is considering a bookmaker bonus-back promotion.\n")
	fmt.Fprintf(&sb, "Stake: $%.2f at decimal odds %.2f.\n", in.Stake, in.BackOdds)
	fmt.Fprintf(&sb, "True win probability: %.1f%%. Probability the promotion triggers (refund as bonus): %.1f%%.\n",
		in.TrueWinProbability*100, in.TrueTriggerProbability*100)
	fmt.Fprintf(&sb, "Bonus retention rate: %.0f%%. Max refund cap: $%.2f.\n",
		in.BonusRetentionRate*100, in.MaxRefundCap)
	fmt.Fprintf(&sb, "Computed expected value: $%.2f per bet (%.1f%% ROI). Verdict: %s.\n",
		r.ExpectedValue, r.ROIPercent, r.Verdict())
	sb.WriteString("In two or three sentences, explain whether this bet is worth taking long-term and the main risk. ")
	sb.WriteString("Do not recompute the numbers.")
	return sb.String()
}

// DutchSummary devuelve una línea legible con el veredicto del dutch.
func DutchSummary(r DutchResult) string {
	if r.Kind() == DutchArbitrage {
		return fmt.Sprintf("%s: guaranteed profit of $%.2f", r.Kind(), r.NetResult)
	}
	return fmt.Sprintf("%s: you lose $%.2f to trigger the promos", r.Kind(), math.Abs(r.NetResult))
}

// PromotionSummary devuelve una línea legible con el veredicto de la promo.
func PromotionSummary(r PromotionResult) string {
	if r.Profitable() {
		return fmt.Sprintf("%s: $%.2f per bet (%.1f%% ROI), mathematically profitable long-term", r.Verdict(), r.ExpectedValue, r.ROIPercent)
	}
	return fmt.Sprintf("%s: $%.2f per bet (%.1f%% ROI), the odds do not justify the risk", r.Verdict(), r.ExpectedValue, r.ROIPercent)
}
