package notify

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/olekukonko/tablewriter"

	"github.com/alejandrodnm/betagent/internal/domain"
)

// Console implementa ports.Reporter.
type Console struct {
	out      io.Writer
	table    bool
	validate bool
}

// NewConsole crea un reporter que escribe a stdout.
func NewConsole(table, validate bool) *Console {
	return &Console{out: os.Stdout, table: table, validate: validate}
}

// NewConsoleWriter crea un reporter para tests.
func NewConsoleWriter(w io.Writer, table, validate bool) *Console {
	return &Console{out: w, table: table, validate: validate}
}

// ReportPromotion imprime el resultado de una promo y, si existe, el texto del advisor.
// advice vacío = sin texto disponible; el resultado numérico se imprime igual.
func (c *Console) ReportPromotion(_ context.Context, r domain.PromotionResult, advice string) error {
	if c.table {
		c.printPromotionTable(r)
	} else {
		fmt.Fprintf(c.out, "[%s] promo score %d/100 | EV $%.2f (%.1f%% ROI) | %s\n",
			time.Now().Format("15:04:05"), r.RiskScore, r.ExpectedValue, r.ROIPercent, r.Verdict())
	}

	if c.validate {
		c.printPromotionValidation(r)
	}

	fmt.Fprintf(c.out, "  %s %s\n", verdictIcon(r.Profitable()), domain.PromotionSummary(r))
	if advice != "" {
		fmt.Fprintf(c.out, "\n  Advisor: %s\n", advice)
	}
	return nil
}

// ReportDutch imprime el stake de cobertura y el resultado neto.
func (c *Console) ReportDutch(_ context.Context, r domain.DutchResult) error {
	if c.table {
		c.printDutchTable(r)
	} else {
		fmt.Fprintf(c.out, "[%s] partner must bet $%.2f | outlay $%.2f | return $%.2f | net $%.2f\n",
			time.Now().Format("15:04:05"), r.RequiredStakeB, r.TotalOutlay, r.GuaranteedReturn, r.NetResult)
	}

	if c.validate {
		c.printDutchValidation(r)
	}

	fmt.Fprintf(c.out, "  %s %s\n", verdictIcon(r.Kind() == domain.DutchArbitrage), domain.DutchSummary(r))
	return nil
}

func (c *Console) printPromotionTable(r domain.PromotionResult) {
	in := r.Input
	table := tablewriter.NewWriter(c.out)
	table.Header("Stake", "Odds", "Win%", "Trigger%", "Retention", "Cap", "EV", "ROI", "Score")
	table.Append(
		fmt.Sprintf("$%.2f", in.Stake),
		fmt.Sprintf("%.2f", in.BackOdds),
		fmt.Sprintf("%.1f%%", in.TrueWinProbability*100),
		fmt.Sprintf("%.1f%%", in.TrueTriggerProbability*100),
		fmt.Sprintf("%.0f%%", in.BonusRetentionRate*100),
		fmt.Sprintf("$%.2f", in.MaxRefundCap),
		fmt.Sprintf("$%.2f", r.ExpectedValue),
		fmt.Sprintf("%.1f%%", r.ROIPercent),
		fmt.Sprintf("%d/100", r.RiskScore),
	)
	table.Render()
}

func (c *Console) printDutchTable(r domain.DutchResult) {
	in := r.Input
	table := tablewriter.NewWriter(c.out)
	table.Header("Stake A", "Odds A", "Odds B", "Stake B", "Outlay", "Return", "Net", "Net%")
	table.Append(
		fmt.Sprintf("$%.2f", in.StakeA),
		fmt.Sprintf("%.2f", in.OddsA),
		fmt.Sprintf("%.2f", in.OddsB),
		fmt.Sprintf("$%.2f", r.RequiredStakeB),
		fmt.Sprintf("$%.2f", r.TotalOutlay),
		fmt.Sprintf("$%.2f", r.GuaranteedReturn),
		fmt.Sprintf("$%.2f", r.NetResult),
		fmt.Sprintf("%.2f%%", r.NetPercent),
	)
	table.Render()
}

// printPromotionValidation imprime la derivación paso a paso.
func (c *Console) printPromotionValidation(r domain.PromotionResult) {
	in := r.Input
	fmt.Fprintln(c.out, "=== VALIDATION — step-by-step ===")
	fmt.Fprintf(c.out, "  1. WIN PROFIT:     $%.2f × (%.2f - 1) = $%.4f\n", in.Stake, in.BackOdds, r.WinProfit)
	fmt.Fprintf(c.out, "     expected:       %.4f × $%.4f = $%.4f\n", in.TrueWinProbability, r.WinProfit, r.ExpectedWinReturn)
	fmt.Fprintf(c.out, "  2. BONUS VALUE:    min($%.2f, $%.2f) × %.2f = $%.4f\n", in.Stake, in.MaxRefundCap, in.BonusRetentionRate, r.BonusValue)
	fmt.Fprintf(c.out, "     expected:       %.4f × $%.4f = $%.4f\n", in.TrueTriggerProbability, r.BonusValue, r.ExpectedBonusReturn)
	fmt.Fprintf(c.out, "  3. LOSS:           (1 - %.4f - %.4f) = %.4f\n", in.TrueWinProbability, in.TrueTriggerProbability, r.LossProbability)
	fmt.Fprintf(c.out, "     expected:       %.4f × $%.2f = $%.4f\n", r.LossProbability, in.Stake, r.ExpectedLoss)
	fmt.Fprintf(c.out, "  4. >>> EV:         $%.4f + $%.4f - $%.4f = $%.4f\n", r.ExpectedWinReturn, r.ExpectedBonusReturn, r.ExpectedLoss, r.ExpectedValue)
	fmt.Fprintf(c.out, "  5. ROI:            $%.4f / $%.2f × 100 = %.2f%%\n", r.ExpectedValue, in.Stake, r.ROIPercent)
	fmt.Fprintf(c.out, "  6. SCORE:          clamp(%.0f + %.2f × %.0f, 0, 100) = %d\n", domain.RiskScoreMidpoint, r.ROIPercent, domain.RiskScoreSlope, r.RiskScore)
}

func (c *Console) printDutchValidation(r domain.DutchResult) {
	in := r.Input
	fmt.Fprintln(c.out, "=== VALIDATION — step-by-step ===")
	fmt.Fprintf(c.out, "  1. TARGET RETURN:  $%.2f × %.2f = $%.4f\n", in.StakeA, in.OddsA, r.GuaranteedReturn)
	fmt.Fprintf(c.out, "  2. STAKE B:        $%.4f / %.2f = $%.4f\n", r.GuaranteedReturn, in.OddsB, r.RequiredStakeB)
	fmt.Fprintf(c.out, "  3. OUTLAY:         $%.2f + $%.4f = $%.4f\n", in.StakeA, r.RequiredStakeB, r.TotalOutlay)
	fmt.Fprintf(c.out, "  4. >>> NET:        $%.4f - $%.4f = $%.4f\n", r.GuaranteedReturn, r.TotalOutlay, r.NetResult)
}

func verdictIcon(good bool) string {
	if good {
		return "[+]"
	}
	return "[-]"
}

// truncate corta s a maxLen caracteres añadiendo "..." si es necesario.
func truncate(s string, maxLen int) string {
	r := []rune(s)
	if len(r) <= maxLen {
		return s
	}
	return string(r[:maxLen-3]) + "..."
}
