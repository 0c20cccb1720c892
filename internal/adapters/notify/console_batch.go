package notify

import (
	"context"
	"fmt"

	"github.com/olekukonko/tablewriter"

	"github.com/alejandrodnm/betagent/internal/application/calculator"
	"github.com/alejandrodnm/betagent/internal/domain"
)

// ReportBatch imprime el ranking de un lote: válidos por EV desc, luego los rechazados.
func (c *Console) ReportBatch(_ context.Context, outcomes []calculator.Outcome) error {
	if len(outcomes) == 0 {
		fmt.Fprintln(c.out, "no candidates to evaluate")
		return nil
	}

	ranked := calculator.Rank(outcomes)
	s := calculator.Summarize(outcomes)

	fmt.Fprintf(c.out, "\n%d candidates — positive:%d negative:%d invalid:%d\n",
		len(outcomes), s.Positive, s.Negative, s.Invalid)

	if len(ranked) > 0 {
		table := tablewriter.NewWriter(c.out)
		table.Header("#", "Name", "Stake", "Odds", "Win%", "Trigger%", "EV", "ROI", "Score", "Verdict")
		for i, o := range ranked {
			in, r := o.Candidate.Input, o.Result
			table.Append(
				fmt.Sprintf("%d", i+1),
				truncate(o.Candidate.Name, 30),
				fmt.Sprintf("$%.2f", in.Stake),
				fmt.Sprintf("%.2f", in.BackOdds),
				fmt.Sprintf("%.1f%%", in.TrueWinProbability*100),
				fmt.Sprintf("%.1f%%", in.TrueTriggerProbability*100),
				fmt.Sprintf("$%.2f", r.ExpectedValue),
				fmt.Sprintf("%.1f%%", r.ROIPercent),
				fmt.Sprintf("%d", r.RiskScore),
				r.Verdict().String(),
			)
		}
		table.Render()
	}

	if s.Positive > 0 {
		fmt.Fprintf(c.out, "  Total EV of positive bets: $%.2f\n", s.PositiveEV)
	}

	for _, o := range outcomes {
		if !o.OK() {
			fmt.Fprintf(c.out, "  [!] %s rejected: %v\n", o.Candidate.Name, o.Err)
		}
	}
	return nil
}

// ReportProbes imprime el resultado de la última prueba y el histórico reciente.
func (c *Console) ReportProbes(_ context.Context, latest domain.BalanceProbe, history []domain.BalanceProbe) error {
	if latest.OK {
		fmt.Fprintf(c.out, "[+] %s connected — balance $%.2f (%s)\n",
			latest.Exchange, latest.Balance, latest.Latency.Round(1e6))
	} else {
		fmt.Fprintf(c.out, "[-] %s connection failed: %s\n", latest.Exchange, latest.Error)
	}

	if len(history) == 0 {
		return nil
	}

	table := tablewriter.NewWriter(c.out)
	table.Header("Checked", "Exchange", "OK", "Balance", "Latency", "Error")
	for _, p := range history {
		ok := "no"
		if p.OK {
			ok = "yes"
		}
		table.Append(
			p.CheckedAt.Local().Format("2006-01-02 15:04:05"),
			p.Exchange,
			ok,
			fmt.Sprintf("$%.2f", p.Balance),
			p.Latency.String(),
			truncate(p.Error, 40),
		)
	}
	table.Render()
	return nil
}
