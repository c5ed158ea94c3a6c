package report

import (
	"fmt"
	"html"
	"math"
	"strings"

	"tg_journal/internal/stats"
)

const (
	textNoRecords = "📭 No records for this period."
	separator     = "────────────────────────"
)

var evalLabels = map[string]string{
	stats.EvalNoLoss:        "∞ no-loss",
	stats.EvalHealthy:       "✅ healthy",
	stats.EvalMarginal:      "⚠️ marginal",
	stats.EvalRisky:         "❌ risky",
	stats.EvalNotApplicable: "N/A",
}

// Format возвращает HTML текст отчёта
func Format(r *Report) string {
	var sb strings.Builder

	fmt.Fprintf(&sb, "📊 <b>%s report</b>\n", strings.ToUpper(string(r.Period)))
	fmt.Fprintf(&sb, "%s – %s\n\n", r.From.Format("2006-01-02"), r.To.Format("2006-01-02"))

	if r.Empty() {
		sb.WriteString(textNoRecords)
		return sb.String()
	}

	sb.WriteString("All users\n")
	sb.WriteString(separator + "\n")
	fmt.Fprintf(&sb, "Scalp: %s\n", summaryLine(r.Scalp))
	fmt.Fprintf(&sb, "Swing: %s\n", summaryLine(r.Swing))
	fmt.Fprintf(&sb, "Total: %s\n\n", summaryLine(r.Total))

	fmt.Fprintf(&sb, "Profit factor: %s %s\n\n", formatPF(r.Total.ProfitFactor), evalLabel(r.Total.Evaluation))

	fmt.Fprintf(&sb, "Style → scalp %.1f%%, swing %.1f%%\n", r.Style.First, r.Style.Second)
	fmt.Fprintf(&sb, "Positions → long %.1f%%, short %.1f%%\n", r.Positions.First, r.Positions.Second)

	if len(r.Symbols) > 0 {
		escaped := make([]string, len(r.Symbols))
		for i, s := range r.Symbols {
			escaped[i] = html.EscapeString(s)
		}
		fmt.Fprintf(&sb, "📌 Traded symbols: %s\n\n", strings.Join(escaped, ", "))
	}

	if len(r.TopSymbols) > 0 {
		fmt.Fprintf(&sb, "🥇 Top %d symbols by win rate:\n", topSymbols)
		for i, s := range r.TopSymbols {
			fmt.Fprintf(&sb, "%d. %s – %.1f%% (%d trades)\n", i+1, html.EscapeString(s.Symbol), s.WinRate, s.Count)
		}
		sb.WriteString("\n")
	}

	sb.WriteString("🏆 Ranking:\n")
	for i, e := range r.Ranking {
		fmt.Fprintf(&sb, "%d. %s → %.1f%% (avg %.1f%%, %d trades)\n", i+1, html.EscapeString(e.Alias), e.Total, e.Avg, e.Count)
	}

	return strings.TrimRight(sb.String(), "\n")
}

func summaryLine(s stats.Stats) string {
	return fmt.Sprintf("%d trades, win rate %.1f%%, PnL %.1f%%", s.Count, s.WinRate, s.Total)
}

func formatPF(pf float64) string {
	if math.IsInf(pf, 1) {
		return "∞"
	}

	return fmt.Sprintf("%.2f", pf)
}

func evalLabel(eval string) string {
	if label, ok := evalLabels[eval]; ok {
		return label
	}

	return eval
}
