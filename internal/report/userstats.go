package report

import (
	"context"
	"fmt"
	"strings"

	"tg_journal/internal/models"
	"tg_journal/internal/stats"
	"tg_journal/internal/storage"
)

const textNoUserRecords = "📊 No records yet."

// UserStats - статистика одного пользователя за всё время
type UserStats struct {
	Scalp stats.Stats
	Swing stats.Stats
	Total stats.Stats

	// число закрытых и открытых swing сделок
	Closed int
	Open   int
}

// ForUser считает статистику пользователя по scalp и swing сделкам
func (g *Generator) ForUser(ctx context.Context, userID int64) (*UserStats, error) {
	q := storage.TradeQuery{}.ForUser(userID)

	scalp, err := g.store.QueryScalpTrades(ctx, q)
	if err != nil {
		return nil, fmt.Errorf("user stats: %w", err)
	}

	swing, err := g.store.QuerySwingTrades(ctx, q)
	if err != nil {
		return nil, fmt.Errorf("user stats: %w", err)
	}

	u := &UserStats{}

	all := make([]models.Outcome, 0, len(scalp)+len(swing))
	for _, t := range scalp {
		all = append(all, t.Outcome())
	}
	scalpProfits := stats.Profits(all)

	swingOut := make([]models.Outcome, 0, len(swing))
	for _, t := range swing {
		swingOut = append(swingOut, t.Outcome())
		if t.IsOpen() {
			u.Open++
		} else {
			u.Closed++
		}
	}
	all = append(all, swingOut...)

	u.Scalp = stats.Compute(scalpProfits)
	u.Swing = stats.Compute(stats.Profits(swingOut))
	u.Total = stats.Compute(stats.Profits(all))

	return u, nil
}

// FormatUserStats возвращает HTML текст статистики пользователя
func FormatUserStats(u *UserStats) string {
	if u.Total.Count == 0 {
		return textNoUserRecords
	}

	var sb strings.Builder

	sb.WriteString("📊 <b>Trading statistics</b>\n\n")

	sb.WriteString("📓 <b>Scalp trades</b>\n")
	writeBlock(&sb, u.Scalp)
	sb.WriteString("\n")

	sb.WriteString("🕰 <b>Swing trades</b>\n")
	fmt.Fprintf(&sb, "- Closed: %d | Open: %d\n", u.Closed, u.Open)
	writeBlock(&sb, u.Swing)
	sb.WriteString("\n")

	sb.WriteString("📊 <b>Combined</b>\n")
	writeBlock(&sb, u.Total)

	return strings.TrimRight(sb.String(), "\n")
}

func writeBlock(sb *strings.Builder, s stats.Stats) {
	fmt.Fprintf(sb, "- Trades: %d\n", s.Count)
	fmt.Fprintf(sb, "- Wins: %d | Losses: %d\n", s.Win, s.Lose)
	fmt.Fprintf(sb, "- Win rate: %.2f%%\n", s.WinRate)
	fmt.Fprintf(sb, "- Cumulative PnL: %.2f%%\n", s.Total)
	fmt.Fprintf(sb, "- Avg per trade: %.2f%%\n", s.Avg)
	fmt.Fprintf(sb, "- Profit factor: %s → %s\n", formatPF(s.ProfitFactor), evalLabel(s.Evaluation))
}
