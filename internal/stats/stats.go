package stats

import (
	"math"

	"tg_journal/internal/models"

	"github.com/shopspring/decimal"
)

// Оценка profit factor
const (
	EvalNoLoss        = "no-loss"
	EvalHealthy       = "healthy"
	EvalMarginal      = "marginal"
	EvalRisky         = "risky"
	EvalNotApplicable = "not applicable"
)

// Stats - агрегированная статистика по набору результатов сделок (в процентах)
type Stats struct {
	Count        int
	Win          int
	Lose         int
	WinRate      float64
	Total        float64
	Avg          float64
	GrossProfit  float64
	GrossLoss    float64
	ProfitFactor float64
	Evaluation   string
}

// Compute считает статистику по последовательности PnL.
// Пустой вход даёт нулевую статистику с ProfitFactor == 0 и оценкой "not applicable".
func Compute(profits []float64) Stats {
	if len(profits) == 0 {
		return Stats{Evaluation: EvalNotApplicable}
	}

	s := Stats{Count: len(profits)}

	for _, p := range profits {
		s.Total += p

		switch {
		case p > 0:
			s.Win++
			s.GrossProfit += p
		case p < 0:
			s.Lose++
			s.GrossLoss += -p
		}
	}

	s.WinRate = float64(s.Win) / float64(s.Count) * 100
	s.Avg = s.Total / float64(s.Count)

	if s.GrossLoss > 0 {
		s.ProfitFactor = s.GrossProfit / s.GrossLoss
	} else {
		s.ProfitFactor = math.Inf(1)
	}

	s.Evaluation = Evaluate(s.ProfitFactor)

	return s
}

// Evaluate возвращает качественную оценку profit factor
func Evaluate(pf float64) string {
	switch {
	case math.IsInf(pf, 1):
		return EvalNoLoss
	case pf >= 2:
		return EvalHealthy
	case pf >= 1:
		return EvalMarginal
	default:
		return EvalRisky
	}
}

// SwingPnL считает реализованный PnL swing сделки в процентах с учётом плеча,
// округлённый до 2 знаков.
func SwingPnL(side models.Side, entry, exit, leverage float64) float64 {
	e := decimal.NewFromFloat(entry)
	x := decimal.NewFromFloat(exit)

	diff := x.Sub(e)
	if side == models.SideShort {
		diff = e.Sub(x)
	}

	pnl := diff.Div(e).
		Mul(decimal.NewFromInt(100)).
		Mul(decimal.NewFromFloat(leverage)).
		Round(2)

	return pnl.InexactFloat64()
}

// Profits извлекает PnL из результатов, пропуская сделки без PnL
func Profits(trades []models.Outcome) []float64 {
	out := make([]float64, 0, len(trades))
	for _, t := range trades {
		if t.PnLPct != nil {
			out = append(out, *t.PnLPct)
		}
	}

	return out
}

// Cumulative возвращает нарастающий итог PnL по порядку сделок
func Cumulative(profits []float64) []float64 {
	out := make([]float64, len(profits))

	var sum float64
	for i, p := range profits {
		sum += p
		out[i] = sum
	}

	return out
}
