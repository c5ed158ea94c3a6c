package stats

import (
	"fmt"
	"sort"

	"tg_journal/internal/models"
)

// AliasResolver возвращает псевдоним пользователя. ok == false, если псевдонима нет.
type AliasResolver func(userID int64) (alias string, ok bool)

// RankEntry - строка рейтинга пользователей
type RankEntry struct {
	UserID int64
	Alias  string
	Total  float64
	Avg    float64
	Count  int
}

// FallbackAlias - подпись пользователя без псевдонима
func FallbackAlias(userID int64) string {
	return fmt.Sprintf("user-%d", userID)
}

// Ranking группирует сделки по пользователям, суммирует PnL и возвращает topN
// по убыванию суммарного PnL. Равные суммы сохраняют порядок первого появления.
func Ranking(trades []models.Outcome, topN int, resolve AliasResolver) []RankEntry {
	index := make(map[int64]int)
	var entries []RankEntry

	for _, t := range trades {
		if t.PnLPct == nil {
			continue
		}

		i, ok := index[t.UserID]
		if !ok {
			i = len(entries)
			index[t.UserID] = i
			entries = append(entries, RankEntry{UserID: t.UserID})
		}

		entries[i].Total += *t.PnLPct
		entries[i].Count++
	}

	for i := range entries {
		e := &entries[i]
		e.Avg = e.Total / float64(e.Count)
		e.Alias = FallbackAlias(e.UserID)

		if resolve != nil {
			if alias, ok := resolve(e.UserID); ok && alias != "" {
				e.Alias = alias
			}
		}
	}

	sort.SliceStable(entries, func(a, b int) bool {
		return entries[a].Total > entries[b].Total
	})

	return truncate(entries, topN)
}

// SymbolStat - винрейт по одному тикеру
type SymbolStat struct {
	Symbol  string
	WinRate float64
	Count   int
}

// SymbolStats считает винрейт по тикерам. Возвращает topN по винрейту и
// список всех встреченных тикеров в порядке появления.
func SymbolStats(trades []models.Outcome, topN int) (top []SymbolStat, symbols []string) {
	index := make(map[string]int)
	wins := make([]int, 0)
	var all []SymbolStat

	for _, t := range trades {
		if t.PnLPct == nil {
			continue
		}

		i, ok := index[t.Symbol]
		if !ok {
			i = len(all)
			index[t.Symbol] = i
			all = append(all, SymbolStat{Symbol: t.Symbol})
			wins = append(wins, 0)
			symbols = append(symbols, t.Symbol)
		}

		all[i].Count++
		if *t.PnLPct > 0 {
			wins[i]++
		}
	}

	for i := range all {
		all[i].WinRate = float64(wins[i]) / float64(all[i].Count) * 100
	}

	sort.SliceStable(all, func(a, b int) bool {
		return all[a].WinRate > all[b].WinRate
	})

	return truncate(all, topN), symbols
}

// Ratio - доли двух категорий в процентах
type Ratio struct {
	First  float64
	Second float64
}

func ratio(a, b int) Ratio {
	total := a + b
	if total == 0 {
		return Ratio{}
	}

	return Ratio{
		First:  float64(a) / float64(total) * 100,
		Second: float64(b) / float64(total) * 100,
	}
}

// PositionRatio - доли long/short среди сделок с PnL
func PositionRatio(trades []models.Outcome) Ratio {
	var long, short int

	for _, t := range trades {
		if t.PnLPct == nil {
			continue
		}

		switch t.Side {
		case models.SideLong:
			long++
		case models.SideShort:
			short++
		}
	}

	return ratio(long, short)
}

// StyleRatio - доли scalp/swing по количеству сделок
func StyleRatio(scalp, swing Stats) Ratio {
	return ratio(scalp.Count, swing.Count)
}

func truncate[T any](items []T, n int) []T {
	if n >= 0 && len(items) > n {
		return items[:n]
	}

	return items
}
