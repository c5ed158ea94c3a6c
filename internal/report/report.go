package report

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"time"

	"tg_journal/internal/models"
	"tg_journal/internal/stats"
	"tg_journal/internal/storage"

	"github.com/google/uuid"
)

const topSymbols = 3

// Store - выборки сделок для отчётов
type Store interface {
	QueryScalpTrades(ctx context.Context, q storage.TradeQuery) ([]models.ScalpTrade, error)
	QuerySwingTrades(ctx context.Context, q storage.TradeQuery) ([]models.SwingTrade, error)
}

// AliasResolver возвращает псевдоним пользователя без создания нового
type AliasResolver interface {
	Resolve(ctx context.Context, userID int64) (string, bool)
}

// Sender отправляет сообщения в канал
type Sender interface {
	SendText(ctx context.Context, chatID int64, text string, kb *models.Keyboard) (int, error)
	SendPhoto(ctx context.Context, chatID int64, photo models.Photo, caption string, kb *models.Keyboard) (int, error)
}

// ChartRenderer рисует график накопленного PnL
type ChartRenderer interface {
	Render(values []float64) ([]byte, error)
}

// Report - агрегированный отчёт по всем пользователям за период
type Report struct {
	RunID  string
	Period Period
	From   time.Time
	To     time.Time

	Scalp stats.Stats
	Swing stats.Stats
	Total stats.Stats

	Ranking    []stats.RankEntry
	TopSymbols []stats.SymbolStat
	Symbols    []string
	Positions  stats.Ratio
	Style      stats.Ratio

	Cumulative []float64
}

// Empty - за период нет сделок с PnL
func (r *Report) Empty() bool {
	return r.Total.Count == 0
}

// Generator собирает и публикует отчёты
type Generator struct {
	store     Store
	aliases   AliasResolver
	sender    Sender
	chart     ChartRenderer
	channelID int64
	loc       *time.Location
	now       func() time.Time
	logger    *slog.Logger
}

// NewGenerator создает Generator. channelID - канал для публикации.
func NewGenerator(store Store, aliases AliasResolver, sender Sender, chart ChartRenderer, channelID int64, loc *time.Location, logger *slog.Logger) *Generator {
	if loc == nil {
		loc = time.UTC
	}

	return &Generator{
		store:     store,
		aliases:   aliases,
		sender:    sender,
		chart:     chart,
		channelID: channelID,
		loc:       loc,
		now:       time.Now,
		logger:    logger,
	}
}

// Build собирает отчёт за скользящее окно периода. Scalp сделки отбираются
// по времени создания, swing - по времени закрытия. Ошибки хранилища
// логируются, отчёт строится без соответствующих сделок.
func (g *Generator) Build(ctx context.Context, period Period) (*Report, error) {
	to := g.now().In(g.loc)
	from := to.Add(-period.Window())

	// ошибка запроса считается отсутствием данных, отчёт всё равно публикуется
	scalp, err := g.store.QueryScalpTrades(ctx, storage.TradeQuery{Since: from})
	if err != nil {
		g.logger.Error("❌ Failed to query scalp trades for report",
			slog.String("period", string(period)),
			slog.Any("error", err))
		scalp = nil
	}

	swing, err := g.store.QuerySwingTrades(ctx, storage.TradeQuery{Since: from, Status: storage.StatusClosed})
	if err != nil {
		g.logger.Error("❌ Failed to query swing trades for report",
			slog.String("period", string(period)),
			slog.Any("error", err))
		swing = nil
	}

	scalpOut := make([]models.Outcome, 0, len(scalp))
	for _, t := range scalp {
		scalpOut = append(scalpOut, t.Outcome())
	}

	swingOut := make([]models.Outcome, 0, len(swing))
	for _, t := range swing {
		swingOut = append(swingOut, t.Outcome())
	}

	all := make([]models.Outcome, 0, len(scalpOut)+len(swingOut))
	all = append(all, scalpOut...)
	all = append(all, swingOut...)

	r := &Report{
		RunID:  uuid.NewString(),
		Period: period,
		From:   from,
		To:     to,
		Scalp:  stats.Compute(stats.Profits(scalpOut)),
		Swing:  stats.Compute(stats.Profits(swingOut)),
		Total:  stats.Compute(stats.Profits(all)),
	}

	r.Ranking = stats.Ranking(all, period.TopN(), func(userID int64) (string, bool) {
		return g.aliases.Resolve(ctx, userID)
	})
	r.TopSymbols, r.Symbols = stats.SymbolStats(all, topSymbols)
	r.Positions = stats.PositionRatio(all)
	r.Style = stats.StyleRatio(r.Scalp, r.Swing)

	ordered := append([]models.Outcome(nil), all...)
	sort.SliceStable(ordered, func(i, j int) bool {
		return ordered[i].At.Before(ordered[j].At)
	})
	r.Cumulative = stats.Cumulative(stats.Profits(ordered))

	return r, nil
}

// Publish собирает отчёт и отправляет в канал текст, затем график.
// Без сделок отправляется только сообщение об отсутствии записей.
func (g *Generator) Publish(ctx context.Context, period Period) error {
	r, err := g.Build(ctx, period)
	if err != nil {
		return err
	}

	logger := g.logger.With(slog.String("run_id", r.RunID), slog.String("period", string(period)))

	if _, err := g.sender.SendText(ctx, g.channelID, Format(r), nil); err != nil {
		return fmt.Errorf("send %s report: %w", period, err)
	}

	if r.Empty() {
		logger.Info("📭 Report published without records")
		return nil
	}

	png, err := g.chart.Render(r.Cumulative)
	if err != nil {
		return fmt.Errorf("render %s chart: %w", period, err)
	}

	photo := models.Photo{Name: "report.png", Bytes: png}
	if _, err := g.sender.SendPhoto(ctx, g.channelID, photo, "", nil); err != nil {
		return fmt.Errorf("send %s chart: %w", period, err)
	}

	logger.Info("📊 Report published",
		slog.Int("trades", r.Total.Count),
		slog.Int("ranked", len(r.Ranking)))

	return nil
}
