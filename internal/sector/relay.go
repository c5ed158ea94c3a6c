package sector

import (
	"context"
	"errors"
	"fmt"
	"html"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"tg_journal/internal/models"
)

const topCoins = 3

// MarketSource - источник монет по категории
type MarketSource interface {
	Markets(ctx context.Context, category string) ([]Coin, error)
}

// Sender отправляет оповещения в чат
type Sender interface {
	SendText(ctx context.Context, chatID int64, text string, kb *models.Keyboard) (int, error)
}

// CandleStore хранит свечи секторных индексов
type CandleStore interface {
	UpsertSectorCandle(ctx context.Context, c models.SectorCandle) error
	TrimSectorCandles(ctx context.Context, symbol, interval string, keep int) error
	LatestSectorCandle(ctx context.Context, symbol, interval string, from, to time.Time) (models.SectorCandle, bool, error)
}

// Signal - оповещение о движении сектора
type Signal struct {
	Symbol  string `json:"symbol"`
	Message string `json:"message"`
}

// Relay принимает сигналы секторов и пересылает сводки в чат оповещений
type Relay struct {
	markets     MarketSource
	limiter     *Limiter
	store       CandleStore
	sender      Sender
	mapping     Mapping
	alertChatID int64
	loc         *time.Location
	logger      *slog.Logger
}

// NewRelay создает Relay
func NewRelay(markets MarketSource, limiter *Limiter, store CandleStore, sender Sender, mapping Mapping, alertChatID int64, loc *time.Location, logger *slog.Logger) *Relay {
	if loc == nil {
		loc = time.UTC
	}

	return &Relay{
		markets:     markets,
		limiter:     limiter,
		store:       store,
		sender:      sender,
		mapping:     mapping,
		alertChatID: alertChatID,
		loc:         loc,
		logger:      logger,
	}
}

// HandleSignal обрабатывает сигнал "UP" для известного сектора: отправляет
// топ монет категории за 24 часа. Остальные сигналы игнорируются.
func (r *Relay) HandleSignal(ctx context.Context, sig Signal) error {
	if !strings.EqualFold(strings.TrimSpace(sig.Message), "UP") {
		return nil
	}

	category, ok := r.mapping.Category(sig.Symbol)
	if !ok {
		r.logger.Debug("Unknown sector symbol", slog.String("symbol", sig.Symbol))
		return nil
	}

	coins := r.topCoins(ctx, category)
	text := formatTopCoins(r.mapping.DisplayName(category), coins)

	if _, err := r.sender.SendText(ctx, r.alertChatID, text, nil); err != nil {
		return fmt.Errorf("send sector alert: %w", err)
	}

	r.logger.Info("🔥 Sector alert sent",
		slog.String("symbol", sig.Symbol),
		slog.String("category", category),
		slog.Int("coins", len(coins)))

	return nil
}

func (r *Relay) topCoins(ctx context.Context, category string) []Coin {
	wait, ok := r.limiter.Reserve(category)
	if !ok {
		r.logger.Info("⏳ Category on cooldown, skipping API call", slog.String("category", category))
		return nil
	}

	if wait > 0 {
		r.logger.Debug("⏳ Global cooldown", slog.Duration("wait", wait))
		if err := sleep(ctx, wait); err != nil {
			return nil
		}
	}

	coins, err := r.markets.Markets(ctx, category)
	if errors.Is(err, ErrRateLimited) {
		r.logger.Warn("⚠️ CoinGecko rate limit hit", slog.String("category", category))
		return nil
	}
	if err != nil {
		r.logger.Error("❌ Failed to load category markets",
			slog.String("category", category),
			slog.Any("error", err))
		return nil
	}

	return TopMovers(coins, topCoins)
}

func formatTopCoins(display string, coins []Coin) string {
	display = html.EscapeString(display)

	if len(coins) == 0 {
		return fmt.Sprintf("📊 No coins found in the %s category.", display)
	}

	lines := make([]string, 0, len(coins)+1)
	lines = append(lines, fmt.Sprintf("🔥 <b>%s Top %d gainers (24h)</b>\n", display, topCoins))

	for _, c := range coins {
		lines = append(lines, fmt.Sprintf("- %s (%s) | $%s | %.2f%%",
			html.EscapeString(c.Name),
			html.EscapeString(strings.ToUpper(c.Symbol)),
			strconv.FormatFloat(c.CurrentPrice, 'f', -1, 64),
			c.Change24h()))
	}

	return strings.Join(lines, "\n")
}

func sleep(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
