package storage

import (
	"context"
	"io"
	"log/slog"
	"path/filepath"
	"testing"
	"time"

	"tg_journal/internal/id"
	"tg_journal/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	s, err := New(DriverSQLite, filepath.Join(t.TempDir(), "journal.db"), logger)
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })

	return s
}

func openSwing(userID int64, symbol string, at time.Time) models.SwingTrade {
	return models.SwingTrade{
		ID:          id.NewAt(at),
		UserID:      userID,
		Symbol:      symbol,
		Side:        models.SideLong,
		Leverage:    3,
		EntryPrice:  24500,
		ReasonEntry: "range break",
		ImageID:     "file-1",
		CreatedAt:   at,
	}
}

func TestNewRejectsUnknownDriver(t *testing.T) {
	_, err := New("mysql", "x", slog.New(slog.NewTextHandler(io.Discard, nil)))
	require.Error(t, err)
}

func TestSQLiteDSN(t *testing.T) {
	assert.Equal(t, "a.db?_time_format=sqlite", sqliteDSN("a.db"))
	assert.Equal(t, "file:a.db?mode=rwc&_time_format=sqlite", sqliteDSN("file:a.db?mode=rwc"))
	assert.Equal(t, "a.db?_time_format=sqlite", sqliteDSN("a.db?_time_format=sqlite"))
}

func TestScalpTradesRoundTrip(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	base := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	for i, uid := range []int64{1, 2, 1} {
		err := s.InsertScalpTrade(ctx, models.ScalpTrade{
			ID:        id.NewAt(base.Add(time.Duration(i) * time.Hour)),
			UserID:    uid,
			Symbol:    "BTC",
			Side:      models.SideShort,
			Leverage:  5,
			PnLPct:    float64(i) - 1,
			Reason:    "test",
			CreatedAt: base.Add(time.Duration(i) * time.Hour),
		})
		require.NoError(t, err)
	}

	all, err := s.QueryScalpTrades(ctx, TradeQuery{})
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, models.SideShort, all[0].Side)
	assert.True(t, all[0].CreatedAt.Equal(base))
	assert.Equal(t, -1.0, all[0].PnLPct)

	mine, err := s.QueryScalpTrades(ctx, TradeQuery{}.ForUser(1))
	require.NoError(t, err)
	assert.Len(t, mine, 2)

	recent, err := s.QueryScalpTrades(ctx, TradeQuery{Since: base.Add(30 * time.Minute)})
	require.NoError(t, err)
	assert.Len(t, recent, 2)

	latest, err := s.QueryScalpTrades(ctx, TradeQuery{Desc: true, Limit: 1})
	require.NoError(t, err)
	require.Len(t, latest, 1)
	assert.Equal(t, 1.0, latest[0].PnLPct)
}

func TestSwingTradeLifecycle(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	opened := time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC)
	trade := openSwing(42, "BTC", opened)
	require.NoError(t, s.InsertSwingTrade(ctx, trade))

	got, err := s.GetSwingTrade(ctx, trade.ID)
	require.NoError(t, err)
	assert.True(t, got.IsOpen())
	assert.Nil(t, got.PnLPct)
	assert.Nil(t, got.ClosedAt)

	open, err := s.QuerySwingTrades(ctx, TradeQuery{Status: StatusOpen})
	require.NoError(t, err)
	assert.Len(t, open, 1)

	closedAt := opened.Add(48 * time.Hour)
	err = s.CloseSwingTrade(ctx, trade.ID, models.SwingClose{
		ExitPrice:  27000,
		PnLPct:     30.61,
		ReasonExit: "target",
		ClosedAt:   closedAt,
	})
	require.NoError(t, err)

	got, err = s.GetSwingTrade(ctx, trade.ID)
	require.NoError(t, err)
	assert.False(t, got.IsOpen())
	require.NotNil(t, got.PnLPct)
	assert.Equal(t, 30.61, *got.PnLPct)
	require.NotNil(t, got.ReasonExit)
	assert.Equal(t, "target", *got.ReasonExit)
	require.NotNil(t, got.ClosedAt)
	assert.True(t, got.ClosedAt.Equal(closedAt))

	open, err = s.QuerySwingTrades(ctx, TradeQuery{Status: StatusOpen})
	require.NoError(t, err)
	assert.Empty(t, open)

	closed, err := s.QuerySwingTrades(ctx, TradeQuery{Since: closedAt.Add(-time.Hour)})
	require.NoError(t, err)
	assert.Len(t, closed, 1)
}

func TestCloseSwingTradeAtMostOnce(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	trade := openSwing(1, "ETH", time.Now())
	require.NoError(t, s.InsertSwingTrade(ctx, trade))

	first := models.SwingClose{ExitPrice: 2000, PnLPct: 10, ReasonExit: "first", ClosedAt: time.Now()}
	require.NoError(t, s.CloseSwingTrade(ctx, trade.ID, first))

	second := models.SwingClose{ExitPrice: 1000, PnLPct: -50, ReasonExit: "second", ClosedAt: time.Now()}
	err := s.CloseSwingTrade(ctx, trade.ID, second)
	assert.ErrorIs(t, err, ErrTradeClosed)

	got, err := s.GetSwingTrade(ctx, trade.ID)
	require.NoError(t, err)
	assert.Equal(t, 10.0, *got.PnLPct)

	err = s.CloseSwingTrade(ctx, "missing", first)
	assert.ErrorIs(t, err, ErrTradeNotFound)

	_, err = s.GetSwingTrade(ctx, "missing")
	assert.ErrorIs(t, err, ErrTradeNotFound)
}

func TestSwingTimeFilterSkipsOpenTrades(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	now := time.Now().UTC()
	require.NoError(t, s.InsertSwingTrade(ctx, openSwing(1, "SOL", now.Add(-time.Hour))))

	closed, err := s.QuerySwingTrades(ctx, TradeQuery{Since: now.Add(-7 * 24 * time.Hour)})
	require.NoError(t, err)
	assert.Empty(t, closed)
}

func TestAliases(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	_, err := s.GetAlias(ctx, 7)
	assert.ErrorIs(t, err, ErrAliasNotFound)

	alias, err := s.CreateAlias(ctx, 7, "calm-otter-0007")
	require.NoError(t, err)
	assert.Equal(t, "calm-otter-0007", alias)

	alias, err = s.CreateAlias(ctx, 7, "brave-lynx-0007")
	require.NoError(t, err)
	assert.Equal(t, "calm-otter-0007", alias)

	alias, err = s.GetAlias(ctx, 7)
	require.NoError(t, err)
	assert.Equal(t, "calm-otter-0007", alias)
}

func TestSectorCandles(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	base := time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC)
	for i := 0; i < 5; i++ {
		c := models.SectorCandle{
			Symbol:     "SOLANA.C",
			Interval:   "240",
			CandleTime: base.Add(time.Duration(i) * 4 * time.Hour),
			Close:      float64(100 + i),
		}
		require.NoError(t, s.UpsertSectorCandle(ctx, c))
	}

	// повторная свеча обновляет close
	require.NoError(t, s.UpsertSectorCandle(ctx, models.SectorCandle{
		Symbol: "SOLANA.C", Interval: "240", CandleTime: base.Add(16 * time.Hour), Close: 200,
	}))

	require.NoError(t, s.TrimSectorCandles(ctx, "SOLANA.C", "240", 3))

	candles, err := s.SectorCandles(ctx, "SOLANA.C", "240")
	require.NoError(t, err)
	require.Len(t, candles, 3)
	assert.Equal(t, 200.0, candles[0].Close)
	assert.True(t, candles[2].CandleTime.Equal(base.Add(8*time.Hour)))

	latest, ok, err := s.LatestSectorCandle(ctx, "SOLANA.C", "240", base, base.Add(12*time.Hour))
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, 103.0, latest.Close)

	_, ok, err = s.LatestSectorCandle(ctx, "SOLANA.C", "1D", base, base.Add(24*time.Hour))
	require.NoError(t, err)
	assert.False(t, ok)
}
