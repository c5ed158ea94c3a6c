package sector

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"tg_journal/internal/models"
)

const (
	IntervalDaily = "1D"
	Interval4H    = "240"

	keepCandles = 3
	// торговый день секторных индексов начинается в 09:00 по локальному времени
	dayStartHour = 9
)

var ErrInvalidCandle = errors.New("invalid candle")

// flexString принимает строку или число
type flexString string

func (f *flexString) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if len(b) > 0 && b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		*f = flexString(s)
		return nil
	}

	*f = flexString(b)

	return nil
}

// flexFloat принимает число или строку с числом
type flexFloat float64

func (f *flexFloat) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if len(b) > 0 && b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		b = []byte(strings.TrimSpace(s))
	}

	v, err := strconv.ParseFloat(string(b), 64)
	if err != nil {
		return fmt.Errorf("close: %w", err)
	}
	*f = flexFloat(v)

	return nil
}

// Candle - тело вебхука /sector_candle
type Candle struct {
	Symbol   string     `json:"symbol"`
	Interval flexString `json:"interval"`
	Time     string     `json:"time"`
	Close    flexFloat  `json:"close"`
}

// parse проверяет свечу и переводит время в loc
func (c Candle) parse(loc *time.Location) (models.SectorCandle, error) {
	symbol := strings.TrimSpace(c.Symbol)
	interval := strings.TrimSpace(string(c.Interval))

	if symbol == "" || interval == "" {
		return models.SectorCandle{}, fmt.Errorf("%w: symbol and interval are required", ErrInvalidCandle)
	}

	t, err := time.Parse(time.RFC3339, strings.TrimSpace(c.Time))
	if err != nil {
		return models.SectorCandle{}, fmt.Errorf("%w: time: %v", ErrInvalidCandle, err)
	}

	if c.Close <= 0 {
		return models.SectorCandle{}, fmt.Errorf("%w: close must be positive", ErrInvalidCandle)
	}

	return models.SectorCandle{
		Symbol:     symbol,
		Interval:   interval,
		CandleTime: t.In(loc),
		Close:      float64(c.Close),
	}, nil
}

// TradingDay возвращает окно торгового дня, в которое попадает t:
// с 09:00 до 08:59:59 следующего дня по времени loc
func TradingDay(t time.Time, loc *time.Location) (start, end time.Time) {
	t = t.In(loc)

	start = time.Date(t.Year(), t.Month(), t.Day(), dayStartHour, 0, 0, 0, loc)
	if t.Hour() < dayStartHour {
		start = start.AddDate(0, 0, -1)
	}

	end = start.AddDate(0, 0, 1).Add(-time.Second)

	return start, end
}

// HandleCandle сохраняет свечу и хранит только последние три по (symbol, interval).
// Для 4H свечи отправляет изменение относительно дневной свечи текущего торгового дня.
func (r *Relay) HandleCandle(ctx context.Context, in Candle) error {
	c, err := in.parse(r.loc)
	if err != nil {
		return err
	}

	if err := r.store.UpsertSectorCandle(ctx, c); err != nil {
		return err
	}

	if err := r.store.TrimSectorCandles(ctx, c.Symbol, c.Interval, keepCandles); err != nil {
		r.logger.Warn("⚠️ Failed to trim sector candles",
			slog.String("symbol", c.Symbol),
			slog.Any("error", err))
	}

	switch c.Interval {
	case IntervalDaily:
		r.logger.Info("📌 Daily reference stored",
			slog.String("symbol", c.Symbol),
			slog.Time("time", c.CandleTime),
			slog.Float64("close", c.Close))
		return nil
	case Interval4H:
		return r.alertChange(ctx, c)
	}

	return nil
}

func (r *Relay) alertChange(ctx context.Context, c models.SectorCandle) error {
	start, end := TradingDay(c.CandleTime, r.loc)

	ref, ok, err := r.store.LatestSectorCandle(ctx, c.Symbol, IntervalDaily, start, end)
	if err != nil {
		return err
	}
	if !ok {
		r.logger.Warn("⚠️ No daily reference candle",
			slog.String("symbol", c.Symbol),
			slog.Time("day_start", start))
		return nil
	}

	pct := (c.Close - ref.Close) / ref.Close * 100
	text := fmt.Sprintf("🔥 %s sector\nchange: %.2f%%", r.mapping.SectorName(c.Symbol), pct)

	if _, err := r.sender.SendText(ctx, r.alertChatID, text, nil); err != nil {
		return fmt.Errorf("send sector change: %w", err)
	}

	r.logger.Info("🔥 Sector change sent",
		slog.String("symbol", c.Symbol),
		slog.Float64("pct", pct))

	return nil
}
