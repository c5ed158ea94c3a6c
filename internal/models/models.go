package models

import (
	"time"
)

// TradeKind различает сделки по стилю торговли
type TradeKind string

const (
	KindScalp TradeKind = "scalp"
	KindSwing TradeKind = "swing"
)

// ScalpTrade - короткая сделка, записывается целиком за один диалог
type ScalpTrade struct {
	ID        string    `db:"id" json:"id"`
	UserID    int64     `db:"user_id" json:"user_id"`
	Symbol    string    `db:"symbol" json:"symbol"`
	Side      Side      `db:"side" json:"side"`
	Leverage  float64   `db:"leverage" json:"leverage"`
	PnLPct    float64   `db:"pnl_pct" json:"pnl_pct"`
	Reason    string    `db:"reason" json:"reason"`
	ImageID   string    `db:"image_id" json:"image_id"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
}

// SwingTrade - долгосрочная сделка. Открыта, пока ExitPrice == nil.
type SwingTrade struct {
	ID          string     `db:"trade_id" json:"trade_id"`
	UserID      int64      `db:"user_id" json:"user_id"`
	Symbol      string     `db:"symbol" json:"symbol"`
	Side        Side       `db:"side" json:"side"`
	Leverage    float64    `db:"leverage" json:"leverage"`
	EntryPrice  float64    `db:"entry_price" json:"entry_price"`
	ReasonEntry string     `db:"reason_entry" json:"reason_entry"`
	ImageID     string     `db:"image_id" json:"image_id"`
	CreatedAt   time.Time  `db:"created_at" json:"created_at"`
	ExitPrice   *float64   `db:"exit_price" json:"exit_price,omitempty"`
	PnLPct      *float64   `db:"pnl_pct" json:"pnl_pct,omitempty"`
	ReasonExit  *string    `db:"reason_exit" json:"reason_exit,omitempty"`
	ClosedAt    *time.Time `db:"date_closed" json:"date_closed,omitempty"`
}

// IsOpen возвращает true, пока сделка не закрыта
func (t SwingTrade) IsOpen() bool {
	return t.ExitPrice == nil
}

// SwingClose - поля, заполняемые при закрытии swing сделки
type SwingClose struct {
	ExitPrice  float64
	PnLPct     float64
	ReasonExit string
	ClosedAt   time.Time
}

// Outcome - результат сделки независимо от её типа, вход для статистики
type Outcome struct {
	UserID int64
	Symbol string
	Side   Side
	Kind   TradeKind
	PnLPct *float64
	At     time.Time
}

// Outcome приводит scalp сделку к общему виду
func (t ScalpTrade) Outcome() Outcome {
	pnl := t.PnLPct

	return Outcome{
		UserID: t.UserID,
		Symbol: t.Symbol,
		Side:   t.Side,
		Kind:   KindScalp,
		PnLPct: &pnl,
		At:     t.CreatedAt,
	}
}

// Outcome приводит swing сделку к общему виду. У открытой сделки PnL == nil.
func (t SwingTrade) Outcome() Outcome {
	at := t.CreatedAt
	if t.ClosedAt != nil {
		at = *t.ClosedAt
	}

	return Outcome{
		UserID: t.UserID,
		Symbol: t.Symbol,
		Side:   t.Side,
		Kind:   KindSwing,
		PnLPct: t.PnLPct,
		At:     at,
	}
}

// SectorCandle - свеча секторного индекса из вебхука.
// Уникальна по (Symbol, Interval, CandleTime).
type SectorCandle struct {
	Symbol     string    `db:"symbol" json:"symbol"`
	Interval   string    `db:"candle_interval" json:"interval"`
	CandleTime time.Time `db:"candle_time" json:"time"`
	Close      float64   `db:"close" json:"close"`
}
