package storage

// schema совместима с sqlite и postgres: идентификаторы сделок - ULID строки,
// время хранится в UTC.
const schema = `
CREATE TABLE IF NOT EXISTS scalp_trades (
    id TEXT PRIMARY KEY,
    user_id BIGINT NOT NULL,
    symbol TEXT NOT NULL,
    side TEXT NOT NULL,
    leverage DOUBLE PRECISION NOT NULL,
    pnl_pct DOUBLE PRECISION NOT NULL,
    reason TEXT NOT NULL DEFAULT '',
    image_id TEXT NOT NULL DEFAULT '',
    created_at TIMESTAMP NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_scalp_trades_user ON scalp_trades(user_id);
CREATE INDEX IF NOT EXISTS idx_scalp_trades_created ON scalp_trades(created_at);

CREATE TABLE IF NOT EXISTS swing_trades (
    trade_id TEXT PRIMARY KEY,
    user_id BIGINT NOT NULL,
    symbol TEXT NOT NULL,
    side TEXT NOT NULL,
    leverage DOUBLE PRECISION NOT NULL,
    entry_price DOUBLE PRECISION NOT NULL,
    reason_entry TEXT NOT NULL DEFAULT '',
    image_id TEXT NOT NULL DEFAULT '',
    created_at TIMESTAMP NOT NULL,
    exit_price DOUBLE PRECISION,
    pnl_pct DOUBLE PRECISION,
    reason_exit TEXT,
    date_closed TIMESTAMP
);

CREATE INDEX IF NOT EXISTS idx_swing_trades_user ON swing_trades(user_id);
CREATE INDEX IF NOT EXISTS idx_swing_trades_closed ON swing_trades(date_closed);

CREATE TABLE IF NOT EXISTS user_aliases (
    user_id BIGINT PRIMARY KEY,
    alias TEXT NOT NULL,
    created_at TIMESTAMP NOT NULL
);

CREATE TABLE IF NOT EXISTS sector_candles (
    symbol TEXT NOT NULL,
    candle_interval TEXT NOT NULL,
    candle_time TIMESTAMP NOT NULL,
    close DOUBLE PRECISION NOT NULL,
    PRIMARY KEY (symbol, candle_interval, candle_time)
);
`
