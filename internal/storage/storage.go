package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"tg_journal/internal/models"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	_ "modernc.org/sqlite"
)

// Поддерживаемые драйверы БД
const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
)

var (
	ErrTradeNotFound = errors.New("trade not found")
	ErrTradeClosed   = errors.New("trade already closed")
	ErrAliasNotFound = errors.New("alias not found")
)

// Store - хранилище журнала сделок
type Store struct {
	db     *sqlx.DB
	driver string
	logger *slog.Logger
}

// New открывает БД и применяет схему
func New(driver, dsn string, logger *slog.Logger) (*Store, error) {
	switch driver {
	case "", DriverSQLite:
		driver = DriverSQLite
		dsn = sqliteDSN(dsn)
	case DriverPostgres:
	default:
		return nil, fmt.Errorf("unsupported db driver %q", driver)
	}

	db, err := sqlx.Open(driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", driver, err)
	}

	// sqlite не любит параллельную запись
	if driver == DriverSQLite {
		db.SetMaxOpenConns(1)
	}

	s := &Store{
		db:     db,
		driver: driver,
		logger: logger,
	}

	if err := s.init(); err != nil {
		db.Close()
		return nil, err
	}

	return s, nil
}

// sqliteDSN включает единый текстовый формат времени, чтобы сравнение строк
// совпадало с хронологическим порядком
func sqliteDSN(dsn string) string {
	if dsn == "" {
		dsn = "journal.db"
	}
	if strings.Contains(dsn, "_time_format=") {
		return dsn
	}

	sep := "?"
	if strings.Contains(dsn, "?") {
		sep = "&"
	}

	return dsn + sep + "_time_format=sqlite"
}

func (s *Store) init() error {
	if _, err := s.db.Exec(schema); err != nil {
		return fmt.Errorf("failed to initialize database: %w", err)
	}

	s.logger.Info("✅ Journal database initialized", slog.String("driver", s.driver))

	return nil
}

// Close закрывает соединение с БД
func (s *Store) Close() error {
	return s.db.Close()
}

// Ping проверяет доступность БД
func (s *Store) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// === Scalp ===

// InsertScalpTrade сохраняет scalp сделку
func (s *Store) InsertScalpTrade(ctx context.Context, t models.ScalpTrade) error {
	t.CreatedAt = t.CreatedAt.UTC()

	_, err := s.db.NamedExecContext(ctx, `
		INSERT INTO scalp_trades (id, user_id, symbol, side, leverage, pnl_pct, reason, image_id, created_at)
		VALUES (:id, :user_id, :symbol, :side, :leverage, :pnl_pct, :reason, :image_id, :created_at)
	`, t)
	if err != nil {
		return fmt.Errorf("failed to insert scalp trade: %w", err)
	}

	s.logger.Info("✅ Scalp trade saved",
		slog.String("id", t.ID),
		slog.Int64("user_id", t.UserID),
		slog.String("symbol", t.Symbol))

	return nil
}

// QueryScalpTrades возвращает scalp сделки по фильтру. Since/Until применяются к created_at.
func (s *Store) QueryScalpTrades(ctx context.Context, q TradeQuery) ([]models.ScalpTrade, error) {
	query, args := q.build(`
		SELECT id, user_id, symbol, side, leverage, pnl_pct, reason, image_id, created_at
		FROM scalp_trades`, tableSpec{idCol: "id", timeCol: "created_at", orderCol: "created_at"})

	var trades []models.ScalpTrade
	if err := s.db.SelectContext(ctx, &trades, s.db.Rebind(query), args...); err != nil {
		return nil, fmt.Errorf("failed to query scalp trades: %w", err)
	}

	return trades, nil
}

// === Swing ===

// InsertSwingTrade сохраняет открытую swing сделку
func (s *Store) InsertSwingTrade(ctx context.Context, t models.SwingTrade) error {
	t.CreatedAt = t.CreatedAt.UTC()

	_, err := s.db.NamedExecContext(ctx, `
		INSERT INTO swing_trades (trade_id, user_id, symbol, side, leverage, entry_price, reason_entry, image_id, created_at)
		VALUES (:trade_id, :user_id, :symbol, :side, :leverage, :entry_price, :reason_entry, :image_id, :created_at)
	`, t)
	if err != nil {
		return fmt.Errorf("failed to insert swing trade: %w", err)
	}

	s.logger.Info("✅ Swing trade opened",
		slog.String("trade_id", t.ID),
		slog.Int64("user_id", t.UserID),
		slog.String("symbol", t.Symbol))

	return nil
}

// GetSwingTrade возвращает swing сделку по trade_id
func (s *Store) GetSwingTrade(ctx context.Context, tradeID string) (*models.SwingTrade, error) {
	var t models.SwingTrade

	err := s.db.GetContext(ctx, &t, s.db.Rebind(`
		SELECT trade_id, user_id, symbol, side, leverage, entry_price, reason_entry, image_id, created_at,
		       exit_price, pnl_pct, reason_exit, date_closed
		FROM swing_trades
		WHERE trade_id = ?
	`), tradeID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrTradeNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get swing trade: %w", err)
	}

	return &t, nil
}

// CloseSwingTrade закрывает сделку. Обновление проходит только для открытой
// сделки, поэтому повторное закрытие возвращает ErrTradeClosed.
func (s *Store) CloseSwingTrade(ctx context.Context, tradeID string, c models.SwingClose) error {
	res, err := s.db.ExecContext(ctx, s.db.Rebind(`
		UPDATE swing_trades
		SET exit_price = ?, pnl_pct = ?, reason_exit = ?, date_closed = ?
		WHERE trade_id = ? AND exit_price IS NULL
	`), c.ExitPrice, c.PnLPct, c.ReasonExit, c.ClosedAt.UTC(), tradeID)
	if err != nil {
		return fmt.Errorf("failed to close swing trade: %w", err)
	}

	rows, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to close swing trade: %w", err)
	}

	if rows == 0 {
		var exists int
		err := s.db.GetContext(ctx, &exists, s.db.Rebind(`SELECT count(*) FROM swing_trades WHERE trade_id = ?`), tradeID)
		if err != nil {
			return fmt.Errorf("failed to close swing trade: %w", err)
		}
		if exists == 0 {
			return ErrTradeNotFound
		}

		return ErrTradeClosed
	}

	s.logger.Info("✅ Swing trade closed",
		slog.String("trade_id", tradeID),
		slog.Float64("pnl_pct", c.PnLPct))

	return nil
}

// QuerySwingTrades возвращает swing сделки по фильтру. Since/Until применяются к date_closed,
// поэтому фильтр по времени оставляет только закрытые сделки.
func (s *Store) QuerySwingTrades(ctx context.Context, q TradeQuery) ([]models.SwingTrade, error) {
	orderCol := "created_at"
	if q.Status == StatusClosed || !q.Since.IsZero() || !q.Until.IsZero() {
		orderCol = "date_closed"
	}

	query, args := q.build(`
		SELECT trade_id, user_id, symbol, side, leverage, entry_price, reason_entry, image_id, created_at,
		       exit_price, pnl_pct, reason_exit, date_closed
		FROM swing_trades`, tableSpec{idCol: "trade_id", timeCol: "date_closed", orderCol: orderCol, swing: true})

	var trades []models.SwingTrade
	if err := s.db.SelectContext(ctx, &trades, s.db.Rebind(query), args...); err != nil {
		return nil, fmt.Errorf("failed to query swing trades: %w", err)
	}

	return trades, nil
}

// === Aliases ===

// GetAlias возвращает псевдоним пользователя или ErrAliasNotFound
func (s *Store) GetAlias(ctx context.Context, userID int64) (string, error) {
	var alias string

	err := s.db.GetContext(ctx, &alias, s.db.Rebind(`SELECT alias FROM user_aliases WHERE user_id = ?`), userID)
	if errors.Is(err, sql.ErrNoRows) {
		return "", ErrAliasNotFound
	}
	if err != nil {
		return "", fmt.Errorf("failed to get alias: %w", err)
	}

	return alias, nil
}

// CreateAlias сохраняет псевдоним. Существующий псевдоним не перезаписывается,
// возвращается тот, что уже лежит в БД.
func (s *Store) CreateAlias(ctx context.Context, userID int64, alias string) (string, error) {
	_, err := s.db.ExecContext(ctx, s.db.Rebind(`
		INSERT INTO user_aliases (user_id, alias, created_at)
		VALUES (?, ?, ?)
		ON CONFLICT (user_id) DO NOTHING
	`), userID, alias, time.Now().UTC())
	if err != nil {
		return "", fmt.Errorf("failed to create alias: %w", err)
	}

	stored, err := s.GetAlias(ctx, userID)
	if err != nil {
		return "", err
	}

	if stored == alias {
		s.logger.Info("✅ Alias created",
			slog.Int64("user_id", userID),
			slog.String("alias", alias))
	}

	return stored, nil
}

// === Sector candles ===

// UpsertSectorCandle сохраняет свечу, перезаписывая close у существующей
func (s *Store) UpsertSectorCandle(ctx context.Context, c models.SectorCandle) error {
	c.CandleTime = c.CandleTime.UTC()

	_, err := s.db.NamedExecContext(ctx, `
		INSERT INTO sector_candles (symbol, candle_interval, candle_time, close)
		VALUES (:symbol, :candle_interval, :candle_time, :close)
		ON CONFLICT (symbol, candle_interval, candle_time) DO UPDATE SET close = excluded.close
	`, c)
	if err != nil {
		return fmt.Errorf("failed to upsert sector candle: %w", err)
	}

	s.logger.Debug("💾 Sector candle saved",
		slog.String("symbol", c.Symbol),
		slog.String("interval", c.Interval),
		slog.Time("time", c.CandleTime))

	return nil
}

// TrimSectorCandles оставляет keep последних свечей по (symbol, interval)
func (s *Store) TrimSectorCandles(ctx context.Context, symbol, interval string, keep int) error {
	_, err := s.db.ExecContext(ctx, s.db.Rebind(`
		DELETE FROM sector_candles
		WHERE symbol = ? AND candle_interval = ?
		  AND candle_time NOT IN (
		      SELECT candle_time FROM sector_candles
		      WHERE symbol = ? AND candle_interval = ?
		      ORDER BY candle_time DESC
		      LIMIT ?
		  )
	`), symbol, interval, symbol, interval, keep)
	if err != nil {
		return fmt.Errorf("failed to trim sector candles: %w", err)
	}

	return nil
}

// LatestSectorCandle возвращает последнюю свечу в окне [from, to]. ok == false, если свечей нет.
func (s *Store) LatestSectorCandle(ctx context.Context, symbol, interval string, from, to time.Time) (models.SectorCandle, bool, error) {
	var c models.SectorCandle

	err := s.db.GetContext(ctx, &c, s.db.Rebind(`
		SELECT symbol, candle_interval, candle_time, close
		FROM sector_candles
		WHERE symbol = ? AND candle_interval = ? AND candle_time >= ? AND candle_time <= ?
		ORDER BY candle_time DESC
		LIMIT 1
	`), symbol, interval, from.UTC(), to.UTC())
	if errors.Is(err, sql.ErrNoRows) {
		return models.SectorCandle{}, false, nil
	}
	if err != nil {
		return models.SectorCandle{}, false, fmt.Errorf("failed to get sector candle: %w", err)
	}

	return c, true, nil
}

// SectorCandles возвращает сохранённые свечи по (symbol, interval), новые первыми
func (s *Store) SectorCandles(ctx context.Context, symbol, interval string) ([]models.SectorCandle, error) {
	var candles []models.SectorCandle

	err := s.db.SelectContext(ctx, &candles, s.db.Rebind(`
		SELECT symbol, candle_interval, candle_time, close
		FROM sector_candles
		WHERE symbol = ? AND candle_interval = ?
		ORDER BY candle_time DESC
	`), symbol, interval)
	if err != nil {
		return nil, fmt.Errorf("failed to list sector candles: %w", err)
	}

	return candles, nil
}
