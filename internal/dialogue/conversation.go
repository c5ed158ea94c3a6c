package dialogue

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"tg_journal/internal/id"
	"tg_journal/internal/models"
	"tg_journal/internal/stats"
	"tg_journal/internal/storage"
)

// Store - операции хранилища, нужные диалогу
type Store interface {
	InsertScalpTrade(ctx context.Context, t models.ScalpTrade) error
	InsertSwingTrade(ctx context.Context, t models.SwingTrade) error
	GetSwingTrade(ctx context.Context, tradeID string) (*models.SwingTrade, error)
	CloseSwingTrade(ctx context.Context, tradeID string, c models.SwingClose) error
	QuerySwingTrades(ctx context.Context, q storage.TradeQuery) ([]models.SwingTrade, error)
}

// Messenger - исходящие сообщения в чат
type Messenger interface {
	SendText(ctx context.Context, chatID int64, text string, kb *models.Keyboard) (int, error)
	SendPhoto(ctx context.Context, chatID int64, photo models.Photo, caption string, kb *models.Keyboard) (int, error)
	Delete(ctx context.Context, chatID int64, messageID int) error
}

// Conversation исполняет эффекты Machine: сохраняет записи, отправляет
// и удаляет сообщения, хранит сессии
type Conversation struct {
	machine   Machine
	sessions  *Sessions
	store     Store
	messenger Messenger
	now       func() time.Time
	logger    *slog.Logger
}

// NewConversation создает Conversation
func NewConversation(store Store, messenger Messenger, sessions *Sessions, loc *time.Location, logger *slog.Logger) *Conversation {
	return &Conversation{
		machine:   NewMachine(loc),
		sessions:  sessions,
		store:     store,
		messenger: messenger,
		now:       time.Now,
		logger:    logger,
	}
}

// Active сообщает, идёт ли в чате диалог
func (c *Conversation) Active(chatID int64) bool {
	_, ok := c.sessions.Get(chatID)
	return ok
}

// Handle обрабатывает событие чата. Вызывается последовательно.
func (c *Conversation) Handle(ctx context.Context, chatID, userID int64, in Input) {
	s, ok := c.sessions.Get(chatID)
	if !ok {
		s = NewSession(chatID, userID)
	}
	s.UserID = userID

	prev := s.State
	out := c.machine.Step(s, in)

	if prev != s.State {
		c.logger.Debug("💬 Dialogue transition",
			slog.Int64("chat_id", chatID),
			slog.String("flow", s.Flow.String()),
			slog.String("from", prev.String()),
			slog.String("to", s.State.String()))
	}

	c.apply(ctx, s, out)
}

func (c *Conversation) apply(ctx context.Context, s *Session, out Outcome) {
	if out.Purge {
		c.purge(ctx, s)
	}

	if out.Commit != CommitNone {
		c.apply(ctx, s, c.commit(ctx, s, out.Commit))
		return
	}

	if out.Reply != nil {
		if msgID, err := c.send(ctx, s.ChatID, out.Reply); err == nil {
			s.TrackBot(msgID)
		}
	}

	if out.Notice != nil {
		_, _ = c.send(ctx, s.ChatID, out.Notice)
	}

	if out.End {
		c.sessions.Delete(s.ChatID)
		return
	}

	c.sessions.Put(s)
}

func (c *Conversation) commit(ctx context.Context, s *Session, commit Commit) Outcome {
	now := c.now()

	switch commit {
	case CommitScalp:
		d := s.Scalp
		t := models.ScalpTrade{
			ID:        id.NewAt(now),
			UserID:    s.UserID,
			Symbol:    d.Symbol,
			Side:      d.Side,
			Leverage:  d.Leverage,
			PnLPct:    d.PnLPct,
			Reason:    d.Reason,
			ImageID:   d.ImageID,
			CreatedAt: now,
		}

		if err := c.store.InsertScalpTrade(ctx, t); err != nil {
			c.logger.Error("❌ Failed to save scalp trade",
				slog.Int64("user_id", s.UserID),
				slog.Any("error", err))
			return c.machine.CommitFailed(s)
		}

		return c.machine.ScalpCommitted(s, t)

	case CommitSwingEntry:
		d := s.Swing
		t := models.SwingTrade{
			ID:          id.NewAt(now),
			UserID:      s.UserID,
			Symbol:      d.Symbol,
			Side:        d.Side,
			Leverage:    d.Leverage,
			EntryPrice:  d.EntryPrice,
			ReasonEntry: d.Reason,
			ImageID:     d.ImageID,
			CreatedAt:   now,
		}

		if err := c.store.InsertSwingTrade(ctx, t); err != nil {
			c.logger.Error("❌ Failed to save swing trade",
				slog.Int64("user_id", s.UserID),
				slog.Any("error", err))
			return c.machine.CommitFailed(s)
		}

		return c.machine.SwingCommitted(s, t)

	case CommitListOpen:
		trades, err := c.store.QuerySwingTrades(ctx, storage.TradeQuery{Status: storage.StatusOpen})
		if err != nil {
			c.logger.Error("❌ Failed to list open swing trades", slog.Any("error", err))
		}

		return c.machine.OpenTrades(s, trades)

	case CommitSwingExit:
		return c.closeSwing(ctx, s, now)
	}

	return Outcome{}
}

func (c *Conversation) closeSwing(ctx context.Context, s *Session, now time.Time) Outcome {
	d := s.Exit

	trade, err := c.store.GetSwingTrade(ctx, d.TradeID)
	if errors.Is(err, storage.ErrTradeNotFound) || (err == nil && !trade.IsOpen()) {
		return c.machine.ExitRejected(s)
	}
	if err != nil {
		c.logger.Error("❌ Failed to load swing trade",
			slog.String("trade_id", d.TradeID),
			slog.Any("error", err))
		return c.machine.CommitFailed(s)
	}

	cl := models.SwingClose{
		ExitPrice:  d.ExitPrice,
		PnLPct:     stats.SwingPnL(trade.Side, trade.EntryPrice, d.ExitPrice, trade.Leverage),
		ReasonExit: d.Reason,
		ClosedAt:   now,
	}

	err = c.store.CloseSwingTrade(ctx, trade.ID, cl)
	switch {
	case errors.Is(err, storage.ErrTradeNotFound), errors.Is(err, storage.ErrTradeClosed):
		return c.machine.ExitRejected(s)
	case err != nil:
		c.logger.Error("❌ Failed to close swing trade",
			slog.String("trade_id", trade.ID),
			slog.Any("error", err))
		return c.machine.CommitFailed(s)
	}

	return c.machine.ExitCommitted(s, *trade, cl)
}

// purge удаляет все отслеживаемые сообщения сессии. Ошибки удаления игнорируются.
func (c *Conversation) purge(ctx context.Context, s *Session) {
	for _, msgID := range s.Transcript() {
		if err := c.messenger.Delete(ctx, s.ChatID, msgID); err != nil {
			c.logger.Debug("Failed to delete message",
				slog.Int64("chat_id", s.ChatID),
				slog.Int("message_id", msgID),
				slog.Any("error", err))
		}
	}
}

func (c *Conversation) send(ctx context.Context, chatID int64, r *Reply) (int, error) {
	var (
		msgID int
		err   error
	)

	if r.PhotoID != "" {
		msgID, err = c.messenger.SendPhoto(ctx, chatID, models.Photo{FileID: r.PhotoID}, r.Text, r.Keyboard)
	} else {
		msgID, err = c.messenger.SendText(ctx, chatID, r.Text, r.Keyboard)
	}

	if err != nil {
		c.logger.Warn("⚠️ Failed to send message",
			slog.Int64("chat_id", chatID),
			slog.Any("error", err))
	}

	return msgID, err
}
