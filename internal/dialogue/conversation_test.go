package dialogue

import (
	"context"
	"io"
	"log/slog"
	"path/filepath"
	"sort"
	"testing"
	"time"

	"tg_journal/internal/models"
	"tg_journal/internal/storage"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type sentMessage struct {
	ID       int
	Text     string
	PhotoID  string
	Keyboard *models.Keyboard
}

type fakeMessenger struct {
	next    int
	sent    []sentMessage
	deleted []int
}

func (f *fakeMessenger) SendText(_ context.Context, _ int64, text string, kb *models.Keyboard) (int, error) {
	f.next++
	f.sent = append(f.sent, sentMessage{ID: 100 + f.next, Text: text, Keyboard: kb})
	return 100 + f.next, nil
}

func (f *fakeMessenger) SendPhoto(_ context.Context, _ int64, p models.Photo, caption string, kb *models.Keyboard) (int, error) {
	f.next++
	f.sent = append(f.sent, sentMessage{ID: 100 + f.next, Text: caption, PhotoID: p.FileID, Keyboard: kb})
	return 100 + f.next, nil
}

func (f *fakeMessenger) Delete(_ context.Context, _ int64, messageID int) error {
	f.deleted = append(f.deleted, messageID)
	return nil
}

// visible возвращает сообщения бота, которые не были удалены
func (f *fakeMessenger) visible() []sentMessage {
	gone := make(map[int]bool, len(f.deleted))
	for _, id := range f.deleted {
		gone[id] = true
	}

	var out []sentMessage
	for _, m := range f.sent {
		if !gone[m.ID] {
			out = append(out, m)
		}
	}

	return out
}

type harness struct {
	conv      *Conversation
	store     *storage.Store
	messenger *fakeMessenger
	sessions  *Sessions
}

const (
	chatID = int64(555)
	userID = int64(777)
)

func newHarness(t *testing.T) *harness {
	t.Helper()

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	store, err := storage.New(storage.DriverSQLite, filepath.Join(t.TempDir(), "journal.db"), logger)
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })

	messenger := &fakeMessenger{}
	sessions := NewSessions(time.Hour, 100, logger)
	conv := NewConversation(store, messenger, sessions, time.UTC, logger)
	conv.now = func() time.Time { return time.Date(2025, 5, 1, 13, 30, 0, 0, time.UTC) }

	return &harness{conv: conv, store: store, messenger: messenger, sessions: sessions}
}

func (h *harness) feed(inputs ...Input) {
	for _, in := range inputs {
		h.conv.Handle(context.Background(), chatID, userID, in)
	}
}

func TestScalpEndToEnd(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()

	h.feed(
		text(1, BtnScalp),
		photo(2, "chart-file"),
		text(3, "BTC"),
		text(4, "롱/long"),
		text(5, "3"),
		text(6, "12"),
		text(7, "breakout"),
	)

	trades, err := h.store.QueryScalpTrades(ctx, storage.TradeQuery{})
	require.NoError(t, err)
	require.Len(t, trades, 1)
	assert.Equal(t, userID, trades[0].UserID)
	assert.Equal(t, "BTC", trades[0].Symbol)
	assert.Equal(t, models.SideLong, trades[0].Side)
	assert.Equal(t, 3.0, trades[0].Leverage)
	assert.Equal(t, 12.0, trades[0].PnLPct)
	assert.Equal(t, "breakout", trades[0].Reason)
	assert.Equal(t, "chart-file", trades[0].ImageID)

	visible := h.messenger.visible()
	require.Len(t, visible, 1)
	assert.Equal(t, "chart-file", visible[0].PhotoID)
	assert.Contains(t, visible[0].Text, "- Result: 12%")
	assert.Contains(t, visible[0].Text, "- Date: 2025-05-01 13:30")
	assert.Equal(t, MainKeyboard(), visible[0].Keyboard)

	deleted := append([]int(nil), h.messenger.deleted...)
	sort.Ints(deleted)
	assert.Equal(t, []int{1, 2, 3, 4, 5, 6, 7, 101, 102, 103, 104, 105, 106}, deleted)

	assert.False(t, h.conv.Active(chatID))
}

func TestSwingEntryAndExitEndToEnd(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()

	h.feed(
		text(1, BtnSwing),
		text(2, BtnNewEntry),
		photo(3, "eth-chart"),
		text(4, "eth"),
		text(5, "short"),
		text(6, "2"),
		text(7, "2000"),
		text(8, "breakdown"),
	)

	open, err := h.store.QuerySwingTrades(ctx, storage.TradeQuery{Status: storage.StatusOpen})
	require.NoError(t, err)
	require.Len(t, open, 1)
	assert.Equal(t, "ETH", open[0].Symbol)

	s, ok := h.sessions.Get(chatID)
	require.True(t, ok)
	assert.Equal(t, StateSwingMenu, s.State)

	h.feed(text(9, BtnClose))

	last := h.messenger.sent[len(h.messenger.sent)-1]
	require.NotNil(t, last.Keyboard)
	require.Len(t, last.Keyboard.Inline, 1)
	assert.Equal(t, open[0].ID, last.Keyboard.Inline[0][0].Data)

	h.feed(
		Input{Kind: InputCallback, CallbackData: open[0].ID},
		text(10, "1800"),
		text(11, "target"),
	)

	closed, err := h.store.GetSwingTrade(ctx, open[0].ID)
	require.NoError(t, err)
	require.NotNil(t, closed.PnLPct)
	assert.Equal(t, 20.0, *closed.PnLPct)
	assert.Equal(t, "target", *closed.ReasonExit)

	visible := h.messenger.visible()
	require.Len(t, visible, 2)
	assert.Equal(t, "eth-chart", visible[0].PhotoID)
	assert.Contains(t, visible[1].Text, "- Result: 20%")
	assert.Equal(t, SwingKeyboard(), visible[1].Keyboard)

	s, ok = h.sessions.Get(chatID)
	require.True(t, ok)
	assert.Equal(t, StateSwingMenu, s.State)

	h.feed(text(12, BtnClose))
	last = h.messenger.sent[len(h.messenger.sent)-1]
	assert.Equal(t, textNoOpen, last.Text)

	s, ok = h.sessions.Get(chatID)
	require.True(t, ok)
	assert.Equal(t, StateSwingMenu, s.State)
}

func TestExitOfAlreadyClosedTrade(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()

	trade := models.SwingTrade{
		ID: "01JTESTTRADE0000000000000A", UserID: 1, Symbol: "BTC", Side: models.SideLong,
		Leverage: 1, EntryPrice: 100, CreatedAt: time.Now(),
	}
	require.NoError(t, h.store.InsertSwingTrade(ctx, trade))

	h.feed(
		text(1, BtnSwing),
		text(2, BtnClose),
		Input{Kind: InputCallback, CallbackData: trade.ID},
		text(3, "110"),
	)

	// позицию закрыли из другого чата
	require.NoError(t, h.store.CloseSwingTrade(ctx, trade.ID, models.SwingClose{
		ExitPrice: 120, PnLPct: 20, ReasonExit: "other", ClosedAt: time.Now(),
	}))

	h.feed(text(4, "late"))

	last := h.messenger.sent[len(h.messenger.sent)-1]
	assert.Equal(t, textNotFound, last.Text)

	got, err := h.store.GetSwingTrade(ctx, trade.ID)
	require.NoError(t, err)
	assert.Equal(t, 20.0, *got.PnLPct)

	s, ok := h.sessions.Get(chatID)
	require.True(t, ok)
	assert.Equal(t, StateSwingMenu, s.State)
}

func TestCancelPurgesTranscript(t *testing.T) {
	h := newHarness(t)

	h.feed(
		text(1, BtnScalp),
		photo(2, "f"),
		text(3, "SOL"),
		text(4, BtnCancel),
	)

	visible := h.messenger.visible()
	require.Len(t, visible, 1)
	assert.Equal(t, textCancelled, visible[0].Text)
	assert.ElementsMatch(t, []int{1, 2, 3, 4, 101, 102, 103}, h.messenger.deleted)
	assert.False(t, h.conv.Active(chatID))
}

func TestValidationRepromptKeepsState(t *testing.T) {
	h := newHarness(t)

	h.feed(
		text(1, BtnScalp),
		photo(2, "f"),
		text(3, "BTC"),
		text(4, "sideways"),
	)

	s, ok := h.sessions.Get(chatID)
	require.True(t, ok)
	assert.Equal(t, StateScalpSide, s.State)

	last := h.messenger.sent[len(h.messenger.sent)-1]
	assert.Equal(t, errSide, last.Text)
	assert.Contains(t, s.BotMessages, last.ID)
}
