package handlers

import (
	"context"
	"fmt"
	"html"
	"log/slog"
	"time"

	"tg_journal/internal/dialogue"
	"tg_journal/internal/models"
	"tg_journal/internal/report"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

const updateTimeout = 15 * time.Second

const (
	textWelcome = "👋 Welcome to the trading journal bot!\n" +
		"👉 Your alias is <b>%s</b>.\n" +
		"Reports show you under this alias."
	textHelp = "📓 Scalp journal: record a closed short-term trade\n" +
		"🕰 Swing journal: open a long-term position or close one\n" +
		"📊 Statistics: your win rate and profit factor\n" +
		"/cancel stops the current entry."
)

const (
	textUseMenu     = "Choose an option from the menu below."
	textStatsFailed = "⚠️ Could not load statistics. Please try again later."
	textAliasFailed = "⚠️ Could not assign an alias. Please try /start again later."
	textPrivateOnly = "The journal works in private chats only."
)

// Messenger - исходящие сообщения бота
type Messenger interface {
	SendText(ctx context.Context, chatID int64, text string, kb *models.Keyboard) (int, error)
	AnswerCallback(ctx context.Context, callbackID, text string) error
}

// Dialogue - диалоги ввода сделок
type Dialogue interface {
	Active(chatID int64) bool
	Handle(ctx context.Context, chatID, userID int64, in dialogue.Input)
}

// Aliases выдаёт псевдонимы пользователям
type Aliases interface {
	GetOrCreate(ctx context.Context, userID int64) (string, error)
}

// Statistics считает статистику пользователя
type Statistics interface {
	ForUser(ctx context.Context, userID int64) (*report.UserStats, error)
}

// Handler обрабатывает обновления бота
type Handler struct {
	messenger Messenger
	dialogue  Dialogue
	aliases   Aliases
	stats     Statistics
	logger    *slog.Logger
}

// New создает новый обработчик
func New(messenger Messenger, dialogue Dialogue, aliases Aliases, stats Statistics, logger *slog.Logger) *Handler {
	return &Handler{
		messenger: messenger,
		dialogue:  dialogue,
		aliases:   aliases,
		stats:     stats,
		logger:    logger,
	}
}

// HandleUpdate обрабатывает обновление от Telegram. Обновления одного чата
// должны приходить последовательно.
func (h *Handler) HandleUpdate(ctx context.Context, update tgbotapi.Update) {
	ctx, cancel := context.WithTimeout(ctx, updateTimeout)
	defer cancel()

	switch {
	case update.CallbackQuery != nil:
		h.handleCallback(ctx, update.CallbackQuery)
	case update.Message != nil:
		h.handleMessage(ctx, update.Message)
	}
}

func (h *Handler) handleCallback(ctx context.Context, cq *tgbotapi.CallbackQuery) {
	if err := h.messenger.AnswerCallback(ctx, cq.ID, ""); err != nil {
		h.logger.Debug("Failed to answer callback", slog.Any("error", err))
	}

	if cq.Message == nil || cq.From == nil {
		return
	}

	chatID := cq.Message.Chat.ID
	if !h.dialogue.Active(chatID) {
		return
	}

	h.dialogue.Handle(ctx, chatID, cq.From.ID, dialogue.Input{
		Kind:         dialogue.InputCallback,
		CallbackData: cq.Data,
	})
}

func (h *Handler) handleMessage(ctx context.Context, msg *tgbotapi.Message) {
	if msg.From == nil || msg.Chat == nil {
		return
	}

	chatID := msg.Chat.ID
	userID := msg.From.ID

	if !msg.Chat.IsPrivate() {
		if msg.IsCommand() && msg.Command() == "start" {
			h.reply(ctx, chatID, textPrivateOnly, nil)
		}
		return
	}

	if msg.IsCommand() {
		h.logger.Info("Command received",
			slog.Int64("chat_id", chatID),
			slog.String("command", msg.Command()))

		switch msg.Command() {
		case "start":
			h.handleStart(ctx, chatID, userID)
			return
		case "help":
			h.reply(ctx, chatID, textHelp, dialogue.MainKeyboard())
			return
		}
	}

	if msg.Text == dialogue.BtnStats {
		h.handleStats(ctx, chatID, userID)
		return
	}

	in, ok := input(msg)
	if !ok {
		return
	}

	if !h.dialogue.Active(chatID) && !startsDialogue(in) {
		h.reply(ctx, chatID, textUseMenu, dialogue.MainKeyboard())
		return
	}

	h.dialogue.Handle(ctx, chatID, userID, in)
}

func (h *Handler) handleStart(ctx context.Context, chatID, userID int64) {
	alias, err := h.aliases.GetOrCreate(ctx, userID)
	if err != nil {
		h.logger.Error("Failed to get alias",
			slog.Int64("user_id", userID),
			slog.Any("error", err))
		h.reply(ctx, chatID, textAliasFailed, dialogue.MainKeyboard())

		return
	}

	h.reply(ctx, chatID, fmt.Sprintf(textWelcome, html.EscapeString(alias)), dialogue.MainKeyboard())
}

func (h *Handler) handleStats(ctx context.Context, chatID, userID int64) {
	us, err := h.stats.ForUser(ctx, userID)
	if err != nil {
		h.logger.Error("Failed to compute user statistics",
			slog.Int64("user_id", userID),
			slog.Any("error", err))
		h.reply(ctx, chatID, textStatsFailed, nil)

		return
	}

	h.reply(ctx, chatID, report.FormatUserStats(us), nil)
}

func (h *Handler) reply(ctx context.Context, chatID int64, text string, kb *models.Keyboard) {
	if _, err := h.messenger.SendText(ctx, chatID, text, kb); err != nil {
		h.logger.Warn("Failed to reply", slog.Int64("chat_id", chatID), slog.Any("error", err))
	}
}

// input переводит сообщение в событие диалога. Для фото берётся самое большое разрешение.
func input(msg *tgbotapi.Message) (dialogue.Input, bool) {
	switch {
	case len(msg.Photo) > 0:
		return dialogue.Input{
			Kind:      dialogue.InputPhoto,
			PhotoID:   msg.Photo[len(msg.Photo)-1].FileID,
			MessageID: msg.MessageID,
		}, true
	case msg.Text != "":
		return dialogue.Input{
			Kind:      dialogue.InputText,
			Text:      msg.Text,
			MessageID: msg.MessageID,
		}, true
	default:
		return dialogue.Input{}, false
	}
}

func startsDialogue(in dialogue.Input) bool {
	if in.Kind != dialogue.InputText {
		return false
	}

	return in.Text == dialogue.BtnScalp || in.Text == dialogue.BtnSwing || dialogue.IsCancel(in.Text)
}
