package telegram

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"

	"tg_journal/internal/models"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

const (
	parseModeHTML = "HTML"
	updatesBuffer = 100
)

// Commands - команды меню бота
var Commands = []tgbotapi.BotCommand{
	{Command: "start", Description: "Open the journal menu"},
	{Command: "cancel", Description: "Cancel the current entry"},
	{Command: "help", Description: "How to use the journal"},
}

// Service управляет Telegram ботом и реализует исходящие сообщения
type Service struct {
	bot         *tgbotapi.BotAPI
	logger      *slog.Logger
	updatesChan chan tgbotapi.Update
}

// New создает новый Telegram сервис. client может быть nil.
func New(token string, client *http.Client, logger *slog.Logger) (*Service, error) {
	return newService(token, tgbotapi.APIEndpoint, client, logger)
}

func newService(token, endpoint string, client *http.Client, logger *slog.Logger) (*Service, error) {
	if client == nil {
		client = &http.Client{}
	}

	bot, err := tgbotapi.NewBotAPIWithClient(token, endpoint, client)
	if err != nil {
		return nil, fmt.Errorf("authorize bot: %w", err)
	}

	logger.Info("✅ Bot authorized", slog.String("username", bot.Self.UserName))

	return &Service{
		bot:         bot,
		logger:      logger,
		updatesChan: make(chan tgbotapi.Update, updatesBuffer),
	}, nil
}

// Username возвращает имя бота
func (s *Service) Username() string {
	return s.bot.Self.UserName
}

// SetCommands устанавливает команды для меню
func (s *Service) SetCommands(commands []tgbotapi.BotCommand) error {
	if _, err := s.bot.Request(tgbotapi.NewSetMyCommands(commands...)); err != nil {
		return fmt.Errorf("set commands: %w", err)
	}

	s.logger.Info("✅ Bot commands set", slog.Int("count", len(commands)))

	return nil
}

// GetUpdatesChan возвращает канал обновлений в режиме polling
func (s *Service) GetUpdatesChan() tgbotapi.UpdatesChannel {
	u := tgbotapi.NewUpdate(0)
	u.Timeout = 60

	return s.bot.GetUpdatesChan(u)
}

// StopReceivingUpdates останавливает polling
func (s *Service) StopReceivingUpdates() {
	s.bot.StopReceivingUpdates()
}

// SetWebhook устанавливает webhook для получения обновлений
func (s *Service) SetWebhook(webhookURL string) error {
	wh, err := tgbotapi.NewWebhook(webhookURL)
	if err != nil {
		return fmt.Errorf("webhook config: %w", err)
	}

	if _, err = s.bot.Request(wh); err != nil {
		return fmt.Errorf("set webhook: %w", err)
	}

	info, err := s.bot.GetWebhookInfo()
	if err != nil {
		return fmt.Errorf("webhook info: %w", err)
	}

	if info.LastErrorDate != 0 {
		s.logger.Warn("Telegram webhook error", slog.String("error", info.LastErrorMessage))
	}

	s.logger.Info("✅ Webhook set successfully", slog.String("url", webhookURL))

	return nil
}

// DeleteWebhook удаляет webhook (для переключения на polling)
func (s *Service) DeleteWebhook() error {
	if _, err := s.bot.Request(tgbotapi.DeleteWebhookConfig{}); err != nil {
		return fmt.Errorf("delete webhook: %w", err)
	}

	s.logger.Info("✅ Webhook deleted")

	return nil
}

// WebhookHandler возвращает http.Handler, который кладёт обновления в канал webhook
func (s *Service) WebhookHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		update, err := s.bot.HandleUpdate(r)
		if err != nil {
			s.logger.Warn("Failed to decode webhook update", slog.Any("error", err))
			w.WriteHeader(http.StatusBadRequest)

			return
		}

		select {
		case s.updatesChan <- *update:
			w.WriteHeader(http.StatusOK)
		case <-r.Context().Done():
			w.WriteHeader(http.StatusServiceUnavailable)
		}
	})
}

// WebhookUpdatesChan возвращает канал для webhook обновлений
func (s *Service) WebhookUpdatesChan() tgbotapi.UpdatesChannel {
	return s.updatesChan
}

// SendText отправляет HTML сообщение и возвращает его id
func (s *Service) SendText(ctx context.Context, chatID int64, text string, kb *models.Keyboard) (int, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}

	msg := tgbotapi.NewMessage(chatID, text)
	msg.ParseMode = parseModeHTML
	if markup := replyMarkup(kb); markup != nil {
		msg.ReplyMarkup = markup
	}

	sent, err := s.bot.Send(msg)
	if err != nil {
		s.logger.Warn("Failed to send message", slog.Int64("chat_id", chatID), slog.Any("error", err))
		return 0, fmt.Errorf("send message: %w", err)
	}

	return sent.MessageID, nil
}

// SendPhoto отправляет фото по file id или байтам с HTML подписью
func (s *Service) SendPhoto(ctx context.Context, chatID int64, photo models.Photo, caption string, kb *models.Keyboard) (int, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}

	var file tgbotapi.RequestFileData
	switch {
	case photo.FileID != "":
		file = tgbotapi.FileID(photo.FileID)
	case len(photo.Bytes) > 0:
		file = tgbotapi.FileBytes{Name: photo.Name, Bytes: photo.Bytes}
	default:
		return 0, fmt.Errorf("send photo: empty photo")
	}

	msg := tgbotapi.NewPhoto(chatID, file)
	msg.Caption = caption
	msg.ParseMode = parseModeHTML
	if markup := replyMarkup(kb); markup != nil {
		msg.ReplyMarkup = markup
	}

	sent, err := s.bot.Send(msg)
	if err != nil {
		s.logger.Warn("Failed to send photo", slog.Int64("chat_id", chatID), slog.Any("error", err))
		return 0, fmt.Errorf("send photo: %w", err)
	}

	return sent.MessageID, nil
}

// Delete удаляет сообщение. Ошибки только логируются на уровне debug.
func (s *Service) Delete(ctx context.Context, chatID int64, messageID int) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	if _, err := s.bot.Request(tgbotapi.NewDeleteMessage(chatID, messageID)); err != nil {
		s.logger.Debug("Failed to delete message",
			slog.Int64("chat_id", chatID),
			slog.Int("message_id", messageID),
			slog.Any("error", err))

		return fmt.Errorf("delete message: %w", err)
	}

	return nil
}

// AnswerCallback подтверждает нажатие inline кнопки
func (s *Service) AnswerCallback(ctx context.Context, callbackID, text string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	if _, err := s.bot.Request(tgbotapi.NewCallback(callbackID, text)); err != nil {
		return fmt.Errorf("answer callback: %w", err)
	}

	return nil
}

func replyMarkup(kb *models.Keyboard) any {
	if kb == nil {
		return nil
	}

	switch {
	case kb.Remove:
		return tgbotapi.NewRemoveKeyboard(false)
	case len(kb.Inline) > 0:
		rows := make([][]tgbotapi.InlineKeyboardButton, 0, len(kb.Inline))
		for _, r := range kb.Inline {
			row := make([]tgbotapi.InlineKeyboardButton, 0, len(r))
			for _, b := range r {
				row = append(row, tgbotapi.NewInlineKeyboardButtonData(b.Text, b.Data))
			}
			rows = append(rows, row)
		}
		return tgbotapi.NewInlineKeyboardMarkup(rows...)
	case len(kb.Reply) > 0:
		rows := make([][]tgbotapi.KeyboardButton, 0, len(kb.Reply))
		for _, r := range kb.Reply {
			row := make([]tgbotapi.KeyboardButton, 0, len(r))
			for _, text := range r {
				row = append(row, tgbotapi.NewKeyboardButton(text))
			}
			rows = append(rows, row)
		}
		markup := tgbotapi.NewReplyKeyboard(rows...)
		markup.ResizeKeyboard = true
		return markup
	}

	return nil
}
