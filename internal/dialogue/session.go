package dialogue

import (
	"time"

	"tg_journal/internal/models"
)

// ScalpDraft - поля scalp сделки, собираемые по шагам
type ScalpDraft struct {
	ImageID  string
	Symbol   string
	Side     models.Side
	Leverage float64
	PnLPct   float64
	Reason   string
}

// SwingDraft - поля открытия swing сделки
type SwingDraft struct {
	ImageID    string
	Symbol     string
	Side       models.Side
	Leverage   float64
	EntryPrice float64
	Reason     string
}

// ExitDraft - поля закрытия swing сделки
type ExitDraft struct {
	TradeID   string
	ExitPrice float64
	Reason    string
}

// Session - состояние диалога одного чата. Живёт только в памяти.
type Session struct {
	ChatID int64
	UserID int64

	Flow  Flow
	State State

	Scalp *ScalpDraft
	Swing *SwingDraft
	Exit  *ExitDraft

	// сообщения, которые удаляются по завершении или отмене
	BotMessages      []int
	UserMessages     []int
	UserImageMessage int

	UpdatedAt time.Time
}

// NewSession создает пустую сессию чата
func NewSession(chatID, userID int64) *Session {
	return &Session{
		ChatID: chatID,
		UserID: userID,
		State:  StateIdle,
	}
}

// begin переводит сессию в начало сценария, сбрасывая черновики
func (s *Session) begin(flow Flow, state State) {
	s.Flow = flow
	s.State = state
	s.Scalp = nil
	s.Swing = nil
	s.Exit = nil

	switch flow {
	case FlowScalp:
		s.Scalp = &ScalpDraft{}
	case FlowSwingEntry:
		s.Swing = &SwingDraft{}
	case FlowSwingExit:
		s.Exit = &ExitDraft{}
	}
}

// toSwingMenu возвращает сессию в меню swing журнала
func (s *Session) toSwingMenu() {
	s.begin(FlowNone, StateSwingMenu)
}

// trackUser запоминает сообщение пользователя для последующей очистки
func (s *Session) trackUser(messageID int) {
	if messageID != 0 {
		s.UserMessages = append(s.UserMessages, messageID)
	}
}

// TrackBot запоминает сообщение бота для последующей очистки
func (s *Session) TrackBot(messageID int) {
	if messageID != 0 {
		s.BotMessages = append(s.BotMessages, messageID)
	}
}

// Transcript возвращает все отслеживаемые сообщения и забывает их
func (s *Session) Transcript() []int {
	ids := make([]int, 0, len(s.BotMessages)+len(s.UserMessages)+1)
	ids = append(ids, s.BotMessages...)
	ids = append(ids, s.UserMessages...)
	if s.UserImageMessage != 0 {
		ids = append(ids, s.UserImageMessage)
	}

	s.BotMessages = nil
	s.UserMessages = nil
	s.UserImageMessage = 0

	return ids
}
