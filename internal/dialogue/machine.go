package dialogue

import (
	"fmt"
	"time"

	"tg_journal/internal/models"
)

// InputKind - тип входящего события
type InputKind int

const (
	InputText InputKind = iota
	InputPhoto
	InputCallback
)

// Input - одно входящее событие чата
type Input struct {
	Kind         InputKind
	Text         string
	PhotoID      string
	CallbackData string
	MessageID    int
}

// Commit - запрос на работу с хранилищем, который выполняет Conversation
type Commit int

const (
	CommitNone Commit = iota
	CommitScalp
	CommitSwingEntry
	CommitSwingExit
	CommitListOpen
)

// Reply - исходящее сообщение. Если PhotoID задан, Text уходит подписью к фото.
type Reply struct {
	Text     string
	PhotoID  string
	Keyboard *models.Keyboard
}

// Outcome - эффекты одного перехода. Порядок исполнения: Purge, Commit, Reply, Notice, End.
type Outcome struct {
	// Reply попадает в transcript и удаляется при очистке
	Reply *Reply
	// Notice остаётся в чате
	Notice *Reply
	Commit Commit
	Purge  bool
	End    bool
}

type fieldStep struct {
	expect  InputKind
	apply   func(s *Session, in Input) error
	errText string
	next    State
	commit  Commit
}

var steps = map[State]fieldStep{
	StateScalpImage: {
		expect: InputPhoto,
		apply:  func(s *Session, in Input) error { s.Scalp.ImageID = in.PhotoID; return nil },
		next:   StateScalpSymbol,
	},
	StateScalpSymbol: {
		expect:  InputText,
		apply:   func(s *Session, in Input) (err error) { s.Scalp.Symbol, err = parseSymbol(in.Text); return },
		errText: promptSymbol,
		next:    StateScalpSide,
	},
	StateScalpSide: {
		expect:  InputText,
		apply:   func(s *Session, in Input) (err error) { s.Scalp.Side, err = models.ParseSide(in.Text); return },
		errText: errSide,
		next:    StateScalpLeverage,
	},
	StateScalpLeverage: {
		expect:  InputText,
		apply:   func(s *Session, in Input) (err error) { s.Scalp.Leverage, err = parsePositive(in.Text); return },
		errText: errLeverage,
		next:    StateScalpPnL,
	},
	StateScalpPnL: {
		expect:  InputText,
		apply:   func(s *Session, in Input) (err error) { s.Scalp.PnLPct, err = parseNumber(in.Text); return },
		errText: errPnL,
		next:    StateScalpReason,
	},
	StateScalpReason: {
		expect:  InputText,
		apply:   func(s *Session, in Input) (err error) { s.Scalp.Reason, err = parseText(in.Text); return },
		errText: promptReason,
		commit:  CommitScalp,
	},

	StateSwingImage: {
		expect: InputPhoto,
		apply:  func(s *Session, in Input) error { s.Swing.ImageID = in.PhotoID; return nil },
		next:   StateSwingSymbol,
	},
	StateSwingSymbol: {
		expect:  InputText,
		apply:   func(s *Session, in Input) (err error) { s.Swing.Symbol, err = parseSymbol(in.Text); return },
		errText: promptSymbol,
		next:    StateSwingSide,
	},
	StateSwingSide: {
		expect:  InputText,
		apply:   func(s *Session, in Input) (err error) { s.Swing.Side, err = models.ParseSide(in.Text); return },
		errText: errSide,
		next:    StateSwingLeverage,
	},
	StateSwingLeverage: {
		expect:  InputText,
		apply:   func(s *Session, in Input) (err error) { s.Swing.Leverage, err = parsePositive(in.Text); return },
		errText: errLeverage,
		next:    StateSwingEntryPrice,
	},
	StateSwingEntryPrice: {
		expect:  InputText,
		apply:   func(s *Session, in Input) (err error) { s.Swing.EntryPrice, err = parsePositive(in.Text); return },
		errText: errEntryPrice,
		next:    StateSwingReason,
	},
	StateSwingReason: {
		expect:  InputText,
		apply:   func(s *Session, in Input) (err error) { s.Swing.Reason, err = parseText(in.Text); return },
		errText: promptReason,
		commit:  CommitSwingEntry,
	},

	StateExitPrice: {
		expect:  InputText,
		apply:   func(s *Session, in Input) (err error) { s.Exit.ExitPrice, err = parsePositive(in.Text); return },
		errText: errExitPrice,
		next:    StateExitReason,
	},
	StateExitReason: {
		expect:  InputText,
		apply:   func(s *Session, in Input) (err error) { s.Exit.Reason, err = parseText(in.Text); return },
		errText: promptExitReason,
		commit:  CommitSwingExit,
	},
}

// Machine - функция переходов диалога. Не выполняет ввод-вывод:
// меняет сессию и описывает эффекты в Outcome.
type Machine struct {
	loc *time.Location
}

// NewMachine создает Machine. loc используется для дат в итоговых сообщениях.
func NewMachine(loc *time.Location) Machine {
	if loc == nil {
		loc = time.UTC
	}

	return Machine{loc: loc}
}

// Step обрабатывает одно событие в текущем состоянии сессии
func (m Machine) Step(s *Session, in Input) Outcome {
	if in.Kind == InputText {
		if IsCancel(in.Text) {
			s.trackUser(in.MessageID)
			return m.Cancel(s)
		}

		switch in.Text {
		case BtnScalp:
			s.trackUser(in.MessageID)
			s.begin(FlowScalp, StateScalpImage)
			return Outcome{Purge: true, Reply: &Reply{Text: promptImage}}
		case BtnSwing:
			s.trackUser(in.MessageID)
			s.toSwingMenu()
			return Outcome{Purge: true, Reply: &Reply{Text: textSwingMenu, Keyboard: SwingKeyboard()}}
		}
	}

	switch s.State {
	case StateIdle:
		return Outcome{End: true}
	case StateSwingMenu:
		return m.swingMenu(s, in)
	case StateExitSelect:
		return m.selectTrade(s, in)
	}

	st, ok := steps[s.State]
	if !ok {
		return Outcome{End: true}
	}

	return m.field(s, st, in)
}

// Cancel завершает сессию из любого состояния
func (m Machine) Cancel(s *Session) Outcome {
	s.begin(FlowNone, StateIdle)

	return Outcome{
		Purge:  true,
		End:    true,
		Notice: &Reply{Text: textCancelled, Keyboard: MainKeyboard()},
	}
}

func (m Machine) swingMenu(s *Session, in Input) Outcome {
	if in.Kind == InputCallback {
		return Outcome{}
	}

	s.trackUser(in.MessageID)

	if in.Kind == InputText {
		switch in.Text {
		case BtnNewEntry:
			s.begin(FlowSwingEntry, StateSwingImage)
			return Outcome{Reply: &Reply{Text: promptImage}}
		case BtnClose:
			return Outcome{Commit: CommitListOpen}
		}
	}

	return Outcome{Reply: &Reply{Text: errSwingMenu, Keyboard: SwingKeyboard()}}
}

func (m Machine) selectTrade(s *Session, in Input) Outcome {
	if in.Kind != InputCallback || in.CallbackData == "" {
		s.trackUser(in.MessageID)
		return Outcome{Reply: &Reply{Text: errSelect}}
	}

	s.Exit.TradeID = in.CallbackData
	s.State = StateExitPrice

	return Outcome{Reply: &Reply{Text: fmt.Sprintf(promptExitPrice, in.CallbackData)}}
}

func (m Machine) field(s *Session, st fieldStep, in Input) Outcome {
	if in.Kind == InputCallback {
		return Outcome{}
	}

	if st.expect == InputPhoto {
		if in.Kind != InputPhoto || in.PhotoID == "" {
			s.trackUser(in.MessageID)
			return Outcome{Reply: &Reply{Text: errImage}}
		}
		if s.UserImageMessage != 0 {
			s.trackUser(s.UserImageMessage)
		}
		s.UserImageMessage = in.MessageID
	} else {
		s.trackUser(in.MessageID)
		if in.Kind != InputText {
			return Outcome{Reply: &Reply{Text: errText}}
		}
	}

	if err := st.apply(s, in); err != nil {
		return Outcome{Reply: &Reply{Text: st.errText}}
	}

	if st.commit != CommitNone {
		return Outcome{Commit: st.commit}
	}

	s.State = st.next

	return Outcome{Reply: &Reply{Text: prompts[st.next]}}
}

// OpenTrades показывает список открытых позиций для закрытия.
// Без открытых позиций сессия остаётся в меню swing журнала.
func (m Machine) OpenTrades(s *Session, trades []models.SwingTrade) Outcome {
	if len(trades) == 0 {
		s.toSwingMenu()
		return Outcome{Reply: &Reply{Text: textNoOpen}}
	}

	s.begin(FlowSwingExit, StateExitSelect)

	return Outcome{Reply: &Reply{Text: textOpenList, Keyboard: openTradesKeyboard(trades)}}
}

// ScalpCommitted завершает scalp диалог итоговым фото с подписью
func (m Machine) ScalpCommitted(s *Session, t models.ScalpTrade) Outcome {
	s.begin(FlowNone, StateIdle)

	return Outcome{
		Purge:  true,
		End:    true,
		Notice: &Reply{Text: scalpCaption(t, m.loc), PhotoID: t.ImageID, Keyboard: MainKeyboard()},
	}
}

// SwingCommitted завершает открытие swing сделки и возвращает в меню swing журнала
func (m Machine) SwingCommitted(s *Session, t models.SwingTrade) Outcome {
	s.toSwingMenu()

	return Outcome{
		Purge:  true,
		Notice: &Reply{Text: swingEntryCaption(t, m.loc), PhotoID: t.ImageID, Keyboard: SwingKeyboard()},
	}
}

// ExitCommitted завершает закрытие swing сделки итоговым сообщением
func (m Machine) ExitCommitted(s *Session, t models.SwingTrade, c models.SwingClose) Outcome {
	s.toSwingMenu()

	return Outcome{
		Purge:  true,
		Notice: &Reply{Text: swingExitSummary(t, c, m.loc), Keyboard: SwingKeyboard()},
	}
}

// ExitRejected - выбранная позиция не найдена или уже закрыта
func (m Machine) ExitRejected(s *Session) Outcome {
	s.toSwingMenu()

	return Outcome{
		Purge:  true,
		Notice: &Reply{Text: textNotFound, Keyboard: SwingKeyboard()},
	}
}

// CommitFailed завершает сессию, если запись не удалось сохранить
func (m Machine) CommitFailed(s *Session) Outcome {
	s.begin(FlowNone, StateIdle)

	return Outcome{
		Purge:  true,
		End:    true,
		Notice: &Reply{Text: textSaveFailed, Keyboard: MainKeyboard()},
	}
}
