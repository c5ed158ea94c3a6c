package dialogue

import (
	"testing"
	"time"

	"tg_journal/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func text(msgID int, s string) Input {
	return Input{Kind: InputText, Text: s, MessageID: msgID}
}

func photo(msgID int, fileID string) Input {
	return Input{Kind: InputPhoto, PhotoID: fileID, MessageID: msgID}
}

func TestScalpFlowStates(t *testing.T) {
	m := NewMachine(time.UTC)
	s := NewSession(1, 1)

	out := m.Step(s, text(1, BtnScalp))
	assert.True(t, out.Purge)
	require.NotNil(t, out.Reply)
	assert.Equal(t, promptImage, out.Reply.Text)
	assert.Equal(t, FlowScalp, s.Flow)

	inputs := []struct {
		in   Input
		want State
	}{
		{photo(2, "file-1"), StateScalpSymbol},
		{text(3, "btc"), StateScalpSide},
		{text(4, "롱/long"), StateScalpLeverage},
		{text(5, "3"), StateScalpPnL},
		{text(6, "12"), StateScalpReason},
	}

	for _, tt := range inputs {
		out = m.Step(s, tt.in)
		assert.Equal(t, tt.want, s.State)
		require.NotNil(t, out.Reply)
		assert.Equal(t, prompts[tt.want], out.Reply.Text)
	}

	out = m.Step(s, text(7, "breakout"))
	assert.Equal(t, CommitScalp, out.Commit)
	assert.Equal(t, &ScalpDraft{
		ImageID:  "file-1",
		Symbol:   "BTC",
		Side:     models.SideLong,
		Leverage: 3,
		PnLPct:   12,
		Reason:   "breakout",
	}, s.Scalp)
	assert.Equal(t, 2, s.UserImageMessage)
	assert.Equal(t, []int{1, 3, 4, 5, 6, 7}, s.UserMessages)
}

func TestFieldValidation(t *testing.T) {
	tests := []struct {
		name    string
		state   State
		in      Input
		errText string
	}{
		{"image expects photo", StateScalpImage, text(1, "hello"), errImage},
		{"symbol expects text", StateScalpSymbol, photo(1, "f"), errText},
		{"blank symbol", StateScalpSymbol, text(1, "   "), promptSymbol},
		{"unknown side", StateScalpSide, text(1, "sideways"), errSide},
		{"mixed side", StateScalpSide, text(1, "long/short"), errSide},
		{"zero leverage", StateScalpLeverage, text(1, "0"), errLeverage},
		{"negative leverage", StateScalpLeverage, text(1, "-2"), errLeverage},
		{"text leverage", StateScalpLeverage, text(1, "abc"), errLeverage},
		{"nan leverage", StateScalpLeverage, text(1, "NaN"), errLeverage},
		{"inf pnl", StateScalpPnL, text(1, "Inf"), errPnL},
		{"text pnl", StateScalpPnL, text(1, "ten"), errPnL},
		{"zero entry price", StateSwingEntryPrice, text(1, "0"), errEntryPrice},
		{"negative exit price", StateExitPrice, text(1, "-100"), errExitPrice},
	}

	m := NewMachine(time.UTC)

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := NewSession(1, 1)
			s.Scalp = &ScalpDraft{}
			s.Swing = &SwingDraft{}
			s.Exit = &ExitDraft{}
			s.State = tt.state

			out := m.Step(s, tt.in)

			assert.Equal(t, tt.state, s.State)
			assert.Equal(t, CommitNone, out.Commit)
			require.NotNil(t, out.Reply)
			assert.Equal(t, tt.errText, out.Reply.Text)
		})
	}
}

func TestNumberInputs(t *testing.T) {
	v, err := parsePositive("3x")
	require.NoError(t, err)
	assert.Equal(t, 3.0, v)

	v, err = parseNumber(" -5% ")
	require.NoError(t, err)
	assert.Equal(t, -5.0, v)

	v, err = parseNumber("0")
	require.NoError(t, err)
	assert.Equal(t, 0.0, v)

	_, err = parsePositive("0")
	assert.ErrorIs(t, err, errNotPositive)

	_, err = parseNumber("1e400")
	assert.ErrorIs(t, err, errNotNumber)
}

func TestCancelFromEveryState(t *testing.T) {
	m := NewMachine(time.UTC)

	for state := range stateNames {
		for _, cancel := range []string{BtnCancel, BtnBack, CmdCancel} {
			s := NewSession(1, 1)
			s.State = state
			s.TrackBot(100)

			out := m.Step(s, text(5, cancel))

			assert.True(t, out.Purge, state.String())
			assert.True(t, out.End, state.String())
			require.NotNil(t, out.Notice)
			assert.Equal(t, textCancelled, out.Notice.Text)
			assert.Equal(t, MainKeyboard(), out.Notice.Keyboard)
			assert.Equal(t, StateIdle, s.State)
		}
	}
}

func TestSwingMenu(t *testing.T) {
	m := NewMachine(time.UTC)
	s := NewSession(1, 1)

	out := m.Step(s, text(1, BtnSwing))
	assert.Equal(t, StateSwingMenu, s.State)
	require.NotNil(t, out.Reply)
	assert.Equal(t, SwingKeyboard(), out.Reply.Keyboard)

	out = m.Step(s, text(2, "what"))
	assert.Equal(t, StateSwingMenu, s.State)
	assert.Equal(t, errSwingMenu, out.Reply.Text)

	out = m.Step(s, text(3, BtnClose))
	assert.Equal(t, CommitListOpen, out.Commit)

	out = m.OpenTrades(s, nil)
	assert.Equal(t, StateSwingMenu, s.State)
	assert.Equal(t, textNoOpen, out.Reply.Text)
	assert.False(t, out.End)

	out = m.Step(s, text(4, BtnNewEntry))
	assert.Equal(t, FlowSwingEntry, s.Flow)
	assert.Equal(t, StateSwingImage, s.State)
	assert.Equal(t, promptImage, out.Reply.Text)
}

func TestSelectTrade(t *testing.T) {
	m := NewMachine(time.UTC)
	s := NewSession(1, 1)
	s.toSwingMenu()

	trades := []models.SwingTrade{
		{ID: "01A", Symbol: "BTC", Side: models.SideLong, EntryPrice: 24500},
		{ID: "01B", Symbol: "ETH", Side: models.SideShort, EntryPrice: 2000.5},
	}

	out := m.OpenTrades(s, trades)
	assert.Equal(t, StateExitSelect, s.State)
	require.NotNil(t, out.Reply.Keyboard)
	assert.Equal(t, [][]models.Button{
		{{Text: "BTC Long @ 24500", Data: "01A"}},
		{{Text: "ETH Short @ 2000.5", Data: "01B"}},
	}, out.Reply.Keyboard.Inline)

	out = m.Step(s, text(2, "27000"))
	assert.Equal(t, StateExitSelect, s.State)
	assert.Equal(t, errSelect, out.Reply.Text)

	out = m.Step(s, Input{Kind: InputCallback, CallbackData: "01B"})
	assert.Equal(t, StateExitPrice, s.State)
	assert.Equal(t, "01B", s.Exit.TradeID)
	assert.Contains(t, out.Reply.Text, "01B")

	m.Step(s, text(3, "1800"))
	out = m.Step(s, text(4, "target"))
	assert.Equal(t, CommitSwingExit, out.Commit)
	assert.Equal(t, &ExitDraft{TradeID: "01B", ExitPrice: 1800, Reason: "target"}, s.Exit)
}

func TestIdleIgnoresInput(t *testing.T) {
	m := NewMachine(time.UTC)
	s := NewSession(1, 1)

	out := m.Step(s, text(1, "hello"))
	assert.True(t, out.End)
	assert.Nil(t, out.Reply)
	assert.Empty(t, s.UserMessages)
}

func TestRestartDropsDraft(t *testing.T) {
	m := NewMachine(time.UTC)
	s := NewSession(1, 1)

	m.Step(s, text(1, BtnScalp))
	m.Step(s, photo(2, "f"))
	m.Step(s, text(3, "BTC"))

	out := m.Step(s, text(4, BtnScalp))
	assert.True(t, out.Purge)
	assert.Equal(t, StateScalpImage, s.State)
	assert.Equal(t, &ScalpDraft{}, s.Scalp)
}
