package dialogue

import (
	"fmt"
	"html"
	"strconv"
	"strings"
	"time"

	"tg_journal/internal/models"
)

// Кнопки меню
const (
	BtnScalp    = "📓 Scalp journal"
	BtnSwing    = "🕰 Swing journal"
	BtnStats    = "📊 Statistics"
	BtnCancel   = "❌ Cancel"
	BtnNewEntry = "➕ New entry"
	BtnClose    = "✅ Close position"
	BtnBack     = "❌ Cancel / Back"
	CmdCancel   = "/cancel"
)

const (
	promptImage      = "📷 Upload the entry chart image first."
	promptSymbol     = "Enter the symbol (e.g. BTC)"
	promptSide       = "Enter the position (long/short)"
	promptLeverage   = "Enter the leverage (e.g. 1, 3, 5)"
	promptPnL        = "Enter the final result in % (e.g. 12, -5)"
	promptReason     = "Enter the entry rationale"
	promptEntryPrice = "Enter the entry price (e.g. 24500)"
	promptExitPrice  = "Selected position: %s\nEnter the exit price (e.g. 27000)"
	promptExitReason = "Enter the exit rationale"

	errImage      = "Please upload an image."
	errText       = "Please enter text."
	errSide       = "❌ Position must be long or short (e.g. long, short, 롱, 숏)"
	errLeverage   = "❌ Leverage must be a number greater than 0 (e.g. 1, 3, 5)"
	errPnL        = "❌ Result must be a number (e.g. 12, -5)"
	errEntryPrice = "❌ Entry price must be a number greater than 0 (e.g. 24500)"
	errExitPrice  = "❌ Exit price must be a number greater than 0 (e.g. 27000)"
	errSelect     = "Select a position from the list above."
	errSwingMenu  = "Choose an option from the menu."

	textSwingMenu  = "🕰 Swing journal: what would you like to do?"
	textCancelled  = "❌ Input cancelled. Start again from the menu."
	textNoOpen     = "📭 There are no open positions."
	textOpenList   = "📑 Open positions\nSelect the position to close:"
	textNotFound   = "❌ Position not found."
	textSaveFailed = "⚠️ Could not save the record. Please try again later."
)

var prompts = map[State]string{
	StateScalpImage:      promptImage,
	StateScalpSymbol:     promptSymbol,
	StateScalpSide:       promptSide,
	StateScalpLeverage:   promptLeverage,
	StateScalpPnL:        promptPnL,
	StateScalpReason:     promptReason,
	StateSwingImage:      promptImage,
	StateSwingSymbol:     promptSymbol,
	StateSwingSide:       promptSide,
	StateSwingLeverage:   promptLeverage,
	StateSwingEntryPrice: promptEntryPrice,
	StateSwingReason:     promptReason,
	StateExitReason:      promptExitReason,
}

// MainKeyboard - главное меню
func MainKeyboard() *models.Keyboard {
	return &models.Keyboard{Reply: [][]string{
		{BtnScalp, BtnSwing},
		{BtnStats, BtnCancel},
	}}
}

// SwingKeyboard - меню swing журнала
func SwingKeyboard() *models.Keyboard {
	return &models.Keyboard{Reply: [][]string{
		{BtnNewEntry, BtnClose},
		{BtnBack},
	}}
}

// IsCancel сообщает, является ли текст командой отмены
func IsCancel(text string) bool {
	switch strings.TrimSpace(text) {
	case BtnCancel, BtnBack, CmdCancel:
		return true
	}

	return false
}

func openTradesKeyboard(trades []models.SwingTrade) *models.Keyboard {
	rows := make([][]models.Button, 0, len(trades))
	for _, t := range trades {
		rows = append(rows, []models.Button{{
			Text: fmt.Sprintf("%s %s @ %s", t.Symbol, t.Side.Label(), formatNumber(t.EntryPrice)),
			Data: t.ID,
		}})
	}

	return &models.Keyboard{Inline: rows}
}

func scalpCaption(t models.ScalpTrade, loc *time.Location) string {
	return fmt.Sprintf("📓 [Trading journal]\n"+
		"- Date: %s\n"+
		"- Symbol: %s\n"+
		"- Position: %s\n"+
		"- Leverage: %sx\n"+
		"- Result: %s%%\n"+
		"- Entry rationale: \"%s\"",
		t.CreatedAt.In(loc).Format("2006-01-02 15:04"),
		html.EscapeString(t.Symbol),
		t.Side.Label(),
		formatNumber(t.Leverage),
		formatNumber(t.PnLPct),
		html.EscapeString(t.Reason))
}

func swingEntryCaption(t models.SwingTrade, loc *time.Location) string {
	return fmt.Sprintf("🕰 [Swing journal - entry]\n"+
		"- Date: %s\n"+
		"- Symbol: %s\n"+
		"- Position: %s\n"+
		"- Leverage: %sx\n"+
		"- Entry price: %s\n"+
		"- Entry rationale: \"%s\"",
		t.CreatedAt.In(loc).Format("2006-01-02 15:04"),
		html.EscapeString(t.Symbol),
		t.Side.Label(),
		formatNumber(t.Leverage),
		formatNumber(t.EntryPrice),
		html.EscapeString(t.ReasonEntry))
}

func swingExitSummary(t models.SwingTrade, c models.SwingClose, loc *time.Location) string {
	return fmt.Sprintf("✅ [Swing journal - closed]\n"+
		"- Date: %s\n"+
		"- Symbol: %s %s\n"+
		"- Entry price: %s\n"+
		"- Leverage: %sx\n"+
		"- Exit price: %s\n"+
		"- Result: %s%%\n"+
		"- Exit rationale: \"%s\"",
		c.ClosedAt.In(loc).Format("2006-01-02 15:04"),
		html.EscapeString(t.Symbol),
		t.Side.Label(),
		formatNumber(t.EntryPrice),
		formatNumber(t.Leverage),
		formatNumber(c.ExitPrice),
		formatNumber(c.PnLPct),
		html.EscapeString(c.ReasonExit))
}

func formatNumber(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
