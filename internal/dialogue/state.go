package dialogue

// Flow - сценарий диалога
type Flow int

const (
	FlowNone Flow = iota
	FlowScalp
	FlowSwingEntry
	FlowSwingExit
)

func (f Flow) String() string {
	switch f {
	case FlowScalp:
		return "scalp"
	case FlowSwingEntry:
		return "swing_entry"
	case FlowSwingExit:
		return "swing_exit"
	default:
		return "none"
	}
}

// State - шаг диалога
type State int

const (
	StateIdle State = iota
	StateSwingMenu

	StateScalpImage
	StateScalpSymbol
	StateScalpSide
	StateScalpLeverage
	StateScalpPnL
	StateScalpReason

	StateSwingImage
	StateSwingSymbol
	StateSwingSide
	StateSwingLeverage
	StateSwingEntryPrice
	StateSwingReason

	StateExitSelect
	StateExitPrice
	StateExitReason
)

var stateNames = map[State]string{
	StateIdle:            "IDLE",
	StateSwingMenu:       "SWING_MENU",
	StateScalpImage:      "IMAGE",
	StateScalpSymbol:     "SYMBOL",
	StateScalpSide:       "SIDE",
	StateScalpLeverage:   "LEVERAGE",
	StateScalpPnL:        "PNL",
	StateScalpReason:     "REASON",
	StateSwingImage:      "L_IMAGE",
	StateSwingSymbol:     "L_SYMBOL",
	StateSwingSide:       "L_SIDE",
	StateSwingLeverage:   "L_LEVERAGE",
	StateSwingEntryPrice: "L_ENTRY_PRICE",
	StateSwingReason:     "L_REASON_ENTRY",
	StateExitSelect:      "L_SELECT_TRADE",
	StateExitPrice:       "L_EXIT_PRICE",
	StateExitReason:      "L_REASON_EXIT",
}

func (s State) String() string {
	if name, ok := stateNames[s]; ok {
		return name
	}

	return "UNKNOWN"
}
