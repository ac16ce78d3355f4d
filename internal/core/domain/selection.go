package domain

// Tab is the focused side of the exchange form.
type Tab string

const (
	TabReceive Tab = "receive"
	TabSend    Tab = "send"
)

// IsValid reports whether t is a known tab.
func (t Tab) IsValid() bool {
	return t == TabReceive || t == TabSend
}

// Selection is the transient currency pair and tab chosen in the form.
type Selection struct {
	Source Currency `json:"fromCurrency"`
	Target Currency `json:"toCurrency"`
	Tab    Tab      `json:"tab"`
}

// DefaultSelection is what Reset restores.
func DefaultSelection() Selection {
	return Selection{Source: HomeCurrency, Target: ForeignCurrencies[0], Tab: TabReceive}
}

// Mode derives buy/sell from which side holds the home currency.
// ok is false when the selection does not pair the home currency with a foreign one.
func (s Selection) Mode() (mode Mode, foreign Currency, ok bool) {
	switch {
	case s.Source.IsHome() && s.Target.IsForeign():
		return ModeBuy, s.Target, true
	case s.Target.IsHome() && s.Source.IsForeign():
		return ModeSell, s.Source, true
	default:
		return "", "", false
	}
}
