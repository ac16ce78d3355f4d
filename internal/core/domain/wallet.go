package domain

import "github.com/shopspring/decimal"

// Wallet holds the member's balance in one currency.
type Wallet struct {
	ID       int64           `json:"walletId"`
	Currency Currency        `json:"currency"`
	Balance  decimal.Decimal `json:"balance"`
}

// WalletSummary is the member's full set of wallets.
type WalletSummary struct {
	TotalHomeBalance decimal.Decimal `json:"totalKrwBalance"`
	Wallets          []Wallet        `json:"wallets"`
}

// Find returns the wallet held in currency.
func (s WalletSummary) Find(currency Currency) (Wallet, bool) {
	for _, w := range s.Wallets {
		if w.Currency == currency {
			return w, true
		}
	}
	return Wallet{}, false
}
