package dto

import (
	"github.com/SscSPs/exchange_desk/internal/core/domain"
	"github.com/SscSPs/exchange_desk/internal/utils"
	"github.com/shopspring/decimal"
)

// WalletResponse is one currency balance.
type WalletResponse struct {
	WalletID       int64           `json:"walletId"`
	Currency       string          `json:"currency"`
	Balance        decimal.Decimal `json:"balance"`
	BalanceDisplay string          `json:"balanceDisplay"`
}

// WalletSummaryResponse is the member's full set of wallets.
type WalletSummaryResponse struct {
	TotalKrwBalance        decimal.Decimal  `json:"totalKrwBalance"`
	TotalKrwBalanceDisplay string           `json:"totalKrwBalanceDisplay"`
	Wallets                []WalletResponse `json:"wallets"`
}

// ToWalletSummaryResponse converts a domain.WalletSummary.
func ToWalletSummaryResponse(s domain.WalletSummary) WalletSummaryResponse {
	resp := WalletSummaryResponse{
		TotalKrwBalance:        s.TotalHomeBalance,
		TotalKrwBalanceDisplay: utils.FormatCurrency(s.TotalHomeBalance, domain.HomeCurrency),
		Wallets:                make([]WalletResponse, 0, len(s.Wallets)),
	}
	for _, w := range s.Wallets {
		resp.Wallets = append(resp.Wallets, WalletResponse{
			WalletID:       w.ID,
			Currency:       w.Currency.String(),
			Balance:        w.Balance,
			BalanceDisplay: utils.FormatCurrency(w.Balance, w.Currency),
		})
	}
	return resp
}
