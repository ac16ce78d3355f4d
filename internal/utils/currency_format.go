package utils

import (
	"time"

	"github.com/SscSPs/exchange_desk/internal/core/domain"
	"github.com/SscSPs/exchange_desk/internal/utils/money"
	"github.com/leekchan/accounting"
	"github.com/shopspring/decimal"
)

// DateTimeLayout is the display layout for rate and order timestamps.
const DateTimeLayout = "2006-01-02 15:04:05"

func moneyFormatter(symbol string, precision int) accounting.Accounting {
	return accounting.Accounting{
		Symbol:         symbol,
		Precision:      precision,
		Thousand:       ",",
		Decimal:        ".",
		Format:         "%s%v",
		FormatNegative: "-%s%v",
	}
}

// FormatCurrency renders an amount with the currency's symbol, thousands
// separators and display precision.
// Example: 1000000 KRW returns "₩1,000,000"
// Example: 10.999 USD returns "$11.00"
// Example: -50.25 USD returns "-$50.25"
func FormatCurrency(amount decimal.Decimal, currency domain.Currency) string {
	ac := moneyFormatter(currency.Symbol(), int(currency.Decimals()))
	return ac.FormatMoneyBigRat(money.RoundToCurrency(amount, currency).Rat())
}

// FormatRate renders a rate with thousands separators and two decimals, e.g. "1,320.50".
func FormatRate(rate decimal.Decimal) string {
	ac := moneyFormatter("", 2)
	return ac.FormatMoneyBigRat(rate.Round(2).Rat())
}

// FormatChange renders a signed percentage change as "▲ 0.25%" or "▼ 1.10%".
func FormatChange(change decimal.Decimal) string {
	arrow := "▲"
	if change.IsNegative() {
		arrow = "▼"
	}
	return arrow + " " + change.Abs().StringFixed(2) + "%"
}

// FormatDateTime renders t in loc using DateTimeLayout. A nil loc means local time.
func FormatDateTime(t time.Time, loc *time.Location) string {
	if loc == nil {
		loc = time.Local
	}
	return t.In(loc).Format(DateTimeLayout)
}
