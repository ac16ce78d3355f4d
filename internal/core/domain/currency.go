package domain

import (
	"fmt"
	"strings"

	"github.com/SscSPs/exchange_desk/internal/apperrors"
)

// Currency is one of the fixed set of currencies the desk trades.
type Currency string

const (
	KRW Currency = "KRW"
	USD Currency = "USD"
	JPY Currency = "JPY"
)

// HomeCurrency is the currency wallets are settled against.
const HomeCurrency = KRW

// ForeignCurrencies lists the currencies that can be bought or sold, in display order.
var ForeignCurrencies = []Currency{USD, JPY}

var currencyDecimals = map[Currency]int32{
	KRW: 0,
	USD: 2,
	JPY: 0,
}

var currencySymbols = map[Currency]string{
	KRW: "₩",
	USD: "$",
	JPY: "¥",
}

// ParseCurrency converts a code into a Currency, rejecting anything outside the set.
func ParseCurrency(code string) (Currency, error) {
	c := Currency(strings.ToUpper(strings.TrimSpace(code)))
	if !c.IsValid() {
		return "", apperrors.NewValidationError("unsupported currency %q", code)
	}
	return c, nil
}

// IsValid reports whether c belongs to the supported set.
func (c Currency) IsValid() bool {
	_, ok := currencyDecimals[c]
	return ok
}

// IsHome reports whether c is the home currency.
func (c Currency) IsHome() bool {
	return c == HomeCurrency
}

// IsForeign reports whether c is a supported non-home currency.
func (c Currency) IsForeign() bool {
	return c.IsValid() && !c.IsHome()
}

// Decimals is the display precision of the currency.
func (c Currency) Decimals() int32 {
	return currencyDecimals[c]
}

// Symbol returns the display symbol, e.g. "₩".
func (c Currency) Symbol() string {
	return currencySymbols[c]
}

func (c Currency) String() string {
	return string(c)
}

// ValidatePair checks the source/target invariant shared by quotes and orders.
func ValidatePair(source, target Currency) error {
	if !source.IsValid() {
		return apperrors.NewValidationError("unsupported source currency %q", source)
	}
	if !target.IsValid() {
		return apperrors.NewValidationError("unsupported target currency %q", target)
	}
	if source == target {
		return apperrors.NewValidationError("source and target currency must differ")
	}
	return nil
}

// PairKey renders a pair as "USD-KRW".
func PairKey(source, target Currency) string {
	return fmt.Sprintf("%s-%s", source, target)
}
