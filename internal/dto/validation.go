package dto

import (
	"strings"

	"github.com/SscSPs/exchange_desk/internal/core/domain"
	"github.com/go-playground/validator/v10"
)

// CurrencyTag is the binding tag accepting only the supported currency codes.
const CurrencyTag = "currency"

// RegisterValidators installs the custom binding tags on v.
func RegisterValidators(v *validator.Validate) error {
	return v.RegisterValidation(CurrencyTag, func(fl validator.FieldLevel) bool {
		return domain.Currency(strings.ToUpper(fl.Field().String())).IsValid()
	})
}
