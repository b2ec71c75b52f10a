package money

import (
	"github.com/craftline/cartengine/pkg/enums"
	"github.com/shopspring/decimal"
)

// The storefront prices in whole rupees; tax rounds half-up to the rupee.
var taxRate = decimal.New(18, -2)

var shippingFees = map[enums.ShippingOption]decimal.Decimal{
	enums.ShippingOptionStandard:  decimal.Zero,
	enums.ShippingOptionExpress:   decimal.NewFromInt(99),
	enums.ShippingOptionOvernight: decimal.NewFromInt(299),
}

// Totals is the monetary breakdown of a cart at checkout.
type Totals struct {
	Subtotal decimal.Decimal `json:"subtotal"`
	Tax      decimal.Decimal `json:"tax"`
	Shipping decimal.Decimal `json:"shipping"`
	Total    decimal.Decimal `json:"total"`
}

// LineAmount returns unitPrice × quantity.
func LineAmount(unitPrice decimal.Decimal, quantity int) decimal.Decimal {
	return unitPrice.Mul(decimal.NewFromInt(int64(quantity)))
}

// Tax returns the tax owed on a subtotal, rounded half-up.
func Tax(subtotal decimal.Decimal) decimal.Decimal {
	return subtotal.Mul(taxRate).Round(0)
}

// ShippingFee returns the flat fee for the shipping option. Unknown
// options fall back to the standard (free) fee.
func ShippingFee(option enums.ShippingOption) decimal.Decimal {
	if fee, ok := shippingFees[option]; ok {
		return fee
	}
	return decimal.Zero
}

// Compute derives the full breakdown from a subtotal and shipping option.
func Compute(subtotal decimal.Decimal, option enums.ShippingOption) Totals {
	tax := Tax(subtotal)
	shipping := ShippingFee(option)
	return Totals{
		Subtotal: subtotal,
		Tax:      tax,
		Shipping: shipping,
		Total:    subtotal.Add(tax).Add(shipping),
	}
}
