package enums

import "fmt"

// ShippingOption describes the delivery speeds offered at checkout.
type ShippingOption string

const (
	ShippingOptionStandard  ShippingOption = "standard"
	ShippingOptionExpress   ShippingOption = "express"
	ShippingOptionOvernight ShippingOption = "overnight"
)

var validShippingOptions = []ShippingOption{
	ShippingOptionStandard,
	ShippingOptionExpress,
	ShippingOptionOvernight,
}

// IsValid reports whether the value matches the canonical shipping option enum.
func (s ShippingOption) IsValid() bool {
	for _, candidate := range validShippingOptions {
		if candidate == s {
			return true
		}
	}
	return false
}

// ParseShippingOption converts the raw string to ShippingOption.
func ParseShippingOption(value string) (ShippingOption, error) {
	for _, candidate := range validShippingOptions {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid shipping option %q", value)
}
