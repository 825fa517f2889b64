package types

import "github.com/shopspring/decimal"

// Money is a decimal amount rendered as a JSON number with two decimals.
type Money decimal.Decimal

// NewMoney wraps d.
func NewMoney(d decimal.Decimal) Money {
	return Money(d)
}

// Decimal returns the underlying value.
func (m Money) Decimal() decimal.Decimal {
	return decimal.Decimal(m)
}

func (m Money) MarshalJSON() ([]byte, error) {
	return []byte(decimal.Decimal(m).StringFixed(2)), nil
}

// UnmarshalJSON accepts both quoted and bare numbers.
func (m *Money) UnmarshalJSON(data []byte) error {
	var d decimal.Decimal
	if err := d.UnmarshalJSON(data); err != nil {
		return err
	}
	*m = Money(d)
	return nil
}
