package pricing

import (
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/angelmondragon/marketflow-backend/pkg/config"
)

// MoneyPlaces is the number of decimal places every money value is rounded to.
const MoneyPlaces = 2

// Rules holds the knobs used to price a cart.
type Rules struct {
	TaxRate               decimal.Decimal
	FreeShippingThreshold decimal.Decimal
	FlatShipping          decimal.Decimal
}

// DefaultRules returns 8% tax with free shipping from $25.00 and $5.99 otherwise.
func DefaultRules() Rules {
	return Rules{
		TaxRate:               decimal.RequireFromString("0.08"),
		FreeShippingThreshold: decimal.RequireFromString("25.00"),
		FlatShipping:          decimal.RequireFromString("5.99"),
	}
}

// RulesFromConfig parses the configured pricing knobs.
func RulesFromConfig(cfg config.PricingConfig) (Rules, error) {
	taxRate, threshold, flat, err := cfg.Decimals()
	if err != nil {
		return Rules{}, fmt.Errorf("pricing rules: %w", err)
	}
	return Rules{
		TaxRate:               taxRate,
		FreeShippingThreshold: threshold,
		FlatShipping:          flat,
	}, nil
}

// Line is one priced quantity.
type Line struct {
	Quantity  int
	UnitPrice decimal.Decimal
}

// Summary is the derived totals of a set of active cart lines.
type Summary struct {
	Subtotal  decimal.Decimal
	Tax       decimal.Decimal
	Shipping  decimal.Decimal
	Total     decimal.Decimal
	ItemCount int
}

// Summarize prices lines under rules. Subtotal, tax, and shipping are each
// rounded half away from zero to cents and total is the sum of the rounded
// parts, so the parts always add up to the total shown.
func Summarize(lines []Line, rules Rules) Summary {
	subtotal := decimal.Zero
	itemCount := 0
	for _, line := range lines {
		if line.Quantity <= 0 {
			continue
		}
		subtotal = subtotal.Add(line.UnitPrice.Mul(decimal.NewFromInt(int64(line.Quantity))))
		itemCount += line.Quantity
	}
	subtotal = Round(subtotal)

	tax := Round(subtotal.Mul(rules.TaxRate))

	shipping := Round(rules.FlatShipping)
	if subtotal.GreaterThanOrEqual(rules.FreeShippingThreshold) {
		shipping = decimal.Zero
	}

	return Summary{
		Subtotal:  subtotal,
		Tax:       tax,
		Shipping:  shipping,
		Total:     subtotal.Add(tax).Add(shipping),
		ItemCount: itemCount,
	}
}

// Round rounds a money value to cents.
func Round(d decimal.Decimal) decimal.Decimal {
	return d.Round(MoneyPlaces)
}
