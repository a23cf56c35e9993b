package services

import (
	"fmt"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/shopspring/decimal"
)

// FormatAmount formats an amount with thousands separators. Whole amounts
// have no decimals; anything else is rounded to two places.
//
//	FormatAmount(6041141)    -> "6,041,141"
//	FormatAmount(906171.15)  -> "906,171.15"
//	FormatAmount(-1234.5)    -> "-1,234.50"
func FormatAmount(amount decimal.Decimal) string {
	amount = amount.Round(2)
	negative := amount.IsNegative()
	if negative {
		amount = amount.Neg()
	}

	whole := amount.Truncate(0)
	result := humanize.BigComma(whole.BigInt())
	if frac := amount.Sub(whole); !frac.IsZero() {
		result += strings.TrimPrefix(frac.StringFixed(2), "0")
	}
	if negative {
		result = "-" + result
	}
	return result
}

// FormatMoney prefixes FormatAmount with the currency code.
func FormatMoney(currency string, amount decimal.Decimal) string {
	if currency == "" {
		return FormatAmount(amount)
	}
	return currency + " " + FormatAmount(amount)
}

// FormatPercent formats a percentage with one decimal, e.g. "15.0%".
func FormatPercent(pct decimal.Decimal) string {
	return fmt.Sprintf("%s%%", pct.StringFixed(1))
}

// FormatRate formats a fractional rate as a whole percentage when possible,
// e.g. 0.15 -> "15%", 0.125 -> "12.5%".
func FormatRate(rate decimal.Decimal) string {
	return Percent(rate).String() + "%"
}
