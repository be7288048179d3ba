// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package validation

import (
	"github.com/shopspring/decimal"
)

var hundred = decimal.NewFromInt(100)

// percentDelta returns a − b computed on the decimal literals of both
// operands, so 2.914 − 8.42909 is exactly −5.51509.
func percentDelta(a, b float64) decimal.Decimal {
	return decimal.NewFromFloat(a).Sub(decimal.NewFromFloat(b))
}

// share returns part / whole × 100. whole must be positive.
func share(part, whole int64) decimal.Decimal {
	return decimal.NewFromInt(part).Mul(hundred).Div(decimal.NewFromInt(whole))
}

// within reports whether |got − want| ≤ tol.
func within(got float64, want, tol decimal.Decimal) bool {
	return decimal.NewFromFloat(got).Sub(want).Abs().LessThanOrEqual(tol)
}

// round4 formats a value for report details.
func round4(d decimal.Decimal) string {
	return d.Round(4).String()
}
