// Package money defines the cents-integer representation used for every
// monetary amount in the terminal. Arithmetic is always performed on Centavos;
// decimal values exist only at the human input/output boundary.
package money

import (
	"errors"
	"strings"

	"github.com/shopspring/decimal"
)

// Centavos is a monetary amount in integer cents (R$ 9,90 == 990).
type Centavos int64

var ErrValorInvalido = errors.New("valor monetário inválido")

// Parse converts a human-entered currency string into Centavos.
// Comma and dot are both accepted as the decimal separator ("9,90" and "9.90"
// parse to 990). When a comma is present it is the decimal separator and dots
// are grouping ("1.234,56" parses to 123456), so the output of String is
// accepted back. The value is rounded to the nearest cent.
func Parse(s string) (Centavos, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, ErrValorInvalido
	}
	if strings.Contains(s, ",") {
		if strings.Count(s, ",") > 1 {
			return 0, ErrValorInvalido
		}
		s = strings.ReplaceAll(s, ".", "")
		s = strings.Replace(s, ",", ".", 1)
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return 0, ErrValorInvalido
	}
	cents := d.Mul(decimal.NewFromInt(100)).Round(0)
	return Centavos(cents.IntPart()), nil
}

// ParseOrZero keeps the permissive input policy of the cashier screens:
// anything unparseable counts as zero. Used only where a blank field must not
// block the flow (physical count entry); everywhere else use Parse.
func ParseOrZero(s string) Centavos {
	v, err := Parse(s)
	if err != nil {
		return 0
	}
	return v
}

// Decimal returns the amount as a two-place decimal (for display and reports).
func (c Centavos) Decimal() decimal.Decimal {
	return decimal.New(int64(c), -2)
}

// String formats the amount as Brazilian currency: "R$ 1.234,56".
func (c Centavos) String() string {
	s := c.Decimal().StringFixed(2)
	neg := strings.HasPrefix(s, "-")
	s = strings.TrimPrefix(s, "-")

	parts := strings.SplitN(s, ".", 2)
	intPart, fracPart := parts[0], parts[1]

	var b strings.Builder
	for i, r := range intPart {
		if i > 0 && (len(intPart)-i)%3 == 0 {
			b.WriteByte('.')
		}
		b.WriteRune(r)
	}

	out := "R$ " + b.String() + "," + fracPart
	if neg {
		out = "R$ -" + b.String() + "," + fracPart
	}
	return out
}
