package event

import (
	"fmt"
	"math"
	"strconv"
)

// ValueKind discriminates the variants of Value.
type ValueKind int

const (
	KindMissing ValueKind = iota
	KindInteger
	KindDecimal
	KindString
)

// Value is the decoded primitive for one Table B field: Missing, a plain
// Integer, a Decimal fixed-point number (mantissa * 10^negScale), or a
// character String.
type Value struct {
	Kind     ValueKind
	Integer  int32
	Mantissa int32
	NegScale int8
	Str      string
}

// Missing is the shared "no data" value.
var Missing = Value{Kind: KindMissing}

// NewInteger constructs an Integer value.
func NewInteger(v int32) Value { return Value{Kind: KindInteger, Integer: v} }

// NewDecimal constructs a Decimal value: mantissa * 10^negScale.
func NewDecimal(mantissa int32, negScale int8) Value {
	return Value{Kind: KindDecimal, Mantissa: mantissa, NegScale: negScale}
}

// NewString constructs a String value.
func NewString(s string) Value { return Value{Kind: KindString, Str: s} }

// Float returns the value as a float64, for Decimal and Integer kinds.
// Missing and String return (0, false).
func (v Value) Float() (float64, bool) {
	switch v.Kind {
	case KindInteger:
		return float64(v.Integer), true
	case KindDecimal:
		return float64(v.Mantissa) * math.Pow10(int(v.NegScale)), true
	default:
		return 0, false
	}
}

// String renders the value the way a diagnostic dump or the materializer's
// textual export would: "Missing", a bare integer, a fixed-point decimal
// string, or a quoted string.
func (v Value) String() string {
	switch v.Kind {
	case KindMissing:
		return "Missing"
	case KindInteger:
		return strconv.FormatInt(int64(v.Integer), 10)
	case KindDecimal:
		return formatDecimal(v.Mantissa, v.NegScale)
	case KindString:
		return fmt.Sprintf("%q", v.Str)
	default:
		return "?"
	}
}

// formatDecimal renders mantissa*10^negScale as a fixed-point string,
// e.g. formatDecimal(1234, -2) == "12.34" and formatDecimal(1234, 2) == "123400".
func formatDecimal(mantissa int32, negScale int8) string {
	if negScale >= 0 {
		// Non-negative exponent: multiply out, no fractional part.
		v := int64(mantissa)
		for i := int8(0); i < negScale; i++ {
			v *= 10
		}
		return strconv.FormatInt(v, 10)
	}

	scale := int(-negScale) // number of fractional digits
	neg := mantissa < 0
	m := int64(mantissa)
	if neg {
		m = -m
	}

	div := int64(1)
	for i := 0; i < scale; i++ {
		div *= 10
	}
	intPart := m / div
	fracPart := m % div

	s := fmt.Sprintf("%d.%0*d", intPart, scale, fracPart)
	if neg {
		s = "-" + s
	}

	return s
}
