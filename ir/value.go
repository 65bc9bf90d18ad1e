package ir

import (
	"math"
	"strconv"
)

func floatBits(f float64) uint64 {
	return math.Float64bits(f)
}

// Float returns the value as a float64. Valid for float and half kinds.
func (v ScalarValue) Float() float64 {
	return math.Float64frombits(v.Bits)
}

// Int returns the value as a signed integer.
func (v ScalarValue) Int() int64 {
	return int64(v.Bits)
}

// Uint returns the value as an unsigned integer.
func (v ScalarValue) Uint() uint64 {
	return v.Bits
}

// Bool returns the value as a boolean.
func (v ScalarValue) Bool() bool {
	return v.Bits != 0
}

// Literal formats the value as a GLSL literal for its kind. Floats are
// printed with the shortest representation that round-trips, with a
// trailing ".0" appended when the result would otherwise parse as an
// integer.
func (v ScalarValue) Literal() string {
	switch v.Kind {
	case ScalarBool:
		if v.Bool() {
			return "true"
		}
		return "false"
	case ScalarInt:
		return strconv.FormatInt(v.Int(), 10)
	case ScalarUint:
		return strconv.FormatUint(v.Uint(), 10) + "u"
	default:
		s := strconv.FormatFloat(v.Float(), 'g', -1, 32)
		if !hasFloatSyntax(s) {
			s += ".0"
		}
		return s
	}
}

func hasFloatSyntax(s string) bool {
	for i := 0; i < len(s); i++ {
		switch s[i] {
		case '.', 'e', 'E', 'n', 'i': // ., exponent, nan, inf
			return true
		}
	}
	return false
}
