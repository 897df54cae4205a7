package types

import (
	"strconv"
	"strings"
)

// Attribute value types.
const (
	ValueTypeStr   = "str"
	ValueTypeInt   = "int"
	ValueTypeFloat = "float"
	ValueTypeBool  = "bool"
)

// validValueTypes is the closed set of recognized attribute value types.
var validValueTypes = map[string]bool{
	ValueTypeStr:   true,
	ValueTypeInt:   true,
	ValueTypeFloat: true,
	ValueTypeBool:  true,
}

// ValueTypes lists the attribute value types in declaration order.
var ValueTypes = []string{ValueTypeStr, ValueTypeInt, ValueTypeFloat, ValueTypeBool}

// IsValidValueType reports whether the given string is a recognized value type.
func IsValidValueType(vt string) bool {
	return validValueTypes[vt]
}

// IsNumericValueType reports whether values of vt compare as numbers.
func IsNumericValueType(vt string) bool {
	return vt == ValueTypeInt || vt == ValueTypeFloat
}

// Coerce converts a raw string to the Go value of the declared type:
// string, int64, float64 or bool. An empty raw value coerces to the
// type's default.
// Returns ErrInvalidValueType for an unknown type and ErrTypeMismatch when
// raw cannot be parsed.
func Coerce(valueType, raw string) (any, error) {
	raw = strings.TrimSpace(raw)
	switch valueType {
	case ValueTypeStr:
		return raw, nil
	case ValueTypeInt:
		if raw == "" {
			return int64(0), nil
		}
		v, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			return nil, ErrTypeMismatch
		}
		return v, nil
	case ValueTypeFloat:
		if raw == "" {
			return float64(0), nil
		}
		v, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return nil, ErrTypeMismatch
		}
		return v, nil
	case ValueTypeBool:
		if raw == "" {
			return false, nil
		}
		v, err := strconv.ParseBool(raw)
		if err != nil {
			return nil, ErrTypeMismatch
		}
		return v, nil
	default:
		return nil, ErrInvalidValueType
	}
}

// CoerceFloat parses raw as a number for numeric comparisons.
func CoerceFloat(raw string) (float64, error) {
	v, err := strconv.ParseFloat(strings.TrimSpace(raw), 64)
	if err != nil {
		return 0, ErrTypeMismatch
	}
	return v, nil
}
