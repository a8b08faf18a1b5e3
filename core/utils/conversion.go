package utils

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"
)

// ToInt converts a loosely typed JSON value to int.
// Anything that cannot be read as a number yields 0.
func ToInt(val any) int {
	switch v := val.(type) {
	case nil:
		return 0
	case int:
		return v
	case int64:
		return int(v)
	case int32:
		return int(v)
	case float64:
		return floatToInt(v)
	case float32:
		return floatToInt(float64(v))
	case json.Number:
		if i, err := v.Int64(); err == nil {
			return int(i)
		}
		f, err := v.Float64()
		if err != nil {
			return 0
		}
		return floatToInt(f)
	case string:
		return parseIntString(v)
	case []byte:
		return parseIntString(string(v))
	default:
		return 0
	}
}

// ToString converts a loosely typed JSON value to string.
// nil becomes the empty string.
func ToString(val any) string {
	switch v := val.(type) {
	case nil:
		return ""
	case string:
		return v
	case []byte:
		return string(v)
	case json.Number:
		return v.String()
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	default:
		return fmt.Sprintf("%v", v)
	}
}

// ToOptionalString returns nil for missing or blank values.
func ToOptionalString(val any) *string {
	if val == nil {
		return nil
	}
	s := strings.TrimSpace(ToString(val))
	if s == "" || strings.EqualFold(s, "null") {
		return nil
	}
	return &s
}

// ToOptionalInt returns nil when val is missing or not numeric.
func ToOptionalInt(val any) *int {
	switch v := val.(type) {
	case nil:
		return nil
	case string:
		s := strings.TrimSpace(v)
		if _, err := strconv.ParseFloat(s, 64); err != nil {
			return nil
		}
	case bool:
		return nil
	}
	i := ToInt(val)
	return &i
}

func parseIntString(s string) int {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0
	}
	if i, err := strconv.Atoi(s); err == nil {
		return i
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0
	}
	return floatToInt(f)
}

func floatToInt(f float64) int {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0
	}
	return int(f)
}
