package types

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"
)

// FlexUint64 is a uint64 that can be unmarshaled from either a JSON number or a JSON string.
// Null and the empty string leave it unset.
type FlexUint64 struct {
	Value uint64
	Set   bool
}

// UnmarshalJSON implements the json.Unmarshaler interface.
func (f *FlexUint64) UnmarshalJSON(data []byte) error {
	if isBlank(data) {
		*f = FlexUint64{}
		return nil
	}

	var n uint64
	if err := json.Unmarshal(data, &n); err == nil {
		*f = FlexUint64{Value: n, Set: true}
		return nil
	}

	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		val, err := strconv.ParseUint(strings.TrimSpace(s), 10, 64)
		if err != nil {
			return fmt.Errorf("FlexUint64: invalid uint64 string %q: %w", s, err)
		}
		*f = FlexUint64{Value: val, Set: true}
		return nil
	}

	return fmt.Errorf("FlexUint64: unexpected type, expected number or string")
}

// MarshalJSON implements the json.Marshaler interface.
func (f FlexUint64) MarshalJSON() ([]byte, error) {
	if !f.Set {
		return []byte("null"), nil
	}
	return json.Marshal(f.Value)
}

// Ptr returns nil when unset.
func (f FlexUint64) Ptr() *uint64 {
	if !f.Set {
		return nil
	}
	v := f.Value
	return &v
}

// FlexFloat64 is a float64 that accepts a JSON number or a numeric string.
// Null and the empty string mean "use the default".
type FlexFloat64 struct {
	Value float64
	Set   bool
}

// UnmarshalJSON implements the json.Unmarshaler interface.
func (f *FlexFloat64) UnmarshalJSON(data []byte) error {
	if isBlank(data) {
		*f = FlexFloat64{}
		return nil
	}

	var n float64
	if err := json.Unmarshal(data, &n); err == nil {
		*f = FlexFloat64{Value: n, Set: true}
		return nil
	}

	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		val, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
		if err != nil {
			return fmt.Errorf("FlexFloat64: invalid number string %q: %w", s, err)
		}
		// ParseFloat accepts "NaN" and "Inf", JSON has no such numbers
		if math.IsNaN(val) || math.IsInf(val, 0) {
			return fmt.Errorf("FlexFloat64: %q is not a finite number", s)
		}
		*f = FlexFloat64{Value: val, Set: true}
		return nil
	}

	return fmt.Errorf("FlexFloat64: unexpected type, expected number or string")
}

// MarshalJSON implements the json.Marshaler interface.
func (f FlexFloat64) MarshalJSON() ([]byte, error) {
	if !f.Set {
		return []byte("null"), nil
	}
	return json.Marshal(f.Value)
}

// Or returns the value, or def when unset.
func (f FlexFloat64) Or(def float64) float64 {
	if !f.Set {
		return def
	}
	return f.Value
}

// Ptr returns nil when unset.
func (f FlexFloat64) Ptr() *float64 {
	if !f.Set {
		return nil
	}
	v := f.Value
	return &v
}

// IntPtr rounds to the nearest integer, nil when unset.
func (f FlexFloat64) IntPtr() *int {
	if !f.Set {
		return nil
	}
	v := int(f.Value + 0.5)
	if f.Value < 0 {
		v = int(f.Value - 0.5)
	}
	return &v
}

// FlexBool is a bool that accepts a JSON boolean or a string strconv.ParseBool understands.
// Null and the empty string leave it unset, so a patch can tell "false" from "absent".
type FlexBool struct {
	Value bool
	Set   bool
}

// UnmarshalJSON implements the json.Unmarshaler interface.
func (f *FlexBool) UnmarshalJSON(data []byte) error {
	if isBlank(data) {
		*f = FlexBool{}
		return nil
	}

	var b bool
	if err := json.Unmarshal(data, &b); err == nil {
		*f = FlexBool{Value: b, Set: true}
		return nil
	}

	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		val, err := strconv.ParseBool(strings.TrimSpace(s))
		if err != nil {
			return fmt.Errorf("FlexBool: invalid bool string %q: %w", s, err)
		}
		*f = FlexBool{Value: val, Set: true}
		return nil
	}

	return fmt.Errorf("FlexBool: unexpected type, expected bool or string")
}

// MarshalJSON implements the json.Marshaler interface.
func (f FlexBool) MarshalJSON() ([]byte, error) {
	if !f.Set {
		return []byte("null"), nil
	}
	return json.Marshal(f.Value)
}

// Or returns the value, or def when unset.
func (f FlexBool) Or(def bool) bool {
	if !f.Set {
		return def
	}
	return f.Value
}

func isBlank(data []byte) bool {
	trimmed := bytes.TrimSpace(data)
	return len(trimmed) == 0 || string(trimmed) == "null" || string(trimmed) == `""`
}
