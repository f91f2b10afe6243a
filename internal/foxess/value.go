package foxess

import (
	"encoding/json"
	"strconv"
)

// ValueKind discriminates the shapes a telemetry reading can take.
type ValueKind int

const (
	ValueUnknown ValueKind = iota
	ValueNumber
	ValueString
)

// Value holds one telemetry reading. The cloud returns readings as
// ad-hoc JSON: usually a number, sometimes a string, occasionally
// something else entirely. Decoding never fails; unrecognized shapes
// become ValueUnknown.
type Value struct {
	kind ValueKind
	num  float64
	str  string
}

// NumberValue wraps a numeric reading.
func NumberValue(f float64) Value {
	return Value{kind: ValueNumber, num: f}
}

// StringValue wraps a textual reading.
func StringValue(s string) Value {
	return Value{kind: ValueString, str: s}
}

// Kind reports which variant the value holds.
func (v Value) Kind() ValueKind {
	return v.kind
}

// Float returns the numeric reading, false for non-numeric values.
func (v Value) Float() (float64, bool) {
	if v.kind != ValueNumber {
		return 0, false
	}
	return v.num, true
}

// Display renders the value for human output: numbers in their
// shortest decimal form, strings verbatim, everything else "unknown".
func (v Value) Display() string {
	switch v.kind {
	case ValueNumber:
		return strconv.FormatFloat(v.num, 'f', -1, 64)
	case ValueString:
		return v.str
	default:
		return "unknown"
	}
}

// UnmarshalJSON tries number first, then string. Anything else
// (object, array, bool, null) decodes to the unknown variant rather
// than erroring.
func (v *Value) UnmarshalJSON(data []byte) error {
	var num float64
	if err := json.Unmarshal(data, &num); err == nil {
		*v = Value{kind: ValueNumber, num: num}
		return nil
	}
	var str string
	if err := json.Unmarshal(data, &str); err == nil {
		*v = Value{kind: ValueString, str: str}
		return nil
	}
	*v = Value{kind: ValueUnknown}
	return nil
}

// MarshalJSON emits the underlying number or string; unknown values
// serialize as null.
func (v Value) MarshalJSON() ([]byte, error) {
	switch v.kind {
	case ValueNumber:
		return json.Marshal(v.num)
	case ValueString:
		return json.Marshal(v.str)
	default:
		return []byte("null"), nil
	}
}
