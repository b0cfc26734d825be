package timeline

import (
	"fmt"

	"github.com/bytedance/sonic"
)

// ValueKind discriminates the closed set of parameter/keyframe value types.
type ValueKind string

const (
	ValueNumber ValueKind = "number"
	ValueColor  ValueKind = "color"
	ValueVector ValueKind = "vector"
	ValueString ValueKind = "string"
)

// Value is a tagged variant for filter parameters and keyframe values.
// Only number values participate in interpolation.
type Value struct {
	Kind   ValueKind
	Number float64
	Color  string
	Vector []float64
	Str    string
}

func NumberValue(n float64) Value { return Value{Kind: ValueNumber, Number: n} }
func ColorValue(c string) Value   { return Value{Kind: ValueColor, Color: c} }
func VectorValue(v []float64) Value {
	return Value{Kind: ValueVector, Vector: v}
}
func StringValue(s string) Value { return Value{Kind: ValueString, Str: s} }

type valueWire struct {
	Kind   ValueKind `json:"kind"`
	Number *float64  `json:"number,omitempty"`
	Color  string    `json:"color,omitempty"`
	Vector []float64 `json:"vector,omitempty"`
	Str    string    `json:"string,omitempty"`
}

// MarshalJSON encodes the variant with an explicit kind tag.
func (v Value) MarshalJSON() ([]byte, error) {
	wire := valueWire{Kind: v.Kind, Color: v.Color, Vector: v.Vector, Str: v.Str}
	if v.Kind == ValueNumber {
		n := v.Number
		wire.Number = &n
	}
	return sonic.Marshal(wire)
}

// UnmarshalJSON decodes the variant and rejects unknown kinds.
func (v *Value) UnmarshalJSON(data []byte) error {
	var wire valueWire
	if err := sonic.Unmarshal(data, &wire); err != nil {
		return err
	}
	switch wire.Kind {
	case ValueNumber:
		if wire.Number == nil {
			return fmt.Errorf("number value missing payload")
		}
		*v = NumberValue(*wire.Number)
	case ValueColor:
		*v = ColorValue(wire.Color)
	case ValueVector:
		*v = VectorValue(wire.Vector)
	case ValueString:
		*v = StringValue(wire.Str)
	default:
		return fmt.Errorf("unknown value kind %q", wire.Kind)
	}
	return nil
}
