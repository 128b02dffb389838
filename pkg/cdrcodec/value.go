package cdrcodec

import "fmt"

// Value is the dynamic, tagged representation of a decoded (or
// to-be-encoded) CDR message: a struct or union decodes to a
// *StructValue, an array or sequence decodes to an ArrayValue, and every
// primitive has its own concrete Value type. A bare `any` is
// deliberately avoided so encoder/decoder type-switches are exhaustive
// and a caller can't silently hand a wrongly-shaped Go value to a field.
type Value interface {
	valueNode()
}

// BoolValue, IntNValue, UintNValue, and FloatNValue wrap the
// corresponding Go primitive.
type (
	BoolValue    bool
	Int8Value    int8
	Uint8Value   uint8
	Int16Value   int16
	Uint16Value  uint16
	Int32Value   int32
	Uint32Value  uint32
	Int64Value   int64
	Uint64Value  uint64
	Float32Value float32
	Float64Value float64
	StringValue  string
)

func (BoolValue) valueNode()    {}
func (Int8Value) valueNode()    {}
func (Uint8Value) valueNode()   {}
func (Int16Value) valueNode()   {}
func (Uint16Value) valueNode()  {}
func (Int32Value) valueNode()   {}
func (Uint32Value) valueNode()  {}
func (Int64Value) valueNode()   {}
func (Uint64Value) valueNode()  {}
func (Float32Value) valueNode() {}
func (Float64Value) valueNode() {}
func (StringValue) valueNode()  {}

// ArrayValue represents both fixed-length arrays and variable-length
// sequences; which one a given instance came from is determined by the
// FieldDeserInfo that produced it, not by the value itself. Nested
// array dimensions are represented as an ArrayValue of ArrayValue.
type ArrayValue []Value

func (ArrayValue) valueNode() {}

// StructValue is an ordered map from field name to Value, used
// uniformly for decoded structs and decoded unions (whose first entry
// is always the synthetic discriminator field). Order is the order in
// which names were first Set; the Reader sets fields in declaration
// order, so decoded values list them in declaration order.
type StructValue struct {
	order  []string
	fields map[string]Value
}

func (*StructValue) valueNode() {}

// NewStructValue returns an empty, ready-to-use StructValue.
func NewStructValue() *StructValue {
	return &StructValue{fields: map[string]Value{}}
}

// Set assigns name's value, appending name to field order the first
// time it is set.
func (s *StructValue) Set(name string, v Value) {
	if _, exists := s.fields[name]; !exists {
		s.order = append(s.order, name)
	}
	s.fields[name] = v
}

// Get returns the value assigned to name, if any.
func (s *StructValue) Get(name string) (Value, bool) {
	v, ok := s.fields[name]
	return v, ok
}

// Names returns field names in the order they were first Set.
func (s *StructValue) Names() []string {
	return s.order
}

// Len returns the number of fields set.
func (s *StructValue) Len() int {
	return len(s.order)
}

func (s *StructValue) String() string {
	return fmt.Sprintf("StructValue(%v)", s.order)
}
