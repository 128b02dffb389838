// Package msgdef flattens a resolved IDL schema into an ordered list of
// MessageDefinition records — one per struct, union, enum, and
// constant-bearing module — the shape `omgidlc describe` and other
// downstream tooling consume instead of the nested AST. The CDR codec
// works from the resolved AST itself, not from these records.
package msgdef

import "github.com/foxglove/go-omgidl/pkg/idl"

// MessageDefinitionField is a single field within a flattened
// MessageDefinition: a struct member, a union's synthetic discriminator
// or one of its case/default fields, an enumerator, or a constant.
type MessageDefinitionField struct {
	Type string
	Name string

	// IsComplex is true when Type names another MessageDefinition
	// (by its slash-separated name) rather than a primitive.
	IsComplex bool

	// EnumType holds the slash-separated name of the enum Type was
	// normalized from; Type itself is "uint32" in that case.
	EnumType string

	IsArray         bool
	ArrayLength     *int
	ArrayUpperBound *int // sequence upper bound, when the array is a sequence
	UpperBound      *int // string/wstring upper bound

	IsConstant bool
	Value      *idl.ConstValue
	ValueText  string
}

// MessageDefinition is one flattened record: the fields of a struct, the
// discriminator plus case/default fields of a union, the constant
// members of an enum, or the constants declared directly in a module.
type MessageDefinition struct {
	Name        string
	Definitions []*MessageDefinitionField
}

// UnionDiscriminatorField is the synthetic field name ros2idl & OMG IDL
// tooling use for a flattened union's discriminator.
const UnionDiscriminatorField = "$discriminator"
