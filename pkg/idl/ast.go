// Package idl provides a lexer, parser, and typed AST for the supported
// subset of OMG IDL / ROS 2 IDL described in the accompanying
// specification: modules, structs, unions, enums, typedefs, constants,
// sequences, bounded strings, and annotations.
package idl

// Position marks a location in source text, used for diagnostics.
type Position struct {
	Filename string
	Line     int
	Column   int
	Offset   int
}

// Definition is implemented by every top-level and nested declaration:
// Module, Struct, Union, Enum, Typedef, Constant.
type Definition interface {
	definitionNode()
	DeclName() string
}

// Module groups an ordered, heterogeneous list of nested definitions.
type Module struct {
	Position    Position
	Name        string
	Definitions []Definition
	Annotations map[string]*Annotation
}

func (m *Module) definitionNode() {}
func (m *Module) DeclName() string { return m.Name }

// Struct is an aggregate of ordered fields.
type Struct struct {
	Position    Position
	Name        string
	Fields      []*Field
	Annotations map[string]*Annotation
}

func (s *Struct) definitionNode() {}
func (s *Struct) DeclName() string { return s.Name }

// Field is a single member of a Struct, or of a Union case/default.
type Field struct {
	Position Position
	Name     string

	// Type is either a canonical primitive tag (see Primitive* constants)
	// or a scoped name, initially as written in source and rewritten to a
	// fully-qualified name by the resolver.
	Type string

	// ArrayLengths holds fixed array dimensions in declaration order.
	// Multi-dimensional arrays are permitted in the AST; the flat schema
	// export rejects more than one dimension.
	ArrayLengths []int

	IsSequence       bool
	SequenceBound    *int
	StringUpperBound *int

	IsConstant bool
	Value      *ConstValue

	Annotations map[string]*Annotation
}

// Enum is an ordered list of auto-incrementing enumerators, each
// normalized to a uint32-typed Constant. An `@value(N)` annotation on an
// enumerator sets its value explicitly, and counting resumes from N+1.
type Enum struct {
	Position    Position
	Name        string
	Enumerators []*Constant
	Annotations map[string]*Annotation
}

func (e *Enum) definitionNode() {}
func (e *Enum) DeclName() string { return e.Name }

// Typedef aliases a type, optionally adding array/sequence attributes
// that compose with the attributes of any field that uses the alias.
type Typedef struct {
	Position      Position
	Name          string
	Type          string
	ArrayLengths  []int
	IsSequence    bool
	SequenceBound *int
	Annotations   map[string]*Annotation
}

func (t *Typedef) definitionNode() {}
func (t *Typedef) DeclName() string { return t.Name }

// UnionCase pairs one or more discriminator predicate values with the
// field written when the discriminator matches one of them.
type UnionCase struct {
	Predicates []*ConstValue
	Field      *Field
}

// Union discriminates between named fields using a switch value of
// SwitchType, falling back to Default (if present) when no case matches.
type Union struct {
	Position    Position
	Name        string
	SwitchType  string
	Cases       []*UnionCase
	Default     *Field
	Annotations map[string]*Annotation
}

func (u *Union) definitionNode() {}
func (u *Union) DeclName() string { return u.Name }

// Constant is a named, typed value: a top-level `const` declaration or
// one enumerator of an Enum.
type Constant struct {
	Position    Position
	Name        string
	Type        string
	Value       *ConstValue
	Annotations map[string]*Annotation
}

func (c *Constant) definitionNode() {}
func (c *Constant) DeclName() string { return c.Name }

// ConstValueKind distinguishes the payload carried by a ConstValue.
type ConstValueKind int

const (
	ConstInt ConstValueKind = iota
	ConstString
	ConstBool
)

// ConstValue is the evaluated payload of a constant expression, an
// enumerator value, or a union case predicate.
type ConstValue struct {
	Kind ConstValueKind
	Int  int64
	Str  string
	Bool bool
}

// Equal reports whether two constant values are equal in kind and payload.
func (v *ConstValue) Equal(o *ConstValue) bool {
	if v == nil || o == nil {
		return v == o
	}
	if v.Kind != o.Kind {
		return false
	}
	switch v.Kind {
	case ConstInt:
		return v.Int == o.Int
	case ConstString:
		return v.Str == o.Str
	case ConstBool:
		return v.Bool == o.Bool
	default:
		return false
	}
}

// AnnotationKind distinguishes the three annotation syntaxes the grammar
// accepts: `@Name`, `@Name(value)`, and `@Name(k1=v1, k2=v2, ...)`.
type AnnotationKind int

const (
	AnnotationNoParams AnnotationKind = iota
	AnnotationConstParam
	AnnotationNamedParams
)

// Annotation is attached to a definition, struct field, or enumerator.
// `@id` is interpreted by the codec and `@value` (on an enumerator) by
// the parser. `@default` and any other annotation is retained verbatim
// but otherwise opaque: the codec does not fill absent fields from a
// `@default` value.
type Annotation struct {
	Name        string
	Kind        AnnotationKind
	Value       *ConstValue
	NamedParams map[string]*ConstValue
}

// Canonical primitive type tags. Source IDL spellings are normalized to
// these during AST construction (see normalizePrimitive in parser.go).
const (
	PrimitiveBool    = "bool"
	PrimitiveInt8    = "int8"
	PrimitiveUint8   = "uint8"
	PrimitiveInt16   = "int16"
	PrimitiveUint16  = "uint16"
	PrimitiveInt32   = "int32"
	PrimitiveUint32  = "uint32"
	PrimitiveInt64   = "int64"
	PrimitiveUint64  = "uint64"
	PrimitiveFloat32 = "float32"
	PrimitiveFloat64 = "float64"
	PrimitiveString  = "string"
	PrimitiveWString = "wstring"
)

var primitiveSet = map[string]bool{
	PrimitiveBool: true, PrimitiveInt8: true, PrimitiveUint8: true,
	PrimitiveInt16: true, PrimitiveUint16: true, PrimitiveInt32: true, PrimitiveUint32: true,
	PrimitiveInt64: true, PrimitiveUint64: true, PrimitiveFloat32: true, PrimitiveFloat64: true,
	PrimitiveString: true, PrimitiveWString: true,
}

// IsPrimitive reports whether name is one of the canonical primitive tags.
func IsPrimitive(name string) bool {
	return primitiveSet[name]
}

// Schema is the root of a parsed IDL document: an ordered, heterogeneous
// list of top-level definitions.
type Schema struct {
	Definitions []Definition
}
