package cdrcodec

import (
	"github.com/foxglove/go-omgidl/pkg/idl"
	"github.com/foxglove/go-omgidl/pkg/resolver"
)

// UnionDiscriminatorField is the synthetic field name used for a
// decoded union's discriminator value, matching pkg/msgdef's flattened
// schema convention.
const UnionDiscriminatorField = "$discriminator"

// FieldDeserInfo is the precomputed plan the writer and reader consult
// for one field: its wire type, array/sequence/string bound
// attributes, its parameter-list member id, and — for constant fields —
// the value to splice in without touching the wire at all.
//
// Offsets are deliberately not part of this plan: variable-length
// sequences and strings make static byte offsets impossible to
// precompute in general, so the writer and reader track the current
// offset themselves as they walk fields in order.
type FieldDeserInfo struct {
	Name string

	// Type is a canonical primitive tag, or the fully-qualified name of
	// the referenced Struct/Union when IsComplex is true. Enum-typed
	// fields are normalized to "uint32" here, since CDR encodes an enum
	// as its underlying integer with no type tag on the wire.
	Type string

	ID int // 1-based parameter-list member id, or an @id(N) override

	ArrayLengths     []int
	IsSequence       bool
	SequenceBound    *int
	StringUpperBound *int

	IsConstant bool
	ConstValue *idl.ConstValue

	IsComplex   bool
	ComplexKind resolver.Kind // meaningful only when IsComplex
}

// StructDeserInfo is the precomputed plan for one struct definition.
type StructDeserInfo struct {
	Name                string
	Fields              []*FieldDeserInfo
	UsesDelimiterHeader bool
	UsesMemberHeader    bool
}

// UnionCaseInfo pairs a union case's discriminator predicates with its
// field plan.
type UnionCaseInfo struct {
	Predicates []*idl.ConstValue
	Field      *FieldDeserInfo
}

// UnionDeserInfo is the precomputed plan for one union definition.
type UnionDeserInfo struct {
	Name                string
	SwitchType          string
	Discriminator       *FieldDeserInfo
	Cases               []*UnionCaseInfo
	Default             *FieldDeserInfo
	UsesDelimiterHeader bool
	UsesMemberHeader    bool
}

// CaseField returns the field plan matching discriminator value disc,
// or the default field's plan if no case matches, or nil if neither
// exists.
func (u *UnionDeserInfo) CaseField(disc *idl.ConstValue) *FieldDeserInfo {
	for _, c := range u.Cases {
		for _, p := range c.Predicates {
			if p.Equal(disc) {
				return c.Field
			}
		}
	}
	return u.Default
}

// DeserInfoCache holds precomputed plans for every struct and union in
// a resolved schema, built once and safe for concurrent read-only use
// by any number of Writers/Readers.
//
// Cyclic schema references (a struct containing, transitively, a field
// of its own type) are handled by storing plans in these name-keyed
// maps rather than embedding pointers directly in FieldDeserInfo: a
// self- or mutually-referential complex field is resolved by name at
// traversal time, never by eagerly dereferencing a cycle of pointers.
type DeserInfoCache struct {
	Kind    EncapsulationKind
	idx     *resolver.Index
	structs map[string]*StructDeserInfo
	unions  map[string]*UnionDeserInfo
}

// Struct looks up a previously-built StructDeserInfo by fully-qualified
// name.
func (c *DeserInfoCache) Struct(name string) (*StructDeserInfo, bool) {
	s, ok := c.structs[name]
	return s, ok
}

// Union looks up a previously-built UnionDeserInfo by fully-qualified
// name.
func (c *DeserInfoCache) Union(name string) (*UnionDeserInfo, bool) {
	u, ok := c.unions[name]
	return u, ok
}

// BuildDeserInfoCache walks every struct and union definition reachable
// in schema (which must already have been resolver.Resolve'd) and
// precomputes a plan for each one, keyed by fully-qualified name.
func BuildDeserInfoCache(schema *idl.Schema, idx *resolver.Index, kind EncapsulationKind) (*DeserInfoCache, error) {
	if kind.legacyParameterList() {
		return nil, ErrUnsupportedEncapsulation
	}
	c := &DeserInfoCache{
		Kind:    kind,
		idx:     idx,
		structs: map[string]*StructDeserInfo{},
		unions:  map[string]*UnionDeserInfo{},
	}
	if err := c.walk(schema.Definitions, nil); err != nil {
		return nil, err
	}
	return c, nil
}

func joinScopeName(scope []string, name string) string {
	if len(scope) == 0 {
		return name
	}
	full := ""
	for _, s := range scope {
		full += s + "::"
	}
	return full + name
}

func (c *DeserInfoCache) walk(defs []idl.Definition, scope []string) error {
	for _, d := range defs {
		switch v := d.(type) {
		case *idl.Struct:
			info, err := c.buildStructInfo(v, scope)
			if err != nil {
				return err
			}
			c.structs[joinScopeName(scope, v.Name)] = info
		case *idl.Union:
			info, err := c.buildUnionInfo(v, scope)
			if err != nil {
				return err
			}
			c.unions[joinScopeName(scope, v.Name)] = info
		case *idl.Module:
			if err := c.walk(v.Definitions, append(append([]string{}, scope...), v.Name)); err != nil {
				return err
			}
		}
	}
	return nil
}

func (c *DeserInfoCache) buildStructInfo(s *idl.Struct, scope []string) (*StructDeserInfo, error) {
	info := &StructDeserInfo{
		Name:                joinScopeName(scope, s.Name),
		UsesDelimiterHeader: c.Kind.usesDelimiterHeader(),
		UsesMemberHeader:    c.Kind.usesMemberHeader(),
	}
	nextID := 1
	for _, f := range s.Fields {
		fi, err := c.buildFieldInfo(f, nextID)
		if err != nil {
			return nil, err
		}
		if !f.IsConstant {
			nextID = fi.ID + 1
		}
		info.Fields = append(info.Fields, fi)
	}
	return info, nil
}

func (c *DeserInfoCache) buildUnionInfo(u *idl.Union, scope []string) (*UnionDeserInfo, error) {
	info := &UnionDeserInfo{
		Name:                joinScopeName(scope, u.Name),
		SwitchType:          u.SwitchType,
		UsesDelimiterHeader: c.Kind.usesDelimiterHeader(),
		UsesMemberHeader:    c.Kind.usesMemberHeader(),
	}
	discField := &idl.Field{Name: UnionDiscriminatorField, Type: u.SwitchType}
	discInfo, err := c.buildFieldInfo(discField, 1)
	if err != nil {
		return nil, err
	}
	info.Discriminator = discInfo
	nextID := 2 // id 1 is reserved for the discriminator
	for _, uc := range u.Cases {
		fi, err := c.buildFieldInfo(uc.Field, nextID)
		if err != nil {
			return nil, err
		}
		nextID = fi.ID + 1
		info.Cases = append(info.Cases, &UnionCaseInfo{Predicates: uc.Predicates, Field: fi})
	}
	if u.Default != nil {
		fi, err := c.buildFieldInfo(u.Default, nextID)
		if err != nil {
			return nil, err
		}
		info.Default = fi
	}
	return info, nil
}

// buildFieldInfo resolves f's wire-level shape. defaultID is the
// 1-based member id f gets unless it carries an `@id(N)` annotation
// override.
func (c *DeserInfoCache) buildFieldInfo(f *idl.Field, defaultID int) (*FieldDeserInfo, error) {
	fi := &FieldDeserInfo{
		Name:             f.Name,
		ID:               defaultID,
		ArrayLengths:     f.ArrayLengths,
		IsSequence:       f.IsSequence,
		SequenceBound:    f.SequenceBound,
		StringUpperBound: f.StringUpperBound,
		IsConstant:       f.IsConstant,
		ConstValue:       f.Value,
	}
	if ann, ok := f.Annotations["id"]; ok && ann.Value != nil {
		fi.ID = int(ann.Value.Int)
	}
	if f.IsConstant {
		fi.Type = f.Type
		return fi, nil
	}
	if len(f.ArrayLengths) > 1 {
		return nil, newCodecError(OpBuildCache, f.Type, f.Name, 0, ErrMultiDimensionalArray, "field %q has %d array dimensions", f.Name, len(f.ArrayLengths))
	}
	if idl.IsPrimitive(f.Type) {
		fi.Type = f.Type
		return fi, nil
	}
	_, kind, ok := c.idx.Lookup(f.Type)
	if !ok {
		return nil, newCodecError(OpBuildCache, f.Type, f.Name, 0, ErrUnrecognizedFieldType, "field %q references unknown type %q", f.Name, f.Type)
	}
	if kind == resolver.KindEnum {
		fi.Type = idl.PrimitiveUint32
		return fi, nil
	}
	fi.Type = f.Type
	fi.IsComplex = true
	fi.ComplexKind = kind
	return fi, nil
}
