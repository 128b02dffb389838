package msgdef

import (
	"fmt"
	"strings"

	"github.com/foxglove/go-omgidl/pkg/idl"
	"github.com/foxglove/go-omgidl/pkg/resolver"
)

// ErrMultiDimensionalArray indicates a field carries more than one array
// dimension; the flat schema projection has no representation for
// multi-dimensional arrays, unlike the nested AST.
type ErrMultiDimensionalArray struct {
	Field string
}

func (e *ErrMultiDimensionalArray) Error() string {
	return fmt.Sprintf("msgdef: field %q has a multi-dimensional array, which the flat schema view does not support", e.Field)
}

const (
	timeTypeName     = "builtin_interfaces/msg/Time"
	durationTypeName = "builtin_interfaces/msg/Duration"
)

// Export flattens an already-resolved schema (see resolver.Resolve) into
// an ordered list of MessageDefinition records: one per struct, one per
// union, one per enum, and one per module that declares constants
// directly.
func Export(schema *idl.Schema, idx *resolver.Index) ([]*MessageDefinition, error) {
	e := &exporter{idx: idx}
	if err := e.walk(schema.Definitions, nil); err != nil {
		return nil, err
	}
	for _, msg := range e.out {
		if msg.Name == timeTypeName || msg.Name == durationTypeName {
			for _, f := range msg.Definitions {
				if f.Name == "nanosec" {
					f.Name = "nsec"
				}
			}
		}
	}
	return e.out, nil
}

type exporter struct {
	idx *resolver.Index
	out []*MessageDefinition
}

func slashName(scope []string, name string) string {
	if name == "" {
		return strings.Join(scope, "/")
	}
	return strings.Join(append(append([]string{}, scope...), name), "/")
}

func (e *exporter) walk(defs []idl.Definition, scope []string) error {
	for _, d := range defs {
		switch v := d.(type) {
		case *idl.Struct:
			fields, err := e.convertFields(v.Fields)
			if err != nil {
				return err
			}
			e.out = append(e.out, &MessageDefinition{Name: slashName(scope, v.Name), Definitions: fields})
		case *idl.Union:
			msg, err := e.convertUnion(v)
			if err != nil {
				return err
			}
			msg.Name = slashName(scope, v.Name)
			e.out = append(e.out, msg)
		case *idl.Enum:
			var fields []*MessageDefinitionField
			for _, c := range v.Enumerators {
				fields = append(fields, e.convertConstant(c))
			}
			e.out = append(e.out, &MessageDefinition{Name: slashName(scope, v.Name), Definitions: fields})
		case *idl.Constant:
			e.out = append(e.out, &MessageDefinition{Name: slashName(scope, ""), Definitions: []*MessageDefinitionField{e.convertConstant(v)}})
		case *idl.Module:
			moduleScope := append(append([]string{}, scope...), v.Name)
			var constFields []*MessageDefinitionField
			var rest []idl.Definition
			for _, sub := range v.Definitions {
				if c, ok := sub.(*idl.Constant); ok {
					constFields = append(constFields, e.convertConstant(c))
					continue
				}
				rest = append(rest, sub)
			}
			if len(constFields) > 0 {
				e.out = append(e.out, &MessageDefinition{Name: slashName(moduleScope, ""), Definitions: constFields})
			}
			if err := e.walk(rest, moduleScope); err != nil {
				return err
			}
		}
	}
	return nil
}

func (e *exporter) convertFields(fields []*idl.Field) ([]*MessageDefinitionField, error) {
	out := make([]*MessageDefinitionField, 0, len(fields))
	for _, f := range fields {
		mf, err := e.convertField(f)
		if err != nil {
			return nil, err
		}
		out = append(out, mf)
	}
	return out, nil
}

func (e *exporter) convertField(f *idl.Field) (*MessageDefinitionField, error) {
	if f.IsConstant {
		return &MessageDefinitionField{
			Type:       f.Type,
			Name:       f.Name,
			IsConstant: true,
			Value:      f.Value,
			ValueText:  valueText(f.Value),
		}, nil
	}
	if len(f.ArrayLengths) > 1 {
		return nil, &ErrMultiDimensionalArray{Field: f.Name}
	}

	typ := f.Type
	isComplex := false
	enumType := ""
	if !idl.IsPrimitive(typ) {
		_, kind, ok := e.idx.Lookup(typ)
		if ok && kind == resolver.KindEnum {
			enumType = slashify(typ)
			typ = idl.PrimitiveUint32
		} else {
			isComplex = true
			typ = slashify(typ)
		}
	}

	mf := &MessageDefinitionField{
		Type:      typ,
		Name:      f.Name,
		IsComplex: isComplex,
		EnumType:  enumType,
		IsArray:   len(f.ArrayLengths) > 0 || f.IsSequence,
	}
	if len(f.ArrayLengths) > 0 {
		n := f.ArrayLengths[0]
		mf.ArrayLength = &n
	}
	if f.IsSequence {
		mf.ArrayUpperBound = f.SequenceBound
	}
	if f.StringUpperBound != nil {
		n := *f.StringUpperBound
		mf.UpperBound = &n
	}
	return mf, nil
}

func (e *exporter) convertUnion(u *idl.Union) (*MessageDefinition, error) {
	discField := &idl.Field{Name: UnionDiscriminatorField, Type: u.SwitchType}
	disc, err := e.convertField(discField)
	if err != nil {
		return nil, err
	}
	fields := []*MessageDefinitionField{disc}
	for _, c := range u.Cases {
		mf, err := e.convertField(c.Field)
		if err != nil {
			return nil, err
		}
		fields = append(fields, mf)
	}
	if u.Default != nil {
		mf, err := e.convertField(u.Default)
		if err != nil {
			return nil, err
		}
		fields = append(fields, mf)
	}
	return &MessageDefinition{Definitions: fields}, nil
}

func (e *exporter) convertConstant(c *idl.Constant) *MessageDefinitionField {
	return &MessageDefinitionField{
		Type:       c.Type,
		Name:       c.Name,
		IsConstant: true,
		Value:      c.Value,
		ValueText:  valueText(c.Value),
	}
}

func slashify(name string) string {
	return strings.ReplaceAll(name, "::", "/")
}

func valueText(v *idl.ConstValue) string {
	if v == nil {
		return ""
	}
	switch v.Kind {
	case idl.ConstInt:
		return fmt.Sprintf("%d", v.Int)
	case idl.ConstString:
		return v.Str
	case idl.ConstBool:
		return fmt.Sprintf("%t", v.Bool)
	default:
		return ""
	}
}
