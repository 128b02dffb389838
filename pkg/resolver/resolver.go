// Package resolver performs two-pass name resolution over a parsed IDL
// schema: it builds a fully-qualified name index of every struct, union,
// enum and typedef, then rewrites every field's type reference into
// either a canonical primitive tag or a fully-qualified aggregate name,
// following typedef chains and composing their array/sequence
// attributes along the way.
package resolver

import (
	"fmt"
	"strings"

	"github.com/foxglove/go-omgidl/pkg/idl"
)

// Kind distinguishes the aggregate definitions a name index entry can
// point to.
type Kind int

const (
	KindStruct Kind = iota
	KindUnion
	KindEnum
)

// indexEntry is one fully-qualified name's resolution target.
type indexEntry struct {
	kind Kind
	def  idl.Definition
}

// Resolve walks schema's definitions in place, rewriting every Field's
// Type (and every Union's SwitchType) into a resolved form: a canonical
// primitive tag, or a fully-qualified ("A::B::C") aggregate name.
//
// It returns the name index it built, which callers (e.g. pkg/msgdef)
// can use to look up the aggregate a resolved name refers to.
func Resolve(schema *idl.Schema) (*Index, error) {
	idx := &Index{
		aggregates: map[string]indexEntry{},
		typedefs:   map[string]*idl.Typedef{},
	}
	if err := idx.collect(schema.Definitions, nil); err != nil {
		return nil, err
	}
	if err := idx.resolveDefinitions(schema.Definitions, nil); err != nil {
		return nil, err
	}
	return idx, nil
}

// Index is the fully-qualified name table built by the collection pass.
type Index struct {
	aggregates map[string]indexEntry
	typedefs   map[string]*idl.Typedef
}

// Lookup returns the aggregate definition registered under a
// fully-qualified name, if any.
func (idx *Index) Lookup(fqName string) (idl.Definition, Kind, bool) {
	e, ok := idx.aggregates[fqName]
	if !ok {
		return nil, 0, false
	}
	return e.def, e.kind, true
}

func joinScope(scope []string, name string) string {
	if len(scope) == 0 {
		return name
	}
	return strings.Join(scope, "::") + "::" + name
}

func (idx *Index) collect(defs []idl.Definition, scope []string) error {
	for _, d := range defs {
		switch v := d.(type) {
		case *idl.Struct:
			idx.aggregates[joinScope(scope, v.Name)] = indexEntry{kind: KindStruct, def: v}
		case *idl.Union:
			idx.aggregates[joinScope(scope, v.Name)] = indexEntry{kind: KindUnion, def: v}
		case *idl.Enum:
			idx.aggregates[joinScope(scope, v.Name)] = indexEntry{kind: KindEnum, def: v}
		case *idl.Typedef:
			idx.typedefs[joinScope(scope, v.Name)] = v
		case *idl.Module:
			if err := idx.collect(v.Definitions, append(append([]string{}, scope...), v.Name)); err != nil {
				return err
			}
		case *idl.Constant:
			// Constants carry no type reference requiring resolution.
		}
	}
	return nil
}

// lookupScoped performs the longest-prefix-first scope search: for
// scope ["A","B"] and name "T" it tries "A::B::T", then "A::T", then
// "T", returning the first hit.
func lookupScoped[V any](table map[string]V, name string, scope []string) (V, bool) {
	if strings.HasPrefix(name, "::") {
		v, ok := table[name[2:]]
		return v, ok
	}
	if strings.Contains(name, "::") {
		v, ok := table[name]
		return v, ok
	}
	for i := len(scope); i >= 0; i-- {
		candidate := joinScope(scope[:i], name)
		if v, ok := table[candidate]; ok {
			return v, true
		}
	}
	var zero V
	return zero, false
}

// ErrTypedefCycle indicates a typedef chain revisits a name it has
// already followed.
type ErrTypedefCycle struct {
	Name string
}

func (e *ErrTypedefCycle) Error() string {
	return fmt.Sprintf("resolver: cyclic typedef chain starting at %q", e.Name)
}

// followTypedefChain resolves typ (and any array/sequence attributes
// already present on the referencing field) through zero or more
// typedef indirections, composing attributes along the way: the
// referencing site's own array dimensions are listed before the
// typedef's, and a sequence bound is only inherited from the typedef if
// the referencing site did not already specify one. A typedef carries
// no string bound, so none is inherited.
func (idx *Index) followTypedefChain(typ string, scope []string, dims *[]int, isSeq *bool, seqBound **int) (string, error) {
	visited := map[string]bool{}
	for {
		td, ok := lookupScoped(idx.typedefs, typ, scope)
		if !ok {
			return typ, nil
		}
		key := joinScope(scope, typ)
		if visited[key] {
			return "", &ErrTypedefCycle{Name: typ}
		}
		visited[key] = true

		if dims != nil {
			*dims = append(append([]int{}, *dims...), td.ArrayLengths...)
		}
		if isSeq != nil && !*isSeq {
			*isSeq = td.IsSequence
		}
		if seqBound != nil && *seqBound == nil {
			*seqBound = td.SequenceBound
		}
		typ = td.Type
	}
}

func (idx *Index) resolveFieldType(f *idl.Field, scope []string) error {
	resolved, err := idx.followTypedefChain(f.Type, scope, &f.ArrayLengths, &f.IsSequence, &f.SequenceBound)
	if err != nil {
		return err
	}
	f.Type = resolved
	return idx.resolveTypeName(&f.Type, scope)
}

// resolveTypeName rewrites *typ in place: primitives are left as-is,
// an absolute name has its leading "::" stripped, other names
// containing "::" are left as written, and bare names are resolved to
// a fully-qualified aggregate name via the longest-prefix-first search.
// A name that matches nothing in the index is left untouched rather
// than rejected here: it may be supplied externally or defined later,
// and the codec is what reports an error if a field referencing it is
// ever actually reached.
func (idx *Index) resolveTypeName(typ *string, scope []string) error {
	if idl.IsPrimitive(*typ) {
		return nil
	}
	if strings.HasPrefix(*typ, "::") {
		*typ = (*typ)[2:]
		return nil
	}
	if strings.Contains(*typ, "::") {
		return nil
	}
	for i := len(scope); i >= 0; i-- {
		candidate := joinScope(scope[:i], *typ)
		if _, ok := idx.aggregates[candidate]; ok {
			*typ = candidate
			return nil
		}
	}
	return nil
}

func (idx *Index) resolveDefinitions(defs []idl.Definition, scope []string) error {
	for _, d := range defs {
		switch v := d.(type) {
		case *idl.Struct:
			for _, f := range v.Fields {
				if err := idx.resolveFieldType(f, scope); err != nil {
					return err
				}
			}
		case *idl.Union:
			resolvedSwitch, err := idx.followTypedefChain(v.SwitchType, scope, nil, nil, nil)
			if err != nil {
				return err
			}
			v.SwitchType = resolvedSwitch
			if err := idx.resolveTypeName(&v.SwitchType, scope); err != nil {
				return err
			}
			for _, c := range v.Cases {
				if err := idx.resolveFieldType(c.Field, scope); err != nil {
					return err
				}
			}
			if v.Default != nil {
				if err := idx.resolveFieldType(v.Default, scope); err != nil {
					return err
				}
			}
		case *idl.Module:
			if err := idx.resolveDefinitions(v.Definitions, append(append([]string{}, scope...), v.Name)); err != nil {
				return err
			}
		case *idl.Constant:
			resolved, err := idx.followTypedefChain(v.Type, scope, nil, nil, nil)
			if err != nil {
				return err
			}
			v.Type = resolved
			if err := idx.resolveTypeName(&v.Type, scope); err != nil {
				return err
			}
		}
	}
	return nil
}
