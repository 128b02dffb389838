package cdrcodec

import "github.com/foxglove/go-omgidl/pkg/idl"

// primitiveSize returns the wire width of a canonical primitive type
// tag, or false if t is not a primitive (e.g. "string"/"wstring", which
// have no fixed width, or an aggregate name).
func primitiveSize(t string) (int, bool) {
	switch t {
	case idl.PrimitiveBool, idl.PrimitiveInt8, idl.PrimitiveUint8:
		return 1, true
	case idl.PrimitiveInt16, idl.PrimitiveUint16:
		return 2, true
	case idl.PrimitiveInt32, idl.PrimitiveUint32, idl.PrimitiveFloat32:
		return 4, true
	case idl.PrimitiveInt64, idl.PrimitiveUint64, idl.PrimitiveFloat64:
		return 8, true
	default:
		return 0, false
	}
}

func isStringType(t string) bool {
	return t == idl.PrimitiveString || t == idl.PrimitiveWString
}

// scalarInfo strips a field plan down to the attributes relevant to
// encoding or decoding a single element: used both for a non-array
// field and for one element of an array/sequence field, which share a
// type but not the outer array/sequence attributes.
func scalarInfo(fi *FieldDeserInfo) *FieldDeserInfo {
	return &FieldDeserInfo{
		Name:             fi.Name,
		Type:             fi.Type,
		StringUpperBound: fi.StringUpperBound,
		IsComplex:        fi.IsComplex,
		ComplexKind:      fi.ComplexKind,
	}
}
