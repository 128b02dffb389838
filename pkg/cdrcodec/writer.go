package cdrcodec

import (
	"github.com/foxglove/go-omgidl/internal/cdrwire"
	"github.com/foxglove/go-omgidl/pkg/idl"
	"github.com/foxglove/go-omgidl/pkg/resolver"
)

// Writer encodes StructValues rooted at one schema definition into CDR
// wire bytes under a fixed encapsulation kind.
//
// A Writer is immutable after construction and safe for concurrent use
// by multiple goroutines, each operating on its own StructValue and
// buffer.
type Writer struct {
	cache *DeserInfoCache
	root  *StructDeserInfo
	order cdrwire.ByteOrder
}

// NewWriter builds a DeserInfoCache for schema (which must already have
// been resolver.Resolve'd) and returns a Writer for the struct named
// rootName.
func NewWriter(schema *idl.Schema, idx *resolver.Index, rootName string, opts Options) (*Writer, error) {
	cache, err := BuildDeserInfoCache(schema, idx, opts.EncapsulationKind)
	if err != nil {
		return nil, err
	}
	root, ok := cache.Struct(rootName)
	if !ok {
		return nil, ErrRootNotFound
	}
	return &Writer{cache: cache, root: root, order: opts.EncapsulationKind.ByteOrder()}, nil
}

// CalculateByteSize computes the exact number of bytes WriteMessage
// will produce for v, including the 4-byte encapsulation header. This
// single sizing pass lets WriteMessage allocate its output buffer
// exactly once.
func (w *Writer) CalculateByteSize(v *StructValue) (int, error) {
	size, err := w.sizeStruct(0, w.root, v)
	if err != nil {
		return 0, err
	}
	return encapsulationHeaderSize + size, nil
}

// WriteMessage encodes v into a freshly-allocated buffer.
func (w *Writer) WriteMessage(v *StructValue) ([]byte, error) {
	total, err := w.CalculateByteSize(v)
	if err != nil {
		return nil, err
	}
	buf := make([]byte, 0, total)
	buf = writeEncapsulationHeader(buf, w.cache.Kind)
	buf, _, err = w.writeStruct(buf, 0, w.root, v)
	if err != nil {
		return nil, err
	}
	return buf, nil
}

func (w *Writer) sizeStruct(offset int, info *StructDeserInfo, v *StructValue) (int, error) {
	if v == nil {
		return 0, newCodecError(OpEncode, info.Name, "", offset, nil, "nil value for struct")
	}
	if info.UsesDelimiterHeader {
		offset += cdrwire.Padding(offset, 4)
		offset += 4
	}
	return w.sizeStructBody(offset, info, v)
}

// sizeStructBody sizes a struct's member list without the leading
// delimiter header, so callers that already know the real post-header
// offset (writeStruct) can size from there instead of double-counting
// the header's own bytes.
func (w *Writer) sizeStructBody(offset int, info *StructDeserInfo, v *StructValue) (int, error) {
	if info.UsesMemberHeader {
		for _, fi := range info.Fields {
			if fi.IsConstant {
				continue
			}
			offset += cdrwire.Padding(offset, 4)
			offset += 4
			val, _ := v.Get(fi.Name)
			next, err := w.sizeField(offset, fi, val)
			if err != nil {
				return 0, err
			}
			offset = next
		}
		offset += cdrwire.Padding(offset, 4)
		offset += 4 // sentinel
		return offset, nil
	}
	for _, fi := range info.Fields {
		if fi.IsConstant {
			continue
		}
		val, _ := v.Get(fi.Name)
		next, err := w.sizeField(offset, fi, val)
		if err != nil {
			return 0, err
		}
		offset = next
	}
	return offset, nil
}

func (w *Writer) sizeUnion(offset int, info *UnionDeserInfo, v *StructValue) (int, error) {
	if info.UsesDelimiterHeader {
		offset += cdrwire.Padding(offset, 4)
		offset += 4
	}
	return w.sizeUnionBody(offset, info, v)
}

// sizeUnionBody sizes a union's discriminator/case fields without the
// leading delimiter header; see sizeStructBody.
func (w *Writer) sizeUnionBody(offset int, info *UnionDeserInfo, v *StructValue) (int, error) {
	disc, _ := v.Get(UnionDiscriminatorField)
	if info.UsesMemberHeader {
		offset += cdrwire.Padding(offset, 4)
		offset += 4
		next, err := w.sizeField(offset, info.Discriminator, disc)
		if err != nil {
			return 0, err
		}
		offset = next
		if fi := info.CaseField(asConstValue(disc)); fi != nil {
			offset += cdrwire.Padding(offset, 4)
			offset += 4
			val, _ := v.Get(fi.Name)
			next, err := w.sizeField(offset, fi, val)
			if err != nil {
				return 0, err
			}
			offset = next
		}
		offset += cdrwire.Padding(offset, 4)
		offset += 4 // sentinel
		return offset, nil
	}
	next, err := w.sizeField(offset, info.Discriminator, disc)
	if err != nil {
		return 0, err
	}
	offset = next
	if fi := info.CaseField(asConstValue(disc)); fi != nil {
		val, _ := v.Get(fi.Name)
		next, err := w.sizeField(offset, fi, val)
		if err != nil {
			return 0, err
		}
		offset = next
	}
	return offset, nil
}

func (w *Writer) sizeField(offset int, fi *FieldDeserInfo, v Value) (int, error) {
	if fi.IsConstant {
		return offset, nil
	}
	switch {
	case len(fi.ArrayLengths) > 0:
		arr, ok := v.(ArrayValue)
		if !ok {
			return 0, newCodecError(OpEncode, fi.Type, fi.Name, offset, nil, "expected ArrayValue")
		}
		if len(arr) != fi.ArrayLengths[0] {
			return 0, newCodecError(OpEncode, fi.Type, fi.Name, offset, ErrBoundsViolation, "fixed array length %d does not match declared length %d", len(arr), fi.ArrayLengths[0])
		}
		elem := scalarInfo(fi)
		for _, e := range arr {
			next, err := w.sizeScalar(offset, elem, e)
			if err != nil {
				return 0, err
			}
			offset = next
		}
		return offset, nil
	case fi.IsSequence:
		arr, ok := v.(ArrayValue)
		if !ok {
			return 0, newCodecError(OpEncode, fi.Type, fi.Name, offset, nil, "expected ArrayValue")
		}
		if fi.SequenceBound != nil && len(arr) > *fi.SequenceBound {
			return 0, newCodecError(OpEncode, fi.Type, fi.Name, offset, ErrBoundsViolation, "sequence length %d exceeds bound %d", len(arr), *fi.SequenceBound)
		}
		offset += cdrwire.Padding(offset, 4)
		offset += 4
		elem := scalarInfo(fi)
		for _, e := range arr {
			next, err := w.sizeScalar(offset, elem, e)
			if err != nil {
				return 0, err
			}
			offset = next
		}
		return offset, nil
	default:
		return w.sizeScalar(offset, fi, v)
	}
}

func (w *Writer) sizeScalar(offset int, fi *FieldDeserInfo, v Value) (int, error) {
	if fi.IsComplex {
		switch fi.ComplexKind {
		case resolver.KindStruct:
			sub, ok := w.cache.Struct(fi.Type)
			if !ok {
				return 0, newCodecError(OpEncode, fi.Type, fi.Name, offset, ErrUnrecognizedFieldType, "struct %q not found in cache", fi.Type)
			}
			sv, ok := v.(*StructValue)
			if !ok {
				return 0, newCodecError(OpEncode, fi.Type, fi.Name, offset, nil, "expected *StructValue")
			}
			return w.sizeStruct(offset, sub, sv)
		case resolver.KindUnion:
			sub, ok := w.cache.Union(fi.Type)
			if !ok {
				return 0, newCodecError(OpEncode, fi.Type, fi.Name, offset, ErrUnrecognizedFieldType, "union %q not found in cache", fi.Type)
			}
			sv, ok := v.(*StructValue)
			if !ok {
				return 0, newCodecError(OpEncode, fi.Type, fi.Name, offset, nil, "expected *StructValue")
			}
			return w.sizeUnion(offset, sub, sv)
		}
	}
	if isStringType(fi.Type) {
		s, ok := v.(StringValue)
		if !ok {
			return 0, newCodecError(OpEncode, fi.Type, fi.Name, offset, nil, "expected StringValue")
		}
		if fi.StringUpperBound != nil && len(s) > *fi.StringUpperBound {
			return 0, newCodecError(OpEncode, fi.Type, fi.Name, offset, ErrBoundsViolation, "string length %d exceeds bound %d", len(s), *fi.StringUpperBound)
		}
		offset += cdrwire.Padding(offset, 4)
		offset += 4
		if fi.Type == idl.PrimitiveWString {
			offset += utf16Len(string(s))*2 + 2
		} else {
			offset += len(s) + 1
		}
		return offset, nil
	}
	size, ok := primitiveSize(fi.Type)
	if !ok {
		return 0, newCodecError(OpEncode, fi.Type, fi.Name, offset, ErrUnrecognizedFieldType, "unrecognized field type %q", fi.Type)
	}
	offset += cdrwire.Padding(offset, size)
	offset += size
	return offset, nil
}

func (w *Writer) writeStruct(buf []byte, offset int, info *StructDeserInfo, v *StructValue) ([]byte, int, error) {
	if info.UsesDelimiterHeader {
		bodyStart := offset + cdrwire.Padding(offset, 4) + 4
		bodyEnd, err := w.sizeStructBody(bodyStart, info, v)
		if err != nil {
			return nil, 0, err
		}
		buf, offset = cdrwire.WriteDelimiterHeader(buf, offset, w.order, bodyEnd-bodyStart)
	}
	if info.UsesMemberHeader {
		for _, fi := range info.Fields {
			if fi.IsConstant {
				continue
			}
			val, _ := v.Get(fi.Name)
			fieldStart := offset + cdrwire.Padding(offset, 4) + 4
			fieldEnd, err := w.sizeField(fieldStart, fi, val)
			if err != nil {
				return nil, 0, err
			}
			size := fieldEnd - fieldStart
			buf, offset = cdrwire.WriteMemberHeader(buf, offset, w.order, fi.ID, size, false)
			buf, offset, err = w.writeField(buf, offset, fi, val)
			if err != nil {
				return nil, 0, err
			}
		}
		buf, offset = cdrwire.WriteSentinelHeader(buf, offset, w.order)
		return buf, offset, nil
	}
	for _, fi := range info.Fields {
		if fi.IsConstant {
			continue
		}
		val, _ := v.Get(fi.Name)
		var err error
		buf, offset, err = w.writeField(buf, offset, fi, val)
		if err != nil {
			return nil, 0, err
		}
	}
	return buf, offset, nil
}

func (w *Writer) writeUnion(buf []byte, offset int, info *UnionDeserInfo, v *StructValue) ([]byte, int, error) {
	disc, _ := v.Get(UnionDiscriminatorField)
	if info.UsesDelimiterHeader {
		bodyStart := offset + cdrwire.Padding(offset, 4) + 4
		bodyEnd, err := w.sizeUnionBody(bodyStart, info, v)
		if err != nil {
			return nil, 0, err
		}
		buf, offset = cdrwire.WriteDelimiterHeader(buf, offset, w.order, bodyEnd-bodyStart)
	}
	caseField := info.CaseField(asConstValue(disc))
	if info.UsesMemberHeader {
		discStart := offset + cdrwire.Padding(offset, 4) + 4
		discEnd, err := w.sizeField(discStart, info.Discriminator, disc)
		if err != nil {
			return nil, 0, err
		}
		buf, offset = cdrwire.WriteMemberHeader(buf, offset, w.order, info.Discriminator.ID, discEnd-discStart, false)
		buf, offset, err = w.writeField(buf, offset, info.Discriminator, disc)
		if err != nil {
			return nil, 0, err
		}
		if caseField != nil {
			val, _ := v.Get(caseField.Name)
			fieldStart := offset + cdrwire.Padding(offset, 4) + 4
			fieldEnd, err := w.sizeField(fieldStart, caseField, val)
			if err != nil {
				return nil, 0, err
			}
			buf, offset = cdrwire.WriteMemberHeader(buf, offset, w.order, caseField.ID, fieldEnd-fieldStart, false)
			buf, offset, err = w.writeField(buf, offset, caseField, val)
			if err != nil {
				return nil, 0, err
			}
		}
		buf, offset = cdrwire.WriteSentinelHeader(buf, offset, w.order)
		return buf, offset, nil
	}
	var err error
	buf, offset, err = w.writeField(buf, offset, info.Discriminator, disc)
	if err != nil {
		return nil, 0, err
	}
	if caseField != nil {
		val, _ := v.Get(caseField.Name)
		buf, offset, err = w.writeField(buf, offset, caseField, val)
		if err != nil {
			return nil, 0, err
		}
	}
	return buf, offset, nil
}

func (w *Writer) writeField(buf []byte, offset int, fi *FieldDeserInfo, v Value) ([]byte, int, error) {
	if fi.IsConstant {
		return buf, offset, nil
	}
	switch {
	case len(fi.ArrayLengths) > 0:
		arr := v.(ArrayValue)
		elem := scalarInfo(fi)
		var err error
		for _, e := range arr {
			buf, offset, err = w.writeScalar(buf, offset, elem, e)
			if err != nil {
				return nil, 0, err
			}
		}
		return buf, offset, nil
	case fi.IsSequence:
		arr := v.(ArrayValue)
		buf, offset = cdrwire.WriteDelimiterHeader(buf, offset, w.order, len(arr)) // length prefix; 4-byte aligned u32
		elem := scalarInfo(fi)
		var err error
		for _, e := range arr {
			buf, offset, err = w.writeScalar(buf, offset, elem, e)
			if err != nil {
				return nil, 0, err
			}
		}
		return buf, offset, nil
	default:
		return w.writeScalar(buf, offset, fi, v)
	}
}

func (w *Writer) writeScalar(buf []byte, offset int, fi *FieldDeserInfo, v Value) ([]byte, int, error) {
	if fi.IsComplex {
		switch fi.ComplexKind {
		case resolver.KindStruct:
			sub, _ := w.cache.Struct(fi.Type)
			return w.writeStruct(buf, offset, sub, v.(*StructValue))
		case resolver.KindUnion:
			sub, _ := w.cache.Union(fi.Type)
			return w.writeUnion(buf, offset, sub, v.(*StructValue))
		}
	}
	if isStringType(fi.Type) {
		s := string(v.(StringValue))
		if fi.Type == idl.PrimitiveWString {
			n := utf16Len(s)
			buf, offset = cdrwire.WriteDelimiterHeader(buf, offset, w.order, 2*n+2)
			buf = encodeUTF16(buf, w.order, s)
			buf = w.order.AppendUint16(buf, 0)
			offset += n*2 + 2
			return buf, offset, nil
		}
		encoded := []byte(s)
		buf, offset = cdrwire.WriteDelimiterHeader(buf, offset, w.order, len(encoded)+1)
		buf = append(buf, encoded...)
		buf = append(buf, 0)
		offset += len(encoded) + 1
		return buf, offset, nil
	}
	pad := cdrwire.Padding(offset, mustSize(fi.Type))
	buf = appendZeroPad(buf, pad)
	offset += pad
	buf, offset = appendPrimitive(buf, offset, w.order, fi.Type, v)
	return buf, offset, nil
}

func mustSize(t string) int {
	size, _ := primitiveSize(t)
	return size
}

func appendZeroPad(buf []byte, n int) []byte {
	for i := 0; i < n; i++ {
		buf = append(buf, 0)
	}
	return buf
}

// asConstValue converts a decoded discriminator Value into the
// idl.ConstValue form union case predicates are compared against.
func asConstValue(v Value) *idl.ConstValue {
	switch t := v.(type) {
	case Int8Value:
		return &idl.ConstValue{Kind: idl.ConstInt, Int: int64(t)}
	case Uint8Value:
		return &idl.ConstValue{Kind: idl.ConstInt, Int: int64(t)}
	case Int16Value:
		return &idl.ConstValue{Kind: idl.ConstInt, Int: int64(t)}
	case Uint16Value:
		return &idl.ConstValue{Kind: idl.ConstInt, Int: int64(t)}
	case Int32Value:
		return &idl.ConstValue{Kind: idl.ConstInt, Int: int64(t)}
	case Uint32Value:
		return &idl.ConstValue{Kind: idl.ConstInt, Int: int64(t)}
	case Int64Value:
		return &idl.ConstValue{Kind: idl.ConstInt, Int: int64(t)}
	case Uint64Value:
		return &idl.ConstValue{Kind: idl.ConstInt, Int: int64(t)}
	case BoolValue:
		return &idl.ConstValue{Kind: idl.ConstBool, Bool: bool(t)}
	default:
		return nil
	}
}
