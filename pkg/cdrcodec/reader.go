package cdrcodec

import (
	"github.com/foxglove/go-omgidl/internal/cdrwire"
	"github.com/foxglove/go-omgidl/pkg/idl"
	"github.com/foxglove/go-omgidl/pkg/resolver"
)

// Reader decodes CDR wire bytes rooted at one schema definition into
// StructValues.
//
// A Reader is immutable after construction and safe for concurrent use:
// each ReadMessage call only touches its own input buffer and output
// value.
type Reader struct {
	cache  *DeserInfoCache
	root   *StructDeserInfo
	limits Limits
}

// NewReader builds a DeserInfoCache for schema (which must already have
// been resolver.Resolve'd) and returns a Reader for the struct named
// rootName. The encapsulation kind in opts fixes the framing (flat,
// delimited, or parameter-list) the reader accepts; each message's own
// header supplies the byte order, and a message whose header names
// legacy PL_CDR or a different framing is rejected. opts.Limits bounds the
// sequence/string lengths and nesting depth a single ReadMessage call
// will honor, guarding against a corrupt or hostile length field driving
// an unbounded allocation.
func NewReader(schema *idl.Schema, idx *resolver.Index, rootName string, opts Options) (*Reader, error) {
	cache, err := BuildDeserInfoCache(schema, idx, opts.EncapsulationKind)
	if err != nil {
		return nil, err
	}
	root, ok := cache.Struct(rootName)
	if !ok {
		return nil, ErrRootNotFound
	}
	return &Reader{cache: cache, root: root, limits: opts.Limits}, nil
}

// ReadMessage decodes one message from data, starting with its 4-byte
// encapsulation header.
func (r *Reader) ReadMessage(data []byte) (*StructValue, error) {
	kind, err := readEncapsulationHeader(data)
	if err != nil {
		return nil, err
	}
	if kind.legacyParameterList() {
		return nil, ErrUnsupportedEncapsulation
	}
	if kind.usesDelimiterHeader() != r.cache.Kind.usesDelimiterHeader() || kind.usesMemberHeader() != r.cache.Kind.usesMemberHeader() {
		return nil, newCodecError(OpDecode, r.root.Name, "", 0, ErrUnsupportedEncapsulation, "message encapsulation kind %#x does not match the framing this reader was built for", byte(kind))
	}
	v, _, err := r.readStruct(data[encapsulationHeaderSize:], 0, r.root, kind.ByteOrder(), 0)
	if err != nil {
		return nil, err
	}
	return v, nil
}

func (r *Reader) checkDepth(depth int, typ string) error {
	if r.limits.MaxNestingDepth > 0 && depth > r.limits.MaxNestingDepth {
		return newCodecError(OpDecode, typ, "", 0, ErrBoundsViolation, "nesting depth %d exceeds limit %d", depth, r.limits.MaxNestingDepth)
	}
	return nil
}

func (r *Reader) readStruct(data []byte, offset int, info *StructDeserInfo, order cdrwire.ByteOrder, depth int) (*StructValue, int, error) {
	if err := r.checkDepth(depth, info.Name); err != nil {
		return nil, 0, err
	}
	out := NewStructValue()
	for _, fi := range info.Fields {
		if fi.IsConstant {
			out.Set(fi.Name, constantValue(fi))
		}
	}

	if info.UsesDelimiterHeader {
		_, next, err := cdrwire.ReadDelimiterHeader(data, offset, order)
		if err != nil {
			return nil, 0, newCodecError(OpDecode, info.Name, "", offset, err, "reading delimiter header")
		}
		offset = next
	}

	if info.UsesMemberHeader {
		byID := make(map[int]*FieldDeserInfo, len(info.Fields))
		for _, fi := range info.Fields {
			if !fi.IsConstant {
				byID[fi.ID] = fi
			}
		}
		for {
			hdr, next, err := cdrwire.ReadMemberHeader(data, offset, order)
			if err != nil {
				return nil, 0, newCodecError(OpDecode, info.Name, "", offset, err, "reading member header")
			}
			offset = next
			if hdr.IsSentinel {
				break
			}
			fi, known := byID[hdr.MemberID]
			if !known {
				// Unrecognized member: skip over it using the declared
				// size and recover locally, matching parameter-list
				// forward-compatibility semantics.
				offset += hdr.ObjectSize
				continue
			}
			val, next, err := r.readField(data, offset, fi, order, depth)
			if err != nil {
				return nil, 0, err
			}
			out.Set(fi.Name, val)
			offset = next
		}
		return out, offset, nil
	}

	for _, fi := range info.Fields {
		if fi.IsConstant {
			continue
		}
		val, next, err := r.readField(data, offset, fi, order, depth)
		if err != nil {
			return nil, 0, err
		}
		out.Set(fi.Name, val)
		offset = next
	}
	return out, offset, nil
}

func (r *Reader) readUnion(data []byte, offset int, info *UnionDeserInfo, order cdrwire.ByteOrder, depth int) (*StructValue, int, error) {
	if err := r.checkDepth(depth, info.Name); err != nil {
		return nil, 0, err
	}
	out := NewStructValue()

	if info.UsesDelimiterHeader {
		_, next, err := cdrwire.ReadDelimiterHeader(data, offset, order)
		if err != nil {
			return nil, 0, newCodecError(OpDecode, info.Name, "", offset, err, "reading delimiter header")
		}
		offset = next
	}

	if info.UsesMemberHeader {
		_, next, err := cdrwire.ReadMemberHeader(data, offset, order)
		if err != nil {
			return nil, 0, newCodecError(OpDecode, info.Name, "", offset, err, "reading discriminator header")
		}
		offset = next
		disc, next, err := r.readField(data, offset, info.Discriminator, order, depth)
		if err != nil {
			return nil, 0, err
		}
		offset = next
		out.Set(UnionDiscriminatorField, disc)

		caseField := info.CaseField(asConstValue(disc))
		chdr, next, err := cdrwire.ReadMemberHeader(data, offset, order)
		if err != nil {
			return nil, 0, newCodecError(OpDecode, info.Name, "", offset, err, "reading case header")
		}
		offset = next
		if !chdr.IsSentinel {
			if caseField == nil {
				offset += chdr.ObjectSize
			} else {
				val, next, err := r.readField(data, offset, caseField, order, depth)
				if err != nil {
					return nil, 0, err
				}
				out.Set(caseField.Name, val)
				offset = next
			}
			shdr, next, err := cdrwire.ReadMemberHeader(data, offset, order)
			if err != nil {
				return nil, 0, newCodecError(OpDecode, info.Name, "", offset, err, "reading union sentinel")
			}
			if !shdr.IsSentinel {
				return nil, 0, newCodecError(OpDecode, info.Name, "", offset, ErrUnexpectedSentinel, "expected sentinel terminating union")
			}
			offset = next
		}
		return out, offset, nil
	}

	disc, next, err := r.readField(data, offset, info.Discriminator, order, depth)
	if err != nil {
		return nil, 0, err
	}
	offset = next
	out.Set(UnionDiscriminatorField, disc)

	if caseField := info.CaseField(asConstValue(disc)); caseField != nil {
		val, next, err := r.readField(data, offset, caseField, order, depth)
		if err != nil {
			return nil, 0, err
		}
		out.Set(caseField.Name, val)
		offset = next
	}
	return out, offset, nil
}

func (r *Reader) readField(data []byte, offset int, fi *FieldDeserInfo, order cdrwire.ByteOrder, depth int) (Value, int, error) {
	switch {
	case len(fi.ArrayLengths) > 0:
		n := fi.ArrayLengths[0]
		elem := scalarInfo(fi)
		arr := make(ArrayValue, 0, n)
		for i := 0; i < n; i++ {
			val, next, err := r.readScalar(data, offset, elem, order, depth)
			if err != nil {
				return nil, 0, err
			}
			arr = append(arr, val)
			offset = next
		}
		return arr, offset, nil
	case fi.IsSequence:
		length, next, err := cdrwire.ReadDelimiterHeader(data, offset, order)
		if err != nil {
			return nil, 0, newCodecError(OpDecode, fi.Type, fi.Name, offset, err, "reading sequence length")
		}
		offset = next
		if fi.SequenceBound != nil && length > *fi.SequenceBound {
			return nil, 0, newCodecError(OpDecode, fi.Type, fi.Name, offset, ErrBoundsViolation, "sequence length %d exceeds bound %d", length, *fi.SequenceBound)
		}
		if r.limits.MaxSequenceLength > 0 && length > r.limits.MaxSequenceLength {
			return nil, 0, newCodecError(OpDecode, fi.Type, fi.Name, offset, ErrBoundsViolation, "sequence length %d exceeds configured limit %d", length, r.limits.MaxSequenceLength)
		}
		elem := scalarInfo(fi)
		arr := make(ArrayValue, 0, length)
		for i := 0; i < length; i++ {
			val, next, err := r.readScalar(data, offset, elem, order, depth)
			if err != nil {
				return nil, 0, err
			}
			arr = append(arr, val)
			offset = next
		}
		return arr, offset, nil
	default:
		return r.readScalar(data, offset, fi, order, depth)
	}
}

func (r *Reader) readScalar(data []byte, offset int, fi *FieldDeserInfo, order cdrwire.ByteOrder, depth int) (Value, int, error) {
	if fi.IsComplex {
		switch fi.ComplexKind {
		case resolver.KindStruct:
			sub, ok := r.cache.Struct(fi.Type)
			if !ok {
				return nil, 0, newCodecError(OpDecode, fi.Type, fi.Name, offset, ErrUnrecognizedFieldType, "struct %q not found in cache", fi.Type)
			}
			v, next, err := r.readStruct(data, offset, sub, order, depth+1)
			return v, next, err
		case resolver.KindUnion:
			sub, ok := r.cache.Union(fi.Type)
			if !ok {
				return nil, 0, newCodecError(OpDecode, fi.Type, fi.Name, offset, ErrUnrecognizedFieldType, "union %q not found in cache", fi.Type)
			}
			v, next, err := r.readUnion(data, offset, sub, order, depth+1)
			return v, next, err
		}
	}
	if isStringType(fi.Type) {
		length, next, err := cdrwire.ReadDelimiterHeader(data, offset, order)
		if err != nil {
			return nil, 0, newCodecError(OpDecode, fi.Type, fi.Name, offset, err, "reading string length")
		}
		offset = next
		if fi.Type == idl.PrimitiveWString {
			n := (length - 2) / 2
			if fi.StringUpperBound != nil && n > *fi.StringUpperBound {
				return nil, 0, newCodecError(OpDecode, fi.Type, fi.Name, offset, ErrBoundsViolation, "wstring length %d exceeds bound %d", n, *fi.StringUpperBound)
			}
			if r.limits.MaxStringLength > 0 && n > r.limits.MaxStringLength {
				return nil, 0, newCodecError(OpDecode, fi.Type, fi.Name, offset, ErrBoundsViolation, "wstring length %d exceeds configured limit %d", n, r.limits.MaxStringLength)
			}
			s, err := decodeUTF16(data, offset, order, n)
			if err != nil {
				return nil, 0, newCodecError(OpDecode, fi.Type, fi.Name, offset, err, "reading wstring content")
			}
			return StringValue(s), offset + n*2 + 2, nil
		}
		n := length - 1
		if fi.StringUpperBound != nil && n > *fi.StringUpperBound {
			return nil, 0, newCodecError(OpDecode, fi.Type, fi.Name, offset, ErrBoundsViolation, "string length %d exceeds bound %d", n, *fi.StringUpperBound)
		}
		if r.limits.MaxStringLength > 0 && n > r.limits.MaxStringLength {
			return nil, 0, newCodecError(OpDecode, fi.Type, fi.Name, offset, ErrBoundsViolation, "string length %d exceeds configured limit %d", n, r.limits.MaxStringLength)
		}
		if offset+n+1 > len(data) {
			return nil, 0, newCodecError(OpDecode, fi.Type, fi.Name, offset, ErrShortBuffer, "string content truncated")
		}
		s := string(data[offset : offset+n])
		return StringValue(s), offset + n + 1, nil
	}
	size, ok := primitiveSize(fi.Type)
	if !ok {
		return nil, 0, newCodecError(OpDecode, fi.Type, fi.Name, offset, ErrUnrecognizedFieldType, "unrecognized field type %q", fi.Type)
	}
	offset += cdrwire.Padding(offset, size)
	v, next, err := readPrimitive(data, offset, order, fi.Type)
	if err != nil {
		return nil, 0, newCodecError(OpDecode, fi.Type, fi.Name, offset, err, "reading primitive")
	}
	return v, next, nil
}
