package cdrwire

import "errors"

// Member header PID sentinels, per the XCDR2 parameter-list protocol.
const (
	// ExtendedPID marks a member header using the out-of-line 32-bit id
	// + 32-bit size extended form instead of the inline 16-bit short form.
	ExtendedPID = 0x3F01

	// SentinelPID terminates the member list of a parameter-list-framed
	// struct or union.
	SentinelPID = 0x3F02

	pidMask          = 0x3FFF
	mustUnderstandBit = 0x4000
)

// ErrUnexpectedSentinel indicates a parameter-list member header sentinel
// was missing or malformed where one was required.
var ErrUnexpectedSentinel = errors.New("cdrwire: expected sentinel member header")

// ReadDelimiterHeader reads the 4-byte aligned u32 body length at offset
// and returns it along with the offset immediately following the header.
func ReadDelimiterHeader(data []byte, offset int, order ByteOrder) (length, next int, err error) {
	offset += Padding(offset, 4)
	v, err := order.DecodeUint32(sliceFrom(data, offset))
	if err != nil {
		return 0, 0, err
	}
	return int(v), offset + 4, nil
}

// WriteDelimiterHeader writes the 4-byte aligned u32 body length at offset
// and returns the offset immediately following the header.
func WriteDelimiterHeader(buf []byte, offset int, order ByteOrder, length int) ([]byte, int) {
	pad := Padding(offset, 4)
	buf = appendZeros(buf, pad)
	buf = order.AppendUint32(buf, uint32(length))
	return buf, offset + pad + 4
}

// MemberHeader describes a decoded parameter-list member header.
//
// IsSentinel is true when the header is the SentinelPID marker that
// terminates the member list; in that case MemberID and ObjectSize are
// not meaningful.
type MemberHeader struct {
	MemberID       int
	ObjectSize     int
	MustUnderstand bool
	IsSentinel     bool
}

// ReadMemberHeader reads one member header at offset (aligned to 4 bytes
// from the payload origin) and returns the decoded header along with the
// offset immediately following it.
func ReadMemberHeader(data []byte, offset int, order ByteOrder) (MemberHeader, int, error) {
	offset += Padding(offset, 4)
	idHeader, err := order.DecodeUint16(sliceFrom(data, offset))
	if err != nil {
		return MemberHeader{}, 0, err
	}
	pid := int(idHeader) & pidMask
	if pid == SentinelPID {
		return MemberHeader{IsSentinel: true}, offset + 4, nil
	}
	mustUnderstand := int(idHeader)&mustUnderstandBit != 0
	offset += 2

	if pid == ExtendedPID {
		// Skip the short-form size field that precedes the extended id/size pair.
		offset += 2
		memberID, err := order.DecodeUint32(sliceFrom(data, offset))
		if err != nil {
			return MemberHeader{}, 0, err
		}
		offset += 4
		objSize, err := order.DecodeUint32(sliceFrom(data, offset))
		if err != nil {
			return MemberHeader{}, 0, err
		}
		offset += 4
		return MemberHeader{MemberID: int(memberID), ObjectSize: int(objSize), MustUnderstand: mustUnderstand}, offset, nil
	}

	objSize, err := order.DecodeUint16(sliceFrom(data, offset))
	if err != nil {
		return MemberHeader{}, 0, err
	}
	offset += 2
	return MemberHeader{MemberID: pid, ObjectSize: int(objSize), MustUnderstand: mustUnderstand}, offset, nil
}

// WriteMemberHeader writes a short-form member header (inline 16-bit
// size) at offset and returns the updated buffer and the offset
// immediately following the header.
//
// objectSize is truncated to 16 bits; callers needing to encode an
// object larger than 65535 bytes must use the extended form, which this
// package does not emit (the writer only ever produces headers for
// individually-sized fields, which XCDR2 does not require to exceed that
// bound in practice for this codec's supported types).
func WriteMemberHeader(buf []byte, offset int, order ByteOrder, memberID int, objectSize int, mustUnderstand bool) ([]byte, int) {
	pad := Padding(offset, 4)
	buf = appendZeros(buf, pad)
	header := uint16(memberID & pidMask)
	if mustUnderstand {
		header |= mustUnderstandBit
	}
	buf = order.AppendUint16(buf, header)
	buf = order.AppendUint16(buf, uint16(objectSize&0xFFFF))
	return buf, offset + pad + 4
}

// WriteSentinelHeader writes the SentinelPID terminator header at offset
// and returns the updated buffer and the offset immediately following it.
func WriteSentinelHeader(buf []byte, offset int, order ByteOrder) ([]byte, int) {
	pad := Padding(offset, 4)
	buf = appendZeros(buf, pad)
	buf = order.AppendUint16(buf, SentinelPID)
	buf = order.AppendUint16(buf, 0)
	return buf, offset + pad + 4
}

func appendZeros(buf []byte, n int) []byte {
	for i := 0; i < n; i++ {
		buf = append(buf, 0)
	}
	return buf
}

// sliceFrom returns data[offset:] or nil if offset is out of range,
// letting the Decode* functions report ErrTruncated uniformly.
func sliceFrom(data []byte, offset int) []byte {
	if offset < 0 || offset > len(data) {
		return nil
	}
	return data[offset:]
}
