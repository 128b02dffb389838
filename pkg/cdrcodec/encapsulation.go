package cdrcodec

import "github.com/foxglove/go-omgidl/internal/cdrwire"

// EncapsulationKind identifies one of the CDR encapsulation schemes
// recognized by the codec, encoded as the second byte of the 4-byte
// encapsulation header.
type EncapsulationKind uint8

const (
	CDR_BE            EncapsulationKind = 0x00
	CDR_LE            EncapsulationKind = 0x01
	PL_CDR_BE         EncapsulationKind = 0x02
	PL_CDR_LE         EncapsulationKind = 0x03
	RTPS_CDR2_BE      EncapsulationKind = 0x06
	RTPS_CDR2_LE      EncapsulationKind = 0x07
	CDR2_BE           EncapsulationKind = 0x10
	CDR2_LE           EncapsulationKind = 0x11
	PL_CDR2_BE        EncapsulationKind = 0x12
	PL_CDR2_LE        EncapsulationKind = 0x13
	DELIMITED_CDR2_BE EncapsulationKind = 0x14
	DELIMITED_CDR2_LE EncapsulationKind = 0x15
)

var littleEndianKinds = map[EncapsulationKind]bool{
	CDR_LE: true, PL_CDR_LE: true, RTPS_CDR2_LE: true,
	CDR2_LE: true, PL_CDR2_LE: true, DELIMITED_CDR2_LE: true,
}

// ByteOrder returns the wire byte order this encapsulation kind encodes
// its payload in.
func (k EncapsulationKind) ByteOrder() cdrwire.ByteOrder {
	if littleEndianKinds[k] {
		return cdrwire.LittleEndian
	}
	return cdrwire.BigEndian
}

// usesMemberHeader reports whether struct/union bodies under this
// encapsulation kind are framed as a parameter list: a per-field member
// header (PID + size) terminated by a sentinel, rather than a flat,
// positional field sequence.
func (k EncapsulationKind) usesMemberHeader() bool {
	switch k {
	case PL_CDR_BE, PL_CDR_LE, PL_CDR2_BE, PL_CDR2_LE:
		return true
	default:
		return false
	}
}

// usesDelimiterHeader reports whether struct/union bodies under this
// encapsulation kind are preceded by a 4-byte body-length delimiter
// header. Plain CDR2_BE/LE is not included: it is XCDR2's "final"
// (plain) representation, with no delimiter header, no member header,
// and no extensibility support — only DELIMITED_CDR2_*
// ("appendable", delimiter header only) and PL_CDR2_* ("mutable",
// delimiter header plus member headers) carry one.
func (k EncapsulationKind) usesDelimiterHeader() bool {
	switch k {
	case PL_CDR2_BE, PL_CDR2_LE, DELIMITED_CDR2_BE, DELIMITED_CDR2_LE:
		return true
	default:
		return false
	}
}

// legacyParameterList reports whether k is the legacy XCDR1 parameter
// list framing, which this codec does not implement (see Open Question
// decision (a) in SPEC_FULL.md): a root using PL_CDR_BE/LE is rejected
// with ErrUnsupportedEncapsulation rather than silently misencoding.
func (k EncapsulationKind) legacyParameterList() bool {
	return k == PL_CDR_BE || k == PL_CDR_LE
}

// encapsulationHeaderSize is the fixed 4-byte header preceding every
// CDR-encoded message: a leading zero byte, the encapsulation kind,
// and two bytes of representation options (always zero here).
const encapsulationHeaderSize = 4

func writeEncapsulationHeader(buf []byte, kind EncapsulationKind) []byte {
	return append(buf, 0, byte(kind), 0, 0)
}

func readEncapsulationHeader(data []byte) (EncapsulationKind, error) {
	if len(data) < encapsulationHeaderSize {
		return 0, ErrShortBuffer
	}
	return EncapsulationKind(data[1]), nil
}
