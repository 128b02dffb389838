package cdrwire

import (
	"encoding/binary"
	"errors"
	"math"
)

// ErrTruncated indicates the input data was shorter than required.
var ErrTruncated = errors.New("cdrwire: truncated input")

// ByteOrder selects the endianness of an encapsulation.
type ByteOrder int

const (
	// LittleEndian is used by CDR_LE, PL_CDR_LE, CDR2_LE, PL_CDR2_LE,
	// DELIMITED_CDR2_LE and RTPS_CDR2_LE encapsulations.
	LittleEndian ByteOrder = iota
	// BigEndian is used by the _BE counterparts of every encapsulation kind.
	BigEndian
)

// stdOrder returns the encoding/binary.ByteOrder matching o.
func (o ByteOrder) stdOrder() binary.ByteOrder {
	if o == BigEndian {
		return binary.BigEndian
	}
	return binary.LittleEndian
}

// Sizes of the fixed-width primitive encodings, in bytes.
const (
	BoolSize    = 1
	Int8Size    = 1
	Int16Size   = 2
	Int32Size   = 4
	Int64Size   = 8
	Float32Size = 4
	Float64Size = 8
)

// AppendBool appends a single byte: 1 for true, 0 for false.
func AppendBool(buf []byte, v bool) []byte {
	if v {
		return append(buf, 1)
	}
	return append(buf, 0)
}

// DecodeBool decodes a bool from the first byte of data.
func DecodeBool(data []byte) (bool, error) {
	if len(data) < 1 {
		return false, ErrTruncated
	}
	return data[0] != 0, nil
}

// AppendUint8 appends a single unsigned byte.
func AppendUint8(buf []byte, v uint8) []byte { return append(buf, v) }

// DecodeUint8 decodes a single unsigned byte.
func DecodeUint8(data []byte) (uint8, error) {
	if len(data) < 1 {
		return 0, ErrTruncated
	}
	return data[0], nil
}

// AppendUint16 appends v in the given byte order.
func (o ByteOrder) AppendUint16(buf []byte, v uint16) []byte {
	var tmp [2]byte
	o.stdOrder().PutUint16(tmp[:], v)
	return append(buf, tmp[:]...)
}

// DecodeUint16 decodes a uint16 in the given byte order.
func (o ByteOrder) DecodeUint16(data []byte) (uint16, error) {
	if len(data) < 2 {
		return 0, ErrTruncated
	}
	return o.stdOrder().Uint16(data), nil
}

// AppendUint32 appends v in the given byte order.
func (o ByteOrder) AppendUint32(buf []byte, v uint32) []byte {
	var tmp [4]byte
	o.stdOrder().PutUint32(tmp[:], v)
	return append(buf, tmp[:]...)
}

// DecodeUint32 decodes a uint32 in the given byte order.
func (o ByteOrder) DecodeUint32(data []byte) (uint32, error) {
	if len(data) < 4 {
		return 0, ErrTruncated
	}
	return o.stdOrder().Uint32(data), nil
}

// AppendUint64 appends v in the given byte order.
func (o ByteOrder) AppendUint64(buf []byte, v uint64) []byte {
	var tmp [8]byte
	o.stdOrder().PutUint64(tmp[:], v)
	return append(buf, tmp[:]...)
}

// DecodeUint64 decodes a uint64 in the given byte order.
func (o ByteOrder) DecodeUint64(data []byte) (uint64, error) {
	if len(data) < 8 {
		return 0, ErrTruncated
	}
	return o.stdOrder().Uint64(data), nil
}

// AppendFloat32 appends the IEEE-754 binary32 bits of v.
func (o ByteOrder) AppendFloat32(buf []byte, v float32) []byte {
	return o.AppendUint32(buf, math.Float32bits(v))
}

// DecodeFloat32 decodes an IEEE-754 binary32 value.
func (o ByteOrder) DecodeFloat32(data []byte) (float32, error) {
	bits, err := o.DecodeUint32(data)
	if err != nil {
		return 0, err
	}
	return math.Float32frombits(bits), nil
}

// AppendFloat64 appends the IEEE-754 binary64 bits of v.
func (o ByteOrder) AppendFloat64(buf []byte, v float64) []byte {
	return o.AppendUint64(buf, math.Float64bits(v))
}

// DecodeFloat64 decodes an IEEE-754 binary64 value.
func (o ByteOrder) DecodeFloat64(data []byte) (float64, error) {
	bits, err := o.DecodeUint64(data)
	if err != nil {
		return 0, err
	}
	return math.Float64frombits(bits), nil
}
