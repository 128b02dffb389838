package cdrwire

import (
	"bytes"
	"math"
	"testing"
)

func TestAppendUint32Endian(t *testing.T) {
	tests := []struct {
		name  string
		order ByteOrder
		value uint32
		want  []byte
	}{
		{"le_zero", LittleEndian, 0, []byte{0, 0, 0, 0}},
		{"le_value", LittleEndian, 0x12345678, []byte{0x78, 0x56, 0x34, 0x12}},
		{"be_value", BigEndian, 0x12345678, []byte{0x12, 0x34, 0x56, 0x78}},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got := tc.order.AppendUint32(nil, tc.value)
			if !bytes.Equal(got, tc.want) {
				t.Errorf("AppendUint32(%d) = %v, want %v", tc.value, got, tc.want)
			}
			back, err := tc.order.DecodeUint32(got)
			if err != nil || back != tc.value {
				t.Errorf("DecodeUint32 round-trip = (%d, %v), want %d", back, err, tc.value)
			}
		})
	}
}

func TestDecodeTruncated(t *testing.T) {
	if _, err := LittleEndian.DecodeUint32([]byte{1, 2}); err != ErrTruncated {
		t.Fatalf("expected ErrTruncated, got %v", err)
	}
	if _, err := LittleEndian.DecodeUint64([]byte{1, 2, 3}); err != ErrTruncated {
		t.Fatalf("expected ErrTruncated, got %v", err)
	}
	if _, err := DecodeBool(nil); err != ErrTruncated {
		t.Fatalf("expected ErrTruncated, got %v", err)
	}
}

func TestFloatRoundTrip(t *testing.T) {
	for _, order := range []ByteOrder{LittleEndian, BigEndian} {
		f32 := float32(3.14159)
		b := order.AppendFloat32(nil, f32)
		got, err := order.DecodeFloat32(b)
		if err != nil || got != f32 {
			t.Errorf("float32 round trip = (%v, %v), want %v", got, err, f32)
		}

		f64 := math.Pi
		b64 := order.AppendFloat64(nil, f64)
		got64, err := order.DecodeFloat64(b64)
		if err != nil || got64 != f64 {
			t.Errorf("float64 round trip = (%v, %v), want %v", got64, err, f64)
		}
	}
}

func TestBoolEncoding(t *testing.T) {
	if got := AppendBool(nil, true); !bytes.Equal(got, []byte{1}) {
		t.Errorf("AppendBool(true) = %v", got)
	}
	if got := AppendBool(nil, false); !bytes.Equal(got, []byte{0}) {
		t.Errorf("AppendBool(false) = %v", got)
	}
}
