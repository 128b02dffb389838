package cdrcodec

import (
	"bytes"
	"testing"

	"github.com/foxglove/go-omgidl/pkg/idl"
	"github.com/foxglove/go-omgidl/pkg/resolver"
)

func parseAndResolve(t *testing.T, src string) (*idl.Schema, *resolver.Index) {
	t.Helper()
	schema, errs := idl.Parse(src, "t.idl")
	if errs != nil {
		t.Fatalf("parse errors: %v", errs)
	}
	idx, err := resolver.Resolve(schema)
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	return schema, idx
}

func newWriter(t *testing.T, src, root string, kind EncapsulationKind) *Writer {
	t.Helper()
	schema, idx := parseAndResolve(t, src)
	w, err := NewWriter(schema, idx, root, Options{Limits: DefaultLimits, EncapsulationKind: kind})
	if err != nil {
		t.Fatalf("NewWriter: %v", err)
	}
	return w
}

func TestWritePrimitiveFields(t *testing.T) {
	w := newWriter(t, `
struct A {
  int32 num;
  uint8 flag;
};
`, "A", CDR_LE)

	v := NewStructValue()
	v.Set("num", Int32Value(5))
	v.Set("flag", Uint8Value(7))

	got, err := w.WriteMessage(v)
	if err != nil {
		t.Fatalf("WriteMessage: %v", err)
	}
	want := []byte{0, 1, 0, 0, 5, 0, 0, 0, 7}
	if !bytes.Equal(got, want) {
		t.Fatalf("got %v, want %v", got, want)
	}
}

func TestWriteFixedUint8Array(t *testing.T) {
	w := newWriter(t, `
struct B {
  uint8 data[4];
};
`, "B", CDR_LE)

	v := NewStructValue()
	v.Set("data", ArrayValue{Uint8Value(1), Uint8Value(2), Uint8Value(3), Uint8Value(4)})

	got, err := w.WriteMessage(v)
	if err != nil {
		t.Fatalf("WriteMessage: %v", err)
	}
	want := []byte{0, 1, 0, 0, 1, 2, 3, 4}
	if !bytes.Equal(got, want) {
		t.Fatalf("got %v, want %v", got, want)
	}
}

func TestWriteStringField(t *testing.T) {
	w := newWriter(t, `
struct C {
  string name;
};
`, "C", CDR_LE)

	v := NewStructValue()
	v.Set("name", StringValue("hi"))

	got, err := w.WriteMessage(v)
	if err != nil {
		t.Fatalf("WriteMessage: %v", err)
	}
	want := []byte{0, 1, 0, 0, 3, 0, 0, 0, 104, 105, 0}
	if !bytes.Equal(got, want) {
		t.Fatalf("got %v, want %v", got, want)
	}
}

func TestWriteWStringField(t *testing.T) {
	w := newWriter(t, `
struct C {
  wstring name;
};
`, "C", CDR_LE)

	v := NewStructValue()
	v.Set("name", StringValue("hi"))

	got, err := w.WriteMessage(v)
	if err != nil {
		t.Fatalf("WriteMessage: %v", err)
	}
	// prefix is the byte length including the 2-byte nul terminator
	// (2*2 code units + 2), not the code-unit count plus one.
	want := []byte{0, 1, 0, 0, 6, 0, 0, 0, 104, 0, 105, 0, 0, 0}
	if !bytes.Equal(got, want) {
		t.Fatalf("got %v, want %v", got, want)
	}
}

func TestWriteNestedStruct(t *testing.T) {
	w := newWriter(t, `
struct Inner {
  int32 num;
};
struct Outer {
  Inner inner;
};
`, "Outer", CDR_LE)

	inner := NewStructValue()
	inner.Set("num", Int32Value(5))
	outer := NewStructValue()
	outer.Set("inner", inner)

	got, err := w.WriteMessage(outer)
	if err != nil {
		t.Fatalf("WriteMessage: %v", err)
	}
	want := []byte{0, 1, 0, 0, 5, 0, 0, 0}
	if !bytes.Equal(got, want) {
		t.Fatalf("got %v, want %v", got, want)
	}
}

func TestWriteSequenceOfInt32(t *testing.T) {
	w := newWriter(t, `
struct D {
  sequence<int32> data;
};
`, "D", CDR_LE)

	v := NewStructValue()
	v.Set("data", ArrayValue{Int32Value(3), Int32Value(7)})

	got, err := w.WriteMessage(v)
	if err != nil {
		t.Fatalf("WriteMessage: %v", err)
	}
	want := []byte{0, 1, 0, 0, 2, 0, 0, 0, 3, 0, 0, 0, 7, 0, 0, 0}
	if !bytes.Equal(got, want) {
		t.Fatalf("got %v, want %v", got, want)
	}
}

func TestWriteSequenceOfStructs(t *testing.T) {
	w := newWriter(t, `
struct Inner {
  int32 num;
};
struct E {
  sequence<Inner> items;
};
`, "E", CDR_LE)

	i1 := NewStructValue()
	i1.Set("num", Int32Value(1))
	i2 := NewStructValue()
	i2.Set("num", Int32Value(2))
	v := NewStructValue()
	v.Set("items", ArrayValue{i1, i2})

	got, err := w.WriteMessage(v)
	if err != nil {
		t.Fatalf("WriteMessage: %v", err)
	}
	want := []byte{0, 1, 0, 0, 2, 0, 0, 0, 1, 0, 0, 0, 2, 0, 0, 0}
	if !bytes.Equal(got, want) {
		t.Fatalf("got %v, want %v", got, want)
	}
}

func TestWriteBoundedSequenceEnforced(t *testing.T) {
	w := newWriter(t, `
struct F {
  sequence<int32,2> data;
};
`, "F", CDR_LE)

	ok := NewStructValue()
	ok.Set("data", ArrayValue{Int32Value(3), Int32Value(7)})
	if _, err := w.WriteMessage(ok); err != nil {
		t.Fatalf("unexpected error for in-bound sequence: %v", err)
	}

	tooLong := NewStructValue()
	tooLong.Set("data", ArrayValue{Int32Value(1), Int32Value(2), Int32Value(3)})
	if _, err := w.WriteMessage(tooLong); err == nil {
		t.Fatalf("expected error for over-bound sequence")
	}
	if _, err := w.CalculateByteSize(tooLong); err == nil {
		t.Fatalf("expected CalculateByteSize to reject an over-bound sequence too")
	}
}

func TestWriteConstantFieldSkipsWireBytes(t *testing.T) {
	w := newWriter(t, `
struct G {
  const int32 CONST = 5;
  int32 num;
};
`, "G", CDR_LE)

	v := NewStructValue()
	v.Set("num", Int32Value(7))

	got, err := w.WriteMessage(v)
	if err != nil {
		t.Fatalf("WriteMessage: %v", err)
	}
	want := []byte{0, 1, 0, 0, 7, 0, 0, 0}
	if !bytes.Equal(got, want) {
		t.Fatalf("got %v, want %v", got, want)
	}
}

func TestWriteBigEndian(t *testing.T) {
	w := newWriter(t, `
struct A {
  int32 num;
};
`, "A", CDR_BE)

	v := NewStructValue()
	v.Set("num", Int32Value(5))

	got, err := w.WriteMessage(v)
	if err != nil {
		t.Fatalf("WriteMessage: %v", err)
	}
	want := []byte{0, 0, 0, 0, 0, 0, 0, 5}
	if !bytes.Equal(got, want) {
		t.Fatalf("got %v, want %v", got, want)
	}
}

func TestWriteBoundedStringEnforced(t *testing.T) {
	w := newWriter(t, `
struct H {
  string<4> name;
};
`, "H", CDR_LE)

	tooLong := NewStructValue()
	tooLong.Set("name", StringValue("toolong"))
	if _, err := w.WriteMessage(tooLong); err == nil {
		t.Fatalf("expected error for over-bound string")
	}
}

func TestWriteUnsupportedLegacyEncapsulation(t *testing.T) {
	schema, idx := parseAndResolve(t, `
struct A {
  int32 num;
};
`)
	_, err := NewWriter(schema, idx, "A", Options{Limits: DefaultLimits, EncapsulationKind: PL_CDR_LE})
	if err == nil {
		t.Fatalf("expected ErrUnsupportedEncapsulation")
	}
}

func TestWriteRootNotFound(t *testing.T) {
	schema, idx := parseAndResolve(t, `
struct A {
  int32 num;
};
`)
	_, err := NewWriter(schema, idx, "DoesNotExist", DefaultOptions)
	if err == nil {
		t.Fatalf("expected ErrRootNotFound")
	}
}
