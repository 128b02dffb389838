// Package integration exercises the codec against a single schema
// covering scalars, sequences, nested structs, and enums, verifying
// that encoding is deterministic (golden-file stable across runs) and
// that every field round-trips through encode/decode unchanged.
package integration

import (
	"bytes"
	"encoding/hex"
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/foxglove/go-omgidl/pkg/cdrcodec"
	"github.com/foxglove/go-omgidl/pkg/idl"
	"github.com/foxglove/go-omgidl/pkg/resolver"
)

const schemaIDL = `
enum Status {
  STATUS_UNKNOWN,
  STATUS_ACTIVE,
  STATUS_INACTIVE
};

struct NestedMessage {
  string name;
  int32 value;
};

struct ScalarTypes {
  boolean bool_val;
  int32 int32_val;
  int64 int64_val;
  uint32 uint32_val;
  uint64 uint64_val;
  float float32_val;
  double float64_val;
  string string_val;
  sequence<octet> bytes_val;
};

struct RepeatedTypes {
  sequence<int32> int32_list;
  sequence<string> string_list;
};

struct ComplexTypes {
  Status status;
  NestedMessage required_nested;
  sequence<NestedMessage> nested_list;
};

struct EdgeCases {
  int32 zero_int;
  int32 negative_one;
  int32 max_int32;
  int32 min_int32;
  int64 max_int64;
  int64 min_int64;
  uint32 max_uint32;
  uint64 max_uint64;
  string empty_string;
  string unicode_string;
};
`

const (
	statusUnknown  = uint32(0)
	statusActive   = uint32(1)
	statusInactive = uint32(2)
)

func loadCodecs(tb testing.TB) (*idl.Schema, *resolver.Index) {
	tb.Helper()
	schema, errs := idl.Parse(schemaIDL, "interop.idl")
	if errs != nil {
		tb.Fatalf("parse: %v", errs)
	}
	idx, err := resolver.Resolve(schema)
	if err != nil {
		tb.Fatalf("resolve: %v", err)
	}
	return schema, idx
}

func newWriterReader(tb testing.TB, schema *idl.Schema, idx *resolver.Index, root string) (*cdrcodec.Writer, *cdrcodec.Reader) {
	tb.Helper()
	opts := cdrcodec.Options{Limits: cdrcodec.DefaultLimits, EncapsulationKind: cdrcodec.CDR_LE}
	w, err := cdrcodec.NewWriter(schema, idx, root, opts)
	if err != nil {
		tb.Fatalf("NewWriter(%s): %v", root, err)
	}
	r, err := cdrcodec.NewReader(schema, idx, root, opts)
	if err != nil {
		tb.Fatalf("NewReader(%s): %v", root, err)
	}
	return w, r
}

func makeScalarTypes() *cdrcodec.StructValue {
	v := cdrcodec.NewStructValue()
	v.Set("bool_val", cdrcodec.BoolValue(true))
	v.Set("int32_val", cdrcodec.Int32Value(-42))
	v.Set("int64_val", cdrcodec.Int64Value(-9223372036854775807))
	v.Set("uint32_val", cdrcodec.Uint32Value(4294967295))
	v.Set("uint64_val", cdrcodec.Uint64Value(18446744073709551615))
	v.Set("float32_val", cdrcodec.Float32Value(3.14159))
	v.Set("float64_val", cdrcodec.Float64Value(2.718281828459045))
	v.Set("string_val", cdrcodec.StringValue("hello, omgidl!"))
	v.Set("bytes_val", cdrcodec.ArrayValue{
		cdrcodec.Uint8Value(0xde), cdrcodec.Uint8Value(0xad),
		cdrcodec.Uint8Value(0xbe), cdrcodec.Uint8Value(0xef),
	})
	return v
}

func makeRepeatedTypes() *cdrcodec.StructValue {
	v := cdrcodec.NewStructValue()
	v.Set("int32_list", cdrcodec.ArrayValue{
		cdrcodec.Int32Value(1), cdrcodec.Int32Value(-2), cdrcodec.Int32Value(3),
		cdrcodec.Int32Value(-4), cdrcodec.Int32Value(5),
	})
	v.Set("string_list", cdrcodec.ArrayValue{
		cdrcodec.StringValue("alpha"), cdrcodec.StringValue("beta"), cdrcodec.StringValue("gamma"),
	})
	return v
}

func makeNestedMessage(name string, value int32) *cdrcodec.StructValue {
	v := cdrcodec.NewStructValue()
	v.Set("name", cdrcodec.StringValue(name))
	v.Set("value", cdrcodec.Int32Value(value))
	return v
}

func makeComplexTypes() *cdrcodec.StructValue {
	v := cdrcodec.NewStructValue()
	v.Set("status", cdrcodec.Uint32Value(statusActive))
	v.Set("required_nested", makeNestedMessage("required", 789))
	v.Set("nested_list", cdrcodec.ArrayValue{
		makeNestedMessage("first", 1),
		makeNestedMessage("second", 2),
	})
	return v
}

func makeEdgeCases() *cdrcodec.StructValue {
	v := cdrcodec.NewStructValue()
	v.Set("zero_int", cdrcodec.Int32Value(0))
	v.Set("negative_one", cdrcodec.Int32Value(-1))
	v.Set("max_int32", cdrcodec.Int32Value(math.MaxInt32))
	v.Set("min_int32", cdrcodec.Int32Value(math.MinInt32))
	v.Set("max_int64", cdrcodec.Int64Value(math.MaxInt64))
	v.Set("min_int64", cdrcodec.Int64Value(math.MinInt64))
	v.Set("max_uint32", cdrcodec.Uint32Value(math.MaxUint32))
	v.Set("max_uint64", cdrcodec.Uint64Value(math.MaxUint64))
	v.Set("empty_string", cdrcodec.StringValue(""))
	v.Set("unicode_string", cdrcodec.StringValue("Hello, 世界! \U0001F389"))
	return v
}

func TestScalarTypesEncodeDecode(t *testing.T) {
	schema, idx := loadCodecs(t)
	w, r := newWriterReader(t, schema, idx, "ScalarTypes")

	original := makeScalarTypes()
	data, err := w.WriteMessage(original)
	if err != nil {
		t.Fatalf("WriteMessage failed: %v", err)
	}
	t.Logf("ScalarTypes encoded size: %d bytes", len(data))
	t.Logf("ScalarTypes hex: %s", hex.EncodeToString(data))

	decoded, err := r.ReadMessage(data)
	if err != nil {
		t.Fatalf("ReadMessage failed: %v", err)
	}

	for _, name := range []string{
		"bool_val", "int32_val", "int64_val", "uint32_val", "uint64_val",
		"float32_val", "float64_val", "string_val",
	} {
		want, _ := original.Get(name)
		got, ok := decoded.Get(name)
		if !ok || got != want {
			t.Errorf("%s mismatch: got %v, want %v", name, got, want)
		}
	}

	wantBytes, _ := original.Get("bytes_val")
	gotBytes, ok := decoded.Get("bytes_val")
	if !ok {
		t.Fatal("bytes_val missing from decoded message")
	}
	if !equalArrayValues(gotBytes.(cdrcodec.ArrayValue), wantBytes.(cdrcodec.ArrayValue)) {
		t.Errorf("bytes_val mismatch: got %v, want %v", gotBytes, wantBytes)
	}
}

func TestRepeatedTypesEncodeDecode(t *testing.T) {
	schema, idx := loadCodecs(t)
	w, r := newWriterReader(t, schema, idx, "RepeatedTypes")

	original := makeRepeatedTypes()
	data, err := w.WriteMessage(original)
	if err != nil {
		t.Fatalf("WriteMessage failed: %v", err)
	}
	t.Logf("RepeatedTypes encoded size: %d bytes", len(data))
	t.Logf("RepeatedTypes hex: %s", hex.EncodeToString(data))

	decoded, err := r.ReadMessage(data)
	if err != nil {
		t.Fatalf("ReadMessage failed: %v", err)
	}

	wantInts, _ := original.Get("int32_list")
	gotInts, _ := decoded.Get("int32_list")
	if !equalArrayValues(gotInts.(cdrcodec.ArrayValue), wantInts.(cdrcodec.ArrayValue)) {
		t.Errorf("int32_list mismatch: got %v, want %v", gotInts, wantInts)
	}

	wantStrs, _ := original.Get("string_list")
	gotStrs, _ := decoded.Get("string_list")
	if !equalArrayValues(gotStrs.(cdrcodec.ArrayValue), wantStrs.(cdrcodec.ArrayValue)) {
		t.Errorf("string_list mismatch: got %v, want %v", gotStrs, wantStrs)
	}
}

func TestComplexTypesEncodeDecode(t *testing.T) {
	schema, idx := loadCodecs(t)
	w, r := newWriterReader(t, schema, idx, "ComplexTypes")

	original := makeComplexTypes()
	data, err := w.WriteMessage(original)
	if err != nil {
		t.Fatalf("WriteMessage failed: %v", err)
	}
	t.Logf("ComplexTypes encoded size: %d bytes", len(data))
	t.Logf("ComplexTypes hex: %s", hex.EncodeToString(data))

	decoded, err := r.ReadMessage(data)
	if err != nil {
		t.Fatalf("ReadMessage failed: %v", err)
	}

	status, _ := decoded.Get("status")
	if status != cdrcodec.Uint32Value(statusActive) {
		t.Errorf("status mismatch: got %v, want %v", status, statusActive)
	}

	requiredVal, ok := decoded.Get("required_nested")
	if !ok {
		t.Fatal("required_nested missing from decoded message")
	}
	required := requiredVal.(*cdrcodec.StructValue)
	if name, _ := required.Get("name"); name != cdrcodec.StringValue("required") {
		t.Errorf("required_nested.name mismatch: got %v", name)
	}

	nestedListVal, ok := decoded.Get("nested_list")
	if !ok {
		t.Fatal("nested_list missing from decoded message")
	}
	nestedList := nestedListVal.(cdrcodec.ArrayValue)
	if len(nestedList) != 2 {
		t.Fatalf("nested_list length mismatch: got %d, want 2", len(nestedList))
	}
	first := nestedList[0].(*cdrcodec.StructValue)
	if name, _ := first.Get("name"); name != cdrcodec.StringValue("first") {
		t.Errorf("nested_list[0].name mismatch: got %v", name)
	}
}

func TestEdgeCasesEncodeDecode(t *testing.T) {
	schema, idx := loadCodecs(t)
	w, r := newWriterReader(t, schema, idx, "EdgeCases")

	original := makeEdgeCases()
	data, err := w.WriteMessage(original)
	if err != nil {
		t.Fatalf("WriteMessage failed: %v", err)
	}
	t.Logf("EdgeCases encoded size: %d bytes", len(data))
	t.Logf("EdgeCases hex: %s", hex.EncodeToString(data))

	decoded, err := r.ReadMessage(data)
	if err != nil {
		t.Fatalf("ReadMessage failed: %v", err)
	}

	for _, name := range []string{
		"zero_int", "negative_one", "max_int32", "min_int32",
		"max_int64", "min_int64", "max_uint32", "max_uint64",
		"empty_string", "unicode_string",
	} {
		want, _ := original.Get(name)
		got, ok := decoded.Get(name)
		if !ok || got != want {
			t.Errorf("%s mismatch: got %v, want %v", name, got, want)
		}
	}
}

func equalArrayValues(a, b cdrcodec.ArrayValue) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if av, ok := a[i].(cdrcodec.ArrayValue); ok {
			bv, ok := b[i].(cdrcodec.ArrayValue)
			if !ok || !equalArrayValues(av, bv) {
				return false
			}
			continue
		}
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

const goldenDir = "../golden"

// TestGenerateGoldenFiles writes the current encoding of every test
// message to tests/golden so later runs can check the wire format
// hasn't silently changed. Run with GENERATE_GOLDEN=1 to regenerate.
func TestGenerateGoldenFiles(t *testing.T) {
	if os.Getenv("GENERATE_GOLDEN") != "1" {
		t.Skip("set GENERATE_GOLDEN=1 to regenerate golden files")
	}
	if err := os.MkdirAll(goldenDir, 0755); err != nil {
		t.Fatalf("failed to create golden dir: %v", err)
	}

	schema, idx := loadCodecs(t)
	for _, tc := range goldenCases(t, schema, idx) {
		path := filepath.Join(goldenDir, tc.name+".bin")
		if err := os.WriteFile(path, tc.data, 0644); err != nil {
			t.Errorf("failed to write %s: %v", path, err)
			continue
		}
		hexPath := filepath.Join(goldenDir, tc.name+".hex")
		if err := os.WriteFile(hexPath, []byte(hex.EncodeToString(tc.data)), 0644); err != nil {
			t.Errorf("failed to write %s: %v", hexPath, err)
		}
		t.Logf("generated %s (%d bytes)", path, len(tc.data))
	}
}

// TestVerifyGoldenFiles checks the current encoding against the
// committed golden files, catching accidental wire-format drift.
func TestVerifyGoldenFiles(t *testing.T) {
	schema, idx := loadCodecs(t)
	for _, tc := range goldenCases(t, schema, idx) {
		t.Run(tc.name, func(t *testing.T) {
			path := filepath.Join(goldenDir, tc.name+".bin")
			golden, err := os.ReadFile(path)
			if os.IsNotExist(err) {
				t.Skipf("golden file not found: %s (run with GENERATE_GOLDEN=1 to create)", path)
				return
			}
			if err != nil {
				t.Fatalf("failed to read golden file: %v", err)
			}
			if !bytes.Equal(tc.data, golden) {
				t.Errorf("encoding mismatch for %s\ngot:  %s\nwant: %s",
					tc.name, hex.EncodeToString(tc.data), hex.EncodeToString(golden))
			}
		})
	}
}

type goldenCase struct {
	name string
	data []byte
}

func goldenCases(tb testing.TB, schema *idl.Schema, idx *resolver.Index) []goldenCase {
	tb.Helper()
	cases := []struct {
		root  string
		name  string
		value *cdrcodec.StructValue
	}{
		{"ScalarTypes", "scalar_types", makeScalarTypes()},
		{"RepeatedTypes", "repeated_types", makeRepeatedTypes()},
		{"ComplexTypes", "complex_types", makeComplexTypes()},
		{"EdgeCases", "edge_cases", makeEdgeCases()},
	}
	out := make([]goldenCase, 0, len(cases))
	for _, tc := range cases {
		w, _ := newWriterReader(tb, schema, idx, tc.root)
		data, err := w.WriteMessage(tc.value)
		if err != nil {
			tb.Fatalf("failed to marshal %s: %v", tc.name, err)
		}
		out = append(out, goldenCase{name: tc.name, data: data})
	}
	return out
}
