package cdrwire

import "testing"

func TestMemberHeaderRoundTrip(t *testing.T) {
	buf, next := WriteMemberHeader(nil, 0, LittleEndian, 3, 8, false)
	if next != 4 {
		t.Fatalf("next = %d, want 4", next)
	}
	hdr, after, err := ReadMemberHeader(buf, 0, LittleEndian)
	if err != nil {
		t.Fatalf("ReadMemberHeader: %v", err)
	}
	if hdr.MemberID != 3 || hdr.ObjectSize != 8 || hdr.MustUnderstand || hdr.IsSentinel {
		t.Fatalf("unexpected header: %+v", hdr)
	}
	if after != 4 {
		t.Fatalf("after = %d, want 4", after)
	}
}

func TestMemberHeaderMustUnderstand(t *testing.T) {
	buf, _ := WriteMemberHeader(nil, 0, BigEndian, 1, 4, true)
	hdr, _, err := ReadMemberHeader(buf, 0, BigEndian)
	if err != nil {
		t.Fatalf("ReadMemberHeader: %v", err)
	}
	if !hdr.MustUnderstand {
		t.Fatalf("expected must-understand flag set")
	}
}

func TestSentinelHeaderRoundTrip(t *testing.T) {
	buf, next := WriteSentinelHeader(nil, 0, LittleEndian)
	if next != 4 {
		t.Fatalf("next = %d, want 4", next)
	}
	hdr, _, err := ReadMemberHeader(buf, 0, LittleEndian)
	if err != nil {
		t.Fatalf("ReadMemberHeader: %v", err)
	}
	if !hdr.IsSentinel {
		t.Fatalf("expected sentinel header")
	}
}

func TestMemberHeaderAlignment(t *testing.T) {
	// Writing a header starting at an unaligned offset must pad to 4 first.
	buf := []byte{0xAA, 0xBB} // 2 bytes already written
	buf, next := WriteMemberHeader(buf, 2, LittleEndian, 1, 4, false)
	if len(buf) != 8 { // 2 bytes + 2 pad + 4 header
		t.Fatalf("len(buf) = %d, want 8", len(buf))
	}
	if next != 8 {
		t.Fatalf("next = %d, want 8", next)
	}
	if buf[2] != 0 || buf[3] != 0 {
		t.Fatalf("expected zero padding, got %v", buf[2:4])
	}
}

func TestDelimiterHeaderRoundTrip(t *testing.T) {
	buf, next := WriteDelimiterHeader(nil, 0, LittleEndian, 42)
	if next != 4 {
		t.Fatalf("next = %d, want 4", next)
	}
	length, after, err := ReadDelimiterHeader(buf, 0, LittleEndian)
	if err != nil {
		t.Fatalf("ReadDelimiterHeader: %v", err)
	}
	if length != 42 || after != 4 {
		t.Fatalf("got (%d, %d), want (42, 4)", length, after)
	}
}
