package value

import "testing"

func TestParseBitFieldType(t *testing.T) {
	cases := []struct {
		in      string
		wantErr bool
		signed  bool
		width   int
	}{
		{"u8", false, false, 8},
		{"i16", false, true, 16},
		{"i64", false, true, 64},
		{"u63", false, false, 63},
		{"u64", true, false, 0},  // u64 unsupported, per the original's documented rule
		{"i65", true, false, 0},  // exceeds max signed width
		{"x8", true, false, 0},   // bad prefix
		{"u", true, false, 0},    // missing width
		{"uabc", true, false, 0}, // non-numeric width
	}
	for _, c := range cases {
		got, err := ParseBitFieldType(c.in)
		if c.wantErr {
			if err == nil {
				t.Errorf("ParseBitFieldType(%q) = %+v, nil, want an error", c.in, got)
			}
			continue
		}
		if err != nil {
			t.Errorf("ParseBitFieldType(%q) unexpected error: %v", c.in, err)
			continue
		}
		if got.Signed != c.signed || got.Width != c.width {
			t.Errorf("ParseBitFieldType(%q) = %+v, want signed=%v width=%d", c.in, got, c.signed, c.width)
		}
	}
}

func TestBitFieldGetSetRoundTrip(t *testing.T) {
	u8, _ := ParseBitFieldType("u8")
	var data []byte

	data, old, ok := BitFieldSet(data, 0, u8, 200, "WRAP")
	if !ok || old != 0 {
		t.Fatalf("BitFieldSet = %v, %d, %v, want ok=true old=0", data, old, ok)
	}
	if got := BitFieldGet(data, 0, u8); got != 200 {
		t.Fatalf("BitFieldGet = %d, want 200", got)
	}

	data, old, ok = BitFieldSet(data, 0, u8, 5, "WRAP")
	if !ok || old != 200 {
		t.Fatalf("BitFieldSet second write = old %d ok %v, want old=200 ok=true", old, ok)
	}
	if got := BitFieldGet(data, 0, u8); got != 5 {
		t.Fatalf("BitFieldGet after overwrite = %d, want 5", got)
	}
}

func TestBitFieldSignedDecoding(t *testing.T) {
	i8, _ := ParseBitFieldType("i8")
	data, _, ok := BitFieldSet(nil, 0, i8, -1, "WRAP")
	if !ok {
		t.Fatal("BitFieldSet(-1) should succeed")
	}
	if got := BitFieldGet(data, 0, i8); got != -1 {
		t.Fatalf("BitFieldGet = %d, want -1", got)
	}
}

func TestBitFieldSetOverflowFail(t *testing.T) {
	u8, _ := ParseBitFieldType("u8")
	_, _, ok := BitFieldSet(nil, 0, u8, 300, "FAIL")
	if ok {
		t.Fatal("BitFieldSet with FAIL should reject an out-of-range value")
	}
}

func TestBitFieldSetOverflowSat(t *testing.T) {
	u8, _ := ParseBitFieldType("u8")
	data, _, ok := BitFieldSet(nil, 0, u8, 1000, "SAT")
	if !ok {
		t.Fatal("BitFieldSet with SAT should always succeed")
	}
	if got := BitFieldGet(data, 0, u8); got != 255 {
		t.Fatalf("BitFieldGet after SAT overflow = %d, want 255 (clamped to max)", got)
	}

	data, _, ok = BitFieldSet(nil, 0, u8, -100, "SAT")
	if !ok {
		t.Fatal("BitFieldSet with SAT should always succeed")
	}
	if got := BitFieldGet(data, 0, u8); got != 0 {
		t.Fatalf("BitFieldGet after SAT underflow = %d, want 0 (clamped to min)", got)
	}
}

func TestBitFieldIncrByWrap(t *testing.T) {
	u8, _ := ParseBitFieldType("u8")
	data, _, ok := BitFieldSet(nil, 0, u8, 250, "WRAP")
	if !ok {
		t.Fatal("setup BitFieldSet failed")
	}
	data, sum, ok := BitFieldIncrBy(data, 0, u8, 10, "WRAP")
	if !ok {
		t.Fatal("BitFieldIncrBy WRAP should always succeed")
	}
	if sum != 4 { // (250+10) mod 256 = 4
		t.Fatalf("BitFieldIncrBy WRAP sum = %d, want 4", sum)
	}
	if got := BitFieldGet(data, 0, u8); got != 4 {
		t.Fatalf("BitFieldGet after incr = %d, want 4", got)
	}
}

func TestBitFieldIncrByFailOnOverflow(t *testing.T) {
	u8, _ := ParseBitFieldType("u8")
	data, _, _ := BitFieldSet(nil, 0, u8, 250, "WRAP")
	_, _, ok := BitFieldIncrBy(data, 0, u8, 10, "FAIL")
	if ok {
		t.Fatal("BitFieldIncrBy with FAIL should reject an overflowing increment")
	}
}

func TestBitFieldIncrBySat(t *testing.T) {
	i8, _ := ParseBitFieldType("i8")
	data, _, _ := BitFieldSet(nil, 0, i8, 100, "WRAP")
	_, sum, ok := BitFieldIncrBy(data, 0, i8, 100, "SAT")
	if !ok {
		t.Fatal("BitFieldIncrBy with SAT should always succeed")
	}
	if sum != 127 {
		t.Fatalf("BitFieldIncrBy SAT sum = %d, want 127 (clamped to i8 max)", sum)
	}
}

func TestBitFieldOnMultiByteField(t *testing.T) {
	i16, _ := ParseBitFieldType("i16")
	data, _, ok := BitFieldSet(nil, 8, i16, -12345, "WRAP")
	if !ok {
		t.Fatal("BitFieldSet failed")
	}
	if got := BitFieldGet(data, 8, i16); got != -12345 {
		t.Fatalf("BitFieldGet at bit offset 8 = %d, want -12345", got)
	}
	// Bits before the field are untouched (all zero).
	if GetBit(data, 0) != 0 {
		t.Fatal("leading byte should be untouched")
	}
}
