package value

import "testing"

func TestSetBitAndGetBit(t *testing.T) {
	var data []byte
	var old byte
	data, old = SetBit(data, 7, 1)
	if old != 0 {
		t.Fatalf("old = %d, want 0 on a grown string", old)
	}
	if len(data) != 1 || data[0] != 0x01 {
		t.Fatalf("data = %v, want [0x01]", data)
	}
	if GetBit(data, 7) != 1 {
		t.Fatal("GetBit(7) = 0, want 1")
	}
	if GetBit(data, 0) != 0 {
		t.Fatal("GetBit(0) = 1, want 0")
	}
	// Beyond the string reads as zero.
	if GetBit(data, 100) != 0 {
		t.Fatal("GetBit beyond string should be 0")
	}

	data, old = SetBit(data, 7, 0)
	if old != 1 {
		t.Fatalf("old = %d, want 1", old)
	}
	if data[0] != 0 {
		t.Fatalf("data[0] = %#x, want 0", data[0])
	}
}

func TestSetBitGrowsAcrossBytes(t *testing.T) {
	data, _ := SetBit(nil, 17, 1)
	if len(data) != 3 {
		t.Fatalf("len(data) = %d, want 3", len(data))
	}
	if GetBit(data, 17) != 1 {
		t.Fatal("GetBit(17) = 0, want 1")
	}
}

func TestBitCount(t *testing.T) {
	data := []byte{0xFF, 0x00, 0x0F}
	if got := BitCount(data, 0, 2); got != 12 {
		t.Fatalf("BitCount(0,2) = %d, want 12", got)
	}
	if got := BitCount(data, 0, 0); got != 8 {
		t.Fatalf("BitCount(0,0) = %d, want 8", got)
	}
	if got := BitCount(data, 5, 1); got != 0 {
		t.Fatalf("BitCount with start>end = %d, want 0", got)
	}
	if got := BitCount(nil, 0, 0); got != 0 {
		t.Fatalf("BitCount of empty = %d, want 0", got)
	}
	// end beyond the string clamps.
	if got := BitCount(data, 0, 100); got != 12 {
		t.Fatalf("BitCount clamped = %d, want 12", got)
	}
}

func TestBitCountBitRange(t *testing.T) {
	data := []byte{0xFF} // bits 0..7 all set
	if got := BitCountBitRange(data, 0, 3); got != 4 {
		t.Fatalf("BitCountBitRange(0,3) = %d, want 4", got)
	}
	if got := BitCountBitRange(data, 0, 100); got != 8 {
		t.Fatalf("BitCountBitRange clamped = %d, want 8", got)
	}
	if got := BitCountBitRange(nil, 0, 0); got != 0 {
		t.Fatalf("BitCountBitRange of empty = %d, want 0", got)
	}
}

func TestBitPosFindsFirstMatchingBit(t *testing.T) {
	data := []byte{0x00, 0x0F}
	if got := BitPos(data, 1, 0, 15, false); got != 12 {
		t.Fatalf("BitPos(1) = %d, want 12", got)
	}
	if got := BitPos(data, 0, 0, 15, false); got != 0 {
		t.Fatalf("BitPos(0) = %d, want 0", got)
	}
}

func TestBitPosZeroRightPadded(t *testing.T) {
	data := []byte{0xFF}
	// No explicit end and caller signals the implicit zero padding: a
	// search for 0 past the literal string may return one bit past the end.
	if got := BitPos(data, 0, 0, 7, true); got != 8 {
		t.Fatalf("BitPos(0, rightPadded) = %d, want 8", got)
	}
	// Without the right-padding flag, the same search should fail.
	if got := BitPos(data, 0, 0, 7, false); got != -1 {
		t.Fatalf("BitPos(0, not padded) = %d, want -1", got)
	}
}

func TestBitPosOnEmptyString(t *testing.T) {
	if got := BitPos(nil, 0, 0, 0, true); got != 0 {
		t.Fatalf("BitPos(0) on empty with padding = %d, want 0", got)
	}
	if got := BitPos(nil, 1, 0, 0, true); got != -1 {
		t.Fatalf("BitPos(1) on empty = %d, want -1", got)
	}
}

func TestBitOpAndOrXor(t *testing.T) {
	a := []byte{0xF0, 0xFF}
	b := []byte{0x0F}

	and := BitOp("AND", [][]byte{a, b})
	if and[0] != 0x00 || and[1] != 0x00 {
		t.Fatalf("AND = %v, want [0x00 0x00] (short source zero-padded)", and)
	}

	or := BitOp("OR", [][]byte{a, b})
	if or[0] != 0xFF || or[1] != 0xFF {
		t.Fatalf("OR = %v, want [0xFF 0xFF]", or)
	}

	xor := BitOp("XOR", [][]byte{a, b})
	if xor[0] != 0xFF || xor[1] != 0xFF {
		t.Fatalf("XOR = %v, want [0xFF 0xFF]", xor)
	}
}

func TestBitOpNot(t *testing.T) {
	out := BitOp("NOT", [][]byte{{0x00, 0xFF}})
	if out[0] != 0xFF || out[1] != 0x00 {
		t.Fatalf("NOT = %v, want [0xFF 0x00]", out)
	}
	if out := BitOp("NOT", nil); out != nil {
		t.Fatalf("NOT of no sources = %v, want nil", out)
	}
}
