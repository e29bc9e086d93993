package value

import "testing"

func smallThresholds() Thresholds {
	return Thresholds{
		HashMaxListpackEntries: 2,
		HashMaxListpackValue:   4,

		SetMaxIntsetEntries:   2,
		SetMaxListpackEntries: 2,
		SetMaxListpackValue:   4,

		ZSetMaxListpackEntries: 2,
		ZSetMaxListpackValue:   4,

		ListMaxListpackSize: 2,
	}
}

func TestHashPromotesOnEntryCount(t *testing.T) {
	th := smallThresholds()
	h := NewHash()
	if h.Encoding() != "listpack" {
		t.Fatalf("new hash encoding = %q, want listpack", h.Encoding())
	}
	h.Set("a", []byte("1"), th)
	h.Set("b", []byte("2"), th)
	if h.Encoding() != "listpack" {
		t.Fatalf("after 2 fields (at threshold), encoding = %q, want listpack", h.Encoding())
	}
	h.Set("c", []byte("3"), th)
	if h.Encoding() != "hashtable" {
		t.Fatalf("after 3 fields (over threshold), encoding = %q, want hashtable", h.Encoding())
	}
}

func TestHashPromotesOnValueLength(t *testing.T) {
	th := smallThresholds()
	h := NewHash()
	h.Set("f", []byte("toolongvalue"), th)
	if h.Encoding() != "hashtable" {
		t.Fatalf("encoding = %q, want hashtable after oversized value", h.Encoding())
	}
}

func TestHashPromotionIsOneWay(t *testing.T) {
	th := smallThresholds()
	h := NewHash()
	h.Set("f", []byte("toolongvalue"), th)
	if h.Encoding() != "hashtable" {
		t.Fatal("expected promotion to hashtable")
	}
	h.Del("f")
	if h.Encoding() != "hashtable" {
		t.Fatalf("encoding = %q after shrinking back, want hashtable (promotion is one-way)", h.Encoding())
	}
}

func TestHashSetReportsNewField(t *testing.T) {
	th := smallThresholds()
	h := NewHash()
	if created := h.Set("f", []byte("v"), th); !created {
		t.Fatal("expected first Set to report field created")
	}
	if created := h.Set("f", []byte("v2"), th); created {
		t.Fatal("expected overwrite to report field not newly created")
	}
}

func TestHashIncrBy(t *testing.T) {
	th := smallThresholds()
	h := NewHash()
	sum, err := h.IncrBy("counter", 5, th)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if sum != 5 {
		t.Fatalf("sum = %d, want 5", sum)
	}
	sum, err = h.IncrBy("counter", 3, th)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if sum != 8 {
		t.Fatalf("sum = %d, want 8", sum)
	}
}

func TestHashIncrByNonInteger(t *testing.T) {
	th := smallThresholds()
	h := NewHash()
	h.Set("f", []byte("notanumber"), th)
	if _, err := h.IncrBy("f", 1, th); err == nil {
		t.Fatal("expected error incrementing a non-integer field")
	}
}

func TestHashCloneIsIndependent(t *testing.T) {
	th := smallThresholds()
	h := NewHash()
	h.Set("f", []byte("v"), th)
	cp := h.Clone().(*Hash)
	cp.Set("f", []byte("changed"), th)
	v, _ := h.Get("f")
	if string(v) != "v" {
		t.Fatalf("original mutated via clone: Get(f) = %q, want v", v)
	}
}
