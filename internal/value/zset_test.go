package value

import "testing"

func TestZSetOrdersByScoreThenMember(t *testing.T) {
	th := smallThresholds()
	z := NewZSet()
	z.Add("b", 1, th)
	z.Add("a", 1, th)
	z.Add("c", 0, th)

	want := []string{"c", "a", "b"}
	entries := z.Entries()
	if len(entries) != len(want) {
		t.Fatalf("Entries() = %v, want %d entries", entries, len(want))
	}
	for i, w := range want {
		if entries[i].Member != w {
			t.Errorf("Entries()[%d] = %q, want %q", i, entries[i].Member, w)
		}
	}
}

func TestZSetAddReportsAddedAndChanged(t *testing.T) {
	th := smallThresholds()
	z := NewZSet()
	added, changed := z.Add("m", 1, th)
	if !added || !changed {
		t.Fatalf("first Add: added=%v changed=%v, want true,true", added, changed)
	}
	added, changed = z.Add("m", 1, th)
	if added || changed {
		t.Fatalf("re-adding same score: added=%v changed=%v, want false,false", added, changed)
	}
	added, changed = z.Add("m", 2, th)
	if added || !changed {
		t.Fatalf("updating score: added=%v changed=%v, want false,true", added, changed)
	}
}

func TestZSetPromotesToSkiplistOnEntryCount(t *testing.T) {
	th := smallThresholds() // ZSetMaxListpackEntries: 2
	z := NewZSet()
	z.Add("a", 1, th)
	z.Add("b", 2, th)
	if z.Encoding() != "listpack" {
		t.Fatalf("encoding = %q, want listpack at threshold", z.Encoding())
	}
	z.Add("c", 3, th)
	if z.Encoding() != "skiplist" {
		t.Fatalf("encoding = %q, want skiplist once over threshold", z.Encoding())
	}
	// Ordering must survive the listpack->skiplist conversion.
	entries := z.Entries()
	want := []string{"a", "b", "c"}
	for i, w := range want {
		if entries[i].Member != w {
			t.Errorf("Entries()[%d] = %q, want %q", i, entries[i].Member, w)
		}
	}
}

func TestZSetRankAndByRank(t *testing.T) {
	th := smallThresholds()
	z := NewZSet()
	z.Add("a", 1, th)
	z.Add("b", 2, th)
	z.Add("c", 3, th)

	if r := z.Rank("b"); r != 1 {
		t.Fatalf("Rank(b) = %d, want 1", r)
	}
	e, ok := z.ByRank(2)
	if !ok || e.Member != "c" {
		t.Fatalf("ByRank(2) = %v, %v, want c, true", e, ok)
	}
	if _, ok := z.ByRank(99); ok {
		t.Fatal("ByRank(99) should report false")
	}
}

func TestZSetPopMinPopMax(t *testing.T) {
	th := smallThresholds()
	z := NewZSet()
	z.Add("a", 1, th)
	z.Add("b", 2, th)
	z.Add("c", 3, th)

	min := z.PopMin(1)
	if len(min) != 1 || min[0].Member != "a" {
		t.Fatalf("PopMin(1) = %v, want [a]", min)
	}
	max := z.PopMax(1)
	if len(max) != 1 || max[0].Member != "c" {
		t.Fatalf("PopMax(1) = %v, want [c]", max)
	}
	if z.Len() != 1 {
		t.Fatalf("Len() = %d, want 1", z.Len())
	}
}
