package store

import (
	"testing"
	"time"

	"github.com/edirooss/bradis/internal/value"
	"go.uber.org/zap"
)

func newTestStore() *Store {
	return New(zap.NewNop(), value.Thresholds{
		HashMaxListpackEntries: 128,
		HashMaxListpackValue:   64,
		SetMaxIntsetEntries:    512,
		SetMaxListpackEntries:  128,
		SetMaxListpackValue:    64,
		ZSetMaxListpackEntries: 128,
		ZSetMaxListpackValue:   64,
		ListMaxListpackSize:    128,
	}, 512*1024*1024)
}

func TestPutGetDel(t *testing.T) {
	s := newTestStore()
	s.Put(0, "k", value.NewString([]byte("v")))

	v, ok := s.Get(0, "k")
	if !ok {
		t.Fatal("Get() reported key missing right after Put()")
	}
	if string(v.(*value.String).Bytes()) != "v" {
		t.Fatalf("Get() = %v, want v", v)
	}

	if n := s.Del(0, []string{"k", "missing"}); n != 1 {
		t.Fatalf("Del() = %d, want 1", n)
	}
	if _, ok := s.Get(0, "k"); ok {
		t.Fatal("key still present after Del()")
	}
}

func TestExistsCountsDuplicates(t *testing.T) {
	s := newTestStore()
	s.Put(0, "k", value.NewString([]byte("v")))
	if n := s.Exists(0, []string{"k", "k", "missing"}); n != 2 {
		t.Fatalf("Exists() = %d, want 2", n)
	}
}

func TestKeysGlobFilters(t *testing.T) {
	s := newTestStore()
	s.Put(0, "foo", value.NewString([]byte("1")))
	s.Put(0, "bar", value.NewString([]byte("2")))
	s.Put(0, "foobar", value.NewString([]byte("3")))

	got := s.Keys(0, "foo*")
	if len(got) != 2 {
		t.Fatalf("Keys(foo*) = %v, want 2 matches", got)
	}
}

func TestRenameMovesValueAndTTL(t *testing.T) {
	s := newTestStore()
	s.Put(0, "src", value.NewString([]byte("v")))
	when := time.Now().Add(time.Hour)
	s.SetExpireAt(0, "src", when, ExpireAlways)

	if ok := s.Rename(0, "src", "dst"); !ok {
		t.Fatal("Rename() reported src missing")
	}
	if _, ok := s.Get(0, "src"); ok {
		t.Fatal("src still present after Rename()")
	}
	v, ok := s.Get(0, "dst")
	if !ok || string(v.(*value.String).Bytes()) != "v" {
		t.Fatalf("dst = %v, %v, want v, true", v, ok)
	}
	ttl, code := s.TTLOf(0, "dst")
	if code != 0 || ttl <= 0 {
		t.Fatalf("TTLOf(dst) = %v, %d, want a positive remaining TTL", ttl, code)
	}
}

func TestRenameNXRefusesExistingDest(t *testing.T) {
	s := newTestStore()
	s.Put(0, "src", value.NewString([]byte("v")))
	s.Put(0, "dst", value.NewString([]byte("existing")))

	renamed, srcExisted := s.RenameNX(0, "src", "dst")
	if !srcExisted {
		t.Fatal("RenameNX reported src missing")
	}
	if renamed {
		t.Fatal("RenameNX should refuse to overwrite an existing destination")
	}
}

func TestMoveRefusesSameDB(t *testing.T) {
	s := newTestStore()
	s.Put(0, "k", value.NewString([]byte("v")))
	if s.Move(0, "k", 0) {
		t.Fatal("Move() to the same database should report false")
	}
}

func TestMoveRelocatesKey(t *testing.T) {
	s := newTestStore()
	s.Put(0, "k", value.NewString([]byte("v")))
	if !s.Move(0, "k", 1) {
		t.Fatal("Move() reported false")
	}
	if _, ok := s.Get(0, "k"); ok {
		t.Fatal("key still present in source db after Move()")
	}
	if _, ok := s.Get(1, "k"); !ok {
		t.Fatal("key missing in destination db after Move()")
	}
}

func TestSwapDB(t *testing.T) {
	s := newTestStore()
	s.Put(0, "only-in-zero", value.NewString([]byte("v")))
	s.SwapDB(0, 1)
	if _, ok := s.Get(0, "only-in-zero"); ok {
		t.Fatal("key still visible in db 0 after SwapDB")
	}
	if _, ok := s.Get(1, "only-in-zero"); !ok {
		t.Fatal("key not visible in db 1 after SwapDB")
	}
}

func TestFlushDB(t *testing.T) {
	s := newTestStore()
	s.Put(0, "a", value.NewString([]byte("1")))
	s.Put(0, "b", value.NewString([]byte("2")))
	s.FlushDB(0)
	if s.DBSize(0) != 0 {
		t.Fatalf("DBSize() = %d after FlushDB, want 0", s.DBSize(0))
	}
}
