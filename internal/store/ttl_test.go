package store

import (
	"testing"
	"time"

	"github.com/edirooss/bradis/internal/value"
)

func TestSetExpireAtGTRefusesShorterTTL(t *testing.T) {
	s := newTestStore()
	s.Put(0, "k", value.NewString([]byte("v")))
	far := time.Now().Add(time.Hour)
	s.SetExpireAt(0, "k", far, ExpireAlways)

	near := time.Now().Add(time.Minute)
	if ok := s.SetExpireAt(0, "k", near, ExpireGT); ok {
		t.Fatal("GT should refuse a TTL shorter than the current one")
	}
	ttl, _ := s.TTLOf(0, "k")
	if ttl < 30*time.Minute {
		t.Fatalf("TTL was shortened despite GT refusing: %v", ttl)
	}
}

func TestSetExpireAtGTAcceptsLongerTTL(t *testing.T) {
	s := newTestStore()
	s.Put(0, "k", value.NewString([]byte("v")))
	s.SetExpireAt(0, "k", time.Now().Add(time.Minute), ExpireAlways)

	longer := time.Now().Add(time.Hour)
	if ok := s.SetExpireAt(0, "k", longer, ExpireGT); !ok {
		t.Fatal("GT should accept a longer TTL")
	}
}

func TestSetExpireAtGTRequiresExistingTTL(t *testing.T) {
	s := newTestStore()
	s.Put(0, "k", value.NewString([]byte("v")))
	// No TTL set yet: GT must refuse since there is nothing to exceed.
	if ok := s.SetExpireAt(0, "k", time.Now().Add(time.Hour), ExpireGT); ok {
		t.Fatal("GT on a key with no TTL should refuse")
	}
}

func TestSetExpireAtLTAcceptsOnNoTTL(t *testing.T) {
	s := newTestStore()
	s.Put(0, "k", value.NewString([]byte("v")))
	// A key with no TTL is "infinite", so any finite deadline is shorter.
	if ok := s.SetExpireAt(0, "k", time.Now().Add(time.Hour), ExpireLT); !ok {
		t.Fatal("LT should accept any finite deadline on a key with no TTL")
	}
}

func TestSetExpireAtLTRefusesLongerTTL(t *testing.T) {
	s := newTestStore()
	s.Put(0, "k", value.NewString([]byte("v")))
	s.SetExpireAt(0, "k", time.Now().Add(time.Minute), ExpireAlways)

	longer := time.Now().Add(time.Hour)
	if ok := s.SetExpireAt(0, "k", longer, ExpireLT); ok {
		t.Fatal("LT should refuse a TTL longer than the current one")
	}
}

func TestSetExpireAtNXXX(t *testing.T) {
	s := newTestStore()
	s.Put(0, "k", value.NewString([]byte("v")))

	if ok := s.SetExpireAt(0, "k", time.Now().Add(time.Hour), ExpireXX); ok {
		t.Fatal("XX should refuse when there is no existing TTL")
	}
	if ok := s.SetExpireAt(0, "k", time.Now().Add(time.Hour), ExpireNX); !ok {
		t.Fatal("NX should accept when there is no existing TTL")
	}
	if ok := s.SetExpireAt(0, "k", time.Now().Add(2*time.Hour), ExpireNX); ok {
		t.Fatal("NX should refuse once a TTL already exists")
	}
}

func TestSetExpireAtPastDeletesImmediately(t *testing.T) {
	s := newTestStore()
	s.Put(0, "k", value.NewString([]byte("v")))
	past := time.Now().Add(-time.Second)
	if ok := s.SetExpireAt(0, "k", past, ExpireAlways); !ok {
		t.Fatal("SetExpireAt with a past deadline should report applied")
	}
	if _, ok := s.Get(0, "k"); ok {
		t.Fatal("key should be deleted synchronously once its deadline is in the past")
	}
}

func TestPersistRemovesTTL(t *testing.T) {
	s := newTestStore()
	s.Put(0, "k", value.NewString([]byte("v")))
	s.SetExpireAt(0, "k", time.Now().Add(time.Hour), ExpireAlways)

	if !s.Persist(0, "k") {
		t.Fatal("Persist() reported false on a key with a TTL")
	}
	if _, code := s.TTLOf(0, "k"); code != -1 {
		t.Fatalf("TTLOf() code = %d after Persist, want -1 (no TTL)", code)
	}
	if s.Persist(0, "k") {
		t.Fatal("second Persist() should report false")
	}
}

func TestTTLOfMissingKey(t *testing.T) {
	s := newTestStore()
	if _, code := s.TTLOf(0, "missing"); code != -2 {
		t.Fatalf("TTLOf() code = %d for a missing key, want -2", code)
	}
}
