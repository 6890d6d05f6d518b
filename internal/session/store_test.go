package session

import (
	"fmt"
	"sync"
	"testing"
	"time"
)

func TestPutGetRoundTrip(t *testing.T) {
	s := NewStore(10, time.Minute)
	utterance := "媽媽最近常常忘記關瓦斯，還會重複問同樣的問題"
	s.Put("user-1", utterance, "utt-1")

	entry, ok := s.Get("user-1")
	if !ok {
		t.Fatal("entry missing")
	}
	if entry.LastUtterance != utterance {
		t.Errorf("utterance = %q, want exact original bytes", entry.LastUtterance)
	}
	if entry.LastUtteranceID != "utt-1" {
		t.Errorf("utterance ID = %q", entry.LastUtteranceID)
	}
}

func TestGetMissingIsNormal(t *testing.T) {
	s := NewStore(10, time.Minute)
	if _, ok := s.Get("nobody"); ok {
		t.Error("expected miss for unknown user")
	}
}

func TestTTLExpiry(t *testing.T) {
	s := NewStore(10, 30*time.Minute)
	current := time.Unix(1_700_000_000, 0)
	s.now = func() time.Time { return current }

	s.Put("user-1", "hello", "utt-1")

	current = current.Add(29 * time.Minute)
	if _, ok := s.Get("user-1"); !ok {
		t.Fatal("entry expired before TTL")
	}

	// Get refreshed recency but not the timestamp; push past the TTL.
	current = current.Add(31 * time.Minute)
	if _, ok := s.Get("user-1"); ok {
		t.Error("entry should have expired")
	}
	if s.Len() != 0 {
		t.Errorf("expired entry still counted: len=%d", s.Len())
	}
}

func TestLRUEvictionAtCap(t *testing.T) {
	s := NewStore(3, time.Minute)
	for i := 0; i < 3; i++ {
		s.Put(fmt.Sprintf("user-%d", i), "x", "id")
	}

	// Touch user-0 so user-1 becomes the LRU victim.
	if _, ok := s.Get("user-0"); !ok {
		t.Fatal("user-0 missing")
	}
	s.Put("user-3", "x", "id")

	if s.Len() != 3 {
		t.Fatalf("len = %d, want 3", s.Len())
	}
	if _, ok := s.Get("user-1"); ok {
		t.Error("user-1 should have been evicted")
	}
	for _, u := range []string{"user-0", "user-2", "user-3"} {
		if _, ok := s.Get(u); !ok {
			t.Errorf("%s unexpectedly evicted", u)
		}
	}
}

func TestPutRefreshesExisting(t *testing.T) {
	s := NewStore(10, time.Minute)
	s.Put("user-1", "first", "utt-1")
	s.Put("user-1", "second", "utt-2")

	if s.Len() != 1 {
		t.Errorf("len = %d, want 1", s.Len())
	}
	entry, _ := s.Get("user-1")
	if entry.LastUtterance != "second" {
		t.Errorf("utterance = %q, want second", entry.LastUtterance)
	}
}

func TestEvictExpired(t *testing.T) {
	s := NewStore(10, 30*time.Minute)
	current := time.Unix(1_700_000_000, 0)
	s.now = func() time.Time { return current }

	s.Put("old-1", "x", "id")
	s.Put("old-2", "x", "id")
	current = current.Add(31 * time.Minute)
	s.Put("fresh", "x", "id")

	if n := s.EvictExpired(); n != 2 {
		t.Errorf("evicted %d, want 2", n)
	}
	if _, ok := s.Get("fresh"); !ok {
		t.Error("fresh entry lost")
	}
}

func TestConcurrentAccess(t *testing.T) {
	s := NewStore(100, time.Minute)
	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			for j := 0; j < 200; j++ {
				user := fmt.Sprintf("user-%d", j%50)
				s.Put(user, "text", "id")
				s.Get(user)
			}
		}(i)
	}
	wg.Wait()

	if s.Len() > 100 {
		t.Errorf("len %d exceeds cap", s.Len())
	}
}
