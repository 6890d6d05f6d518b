// Package session keeps the per-user last utterance so card postbacks like
// "show original" can recover it. The store is process-local, TTL-bounded
// and LRU-capped.
package session

import (
	"container/list"
	"sync"
	"time"
)

// Entry is one user's stored utterance.
type Entry struct {
	UserID          string
	LastUtterance   string
	LastUtteranceID string
	Timestamp       time.Time
}

// Store is a thread-safe LRU map with TTL eviction. A missing entry is a
// normal case, never an error.
type Store struct {
	mu      sync.Mutex
	entries map[string]*list.Element
	order   *list.List // front = most recently used
	cap     int
	ttl     time.Duration
	now     func() time.Time
}

// DefaultCap is the recommended entry cap.
const DefaultCap = 10000

// DefaultTTL is the minimum retention for postback lookups.
const DefaultTTL = 30 * time.Minute

// NewStore creates a session store with the given cap and TTL. Non-positive
// values fall back to the defaults.
func NewStore(capacity int, ttl time.Duration) *Store {
	if capacity <= 0 {
		capacity = DefaultCap
	}
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &Store{
		entries: make(map[string]*list.Element),
		order:   list.New(),
		cap:     capacity,
		ttl:     ttl,
		now:     time.Now,
	}
}

// Put stores or refreshes the user's entry and marks it most recently used.
func (s *Store) Put(userID, utterance, utteranceID string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	entry := Entry{
		UserID:          userID,
		LastUtterance:   utterance,
		LastUtteranceID: utteranceID,
		Timestamp:       s.now(),
	}

	if el, ok := s.entries[userID]; ok {
		el.Value = entry
		s.order.MoveToFront(el)
		return
	}

	s.entries[userID] = s.order.PushFront(entry)
	for s.order.Len() > s.cap {
		oldest := s.order.Back()
		s.order.Remove(oldest)
		delete(s.entries, oldest.Value.(Entry).UserID)
	}
}

// Get returns the user's entry if present and not expired.
func (s *Store) Get(userID string) (Entry, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	el, ok := s.entries[userID]
	if !ok {
		return Entry{}, false
	}
	entry := el.Value.(Entry)
	if s.now().Sub(entry.Timestamp) > s.ttl {
		s.order.Remove(el)
		delete(s.entries, userID)
		return Entry{}, false
	}
	s.order.MoveToFront(el)
	return entry, true
}

// EvictExpired removes every expired entry and reports how many were dropped.
func (s *Store) EvictExpired() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	evicted := 0
	now := s.now()
	for el := s.order.Back(); el != nil; {
		prev := el.Prev()
		entry := el.Value.(Entry)
		if now.Sub(entry.Timestamp) > s.ttl {
			s.order.Remove(el)
			delete(s.entries, entry.UserID)
			evicted++
		}
		el = prev
	}
	return evicted
}

// Len reports the current entry count.
func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.order.Len()
}
