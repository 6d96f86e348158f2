// Package cache keeps short-lived worker state. It is never used for
// reports: those are rebuilt from a fresh snapshot on every request.
package cache

import (
	"container/list"
	"context"
	"sync"
	"time"
)

// RecentSet remembers keys for a limited time, evicting the least recently
// added key once it is full. The worker uses it to drop redelivered events.
type RecentSet struct {
	mu      sync.Mutex
	maxSize int
	ttl     time.Duration
	items   map[string]*list.Element
	order   *list.List
	now     func() time.Time
}

type entry struct {
	key       string
	expiresAt time.Time
}

func NewRecentSet(maxSize int, ttl time.Duration) *RecentSet {
	if maxSize <= 0 {
		maxSize = 1
	}
	return &RecentSet{
		maxSize: maxSize,
		ttl:     ttl,
		items:   make(map[string]*list.Element),
		order:   list.New(),
		now:     time.Now,
	}
}

// Contains reports whether key was added and has not expired.
func (s *RecentSet) Contains(key string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	elem, ok := s.items[key]
	if !ok {
		return false
	}
	if s.now().After(elem.Value.(*entry).expiresAt) {
		s.remove(elem)
		return false
	}
	return true
}

// Add records key. It returns false when key was already present.
func (s *RecentSet) Add(key string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	if elem, ok := s.items[key]; ok {
		e := elem.Value.(*entry)
		if !now.After(e.expiresAt) {
			return false
		}
		e.expiresAt = now.Add(s.ttl)
		s.order.MoveToFront(elem)
		return true
	}

	s.items[key] = s.order.PushFront(&entry{key: key, expiresAt: now.Add(s.ttl)})
	if s.order.Len() > s.maxSize {
		s.remove(s.order.Back())
	}
	return true
}

// Forget removes key so a later Add succeeds.
func (s *RecentSet) Forget(key string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if elem, ok := s.items[key]; ok {
		s.remove(elem)
	}
}

// Prune drops expired keys and returns how many were removed.
func (s *RecentSet) Prune() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	removed := 0
	for elem := s.order.Back(); elem != nil; {
		prev := elem.Prev()
		if now.After(elem.Value.(*entry).expiresAt) {
			s.remove(elem)
			removed++
		}
		elem = prev
	}
	return removed
}

func (s *RecentSet) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.items)
}

func (s *RecentSet) remove(elem *list.Element) {
	delete(s.items, elem.Value.(*entry).key)
	s.order.Remove(elem)
}

// Pruner is anything with expiring entries.
type Pruner interface {
	Prune() int
}

// RunJanitor prunes every set on each tick until ctx is done.
func RunJanitor(ctx context.Context, interval time.Duration, sets ...Pruner) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			for _, s := range sets {
				s.Prune()
			}
		case <-ctx.Done():
			return
		}
	}
}
