// Package memory provides an in-memory conversation store for
// lightweight use and tests. Conversations are lost when the process
// exits. Optional LRU eviction bounds memory usage.
package memory

import (
	"container/list"
	"context"
	"sort"
	"sync"
	"time"

	"github.com/plauder-dev/plauder/pkg/api"
	"github.com/plauder-dev/plauder/pkg/storage"
)

// entry holds a stored record and its LRU position.
type entry struct {
	rec     *storage.Record
	lruElem *list.Element
}

// Store is an in-memory ConversationStore with optional LRU eviction.
type Store struct {
	mu      sync.RWMutex
	entries map[string]*entry
	lruList *list.List // front = most recently used
	maxSize int        // 0 = unlimited
}

var _ storage.ConversationStore = (*Store)(nil)

// New creates an in-memory store. maxSize 0 means the store grows
// without limit; otherwise the least recently used conversation is
// evicted when the limit is reached.
func New(maxSize int) *Store {
	return &Store{
		entries: make(map[string]*entry),
		lruList: list.New(),
		maxSize: maxSize,
	}
}

// Save upserts a conversation. Both saving and updating count as use
// for eviction purposes.
func (s *Store) Save(_ context.Context, rec *storage.Record) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	stored := cloneRecord(rec)
	stored.UpdatedAt = time.Now().UTC()
	if stored.CreatedAt.IsZero() {
		stored.CreatedAt = stored.UpdatedAt
	}

	if e, exists := s.entries[rec.ID]; exists {
		stored.CreatedAt = e.rec.CreatedAt
		e.rec = stored
		s.lruList.MoveToFront(e.lruElem)
		return nil
	}

	if s.maxSize > 0 && len(s.entries) >= s.maxSize {
		s.evictOldest()
	}

	elem := s.lruList.PushFront(rec.ID)
	s.entries[rec.ID] = &entry{rec: stored, lruElem: elem}
	return nil
}

// Get retrieves a conversation by ID and marks it recently used.
func (s *Store) Get(_ context.Context, id string) (*storage.Record, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.entries[id]
	if !ok {
		return nil, storage.ErrNotFound
	}
	s.lruList.MoveToFront(e.lruElem)
	return cloneRecord(e.rec), nil
}

// Delete removes a conversation.
func (s *Store) Delete(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.entries[id]
	if !ok {
		return storage.ErrNotFound
	}
	s.lruList.Remove(e.lruElem)
	delete(s.entries, id)
	return nil
}

// List returns conversations newest-updated first with cursor
// pagination.
func (s *Store) List(_ context.Context, opts storage.ListOptions) ([]*storage.Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	matches := make([]*storage.Record, 0, len(s.entries))
	for _, e := range s.entries {
		matches = append(matches, e.rec)
	}

	sort.Slice(matches, func(i, j int) bool {
		if !matches[i].UpdatedAt.Equal(matches[j].UpdatedAt) {
			return matches[i].UpdatedAt.After(matches[j].UpdatedAt)
		}
		return matches[i].ID > matches[j].ID
	})

	if opts.After != "" {
		idx := -1
		for i, rec := range matches {
			if rec.ID == opts.After {
				idx = i
				break
			}
		}
		if idx >= 0 {
			matches = matches[idx+1:]
		} else {
			matches = nil
		}
	}

	limit := opts.EffectiveLimit()
	if len(matches) > limit {
		matches = matches[:limit]
	}

	out := make([]*storage.Record, len(matches))
	for i, rec := range matches {
		out[i] = cloneRecord(rec)
	}
	return out, nil
}

// HealthCheck always succeeds for the in-memory store.
func (s *Store) HealthCheck(context.Context) error {
	return nil
}

// Close is a no-op.
func (s *Store) Close() error {
	return nil
}

// evictOldest removes the least recently used record. Caller holds the
// write lock.
func (s *Store) evictOldest() {
	back := s.lruList.Back()
	if back == nil {
		return
	}
	id := back.Value.(string)
	s.lruList.Remove(back)
	delete(s.entries, id)
}

// cloneRecord copies a record so callers cannot mutate stored state.
func cloneRecord(rec *storage.Record) *storage.Record {
	out := *rec
	out.Messages = append([]api.Message(nil), rec.Messages...)
	return &out
}
