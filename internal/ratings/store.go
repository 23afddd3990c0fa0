package ratings

import (
	"encoding/json"
	"fmt"
	"slices"
	"sync"

	"github.com/abelbrown/popcorn/internal/logging"
	"github.com/abelbrown/popcorn/internal/otel"
)

// DefaultKey is the storage key the rated list lives under.
const DefaultKey = "watched"

// Storage is the durable key/value backend. *store.Store satisfies it.
type Storage interface {
	Read(key string) (string, bool, error)
	Write(key, value string) error
}

// Store holds rated items in insertion order.
// Thread-safety: all methods are safe for concurrent use.
type Store struct {
	mu      sync.RWMutex
	items   []Item
	storage Storage
	key     string
	events  *otel.Logger
}

// Option configures a Store.
type Option func(*Store)

// WithKey overrides the storage key.
func WithKey(key string) Option {
	return func(s *Store) {
		if key != "" {
			s.key = key
		}
	}
}

// WithEvents attaches an event logger.
func WithEvents(l *otel.Logger) Option {
	return func(s *Store) { s.events = l }
}

// Open loads the rated list from storage. Absent, unreadable, or corrupt
// data yields an empty store; the problem is logged, never returned.
func Open(storage Storage, opts ...Option) *Store {
	s := &Store{storage: storage, key: DefaultKey}
	for _, opt := range opts {
		opt(s)
	}

	s.items = s.load()
	s.events.Emit(otel.Event{Level: otel.LevelInfo, Kind: otel.KindRatedLoad, Comp: "ratings", Count: len(s.items)})
	return s
}

func (s *Store) load() []Item {
	raw, ok, err := s.storage.Read(s.key)
	if err != nil {
		logging.Warn("rated list unreadable, starting empty", "key", s.key, "error", err)
		s.events.Warn(otel.KindRatedLoad, "ratings", "unreadable: "+err.Error())
		return nil
	}
	if !ok || raw == "" {
		return nil
	}

	var items []Item
	if err := json.Unmarshal([]byte(raw), &items); err != nil {
		logging.Warn("rated list corrupt, starting empty", "key", s.key, "error", err)
		s.events.Warn(otel.KindRatedLoad, "ratings", "corrupt: "+err.Error())
		return nil
	}

	// Older lists may carry duplicates; keep the first occurrence.
	seen := make(map[int]bool, len(items))
	out := items[:0]
	for _, it := range items {
		if seen[it.ID] {
			continue
		}
		seen[it.ID] = true
		out = append(out, it)
	}
	return out
}

// persist writes next to storage. Caller holds s.mu.
func (s *Store) persist(next []Item) error {
	if next == nil {
		next = []Item{}
	}
	data, err := json.Marshal(next)
	if err != nil {
		return fmt.Errorf("encode rated list: %w", err)
	}
	if err := s.storage.Write(s.key, string(data)); err != nil {
		return fmt.Errorf("save rated list: %w", err)
	}
	return nil
}

// Add appends item unless an item with the same id is already stored.
// Returns whether the item was added. On a storage failure the store is left
// unchanged and the error is returned.
func (s *Store) Add(item Item) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := Lookup(s.items, item.ID); ok {
		return false, nil
	}

	next := append(slices.Clone(s.items), item)
	if err := s.persist(next); err != nil {
		s.events.Error(otel.KindStoreError, "ratings", err)
		return false, err
	}
	s.items = next

	s.events.Emit(otel.Event{Level: otel.LevelInfo, Kind: otel.KindRatedAdd, Comp: "ratings",
		ItemID: item.ID, Rating: item.UserRating, Count: len(next)})
	return true, nil
}

// Remove deletes the item with id. Removing a missing id is a no-op and
// does not touch storage.
func (s *Store) Remove(id int) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	idx := slices.IndexFunc(s.items, func(it Item) bool { return it.ID == id })
	if idx < 0 {
		return false, nil
	}

	next := slices.Delete(slices.Clone(s.items), idx, idx+1)
	if err := s.persist(next); err != nil {
		s.events.Error(otel.KindStoreError, "ratings", err)
		return false, err
	}
	s.items = next

	s.events.Emit(otel.Event{Level: otel.LevelInfo, Kind: otel.KindRatedRemove, Comp: "ratings",
		ItemID: id, Count: len(next)})
	return true, nil
}

// Items returns a snapshot in insertion order.
func (s *Store) Items() []Item {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return slices.Clone(s.items)
}

// Get returns the item with id.
func (s *Store) Get(id int) (Item, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return Lookup(s.items, id)
}

// Len returns the number of rated items.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.items)
}

// Summary aggregates the current list.
func (s *Store) Summary() Summary {
	return Summarize(s.Items())
}
