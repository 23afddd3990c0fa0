package ratings

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"sync"
	"testing"

	"github.com/abelbrown/popcorn/internal/catalog"
)

// memStorage is an in-memory Storage with an injectable write failure.
type memStorage struct {
	mu      sync.Mutex
	data    map[string]string
	readErr error
	failing bool
	writes  int
}

func newMemStorage() *memStorage {
	return &memStorage{data: make(map[string]string)}
}

func (m *memStorage) Read(key string) (string, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.readErr != nil {
		return "", false, m.readErr
	}
	v, ok := m.data[key]
	return v, ok, nil
}

func (m *memStorage) Write(key, value string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failing {
		return errors.New("disk full")
	}
	m.writes++
	m.data[key] = value
	return nil
}

func (m *memStorage) durable(t *testing.T) []Item {
	t.Helper()
	m.mu.Lock()
	defer m.mu.Unlock()
	var items []Item
	if err := json.Unmarshal([]byte(m.data[DefaultKey]), &items); err != nil {
		t.Fatalf("durable copy is not valid JSON: %v", err)
	}
	return items
}

func item(id, rating int) Item {
	return Item{ID: id, Name: "show", IMDbID: fmt.Sprintf("tt%07d", id), UserRating: rating}
}

func TestOpenEmpty(t *testing.T) {
	tests := []struct {
		name    string
		stored  *string
		readErr error
	}{
		{name: "absent"},
		{name: "empty string", stored: ptr("")},
		{name: "corrupt", stored: ptr("{not json")},
		{name: "wrong shape", stored: ptr(`{"id":1}`)},
		{name: "read error", readErr: errors.New("io")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := newMemStorage()
			m.readErr = tt.readErr
			if tt.stored != nil {
				m.data[DefaultKey] = *tt.stored
			}
			s := Open(m)
			if s.Len() != 0 {
				t.Errorf("expected empty store, got %d items", s.Len())
			}
		})
	}
}

func TestOpenLoadsExisting(t *testing.T) {
	m := newMemStorage()
	m.data[DefaultKey] = `[{"id":1,"name":"A","imdbID":"tt1","userRating":7},{"id":2,"name":"B","imdbID":"tt2","userRating":9},{"id":1,"name":"dup","imdbID":"tt1","userRating":3}]`

	s := Open(m)
	items := s.Items()
	if len(items) != 2 {
		t.Fatalf("expected 2 items (duplicate dropped), got %d", len(items))
	}
	if items[0].Name != "A" || items[1].Name != "B" {
		t.Errorf("unexpected order: %+v", items)
	}
}

func TestAddIdempotent(t *testing.T) {
	m := newMemStorage()
	s := Open(m)

	added, err := s.Add(item(42, 8))
	if err != nil || !added {
		t.Fatalf("first Add = %v, %v", added, err)
	}
	added, err = s.Add(item(42, 3))
	if err != nil || added {
		t.Fatalf("second Add = %v, %v; want false, nil", added, err)
	}

	if s.Len() != 1 {
		t.Errorf("expected 1 item, got %d", s.Len())
	}
	if got, _ := s.Get(42); got.UserRating != 8 {
		t.Errorf("stored rating = %d, want original 8", got.UserRating)
	}
	if m.writes != 1 {
		t.Errorf("duplicate add should not write, writes=%d", m.writes)
	}
	if d := m.durable(t); len(d) != 1 || d[0].ID != 42 {
		t.Errorf("durable copy = %+v", d)
	}
}

func TestRemove(t *testing.T) {
	m := newMemStorage()
	s := Open(m)
	s.Add(item(1, 5))
	s.Add(item(2, 6))
	s.Add(item(3, 7))

	removed, err := s.Remove(99)
	if err != nil || removed {
		t.Fatalf("Remove(missing) = %v, %v", removed, err)
	}
	if s.Len() != 3 || m.writes != 3 {
		t.Errorf("missing remove changed state: len=%d writes=%d", s.Len(), m.writes)
	}

	removed, err = s.Remove(2)
	if err != nil || !removed {
		t.Fatalf("Remove(2) = %v, %v", removed, err)
	}
	items := s.Items()
	if len(items) != 2 || items[0].ID != 1 || items[1].ID != 3 {
		t.Errorf("unexpected items after remove: %+v", items)
	}
	if d := m.durable(t); len(d) != 2 {
		t.Errorf("durable copy has %d items, want 2", len(d))
	}
}

func TestRemoveLastWritesEmptyArray(t *testing.T) {
	m := newMemStorage()
	s := Open(m)
	s.Add(item(1, 5))
	s.Remove(1)

	if m.data[DefaultKey] != "[]" {
		t.Errorf("durable copy = %q, want []", m.data[DefaultKey])
	}
}

func TestWriteFailureRollsBack(t *testing.T) {
	m := newMemStorage()
	s := Open(m)
	s.Add(item(1, 5))

	m.failing = true

	if added, err := s.Add(item(2, 6)); err == nil || added {
		t.Errorf("Add with failing storage = %v, %v; want error", added, err)
	}
	if removed, err := s.Remove(1); err == nil || removed {
		t.Errorf("Remove with failing storage = %v, %v; want error", removed, err)
	}

	items := s.Items()
	if len(items) != 1 || items[0].ID != 1 {
		t.Errorf("store diverged from durable copy: %+v", items)
	}
	if d := m.durable(t); len(d) != 1 || d[0].ID != 1 {
		t.Errorf("durable copy = %+v", d)
	}
}

func TestItemsIsSnapshot(t *testing.T) {
	s := Open(newMemStorage())
	s.Add(item(1, 5))

	snap := s.Items()
	snap[0].UserRating = 1

	if got, _ := s.Get(1); got.UserRating != 5 {
		t.Error("mutating a snapshot leaked into the store")
	}
	if s.Len() != 1 {
		t.Errorf("Len = %d, want 1", s.Len())
	}
}

func TestWithKey(t *testing.T) {
	m := newMemStorage()
	s := Open(m, WithKey("other"))
	s.Add(item(1, 5))

	if _, ok := m.data["other"]; !ok {
		t.Error("expected write under custom key")
	}
	if _, ok := m.data[DefaultKey]; ok {
		t.Error("unexpected write under default key")
	}
}

func TestNewItem(t *testing.T) {
	runtime := 60
	avg := 8.5
	d := catalog.Detail{
		Show:           catalog.Show{ID: 42, Name: "Batman", Premiered: "1966-01-12", IMDbID: "tt0059968"},
		RuntimeMinutes: &runtime,
		AverageRating:  &avg,
	}

	it, err := NewItem(d, 7, 8, 2)
	if err != nil {
		t.Fatalf("NewItem: %v", err)
	}
	if it.ID != 42 || it.UserRating != 8 || it.DecisionChanges != 2 || it.Year() != "1966" {
		t.Errorf("unexpected item: %+v", it)
	}
	if it.RatedAt.IsZero() {
		t.Error("RatedAt not set")
	}

	d.ID = 0
	it, _ = NewItem(d, 7, 8, 0)
	if it.ID != 7 {
		t.Errorf("fallback id = %d, want 7", it.ID)
	}

	for _, bad := range []int{0, 11, -1} {
		if _, err := NewItem(d, 7, bad, 0); !errors.Is(err, ErrInvalidRating) {
			t.Errorf("NewItem rating %d: err = %v, want ErrInvalidRating", bad, err)
		}
	}
}

func TestLookup(t *testing.T) {
	items := []Item{item(1, 5), item(42, 8)}

	if got, ok := Lookup(items, 42); !ok || got.UserRating != 8 {
		t.Errorf("Lookup(42) = %+v, %v", got, ok)
	}
	if _, ok := Lookup(items, 7); ok {
		t.Error("Lookup(7) found an item")
	}
	if _, ok := Lookup(nil, 1); ok {
		t.Error("Lookup on nil snapshot found an item")
	}
}

func TestSummarize(t *testing.T) {
	r60, r30 := 60, 30
	a8, a6 := 8.0, 6.0
	items := []Item{
		{ID: 1, UserRating: 10, RuntimeMinutes: &r60, AverageRating: &a8},
		{ID: 2, UserRating: 6, RuntimeMinutes: &r30, AverageRating: &a6},
		{ID: 3, UserRating: 5},
	}

	sum := Summarize(items)
	if sum.Count != 3 {
		t.Errorf("Count = %d", sum.Count)
	}
	if math.Abs(sum.AvgUserRating-7) > 1e-9 {
		t.Errorf("AvgUserRating = %v, want 7", sum.AvgUserRating)
	}
	if math.Abs(sum.AvgCatalogRating-7) > 1e-9 {
		t.Errorf("AvgCatalogRating = %v, want 7", sum.AvgCatalogRating)
	}
	if math.Abs(sum.AvgRuntime-45) > 1e-9 {
		t.Errorf("AvgRuntime = %v, want 45", sum.AvgRuntime)
	}

	if empty := Summarize(nil); empty != (Summary{}) {
		t.Errorf("Summarize(nil) = %+v", empty)
	}
}

func ptr(s string) *string { return &s }
