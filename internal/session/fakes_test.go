package session

import (
	"context"
	"errors"
	"sync"

	"github.com/abelbrown/popcorn/internal/catalog"
)

// fakeCatalog answers searches and lookups from canned tables. When
// honorCtx is set, a call whose context is already done returns ctx.Err(),
// mimicking an aborted HTTP request.
type fakeCatalog struct {
	mu       sync.Mutex
	results  map[string][]catalog.Show
	errs     map[string]error
	details  map[string]catalog.Detail
	honorCtx bool
	calls    []string
}

func newFakeCatalog() *fakeCatalog {
	return &fakeCatalog{
		results:  make(map[string][]catalog.Show),
		errs:     make(map[string]error),
		details:  make(map[string]catalog.Detail),
		honorCtx: true,
	}
}

func (f *fakeCatalog) record(s string) {
	f.mu.Lock()
	f.calls = append(f.calls, s)
	f.mu.Unlock()
}

func (f *fakeCatalog) Calls() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.calls...)
}

func (f *fakeCatalog) Search(ctx context.Context, q string) ([]catalog.Show, error) {
	f.record(q)
	if f.honorCtx && ctx.Err() != nil {
		return nil, ctx.Err()
	}
	if err, ok := f.errs[q]; ok {
		return nil, err
	}
	return f.results[q], nil
}

func (f *fakeCatalog) Lookup(ctx context.Context, id string) (catalog.Detail, error) {
	f.record(id)
	if f.honorCtx && ctx.Err() != nil {
		return catalog.Detail{}, ctx.Err()
	}
	if err, ok := f.errs[id]; ok {
		return catalog.Detail{}, err
	}
	d, ok := f.details[id]
	if !ok {
		return catalog.Detail{}, catalog.ErrNotFound
	}
	return d, nil
}

func shows(names ...string) []catalog.Show {
	out := make([]catalog.Show, len(names))
	for i, n := range names {
		out[i] = catalog.Show{ID: i + 1, Name: n}
	}
	return out
}

type recordingTitler struct{ titles []string }

func (r *recordingTitler) SetTitle(t string) { r.titles = append(r.titles, t) }

// emptyErr has an empty message.
type emptyErr struct{}

func (emptyErr) Error() string { return "" }

var errBoom = errors.New("HTTP error: 500 Internal Server Error")
