package coord

import (
	"context"
	"encoding/json"
	"errors"
	"path/filepath"
	"sync"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/abelbrown/popcorn/internal/catalog"
	"github.com/abelbrown/popcorn/internal/ratings"
	"github.com/abelbrown/popcorn/internal/session"
	"github.com/abelbrown/popcorn/internal/store"
)

type fakeCatalog struct {
	mu       sync.Mutex
	searches []string
	lookups  []string
	results  map[string][]catalog.Show
	details  map[string]catalog.Detail
}

func (f *fakeCatalog) Search(ctx context.Context, q string) ([]catalog.Show, error) {
	f.mu.Lock()
	f.searches = append(f.searches, q)
	f.mu.Unlock()
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return f.results[q], nil
}

func (f *fakeCatalog) Lookup(ctx context.Context, id string) (catalog.Detail, error) {
	f.mu.Lock()
	f.lookups = append(f.lookups, id)
	f.mu.Unlock()
	if err := ctx.Err(); err != nil {
		return catalog.Detail{}, err
	}
	d, ok := f.details[id]
	if !ok {
		return catalog.Detail{}, catalog.ErrNotFound
	}
	return d, nil
}

type titles struct{ got []string }

func (t *titles) SetTitle(s string) { t.got = append(t.got, s) }

var bat42 = catalog.Show{ID: 42, Name: "Batman", IMDbID: "tt0059968"}

type fixture struct {
	state  *State
	cat    *fakeCatalog
	db     *store.Store
	titles *titles
}

func newFixture(t *testing.T, opts Options) *fixture {
	t.Helper()
	db, err := store.Open(filepath.Join(t.TempDir(), "popcorn.db"))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	cat := &fakeCatalog{
		results: map[string][]catalog.Show{
			"bat": {bat42, {ID: 2, Name: "Batwoman", IMDbID: "tt2"}, {ID: 3, Name: "Bates Motel", IMDbID: "tt3"}},
		},
		details: map[string]catalog.Detail{
			bat42.IMDbID: {Show: bat42, Genres: []string{"Action"}},
		},
	}
	ti := &titles{}
	st := New(context.Background(), opts, Deps{
		Catalog: cat,
		Ratings: ratings.Open(db),
		Titler:  ti,
	})
	return &fixture{state: st, cat: cat, db: db, titles: ti}
}

// run executes cmd and feeds the resulting message back through Update.
func (f *fixture) run(t *testing.T, cmd tea.Cmd) {
	t.Helper()
	require.NotNil(t, cmd)
	next, handled := f.state.Update(cmd())
	require.True(t, handled)
	if next != nil {
		f.run(t, next)
	}
}

func TestScenarioShortQueryStaysIdle(t *testing.T) {
	f := newFixture(t, Options{})

	assert.Nil(t, f.state.SetQuery("b"))
	assert.Nil(t, f.state.SetQuery("ba"))

	assert.Equal(t, session.StatusIdle, f.state.Search().State().Status())
	assert.Empty(t, f.cat.searches, "no network call below the threshold")
}

func TestScenarioSearchSuccess(t *testing.T) {
	f := newFixture(t, Options{})

	cmd := f.state.SetQuery("bat")
	assert.Equal(t, session.StatusLoading, f.state.Search().State().Status())

	f.run(t, cmd)
	assert.Equal(t, session.StatusSuccess, f.state.Search().State().Status())
	assert.Len(t, f.state.Results(), 3)
}

func TestScenarioEmptyResult(t *testing.T) {
	f := newFixture(t, Options{})

	f.run(t, f.state.SetQuery("zzzznotashow"))

	assert.Equal(t, session.StatusError, f.state.Search().State().Status())
	assert.Equal(t, session.NoResultMessage, f.state.Search().State().ErrorMessage())
}

func TestScenarioRateAndConfirm(t *testing.T) {
	f := newFixture(t, Options{})
	f.run(t, f.state.SetQuery("bat"))

	cmd, err := f.state.Select(bat42)
	require.NoError(t, err)
	require.NotNil(t, f.state.Detail())
	assert.Equal(t, session.StatusLoading, f.state.Detail().State().Status())

	f.run(t, cmd)
	assert.Equal(t, session.StatusSuccess, f.state.Detail().State().Status())

	require.NoError(t, f.state.SetRating(8))
	item, err := f.state.Confirm()
	require.NoError(t, err)
	assert.Equal(t, 42, item.ID)

	rated := f.state.Rated()
	require.Len(t, rated, 1)
	assert.Equal(t, 42, rated[0].ID)
	assert.Equal(t, 8, rated[0].UserRating)

	assert.True(t, f.state.Selection().Empty())
	assert.Nil(t, f.state.Detail())

	raw, ok, err := f.db.Read(ratings.DefaultKey)
	require.NoError(t, err)
	require.True(t, ok)
	var durable []ratings.Item
	require.NoError(t, json.Unmarshal([]byte(raw), &durable))
	require.Len(t, durable, 1)
	assert.Equal(t, 42, durable[0].ID)
	assert.Equal(t, 8, durable[0].UserRating)

	assert.Equal(t, []string{"Show | Batman", session.DefaultTitle}, f.titles.got)
}

func TestScenarioAlreadyRated(t *testing.T) {
	f := newFixture(t, Options{})
	f.run(t, f.state.SetQuery("bat"))

	cmd, _ := f.state.Select(bat42)
	f.run(t, cmd)
	require.NoError(t, f.state.SetRating(7))
	_, err := f.state.Confirm()
	require.NoError(t, err)

	cmd, err = f.state.Select(bat42)
	require.NoError(t, err)
	f.run(t, cmd)

	prev, rated := f.state.AlreadyRated()
	assert.True(t, rated)
	assert.Equal(t, 7, prev.UserRating)

	require.NoError(t, f.state.SetRating(3))
	_, err = f.state.Confirm()
	assert.ErrorIs(t, err, session.ErrAlreadyRated)
	assert.Len(t, f.state.Rated(), 1)
}

func TestAlreadyRatedFollowsRemoval(t *testing.T) {
	f := newFixture(t, Options{})
	cmd, _ := f.state.Select(bat42)
	f.run(t, cmd)
	f.state.SetRating(9)
	f.state.Confirm()

	cmd, _ = f.state.Select(bat42)
	f.run(t, cmd)
	_, rated := f.state.AlreadyRated()
	require.True(t, rated)

	require.NoError(t, f.state.Remove(42))
	_, rated = f.state.AlreadyRated()
	assert.False(t, rated, "already-rated is recomputed from the store on every call")
}

func TestSelectToggleAndQueryChangeClose(t *testing.T) {
	f := newFixture(t, Options{})
	f.run(t, f.state.SetQuery("bat"))

	cmd, err := f.state.Select(bat42)
	require.NoError(t, err)
	first := f.state.Detail()

	toggle, err := f.state.Select(bat42)
	require.NoError(t, err)
	assert.Nil(t, toggle)
	assert.Nil(t, f.state.Detail())
	assert.True(t, first.Closed())

	// The lookup from the toggled-off session must land nowhere.
	next, handled := f.state.Update(cmd())
	assert.True(t, handled)
	assert.Nil(t, next)

	f.state.Select(bat42)
	require.NotNil(t, f.state.Detail())
	f.state.SetQuery("ba")
	assert.Nil(t, f.state.Detail(), "any query change closes the detail view")
	assert.True(t, f.state.Selection().Empty())
}

func TestSelectionChangeRecreatesSession(t *testing.T) {
	f := newFixture(t, Options{})
	f.cat.details["tt2"] = catalog.Detail{Show: catalog.Show{ID: 2, Name: "Batwoman", IMDbID: "tt2"}}

	oldCmd, _ := f.state.Select(bat42)
	old := f.state.Detail()
	require.NoError(t, errOrNil(f.state.Select(catalog.Show{ID: 2, Name: "Batwoman", IMDbID: "tt2"})))
	current := f.state.Detail()

	assert.NotSame(t, old, current)
	assert.True(t, old.Closed())

	f.state.Update(oldCmd())
	assert.Equal(t, session.StatusLoading, current.State().Status(), "stale lookup must not reach the new session")
}

func TestSelectIncomplete(t *testing.T) {
	f := newFixture(t, Options{})
	_, err := f.state.Select(catalog.Show{ID: 5, Name: "no imdb"})
	assert.Error(t, err)
	assert.Nil(t, f.state.Detail())
}

func TestEscapeClosesDetail(t *testing.T) {
	f := newFixture(t, Options{})
	f.state.Select(bat42)
	require.Equal(t, 1, f.state.Keys().Len())

	_, matched := f.state.Keys().Dispatch(tea.KeyMsg{Type: tea.KeyEsc})
	assert.True(t, matched)
	assert.Nil(t, f.state.Detail())
	assert.Equal(t, 0, f.state.Keys().Len())
}

func TestRaceThroughState(t *testing.T) {
	f := newFixture(t, Options{})
	f.cat.results["abc"] = []catalog.Show{{ID: 1, Name: "abc"}}
	f.cat.results["abcd"] = []catalog.Show{{ID: 2, Name: "abcd"}}

	assert.Nil(t, f.state.SetQuery("ab"))
	abc := f.state.SetQuery("abc")
	abcd := f.state.SetQuery("abcd")

	f.run(t, abcd)
	f.run(t, abc)

	got := f.state.Results()
	require.Len(t, got, 1)
	assert.Equal(t, "abcd", got[0].Name)
}

func TestGateResetAfterResults(t *testing.T) {
	f := newFixture(t, Options{})
	f.run(t, f.state.SetQuery("bat"))
	require.Len(t, f.state.Results(), 3)

	assert.Nil(t, f.state.SetQuery("ba"))
	st := f.state.Search().State()
	assert.Equal(t, session.StatusIdle, st.Status())
	assert.Empty(t, st.ErrorMessage())
	assert.Nil(t, f.state.Results())
}

func TestDebouncedQuery(t *testing.T) {
	f := newFixture(t, Options{Debounce: time.Millisecond})

	first := f.state.SetQuery("bat")
	second := f.state.SetQuery("batm")
	require.NotNil(t, first)
	require.NotNil(t, second)
	assert.Empty(t, f.cat.searches, "nothing issued before the delay")

	next, _ := f.state.Update(first())
	assert.Nil(t, next, "superseded tick is ignored")

	next, _ = f.state.Update(second())
	require.NotNil(t, next)
	f.run(t, next)
	assert.Equal(t, []string{"batm"}, f.cat.searches)
}

func TestDebouncedQueryCancelsLiveSearch(t *testing.T) {
	f := newFixture(t, Options{Debounce: time.Millisecond})

	search, _ := f.state.Update(f.state.SetQuery("bat")())
	require.NotNil(t, search)

	tick := f.state.SetQuery("batm")
	require.NotNil(t, tick)
	assert.False(t, f.state.Search().InFlight(), "pending query cancels the old call")

	settled, ok := search().(session.SearchSettled)
	require.True(t, ok)
	assert.False(t, f.state.Search().Apply(settled))
	assert.Nil(t, f.state.Results())
	assert.NotEqual(t, session.StatusSuccess, f.state.Search().State().Status())

	next, _ := f.state.Update(tick())
	require.NotNil(t, next)
	f.run(t, next)
	assert.Equal(t, []string{"bat", "batm"}, f.cat.searches)
}

func TestDebouncedTickAfterShortQueryIgnored(t *testing.T) {
	f := newFixture(t, Options{Debounce: time.Millisecond})
	tick := f.state.SetQuery("bat")
	f.state.SetQuery("ba")

	next, handled := f.state.Update(tick())
	assert.True(t, handled)
	assert.Nil(t, next)
	assert.Equal(t, session.StatusIdle, f.state.Search().State().Status())
}

func TestConfirmWithoutDetail(t *testing.T) {
	f := newFixture(t, Options{})
	_, err := f.state.Confirm()
	assert.ErrorIs(t, err, session.ErrNotReady)
	assert.ErrorIs(t, f.state.SetRating(5), session.ErrNotReady)
}

type failingStorage struct{}

func (failingStorage) Read(string) (string, bool, error) { return "", false, nil }
func (failingStorage) Write(string, string) error       { return errors.New("disk full") }

func TestConfirmStoreFailureKeepsDetailOpen(t *testing.T) {
	cat := &fakeCatalog{details: map[string]catalog.Detail{bat42.IMDbID: {Show: bat42}}}
	st := New(context.Background(), Options{}, Deps{Catalog: cat, Ratings: ratings.Open(failingStorage{})})

	cmd, _ := st.Select(bat42)
	st.Update(cmd())
	require.NoError(t, st.SetRating(6))

	_, err := st.Confirm()
	assert.Error(t, err)
	assert.NotNil(t, st.Detail())
	assert.Empty(t, st.Rated())
}

func TestUnrelatedMessageNotHandled(t *testing.T) {
	f := newFixture(t, Options{})
	_, handled := f.state.Update(tea.WindowSizeMsg{})
	assert.False(t, handled)
}

func errOrNil(_ tea.Cmd, err error) error { return err }
