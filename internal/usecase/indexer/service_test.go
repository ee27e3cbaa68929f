package indexer

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"

	"go.uber.org/zap"

	"github.com/geodex-io/geodex/internal/domain"
	"github.com/geodex-io/geodex/internal/domain/listing"
	"github.com/geodex-io/geodex/internal/index/catalog"
	"github.com/geodex-io/geodex/internal/index/spatial"
	"github.com/geodex-io/geodex/internal/index/text"
)

type memStore struct {
	mu       sync.Mutex
	listings map[string]listing.Listing
	failSave bool
}

func newMemStore() *memStore {
	return &memStore{listings: make(map[string]listing.Listing)}
}

func (m *memStore) Save(_ context.Context, l *listing.Listing) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failSave {
		return errors.New("store unavailable")
	}
	m.listings[l.ID()] = *l
	return nil
}

func (m *memStore) Delete(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.listings, id)
	return nil
}

func (m *memStore) All(_ context.Context) ([]listing.Listing, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]listing.Listing, 0, len(m.listings))
	for _, l := range m.listings {
		out = append(out, l)
	}
	return out, nil
}

type fixture struct {
	catalog *catalog.Catalog
	spatial *spatial.Index
	text    *text.Index
	store   *memStore
	svc     *Service
}

func newFixture(store *memStore) *fixture {
	f := &fixture{
		catalog: catalog.New(),
		spatial: spatial.New(),
		text:    text.New(),
		store:   store,
	}
	var ps PersistStore
	if store != nil {
		ps = store
	}
	f.svc = New(f.catalog, f.spatial, f.text, ps, zap.NewNop())
	return f
}

func mkListing(t *testing.T, id string, active, approved bool) listing.Listing {
	t.Helper()
	l, err := listing.New(id, "Shalom Pizza", "wood fired", listing.CategoryRestaurant,
		25.9564, -80.1393, "Miami", "FL", active, approved, nil, 4)
	if err != nil {
		t.Fatalf("listing.New: %v", err)
	}
	return l
}

func TestUpsert_IndexableListing(t *testing.T) {
	f := newFixture(nil)

	if err := f.svc.Upsert(context.Background(), mkListing(t, "a", true, true)); err != nil {
		t.Fatalf("Upsert: %v", err)
	}

	if _, ok := f.catalog.Get("a"); !ok {
		t.Error("listing missing from catalog")
	}
	if !f.spatial.Contains("a") {
		t.Error("listing missing from spatial index")
	}
	if !f.text.Contains("a") {
		t.Error("listing missing from text index")
	}
}

func TestUpsert_NonIndexableStaysOutOfIndexes(t *testing.T) {
	f := newFixture(nil)

	if err := f.svc.Upsert(context.Background(), mkListing(t, "a", true, false)); err != nil {
		t.Fatalf("Upsert: %v", err)
	}

	if _, ok := f.catalog.Get("a"); !ok {
		t.Error("unapproved listing should still be in the catalog")
	}
	if f.spatial.Contains("a") || f.text.Contains("a") {
		t.Error("unapproved listing leaked into a search index")
	}
}

func TestUpsert_DeactivationEvictsFromIndexes(t *testing.T) {
	f := newFixture(nil)
	ctx := context.Background()

	if err := f.svc.Upsert(ctx, mkListing(t, "a", true, true)); err != nil {
		t.Fatalf("Upsert: %v", err)
	}
	if err := f.svc.Upsert(ctx, mkListing(t, "a", false, true)); err != nil {
		t.Fatalf("Upsert: %v", err)
	}

	if f.spatial.Contains("a") || f.text.Contains("a") {
		t.Error("deactivated listing still indexed")
	}
	l, ok := f.catalog.Get("a")
	if !ok || l.Active() {
		t.Error("catalog should hold the deactivated listing")
	}
}

func TestUpsert_PersistFailureLeavesIndexesUntouched(t *testing.T) {
	store := newMemStore()
	store.failSave = true
	f := newFixture(store)

	err := f.svc.Upsert(context.Background(), mkListing(t, "a", true, true))
	if err == nil {
		t.Fatal("expected persist error")
	}
	if f.catalog.Len() != 0 || f.spatial.Len() != 0 || f.text.Len() != 0 {
		t.Error("failed persist must not mutate the in-memory indexes")
	}
}

func TestRemove(t *testing.T) {
	store := newMemStore()
	f := newFixture(store)
	ctx := context.Background()

	if err := f.svc.Upsert(ctx, mkListing(t, "a", true, true)); err != nil {
		t.Fatalf("Upsert: %v", err)
	}
	if err := f.svc.Remove(ctx, "a"); err != nil {
		t.Fatalf("Remove: %v", err)
	}

	if _, ok := f.catalog.Get("a"); ok {
		t.Error("listing still in catalog")
	}
	if f.spatial.Contains("a") || f.text.Contains("a") {
		t.Error("listing still indexed")
	}
	if len(store.listings) != 0 {
		t.Error("listing still persisted")
	}
}

func TestRemove_UnknownID(t *testing.T) {
	f := newFixture(nil)
	err := f.svc.Remove(context.Background(), "nope")
	if !errors.Is(err, domain.ErrListingNotFound) {
		t.Fatalf("err = %v, want ErrListingNotFound", err)
	}
}

func TestGet(t *testing.T) {
	f := newFixture(nil)
	ctx := context.Background()

	if err := f.svc.Upsert(ctx, mkListing(t, "a", true, true)); err != nil {
		t.Fatalf("Upsert: %v", err)
	}

	l, err := f.svc.Get(ctx, "a")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if l.ID() != "a" {
		t.Errorf("ID = %s", l.ID())
	}
	if _, err := f.svc.Get(ctx, "b"); !errors.Is(err, domain.ErrListingNotFound) {
		t.Errorf("err = %v, want ErrListingNotFound", err)
	}
}

func TestRebuild(t *testing.T) {
	store := newMemStore()
	seed := newFixture(store)
	ctx := context.Background()
	if err := seed.svc.Upsert(ctx, mkListing(t, "a", true, true)); err != nil {
		t.Fatalf("Upsert: %v", err)
	}
	if err := seed.svc.Upsert(ctx, mkListing(t, "b", false, true)); err != nil {
		t.Fatalf("Upsert: %v", err)
	}

	// Fresh in-memory state, same store: simulates a restart.
	f := newFixture(store)
	n, err := f.svc.Rebuild(ctx)
	if err != nil {
		t.Fatalf("Rebuild: %v", err)
	}
	if n != 2 {
		t.Errorf("replayed %d listings, want 2", n)
	}
	if f.catalog.Len() != 2 {
		t.Errorf("catalog has %d listings, want 2", f.catalog.Len())
	}
	if !f.spatial.Contains("a") || f.spatial.Contains("b") {
		t.Error("spatial index state wrong after rebuild")
	}
}

func TestRebuild_NoStore(t *testing.T) {
	f := newFixture(nil)
	n, err := f.svc.Rebuild(context.Background())
	if err != nil || n != 0 {
		t.Fatalf("Rebuild = %d, %v, want 0, nil", n, err)
	}
}

func TestCheck_RemovesOrphans(t *testing.T) {
	f := newFixture(nil)

	// Index entries with no catalog backing.
	ghost := mkListing(t, "ghost", true, true)
	f.spatial.Upsert("ghost", ghost.Location())
	f.text.Upsert("ghost", "Ghost Pizza", "")

	n, err := f.svc.Check(context.Background())
	if err != nil {
		t.Fatalf("Check: %v", err)
	}
	if n == 0 {
		t.Fatal("expected repairs")
	}
	if f.spatial.Contains("ghost") || f.text.Contains("ghost") {
		t.Error("orphan survived the sweep")
	}
}

func TestCheck_ReindexesMissingListing(t *testing.T) {
	f := newFixture(nil)

	// Catalog entry that never made it into the indexes.
	f.catalog.Put(mkListing(t, "a", true, true))

	n, err := f.svc.Check(context.Background())
	if err != nil {
		t.Fatalf("Check: %v", err)
	}
	if n != 1 {
		t.Errorf("repaired = %d, want 1", n)
	}
	if !f.spatial.Contains("a") || !f.text.Contains("a") {
		t.Error("listing not reindexed")
	}
}

func TestCheck_CleanStateRepairsNothing(t *testing.T) {
	f := newFixture(nil)
	ctx := context.Background()
	if err := f.svc.Upsert(ctx, mkListing(t, "a", true, true)); err != nil {
		t.Fatalf("Upsert: %v", err)
	}

	n, err := f.svc.Check(ctx)
	if err != nil {
		t.Fatalf("Check: %v", err)
	}
	if n != 0 {
		t.Errorf("repaired = %d on a consistent state", n)
	}
}

func TestUpsert_ConcurrentSameID(t *testing.T) {
	f := newFixture(nil)
	ctx := context.Background()

	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			active := i%2 == 0
			_ = f.svc.Upsert(ctx, mkListing(t, "a", active, true))
		}(i)
	}
	wg.Wait()

	// Whatever write landed last, catalog and indexes must agree.
	l, ok := f.catalog.Get("a")
	if !ok {
		t.Fatal("listing missing after concurrent upserts")
	}
	if l.Indexable() != f.spatial.Contains("a") || l.Indexable() != f.text.Contains("a") {
		t.Error("indexes disagree with the catalog's indexable state")
	}
}

func TestUpsert_ConcurrentDistinctIDs(t *testing.T) {
	f := newFixture(nil)
	ctx := context.Background()

	var wg sync.WaitGroup
	for i := 0; i < 32; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_ = f.svc.Upsert(ctx, mkListing(t, fmt.Sprintf("l%02d", i), true, true))
		}(i)
	}
	wg.Wait()

	if f.catalog.Len() != 32 || f.spatial.Len() != 32 || f.text.Len() != 32 {
		t.Errorf("lens = %d/%d/%d, want 32 each",
			f.catalog.Len(), f.spatial.Len(), f.text.Len())
	}
}
