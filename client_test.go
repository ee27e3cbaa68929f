package geodex

import (
	"context"
	"errors"
	"testing"
)

func newMemoryClient(t *testing.T) *Client {
	t.Helper()
	c, err := New()
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	t.Cleanup(c.Close)
	return c
}

func seedListing(id, name string, lat, lon float64) Listing {
	return Listing{
		ID:       id,
		Name:     name,
		Category: CategoryRestaurant,
		Lat:      lat,
		Lon:      lon,
		City:     "Miami",
		State:    "FL",
		Active:   true,
		Approved: true,
		Rating:   4.5,
	}
}

func TestClient_MemoryOnlyLifecycle(t *testing.T) {
	c := newMemoryClient(t)
	ctx := context.Background()

	if err := c.UpsertListing(ctx, seedListing("a", "Shalom Pizza & Grill", 25.9564, -80.1393)); err != nil {
		t.Fatalf("UpsertListing: %v", err)
	}

	got, err := c.GetListing(ctx, "a")
	if err != nil {
		t.Fatalf("GetListing: %v", err)
	}
	if got.Name != "Shalom Pizza & Grill" || got.Category != CategoryRestaurant {
		t.Errorf("listing = %+v", got)
	}

	if err := c.RemoveListing(ctx, "a"); err != nil {
		t.Fatalf("RemoveListing: %v", err)
	}
	if _, err := c.GetListing(ctx, "a"); !errors.Is(err, ErrListingNotFound) {
		t.Errorf("err = %v, want ErrListingNotFound", err)
	}
}

func TestClient_Search(t *testing.T) {
	c := newMemoryClient(t)
	ctx := context.Background()

	if err := c.UpsertListing(ctx, seedListing("near", "Shalom Pizza & Grill", 25.9564, -80.1393)); err != nil {
		t.Fatalf("UpsertListing: %v", err)
	}
	if err := c.UpsertListing(ctx, seedListing("far", "Boca Pizza", 26.3683, -80.1289)); err != nil {
		t.Fatalf("UpsertListing: %v", err)
	}

	lat, lon := 25.9420, -80.2456
	page, err := c.Search(ctx, Query{
		Text:        "pizza",
		Lat:         &lat,
		Lon:         &lon,
		RadiusMiles: 10,
	})
	if err != nil {
		t.Fatalf("Search: %v", err)
	}

	if len(page.Hits) != 1 || page.Hits[0].Listing.ID != "near" {
		t.Fatalf("hits = %+v", page.Hits)
	}
	if page.Hits[0].DistanceMiles == nil || *page.Hits[0].DistanceMiles > 10 {
		t.Errorf("distance = %v", page.Hits[0].DistanceMiles)
	}
	if page.Hits[0].TextScore <= 0.3 {
		t.Errorf("text score = %v", page.Hits[0].TextScore)
	}
}

func TestClient_SearchErrors(t *testing.T) {
	c := newMemoryClient(t)
	ctx := context.Background()

	if _, err := c.Search(ctx, Query{}); !errors.Is(err, ErrEmptyQuery) {
		t.Errorf("empty query: err = %v", err)
	}

	if _, err := c.Search(ctx, Query{Text: "x", RadiusMiles: 5}); !errors.Is(err, ErrInvalidRadius) {
		t.Errorf("radius without origin: err = %v", err)
	}

	lat := 25.9
	if _, err := c.Search(ctx, Query{Lat: &lat}); !errors.Is(err, ErrInvalidCoordinate) {
		t.Errorf("lat without lon: err = %v", err)
	}

	badLat, lon := 99.0, -80.0
	if _, err := c.Search(ctx, Query{Lat: &badLat, Lon: &lon, RadiusMiles: 5}); !errors.Is(err, ErrInvalidCoordinate) {
		t.Errorf("out-of-range lat: err = %v", err)
	}
}

func TestClient_MaxRadiusOption(t *testing.T) {
	c, err := New(WithMaxRadiusMiles(50))
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	defer c.Close()

	lat, lon := 25.9, -80.2
	if _, err := c.Search(context.Background(), Query{Lat: &lat, Lon: &lon, RadiusMiles: 100}); !errors.Is(err, ErrInvalidRadius) {
		t.Errorf("over-cap radius: err = %v", err)
	}
}

func TestClient_ConsistencyCheck(t *testing.T) {
	c := newMemoryClient(t)
	ctx := context.Background()

	if err := c.UpsertListing(ctx, seedListing("a", "Pizza", 25.9, -80.2)); err != nil {
		t.Fatalf("UpsertListing: %v", err)
	}

	report, err := c.CheckConsistency(ctx)
	if err != nil {
		t.Fatalf("CheckConsistency: %v", err)
	}
	if report.Repaired != 0 {
		t.Errorf("repaired = %d on a clean engine", report.Repaired)
	}
}

func TestClient_HealthAndPing(t *testing.T) {
	c := newMemoryClient(t)
	ctx := context.Background()

	if err := c.Ping(ctx); err != nil {
		t.Errorf("Ping: %v", err)
	}
	checks := c.Health(ctx)
	if checks["indexes"] != "ok" {
		t.Errorf("indexes check = %s", checks["indexes"])
	}
	if _, ok := checks["database"]; ok {
		t.Error("database check should be absent memory-only")
	}
}

func TestClient_RebuildMemoryOnly(t *testing.T) {
	c := newMemoryClient(t)

	n, err := c.Rebuild(context.Background())
	if err != nil || n != 0 {
		t.Fatalf("Rebuild = %d, %v, want 0, nil", n, err)
	}
}
