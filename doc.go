// Package geodex provides an embedded location-aware search engine for
// business listings: haversine distance, R-tree spatial candidates,
// trigram fuzzy text matching, and composable ranking.
//
// The engine is memory-only by default; with WithRedis it persists
// listings and rebuilds its indexes at startup.
//
//	client, _ := geodex.New()
//	_ = client.UpsertListing(ctx, geodex.Listing{
//	    ID:       "shalom-1",
//	    Name:     "Shalom Pizza & Grill",
//	    Category: geodex.CategoryRestaurant,
//	    Lat:      25.9564, Lon: -80.1393,
//	    Active:   true, Approved: true,
//	})
//
//	lat, lon := 25.9420, -80.2456
//	page, _ := client.Search(ctx, geodex.Query{
//	    Text: "pizza",
//	    Lat:  &lat, Lon: &lon,
//	    RadiusMiles: 10,
//	})
package geodex
