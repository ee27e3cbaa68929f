package indexer

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/geodex-io/geodex/internal/domain"
	"github.com/geodex-io/geodex/internal/domain/listing"
	"github.com/geodex-io/geodex/internal/metrics"
)

// Service applies listing mutations atomically across the catalog and
// both search indexes. Mutations for the same listing are serialized;
// different listings proceed concurrently.
type Service struct {
	catalog Catalog
	spatial SpatialIndex
	text    TextIndex
	store   PersistStore
	keys    *keyedMutex
	logger  *zap.Logger
}

// New creates an indexer service. store may be nil for memory-only use.
func New(catalog Catalog, spatial SpatialIndex, text TextIndex, store PersistStore, logger *zap.Logger) *Service {
	return &Service{
		catalog: catalog,
		spatial: spatial,
		text:    text,
		store:   store,
		keys:    newKeyedMutex(),
		logger:  logger,
	}
}

// Upsert validates, persists, and indexes a listing. The catalog always
// receives the listing; the spatial and text indexes only receive it
// while it is active and approved, and shed it otherwise.
func (s *Service) Upsert(ctx context.Context, l listing.Listing) error {
	unlock := s.keys.Lock(l.ID())
	defer unlock()

	if s.store != nil {
		if err := s.store.Save(ctx, &l); err != nil {
			metrics.IndexMutationsTotal.WithLabelValues("upsert", "error").Inc()
			return fmt.Errorf("persist listing: %w", err)
		}
	}

	s.apply(l)
	metrics.IndexMutationsTotal.WithLabelValues("upsert", "ok").Inc()
	s.updateGauges()
	return nil
}

// Remove deletes a listing from the store, the catalog, and both
// indexes. Unknown ids return domain.ErrListingNotFound.
func (s *Service) Remove(ctx context.Context, id string) error {
	unlock := s.keys.Lock(id)
	defer unlock()

	if _, ok := s.catalog.Get(id); !ok {
		metrics.IndexMutationsTotal.WithLabelValues("remove", "error").Inc()
		return fmt.Errorf("listing %q: %w", id, domain.ErrListingNotFound)
	}

	if s.store != nil {
		if err := s.store.Delete(ctx, id); err != nil {
			metrics.IndexMutationsTotal.WithLabelValues("remove", "error").Inc()
			return fmt.Errorf("delete persisted listing: %w", err)
		}
	}

	s.catalog.Delete(id)
	s.spatial.Remove(id)
	s.text.Remove(id)
	metrics.IndexMutationsTotal.WithLabelValues("remove", "ok").Inc()
	s.updateGauges()
	return nil
}

// Get returns a listing snapshot from the catalog.
func (s *Service) Get(ctx context.Context, id string) (listing.Listing, error) {
	l, ok := s.catalog.Get(id)
	if !ok {
		return listing.Listing{}, fmt.Errorf("listing %q: %w", id, domain.ErrListingNotFound)
	}
	return l, nil
}

// Rebuild replays every persisted listing into the in-memory catalog
// and indexes. Used at startup when a persistent store is configured.
func (s *Service) Rebuild(ctx context.Context) (int, error) {
	if s.store == nil {
		return 0, nil
	}

	listings, err := s.store.All(ctx)
	if err != nil {
		return 0, fmt.Errorf("load persisted listings: %w", err)
	}

	for i := range listings {
		unlock := s.keys.Lock(listings[i].ID())
		s.apply(listings[i])
		unlock()
	}
	s.updateGauges()

	s.logger.Info("index rebuild complete", zap.Int("listings", len(listings)))
	return len(listings), nil
}

// Check sweeps both indexes against the catalog and repairs drift:
// orphaned index entries are removed and indexable listings missing
// from an index are re-added. Returns the number of repairs.
func (s *Service) Check(ctx context.Context) (int, error) {
	checkID := uuid.NewString()
	repaired := 0

	for _, ids := range [][]string{s.spatial.IDs(), s.text.IDs()} {
		for _, id := range ids {
			if err := ctx.Err(); err != nil {
				return repaired, err
			}
			if _, ok := s.catalog.Get(id); ok {
				continue
			}
			unlock := s.keys.Lock(id)
			if _, ok := s.catalog.Get(id); !ok {
				if s.spatial.Remove(id) || s.text.Remove(id) {
					repaired++
					metrics.IndexInconsistenciesTotal.Inc()
					s.logger.Warn("removed orphaned index entry",
						zap.String("check_id", checkID),
						zap.String("listing_id", id))
				}
			}
			unlock()
		}
	}

	for _, id := range s.catalog.IDs() {
		if err := ctx.Err(); err != nil {
			return repaired, err
		}
		unlock := s.keys.Lock(id)
		l, ok := s.catalog.Get(id)
		switch {
		case !ok:
			// Deleted between the enumeration and the lock.
		case l.Indexable() && (!s.spatial.Contains(id) || !s.text.Contains(id)):
			s.apply(l)
			repaired++
			metrics.IndexInconsistenciesTotal.Inc()
			s.logger.Warn("reindexed listing missing from an index",
				zap.String("check_id", checkID),
				zap.String("listing_id", id))
		case !l.Indexable() && (s.spatial.Contains(id) || s.text.Contains(id)):
			s.apply(l)
			repaired++
			metrics.IndexInconsistenciesTotal.Inc()
			s.logger.Warn("evicted non-indexable listing from indexes",
				zap.String("check_id", checkID),
				zap.String("listing_id", id))
		}
		unlock()
	}

	if repaired > 0 {
		s.updateGauges()
	}
	s.logger.Info("consistency check complete",
		zap.String("check_id", checkID),
		zap.Int("repaired", repaired))
	return repaired, nil
}

// apply writes a listing to the catalog and keeps both indexes in step
// with its indexable state. Callers hold the listing's key lock.
func (s *Service) apply(l listing.Listing) {
	s.catalog.Put(l)
	if l.Indexable() {
		s.spatial.Upsert(l.ID(), l.Location())
		s.text.Upsert(l.ID(), l.Name(), l.Description())
	} else {
		s.spatial.Remove(l.ID())
		s.text.Remove(l.ID())
	}
}

func (s *Service) updateGauges() {
	metrics.IndexedListings.WithLabelValues("catalog").Set(float64(s.catalog.Len()))
	metrics.IndexedListings.WithLabelValues("spatial").Set(float64(s.spatial.Len()))
	metrics.IndexedListings.WithLabelValues("text").Set(float64(s.text.Len()))
}
