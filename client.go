package geodex

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/geodex-io/geodex/internal/db"
	dbRedis "github.com/geodex-io/geodex/internal/db/redis"
	"github.com/geodex-io/geodex/internal/index/catalog"
	"github.com/geodex-io/geodex/internal/index/spatial"
	"github.com/geodex-io/geodex/internal/index/text"
	listingrepo "github.com/geodex-io/geodex/internal/repository/listing"
	healthuc "github.com/geodex-io/geodex/internal/usecase/health"
	indexeruc "github.com/geodex-io/geodex/internal/usecase/indexer"
	searchuc "github.com/geodex-io/geodex/internal/usecase/search"
)

const defaultReadinessTimeout = 10 * time.Second

// Client is the geodex SDK entry point: an embedded search engine over
// an in-memory catalog, optionally backed by Redis for durability.
type Client struct {
	store      db.Store
	searchSvc  *searchuc.Service
	indexerSvc *indexeruc.Service
	healthSvc  *healthuc.Service
	maxRadius  float64
}

// New creates a Client. Without WithRedis it runs memory-only.
func New(opts ...Option) (*Client, error) {
	cfg := &clientConfig{}
	for _, o := range opts {
		o(cfg)
	}
	if cfg.logger == nil {
		cfg.logger = zap.NewNop()
	}

	var store db.Store
	if len(cfg.addrs) > 0 {
		s, err := dbRedis.NewStore(dbRedis.Config{
			Addrs:    cfg.addrs,
			Username: cfg.username,
			Password: cfg.password,
		})
		if err != nil {
			return nil, fmt.Errorf("geodex: create redis store: %w", err)
		}
		if err := s.WaitForReady(context.Background(), defaultReadinessTimeout); err != nil {
			s.Close()
			return nil, fmt.Errorf("geodex: database not ready: %w", err)
		}
		store = s
	}

	return wireClient(store, cfg)
}

func wireClient(store db.Store, cfg *clientConfig) (*Client, error) {
	cat := catalog.New()
	sp := spatial.New()
	tx := text.New()

	var persist indexeruc.PersistStore
	if store != nil {
		repo := listingrepo.New(store)
		if cfg.keyPrefix != "" {
			repo.WithKeyPrefix(cfg.keyPrefix)
		}
		persist = repo
	}

	indexerSvc := indexeruc.New(cat, sp, tx, persist, cfg.logger)

	if persist != nil {
		if _, err := indexerSvc.Rebuild(context.Background()); err != nil {
			if store != nil {
				store.Close()
			}
			return nil, fmt.Errorf("geodex: rebuild indexes: %w", err)
		}
	}

	searchSvc := searchuc.New(cat, sp, tx, cfg.logger)
	if cfg.blendText > 0 || cfg.blendDist > 0 {
		searchSvc.WithBlendWeights(cfg.blendText, cfg.blendDist)
	}
	if cfg.maxCandidates > 0 {
		searchSvc.WithMaxCandidates(cfg.maxCandidates)
	}
	if cfg.cacheSize > 0 {
		searchSvc.WithCache(cfg.cacheSize)
	}

	var pinger healthuc.DBPinger
	if store != nil {
		pinger = store
	}

	return &Client{
		store:      store,
		searchSvc:  searchSvc,
		indexerSvc: indexerSvc,
		healthSvc:  healthuc.New(pinger, cat, sp, tx),
		maxRadius:  cfg.maxRadiusMiles,
	}, nil
}

// Search executes a query and returns one ranked page.
func (c *Client) Search(ctx context.Context, q Query) (Page, error) {
	req, err := toInternalRequest(&q, c.maxRadius)
	if err != nil {
		return Page{}, fmt.Errorf("search: %w", err)
	}

	page, err := c.searchSvc.Search(ctx, req)
	if err != nil {
		return Page{}, fmt.Errorf("search: %w", err)
	}
	return fromInternalPage(page), nil
}

// UpsertListing creates or replaces a listing and updates all indexes
// atomically.
func (c *Client) UpsertListing(ctx context.Context, l Listing) error {
	dom, err := toInternalListing(&l)
	if err != nil {
		return fmt.Errorf("upsert listing: %w", err)
	}
	if err := c.indexerSvc.Upsert(ctx, dom); err != nil {
		return fmt.Errorf("upsert listing: %w", err)
	}
	return nil
}

// RemoveListing deletes a listing from the catalog, indexes, and store.
func (c *Client) RemoveListing(ctx context.Context, id string) error {
	if err := c.indexerSvc.Remove(ctx, id); err != nil {
		return fmt.Errorf("remove listing: %w", err)
	}
	return nil
}

// GetListing returns a listing snapshot by id.
func (c *Client) GetListing(ctx context.Context, id string) (Listing, error) {
	dom, err := c.indexerSvc.Get(ctx, id)
	if err != nil {
		return Listing{}, fmt.Errorf("get listing: %w", err)
	}
	return fromInternalListing(&dom), nil
}

// Rebuild replays every persisted listing into the in-memory indexes.
// A no-op without a configured store.
func (c *Client) Rebuild(ctx context.Context) (int, error) {
	n, err := c.indexerSvc.Rebuild(ctx)
	if err != nil {
		return 0, fmt.Errorf("rebuild: %w", err)
	}
	return n, nil
}

// CheckConsistency sweeps the indexes against the catalog and repairs
// any drift it finds.
func (c *Client) CheckConsistency(ctx context.Context) (ConsistencyReport, error) {
	n, err := c.indexerSvc.Check(ctx)
	if err != nil {
		return ConsistencyReport{}, fmt.Errorf("check consistency: %w", err)
	}
	return ConsistencyReport{Repaired: n}, nil
}

// Health reports component health as check name -> "ok"/"error".
func (c *Client) Health(ctx context.Context) map[string]string {
	report := c.healthSvc.Check(ctx)
	checks := make(map[string]string, len(report.Checks))
	for name, res := range report.Checks {
		checks[name] = string(res)
	}
	return checks
}

// Ping checks database connectivity. Always succeeds memory-only.
func (c *Client) Ping(ctx context.Context) error {
	if c.store == nil {
		return nil
	}
	if err := c.store.Ping(ctx); err != nil {
		return fmt.Errorf("ping: %w", err)
	}
	return nil
}

// Close releases all resources.
func (c *Client) Close() {
	if c.store != nil {
		c.store.Close()
	}
}
