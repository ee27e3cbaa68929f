package listing

import (
	"context"
	"fmt"
	"strings"

	domlst "github.com/geodex-io/geodex/internal/domain/listing"
)

// DefaultKeyPrefix namespaces listing hashes in the store.
const DefaultKeyPrefix = "geodex:listing:"

// store is the consumer interface for listings (ISP).
type store interface {
	HSet(ctx context.Context, key string, fields map[string]string) error
	HGetAll(ctx context.Context, key string) (map[string]string, error)
	HGetAllMulti(ctx context.Context, keys []string) ([]map[string]string, error)
	Del(ctx context.Context, key string) error
	Scan(ctx context.Context, pattern string) ([]string, error)
}

// Repo implements usecase/indexer.PersistStore over a hash store.
type Repo struct {
	store  store
	prefix string
}

// New creates a listing repository.
func New(s store) *Repo {
	return &Repo{store: s, prefix: DefaultKeyPrefix}
}

// WithKeyPrefix overrides the key namespace.
func (r *Repo) WithKeyPrefix(prefix string) *Repo {
	if prefix != "" {
		r.prefix = prefix
	}
	return r
}

// Save persists a listing as a single hash.
func (r *Repo) Save(ctx context.Context, l *domlst.Listing) error {
	if err := r.store.HSet(ctx, r.key(l.ID()), buildHashFields(l)); err != nil {
		return fmt.Errorf("hset listing %s: %w", l.ID(), err)
	}
	return nil
}

// Delete removes a persisted listing. Deleting an absent key is a no-op.
func (r *Repo) Delete(ctx context.Context, id string) error {
	if err := r.store.Del(ctx, r.key(id)); err != nil {
		return fmt.Errorf("del listing %s: %w", id, err)
	}
	return nil
}

// All loads every persisted listing. Used to rebuild the in-memory
// indexes at startup.
func (r *Repo) All(ctx context.Context) ([]domlst.Listing, error) {
	keys, err := r.store.Scan(ctx, r.prefix+"*")
	if err != nil {
		return nil, fmt.Errorf("scan listings: %w", err)
	}
	if len(keys) == 0 {
		return nil, nil
	}

	hashes, err := r.store.HGetAllMulti(ctx, keys)
	if err != nil {
		return nil, fmt.Errorf("load listings: %w", err)
	}

	out := make([]domlst.Listing, 0, len(hashes))
	for i, m := range hashes {
		if len(m) == 0 {
			// Key deleted between SCAN and HGETALL.
			continue
		}
		l, err := parseHashFields(m)
		if err != nil {
			return nil, fmt.Errorf("listing %s: %w", strings.TrimPrefix(keys[i], r.prefix), err)
		}
		out = append(out, l)
	}
	return out, nil
}

func (r *Repo) key(id string) string {
	return r.prefix + id
}
