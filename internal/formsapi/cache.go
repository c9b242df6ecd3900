package formsapi

import (
	"context"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"

	"github.com/felixgeelhaar/formrunner/internal/form"
)

type cacheKey struct {
	id    int64
	draft bool
}

// CachingRepository keeps recently fetched forms for a fixed time. Errors are
// never cached. Draft forms are cached separately from live ones.
type CachingRepository struct {
	next     form.Repository
	cache    *expirable.LRU[cacheKey, *form.Form]
	onLookup func(hit bool)
}

// NewCachingRepository caches up to size forms from next for ttl
func NewCachingRepository(next form.Repository, size int, ttl time.Duration) *CachingRepository {
	return &CachingRepository{
		next:  next,
		cache: expirable.NewLRU[cacheKey, *form.Form](size, nil, ttl),
	}
}

func (r *CachingRepository) Get(ctx context.Context, id int64, mode form.Mode) (*form.Form, error) {
	key := cacheKey{id: id, draft: mode.IsDraft()}
	f, ok := r.cache.Get(key)
	if r.onLookup != nil {
		r.onLookup(ok)
	}
	if ok {
		return f, nil
	}

	f, err := r.next.Get(ctx, id, mode)
	if err != nil {
		return nil, err
	}
	r.cache.Add(key, f)
	return f, nil
}

// OnLookup registers fn to be told whether each Get was served from the cache
func (r *CachingRepository) OnLookup(fn func(hit bool)) {
	r.onLookup = fn
}

// Purge empties the cache
func (r *CachingRepository) Purge() {
	r.cache.Purge()
}

// Len returns the number of cached forms
func (r *CachingRepository) Len() int {
	return r.cache.Len()
}
