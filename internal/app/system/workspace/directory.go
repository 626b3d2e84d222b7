// Package workspace resolves tenants by slug or ID and carries the tenant
// discovered from the request host on the request context.
package workspace

import (
	"context"
	"errors"
	"sync"
	"time"

	tenantstore "github.com/ovibase/ovibase/internal/app/store/tenants"
	"github.com/ovibase/ovibase/internal/app/system/timeouts"
	"github.com/ovibase/ovibase/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"golang.org/x/sync/singleflight"
)

// TenantStore is the lookup surface the directory needs.
type TenantStore interface {
	GetByID(ctx context.Context, id primitive.ObjectID) (models.Tenant, error)
	GetBySlug(ctx context.Context, slug string) (models.Tenant, error)
}

// Directory looks tenants up through a short-lived read-through cache.
// Unknown tenants come back as (nil, nil). Stale entries may be served for
// up to ttl after a tenant changes.
type Directory struct {
	store TenantStore
	ttl   time.Duration
	now   func() time.Time

	mu     sync.RWMutex
	byID   map[primitive.ObjectID]cacheEntry
	bySlug map[string]cacheEntry
	group  singleflight.Group
}

type cacheEntry struct {
	tenant  models.Tenant
	expires time.Time
}

// NewDirectory wraps store. A ttl of zero disables caching.
func NewDirectory(store TenantStore, ttl time.Duration) *Directory {
	return &Directory{
		store:  store,
		ttl:    ttl,
		now:    time.Now,
		byID:   make(map[primitive.ObjectID]cacheEntry),
		bySlug: make(map[string]cacheEntry),
	}
}

// ByID returns the tenant with the given hex ID, or nil when there is none.
// A malformed ID is treated as unknown.
func (d *Directory) ByID(ctx context.Context, id string) (*models.Tenant, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, nil
	}
	d.mu.RLock()
	e, ok := d.byID[oid]
	d.mu.RUnlock()
	if ok && d.now().Before(e.expires) {
		t := e.tenant
		return &t, nil
	}
	return d.load(ctx, "id:"+id, func(ctx context.Context) (models.Tenant, error) {
		return d.store.GetByID(ctx, oid)
	})
}

// BySlug returns the tenant with the given slug, or nil when there is none.
func (d *Directory) BySlug(ctx context.Context, slug string) (*models.Tenant, error) {
	if slug == "" {
		return nil, nil
	}
	d.mu.RLock()
	e, ok := d.bySlug[slug]
	d.mu.RUnlock()
	if ok && d.now().Before(e.expires) {
		t := e.tenant
		return &t, nil
	}
	return d.load(ctx, "slug:"+slug, func(ctx context.Context) (models.Tenant, error) {
		return d.store.GetBySlug(ctx, slug)
	})
}

// Forget drops a tenant from the cache.
func (d *Directory) Forget(t models.Tenant) {
	d.mu.Lock()
	delete(d.byID, t.ID)
	delete(d.bySlug, t.Slug)
	d.mu.Unlock()
}

// Prune drops expired entries and reports how many tenants it removed.
func (d *Directory) Prune() int {
	now := d.now()
	removed := 0
	d.mu.Lock()
	for id, e := range d.byID {
		if !now.Before(e.expires) {
			delete(d.byID, id)
			removed++
		}
	}
	for slug, e := range d.bySlug {
		if !now.Before(e.expires) {
			delete(d.bySlug, slug)
		}
	}
	d.mu.Unlock()
	return removed
}

func (d *Directory) load(ctx context.Context, key string, fetch func(context.Context) (models.Tenant, error)) (*models.Tenant, error) {
	// The shared fetch outlives any one caller; each caller still stops
	// waiting when its own ctx is done.
	ch := d.group.DoChan(key, func() (interface{}, error) {
		fctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), timeouts.Short())
		defer cancel()
		t, err := fetch(fctx)
		if err != nil {
			return nil, err
		}
		d.remember(t)
		return t, nil
	})

	var v interface{}
	var err error
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case res := <-ch:
		v, err = res.Val, res.Err
	}
	if errors.Is(err, tenantstore.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	t := v.(models.Tenant)
	return &t, nil
}

func (d *Directory) remember(t models.Tenant) {
	if d.ttl <= 0 {
		return
	}
	e := cacheEntry{tenant: t, expires: d.now().Add(d.ttl)}
	d.mu.Lock()
	d.byID[t.ID] = e
	d.bySlug[t.Slug] = e
	d.mu.Unlock()
}
