package workspace_test

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	tenantstore "github.com/ovibase/ovibase/internal/app/store/tenants"
	"github.com/ovibase/ovibase/internal/app/system/workspace"
	"github.com/ovibase/ovibase/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

type fakeTenants struct {
	tenants []models.Tenant
	calls   atomic.Int32
	err     error
}

func (f *fakeTenants) GetByID(_ context.Context, id primitive.ObjectID) (models.Tenant, error) {
	f.calls.Add(1)
	if f.err != nil {
		return models.Tenant{}, f.err
	}
	for _, t := range f.tenants {
		if t.ID == id {
			return t, nil
		}
	}
	return models.Tenant{}, tenantstore.ErrNotFound
}

func (f *fakeTenants) GetBySlug(_ context.Context, slug string) (models.Tenant, error) {
	f.calls.Add(1)
	if f.err != nil {
		return models.Tenant{}, f.err
	}
	for _, t := range f.tenants {
		if t.Slug == slug {
			return t, nil
		}
	}
	return models.Tenant{}, tenantstore.ErrNotFound
}

func grace() models.Tenant {
	return models.Tenant{ID: primitive.NewObjectID(), Name: "Grace Church", Slug: "grace"}
}

func TestDirectory_BySlugAndByID(t *testing.T) {
	g := grace()
	dir := workspace.NewDirectory(&fakeTenants{tenants: []models.Tenant{g}}, time.Minute)
	ctx := context.Background()

	got, err := dir.BySlug(ctx, "grace")
	if err != nil || got == nil || got.ID != g.ID {
		t.Fatalf("BySlug: got %+v, %v", got, err)
	}
	got, err = dir.ByID(ctx, g.ID.Hex())
	if err != nil || got == nil || got.Slug != "grace" {
		t.Fatalf("ByID: got %+v, %v", got, err)
	}
}

func TestDirectory_UnknownIsNil(t *testing.T) {
	dir := workspace.NewDirectory(&fakeTenants{}, time.Minute)
	ctx := context.Background()

	if got, err := dir.BySlug(ctx, "nobody"); got != nil || err != nil {
		t.Errorf("BySlug unknown: got %+v, %v", got, err)
	}
	if got, err := dir.ByID(ctx, primitive.NewObjectID().Hex()); got != nil || err != nil {
		t.Errorf("ByID unknown: got %+v, %v", got, err)
	}
	if got, err := dir.ByID(ctx, "not-an-id"); got != nil || err != nil {
		t.Errorf("ByID malformed: got %+v, %v", got, err)
	}
}

func TestDirectory_CachesHits(t *testing.T) {
	store := &fakeTenants{tenants: []models.Tenant{grace()}}
	dir := workspace.NewDirectory(store, time.Minute)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		if _, err := dir.BySlug(ctx, "grace"); err != nil {
			t.Fatal(err)
		}
	}
	if n := store.calls.Load(); n != 1 {
		t.Errorf("expected 1 store call, got %d", n)
	}
}

func TestDirectory_ZeroTTLDoesNotCache(t *testing.T) {
	store := &fakeTenants{tenants: []models.Tenant{grace()}}
	dir := workspace.NewDirectory(store, 0)
	ctx := context.Background()

	dir.BySlug(ctx, "grace")
	dir.BySlug(ctx, "grace")
	if n := store.calls.Load(); n != 2 {
		t.Errorf("expected 2 store calls, got %d", n)
	}
}

func TestDirectory_StoreErrorPropagates(t *testing.T) {
	dir := workspace.NewDirectory(&fakeTenants{err: errors.New("db down")}, time.Minute)
	if _, err := dir.BySlug(context.Background(), "grace"); err == nil {
		t.Fatal("expected store error")
	}
}

func TestMiddleware_DiscoversTenant(t *testing.T) {
	g := grace()
	dir := workspace.NewDirectory(&fakeTenants{tenants: []models.Tenant{g}}, time.Minute)

	var info *workspace.Info
	h := workspace.Middleware(dir, "ovibase.app", zap.NewNop())(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		info = workspace.FromRequest(r)
	}))

	req := httptest.NewRequest("GET", "http://grace.ovibase.app/login", nil)
	h.ServeHTTP(httptest.NewRecorder(), req)

	if info == nil || info.Tenant == nil || info.Tenant.ID != g.ID || info.IsRoot {
		t.Fatalf("unexpected info: %+v", info)
	}
}

func TestMiddleware_RootDomain(t *testing.T) {
	dir := workspace.NewDirectory(&fakeTenants{}, time.Minute)

	var info *workspace.Info
	h := workspace.Middleware(dir, "ovibase.app", zap.NewNop())(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		info = workspace.FromRequest(r)
	}))

	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest("GET", "http://ovibase.app/login", nil))

	if info == nil || !info.IsRoot || info.Tenant != nil {
		t.Fatalf("unexpected info: %+v", info)
	}
}

func TestMiddleware_UnknownSlug(t *testing.T) {
	dir := workspace.NewDirectory(&fakeTenants{}, time.Minute)

	var info *workspace.Info
	h := workspace.Middleware(dir, "ovibase.app", zap.NewNop())(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		info = workspace.FromRequest(r)
	}))

	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest("GET", "http://ghost.ovibase.app/login", nil))

	if info == nil || info.Slug != "ghost" || info.Tenant != nil {
		t.Fatalf("unexpected info: %+v", info)
	}
}

func TestDirectory_PruneDropsExpired(t *testing.T) {
	store := &fakeTenants{tenants: []models.Tenant{grace()}}
	ctx := context.Background()

	fresh := workspace.NewDirectory(store, time.Minute)
	if _, err := fresh.BySlug(ctx, "grace"); err != nil {
		t.Fatal(err)
	}
	if n := fresh.Prune(); n != 0 {
		t.Errorf("fresh entries pruned: %d", n)
	}

	short := workspace.NewDirectory(store, time.Millisecond)
	if _, err := short.BySlug(ctx, "grace"); err != nil {
		t.Fatal(err)
	}
	time.Sleep(10 * time.Millisecond)
	if n := short.Prune(); n != 1 {
		t.Errorf("expected 1 pruned entry, got %d", n)
	}
	before := store.calls.Load()
	if _, err := short.BySlug(ctx, "grace"); err != nil {
		t.Fatal(err)
	}
	if store.calls.Load() != before+1 {
		t.Error("expected a reload after prune")
	}
}

type blockingTenants struct {
	t       models.Tenant
	entered chan struct{}
	release chan struct{}
	once    sync.Once
}

func (b *blockingTenants) GetByID(ctx context.Context, _ primitive.ObjectID) (models.Tenant, error) {
	return b.GetBySlug(ctx, b.t.Slug)
}

func (b *blockingTenants) GetBySlug(ctx context.Context, _ string) (models.Tenant, error) {
	b.once.Do(func() { close(b.entered) })
	<-b.release
	if err := ctx.Err(); err != nil {
		return models.Tenant{}, err
	}
	return b.t, nil
}

func TestDirectory_CancelledCallerDoesNotFailOthers(t *testing.T) {
	store := &blockingTenants{t: grace(), entered: make(chan struct{}), release: make(chan struct{})}
	dir := workspace.NewDirectory(store, time.Minute)

	first, cancelFirst := context.WithCancel(context.Background())
	firstErr := make(chan error, 1)
	go func() {
		_, err := dir.BySlug(first, "grace")
		firstErr <- err
	}()
	<-store.entered

	type result struct {
		t   *models.Tenant
		err error
	}
	second := make(chan result, 1)
	go func() {
		tn, err := dir.BySlug(context.Background(), "grace")
		second <- result{tn, err}
	}()

	cancelFirst()
	if err := <-firstErr; !errors.Is(err, context.Canceled) {
		t.Errorf("cancelled caller: err = %v, want context.Canceled", err)
	}
	close(store.release)

	got := <-second
	if got.err != nil || got.t == nil || got.t.Slug != "grace" {
		t.Fatalf("waiting caller: tenant = %v, err = %v", got.t, got.err)
	}
}
