package services

import (
	"context"
	"encoding/json"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"delivery-pricing/internal/apperror"
	"delivery-pricing/internal/config"
	"delivery-pricing/internal/models"
	"delivery-pricing/internal/pricing"
)

type fakeVenueSource struct {
	static     *models.VenueStatic
	dynamic    *models.VenueDynamic
	staticErr  error
	dynamicErr error
	calls      int32
}

func (f *fakeVenueSource) Static(ctx context.Context, slug string) (*models.VenueStatic, error) {
	atomic.AddInt32(&f.calls, 1)
	return f.static, f.staticErr
}

func (f *fakeVenueSource) Dynamic(ctx context.Context, slug string) (*models.VenueDynamic, error) {
	atomic.AddInt32(&f.calls, 1)
	return f.dynamic, f.dynamicErr
}

func helsinkiSource() *fakeVenueSource {
	return &fakeVenueSource{
		static: &models.VenueStatic{Location: pricing.Coordinate{Latitude: 60.17012143, Longitude: 24.92813512}},
		dynamic: &models.VenueDynamic{Pricing: pricing.VenuePricing{
			BasePrice:               190,
			OrderMinimumNoSurcharge: 1000,
			DistanceRanges: []pricing.DistanceRange{
				{Min: 0, Max: 500},
				{Min: 500, Max: 1000, A: 100, B: 1},
				{Min: 1000, Max: 0},
			},
		}},
	}
}

func TestVenueService_GetMergesAndCaches(t *testing.T) {
	client, mr := newTestRedis(t)
	source := helsinkiSource()
	svc := NewVenueService(source, client, newTestLogger(), &config.VenueAPIConfig{CacheTTLSeconds: 30})

	venue, err := svc.Get(context.Background(), "helsinki")
	if err != nil {
		t.Fatalf("get failed: %v", err)
	}
	if venue.Slug != "helsinki" || venue.Location.Latitude != 60.17012143 || venue.Pricing.BasePrice != 190 {
		t.Fatalf("unexpected venue: %+v", venue)
	}
	if atomic.LoadInt32(&source.calls) != 2 {
		t.Fatalf("expected static and dynamic fetched, got %d calls", source.calls)
	}

	if !mr.Exists("venue:helsinki") {
		t.Fatalf("expected venue cached")
	}
	if ttl := mr.TTL("venue:helsinki"); ttl != 30*time.Second {
		t.Fatalf("unexpected ttl: %v", ttl)
	}

	cached, err := svc.Get(context.Background(), "helsinki")
	if err != nil {
		t.Fatalf("cached get failed: %v", err)
	}
	if atomic.LoadInt32(&source.calls) != 2 {
		t.Fatalf("expected cache hit without source calls")
	}
	if len(cached.Pricing.DistanceRanges) != 3 || cached.Pricing.DistanceRanges[1].A != 100 {
		t.Fatalf("ranges lost in cache: %+v", cached.Pricing.DistanceRanges)
	}
}

func TestVenueService_GetWithoutCache(t *testing.T) {
	source := helsinkiSource()
	svc := NewVenueService(source, nil, newTestLogger(), &config.VenueAPIConfig{})

	if _, err := svc.Get(context.Background(), "helsinki"); err != nil {
		t.Fatalf("get failed: %v", err)
	}
	if _, err := svc.Get(context.Background(), "helsinki"); err != nil {
		t.Fatalf("get failed: %v", err)
	}
	if atomic.LoadInt32(&source.calls) != 4 {
		t.Fatalf("expected every get to hit source, got %d", source.calls)
	}
	if svc.ttl != defaultVenueCacheTTL {
		t.Fatalf("expected default ttl, got %v", svc.ttl)
	}
}

func TestVenueService_SourceErrorNotCached(t *testing.T) {
	client, mr := newTestRedis(t)
	source := helsinkiSource()
	source.dynamicErr = apperror.NotFound("venue not found", nil)
	svc := NewVenueService(source, client, newTestLogger(), &config.VenueAPIConfig{})

	_, err := svc.Get(context.Background(), "missing")
	if !apperror.Is(err, apperror.KindNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
	if mr.Exists("venue:missing") {
		t.Fatalf("failed lookup must not be cached")
	}
}

func TestVenueService_BrokenCacheEntryFallsBackToSource(t *testing.T) {
	client, mr := newTestRedis(t)
	source := helsinkiSource()
	svc := NewVenueService(source, client, newTestLogger(), &config.VenueAPIConfig{})

	if err := mr.Set("venue:helsinki", "not json"); err != nil {
		t.Fatalf("seed failed: %v", err)
	}

	venue, err := svc.Get(context.Background(), "helsinki")
	if err != nil {
		t.Fatalf("get failed: %v", err)
	}
	if venue.Pricing.BasePrice != 190 || atomic.LoadInt32(&source.calls) != 2 {
		t.Fatalf("expected fallback to source")
	}
}

func TestVenueService_Invalidate(t *testing.T) {
	client, mr := newTestRedis(t)
	svc := NewVenueService(helsinkiSource(), client, newTestLogger(), &config.VenueAPIConfig{})
	ctx := context.Background()

	for _, slug := range []string{"a", "b"} {
		if _, err := svc.Get(ctx, slug); err != nil {
			t.Fatalf("get failed: %v", err)
		}
	}
	_ = mr.Set("ratelimit:1.2.3.4", "1")

	if err := svc.Invalidate(ctx, "a"); err != nil {
		t.Fatalf("invalidate failed: %v", err)
	}
	if mr.Exists("venue:a") || !mr.Exists("venue:b") {
		t.Fatalf("expected only venue:a removed")
	}

	if err := svc.Invalidate(ctx, ""); err != nil {
		t.Fatalf("invalidate all failed: %v", err)
	}
	if mr.Exists("venue:b") {
		t.Fatalf("expected all venues removed")
	}
	if !mr.Exists("ratelimit:1.2.3.4") {
		t.Fatalf("unrelated keys must survive")
	}
}

func TestVenueService_HandleVenuePricingUpdated(t *testing.T) {
	client, mr := newTestRedis(t)
	svc := NewVenueService(helsinkiSource(), client, newTestLogger(), &config.VenueAPIConfig{})
	ctx := context.Background()

	if _, err := svc.Get(ctx, "helsinki"); err != nil {
		t.Fatalf("get failed: %v", err)
	}

	event, err := models.NewEvent(models.EventTypeVenuePricingUpdated, models.VenuePricingUpdatedData{VenueSlug: "helsinki"})
	if err != nil {
		t.Fatalf("new event failed: %v", err)
	}
	if err := svc.HandleVenuePricingUpdated(ctx, &event); err != nil {
		t.Fatalf("handle failed: %v", err)
	}
	if mr.Exists("venue:helsinki") {
		t.Fatalf("expected cache entry removed")
	}

	broken := &models.Event{Type: models.EventTypeVenuePricingUpdated, Data: json.RawMessage(`"oops"`)}
	if err := svc.HandleVenuePricingUpdated(ctx, broken); err == nil {
		t.Fatalf("expected decode error")
	}
}

func TestVenueService_StaticErrorWins(t *testing.T) {
	source := helsinkiSource()
	source.staticErr = errors.New("boom")
	svc := NewVenueService(source, nil, newTestLogger(), &config.VenueAPIConfig{})

	if _, err := svc.Get(context.Background(), "v"); err == nil {
		t.Fatalf("expected error")
	}
}
