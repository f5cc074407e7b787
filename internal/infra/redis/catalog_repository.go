package redis

import (
	"context"
	"encoding/json"
	"errors"
	"math/rand"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
	"golang.org/x/sync/singleflight"

	"triage-service/internal/catalog"
	"triage-service/internal/domain"
	"triage-service/internal/infra/memory"
	"triage-service/internal/metrics"
)

// CatalogRepository caches catalog documents in Redis and falls back to a loader on cache miss.
// Documents are stored as JSON: SET triage:catalog:{specialty} {document}
// Compiled catalogs are kept per process, keyed by the cached payload, so a
// document replaced in Redis is recompiled on the next read.
type CatalogRepository struct {
	client *redis.Client
	loader memory.CatalogLoader
	ttl    time.Duration
	sf     singleflight.Group
	rnd    *rand.Rand
	rndMu  sync.Mutex

	mu       sync.RWMutex
	compiled map[string]compiledEntry
}

type compiledEntry struct {
	payload string
	catalog *domain.Catalog
}

func NewCatalogRepository(client *redis.Client, loader memory.CatalogLoader, ttl time.Duration) *CatalogRepository {
	return &CatalogRepository{
		client:   client,
		loader:   loader,
		ttl:      ttl,
		rnd:      rand.New(rand.NewSource(time.Now().UnixNano())),
		compiled: make(map[string]compiledEntry),
	}
}

func (r *CatalogRepository) GetCatalog(ctx context.Context, specialty string) (*domain.Catalog, error) {
	key := r.key(specialty)

	if payload, err := r.client.Get(ctx, key).Result(); err == nil {
		return r.compile(specialty, payload)
	}

	result, err, _ := r.sf.Do(specialty, func() (interface{}, error) {
		// Re-check cache in case another goroutine filled it.
		if payload, err := r.client.Get(ctx, key).Result(); err == nil {
			return r.compile(specialty, payload)
		}

		doc, err := r.loader.LoadCatalog(ctx, specialty)
		if err != nil {
			metrics.CatalogLoads.WithLabelValues(r.loader.Source(), "error").Inc()
			return nil, err
		}
		data, err := json.Marshal(doc)
		if err != nil {
			return nil, err
		}
		cat, err := r.compile(specialty, string(data))
		if err != nil {
			metrics.CatalogLoads.WithLabelValues(r.loader.Source(), "invalid").Inc()
			return nil, err
		}
		metrics.CatalogLoads.WithLabelValues(r.loader.Source(), "ok").Inc()

		// best-effort fill; a failed write only costs another load
		_ = r.client.Set(ctx, key, data, r.ttlWithJitter()).Err()
		return cat, nil
	})
	if err != nil {
		return nil, err
	}
	return result.(*domain.Catalog), nil
}

func (r *CatalogRepository) ListSpecialties(ctx context.Context) ([]domain.Specialty, error) {
	return r.loader.ListCatalogs(ctx)
}

// Invalidate drops the cached document so the next read goes to the loader.
func (r *CatalogRepository) Invalidate(ctx context.Context, specialty string) error {
	r.mu.Lock()
	delete(r.compiled, specialty)
	r.mu.Unlock()
	return r.client.Del(ctx, r.key(specialty)).Err()
}

func (r *CatalogRepository) compile(specialty, payload string) (*domain.Catalog, error) {
	r.mu.RLock()
	entry, ok := r.compiled[specialty]
	r.mu.RUnlock()
	if ok && entry.payload == payload {
		return entry.catalog, nil
	}

	doc, err := catalog.ParseJSON([]byte(payload))
	if err != nil {
		return nil, err
	}
	cat, err := catalog.Compile(doc)
	if err != nil {
		return nil, err
	}

	r.mu.Lock()
	r.compiled[specialty] = compiledEntry{payload: payload, catalog: cat}
	r.mu.Unlock()
	return cat, nil
}

func (r *CatalogRepository) key(specialty string) string {
	return "triage:catalog:" + specialty
}

func (r *CatalogRepository) ttlWithJitter() time.Duration {
	if r.ttl <= 0 {
		return 0
	}
	jitterMax := int64(r.ttl) / 10
	r.rndMu.Lock()
	defer r.rndMu.Unlock()
	return r.ttl + time.Duration(r.rnd.Int63n(jitterMax+1))
}

func isMiss(err error) bool {
	return errors.Is(err, redis.Nil)
}
