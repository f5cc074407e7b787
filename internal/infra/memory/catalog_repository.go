package memory

import (
	"context"
	"math/rand"
	"sort"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"

	"triage-service/internal/catalog"
	"triage-service/internal/domain"
	"triage-service/internal/metrics"
)

// CatalogLoader fetches catalog documents from a backing store (embedded files, Postgres).
// Source names the store in load metrics.
type CatalogLoader interface {
	LoadCatalog(ctx context.Context, specialty string) (catalog.Document, error)
	ListCatalogs(ctx context.Context) ([]domain.Specialty, error)
	Source() string
}

// CatalogRepository caches compiled catalogs with TTL to avoid repeated loads.
type CatalogRepository struct {
	loader CatalogLoader
	ttl    time.Duration
	clock  func() time.Time
	sf     singleflight.Group
	rnd    *rand.Rand
	rndMu  sync.Mutex

	mu    sync.RWMutex
	cache map[string]cachedCatalog
}

type cachedCatalog struct {
	catalog   *domain.Catalog
	expiresAt time.Time
}

func NewCatalogRepository(loader CatalogLoader, ttl time.Duration) *CatalogRepository {
	return &CatalogRepository{
		loader: loader,
		ttl:    ttl,
		clock:  time.Now,
		rnd:    rand.New(rand.NewSource(time.Now().UnixNano())),
		cache:  make(map[string]cachedCatalog),
	}
}

func (r *CatalogRepository) GetCatalog(ctx context.Context, specialty string) (*domain.Catalog, error) {
	if cat, ok := r.cached(specialty); ok {
		return cat, nil
	}

	result, err, _ := r.sf.Do(specialty, func() (interface{}, error) {
		if cat, ok := r.cached(specialty); ok {
			return cat, nil
		}

		doc, err := r.loader.LoadCatalog(ctx, specialty)
		if err != nil {
			metrics.CatalogLoads.WithLabelValues(r.loader.Source(), "error").Inc()
			return nil, err
		}
		cat, err := catalog.Compile(doc)
		if err != nil {
			metrics.CatalogLoads.WithLabelValues(r.loader.Source(), "invalid").Inc()
			return nil, err
		}
		metrics.CatalogLoads.WithLabelValues(r.loader.Source(), "ok").Inc()

		r.mu.Lock()
		r.cache[specialty] = cachedCatalog{
			catalog:   cat,
			expiresAt: r.clock().Add(r.ttlWithJitter()),
		}
		r.mu.Unlock()
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

func (r *CatalogRepository) cached(specialty string) (*domain.Catalog, bool) {
	now := r.clock()
	r.mu.RLock()
	defer r.mu.RUnlock()
	if entry, ok := r.cache[specialty]; ok && entry.expiresAt.After(now) {
		return entry.catalog, true
	}
	return nil, false
}

func (r *CatalogRepository) ttlWithJitter() time.Duration {
	if r.ttl <= 0 {
		// zero TTL still caches for the life of the process
		return 100 * 365 * 24 * time.Hour
	}
	// add up to 10% jitter to spread expirations
	jitterMax := int64(r.ttl) / 10
	r.rndMu.Lock()
	defer r.rndMu.Unlock()
	return r.ttl + time.Duration(r.rnd.Int63n(jitterMax+1))
}

// StaticCatalogLoader is a loader backed by an in-memory map of documents
// (the embedded built-ins, or a directory loaded at startup).
type StaticCatalogLoader struct {
	docs map[string]catalog.Document
}

func NewStaticCatalogLoader(docs map[string]catalog.Document) *StaticCatalogLoader {
	return &StaticCatalogLoader{docs: docs}
}

func (l *StaticCatalogLoader) Source() string { return "static" }

func (l *StaticCatalogLoader) LoadCatalog(_ context.Context, specialty string) (catalog.Document, error) {
	if doc, ok := l.docs[specialty]; ok {
		return doc, nil
	}
	return catalog.Document{}, domain.ErrUnknownSpecialty
}

func (l *StaticCatalogLoader) ListCatalogs(_ context.Context) ([]domain.Specialty, error) {
	out := make([]domain.Specialty, 0, len(l.docs))
	for _, doc := range l.docs {
		out = append(out, domain.Specialty{ID: doc.ID, Name: doc.Name, Description: doc.Description})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}
