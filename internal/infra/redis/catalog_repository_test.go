package redis

import (
	"context"
	"errors"
	"testing"
	"time"

	miniredis "github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"

	"triage-service/internal/catalog"
	"triage-service/internal/domain"
	"triage-service/internal/infra/memory"
)

func TestCatalogRepositoryCachesInRedis(t *testing.T) {
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("run miniredis: %v", err)
	}
	defer mr.Close()

	client := newClient(mr)

	loader := &countingLoader{
		CatalogLoader: memory.NewStaticCatalogLoader(map[string]catalog.Document{
			"adults": sampleDocument(),
		}),
	}
	repo := NewCatalogRepository(client, loader, time.Minute)

	cat, err := repo.GetCatalog(context.Background(), "adults")
	if err != nil {
		t.Fatalf("get catalog: %v", err)
	}
	if cat.Len() != 2 {
		t.Fatalf("expected 2 questions, got %d", cat.Len())
	}
	if loader.calls != 1 {
		t.Fatalf("expected loader called once, got %d", loader.calls)
	}
	if !mr.Exists("triage:catalog:adults") {
		t.Fatalf("expected redis key to be set")
	}
	if ttl := mr.TTL("triage:catalog:adults"); ttl < time.Minute || ttl > time.Minute+6*time.Second {
		t.Fatalf("expected ttl with jitter, got %v", ttl)
	}

	// Second call should hit cache, loader not incremented.
	if _, err := repo.GetCatalog(context.Background(), "adults"); err != nil {
		t.Fatalf("get catalog 2: %v", err)
	}
	if loader.calls != 1 {
		t.Fatalf("expected cache hit, loader calls=%d", loader.calls)
	}
}

func TestCatalogRepositoryReadsDocumentSharedByAnotherInstance(t *testing.T) {
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("run miniredis: %v", err)
	}
	defer mr.Close()

	docs := map[string]catalog.Document{"adults": sampleDocument()}
	first := NewCatalogRepository(newClient(mr), memory.NewStaticCatalogLoader(docs), time.Minute)
	if _, err := first.GetCatalog(context.Background(), "adults"); err != nil {
		t.Fatalf("warm cache: %v", err)
	}

	loader := &countingLoader{CatalogLoader: memory.NewStaticCatalogLoader(nil)}
	second := NewCatalogRepository(newClient(mr), loader, time.Minute)
	cat, err := second.GetCatalog(context.Background(), "adults")
	if err != nil {
		t.Fatalf("get from shared cache: %v", err)
	}
	if loader.calls != 0 {
		t.Fatalf("expected no loader call, got %d", loader.calls)
	}
	q, ok := cat.Question("a1")
	if !ok || !q.StopOnTrigger {
		t.Fatalf("expected compiled stop question, got %+v", q)
	}
}

func TestCatalogRepositoryInvalidate(t *testing.T) {
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("run miniredis: %v", err)
	}
	defer mr.Close()

	loader := &countingLoader{
		CatalogLoader: memory.NewStaticCatalogLoader(map[string]catalog.Document{"adults": sampleDocument()}),
	}
	repo := NewCatalogRepository(newClient(mr), loader, time.Minute)
	if _, err := repo.GetCatalog(context.Background(), "adults"); err != nil {
		t.Fatalf("get catalog: %v", err)
	}
	if err := repo.Invalidate(context.Background(), "adults"); err != nil {
		t.Fatalf("invalidate: %v", err)
	}
	if mr.Exists("triage:catalog:adults") {
		t.Fatalf("expected redis key to be removed")
	}
	if _, err := repo.GetCatalog(context.Background(), "adults"); err != nil {
		t.Fatalf("get catalog after invalidate: %v", err)
	}
	if loader.calls != 2 {
		t.Fatalf("expected reload, loader calls=%d", loader.calls)
	}
}

func TestCatalogRepositoryUnknownSpecialty(t *testing.T) {
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("run miniredis: %v", err)
	}
	defer mr.Close()

	repo := NewCatalogRepository(newClient(mr), memory.NewStaticCatalogLoader(nil), time.Minute)
	if _, err := repo.GetCatalog(context.Background(), "cardio"); !errors.Is(err, domain.ErrUnknownSpecialty) {
		t.Fatalf("expected ErrUnknownSpecialty, got %v", err)
	}
	if mr.Exists("triage:catalog:cardio") {
		t.Fatalf("expected nothing cached for unknown specialty")
	}
}

type countingLoader struct {
	memory.CatalogLoader
	calls int
}

func (l *countingLoader) LoadCatalog(ctx context.Context, specialty string) (catalog.Document, error) {
	l.calls++
	return l.CatalogLoader.LoadCatalog(ctx, specialty)
}

func sampleDocument() catalog.Document {
	return catalog.Document{
		ID:   "adults",
		Name: "Adults",
		Questions: []catalog.QuestionDocument{
			{
				ID:            "a1",
				Text:          "¿Tiene dolor torácico intenso?",
				Type:          "boolean",
				Level:         "A",
				Condition:     catalog.Single("Sí"),
				StopOnTrigger: true,
			},
			{
				ID:        "c1",
				Text:      "¿Cuántos días lleva con fiebre?",
				Type:      "number",
				Level:     "C",
				Condition: catalog.Single(">3"),
			},
		},
	}
}

func newClient(mr *miniredis.Miniredis) *redis.Client {
	return redis.NewClient(&redis.Options{
		Addr: mr.Addr(),
	})
}
