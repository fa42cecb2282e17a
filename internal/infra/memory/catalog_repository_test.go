package memory

import (
	"context"
	"errors"
	"testing"
	"time"

	"interview-session-service/internal/domain"
)

func TestCatalogRepositoryCaches(t *testing.T) {
	loader := &countingLoader{CatalogLoader: NewStaticCatalogLoader(domain.ReferenceCatalog())}
	repo := NewCatalogRepository(loader, time.Minute)

	catalog, err := repo.GetCatalog(context.Background(), domain.ReferenceCatalogID)
	if err != nil {
		t.Fatalf("get catalog: %v", err)
	}
	if len(catalog.Questions) != 6 {
		t.Fatalf("expected 6 questions, got %d", len(catalog.Questions))
	}
	if loader.calls != 1 {
		t.Fatalf("expected loader once, got %d", loader.calls)
	}

	if _, err := repo.GetCatalog(context.Background(), domain.ReferenceCatalogID); err != nil {
		t.Fatalf("get catalog 2: %v", err)
	}
	if loader.calls != 1 {
		t.Fatalf("expected cache hit, loader calls %d", loader.calls)
	}
}

func TestCatalogRepositoryReloadsAfterExpiry(t *testing.T) {
	loader := &countingLoader{CatalogLoader: NewStaticCatalogLoader(domain.ReferenceCatalog())}
	repo := NewCatalogRepository(loader, time.Minute)
	now := time.Date(2026, 10, 19, 9, 0, 0, 0, time.UTC)
	repo.clock = func() time.Time { return now }

	if _, err := repo.GetCatalog(context.Background(), domain.ReferenceCatalogID); err != nil {
		t.Fatalf("get catalog: %v", err)
	}
	now = now.Add(2 * time.Minute)
	if _, err := repo.GetCatalog(context.Background(), domain.ReferenceCatalogID); err != nil {
		t.Fatalf("get catalog after expiry: %v", err)
	}
	if loader.calls != 2 {
		t.Fatalf("expected reload after ttl, loader calls %d", loader.calls)
	}
}

func TestCatalogRepositoryRejectsInvalidCatalog(t *testing.T) {
	repo := NewCatalogRepository(NewStaticCatalogLoader(domain.Catalog{ID: "empty"}), time.Minute)

	_, err := repo.GetCatalog(context.Background(), "empty")
	if !errors.Is(err, domain.ErrInvalidCatalog) {
		t.Fatalf("expected invalid catalog, got %v", err)
	}
	_, err = repo.GetCatalog(context.Background(), "unknown")
	if !errors.Is(err, domain.ErrCatalogNotFound) {
		t.Fatalf("expected catalog not found, got %v", err)
	}
}

func TestFallbackCatalogLoader(t *testing.T) {
	custom := domain.Catalog{ID: "backend", Questions: []domain.QuestionDefinition{
		{Difficulty: domain.DifficultyEasy, AllottedSeconds: 30, Prompt: "What is a goroutine?"},
	}}
	primary := &countingLoader{CatalogLoader: NewStaticCatalogLoader(custom)}
	fallback := &countingLoader{CatalogLoader: NewStaticCatalogLoader(domain.ReferenceCatalog())}
	repo := NewCatalogRepository(NewFallbackCatalogLoader(primary, fallback), time.Minute)
	ctx := context.Background()

	got, err := repo.GetCatalog(ctx, "backend")
	if err != nil {
		t.Fatalf("get primary catalog: %v", err)
	}
	if len(got.Questions) != 1 || fallback.calls != 0 {
		t.Fatalf("expected primary catalog without fallback, got %d questions, %d fallback calls", len(got.Questions), fallback.calls)
	}

	got, err = repo.GetCatalog(ctx, domain.ReferenceCatalogID)
	if err != nil {
		t.Fatalf("get reference catalog from empty primary: %v", err)
	}
	if len(got.Questions) != 6 || primary.calls != 2 || fallback.calls != 1 {
		t.Fatalf("expected reference from fallback, got %d questions, calls %d/%d", len(got.Questions), primary.calls, fallback.calls)
	}

	_, err = repo.GetCatalog(ctx, "unknown")
	if !errors.Is(err, domain.ErrCatalogNotFound) {
		t.Fatalf("expected catalog not found, got %v", err)
	}
}

func TestFallbackCatalogLoaderKeepsPrimaryErrors(t *testing.T) {
	boom := errors.New("connection refused")
	primary := loaderFunc(func(context.Context, string) (domain.Catalog, error) {
		return domain.Catalog{}, boom
	})
	fallback := &countingLoader{CatalogLoader: NewStaticCatalogLoader(domain.ReferenceCatalog())}

	_, err := NewFallbackCatalogLoader(primary, fallback).LoadCatalog(context.Background(), domain.ReferenceCatalogID)
	if !errors.Is(err, boom) {
		t.Fatalf("expected primary error, got %v", err)
	}
	if fallback.calls != 0 {
		t.Fatalf("fallback must not hide a failing primary, calls %d", fallback.calls)
	}
}

type loaderFunc func(ctx context.Context, catalogID string) (domain.Catalog, error)

func (f loaderFunc) LoadCatalog(ctx context.Context, catalogID string) (domain.Catalog, error) {
	return f(ctx, catalogID)
}

type countingLoader struct {
	CatalogLoader
	calls int
}

func (l *countingLoader) LoadCatalog(ctx context.Context, catalogID string) (domain.Catalog, error) {
	l.calls++
	return l.CatalogLoader.LoadCatalog(ctx, catalogID)
}
