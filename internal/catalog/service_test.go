package catalog

import (
	"context"
	"errors"
	"testing"
	"time"

	"gorm.io/gorm"

	"github.com/angelmondragon/marketflow-backend/pkg/db/models"
	pkgerrors "github.com/angelmondragon/marketflow-backend/pkg/errors"
)

type stubRepo struct {
	products map[int64]models.Product
	err      error
	block    bool
	calls    int
}

func (s *stubRepo) wait(ctx context.Context) error {
	s.calls++
	if s.block {
		<-ctx.Done()
		return ctx.Err()
	}
	return s.err
}

func (s *stubRepo) FindByID(ctx context.Context, id int64) (*models.Product, error) {
	if err := s.wait(ctx); err != nil {
		return nil, err
	}
	p, ok := s.products[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return &p, nil
}

func (s *stubRepo) FindByIDs(ctx context.Context, ids []int64) ([]models.Product, error) {
	if err := s.wait(ctx); err != nil {
		return nil, err
	}
	var out []models.Product
	for _, id := range ids {
		if p, ok := s.products[id]; ok {
			out = append(out, p)
		}
	}
	return out, nil
}

func (s *stubRepo) Search(ctx context.Context, _ SearchFilter) ([]models.Product, error) {
	return nil, s.wait(ctx)
}

func (s *stubRepo) ListFeatured(ctx context.Context, _ float64, _ int) ([]models.Product, error) {
	return nil, s.wait(ctx)
}

func (s *stubRepo) ListDeals(ctx context.Context, _ int) ([]models.Product, error) {
	return nil, s.wait(ctx)
}

func (s *stubRepo) ListByCategoryExcluding(ctx context.Context, category string, excludeID int64, _ int) ([]models.Product, error) {
	if err := s.wait(ctx); err != nil {
		return nil, err
	}
	var out []models.Product
	for id, p := range s.products {
		if id != excludeID && p.Category == category {
			out = append(out, p)
		}
	}
	return out, nil
}

func newStubService(t *testing.T, repo *stubRepo, timeout time.Duration) *Service {
	t.Helper()
	svc, err := NewService(repo, timeout, nil)
	if err != nil {
		t.Fatalf("new service: %v", err)
	}
	return svc
}

func TestGet(t *testing.T) {
	repo := &stubRepo{products: map[int64]models.Product{1: {ID: 1, Title: "Kettle", Price: dec("10.00")}}}
	svc := newStubService(t, repo, time.Second)

	p, err := svc.Get(context.Background(), 1)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if p.Title != "Kettle" {
		t.Fatalf("unexpected product %+v", p)
	}

	if _, err := svc.Get(context.Background(), 2); !pkgerrors.IsCode(err, pkgerrors.CodeNotFound) {
		t.Fatalf("expected NOT_FOUND, got %v", err)
	}
	if _, err := svc.Get(context.Background(), 0); !pkgerrors.IsCode(err, pkgerrors.CodeNotFound) {
		t.Fatalf("expected NOT_FOUND for non-positive id, got %v", err)
	}
}

func TestGetTimeoutIsNotFound(t *testing.T) {
	svc := newStubService(t, &stubRepo{block: true}, 10*time.Millisecond)

	_, err := svc.Get(context.Background(), 1)
	if !pkgerrors.IsCode(err, pkgerrors.CodeNotFound) {
		t.Fatalf("expected timeout to be NOT_FOUND, got %v", err)
	}
}

func TestGetCallerCancellationIsNotNotFound(t *testing.T) {
	svc := newStubService(t, &stubRepo{block: true}, time.Second)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := svc.Get(ctx, 1)
	if pkgerrors.IsCode(err, pkgerrors.CodeNotFound) {
		t.Fatalf("caller cancellation must not look like a missing product")
	}
	if !pkgerrors.IsCode(err, pkgerrors.CodeDependency) {
		t.Fatalf("expected DEPENDENCY_ERROR, got %v", err)
	}
}

func TestGetDependencyFailure(t *testing.T) {
	svc := newStubService(t, &stubRepo{err: errors.New("connection refused")}, time.Second)

	_, err := svc.Get(context.Background(), 1)
	if !pkgerrors.IsCode(err, pkgerrors.CodeDependency) {
		t.Fatalf("expected DEPENDENCY_ERROR, got %v", err)
	}
}

func TestResolve(t *testing.T) {
	repo := &stubRepo{products: map[int64]models.Product{
		1: {ID: 1, Title: "Kettle"},
		3: {ID: 3, Title: "Pan"},
	}}
	svc := newStubService(t, repo, time.Second)

	got, err := svc.Resolve(context.Background(), []int64{1, 2, 3, 1})
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if len(got) != 2 || got[1].Title != "Kettle" || got[3].Title != "Pan" {
		t.Fatalf("unexpected resolution %+v", got)
	}
	if _, ok := got[2]; ok {
		t.Fatal("missing product must be absent")
	}
	if repo.calls != 1 {
		t.Fatalf("expected one batch call, got %d", repo.calls)
	}

	empty, err := svc.Resolve(context.Background(), nil)
	if err != nil || len(empty) != 0 {
		t.Fatalf("expected empty resolution, got %v %v", empty, err)
	}
}

func TestResolveTimeoutIsDependencyError(t *testing.T) {
	svc := newStubService(t, &stubRepo{block: true}, 10*time.Millisecond)

	got, err := svc.Resolve(context.Background(), []int64{1})
	if !pkgerrors.IsCode(err, pkgerrors.CodeDependency) {
		t.Fatalf("expected DEPENDENCY_ERROR, got %v", err)
	}
	if got != nil {
		t.Fatalf("expected no resolution, got %v", got)
	}
}

func TestResolveDependencyFailure(t *testing.T) {
	svc := newStubService(t, &stubRepo{err: errors.New("db down")}, time.Second)

	if _, err := svc.Resolve(context.Background(), []int64{1}); !pkgerrors.IsCode(err, pkgerrors.CodeDependency) {
		t.Fatalf("expected DEPENDENCY_ERROR, got %v", err)
	}
}

func TestRecommended(t *testing.T) {
	repo := &stubRepo{products: map[int64]models.Product{
		1: {ID: 1, Category: "Kitchen"},
		2: {ID: 2, Category: "Kitchen"},
		3: {ID: 3, Category: "Books"},
	}}
	svc := newStubService(t, repo, time.Second)

	got, err := svc.Recommended(context.Background(), 1)
	if err != nil {
		t.Fatalf("recommended: %v", err)
	}
	if len(got) != 1 || got[0].ID != 2 {
		t.Fatalf("unexpected recommendations %+v", got)
	}

	unknown, err := svc.Recommended(context.Background(), 42)
	if err != nil {
		t.Fatalf("unknown product should not error: %v", err)
	}
	if unknown == nil || len(unknown) != 0 {
		t.Fatalf("expected empty non-nil list, got %#v", unknown)
	}
}

func TestListingsWrapFailures(t *testing.T) {
	svc := newStubService(t, &stubRepo{err: errors.New("boom")}, time.Second)
	ctx := context.Background()

	if _, err := svc.Featured(ctx); !pkgerrors.IsCode(err, pkgerrors.CodeDependency) {
		t.Fatalf("featured: expected DEPENDENCY_ERROR, got %v", err)
	}
	if _, err := svc.Deals(ctx); !pkgerrors.IsCode(err, pkgerrors.CodeDependency) {
		t.Fatalf("deals: expected DEPENDENCY_ERROR, got %v", err)
	}
	if _, err := svc.ListByCategory(ctx, "Books"); !pkgerrors.IsCode(err, pkgerrors.CodeDependency) {
		t.Fatalf("category: expected DEPENDENCY_ERROR, got %v", err)
	}
}

func TestListingsReturnEmptySlices(t *testing.T) {
	svc := newStubService(t, &stubRepo{}, time.Second)

	got, err := svc.List(context.Background())
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if got == nil {
		t.Fatal("expected non-nil empty slice")
	}
}

func TestNewServiceRequiresRepo(t *testing.T) {
	if _, err := NewService(nil, time.Second, nil); err == nil {
		t.Fatal("expected error")
	}
}
