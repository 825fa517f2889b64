package catalog

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/angelmondragon/marketflow-backend/pkg/db/models"
	pkgerrors "github.com/angelmondragon/marketflow-backend/pkg/errors"
	"github.com/angelmondragon/marketflow-backend/pkg/logger"
)

const (
	defaultLookupTimeout = 2 * time.Second

	featuredMinRating = 4.5
	featuredLimit     = 6
	dealsLimit        = 8
	recommendedLimit  = 4
)

type productRepository interface {
	FindByID(ctx context.Context, id int64) (*models.Product, error)
	FindByIDs(ctx context.Context, ids []int64) ([]models.Product, error)
	Search(ctx context.Context, filter SearchFilter) ([]models.Product, error)
	ListFeatured(ctx context.Context, minRating float64, limit int) ([]models.Product, error)
	ListDeals(ctx context.Context, limit int) ([]models.Product, error)
	ListByCategoryExcluding(ctx context.Context, category string, excludeID int64, limit int) ([]models.Product, error)
}

// Service is the read-only product catalog. Every lookup is bounded by the
// configured timeout.
type Service struct {
	repo    productRepository
	timeout time.Duration
	logg    *logger.Logger
}

// NewService builds a catalog service.
func NewService(repo productRepository, timeout time.Duration, logg *logger.Logger) (*Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("product repository required")
	}
	if timeout <= 0 {
		timeout = defaultLookupTimeout
	}
	return &Service{repo: repo, timeout: timeout, logg: logg}, nil
}

// Get resolves a single product. Missing products and lookups that exceed the
// timeout are both reported as NOT_FOUND; any other failure is a dependency error.
func (s *Service) Get(ctx context.Context, id int64) (*models.Product, error) {
	if id <= 0 {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "product not found")
	}
	lookupCtx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	product, err := s.repo.FindByID(lookupCtx, id)
	if err != nil {
		return nil, s.classify(ctx, lookupCtx, err, "product not found", "load product")
	}
	return product, nil
}

// Resolve looks up ids in one batch. Products that do not exist are simply
// absent from the result. Failures, including the lookup timeout, are
// DEPENDENCY_ERROR so callers can tell a slow catalog from a missing product.
func (s *Service) Resolve(ctx context.Context, ids []int64) (map[int64]*models.Product, error) {
	resolved := make(map[int64]*models.Product, len(ids))
	unique := dedupeIDs(ids)
	if len(unique) == 0 {
		return resolved, nil
	}

	lookupCtx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	products, err := s.repo.FindByIDs(lookupCtx, unique)
	if err != nil {
		if timedOut(ctx, lookupCtx, err) {
			if s.logg != nil {
				s.logg.Warn(s.logg.WithField(ctx, "product_ids", unique), "catalog batch lookup timed out")
			}
			return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "catalog lookup timed out")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "resolve products")
	}
	for i := range products {
		product := products[i]
		resolved[product.ID] = &product
	}
	return resolved, nil
}

// Search filters the catalog.
func (s *Service) Search(ctx context.Context, filter SearchFilter) ([]models.Product, error) {
	return s.list(ctx, "search products", func(ctx context.Context) ([]models.Product, error) {
		return s.repo.Search(ctx, filter)
	})
}

// List returns the whole catalog in catalog order.
func (s *Service) List(ctx context.Context) ([]models.Product, error) {
	return s.Search(ctx, SearchFilter{})
}

// ListByCategory matches category case-insensitively.
func (s *Service) ListByCategory(ctx context.Context, category string) ([]models.Product, error) {
	return s.Search(ctx, SearchFilter{Category: category})
}

// Featured returns up to six products rated 4.5 or higher.
func (s *Service) Featured(ctx context.Context) ([]models.Product, error) {
	return s.list(ctx, "list featured products", func(ctx context.Context) ([]models.Product, error) {
		return s.repo.ListFeatured(ctx, featuredMinRating, featuredLimit)
	})
}

// Deals returns up to eight discounted products.
func (s *Service) Deals(ctx context.Context) ([]models.Product, error) {
	return s.list(ctx, "list deals", func(ctx context.Context) ([]models.Product, error) {
		return s.repo.ListDeals(ctx, dealsLimit)
	})
}

// Recommended returns up to four other products from the same category. An
// unknown product yields an empty list.
func (s *Service) Recommended(ctx context.Context, productID int64) ([]models.Product, error) {
	product, err := s.Get(ctx, productID)
	if err != nil {
		if pkgerrors.IsCode(err, pkgerrors.CodeNotFound) {
			return []models.Product{}, nil
		}
		return nil, err
	}
	return s.list(ctx, "list recommended products", func(ctx context.Context) ([]models.Product, error) {
		return s.repo.ListByCategoryExcluding(ctx, product.Category, product.ID, recommendedLimit)
	})
}

func (s *Service) list(ctx context.Context, op string, fn func(context.Context) ([]models.Product, error)) ([]models.Product, error) {
	lookupCtx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	products, err := fn(lookupCtx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, op)
	}
	if products == nil {
		products = []models.Product{}
	}
	return products, nil
}

func (s *Service) classify(parent, lookupCtx context.Context, err error, notFoundMsg, op string) error {
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		return pkgerrors.New(pkgerrors.CodeNotFound, notFoundMsg)
	case timedOut(parent, lookupCtx, err):
		return pkgerrors.Wrap(pkgerrors.CodeNotFound, err, notFoundMsg)
	default:
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, op)
	}
}

// timedOut reports whether err came from the lookup deadline rather than the
// caller going away.
func timedOut(parent, lookupCtx context.Context, err error) bool {
	if parent.Err() != nil {
		return false
	}
	return errors.Is(err, context.DeadlineExceeded) || errors.Is(lookupCtx.Err(), context.DeadlineExceeded)
}

func dedupeIDs(ids []int64) []int64 {
	seen := make(map[int64]struct{}, len(ids))
	out := make([]int64, 0, len(ids))
	for _, id := range ids {
		if id <= 0 {
			continue
		}
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}
