package controllers

import (
	"context"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/angelmondragon/marketflow-backend/api/responses"
	"github.com/angelmondragon/marketflow-backend/api/validators"
	"github.com/angelmondragon/marketflow-backend/internal/catalog"
	"github.com/angelmondragon/marketflow-backend/pkg/db/models"
	"github.com/angelmondragon/marketflow-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/marketflow-backend/pkg/errors"
	"github.com/angelmondragon/marketflow-backend/pkg/logger"
)

const maxSearchQueryLen = 200

// ProductCatalog is the read side of the catalog used by product routes.
type ProductCatalog interface {
	Get(ctx context.Context, id int64) (*models.Product, error)
	Search(ctx context.Context, filter catalog.SearchFilter) ([]models.Product, error)
	ListByCategory(ctx context.Context, category string) ([]models.Product, error)
	Featured(ctx context.Context) ([]models.Product, error)
	Deals(ctx context.Context) ([]models.Product, error)
	Recommended(ctx context.Context, productID int64) ([]models.Product, error)
}

// ProductSearch lists products matching q and the optional filters.
func ProductSearch(svc ProductCatalog, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "catalog unavailable"))
			return
		}

		filter, err := parseSearchFilter(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		products, err := svc.Search(r.Context(), filter)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, catalog.ToViews(products))
	}
}

func parseSearchFilter(r *http.Request) (catalog.SearchFilter, error) {
	query := r.URL.Query()
	filter := catalog.SearchFilter{
		Query:    validators.SanitizeString(query.Get("q"), maxSearchQueryLen),
		Category: validators.SanitizeString(query.Get("category"), maxSearchQueryLen),
	}

	var err error
	if filter.MinPrice, err = validators.ParseQueryDecimal(r, "minPrice"); err != nil {
		return filter, err
	}
	if filter.MaxPrice, err = validators.ParseQueryDecimal(r, "maxPrice"); err != nil {
		return filter, err
	}
	if filter.MinPrice != nil && filter.MaxPrice != nil && filter.MinPrice.GreaterThan(*filter.MaxPrice) {
		return filter, pkgerrors.New(pkgerrors.CodeValidation, "minPrice must not exceed maxPrice")
	}
	if filter.MinRating, err = validators.ParseQueryFloat(r, "minRating", 0, 5); err != nil {
		return filter, err
	}
	if filter.PrimeOnly, err = validators.ParseQueryBool(r, "primeOnly"); err != nil {
		return filter, err
	}
	sort, err := enums.ParseProductSort(strings.TrimSpace(query.Get("sortBy")))
	if err != nil {
		return filter, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid sortBy").WithDetails(map[string]any{"field": "sortBy"})
	}
	filter.Sort = sort
	return filter, nil
}

func ProductFeatured(svc ProductCatalog, logg *logger.Logger) http.HandlerFunc {
	return productList(svc, logg, func(r *http.Request) ([]models.Product, error) {
		return svc.Featured(r.Context())
	})
}

func ProductDeals(svc ProductCatalog, logg *logger.Logger) http.HandlerFunc {
	return productList(svc, logg, func(r *http.Request) ([]models.Product, error) {
		return svc.Deals(r.Context())
	})
}

func ProductRecommended(svc ProductCatalog, logg *logger.Logger) http.HandlerFunc {
	return productList(svc, logg, func(r *http.Request) ([]models.Product, error) {
		id, err := validators.ParseIDParam(r, "productId")
		if err != nil {
			return nil, err
		}
		return svc.Recommended(r.Context(), id)
	})
}

func CategoryProducts(svc ProductCatalog, logg *logger.Logger) http.HandlerFunc {
	return productList(svc, logg, func(r *http.Request) ([]models.Product, error) {
		category := strings.TrimSpace(chi.URLParam(r, "category"))
		if category == "" {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "category is required")
		}
		return svc.ListByCategory(r.Context(), category)
	})
}

func ProductDetail(svc ProductCatalog, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "catalog unavailable"))
			return
		}
		id, err := validators.ParseIDParam(r, "productId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		product, err := svc.Get(r.Context(), id)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, catalog.ToView(*product))
	}
}

func productList(svc ProductCatalog, logg *logger.Logger, fetch func(r *http.Request) ([]models.Product, error)) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "catalog unavailable"))
			return
		}
		products, err := fetch(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, catalog.ToViews(products))
	}
}
