package catalog

import (
	"context"
	"strings"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/angelmondragon/marketflow-backend/pkg/db/models"
	"github.com/angelmondragon/marketflow-backend/pkg/enums"
)

// SearchFilter narrows a catalog search. Zero values disable a filter.
type SearchFilter struct {
	Query     string
	Category  string
	MinPrice  *decimal.Decimal
	MaxPrice  *decimal.Decimal
	MinRating *float64
	PrimeOnly bool
	Sort      enums.ProductSort
}

// Repository reads products from the catalog tables.
type Repository struct {
	db *gorm.DB
}

// NewRepository binds the repository to the provided DB handle.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// FindByID returns gorm.ErrRecordNotFound when the product does not exist.
func (r *Repository) FindByID(ctx context.Context, id int64) (*models.Product, error) {
	var product models.Product
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&product).Error; err != nil {
		return nil, err
	}
	return &product, nil
}

// FindByIDs returns the subset of ids that exist.
func (r *Repository) FindByIDs(ctx context.Context, ids []int64) ([]models.Product, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	var products []models.Product
	err := r.db.WithContext(ctx).Where("id IN ?", ids).Find(&products).Error
	return products, err
}

// Search applies filter in catalog order unless a sort is requested.
func (r *Repository) Search(ctx context.Context, filter SearchFilter) ([]models.Product, error) {
	query := r.db.WithContext(ctx).Model(&models.Product{})

	if term := strings.ToLower(strings.TrimSpace(filter.Query)); term != "" {
		like := "%" + escapeLike(term) + "%"
		query = query.Where(
			"(LOWER(title) LIKE ? ESCAPE '\\' OR LOWER(description) LIKE ? ESCAPE '\\' OR LOWER(category) LIKE ? ESCAPE '\\' OR LOWER(brand) LIKE ? ESCAPE '\\')",
			like, like, like, like,
		)
	}
	if category := strings.ToLower(strings.TrimSpace(filter.Category)); category != "" {
		query = query.Where("LOWER(category) = ?", category)
	}
	if filter.MinPrice != nil {
		query = query.Where("price >= ?", *filter.MinPrice)
	}
	if filter.MaxPrice != nil {
		query = query.Where("price <= ?", *filter.MaxPrice)
	}
	if filter.MinRating != nil {
		query = query.Where("rating >= ?", *filter.MinRating)
	}
	if filter.PrimeOnly {
		query = query.Where("is_prime = ?", true)
	}

	switch filter.Sort {
	case enums.ProductSortPriceLow:
		query = query.Order("price ASC")
	case enums.ProductSortPriceHigh:
		query = query.Order("price DESC")
	case enums.ProductSortRating:
		query = query.Order("rating DESC")
	case enums.ProductSortReviews:
		query = query.Order("review_count DESC")
	}
	query = query.Order("id ASC")

	var products []models.Product
	err := query.Find(&products).Error
	return products, err
}

// ListFeatured returns highly rated products in catalog order.
func (r *Repository) ListFeatured(ctx context.Context, minRating float64, limit int) ([]models.Product, error) {
	var products []models.Product
	err := r.db.WithContext(ctx).
		Where("rating >= ?", minRating).
		Order("id ASC").
		Limit(limit).
		Find(&products).Error
	return products, err
}

// ListDeals returns products priced below their original price.
func (r *Repository) ListDeals(ctx context.Context, limit int) ([]models.Product, error) {
	var products []models.Product
	err := r.db.WithContext(ctx).
		Where("original_price > price").
		Order("id ASC").
		Limit(limit).
		Find(&products).Error
	return products, err
}

// ListByCategoryExcluding returns products sharing category, minus excludeID.
func (r *Repository) ListByCategoryExcluding(ctx context.Context, category string, excludeID int64, limit int) ([]models.Product, error) {
	var products []models.Product
	err := r.db.WithContext(ctx).
		Where("category = ? AND id <> ?", category, excludeID).
		Order("id ASC").
		Limit(limit).
		Find(&products).Error
	return products, err
}

func escapeLike(term string) string {
	replacer := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return replacer.Replace(term)
}
