package enums

import "fmt"

// ProductSort selects the ordering of catalog search results.
type ProductSort string

const (
	ProductSortRelevance ProductSort = "relevance"
	ProductSortPriceLow  ProductSort = "price-low"
	ProductSortPriceHigh ProductSort = "price-high"
	ProductSortRating    ProductSort = "rating"
	ProductSortReviews   ProductSort = "reviews"
)

var validProductSorts = []ProductSort{
	ProductSortRelevance,
	ProductSortPriceLow,
	ProductSortPriceHigh,
	ProductSortRating,
	ProductSortReviews,
}

// IsValid reports whether the value is a known ProductSort.
func (p ProductSort) IsValid() bool {
	for _, candidate := range validProductSorts {
		if candidate == p {
			return true
		}
	}
	return false
}

// ParseProductSort converts raw input into a ProductSort. Empty input means relevance.
func ParseProductSort(value string) (ProductSort, error) {
	if value == "" {
		return ProductSortRelevance, nil
	}
	for _, candidate := range validProductSorts {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid sort %q", value)
}
