package enums

import "slices"

// ListingCategory groups seller listings.
type ListingCategory string

const (
	ListingCategoryElectronics ListingCategory = "electronics"
	ListingCategoryClothing    ListingCategory = "clothing"
	ListingCategoryHome        ListingCategory = "home"
	ListingCategorySports      ListingCategory = "sports"
	ListingCategoryBooks       ListingCategory = "books"
	ListingCategoryAutomotive  ListingCategory = "automotive"
	ListingCategoryOther       ListingCategory = "other"
)

var validListingCategories = []ListingCategory{
	ListingCategoryElectronics,
	ListingCategoryClothing,
	ListingCategoryHome,
	ListingCategorySports,
	ListingCategoryBooks,
	ListingCategoryAutomotive,
	ListingCategoryOther,
}

// IsValid reports whether the value is a known ListingCategory.
func (c ListingCategory) IsValid() bool {
	return slices.Contains(validListingCategories, c)
}

// ListingCondition describes the wear of a listed item.
type ListingCondition string

const (
	ListingConditionNew     ListingCondition = "new"
	ListingConditionLikeNew ListingCondition = "like-new"
	ListingConditionGood    ListingCondition = "good"
	ListingConditionFair    ListingCondition = "fair"
	ListingConditionPoor    ListingCondition = "poor"
)

var validListingConditions = []ListingCondition{
	ListingConditionNew,
	ListingConditionLikeNew,
	ListingConditionGood,
	ListingConditionFair,
	ListingConditionPoor,
}

// IsValid reports whether the value is a known ListingCondition.
func (c ListingCondition) IsValid() bool {
	return slices.Contains(validListingConditions, c)
}

// ListingStatus is the sale state of a listing.
type ListingStatus string

const (
	ListingStatusActive   ListingStatus = "active"
	ListingStatusSold     ListingStatus = "sold"
	ListingStatusInactive ListingStatus = "inactive"
)

var validListingStatuses = []ListingStatus{
	ListingStatusActive,
	ListingStatusSold,
	ListingStatusInactive,
}

// IsValid reports whether the value is a known ListingStatus.
func (s ListingStatus) IsValid() bool {
	return slices.Contains(validListingStatuses, s)
}
