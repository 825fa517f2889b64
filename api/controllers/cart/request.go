package cart

const defaultAddQuantity = 1

// Quantity defaults to one when omitted.
type addItemRequest struct {
	ProductID int64 `json:"productId" validate:"required,gt=0"`
	Quantity  *int  `json:"quantity" validate:"omitempty,gte=1"`
}

func (r addItemRequest) quantity() int {
	if r.Quantity == nil {
		return defaultAddQuantity
	}
	return *r.Quantity
}

// A quantity of zero removes the line.
type updateQuantityRequest struct {
	Quantity *int `json:"quantity" validate:"required"`
}
