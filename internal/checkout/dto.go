package checkout

import (
	"github.com/angelmondragon/marketflow-backend/pkg/db/models"
	pkgcheckout "github.com/angelmondragon/marketflow-backend/pkg/checkout"
)

// SubmitInput is the checkout form. Either ShippingAddress or AddressID
// (a saved address book entry) supplies the destination.
type SubmitInput struct {
	ShippingAddress *pkgcheckout.AddressInput `json:"shippingAddress,omitempty"`
	AddressID       *int64                    `json:"addressId,omitempty"`
	PaymentMethod   pkgcheckout.PaymentInput  `json:"paymentMethod"`
}

// Result is the outcome of a submitted checkout.
type Result struct {
	Order *models.Order
	// CartCleared is false when the order was placed but emptying the cart
	// failed. The order stands; the client can clear the cart itself.
	CartCleared bool
	// Replayed is true when an earlier submission with the same idempotency
	// key produced Order.
	Replayed bool
}

// ReorderFailure reports one item that could not be added back to the cart.
type ReorderFailure struct {
	ProductID int64  `json:"productId"`
	Quantity  int    `json:"quantity"`
	Code      string `json:"code"`
	Message   string `json:"message"`
}

// ReorderResult summarizes a reorder.
type ReorderResult struct {
	Added  int              `json:"added"`
	Failed []ReorderFailure `json:"failed"`
}

type idempotencyRecord struct {
	RequestHash string `json:"request_hash"`
	OrderID     int64  `json:"order_id"`
}
