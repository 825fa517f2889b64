package enums

// CartOperation names a ledger mutation for observers and metrics.
type CartOperation string

const (
	CartOperationAdd          CartOperation = "add"
	CartOperationUpdate       CartOperation = "update_quantity"
	CartOperationRemove       CartOperation = "remove"
	CartOperationSaveForLater CartOperation = "save_for_later"
	CartOperationMoveToCart   CartOperation = "move_to_cart"
	CartOperationClear        CartOperation = "clear"
)

// String implements fmt.Stringer.
func (c CartOperation) String() string {
	return string(c)
}
