package controllers

import (
	"net/http"
	"strings"

	"github.com/angelmondragon/marketflow-backend/api/middleware"
	"github.com/angelmondragon/marketflow-backend/api/responses"
	"github.com/angelmondragon/marketflow-backend/api/validators"
	"github.com/angelmondragon/marketflow-backend/internal/checkout"
	"github.com/angelmondragon/marketflow-backend/internal/orders"
	pkgerrors "github.com/angelmondragon/marketflow-backend/pkg/errors"
	"github.com/angelmondragon/marketflow-backend/pkg/logger"
)

type checkoutResponse struct {
	Order       orders.OrderView `json:"order"`
	CartCleared bool             `json:"cartCleared"`
	Replayed    bool             `json:"replayed"`
}

// CheckoutSubmit places an order from the session's cart. A repeated
// Idempotency-Key replays the original order with 200 instead of 201.
func CheckoutSubmit(svc checkout.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "checkout service unavailable"))
			return
		}
		sessionID, err := middleware.RequireSessionID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload checkout.SubmitInput
		if err := validators.DecodeJSON(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		key := strings.TrimSpace(r.Header.Get(middleware.IdempotencyKeyHeader))

		result, err := svc.Submit(r.Context(), sessionID, key, payload)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		status := http.StatusCreated
		if result.Replayed {
			status = http.StatusOK
		}
		responses.WriteSuccessStatus(w, status, checkoutResponse{
			Order:       orders.ToView(*result.Order),
			CartCleared: result.CartCleared,
			Replayed:    result.Replayed,
		})
	}
}
