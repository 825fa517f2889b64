package orders

import (
	"context"
	"net/http"

	"github.com/angelmondragon/marketflow-backend/api/middleware"
	"github.com/angelmondragon/marketflow-backend/api/responses"
	"github.com/angelmondragon/marketflow-backend/api/validators"
	"github.com/angelmondragon/marketflow-backend/internal/checkout"
	internalorders "github.com/angelmondragon/marketflow-backend/internal/orders"
	pkgerrors "github.com/angelmondragon/marketflow-backend/pkg/errors"
	"github.com/angelmondragon/marketflow-backend/pkg/logger"
)

// Reorderer re-adds a past order's lines to the session cart.
type Reorderer interface {
	Reorder(ctx context.Context, sessionID string, orderID int64) (*checkout.ReorderResult, error)
}

// List returns the session's orders, newest first.
func List(svc internalorders.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sessionID, ok := begin(w, r, svc != nil, logg)
		if !ok {
			return
		}

		list, err := svc.List(r.Context(), sessionID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, internalorders.ToViews(list))
	}
}

// Statuses lists every order status in lifecycle order.
func Statuses(svc internalorders.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "order service unavailable"))
			return
		}
		responses.WriteSuccess(w, svc.Statuses())
	}
}

func Detail(svc internalorders.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sessionID, ok := begin(w, r, svc != nil, logg)
		if !ok {
			return
		}
		orderID, err := validators.ParseIDParam(r, "orderId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		order, err := svc.Get(r.Context(), sessionID, orderID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, internalorders.ToView(*order))
	}
}

func Tracking(svc internalorders.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sessionID, ok := begin(w, r, svc != nil, logg)
		if !ok {
			return
		}
		orderID, err := validators.ParseIDParam(r, "orderId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		info, err := svc.Track(r.Context(), sessionID, orderID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, info)
	}
}

// Reorder adds what it can of a past order to the cart and reports the rest.
func Reorder(svc Reorderer, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sessionID, ok := begin(w, r, svc != nil, logg)
		if !ok {
			return
		}
		orderID, err := validators.ParseIDParam(r, "orderId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		result, err := svc.Reorder(r.Context(), sessionID, orderID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, result)
	}
}

func begin(w http.ResponseWriter, r *http.Request, available bool, logg *logger.Logger) (string, bool) {
	if !available {
		responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "order service unavailable"))
		return "", false
	}
	sessionID, err := middleware.RequireSessionID(r)
	if err != nil {
		responses.WriteError(r.Context(), logg, w, err)
		return "", false
	}
	return sessionID, true
}
