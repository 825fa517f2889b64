package cart

import (
	"context"
	"net/http"

	"github.com/angelmondragon/marketflow-backend/api/middleware"
	"github.com/angelmondragon/marketflow-backend/api/responses"
	"github.com/angelmondragon/marketflow-backend/api/validators"
	cartsvc "github.com/angelmondragon/marketflow-backend/internal/cart"
	"github.com/angelmondragon/marketflow-backend/pkg/db/models"
	pkgerrors "github.com/angelmondragon/marketflow-backend/pkg/errors"
	"github.com/angelmondragon/marketflow-backend/pkg/logger"
)

type lineMutation func(ctx context.Context, sessionID string, itemID int64) (*models.CartLineItem, error)

// CartFetch returns the active lines with their products and the priced summary.
func CartFetch(svc cartsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sessionID, ok := begin(w, r, svc, logg)
		if !ok {
			return
		}

		items, err := svc.ListActive(r.Context(), sessionID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		summary, err := svc.Summary(r.Context(), sessionID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, cartView{Items: newItemViews(items), Summary: newSummaryView(summary)})
	}
}

// CartSaved lists the lines parked for later.
func CartSaved(svc cartsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sessionID, ok := begin(w, r, svc, logg)
		if !ok {
			return
		}

		items, err := svc.ListSaved(r.Context(), sessionID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, newItemViews(items))
	}
}

func CartSummary(svc cartsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sessionID, ok := begin(w, r, svc, logg)
		if !ok {
			return
		}

		summary, err := svc.Summary(r.Context(), sessionID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, newSummaryView(summary))
	}
}

// CartAddItem adds quantity of a product, merging into an existing active line.
func CartAddItem(svc cartsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sessionID, ok := begin(w, r, svc, logg)
		if !ok {
			return
		}

		var payload addItemRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		line, err := svc.AddItem(r.Context(), sessionID, payload.ProductID, payload.quantity())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, newLineView(*line))
	}
}

// CartUpdateItem sets a line's quantity. Zero removes the line and answers 204.
func CartUpdateItem(svc cartsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sessionID, ok := begin(w, r, svc, logg)
		if !ok {
			return
		}
		itemID, err := validators.ParseIDParam(r, "itemId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload updateQuantityRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		line, err := svc.UpdateQuantity(r.Context(), sessionID, itemID, *payload.Quantity)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		if line == nil {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		responses.WriteSuccess(w, newLineView(*line))
	}
}

func CartRemoveItem(svc cartsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sessionID, ok := begin(w, r, svc, logg)
		if !ok {
			return
		}
		itemID, err := validators.ParseIDParam(r, "itemId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		if err := svc.RemoveItem(r.Context(), sessionID, itemID); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

func CartSaveForLater(svc cartsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return moveLine(svc, logg, func(ctx context.Context, sessionID string, itemID int64) (*models.CartLineItem, error) {
		return svc.SaveForLater(ctx, sessionID, itemID)
	})
}

func CartMoveToCart(svc cartsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return moveLine(svc, logg, func(ctx context.Context, sessionID string, itemID int64) (*models.CartLineItem, error) {
		return svc.MoveToCart(ctx, sessionID, itemID)
	})
}

// CartClear drops every active line; saved lines stay.
func CartClear(svc cartsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sessionID, ok := begin(w, r, svc, logg)
		if !ok {
			return
		}
		if err := svc.Clear(r.Context(), sessionID); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

func moveLine(svc cartsvc.Service, logg *logger.Logger, mutate lineMutation) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sessionID, ok := begin(w, r, svc, logg)
		if !ok {
			return
		}
		itemID, err := validators.ParseIDParam(r, "itemId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		line, err := mutate(r.Context(), sessionID, itemID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, newLineView(*line))
	}
}

func begin(w http.ResponseWriter, r *http.Request, svc cartsvc.Service, logg *logger.Logger) (string, bool) {
	if svc == nil {
		responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "cart service unavailable"))
		return "", false
	}
	sessionID, err := middleware.RequireSessionID(r)
	if err != nil {
		responses.WriteError(r.Context(), logg, w, err)
		return "", false
	}
	return sessionID, true
}
