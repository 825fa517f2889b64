package controllers

import (
	"net/http"
	"time"

	"github.com/angelmondragon/marketflow-backend/api/responses"
	"github.com/angelmondragon/marketflow-backend/api/validators"
	"github.com/angelmondragon/marketflow-backend/internal/listings"
	"github.com/angelmondragon/marketflow-backend/pkg/db/models"
	"github.com/angelmondragon/marketflow-backend/pkg/enums"
	"github.com/angelmondragon/marketflow-backend/pkg/logger"
	"github.com/angelmondragon/marketflow-backend/pkg/types"
)

type listingView struct {
	ID          int64                  `json:"id"`
	Title       string                 `json:"title"`
	Description string                 `json:"description"`
	Price       types.Money            `json:"price"`
	Category    enums.ListingCategory  `json:"category"`
	Condition   enums.ListingCondition `json:"condition"`
	Status      enums.ListingStatus    `json:"status"`
	Views       int                    `json:"views"`
	Images      []string               `json:"images"`
	CreatedAt   time.Time              `json:"createdAt"`
}

func newListingView(l models.Listing) listingView {
	return listingView{
		ID:          l.ID,
		Title:       l.Title,
		Description: l.Description,
		Price:       types.NewMoney(l.Price),
		Category:    l.Category,
		Condition:   l.Condition,
		Status:      l.Status,
		Views:       l.Views,
		Images:      l.Images,
		CreatedAt:   l.CreatedAt,
	}
}

func ListingList(svc listings.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sessionID, ok := sessionFor(w, r, svc != nil, "listing service", logg)
		if !ok {
			return
		}
		list, err := svc.List(r.Context(), sessionID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		views := make([]listingView, 0, len(list))
		for _, l := range list {
			views = append(views, newListingView(l))
		}
		responses.WriteSuccess(w, views)
	}
}

func ListingGet(svc listings.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sessionID, ok := sessionFor(w, r, svc != nil, "listing service", logg)
		if !ok {
			return
		}
		id, err := validators.ParseIDParam(r, "listingId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		listing, err := svc.Get(r.Context(), sessionID, id)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, newListingView(*listing))
	}
}

func ListingCreate(svc listings.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sessionID, ok := sessionFor(w, r, svc != nil, "listing service", logg)
		if !ok {
			return
		}
		var payload listings.CreateInput
		if err := validators.DecodeJSON(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		listing, err := svc.Create(r.Context(), sessionID, payload)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, newListingView(*listing))
	}
}

func ListingUpdate(svc listings.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sessionID, ok := sessionFor(w, r, svc != nil, "listing service", logg)
		if !ok {
			return
		}
		id, err := validators.ParseIDParam(r, "listingId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		var payload listings.UpdateInput
		if err := validators.DecodeJSON(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		listing, err := svc.Update(r.Context(), sessionID, id, payload)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, newListingView(*listing))
	}
}

func ListingDelete(svc listings.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sessionID, ok := sessionFor(w, r, svc != nil, "listing service", logg)
		if !ok {
			return
		}
		id, err := validators.ParseIDParam(r, "listingId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		if err := svc.Delete(r.Context(), sessionID, id); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}
