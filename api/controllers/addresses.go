package controllers

import (
	"net/http"
	"time"

	"github.com/angelmondragon/marketflow-backend/api/middleware"
	"github.com/angelmondragon/marketflow-backend/api/responses"
	"github.com/angelmondragon/marketflow-backend/api/validators"
	"github.com/angelmondragon/marketflow-backend/internal/addresses"
	"github.com/angelmondragon/marketflow-backend/pkg/db/models"
	pkgerrors "github.com/angelmondragon/marketflow-backend/pkg/errors"
	"github.com/angelmondragon/marketflow-backend/pkg/logger"
	"github.com/angelmondragon/marketflow-backend/pkg/types"
)

type addressView struct {
	ID int64 `json:"id"`
	types.Address
	IsDefault bool      `json:"isDefault"`
	CreatedAt time.Time `json:"createdAt"`
}

func newAddressView(a models.Address) addressView {
	return addressView{ID: a.ID, Address: a.Address, IsDefault: a.IsDefault, CreatedAt: a.CreatedAt}
}

func AddressList(svc addresses.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sessionID, ok := sessionFor(w, r, svc != nil, "address service", logg)
		if !ok {
			return
		}
		list, err := svc.List(r.Context(), sessionID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		views := make([]addressView, 0, len(list))
		for _, a := range list {
			views = append(views, newAddressView(a))
		}
		responses.WriteSuccess(w, views)
	}
}

func AddressGet(svc addresses.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sessionID, ok := sessionFor(w, r, svc != nil, "address service", logg)
		if !ok {
			return
		}
		id, err := validators.ParseIDParam(r, "addressId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		address, err := svc.Get(r.Context(), sessionID, id)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, newAddressView(*address))
	}
}

// AddressDefault answers 404 when the session has no default address.
func AddressDefault(svc addresses.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sessionID, ok := sessionFor(w, r, svc != nil, "address service", logg)
		if !ok {
			return
		}
		address, err := svc.Default(r.Context(), sessionID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		if address == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeNotFound, "no default address"))
			return
		}
		responses.WriteSuccess(w, newAddressView(*address))
	}
}

func AddressCreate(svc addresses.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sessionID, ok := sessionFor(w, r, svc != nil, "address service", logg)
		if !ok {
			return
		}
		var payload addresses.Input
		if err := validators.DecodeJSON(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		address, err := svc.Create(r.Context(), sessionID, payload)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, newAddressView(*address))
	}
}

func AddressUpdate(svc addresses.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sessionID, ok := sessionFor(w, r, svc != nil, "address service", logg)
		if !ok {
			return
		}
		id, err := validators.ParseIDParam(r, "addressId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		var payload addresses.Input
		if err := validators.DecodeJSON(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		address, err := svc.Update(r.Context(), sessionID, id, payload)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, newAddressView(*address))
	}
}

func AddressSetDefault(svc addresses.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sessionID, ok := sessionFor(w, r, svc != nil, "address service", logg)
		if !ok {
			return
		}
		id, err := validators.ParseIDParam(r, "addressId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		address, err := svc.SetDefault(r.Context(), sessionID, id)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, newAddressView(*address))
	}
}

func AddressDelete(svc addresses.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sessionID, ok := sessionFor(w, r, svc != nil, "address service", logg)
		if !ok {
			return
		}
		id, err := validators.ParseIDParam(r, "addressId")
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

func sessionFor(w http.ResponseWriter, r *http.Request, available bool, name string, logg *logger.Logger) (string, bool) {
	if !available {
		responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, name+" unavailable"))
		return "", false
	}
	sessionID, err := middleware.RequireSessionID(r)
	if err != nil {
		responses.WriteError(r.Context(), logg, w, err)
		return "", false
	}
	return sessionID, true
}
