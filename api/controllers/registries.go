package controllers

import (
	"net/http"
	"time"

	"github.com/angelmondragon/marketflow-backend/api/responses"
	"github.com/angelmondragon/marketflow-backend/api/validators"
	"github.com/angelmondragon/marketflow-backend/internal/registries"
	"github.com/angelmondragon/marketflow-backend/pkg/db/models"
	"github.com/angelmondragon/marketflow-backend/pkg/enums"
	"github.com/angelmondragon/marketflow-backend/pkg/logger"
)

type registryView struct {
	ID          int64                `json:"id"`
	Name        string               `json:"name"`
	Type        enums.RegistryType   `json:"type"`
	EventDate   string               `json:"eventDate"`
	Description string               `json:"description"`
	ItemCount   int                  `json:"items"`
	Status      enums.RegistryStatus `json:"status"`
	CreatedAt   time.Time            `json:"createdAt"`
}

func newRegistryView(r models.Registry) registryView {
	return registryView{
		ID:          r.ID,
		Name:        r.Name,
		Type:        r.Type,
		EventDate:   r.EventDate.Format("2006-01-02"),
		Description: r.Description,
		ItemCount:   r.ItemCount,
		Status:      r.Status,
		CreatedAt:   r.CreatedAt,
	}
}

func RegistryList(svc registries.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sessionID, ok := sessionFor(w, r, svc != nil, "registry service", logg)
		if !ok {
			return
		}
		list, err := svc.List(r.Context(), sessionID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		views := make([]registryView, 0, len(list))
		for _, reg := range list {
			views = append(views, newRegistryView(reg))
		}
		responses.WriteSuccess(w, views)
	}
}

func RegistryGet(svc registries.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sessionID, ok := sessionFor(w, r, svc != nil, "registry service", logg)
		if !ok {
			return
		}
		id, err := validators.ParseIDParam(r, "registryId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		reg, err := svc.Get(r.Context(), sessionID, id)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, newRegistryView(*reg))
	}
}

func RegistryCreate(svc registries.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sessionID, ok := sessionFor(w, r, svc != nil, "registry service", logg)
		if !ok {
			return
		}
		var payload registries.CreateInput
		if err := validators.DecodeJSON(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		reg, err := svc.Create(r.Context(), sessionID, payload)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, newRegistryView(*reg))
	}
}

func RegistryUpdate(svc registries.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sessionID, ok := sessionFor(w, r, svc != nil, "registry service", logg)
		if !ok {
			return
		}
		id, err := validators.ParseIDParam(r, "registryId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		var payload registries.UpdateInput
		if err := validators.DecodeJSON(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		reg, err := svc.Update(r.Context(), sessionID, id, payload)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, newRegistryView(*reg))
	}
}

func RegistryDelete(svc registries.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sessionID, ok := sessionFor(w, r, svc != nil, "registry service", logg)
		if !ok {
			return
		}
		id, err := validators.ParseIDParam(r, "registryId")
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
