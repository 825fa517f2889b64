package controllers

import (
	"net/http"
	"time"

	"github.com/angelmondragon/marketflow-backend/api/responses"
	"github.com/angelmondragon/marketflow-backend/api/validators"
	"github.com/angelmondragon/marketflow-backend/internal/tickets"
	"github.com/angelmondragon/marketflow-backend/pkg/db/models"
	"github.com/angelmondragon/marketflow-backend/pkg/enums"
	"github.com/angelmondragon/marketflow-backend/pkg/logger"
)

type ticketView struct {
	ID          int64                `json:"id"`
	Subject     string               `json:"subject"`
	Category    enums.TicketCategory `json:"category"`
	Priority    enums.TicketPriority `json:"priority"`
	Status      enums.TicketStatus   `json:"status"`
	Description string               `json:"description"`
	CreatedAt   time.Time            `json:"createdAt"`
	UpdatedAt   time.Time            `json:"lastUpdate"`
}

func newTicketView(t models.SupportTicket) ticketView {
	return ticketView{
		ID:          t.ID,
		Subject:     t.Subject,
		Category:    t.Category,
		Priority:    t.Priority,
		Status:      t.Status,
		Description: t.Description,
		CreatedAt:   t.CreatedAt,
		UpdatedAt:   t.UpdatedAt,
	}
}

func TicketList(svc tickets.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sessionID, ok := sessionFor(w, r, svc != nil, "support ticket service", logg)
		if !ok {
			return
		}
		list, err := svc.List(r.Context(), sessionID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		views := make([]ticketView, 0, len(list))
		for _, t := range list {
			views = append(views, newTicketView(t))
		}
		responses.WriteSuccess(w, views)
	}
}

func TicketGet(svc tickets.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sessionID, ok := sessionFor(w, r, svc != nil, "support ticket service", logg)
		if !ok {
			return
		}
		id, err := validators.ParseIDParam(r, "ticketId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		ticket, err := svc.Get(r.Context(), sessionID, id)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, newTicketView(*ticket))
	}
}

func TicketCreate(svc tickets.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sessionID, ok := sessionFor(w, r, svc != nil, "support ticket service", logg)
		if !ok {
			return
		}
		var payload tickets.CreateInput
		if err := validators.DecodeJSON(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		ticket, err := svc.Create(r.Context(), sessionID, payload)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, newTicketView(*ticket))
	}
}

func TicketUpdate(svc tickets.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sessionID, ok := sessionFor(w, r, svc != nil, "support ticket service", logg)
		if !ok {
			return
		}
		id, err := validators.ParseIDParam(r, "ticketId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		var payload tickets.UpdateInput
		if err := validators.DecodeJSON(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		ticket, err := svc.Update(r.Context(), sessionID, id, payload)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, newTicketView(*ticket))
	}
}

func TicketDelete(svc tickets.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sessionID, ok := sessionFor(w, r, svc != nil, "support ticket service", logg)
		if !ok {
			return
		}
		id, err := validators.ParseIDParam(r, "ticketId")
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
