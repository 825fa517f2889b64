package controllers

import (
	"net/http"
	"time"

	"github.com/angelmondragon/marketflow-backend/api/responses"
	"github.com/angelmondragon/marketflow-backend/api/validators"
	"github.com/angelmondragon/marketflow-backend/internal/giftcards"
	"github.com/angelmondragon/marketflow-backend/pkg/db/models"
	"github.com/angelmondragon/marketflow-backend/pkg/enums"
	"github.com/angelmondragon/marketflow-backend/pkg/logger"
	"github.com/angelmondragon/marketflow-backend/pkg/types"
)

type giftCardView struct {
	ID             int64                `json:"id"`
	Code           string               `json:"code"`
	Amount         types.Money          `json:"amount"`
	Balance        types.Money          `json:"balance"`
	RecipientName  string               `json:"recipientName"`
	RecipientEmail string               `json:"recipientEmail"`
	Message        string               `json:"message"`
	Design         string               `json:"design"`
	Status         enums.GiftCardStatus `json:"status"`
	PurchaseDate   time.Time            `json:"purchaseDate"`
	RedeemedAt     *time.Time           `json:"redeemedAt"`
}

type redeemRequest struct {
	Code string `json:"code" validate:"required"`
}

type redemptionView struct {
	Amount types.Money `json:"amount"`
}

func newGiftCardView(c models.GiftCard) giftCardView {
	return giftCardView{
		ID:             c.ID,
		Code:           c.Code,
		Amount:         types.NewMoney(c.Amount),
		Balance:        types.NewMoney(c.Balance),
		RecipientName:  c.RecipientName,
		RecipientEmail: c.RecipientEmail,
		Message:        c.Message,
		Design:         c.Design,
		Status:         c.Status,
		PurchaseDate:   c.PurchaseDate,
		RedeemedAt:     c.RedeemedAt,
	}
}

func GiftCardList(svc giftcards.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sessionID, ok := sessionFor(w, r, svc != nil, "gift card service", logg)
		if !ok {
			return
		}
		cards, err := svc.List(r.Context(), sessionID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		views := make([]giftCardView, 0, len(cards))
		for _, c := range cards {
			views = append(views, newGiftCardView(c))
		}
		responses.WriteSuccess(w, views)
	}
}

func GiftCardGet(svc giftcards.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sessionID, ok := sessionFor(w, r, svc != nil, "gift card service", logg)
		if !ok {
			return
		}
		id, err := validators.ParseIDParam(r, "giftCardId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		card, err := svc.Get(r.Context(), sessionID, id)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, newGiftCardView(*card))
	}
}

// GiftCardCreate purchases a card; the code is only ever returned to the buyer.
func GiftCardCreate(svc giftcards.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sessionID, ok := sessionFor(w, r, svc != nil, "gift card service", logg)
		if !ok {
			return
		}
		var payload giftcards.CreateInput
		if err := validators.DecodeJSON(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		card, err := svc.Create(r.Context(), sessionID, payload)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, newGiftCardView(*card))
	}
}

func GiftCardUpdate(svc giftcards.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sessionID, ok := sessionFor(w, r, svc != nil, "gift card service", logg)
		if !ok {
			return
		}
		id, err := validators.ParseIDParam(r, "giftCardId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		var payload giftcards.UpdateInput
		if err := validators.DecodeJSON(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		card, err := svc.Update(r.Context(), sessionID, id, payload)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, newGiftCardView(*card))
	}
}

func GiftCardDelete(svc giftcards.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sessionID, ok := sessionFor(w, r, svc != nil, "gift card service", logg)
		if !ok {
			return
		}
		id, err := validators.ParseIDParam(r, "giftCardId")
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

func GiftCardRedeem(svc giftcards.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sessionID, ok := sessionFor(w, r, svc != nil, "gift card service", logg)
		if !ok {
			return
		}
		var payload redeemRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		redemption, err := svc.Redeem(r.Context(), sessionID, payload.Code)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, redemptionView{Amount: types.NewMoney(redemption.Amount)})
	}
}
