package controllers

import (
	"net/http"
	"time"

	"github.com/angelmondragon/marketflow-backend/api/middleware"
	"github.com/angelmondragon/marketflow-backend/api/responses"
	"github.com/angelmondragon/marketflow-backend/pkg/config"
	pkgerrors "github.com/angelmondragon/marketflow-backend/pkg/errors"
	"github.com/angelmondragon/marketflow-backend/pkg/logger"
	"github.com/angelmondragon/marketflow-backend/pkg/session"
)

type sessionResponse struct {
	Token     string    `json:"token"`
	SessionID string    `json:"sessionId"`
	ExpiresAt time.Time `json:"expiresAt"`
}

// SessionMint issues a guest session token. A still-valid token on the request
// is renewed for the same session so the cart survives.
func SessionMint(cfg config.SessionConfig, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sessionID := ""
		if raw := middleware.SessionToken(r); raw != "" {
			if claims, err := session.Parse(cfg, raw); err == nil {
				sessionID = claims.SessionID
			}
		}

		token, claims, err := session.Mint(cfg, time.Now().UTC(), sessionID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "mint session"))
			return
		}

		status := http.StatusCreated
		if sessionID != "" {
			status = http.StatusOK
		}
		responses.WriteSuccessStatus(w, status, sessionResponse{
			Token:     token,
			SessionID: claims.SessionID,
			ExpiresAt: claims.ExpiresAt.Time,
		})
	}
}
