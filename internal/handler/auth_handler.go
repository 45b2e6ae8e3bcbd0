package handler

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"go-community/internal/identity"
	"go-community/internal/model"
)

type ticketRevoker interface {
	RevokeTicket(ctx context.Context, ticket string) error
}

// AuthHandler covers the session endpoints that sit on top of the login
// ticket cookie.
type AuthHandler struct {
	tickets    ticketRevoker
	cookieName string
}

func NewAuthHandler(tickets ticketRevoker, cookieName string) *AuthHandler {
	return &AuthHandler{tickets: tickets, cookieName: cookieName}
}

func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	user, ok := identity.UserFromContext(r.Context())
	if !ok {
		writeError(w, model.ErrUnauthorized)
		return
	}

	writeSuccess(w, http.StatusOK, user, nil)
}

// Logout revokes the presented ticket, clears the cookie and sends the
// browser home. Unknown tickets are not an error.
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) (*model.ModelAndView, error) {
	if cookie, err := r.Cookie(h.cookieName); err == nil && cookie.Value != "" {
		err := h.tickets.RevokeTicket(r.Context(), cookie.Value)
		if err != nil && !errors.Is(err, model.ErrTicketNotFound) {
			return nil, err
		}
		if err == nil {
			if user, ok := identity.UserFromContext(r.Context()); ok {
				slog.Info("user logged out", "user_id", user.ID)
			}
		}
	}

	http.SetCookie(w, &http.Cookie{
		Name:     h.cookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
	})

	if holder := identity.FromContext(r.Context()); holder != nil {
		holder.Clear()
	}

	return model.RedirectTo("/"), nil
}
