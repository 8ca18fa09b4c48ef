package api

import (
	"errors"
	"net/http"
	"time"

	"github.com/example/apparel-storefront/internal/api/middleware"
	"github.com/example/apparel-storefront/internal/auth"
	"github.com/example/apparel-storefront/internal/logging"
)

type AuthHandlers struct {
	auth *auth.Service
}

func NewAuthHandlers(authService *auth.Service) *AuthHandlers {
	return &AuthHandlers{auth: authService}
}

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type SessionResponse struct {
	Email     string    `json:"email"`
	Role      string    `json:"role"`
	ExpiresAt time.Time `json:"expiresAt"`
}

// Login checks the credentials and sets the session cookie. The token is
// also returned for API clients.
func (h *AuthHandlers) Login(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	session, err := h.auth.SignIn(req.Email, req.Password)
	if errors.Is(err, auth.ErrInvalidCredentials) {
		respondJSONError(w, "Invalid email or password", http.StatusUnauthorized)
		return
	}
	if err != nil {
		respondServiceError(w, r, "sign in", err)
		return
	}

	http.SetCookie(w, &http.Cookie{
		Name:     middleware.SessionCookieName,
		Value:    session.Token,
		Path:     "/",
		Expires:  session.ExpiresAt,
		HttpOnly: true,
		Secure:   r.TLS != nil,
		SameSite: http.SameSiteStrictMode,
	})

	respondJSON(w, http.StatusOK, struct {
		SessionResponse
		Token string `json:"token"`
	}{
		SessionResponse: SessionResponse{Email: session.Email, Role: session.Role, ExpiresAt: session.ExpiresAt},
		Token:           session.Token,
	})
}

// Logout revokes the current session, if any, and clears the cookie. It runs
// behind OptionalAuthMiddleware so a stale cookie can still be cleared.
func (h *AuthHandlers) Logout(w http.ResponseWriter, r *http.Request) {
	if claims, ok := middleware.GetUserFromContext(r.Context()); ok {
		if err := h.auth.SignOut(middleware.ExtractToken(r)); err != nil {
			logging.FromContext(r.Context()).Warn("sign out", "email", claims.Email, "error", err)
		}
	}

	http.SetCookie(w, &http.Cookie{
		Name:     middleware.SessionCookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
	})

	respondJSON(w, http.StatusOK, map[string]string{
		"message": "Logout successful",
	})
}

// Session reports the current session. Requires AuthMiddleware.
func (h *AuthHandlers) Session(w http.ResponseWriter, r *http.Request) {
	claims, ok := middleware.GetUserFromContext(r.Context())
	if !ok {
		respondJSONError(w, "unauthorized", http.StatusUnauthorized)
		return
	}
	respondJSON(w, http.StatusOK, SessionResponse{
		Email:     claims.Email,
		Role:      claims.Role,
		ExpiresAt: claims.ExpiresAt.Time,
	})
}
