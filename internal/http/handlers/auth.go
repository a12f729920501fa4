package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/1Welcorn/Estilista-Virtual/internal/middleware"
	"github.com/1Welcorn/Estilista-Virtual/internal/session"
)

const sessionTokenTTL = 24 * time.Hour

type googleVerifyRequest struct {
	IDToken string `json:"id_token"`
}

type googleVerifyResponse struct {
	Token string              `json:"token"`
	User  session.UserProfile `json:"user"`
}

func (a *App) AuthGoogleVerify(w http.ResponseWriter, r *http.Request) {
	var req googleVerifyRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		a.error(w, http.StatusBadRequest, "bad_request", "invalid payload")
		return
	}
	if req.IDToken == "" {
		a.error(w, http.StatusBadRequest, "bad_request", "id_token required")
		return
	}
	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()
	claims, err := a.GoogleVerifier.VerifyIDToken(ctx, req.IDToken)
	if err != nil {
		a.Logger.Error().Err(err).Msg("google verify failed")
		a.error(w, http.StatusUnauthorized, "unauthorized", "invalid google token")
		return
	}
	profile := profileFromClaims(claims)
	if profile.UID == "" {
		a.error(w, http.StatusUnauthorized, "unauthorized", "token carries no subject")
		return
	}
	token, err := middleware.SignSession(a.Config.JWTSecret, "estilista-virtual", middleware.SessionClaims{
		Name:    profile.Name,
		Email:   profile.Email,
		Picture: profile.Picture,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject: profile.UID,
		},
	}, sessionTokenTTL)
	if err != nil {
		a.Logger.Error().Err(err).Msg("sign session token failed")
		a.error(w, http.StatusInternalServerError, "internal", "failed to sign token")
		return
	}
	a.json(w, http.StatusOK, googleVerifyResponse{Token: token, User: profile})
}

func (a *App) Me(w http.ResponseWriter, r *http.Request) {
	claims := middleware.ClaimsFromContext(r.Context())
	if claims == nil {
		a.error(w, http.StatusUnauthorized, "unauthorized", "missing user context")
		return
	}
	a.json(w, http.StatusOK, session.UserProfile{
		UID:     claims.Subject,
		Name:    claims.Name,
		Email:   claims.Email,
		Picture: claims.Picture,
	})
}

// Logout exists for client symmetry; the session token is simply discarded.
func (a *App) Logout(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusNoContent)
}

func profileFromClaims(claims map[string]any) session.UserProfile {
	str := func(key string) string {
		v, _ := claims[key].(string)
		return v
	}
	return session.UserProfile{
		UID:     str("sub"),
		Name:    str("name"),
		Email:   str("email"),
		Picture: str("picture"),
	}
}
