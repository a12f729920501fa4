package handlers

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/1Welcorn/Estilista-Virtual/internal/catalog"
	"github.com/1Welcorn/Estilista-Virtual/internal/infra"
	"github.com/1Welcorn/Estilista-Virtual/internal/infra/credentials"
	"github.com/1Welcorn/Estilista-Virtual/internal/middleware"
	"github.com/1Welcorn/Estilista-Virtual/internal/session"
)

// IDTokenVerifier validates Google ID tokens. Satisfied by *google.Verifier.
type IDTokenVerifier interface {
	VerifyIDToken(ctx context.Context, token string) (map[string]any, error)
}

// App bundles the dependencies the HTTP handlers need.
type App struct {
	Logger         *infra.Logger
	Config         infra.Config
	Sessions       *session.Service
	Catalog        *catalog.Service
	Credentials    *credentials.Store
	GoogleVerifier IDTokenVerifier
}

func (a *App) json(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

func (a *App) error(w http.ResponseWriter, code int, errCode, message string) {
	a.json(w, code, map[string]any{
		"error": map[string]string{"code": errCode, "message": message},
	})
}

func (a *App) currentUserID(r *http.Request) string {
	return middleware.UserIDFromContext(r.Context())
}

// localize picks the user-facing copy for the locale the middleware detected.
// The app ships in Portuguese for Brazilian visitors, English otherwise.
func localize(r *http.Request, en, pt string) string {
	if middleware.LocaleFromContext(r.Context()) == "pt" {
		return pt
	}
	return en
}
