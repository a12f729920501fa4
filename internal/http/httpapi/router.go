package httpapi

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/1Welcorn/Estilista-Virtual/internal/http/handlers"
	"github.com/1Welcorn/Estilista-Virtual/internal/middleware"
)

// NewRouter wires the HTTP surface. Trend browsing and the try-on flow are
// public; catalog mutations and key rotation require an admin session token.
func NewRouter(app *handlers.App, country middleware.CountryLookup) http.Handler {
	r := chi.NewRouter()

	r.Use(
		middleware.RequestID,
		chimw.RealIP,
		chimw.Recoverer,
		middleware.Logger(*app.Logger),
		middleware.CORS(app.Config.CORSOrigins),
		middleware.Locale("en", country),
	)

	r.Get("/v1/healthz", app.Health)

	if app.Config.StorageBackend == "filesystem" {
		fs := http.StripPrefix("/static/", http.FileServer(http.Dir(app.Config.StoragePath)))
		r.Handle("/static/*", fs)
	}

	r.Post("/v1/auth/google", app.AuthGoogleVerify)
	r.Post("/v1/auth/logout", app.Logout)

	r.Get("/v1/trends", app.TrendsList)

	r.Route("/v1/sessions", func(r chi.Router) {
		r.Post("/", app.SessionCreate)
		r.Route("/{id}", func(r chi.Router) {
			r.Get("/", app.SessionGet)
			r.Delete("/", app.SessionClear)
			r.Put("/model-image", app.SessionSetModelImage)
			r.Put("/garment-image", app.SessionSetGarmentImage)
			r.Post("/garment-from-trend", app.SessionSelectPreset)
			r.Post("/refinements/toggle", app.SessionToggleRefinement)
			r.Post("/background", app.SessionSelectBackground)
			r.With(middleware.RateLimit(10, time.Minute)).Post("/generate", app.SessionGenerate)
			r.Get("/lookbook", app.SessionLookbook)
			r.Post("/lookbook", app.SessionSaveLookbook)
			r.Delete("/result", app.SessionDiscard)
		})
	})

	r.Group(func(r chi.Router) {
		r.Use(middleware.AuthJWT(app.Config.JWTSecret))
		r.Get("/v1/auth/me", app.Me)
		r.Post("/v1/trends", app.TrendsCreate)
		r.Patch("/v1/trends/{id}", app.TrendsUpdate)
		r.Delete("/v1/trends/{id}", app.TrendsDelete)
		r.Put("/v1/admin/gemini-key", app.AdminSetGeminiKey)
		r.Get("/v1/admin/gemini-key", app.AdminGeminiKeyStatus)
	})

	return r
}
