package handlers

import (
	"encoding/json"
	"net/http"
)

type geminiKeyRequest struct {
	APIKey string `json:"api_key"`
}

// AdminSetGeminiKey rotates the Gemini API key used for all generation calls.
func (a *App) AdminSetGeminiKey(w http.ResponseWriter, r *http.Request) {
	var req geminiKeyRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		a.error(w, http.StatusBadRequest, "bad_request", "invalid payload")
		return
	}
	if err := a.Credentials.SetGeminiAPIKey(r.Context(), req.APIKey); err != nil {
		a.error(w, http.StatusBadRequest, "bad_request", err.Error())
		return
	}
	a.Logger.Info().Str("user", a.currentUserID(r)).Msg("gemini api key rotated")
	a.json(w, http.StatusOK, map[string]bool{"configured": true})
}

// AdminGeminiKeyStatus reports whether a generation key is configured,
// without ever echoing it back.
func (a *App) AdminGeminiKeyStatus(w http.ResponseWriter, r *http.Request) {
	key, err := a.Credentials.GeminiAPIKey(r.Context())
	if err != nil {
		a.Logger.Error().Err(err).Msg("gemini key lookup failed")
		a.error(w, http.StatusInternalServerError, "internal", "failed to read key status")
		return
	}
	a.json(w, http.StatusOK, map[string]bool{"configured": key != ""})
}
