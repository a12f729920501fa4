package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/1Welcorn/Estilista-Virtual/internal/imaging"
	"github.com/1Welcorn/Estilista-Virtual/internal/providers/genai"
	"github.com/1Welcorn/Estilista-Virtual/internal/providers/stylist"
	"github.com/1Welcorn/Estilista-Virtual/internal/session"
)

type imagePayload struct {
	Image string `json:"image"`
}

type phrasePayload struct {
	Phrase string `json:"phrase"`
}

type backgroundPayload struct {
	Background string `json:"background"`
}

type presetPayload struct {
	Image string `json:"image"`
}

func (a *App) SessionCreate(w http.ResponseWriter, r *http.Request) {
	a.json(w, http.StatusCreated, a.Sessions.Create())
}

func (a *App) SessionGet(w http.ResponseWriter, r *http.Request) {
	view, err := a.Sessions.Get(chi.URLParam(r, "id"))
	if err != nil {
		a.sessionError(w, r, err)
		return
	}
	a.json(w, http.StatusOK, view)
}

func (a *App) SessionSetModelImage(w http.ResponseWriter, r *http.Request) {
	var req imagePayload
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		a.error(w, http.StatusBadRequest, "bad_request", "invalid payload")
		return
	}
	view, err := a.Sessions.SetModelImage(r.Context(), chi.URLParam(r, "id"), req.Image)
	if err != nil {
		a.sessionError(w, r, err)
		return
	}
	a.json(w, http.StatusOK, view)
}

func (a *App) SessionSetGarmentImage(w http.ResponseWriter, r *http.Request) {
	var req imagePayload
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		a.error(w, http.StatusBadRequest, "bad_request", "invalid payload")
		return
	}
	view, err := a.Sessions.SetGarmentImage(r.Context(), chi.URLParam(r, "id"), req.Image)
	if err != nil {
		a.sessionError(w, r, err)
		return
	}
	a.json(w, http.StatusOK, view)
}

// SessionSelectPreset resolves a catalog variant image, embedded or by URL,
// into the garment slot.
func (a *App) SessionSelectPreset(w http.ResponseWriter, r *http.Request) {
	var req presetPayload
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		a.error(w, http.StatusBadRequest, "bad_request", "invalid payload")
		return
	}
	if req.Image == "" {
		a.error(w, http.StatusBadRequest, "bad_request", "image required")
		return
	}
	view, err := a.Sessions.SelectPresetGarment(r.Context(), chi.URLParam(r, "id"), req.Image)
	if err != nil {
		a.sessionError(w, r, err)
		return
	}
	a.json(w, http.StatusOK, view)
}

func (a *App) SessionToggleRefinement(w http.ResponseWriter, r *http.Request) {
	var req phrasePayload
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		a.error(w, http.StatusBadRequest, "bad_request", "invalid payload")
		return
	}
	view, err := a.Sessions.ToggleRefinement(chi.URLParam(r, "id"), req.Phrase)
	if err != nil {
		a.sessionError(w, r, err)
		return
	}
	a.json(w, http.StatusOK, view)
}

func (a *App) SessionSelectBackground(w http.ResponseWriter, r *http.Request) {
	var req backgroundPayload
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		a.error(w, http.StatusBadRequest, "bad_request", "invalid payload")
		return
	}
	view, err := a.Sessions.SelectBackground(chi.URLParam(r, "id"), req.Background)
	if err != nil {
		a.sessionError(w, r, err)
		return
	}
	a.json(w, http.StatusOK, view)
}

func (a *App) SessionGenerate(w http.ResponseWriter, r *http.Request) {
	view, err := a.Sessions.Generate(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		a.sessionError(w, r, err)
		return
	}
	a.json(w, http.StatusOK, view)
}

func (a *App) SessionLookbook(w http.ResponseWriter, r *http.Request) {
	view, err := a.Sessions.Get(chi.URLParam(r, "id"))
	if err != nil {
		a.sessionError(w, r, err)
		return
	}
	a.json(w, http.StatusOK, map[string][]string{"lookbook": view.Lookbook})
}

func (a *App) SessionSaveLookbook(w http.ResponseWriter, r *http.Request) {
	view, err := a.Sessions.SaveToLookbook(chi.URLParam(r, "id"))
	if err != nil {
		a.sessionError(w, r, err)
		return
	}
	a.json(w, http.StatusOK, view)
}

func (a *App) SessionClear(w http.ResponseWriter, r *http.Request) {
	a.Sessions.Clear(chi.URLParam(r, "id"))
	w.WriteHeader(http.StatusNoContent)
}

func (a *App) SessionDiscard(w http.ResponseWriter, r *http.Request) {
	view, err := a.Sessions.Discard(chi.URLParam(r, "id"))
	if err != nil {
		a.sessionError(w, r, err)
		return
	}
	a.json(w, http.StatusOK, view)
}

// sessionError maps flow and provider failures onto HTTP codes, with the
// message in the visitor's language. Every branch resolves to an action the
// customer can retry.
func (a *App) sessionError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, session.ErrSessionNotFound):
		a.error(w, http.StatusNotFound, "not_found",
			localize(r, "session not found", "sessão não encontrada"))
	case errors.Is(err, session.ErrGenerationInFlight):
		a.error(w, http.StatusConflict, "generation_in_flight",
			localize(r, "a generation is already running", "uma geração já está em andamento"))
	case errors.Is(err, session.ErrNotReady):
		a.error(w, http.StatusBadRequest, "not_ready",
			localize(r, "select a model and a garment image first", "selecione primeiro uma foto de modelo e uma peça de roupa"))
	case errors.Is(err, session.ErrNoResult):
		a.error(w, http.StatusConflict, "no_result",
			localize(r, "there is no generated result to act on", "não há resultado gerado para usar"))
	case errors.Is(err, imaging.ErrInvalidImageData):
		a.error(w, http.StatusBadRequest, "invalid_image",
			localize(r, "the image data is malformed", "os dados da imagem são inválidos"))
	case errors.Is(err, imaging.ErrFetch):
		a.error(w, http.StatusBadGateway, "fetch_failed",
			localize(r, "the preset image could not be fetched", "não foi possível baixar a imagem do look"))
	case errors.Is(err, genai.ErrInvalidAPIKey):
		a.error(w, http.StatusBadGateway, "invalid_api_key",
			localize(r, "the generation API key is invalid, select a new one", "a chave da API de geração é inválida, informe uma nova"))
	case errors.Is(err, genai.ErrQuotaExhausted):
		a.error(w, http.StatusTooManyRequests, "quota_exhausted",
			localize(r, "the generation quota is exhausted, try again later", "a cota de geração foi atingida, tente novamente mais tarde"))
	case errors.Is(err, genai.ErrNoAPIKey):
		a.error(w, http.StatusServiceUnavailable, "no_api_key",
			localize(r, "no generation API key is configured", "nenhuma chave da API de geração está configurada"))
	case errors.Is(err, stylist.ErrNoImageProduced):
		a.error(w, http.StatusBadGateway, "no_image_produced",
			localize(r, "the model returned no image, try adjusting the inputs", "o modelo não retornou imagem, ajuste as fotos e tente de novo"))
	default:
		a.Logger.Error().Err(err).Msg("session operation failed")
		a.error(w, http.StatusInternalServerError, "internal",
			localize(r, "unexpected failure", "falha inesperada"))
	}
}
