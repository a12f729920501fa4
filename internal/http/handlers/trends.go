package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/1Welcorn/Estilista-Virtual/internal/catalog"
)

type trendCreateRequest struct {
	Name           string                `json:"name"`
	Images         []catalog.OutfitImage `json:"images"`
	MainImageIndex int                   `json:"mainImageIndex"`
}

type trendUpdateRequest struct {
	Name           *string                `json:"name"`
	MainImageIndex *int                   `json:"mainImageIndex"`
	Images         *[]catalog.OutfitImage `json:"images"`
}

// TrendsList is public; a failing catalog degrades to an empty list so the
// browsing page always renders.
func (a *App) TrendsList(w http.ResponseWriter, r *http.Request) {
	a.json(w, http.StatusOK, a.Catalog.List(r.Context()))
}

func (a *App) TrendsCreate(w http.ResponseWriter, r *http.Request) {
	var req trendCreateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		a.error(w, http.StatusBadRequest, "bad_request", "invalid payload")
		return
	}
	outfit, err := a.Catalog.Add(r.Context(), catalog.PresetOutfit{
		Name:           req.Name,
		Images:         req.Images,
		MainImageIndex: req.MainImageIndex,
	})
	if err != nil {
		a.catalogError(w, r, err)
		return
	}
	a.Logger.Info().Str("trend", outfit.ID).Str("user", a.currentUserID(r)).Msg("trend created")
	a.json(w, http.StatusCreated, outfit)
}

func (a *App) TrendsUpdate(w http.ResponseWriter, r *http.Request) {
	var req trendUpdateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		a.error(w, http.StatusBadRequest, "bad_request", "invalid payload")
		return
	}
	outfit, err := a.Catalog.Update(r.Context(), chi.URLParam(r, "id"), catalog.UpdateParams{
		Name:           req.Name,
		MainImageIndex: req.MainImageIndex,
		Images:         req.Images,
	})
	if err != nil {
		a.catalogError(w, r, err)
		return
	}
	a.json(w, http.StatusOK, outfit)
}

func (a *App) TrendsDelete(w http.ResponseWriter, r *http.Request) {
	if err := a.Catalog.Remove(r.Context(), chi.URLParam(r, "id")); err != nil {
		a.catalogError(w, r, err)
		return
	}
	a.Logger.Info().Str("trend", chi.URLParam(r, "id")).Str("user", a.currentUserID(r)).Msg("trend removed")
	w.WriteHeader(http.StatusNoContent)
}

func (a *App) catalogError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, catalog.ErrOutfitNotFound):
		a.error(w, http.StatusNotFound, "not_found",
			localize(r, "trend not found", "tendência não encontrada"))
	case errors.Is(err, catalog.ErrStorageQuotaExceeded):
		a.error(w, http.StatusInsufficientStorage, "storage_quota_exceeded",
			localize(r, "the image storage quota is exhausted", "a cota de armazenamento de imagens foi atingida"))
	case errors.Is(err, catalog.ErrAddOutfit),
		errors.Is(err, catalog.ErrUpdateOutfit),
		errors.Is(err, catalog.ErrRemoveOutfit):
		a.error(w, http.StatusUnprocessableEntity, "catalog_failed", err.Error())
	default:
		a.Logger.Error().Err(err).Msg("catalog operation failed")
		a.error(w, http.StatusInternalServerError, "internal",
			localize(r, "unexpected failure", "falha inesperada"))
	}
}
