package handler

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/greenflash/greenflash/internal/ctxkeys"
	"github.com/greenflash/greenflash/internal/service"
	"github.com/greenflash/greenflash/internal/ui"
	"github.com/greenflash/greenflash/internal/ui/pages"
	"github.com/greenflash/greenflash/internal/validation"
)

type PlaceHandler struct {
	placeService *service.PlaceService
}

func NewPlaceHandler(placeService *service.PlaceService) *PlaceHandler {
	return &PlaceHandler{placeService: placeService}
}

// Save bookmarks a search result. Anonymous callers get "not added".
func (h *PlaceHandler) Save(w http.ResponseWriter, r *http.Request) {
	var in service.PlaceInput
	err := readJSON(r, &in)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, message{Message: "invalid request body"})
		return
	}

	userID := ctxkeys.UserID(r.Context())
	result, err := h.placeService.Save(userID, in)
	if err != nil {
		var verrs validation.Errors
		if errors.As(err, &verrs) {
			writeJSON(w, http.StatusUnprocessableEntity, message{Message: "invalid place", Errors: verrs})
			return
		}
		slog.Error("failed to save place", "error", err, "user_id", userID, "place_id", in.ID)
		writeJSON(w, http.StatusInternalServerError, message{Message: "internal server error"})
		return
	}

	writeJSON(w, http.StatusOK, message{Message: result})
}

func (h *PlaceHandler) Remove(w http.ResponseWriter, r *http.Request) {
	userID := ctxkeys.UserID(r.Context())
	placeID := r.PathValue("id")

	err := h.placeService.Remove(userID, placeID)
	if err != nil {
		if errors.Is(err, service.ErrNotFound) {
			writeJSON(w, http.StatusNotFound, message{Message: "not found"})
			return
		}
		slog.Error("failed to remove place", "error", err, "user_id", userID, "place_id", placeID)
		writeJSON(w, http.StatusInternalServerError, message{Message: "internal server error"})
		return
	}

	writeJSON(w, http.StatusOK, message{Message: "deleted"})
}

func (h *PlaceHandler) PlacesPage(w http.ResponseWriter, r *http.Request) {
	userID := ctxkeys.UserID(r.Context())

	places, err := h.placeService.Places(userID)
	if err != nil {
		slog.Error("failed to list places", "error", err, "user_id", userID)
		http.Error(w, "internal server error", http.StatusInternalServerError)
		return
	}

	ui.Render(w, r, pages.Places(pages.New(w, r, "Saved places"), places))
}
