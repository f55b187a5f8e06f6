package handler

import (
	"log/slog"
	"net/http"

	"github.com/greenflash/greenflash/internal/service"
)

type SearchHandler struct {
	searchService *service.SearchService
}

func NewSearchHandler(searchService *service.SearchService) *SearchHandler {
	return &SearchHandler{searchService: searchService}
}

type searchRequest struct {
	Category string `json:"category"`
	City     string `json:"city"`
}

// Search relays the provider's reply, status and body unchanged.
func (h *SearchHandler) Search(w http.ResponseWriter, r *http.Request) {
	var req searchRequest
	err := readJSON(r, &req)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, message{Message: "invalid request body"})
		return
	}

	res, err := h.searchService.Search(r.Context(), req.Category, req.City)
	if err != nil {
		slog.Error("search request failed", "error", err, "term", req.Category, "location", req.City)
		writeJSON(w, http.StatusBadGateway, message{Message: "search provider unavailable"})
		return
	}

	contentType := res.ContentType
	if contentType == "" {
		contentType = "application/json"
	}
	w.Header().Set("Content-Type", contentType)
	w.WriteHeader(res.StatusCode)
	_, _ = w.Write(res.Body)
}
