package handlers

import (
	"encoding/json"
	"net/http"
)

// FeedListResponse lists the configured feed sources
type FeedListResponse struct {
	Success bool     `json:"success"`
	Count   int      `json:"count"`
	Feeds   []string `json:"feeds"`
}

// HandleListFeeds godoc
// @Summary List configured feed sources
// @Tags jobs
// @Produce json
// @Success 200 {object} handlers.FeedListResponse
// @Router /feeds [get]
func (h *Handler) HandleListFeeds(w http.ResponseWriter, r *http.Request) {
	urls := h.fetcher.URLs()

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(FeedListResponse{
		Success: true,
		Count:   len(urls),
		Feeds:   urls,
	})
}
