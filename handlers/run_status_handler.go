package handlers

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/rzafh/portfolio-backend/middleware"
)

// HandleRunStatus godoc
// @Summary Look up a background run
// @Tags jobs
// @Produce json
// @Param id query string true "Run ID returned by an async check-jobs request"
// @Success 200 {object} types.RunStatus
// @Failure 400 {object} middleware.APIError
// @Failure 404 {object} middleware.APIError
// @Router /run-status [get]
func (h *Handler) HandleRunStatus(w http.ResponseWriter, r *http.Request) {
	requestID := r.Header.Get("X-Request-ID")

	runID := r.URL.Query().Get("id")
	if runID == "" {
		middleware.RespondBadRequest(w, fmt.Errorf("id query parameter is required"), requestID)
		return
	}

	status, ok := h.runner.Status(runID)
	if !ok {
		middleware.RespondNotFound(w, fmt.Errorf("run %s not found", runID), requestID)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(status)
}
