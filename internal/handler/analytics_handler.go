package handler

import (
	"net/http"

	"github.com/shubham-ralli/form-b/internal/service"
)

type AnalyticsHandler struct {
	svc *service.AnalyticsService
}

func NewAnalyticsHandler(svc *service.AnalyticsService) *AnalyticsHandler {
	return &AnalyticsHandler{svc: svc}
}

func (h *AnalyticsHandler) Get(w http.ResponseWriter, r *http.Request) {
	stats, err := h.svc.ForUser(r.Context(), caller(r).UserID)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, stats)
}
