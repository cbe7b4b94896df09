package handler

import (
	"net/http"

	"github.com/shubham-ralli/form-b/internal/service"
)

type PlanHandler struct {
	svc *service.PlanService
}

func NewPlanHandler(svc *service.PlanService) *PlanHandler {
	return &PlanHandler{svc: svc}
}

func (h *PlanHandler) List(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, r, http.StatusOK, map[string]any{"plans": h.svc.List()})
}

func (h *PlanHandler) Set(w http.ResponseWriter, r *http.Request) {
	var req service.SetPlanInput
	if err := readJSON(r, &req); err != nil {
		writeError(w, r, http.StatusBadRequest, "invalid request body")
		return
	}
	user, err := h.svc.SetPlan(r.Context(), caller(r).UserID, req)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, map[string]any{"message": "Plan updated successfully", "user": user})
}

func (h *PlanHandler) Upgrade(w http.ResponseWriter, r *http.Request) {
	var req service.UpgradeInput
	if err := readJSON(r, &req); err != nil {
		writeError(w, r, http.StatusBadRequest, "invalid request body")
		return
	}
	user, err := h.svc.Upgrade(r.Context(), caller(r).UserID, req)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, map[string]any{"message": "Upgraded successfully", "user": user})
}
