package handler

import (
	"net/http"

	"github.com/shubham-ralli/form-b/internal/service"
)

type SubmissionHandler struct {
	svc *service.SubmissionService
}

func NewSubmissionHandler(svc *service.SubmissionService) *SubmissionHandler {
	return &SubmissionHandler{svc: svc}
}

func (h *SubmissionHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req service.SubmitInput
	if err := readJSON(r, &req); err != nil {
		writeError(w, r, http.StatusBadRequest, "invalid request body")
		return
	}
	sub, err := h.svc.Submit(r.Context(), req, service.Origin{IP: clientIP(r), UserAgent: r.UserAgent()})
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusCreated, map[string]any{
		"message":      "Submission received",
		"submissionId": sub.ID,
	})
}

func (h *SubmissionHandler) List(w http.ResponseWriter, r *http.Request) {
	subs, total, err := h.svc.ListForUser(r.Context(), caller(r).UserID,
		queryInt(r, "skip", 0), queryInt(r, "limit", 0))
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, map[string]any{"submissions": subs, "total": total})
}
