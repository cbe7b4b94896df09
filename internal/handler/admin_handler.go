package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/shubham-ralli/form-b/internal/service"
)

type AdminHandler struct {
	svc *service.AdminService
}

func NewAdminHandler(svc *service.AdminService) *AdminHandler {
	return &AdminHandler{svc: svc}
}

func (h *AdminHandler) ListUsers(w http.ResponseWriter, r *http.Request) {
	users, err := h.svc.ListUsers(r.Context())
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, map[string]any{"users": users})
}

func (h *AdminHandler) UpdateUser(w http.ResponseWriter, r *http.Request) {
	var req struct {
		IsActive *bool `json:"isActive"`
	}
	if err := readJSON(r, &req); err != nil || req.IsActive == nil {
		writeError(w, r, http.StatusBadRequest, "isActive must be a boolean")
		return
	}
	user, err := h.svc.SetUserActive(r.Context(), caller(r), chi.URLParam(r, "userId"), *req.IsActive)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, map[string]any{"message": "User updated", "user": user})
}

func (h *AdminHandler) DeleteUser(w http.ResponseWriter, r *http.Request) {
	if err := h.svc.DeleteUser(r.Context(), caller(r), chi.URLParam(r, "userId")); err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, map[string]string{"message": "User and all associated data deleted"})
}

func (h *AdminHandler) UserForms(w http.ResponseWriter, r *http.Request) {
	forms, err := h.svc.UserForms(r.Context(), chi.URLParam(r, "userId"))
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, map[string]any{"forms": forms})
}

func (h *AdminHandler) SetAdmin(w http.ResponseWriter, r *http.Request) {
	var req service.SetAdminInput
	if err := readJSON(r, &req); err != nil {
		writeError(w, r, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := h.svc.SetAdmin(r.Context(), req); err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, map[string]string{"message": "User promoted to admin"})
}
