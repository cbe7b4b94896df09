package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/shubham-ralli/form-b/internal/models"
	"github.com/shubham-ralli/form-b/internal/service"
)

type FormHandler struct {
	svc *service.FormService
}

func NewFormHandler(svc *service.FormService) *FormHandler {
	return &FormHandler{svc: svc}
}

func (h *FormHandler) List(w http.ResponseWriter, r *http.Request) {
	forms, err := h.svc.List(r.Context(), caller(r).UserID)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, map[string]any{"forms": forms})
}

// createdForm carries the new id under both names older clients read.
type createdForm struct {
	models.Form
	FormID string `json:"formId"`
}

func (h *FormHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req service.FormInput
	if err := readJSON(r, &req); err != nil {
		writeError(w, r, http.StatusBadRequest, "invalid request body")
		return
	}
	form, err := h.svc.Create(r.Context(), caller(r), req)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusCreated, createdForm{Form: *form, FormID: form.ID})
}

// Public serves a single form by ?id=, or the directory of active forms.
func (h *FormHandler) Public(w http.ResponseWriter, r *http.Request) {
	if id := r.URL.Query().Get("id"); id != "" {
		h.writePublic(w, r, id)
		return
	}
	forms, err := h.svc.PublicList(r.Context())
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, map[string]any{"forms": forms})
}

func (h *FormHandler) Get(w http.ResponseWriter, r *http.Request) {
	h.writePublic(w, r, chi.URLParam(r, "formId"))
}

func (h *FormHandler) writePublic(w http.ResponseWriter, r *http.Request, id string) {
	form, err := h.svc.Public(r.Context(), id)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, form)
}

func (h *FormHandler) Update(w http.ResponseWriter, r *http.Request) {
	var req service.FormInput
	if err := readJSON(r, &req); err != nil {
		writeError(w, r, http.StatusBadRequest, "invalid request body")
		return
	}
	form, err := h.svc.Update(r.Context(), caller(r), chi.URLParam(r, "formId"), req)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, form)
}

func (h *FormHandler) SetStatus(w http.ResponseWriter, r *http.Request) {
	var req struct {
		IsActive *bool `json:"isActive"`
	}
	if err := readJSON(r, &req); err != nil || req.IsActive == nil {
		writeError(w, r, http.StatusBadRequest, "isActive must be a boolean")
		return
	}
	form, err := h.svc.SetStatus(r.Context(), caller(r), chi.URLParam(r, "formId"), *req.IsActive)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, map[string]any{"message": "Form status updated", "form": form})
}

func (h *FormHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "formId")
	if err := h.svc.Delete(r.Context(), caller(r), id); err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, map[string]string{"message": "Form deleted successfully", "deleted": id})
}

func (h *FormHandler) Submissions(w http.ResponseWriter, r *http.Request) {
	subs, total, err := h.svc.Submissions(r.Context(), caller(r), chi.URLParam(r, "formId"),
		queryInt(r, "skip", 0), queryInt(r, "limit", 0))
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, map[string]any{"submissions": subs, "total": total})
}
