package handler

import (
	"errors"
	"net"
	"net/http"
	"strconv"

	"github.com/go-chi/render"

	"github.com/shubham-ralli/form-b/internal/auth"
	"github.com/shubham-ralli/form-b/internal/log"
	"github.com/shubham-ralli/form-b/internal/service"
)

func writeJSON(w http.ResponseWriter, r *http.Request, status int, v any) {
	render.Status(r, status)
	render.JSON(w, r, v)
}

func writeError(w http.ResponseWriter, r *http.Request, status int, msg string) {
	writeJSON(w, r, status, map[string]string{"error": msg})
}

func readJSON(r *http.Request, v any) error {
	return render.DecodeJSON(r.Body, v)
}

// serviceStatus maps a service error kind to its status code. Errors
// without a kind are internal.
func serviceStatus(err error) int {
	switch {
	case errors.Is(err, service.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, service.ErrForbidden), errors.Is(err, service.ErrQuota):
		return http.StatusForbidden
	case errors.Is(err, service.ErrUnauthorized):
		return http.StatusUnauthorized
	case errors.Is(err, service.ErrInvalid), errors.Is(err, service.ErrConflict):
		return http.StatusBadRequest
	}
	return http.StatusInternalServerError
}

// writeServiceError renders err with its status. Internal errors are logged,
// not shown.
func writeServiceError(w http.ResponseWriter, r *http.Request, err error) {
	status := serviceStatus(err)
	if status == http.StatusInternalServerError {
		log.Errorf("%s %s: %v", r.Method, r.URL.Path, err)
		writeError(w, r, status, "Server error")
		return
	}
	writeError(w, r, status, err.Error())
}

func caller(r *http.Request) service.Caller {
	claims := auth.GetUser(r.Context())
	if claims == nil {
		return service.Caller{}
	}
	return service.Caller{UserID: claims.UserID, Role: claims.Role}
}

func queryInt(r *http.Request, key string, fallback int) int {
	n, err := strconv.Atoi(r.URL.Query().Get(key))
	if err != nil || n < 0 {
		return fallback
	}
	return n
}

// clientIP reads the address set by the RealIP middleware.
func clientIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
