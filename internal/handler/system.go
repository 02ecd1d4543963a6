package handler

import (
	"net/http"
)

type SystemHandler struct {
	version string
	env     string
}

func NewSystemHandler(version, env string) *SystemHandler {
	return &SystemHandler{
		version: version,
		env:     env,
	}
}

// Health always reports success; it does not probe S3 or the metadata store
func (h *SystemHandler) Health(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

func (h *SystemHandler) Version(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"version": h.version})
}

func (h *SystemHandler) Env(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"env": h.env})
}

// NotFound is the JSON response for unknown API paths
func NotFound(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusNotFound, errorResponse{Error: "not found"})
}

// TooManyRequests is the JSON response used by the upload rate limiter
func TooManyRequests(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusTooManyRequests, errorResponse{Error: "too many requests"})
}

// Recovered is the JSON response written after a handler panic
func Recovered(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusInternalServerError, errorResponse{Error: "internal server error"})
}
