package handler

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"

	"github.com/templui/filedrop/internal/repository"
)

// errorResponse is the body of every failed request
type errorResponse struct {
	Error string `json:"error"`
}

// statusCoder is implemented by errors that pick their own HTTP status
type statusCoder interface {
	StatusCode() int
}

var errInvalidJSON = badRequest("invalid JSON body")

type requestError struct {
	message string
}

func (e *requestError) Error() string   { return e.message }
func (e *requestError) StatusCode() int { return http.StatusBadRequest }

func badRequest(message string) *requestError {
	return &requestError{message: message}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	err := json.NewEncoder(w).Encode(v)
	if err != nil {
		slog.Error("failed to encode response", "error", err)
	}
}

// writeError maps err to a status code and writes {"error": message}.
// Anything unrecognised is a 500 carrying the raw error message.
func writeError(w http.ResponseWriter, r *http.Request, err error) {
	status := http.StatusInternalServerError
	message := err.Error()

	var coder statusCoder
	switch {
	case errors.Is(err, repository.ErrFileNotFound):
		status = http.StatusNotFound
		message = repository.ErrFileNotFound.Error()
	case errors.As(err, &coder):
		status = coder.StatusCode()
	}

	if status >= http.StatusInternalServerError {
		slog.ErrorContext(r.Context(), "request failed", "error", err, "method", r.Method, "path", r.URL.Path)
	}

	writeJSON(w, status, errorResponse{Error: message})
}

// decodeBody reads a JSON object body into a generic map so fields can be type-checked one by one.
// An empty body decodes to an empty object.
func decodeBody(r *http.Request) (map[string]any, error) {
	body := map[string]any{}

	err := json.NewDecoder(r.Body).Decode(&body)
	if errors.Is(err, io.EOF) {
		return body, nil
	}
	var tooLarge *http.MaxBytesError
	if errors.As(err, &tooLarge) {
		return nil, badRequest("request body too large")
	}
	if err != nil {
		return nil, errInvalidJSON
	}

	return body, nil
}
