package service

import (
	"fmt"
	"net/http"

	"github.com/templui/filedrop/internal/model"
)

// StatusError reports an operation that is not valid for the record's current status
type StatusError struct {
	Reason string
	Status model.FileStatus
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("%s: %s", e.Reason, e.Status)
}

func (e *StatusError) StatusCode() int {
	return http.StatusBadRequest
}

func invalidStatus(status model.FileStatus) *StatusError {
	return &StatusError{Reason: "invalid status", Status: status}
}

func notReady(status model.FileStatus) *StatusError {
	return &StatusError{Reason: "not ready", Status: status}
}
