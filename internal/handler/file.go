package handler

import (
	"net/http"

	"github.com/templui/filedrop/internal/service"
	"github.com/templui/filedrop/internal/validation"
)

type FileHandler struct {
	fileService *service.FileService
}

func NewFileHandler(fileService *service.FileService) *FileHandler {
	return &FileHandler{
		fileService: fileService,
	}
}

// PresignUpload handles POST /files/presign-upload
func (h *FileHandler) PresignUpload(w http.ResponseWriter, r *http.Request) {
	body, err := decodeBody(r)
	if err != nil {
		writeError(w, r, err)
		return
	}

	originalFilename, err := validation.RequiredString("originalFilename", body["originalFilename"])
	if err != nil {
		writeError(w, r, err)
		return
	}
	contentType, err := validation.RequiredString("contentType", body["contentType"])
	if err != nil {
		writeError(w, r, err)
		return
	}

	ticket, err := h.fileService.PresignUpload(r.Context(), originalFilename, contentType)
	if err != nil {
		writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, ticket)
}

// Complete handles POST /files/complete
func (h *FileHandler) Complete(w http.ResponseWriter, r *http.Request) {
	body, err := decodeBody(r)
	if err != nil {
		writeError(w, r, err)
		return
	}

	fileID, err := validation.RequiredString("fileId", body["fileId"])
	if err != nil {
		writeError(w, r, err)
		return
	}

	done, err := h.fileService.CompleteUpload(r.Context(), fileID)
	if err != nil {
		writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, done)
}

// Metadata handles GET /files/{fileId}
func (h *FileHandler) Metadata(w http.ResponseWriter, r *http.Request) {
	fileID, err := validation.RequiredString("fileId", r.PathValue("fileId"))
	if err != nil {
		writeError(w, r, err)
		return
	}

	file, err := h.fileService.Metadata(r.Context(), fileID)
	if err != nil {
		writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, file)
}

// Share handles POST /files/{fileId}/share
func (h *FileHandler) Share(w http.ResponseWriter, r *http.Request) {
	fileID, err := validation.RequiredString("fileId", r.PathValue("fileId"))
	if err != nil {
		writeError(w, r, err)
		return
	}

	link, err := h.fileService.Share(r.Context(), fileID)
	if err != nil {
		writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, link)
}
