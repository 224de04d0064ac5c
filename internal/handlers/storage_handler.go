package handlers

import (
	"errors"
	"io"
	"net/http"
	"strings"

	"robinhoodarmy/internal/models"
	"robinhoodarmy/internal/storage"
)

// UploadResponse is returned after a successful upload
type UploadResponse struct {
	Key string `json:"key"`
	URL string `json:"url"`
}

// StorageHandler accepts photo uploads
type StorageHandler struct {
	store   storage.Storage
	maxSize int64
}

// NewStorageHandler creates a new storage handler
func NewStorageHandler(store storage.Storage, maxSize int64) *StorageHandler {
	return &StorageHandler{
		store:   store,
		maxSize: maxSize,
	}
}

// Upload handles POST /storage/v1/object/{bucket}/{path...}
func (h *StorageHandler) Upload(w http.ResponseWriter, r *http.Request) {
	userID := GetUserIDFromContext(r.Context())

	if r.PathValue("bucket") != models.PhotosBucket {
		respondWithError(w, http.StatusNotFound, "Bucket not found", "", nil)
		return
	}

	key, err := storage.CleanKey(r.PathValue("path"))
	if err != nil {
		respondWithError(w, http.StatusBadRequest, err.Error(), "", nil)
		return
	}
	if !storage.OwnedBy(key, userID) {
		respondWithError(w, http.StatusForbidden, "Object key must start with your user id", "", nil)
		return
	}

	contentType := r.Header.Get("Content-Type")
	if i := strings.Index(contentType, ";"); i >= 0 {
		contentType = strings.TrimSpace(contentType[:i])
	}

	data, err := io.ReadAll(http.MaxBytesReader(w, r.Body, h.maxSize))
	if err != nil {
		respondWithError(w, http.StatusRequestEntityTooLarge, storage.ErrObjectTooLarge.Error(), "", nil)
		return
	}
	if len(data) == 0 {
		respondWithError(w, http.StatusBadRequest, "Empty upload", "", nil)
		return
	}

	url, err := h.store.Put(r.Context(), key, contentType, data)
	if err != nil {
		if errors.Is(err, storage.ErrInvalidKey) || errors.Is(err, storage.ErrUnsupportedType) {
			respondWithError(w, http.StatusBadRequest, err.Error(), "", nil)
			return
		}
		respondWithError(w, http.StatusBadGateway, "Failed to store object", "Upload of "+key+" failed", err)
		return
	}

	respondJSON(w, http.StatusOK, UploadResponse{Key: key, URL: url})
}

// PublicFiles serves objects from a local storage root
func PublicFiles(root string) http.Handler {
	return http.StripPrefix("/storage/v1/object/public/"+models.PhotosBucket+"/", http.FileServer(http.Dir(root)))
}
