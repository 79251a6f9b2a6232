package handler

import (
	"io"
	"mime"
	"net/http"
	"path/filepath"

	"github.com/gorilla/mux"

	"github.com/clubhub-dev/clubhub/internal/logger"
	"github.com/clubhub-dev/clubhub/internal/utils"
)

// GetAttachment streams a stored blob back to the client. The content type
// comes from the stored extension only; blob bytes are never sniffed.
func (h *Handler) GetAttachment(w http.ResponseWriter, r *http.Request) {
	filename := mux.Vars(r)["filename"]

	blob, err := h.blobs.Open(filename)
	if err != nil {
		utils.WriteErrorAndStatusCode(w, err)
		return
	}
	defer blob.Close()

	mimeType := mime.TypeByExtension(filepath.Ext(filename))
	if mimeType == "" {
		mimeType = "application/octet-stream"
	}
	w.Header().Set("Content-Type", mimeType)

	if _, err := io.Copy(w, blob); err != nil {
		logger.Log.Error("could not stream attachment", "filename", filename, "error", err)
	}
}

// PurgeAttachment drops a stored blob that no longer backs a message, such
// as one left behind when rollback after a failed insert could not remove it.
func (h *Handler) PurgeAttachment(w http.ResponseWriter, r *http.Request) {
	filename := mux.Vars(r)["filename"]

	if err := h.blobs.Remove(filename); err != nil {
		utils.WriteErrorAndStatusCode(w, err)
		return
	}

	w.WriteHeader(http.StatusOK)
}
