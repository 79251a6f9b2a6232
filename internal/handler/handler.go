package handler

import (
	"encoding/json"
	"io"
	"net/http"

	"github.com/clubhub-dev/clubhub/internal/config"
	"github.com/clubhub-dev/clubhub/internal/logger"
	"github.com/clubhub-dev/clubhub/internal/realtime"
	"github.com/clubhub-dev/clubhub/internal/service"
)

// BlobStorage persists attachment bytes. The handler only streams and names
// blobs; it never inspects them.
type BlobStorage interface {
	Save(data io.Reader, originalFilename string) (string, error)
	Open(filename string) (io.ReadCloser, error)
	Remove(filename string) error
}

type Handler struct {
	forum   service.ForumService
	message service.MessageService
	hub     *realtime.Hub
	blobs   BlobStorage
	cfg     *config.Config
}

func New(forum service.ForumService, message service.MessageService, hub *realtime.Hub, blobs BlobStorage, cfg *config.Config) *Handler {
	return &Handler{forum, message, hub, blobs, cfg}
}

func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	w.Write([]byte("ok"))
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logger.Log.Error("could not encode response", "error", err)
	}
}
