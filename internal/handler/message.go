package handler

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gorilla/mux"

	"github.com/clubhub-dev/clubhub/internal/domain"
	"github.com/clubhub-dev/clubhub/internal/logger"
	"github.com/clubhub-dev/clubhub/internal/middleware"
	"github.com/clubhub-dev/clubhub/internal/service"
	"github.com/clubhub-dev/clubhub/internal/utils"
	"github.com/clubhub-dev/clubhub/internal/validation"
)

type createMessageBody struct {
	Text     string                   `json:"text"`
	ParentId *domain.MsgId            `json:"parent_id"`
	Poll     *domain.PollCreationData `json:"poll"`
}

// CreateMessage accepts a plain JSON body or, for attachment-bearing
// messages, a multipart form with a "json" field and an "attachment" file.
// The blob is persisted before the message row so a failed upload can never
// leave an orphaned message; a failed insert removes the blob instead.
func (h *Handler) CreateMessage(w http.ResponseWriter, r *http.Request) {
	forumId, err := parseIntParam(mux.Vars(r)["forum"], "forum id")
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	actor := middleware.GetAuthContext(r)
	if actor == nil {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	data := domain.MessageCreationData{Forum: forumId}

	if strings.HasPrefix(r.Header.Get("Content-Type"), "multipart/") {
		body, upload, cleanup, err := parseMultipartMessage[createMessageBody](w, r, h.cfg.Public.MaxAttachmentSize)
		if err != nil {
			// Return 413 Payload Too Large for size errors, 400 for other errors
			statusCode := http.StatusBadRequest
			if errors.Is(err, validation.ErrPayloadTooLarge) {
				statusCode = http.StatusRequestEntityTooLarge
			}
			http.Error(w, err.Error(), statusCode)
			return
		}
		defer cleanup()

		data.Text, data.ParentId, data.Poll = body.Text, body.ParentId, body.Poll
		if upload != nil {
			filename, err := h.blobs.Save(upload.File, upload.Filename)
			if err != nil {
				utils.WriteErrorAndStatusCode(w, err)
				return
			}
			data.Attachment = &domain.Attachment{
				Kind:     service.Classify(upload.MimeType),
				Filename: filename,
				MimeType: upload.MimeType,
			}
		}
	} else {
		var body createMessageBody
		if err := utils.Decode(r.Body, &body); err != nil {
			utils.WriteErrorAndStatusCode(w, err)
			return
		}
		data.Text, data.ParentId, data.Poll = body.Text, body.ParentId, body.Poll
	}

	msg, err := h.message.Create(actor, data)
	if err != nil {
		if data.Attachment != nil {
			// message never committed, drop the stored blob
			if removeErr := h.blobs.Remove(data.Attachment.Filename); removeErr != nil {
				logger.Log.Error("could not remove orphaned attachment",
					"filename", data.Attachment.Filename, "error", removeErr)
			}
		}
		utils.WriteErrorAndStatusCode(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, msg)
}

func (h *Handler) ListMessages(w http.ResponseWriter, r *http.Request) {
	forumId, err := parseIntParam(mux.Vars(r)["forum"], "forum id")
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	actor := middleware.GetAuthContext(r)
	if actor == nil {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	page := int64(1)
	if pageParam := r.URL.Query().Get("page"); pageParam != "" {
		if page, err = parseIntParam(pageParam, "page"); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
	}

	msgs, err := h.message.List(actor, forumId, int(page))
	if err != nil {
		utils.WriteErrorAndStatusCode(w, err)
		return
	}

	writeJSON(w, http.StatusOK, msgs)
}

func (h *Handler) DeleteMessage(w http.ResponseWriter, r *http.Request) {
	msgId, err := parseIntParam(mux.Vars(r)["message"], "message id")
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	actor := middleware.GetAuthContext(r)
	if actor == nil {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	if err := h.message.Delete(actor, msgId); err != nil {
		utils.WriteErrorAndStatusCode(w, err)
		return
	}

	w.WriteHeader(http.StatusOK)
}

func (h *Handler) CastVote(w http.ResponseWriter, r *http.Request) {
	msgId, err := parseIntParam(mux.Vars(r)["message"], "message id")
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	actor := middleware.GetAuthContext(r)
	if actor == nil {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	var body struct {
		OptionIndex *int `json:"option_index" validate:"required"`
	}
	if err := utils.DecodeValidate(r.Body, &body); err != nil {
		utils.WriteErrorAndStatusCode(w, err)
		return
	}

	msg, err := h.message.CastVote(actor, msgId, *body.OptionIndex)
	if err != nil {
		utils.WriteErrorAndStatusCode(w, err)
		return
	}

	writeJSON(w, http.StatusOK, msg)
}
