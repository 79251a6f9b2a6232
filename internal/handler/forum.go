package handler

import (
	"net/http"

	"github.com/gorilla/mux"

	"github.com/clubhub-dev/clubhub/internal/domain"
	"github.com/clubhub-dev/clubhub/internal/middleware"
	"github.com/clubhub-dev/clubhub/internal/utils"
)

func (h *Handler) CreateForum(w http.ResponseWriter, r *http.Request) {
	actor := middleware.GetAuthContext(r)
	if actor == nil {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	var body struct {
		Title       string            `json:"title" validate:"required"`
		Description string            `json:"description"`
		Visibility  domain.Visibility `json:"visibility"`
		ClubId      *int64            `json:"club_id"`
		BoardId     *int64            `json:"board_id"`
		Tags        []string          `json:"tags"`
		ImageName   string            `json:"image_name"`
	}
	if err := utils.DecodeValidate(r.Body, &body); err != nil {
		utils.WriteErrorAndStatusCode(w, err)
		return
	}

	id, err := h.forum.Create(actor, domain.ForumCreationData{
		Title:       body.Title,
		Description: body.Description,
		Visibility:  body.Visibility,
		ClubId:      body.ClubId,
		BoardId:     body.BoardId,
		Tags:        body.Tags,
		ImageName:   body.ImageName,
	})
	if err != nil {
		utils.WriteErrorAndStatusCode(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, map[string]int64{"id": id})
}

func (h *Handler) GetForum(w http.ResponseWriter, r *http.Request) {
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

	forum, err := h.forum.Get(actor, forumId)
	if err != nil {
		utils.WriteErrorAndStatusCode(w, err)
		return
	}

	writeJSON(w, http.StatusOK, forum)
}

func (h *Handler) ListForums(w http.ResponseWriter, r *http.Request) {
	actor := middleware.GetAuthContext(r)
	if actor == nil {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	forums, err := h.forum.List(actor)
	if err != nil {
		utils.WriteErrorAndStatusCode(w, err)
		return
	}

	writeJSON(w, http.StatusOK, forums)
}

func (h *Handler) DeleteForum(w http.ResponseWriter, r *http.Request) {
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

	if err := h.forum.Delete(actor, forumId); err != nil {
		utils.WriteErrorAndStatusCode(w, err)
		return
	}

	w.WriteHeader(http.StatusOK)
}

func (h *Handler) JoinForum(w http.ResponseWriter, r *http.Request) {
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

	if err := h.forum.Join(actor, forumId); err != nil {
		utils.WriteErrorAndStatusCode(w, err)
		return
	}

	w.WriteHeader(http.StatusCreated)
}

func (h *Handler) LeaveForum(w http.ResponseWriter, r *http.Request) {
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

	if err := h.forum.Leave(actor, forumId); err != nil {
		utils.WriteErrorAndStatusCode(w, err)
		return
	}

	w.WriteHeader(http.StatusOK)
}

// Live subscribes the caller to the forum's realtime room. Visibility is
// checked with the same rules as reading the forum itself.
func (h *Handler) Live(w http.ResponseWriter, r *http.Request) {
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

	if _, err := h.forum.Get(actor, forumId); err != nil {
		utils.WriteErrorAndStatusCode(w, err)
		return
	}

	h.hub.ServeWS(w, r, forumId)
}
