package community

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/otsyhq/otsy-backend/internal/middleware"
	"github.com/otsyhq/otsy-backend/internal/service/community"
	"github.com/otsyhq/otsy-backend/pkg/utils"
)

// Handler serves the peer support feed.
type Handler struct {
	posts  *community.Service
	logger *zap.Logger
}

func New(posts *community.Service, logger *zap.Logger) *Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Handler{posts: posts, logger: logger}
}

func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Get("/community/posts", h.handleList)
	r.Post("/community/posts", h.handleCreate)
	r.Post("/community/posts/{postID}/like", h.handleLike)
}

func (h *Handler) handleList(w http.ResponseWriter, r *http.Request) {
	utils.RespondJSON(w, http.StatusOK, h.posts.List())
}

func (h *Handler) handleCreate(w http.ResponseWriter, r *http.Request) {
	id, ok := middleware.FromContext(r.Context())
	if !ok {
		utils.RespondError(w, http.StatusUnauthorized, "identity required")
		return
	}

	var payload struct {
		Author  string `json:"author"`
		Tag     string `json:"tag"`
		Title   string `json:"title"`
		Content string `json:"content"`
	}
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		utils.RespondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	post, err := h.posts.Create(r.Context(), id, payload.Author, payload.Tag, payload.Title, payload.Content)
	if err != nil {
		switch {
		case errors.Is(err, community.ErrLoginRequired):
			utils.RespondError(w, http.StatusUnauthorized, err.Error())
		case errors.Is(err, community.ErrEmptyPost):
			utils.RespondError(w, http.StatusBadRequest, err.Error())
		default:
			h.logger.Error("post create failed", zap.Error(err))
			utils.RespondError(w, http.StatusInternalServerError, "could not create post")
		}
		return
	}

	utils.RespondJSON(w, http.StatusCreated, post)
}

func (h *Handler) handleLike(w http.ResponseWriter, r *http.Request) {
	total, err := h.posts.Like(chi.URLParam(r, "postID"))
	if err != nil {
		utils.RespondError(w, http.StatusNotFound, err.Error())
		return
	}
	utils.RespondJSON(w, http.StatusOK, map[string]int{"likes": total})
}
