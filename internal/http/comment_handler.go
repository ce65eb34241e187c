package http

import (
	"log/slog"
	"net/http"

	"github.com/fjod/sweetshop/internal/comment"
	"github.com/fjod/sweetshop/internal/domain"
	"github.com/fjod/sweetshop/internal/logger"
	"github.com/go-chi/chi/v5"
)

type CommentHandler struct {
	comments *comment.Store
	log      *slog.Logger
}

func NewCommentHandler(comments *comment.Store, log *slog.Logger) *CommentHandler {
	return &CommentHandler{comments: comments, log: logger.OrNop(log)}
}

type AddCommentRequestDTO struct {
	Rating int    `json:"rating"`
	Body   string `json:"body"`
}

func (h *CommentHandler) ListByProduct(w http.ResponseWriter, r *http.Request) {
	comments, err := h.comments.GetCommentsByProductID(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		handleError(w, r, h.log, err)
		return
	}
	if comments == nil {
		comments = []domain.Comment{}
	}
	respondJSON(w, http.StatusOK, comments)
}

func (h *CommentHandler) AddComment(w http.ResponseWriter, r *http.Request) {
	var req AddCommentRequestDTO
	if !decodeJSON(w, r, &req) {
		return
	}
	c, err := h.comments.AddComment(r.Context(), chi.URLParam(r, "id"), req.Rating, req.Body)
	if err != nil {
		handleError(w, r, h.log, err)
		return
	}
	respondJSON(w, http.StatusCreated, c)
}

func (h *CommentHandler) Like(w http.ResponseWriter, r *http.Request) {
	c, err := h.comments.LikeComment(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		handleError(w, r, h.log, err)
		return
	}
	respondJSON(w, http.StatusOK, c)
}

func (h *CommentHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if err := h.comments.DeleteComment(r.Context(), chi.URLParam(r, "id")); err != nil {
		handleError(w, r, h.log, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
