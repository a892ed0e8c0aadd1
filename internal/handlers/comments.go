package handlers

import (
	"log/slog"
	"net/http"

	"technews/internal/repository"
	"technews/internal/services"
	"technews/internal/utils"

	"github.com/gin-gonic/gin"
)

type CommentHandler struct {
	base
	comments *services.CommentService
}

func NewCommentHandler(logger *slog.Logger, comments *services.CommentService) *CommentHandler {
	return &CommentHandler{base: base{logger: logger}, comments: comments}
}

// ListComments GET /api/comments, optionally ?post_id= or ?user_id=
func (h *CommentHandler) ListComments(c *gin.Context) {
	filter := repository.CommentFilter{
		PostID: utils.ParseID(c.Query("post_id")),
		UserID: utils.ParseID(c.Query("user_id")),
	}
	comments, err := h.comments.List(c.Request.Context(), filter)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, comments)
}

// CreateComment POST /api/comments
func (h *CommentHandler) CreateComment(c *gin.Context) {
	var in services.CreateCommentInput
	if !h.bindJSON(c, &in) {
		return
	}
	comment, err := h.comments.Create(c.Request.Context(), identity(c).UserID, in)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, comment)
}

// DeleteComment DELETE /api/comments/:id
func (h *CommentHandler) DeleteComment(c *gin.Context) {
	id, ok := h.pathID(c, "id")
	if !ok {
		return
	}
	if err := h.comments.Delete(c.Request.Context(), identity(c).UserID, id); err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"id": id, "deleted": true})
}
