package handlers

import (
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"technews/internal/repository"
	"technews/internal/services"

	"github.com/gin-gonic/gin"
)

type PostHandler struct {
	base
	posts *services.PostService
	votes *services.VoteService
}

func NewPostHandler(logger *slog.Logger, posts *services.PostService, votes *services.VoteService) *PostHandler {
	return &PostHandler{base: base{logger: logger}, posts: posts, votes: votes}
}

// flexID decodes an id sent either as a JSON number or a numeric string.
type flexID uint

func (f *flexID) UnmarshalJSON(b []byte) error {
	s := strings.TrimSpace(string(b))
	if s == "null" {
		return nil
	}
	s = strings.Trim(s, `"`)
	n, err := strconv.ParseUint(s, 10, 64)
	if err != nil || n == 0 {
		return fmt.Errorf("invalid id %q", s)
	}
	*f = flexID(n)
	return nil
}

type upvoteRequest struct {
	PostID flexID `json:"post_id"`
}

// ListPosts GET /api/posts
func (h *PostHandler) ListPosts(c *gin.Context) {
	posts, err := h.posts.List(c.Request.Context(), repository.PostFilter{})
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, posts)
}

// GetPost GET /api/posts/:id
func (h *PostHandler) GetPost(c *gin.Context) {
	id, ok := h.pathID(c, "id")
	if !ok {
		return
	}
	post, err := h.posts.Get(c.Request.Context(), id)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, post)
}

// CreatePost POST /api/posts. The author is always the session user.
func (h *PostHandler) CreatePost(c *gin.Context) {
	var in services.CreatePostInput
	if !h.bindJSON(c, &in) {
		return
	}
	post, err := h.posts.Create(c.Request.Context(), identity(c).UserID, in)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, post)
}

// Upvote PUT /api/posts/upvote records the session user's vote and returns
// the post with its refreshed count.
func (h *PostHandler) Upvote(c *gin.Context) {
	var req upvoteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.respondError(c, &services.ValidationError{Fields: map[string]string{"post_id": "must be a positive integer"}})
		return
	}

	ctx := c.Request.Context()
	postID := uint(req.PostID)
	if _, err := h.votes.Cast(ctx, identity(c).UserID, postID); err != nil {
		h.respondError(c, err)
		return
	}
	post, err := h.posts.Get(ctx, postID)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, post)
}

// UpdatePost PUT /api/posts/:id changes the title only.
func (h *PostHandler) UpdatePost(c *gin.Context) {
	id, ok := h.pathID(c, "id")
	if !ok {
		return
	}
	var in services.UpdatePostInput
	if !h.bindJSON(c, &in) {
		return
	}
	post, err := h.posts.UpdateTitle(c.Request.Context(), identity(c).UserID, id, in)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, post)
}

// DeletePost DELETE /api/posts/:id
func (h *PostHandler) DeletePost(c *gin.Context) {
	id, ok := h.pathID(c, "id")
	if !ok {
		return
	}
	if err := h.posts.Delete(c.Request.Context(), identity(c).UserID, id); err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"id": id, "deleted": true})
}
