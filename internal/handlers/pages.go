package handlers

import (
	"log/slog"
	"net/http"

	"technews/internal/middleware"
	"technews/internal/repository"
	"technews/internal/services"
	"technews/internal/utils"
	"technews/internal/web"

	"github.com/gin-gonic/gin"
)

// PageHandler serves the server-rendered HTML pages.
type PageHandler struct {
	base
	posts *services.PostService
	votes *services.VoteService
}

func NewPageHandler(logger *slog.Logger, posts *services.PostService, votes *services.VoteService) *PageHandler {
	return &PageHandler{base: base{logger: logger}, posts: posts, votes: votes}
}

// Home GET /
func (h *PageHandler) Home(c *gin.Context) {
	posts, err := h.posts.List(c.Request.Context(), repository.PostFilter{})
	if err != nil {
		h.renderError(c, err)
		return
	}
	render(c, http.StatusOK, web.PageHome, gin.H{"Posts": posts})
}

// SinglePost GET /post/:id
func (h *PageHandler) SinglePost(c *gin.Context) {
	id, ok := h.pagePathID(c)
	if !ok {
		return
	}
	ctx := c.Request.Context()
	post, err := h.posts.Get(ctx, id)
	if err != nil {
		h.renderError(c, err)
		return
	}

	hasVoted := false
	if me, ok := middleware.CurrentIdentity(c); ok {
		if hasVoted, err = h.votes.HasVoted(ctx, me.UserID, id); err != nil {
			h.renderError(c, err)
			return
		}
	}
	render(c, http.StatusOK, web.PageSinglePost, gin.H{"Post": post, "HasVoted": hasVoted, "Title": post.Title})
}

// LoginPage GET /login sends logged-in users back to the front page.
func (h *PageHandler) LoginPage(c *gin.Context) {
	if _, ok := middleware.CurrentIdentity(c); ok {
		c.Redirect(http.StatusFound, "/")
		return
	}
	render(c, http.StatusOK, web.PageLogin, gin.H{"Title": "Login"})
}

// Dashboard GET /dashboard lists the session user's own posts.
func (h *PageHandler) Dashboard(c *gin.Context) {
	posts, err := h.posts.List(c.Request.Context(), repository.PostFilter{UserID: identity(c).UserID})
	if err != nil {
		h.renderError(c, err)
		return
	}
	render(c, http.StatusOK, web.PageDashboard, gin.H{"Posts": posts, "Title": "Dashboard"})
}

// EditPost GET /dashboard/edit/:id, author only.
func (h *PageHandler) EditPost(c *gin.Context) {
	id, ok := h.pagePathID(c)
	if !ok {
		return
	}
	post, err := h.posts.Get(c.Request.Context(), id)
	if err != nil {
		h.renderError(c, err)
		return
	}
	if post.UserID != identity(c).UserID {
		h.renderError(c, services.ErrForbidden)
		return
	}
	render(c, http.StatusOK, web.PageEditPost, gin.H{"Post": post, "Title": "Edit Post"})
}

func (h *PageHandler) pagePathID(c *gin.Context) (uint, bool) {
	id := utils.ParseID(c.Param("id"))
	if id == 0 {
		h.renderError(c, services.ErrNotFound)
		return 0, false
	}
	return id, true
}
