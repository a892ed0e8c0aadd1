package handlers

import (
	"errors"
	"log/slog"
	"net/http"

	"technews/internal/middleware"
	"technews/internal/services"
	"technews/internal/utils"
	"technews/internal/web"

	"github.com/gin-gonic/gin"
)

// base carries what every handler needs to answer errors.
type base struct {
	logger *slog.Logger
}

// respondError maps a service error onto a status code and JSON body.
func (h *base) respondError(c *gin.Context, err error) {
	var verr *services.ValidationError
	switch {
	case errors.As(err, &verr):
		c.JSON(http.StatusBadRequest, gin.H{"error": "validation failed", "fields": verr.Fields})
	case errors.Is(err, services.ErrInvalidCredentials):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, services.ErrUnauthenticated):
		c.JSON(http.StatusUnauthorized, gin.H{"error": err.Error()})
	case errors.Is(err, services.ErrForbidden):
		c.JSON(http.StatusForbidden, gin.H{"error": err.Error()})
	case errors.Is(err, services.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case errors.Is(err, services.ErrDuplicateVote):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	default:
		h.logger.Error("request failed", "method", c.Request.Method, "path", c.Request.URL.Path, "error", err)
		_ = c.Error(err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
	}
}

// bindJSON decodes the body; a malformed body becomes a ValidationError.
func (h *base) bindJSON(c *gin.Context, dst any) bool {
	if err := c.ShouldBindJSON(dst); err != nil {
		h.respondError(c, &services.ValidationError{Fields: map[string]string{"body": "must be valid JSON: " + err.Error()}})
		return false
	}
	return true
}

// pathID reads a positive numeric path parameter or answers 404.
func (h *base) pathID(c *gin.Context, name string) (uint, bool) {
	id := utils.ParseID(c.Param(name))
	if id == 0 {
		c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
		return 0, false
	}
	return id, true
}

// identity returns the caller set by middleware.AuthRequired.
func identity(c *gin.Context) middleware.Identity {
	id, _ := middleware.CurrentIdentity(c)
	return id
}

// render injects the values every page layout reads.
func render(c *gin.Context, code int, page string, data gin.H) {
	if data == nil {
		data = gin.H{}
	}
	_, loggedIn := middleware.CurrentIdentity(c)
	data["LoggedIn"] = loggedIn
	data["CurrentPath"] = c.Request.URL.Path
	c.HTML(code, page, data)
}

// renderError shows the error page with a status matching err.
func (h *base) renderError(c *gin.Context, err error) {
	code := http.StatusInternalServerError
	message := "Something went wrong."
	switch {
	case errors.Is(err, services.ErrNotFound):
		code, message = http.StatusNotFound, "No post found with this id."
	case errors.Is(err, services.ErrForbidden):
		code, message = http.StatusForbidden, "You can only edit your own posts."
	default:
		h.logger.Error("page failed", "path", c.Request.URL.Path, "error", err)
	}
	render(c, code, web.PageError, gin.H{"Status": code, "Error": message, "Title": http.StatusText(code)})
}
