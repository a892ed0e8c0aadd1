package handlers

import (
	"log/slog"
	"net/http"

	"technews/internal/config"
	"technews/internal/middleware"
	"technews/internal/models"
	"technews/internal/services"

	"github.com/gin-gonic/gin"
)

type UserHandler struct {
	base
	cfg   config.Config
	users *services.UserService
}

func NewUserHandler(cfg config.Config, logger *slog.Logger, users *services.UserService) *UserHandler {
	return &UserHandler{base: base{logger: logger}, cfg: cfg, users: users}
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// ListUsers GET /api/users
func (h *UserHandler) ListUsers(c *gin.Context) {
	users, err := h.users.List(c.Request.Context())
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, users)
}

// GetUser GET /api/users/:id
func (h *UserHandler) GetUser(c *gin.Context) {
	id, ok := h.pathID(c, "id")
	if !ok {
		return
	}
	user, err := h.users.Get(c.Request.Context(), id)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, user)
}

// Register POST /api/users. Signing up also logs the new user in.
func (h *UserHandler) Register(c *gin.Context) {
	var in services.RegisterInput
	if !h.bindJSON(c, &in) {
		return
	}
	user, err := h.users.Register(c.Request.Context(), in)
	if err != nil {
		h.respondError(c, err)
		return
	}
	if err := middleware.StartSession(c, user, h.cfg.SessionTTL); err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, models.NewUserView(user))
}

// Login POST /api/users/login
func (h *UserHandler) Login(c *gin.Context) {
	var req loginRequest
	if !h.bindJSON(c, &req) {
		return
	}
	user, err := h.users.Authenticate(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		h.respondError(c, err)
		return
	}
	if err := middleware.StartSession(c, user, h.cfg.SessionTTL); err != nil {
		h.respondError(c, err)
		return
	}
	h.logger.Info("user logged in", "user_id", user.ID)
	c.JSON(http.StatusOK, gin.H{"user": models.NewUserView(user), "message": "You are now logged in!"})
}

// Logout POST /api/users/logout
func (h *UserHandler) Logout(c *gin.Context) {
	ended, err := middleware.EndSession(c)
	if err != nil {
		h.respondError(c, err)
		return
	}
	if !ended {
		c.Status(http.StatusNotFound)
		return
	}
	c.Status(http.StatusNoContent)
}

// UpdateUser PUT /api/users/:id
func (h *UserHandler) UpdateUser(c *gin.Context) {
	id, ok := h.pathID(c, "id")
	if !ok {
		return
	}
	var in services.UpdateUserInput
	if !h.bindJSON(c, &in) {
		return
	}
	user, err := h.users.Update(c.Request.Context(), identity(c).UserID, id, in)
	if err != nil {
		h.respondError(c, err)
		return
	}
	// keep the displayed name in the session current
	if err := middleware.StartSession(c, user, h.cfg.SessionTTL); err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, models.NewUserView(user))
}

// DeleteUser DELETE /api/users/:id
func (h *UserHandler) DeleteUser(c *gin.Context) {
	id, ok := h.pathID(c, "id")
	if !ok {
		return
	}
	if err := h.users.Delete(c.Request.Context(), identity(c).UserID, id); err != nil {
		h.respondError(c, err)
		return
	}
	if _, err := middleware.EndSession(c); err != nil {
		h.logger.Warn("could not clear session after account deletion", "error", err)
	}
	c.JSON(http.StatusOK, gin.H{"id": id, "deleted": true})
}
