package router

import (
	"fmt"
	"log/slog"
	"net/http"

	"technews/internal/config"
	"technews/internal/handlers"
	"technews/internal/metrics"
	"technews/internal/middleware"
	"technews/internal/web"

	"github.com/gin-contrib/sessions"
	"github.com/gin-contrib/sessions/cookie"
	"github.com/gin-gonic/gin"
)

// New builds the engine: global middleware, sessions, templates and routes.
func New(cfg config.Config, logger *slog.Logger, h *handlers.Handlers, loginLimiter *middleware.IPRateLimiter) (*gin.Engine, error) {
	r := gin.New()
	r.Use(gin.Recovery(), middleware.RequestLogger(logger), metrics.Middleware())

	store := cookie.NewStore([]byte(cfg.SessionSecret))
	store.Options(sessions.Options{
		Path:     "/",
		MaxAge:   int(cfg.SessionTTL.Seconds()),
		HttpOnly: true,
		Secure:   cfg.IsProduction(),
		SameSite: http.SameSiteLaxMode,
	})
	r.Use(sessions.Sessions(cfg.SessionName, store))

	renderer, err := web.Renderer()
	if err != nil {
		return nil, fmt.Errorf("load templates: %w", err)
	}
	r.HTMLRender = renderer
	r.StaticFS("/static", web.Static())

	RegisterRoutes(r, h, loginLimiter)
	return r, nil
}

func RegisterRoutes(r *gin.Engine, h *handlers.Handlers, loginLimiter *middleware.IPRateLimiter) {
	auth := middleware.AuthRequired()
	limit := middleware.RateLimit(loginLimiter)

	r.GET("/health", h.Health.Health)
	r.GET("/metrics", gin.WrapH(metrics.Handler()))

	// Pages
	pages := r.Group("/")
	pages.Use(middleware.LoadIdentity())
	{
		pages.GET("", h.Pages.Home)
		pages.GET("/post/:id", h.Pages.SinglePost)
		pages.GET("/login", h.Pages.LoginPage)
	}

	dashboard := r.Group("/dashboard")
	dashboard.Use(middleware.PageAuthRequired())
	{
		dashboard.GET("", h.Pages.Dashboard)
		dashboard.GET("/edit/:id", h.Pages.EditPost)
	}

	api := r.Group("/api")

	users := api.Group("/users")
	{
		users.GET("", h.Users.ListUsers)
		users.GET("/:id", h.Users.GetUser)
		users.POST("", limit, h.Users.Register)
		users.POST("/login", limit, h.Users.Login)
		users.POST("/logout", h.Users.Logout)
		users.PUT("/:id", auth, h.Users.UpdateUser)
		users.DELETE("/:id", auth, h.Users.DeleteUser)
	}

	posts := api.Group("/posts")
	{
		posts.GET("", h.Posts.ListPosts)
		posts.GET("/:id", h.Posts.GetPost)
		posts.POST("", auth, h.Posts.CreatePost)
		posts.PUT("/upvote", auth, h.Posts.Upvote)
		posts.PUT("/:id", auth, h.Posts.UpdatePost)
		posts.DELETE("/:id", auth, h.Posts.DeletePost)
	}

	comments := api.Group("/comments")
	{
		comments.GET("", h.Comments.ListComments)
		comments.POST("", auth, h.Comments.CreateComment)
		comments.DELETE("/:id", auth, h.Comments.DeleteComment)
	}
}
