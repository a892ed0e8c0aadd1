package middleware

import (
	"context"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"technews/internal/models"

	"github.com/gin-contrib/sessions"
	"github.com/gin-contrib/sessions/cookie"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/time/rate"
)

func newSessionRouter(ttl time.Duration) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(sessions.Sessions("test_session", cookie.NewStore([]byte("test-secret"))))

	r.POST("/login", func(c *gin.Context) {
		user := &models.User{ID: 7, Username: "ada"}
		if err := StartSession(c, user, ttl); err != nil {
			c.Status(http.StatusInternalServerError)
			return
		}
		c.Status(http.StatusOK)
	})
	r.POST("/logout", func(c *gin.Context) {
		ended, err := EndSession(c)
		switch {
		case err != nil:
			c.Status(http.StatusInternalServerError)
		case !ended:
			c.Status(http.StatusNotFound)
		default:
			c.Status(http.StatusNoContent)
		}
	})
	r.GET("/api/me", AuthRequired(), func(c *gin.Context) {
		identity, _ := CurrentIdentity(c)
		c.JSON(http.StatusOK, gin.H{"user_id": identity.UserID, "username": identity.Username})
	})
	r.GET("/dashboard", PageAuthRequired(), func(c *gin.Context) {
		c.String(http.StatusOK, "dashboard")
	})
	r.GET("/", LoadIdentity(), func(c *gin.Context) {
		_, ok := CurrentIdentity(c)
		c.JSON(http.StatusOK, gin.H{"logged_in": ok})
	})
	return r
}

func perform(r *gin.Engine, method, path string, cookies []*http.Cookie) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, nil)
	for _, ck := range cookies {
		req.AddCookie(ck)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestAuthRequired_WithoutSession(t *testing.T) {
	r := newSessionRouter(time.Hour)

	w := perform(r, http.MethodGet, "/api/me", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.JSONEq(t, `{"error":"authentication required"}`, w.Body.String())

	w = perform(r, http.MethodGet, "/dashboard", nil)
	assert.Equal(t, http.StatusFound, w.Code)
	assert.Equal(t, "/login", w.Header().Get("Location"))
}

func TestAuthRequired_WithSession(t *testing.T) {
	r := newSessionRouter(time.Hour)

	login := perform(r, http.MethodPost, "/login", nil)
	require.Equal(t, http.StatusOK, login.Code)
	cookies := login.Result().Cookies()
	require.NotEmpty(t, cookies)

	w := perform(r, http.MethodGet, "/api/me", cookies)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"user_id":7,"username":"ada"}`, w.Body.String())

	w = perform(r, http.MethodGet, "/dashboard", cookies)
	assert.Equal(t, http.StatusOK, w.Code)

	w = perform(r, http.MethodGet, "/", cookies)
	assert.JSONEq(t, `{"logged_in":true}`, w.Body.String())
}

func TestAuthRequired_ExpiredSession(t *testing.T) {
	r := newSessionRouter(-time.Minute)

	login := perform(r, http.MethodPost, "/login", nil)
	require.Equal(t, http.StatusOK, login.Code)

	w := perform(r, http.MethodGet, "/api/me", login.Result().Cookies())
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestEndSession(t *testing.T) {
	r := newSessionRouter(time.Hour)

	w := perform(r, http.MethodPost, "/logout", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)

	login := perform(r, http.MethodPost, "/login", nil)
	w = perform(r, http.MethodPost, "/logout", login.Result().Cookies())
	assert.Equal(t, http.StatusNoContent, w.Code)

	w = perform(r, http.MethodGet, "/", nil)
	assert.JSONEq(t, `{"logged_in":false}`, w.Body.String())
}

func TestRateLimit(t *testing.T) {
	gin.SetMode(gin.TestMode)
	limiter := NewIPRateLimiter(rate.Every(time.Hour), 2, slog.New(slog.DiscardHandler))

	r := gin.New()
	r.POST("/login", RateLimit(limiter), func(c *gin.Context) { c.Status(http.StatusOK) })

	assert.Equal(t, http.StatusOK, perform(r, http.MethodPost, "/login", nil).Code)
	assert.Equal(t, http.StatusOK, perform(r, http.MethodPost, "/login", nil).Code)
	assert.Equal(t, http.StatusTooManyRequests, perform(r, http.MethodPost, "/login", nil).Code)
}

func TestIPRateLimiter_Cleanup(t *testing.T) {
	limiter := NewIPRateLimiter(1, 1, slog.New(slog.DiscardHandler))
	first := limiter.GetLimiter("10.0.0.1")
	assert.Same(t, first, limiter.GetLimiter("10.0.0.1"))

	limiter.visitors["10.0.0.1"].lastSeen = time.Now().Add(-time.Hour)
	assert.Equal(t, 1, limiter.cleanup(time.Minute))
	assert.NotSame(t, first, limiter.GetLimiter("10.0.0.1"))

	ctx, cancel := context.WithCancel(context.Background())
	limiter.StartCleanup(ctx, time.Millisecond)
	cancel()
}
