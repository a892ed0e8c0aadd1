package middleware

import (
	"net/http"
	"time"

	"technews/internal/models"
	"technews/internal/services"

	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"
)

// Session keys
const (
	sessionUserID    = "user_id"
	sessionUsername  = "username"
	sessionLoggedIn  = "logged_in"
	sessionExpiresAt = "expires_at"
)

// IdentityKey holds the resolved Identity in the gin context.
const IdentityKey = "identity"

// Identity is the authenticated caller of a request.
type Identity struct {
	UserID   uint
	Username string
}

// RequireAuth resolves the caller from the session. A missing, incomplete
// or expired session yields services.ErrUnauthenticated; an expired one is
// also cleared.
func RequireAuth(c *gin.Context) (Identity, error) {
	session := sessions.Default(c)

	loggedIn, _ := session.Get(sessionLoggedIn).(bool)
	userID := toUint(session.Get(sessionUserID))
	if !loggedIn || userID == 0 {
		return Identity{}, services.ErrUnauthenticated
	}

	if expiresAt := toInt64(session.Get(sessionExpiresAt)); expiresAt != 0 && time.Now().Unix() >= expiresAt {
		session.Clear()
		_ = session.Save()
		return Identity{}, services.ErrUnauthenticated
	}

	username, _ := session.Get(sessionUsername).(string)
	return Identity{UserID: userID, Username: username}, nil
}

// StartSession marks the request's session as logged in as user for ttl.
func StartSession(c *gin.Context, user *models.User, ttl time.Duration) error {
	session := sessions.Default(c)
	session.Clear()
	session.Set(sessionUserID, user.ID)
	session.Set(sessionUsername, user.Username)
	session.Set(sessionLoggedIn, true)
	session.Set(sessionExpiresAt, time.Now().Add(ttl).Unix())
	return session.Save()
}

// EndSession destroys the session. It reports false when nobody was logged in.
func EndSession(c *gin.Context) (bool, error) {
	session := sessions.Default(c)
	if loggedIn, _ := session.Get(sessionLoggedIn).(bool); !loggedIn {
		return false, nil
	}
	session.Clear()
	session.Options(sessions.Options{Path: "/", MaxAge: -1})
	return true, session.Save()
}

// AuthRequired guards API routes: 401 JSON without a valid session.
func AuthRequired() gin.HandlerFunc {
	return func(c *gin.Context) {
		identity, err := RequireAuth(c)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": err.Error()})
			return
		}
		c.Set(IdentityKey, identity)
		c.Next()
	}
}

// PageAuthRequired guards HTML pages: redirect to /login without a valid session.
func PageAuthRequired() gin.HandlerFunc {
	return func(c *gin.Context) {
		identity, err := RequireAuth(c)
		if err != nil {
			c.Redirect(http.StatusFound, "/login")
			c.Abort()
			return
		}
		c.Set(IdentityKey, identity)
		c.Next()
	}
}

// LoadIdentity sets the identity for public routes when a session exists.
func LoadIdentity() gin.HandlerFunc {
	return func(c *gin.Context) {
		if identity, err := RequireAuth(c); err == nil {
			c.Set(IdentityKey, identity)
		}
		c.Next()
	}
}

// CurrentIdentity returns the identity stored by one of the guards above.
func CurrentIdentity(c *gin.Context) (Identity, bool) {
	v, ok := c.Get(IdentityKey)
	if !ok {
		return Identity{}, false
	}
	identity, ok := v.(Identity)
	return identity, ok
}

func toUint(v any) uint {
	switch n := v.(type) {
	case uint:
		return n
	case uint64:
		return uint(n)
	case int:
		if n > 0 {
			return uint(n)
		}
	case int64:
		if n > 0 {
			return uint(n)
		}
	case float64:
		if n > 0 {
			return uint(n)
		}
	}
	return 0
}

func toInt64(v any) int64 {
	switch n := v.(type) {
	case int64:
		return n
	case int:
		return int64(n)
	case float64:
		return int64(n)
	}
	return 0
}
