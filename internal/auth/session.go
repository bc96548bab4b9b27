package auth

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"go.uber.org/zap"
)

const sessionContextKey = "session"

var ErrNoSession = errors.New("no session")

// Session identifies the signed-in user for the duration of a request.
type Session struct {
	UserID string
	Email  string
}

type claims struct {
	Email string `json:"email,omitempty"`
	jwt.RegisteredClaims
}

// Manager issues and verifies HS256 session tokens.
type Manager struct {
	secret     []byte
	cookieName string
	ttl        time.Duration
	now        func() time.Time
}

func NewManager(secret, cookieName string, ttl time.Duration) *Manager {
	return &Manager{
		secret:     []byte(secret),
		cookieName: cookieName,
		ttl:        ttl,
		now:        time.Now,
	}
}

func (m *Manager) Issue(userID, email string) (string, error) {
	if userID == "" {
		return "", errors.New("user id is required")
	}
	now := m.now()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims{
		Email: email,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(m.ttl)),
		},
	})
	return token.SignedString(m.secret)
}

func (m *Manager) Parse(raw string) (Session, error) {
	var c claims
	_, err := jwt.ParseWithClaims(raw, &c, func(*jwt.Token) (interface{}, error) {
		return m.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(m.now),
	)
	if err != nil {
		return Session{}, fmt.Errorf("parse session token: %w", err)
	}
	if c.Subject == "" {
		return Session{}, errors.New("session token has no subject")
	}
	return Session{UserID: c.Subject, Email: c.Email}, nil
}

// tokenFromRequest prefers the session cookie and falls back to a bearer token.
func (m *Manager) tokenFromRequest(r *http.Request) string {
	if cookie, err := r.Cookie(m.cookieName); err == nil && cookie.Value != "" {
		return cookie.Value
	}
	parts := strings.SplitN(r.Header.Get("Authorization"), " ", 2)
	if len(parts) == 2 && strings.EqualFold(parts[0], "Bearer") {
		return strings.TrimSpace(parts[1])
	}
	return ""
}

// Middleware attaches the session when the request carries a valid token.
// It never rejects: handlers decide between 401 and other statuses.
func (m *Manager) Middleware(logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		if raw := m.tokenFromRequest(c.Request); raw != "" {
			session, err := m.Parse(raw)
			if err != nil {
				logger.Debug("Ignoring invalid session token",
					zap.Error(err),
					zap.String("path", c.Request.URL.Path))
			} else {
				c.Set(sessionContextKey, session)
			}
		}
		c.Next()
	}
}

func SessionFromContext(c *gin.Context) (Session, bool) {
	val, ok := c.Get(sessionContextKey)
	if !ok {
		return Session{}, false
	}
	session, ok := val.(Session)
	return session, ok && session.UserID != ""
}

// RequireSession aborts with 401 when no session is attached.
func RequireSession() gin.HandlerFunc {
	return func(c *gin.Context) {
		if _, ok := SessionFromContext(c); !ok {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
			return
		}
		c.Next()
	}
}
