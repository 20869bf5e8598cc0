package auth

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/rs/zerolog"
	"github.com/thev1ndu/xp/config"
	"github.com/thev1ndu/xp/types"
	"golang.org/x/crypto/bcrypt"
)

const (
	// SessionCookie is the name of the site session cookie
	SessionCookie = "xpshop_session"
	// ClaimsKey is the gin context key holding the session claims
	ClaimsKey = "session_claims"

	sessionSubject = "site"
	loginPath      = "/login"
)

// Claims represents the session token claims
type Claims struct {
	jwt.RegisteredClaims
}

// SessionManager guards the site behind a single shared password.
// A successful login is remembered in a signed HttpOnly cookie.
type SessionManager struct {
	secret       []byte
	passwordHash []byte
	ttl          time.Duration
	secureCookie bool
	logger       zerolog.Logger
}

// NewSessionManager creates a session manager from site configuration.
// A plain password is hashed once here so it is never compared directly.
func NewSessionManager(cfg config.SiteConfig, logger zerolog.Logger) (*SessionManager, error) {
	if cfg.SessionSecret == "" {
		return nil, errors.New("session secret is required")
	}

	hash := []byte(cfg.PasswordHash)
	if len(hash) == 0 {
		if cfg.Password == "" {
			return nil, errors.New("site password or password hash is required")
		}
		generated, err := bcrypt.GenerateFromPassword([]byte(cfg.Password), bcrypt.DefaultCost)
		if err != nil {
			return nil, fmt.Errorf("failed to hash site password: %w", err)
		}
		hash = generated
	} else if _, err := bcrypt.Cost(hash); err != nil {
		return nil, fmt.Errorf("invalid site password hash: %w", err)
	}

	ttl := cfg.SessionTTL
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}

	return &SessionManager{
		secret:       []byte(cfg.SessionSecret),
		passwordHash: hash,
		ttl:          ttl,
		secureCookie: cfg.SecureCookie,
		logger:       logger.With().Str("component", "session").Logger(),
	}, nil
}

// HashPassword returns a bcrypt hash suitable for site.password_hash
func HashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

// CheckPassword reports whether password is the site password
func (m *SessionManager) CheckPassword(password string) bool {
	return bcrypt.CompareHashAndPassword(m.passwordHash, []byte(password)) == nil
}

// GenerateToken issues a signed session token
func (m *SessionManager) GenerateToken() (string, error) {
	now := time.Now()
	claims := &Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   sessionSubject,
			ExpiresAt: jwt.NewNumericDate(now.Add(m.ttl)),
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(m.secret)
}

// ParseToken validates a session token and returns its claims
func (m *SessionManager) ParseToken(tokenString string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return m.secret, nil
	})
	if err != nil {
		return nil, err
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid || claims.Subject != sessionSubject {
		return nil, errors.New("invalid session claims")
	}
	return claims, nil
}

// Login checks password and, on success, sets the session cookie
func (m *SessionManager) Login(c *gin.Context, password string) bool {
	if !m.CheckPassword(password) {
		m.logger.Warn().Str("client_ip", c.ClientIP()).Msg("Failed login attempt")
		return false
	}

	token, err := m.GenerateToken()
	if err != nil {
		m.logger.Error().Err(err).Msg("Failed to sign session token")
		return false
	}

	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(SessionCookie, token, int(m.ttl.Seconds()), "/", "", m.secureCookie, true)
	return true
}

// Logout clears the session cookie
func (m *SessionManager) Logout(c *gin.Context) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(SessionCookie, "", -1, "/", "", m.secureCookie, true)
}

// Authenticated reports whether the request carries a valid session cookie
func (m *SessionManager) Authenticated(c *gin.Context) bool {
	cookie, err := c.Cookie(SessionCookie)
	if err != nil || cookie == "" {
		return false
	}
	_, err = m.ParseToken(cookie)
	return err == nil
}

// Middleware rejects requests without a valid session. API calls get a 401
// JSON body; page requests are redirected to the login form.
func (m *SessionManager) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		cookie, err := c.Cookie(SessionCookie)
		if err != nil || cookie == "" {
			m.reject(c, "Missing session cookie")
			return
		}

		claims, err := m.ParseToken(cookie)
		if err != nil {
			m.logger.Warn().Err(err).Str("path", c.Request.URL.Path).Msg("Invalid session token")
			m.reject(c, "Invalid or expired session")
			return
		}

		c.Set(ClaimsKey, claims)
		c.Next()
	}
}

func (m *SessionManager) reject(c *gin.Context, reason string) {
	if wantsJSON(c) {
		c.AbortWithStatusJSON(http.StatusUnauthorized, types.ErrorResponse{
			Error: reason,
			Code:  http.StatusUnauthorized,
		})
		return
	}
	c.Redirect(http.StatusFound, loginPath)
	c.Abort()
}

func wantsJSON(c *gin.Context) bool {
	path := c.Request.URL.Path
	return path == "/buy_xp" || strings.HasPrefix(path, "/api/")
}

// GetClaims extracts session claims from context
func GetClaims(c *gin.Context) (*Claims, bool) {
	claims, exists := c.Get(ClaimsKey)
	if !exists {
		return nil, false
	}
	claimsObj, ok := claims.(*Claims)
	return claimsObj, ok
}
