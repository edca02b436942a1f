package middleware

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"

	"github.com/SammyBolger/NBA-Analytics/pkg/utils"
)

const (
	userIDKey   = "user_id"
	usernameKey = "username"
)

type Claims struct {
	UserID   uint   `json:"user_id"`
	Username string `json:"username"`
	jwt.RegisteredClaims
}

// SessionConfig says where the session token lives and how it is signed.
type SessionConfig struct {
	Secret     string
	CookieName string
	TTL        time.Duration
}

// IssueToken signs a session token for the user.
func IssueToken(cfg SessionConfig, userID uint, username string, now time.Time) (string, time.Time, error) {
	expiresAt := now.Add(cfg.TTL)
	claims := &Claims{
		UserID:   userID,
		Username: username,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(expiresAt),
			IssuedAt:  jwt.NewNumericDate(now),
			Subject:   fmt.Sprintf("%d", userID),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(cfg.Secret))
	if err != nil {
		return "", time.Time{}, fmt.Errorf("failed to sign token: %w", err)
	}
	return signed, expiresAt, nil
}

// SessionAuth rejects requests without a valid session with 401.
func SessionAuth(cfg SessionConfig) gin.HandlerFunc {
	return func(c *gin.Context) {
		tokenString := sessionToken(c, cfg.CookieName)
		if tokenString == "" {
			utils.AbortWithError(c, http.StatusUnauthorized, "Not authenticated")
			return
		}

		claims, err := parseToken(tokenString, cfg.Secret)
		if err != nil {
			utils.AbortWithError(c, http.StatusUnauthorized, "Session expired or invalid")
			return
		}

		setUser(c, claims)
		c.Next()
	}
}

// OptionalSession attaches the user when a valid session is present and
// lets anonymous requests through.
func OptionalSession(cfg SessionConfig) gin.HandlerFunc {
	return func(c *gin.Context) {
		if tokenString := sessionToken(c, cfg.CookieName); tokenString != "" {
			if claims, err := parseToken(tokenString, cfg.Secret); err == nil {
				setUser(c, claims)
			}
		}
		c.Next()
	}
}

// UserID returns the authenticated user id, or 0 for anonymous requests.
func UserID(c *gin.Context) uint {
	if v, ok := c.Get(userIDKey); ok {
		if id, ok := v.(uint); ok {
			return id
		}
	}
	return 0
}

// Username returns the authenticated username, or "".
func Username(c *gin.Context) string {
	return c.GetString(usernameKey)
}

func setUser(c *gin.Context, claims *Claims) {
	c.Set(userIDKey, claims.UserID)
	c.Set(usernameKey, claims.Username)
}

// sessionToken reads the cookie first, then a Bearer header.
func sessionToken(c *gin.Context, cookieName string) string {
	if cookie, err := c.Cookie(cookieName); err == nil && cookie != "" {
		return cookie
	}
	authHeader := c.GetHeader("Authorization")
	if strings.HasPrefix(authHeader, "Bearer ") {
		return strings.TrimSpace(strings.TrimPrefix(authHeader, "Bearer "))
	}
	return ""
}

func parseToken(tokenString, secret string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", token.Header["alg"])
		}
		return []byte(secret), nil
	})
	if err != nil {
		return nil, err
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid || claims.UserID == 0 {
		return nil, errors.New("invalid session claims")
	}
	return claims, nil
}
