package handlers

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/SammyBolger/NBA-Analytics/internal/api/middleware"
	"github.com/SammyBolger/NBA-Analytics/internal/models"
	"github.com/SammyBolger/NBA-Analytics/pkg/database"
)

var authSession = middleware.SessionConfig{
	Secret:     "test-secret",
	CookieName: "session_token",
	TTL:        time.Hour,
}

func authRouter(t *testing.T) *gin.Engine {
	db, err := database.NewMemory()
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(models.AllModels()...))
	t.Cleanup(func() { _ = db.Close() })

	r := gin.New()
	NewAuthHandler(db, authSession, false, quietLogger()).RegisterRoutes(&r.RouterGroup)
	return r
}

func sessionCookie(w *httptest.ResponseRecorder) *http.Cookie {
	for _, c := range w.Result().Cookies() {
		if c.Name == authSession.CookieName {
			return c
		}
	}
	return nil
}

func TestSignupLoginMe(t *testing.T) {
	r := authRouter(t)

	w, body := doJSON(t, r, http.MethodPost, "/auth/signup",
		`{"username": "hoops", "email": "Hoops@Example.com", "password": "secret1"}`)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "hoops", body["username"])
	assert.Equal(t, "hoops@example.com", body["email"])
	assert.NotContains(t, w.Body.String(), "password")

	cookie := sessionCookie(w)
	require.NotNil(t, cookie)
	assert.True(t, cookie.HttpOnly)
	assert.Equal(t, http.SameSiteLaxMode, cookie.SameSite)

	req := httptest.NewRequest(http.MethodGet, "/auth/me", nil)
	req.AddCookie(cookie)
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"username":"hoops"`)
	assert.Contains(t, w.Body.String(), "created_at")

	w, _ = doJSON(t, r, http.MethodPost, "/auth/login", `{"email": "hoops@example.com", "password": "secret1"}`)
	require.Equal(t, http.StatusOK, w.Code)
	assert.NotNil(t, sessionCookie(w))

	w, body = doJSON(t, r, http.MethodPost, "/auth/login", `{"email": "hoops@example.com", "password": "wrong-one"}`)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, "Invalid email or password", body["detail"])

	w, body = doJSON(t, r, http.MethodPost, "/auth/login", `{"email": "nobody@example.com", "password": "secret1"}`)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, "Invalid email or password", body["detail"])
}

func TestSignupValidation(t *testing.T) {
	r := authRouter(t)

	w, _ := doJSON(t, r, http.MethodPost, "/auth/signup",
		`{"username": "hoops", "email": "hoops@example.com", "password": "secret1"}`)
	require.Equal(t, http.StatusOK, w.Code)

	tests := []struct {
		name   string
		body   string
		detail string
	}{
		{"short password", `{"username": "a", "email": "a@example.com", "password": "12345"}`, "Password must be at least 6 characters"},
		{"email taken", `{"username": "other", "email": "HOOPS@example.com", "password": "secret1"}`, "Email already registered"},
		{"username taken", `{"username": "hoops", "email": "new@example.com", "password": "secret1"}`, "Username already taken"},
		{"blank username", `{"username": "   ", "email": "b@example.com", "password": "secret1"}`, "Username is required"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w, body := doJSON(t, r, http.MethodPost, "/auth/signup", tt.body)
			assert.Equal(t, http.StatusBadRequest, w.Code)
			assert.Equal(t, tt.detail, body["detail"])
		})
	}

	w, _ = doJSON(t, r, http.MethodPost, "/auth/signup", `{"username": "c", "email": "not-an-email", "password": "secret1"}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestLogoutAndAnonymousMe(t *testing.T) {
	r := authRouter(t)

	w, body := doJSON(t, r, http.MethodPost, "/auth/logout", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "logged out", body["status"])
	cookie := sessionCookie(w)
	require.NotNil(t, cookie)
	assert.True(t, cookie.MaxAge < 0)

	w, _ = doJSON(t, r, http.MethodGet, "/auth/me", "")
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	// A valid token for an account that no longer exists.
	token, _, err := middleware.IssueToken(authSession, 42, "ghost", time.Now())
	require.NoError(t, err)
	req := httptest.NewRequest(http.MethodGet, "/auth/me", strings.NewReader(""))
	req.Header.Set("Authorization", "Bearer "+token)
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}
