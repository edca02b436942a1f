package handlers

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/SammyBolger/NBA-Analytics/internal/api/middleware"
	"github.com/SammyBolger/NBA-Analytics/internal/models"
	"github.com/SammyBolger/NBA-Analytics/pkg/database"
	"github.com/SammyBolger/NBA-Analytics/pkg/utils"
)

const minPasswordLength = 6

type AuthHandler struct {
	db      *database.DB
	session middleware.SessionConfig
	secure  bool
	logger  *logrus.Logger
}

type SignupRequest struct {
	Username string `json:"username" binding:"required"`
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

type LoginRequest struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

func NewAuthHandler(db *database.DB, session middleware.SessionConfig, secureCookies bool, logger *logrus.Logger) *AuthHandler {
	return &AuthHandler{
		db:      db,
		session: session,
		secure:  secureCookies,
		logger:  logger,
	}
}

// RegisterRoutes registers all auth routes
func (h *AuthHandler) RegisterRoutes(group *gin.RouterGroup) {
	auth := group.Group("/auth")
	{
		auth.POST("/signup", h.Signup)
		auth.POST("/login", h.Login)
		auth.POST("/logout", h.Logout)
		auth.GET("/me", middleware.SessionAuth(h.session), h.Me)
	}
}

// Signup creates an account and starts a session
// POST /auth/signup
func (h *AuthHandler) Signup(c *gin.Context) {
	var req SignupRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.SendBadRequest(c, "Invalid request body: "+err.Error())
		return
	}
	req.Username = strings.TrimSpace(req.Username)
	if req.Username == "" {
		utils.SendBadRequest(c, "Username is required")
		return
	}
	if len(req.Password) < minPasswordLength {
		utils.SendBadRequest(c, "Password must be at least 6 characters")
		return
	}

	if _, err := models.GetUserByEmail(h.db, req.Email); err == nil {
		utils.SendBadRequest(c, "Email already registered")
		return
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		h.logger.WithError(err).Error("Failed to check existing email")
		utils.SendInternalError(c, "Failed to create account")
		return
	}
	if _, err := models.GetUserByUsername(h.db, req.Username); err == nil {
		utils.SendBadRequest(c, "Username already taken")
		return
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		h.logger.WithError(err).Error("Failed to check existing username")
		utils.SendInternalError(c, "Failed to create account")
		return
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		h.logger.WithError(err).Error("Failed to hash password")
		utils.SendInternalError(c, "Failed to create account")
		return
	}

	user, err := models.CreateUser(h.db, req.Username, req.Email, string(hash))
	if err != nil {
		// Lost a race with a concurrent signup for the same name or email.
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			utils.SendBadRequest(c, "Email already registered")
			return
		}
		h.logger.WithError(err).Error("Failed to create user")
		utils.SendInternalError(c, "Failed to create account")
		return
	}

	if !h.startSession(c, user) {
		return
	}
	h.logger.WithField("user_id", user.ID).Info("User signed up")

	c.JSON(http.StatusOK, gin.H{
		"id":       user.ID,
		"username": user.Username,
		"email":    user.Email,
	})
}

// Login verifies credentials and starts a session
// POST /auth/login
func (h *AuthHandler) Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.SendBadRequest(c, "Invalid request body: "+err.Error())
		return
	}

	user, err := models.GetUserByEmail(h.db, req.Email)
	if err != nil {
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			h.logger.WithError(err).Error("Failed to look up user")
			utils.SendInternalError(c, "Failed to log in")
			return
		}
		utils.SendUnauthorized(c, "Invalid email or password")
		return
	}
	if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)) != nil {
		utils.SendUnauthorized(c, "Invalid email or password")
		return
	}

	if !h.startSession(c, user) {
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"id":       user.ID,
		"username": user.Username,
		"email":    user.Email,
	})
}

// Logout clears the session cookie
// POST /auth/logout
func (h *AuthHandler) Logout(c *gin.Context) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(h.session.CookieName, "", -1, "/", "", h.secure, true)
	c.JSON(http.StatusOK, gin.H{"status": "logged out"})
}

// Me returns the account behind the current session
// GET /auth/me
func (h *AuthHandler) Me(c *gin.Context) {
	user, err := models.GetUserByID(h.db, middleware.UserID(c))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			utils.SendUnauthorized(c, "Not authenticated")
			return
		}
		h.logger.WithError(err).Error("Failed to load current user")
		utils.SendInternalError(c, "Failed to load user")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"id":         user.ID,
		"username":   user.Username,
		"email":      user.Email,
		"created_at": user.CreatedAt,
	})
}

func (h *AuthHandler) startSession(c *gin.Context, user *models.User) bool {
	token, expiresAt, err := middleware.IssueToken(h.session, user.ID, user.Username, time.Now())
	if err != nil {
		h.logger.WithError(err).Error("Failed to issue session token")
		utils.SendInternalError(c, "Failed to start session")
		return false
	}

	maxAge := int(time.Until(expiresAt).Seconds())
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(h.session.CookieName, token, maxAge, "/", "", h.secure, true)
	return true
}
