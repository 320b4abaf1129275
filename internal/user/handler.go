package user

import (
	"net/http"

	"github.com/srisabarish06/Notoria/internal/auth"
	"github.com/srisabarish06/Notoria/internal/config"
	"github.com/srisabarish06/Notoria/internal/domain"
	"github.com/srisabarish06/Notoria/internal/errors"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
)

// Handler handles HTTP requests for users
type Handler struct {
	service Service
}

// NewHandler creates a new user handler
func NewHandler(service Service) *Handler {
	return &Handler{service: service}
}

// FormRegister represents registration form data
type FormRegister struct {
	Username string `json:"username" binding:"required,min=3,max=64"`
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,min=6"`
}

// FormLogin represents login form data
type FormLogin struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

// Register handles user registration
func (h *Handler) Register(c *gin.Context) {
	var form FormRegister
	if err := c.ShouldBindJSON(&form); err != nil {
		c.Error(errors.NewValidationError(err))
		return
	}

	user := &domain.User{
		Username: form.Username,
		Email:    form.Email,
		Password: form.Password,
	}

	if err := h.service.Register(user); err != nil {
		c.Error(err)
		return
	}

	accessToken, err := h.issueTokens(c, user)
	if err != nil {
		c.Error(errors.Internal(err))
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"user":         user.ToSafeUser(),
		"access_token": accessToken,
	})
}

// Login handles user login
func (h *Handler) Login(c *gin.Context) {
	var form FormLogin
	if err := c.ShouldBindJSON(&form); err != nil {
		c.Error(errors.NewValidationError(err))
		return
	}

	user, err := h.service.Login(form.Email, form.Password)
	if err != nil {
		c.Error(err)
		return
	}

	accessToken, err := h.issueTokens(c, user)
	if err != nil {
		c.Error(errors.Internal(err))
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"user":         user.ToSafeUser(),
		"access_token": accessToken,
	})
}

// issueTokens generates the access token and sets the refresh cookie.
func (h *Handler) issueTokens(c *gin.Context, user *domain.User) (string, error) {
	accessToken, err := auth.GenerateAccessToken(user.ID, user.TokenVersion)
	if err != nil {
		return "", err
	}
	refreshToken, err := auth.GenerateRefreshToken(user.ID, user.TokenVersion)
	if err != nil {
		return "", err
	}

	c.SetCookie(
		"refresh_token",
		refreshToken,
		int(auth.RefreshTokenTTL.Seconds()),
		"/",
		"",
		config.AppConfig.Environment == "production", // Secure
		true, // HttpOnly
	)

	return accessToken, nil
}

// RefreshToken issues a fresh access token from the refresh cookie.
func (h *Handler) RefreshToken(c *gin.Context) {
	refreshToken, err := c.Cookie("refresh_token")
	if err != nil {
		c.Error(errors.Unauthorized("Refresh token required", err))
		return
	}

	token, err := auth.VerifyRefreshToken(refreshToken)
	if err != nil {
		c.Error(errors.Unauthorized("Invalid token or expired!", err))
		return
	}

	userID, tokenVersion, err := auth.GetDataFromToken(token)
	if err != nil {
		c.Error(errors.Unauthorized("Invalid token", err))
		return
	}

	user, err := h.service.GetUserByID(userID)
	if err != nil {
		c.Error(errors.Unauthorized("User not found", err))
		return
	}

	// Check token version
	if user.TokenVersion != tokenVersion {
		c.Error(errors.Unauthorized("Invalid token!", nil))
		return
	}

	newAccessToken, err := auth.GenerateAccessToken(user.ID, user.TokenVersion)
	if err != nil {
		c.Error(errors.Internal(err))
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"access_token": newAccessToken,
	})
}

// Logout invalidates outstanding tokens and clears the refresh cookie.
func (h *Handler) Logout(c *gin.Context) {
	userID := c.GetUint64("user_id")

	if err := h.service.IncreaseTokenVersion(userID); err != nil {
		log.Warn().Err(err).Uint64("user_id", userID).Msg("failed to bump token version")
	}
	c.SetCookie("refresh_token", "", -1, "/", "", true, true)
	c.Status(http.StatusNoContent)
}

// GetProfile handles getting the current user's profile
func (h *Handler) GetProfile(c *gin.Context) {
	userID, exists := c.Get("user_id")
	if !exists {
		c.Error(errors.Unauthorized("user not found", nil))
		return
	}

	user, err := h.service.GetUserByID(userID.(uint64))
	if err != nil {
		c.Error(errors.NotFound("User not found", err))
		return
	}

	c.JSON(http.StatusOK, user.ToSafeUser())
}
