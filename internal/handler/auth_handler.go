package handler

import (
	"net/http"

	"clinical-records-backend/internal/config"
	"clinical-records-backend/internal/middleware"
	"clinical-records-backend/internal/models"
	"clinical-records-backend/internal/service"
	"clinical-records-backend/pkg/utils"

	"github.com/gin-gonic/gin"
)

type AuthHandler struct {
	authService *service.AuthService
	cfg         *config.Config
}

func NewAuthHandler(authService *service.AuthService, cfg *config.Config) *AuthHandler {
	return &AuthHandler{
		authService: authService,
		cfg:         cfg,
	}
}

type CredentialsRequest struct {
	ExternalID string `json:"externalId" binding:"required"`
	Password   string `json:"password" binding:"required"`
}

// Signup registers a new authority account and logs it in. Authorities are
// the only self-registered role; patients and hospitals are provisioned.
func (h *AuthHandler) Signup(c *gin.Context) {
	var req CredentialsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.ErrorResponse(c, http.StatusBadRequest, "externalId and password are required")
		return
	}

	response, err := h.authService.RegisterAuthority(req.ExternalID, req.Password)
	if err != nil {
		utils.ErrorFrom(c, err)
		return
	}

	h.setSessionCookie(c, response.Token)
	utils.CreatedResponse(c, gin.H{
		"userId":   response.SubjectID,
		"userType": response.Role,
	})
}

// Login returns a role-bound login handler. One generic failure covers
// unknown id and wrong password alike.
func (h *AuthHandler) Login(role models.Role) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req CredentialsRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			utils.ErrorResponse(c, http.StatusBadRequest, "externalId and password are required")
			return
		}

		response, err := h.authService.Login(role, req.ExternalID, req.Password)
		if err != nil {
			utils.ErrorFrom(c, err)
			return
		}

		h.setSessionCookie(c, response.Token)
		utils.SuccessResponse(c, gin.H{
			"userId":   response.SubjectID,
			"userType": response.Role,
		})
	}
}

// UserType reports the verified role of the current session
func (h *AuthHandler) UserType(c *gin.Context) {
	role, _ := c.Get(middleware.ContextRole)
	utils.SuccessResponse(c, gin.H{
		"userType": role,
	})
}

// Logout revokes the current session token and clears the cookie. The
// cookie is cleared even when there is nothing to revoke.
func (h *AuthHandler) Logout(c *gin.Context) {
	token, err := c.Cookie(middleware.SessionCookieName)
	if err == nil && token != "" {
		if err := h.authService.Logout(c.Request.Context(), token); err != nil {
			h.clearSessionCookie(c)
			utils.ErrorFrom(c, err)
			return
		}
	}

	h.clearSessionCookie(c)
	utils.MessageResponse(c, "Logged out successfully")
}

func (h *AuthHandler) setSessionCookie(c *gin.Context, token string) {
	// SameSite=None needs the Secure flag; fall back to Lax for plain
	// HTTP development setups.
	if h.cfg.Server.CookieSecure {
		c.SetSameSite(http.SameSiteNoneMode)
	} else {
		c.SetSameSite(http.SameSiteLaxMode)
	}
	c.SetCookie(
		middleware.SessionCookieName,
		token,
		int(h.cfg.JWT.TokenExpiry.Seconds()),
		"/",
		"",
		h.cfg.Server.CookieSecure,
		true, // httpOnly
	)
}

func (h *AuthHandler) clearSessionCookie(c *gin.Context) {
	c.SetCookie(middleware.SessionCookieName, "", -1, "/", "", h.cfg.Server.CookieSecure, true)
}
