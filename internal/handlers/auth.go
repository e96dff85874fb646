package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/dhg/hub-backend/internal/requestdata"
	"github.com/dhg/hub-backend/internal/services"
)

type AuthHandler struct {
	authService services.AuthService
}

func NewAuthHandler(authService services.AuthService) *AuthHandler {
	return &AuthHandler{authService: authService}
}

func (ah *AuthHandler) Register(c *gin.Context) {
	var req struct {
		Email       string `json:"email"`
		Password    string `json:"password"`
		DisplayName string `json:"display_name"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondError(c, http.StatusBadRequest, "bad_request", errors.New("invalid request body"))
		return
	}
	user, err := ah.authService.RegisterUser(c.Request.Context(), req.Email, req.Password, req.DisplayName)
	if err != nil {
		if errors.Is(err, services.ErrEmailTaken) {
			RespondError(c, http.StatusConflict, "email_taken", err)
			return
		}
		RespondError(c, http.StatusBadRequest, "registration_failed", err)
		return
	}
	RespondOK(c, gin.H{"id": user.ID, "email": user.Email})
}

func (ah *AuthHandler) Login(c *gin.Context) {
	var req struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondError(c, http.StatusBadRequest, "bad_request", errors.New("invalid request body"))
		return
	}
	accessToken, refreshToken, err := ah.authService.LoginUser(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		RespondError(c, http.StatusUnauthorized, "invalid_credentials", err)
		return
	}
	expiresIn := int(ah.authService.GetAccessTTL().Seconds())
	RespondOK(c, gin.H{
		"access_token":  accessToken,
		"refresh_token": refreshToken,
		"expires_in":    expiresIn,
	})
}

func (ah *AuthHandler) Refresh(c *gin.Context) {
	var req struct {
		RefreshToken string `json:"refresh_token"`
	}
	if err := c.ShouldBindJSON(&req); err != nil || req.RefreshToken == "" {
		RespondError(c, http.StatusBadRequest, "bad_request", errors.New("refresh_token required"))
		return
	}
	ctx := requestdata.WithRequestData(c.Request.Context(), &requestdata.RequestData{
		RefreshToken: req.RefreshToken,
	})
	accessToken, refreshToken, err := ah.authService.RefreshUser(ctx)
	if err != nil {
		RespondError(c, http.StatusUnauthorized, "invalid_token", err)
		return
	}
	expiresIn := int(ah.authService.GetAccessTTL().Seconds())
	RespondOK(c, gin.H{
		"access_token":  accessToken,
		"refresh_token": refreshToken,
		"expires_in":    expiresIn,
	})
}

func (ah *AuthHandler) Logout(c *gin.Context) {
	if err := ah.authService.LogoutUser(c.Request.Context()); err != nil {
		RespondError(c, http.StatusBadRequest, "logout_failed", err)
		return
	}
	RespondOK(c, gin.H{"message": "logged out"})
}
