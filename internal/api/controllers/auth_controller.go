package controllers

import (
	"errors"
	"io"
	"net/http"
	"strings"

	"github.com/dchest/captcha"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"pka/internal/models/request_models"
	"pka/internal/models/response_models"
	"pka/internal/services"
	"pka/pkg/middleware"
	"pka/pkg/utils"
)

type AuthController struct {
	authService services.AuthServiceInterface
	cookies     CookieConfig
}

func NewAuthController(authService services.AuthServiceInterface, cookies CookieConfig) *AuthController {
	return &AuthController{
		authService: authService,
		cookies:     cookies,
	}
}

// Register godoc
// @Summary Register a new account
// @Description Create a free account and return its API key
// @Tags Auth
// @Accept json
// @Produce json
// @Param request body request_models.RegisterRequest true "Registration payload"
// @Success 200 {object} utils.APIResponse
// @Failure 400 {object} utils.APIResponse
// @Failure 409 {object} utils.APIResponse
// @Router /api/auth/register [post]
func (a *AuthController) Register(c *gin.Context) {
	var req request_models.RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondError(c, http.StatusBadRequest, "Invalid request format")
		return
	}

	resp, err := a.authService.Register(c.Request.Context(), req, clientMeta(c))
	if err != nil {
		utils.HandleServiceError(c, err)
		return
	}

	utils.RespondSuccess(c, resp, "Account created successfully")
}

// Login godoc
// @Summary Login
// @Description Authenticate with username/password or an API key
// @Tags Auth
// @Accept json
// @Produce json
// @Param request body request_models.LoginRequest true "Login payload"
// @Success 200 {object} utils.APIResponse
// @Failure 401 {object} utils.APIResponse
// @Failure 403 {object} utils.APIResponse
// @Failure 429 {object} utils.APIResponse
// @Router /api/auth/login [post]
func (a *AuthController) Login(c *gin.Context) {
	var req request_models.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondError(c, http.StatusBadRequest, "Invalid request format")
		return
	}

	resp, err := a.authService.Login(c.Request.Context(), req, clientMeta(c))
	if err != nil {
		utils.HandleServiceError(c, err)
		return
	}

	a.cookies.setSession(c, resp.SessionID, resp.AccessToken, resp.RefreshToken)
	utils.RespondSuccess(c, resp, "Login successful")
}

// Logout godoc
// @Summary Logout
// @Description Revoke the current session and clear auth cookies
// @Tags Auth
// @Produce json
// @Success 200 {object} utils.APIResponse
// @Failure 401 {object} utils.APIResponse
// @Router /api/auth/logout [post]
func (a *AuthController) Logout(c *gin.Context) {
	token, _ := middleware.ExtractToken(c)

	a.cookies.clear(c, middleware.SessionCookieName)
	a.cookies.clear(c, middleware.RefreshCookieName)

	if err := a.authService.Logout(c.Request.Context(), token, clientMeta(c)); err != nil {
		utils.HandleServiceError(c, err)
		return
	}

	utils.RespondSuccess(c, nil, "Logged out successfully")
}

// Refresh godoc
// @Summary Refresh tokens
// @Description Exchange a refresh token (body or pka_refresh cookie) for a new token pair
// @Tags Auth
// @Accept json
// @Produce json
// @Param request body request_models.RefreshRequest false "Refresh payload"
// @Success 200 {object} utils.APIResponse
// @Failure 401 {object} utils.APIResponse
// @Router /api/auth/refresh [post]
func (a *AuthController) Refresh(c *gin.Context) {
	var req request_models.RefreshRequest
	if err := c.ShouldBindJSON(&req); err != nil && !errors.Is(err, io.EOF) {
		utils.RespondError(c, http.StatusBadRequest, "Invalid request format")
		return
	}
	if req.RefreshToken == "" {
		req.RefreshToken, _ = c.Cookie(middleware.RefreshCookieName)
	}
	if req.RefreshToken == "" {
		utils.RespondError(c, http.StatusUnauthorized, "No refresh token provided")
		return
	}

	resp, err := a.authService.Refresh(c.Request.Context(), req.RefreshToken)
	if err != nil {
		utils.HandleServiceError(c, err)
		return
	}

	a.cookies.setSession(c, resp.SessionID, resp.AccessToken, resp.RefreshToken)
	utils.RespondSuccess(c, resp, "Token refreshed")
}

// Me godoc
// @Summary Current user profile
// @Tags Auth
// @Produce json
// @Success 200 {object} utils.APIResponse
// @Failure 401 {object} utils.APIResponse
// @Security BearerAuth
// @Router /api/auth/me [get]
func (a *AuthController) Me(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		utils.RespondError(c, http.StatusUnauthorized, "Unauthorized")
		return
	}

	profile, err := a.authService.Me(c.Request.Context(), userID)
	if err != nil {
		utils.HandleServiceError(c, err)
		return
	}

	utils.RespondSuccess(c, profile, "")
}

// GetUser godoc
// @Summary Get a user profile
// @Description Users may only read their own profile
// @Tags Users
// @Produce json
// @Param id path string true "User ID"
// @Success 200 {object} utils.APIResponse
// @Failure 403 {object} utils.APIResponse
// @Security BearerAuth
// @Router /api/users/{id} [get]
func (a *AuthController) GetUser(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		utils.RespondError(c, http.StatusUnauthorized, "Unauthorized")
		return
	}

	target, err := uuid.Parse(c.Param("id"))
	if err != nil || target != userID {
		utils.RespondError(c, http.StatusForbidden, "Forbidden")
		return
	}

	profile, err := a.authService.Me(c.Request.Context(), target)
	if err != nil {
		utils.HandleServiceError(c, err)
		return
	}

	utils.RespondSuccess(c, profile, "")
}

// UpdatePassword godoc
// @Summary Change password
// @Tags Auth
// @Accept json
// @Produce json
// @Param request body request_models.UpdatePasswordRequest true "New password"
// @Success 200 {object} utils.APIResponse
// @Failure 400 {object} utils.APIResponse
// @Security BearerAuth
// @Router /api/auth/update-password [post]
func (a *AuthController) UpdatePassword(c *gin.Context) {
	var req request_models.UpdatePasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondError(c, http.StatusBadRequest, "Invalid request format")
		return
	}

	userID, ok := currentUserID(c)
	if !ok {
		utils.RespondError(c, http.StatusUnauthorized, "Unauthorized")
		return
	}

	if err := a.authService.UpdatePassword(c.Request.Context(), userID, req.Password); err != nil {
		utils.HandleServiceError(c, err)
		return
	}

	utils.RespondSuccess(c, nil, "Password updated successfully")
}

// NewCaptcha godoc
// @Summary Issue a registration captcha
// @Tags Auth
// @Produce json
// @Success 200 {object} utils.APIResponse
// @Router /api/auth/captcha [get]
func (a *AuthController) NewCaptcha(c *gin.Context) {
	id := captcha.New()
	utils.RespondSuccess(c, response_models.CaptchaResponse{
		CaptchaID: id,
		ImageURL:  "/api/auth/captcha/" + id + ".png",
	}, "")
}

// CaptchaImage godoc
// @Summary Captcha image
// @Tags Auth
// @Produce png
// @Param file path string true "Captcha id with .png suffix"
// @Success 200
// @Failure 404 {object} utils.APIResponse
// @Router /api/auth/captcha/{file} [get]
func (a *AuthController) CaptchaImage(c *gin.Context) {
	id := strings.TrimSuffix(c.Param("file"), ".png")
	if c.Query("reload") != "" && !captcha.Reload(id) {
		utils.RespondError(c, http.StatusNotFound, "Captcha not found")
		return
	}

	c.Header("Cache-Control", "no-store")
	c.Header("Content-Type", "image/png")
	if err := captcha.WriteImage(c.Writer, id, captcha.StdWidth, captcha.StdHeight); err != nil {
		if errors.Is(err, captcha.ErrNotFound) {
			c.Header("Content-Type", "application/json; charset=utf-8")
			utils.RespondError(c, http.StatusNotFound, "Captcha not found")
			return
		}
		utils.HandleServiceError(c, err)
	}
}
