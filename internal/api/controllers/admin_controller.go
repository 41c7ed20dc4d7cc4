package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"pka/internal/models/request_models"
	"pka/internal/services"
	"pka/pkg/middleware"
	"pka/pkg/utils"
)

type AdminController struct {
	adminService services.AdminServiceInterface
	cookies      CookieConfig
}

func NewAdminController(adminService services.AdminServiceInterface, cookies CookieConfig) *AdminController {
	return &AdminController{
		adminService: adminService,
		cookies:      cookies,
	}
}

// Login godoc
// @Summary Admin login
// @Description Exchanges the admin password for an admin token, also set as the adminToken cookie
// @Tags Admin
// @Accept json
// @Produce json
// @Param request body request_models.AdminLoginRequest true "Admin password"
// @Success 200 {object} utils.APIResponse
// @Failure 401 {object} utils.APIResponse
// @Failure 429 {object} utils.APIResponse
// @Router /api/admin/login [post]
func (a *AdminController) Login(c *gin.Context) {
	var req request_models.AdminLoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondError(c, http.StatusBadRequest, "Invalid request format")
		return
	}

	resp, err := a.adminService.Login(c.Request.Context(), req.Password)
	if err != nil {
		utils.HandleServiceError(c, err)
		return
	}

	a.cookies.set(c, middleware.AdminCookieName, resp.Token, a.cookies.AdminTTL)
	utils.RespondSuccess(c, resp, "Login successful")
}

// Logout godoc
// @Summary Admin logout
// @Tags Admin
// @Produce json
// @Success 200 {object} utils.APIResponse
// @Router /api/admin/logout [post]
func (a *AdminController) Logout(c *gin.Context) {
	a.cookies.clear(c, middleware.AdminCookieName)
	utils.RespondSuccess(c, nil, "Logged out successfully")
}

// Stats godoc
// @Summary Dashboard statistics
// @Tags Admin
// @Produce json
// @Success 200 {object} utils.APIResponse
// @Security BearerAuth
// @Router /api/admin/stats [get]
func (a *AdminController) Stats(c *gin.Context) {
	stats, err := a.adminService.Stats(c.Request.Context())
	if err != nil {
		utils.HandleServiceError(c, err)
		return
	}
	utils.RespondSuccess(c, stats, "")
}

// ListUsers godoc
// @Summary List users
// @Tags Admin
// @Produce json
// @Param page query int false "Page"
// @Param limit query int false "Page size"
// @Param search query string false "Username substring"
// @Param status query string false "all, active, banned or inactive"
// @Param sortBy query string false "Sort column"
// @Param sortOrder query string false "asc or desc"
// @Success 200 {object} utils.APIResponse
// @Security BearerAuth
// @Router /api/admin/users [get]
func (a *AdminController) ListUsers(c *gin.Context) {
	var q request_models.AdminUserListQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		utils.RespondError(c, http.StatusBadRequest, "Invalid query parameters")
		return
	}

	users, err := a.adminService.ListUsers(c.Request.Context(), q)
	if err != nil {
		utils.HandleServiceError(c, err)
		return
	}
	utils.RespondSuccess(c, users, "")
}

// UpdateUser godoc
// @Summary Apply an action to one user
// @Tags Admin
// @Accept json
// @Produce json
// @Param request body request_models.AdminUserActionRequest true "User action"
// @Success 200 {object} utils.APIResponse
// @Failure 400 {object} utils.APIResponse
// @Failure 404 {object} utils.APIResponse
// @Security BearerAuth
// @Router /api/admin/users [patch]
func (a *AdminController) UpdateUser(c *gin.Context) {
	var req request_models.AdminUserActionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondError(c, http.StatusBadRequest, "Invalid request format")
		return
	}

	if err := a.adminService.UpdateUser(c.Request.Context(), req, middleware.ClientIP(c)); err != nil {
		utils.HandleServiceError(c, err)
		return
	}
	utils.RespondSuccess(c, nil, "User updated successfully")
}

// BulkUpdateUsers godoc
// @Summary Apply an action to many users
// @Tags Admin
// @Accept json
// @Produce json
// @Param request body request_models.AdminBulkActionRequest true "Bulk action"
// @Success 200 {object} utils.APIResponse
// @Failure 400 {object} utils.APIResponse
// @Security BearerAuth
// @Router /api/admin/users/bulk [post]
func (a *AdminController) BulkUpdateUsers(c *gin.Context) {
	var req request_models.AdminBulkActionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondError(c, http.StatusBadRequest, "Invalid request format")
		return
	}

	resp, err := a.adminService.BulkUpdateUsers(c.Request.Context(), req, middleware.ClientIP(c))
	if err != nil {
		utils.HandleServiceError(c, err)
		return
	}
	utils.RespondSuccess(c, resp, "Bulk action applied")
}

// ListApiConfigs godoc
// @Summary List provider configurations
// @Tags Admin
// @Produce json
// @Success 200 {object} utils.APIResponse
// @Security BearerAuth
// @Router /api/admin/api-configs [get]
func (a *AdminController) ListApiConfigs(c *gin.Context) {
	configs, err := a.adminService.ListApiConfigs(c.Request.Context())
	if err != nil {
		utils.HandleServiceError(c, err)
		return
	}
	utils.RespondSuccess(c, configs, "")
}

// CreateApiConfig godoc
// @Summary Add a provider configuration
// @Tags Admin
// @Accept json
// @Produce json
// @Param request body request_models.CreateApiConfigRequest true "Provider configuration"
// @Success 200 {object} utils.APIResponse
// @Failure 400 {object} utils.APIResponse
// @Security BearerAuth
// @Router /api/admin/api-configs [post]
func (a *AdminController) CreateApiConfig(c *gin.Context) {
	var req request_models.CreateApiConfigRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondError(c, http.StatusBadRequest, "Invalid request format")
		return
	}

	cfg, err := a.adminService.CreateApiConfig(c.Request.Context(), req, middleware.ClientIP(c))
	if err != nil {
		utils.HandleServiceError(c, err)
		return
	}
	utils.RespondSuccess(c, cfg, "API configuration created")
}

// DeleteApiConfig godoc
// @Summary Delete a provider configuration
// @Tags Admin
// @Produce json
// @Param id path string true "Config ID"
// @Success 200 {object} utils.APIResponse
// @Failure 404 {object} utils.APIResponse
// @Security BearerAuth
// @Router /api/admin/api-configs/{id} [delete]
func (a *AdminController) DeleteApiConfig(c *gin.Context) {
	if err := a.adminService.DeleteApiConfig(c.Request.Context(), c.Param("id"), middleware.ClientIP(c)); err != nil {
		utils.HandleServiceError(c, err)
		return
	}
	utils.RespondSuccess(c, nil, "API configuration deleted")
}

// ListSuspicious godoc
// @Summary List suspicious activity
// @Tags Admin
// @Produce json
// @Param status query string false "unresolved, resolved or all"
// @Param severity query string false "Severity"
// @Success 200 {object} utils.APIResponse
// @Security BearerAuth
// @Router /api/admin/suspicious [get]
func (a *AdminController) ListSuspicious(c *gin.Context) {
	var q request_models.SuspiciousListQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		utils.RespondError(c, http.StatusBadRequest, "Invalid query parameters")
		return
	}

	list, err := a.adminService.ListSuspicious(c.Request.Context(), q)
	if err != nil {
		utils.HandleServiceError(c, err)
		return
	}
	utils.RespondSuccess(c, list, "")
}

// ResolveSuspicious godoc
// @Summary Resolve a suspicious activity
// @Tags Admin
// @Accept json
// @Produce json
// @Param request body request_models.ResolveSuspiciousRequest true "Resolution"
// @Success 200 {object} utils.APIResponse
// @Failure 404 {object} utils.APIResponse
// @Security BearerAuth
// @Router /api/admin/suspicious [patch]
func (a *AdminController) ResolveSuspicious(c *gin.Context) {
	var req request_models.ResolveSuspiciousRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondError(c, http.StatusBadRequest, "Invalid request format")
		return
	}

	if err := a.adminService.ResolveSuspicious(c.Request.Context(), req, middleware.ClientIP(c)); err != nil {
		utils.HandleServiceError(c, err)
		return
	}
	utils.RespondSuccess(c, nil, "Activity resolved")
}

// ListMultiAccounts godoc
// @Summary List linked accounts
// @Tags Admin
// @Produce json
// @Param minConfidence query int false "Minimum confidence, default 50"
// @Success 200 {object} utils.APIResponse
// @Security BearerAuth
// @Router /api/admin/multi-accounts [get]
func (a *AdminController) ListMultiAccounts(c *gin.Context) {
	var q request_models.MultiAccountListQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		utils.RespondError(c, http.StatusBadRequest, "Invalid query parameters")
		return
	}

	list, err := a.adminService.ListMultiAccounts(c.Request.Context(), q)
	if err != nil {
		utils.HandleServiceError(c, err)
		return
	}
	utils.RespondSuccess(c, list, "")
}

// ReviewMultiAccount godoc
// @Summary Confirm or dismiss an account link
// @Tags Admin
// @Accept json
// @Produce json
// @Param request body request_models.ReviewMultiAccountRequest true "Review"
// @Success 200 {object} utils.APIResponse
// @Failure 400 {object} utils.APIResponse
// @Security BearerAuth
// @Router /api/admin/multi-accounts [patch]
func (a *AdminController) ReviewMultiAccount(c *gin.Context) {
	var req request_models.ReviewMultiAccountRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondError(c, http.StatusBadRequest, "Invalid request format")
		return
	}

	if err := a.adminService.ReviewMultiAccount(c.Request.Context(), req, middleware.ClientIP(c)); err != nil {
		utils.HandleServiceError(c, err)
		return
	}
	utils.RespondSuccess(c, nil, "Link reviewed")
}

// ListActivity godoc
// @Summary Activity log
// @Tags Admin
// @Produce json
// @Param userId query string false "User ID"
// @Param action query string false "Action substring"
// @Param startDate query string false "RFC3339 or YYYY-MM-DD"
// @Param endDate query string false "RFC3339 or YYYY-MM-DD"
// @Success 200 {object} utils.APIResponse
// @Security BearerAuth
// @Router /api/admin/activity [get]
func (a *AdminController) ListActivity(c *gin.Context) {
	var q request_models.ActivityListQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		utils.RespondError(c, http.StatusBadRequest, "Invalid query parameters")
		return
	}

	list, err := a.adminService.ListActivity(c.Request.Context(), q)
	if err != nil {
		utils.HandleServiceError(c, err)
		return
	}
	utils.RespondSuccess(c, list, "")
}
