package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"pka/internal/models/request_models"
	"pka/internal/services"
	"pka/pkg/utils"
)

type SearchController struct {
	searchService services.SearchServiceInterface
	quotaService  services.QuotaServiceInterface
}

func NewSearchController(searchService services.SearchServiceInterface, quotaService services.QuotaServiceInterface) *SearchController {
	return &SearchController{
		searchService: searchService,
		quotaService:  quotaService,
	}
}

// Search godoc
// @Summary Run a search module
// @Description Proxies the query to the configured provider and returns its body unchanged.
// @Description /api/search accepts "type" in place of "module".
// @Tags Search
// @Accept json
// @Produce json
// @Param request body request_models.SearchRequest true "Module and query"
// @Success 200 {object} map[string]interface{}
// @Failure 400 {object} utils.APIResponse
// @Failure 429 {object} utils.APIResponse
// @Failure 503 {object} utils.APIResponse
// @Security BearerAuth
// @Router /api/osint [post]
func (s *SearchController) Search(c *gin.Context) {
	var req request_models.SearchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondError(c, http.StatusBadRequest, "Invalid request format")
		return
	}

	userID, ok := currentUserID(c)
	if !ok {
		utils.RespondError(c, http.StatusUnauthorized, "Unauthorized")
		return
	}

	result, err := s.searchService.Search(c.Request.Context(), userID, req.ModuleName(), req.Query, clientMeta(c))
	if err != nil {
		utils.HandleServiceError(c, err)
		return
	}

	contentType := result.ContentType
	if contentType == "" {
		contentType = "application/json"
	}
	c.Data(result.StatusCode, contentType, result.Body)
}

// Usage godoc
// @Summary Daily search usage
// @Tags Search
// @Produce json
// @Success 200 {object} utils.APIResponse
// @Security BearerAuth
// @Router /api/osint/usage [get]
func (s *SearchController) Usage(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		utils.RespondError(c, http.StatusUnauthorized, "Unauthorized")
		return
	}

	usage, err := s.quotaService.Usage(c.Request.Context(), userID)
	if err != nil {
		utils.HandleServiceError(c, err)
		return
	}

	utils.RespondSuccess(c, usage, "")
}
