package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"pka/internal/models/request_models"
	"pka/internal/services"
	"pka/pkg/utils"
)

type PaymentController struct {
	paymentService services.PaymentServiceInterface
}

func NewPaymentController(paymentService services.PaymentServiceInterface) *PaymentController {
	return &PaymentController{
		paymentService: paymentService,
	}
}

// CreateInvoice godoc
// @Summary Create a crypto invoice for a subscription plan
// @Description Create a crypto invoice for a subscription plan
// @Tags Payments
// @Accept json
// @Produce json
// @Param request body request_models.CreatePaymentRequest true "Create Payment Request"
// @Success 200 {object} utils.APIResponse
// @Failure 400 {object} utils.APIResponse
// @Failure 502 {object} utils.APIResponse
// @Security BearerAuth
// @Router /api/payment/create [post]
func (p *PaymentController) CreateInvoice(c *gin.Context) {
	var request request_models.CreatePaymentRequest
	if err := c.ShouldBindJSON(&request); err != nil {
		utils.RespondError(c, http.StatusBadRequest, "Invalid request payload")
		return
	}

	userID, ok := currentUserID(c)
	if !ok {
		utils.RespondError(c, http.StatusUnauthorized, "Unauthorized")
		return
	}

	invoice, err := p.paymentService.CreateInvoice(c.Request.Context(), userID, request.PlanID, request.CryptoCurrency)
	if err != nil {
		utils.HandleServiceError(c, err)
		return
	}

	utils.RespondSuccess(c, invoice, "Invoice created successfully")
}

// ListCurrencies godoc
// @Summary List accepted crypto currencies
// @Tags Payments
// @Produce json
// @Success 200 {object} utils.APIResponse
// @Security BearerAuth
// @Router /api/payment/create [get]
func (p *PaymentController) ListCurrencies(c *gin.Context) {
	utils.RespondSuccess(c, gin.H{"currencies": p.paymentService.ListCurrencies(c.Request.Context())}, "")
}

// ListPlans godoc
// @Summary List subscription plans
// @Tags Payments
// @Produce json
// @Success 200 {object} utils.APIResponse
// @Router /api/payment/plans [get]
func (p *PaymentController) ListPlans(c *gin.Context) {
	utils.RespondSuccess(c, p.paymentService.Plans(), "")
}

// GetStatus godoc
// @Summary Payment status
// @Description Returns the caller's payment, refreshing it from the gateway while it is not final
// @Tags Payments
// @Produce json
// @Param orderId query string true "Order ID"
// @Success 200 {object} utils.APIResponse
// @Failure 404 {object} utils.APIResponse
// @Security BearerAuth
// @Router /api/payment/status [get]
func (p *PaymentController) GetStatus(c *gin.Context) {
	orderID := c.Query("orderId")
	if orderID == "" {
		utils.RespondError(c, http.StatusBadRequest, "orderId is required")
		return
	}

	userID, ok := currentUserID(c)
	if !ok {
		utils.RespondError(c, http.StatusUnauthorized, "Unauthorized")
		return
	}

	status, err := p.paymentService.GetPaymentStatus(c.Request.Context(), userID, orderID)
	if err != nil {
		utils.HandleServiceError(c, err)
		return
	}

	utils.RespondSuccess(c, status, "")
}

// HandleWebhook godoc
// @Summary Gateway payment callback
// @Tags Payments
// @Accept json
// @Produce json
// @Success 200 {object} utils.APIResponse
// @Failure 401 {object} utils.APIResponse
// @Failure 404 {object} utils.APIResponse
// @Router /api/payment/webhook [post]
func (p *PaymentController) HandleWebhook(c *gin.Context) {
	raw, err := c.GetRawData()
	if err != nil {
		utils.RespondError(c, http.StatusBadRequest, "Invalid request payload")
		return
	}

	if err := p.paymentService.HandleWebhook(c.Request.Context(), raw); err != nil {
		utils.HandleServiceError(c, err)
		return
	}

	utils.RespondSuccess(c, nil, "Webhook processed")
}
