package request_models

type CreatePaymentRequest struct {
	PlanID         string `json:"planId" binding:"required"`
	CryptoCurrency string `json:"cryptoCurrency"`
}
