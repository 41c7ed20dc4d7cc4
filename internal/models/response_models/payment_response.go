package response_models

type CreatePaymentResponse struct {
	PaymentURL string `json:"paymentUrl"`
	Address    string `json:"address"`
	Amount     string `json:"amount"`
	Currency   string `json:"currency"`
	QRCode     string `json:"qrCode"`
	ExpiresAt  int64  `json:"expiresAt"`
	OrderID    string `json:"orderId"`
}

type PaymentStatusResponse struct {
	OrderID        string   `json:"orderId"`
	Status         string   `json:"status"`
	Amount         float64  `json:"amount"`
	Currency       string   `json:"currency"`
	CryptoAmount   *float64 `json:"cryptoAmount"`
	CryptoCurrency string   `json:"cryptoCurrency"`
	PlanID         string   `json:"planId"`
	Address        string   `json:"address"`
	ExpiresAt      *string  `json:"expiresAt"`
	PaidAt         *string  `json:"paidAt"`
	CreatedAt      string   `json:"createdAt"`
}

type CurrencyOption struct {
	Currency string `json:"currency"`
	Network  string `json:"network"`
	Name     string `json:"name,omitempty"`
}

type PlanResponse struct {
	ID            string  `json:"id"`
	Amount        float64 `json:"amount"`
	Currency      string  `json:"currency"`
	DailySearches int     `json:"dailySearches"`
	DurationDays  int     `json:"durationDays"`
}
