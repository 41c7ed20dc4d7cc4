package services

import (
	"bytes"
	"context"
	"crypto/hmac"
	"crypto/md5"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"sort"
	"strconv"
	"strings"

	"pka/internal/models/response_models"
	"pka/pkg/config"
)

// fallbackCurrencies is served when the gateway cannot list its services.
var fallbackCurrencies = []response_models.CurrencyOption{
	{Currency: "BTC", Network: "BTC", Name: "Bitcoin"},
	{Currency: "ETH", Network: "ETH", Name: "Ethereum"},
	{Currency: "USDT", Network: "TRC20", Name: "Tether (TRC20)"},
	{Currency: "USDT", Network: "ERC20", Name: "Tether (ERC20)"},
	{Currency: "LTC", Network: "LTC", Name: "Litecoin"},
	{Currency: "USDC", Network: "ERC20", Name: "USD Coin (ERC20)"},
}

type InvoiceRequest struct {
	Amount         string
	Currency       string
	OrderID        string
	ToCurrency     string
	URLCallback    string
	URLSuccess     string
	URLReturn      string
	Lifetime       int
	AdditionalData string
}

type Invoice struct {
	UUID          string `json:"uuid"`
	OrderID       string `json:"order_id"`
	Amount        string `json:"amount"`
	PayerAmount   string `json:"payer_amount"`
	PayerCurrency string `json:"payer_currency"`
	Currency      string `json:"currency"`
	Network       string `json:"network"`
	Address       string `json:"address"`
	PaymentStatus string `json:"payment_status"`
	URL           string `json:"url"`
	ExpiredAt     int64  `json:"expired_at"`
	IsFinal       bool   `json:"is_final"`
	AddressQRCode string `json:"address_qr_code"`
}

type PaymentGateway interface {
	CreateInvoice(ctx context.Context, req InvoiceRequest) (*Invoice, error)
	PaymentInfo(ctx context.Context, invoiceUUID string) (*Invoice, error)
	Services(ctx context.Context) ([]response_models.CurrencyOption, error)
}

type HeleketClient struct {
	cfg    config.HeleketConfig
	client *http.Client
}

func NewHeleketClient(cfg config.HeleketConfig, client *http.Client) *HeleketClient {
	if client == nil {
		client = &http.Client{}
	}
	return &HeleketClient{cfg: cfg, client: client}
}

// signatureValue renders a payload value the way the gateway concatenates it.
func signatureValue(v interface{}) string {
	switch t := v.(type) {
	case string:
		return t
	case json.Number:
		return t.String()
	case bool:
		return strconv.FormatBool(t)
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	case int:
		return strconv.Itoa(t)
	case int64:
		return strconv.FormatInt(t, 10)
	default:
		raw, err := json.Marshal(t)
		if err != nil {
			return fmt.Sprint(t)
		}
		return string(raw)
	}
}

// Sign computes the hex HMAC-MD5 over the non-null values of payload in key
// order, skipping the sign field itself.
func Sign(apiKey string, payload map[string]interface{}) string {
	keys := make([]string, 0, len(payload))
	for k, v := range payload {
		if k == "sign" || v == nil {
			continue
		}
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var b strings.Builder
	for _, k := range keys {
		b.WriteString(signatureValue(payload[k]))
	}

	mac := hmac.New(md5.New, []byte(apiKey))
	mac.Write([]byte(b.String()))
	return hex.EncodeToString(mac.Sum(nil))
}

// DecodePayload keeps numbers verbatim so signatures match the sender's text.
func DecodePayload(raw []byte) (map[string]interface{}, error) {
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()
	var payload map[string]interface{}
	if err := dec.Decode(&payload); err != nil {
		return nil, err
	}
	return payload, nil
}

// VerifyWebhookSignature checks the payload's sign field in constant time.
func VerifyWebhookSignature(apiKey string, payload map[string]interface{}) bool {
	received, ok := payload["sign"].(string)
	if !ok || received == "" || apiKey == "" {
		return false
	}
	expected := Sign(apiKey, payload)
	return hmac.Equal([]byte(strings.ToLower(received)), []byte(expected))
}

type gatewayEnvelope struct {
	State   int             `json:"state"`
	Message string          `json:"message"`
	Result  json.RawMessage `json:"result"`
}

func (h *HeleketClient) post(ctx context.Context, path string, body map[string]interface{}, signed bool) (json.RawMessage, error) {
	var payload []byte
	if body != nil {
		var err error
		if payload, err = json.Marshal(body); err != nil {
			return nil, err
		}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, h.cfg.APIURL+path, bytes.NewReader(payload))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("merchant", h.cfg.MerchantID)
	if signed {
		req.Header.Set("sign", Sign(h.cfg.APIKey, body))
	}

	resp, err := h.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return nil, err
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("heleket %s: status %d: %s", path, resp.StatusCode, strings.TrimSpace(string(raw)))
	}

	var env gatewayEnvelope
	if err := json.Unmarshal(raw, &env); err != nil {
		return nil, fmt.Errorf("heleket %s: decode: %w", path, err)
	}
	return env.Result, nil
}

func (h *HeleketClient) CreateInvoice(ctx context.Context, in InvoiceRequest) (*Invoice, error) {
	body := map[string]interface{}{
		"amount":   in.Amount,
		"currency": in.Currency,
		"order_id": in.OrderID,
	}
	optional := map[string]string{
		"to_currency":     in.ToCurrency,
		"url_callback":    in.URLCallback,
		"url_success":     in.URLSuccess,
		"url_return":      in.URLReturn,
		"additional_data": in.AdditionalData,
	}
	for k, v := range optional {
		if v != "" {
			body[k] = v
		}
	}
	if in.Lifetime > 0 {
		body["lifetime"] = in.Lifetime
	}

	result, err := h.post(ctx, "/payment", body, true)
	if err != nil {
		return nil, err
	}
	var invoice Invoice
	if err := json.Unmarshal(result, &invoice); err != nil {
		return nil, fmt.Errorf("heleket invoice: %w", err)
	}
	return &invoice, nil
}

func (h *HeleketClient) PaymentInfo(ctx context.Context, invoiceUUID string) (*Invoice, error) {
	result, err := h.post(ctx, "/payment/info", map[string]interface{}{"uuid": invoiceUUID}, true)
	if err != nil {
		return nil, err
	}
	var invoice Invoice
	if err := json.Unmarshal(result, &invoice); err != nil {
		return nil, fmt.Errorf("heleket payment info: %w", err)
	}
	return &invoice, nil
}

func (h *HeleketClient) Services(ctx context.Context) ([]response_models.CurrencyOption, error) {
	result, err := h.post(ctx, "/payment/services", nil, false)
	if err != nil {
		return nil, err
	}
	var options []response_models.CurrencyOption
	if len(result) == 0 || string(result) == "null" {
		return options, nil
	}
	if err := json.Unmarshal(result, &options); err != nil {
		return nil, fmt.Errorf("heleket services: %w", err)
	}
	return options, nil
}
