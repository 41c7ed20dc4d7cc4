package services

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	dbm "pka/internal/models/db_models"
	"pka/internal/models/response_models"
	"pka/internal/repositories"
	"pka/pkg/utils"
)

const (
	paymentProvider     = "heleket"
	invoiceLifetimeSecs = 3600
	referralRewardRate  = 0.10
)

type Plan struct {
	ID            dbm.SubscriptionPlan
	Amount        float64
	Currency      string
	DailySearches int
	// DurationDays is zero for plans that never expire.
	DurationDays int
}

var subscriptionPlans = map[dbm.SubscriptionPlan]Plan{
	dbm.PlanMonthly:   {ID: dbm.PlanMonthly, Amount: 50, Currency: "USD", DailySearches: 100, DurationDays: 30},
	dbm.PlanQuarterly: {ID: dbm.PlanQuarterly, Amount: 150, Currency: "USD", DailySearches: 300, DurationDays: 90},
	dbm.PlanYearly:    {ID: dbm.PlanYearly, Amount: 1200, Currency: "USD", DailySearches: 500, DurationDays: 365},
	dbm.PlanLifetime:  {ID: dbm.PlanLifetime, Amount: 300, Currency: "USD", DailySearches: dbm.UnlimitedDailySearchLimit},
}

func LookupPlan(id string) (Plan, bool) {
	p, ok := subscriptionPlans[dbm.SubscriptionPlan(id)]
	return p, ok
}

type PaymentServiceInterface interface {
	Plans() []response_models.PlanResponse
	CreateInvoice(ctx context.Context, userID uuid.UUID, planID, cryptoCurrency string) (*response_models.CreatePaymentResponse, error)
	ListCurrencies(ctx context.Context) []response_models.CurrencyOption
	GetPaymentStatus(ctx context.Context, userID uuid.UUID, orderID string) (*response_models.PaymentStatusResponse, error)
	HandleWebhook(ctx context.Context, raw []byte) error
}

type PaymentService struct {
	db       *gorm.DB
	payments repositories.PaymentRepository
	gateway  PaymentGateway
	badges   BadgeServiceInterface
	activity ActivityServiceInterface
	apiKey   string
	baseURL  string
	logger   *zap.Logger
	now      func() time.Time
}

func NewPaymentService(
	db *gorm.DB,
	payments repositories.PaymentRepository,
	gateway PaymentGateway,
	badges BadgeServiceInterface,
	activity ActivityServiceInterface,
	apiKey string,
	baseURL string,
	logger *zap.Logger,
) *PaymentService {
	return &PaymentService{
		db:       db,
		payments: payments,
		gateway:  gateway,
		badges:   badges,
		activity: activity,
		apiKey:   apiKey,
		baseURL:  baseURL,
		logger:   logger,
		now:      time.Now,
	}
}

func (p *PaymentService) Plans() []response_models.PlanResponse {
	order := []dbm.SubscriptionPlan{dbm.PlanMonthly, dbm.PlanQuarterly, dbm.PlanYearly, dbm.PlanLifetime}
	out := make([]response_models.PlanResponse, 0, len(order))
	for _, id := range order {
		plan := subscriptionPlans[id]
		out = append(out, response_models.PlanResponse{
			ID:            string(plan.ID),
			Amount:        plan.Amount,
			Currency:      plan.Currency,
			DailySearches: plan.DailySearches,
			DurationDays:  plan.DurationDays,
		})
	}
	return out
}

func (p *PaymentService) CreateInvoice(ctx context.Context, userID uuid.UUID, planID, cryptoCurrency string) (*response_models.CreatePaymentResponse, error) {
	plan, ok := LookupPlan(planID)
	if !ok {
		return nil, utils.ErrInvalidPlan
	}

	orderID := fmt.Sprintf("pka_%s_%s_%d", userID, plan.ID, p.now().UnixMilli())
	payment := &dbm.Payment{
		UserID:         userID,
		OrderID:        orderID,
		Provider:       paymentProvider,
		PlanID:         plan.ID,
		Amount:         plan.Amount,
		Currency:       plan.Currency,
		CryptoCurrency: cryptoCurrency,
		PaymentStatus:  dbm.PaymentPending,
		Metadata: toJSON(map[string]interface{}{
			"searches": plan.DailySearches,
			"duration": plan.DurationDays,
		}),
	}
	if err := p.payments.Create(ctx, payment); err != nil {
		return nil, fmt.Errorf("create payment: %w", err)
	}

	invoice, err := p.gateway.CreateInvoice(ctx, InvoiceRequest{
		Amount:         strconv.FormatFloat(plan.Amount, 'f', -1, 64),
		Currency:       plan.Currency,
		OrderID:        orderID,
		ToCurrency:     cryptoCurrency,
		URLCallback:    p.baseURL + "/api/payment/webhook",
		URLSuccess:     p.baseURL + "/dashboard?payment=success&order=" + orderID,
		URLReturn:      p.baseURL + "/pricing",
		Lifetime:       invoiceLifetimeSecs,
		AdditionalData: string(toJSON(map[string]string{"userId": userID.String(), "planId": string(plan.ID)})),
	})
	if err != nil {
		p.logger.Error("failed to create invoice", zap.String("order_id", orderID), zap.Error(err))
		_ = p.payments.UpdateByOrderID(ctx, orderID, map[string]interface{}{"payment_status": dbm.PaymentFail})
		return nil, fmt.Errorf("%w: %v", utils.ErrGateway, err)
	}

	fields := map[string]interface{}{
		"invoice_uuid":    invoice.UUID,
		"payment_url":     invoice.URL,
		"payment_address": invoice.Address,
	}
	if invoice.PayerCurrency != "" {
		fields["crypto_currency"] = invoice.PayerCurrency
	}
	if amount, err := strconv.ParseFloat(invoice.PayerAmount, 64); err == nil {
		fields["crypto_amount"] = amount
	}
	if invoice.ExpiredAt > 0 {
		fields["expires_at"] = invoice.ExpiredAt
	}
	if err := p.payments.UpdateByOrderID(ctx, orderID, fields); err != nil {
		return nil, err
	}

	p.activity.Log(ctx, ActivityEntry{
		UserID:   userRef(userID),
		Action:   ActionPaymentCreated,
		Metadata: map[string]interface{}{"orderId": orderID, "planId": plan.ID},
	})

	amount, currency := invoice.PayerAmount, invoice.PayerCurrency
	if amount == "" {
		amount, currency = invoice.Amount, invoice.Currency
	}
	return &response_models.CreatePaymentResponse{
		PaymentURL: invoice.URL,
		Address:    invoice.Address,
		Amount:     amount,
		Currency:   currency,
		QRCode:     invoice.AddressQRCode,
		ExpiresAt:  invoice.ExpiredAt,
		OrderID:    orderID,
	}, nil
}

func (p *PaymentService) ListCurrencies(ctx context.Context) []response_models.CurrencyOption {
	options, err := p.gateway.Services(ctx)
	if err != nil {
		p.logger.Warn("falling back to static currency list", zap.Error(err))
		return fallbackCurrencies
	}
	return options
}

func (p *PaymentService) GetPaymentStatus(ctx context.Context, userID uuid.UUID, orderID string) (*response_models.PaymentStatusResponse, error) {
	if orderID == "" {
		return nil, utils.ErrBadRequest
	}
	payment, err := p.payments.FindByOrderIDForUser(ctx, orderID, userID)
	if err != nil {
		return nil, err
	}
	if payment == nil {
		return nil, utils.ErrPaymentNotFound
	}

	status := payment.PaymentStatus
	if payment.InvoiceUUID != "" && !status.IsFinal() {
		invoice, err := p.gateway.PaymentInfo(ctx, payment.InvoiceUUID)
		if err != nil {
			p.logger.Warn("failed to fetch live payment status", zap.String("order_id", orderID), zap.Error(err))
		} else if live := dbm.PaymentStatus(invoice.PaymentStatus); live != "" && live != status {
			status = live
			if _, err := p.payments.UpdateUnsettled(ctx, orderID, map[string]interface{}{"payment_status": live}); err != nil {
				return nil, err
			}
		}
	}

	return &response_models.PaymentStatusResponse{
		OrderID:        payment.OrderID,
		Status:         string(status),
		Amount:         payment.Amount,
		Currency:       payment.Currency,
		CryptoAmount:   payment.CryptoAmount,
		CryptoCurrency: payment.CryptoCurrency,
		PlanID:         string(payment.PlanID),
		Address:        payment.PaymentAddress,
		ExpiresAt:      utils.FormatUnixRFC3339(payment.ExpiresAt),
		PaidAt:         utils.FormatUnixRFC3339(payment.PaidAt),
		CreatedAt:      utils.FormatRFC3339(utils.FromUnixSeconds(payment.CreatedAt)),
	}, nil
}

// webhookField returns the first string value present under any of keys.
func webhookField(payload map[string]interface{}, keys ...string) string {
	for _, k := range keys {
		if v, ok := payload[k]; ok && v != nil {
			return signatureValue(v)
		}
	}
	return ""
}

func (p *PaymentService) HandleWebhook(ctx context.Context, raw []byte) error {
	payload, err := DecodePayload(raw)
	if err != nil {
		return utils.ErrBadRequest
	}
	if !VerifyWebhookSignature(p.apiKey, payload) {
		p.logger.Warn("rejected payment webhook with invalid signature")
		return utils.ErrInvalidSignature
	}

	orderID := webhookField(payload, "order_id", "orderId")
	status := dbm.PaymentStatus(webhookField(payload, "payment_status", "paymentStatus", "status"))
	txid := webhookField(payload, "txid")
	invoiceUUID := webhookField(payload, "uuid")

	payment, err := p.payments.FindByOrderID(ctx, orderID)
	if err != nil {
		return err
	}
	if payment == nil {
		p.logger.Warn("payment webhook for unknown order", zap.String("order_id", orderID))
		return utils.ErrPaymentNotFound
	}

	p.logger.Info("payment webhook received",
		zap.String("order_id", orderID),
		zap.String("status", string(status)))

	now := p.now()
	fields := map[string]interface{}{
		"payment_status":   status,
		"webhook_received": true,
	}
	if txid != "" {
		fields["transaction_hash"] = txid
	}
	if amount, err := strconv.ParseFloat(webhookField(payload, "payer_amount", "payerAmount"), 64); err == nil {
		fields["crypto_amount"] = amount
	}
	if currency := webhookField(payload, "payer_currency", "payerCurrency"); currency != "" {
		fields["crypto_currency"] = currency
	}

	if !status.IsComplete() {
		// A settled payment keeps its status; later gateway notices are informational.
		changed, err := p.payments.UpdateUnsettled(ctx, orderID, fields)
		if err != nil {
			return err
		}
		if !changed {
			p.logger.Info("ignoring status change for settled payment",
				zap.String("order_id", orderID),
				zap.String("status", string(status)))
			return nil
		}
		if status.IsFailed() {
			p.logger.Info("payment failed", zap.String("order_id", orderID), zap.String("status", string(status)))
		}
		return nil
	}

	fields["paid_at"] = now.Unix()
	plan, ok := subscriptionPlans[payment.PlanID]
	if !ok {
		p.logger.Error("paid order references unknown plan", zap.String("order_id", orderID), zap.String("plan", string(payment.PlanID)))
		return p.payments.UpdateByOrderID(ctx, orderID, fields)
	}

	key := txid
	if key == "" {
		key = invoiceUUID
	}
	if key == "" {
		key = orderID
	}

	applied := false
	err = p.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "provider"}, {Name: "provider_txn_id"}},
			DoNothing: true,
		}).Create(&dbm.ProcessedWebhook{
			Provider:      paymentProvider,
			ProviderTxnID: key,
			OrderID:       orderID,
			PaymentStatus: status,
			ProcessedAt:   now.Unix(),
		})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return nil
		}
		applied = true

		if err := tx.Model(&dbm.Payment{}).Where("order_id = ?", orderID).Updates(fields).Error; err != nil {
			return err
		}
		return activateSubscription(tx, payment, plan, now)
	})
	if err != nil {
		return fmt.Errorf("apply paid webhook: %w", err)
	}
	if !applied {
		p.logger.Info("duplicate payment webhook ignored", zap.String("order_id", orderID), zap.String("key", key))
		return nil
	}

	p.activity.Log(ctx, ActivityEntry{
		UserID:   userRef(payment.UserID),
		Action:   ActionSubscriptionActivated,
		Metadata: map[string]interface{}{"orderId": orderID, "planId": plan.ID},
	})
	refreshBadges(ctx, p.badges, p.logger, payment.UserID)
	p.logger.Info("subscription activated", zap.String("user_id", payment.UserID.String()), zap.String("plan", string(plan.ID)))
	return nil
}

// activateSubscription applies the plan and credits the referrer within tx.
func activateSubscription(tx *gorm.DB, payment *dbm.Payment, plan Plan, now time.Time) error {
	var endsAt interface{}
	if plan.DurationDays > 0 {
		endsAt = now.AddDate(0, 0, plan.DurationDays).Unix()
	}

	if err := tx.Model(&dbm.User{}).Where("id = ?", payment.UserID).Updates(map[string]interface{}{
		"subscription_plan":       plan.ID,
		"subscription_started_at": now.Unix(),
		"subscription_ends_at":    endsAt,
		"daily_search_limit":      plan.DailySearches,
	}).Error; err != nil {
		return err
	}

	var user dbm.User
	if err := tx.Select("id", "referred_by").First(&user, "id = ?", payment.UserID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil
		}
		return err
	}
	if user.ReferredBy == nil {
		return nil
	}

	reward := payment.Amount * referralRewardRate
	if err := tx.Model(&dbm.User{}).
		Where("id = ?", *user.ReferredBy).
		UpdateColumn("referral_earnings", gorm.Expr("referral_earnings + ?", reward)).Error; err != nil {
		return err
	}
	return tx.Model(&dbm.Referral{}).
		Where("referred_id = ?", payment.UserID).
		Updates(map[string]interface{}{
			"status":        dbm.ReferralCompleted,
			"reward_amount": reward,
		}).Error
}
