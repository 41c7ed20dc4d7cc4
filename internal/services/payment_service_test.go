package services

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	dbm "pka/internal/models/db_models"
	"pka/internal/models/response_models"
	"pka/pkg/utils"
)

const testGatewayKey = "gateway-key"

type fakeGateway struct {
	created  []InvoiceRequest
	info     *Invoice
	err      error
	services []response_models.CurrencyOption
}

func (g *fakeGateway) CreateInvoice(ctx context.Context, req InvoiceRequest) (*Invoice, error) {
	if g.err != nil {
		return nil, g.err
	}
	g.created = append(g.created, req)
	return &Invoice{
		UUID:          "inv-" + req.OrderID,
		OrderID:       req.OrderID,
		Amount:        req.Amount,
		Currency:      req.Currency,
		PayerAmount:   "0.0012",
		PayerCurrency: "BTC",
		Address:       "bc1qtest",
		URL:           "https://pay.example/" + req.OrderID,
		ExpiredAt:     1900000000,
		AddressQRCode: "data:image/png;base64,AAAA",
	}, nil
}

func (g *fakeGateway) PaymentInfo(ctx context.Context, invoiceUUID string) (*Invoice, error) {
	if g.info == nil {
		return nil, errors.New("unavailable")
	}
	return g.info, nil
}

func (g *fakeGateway) Services(ctx context.Context) ([]response_models.CurrencyOption, error) {
	if g.services == nil {
		return nil, errors.New("unavailable")
	}
	return g.services, nil
}

func (f *fixture) paymentService(gw PaymentGateway) *PaymentService {
	return NewPaymentService(f.db, f.payments, gw, f.badgeService(), f.activityService(),
		testGatewayKey, "https://app.example", f.logger)
}

func signedWebhook(t *testing.T, fields map[string]interface{}) []byte {
	t.Helper()
	fields["sign"] = Sign(testGatewayKey, fields)
	raw, err := json.Marshal(fields)
	require.NoError(t, err)
	return raw
}

func TestSign_VerifiesRoundTrip(t *testing.T) {
	raw := signedWebhook(t, map[string]interface{}{
		"order_id":       "pka_1",
		"payment_status": "paid",
		"amount":         "50.00",
		"is_final":       true,
		"txid":           nil,
	})

	payload, err := DecodePayload(raw)
	require.NoError(t, err)
	assert.True(t, VerifyWebhookSignature(testGatewayKey, payload))
	assert.False(t, VerifyWebhookSignature("other-key", payload))

	payload["amount"] = "5000.00"
	assert.False(t, VerifyWebhookSignature(testGatewayKey, payload))
}

func TestCreateInvoice(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	gw := &fakeGateway{}
	svc := f.paymentService(gw)
	user := f.user(t, "alice")

	_, err := svc.CreateInvoice(ctx, user.ID, "weekly", "BTC")
	assert.ErrorIs(t, err, utils.ErrInvalidPlan)

	resp, err := svc.CreateInvoice(ctx, user.ID, "monthly", "BTC")
	require.NoError(t, err)
	assert.Contains(t, resp.OrderID, "pka_"+user.ID.String()+"_monthly_")
	assert.Equal(t, "0.0012", resp.Amount)
	assert.Equal(t, "BTC", resp.Currency)
	assert.Equal(t, "bc1qtest", resp.Address)

	require.Len(t, gw.created, 1)
	assert.Equal(t, "50", gw.created[0].Amount)
	assert.Equal(t, "https://app.example/api/payment/webhook", gw.created[0].URLCallback)
	assert.Equal(t, invoiceLifetimeSecs, gw.created[0].Lifetime)

	payment, err := f.payments.FindByOrderID(ctx, resp.OrderID)
	require.NoError(t, err)
	require.NotNil(t, payment)
	assert.Equal(t, dbm.PaymentPending, payment.PaymentStatus)
	assert.Equal(t, "inv-"+resp.OrderID, payment.InvoiceUUID)
	assert.Equal(t, 50.0, payment.Amount)
}

func TestCreateInvoice_GatewayError(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	svc := f.paymentService(&fakeGateway{err: errors.New("boom")})
	user := f.user(t, "alice")

	_, err := svc.CreateInvoice(ctx, user.ID, "monthly", "BTC")
	assert.ErrorIs(t, err, utils.ErrGateway)

	var payment dbm.Payment
	require.NoError(t, f.db.First(&payment).Error)
	assert.Equal(t, dbm.PaymentFail, payment.PaymentStatus)
}

func TestListCurrencies_FallsBack(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	assert.Equal(t, fallbackCurrencies, f.paymentService(&fakeGateway{}).ListCurrencies(ctx))

	live := []response_models.CurrencyOption{{Currency: "TON", Network: "TON"}}
	assert.Equal(t, live, f.paymentService(&fakeGateway{services: live}).ListCurrencies(ctx))
}

func createPending(t *testing.T, f *fixture, userID uuid.UUID, plan dbm.SubscriptionPlan, amount float64) *dbm.Payment {
	t.Helper()
	p := &dbm.Payment{
		UserID:        userID,
		OrderID:       "pka_" + uuid.NewString(),
		Provider:      paymentProvider,
		PlanID:        plan,
		Amount:        amount,
		Currency:      "USD",
		PaymentStatus: dbm.PaymentPending,
		InvoiceUUID:   "inv-" + uuid.NewString(),
	}
	require.NoError(t, f.payments.Create(context.Background(), p))
	return p
}

func TestGetPaymentStatus(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	user := f.user(t, "alice")
	other := f.user(t, "mallory")
	payment := createPending(t, f, user.ID, dbm.PlanMonthly, 50)

	svc := f.paymentService(&fakeGateway{info: &Invoice{PaymentStatus: "process"}})

	_, err := svc.GetPaymentStatus(ctx, other.ID, payment.OrderID)
	assert.ErrorIs(t, err, utils.ErrPaymentNotFound)

	resp, err := svc.GetPaymentStatus(ctx, user.ID, payment.OrderID)
	require.NoError(t, err)
	assert.Equal(t, "process", resp.Status)

	stored, err := f.payments.FindByOrderID(ctx, payment.OrderID)
	require.NoError(t, err)
	assert.Equal(t, dbm.PaymentProcess, stored.PaymentStatus)
}

func TestHandleWebhook_RejectsBadSignature(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	user := f.user(t, "alice")
	payment := createPending(t, f, user.ID, dbm.PlanMonthly, 50)
	svc := f.paymentService(&fakeGateway{})

	raw, err := json.Marshal(map[string]interface{}{
		"order_id":       payment.OrderID,
		"payment_status": "paid",
		"sign":           "deadbeef",
	})
	require.NoError(t, err)
	assert.ErrorIs(t, svc.HandleWebhook(ctx, raw), utils.ErrInvalidSignature)

	got, err := f.users.FindByID(ctx, user.ID)
	require.NoError(t, err)
	assert.Equal(t, dbm.PlanFree, got.SubscriptionPlan)

	unknown := signedWebhook(t, map[string]interface{}{"order_id": "pka_missing", "payment_status": "paid"})
	assert.ErrorIs(t, svc.HandleWebhook(ctx, unknown), utils.ErrPaymentNotFound)

	assert.ErrorIs(t, svc.HandleWebhook(ctx, []byte("{")), utils.ErrBadRequest)
}

func TestHandleWebhook_ActivatesOnceAndCreditsReferrer(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	referrer := f.user(t, "referrer")
	user := f.user(t, "alice", func(u *dbm.User) { u.ReferredBy = &referrer.ID })
	require.NoError(t, f.db.Create(&dbm.Referral{ReferrerID: referrer.ID, ReferredID: user.ID, Status: dbm.ReferralPending}).Error)
	payment := createPending(t, f, user.ID, dbm.PlanMonthly, 50)

	svc := f.paymentService(&fakeGateway{})
	now := time.Date(2026, 5, 1, 9, 0, 0, 0, time.UTC)
	svc.now = func() time.Time { return now }

	raw := signedWebhook(t, map[string]interface{}{
		"uuid":           payment.InvoiceUUID,
		"order_id":       payment.OrderID,
		"payment_status": "paid",
		"payer_amount":   "0.0012",
		"payer_currency": "BTC",
		"txid":           "0xabc",
		"is_final":       true,
	})

	require.NoError(t, svc.HandleWebhook(ctx, raw))
	require.NoError(t, svc.HandleWebhook(ctx, raw))

	got, err := f.users.FindByID(ctx, user.ID)
	require.NoError(t, err)
	assert.Equal(t, dbm.PlanMonthly, got.SubscriptionPlan)
	assert.Equal(t, 100, got.DailySearchLimit)
	require.NotNil(t, got.SubscriptionEndsAt)
	assert.Equal(t, now.AddDate(0, 0, 30).Unix(), *got.SubscriptionEndsAt)

	ref, err := f.users.FindByID(ctx, referrer.ID)
	require.NoError(t, err)
	assert.InDelta(t, 5.0, ref.ReferralEarnings, 0.0001)

	var referral dbm.Referral
	require.NoError(t, f.db.Where("referred_id = ?", user.ID).First(&referral).Error)
	assert.Equal(t, dbm.ReferralCompleted, referral.Status)

	stored, err := f.payments.FindByOrderID(ctx, payment.OrderID)
	require.NoError(t, err)
	assert.Equal(t, dbm.PaymentPaid, stored.PaymentStatus)
	assert.Equal(t, "0xabc", stored.TransactionHash)
	assert.True(t, stored.WebhookReceived)

	var processed int64
	require.NoError(t, f.db.Model(&dbm.ProcessedWebhook{}).Count(&processed).Error)
	assert.Equal(t, int64(1), processed)
	assert.Equal(t, int64(1), f.countActivity(t, ActionSubscriptionActivated))

	badges, err := f.badgeService().List(ctx, user.ID)
	require.NoError(t, err)
	assert.Contains(t, badges, "subscriber")
}

func TestHandleWebhook_LifetimeHasNoExpiry(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	user := f.user(t, "alice")
	payment := createPending(t, f, user.ID, dbm.PlanLifetime, 300)
	svc := f.paymentService(&fakeGateway{})

	require.NoError(t, svc.HandleWebhook(ctx, signedWebhook(t, map[string]interface{}{
		"orderId":       payment.OrderID,
		"paymentStatus": "paid_over",
		"uuid":          payment.InvoiceUUID,
	})))

	got, err := f.users.FindByID(ctx, user.ID)
	require.NoError(t, err)
	assert.Equal(t, dbm.PlanLifetime, got.SubscriptionPlan)
	assert.Equal(t, dbm.UnlimitedDailySearchLimit, got.DailySearchLimit)
	assert.Nil(t, got.SubscriptionEndsAt)
	assert.Equal(t, "elite", got.BadgeLevel)
}

func TestHandleWebhook_NonCompleteOnlyUpdatesPayment(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	user := f.user(t, "alice")
	payment := createPending(t, f, user.ID, dbm.PlanMonthly, 50)
	svc := f.paymentService(&fakeGateway{})

	require.NoError(t, svc.HandleWebhook(ctx, signedWebhook(t, map[string]interface{}{
		"order_id":       payment.OrderID,
		"payment_status": "cancel",
	})))

	stored, err := f.payments.FindByOrderID(ctx, payment.OrderID)
	require.NoError(t, err)
	assert.Equal(t, dbm.PaymentCancel, stored.PaymentStatus)

	got, err := f.users.FindByID(ctx, user.ID)
	require.NoError(t, err)
	assert.Equal(t, dbm.PlanFree, got.SubscriptionPlan)
}

func TestHandleWebhook_LateNoticeKeepsSettledStatus(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	user := f.user(t, "alice")
	payment := createPending(t, f, user.ID, dbm.PlanMonthly, 50)
	svc := f.paymentService(&fakeGateway{info: &Invoice{PaymentStatus: "process"}})

	require.NoError(t, svc.HandleWebhook(ctx, signedWebhook(t, map[string]interface{}{
		"order_id":       payment.OrderID,
		"payment_status": "paid",
		"txid":           "tx1",
	})))
	require.NoError(t, svc.HandleWebhook(ctx, signedWebhook(t, map[string]interface{}{
		"order_id":       payment.OrderID,
		"payment_status": "process",
		"txid":           "tx1",
	})))

	stored, err := f.payments.FindByOrderID(ctx, payment.OrderID)
	require.NoError(t, err)
	assert.Equal(t, dbm.PaymentPaid, stored.PaymentStatus)

	revenue, err := f.payments.SumRevenue(ctx)
	require.NoError(t, err)
	assert.InDelta(t, 50.0, revenue, 0.0001)

	resp, err := svc.GetPaymentStatus(ctx, user.ID, payment.OrderID)
	require.NoError(t, err)
	assert.Equal(t, "paid", resp.Status)

	got, err := f.users.FindByID(ctx, user.ID)
	require.NoError(t, err)
	assert.Equal(t, dbm.PlanMonthly, got.SubscriptionPlan)
}
