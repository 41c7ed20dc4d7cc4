package controllers

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"pka/internal/models/request_models"
	"pka/internal/models/response_models"
	"pka/internal/services"
	"pka/pkg/middleware"
	"pka/pkg/utils"
)

func init() {
	gin.SetMode(gin.TestMode)
}

var testCookies = CookieConfig{
	AccessTTL:  15 * time.Minute,
	RefreshTTL: 30 * 24 * time.Hour,
	AdminTTL:   24 * time.Hour,
}

// asUser stands in for JWTAuthMiddleware.
func asUser(id uuid.UUID) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set("user_id", id.String())
		c.Next()
	}
}

func doJSON(r http.Handler, method, path string, body interface{}, cookies ...*http.Cookie) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	if body != nil {
		switch b := body.(type) {
		case string:
			buf.WriteString(b)
		default:
			_ = json.NewEncoder(&buf).Encode(b)
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	for _, c := range cookies {
		req.AddCookie(c)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func findCookie(w *httptest.ResponseRecorder, name string) *http.Cookie {
	for _, c := range w.Result().Cookies() {
		if c.Name == name {
			return c
		}
	}
	return nil
}

type fakeAuth struct {
	loginErr     error
	refreshToken string
	loggedOut    string
	me           uuid.UUID
}

func (f *fakeAuth) Register(_ context.Context, req request_models.RegisterRequest, _ services.ClientMeta) (*response_models.RegisterResponse, error) {
	return &response_models.RegisterResponse{UserID: uuid.NewString(), APIKey: "pka_" + req.Username}, nil
}

func (f *fakeAuth) Login(context.Context, request_models.LoginRequest, services.ClientMeta) (*response_models.LoginResponse, error) {
	if f.loginErr != nil {
		return nil, f.loginErr
	}
	return &response_models.LoginResponse{
		AccessToken:  "access-1",
		RefreshToken: "refresh-1",
		SessionID:    "sess-1",
		ExpiresIn:    900,
	}, nil
}

func (f *fakeAuth) Logout(_ context.Context, token string, _ services.ClientMeta) error {
	if token == "" {
		return utils.ErrUnauthorized
	}
	f.loggedOut = token
	return nil
}

func (f *fakeAuth) Refresh(_ context.Context, token string) (*response_models.RefreshResponse, error) {
	f.refreshToken = token
	return &response_models.RefreshResponse{AccessToken: "access-2", RefreshToken: "refresh-2", SessionID: "sess-1"}, nil
}

func (f *fakeAuth) Me(_ context.Context, userID uuid.UUID) (*response_models.ProfileResponse, error) {
	f.me = userID
	return &response_models.ProfileResponse{ID: userID.String(), Username: "alice"}, nil
}

func (f *fakeAuth) UpdatePassword(_ context.Context, _ uuid.UUID, password string) error {
	if len(password) < 6 {
		return utils.ErrWeakPassword
	}
	return nil
}

func authRouter(auth *fakeAuth, userID uuid.UUID) *gin.Engine {
	ctrl := NewAuthController(auth, testCookies)
	r := gin.New()
	r.POST("/login", ctrl.Login)
	r.POST("/logout", ctrl.Logout)
	r.POST("/refresh", ctrl.Refresh)
	r.GET("/users/:id", asUser(userID), ctrl.GetUser)
	r.POST("/update-password", asUser(userID), ctrl.UpdatePassword)
	r.GET("/captcha", ctrl.NewCaptcha)
	r.GET("/captcha/:file", ctrl.CaptchaImage)
	return r
}

func TestLoginSetsSessionCookies(t *testing.T) {
	r := authRouter(&fakeAuth{}, uuid.New())

	w := doJSON(r, http.MethodPost, "/login", map[string]string{"username": "alice", "password": "secret1"})
	require.Equal(t, http.StatusOK, w.Code)

	session := findCookie(w, middleware.SessionCookieName)
	require.NotNil(t, session)
	assert.True(t, session.HttpOnly)
	assert.Equal(t, int((15 * time.Minute).Seconds()), session.MaxAge)

	var payload middleware.SessionCookie
	require.NoError(t, json.Unmarshal([]byte(unescapeCookie(t, session.Value)), &payload))
	assert.Equal(t, "sess-1", payload.SessionID)
	assert.Equal(t, "access-1", payload.AccessToken)

	refresh := findCookie(w, middleware.RefreshCookieName)
	require.NotNil(t, refresh)
	assert.Equal(t, "refresh-1", refresh.Value)
	assert.NotContains(t, w.Body.String(), "sess-1")
}

func unescapeCookie(t *testing.T, v string) string {
	t.Helper()
	out, err := url.QueryUnescape(v)
	require.NoError(t, err)
	return out
}

func TestLoginErrors(t *testing.T) {
	r := authRouter(&fakeAuth{loginErr: utils.ErrAccountBanned}, uuid.New())

	w := doJSON(r, http.MethodPost, "/login", map[string]string{"username": "alice", "password": "x"})
	assert.Equal(t, http.StatusForbidden, w.Code)
	assert.Nil(t, findCookie(w, middleware.SessionCookieName))

	w = doJSON(r, http.MethodPost, "/login", "{not json")
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestRefreshFallsBackToCookie(t *testing.T) {
	auth := &fakeAuth{}
	r := authRouter(auth, uuid.New())

	w := doJSON(r, http.MethodPost, "/refresh", nil, &http.Cookie{Name: middleware.RefreshCookieName, Value: "from-cookie"})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "from-cookie", auth.refreshToken)
	assert.Equal(t, "refresh-2", findCookie(w, middleware.RefreshCookieName).Value)

	w = doJSON(r, http.MethodPost, "/refresh", map[string]string{"refreshToken": "from-body"})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "from-body", auth.refreshToken)

	w = doJSON(r, http.MethodPost, "/refresh", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestLogoutClearsCookies(t *testing.T) {
	auth := &fakeAuth{}
	r := authRouter(auth, uuid.New())

	req := httptest.NewRequest(http.MethodPost, "/logout", nil)
	req.Header.Set("Authorization", "Bearer access-1")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "access-1", auth.loggedOut)
	cleared := findCookie(w, middleware.SessionCookieName)
	require.NotNil(t, cleared)
	assert.True(t, cleared.MaxAge < 0)

	w = doJSON(r, http.MethodPost, "/logout", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestGetUserIsSelfOnly(t *testing.T) {
	self := uuid.New()
	auth := &fakeAuth{}
	r := authRouter(auth, self)

	w := doJSON(r, http.MethodGet, "/users/"+self.String(), nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, self, auth.me)

	w = doJSON(r, http.MethodGet, "/users/"+uuid.NewString(), nil)
	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestUpdatePasswordValidation(t *testing.T) {
	r := authRouter(&fakeAuth{}, uuid.New())

	assert.Equal(t, http.StatusOK, doJSON(r, http.MethodPost, "/update-password", map[string]string{"password": "longenough"}).Code)
	assert.Equal(t, http.StatusBadRequest, doJSON(r, http.MethodPost, "/update-password", map[string]string{"password": "abc"}).Code)
	assert.Equal(t, http.StatusBadRequest, doJSON(r, http.MethodPost, "/update-password", map[string]string{}).Code)
}

func TestCaptchaEndpoints(t *testing.T) {
	r := authRouter(&fakeAuth{}, uuid.New())

	w := doJSON(r, http.MethodGet, "/captcha", nil)
	require.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		Data response_models.CaptchaResponse `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.NotEmpty(t, resp.Data.CaptchaID)
	assert.Equal(t, "/api/auth/captcha/"+resp.Data.CaptchaID+".png", resp.Data.ImageURL)

	w = doJSON(r, http.MethodGet, "/captcha/"+resp.Data.CaptchaID+".png", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "image/png", w.Header().Get("Content-Type"))

	w = doJSON(r, http.MethodGet, "/captcha/unknown.png", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

type fakeSearch struct {
	module, query string
	result        *services.SearchResult
	err           error
}

func (f *fakeSearch) Search(_ context.Context, _ uuid.UUID, module, query string, _ services.ClientMeta) (*services.SearchResult, error) {
	f.module, f.query = module, query
	return f.result, f.err
}

type fakeQuota struct{}

func (fakeQuota) CheckDailyLimit(context.Context, uuid.UUID) (bool, error) { return true, nil }

func (fakeQuota) Usage(context.Context, uuid.UUID) (*response_models.QuotaUsage, error) {
	return &response_models.QuotaUsage{Used: 3, Limit: 10, Remaining: 7}, nil
}

func TestSearchPassesProviderBodyThrough(t *testing.T) {
	search := &fakeSearch{result: &services.SearchResult{
		StatusCode:  http.StatusNotFound,
		ContentType: "application/json",
		Body:        []byte(`{"found":0}`),
	}}
	ctrl := NewSearchController(search, fakeQuota{})
	r := gin.New()
	r.POST("/api/search", asUser(uuid.New()), ctrl.Search)

	w := doJSON(r, http.MethodPost, "/api/search", map[string]string{"type": "email-osint", "query": "a@b.c"})
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.JSONEq(t, `{"found":0}`, w.Body.String())
	assert.Equal(t, "email-osint", search.module)
	assert.Equal(t, "a@b.c", search.query)
}

func TestSearchMapsServiceErrors(t *testing.T) {
	ctrl := NewSearchController(&fakeSearch{err: utils.ErrQuotaExceeded}, fakeQuota{})
	r := gin.New()
	r.POST("/api/osint", asUser(uuid.New()), ctrl.Search)
	r.GET("/api/osint/usage", asUser(uuid.New()), ctrl.Usage)

	w := doJSON(r, http.MethodPost, "/api/osint", map[string]string{"module": "email-osint", "query": "x"})
	assert.Equal(t, http.StatusTooManyRequests, w.Code)

	w = doJSON(r, http.MethodGet, "/api/osint/usage", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"remaining":7`)
}

type fakePayments struct {
	webhook []byte
	err     error
}

func (f *fakePayments) Plans() []response_models.PlanResponse {
	return []response_models.PlanResponse{{ID: "monthly", Amount: 50}}
}

func (f *fakePayments) CreateInvoice(_ context.Context, _ uuid.UUID, planID, _ string) (*response_models.CreatePaymentResponse, error) {
	if planID != "monthly" {
		return nil, utils.ErrInvalidPlan
	}
	return &response_models.CreatePaymentResponse{OrderID: "order-1"}, nil
}

func (f *fakePayments) ListCurrencies(context.Context) []response_models.CurrencyOption {
	return []response_models.CurrencyOption{{Currency: "USDT", Network: "tron"}}
}

func (f *fakePayments) GetPaymentStatus(_ context.Context, _ uuid.UUID, orderID string) (*response_models.PaymentStatusResponse, error) {
	if orderID != "order-1" {
		return nil, utils.ErrPaymentNotFound
	}
	return &response_models.PaymentStatusResponse{OrderID: orderID, Status: "paid"}, nil
}

func (f *fakePayments) HandleWebhook(_ context.Context, raw []byte) error {
	f.webhook = raw
	return f.err
}

func TestPaymentController(t *testing.T) {
	payments := &fakePayments{}
	ctrl := NewPaymentController(payments)
	r := gin.New()
	r.POST("/create", asUser(uuid.New()), ctrl.CreateInvoice)
	r.GET("/status", asUser(uuid.New()), ctrl.GetStatus)
	r.POST("/webhook", ctrl.HandleWebhook)

	w := doJSON(r, http.MethodPost, "/create", map[string]string{"planId": "monthly"})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "order-1")

	assert.Equal(t, http.StatusBadRequest, doJSON(r, http.MethodPost, "/create", map[string]string{"planId": "weekly"}).Code)
	assert.Equal(t, http.StatusBadRequest, doJSON(r, http.MethodPost, "/create", map[string]string{}).Code)

	assert.Equal(t, http.StatusBadRequest, doJSON(r, http.MethodGet, "/status", nil).Code)
	assert.Equal(t, http.StatusNotFound, doJSON(r, http.MethodGet, "/status?orderId=other", nil).Code)
	assert.Equal(t, http.StatusOK, doJSON(r, http.MethodGet, "/status?orderId=order-1", nil).Code)

	body := `{"order_id":"order-1","status":"paid","sign":"abc"}`
	w = doJSON(r, http.MethodPost, "/webhook", body)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, body, string(payments.webhook))

	payments.err = utils.ErrInvalidSignature
	assert.Equal(t, http.StatusUnauthorized, doJSON(r, http.MethodPost, "/webhook", body).Code)
}

type fakeAdmin struct {
	services.AdminServiceInterface
	updated request_models.AdminUserActionRequest
}

func (f *fakeAdmin) Login(_ context.Context, password string) (*response_models.AdminLoginResponse, error) {
	if password != "letmein" {
		return nil, utils.ErrInvalidCredentials
	}
	return &response_models.AdminLoginResponse{Token: "admin-token", ExpiresIn: 86400}, nil
}

func (f *fakeAdmin) UpdateUser(_ context.Context, req request_models.AdminUserActionRequest, _ string) error {
	if req.Action == "explode" {
		return utils.ErrInvalidAction
	}
	f.updated = req
	return nil
}

func (f *fakeAdmin) DeleteApiConfig(_ context.Context, id string, _ string) error {
	if id != "cfg-1" {
		return utils.ErrNotFound
	}
	return nil
}

func TestAdminController(t *testing.T) {
	admin := &fakeAdmin{}
	ctrl := NewAdminController(admin, testCookies)
	r := gin.New()
	r.POST("/login", ctrl.Login)
	r.POST("/logout", ctrl.Logout)
	r.PATCH("/users", ctrl.UpdateUser)
	r.DELETE("/api-configs/:id", ctrl.DeleteApiConfig)

	w := doJSON(r, http.MethodPost, "/login", map[string]string{"password": "letmein"})
	require.Equal(t, http.StatusOK, w.Code)
	cookie := findCookie(w, middleware.AdminCookieName)
	require.NotNil(t, cookie)
	assert.Equal(t, "admin-token", cookie.Value)
	assert.Equal(t, int((24 * time.Hour).Seconds()), cookie.MaxAge)

	assert.Equal(t, http.StatusUnauthorized, doJSON(r, http.MethodPost, "/login", map[string]string{"password": "nope"}).Code)

	w = doJSON(r, http.MethodPost, "/logout", nil)
	assert.True(t, findCookie(w, middleware.AdminCookieName).MaxAge < 0)

	w = doJSON(r, http.MethodPatch, "/users", map[string]interface{}{"userId": "u1", "action": "ban", "data": map[string]string{"reason": "spam"}})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "spam", admin.updated.Data.Reason)
	assert.Equal(t, http.StatusBadRequest, doJSON(r, http.MethodPatch, "/users", map[string]string{"userId": "u1", "action": "explode"}).Code)

	assert.Equal(t, http.StatusOK, doJSON(r, http.MethodDelete, "/api-configs/cfg-1", nil).Code)
	assert.Equal(t, http.StatusNotFound, doJSON(r, http.MethodDelete, "/api-configs/cfg-2", nil).Code)
}

type fakeTelegram struct{ err error }

func (f fakeTelegram) HandleUpdate(context.Context, []byte) error { return f.err }

func TestTelegramWebhook(t *testing.T) {
	r := gin.New()
	r.POST("/ok", NewTelegramController(fakeTelegram{}, zap.NewNop()).Webhook)
	r.POST("/bad", NewTelegramController(fakeTelegram{err: utils.ErrBadRequest}, zap.NewNop()).Webhook)

	w := doJSON(r, http.MethodPost, "/ok", `{"update_id":1}`)
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"ok":true}`, w.Body.String())

	assert.Equal(t, http.StatusBadRequest, doJSON(r, http.MethodPost, "/ok", nil).Code)
	assert.Equal(t, http.StatusBadRequest, doJSON(r, http.MethodPost, "/bad", "garbage").Code)
}
