package services

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	dbm "pka/internal/models/db_models"
	"pka/pkg/config"
	"pka/pkg/utils"
)

func (f *fixture) searchService(cfg config.SearchProviderConfig) *SearchService {
	return NewSearchService(NewQuotaService(f.users), f.configs, f.activity, f.activityService(), cfg, nil, f.logger)
}

func TestQuota_CheckDailyLimit(t *testing.T) {
	f := newFixture(t)
	quota := NewQuotaService(f.users)
	ctx := context.Background()
	now := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)
	quota.now = func() time.Time { return now }

	user := f.user(t, "alice", func(u *dbm.User) {
		u.DailySearchLimit = 1
		u.DailySearchesUsed = 1
		u.LastSearchReset = utils.DayStartUnix(now.AddDate(0, 0, -1))
	})

	usage, err := quota.Usage(ctx, user.ID)
	require.NoError(t, err)
	assert.Equal(t, 0, usage.Used)
	assert.Equal(t, 1, usage.Remaining)

	ok, err := quota.CheckDailyLimit(ctx, user.ID)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = quota.CheckDailyLimit(ctx, user.ID)
	require.NoError(t, err)
	assert.False(t, ok)

	_, err = quota.CheckDailyLimit(ctx, uuid.New())
	assert.ErrorIs(t, err, utils.ErrUserNotFound)
}

type providerCall struct {
	method string
	path   string
	query  string
	apiKey string
	body   []byte
}

func newProvider(t *testing.T, status int, response string, calls *[]providerCall) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		*calls = append(*calls, providerCall{
			method: r.Method,
			path:   r.URL.Path,
			query:  r.URL.RawQuery,
			apiKey: r.Header.Get("X-API-Key"),
			body:   body,
		})
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_, _ = w.Write([]byte(response))
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestSearch_GetModuleWithEnvKey(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	var calls []providerCall
	srv := newProvider(t, http.StatusOK, `{"found":true}`, &calls)
	user := f.user(t, "alice")

	svc := f.searchService(config.SearchProviderConfig{BaseURL: srv.URL, APIKey: "env-key", Timeout: 5 * time.Second})
	result, err := svc.Search(ctx, user.ID, "email-osint", "a@example.com", testMeta)
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, result.StatusCode)
	assert.JSONEq(t, `{"found":true}`, string(result.Body))

	require.Len(t, calls, 1)
	assert.Equal(t, http.MethodGet, calls[0].method)
	assert.Equal(t, "/osintcat/email-osint", calls[0].path)
	assert.Equal(t, "query=a%40example.com", calls[0].query)
	assert.Equal(t, "env-key", calls[0].apiKey)

	var history dbm.SearchHistory
	require.NoError(t, f.db.First(&history).Error)
	assert.Equal(t, "email-osint", history.Module)
	assert.Equal(t, "env", history.APIUsed)
	assert.Equal(t, http.StatusOK, history.ResponseStatus)
	assert.Equal(t, int64(1), f.countActivity(t, ActionSearchPerformed))

	got, err := f.users.FindByID(ctx, user.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, got.DailySearchesUsed)
}

func TestSearch_PostModulePrefersNamedConfig(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	var calls []providerCall
	srv := newProvider(t, http.StatusOK, `[]`, &calls)
	user := f.user(t, "alice")

	require.NoError(t, f.configs.Create(ctx, &dbm.ApiConfig{ApiName: "generic", ApiURL: srv.URL, ApiKey: "generic-key", RateLimit: 100, IsActive: true}))
	require.NoError(t, f.configs.Create(ctx, &dbm.ApiConfig{ApiName: "email-breach", ApiURL: srv.URL, ApiKey: "module-key", RateLimit: 100, IsActive: true}))

	svc := f.searchService(config.SearchProviderConfig{})
	_, err := svc.Search(ctx, user.ID, "email-breach", "a@example.com", testMeta)
	require.NoError(t, err)

	require.Len(t, calls, 1)
	assert.Equal(t, http.MethodPost, calls[0].method)
	assert.Equal(t, "/osintdog/leakcheck", calls[0].path)
	assert.Equal(t, "module-key", calls[0].apiKey)

	var body map[string]string
	require.NoError(t, json.Unmarshal(calls[0].body, &body))
	assert.Equal(t, "a@example.com", body["term"])
	assert.Equal(t, "email", body["search_type"])
}

func TestSearch_HackcheckPostsWithoutBody(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	var calls []providerCall
	srv := newProvider(t, http.StatusOK, `{"results":[]}`, &calls)
	user := f.user(t, "alice")

	svc := f.searchService(config.SearchProviderConfig{BaseURL: srv.URL, APIKey: "env-key", Timeout: 5 * time.Second})
	_, err := svc.Search(ctx, user.ID, "hackcheck", "a@example.com", testMeta)
	require.NoError(t, err)

	require.Len(t, calls, 1)
	assert.Equal(t, http.MethodPost, calls[0].method)
	assert.Equal(t, "/osintdog/hackcheck", calls[0].path)
	assert.Empty(t, calls[0].query)
	assert.Empty(t, calls[0].body)
}

func TestSearch_PassesThroughUpstreamStatus(t *testing.T) {
	f := newFixture(t)
	var calls []providerCall
	srv := newProvider(t, http.StatusNotFound, `{"error":"no results"}`, &calls)
	user := f.user(t, "alice")

	svc := f.searchService(config.SearchProviderConfig{BaseURL: srv.URL, APIKey: "k"})
	result, err := svc.Search(context.Background(), user.ID, "ip-lookup", "1.1.1.1", testMeta)
	require.NoError(t, err)
	assert.Equal(t, http.StatusNotFound, result.StatusCode)
	assert.Contains(t, string(result.Body), "no results")
}

func TestSearch_Rejections(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	var hits int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&hits, 1)
	}))
	defer srv.Close()

	exhausted := f.user(t, "exhausted", func(u *dbm.User) {
		u.DailySearchLimit = 0
		u.LastSearchReset = utils.DayStartUnix(time.Now())
	})
	user := f.user(t, "alice")
	svc := f.searchService(config.SearchProviderConfig{BaseURL: srv.URL, APIKey: "k"})

	_, err := svc.Search(ctx, user.ID, "", "x", testMeta)
	assert.ErrorIs(t, err, utils.ErrBadRequest)

	_, err = svc.Search(ctx, user.ID, "no-such-module", "x", testMeta)
	assert.ErrorIs(t, err, utils.ErrInvalidModule)

	_, err = svc.Search(ctx, exhausted.ID, "ip-lookup", "1.1.1.1", testMeta)
	assert.ErrorIs(t, err, utils.ErrQuotaExceeded)
	assert.Equal(t, int64(1), f.countActivity(t, ActionSearchLimitExceeded))

	unconfigured := f.searchService(config.SearchProviderConfig{})
	_, err = unconfigured.Search(ctx, user.ID, "ip-lookup", "1.1.1.1", testMeta)
	assert.ErrorIs(t, err, utils.ErrNoProviderConfig)

	assert.Zero(t, atomic.LoadInt32(&hits))
}

func TestSearch_UpstreamFailure(t *testing.T) {
	f := newFixture(t)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	url := srv.URL
	srv.Close()
	user := f.user(t, "alice")

	svc := f.searchService(config.SearchProviderConfig{BaseURL: url, APIKey: "k"})
	_, err := svc.Search(context.Background(), user.ID, "ip-lookup", "1.1.1.1", testMeta)
	assert.ErrorIs(t, err, utils.ErrUpstream)

	var history dbm.SearchHistory
	require.NoError(t, f.db.First(&history).Error)
	assert.Equal(t, http.StatusBadGateway, history.ResponseStatus)
}

func TestSearchModules(t *testing.T) {
	assert.Equal(t, "email", GuessSearchField("a@b.c"))
	assert.Equal(t, "ip", GuessSearchField("10.0.0.1"))
	assert.Equal(t, "phone", GuessSearchField("4915112345678"))
	assert.Equal(t, "domain", GuessSearchField("example.com"))
	assert.Equal(t, "username", GuessSearchField("neo"))

	npd, ok := LookupModule("us-npd")
	require.True(t, ok)
	assert.Equal(t, "first_name=John&last_name=Ronald+Smith", npd.QueryString("John Ronald Smith"))

	mc, ok := LookupModule("minecraft-lookup")
	require.True(t, ok)
	assert.Equal(t, "query=notch&type=username", mc.QueryString("notch"))

	universal, ok := LookupModule("datahound")
	require.True(t, ok)
	body, err := universal.Body("example.com")
	require.NoError(t, err)
	assert.JSONEq(t, `{"search_field":"domain","search_value":"example.com"}`, string(body))

	hackcheck, ok := LookupModule("hackcheck")
	require.True(t, ok)
	body, err = hackcheck.Body("a@example.com")
	require.NoError(t, err)
	assert.Nil(t, body)
}
