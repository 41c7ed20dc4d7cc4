package services

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	dbm "pka/internal/models/db_models"
	"pka/internal/repositories"
	"pka/pkg/config"
	"pka/pkg/utils"
)

// maxProviderBody bounds how much of a provider response is buffered.
const maxProviderBody = 10 << 20

type SearchResult struct {
	StatusCode  int
	ContentType string
	Body        []byte
}

type SearchServiceInterface interface {
	Search(ctx context.Context, userID uuid.UUID, module, query string, meta ClientMeta) (*SearchResult, error)
}

type providerCredentials struct {
	name    string
	baseURL string
	apiKey  string
}

type SearchService struct {
	quota    QuotaServiceInterface
	configs  repositories.ApiConfigRepository
	activity repositories.ActivityRepository
	audit    ActivityServiceInterface
	cfg      config.SearchProviderConfig
	client   *http.Client
	logger   *zap.Logger
}

func NewSearchService(
	quota QuotaServiceInterface,
	configs repositories.ApiConfigRepository,
	activity repositories.ActivityRepository,
	audit ActivityServiceInterface,
	cfg config.SearchProviderConfig,
	client *http.Client,
	logger *zap.Logger,
) *SearchService {
	if client == nil {
		client = &http.Client{}
	}
	return &SearchService{
		quota:    quota,
		configs:  configs,
		activity: activity,
		audit:    audit,
		cfg:      cfg,
		client:   client,
		logger:   logger,
	}
}

func (s *SearchService) Search(ctx context.Context, userID uuid.UUID, moduleName, query string, meta ClientMeta) (*SearchResult, error) {
	moduleName = strings.TrimSpace(moduleName)
	query = strings.TrimSpace(query)
	if moduleName == "" || query == "" {
		return nil, utils.ErrBadRequest
	}

	module, ok := LookupModule(moduleName)
	if !ok {
		return nil, utils.ErrInvalidModule
	}

	allowed, err := s.quota.CheckDailyLimit(ctx, userID)
	if err != nil {
		return nil, err
	}
	if !allowed {
		s.audit.Log(ctx, ActivityEntry{
			UserID:   userRef(userID),
			Action:   ActionSearchLimitExceeded,
			Meta:     meta,
			Metadata: map[string]interface{}{"module": moduleName, "query": query},
		})
		return nil, utils.ErrQuotaExceeded
	}

	creds, err := s.resolveCredentials(ctx, moduleName)
	if err != nil {
		return nil, err
	}

	started := time.Now()
	result, err := s.forward(ctx, module, creds, query)
	elapsed := time.Since(started).Milliseconds()

	status := http.StatusBadGateway
	if result != nil {
		status = result.StatusCode
	}
	s.record(ctx, userID, module, creds, query, status, elapsed, meta)

	if err != nil {
		s.logger.Error("search provider request failed",
			zap.String("module", moduleName),
			zap.String("user_id", userID.String()),
			zap.Error(err))
		return nil, fmt.Errorf("%w: %v", utils.ErrUpstream, err)
	}
	return result, nil
}

// resolveCredentials picks the module's own config, then any active config,
// then the environment key.
func (s *SearchService) resolveCredentials(ctx context.Context, module string) (*providerCredentials, error) {
	active, err := s.configs.ListActive(ctx)
	if err != nil {
		return nil, err
	}

	var chosen *dbm.ApiConfig
	for i := range active {
		if active[i].ApiName == module {
			chosen = &active[i]
			break
		}
	}
	if chosen == nil && len(active) > 0 {
		chosen = &active[0]
	}

	creds := &providerCredentials{name: "env", baseURL: s.cfg.BaseURL, apiKey: s.cfg.APIKey}
	if chosen != nil && chosen.ApiKey != "" {
		creds.name = chosen.ApiName
		creds.apiKey = chosen.ApiKey
		if creds.baseURL == "" {
			creds.baseURL = strings.TrimRight(chosen.ApiURL, "/")
		}
	}

	if creds.apiKey == "" || creds.baseURL == "" {
		s.logger.Warn("no active search provider configuration", zap.String("module", module))
		return nil, utils.ErrNoProviderConfig
	}
	return creds, nil
}

func (s *SearchService) forward(ctx context.Context, module SearchModule, creds *providerCredentials, query string) (*SearchResult, error) {
	if s.cfg.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.cfg.Timeout)
		defer cancel()
	}

	endpoint := creds.baseURL + module.Endpoint
	var body io.Reader
	if module.Method == http.MethodGet {
		endpoint += "?" + module.QueryString(query)
	} else {
		payload, err := module.Body(query)
		if err != nil {
			return nil, err
		}
		if payload != nil {
			body = bytes.NewReader(payload)
		}
	}

	req, err := http.NewRequestWithContext(ctx, module.Method, endpoint, body)
	if err != nil {
		return nil, err
	}
	req.Header.Set("X-API-Key", creds.apiKey)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxProviderBody))
	if err != nil {
		return nil, err
	}

	contentType := resp.Header.Get("Content-Type")
	if contentType == "" {
		contentType = "application/json"
	}
	return &SearchResult{StatusCode: resp.StatusCode, ContentType: contentType, Body: raw}, nil
}

func (s *SearchService) record(ctx context.Context, userID uuid.UUID, module SearchModule, creds *providerCredentials, query string, status int, elapsedMs int64, meta ClientMeta) {
	entry := &dbm.SearchHistory{
		UserID:           userID,
		Module:           module.Name,
		QueryValue:       query,
		APIUsed:          creds.name,
		ResponseStatus:   status,
		SearchDurationMs: elapsedMs,
		IPAddress:        meta.IP,
		UserAgent:        meta.UserAgent,
	}
	if err := s.activity.RecordSearch(ctx, entry); err != nil {
		s.logger.Warn("failed to record search history", zap.Error(err))
	}

	s.audit.Log(ctx, ActivityEntry{
		UserID:         userRef(userID),
		Action:         ActionSearchPerformed,
		Meta:           meta,
		Endpoint:       module.Endpoint,
		Query:          query,
		ResponseStatus: status,
		ResponseTimeMs: elapsedMs,
		Metadata:       map[string]interface{}{"module": module.Name, "status": status},
	})
}
